package service

import (
	"fmt"
	"strings"

	"kaban_bot/internal/model"
)

const (
	noActiveMeetingsText = "📋 Нет активных встреч"
	nobodyText           = "никто"
	meetingCreatedText   = "✅ Кабан создан! Уведомление отправлено в группу."
	askVoteSuffix        = "\n\nТы идешь?"
	declineAckText       = "Ну и ладно, без тебя справимся ;)"
)

func meetingProposal(meeting *model.Meeting, creatorName string) string {
	return fmt.Sprintf("🐗 Покабанимся в %s? Предлагает %s\n📝 %s", meeting.Time, creatorName, meeting.Description)
}

func groupAnnouncement(proposal string) string {
	return proposal + ".\n\nОтмечайтесь в личке 🐗"
}

func voteAck(meeting *model.Meeting, decision bool) string {
	if decision {
		return fmt.Sprintf("В %s снюхаемся", meeting.Time)
	}
	return declineAckText
}

func joinAnnouncement(voterName string, meeting *model.Meeting) string {
	return fmt.Sprintf("✅ %s идет на кабана в %s", voterName, meeting.Time)
}

func declineAnnouncement(voterName string, shame []string) string {
	text := fmt.Sprintf("❌ %s сливается с кабана", voterName)
	if len(shame) > 0 {
		text += "\n\n" + shame[0]
	}
	return text
}

func mentions(votes []*model.Vote) []string {
	out := make([]string, len(votes))
	for i, v := range votes {
		out[i] = "@" + v.DisplayHandle()
	}
	return out
}

func joinOrNobody(names []string) string {
	if len(names) == 0 {
		return nobodyText
	}
	return strings.Join(names, ", ")
}

// FormatActiveMeetings renders the /meetings reply.
func FormatActiveMeetings(meetings []*model.Meeting) string {
	if len(meetings) == 0 {
		return noActiveMeetingsText
	}

	var b strings.Builder
	b.WriteString("📋 Активные встречи:\n\n")
	for _, meeting := range meetings {
		participants, decliners := meeting.Tally()
		fmt.Fprintf(&b, "🐗 ID: %d\n", meeting.ID)
		fmt.Fprintf(&b, "⏰ Время: %s\n", meeting.Time)
		fmt.Fprintf(&b, "📝 Описание: %s\n", meeting.Description)
		fmt.Fprintf(&b, "✅ Участвуют (%d): %s\n", len(participants), joinOrNobody(mentions(participants)))
		fmt.Fprintf(&b, "❌ Сливают (%d): %s\n\n", len(decliners), joinOrNobody(mentions(decliners)))
	}
	return strings.TrimSpace(b.String())
}

// FormatStats renders the /stats reply.
func FormatStats(stats *model.UserStats, name string) string {
	remark := "🎉 Отличная активность!"
	if stats.ParticipationRate < 50 {
		remark = "🙈 Слишком часто сливаешься!"
	}

	return fmt.Sprintf(
		"📊 Твоя статистика участия:\n\n"+
			"👤 Пользователь: %s\n"+
			"🗳️ Всего голосований: %d\n"+
			"✅ Участвовал: %d\n"+
			"❌ Сливал: %d\n"+
			"📈 Процент участия: %g%%\n\n%s",
		name, stats.TotalVotes, stats.PositiveVotes, stats.NegativeVotes, stats.ParticipationRate, remark)
}

// formatSummary renders the closing message. The participant roster is only
// part of an ended meeting; decliners and their jokes are always listed.
func formatSummary(meeting *model.Meeting, action model.CloseAction, participants, decliners []*model.Vote, shame []string) string {
	var b strings.Builder

	if action == model.CloseActionEnd {
		fmt.Fprintf(&b, "🏁 Итоги кабана в %s\n", meeting.Time)
	} else {
		fmt.Fprintf(&b, "❌ Кабан в %s отменен\n", meeting.Time)
	}
	fmt.Fprintf(&b, "📝 Описание: %s\n\n", meeting.Description)

	if action == model.CloseActionEnd && len(participants) > 0 {
		fmt.Fprintf(&b, "✅ Участвуют (%d):\n", len(participants))
		for _, name := range mentions(participants) {
			fmt.Fprintf(&b, "• %s\n", name)
		}
		b.WriteString("\n")
	}

	if len(decliners) > 0 {
		fmt.Fprintf(&b, "❌ Слиты (%d):\n", len(decliners))
		for _, name := range mentions(decliners) {
			fmt.Fprintf(&b, "• %s\n", name)
		}
		if len(shame) > 0 {
			b.WriteString("\nДоска позора:\n")
			for _, text := range shame {
				fmt.Fprintf(&b, "• %s\n", text)
			}
		}
	}

	return strings.TrimSpace(b.String())
}

// CloseReply is the answer to the creator who closed the meeting.
func CloseReply(summary *model.MeetingSummary) string {
	if summary.Action == model.CloseActionCancel {
		return fmt.Sprintf("❌ Кабан в %q отменен!", summary.Meeting.Time)
	}
	return fmt.Sprintf("✅ Голосование по встрече %q завершено! Итоги отправлены в группу.", summary.Meeting.Description)
}
