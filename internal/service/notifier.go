package service

import (
	"context"
	"fmt"

	"kaban_bot/internal/model"
	"kaban_bot/pkg/logger"

	"go.uber.org/zap"
)

const (
	buttonParticipate = "✅ Участвую"
	buttonDecline     = "❌ Сливаю"
)

// Delivery is the outcome of one direct message of a broadcast.
type Delivery struct {
	UserTelegramID int64
	ChatID         int64
	Err            error
}

// Notifier posts to the group chat and fans vote requests out to every known user.
type Notifier struct {
	users       UserRepository
	messenger   Messenger
	groupChatID int64
}

func NewNotifier(users UserRepository, messenger Messenger, groupChatID int64) *Notifier {
	return &Notifier{
		users:       users,
		messenger:   messenger,
		groupChatID: groupChatID,
	}
}

func (n *Notifier) PostToGroup(ctx context.Context, text string) error {
	if err := n.messenger.SendMessage(ctx, n.groupChatID, text); err != nil {
		return fmt.Errorf("failed to post to group: %w", err)
	}
	return nil
}

// SendTo delivers a direct message with optional buttons to a single chat.
func (n *Notifier) SendTo(ctx context.Context, chatID int64, text string, buttons ...model.Button) error {
	return n.messenger.SendMessage(ctx, chatID, text, buttons...)
}

// BroadcastVote sends the vote request to every user with a destination chat,
// one at a time. A failed delivery is logged and the loop moves on.
func (n *Notifier) BroadcastVote(ctx context.Context, meetingID int64, text string) ([]Delivery, error) {
	log := logger.Logger()

	users, err := n.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	buttons := []model.Button{
		{Text: buttonParticipate, Data: model.VoteCommand{MeetingID: meetingID, Decision: true}.CallbackData()},
		{Text: buttonDecline, Data: model.VoteCommand{MeetingID: meetingID, Decision: false}.CallbackData()},
	}

	deliveries := make([]Delivery, 0, len(users))
	for _, user := range users {
		if user.ChatID == 0 {
			continue
		}

		err := n.messenger.SendMessage(ctx, user.ChatID, text, buttons...)
		if err != nil {
			log.Error("failed to send vote request",
				zap.Error(err),
				zap.Int64("telegram_id", user.TelegramID),
				zap.Int64("meeting_id", meetingID))
		}
		deliveries = append(deliveries, Delivery{
			UserTelegramID: user.TelegramID,
			ChatID:         user.ChatID,
			Err:            err,
		})
	}

	return deliveries, nil
}
