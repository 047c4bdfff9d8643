package bot

import (
	"context"
	"errors"
	"fmt"

	"kaban_bot/internal/model"
	"kaban_bot/internal/service"
	"kaban_bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Bot routes decoded updates through the access gate to the services and
// answers the sender.
type Bot struct {
	messenger *Messenger
	gate      service.AccessGateI
	users     service.UserServiceI
	meetings  service.MeetingServiceI
}

func New(messenger *Messenger, gate service.AccessGateI, users service.UserServiceI, meetings service.MeetingServiceI) *Bot {
	return &Bot{
		messenger: messenger,
		gate:      gate,
		users:     users,
		meetings:  meetings,
	}
}

// HandleUpdate processes one update. Expected failures are answered to the
// sender and return nil; anything else, panics included, is answered with a
// generic apology and returned.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) (err error) {
	log := logger.Logger().With(zap.Int("update_id", update.UpdateID))

	req, decodeErr := DecodeUpdate(update)
	if req == nil {
		return nil
	}
	log = log.With(zap.Int64("telegram_id", req.Sender.TelegramID))

	defer func() {
		if r := recover(); r != nil {
			log.Error("panic while handling update", zap.Any("panic", r), zap.Stack("stack"))
			b.respond(ctx, req, genericErrorText)
			err = fmt.Errorf("panic while handling update: %v", r)
		}
	}()

	if decodeErr != nil {
		log.Warn("failed to decode callback data", zap.Error(decodeErr))
		b.respond(ctx, req, unknownButtonText)
		return nil
	}

	text, err := b.handle(ctx, req)
	if err != nil {
		reply, expected := replyForError(req.Command, err)
		b.respond(ctx, req, reply)
		if expected {
			log.Debug("command rejected", zap.Error(err))
			return nil
		}
		log.Error("failed to handle update", zap.Error(err))
		return err
	}

	b.respond(ctx, req, text)
	return nil
}

func (b *Bot) handle(ctx context.Context, req *Request) (string, error) {
	user, err := b.gate.Check(ctx, service.GateRequest{Sender: req.Sender, Command: req.Command})
	if err != nil {
		return "", err
	}

	if user != nil {
		refreshed, err := b.users.Refresh(ctx, user, req.Sender)
		if err != nil {
			logger.Logger().Warn("failed to refresh user", zap.Error(err), zap.Int64("telegram_id", user.TelegramID))
		} else {
			user = refreshed
		}
	}

	switch cmd := req.Command.(type) {
	case model.StartCommand:
		if _, err := b.users.Register(ctx, req.Sender); err != nil {
			return "", err
		}
		return welcomeText, nil

	case model.CreateMeetingCommand:
		if _, err := b.meetings.CreateMeeting(ctx, user, req.Sender.Mention(), cmd); err != nil {
			return "", err
		}
		return "", nil

	case model.ListMeetingsCommand:
		meetings, err := b.meetings.ListActiveMeetings(ctx)
		if err != nil {
			return "", err
		}
		return service.FormatActiveMeetings(meetings), nil

	case model.StatsCommand:
		stats, err := b.users.GetUserStats(ctx, user.TelegramID)
		if err != nil {
			return "", err
		}
		return service.FormatStats(stats, req.Sender.Mention()), nil

	case model.VoteCommand:
		return b.meetings.RecordVote(ctx, user, req.Sender.Mention(), cmd)

	case model.CloseMeetingCommand:
		summary, err := b.meetings.CloseMeeting(ctx, user.TelegramID, cmd)
		if err != nil {
			return "", err
		}
		return service.CloseReply(summary), nil

	case model.UnknownCommand:
		return helpText, nil
	}

	return "", errors.New("unsupported command")
}

// respond answers a button press and writes text to the originating chat.
// Vote results are shown as a toast on the button instead of a message.
func (b *Bot) respond(ctx context.Context, req *Request, text string) {
	log := logger.Logger()

	if req.IsCallback() {
		toast := ""
		if _, ok := req.Command.(model.VoteCommand); ok || req.Command == nil {
			toast, text = text, ""
		}
		if err := b.messenger.AnswerCallback(ctx, req.CallbackID, toast); err != nil {
			log.Warn("failed to answer callback", zap.Error(err))
		}
	}

	if text == "" || req.ChatID == 0 {
		return
	}
	if err := b.messenger.SendMessage(ctx, req.ChatID, text); err != nil {
		log.Error("failed to send reply", zap.Error(err), zap.Int64("chat_id", req.ChatID))
	}
}
