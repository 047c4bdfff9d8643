package bot

import (
	"context"
	"fmt"

	"kaban_bot/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// API is the part of *tgbotapi.BotAPI the bot talks through.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type ClientConfig struct {
	Token string
	Debug bool
}

func NewClient(config ClientConfig) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize bot: %w", err)
	}

	api.Debug = config.Debug

	return api, nil
}

// Messenger sends plain text messages with an optional row of inline buttons.
type Messenger struct {
	api API
}

func NewMessenger(api API) *Messenger {
	return &Messenger{api: api}
}

func (m *Messenger) SendMessage(ctx context.Context, chatID int64, text string, buttons ...model.Button) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(chatID, text)
	if len(buttons) > 0 {
		row := make([]tgbotapi.InlineKeyboardButton, len(buttons))
		for i, b := range buttons {
			row[i] = tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data)
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	}

	if _, err := m.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}
	return nil
}

// AnswerCallback stops the button spinner, showing text as a toast when set.
func (m *Messenger) AnswerCallback(ctx context.Context, callbackID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := m.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}
