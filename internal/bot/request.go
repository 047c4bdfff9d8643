package bot

import (
	"kaban_bot/internal/model"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Request is an inbound update reduced to what the handlers need.
type Request struct {
	Sender     model.Sender
	Command    model.Command
	ChatID     int64
	CallbackID string
}

func (r *Request) IsCallback() bool {
	return r.CallbackID != ""
}

// DecodeUpdate turns a Telegram update into a Request. Updates the bot does
// not react to, such as plain text, decode to nil. A button press with
// unreadable data returns the request together with model.ErrMalformedCallback
// so it can still be answered.
func DecodeUpdate(update tgbotapi.Update) (*Request, error) {
	switch {
	case update.CallbackQuery != nil:
		return decodeCallback(update.CallbackQuery)
	case update.Message != nil:
		return decodeMessage(update.Message), nil
	}
	return nil, nil
}

func decodeMessage(msg *tgbotapi.Message) *Request {
	if !msg.IsCommand() {
		return nil
	}

	req := &Request{
		Sender:  senderFrom(msg.From, msg.Chat),
		Command: model.ParseCommand(msg.Command(), msg.CommandArguments()),
	}
	if msg.Chat != nil {
		req.ChatID = msg.Chat.ID
	}
	return req
}

func decodeCallback(cb *tgbotapi.CallbackQuery) (*Request, error) {
	var chat *tgbotapi.Chat
	if cb.Message != nil {
		chat = cb.Message.Chat
	}

	req := &Request{
		Sender:     senderFrom(cb.From, chat),
		CallbackID: cb.ID,
	}
	if chat != nil {
		req.ChatID = chat.ID
	}

	cmd, err := model.ParseCallbackData(cb.Data)
	if err != nil {
		return req, err
	}
	req.Command = cmd
	return req, nil
}

func senderFrom(from *tgbotapi.User, chat *tgbotapi.Chat) model.Sender {
	var sender model.Sender
	if from != nil {
		sender.TelegramID = from.ID
		sender.Handle = from.UserName
		sender.FirstName = from.FirstName
	}
	if chat != nil {
		sender.ChatID = chat.ID
		sender.Private = chat.IsPrivate()
	}
	return sender
}
