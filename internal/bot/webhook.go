package bot

import (
	"context"
	"fmt"

	"kaban_bot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type WebhookAPI interface {
	API
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
	GetWebhookInfo() (tgbotapi.WebhookInfo, error)
	GetMe() (tgbotapi.User, error)
}

// Webhook manages the Telegram webhook registration of the bot.
type Webhook struct {
	api    WebhookAPI
	secret string
}

func NewWebhook(api WebhookAPI, secret string) *Webhook {
	return &Webhook{
		api:    api,
		secret: secret,
	}
}

// Secret is the token Telegram echoes in X-Telegram-Bot-Api-Secret-Token.
func (w *Webhook) Secret() string {
	return w.secret
}

func (w *Webhook) Set(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := tgbotapi.Params{"url": url}
	params.AddNonEmpty("secret_token", w.secret)

	if _, err := w.api.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}

	logger.Logger().Info("webhook set", zap.String("url", url))
	return nil
}

func (w *Webhook) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := w.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	logger.Logger().Info("webhook deleted")
	return nil
}

func (w *Webhook) Info(ctx context.Context) (tgbotapi.WebhookInfo, error) {
	if err := ctx.Err(); err != nil {
		return tgbotapi.WebhookInfo{}, err
	}

	info, err := w.api.GetWebhookInfo()
	if err != nil {
		return tgbotapi.WebhookInfo{}, fmt.Errorf("failed to get webhook info: %w", err)
	}
	return info, nil
}

func (w *Webhook) BotInfo(ctx context.Context) (tgbotapi.User, error) {
	if err := ctx.Err(); err != nil {
		return tgbotapi.User{}, err
	}

	me, err := w.api.GetMe()
	if err != nil {
		return tgbotapi.User{}, fmt.Errorf("failed to get bot info: %w", err)
	}
	return me, nil
}
