package api

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"kaban_bot/pkg/logger"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const (
	SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

	botName       = "Кабан"
	isoTimeLayout = "2006-01-02T15:04:05.000Z"
)

type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update) error
}

type WebhookManager interface {
	Set(ctx context.Context, url string) error
	Delete(ctx context.Context) error
	Info(ctx context.Context) (tgbotapi.WebhookInfo, error)
	BotInfo(ctx context.Context) (tgbotapi.User, error)
	Secret() string
}

type webhookRoutes struct {
	updates    UpdateHandler
	webhook    WebhookManager
	webhookURL string
}

// NewWebhookRoutes registers the health, status and webhook endpoints at the
// root of handler. webhookURL overrides the URL derived from the request host.
func NewWebhookRoutes(handler *gin.RouterGroup, updates UpdateHandler, webhook WebhookManager, webhookURL string) {
	r := &webhookRoutes{updates: updates, webhook: webhook, webhookURL: webhookURL}

	handler.GET("/", r.Health)
	handler.GET("/status", r.Status)

	h := handler.Group("/webhook")
	{
		h.POST("", r.ReceiveUpdate)
		h.POST("/set", r.SetWebhook)
		h.POST("/delete", r.DeleteWebhook)
		h.GET("/info", r.WebhookInfo)
	}
}

func (r *webhookRoutes) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Kaban Bot is running!",
		"timestamp": time.Now().UTC().Format(isoTimeLayout),
	})
}

func (r *webhookRoutes) Status(c *gin.Context) {
	ctx := c.Request.Context()

	info, err := r.webhook.Info(ctx)
	if err != nil {
		r.statusError(c, err)
		return
	}

	me, err := r.webhook.BotInfo(ctx)
	if err != nil {
		r.statusError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bot":    botName,
		"status": "active",
		"mode":   "webhook",
		"webhook": gin.H{
			"url":                    info.URL,
			"has_custom_certificate": info.HasCustomCertificate,
			"pending_update_count":   info.PendingUpdateCount,
			"last_error_date":        info.LastErrorDate,
			"last_error_message":     info.LastErrorMessage,
			"max_connections":        info.MaxConnections,
		},
		"bot_info": gin.H{
			"id":                          me.ID,
			"username":                    me.UserName,
			"first_name":                  me.FirstName,
			"can_join_groups":             me.CanJoinGroups,
			"can_read_all_group_messages": me.CanReadAllGroupMessages,
			"supports_inline_queries":     me.SupportsInlineQueries,
		},
	})
}

func (r *webhookRoutes) statusError(c *gin.Context, err error) {
	logger.Logger().Error("failed to get bot status", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"bot":    botName,
		"status": "error",
		"error":  err.Error(),
	})
}

// ReceiveUpdate accepts an update pushed by Telegram. Handler failures are
// logged and still acknowledged so Telegram does not redeliver the update.
func (r *webhookRoutes) ReceiveUpdate(c *gin.Context) {
	log := logger.Logger()

	if secret := r.webhook.Secret(); secret != "" {
		given := c.GetHeader(SecretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
			log.Warn("webhook secret token mismatch", zap.String("client_ip", c.ClientIP()))
			c.String(http.StatusUnauthorized, "Unauthorized")
			return
		}
	}

	body, err := c.GetRawData()
	if err != nil {
		log.Error("failed to read update body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		log.Info("failed to decode update", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update"})
		return
	}

	if err := r.updates.HandleUpdate(c.Request.Context(), update); err != nil {
		log.Error("failed to handle update", zap.Error(err), zap.Int("update_id", update.UpdateID))
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (r *webhookRoutes) SetWebhook(c *gin.Context) {
	log := logger.Logger()

	url := r.webhookURL
	if url == "" {
		url = fmt.Sprintf("https://%s/webhook", c.Request.Host)
	}

	if err := r.webhook.Set(c.Request.Context(), url); err != nil {
		log.Error("failed to set webhook", zap.Error(err), zap.String("url", url))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Webhook установлен успешно",
		"webhook_url": url,
	})
}

func (r *webhookRoutes) DeleteWebhook(c *gin.Context) {
	log := logger.Logger()

	if err := r.webhook.Delete(c.Request.Context()); err != nil {
		log.Error("failed to delete webhook", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Webhook удален успешно",
	})
}

func (r *webhookRoutes) WebhookInfo(c *gin.Context) {
	log := logger.Logger()

	info, err := r.webhook.Info(c.Request.Context())
	if err != nil {
		log.Error("failed to get webhook info", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, info)
}
