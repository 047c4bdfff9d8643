package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUpdates struct {
	updates []tgbotapi.Update
	err     error
}

func (f *fakeUpdates) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	f.updates = append(f.updates, update)
	return f.err
}

type fakeWebhook struct {
	secret string
	setURL string
	err    error
}

func (f *fakeWebhook) Set(ctx context.Context, url string) error {
	f.setURL = url
	return f.err
}

func (f *fakeWebhook) Delete(ctx context.Context) error {
	return f.err
}

func (f *fakeWebhook) Info(ctx context.Context) (tgbotapi.WebhookInfo, error) {
	return tgbotapi.WebhookInfo{URL: "https://kaban.example/webhook", PendingUpdateCount: 3}, f.err
}

func (f *fakeWebhook) BotInfo(ctx context.Context) (tgbotapi.User, error) {
	return tgbotapi.User{ID: 99, UserName: "kaban_bot", FirstName: "Кабан", CanJoinGroups: true}, f.err
}

func (f *fakeWebhook) Secret() string {
	return f.secret
}

func newWebhookRouter(updates *fakeUpdates, webhook *fakeWebhook, webhookURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewWebhookRoutes(&router.RouterGroup, updates, webhook, webhookURL)
	return router
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

const updateJSON = `{"update_id":5,"message":{"message_id":1,"date":0,"chat":{"id":7,"type":"private"},"from":{"id":7,"is_bot":false,"first_name":"A","username":"alice"},"text":"/stats","entities":[{"type":"bot_command","offset":0,"length":6}]}}`

func TestWebhookRoutes_ReceiveUpdate(t *testing.T) {
	tests := []struct {
		name            string
		secret          string
		header          string
		body            string
		handlerErr      error
		expectedCode    int
		expectedHandled int
	}{
		{name: "No secret configured", body: updateJSON, expectedCode: http.StatusOK, expectedHandled: 1},
		{name: "Matching secret", secret: "s3cret", header: "s3cret", body: updateJSON, expectedCode: http.StatusOK, expectedHandled: 1},
		{name: "Missing secret header", secret: "s3cret", body: updateJSON, expectedCode: http.StatusUnauthorized},
		{name: "Wrong secret", secret: "s3cret", header: "guess", body: updateJSON, expectedCode: http.StatusUnauthorized},
		{name: "Broken body", body: `{"update_id":`, expectedCode: http.StatusBadRequest},
		{name: "Handler failure is acknowledged", body: updateJSON, handlerErr: errors.New("db down"), expectedCode: http.StatusOK, expectedHandled: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			updates := &fakeUpdates{err: tt.handlerErr}
			router := newWebhookRouter(updates, &fakeWebhook{secret: tt.secret}, "")

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(tt.body))
			if tt.header != "" {
				req.Header.Set(SecretTokenHeader, tt.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedCode, w.Code)
			require.Len(t, updates.updates, tt.expectedHandled)
			if tt.expectedHandled > 0 {
				update := updates.updates[0]
				assert.Equal(t, 5, update.UpdateID)
				require.NotNil(t, update.Message)
				assert.Equal(t, "stats", update.Message.Command())
				assert.Equal(t, "alice", update.Message.From.UserName)
			}
		})
	}
}

func TestWebhookRoutes_SetWebhook(t *testing.T) {
	t.Run("Configured URL wins", func(t *testing.T) {
		webhook := &fakeWebhook{}
		router := newWebhookRouter(&fakeUpdates{}, webhook, "https://bot.example/webhook")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhook/set", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://bot.example/webhook", webhook.setURL)
		body := decodeBody(t, w)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "https://bot.example/webhook", body["webhook_url"])
	})

	t.Run("Derived from host", func(t *testing.T) {
		webhook := &fakeWebhook{}
		router := newWebhookRouter(&fakeUpdates{}, webhook, "")

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/webhook/set", nil)
		req.Host = "kaban.example"
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://kaban.example/webhook", webhook.setURL)
	})

	t.Run("Telegram rejects", func(t *testing.T) {
		router := newWebhookRouter(&fakeUpdates{}, &fakeWebhook{err: errors.New("bad webhook")}, "")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/webhook/set", nil))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "bad webhook", body["error"])
	})
}

func TestWebhookRoutes_Management(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		path         string
		err          error
		expectedCode int
		check        func(t *testing.T, body map[string]any)
	}{
		{
			name:         "Health",
			method:       http.MethodGet,
			path:         "/",
			expectedCode: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "ok", body["status"])
				assert.NotEmpty(t, body["timestamp"])
			},
		},
		{
			name:         "Status",
			method:       http.MethodGet,
			path:         "/status",
			expectedCode: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "Кабан", body["bot"])
				assert.Equal(t, "active", body["status"])
				assert.Equal(t, "webhook", body["mode"])
				assert.Equal(t, "https://kaban.example/webhook", body["webhook"].(map[string]any)["url"])
				assert.Equal(t, "kaban_bot", body["bot_info"].(map[string]any)["username"])
			},
		},
		{
			name:         "Status failure",
			method:       http.MethodGet,
			path:         "/status",
			err:          errors.New("Unauthorized"),
			expectedCode: http.StatusInternalServerError,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "error", body["status"])
				assert.Equal(t, "Unauthorized", body["error"])
			},
		},
		{
			name:         "Delete",
			method:       http.MethodPost,
			path:         "/webhook/delete",
			expectedCode: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, true, body["success"])
			},
		},
		{
			name:         "Info",
			method:       http.MethodGet,
			path:         "/webhook/info",
			expectedCode: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "https://kaban.example/webhook", body["url"])
				assert.Equal(t, float64(3), body["pending_update_count"])
			},
		},
		{
			name:         "Info failure",
			method:       http.MethodGet,
			path:         "/webhook/info",
			err:          errors.New("timeout"),
			expectedCode: http.StatusInternalServerError,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "timeout", body["error"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newWebhookRouter(&fakeUpdates{}, &fakeWebhook{err: tt.err}, "")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.expectedCode, w.Code)
			tt.check(t, decodeBody(t, w))
		})
	}
}
