package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kaban_bot/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAvatars struct {
	path string
	err  error
}

func (s stubAvatars) AvatarPath(ctx context.Context, telegramID int64) (string, error) {
	return s.path, s.err
}

func TestUserRoutes_GetCurrentUser(t *testing.T) {
	gin.SetMode(gin.TestMode)

	registered := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	router := gin.New()
	NewUserRoutes(router.Group("/api/v1"), stubAvatars{}, asUser(&model.User{TelegramID: 5, RegisteredAt: registered}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var response UserResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, UserResponse{TelegramID: 5, Handle: model.UnknownHandle, RegisteredAt: registered}, response)
}

func TestUserRoutes_GetUserAvatar(t *testing.T) {
	tests := []struct {
		name         string
		avatars      stubAvatars
		expectedCode int
	}{
		{name: "Found", avatars: stubAvatars{path: "photos/file_1.jpg"}, expectedCode: http.StatusOK},
		{name: "No photo", avatars: stubAvatars{}, expectedCode: http.StatusNotFound},
		{name: "Telegram failure", avatars: stubAvatars{err: errors.New("timeout")}, expectedCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			router := gin.New()
			NewUserRoutes(router.Group("/api/v1"), tt.avatars, asUser(&model.User{TelegramID: 5}))

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/me/avatar", nil))

			assert.Equal(t, tt.expectedCode, w.Code)
			if tt.expectedCode == http.StatusOK {
				assert.Contains(t, w.Body.String(), "photos/file_1.jpg")
			}
		})
	}
}
