package api

import (
	"context"
	"net/http"
	"time"

	"kaban_bot/internal/middleware"
	"kaban_bot/internal/model"
	"kaban_bot/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AvatarSource resolves a user's profile photo. An empty path means no photo.
type AvatarSource interface {
	AvatarPath(ctx context.Context, telegramID int64) (string, error)
}

type userRoutes struct {
	avatars AvatarSource
}

func NewUserRoutes(handler *gin.RouterGroup, avatars AvatarSource, guards ...gin.HandlerFunc) {
	r := &userRoutes{avatars: avatars}
	h := handler.Group("/me")
	h.Use(guards...)
	{
		h.GET("", r.GetCurrentUser)
		h.GET("/avatar", r.GetUserAvatar)
	}
}

type UserResponse struct {
	TelegramID   int64     `json:"telegram_id"`
	Handle       string    `json:"handle"`
	RegisteredAt time.Time `json:"registered_at"`
}

func currentUser(c *gin.Context) (*model.User, bool) {
	user, ok := c.MustGet(middleware.UserContextKey).(*model.User)
	if !ok {
		logger.Logger().Error("invalid type assertion for user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
	return user, ok
}

func (r *userRoutes) GetCurrentUser(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, UserResponse{
		TelegramID:   user.TelegramID,
		Handle:       user.DisplayHandle(),
		RegisteredAt: user.RegisteredAt,
	})
}

func (r *userRoutes) GetUserAvatar(c *gin.Context) {
	log := logger.Logger()

	user, ok := currentUser(c)
	if !ok {
		return
	}

	avatarFilePath, err := r.avatars.AvatarPath(c.Request.Context(), user.TelegramID)
	if err != nil {
		log.Error("failed to get user avatar",
			zap.Error(err),
			zap.Int64("telegram_id", user.TelegramID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch avatar"})
		return
	}

	if avatarFilePath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "no avatar found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"avatar_file_path": avatarFilePath,
	})
}
