package middleware

import (
	"errors"
	"net/http"

	"kaban_bot/internal/service"
	"kaban_bot/pkg/auth"
	"kaban_bot/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserContextKey holds the registered *model.User of the request.
const UserContextKey = "user"

type Authorization struct {
	userService service.UserServiceI
}

func NewAuthorization(userService service.UserServiceI) *Authorization {
	return &Authorization{
		userService: userService,
	}
}

// RegisteredOnly lets through mini-app users who registered with the bot.
// It must run after auth.TelegramAuthMiddleware.
func (a *Authorization) RegisteredOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		telegramUser, ok := auth.UserFromContext(c)
		if !ok {
			log.Error("telegram user data not found in context")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		user, err := a.userService.GetUserByTelegramID(c.Request.Context(), telegramUser.ID)
		if err != nil {
			if errors.Is(err, service.ErrUserNotFound) {
				log.Info("unregistered access attempt",
					zap.Int64("telegram_id", telegramUser.ID))
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "registration required"})
				return
			}
			log.Error("failed to get user data", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		c.Set(UserContextKey, user)
		c.Next()
	}
}
