package auth

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"kaban_bot/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	initdata "github.com/telegram-mini-apps/init-data-golang"
	"go.uber.org/zap"
)

const (
	expTime = 24 * time.Hour

	// UserContextKey holds the *TelegramUserData of an authenticated request.
	UserContextKey = "telegram_user"

	// InitDataQueryParam carries init data for browser websocket handshakes,
	// which cannot set headers.
	InitDataQueryParam = "init_data"
)

var ErrMissingUser = errors.New("init data has no user")

type TelegramAuth struct {
	botToken  string
	debugMode bool
}

func NewTelegramAuth(botToken string, debugMode bool) *TelegramAuth {
	return &TelegramAuth{
		botToken:  botToken,
		debugMode: debugMode,
	}
}

// TelegramAuthMiddleware accepts "Authorization: tma <init data>" as sent by
// Telegram Mini Apps, the older "Telegram <init data>" prefix, or the
// init_data query parameter.
func (t *TelegramAuth) TelegramAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.Logger()

		initData, ok := c.GetQuery(InitDataQueryParam)
		if !ok {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				log.Info("missing authorization header")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
				return
			}

			initData, ok = trimScheme(authHeader)
			if !ok {
				log.Info("invalid authorization header format")
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
				return
			}
		}

		if !t.debugMode {
			if err := initdata.Validate(initData, t.botToken, expTime); err != nil {
				log.Info("invalid telegram init data", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid telegram auth data"})
				return
			}
		}

		telegramUserData, err := ExtractTelegramData(initData)
		if err != nil {
			log.Info("failed to extract telegram data", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid telegram data"})
			return
		}

		c.Set(UserContextKey, telegramUserData)
		c.Next()
	}
}

func trimScheme(header string) (string, bool) {
	for _, scheme := range []string{"tma ", "Telegram "} {
		if strings.HasPrefix(header, scheme) {
			return strings.TrimPrefix(header, scheme), true
		}
	}
	return "", false
}

type TelegramUserData struct {
	ID       int64
	Username string
	AuthDate time.Time
}

func ExtractTelegramData(initData string) (*TelegramUserData, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, err
	}

	authDateUnix, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, err
	}

	var userData struct {
		ID       int64  `json:"id"`
		Username string `json:"username"`
	}

	if err := json.Unmarshal([]byte(values.Get("user")), &userData); err != nil {
		return nil, err
	}
	if userData.ID == 0 {
		return nil, ErrMissingUser
	}

	return &TelegramUserData{
		ID:       userData.ID,
		Username: userData.Username,
		AuthDate: time.Unix(authDateUnix, 0),
	}, nil
}

// UserFromContext returns the user stored by TelegramAuthMiddleware.
func UserFromContext(c *gin.Context) (*TelegramUserData, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*TelegramUserData)
	return user, ok
}
