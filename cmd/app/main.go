package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"kaban_bot/internal/api"
	"kaban_bot/internal/bot"
	"kaban_bot/internal/middleware"
	"kaban_bot/internal/repository"
	"kaban_bot/internal/service"
	"kaban_bot/pkg/auth"
	"kaban_bot/pkg/logger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	err = logger.Initialize(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	zapLogger := logger.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repo, err := repository.New(ctx, cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	jokes := service.NewJokeBook(repo)
	seeded, err := jokes.Seed(ctx)
	if err != nil {
		zapLogger.Fatal("Failed to seed jokes", zap.Error(err))
	}
	if seeded > 0 {
		zapLogger.Info("Seeded default jokes", zap.Int("count", seeded))
	}

	client, err := bot.NewClient(bot.ClientConfig{Token: cfg.Telegram.BotToken, Debug: cfg.Telegram.Debug})
	if err != nil {
		zapLogger.Fatal("Failed to initialize telegram client", zap.Error(err))
	}
	zapLogger.Info("Bot authorized", zap.String("username", client.Self.UserName))

	feed := api.NewFeedHub()
	defer feed.Close()

	messenger := bot.NewMessenger(client)
	notifier := service.NewNotifier(repo, messenger, cfg.Telegram.GroupChatID)
	userService := service.NewUserService(repo, repo)
	meetingService := service.NewMeetingService(repo, repo, jokes, notifier, feed)
	gate := service.NewAccessGate(repo, cfg.Telegram.BotPassword)

	kaban := bot.New(messenger, gate, userService, meetingService)
	webhook := bot.NewWebhook(client, cfg.Telegram.WebhookSecret)
	profiles := bot.NewProfiles(client)

	telegramAuth := auth.NewTelegramAuth(cfg.Telegram.BotToken, cfg.Telegram.MiniAppDebug)
	authorization := middleware.NewAuthorization(userService)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{
		http.MethodHead,
		http.MethodGet,
		http.MethodPost,
	}
	config.AllowHeaders = []string{"Authorization", "Content-Type", middleware.RequestIDHeader}
	config.ExposeHeaders = []string{middleware.RequestIDHeader}
	config.MaxAge = 12 * time.Hour

	router.Use(cors.New(config))

	api.NewWebhookRoutes(&router.RouterGroup, kaban, webhook, cfg.Telegram.WebhookURL)

	a := router.Group("/api/v1")
	guards := []gin.HandlerFunc{telegramAuth.TelegramAuthMiddleware(), authorization.RegisteredOnly()}
	api.NewMeetingRoutes(a, meetingService, userService, guards...)
	api.NewFeedRoutes(a, feed, guards...)
	api.NewUserRoutes(a, profiles, guards...)

	if cfg.Telegram.WebhookURL != "" {
		if err := webhook.Set(ctx, cfg.Telegram.WebhookURL); err != nil {
			zapLogger.Warn("Failed to set webhook automatically, use POST /webhook/set", zap.Error(err))
		}
	} else {
		zapLogger.Info("WEBHOOK_URL is not set, use POST /webhook/set to register the webhook")
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       time.Minute,
	}

	go func() {
		zapLogger.Info("Starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Error("Server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zapLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	feed.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Failed to shut down server", zap.Error(err))
	}
}
