package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"kaban_bot/internal/repository"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
	envFile      = ".env"
)

type Config struct {
	Database repository.Config `mapstructure:"database"`
	Server   ServerConfig      `mapstructure:"server"`
	Telegram TelegramConfig    `mapstructure:"telegram"`

	LogLevel    string `mapstructure:"logLevel"`
	LogEncoding string `mapstructure:"logEncoding"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type TelegramConfig struct {
	BotToken      string `mapstructure:"botToken"`
	GroupChatID   int64  `mapstructure:"groupChatId"`
	WebhookURL    string `mapstructure:"webhookUrl"`
	WebhookSecret string `mapstructure:"webhookSecret"`
	BotPassword   string `mapstructure:"botPassword"`
	MiniAppDebug  bool   `mapstructure:"miniAppDebug"`
	Debug         bool   `mapstructure:"debug"`
}

var envBindings = map[string][]string{
	"telegram.botToken":      {"BOT_TOKEN"},
	"telegram.groupChatId":   {"GROUP_CHAT_ID"},
	"telegram.webhookUrl":    {"WEBHOOK_URL"},
	"telegram.webhookSecret": {"WEBHOOK_SECRET"},
	"telegram.botPassword":   {"BOT_PASSWORD"},
	"telegram.miniAppDebug":  {"MINIAPP_DEBUG"},
	"telegram.debug":         {"BOT_DEBUG"},
	"server.host":            {"HOST"},
	"server.port":            {"PORT"},
	"logLevel":               {"LOG_LEVEL"},
	"logEncoding":            {"LOG_ENCODING"},
	"database.url":           {"DATABASE_URL"},
	"database.host":          {"DB_HOST"},
	"database.port":          {"DB_PORT"},
	"database.user":          {"DB_USER"},
	"database.password":      {"DB_PASSWORD"},
	"database.name":          {"DB_NAME"},
	"database.sslmode":       {"DB_SSLMODE"},
}

// LoadConfig reads .env and config.yaml when present, then the environment.
// Environment variables win over the file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	return loadConfig(viper.New(), configPath)
}

func loadConfig(v *viper.Viper, paths ...string) (*Config, error) {
	v.SetConfigName(configName)
	v.SetConfigType(configFormat)
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "5005")
	v.SetDefault("logLevel", "info")
	v.SetDefault("logEncoding", "json")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.name", "kaban")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, envs := range envBindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return errors.New("BOT_TOKEN is required")
	}
	if c.Telegram.GroupChatID == 0 {
		return errors.New("GROUP_CHAT_ID is required")
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
