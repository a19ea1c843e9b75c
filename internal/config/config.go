// Package config loads runtime settings from the environment, an optional .env
// file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Supported AI providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds all settings shared by the CLI, HTTP server, bot and scheduler.
type Config struct {
	DBPath          string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// AI audit configuration. An empty APIKey is allowed: audits then return
	// the missing-key advisory instead of calling the service.
	AIProvider   string
	APIKey       string
	AIModel      string
	AuditTimeout time.Duration

	TelegramBotToken string
	AuditSchedule    string
	ExportDir        string
	SeedOnStart      bool
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("PETRODATA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("db_path", "data/petrodata.db")
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("ai_provider", ProviderGemini)
	v.SetDefault("ai_model", "")
	v.SetDefault("audit_timeout", "60s")
	v.SetDefault("audit_schedule", "0 6 * * *")
	v.SetDefault("export_dir", ".")
	v.SetDefault("seed_on_start", true)

	// Credentials are also picked up under their conventional unprefixed names.
	_ = v.BindEnv("api_key", "PETRODATA_API_KEY", "API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("telegram_bot_token", "PETRODATA_TELEGRAM_BOT_TOKEN", "TELEGRAM_BOT_TOKEN")
	return v
}

// Load reads configuration, applying defaults where unset. configFile may be
// empty; a missing .env file is not an error.
func Load(configFile string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := newViper()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		DBPath:           v.GetString("db_path"),
		HTTPAddr:         v.GetString("http_addr"),
		LogLevel:         v.GetString("log_level"),
		LogFormat:        v.GetString("log_format"),
		ShutdownTimeout:  v.GetDuration("shutdown_timeout"),
		AIProvider:       strings.ToLower(strings.TrimSpace(v.GetString("ai_provider"))),
		APIKey:           strings.TrimSpace(v.GetString("api_key")),
		AIModel:          v.GetString("ai_model"),
		AuditTimeout:     v.GetDuration("audit_timeout"),
		TelegramBotToken: v.GetString("telegram_bot_token"),
		AuditSchedule:    v.GetString("audit_schedule"),
		ExportDir:        v.GetString("export_dir"),
		SeedOnStart:      v.GetBool("seed_on_start"),
	}

	if cfg.DBPath == "" {
		return nil, errors.New("DB_PATH is required")
	}
	if cfg.AIProvider != ProviderGemini && cfg.AIProvider != ProviderOpenAI {
		return nil, fmt.Errorf("unsupported AI_PROVIDER %q (use %s or %s)", cfg.AIProvider, ProviderGemini, ProviderOpenAI)
	}
	if cfg.AuditTimeout <= 0 {
		return nil, errors.New("invalid AUDIT_TIMEOUT")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("invalid SHUTDOWN_TIMEOUT")
	}

	return cfg, nil
}
