package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"Server"`
	Database  DatabaseConfig  `mapstructure:"Database"`
	Webhook   WebhookConfig   `mapstructure:"Webhook"`
	RateLimit RateLimitConfig `mapstructure:"RateLimit"`
}

type ServerConfig struct {
	Port    string `mapstructure:"Port"`
	BaseURL string `mapstructure:"BaseURL"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"Path"`
}

// WebhookConfig — адреса автоматизаций n8n для AI-оценки
type WebhookConfig struct {
	ProcessResumeURL string `mapstructure:"ProcessResumeURL"`
	ProcessJDURL     string `mapstructure:"ProcessJDURL"`
	EvaluateURL      string `mapstructure:"EvaluateURL"`
}

type RateLimitConfig struct {
	PDFPerMinute int `mapstructure:"PDFPerMinute"`
}

func NewConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	// Привязываем переменные окружения
	v.BindEnv("Server.Port", "HTTP_PORT")
	v.BindEnv("Server.BaseURL", "BASE_URL")
	v.BindEnv("Database.Path", "DATABASE_PATH")
	v.BindEnv("Webhook.ProcessResumeURL", "N8N_PROCESS_RESUME_WEBHOOK_URL")
	v.BindEnv("Webhook.ProcessJDURL", "N8N_PROCESS_JD_WEBHOOK_URL")
	v.BindEnv("Webhook.EvaluateURL", "N8N_EVALUATION_WEBHOOK_URL")
	v.BindEnv("RateLimit.PDFPerMinute", "PDF_RATE_LIMIT_PER_MINUTE")

	// Читаем конфигурацию из файла
	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Warning: using only environment variables: %v\n", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Проверяем переменные окружения напрямую если конфигурация неполная
	if cfg.Server.Port == "" {
		cfg.Server.Port = v.GetString("HTTP_PORT")
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = v.GetString("DATABASE_PATH")
	}
	if cfg.Webhook.ProcessResumeURL == "" {
		cfg.Webhook.ProcessResumeURL = v.GetString("N8N_PROCESS_RESUME_WEBHOOK_URL")
	}
	if cfg.Webhook.ProcessJDURL == "" {
		cfg.Webhook.ProcessJDURL = v.GetString("N8N_PROCESS_JD_WEBHOOK_URL")
	}
	if cfg.Webhook.EvaluateURL == "" {
		cfg.Webhook.EvaluateURL = v.GetString("N8N_EVALUATION_WEBHOOK_URL")
	}

	// Установка значений по умолчанию
	if cfg.Server.Port == "" {
		cfg.Server.Port = "3000"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/jobs.db"
	}
	if cfg.RateLimit.PDFPerMinute <= 0 {
		cfg.RateLimit.PDFPerMinute = 5
	}

	return &cfg, nil
}

// GetDSN собирает DSN для mattn/go-sqlite3: WAL-журнал и включённые внешние ключи
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_loc=UTC",
		c.Path,
	)
}
