package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig contains logging-related configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// QueueConfig contains transformation queue configuration.
type QueueConfig struct {
	// MaxConcurrent is the number of jobs that may run at once.
	// 1 runs jobs strictly one after another.
	MaxConcurrent int           `mapstructure:"max_concurrent"`
	CallTimeout   time.Duration `mapstructure:"call_timeout"`
}

func (c QueueConfig) Validate() error {
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("queue.max_concurrent must be at least 1, got %d", c.MaxConcurrent)
	}
	if c.CallTimeout < 0 {
		return fmt.Errorf("queue.call_timeout must not be negative, got %s", c.CallTimeout)
	}
	return nil
}

// AIConfig contains the OpenAI-compatible transformation service configuration.
type AIConfig struct {
	BaseURL          string `mapstructure:"base_url"`
	APIKey           string `mapstructure:"api_key"`
	Model            string `mapstructure:"model"`
	MaxTokens        int    `mapstructure:"max_tokens"`
	Stream           bool   `mapstructure:"stream"`
	MaxResponseBytes int    `mapstructure:"max_response_bytes"`
}

// StorageConfig selects the image store backend.
type StorageConfig struct {
	Driver      string `mapstructure:"driver"` // "memory" or "postgres"
	PostgresURL string `mapstructure:"postgres_url"`
}

// PreprocessConfig controls input image normalization before upload.
type PreprocessConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	MaxDimension int  `mapstructure:"max_dimension"`
	JPEGQuality  int  `mapstructure:"jpeg_quality"`
}

// MonitorConfig controls periodic queue status logging.
type MonitorConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

func setPipelineDefaults(v *viper.Viper) {
	v.SetDefault("queue.max_concurrent", 100)
	v.SetDefault("queue.call_timeout", 5*time.Minute)
	v.SetDefault("ai.base_url", "https://api.openai.com/v1")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", "gpt-4o-image")
	v.SetDefault("ai.max_tokens", 4096)
	v.SetDefault("ai.stream", true)
	v.SetDefault("ai.max_response_bytes", 32<<20)
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.postgres_url", "")
	v.SetDefault("preprocess.enabled", true)
	v.SetDefault("preprocess.max_dimension", 2048)
	v.SetDefault("preprocess.jpeg_quality", 90)
	v.SetDefault("monitor.interval", 5*time.Second)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
