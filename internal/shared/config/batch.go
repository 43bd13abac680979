package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// BatchConfig contains configuration for the local batch command.
type BatchConfig struct {
	Queue        QueueConfig      `mapstructure:"queue"`
	AI           AIConfig         `mapstructure:"ai"`
	Storage      StorageConfig    `mapstructure:"storage"`
	Preprocess   PreprocessConfig `mapstructure:"preprocess"`
	Monitor      MonitorConfig    `mapstructure:"monitor"`
	Logging      LoggingConfig    `mapstructure:"logging"`
	PollInterval time.Duration    `mapstructure:"poll_interval"`
}

// LoadBatch loads the batch configuration from the given path.
// If configPath is empty, it looks for batch.yaml in the config/ directory.
// Environment variables with STYLIZE_BATCH_ prefix override config file values.
func LoadBatch(configPath string) (*BatchConfig, error) {
	v := viper.New()

	setPipelineDefaults(v)
	v.SetDefault("queue.max_concurrent", 4)
	v.SetDefault("poll_interval", time.Second)
	v.SetDefault("logging.format", "text")

	if err := readConfig(v, configPath, "batch"); err != nil {
		return nil, err
	}

	v.SetEnvPrefix("STYLIZE_BATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg BatchConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Queue.Validate(); err != nil {
		return nil, err
	}
	if cfg.PollInterval <= 0 {
		return nil, fmt.Errorf("poll_interval must be positive, got %s", cfg.PollInterval)
	}

	return &cfg, nil
}
