package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ServerConfig contains all configuration for the transformation server.
type ServerConfig struct {
	REST       RESTConfig       `mapstructure:"rest"`
	GRPC       GRPCConfig       `mapstructure:"grpc"`
	Queue      QueueConfig      `mapstructure:"queue"`
	AI         AIConfig         `mapstructure:"ai"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Preprocess PreprocessConfig `mapstructure:"preprocess"`
	Monitor    MonitorConfig    `mapstructure:"monitor"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// RESTConfig contains REST API server configuration.
type RESTConfig struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// GRPCConfig contains gRPC health server configuration.
type GRPCConfig struct {
	Enabled          bool          `mapstructure:"enabled"`
	Addr             string        `mapstructure:"addr"`
	EnableReflection bool          `mapstructure:"enable_reflection"`
	KeepaliveMinTime time.Duration `mapstructure:"keepalive_min_time"`
}

// LoadServer loads the server configuration from the given path.
// If configPath is empty, it looks for server.yaml in the config/ directory.
// Environment variables with STYLIZE_SERVER_ prefix override config file values.
func LoadServer(configPath string) (*ServerConfig, error) {
	v := viper.New()

	v.SetDefault("rest.addr", ":8080")
	v.SetDefault("rest.read_timeout", 30*time.Second)
	v.SetDefault("rest.write_timeout", 30*time.Second)
	v.SetDefault("rest.idle_timeout", 60*time.Second)
	v.SetDefault("rest.max_body_bytes", 200<<20)
	v.SetDefault("grpc.enabled", true)
	v.SetDefault("grpc.addr", ":9090")
	v.SetDefault("grpc.enable_reflection", true)
	v.SetDefault("grpc.keepalive_min_time", 30*time.Second)
	setPipelineDefaults(v)

	if err := readConfig(v, configPath, "server"); err != nil {
		return nil, err
	}

	v.SetEnvPrefix("STYLIZE_SERVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Queue.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper, configPath, name string) error {
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(name)
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}
