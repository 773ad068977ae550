package monitor_config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and validates the configuration.
func Load(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return cfg, nil
}

// Read applies defaults and env overrides without validating, so the caller
// can bring up logging and the error sink before reporting a bad config.
// A missing file is not an error.
func Read(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
		}
	}

	v.SetDefault("app.name", "pinmon")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.version", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.service_name", "pinmon")
	v.SetDefault("otel.sample_ratio", 1.0)
	v.SetDefault("otel.otlp_endpoint", "localhost:4317")

	v.SetDefault("sentry.dsn", "")
	v.SetDefault("sentry.flush_timeout", "2s")

	v.SetDefault("kafka.enable", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9094"})
	v.SetDefault("kafka.topic", "pinmon.checks.failed")
	v.SetDefault("kafka.ensure_topic", false)

	v.SetDefault("http.timeout", "10s")
	v.SetDefault("http.user_agent", "pinmon/1.0")
	v.SetDefault("http.max_body_bytes", 10<<20)

	v.SetDefault("server.metrics_addr", ":8084")
	v.SetDefault("shutdown.poll_interval", "1s")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return &cfg, nil
}

const ErrInvalid = ErrConfig("invalid configuration")
