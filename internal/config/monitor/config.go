package monitor_config

import (
	"time"

	"github.com/NordCoder/pinmon/internal/obs"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

type Sentry struct {
	DSN          string        `mapstructure:"dsn"`
	Environment  string        `mapstructure:"environment"`
	FlushTimeout time.Duration `mapstructure:"flush_timeout"`
}

type Kafka struct {
	Enable      bool     `mapstructure:"enable"`
	Brokers     []string `mapstructure:"brokers"`
	Topic       string   `mapstructure:"topic"`
	EnsureTopic bool     `mapstructure:"ensure_topic"`
}

type HTTP struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
	CAFile       string        `mapstructure:"ca_file"`
}

type Server struct {
	MetricsAddr string `mapstructure:"metrics_addr"`
}

type Shutdown struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type Config struct {
	App      App      `mapstructure:"app"`
	Log      Log      `mapstructure:"log"`
	OTEL     OTEL     `mapstructure:"otel"`
	Sentry   Sentry   `mapstructure:"sentry"`
	Kafka    Kafka    `mapstructure:"kafka"`
	HTTP     HTTP     `mapstructure:"http"`
	Server   Server   `mapstructure:"server"`
	Shutdown Shutdown `mapstructure:"shutdown"`

	// Checks maps a period (integer seconds or a duration string) to its
	// entries. An entry is either a map or a [url, ips] / [url, ips, options] list.
	Checks map[string][]any `mapstructure:"checks"`
}

func (c *Config) LoggerConfig() obs.LogConfig {
	return obs.LogConfig{
		Level:  c.Log.Level,
		Pretty: c.Log.Pretty,
		App:    c.App.Name,
		Env:    c.App.Env,
		Ver:    c.App.Version,
	}
}

func (c *Config) OTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:         c.OTEL.Enable,
		Endpoint:       c.OTEL.OTLPEndpoint,
		ServiceName:    c.OTEL.ServiceName,
		SampleRatio:    c.OTEL.SampleRatio,
		ServiceVersion: c.App.Version,
	}
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }
