package monitor_config

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/NordCoder/pinmon/internal/domain/check"
)

func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Log, validation.By(func(value interface{}) error {
			lc, ok := value.(Log)
			if !ok {
				return validation.NewError("validation_invalid_type", "must be a Log")
			}
			return validation.ValidateStruct(&lc,
				validation.Field(&lc.Level, validation.Required, validation.In("debug", "info", "warn", "error")),
			)
		})),
		validation.Field(&c.Kafka, validation.By(func(value interface{}) error {
			kc, ok := value.(Kafka)
			if !ok {
				return validation.NewError("validation_invalid_type", "must be a Kafka")
			}
			return validation.ValidateStruct(&kc,
				validation.Field(&kc.Brokers, validation.When(kc.Enable, validation.Required)),
				validation.Field(&kc.Topic, validation.When(kc.Enable, validation.Required)),
			)
		})),
		validation.Field(&c.HTTP, validation.By(func(value interface{}) error {
			hc, ok := value.(HTTP)
			if !ok {
				return validation.NewError("validation_invalid_type", "must be an HTTP")
			}
			return validation.ValidateStruct(&hc,
				validation.Field(&hc.Timeout, validation.Required, validation.Min(time.Millisecond)),
				validation.Field(&hc.MaxBodyBytes, validation.Required, validation.Min(int64(1))),
			)
		})),
		validation.Field(&c.Shutdown, validation.By(func(value interface{}) error {
			sc, ok := value.(Shutdown)
			if !ok {
				return validation.NewError("validation_invalid_type", "must be a Shutdown")
			}
			return validation.ValidateStruct(&sc,
				validation.Field(&sc.PollInterval, validation.Required, validation.Min(time.Millisecond)),
			)
		})),
		validation.Field(&c.Checks, validation.Required),
	)
}

func validateDefinition(d check.Definition) error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.URL, validation.Required),
		validation.Field(&d.IPs, validation.Required, validation.Each(validation.Required, is.IP)),
		validation.Field(&d.Code, validation.Min(0), validation.Max(599)),
	)
}
