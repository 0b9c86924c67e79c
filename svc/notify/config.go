package notify

import (
	"fmt"
	"time"
)

const (
	ModeEmail    = "email"
	ModeFunction = "function"
)

// Config selects and configures the notification transport.
type Config struct {
	Mode             string        `env:"NOTIFY_MODE" envDefault:"email"`
	FunctionURL      string        `env:"NOTIFY_FUNCTION_URL"`
	FunctionKey      string        `env:"NOTIFY_FUNCTION_KEY"`
	SigningSecret    string        `env:"NOTIFY_SIGNING_SECRET"`
	Timeout          time.Duration `env:"NOTIFY_TIMEOUT" envDefault:"5s"`
	FailureThreshold int           `env:"NOTIFY_FAILURE_THRESHOLD" envDefault:"5"`
	RecoveryTimeout  time.Duration `env:"NOTIFY_RECOVERY_TIMEOUT" envDefault:"30s"`
}

// Validate implements config.Validator.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeEmail:
		return nil
	case ModeFunction:
		if c.FunctionURL == "" {
			return fmt.Errorf("%w: NOTIFY_FUNCTION_URL is required in function mode", ErrInvalidConfig)
		}
		return nil
	default:
		return fmt.Errorf("%w: unsupported NOTIFY_MODE %q", ErrInvalidConfig, c.Mode)
	}
}
