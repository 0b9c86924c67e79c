// Package config loads typed configuration structs from environment variables.
//
// Fields are declared with caarlos0/env tags; a .env file in the working
// directory is read once (via joho/godotenv) before the first parse. Structs that
// implement Validator get a post-parse check, so cross-field rules live next to
// the fields they constrain.
//
//	type Config struct {
//		Token   string        `env:"BILLING_WEBHOOK_TOKEN"`
//		Timeout time.Duration `env:"BILLING_NOTIFY_TIMEOUT" envDefault:"10s"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// Errors wrap ErrParsingConfig, ErrInvalidConfig or ErrEnvFile and can be
// matched with errors.Is.
package config
