// Package config loads the client configuration from defaults, an optional
// .env file, environment variables, and command-line flags, in that order of
// increasing priority.
package config

import (
	"flag"
	"log"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the client.
type Config struct {
	APIBaseURL           string        `env:"API_BASE_URL" validate:"url"`
	LogLevel             string        `env:"LOG_LEVEL" validate:"loglevel"`
	RequestTimeout       time.Duration `env:"REQUEST_TIMEOUT"`
	NotificationCapacity int           `env:"NOTIFICATION_CAPACITY" validate:"gt=0"`
}

var defaultConfig = Config{
	APIBaseURL:           "https://localhost:7001/api",
	LogLevel:             "info",
	RequestTimeout:       30 * time.Second,
	NotificationCapacity: 16,
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[value]
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

func applyDefaults(values *Config, defaults Config) {
	if values.APIBaseURL == "" {
		values.APIBaseURL = defaults.APIBaseURL
	}
	if values.LogLevel == "" {
		values.LogLevel = defaults.LogLevel
	}
	if values.RequestTimeout == 0 {
		values.RequestTimeout = defaults.RequestTimeout
	}
	if values.NotificationCapacity == 0 {
		values.NotificationCapacity = defaults.NotificationCapacity
	}
}

// InitOption configures the behavior of New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing disables command-line flag parsing.
// Tests use it to keep the global flag set untouched.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// New builds a validated Config from defaults, .env, environment and flags.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	err := godotenv.Load()
	if err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}

	err = env.Parse(values)
	if err != nil {
		return nil, err
	}

	applyDefaults(values, defaultConfig)

	if !options.disableFlagsParsing {
		flag.StringVar(&values.APIBaseURL, "a", values.APIBaseURL, "base URL of the URL-shortening service API")
		flag.StringVar(&values.LogLevel, "l", values.LogLevel, "logger level")
		flag.DurationVar(&values.RequestTimeout, "t", values.RequestTimeout, "timeout for a single API request")
		flag.Parse()
	}

	err = values.validate()
	if err != nil {
		return nil, err
	}

	return values, nil
}
