package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	values := Config{}

	applyDefaults(&values, defaultConfig)

	assert.Equal(t, "https://localhost:7001/api", values.APIBaseURL)
	assert.Equal(t, "info", values.LogLevel)
	assert.Equal(t, 30*time.Second, values.RequestTimeout)
	assert.Equal(t, 16, values.NotificationCapacity)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	values := Config{
		APIBaseURL: "https://api.example.com",
		LogLevel:   "debug",
	}

	applyDefaults(&values, defaultConfig)

	assert.Equal(t, "https://api.example.com", values.APIBaseURL)
	assert.Equal(t, "debug", values.LogLevel)
	assert.Equal(t, 30*time.Second, values.RequestTimeout)
}

func TestEnvOverridesDefaults(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://short.example.org/api")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("REQUEST_TIMEOUT", "5s")

	values := Config{}

	err := env.Parse(&values)
	require.NoError(t, err)

	applyDefaults(&values, defaultConfig)

	assert.Equal(t, "https://short.example.org/api", values.APIBaseURL)
	assert.Equal(t, "debug", values.LogLevel)
	assert.Equal(t, 5*time.Second, values.RequestTimeout)
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	values := Config{}

	applyDefaults(&values, defaultConfig)

	values.LogLevel = "verbose"

	err := values.validate()
	assert.Error(t, err)
}

func TestValidateRejectsMalformedBaseURL(t *testing.T) {
	values := Config{}

	applyDefaults(&values, defaultConfig)

	values.APIBaseURL = "not-a-url"

	err := values.validate()
	assert.Error(t, err)
}

func TestNewWithDisableFlagsParsing(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://short.example.org/api")

	cfg, err := New(WithDisableFlagsParsing(true))
	require.NoError(t, err)

	assert.Equal(t, "https://short.example.org/api", cfg.APIBaseURL)
	assert.Equal(t, "info", cfg.LogLevel)
}
