package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, "", cfg.RedisURL)
	assert.Equal(t, float64(0), cfg.RateLimitRPS)
	assert.Equal(t, 10, cfg.LeaderboardSize)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
	assert.Equal(t, "development", cfg.GoEnv)
	assert.False(t, cfg.IsProduction())
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("REQUEST_TIMEOUT", "2s")
	t.Setenv("RATE_LIMIT_RPS", "12.5")
	t.Setenv("PROMETHEUS_ENABLED", "true")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 12.5, cfg.RateLimitRPS)
	assert.True(t, cfg.PrometheusEnabled)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	cases := map[string]string{
		"HTTP_PORT":          "eighty",
		"REQUEST_TIMEOUT":    "soon",
		"PROMETHEUS_ENABLED": "maybe",
		"RATE_LIMIT_RPS":     "fast",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("JWT_SECRET", testSecret)
			t.Setenv(key, value)

			_, err := LoadConfig()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := &Config{
		HTTPPort:        0,
		RequestTimeout:  time.Second,
		DBMaxOpenConns:  1,
		JWTSecret:       "short",
		BcryptCost:      10,
		LeaderboardSize: 10,
		LogLevel:        "loud",
		LogFormat:       "text",
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_PORT")
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "LOG_LEVEL")
	assert.NotContains(t, err.Error(), "LOG_FORMAT")
}

func TestValidate_ThrottleSettingsOnlyCheckedWithRedis(t *testing.T) {
	cfg := &Config{
		HTTPPort:        8080,
		RequestTimeout:  time.Second,
		DBMaxOpenConns:  1,
		JWTSecret:       testSecret,
		BcryptCost:      10,
		LeaderboardSize: 10,
		LogLevel:        "info",
		LogFormat:       "text",
	}
	assert.NoError(t, cfg.Validate())

	cfg.RedisURL = "redis://localhost:6379/0"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOGIN_MAX_FAILURES")
}
