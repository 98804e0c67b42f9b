package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverConfig struct {
	Port        int           `env:"LOADER_TEST_PORT" envDefault:"8080"`
	Environment string        `env:"LOADER_TEST_ENV" envDefault:"development"`
	Expiry      time.Duration `env:"LOADER_TEST_EXPIRY" envDefault:"15m"`
	Verbose     bool          `env:"LOADER_TEST_VERBOSE" envDefault:"false"`
}

func TestLoad_Defaults(t *testing.T) {
	var cfg serverConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, 15*time.Minute, cfg.Expiry)
	assert.False(t, cfg.Verbose)
}

func TestLoad_EnvOverridesDefaults(t *testing.T) {
	t.Setenv("LOADER_TEST_PORT", "9191")
	t.Setenv("LOADER_TEST_ENV", "production")
	t.Setenv("LOADER_TEST_EXPIRY", "1h")
	t.Setenv("LOADER_TEST_VERBOSE", "true")

	var cfg serverConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, 9191, cfg.Port)
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, time.Hour, cfg.Expiry)
	assert.True(t, cfg.Verbose)
}

type secretConfig struct {
	Secret string `env:"LOADER_TEST_SECRET,required"`
}

func TestLoad_RequiredMissing(t *testing.T) {
	var cfg secretConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_RequiredPresent(t *testing.T) {
	t.Setenv("LOADER_TEST_SECRET", "s3cr3t")

	var cfg secretConfig
	require.NoError(t, Load(&cfg))
	assert.Equal(t, "s3cr3t", cfg.Secret)
}

func TestLoad_UnparsableValue(t *testing.T) {
	t.Setenv("LOADER_TEST_PORT", "eighty-eighty")

	var cfg serverConfig
	err := Load(&cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
