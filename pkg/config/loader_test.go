package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/garminconnect/pkg/config"
)

type testConfig struct {
	Email   string        `env:"EMAIL,required"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
	Tags    []string      `env:"TAGS" envSeparator:","`
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	name := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(name, []byte(content), 0o600))
	return name
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("CFGTEST_EMAIL", "env@example.com")
	t.Setenv("CFGTEST_TAGS", "run,bike")

	cfg, err := config.Load[testConfig](config.WithPrefix("CFGTEST_"))
	require.NoError(t, err)
	assert.Equal(t, "env@example.com", cfg.Email)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, []string{"run", "bike"}, cfg.Tags)
}

func TestLoad_RequiredMissing(t *testing.T) {
	_, err := config.Load[testConfig](config.WithPrefix("CFGTEST_MISSING_"))
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoad_EnvFile(t *testing.T) {
	name := writeEnvFile(t, "CFGFILE_EMAIL=file@example.com\nCFGFILE_TIMEOUT=3s\n")

	cfg, err := config.Load[testConfig](config.WithPrefix("CFGFILE_"), config.WithEnvFile(name))
	require.NoError(t, err)
	assert.Equal(t, "file@example.com", cfg.Email)
	assert.Equal(t, 3*time.Second, cfg.Timeout)

	_, set := os.LookupEnv("CFGFILE_EMAIL")
	assert.False(t, set, "env file must not leak into the process environment")
}

func TestLoad_ProcessEnvironmentWins(t *testing.T) {
	name := writeEnvFile(t, "CFGPRIO_EMAIL=file@example.com\n")
	t.Setenv("CFGPRIO_EMAIL", "env@example.com")

	cfg, err := config.Load[testConfig](config.WithPrefix("CFGPRIO_"), config.WithEnvFile(name))
	require.NoError(t, err)
	assert.Equal(t, "env@example.com", cfg.Email)
}

func TestLoad_FirstFileWins(t *testing.T) {
	first := writeEnvFile(t, "CFGORDER_EMAIL=first@example.com\n")
	second := writeEnvFile(t, "CFGORDER_EMAIL=second@example.com\nCFGORDER_TIMEOUT=1m\n")

	cfg, err := config.Load[testConfig](config.WithPrefix("CFGORDER_"), config.WithEnvFile(first, second))
	require.NoError(t, err)
	assert.Equal(t, "first@example.com", cfg.Email)
	assert.Equal(t, time.Minute, cfg.Timeout)
}

func TestLoad_MissingEnvFile(t *testing.T) {
	t.Setenv("CFGOPT_EMAIL", "env@example.com")
	missing := filepath.Join(t.TempDir(), "nope.env")

	_, err := config.Load[testConfig](config.WithPrefix("CFGOPT_"), config.WithEnvFile(missing))
	assert.ErrorIs(t, err, config.ErrEnvFile)

	cfg, err := config.Load[testConfig](config.WithPrefix("CFGOPT_"), config.WithEnvFile(missing), config.WithOptionalEnvFiles())
	require.NoError(t, err)
	assert.Equal(t, "env@example.com", cfg.Email)
}

func TestMustLoad(t *testing.T) {
	t.Setenv("CFGMUST_EMAIL", "env@example.com")

	assert.NotPanics(t, func() {
		cfg := config.MustLoad[testConfig](config.WithPrefix("CFGMUST_"))
		assert.Equal(t, "env@example.com", cfg.Email)
	})
	assert.Panics(t, func() {
		config.MustLoad[testConfig](config.WithPrefix("CFGMUST_MISSING_"))
	})
}
