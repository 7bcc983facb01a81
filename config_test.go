package garminconnect_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/garminconnect"
	"github.com/dmitrymomot/garminconnect/pkg/config"
	"github.com/dmitrymomot/garminconnect/pkg/sso"
)

func validConfig() garminconnect.Config {
	return garminconnect.Config{
		Email:      "user@example.com",
		Password:   "correctpw",
		Timeout:    5 * time.Second,
		Locale:     "fr-FR",
		SSOURL:     "https://sso.garmin.com/sso",
		ConnectURL: "https://connect.garmin.com/modern",
		ProxyURL:   "https://connect.garmin.com/proxy",
	}
}

func TestLoadConfig(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("GARMIN_EMAIL=file@example.com\nGARMIN_PASSWORD=secret\n"), 0o600))
	t.Setenv("GARMIN_TIMEOUT", "30s")

	cfg, err := garminconnect.LoadConfig(config.WithEnvFile(envFile))
	require.NoError(t, err)
	assert.Equal(t, "file@example.com", cfg.Email)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "en-US", cfg.Locale)
	assert.Equal(t, "https://connect.garmin.com/proxy", cfg.ProxyURL)
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.Email = "  "
	cfg.Password = ""
	cfg.Locale = "not a locale!"
	cfg.ProxyURL = "connect.garmin.com/proxy"
	cfg.Timeout = -time.Second

	err := cfg.Validate()
	var verr garminconnect.ValidationError
	require.ErrorAs(t, err, &verr)
	for _, field := range []string{"email", "password", "locale", "proxy_url", "timeout"} {
		assert.True(t, verr.Has(field), field)
	}
	assert.False(t, verr.Has("sso_url"))
	assert.Equal(t, "is required", verr.Get("email"))
	assert.Contains(t, err.Error(), "email: is required")
}

func TestConfig_Credentials(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Email = " user@example.com "
	assert.Equal(t, sso.Credentials{Email: "user@example.com", Password: "correctpw"}, cfg.Credentials())
}

func TestNewFromConfig(t *testing.T) {
	t.Parallel()

	_, err := garminconnect.NewFromConfig(garminconnect.Config{})
	var verr garminconnect.ValidationError
	assert.ErrorAs(t, err, &verr)

	cfg := validConfig()
	cfg.ProxyURL = "http://localhost:9000/proxy/"
	c, err := garminconnect.NewFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/proxy", c.Authenticator().Endpoints().Proxy)
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	verr := make(garminconnect.ValidationError)
	assert.True(t, verr.IsEmpty())
	assert.Equal(t, "invalid configuration", verr.Error())

	verr.Add("b", "second")
	verr.Add("a", "first")
	verr.Add("a", "ignored in message")
	assert.False(t, verr.IsEmpty())
	assert.Equal(t, "invalid configuration: a: first, b: second", verr.Error())
}
