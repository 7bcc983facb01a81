package garminconnect_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/garminconnect"
	"github.com/dmitrymomot/garminconnect/internal/portaltest"
	"github.com/dmitrymomot/garminconnect/pkg/logger"
	"github.com/dmitrymomot/garminconnect/pkg/sso"
)

const summaryPath = "/usersummary-service/usersummary/daily/" + portaltest.DisplayName

var day = time.Date(2024, time.March, 9, 15, 4, 5, 0, time.UTC)

func newClient(p *portaltest.Portal, opts ...garminconnect.Option) *garminconnect.Client {
	opts = append([]garminconnect.Option{garminconnect.WithSSOOptions(sso.WithEndpoints(p.Endpoints()))}, opts...)
	return garminconnect.New(sso.Credentials{Email: portaltest.Email, Password: portaltest.Password}, opts...)
}

// loggedIn returns a client with a live session and zeroed portal counters.
func loggedIn(t *testing.T, p *portaltest.Portal, opts ...garminconnect.Option) *garminconnect.Client {
	t.Helper()
	c := newClient(p, opts...)
	_, err := c.Login(context.Background())
	require.NoError(t, err)
	p.ResetCounters()
	return c
}

func TestClient_LoginScenario(t *testing.T) {
	t.Parallel()

	p := portaltest.New(t)
	body := `{"totalSteps":12034,"privacyProtected":false,"calendarDate":"2024-03-09"}`
	p.SetJSON(summaryPath, http.StatusOK, body)

	c := newClient(p)
	username, err := c.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, portaltest.Email, username)
	assert.Equal(t, portaltest.Email, c.Username())
	assert.Equal(t, portaltest.DisplayName, c.DisplayName())

	p.ResetCounters()
	summary, err := c.GetUserSummary(context.Background(), day)
	require.NoError(t, err)

	assert.Equal(t, body, string(summary))
	assert.Equal(t, 1, p.Total())
	assert.Equal(t, 1, p.Hits("/proxy"+summaryPath))
	assert.Equal(t, "2024-03-09", p.LastQuery("/proxy"+summaryPath).Get("calendarDate"))
}

func TestClient_DataCallsBeforeLogin(t *testing.T) {
	t.Parallel()

	p := portaltest.New(t)
	c := newClient(p)

	calls := map[string]func() error{
		"summary": func() error { _, err := c.GetUserSummary(context.Background(), day); return err },
		"heart":   func() error { _, err := c.GetHeartRates(context.Background(), day); return err },
		"devices": func() error { _, err := c.GetDevices(context.Background()); return err },
		"alarms":  func() error { _, err := c.GetDeviceAlarms(context.Background()); return err },
		"records": func() error { _, err := c.GetPersonalRecords(context.Background()); return err },
		"activities": func() error {
			_, err := c.GetActivities(context.Background(), 0, 10)
			return err
		},
		"download": func() error {
			_, err := c.DownloadActivity(context.Background(), 1, garminconnect.FormatGPX)
			return err
		},
	}
	for name, call := range calls {
		err := call()
		assert.ErrorIs(t, err, sso.ErrNotLoggedIn, name)
		assert.True(t, sso.IsAuthenticationError(err), name)
	}
	assert.Zero(t, p.Total())
	assert.Empty(t, c.Username())
	assert.Empty(t, c.DisplayName())
}

func TestClient_PrivacyProtectedSummaryExpiresSession(t *testing.T) {
	t.Parallel()

	p := portaltest.New(t)
	p.SetJSON(summaryPath, http.StatusOK, `{"privacyProtected":true}`)
	c := loggedIn(t, p)

	_, err := c.GetUserSummary(context.Background(), day)
	assert.ErrorIs(t, err, sso.ErrSessionExpired)

	_, err = c.GetDevices(context.Background())
	assert.ErrorIs(t, err, sso.ErrSessionExpired)
	assert.Equal(t, 1, p.Total())

	p.SetJSON(summaryPath, http.StatusOK, `{"privacyProtected":false}`)
	_, err = c.Login(context.Background())
	require.NoError(t, err)
	_, err = c.GetUserSummary(context.Background(), day)
	assert.NoError(t, err)
}

func TestClient_RejectedSessionStaysInvalid(t *testing.T) {
	t.Parallel()

	p := portaltest.New(t)
	p.SetJSON("/device-service/deviceregistration/devices", http.StatusOK, `[]`)
	c := loggedIn(t, p)

	p.ExpireSessions()
	_, err := c.GetDevices(context.Background())
	assert.ErrorIs(t, err, sso.ErrSessionExpired)

	_, err = c.GetDevices(context.Background())
	assert.ErrorIs(t, err, sso.ErrSessionExpired)
	assert.Equal(t, 1, p.Total(), "second call must fail without a request")
}

func TestClient_LogoutThenDataCall(t *testing.T) {
	t.Parallel()

	p := portaltest.New(t)
	c := loggedIn(t, p)

	c.Logout(context.Background())
	c.Logout(context.Background())

	_, err := c.GetDevices(context.Background())
	assert.True(t, sso.IsAuthenticationError(err))
	assert.Equal(t, 1, p.Hits("/modern/auth/logout/"))
}

func TestClient_APIErrors(t *testing.T) {
	t.Parallel()

	p := portaltest.New(t)
	p.SetJSON("/device-service/deviceservice/mylastused", http.StatusInternalServerError, `{"message":"backend exploded"}`)
	p.SetJSON("/device-service/deviceregistration/devices", http.StatusBadRequest, `not json`)
	c := loggedIn(t, p)

	_, err := c.GetActivityWeather(context.Background(), 99)
	var apiErr *garminconnect.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, "resource not found", apiErr.Message)
	assert.True(t, garminconnect.IsNotFound(err))
	assert.False(t, sso.IsAuthenticationError(err))

	_, err = c.GetDeviceLastUsed(context.Background())
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "backend exploded", apiErr.Message)
	assert.Contains(t, err.Error(), "[500]")

	_, err = c.GetDevices(context.Background())
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "not json", apiErr.Message)

	// The session survives application errors.
	assert.Equal(t, portaltest.Email, c.Username())
}

func TestClient_RateLimitedDataCall(t *testing.T) {
	t.Parallel()

	p := portaltest.New(t)
	p.SetJSON("/device-service/deviceregistration/devices", http.StatusTooManyRequests, `{}`)
	c := loggedIn(t, p)

	_, err := c.GetDevices(context.Background())
	assert.True(t, sso.IsTooManyRequests(err))
	assert.Equal(t, portaltest.Email, c.Username())
}

func TestClient_ConnectionFailure(t *testing.T) {
	t.Parallel()

	p := portaltest.New(t)
	transport := &portaltest.FailingTransport{FailPrefix: "/proxy/"}
	c := loggedIn(t, p, garminconnect.WithSSOOptions(sso.WithHTTPClient(&http.Client{Transport: transport})))

	_, err := c.GetDevices(context.Background())
	assert.True(t, sso.IsConnectionError(err))
	assert.False(t, sso.IsAuthenticationError(err))
	assert.Equal(t, int64(1), transport.Failures())
	assert.Equal(t, portaltest.Email, c.Username())
}

func TestClient_EmptyBody(t *testing.T) {
	t.Parallel()

	p := portaltest.New(t)
	p.SetJSON("/device-service/deviceservice/mylastused", http.StatusNoContent, ``)
	c := loggedIn(t, p)

	body, err := c.GetDeviceLastUsed(context.Background())
	require.NoError(t, err)
	assert.Nil(t, body)
}

func TestClient_NonJSONBody(t *testing.T) {
	t.Parallel()

	p := portaltest.New(t)
	p.SetRaw("/device-service/deviceregistration/devices", "text/html",
		[]byte(`<html><head><title>Sign In</title></head></html>`))
	p.SetJSON("/device-service/deviceservice/mylastused", http.StatusOK, `{"lastUsedDeviceName":`)
	c := loggedIn(t, p)

	body, err := c.GetDevices(context.Background())
	require.ErrorIs(t, err, sso.ErrMalformedResponse)
	assert.True(t, sso.IsAuthenticationError(err))
	assert.Nil(t, body)

	body, err = c.GetDeviceLastUsed(context.Background())
	require.ErrorIs(t, err, sso.ErrMalformedResponse)
	assert.Nil(t, body)
	assert.Equal(t, 2, p.Total())
}

func TestClient_WithLoggerReachesAuthenticator(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(logger.WithOutput(&buf), logger.WithLevel(slog.LevelDebug))

	p := portaltest.New(t)
	loggedIn(t, p, garminconnect.WithLogger(log))

	assert.Contains(t, buf.String(), "login succeeded")
	assert.NotContains(t, buf.String(), portaltest.Password)
}
