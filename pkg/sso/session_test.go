package sso_test

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/garminconnect/internal/portaltest"
	"github.com/dmitrymomot/garminconnect/pkg/sso"
)

func TestSession_Attach(t *testing.T) {
	t.Parallel()

	p := portaltest.New(t)
	a := newAuth(p, validCreds(), sso.WithUserAgent("test-agent/1.0"))
	_, err := a.Login(context.Background())
	require.NoError(t, err)

	s, err := a.EnsureSession()
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, p.URL()+"/proxy"+summaryPath, nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "application/gpx+xml")
	s.Attach(req)

	assert.Equal(t, "test-agent/1.0", req.Header.Get("User-Agent"))
	assert.Equal(t, sso.DefaultSignatureValue, req.Header.Get(sso.DefaultSignatureHeader))
	assert.Equal(t, "application/gpx+xml", req.Header.Get("Accept"), "caller headers win")
	assert.Empty(t, req.Header.Get("Cookie"), "cookies come from the session client")
}

func TestSession_Cookies(t *testing.T) {
	t.Parallel()

	p := portaltest.New(t)
	a := newAuth(p, validCreds())
	_, err := a.Login(context.Background())
	require.NoError(t, err)

	s, err := a.EnsureSession()
	require.NoError(t, err)

	u, err := url.Parse(p.URL() + "/modern/")
	require.NoError(t, err)
	assert.NotEmpty(t, s.Cookies(u))

	var nilSession *sso.Session
	assert.Nil(t, nilSession.Cookies(u))
	assert.Nil(t, s.Cookies(nil))
}
