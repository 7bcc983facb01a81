package garminconnect

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/garminconnect/pkg/logger"
	"github.com/dmitrymomot/garminconnect/pkg/sso"
)

// Client exposes the portal data accessors on top of an sso.Authenticator.
// It is safe for concurrent use.
type Client struct {
	auth   *sso.Authenticator
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	logger  *slog.Logger
	ssoOpts []sso.Option
}

// WithLogger sets the logger for the client and its authenticator.
func WithLogger(l *slog.Logger) Option {
	return func(o *clientOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSSOOptions passes options to the underlying authenticator.
func WithSSOOptions(opts ...sso.Option) Option {
	return func(o *clientOptions) {
		o.ssoOpts = append(o.ssoOpts, opts...)
	}
}

// New creates a client for creds. No network call is made until Login.
func New(creds sso.Credentials, opts ...Option) *Client {
	o := &clientOptions{logger: logger.Discard()}
	for _, opt := range opts {
		opt(o)
	}

	ssoOpts := append([]sso.Option{sso.WithLogger(o.logger)}, o.ssoOpts...)
	return &Client{
		auth:   sso.New(creds, ssoOpts...),
		logger: o.logger.With(logger.Component("garminconnect")),
	}
}

// Authenticator returns the session authenticator behind the client.
func (c *Client) Authenticator() *sso.Authenticator {
	return c.auth
}

// Login signs in and returns the account username.
func (c *Client) Login(ctx context.Context) (string, error) {
	return c.auth.Login(ctx)
}

// Logout ends the session locally and, best effort, on the portal.
func (c *Client) Logout(ctx context.Context) {
	c.auth.Logout(ctx)
}

// Username returns the username of the live session, or "".
func (c *Client) Username() string {
	s, err := c.auth.EnsureSession()
	if err != nil {
		return ""
	}
	return s.Username
}

// DisplayName returns the display name of the live session, or "".
func (c *Client) DisplayName() string {
	s, err := c.auth.EnsureSession()
	if err != nil {
		return ""
	}
	return s.DisplayName
}
