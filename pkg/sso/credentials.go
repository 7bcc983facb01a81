package sso

import (
	"log/slog"
	"strings"
)

// Credentials identify the portal account. The value is copied into the
// Authenticator on construction and never changes afterwards.
type Credentials struct {
	Email    string
	Password string
}

// Validate checks that both fields are populated.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.Email) == "" || c.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}

// LogValue implements slog.LogValuer so credentials never leak into logs.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("email", maskEmail(c.Email)),
		slog.String("password", "********"),
	)
}

// String keeps fmt verbs from printing the password.
func (c Credentials) String() string {
	return "sso.Credentials{" + maskEmail(c.Email) + "}"
}

func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
