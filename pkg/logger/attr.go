package logger

import (
	"log/slog"
	"strings"
	"time"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// LoginID records the correlation id of one login handshake.
func LoginID(id string) slog.Attr {
	return slog.String("login_id", id)
}

// Step records a handshake step name.
func Step(name string) slog.Attr {
	return slog.String("step", name)
}

// Outcome records the classification of a handshake response.
func Outcome(name string) slog.Attr {
	return slog.String("outcome", name)
}

// Method records the HTTP method.
func Method(m string) slog.Attr {
	return slog.String("method", m)
}

// URL records a request URL without its query string, which may carry tickets.
func URL(raw string) slog.Attr {
	base, _, _ := strings.Cut(raw, "?")
	return slog.String("url", base)
}

// StatusCode records an HTTP response status.
func StatusCode(code int) slog.Attr {
	return slog.Int("status", code)
}

// Username records the portal account username. Never pass a password here.
func Username(name string) slog.Attr {
	return slog.String("username", name)
}

// ActivityID records an activity identifier.
func ActivityID(id int64) slog.Attr {
	return slog.Int64("activity_id", id)
}

// Duration records elapsed time under the key "duration".
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}
