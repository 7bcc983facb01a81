package sso

import (
	"net/http"
	"net/url"
	"time"
)

// Session is the state produced by a successful login: the portal cookies and
// the identity recovered from the profile call. A Session is immutable once
// published; it becomes unusable by being dropped from its Authenticator.
type Session struct {
	// Username is the account username returned by the profile endpoint.
	Username string
	// DisplayName is the identifier the API uses in per-user URL paths.
	DisplayName string
	// CreatedAt is when the handshake completed.
	CreatedAt time.Time

	jar     http.CookieJar
	client  *http.Client
	headers http.Header
}

// Attach sets the session headers on req. Cookies are added from the session
// jar when the request goes out through Authenticator.Do.
func (s *Session) Attach(req *http.Request) {
	for k, v := range s.headers {
		if req.Header.Get(k) == "" {
			req.Header[k] = append([]string(nil), v...)
		}
	}
}

// Cookies returns the session cookies the jar would send to u.
func (s *Session) Cookies(u *url.URL) []*http.Cookie {
	if s == nil || s.jar == nil || u == nil {
		return nil
	}
	return s.jar.Cookies(u)
}
