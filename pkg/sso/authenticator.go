package sso

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/dmitrymomot/garminconnect/pkg/logger"
)

// Authenticator establishes, holds and invalidates the single portal session
// used by all data calls. It is safe for concurrent use: logins are
// serialized, data calls share the live session read-only.
// Zero value is not usable; use New to create instances.
type Authenticator struct {
	creds Credentials
	opts  *options

	// loginMu serializes Login and Logout.
	loginMu sync.Mutex

	mu      sync.RWMutex
	session *Session
	expired bool
}

// New creates an Authenticator for creds. No network call is made.
func New(creds Credentials, opts ...Option) *Authenticator {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Authenticator{creds: creds, opts: o}
}

// Endpoints returns the portal endpoints in use.
func (a *Authenticator) Endpoints() Endpoints {
	return a.opts.endpoints
}

// Login runs the sign-in handshake and publishes a new session on success,
// returning the account username. A failed or canceled Login leaves the
// current session state as it was.
func (a *Authenticator) Login(ctx context.Context) (string, error) {
	if err := a.creds.Validate(); err != nil {
		return "", err
	}

	a.loginMu.Lock()
	defer a.loginMu.Unlock()

	ctx = logger.ContextWithAttrs(ctx, logger.LoginID(uuid.NewString()))
	a.opts.logger.DebugContext(ctx, "login started", slog.Any("credentials", a.creds))

	session, err := a.handshake(ctx)
	if err != nil {
		a.opts.logger.DebugContext(ctx, "login failed", logger.Error(err))
		return "", err
	}

	a.mu.Lock()
	a.session = session
	a.expired = false
	a.mu.Unlock()

	a.opts.logger.DebugContext(ctx, "login succeeded", logger.Username(session.Username))
	return session.Username, nil
}

// EnsureSession returns the live session. It never logs in by itself:
// ErrNotLoggedIn is returned before the first Login or after Logout, and
// ErrSessionExpired after the portal rejected the session.
func (a *Authenticator) EnsureSession() (*Session, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.session == nil {
		if a.expired {
			return nil, ErrSessionExpired
		}
		return nil, ErrNotLoggedIn
	}
	return a.session, nil
}

// Invalidate drops s if it is still the live session and reports whether it
// did. A rejection seen on an older session never clears a newer one.
func (a *Authenticator) Invalidate(s *Session) bool {
	if s == nil {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session != s {
		return false
	}
	a.session = nil
	a.expired = true
	return true
}

// Logout clears the local session and, if there was one, tells the portal.
// The remote call is best effort: a failure is logged at warn level and the
// session is gone either way. Without a session Logout is a no-op.
func (a *Authenticator) Logout(ctx context.Context) {
	a.loginMu.Lock()
	defer a.loginMu.Unlock()

	a.mu.Lock()
	s := a.session
	a.session = nil
	a.expired = false
	a.mu.Unlock()

	if s == nil {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.opts.endpoints.Connect+"/auth/logout/?url=", nil)
	if err != nil {
		a.opts.logger.WarnContext(ctx, "remote logout skipped", logger.Error(err))
		return
	}
	s.Attach(req)

	resp, err := s.client.Do(req)
	if err != nil {
		a.opts.logger.WarnContext(ctx, "remote logout failed", logger.Error(err))
		return
	}
	drain(resp)
	a.opts.logger.DebugContext(ctx, "logged out", logger.StatusCode(resp.StatusCode))
}

// Do sends req with the live session attached. Transport failures become
// ErrConnection. A 401 or 403 invalidates the session and returns
// ErrSessionExpired; a 429 returns ErrRateLimited. Any other response is
// returned as is and the caller must close its body.
func (a *Authenticator) Do(req *http.Request) (*http.Response, error) {
	s, err := a.EnsureSession()
	if err != nil {
		return nil, err
	}
	s.Attach(req)

	ctx := req.Context()
	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransportFailure, err)
	}

	a.opts.logger.DebugContext(ctx, "api request",
		logger.Method(req.Method),
		logger.URL(req.URL.String()),
		logger.StatusCode(resp.StatusCode),
		logger.Duration(time.Since(start)),
	)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		drain(resp)
		if a.Invalidate(s) {
			a.opts.logger.DebugContext(ctx, "session rejected by portal", logger.Username(s.Username))
		}
		return nil, ErrSessionExpired
	case http.StatusTooManyRequests:
		drain(resp)
		return nil, ErrRateLimited
	}
	return resp, nil
}

// handshake runs the five login steps on a fresh cookie jar and returns the
// resulting session without publishing it.
func (a *Authenticator) handshake(ctx context.Context) (*Session, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("%w: cookie jar: %w", ErrInvalidConfiguration, err)
	}
	client := a.newHTTPClient(jar)
	e := a.opts.endpoints
	signinURL := e.SSO + "/signin?" + signinQuery(e, widgetLocale(a.opts.locale)).Encode()

	// 1. Sign-in page: seed cookies and the optional csrf token.
	req, err := a.newRequest(ctx, http.MethodGet, signinURL, nil)
	if err != nil {
		return nil, err
	}
	resp, body, err := a.send(ctx, client, "signin_page", req)
	if err != nil {
		return nil, err
	}
	if err := stepStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	csrf := parseLoginPage(body).csrf
	referer := resp.Request.URL.String()

	// 2. Credentials.
	form := credentialForm(a.creds, csrf)
	req, err = a.newRequest(ctx, http.MethodPost, signinURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Origin", originOf(e.SSO))
	req.Header.Set("Referer", referer)
	resp, body, err = a.send(ctx, client, "credentials", req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: status %d", ErrPortalUnavailable, resp.StatusCode)
	}

	// 3. Classify.
	result := classifyLogin(resp.StatusCode, body)
	a.opts.logger.DebugContext(ctx, "credentials classified", logger.Outcome(result.outcome.String()))
	if err := result.err(); err != nil {
		return nil, err
	}

	// 4. Ticket exchange; the client follows the redirect chain.
	req, err = a.newRequest(ctx, http.MethodGet, e.Connect+"/?ticket="+url.QueryEscape(result.ticket), nil)
	if err != nil {
		return nil, err
	}
	resp, _, err = a.send(ctx, client, "ticket_exchange", req)
	if err != nil {
		return nil, err
	}
	if err := stepStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	connectURL, err := url.Parse(e.Connect + "/")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	if len(jar.Cookies(connectURL)) == 0 {
		return nil, fmt.Errorf("%w: ticket exchange set no session cookies", ErrMalformedResponse)
	}

	// 5. Profile: confirms the session and recovers the identity.
	req, err = a.newRequest(ctx, http.MethodGet, e.Connect+"/currentuser-service/user/info", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, body, err = a.send(ctx, client, "profile", req)
	if err != nil {
		return nil, err
	}
	if err := stepStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	var info struct {
		Username    string `json:"username"`
		DisplayName string `json:"displayName"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("%w: profile: %w", ErrMalformedResponse, err)
	}
	if info.Username == "" {
		return nil, fmt.Errorf("%w: profile has no username", ErrMalformedResponse)
	}
	if info.DisplayName == "" {
		info.DisplayName = info.Username
	}

	return &Session{
		Username:    info.Username,
		DisplayName: info.DisplayName,
		CreatedAt:   time.Now(),
		jar:         jar,
		client:      client,
		headers:     a.sessionHeaders(),
	}, nil
}

// send performs one handshake request and reads the whole body.
func (a *Authenticator) send(ctx context.Context, client *http.Client, step string, req *http.Request) (*http.Response, []byte, error) {
	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrTransportFailure, step, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := readPage(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: read body: %w", ErrTransportFailure, step, err)
	}

	a.opts.logger.DebugContext(ctx, "handshake step finished",
		logger.Step(step),
		logger.URL(resp.Request.URL.String()),
		logger.StatusCode(resp.StatusCode),
		logger.Duration(time.Since(start)),
	)
	return resp, body, nil
}

func (a *Authenticator) newRequest(ctx context.Context, method, target string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	req.Header.Set("User-Agent", a.opts.userAgent)
	req.Header.Set("Accept-Language", acceptLanguage(a.opts.locale))
	req.Header.Set(a.opts.signatureHeader, a.opts.signatureValue)
	return req, nil
}

// newHTTPClient derives a client bound to jar from the configured base client.
func (a *Authenticator) newHTTPClient(jar http.CookieJar) *http.Client {
	c := &http.Client{Jar: jar, Timeout: a.opts.timeout}
	if base := a.opts.httpClient; base != nil {
		c.Transport = base.Transport
		c.CheckRedirect = base.CheckRedirect
	}
	return c
}

func (a *Authenticator) sessionHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", a.opts.userAgent)
	h.Set("Accept", "application/json")
	h.Set(a.opts.signatureHeader, a.opts.signatureValue)
	return h
}

// stepStatus classifies the status of a non-credential handshake step.
func stepStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests:
		return ErrRateLimited
	case code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: status %d", ErrPortalUnavailable, code)
	default:
		return fmt.Errorf("%w: status %d", ErrMalformedResponse, code)
	}
}

func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

// drain discards a bounded amount of the body so the connection can be reused.
func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
	_ = resp.Body.Close()
}
