// Package portaltest provides an in-process fake of the Garmin Connect portal
// for tests. One httptest server hosts the SSO, Connect and Proxy prefixes.
package portaltest

import (
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/dmitrymomot/garminconnect/pkg/sso"
)

const (
	// Email and Password are the credentials the portal accepts by default.
	Email    = "user@example.com"
	Password = "correctpw"

	// DisplayName is the display name returned by the profile endpoint.
	DisplayName = "user-display"

	seedCookie    = "SSO_SEED"
	sessionCookie = "SESSIONID"
	csrfToken     = "3f9c2a71d0"
)

// LoginMode selects how the credential POST responds.
type LoginMode int

const (
	// LoginNormal checks credentials.
	LoginNormal LoginMode = iota
	// LoginRateLimited answers 429.
	LoginRateLimited
	// LoginLocked answers 200 with the account-locked page.
	LoginLocked
	// LoginMalformed answers 200 with a page the client cannot recognise.
	LoginMalformed
	// LoginSuccessWithoutTicket answers with the success title but no ticket.
	LoginSuccessWithoutTicket
)

type response struct {
	status      int
	contentType string
	body        []byte
}

// Portal is a fake portal. All methods are safe for concurrent use.
type Portal struct {
	t      testing.TB
	server *httptest.Server

	mu       sync.Mutex
	password string
	mode     LoginMode
	tickets  map[string]bool
	sessions map[string]bool
	routes   map[string]response
	hits     map[string]int
	queries  map[string]url.Values
	total    int
}

// New starts a portal and registers its shutdown with t.Cleanup.
func New(t testing.TB) *Portal {
	t.Helper()

	p := &Portal{
		t:        t,
		password: Password,
		tickets:  make(map[string]bool),
		sessions: make(map[string]bool),
		routes:   make(map[string]response),
		hits:     make(map[string]int),
		queries:  make(map[string]url.Values),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /sso/signin", p.signinPage)
	mux.HandleFunc("POST /sso/signin", p.signinSubmit)
	mux.HandleFunc("GET /modern/{$}", p.exchangeTicket)
	mux.HandleFunc("GET /modern/dashboard", p.dashboard)
	mux.HandleFunc("GET /modern/currentuser-service/user/info", p.userInfo)
	mux.HandleFunc("GET /modern/auth/logout/", p.logout)
	mux.HandleFunc("/proxy/", p.proxy)

	p.server = httptest.NewServer(p.count(mux))
	t.Cleanup(p.server.Close)
	return p
}

// URL returns the server base URL.
func (p *Portal) URL() string {
	return p.server.URL
}

// Endpoints returns sso.Endpoints pointing at this portal.
func (p *Portal) Endpoints() sso.Endpoints {
	return sso.Endpoints{
		SSO:     p.server.URL + "/sso",
		Connect: p.server.URL + "/modern",
		Proxy:   p.server.URL + "/proxy",
	}
}

// Close stops the server; later requests fail at the transport level.
func (p *Portal) Close() {
	p.server.Close()
}

// SetLoginMode changes how the next credential POSTs are answered.
func (p *Portal) SetLoginMode(m LoginMode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = m
}

// SetPassword changes the accepted password.
func (p *Portal) SetPassword(pw string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.password = pw
}

// SetJSON registers a JSON body served under a proxy path such as
// "/usersummary-service/usersummary/daily/user-display".
func (p *Portal) SetJSON(path string, status int, body string) {
	p.setRoute(path, response{status: status, contentType: "application/json", body: []byte(body)})
}

// SetRaw registers a binary body served under a proxy path.
func (p *Portal) SetRaw(path, contentType string, body []byte) {
	p.setRoute(path, response{status: http.StatusOK, contentType: contentType, body: body})
}

func (p *Portal) setRoute(path string, r response) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.routes["/proxy"+path] = r
}

// ExpireSessions makes the portal reject every session issued so far.
func (p *Portal) ExpireSessions() {
	p.mu.Lock()
	defer p.mu.Unlock()
	clear(p.sessions)
}

// Hits returns how many requests reached path (without query).
func (p *Portal) Hits(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits[path]
}

// LastQuery returns the query of the latest request to path.
func (p *Portal) LastQuery(path string) url.Values {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queries[path]
}

// Total returns the number of requests served.
func (p *Portal) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

// ResetCounters zeroes request counters.
func (p *Portal) ResetCounters() {
	p.mu.Lock()
	defer p.mu.Unlock()
	clear(p.hits)
	clear(p.queries)
	p.total = 0
}

func (p *Portal) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.mu.Lock()
		p.hits[r.URL.Path]++
		p.queries[r.URL.Path] = r.URL.Query()
		p.total++
		p.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (p *Portal) signinPage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("clientId") != "GarminConnect" {
		http.Error(w, "unknown client", http.StatusBadRequest)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: seedCookie, Value: uuid.NewString(), Path: "/sso"})
	writeHTML(w, http.StatusOK, "GARMIN Authentication Application",
		`<form method="post"><input type="hidden" name="_csrf" value="`+csrfToken+`" /></form>`)
}

func (p *Portal) signinSubmit(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	mode, password := p.mode, p.password
	p.mu.Unlock()

	switch mode {
	case LoginRateLimited:
		http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
		return
	case LoginLocked:
		writeHTML(w, http.StatusOK, "Account Locked", `<div id="status" class="error">Account locked</div>`)
		return
	case LoginMalformed:
		writeHTML(w, http.StatusOK, "Maintenance", `<p>We'll be back soon.</p>`)
		return
	case LoginSuccessWithoutTicket:
		writeHTML(w, http.StatusOK, "Success", `<p>Signed in.</p>`)
		return
	}

	if _, err := r.Cookie(seedCookie); err != nil || r.Header.Get(sso.DefaultSignatureHeader) != sso.DefaultSignatureValue {
		http.Error(w, "missing seed", http.StatusBadRequest)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("embed") != "false" || r.PostForm.Get("_csrf") != csrfToken {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("username") != Email || r.PostForm.Get("password") != password {
		writeHTML(w, http.StatusUnauthorized, "GARMIN Authentication Application",
			`<div id="status" class="error">Invalid sign in. (Passwords are case sensitive.)</div>`)
		return
	}

	ticket := "ST-" + strings.ReplaceAll(uuid.NewString(), "-", "") + "-cas"
	p.mu.Lock()
	p.tickets[ticket] = true
	p.mu.Unlock()

	responseURL := strings.ReplaceAll(p.server.URL+"/modern/?ticket="+ticket, "/", `\/`)
	writeHTML(w, http.StatusOK, "Success",
		`<script type="text/javascript">var response_url = "`+responseURL+`";</script>`)
}

func (p *Portal) exchangeTicket(w http.ResponseWriter, r *http.Request) {
	ticket := r.URL.Query().Get("ticket")
	p.mu.Lock()
	valid := p.tickets[ticket]
	delete(p.tickets, ticket)
	var id string
	if valid {
		id = uuid.NewString()
		p.sessions[id] = true
	}
	p.mu.Unlock()

	if !valid {
		http.Error(w, "invalid ticket", http.StatusUnauthorized)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: id, Path: "/", HttpOnly: true})
	http.Redirect(w, r, "/modern/dashboard", http.StatusFound)
}

func (p *Portal) dashboard(w http.ResponseWriter, r *http.Request) {
	if !p.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	writeHTML(w, http.StatusOK, "Garmin Connect", `<div id="app"></div>`)
}

func (p *Portal) userInfo(w http.ResponseWriter, r *http.Request) {
	if !p.authorized(r) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"username":    Email,
		"displayName": DisplayName,
		"locale":      "en",
	})
}

func (p *Portal) logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		p.mu.Lock()
		delete(p.sessions, c.Value)
		p.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", MaxAge: -1})
	w.WriteHeader(http.StatusOK)
}

func (p *Portal) proxy(w http.ResponseWriter, r *http.Request) {
	if !p.authorized(r) || r.Header.Get(sso.DefaultSignatureHeader) != sso.DefaultSignatureValue {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "unauthorized"})
		return
	}

	p.mu.Lock()
	resp, ok := p.routes[r.URL.Path]
	p.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "resource not found"})
		return
	}
	w.Header().Set("Content-Type", resp.contentType)
	w.WriteHeader(resp.status)
	_, _ = w.Write(resp.body)
}

func (p *Portal) authorized(r *http.Request) bool {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sessions[c.Value]
}

func writeHTML(w http.ResponseWriter, status int, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = fmt.Fprintf(w, "<!DOCTYPE html><html><head><title>%s</title></head><body>%s</body></html>",
		html.EscapeString(title), body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
