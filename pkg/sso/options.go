package sso

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
)

const (
	// DefaultTimeout bounds every single request of the handshake and of data calls.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent mimics a desktop browser; the portal serves the
	// sign-in widget differently to unknown agents.
	DefaultUserAgent = "Mozilla/5.0 (X11; Ubuntu; Linux x86_64; rv:48.0) Gecko/20100101 Firefox/50.0"

	// DefaultSignatureHeader and DefaultSignatureValue form the fixed header
	// pair the portal expects on credential and API requests.
	DefaultSignatureHeader = "NK"
	DefaultSignatureValue  = "NT"
)

// Endpoints holds the base URLs of the three portal hosts. Values carry no
// trailing slash.
type Endpoints struct {
	// SSO is the login subdomain, e.g. https://sso.garmin.com/sso.
	SSO string
	// Connect is the session-initiation host serving the modern web app.
	Connect string
	// Proxy is the main API prefix used by data calls.
	Proxy string
}

// DefaultEndpoints returns the production portal endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		SSO:     "https://sso.garmin.com/sso",
		Connect: "https://connect.garmin.com/modern",
		Proxy:   "https://connect.garmin.com/proxy",
	}
}

func (e Endpoints) normalized() Endpoints {
	return Endpoints{
		SSO:     strings.TrimSuffix(e.SSO, "/"),
		Connect: strings.TrimSuffix(e.Connect, "/"),
		Proxy:   strings.TrimSuffix(e.Proxy, "/"),
	}
}

func (e Endpoints) valid() bool {
	return e.SSO != "" && e.Connect != "" && e.Proxy != ""
}

type options struct {
	httpClient      *http.Client
	timeout         time.Duration
	logger          *slog.Logger
	userAgent       string
	endpoints       Endpoints
	signatureHeader string
	signatureValue  string
	locale          language.Tag
}

func defaultOptions() *options {
	return &options{
		timeout:         DefaultTimeout,
		logger:          slog.New(slog.DiscardHandler),
		userAgent:       DefaultUserAgent,
		endpoints:       DefaultEndpoints(),
		signatureHeader: DefaultSignatureHeader,
		signatureValue:  DefaultSignatureValue,
		locale:          language.AmericanEnglish,
	}
}

// Option configures an Authenticator.
type Option func(*options)

// WithHTTPClient sets the base HTTP client. Its Transport and CheckRedirect are
// reused; its Jar is ignored because every session owns a fresh jar.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout. Default is 10 seconds.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

// WithLogger sets the logger used for handshake diagnostics.
// Nothing is logged by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithUserAgent overrides the User-Agent sent on every request.
func WithUserAgent(ua string) Option {
	return func(o *options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithEndpoints points the authenticator at different portal hosts.
// Incomplete endpoint sets are ignored.
func WithEndpoints(e Endpoints) Option {
	return func(o *options) {
		if e.valid() {
			o.endpoints = e.normalized()
		}
	}
}

// WithSignature replaces the fixed signature header pair.
func WithSignature(header, value string) Option {
	return func(o *options) {
		if header != "" && value != "" {
			o.signatureHeader = header
			o.signatureValue = value
		}
	}
}

// WithLocale sets the locale announced to the sign-in widget.
func WithLocale(tag language.Tag) Option {
	return func(o *options) {
		if tag != language.Und {
			o.locale = tag
		}
	}
}

// widgetLocale renders the tag the way the sign-in widget expects it: "en_US".
func widgetLocale(tag language.Tag) string {
	base, _ := tag.Base()
	region, conf := tag.Region()
	if conf == language.No {
		return base.String()
	}
	return base.String() + "_" + region.String()
}

// acceptLanguage renders an Accept-Language header value preferring tag.
func acceptLanguage(tag language.Tag) string {
	base, _ := tag.Base()
	value := tag.String()
	if value != base.String() {
		value += "," + base.String() + ";q=0.7"
	}
	if base.String() != "en" {
		value += ",en;q=0.3"
	}
	return value
}
