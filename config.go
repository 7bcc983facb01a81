package garminconnect

import (
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"

	"github.com/dmitrymomot/garminconnect/pkg/config"
	"github.com/dmitrymomot/garminconnect/pkg/sso"
)

// EnvPrefix is prepended to every Config variable.
const EnvPrefix = "GARMIN_"

// Config is the client configuration read from GARMIN_* variables.
type Config struct {
	Email     string        `env:"EMAIL"`
	Password  string        `env:"PASSWORD"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"10s"`
	UserAgent string        `env:"USER_AGENT"`
	Locale    string        `env:"LOCALE" envDefault:"en-US"`

	SSOURL     string `env:"SSO_URL" envDefault:"https://sso.garmin.com/sso"`
	ConnectURL string `env:"CONNECT_URL" envDefault:"https://connect.garmin.com/modern"`
	ProxyURL   string `env:"PROXY_URL" envDefault:"https://connect.garmin.com/proxy"`
}

// LoadConfig reads Config from the environment. opts are applied after the
// GARMIN_ prefix, e.g. config.WithEnvFile(".env").
func LoadConfig(opts ...config.Option) (Config, error) {
	return config.Load[Config](append([]config.Option{config.WithPrefix(EnvPrefix)}, opts...)...)
}

// Validate reports every invalid field at once as a ValidationError.
func (c Config) Validate() error {
	errs := make(ValidationError)

	if strings.TrimSpace(c.Email) == "" {
		errs.Add("email", "is required")
	}
	if c.Password == "" {
		errs.Add("password", "is required")
	}
	if c.Timeout < 0 {
		errs.Add("timeout", "must not be negative")
	}
	if _, err := language.Parse(c.Locale); err != nil {
		errs.Add("locale", "is not a valid language tag")
	}
	for field, raw := range map[string]string{
		"sso_url":     c.SSOURL,
		"connect_url": c.ConnectURL,
		"proxy_url":   c.ProxyURL,
	} {
		if !isHTTPURL(raw) {
			errs.Add(field, "must be an absolute http(s) URL")
		}
	}

	if errs.IsEmpty() {
		return nil
	}
	return errs
}

// Credentials returns the credentials part of c.
func (c Config) Credentials() sso.Credentials {
	return sso.Credentials{Email: strings.TrimSpace(c.Email), Password: c.Password}
}

// SSOOptions converts c into authenticator options. c must be valid.
func (c Config) SSOOptions() []sso.Option {
	opts := []sso.Option{
		sso.WithTimeout(c.Timeout),
		sso.WithUserAgent(c.UserAgent),
		sso.WithEndpoints(sso.Endpoints{SSO: c.SSOURL, Connect: c.ConnectURL, Proxy: c.ProxyURL}),
	}
	if tag, err := language.Parse(c.Locale); err == nil {
		opts = append(opts, sso.WithLocale(tag))
	}
	return opts
}

// NewFromConfig validates cfg and creates a Client. opts are applied after
// the options derived from cfg.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return New(cfg.Credentials(), append([]Option{WithSSOOptions(cfg.SSOOptions()...)}, opts...)...), nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
