package sso

import (
	"bytes"
	"io"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// outcome is the classification of the credential POST response.
type outcome int

const (
	outcomeMalformed outcome = iota
	outcomeSuccess
	outcomeInvalidCredentials
	outcomeRateLimited
)

func (o outcome) String() string {
	switch o {
	case outcomeSuccess:
		return "success"
	case outcomeInvalidCredentials:
		return "invalid_credentials"
	case outcomeRateLimited:
		return "rate_limited"
	default:
		return "malformed"
	}
}

// loginResult carries the outcome and, for outcomeSuccess only, the ticket.
type loginResult struct {
	outcome outcome
	ticket  string
}

// err maps a non-success outcome onto the package error kinds.
func (r loginResult) err() error {
	switch r.outcome {
	case outcomeSuccess:
		return nil
	case outcomeInvalidCredentials:
		return ErrInvalidCredentials
	case outcomeRateLimited:
		return ErrRateLimited
	default:
		return ErrMalformedResponse
	}
}

var ticketPattern = regexp.MustCompile(`ticket=(ST-[A-Za-z0-9._\-]+)`)

// rateLimitMarkers are matched case-insensitively against the page title and
// the error banner text.
var rateLimitMarkers = []string{"account locked", "account_locked", "too many"}

// loginPage is what the handshake needs from a portal HTML page.
type loginPage struct {
	title     string
	csrf      string
	errorText string
	hasError  bool
}

// parseLoginPage walks the HTML token stream once, collecting the title, the
// hidden _csrf input and the status banner. Broken markup yields whatever was
// collected before the tokenizer gave up.
func parseLoginPage(body []byte) loginPage {
	var (
		page      loginPage
		inTitle   bool
		bannerTag string
	)

	z := html.NewTokenizer(bytes.NewReader(body))
	for {
		switch z.Next() {
		case html.ErrorToken:
			page.title = strings.TrimSpace(page.title)
			page.errorText = strings.TrimSpace(page.errorText)
			return page

		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "title":
				inTitle = true
			case "input":
				if attr(tok, "name") == "_csrf" && page.csrf == "" {
					page.csrf = attr(tok, "value")
				}
			default:
				if bannerTag == "" && isErrorBanner(tok) {
					page.hasError = true
					bannerTag = tok.Data
				}
			}

		case html.EndTagToken:
			tok := z.Token()
			if tok.Data == "title" {
				inTitle = false
			} else if tok.Data == bannerTag {
				bannerTag = ""
			}

		case html.TextToken:
			text := string(z.Text())
			if inTitle {
				page.title += text
			}
			if bannerTag != "" {
				page.errorText += text
			}
		}
	}
}

func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// isErrorBanner matches the widget's status element in its error state,
// e.g. <div id="status" class="error"> or <div id="status-error">.
func isErrorBanner(tok html.Token) bool {
	id := attr(tok, "id")
	if id == "status-error" {
		return true
	}
	if id == "status" || strings.HasPrefix(id, "login-status") {
		for _, class := range strings.Fields(attr(tok, "class")) {
			if class == "error" {
				return true
			}
		}
	}
	return false
}

// classifyLogin turns the credential POST response into a loginResult.
// A page that matches none of the known shapes is malformed.
func classifyLogin(status int, body []byte) loginResult {
	if status == 429 {
		return loginResult{outcome: outcomeRateLimited}
	}

	page := parseLoginPage(body)
	if strings.EqualFold(page.title, "success") {
		if m := ticketPattern.FindSubmatch(body); m != nil {
			return loginResult{outcome: outcomeSuccess, ticket: string(m[1])}
		}
		return loginResult{outcome: outcomeMalformed}
	}

	probe := strings.ToLower(page.title + " " + page.errorText)
	for _, marker := range rateLimitMarkers {
		if strings.Contains(probe, marker) {
			return loginResult{outcome: outcomeRateLimited}
		}
	}

	if status == 401 || page.hasError {
		return loginResult{outcome: outcomeInvalidCredentials}
	}
	return loginResult{outcome: outcomeMalformed}
}

// signinQuery is the fixed parameter set identifying the modern sign-in widget.
func signinQuery(e Endpoints, locale string) url.Values {
	service := e.Connect + "/"
	q := url.Values{}
	q.Set("service", service)
	q.Set("webhost", service)
	q.Set("source", service)
	q.Set("redirectAfterAccountLoginUrl", service)
	q.Set("redirectAfterAccountCreationUrl", service)
	q.Set("gauthHost", e.SSO)
	q.Set("locale", locale)
	q.Set("id", "gauth-widget")
	q.Set("clientId", "GarminConnect")
	q.Set("rememberMeShown", "true")
	q.Set("rememberMeChecked", "false")
	q.Set("createAccountShown", "true")
	q.Set("openCreateAccount", "false")
	q.Set("displayNameShown", "false")
	q.Set("consumeServiceTicket", "false")
	q.Set("initialFocus", "true")
	q.Set("embedWidget", "false")
	q.Set("generateExtraServiceTicket", "true")
	q.Set("generateTwoExtraServiceTickets", "true")
	q.Set("generateNoServiceTicket", "false")
	q.Set("globalOptInShown", "true")
	q.Set("globalOptInChecked", "false")
	q.Set("mobile", "false")
	q.Set("connectLegalTerms", "true")
	q.Set("showTermsOfUse", "false")
	q.Set("showPrivacyPolicy", "false")
	q.Set("showConnectLegalAge", "false")
	q.Set("locationPromptShown", "true")
	q.Set("showPassword", "true")
	q.Set("useCustomHeader", "false")
	q.Set("mfaRequired", "false")
	q.Set("performMFACheck", "false")
	q.Set("rememberMyBrowserShown", "false")
	q.Set("rememberMyBrowserChecked", "false")
	return q
}

// credentialForm builds the POST body for step two.
func credentialForm(c Credentials, csrf string) url.Values {
	form := url.Values{}
	form.Set("username", c.Email)
	form.Set("password", c.Password)
	form.Set("embed", "false")
	if csrf != "" {
		form.Set("_csrf", csrf)
	}
	return form
}

// maxPageSize caps how much of an HTML or JSON handshake body is read.
const maxPageSize = 2 << 20

func readPage(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxPageSize))
}
