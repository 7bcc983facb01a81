package portaltest

import (
	"net"
	"net/http"
	"strings"
	"sync/atomic"
)

// FailingTransport fails every request whose path has FailPrefix with a DNS
// error and forwards the rest to Base (http.DefaultTransport when nil).
type FailingTransport struct {
	Base       http.RoundTripper
	FailPrefix string

	failures atomic.Int64
}

func (t *FailingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if strings.HasPrefix(req.URL.Path, t.FailPrefix) {
		t.failures.Add(1)
		return nil, &net.DNSError{Err: "no such host", Name: req.URL.Host, IsNotFound: true}
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// Failures returns how many requests were failed.
func (t *FailingTransport) Failures() int64 {
	return t.failures.Load()
}
