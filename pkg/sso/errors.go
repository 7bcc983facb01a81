package sso

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure surfaced by this package wraps exactly one of them,
// so callers can branch with errors.Is without caring about the detailed reason.
var (
	ErrConnection      = errors.New("garmin connect: connection error")
	ErrAuthentication  = errors.New("garmin connect: authentication error")
	ErrTooManyRequests = errors.New("garmin connect: too many requests")
)

// Detailed reasons, each wrapping one of the kinds above.
var (
	ErrNotLoggedIn          = fmt.Errorf("%w: not logged in", ErrAuthentication)
	ErrInvalidCredentials   = fmt.Errorf("%w: invalid credentials", ErrAuthentication)
	ErrMissingCredentials   = fmt.Errorf("%w: email and password are required", ErrAuthentication)
	ErrMalformedResponse    = fmt.Errorf("%w: unexpected handshake response", ErrAuthentication)
	ErrSessionExpired       = fmt.Errorf("%w: session is no longer accepted", ErrAuthentication)
	ErrRateLimited          = fmt.Errorf("%w: portal rate limit reached", ErrTooManyRequests)
	ErrTransportFailure     = fmt.Errorf("%w: request failed", ErrConnection)
	ErrPortalUnavailable    = fmt.Errorf("%w: portal unavailable", ErrConnection)
	ErrInvalidConfiguration = fmt.Errorf("%w: invalid configuration", ErrConnection)
)

// IsConnectionError reports whether err is a transport-level failure.
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnection)
}

// IsAuthenticationError reports whether err is a credential, handshake or session failure.
func IsAuthenticationError(err error) bool {
	return errors.Is(err, ErrAuthentication)
}

// IsTooManyRequests reports whether the portal signaled rate limiting.
func IsTooManyRequests(err error) bool {
	return errors.Is(err, ErrTooManyRequests)
}
