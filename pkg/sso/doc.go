// Package sso signs in to the Garmin Connect portal and keeps the resulting
// session for data calls.
//
// Login runs the web sign-in handshake: it loads the sign-in widget to collect
// seed cookies and the csrf token, posts the credentials, classifies the HTML
// answer, trades the service ticket for session cookies and finally reads the
// profile to recover the username. The session is published only when every
// step succeeded.
//
//	auth := sso.New(sso.Credentials{Email: email, Password: password},
//	    sso.WithLogger(log),
//	)
//	username, err := auth.Login(ctx)
//	if err != nil {
//	    // sso.IsAuthenticationError / IsConnectionError / IsTooManyRequests
//	}
//
//	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, auth.Endpoints().Proxy+"/device-service/deviceregistration/devices", nil)
//	resp, err := auth.Do(req)
//
// # Errors
//
// Every error wraps one of three kinds: ErrConnection (transport failures,
// cancellation, portal 5xx), ErrAuthentication (rejected or unrecognised
// handshake, no session, expired session) and ErrTooManyRequests. Nothing is
// retried and the Authenticator never logs in again on its own; after
// ErrSessionExpired the caller decides whether to call Login.
//
// # Concurrency
//
// Login and Logout are serialized per Authenticator. Do may be called from
// many goroutines; a 401 or 403 drops the session it was sent with, and only
// if that session is still the live one.
package sso
