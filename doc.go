// Package garminconnect is a client for the Garmin Connect web portal.
//
// The client signs in through the portal's SSO handshake (see pkg/sso) and
// exposes thin accessors for the user's health, device and activity data.
// Every accessor issues exactly one authenticated GET and hands the JSON body
// back unchanged as json.RawMessage; decoding is up to the caller.
//
// Basic Usage:
//
//	client := garminconnect.New(sso.Credentials{Email: email, Password: password},
//		garminconnect.WithLogger(log),
//	)
//	if _, err := client.Login(ctx); err != nil {
//		return err
//	}
//	defer client.Logout(context.Background())
//
//	summary, err := client.GetUserSummary(ctx, time.Now())
//
// Configuration from the environment:
//
//	cfg, err := garminconnect.LoadConfig(config.WithEnvFile(".env"), config.WithOptionalEnvFiles())
//	if err != nil {
//		return err
//	}
//	client, err := garminconnect.NewFromConfig(cfg)
//
// Errors:
//
// Session and transport failures carry the kinds defined in pkg/sso
// (sso.ErrConnection, sso.ErrAuthentication, sso.ErrTooManyRequests).
// Any other non-2xx answer is an *APIError. The client never logs in again
// by itself: after sso.ErrSessionExpired call Login and retry.
//
// Exports:
//
// DownloadActivity returns the raw file; ExportActivity stores it through an
// export.Storage (local directory or S3) under "activities/<id>.<ext>".
package garminconnect
