package garminconnect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/garminconnect/pkg/sso"
)

const (
	// maxErrorBody bounds how much of an error response is read for its message.
	maxErrorBody = 64 << 10
	// maxJSONBody bounds a JSON response. Downloads are not capped.
	maxJSONBody = 32 << 20
)

// getJSON issues one authenticated GET to the proxy API and returns the body
// as is. An empty body yields a nil RawMessage; anything else must be valid JSON.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
	body, err := c.get(ctx, path, query, "application/json", maxJSONBody)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, nil
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: %s: response is not JSON", sso.ErrMalformedResponse, path)
	}
	return json.RawMessage(body), nil
}

// get issues one authenticated GET to {Proxy}/{path}?{query} and reads at
// most limit bytes of a 2xx body. A limit of 0 reads it all.
func (c *Client) get(ctx context.Context, path string, query url.Values, accept string, limit int64) ([]byte, error) {
	target := c.auth.Endpoints().Proxy + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", sso.ErrInvalidConfiguration, err)
	}
	req.Header.Set("Accept", accept)

	resp, err := c.auth.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp)
	}

	var r io.Reader = resp.Body
	if limit > 0 {
		r = io.LimitReader(resp.Body, limit)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", sso.ErrTransportFailure, err)
	}
	return body, nil
}

// newAPIError builds an APIError, taking the message from a JSON body when
// it has one.
func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}
