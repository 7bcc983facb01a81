package garminconnect

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/dmitrymomot/garminconnect/pkg/sso"
)

// GetUserSummary returns the daily activity summary for date.
// The portal answers a stale session with a privacy-protected summary instead
// of a 401; that answer drops the session and returns sso.ErrSessionExpired.
func (c *Client) GetUserSummary(ctx context.Context, date time.Time) (json.RawMessage, error) {
	s, err := c.auth.EnsureSession()
	if err != nil {
		return nil, err
	}

	body, err := c.getJSON(ctx, "usersummary-service/usersummary/daily/"+url.PathEscape(s.DisplayName),
		url.Values{"calendarDate": {formatDate(date)}})
	if err != nil {
		return nil, err
	}

	var probe struct {
		PrivacyProtected bool `json:"privacyProtected"`
	}
	if json.Unmarshal(body, &probe) == nil && probe.PrivacyProtected {
		if c.auth.Invalidate(s) {
			c.logger.DebugContext(ctx, "privacy protected summary, session dropped")
		}
		return nil, sso.ErrSessionExpired
	}
	return body, nil
}

// GetBodyComposition returns the weight and body composition snapshot for date.
func (c *Client) GetBodyComposition(ctx context.Context, date time.Time) (json.RawMessage, error) {
	d := formatDate(date)
	return c.getJSON(ctx, "weight-service/weight/daterangesnapshot", url.Values{
		"startDate": {d},
		"endDate":   {d},
	})
}

// GetHeartRates returns the daily heart rate data for date.
func (c *Client) GetHeartRates(ctx context.Context, date time.Time) (json.RawMessage, error) {
	return c.getUserDaily(ctx, "wellness-service/wellness/dailyHeartRate/", date)
}

// GetSleepData returns the sleep data for the night ending on date.
func (c *Client) GetSleepData(ctx context.Context, date time.Time) (json.RawMessage, error) {
	return c.getUserDaily(ctx, "wellness-service/wellness/dailySleepData/", date)
}

// GetStepsData returns the step chart for date.
func (c *Client) GetStepsData(ctx context.Context, date time.Time) (json.RawMessage, error) {
	return c.getUserDaily(ctx, "wellness-service/wellness/dailySummaryChart/", date)
}

// GetHydrationData returns the hydration log for date.
func (c *Client) GetHydrationData(ctx context.Context, date time.Time) (json.RawMessage, error) {
	return c.getJSON(ctx, "usersummary-service/usersummary/hydration/daily/"+formatDate(date), nil)
}

// GetPersonalRecords returns the personal records of the user.
func (c *Client) GetPersonalRecords(ctx context.Context) (json.RawMessage, error) {
	s, err := c.auth.EnsureSession()
	if err != nil {
		return nil, err
	}
	return c.getJSON(ctx, "personalrecord-service/personalrecord/prs/"+url.PathEscape(s.DisplayName), nil)
}

// getUserDaily serves the wellness endpoints keyed by display name and ?date=.
func (c *Client) getUserDaily(ctx context.Context, prefix string, date time.Time) (json.RawMessage, error) {
	s, err := c.auth.EnsureSession()
	if err != nil {
		return nil, err
	}
	return c.getJSON(ctx, prefix+url.PathEscape(s.DisplayName), url.Values{"date": {formatDate(date)}})
}

func formatDate(t time.Time) string {
	return t.Format(time.DateOnly)
}
