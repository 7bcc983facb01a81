package garminconnect

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"time"
)

const (
	// DefaultMaxChartSize and DefaultMaxPolylineSize are the sampling limits
	// GetActivityDetails uses when called with zero values.
	DefaultMaxChartSize    = 2000
	DefaultMaxPolylineSize = 4000

	activityListPath = "activitylist-service/activities/search/activities"
)

// ActivityQuery filters GetActivitiesByDate. Zero values are omitted from
// the request.
type ActivityQuery struct {
	StartDate    time.Time
	EndDate      time.Time
	ActivityType string // e.g. running, cycling, swimming, hiking
	Start        int
	Limit        int
}

// GetActivities returns one page of activities, newest first.
func (c *Client) GetActivities(ctx context.Context, start, limit int) (json.RawMessage, error) {
	return c.getJSON(ctx, activityListPath, url.Values{
		"start": {strconv.Itoa(start)},
		"limit": {strconv.Itoa(limit)},
	})
}

// GetActivitiesByDate returns one page of activities in the query's date range.
// Paging is left to the caller through Start and Limit.
func (c *Client) GetActivitiesByDate(ctx context.Context, q ActivityQuery) (json.RawMessage, error) {
	query := url.Values{}
	if !q.StartDate.IsZero() {
		query.Set("startDate", formatDate(q.StartDate))
	}
	if !q.EndDate.IsZero() {
		query.Set("endDate", formatDate(q.EndDate))
	}
	if q.ActivityType != "" {
		query.Set("activityType", q.ActivityType)
	}
	query.Set("start", strconv.Itoa(q.Start))
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	return c.getJSON(ctx, activityListPath, query)
}

// GetExerciseSets returns the activity record including its exercise sets.
func (c *Client) GetExerciseSets(ctx context.Context, activityID int64) (json.RawMessage, error) {
	return c.getActivity(ctx, activityID, "", nil)
}

// GetActivitySplits returns the laps of an activity.
func (c *Client) GetActivitySplits(ctx context.Context, activityID int64) (json.RawMessage, error) {
	return c.getActivity(ctx, activityID, "/splits", nil)
}

// GetActivitySplitSummaries returns the split summaries of an activity.
func (c *Client) GetActivitySplitSummaries(ctx context.Context, activityID int64) (json.RawMessage, error) {
	return c.getActivity(ctx, activityID, "/split_summaries", nil)
}

// GetActivityWeather returns the weather recorded for an activity.
func (c *Client) GetActivityWeather(ctx context.Context, activityID int64) (json.RawMessage, error) {
	return c.getActivity(ctx, activityID, "/weather", nil)
}

// GetActivityHRInTimezones returns the time spent in each heart rate zone.
func (c *Client) GetActivityHRInTimezones(ctx context.Context, activityID int64) (json.RawMessage, error) {
	return c.getActivity(ctx, activityID, "/hrTimeInZones", nil)
}

// GetActivityDetails returns the sampled metrics and polyline of an activity.
// Non-positive sizes fall back to DefaultMaxChartSize and DefaultMaxPolylineSize.
func (c *Client) GetActivityDetails(ctx context.Context, activityID int64, maxChartSize, maxPolylineSize int) (json.RawMessage, error) {
	if maxChartSize <= 0 {
		maxChartSize = DefaultMaxChartSize
	}
	if maxPolylineSize <= 0 {
		maxPolylineSize = DefaultMaxPolylineSize
	}
	return c.getActivity(ctx, activityID, "/details", url.Values{
		"maxChartSize":    {strconv.Itoa(maxChartSize)},
		"maxPolylineSize": {strconv.Itoa(maxPolylineSize)},
	})
}

func (c *Client) getActivity(ctx context.Context, activityID int64, suffix string, query url.Values) (json.RawMessage, error) {
	if activityID <= 0 {
		return nil, ErrInvalidActivityID
	}
	return c.getJSON(ctx, "activity-service/activity/"+strconv.FormatInt(activityID, 10)+suffix, query)
}
