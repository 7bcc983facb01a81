package garminconnect_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/garminconnect"
	"github.com/dmitrymomot/garminconnect/internal/portaltest"
)

const activityListPath = "/activitylist-service/activities/search/activities"

func TestClient_GetActivities(t *testing.T) {
	t.Parallel()

	p := portaltest.New(t)
	p.SetJSON(activityListPath, http.StatusOK, `[{"activityId":1}]`)
	c := loggedIn(t, p)

	got, err := c.GetActivities(context.Background(), 20, 10)
	require.NoError(t, err)
	assert.Equal(t, `[{"activityId":1}]`, string(got))

	q := p.LastQuery("/proxy" + activityListPath)
	assert.Equal(t, "20", q.Get("start"))
	assert.Equal(t, "10", q.Get("limit"))
}

func TestClient_GetActivitiesByDate(t *testing.T) {
	t.Parallel()

	p := portaltest.New(t)
	p.SetJSON(activityListPath, http.StatusOK, `[]`)
	c := loggedIn(t, p)

	_, err := c.GetActivitiesByDate(context.Background(), garminconnect.ActivityQuery{
		StartDate:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC),
		ActivityType: "running",
		Start:        40,
		Limit:        20,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, p.Total(), "paging is left to the caller")

	q := p.LastQuery("/proxy" + activityListPath)
	assert.Equal(t, "2024-01-01", q.Get("startDate"))
	assert.Equal(t, "2024-01-31", q.Get("endDate"))
	assert.Equal(t, "running", q.Get("activityType"))
	assert.Equal(t, "40", q.Get("start"))
	assert.Equal(t, "20", q.Get("limit"))

	_, err = c.GetActivitiesByDate(context.Background(), garminconnect.ActivityQuery{})
	require.NoError(t, err)
	q = p.LastQuery("/proxy" + activityListPath)
	assert.False(t, q.Has("startDate"))
	assert.False(t, q.Has("activityType"))
	assert.False(t, q.Has("limit"))
	assert.Equal(t, "0", q.Get("start"))
}

func TestClient_ActivityAccessors(t *testing.T) {
	t.Parallel()

	p := portaltest.New(t)
	c := loggedIn(t, p)
	const id = int64(13579)

	tests := []struct {
		name string
		path string
		call func(context.Context, int64) (json.RawMessage, error)
	}{
		{"exercise sets", "/activity-service/activity/13579", c.GetExerciseSets},
		{"splits", "/activity-service/activity/13579/splits", c.GetActivitySplits},
		{"split summaries", "/activity-service/activity/13579/split_summaries", c.GetActivitySplitSummaries},
		{"weather", "/activity-service/activity/13579/weather", c.GetActivityWeather},
		{"hr zones", "/activity-service/activity/13579/hrTimeInZones", c.GetActivityHRInTimezones},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p.SetJSON(tt.path, http.StatusOK, `{"activityId":13579}`)
			p.ResetCounters()

			got, err := tt.call(context.Background(), id)
			require.NoError(t, err)
			assert.Equal(t, `{"activityId":13579}`, string(got))
			assert.Equal(t, 1, p.Hits("/proxy"+tt.path))

			_, err = tt.call(context.Background(), 0)
			assert.ErrorIs(t, err, garminconnect.ErrInvalidActivityID)
			assert.Equal(t, 1, p.Total())
		})
	}
}

func TestClient_GetActivityDetails(t *testing.T) {
	t.Parallel()

	p := portaltest.New(t)
	const path = "/activity-service/activity/7/details"
	p.SetJSON(path, http.StatusOK, `{"metricDescriptors":[]}`)
	c := loggedIn(t, p)

	_, err := c.GetActivityDetails(context.Background(), 7, 0, 0)
	require.NoError(t, err)
	q := p.LastQuery("/proxy" + path)
	assert.Equal(t, "2000", q.Get("maxChartSize"))
	assert.Equal(t, "4000", q.Get("maxPolylineSize"))

	_, err = c.GetActivityDetails(context.Background(), 7, 100, 50)
	require.NoError(t, err)
	q = p.LastQuery("/proxy" + path)
	assert.Equal(t, "100", q.Get("maxChartSize"))
	assert.Equal(t, "50", q.Get("maxPolylineSize"))
}
