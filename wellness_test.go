package garminconnect_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/garminconnect/internal/portaltest"
)

func TestClient_WellnessAccessors(t *testing.T) {
	t.Parallel()

	p := portaltest.New(t)
	c := loggedIn(t, p)

	tests := []struct {
		name  string
		path  string
		query map[string]string
		call  func(context.Context) (json.RawMessage, error)
	}{
		{
			name:  "body composition",
			path:  "/weight-service/weight/daterangesnapshot",
			query: map[string]string{"startDate": "2024-03-09", "endDate": "2024-03-09"},
			call: func(ctx context.Context) (json.RawMessage, error) {
				return c.GetBodyComposition(ctx, day)
			},
		},
		{
			name:  "heart rates",
			path:  "/wellness-service/wellness/dailyHeartRate/" + portaltest.DisplayName,
			query: map[string]string{"date": "2024-03-09"},
			call: func(ctx context.Context) (json.RawMessage, error) {
				return c.GetHeartRates(ctx, day)
			},
		},
		{
			name:  "sleep",
			path:  "/wellness-service/wellness/dailySleepData/" + portaltest.DisplayName,
			query: map[string]string{"date": "2024-03-09"},
			call: func(ctx context.Context) (json.RawMessage, error) {
				return c.GetSleepData(ctx, day)
			},
		},
		{
			name:  "steps",
			path:  "/wellness-service/wellness/dailySummaryChart/" + portaltest.DisplayName,
			query: map[string]string{"date": "2024-03-09"},
			call: func(ctx context.Context) (json.RawMessage, error) {
				return c.GetStepsData(ctx, day)
			},
		},
		{
			name: "hydration",
			path: "/usersummary-service/usersummary/hydration/daily/2024-03-09",
			call: func(ctx context.Context) (json.RawMessage, error) {
				return c.GetHydrationData(ctx, day)
			},
		},
		{
			name: "personal records",
			path: "/personalrecord-service/personalrecord/prs/" + portaltest.DisplayName,
			call: func(ctx context.Context) (json.RawMessage, error) {
				return c.GetPersonalRecords(ctx)
			},
		},
	}

	// Subtests share the client and the portal counters, so they run in order.
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := `{"endpoint":"` + tt.name + `"}`
			p.SetJSON(tt.path, http.StatusOK, body)
			p.ResetCounters()

			got, err := tt.call(context.Background())
			require.NoError(t, err)
			assert.Equal(t, body, string(got))
			assert.Equal(t, 1, p.Total())
			assert.Equal(t, 1, p.Hits("/proxy"+tt.path))

			q := p.LastQuery("/proxy" + tt.path)
			for k, v := range tt.query {
				assert.Equal(t, v, q.Get(k), k)
			}
		})
	}
}
