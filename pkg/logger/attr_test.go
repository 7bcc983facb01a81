package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/garminconnect/pkg/logger"
)

func TestGroup(t *testing.T) {
	attr := logger.Group("req", slog.String("id", "1"), slog.Int("n", 2))
	require.Equal(t, "req", attr.Key)
	require.Equal(t, slog.KindGroup, attr.Value.Kind())
	g := attr.Value.Group()
	require.Len(t, g, 2)
	assert.Equal(t, "id", g[0].Key)
	assert.Equal(t, "n", g[1].Key)
}

func TestError(t *testing.T) {
	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	empty := logger.Error(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestURL_StripsQuery(t *testing.T) {
	attr := logger.URL("https://connect.example.com/modern/?ticket=ST-123")
	assert.Equal(t, "url", attr.Key)
	assert.Equal(t, "https://connect.example.com/modern/", attr.Value.String())

	attr = logger.URL("https://connect.example.com/modern")
	assert.Equal(t, "https://connect.example.com/modern", attr.Value.String())
}

func TestScalarAttrs(t *testing.T) {
	assert.Equal(t, int64(401), logger.StatusCode(401).Value.Int64())
	assert.Equal(t, "step", logger.Step("x").Key)
	assert.Equal(t, "outcome", logger.Outcome("x").Key)
	assert.Equal(t, "username", logger.Username("x").Key)
	assert.Equal(t, int64(7), logger.ActivityID(7).Value.Int64())
	assert.Equal(t, time.Second, logger.Duration(time.Second).Value.Duration())
}
