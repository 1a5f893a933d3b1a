package logger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meshbrowse/logger"
)

func TestNew_Levels(t *testing.T) {
	for _, level := range []string{"", "debug", "info", "warn", "error", "bogus"} {
		l, err := logger.New(logger.Config{Level: level, OutputPaths: []string{"stderr"}})
		require.NoError(t, err, level)
		l.Debug("debug", logger.String("level", level))
		l.Warn("warn", logger.Error(errors.New("boom")))
	}
}

func TestNew_Development(t *testing.T) {
	l, err := logger.New(logger.Config{Level: "debug", Development: true})
	require.NoError(t, err)
	l.With(logger.Int("n", 1)).Info("dev")
}

func TestContextRoundTrip(t *testing.T) {
	l, err := logger.New(logger.Config{Level: "warn"})
	require.NoError(t, err)

	ctx := logger.WithContext(context.Background(), l)
	assert.Same(t, l, logger.FromContext(ctx))
}

func TestFromContext_DefaultsToNop(t *testing.T) {
	l := logger.FromContext(context.Background())
	require.NotNil(t, l)
	assert.IsType(t, &logger.NoOpLogger{}, l)
	assert.NoError(t, l.Sync())
}
