package logging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	level, err := parseLevel("DEBUG")
	require.NoError(t, err)
	require.Equal(t, DebugLevel, level)

	// Case-insensitive, matching what the rendered ConfigMaps carry.
	level, err = parseLevel("info")
	require.NoError(t, err)
	require.Equal(t, InfoLevel, level)

	// A level logrus knows but logr cannot express.
	_, err = parseLevel("warning")
	require.ErrorContains(t, err, `unsupported log level "warning"`)

	_, err = parseLevel("noisy")
	require.Error(t, err)
}

func TestContextWithLogger(t *testing.T) {
	testLogger := NewLogger(DebugLevel)
	ctx := ContextWithLogger(context.Background(), testLogger)
	require.Same(t, testLogger, ctx.Value(loggerContextKey{}))
}

func TestLoggerFromContext(t *testing.T) {
	logger := LoggerFromContext(context.Background())
	// The global logger backstops a context that never had one attached.
	require.NotNil(t, logger)
	require.Same(t, globalLogger, logger)

	testLogger := NewLogger(DebugLevel)
	ctx := ContextWithLogger(context.Background(), testLogger)
	require.Same(t, testLogger, LoggerFromContext(ctx))
}

func TestWithValues(t *testing.T) {
	logger := NewLogger(InfoLevel)
	derived := logger.WithValues("service", "dawn", "track", "prod")
	require.NotNil(t, derived)
	require.NotSame(t, logger, derived)
}
