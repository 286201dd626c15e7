package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFrom_FallsBackToGlobal(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	restore := Replace(zap.New(core))
	defer restore()

	From(context.Background()).Info("global")
	require.Equal(t, 1, logs.Len())

	scoped, scopedLogs := observer.New(zapcore.InfoLevel)
	ctx := ToContext(context.Background(), zap.New(scoped).With(RequestID("r-1")))
	From(ctx).Info("scoped", GrantType("password"))

	assert.Equal(t, 1, logs.Len())
	require.Equal(t, 1, scopedLogs.Len())
	fields := scopedLogs.All()[0].ContextMap()
	assert.Equal(t, "r-1", fields["request_id"])
	assert.Equal(t, "password", fields["grant_type"])
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("WARNING")
	require.NoError(t, err)
	assert.Equal(t, zapcore.WarnLevel, l)

	l, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, zapcore.InfoLevel, l)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
	assert.Equal(t, zapcore.InfoLevel, parseLevel("loud"))
}
