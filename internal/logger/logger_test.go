package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"tailor-backend/internal/config"
)

func TestInit_LevelFallback(t *testing.T) {
	defer zap.ReplaceGlobals(zap.NewNop())

	log, err := Init(config.LogConfig{Level: "nonsense", Environment: "development"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
	assert.Same(t, log, zap.L())

	log, err = Init(config.LogConfig{Level: "debug", Environment: "production"})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestFromContext(t *testing.T) {
	assert.Same(t, zap.L(), FromContext(context.Background()))

	scoped := zap.NewNop().With(zap.String("request_id", "r1"))
	ctx := WithContext(context.Background(), scoped)
	assert.Same(t, scoped, FromContext(ctx))
}
