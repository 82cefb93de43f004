package logger

import (
	"context"
	"errors"
	"testing"

	ctxutil "github.com/InventorsDev/inventor-backend-sub000/pkg/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestContextLogBuilder_AttachesContextFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := FromZap(zap.New(core))

	ctx := ctxutil.WithRequestInfo(context.Background(), ctxutil.RequestInfo{RequestID: "req-1", ClientIP: "10.0.0.1"})
	ctx = ctxutil.WithUser(ctx, "user-9", "ADMIN")
	ctx = ctxutil.WithFunction(ctx, "service", "ListUsers")

	log.InfoWithContext(ctx, "listed").Int("count", 3).Err(errors.New("boom")).Log()

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "listed", entry.Message)

	fields := entry.ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "10.0.0.1", fields["client_ip"])
	assert.Equal(t, "user-9", fields["user_id"])
	assert.Equal(t, "ListUsers", fields["function"])
	assert.Equal(t, int64(3), fields["count"])
	assert.Equal(t, "boom", fields["error"])
}

func TestContextLogBuilder_RespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := FromZap(zap.New(core))

	log.DebugWithContext(context.Background(), "hidden").String("k", "v").Log()
	log.InfoWithContext(context.Background(), "hidden").Log()
	log.WarnWithContext(context.Background(), "shown").Log()
	log.ErrorWithContext(context.TODO(), "shown too").Log()

	assert.Equal(t, 2, logs.Len())
}

func TestNewNop(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNop().ErrorWithContext(context.Background(), "nothing").Any("k", 1).Log()
		NewNop().Sync()
	})
}
