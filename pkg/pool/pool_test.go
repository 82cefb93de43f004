package pool

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	ctxutil "github.com/InventorsDev/inventor-backend-sub000/pkg/context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_SubmitRunsDetachedTask(t *testing.T) {
	p, err := New(Config{Name: "test", Size: 2}, nil)
	require.NoError(t, err)
	defer p.Close(time.Second)

	ctx, cancel := context.WithCancel(ctxutil.WithRequestInfo(context.Background(), ctxutil.RequestInfo{RequestID: "req-1"}))

	done := make(chan struct{})
	var gotID string
	var gotErr error
	require.NoError(t, p.Submit(ctx, func(ctx context.Context) {
		defer close(done)
		gotID = ctxutil.GetRequestID(ctx)
		gotErr = ctx.Err()
	}))
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("task did not run")
	}
	assert.Equal(t, "req-1", gotID)
	assert.NoError(t, gotErr)
}

func TestPool_NonBlockingReportsSaturation(t *testing.T) {
	p, err := New(Config{Name: "audit", Size: 1, NonBlocking: true}, nil)
	require.NoError(t, err)
	defer p.Close(time.Second)

	release := make(chan struct{})
	started := make(chan struct{})
	require.NoError(t, p.Submit(context.Background(), func(context.Context) {
		close(started)
		<-release
	}))
	<-started

	err = p.Submit(context.Background(), func(context.Context) {})
	assert.ErrorIs(t, err, ErrSaturated)
	close(release)
}

func TestPool_RecoversFromPanics(t *testing.T) {
	p, err := New(Config{Name: "test", Size: 1}, nil)
	require.NoError(t, err)
	defer p.Close(time.Second)

	var wg sync.WaitGroup
	wg.Add(1)
	require.NoError(t, p.Submit(context.Background(), func(context.Context) {
		defer wg.Done()
		panic("boom")
	}))
	wg.Wait()

	ran := make(chan struct{})
	require.NoError(t, p.Submit(context.Background(), func(context.Context) { close(ran) }))
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("pool stopped accepting work after a panic")
	}
}

func TestNewHTTPClient(t *testing.T) {
	client := NewHTTPClient(DefaultHTTPConfig())
	require.NotNil(t, client)
	assert.Equal(t, 10*time.Second, client.Timeout)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 10, transport.MaxIdleConnsPerHost)
	assert.True(t, transport.ForceAttemptHTTP2)
}
