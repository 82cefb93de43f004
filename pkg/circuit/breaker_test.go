package circuit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errEndpoint = errors.New("endpoint down")

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBreaker(cfg Config) (*Breaker, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	b := NewBreaker("hook", cfg, nil)
	b.now = clock.now
	return b, clock
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b, _ := newTestBreaker(Config{Threshold: 3, Timeout: time.Minute})

	for i := 0; i < 2; i++ {
		b.Record(errEndpoint)
	}
	assert.Equal(t, StateClosed, b.State())

	b.Record(errEndpoint)
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b, _ := newTestBreaker(Config{Threshold: 2, Timeout: time.Minute})

	b.Record(errEndpoint)
	b.Record(nil)
	b.Record(errEndpoint)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	b, clock := newTestBreaker(Config{Threshold: 1, Timeout: time.Minute, SuccessThreshold: 2, MaxHalfOpen: 1})

	b.Record(errEndpoint)
	require.Equal(t, StateOpen, b.State())

	clock.advance(time.Minute)
	require.NoError(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrTooManyRequests)

	b.Record(nil)
	assert.Equal(t, StateHalfOpen, b.State())
	b.Record(nil)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	b, clock := newTestBreaker(Config{Threshold: 1, Timeout: time.Minute})

	b.Record(errEndpoint)
	clock.advance(2 * time.Minute)
	require.NoError(t, b.Allow())

	b.Record(errEndpoint)
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrCircuitOpen)
}

func TestBreaker_ExecuteIgnoresCancellation(t *testing.T) {
	b, _ := newTestBreaker(Config{Threshold: 1, Timeout: time.Minute})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Execute(ctx, func(ctx context.Context) error { return ctx.Err() })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateClosed, b.State())

	err = b.Execute(context.Background(), func(context.Context) error { return errEndpoint })
	assert.ErrorIs(t, err, errEndpoint)
	assert.Equal(t, StateOpen, b.State())
}

func TestRegistry_ReusesAndNotifies(t *testing.T) {
	var transitions []string
	r := NewRegistry(Config{Threshold: 1, Timeout: time.Minute}, nil, func(name string, from, to State) {
		transitions = append(transitions, name+":"+from.String()+"->"+to.String())
	})

	a := r.Get("a")
	assert.Same(t, a, r.Get("a"))

	a.Record(errEndpoint)
	assert.Equal(t, []string{"a:CLOSED->OPEN"}, transitions)
	assert.Contains(t, r.Stats(), "a")

	r.Remove("a")
	assert.NotSame(t, a, r.Get("a"))
}
