package health

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ok(context.Context) error { return nil }

func TestMonitor_Check(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(m *Monitor)
		status Status
	}{
		{
			name: "all healthy",
			setup: func(m *Monitor) {
				m.Register("mongo", true, ok)
				m.Register("redis", false, nil)
			},
			status: StatusHealthy,
		},
		{
			name: "optional down",
			setup: func(m *Monitor) {
				m.Register("mongo", true, ok)
				m.Register("redis", false, func(context.Context) error { return errors.New("refused") })
			},
			status: StatusDegraded,
		},
		{
			name: "required down",
			setup: func(m *Monitor) {
				m.Register("postgres", true, func(context.Context) error { return errors.New("refused") })
				m.Register("redis", false, func(context.Context) error { return errors.New("refused") })
			},
			status: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMonitor("1.0.0", time.Second)
			tt.setup(m)
			report := m.Check(context.Background())
			assert.Equal(t, tt.status, report.Status)
			assert.Equal(t, "1.0.0", report.Version)
		})
	}
}

func TestMonitor_TimeoutBoundsPings(t *testing.T) {
	m := NewMonitor("x", 20*time.Millisecond)
	m.Register("slow", true, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	m.Register("cache", false, nil)

	report := m.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, report.Status)
	assert.Equal(t, StatusDisabled, report.Checks["cache"].Status)
	assert.Contains(t, report.Checks["slow"].Error, "deadline")
}

func TestMonitor_Stats(t *testing.T) {
	m := NewMonitor("x", time.Second)
	assert.Nil(t, m.Check(context.Background()).Stats)

	m.RegisterStats("webhooks", func() map[string]any { return map[string]any{"running": 2} })
	report := m.Check(context.Background())
	assert.Equal(t, map[string]any{"running": 2}, report.Stats["webhooks"])
}
