package health

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
	StatusDisabled  Status = "disabled"
)

// CheckResult is the outcome of one dependency check.
type CheckResult struct {
	Status    Status `json:"status"`
	LatencyMs int64  `json:"latencyMs"`
	Error     string `json:"error,omitempty"`
}

// Report aggregates every check.
type Report struct {
	Status    Status                 `json:"status"`
	Version   string                 `json:"version"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
	Stats     map[string]any         `json:"stats,omitempty"`
}

// PingFunc reports whether a dependency answers.
type PingFunc func(ctx context.Context) error

// StatsFunc snapshots runtime counters of a component.
type StatsFunc func() map[string]any

type checker struct {
	name     string
	required bool
	ping     PingFunc
}

// Monitor pings registered dependencies concurrently. A failing required
// dependency makes the report unhealthy; a failing optional one degrades it.
type Monitor struct {
	version  string
	timeout  time.Duration
	mu       sync.RWMutex
	checkers []checker
	stats    map[string]StatsFunc
}

func NewMonitor(version string, timeout time.Duration) *Monitor {
	return &Monitor{version: version, timeout: timeout}
}

// Register adds a dependency. A nil ping marks it disabled.
func (m *Monitor) Register(name string, required bool, ping PingFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkers = append(m.checkers, checker{name: name, required: required, ping: ping})
}

// RegisterStats attaches a component's counters to every report.
func (m *Monitor) RegisterStats(name string, fn StatsFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.stats == nil {
		m.stats = make(map[string]StatsFunc)
	}
	m.stats[name] = fn
}

func (m *Monitor) Check(ctx context.Context) Report {
	m.mu.RLock()
	checkers := append([]checker(nil), m.checkers...)
	stats := make(map[string]StatsFunc, len(m.stats))
	for name, fn := range m.stats {
		stats[name] = fn
	}
	m.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	results := make([]CheckResult, len(checkers))
	var g errgroup.Group
	for i, ch := range checkers {
		g.Go(func() error {
			results[i] = run(ctx, ch.ping)
			return nil
		})
	}
	_ = g.Wait()

	report := Report{
		Status:    StatusHealthy,
		Version:   m.version,
		Timestamp: time.Now().UTC(),
		Checks:    make(map[string]CheckResult, len(checkers)),
	}
	for i, ch := range checkers {
		res := results[i]
		report.Checks[ch.name] = res
		if res.Status != StatusUnhealthy {
			continue
		}
		if ch.required {
			report.Status = StatusUnhealthy
		} else if report.Status == StatusHealthy {
			report.Status = StatusDegraded
		}
	}
	if len(stats) > 0 {
		report.Stats = make(map[string]any, len(stats))
		for name, fn := range stats {
			report.Stats[name] = fn()
		}
	}
	return report
}

func run(ctx context.Context, ping PingFunc) CheckResult {
	if ping == nil {
		return CheckResult{Status: StatusDisabled}
	}
	start := time.Now()
	err := ping(ctx)
	res := CheckResult{Status: StatusHealthy, LatencyMs: time.Since(start).Milliseconds()}
	if err != nil {
		res.Status = StatusUnhealthy
		res.Error = err.Error()
	}
	return res
}
