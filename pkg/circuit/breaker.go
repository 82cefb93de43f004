package circuit

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
)

// State represents circuit breaker state
type State int

const (
	StateClosed   State = iota // requests pass through
	StateOpen                  // requests fail fast
	StateHalfOpen              // probing whether the endpoint recovered
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

var (
	ErrCircuitOpen     = errors.New("circuit breaker is open")
	ErrTooManyRequests = errors.New("too many requests in half-open state")
)

type Config struct {
	Threshold        int           // consecutive failures before opening
	Timeout          time.Duration // wait before half-open
	SuccessThreshold int           // successes needed to close from half-open
	MaxHalfOpen      int           // concurrent probes in half-open
}

func DefaultConfig() Config {
	return Config{
		Threshold:        5,
		Timeout:          time.Minute,
		SuccessThreshold: 2,
		MaxHalfOpen:      1,
	}
}

// StateListener is told about every transition, e.g. to export a gauge.
type StateListener func(name string, from, to State)

// Breaker guards calls to one webhook endpoint.
type Breaker struct {
	mu               sync.Mutex
	state            State
	failures         int
	successes        int
	halfOpenRequests int
	openedAt         time.Time
	config           Config
	log              *logger.Logger
	name             string
	onChange         StateListener
	now              func() time.Time
}

func NewBreaker(name string, config Config, log *logger.Logger) *Breaker {
	if log == nil {
		log = logger.NewNop()
	}
	if config.Threshold < 1 {
		config.Threshold = 1
	}
	if config.SuccessThreshold < 1 {
		config.SuccessThreshold = 1
	}
	if config.MaxHalfOpen < 1 {
		config.MaxHalfOpen = 1
	}
	return &Breaker{
		state:  StateClosed,
		config: config,
		log:    log,
		name:   name,
		now:    time.Now,
	}
}

// Execute runs fn unless the circuit is open and records its outcome.
// Context cancellation is not counted as an endpoint failure.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := b.Allow(); err != nil {
		return err
	}

	err := fn(ctx)
	if err != nil && ctx.Err() != nil {
		b.release()
		return err
	}
	b.Record(err)
	return err
}

// Allow checks whether a request may go through.
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.openedAt) < b.config.Timeout {
			return ErrCircuitOpen
		}
		b.transitionTo(StateHalfOpen)
		b.halfOpenRequests = 1
		return nil
	case StateHalfOpen:
		if b.halfOpenRequests >= b.config.MaxHalfOpen {
			return ErrTooManyRequests
		}
		b.halfOpenRequests++
		return nil
	default:
		return nil
	}
}

func (b *Breaker) Record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err != nil {
		b.recordFailure()
	} else {
		b.recordSuccess()
	}
}

// release gives back a half-open slot without recording an outcome.
func (b *Breaker) release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StateHalfOpen && b.halfOpenRequests > 0 {
		b.halfOpenRequests--
	}
}

// must hold lock
func (b *Breaker) recordFailure() {
	b.failures++
	b.successes = 0

	switch b.state {
	case StateClosed:
		if b.failures >= b.config.Threshold {
			b.transitionTo(StateOpen)
		}
	case StateHalfOpen:
		b.transitionTo(StateOpen)
	}
}

// must hold lock
func (b *Breaker) recordSuccess() {
	b.failures = 0

	if b.state == StateHalfOpen {
		b.successes++
		if b.successes >= b.config.SuccessThreshold {
			b.transitionTo(StateClosed)
		}
	}
}

// must hold lock
func (b *Breaker) transitionTo(newState State) {
	oldState := b.state
	b.state = newState
	b.halfOpenRequests = 0

	switch newState {
	case StateOpen:
		b.openedAt = b.now()
	case StateClosed:
		b.failures = 0
		b.successes = 0
	}

	b.log.InfoWithContext(context.Background(), "Circuit breaker state changed").
		String("name", b.name).
		String("from", oldState.String()).
		String("to", newState.String()).
		Log()

	if b.onChange != nil {
		b.onChange(b.name, oldState, newState)
	}
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) Stats() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()

	return map[string]any{
		"name":      b.name,
		"state":     b.state.String(),
		"failures":  b.failures,
		"opened_at": b.openedAt,
		"threshold": b.config.Threshold,
		"timeout":   b.config.Timeout.String(),
	}
}

// Registry keeps one breaker per name.
type Registry struct {
	mu       sync.RWMutex
	breakers map[string]*Breaker
	config   Config
	log      *logger.Logger
	onChange StateListener
}

func NewRegistry(config Config, log *logger.Logger, onChange StateListener) *Registry {
	return &Registry{
		breakers: make(map[string]*Breaker),
		config:   config,
		log:      log,
		onChange: onChange,
	}
}

func (r *Registry) Get(name string) *Breaker {
	r.mu.RLock()
	breaker, ok := r.breakers[name]
	r.mu.RUnlock()
	if ok {
		return breaker
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if breaker, ok = r.breakers[name]; ok {
		return breaker
	}
	breaker = NewBreaker(name, r.config, r.log)
	breaker.onChange = r.onChange
	r.breakers[name] = breaker
	return breaker
}

// Remove forgets a breaker, e.g. after its webhook was deleted or edited.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.breakers, name)
}

func (r *Registry) Stats() map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make(map[string]any, len(r.breakers))
	for name, breaker := range r.breakers {
		stats[name] = breaker.Stats()
	}
	return stats
}
