package pool

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	ctxutil "github.com/InventorsDev/inventor-backend-sub000/pkg/context"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/panjf2000/ants/v2"
)

// ErrSaturated is returned by Submit on a non-blocking pool with no free worker.
var ErrSaturated = errors.New("worker pool saturated")

// Config sizes a worker pool
type Config struct {
	Name        string
	Size        int
	NonBlocking bool // drop tasks instead of waiting for a free worker
	MaxBlocking int  // queued submitters allowed when blocking, 0 is unbounded
}

// Pool runs background tasks on a bounded set of goroutines.
type Pool struct {
	ants *ants.Pool
	name string
	log  *logger.Logger
}

func New(cfg Config, log *logger.Logger) (*Pool, error) {
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.Size < 1 {
		cfg.Size = 1
	}

	p := &Pool{name: cfg.Name, log: log}
	ap, err := ants.NewPool(cfg.Size,
		ants.WithNonblocking(cfg.NonBlocking),
		ants.WithMaxBlockingTasks(cfg.MaxBlocking),
		ants.WithPanicHandler(func(r any) {
			log.ErrorWithContext(context.Background(), "Worker task panicked").
				String("pool", cfg.Name).
				Any("panic", r).
				Log()
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s pool: %w", cfg.Name, err)
	}
	p.ants = ap
	return p, nil
}

// Submit schedules task. The task gets a context detached from ctx's
// cancellation, so it outlives the request that queued it.
func (p *Pool) Submit(ctx context.Context, task func(ctx context.Context)) error {
	detached := ctxutil.Detach(ctx)
	err := p.ants.Submit(func() { task(detached) })
	if errors.Is(err, ants.ErrPoolOverload) {
		return ErrSaturated
	}
	return err
}

func (p *Pool) Running() int { return p.ants.Running() }

func (p *Pool) Free() int { return p.ants.Free() }

// Close waits up to timeout for running tasks, then releases the workers.
func (p *Pool) Close(timeout time.Duration) error {
	if err := p.ants.ReleaseTimeout(timeout); err != nil {
		p.log.WarnWithContext(context.Background(), "Worker pool did not drain in time").
			String("pool", p.name).
			Int("running", p.ants.Running()).
			Err(err).
			Log()
		return err
	}
	return nil
}

func (p *Pool) Stats() map[string]any {
	return map[string]any{
		"name":    p.name,
		"running": p.ants.Running(),
		"free":    p.ants.Free(),
		"cap":     p.ants.Cap(),
	}
}

// HTTPConfig tunes the outbound HTTP client
type HTTPConfig struct {
	Timeout             time.Duration
	DialTimeout         time.Duration
	IdleTimeout         time.Duration
	MaxIdleConns        int
	MaxIdleConnsPerHost int
}

func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		Timeout:             10 * time.Second,
		DialTimeout:         5 * time.Second,
		IdleTimeout:         90 * time.Second,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
	}
}

// NewHTTPClient builds a keep-alive client shared by outbound callers.
func NewHTTPClient(cfg HTTPConfig) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       cfg.IdleTimeout,
		TLSHandshakeTimeout:   cfg.DialTimeout,
		ExpectContinueTimeout: time.Second,
		ForceAttemptHTTP2:     true,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
	}
	return &http.Client{Timeout: cfg.Timeout, Transport: transport}
}
