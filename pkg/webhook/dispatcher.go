package webhook

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/config"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/circuit"
	ctxutil "github.com/InventorsDev/inventor-backend-sub000/pkg/context"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/metrics"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/pool"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Delivery outcomes, used as metric labels.
const (
	OutcomeDelivered   = "delivered"
	OutcomeFailed      = "failed"
	OutcomeCircuitOpen = "circuit_open"
	OutcomeDropped     = "dropped"
)

// Publisher is what services depend on to announce domain events.
type Publisher interface {
	Publish(ctx context.Context, topic string, data any)
}

// Store is the slice of the webhook repository the dispatcher needs.
type Store interface {
	ActiveFor(ctx context.Context, topic string) ([]model.Webhook, error)
	RecordDelivery(ctx context.Context, id primitive.ObjectID, statusCode int, deliveryErr error) error
}

// Result describes a single delivery.
type Result struct {
	DeliveryID string
	StatusCode int
	Duration   time.Duration
	Err        error
}

type Dispatcher struct {
	store    Store
	workers  *pool.Pool
	sender   *Sender
	breakers *circuit.Registry
	metrics  *metrics.Metrics
	log      *logger.Logger
	now      func() time.Time
}

func NewDispatcher(cfg config.WebhookConfig, store Store, workers *pool.Pool, client *http.Client, m *metrics.Metrics, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.NewNop()
	}
	breakerCfg := circuit.DefaultConfig()
	if cfg.BreakerThreshold > 0 {
		breakerCfg.Threshold = cfg.BreakerThreshold
	}
	if cfg.BreakerTimeout > 0 {
		breakerCfg.Timeout = cfg.BreakerTimeout
	}

	return &Dispatcher{
		store:   store,
		workers: workers,
		sender:  NewSender(client, cfg.MaxRetries, cfg.RetryBaseDelay, log),
		breakers: circuit.NewRegistry(breakerCfg, log, func(name string, _, to circuit.State) {
			m.BreakerState(name, int(to))
		}),
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// Publish queues a delivery to every active webhook subscribed to topic.
// It never blocks on the receivers and never fails the caller.
func (d *Dispatcher) Publish(ctx context.Context, topic string, data any) {
	ctx = ctxutil.WithFunction(ctx, "webhook", "publish")

	hooks, err := d.store.ActiveFor(ctx, topic)
	if err != nil {
		d.log.ErrorWithContext(ctx, "Failed to load webhooks for topic").
			String("topic", topic).
			Err(err).
			Log()
		return
	}
	if len(hooks) == 0 {
		return
	}

	env := Envelope{ID: uuid.NewString(), Topic: topic, OccurredAt: d.now().UTC(), Data: data}
	for i := range hooks {
		hook := hooks[i]
		err := d.workers.Submit(ctx, func(ctx context.Context) {
			d.Deliver(ctx, &hook, env)
		})
		if err != nil {
			d.metrics.WebhookDelivery(topic, OutcomeDropped)
			d.log.WarnWithContext(ctx, "Webhook delivery dropped").
				String("webhook_id", hook.ID.Hex()).
				String("topic", topic).
				Err(err).
				Log()
		}
	}
}

// Deliver sends env to hook through its breaker and records the outcome on
// the webhook document. It runs synchronously.
func (d *Dispatcher) Deliver(ctx context.Context, hook *model.Webhook, env Envelope) Result {
	ctx = ctxutil.WithFunction(ctx, "webhook", "deliver")
	res := Result{DeliveryID: uuid.NewString()}
	start := d.now()

	body, contentType, err := Render(hook.PayloadTemplate, env)
	if err != nil {
		res.Err = err
		d.finish(ctx, hook, env.Topic, &res, start)
		return res
	}

	breaker := d.breakers.Get(hook.ID.Hex())
	res.Err = breaker.Execute(ctx, func(ctx context.Context) error {
		status, err := d.sender.Send(ctx, Request{
			URL:         hook.URL,
			Topic:       env.Topic,
			DeliveryID:  res.DeliveryID,
			Secret:      hook.Secret,
			ContentType: contentType,
			Body:        body,
		})
		res.StatusCode = status
		return err
	})

	if errors.Is(res.Err, circuit.ErrCircuitOpen) || errors.Is(res.Err, circuit.ErrTooManyRequests) {
		d.metrics.WebhookDelivery(env.Topic, OutcomeCircuitOpen)
		d.log.WarnWithContext(ctx, "Webhook skipped, circuit open").
			String("webhook_id", hook.ID.Hex()).
			String("topic", env.Topic).
			Log()
		return res
	}

	d.finish(ctx, hook, env.Topic, &res, start)
	return res
}

func (d *Dispatcher) finish(ctx context.Context, hook *model.Webhook, topic string, res *Result, start time.Time) {
	res.Duration = d.now().Sub(start)

	if res.Err != nil {
		d.metrics.WebhookDelivery(topic, OutcomeFailed)
		d.log.WarnWithContext(ctx, "Webhook delivery failed").
			String("webhook_id", hook.ID.Hex()).
			String("topic", topic).
			String("delivery_id", res.DeliveryID).
			StatusCode(res.StatusCode).
			Duration(res.Duration).
			Err(res.Err).
			Log()
	} else {
		d.metrics.WebhookDelivery(topic, OutcomeDelivered)
		d.log.InfoWithContext(ctx, "Webhook delivered").
			String("webhook_id", hook.ID.Hex()).
			String("topic", topic).
			String("delivery_id", res.DeliveryID).
			StatusCode(res.StatusCode).
			Duration(res.Duration).
			Log()
	}

	if err := d.store.RecordDelivery(ctx, hook.ID, res.StatusCode, res.Err); err != nil {
		d.log.ErrorWithContext(ctx, "Failed to record webhook delivery").
			String("webhook_id", hook.ID.Hex()).
			Err(err).
			Log()
	}
}

// Forget drops the breaker of a webhook that was edited or deleted.
func (d *Dispatcher) Forget(id primitive.ObjectID) {
	d.breakers.Remove(id.Hex())
}

func (d *Dispatcher) Stats() map[string]any {
	return map[string]any{
		"breakers": d.breakers.Stats(),
		"workers":  d.workers.Stats(),
	}
}
