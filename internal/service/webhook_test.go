package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/InventorsDev/inventor-backend-sub000/internal/query"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/webhook"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeDeliverer struct {
	mu        sync.Mutex
	envelopes []webhook.Envelope
	forgotten []primitive.ObjectID
	result    webhook.Result
}

func (d *fakeDeliverer) Deliver(_ context.Context, _ *model.Webhook, env webhook.Envelope) webhook.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.envelopes = append(d.envelopes, env)
	return d.result
}

func (d *fakeDeliverer) Forget(id primitive.ObjectID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.forgotten = append(d.forgotten, id)
}

func newWebhookService(t *testing.T) (*WebhookService, *fakeDeliverer) {
	t.Helper()
	hooks := newMemStore(func(h *model.Webhook) *primitive.ObjectID { return &h.ID })
	d := &fakeDeliverer{result: webhook.Result{DeliveryID: "d-1", StatusCode: 200, Duration: 12 * time.Millisecond}}
	return NewWebhookService(hooks, d, Deps{Now: fixedClock(testNow)}), d
}

func createWebhook(t *testing.T, svc *WebhookService) *dto.CreatedWebhookResponse {
	t.Helper()
	h, err := svc.Create(context.Background(), &dto.CreateWebhookRequest{
		Name:   " CRM ",
		URL:    "https://crm.example.com/hooks",
		Events: []string{model.TopicLeadCreated},
	})
	require.NoError(t, err)
	return h
}

func TestWebhookService_Create(t *testing.T) {
	svc, _ := newWebhookService(t)

	h := createWebhook(t, svc)
	assert.Equal(t, "CRM", h.Name)
	assert.True(t, h.Active)
	assert.Len(t, h.Secret, 48, "generated secret is 24 random bytes in hex")

	_, err := svc.Create(context.Background(), &dto.CreateWebhookRequest{
		Name:            "Broken",
		URL:             "https://example.com",
		Events:          []string{model.TopicUserCreated},
		PayloadTemplate: "{{ .data.name ",
	})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidTemplate))
}

func TestWebhookService_UpdateForgetsBreaker(t *testing.T) {
	svc, d := newWebhookService(t)
	h := createWebhook(t, svc)

	off := false
	got, err := svc.Update(context.Background(), h.ID, &dto.UpdateWebhookRequest{Active: &off})
	require.NoError(t, err)
	assert.False(t, got.Active)
	require.Len(t, d.forgotten, 1)
	assert.Equal(t, h.ID, d.forgotten[0].Hex())

	bad := "{{ end }}"
	_, err = svc.Update(context.Background(), h.ID, &dto.UpdateWebhookRequest{PayloadTemplate: &bad})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidTemplate))

	_, err = svc.Update(context.Background(), primitive.NewObjectID().Hex(), &dto.UpdateWebhookRequest{Active: &off})
	assert.True(t, errors.Is(err, apperrors.ErrWebhookNotFound))
}

func TestWebhookService_TestDelivery(t *testing.T) {
	svc, d := newWebhookService(t)
	h := createWebhook(t, svc)

	res, err := svc.Test(context.Background(), h.ID, &dto.TestWebhookRequest{})
	require.NoError(t, err)
	assert.True(t, res.Delivered)
	assert.Equal(t, 200, res.StatusCode)
	assert.Equal(t, int64(12), res.DurationMs)

	require.Len(t, d.envelopes, 1)
	env := d.envelopes[0]
	assert.Equal(t, model.TopicLeadCreated, env.Topic, "defaults to the first subscribed topic")
	assert.Equal(t, map[string]any{"test": true}, env.Data)
	assert.Equal(t, testNow, env.OccurredAt)
	_, err = uuid.Parse(env.ID)
	assert.NoError(t, err)

	d.result = webhook.Result{DeliveryID: "d-2", StatusCode: 500, Err: errors.New("unexpected status 500")}
	res, err = svc.Test(context.Background(), h.ID, &dto.TestWebhookRequest{Topic: model.TopicEventCreated})
	require.NoError(t, err)
	assert.False(t, res.Delivered)
	assert.Equal(t, "unexpected status 500", res.Error)
	assert.Equal(t, model.TopicEventCreated, d.envelopes[1].Topic)
}

func TestWebhookService_Delete(t *testing.T) {
	svc, d := newWebhookService(t)
	h := createWebhook(t, svc)

	require.NoError(t, svc.Delete(context.Background(), h.ID))
	assert.Len(t, d.forgotten, 1)

	err := svc.Delete(context.Background(), h.ID)
	assert.True(t, errors.Is(err, apperrors.ErrWebhookNotFound))
}

type fakeDataLogs struct {
	mu      sync.Mutex
	entries []model.DataLog
	cutoff  time.Time
}

func (f *fakeDataLogs) Create(_ context.Context, entry *model.DataLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeDataLogs) GetByID(_ context.Context, id uuid.UUID) (*model.DataLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.entries {
		if f.entries[i].ID == id {
			e := f.entries[i]
			return &e, nil
		}
	}
	return nil, nil
}

func (f *fakeDataLogs) List(context.Context, *query.Request) ([]model.DataLog, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.DataLog(nil), f.entries...), int64(len(f.entries)), nil
}

func (f *fakeDataLogs) PurgeOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoff = cutoff
	kept := f.entries[:0]
	var n int64
	for _, e := range f.entries {
		if e.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, e)
	}
	f.entries = kept
	return n, nil
}

func TestDataLogService_RecordGetPurge(t *testing.T) {
	logs := &fakeDataLogs{}
	svc := NewDataLogService(logs, 30, Deps{Now: fixedClock(testNow)})

	old := &model.DataLog{ID: uuid.New(), Method: "GET", Path: "/api/v1/posts", CreatedAt: testNow.AddDate(0, 0, -40)}
	fresh := &model.DataLog{ID: uuid.New(), Method: "POST", Path: "/api/v1/leads", CreatedAt: testNow.Add(-time.Hour)}
	require.NoError(t, svc.Record(context.Background(), old))
	require.NoError(t, svc.Record(context.Background(), fresh))

	got, err := svc.Get(context.Background(), fresh.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/leads", got.Path)

	_, err = svc.Get(context.Background(), "not-a-uuid")
	assert.True(t, errors.Is(err, apperrors.ErrInvalidIdentifier))

	_, err = svc.Get(context.Background(), uuid.NewString())
	assert.True(t, errors.Is(err, apperrors.ErrDataLogNotFound))

	_, err = svc.Purge(context.Background(), 0)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	n, err := svc.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, testNow.AddDate(0, 0, -30), logs.cutoff)

	page, err := svc.List(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalRecords)
}

func TestDataLogService_PurgeExpiredDisabled(t *testing.T) {
	svc := NewDataLogService(&fakeDataLogs{}, 0, Deps{})

	n, err := svc.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
