package service

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/InventorsDev/inventor-backend-sub000/internal/query"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/cache"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newEventService(t *testing.T) (*EventService, *fakeEvents, *recordingPublisher) {
	t.Helper()
	mem := cache.NewMemory()
	t.Cleanup(mem.Close)

	events := newFakeEvents()
	pub := &recordingPublisher{}
	lists := cache.NewListCache(mem, time.Minute, logger.NewNop())
	return NewEventService(events, lists, nil, Deps{Publisher: pub, Now: fixedClock(testNow)}), events, pub
}

func createEvent(t *testing.T, svc *EventService, capacity int) *dto.EventResponse {
	t.Helper()
	e, err := svc.Create(context.Background(), Actor{ID: primitive.NewObjectID(), Role: model.RoleAdmin}, &dto.CreateEventRequest{
		Title:       "Go meetup",
		Description: "Monthly meetup",
		Venue:       " Lagos ",
		Location:    []float64{3.38, 6.52},
		StartDate:   testNow.Add(24 * time.Hour),
		EndDate:     testNow.Add(26 * time.Hour),
		Capacity:    capacity,
	})
	require.NoError(t, err)
	return e
}

func TestEventService_Create(t *testing.T) {
	svc, _, pub := newEventService(t)

	e := createEvent(t, svc, 2)
	assert.Equal(t, model.EventUpcoming, e.Status)
	assert.Equal(t, "Lagos", e.Venue)
	assert.Equal(t, 2, e.SeatsLeft)
	require.NotNil(t, e.Location)
	assert.Equal(t, []float64{3.38, 6.52}, e.Location.Coordinates)
	assert.Equal(t, []string{model.TopicEventCreated}, pub.Topics())

	_, err := svc.Create(context.Background(), Actor{}, &dto.CreateEventRequest{
		Title:     "Backwards",
		StartDate: testNow.Add(time.Hour),
		EndDate:   testNow.Add(time.Hour),
	})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidEventSchedule))
}

func TestEventService_CreateDerivesStatusFromSchedule(t *testing.T) {
	svc, _, _ := newEventService(t)

	e, err := svc.Create(context.Background(), Actor{}, &dto.CreateEventRequest{
		Title:     "Already running",
		StartDate: testNow.Add(-time.Hour),
		EndDate:   testNow.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, model.EventOngoing, e.Status)
	assert.Equal(t, -1, e.SeatsLeft)
}

func TestEventService_Register(t *testing.T) {
	svc, _, _ := newEventService(t)
	e := createEvent(t, svc, 1)
	first := Actor{ID: primitive.NewObjectID(), Role: model.RoleUser}
	second := Actor{ID: primitive.NewObjectID(), Role: model.RoleUser}

	got, err := svc.Register(context.Background(), first, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.AttendeeCount)
	assert.Equal(t, 0, got.SeatsLeft)

	_, err = svc.Register(context.Background(), first, e.ID)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyRegistered))

	_, err = svc.Register(context.Background(), second, e.ID)
	assert.True(t, errors.Is(err, apperrors.ErrEventFull))

	_, err = svc.Register(context.Background(), second, primitive.NewObjectID().Hex())
	assert.True(t, errors.Is(err, apperrors.ErrEventNotFound))
}

func TestEventService_Unregister(t *testing.T) {
	svc, _, _ := newEventService(t)
	e := createEvent(t, svc, 0)
	user := Actor{ID: primitive.NewObjectID(), Role: model.RoleUser}

	_, err := svc.Unregister(context.Background(), user, e.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotRegistered))

	_, err = svc.Register(context.Background(), user, e.ID)
	require.NoError(t, err)

	got, err := svc.Unregister(context.Background(), user, e.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.AttendeeCount)
}

func TestEventService_CancelClosesRegistration(t *testing.T) {
	svc, _, pub := newEventService(t)
	e := createEvent(t, svc, 0)

	cancelled, err := svc.Cancel(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EventCancelled, cancelled.Status)
	assert.Equal(t, []string{model.TopicEventCreated, model.TopicEventCancelled}, pub.Topics())

	_, err = svc.Cancel(context.Background(), e.ID)
	assert.True(t, errors.Is(err, apperrors.ErrInvalidStatusChange))

	_, err = svc.Register(context.Background(), Actor{ID: primitive.NewObjectID()}, e.ID)
	assert.True(t, errors.Is(err, apperrors.ErrEventNotOpen))

	title := "Renamed"
	_, err = svc.Update(context.Background(), e.ID, &dto.UpdateEventRequest{Title: &title})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidStatusChange))
}

func TestEventService_Update(t *testing.T) {
	svc, _, _ := newEventService(t)
	e := createEvent(t, svc, 5)
	for i := 0; i < 2; i++ {
		_, err := svc.Register(context.Background(), Actor{ID: primitive.NewObjectID()}, e.ID)
		require.NoError(t, err)
	}

	tooSmall := 1
	_, err := svc.Update(context.Background(), e.ID, &dto.UpdateEventRequest{Capacity: &tooSmall})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

	early := testNow.Add(20 * time.Hour)
	_, err = svc.Update(context.Background(), e.ID, &dto.UpdateEventRequest{EndDate: &early})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidEventSchedule))

	start := testNow.Add(-time.Hour)
	capacity := 2
	got, err := svc.Update(context.Background(), e.ID, &dto.UpdateEventRequest{StartDate: &start, Capacity: &capacity})
	require.NoError(t, err)
	assert.Equal(t, model.EventOngoing, got.Status)
	assert.Equal(t, 2, got.Capacity)
	assert.Equal(t, 0, got.SeatsLeft)
}

func TestEventService_SyncStatuses(t *testing.T) {
	svc, events, _ := newEventService(t)
	e := createEvent(t, svc, 0)

	n, err := svc.SyncStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	svc.now = fixedClock(testNow.Add(25 * time.Hour))
	n, err = svc.SyncStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	id, _ := primitive.ObjectIDFromHex(e.ID)
	stored, _ := events.GetByID(context.Background(), id)
	assert.Equal(t, model.EventOngoing, stored.Status)
}

func TestEventService_ListGeoFilter(t *testing.T) {
	svc, events, _ := newEventService(t)
	createEvent(t, svc, 0)

	page, hit, err := svc.List(context.Background(), url.Values{
		"eventLocation":   {"3.38 6.52 5"},
		"eventByStatuses": {"UPCOMING"},
	})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, int64(1), page.TotalRecords)

	req := events.lastReq
	require.NotNil(t, req)
	require.NotEmpty(t, req.Filter)
	assert.IsType(t, query.Within{}, req.Filter[0])
	assert.Len(t, req.WithoutLocation, len(req.Filter)-1)

	_, _, err = svc.List(context.Background(), url.Values{"eventLocation": {"3.38 north 5"}})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidArity))
}
