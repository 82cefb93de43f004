package service

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/dto"
	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
	"github.com/InventorsDev/inventor-backend-sub000/internal/query"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/cache"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/metrics"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/webhook"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const eventsNamespace = "events"

type EventStore interface {
	Create(ctx context.Context, event *model.Event) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Event, error)
	List(ctx context.Context, req *query.Request) ([]model.Event, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Event, error)
	Delete(ctx context.Context, id primitive.ObjectID) (bool, error)
	AddAttendee(ctx context.Context, id, userID primitive.ObjectID) (*model.Event, error)
	RemoveAttendee(ctx context.Context, id, userID primitive.ObjectID) (*model.Event, error)
	SyncStatuses(ctx context.Context, now time.Time) (int64, error)
}

func EventRegistry() *query.Registry {
	return query.NewRegistry().
		DateRange("eventDateRange", "startDate", "endDate").
		Search("searchEvent", "title", "description", "venue").
		In("eventByStatuses", "status").
		IDs("eventByIds", "_id", query.ObjectIDParser).
		Geo("eventLocation", "location").
		Flag("online", "online")
}

type EventService struct {
	events    EventStore
	listing   cachedListing[model.Event, dto.EventResponse]
	publisher webhook.Publisher
	log       *logger.Logger
	now       func() time.Time
}

func NewEventService(events EventStore, lists *cache.ListCache, m *metrics.Metrics, deps Deps) *EventService {
	deps = deps.normalized()
	return &EventService{
		events: events,
		listing: cachedListing[model.Event, dto.EventResponse]{
			listing: listing[model.Event, dto.EventResponse]{
				engine:   deps.Engine,
				registry: EventRegistry(),
				store:    events,
				mapFn:    dto.NewEventResponse,
			},
			namespace: eventsNamespace,
			cache:     lists,
			metrics:   m,
		},
		publisher: deps.Publisher,
		log:       deps.Log,
		now:       deps.Now,
	}
}

func (s *EventService) Create(ctx context.Context, actor Actor, req *dto.CreateEventRequest) (*dto.EventResponse, error) {
	ctx = serviceCtx(ctx, "events.create")

	if !req.EndDate.After(req.StartDate) {
		return nil, apperrors.ErrInvalidEventSchedule
	}

	now := s.now().UTC()
	event := &model.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Venue:       strings.TrimSpace(req.Venue),
		Location:    geoPoint(req.Location),
		Online:      req.Online,
		StartDate:   req.StartDate.UTC(),
		EndDate:     req.EndDate.UTC(),
		Capacity:    req.Capacity,
		Attendees:   []primitive.ObjectID{},
		CreatedBy:   actor.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	event.Status = event.StatusAt(now)

	if err := s.events.Create(ctx, event); err != nil {
		s.log.ErrorWithContext(ctx, "Failed to create event").Err(err).Log()
		return nil, wrapInternal(err)
	}

	s.log.InfoWithContext(ctx, "Event created").
		String("event_id", event.ID.Hex()).
		String("status", string(event.Status)).
		Log()

	s.listing.invalidate(ctx)
	res := dto.NewEventResponse(event)
	s.publisher.Publish(ctx, model.TopicEventCreated, res)
	return &res, nil
}

func (s *EventService) get(ctx context.Context, id primitive.ObjectID) (*model.Event, error) {
	event, err := s.events.GetByID(ctx, id)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if event == nil {
		return nil, apperrors.ErrEventNotFound
	}
	return event, nil
}

func (s *EventService) Get(ctx context.Context, rawID string) (*dto.EventResponse, error) {
	ctx = serviceCtx(ctx, "events.get")

	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	event, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	res := dto.NewEventResponse(event)
	return &res, nil
}

// List is cached; the bool reports a cache hit.
func (s *EventService) List(ctx context.Context, q url.Values) (*query.Page[dto.EventResponse], bool, error) {
	ctx = serviceCtx(ctx, "events.list")
	return s.listing.run(ctx, q, query.Scope{})
}

func (s *EventService) apply(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.Event, error) {
	event, err := s.events.Update(ctx, id, set)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if event == nil {
		return nil, apperrors.ErrEventNotFound
	}
	s.listing.invalidate(ctx)
	return event, nil
}

func (s *EventService) Update(ctx context.Context, rawID string, req *dto.UpdateEventRequest) (*dto.EventResponse, error) {
	ctx = serviceCtx(ctx, "events.update")

	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	event, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Status == model.EventCancelled || event.Status == model.EventEnded {
		return nil, apperrors.Detail(apperrors.ErrInvalidStatusChange, "event is %s", event.Status)
	}

	set := bson.M{}
	if req.Title != nil {
		set["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Venue != nil {
		set["venue"] = strings.TrimSpace(*req.Venue)
	}
	if p := geoPoint(req.Location); p != nil {
		set["location"] = p
	}
	if req.Online != nil {
		set["online"] = *req.Online
	}
	if req.Capacity != nil {
		if *req.Capacity > 0 && *req.Capacity < len(event.Attendees) {
			return nil, apperrors.Detail(apperrors.ErrInvalidInput,
				"capacity %d is below the %d registered attendees", *req.Capacity, len(event.Attendees))
		}
		set["capacity"] = *req.Capacity
	}

	if req.StartDate != nil || req.EndDate != nil {
		merged := *event
		if req.StartDate != nil {
			merged.StartDate = req.StartDate.UTC()
		}
		if req.EndDate != nil {
			merged.EndDate = req.EndDate.UTC()
		}
		if !merged.EndDate.After(merged.StartDate) {
			return nil, apperrors.ErrInvalidEventSchedule
		}
		set["startDate"] = merged.StartDate
		set["endDate"] = merged.EndDate
		set["status"] = merged.StatusAt(s.now())
	}

	if len(set) == 0 {
		res := dto.NewEventResponse(event)
		return &res, nil
	}

	updated, err := s.apply(ctx, id, set)
	if err != nil {
		return nil, err
	}

	s.log.InfoWithContext(ctx, "Event updated").
		String("event_id", id.Hex()).
		Int("fields", len(set)).
		Log()

	res := dto.NewEventResponse(updated)
	return &res, nil
}

func (s *EventService) Cancel(ctx context.Context, rawID string) (*dto.EventResponse, error) {
	ctx = serviceCtx(ctx, "events.cancel")

	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	event, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Status == model.EventCancelled || event.Status == model.EventEnded {
		return nil, apperrors.Detail(apperrors.ErrInvalidStatusChange, "event is already %s", event.Status)
	}

	updated, err := s.apply(ctx, id, bson.M{"status": model.EventCancelled})
	if err != nil {
		return nil, err
	}

	s.log.InfoWithContext(ctx, "Event cancelled").
		String("event_id", id.Hex()).
		Int("attendees", len(updated.Attendees)).
		Log()

	res := dto.NewEventResponse(updated)
	s.publisher.Publish(ctx, model.TopicEventCancelled, res)
	return &res, nil
}

// Register adds the actor to the attendees. The store performs the
// capacity and duplicate checks atomically; on refusal the event is read
// back to report why.
func (s *EventService) Register(ctx context.Context, actor Actor, rawID string) (*dto.EventResponse, error) {
	ctx = serviceCtx(ctx, "events.register")

	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	event, err := s.events.AddAttendee(ctx, id, actor.ID)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if event == nil {
		return nil, s.refusal(ctx, id, actor.ID)
	}
	s.listing.invalidate(ctx)

	s.log.InfoWithContext(ctx, "Attendee registered").
		String("event_id", id.Hex()).
		String("user_id", actor.ID.Hex()).
		Int("attendees", len(event.Attendees)).
		Log()

	res := dto.NewEventResponse(event)
	return &res, nil
}

func (s *EventService) refusal(ctx context.Context, id, userID primitive.ObjectID) error {
	event, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	switch {
	case event.Status != model.EventUpcoming && event.Status != model.EventOngoing:
		return apperrors.ErrEventNotOpen
	case event.HasAttendee(userID):
		return apperrors.ErrAlreadyRegistered
	case event.SeatsLeft() == 0:
		return apperrors.ErrEventFull
	}
	// the event changed between the update and the read
	return apperrors.Detail(apperrors.ErrServiceUnavailable, "registration conflicted, retry")
}

func (s *EventService) Unregister(ctx context.Context, actor Actor, rawID string) (*dto.EventResponse, error) {
	ctx = serviceCtx(ctx, "events.unregister")

	id, err := parseID(rawID)
	if err != nil {
		return nil, err
	}
	event, err := s.events.RemoveAttendee(ctx, id, actor.ID)
	if err != nil {
		return nil, wrapInternal(err)
	}
	if event == nil {
		if _, err := s.get(ctx, id); err != nil {
			return nil, err
		}
		return nil, apperrors.ErrNotRegistered
	}
	s.listing.invalidate(ctx)

	s.log.InfoWithContext(ctx, "Attendee unregistered").
		String("event_id", id.Hex()).
		String("user_id", actor.ID.Hex()).
		Log()

	res := dto.NewEventResponse(event)
	return &res, nil
}

func (s *EventService) Delete(ctx context.Context, rawID string) error {
	ctx = serviceCtx(ctx, "events.delete")

	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	deleted, err := s.events.Delete(ctx, id)
	if err != nil {
		return wrapInternal(err)
	}
	if !deleted {
		return apperrors.ErrEventNotFound
	}
	s.listing.invalidate(ctx)

	s.log.InfoWithContext(ctx, "Event deleted").
		String("event_id", id.Hex()).
		Log()
	return nil
}

// SyncStatuses applies schedule-driven status transitions; run by the
// scheduler.
func (s *EventService) SyncStatuses(ctx context.Context) (int64, error) {
	ctx = serviceCtx(ctx, "events.syncStatuses")

	n, err := s.events.SyncStatuses(ctx, s.now().UTC())
	if err != nil {
		return n, wrapInternal(err)
	}
	if n > 0 {
		s.listing.invalidate(ctx)
	}
	return n, nil
}
