package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventStatus string

const (
	EventUpcoming  EventStatus = "UPCOMING"
	EventOngoing   EventStatus = "ONGOING"
	EventEnded     EventStatus = "ENDED"
	EventCancelled EventStatus = "CANCELLED"
)

type Event struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	Title       string               `bson:"title"`
	Description string               `bson:"description"`
	Venue       string               `bson:"venue,omitempty"`
	Location    *GeoPoint            `bson:"location,omitempty"`
	Online      bool                 `bson:"online"`
	StartDate   time.Time            `bson:"startDate"`
	EndDate     time.Time            `bson:"endDate"`
	Capacity    int                  `bson:"capacity"`
	Attendees   []primitive.ObjectID `bson:"attendees"`
	Status      EventStatus          `bson:"status"`
	CreatedBy   primitive.ObjectID   `bson:"createdBy"`
	CreatedAt   time.Time            `bson:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt"`
}

// StatusAt is the status the schedule implies at now. Cancelled events
// stay cancelled.
func (e *Event) StatusAt(now time.Time) EventStatus {
	switch {
	case e.Status == EventCancelled:
		return EventCancelled
	case now.Before(e.StartDate):
		return EventUpcoming
	case now.Before(e.EndDate):
		return EventOngoing
	default:
		return EventEnded
	}
}

func (e *Event) HasAttendee(id primitive.ObjectID) bool {
	for _, a := range e.Attendees {
		if a == id {
			return true
		}
	}
	return false
}

// SeatsLeft is unbounded (-1) when Capacity is zero.
func (e *Event) SeatsLeft() int {
	if e.Capacity <= 0 {
		return -1
	}
	left := e.Capacity - len(e.Attendees)
	if left < 0 {
		return 0
	}
	return left
}
