package dto

import (
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
)

type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required,min=3,max=200"`
	Description string    `json:"description" binding:"required"`
	Venue       string    `json:"venue" binding:"omitempty,max=200"`
	Location    []float64 `json:"location" binding:"omitempty,geopoint"`
	Online      bool      `json:"online"`
	StartDate   time.Time `json:"startDate" binding:"required"`
	EndDate     time.Time `json:"endDate" binding:"required,gtfield=StartDate"`
	Capacity    int       `json:"capacity" binding:"gte=0"`
}

type UpdateEventRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=3,max=200"`
	Description *string    `json:"description" binding:"omitempty,min=1"`
	Venue       *string    `json:"venue" binding:"omitempty,max=200"`
	Location    []float64  `json:"location" binding:"omitempty,geopoint"`
	Online      *bool      `json:"online"`
	StartDate   *time.Time `json:"startDate"`
	EndDate     *time.Time `json:"endDate"`
	Capacity    *int       `json:"capacity" binding:"omitempty,gte=0"`
}

type EventResponse struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Venue         string            `json:"venue,omitempty"`
	Location      *model.GeoPoint   `json:"location,omitempty"`
	Online        bool              `json:"online"`
	StartDate     time.Time         `json:"startDate"`
	EndDate       time.Time         `json:"endDate"`
	Capacity      int               `json:"capacity"`
	AttendeeCount int               `json:"attendeeCount"`
	SeatsLeft     int               `json:"seatsLeft"`
	Status        model.EventStatus `json:"status"`
	CreatedBy     string            `json:"createdBy"`
	CreatedAt     time.Time         `json:"createdAt"`
	UpdatedAt     time.Time         `json:"updatedAt"`
}

func NewEventResponse(e *model.Event) EventResponse {
	return EventResponse{
		ID:            e.ID.Hex(),
		Title:         e.Title,
		Description:   e.Description,
		Venue:         e.Venue,
		Location:      e.Location,
		Online:        e.Online,
		StartDate:     e.StartDate,
		EndDate:       e.EndDate,
		Capacity:      e.Capacity,
		AttendeeCount: len(e.Attendees),
		SeatsLeft:     e.SeatsLeft(),
		Status:        e.Status,
		CreatedBy:     e.CreatedBy.Hex(),
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}
