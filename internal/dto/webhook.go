package dto

import (
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/model"
)

type CreateWebhookRequest struct {
	Name            string   `json:"name" binding:"required,min=2,max=100"`
	URL             string   `json:"url" binding:"required,http_url"`
	Events          []string `json:"events" binding:"required,min=1,unique,dive,oneof=user.created post.published comment.created event.created event.cancelled lead.created"`
	Secret          string   `json:"secret" binding:"omitempty,min=16,max=200"`
	PayloadTemplate string   `json:"payloadTemplate" binding:"omitempty,max=10000"`
	Active          *bool    `json:"active"`
}

type UpdateWebhookRequest struct {
	Name            *string  `json:"name" binding:"omitempty,min=2,max=100"`
	URL             *string  `json:"url" binding:"omitempty,http_url"`
	Events          []string `json:"events" binding:"omitempty,min=1,unique,dive,oneof=user.created post.published comment.created event.created event.cancelled lead.created"`
	Secret          *string  `json:"secret" binding:"omitempty,min=16,max=200"`
	PayloadTemplate *string  `json:"payloadTemplate" binding:"omitempty,max=10000"`
	Active          *bool    `json:"active"`
}

type TestWebhookRequest struct {
	Topic string         `json:"topic" binding:"omitempty,oneof=user.created post.published comment.created event.created event.cancelled lead.created"`
	Data  map[string]any `json:"data"`
}

// WebhookResponse never carries the secret.
type WebhookResponse struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	URL             string     `json:"url"`
	Events          []string   `json:"events"`
	PayloadTemplate string     `json:"payloadTemplate,omitempty"`
	Active          bool       `json:"active"`
	FailureCount    int        `json:"failureCount"`
	LastStatusCode  int        `json:"lastStatusCode,omitempty"`
	LastError       string     `json:"lastError,omitempty"`
	LastDeliveredAt *time.Time `json:"lastDeliveredAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func NewWebhookResponse(w *model.Webhook) WebhookResponse {
	return WebhookResponse{
		ID:              w.ID.Hex(),
		Name:            w.Name,
		URL:             w.URL,
		Events:          w.Events,
		PayloadTemplate: w.PayloadTemplate,
		Active:          w.Active,
		FailureCount:    w.FailureCount,
		LastStatusCode:  w.LastStatusCode,
		LastError:       w.LastError,
		LastDeliveredAt: w.LastDeliveredAt,
		CreatedAt:       w.CreatedAt,
		UpdatedAt:       w.UpdatedAt,
	}
}

// CreatedWebhookResponse returns the secret once, on creation.
type CreatedWebhookResponse struct {
	WebhookResponse
	Secret string `json:"secret"`
}

type DeliveryResponse struct {
	DeliveryID string `json:"deliveryId"`
	StatusCode int    `json:"statusCode"`
	DurationMs int64  `json:"durationMs"`
	Delivered  bool   `json:"delivered"`
	Error      string `json:"error,omitempty"`
}
