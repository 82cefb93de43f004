package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Webhook topics
const (
	TopicUserCreated    = "user.created"
	TopicPostPublished  = "post.published"
	TopicCommentCreated = "comment.created"
	TopicEventCreated   = "event.created"
	TopicEventCancelled = "event.cancelled"
	TopicLeadCreated    = "lead.created"
)

var WebhookTopics = []string{
	TopicUserCreated,
	TopicPostPublished,
	TopicCommentCreated,
	TopicEventCreated,
	TopicEventCancelled,
	TopicLeadCreated,
}

type Webhook struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Name            string             `bson:"name"`
	URL             string             `bson:"url"`
	Events          []string           `bson:"events"`
	Secret          string             `bson:"secret"`
	PayloadTemplate string             `bson:"payloadTemplate,omitempty"`
	Active          bool               `bson:"active"`
	FailureCount    int                `bson:"failureCount"`
	LastStatusCode  int                `bson:"lastStatusCode,omitempty"`
	LastError       string             `bson:"lastError,omitempty"`
	LastDeliveredAt *time.Time         `bson:"lastDeliveredAt,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func (w *Webhook) Subscribes(topic string) bool {
	for _, e := range w.Events {
		if e == topic {
			return true
		}
	}
	return false
}
