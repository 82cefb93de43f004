package constants

// HTTP Header Names
const (
	HeaderContentType      = "Content-Type"
	HeaderAuthorization    = "Authorization"
	HeaderUserAgent        = "User-Agent"
	HeaderXRequestID       = "X-Request-ID"
	HeaderXCache           = "X-Cache"
	HeaderWebhookEvent     = "X-Webhook-Event"
	HeaderWebhookSignature = "X-Webhook-Signature"
	HeaderWebhookDelivery  = "X-Webhook-Delivery"
)

// HTTP Content Types
const (
	ContentTypeJSON = "application/json"
)

// Common HTTP Error Messages
const (
	MsgUnauthorized = "Unauthorized access"
	MsgForbidden    = "Access forbidden"
	MsgBadRequest   = "Invalid request"
	MsgInternal     = "Internal server error"
	MsgRateLimited  = "Rate limit exceeded"
)

// HTTP Success Messages
const (
	MsgDeleted = "Resource deleted successfully"
	MsgSuccess = "Operation completed successfully"
)
