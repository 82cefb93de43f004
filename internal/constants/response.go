package constants

// Standard Response Field Keys
const (
	ResponseFieldMessage   = "message"
	ResponseFieldCode      = "code"
	ResponseFieldDetails   = "details"
	ResponseFieldRequestID = "requestId"
)

func BuildErrorResponse(message, code string, details any) map[string]any {
	response := map[string]any{
		ResponseFieldMessage: message,
		ResponseFieldCode:    code,
	}

	if details != nil && details != "" {
		response[ResponseFieldDetails] = details
	}

	return response
}

func BuildSuccessResponse(message string) map[string]any {
	return map[string]any{
		ResponseFieldMessage: message,
	}
}
