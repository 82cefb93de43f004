package validation

import (
	"fmt"
)

var customMessages = map[string]map[string]string{
	"email": {
		"required": "email is required",
		"email":    "email is not a valid address",
	},
	"password": {
		"required": "password is required",
		"min":      "password must be at least 8 characters",
	},
	"newPassword": {
		"required": "newPassword is required",
		"min":      "newPassword must be at least 8 characters",
		"nefield":  "newPassword must differ from the current password",
	},
	"location": {
		"geopoint": "location must be [longitude, latitude] within valid bounds",
	},
	"endDate": {
		"gtfield": "endDate must be after startDate",
	},
}

// CustomMessage returns the field specific messages, or nil.
func CustomMessage(field string) map[string]string {
	return customMessages[field]
}

func DefaultMessage(field, tag, param string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "numeric":
		return fmt.Sprintf("%s must be numeric", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "len":
		return fmt.Sprintf("%s must have length %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, param)
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, param)
	case "lt":
		return fmt.Sprintf("%s must be less than %s", field, param)
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", field, param)
	case "nefield":
		return fmt.Sprintf("%s must differ from %s", field, param)
	case "url", "http_url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "uuid", "uuid4":
		return fmt.Sprintf("%s must be a valid UUID", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, param)
	case "objectid":
		return fmt.Sprintf("%s must be a valid identifier", field)
	case "geopoint":
		return fmt.Sprintf("%s must be [longitude, latitude]", field)
	case "dive":
		return fmt.Sprintf("%s contains an invalid item", field)
	case "unique":
		return fmt.Sprintf("%s must not contain duplicates", field)
	case "e164":
		return fmt.Sprintf("%s must be a phone number in E.164 format", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
