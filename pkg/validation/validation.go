package validation

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Register installs the custom tags and reports field names by their json
// name. Call it once on gin's validator engine.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	if err := v.RegisterValidation("objectid", objectID); err != nil {
		return err
	}
	return v.RegisterValidation("geopoint", geoPoint)
}

func objectID(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	return primitive.IsValidObjectID(field.String())
}

// geoPoint accepts [lng, lat] pairs.
func geoPoint(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Slice && field.Kind() != reflect.Array {
		return false
	}
	if field.Len() != 2 {
		return false
	}
	lng, lat := toFloat(field.Index(0)), toFloat(field.Index(1))
	return lng >= -180 && lng <= 180 && lat >= -90 && lat <= 90
}

func toFloat(v reflect.Value) float64 {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.Int, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	}
	return 1000
}

// Messages turns a binding error into readable messages. Errors that are
// not validation failures yield a single message.
func Messages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return []string{"request body is required"}
		case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
			return []string{"request body is not valid JSON"}
		case errors.As(err, &typeErr):
			return []string{typeErr.Field + " has the wrong type"}
		}
		return []string{err.Error()}
	}

	out := make([]string, 0, len(verrs))
	for _, e := range verrs {
		if msgs := CustomMessage(e.Field()); msgs != nil {
			if msg, ok := msgs[e.Tag()]; ok {
				out = append(out, msg)
				continue
			}
		}
		out = append(out, DefaultMessage(e.Field(), e.Tag(), e.Param()))
	}
	return out
}
