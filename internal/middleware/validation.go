package middleware

import (
	"net/http"

	"github.com/InventorsDev/inventor-backend-sub000/internal/constants"
	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	ctxutil "github.com/InventorsDev/inventor-backend-sub000/pkg/context"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/validation"
	"github.com/gin-gonic/gin"
)

const payloadKey = "payload"

// ValidateBody decodes the JSON body into a T and runs its binding rules.
// On success the value is available to the handler through Payload.
func ValidateBody[T any](log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := new(T)
		if err := c.ShouldBindJSON(req); err != nil {
			messages := validation.Messages(err)

			log.WarnWithContext(c.Request.Context(), "Request validation failed").
				Method(c.Request.Method).
				Path(c.Request.URL.Path).
				Strings("validation_errors", messages).
				Log()

			body := constants.BuildErrorResponse("Validation failed", apperrors.ErrInvalidInput.Code, messages)
			if id := ctxutil.GetRequestID(c.Request.Context()); id != "" {
				body[constants.ResponseFieldRequestID] = id
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, body)
			return
		}

		c.Set(payloadKey, req)
		c.Next()
	}
}

// Payload returns the body validated by ValidateBody[T]. It panics when the
// route was not wired with the matching ValidateBody.
func Payload[T any](c *gin.Context) *T {
	return c.MustGet(payloadKey).(*T)
}
