package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/InventorsDev/inventor-backend-sub000/internal/constants"
	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	ctxutil "github.com/InventorsDev/inventor-backend-sub000/pkg/context"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxRequestIDLength = 64

// RequestContext puts the request id, client ip and user agent on the
// request context. An incoming X-Request-ID is kept when it looks sane.
func RequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderXRequestID)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = uuid.NewString()
		}

		ctx := ctxutil.WithRequestInfo(c.Request.Context(), ctxutil.RequestInfo{
			RequestID: requestID,
			ClientIP:  c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Header(constants.HeaderXRequestID, requestID)

		c.Next()
	}
}

// Timeout bounds the request context. Handlers see the deadline through
// their context; the response is not cut short.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// abortWithError writes the standard error body for err and stops the chain.
func abortWithError(c *gin.Context, err error) {
	body := constants.BuildErrorResponse(
		apperrors.GetErrorMessage(err),
		apperrors.GetErrorCode(err),
		apperrors.GetErrorDetails(err),
	)
	if id := ctxutil.GetRequestID(c.Request.Context()); id != "" {
		body[constants.ResponseFieldRequestID] = id
	}
	status := apperrors.ToHTTPStatus(err)
	if !apperrors.IsDomainError(err) {
		status = http.StatusInternalServerError
		body[constants.ResponseFieldMessage] = constants.MsgInternal
	}
	c.AbortWithStatusJSON(status, body)
}
