package handler

import (
	"context"
	"net/http"

	"github.com/InventorsDev/inventor-backend-sub000/internal/constants"
	apperrors "github.com/InventorsDev/inventor-backend-sub000/internal/errors"
	"github.com/InventorsDev/inventor-backend-sub000/internal/service"
	ctxutil "github.com/InventorsDev/inventor-backend-sub000/pkg/context"
	"github.com/InventorsDev/inventor-backend-sub000/pkg/logger"
	"github.com/gin-gonic/gin"
)

func handlerCtx(c *gin.Context, function string) context.Context {
	return ctxutil.WithFunction(c.Request.Context(), "handler", function)
}

// respondError maps err onto its HTTP status and the standard error body.
// Server errors are logged with their cause and never exposed.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	status := apperrors.ToHTTPStatus(err)
	message := apperrors.GetErrorMessage(err)
	details := apperrors.GetErrorDetails(err)

	if status >= http.StatusInternalServerError {
		log.ErrorWithContext(c.Request.Context(), "Request failed").
			Method(c.Request.Method).
			Path(c.Request.URL.Path).
			StatusCode(status).
			Err(err).
			Log()
		if !apperrors.IsDomainError(err) || apperrors.GetErrorCode(err) == apperrors.ErrInternal.Code {
			message = constants.MsgInternal
		}
	}

	body := constants.BuildErrorResponse(message, apperrors.GetErrorCode(err), details)
	if id := ctxutil.GetRequestID(c.Request.Context()); id != "" {
		body[constants.ResponseFieldRequestID] = id
	}
	c.AbortWithStatusJSON(status, body)
}

// respondCached writes a list page and marks whether it came from the cache.
func respondCached(c *gin.Context, page any, hit bool) {
	if hit {
		c.Header(constants.HeaderXCache, "HIT")
	} else {
		c.Header(constants.HeaderXCache, "MISS")
	}
	c.JSON(http.StatusOK, page)
}

func respondDeleted(c *gin.Context) {
	c.JSON(http.StatusOK, constants.BuildSuccessResponse(constants.MsgDeleted))
}

// actor returns the authenticated caller; routes using it sit behind
// RequireAuth.
func actor(c *gin.Context) (service.Actor, bool) {
	a, ok := service.ActorFromContext(c.Request.Context())
	if !ok {
		respondError(c, logger.NewNop(), apperrors.ErrUnauthorized)
	}
	return a, ok
}

// optionalActor returns nil for anonymous callers.
func optionalActor(c *gin.Context) *service.Actor {
	a, ok := service.ActorFromContext(c.Request.Context())
	if !ok {
		return nil
	}
	return &a
}
