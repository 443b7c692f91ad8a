package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/drinkbook/backend/internal/model"
	"github.com/pageza/drinkbook/backend/internal/remote"
	"github.com/pageza/drinkbook/backend/internal/service"
)

// statusFor maps a store or service error onto an HTTP status and code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrInvalid), errors.Is(err, service.ErrUnsupportedImage):
		return http.StatusBadRequest, remote.CodeInvalid
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, remote.ErrNotFound):
		return http.StatusNotFound, remote.CodeNotFound
	case errors.Is(err, remote.ErrMissingIndex):
		return http.StatusPreconditionFailed, remote.CodeMissingIndex
	case errors.Is(err, remote.ErrNotConnected):
		return http.StatusServiceUnavailable, remote.CodeNotConnected
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	default:
		return http.StatusInternalServerError, ""
	}
}

// writeError answers with the JSON error body and records err on the context
// for the request logger.
func writeError(c *gin.Context, err error) {
	status, code := statusFor(err)
	_ = c.Error(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	c.AbortWithStatusJSON(status, remote.ErrorBody{Error: msg, Code: code})
}

func badRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, remote.ErrorBody{Error: msg, Code: remote.CodeInvalid})
}
