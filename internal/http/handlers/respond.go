package handlers

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/notehub/internal/apperr"
	"github.com/gin-gonic/gin"
)

// APIError is the body of every non-2xx response.
type APIError struct {
	Error     string      `json:"error"`
	Code      string      `json:"code"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	if id := ctx.GetString("request_id"); id != "" {
		return id
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.AbortWithStatusJSON(status, APIError{
		Error:     message,
		Code:      code,
		RequestID: requestIDFrom(ctx),
		Details:   details,
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusNotFound, code, message, nil)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, nil)
}

// RespondAppError answers with the status and message carried by err. Untyped
// errors become a generic 500; the cause is logged, never sent.
func RespondAppError(ctx *gin.Context, err error, fallback string) {
	status := apperr.Status(err)

	if status >= http.StatusInternalServerError {
		_ = ctx.Error(err)
		slog.ErrorContext(ctx.Request.Context(), "request_failed",
			"route", ctx.FullPath(),
			"request_id", requestIDFrom(ctx),
			"err", err,
		)
	}

	appErr, ok := apperr.As(err)
	if !ok {
		RespondInternal(ctx, fallback)
		return
	}

	RespondError(ctx, status, appErr.Code, appErr.Message, nil)
}
