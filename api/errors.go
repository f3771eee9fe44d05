package api

import (
	"log/slog"
	"net/http"

	"github.com/Domenick1991/railbooking/internal/domain"
	"github.com/Domenick1991/railbooking/internal/logging"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      int    `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// statusFor maps a domain error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case domain.IsValidation(err), domain.IsMismatch(err), domain.IsIntegrity(err):
		return http.StatusBadRequest
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsConflict(err):
		return http.StatusConflict
	case domain.IsUnauthorized(err):
		return http.StatusUnauthorized
	case domain.IsForbidden(err):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as the JSON error body. Server errors are logged and never leak details.
func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logging.LogError(logging.FromContext(c.Request.Context()), "request failed", err,
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
		)
		message = "internal server error"
	}
	abortWith(c, status, message)
}

func abortWith(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorResponse{
		Error:     message,
		Code:      status,
		RequestID: GetRequestID(c),
	})
}

// badRequest reports a malformed request body or query.
func badRequest(c *gin.Context, err error) {
	abortWith(c, http.StatusBadRequest, err.Error())
}
