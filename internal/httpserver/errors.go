package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// classify maps a service error to its status code and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, "validation_failed"
	case errors.Is(err, domain.ErrAuthRequired):
		return http.StatusUnauthorized, "auth_required"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict, "already_exists"
	case errors.Is(err, domain.ErrStoreRead), errors.Is(err, domain.ErrStoreWrite):
		return http.StatusServiceUnavailable, "store_unavailable"
	}
	return http.StatusInternalServerError, "internal_error"
}

func writeError(c *gin.Context, logger zerolog.Logger, err error) {
	status, code := classify(err)
	resp := errorResponse{Error: code, Message: notification(status, err)}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		resp.Field = ve.Field
	}
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.Request.URL.Path).Int("status", status).Msg("http: request failed")
	}
	c.JSON(status, resp)
}

// notification is the user-facing text. Internal details stay in the logs.
func notification(status int, err error) string {
	switch status {
	case http.StatusServiceUnavailable:
		return "the store is temporarily unavailable, please try again"
	case http.StatusInternalServerError:
		return "internal error"
	}
	return err.Error()
}

func writeConflict(c *gin.Context, code, message string) {
	c.JSON(http.StatusConflict, errorResponse{Error: code, Message: message})
}
