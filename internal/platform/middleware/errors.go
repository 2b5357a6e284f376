package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/kplc/bulletin-notify/pkg/apperr"
)

// errorBody renders an *apperr.Error into the JSON envelope every HTTP
// response in this service uses for failures.
func errorBody(err *apperr.Error) map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"kind":    string(err.Kind),
			"message": err.Message,
		},
	}
}

// HTTPErrorHandler adapts apperr.Error (the error type returned by every
// domain service) to the shared JSON envelope and HTTP status, falling back
// to echo's default handling for anything else (echo.HTTPError, bind
// failures, panics already converted by Recovery).
func HTTPErrorHandler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			if jsonErr := c.JSON(apperr.HTTPStatus(appErr.Kind), errorBody(appErr)); jsonErr != nil {
				logger.Error().Err(jsonErr).Msg("failed to write error response")
			}
			return
		}

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			msg := http.StatusText(httpErr.Code)
			if s, ok := httpErr.Message.(string); ok {
				msg = s
			}
			appErr := apperr.Validation(msg, nil)
			if httpErr.Code >= http.StatusInternalServerError {
				appErr = apperr.Unexpected(msg, nil)
			} else if httpErr.Code == http.StatusUnauthorized {
				appErr = apperr.Unauthorized(msg, nil)
			} else if httpErr.Code == http.StatusNotFound {
				appErr = apperr.NotFound(msg, nil)
			}
			if jsonErr := c.JSON(httpErr.Code, errorBody(appErr)); jsonErr != nil {
				logger.Error().Err(jsonErr).Msg("failed to write error response")
			}
			return
		}

		logger.Error().Err(err).Msg("unhandled error")
		_ = c.JSON(http.StatusInternalServerError, errorBody(apperr.Unexpected("internal server error", nil)))
	}
}
