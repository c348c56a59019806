package middleware

import (
	"net/http"

	"github.com/Eursukkul/campus-events/internal/dto"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// NewErrorHandler renders every error as a JSON body with a message.
// Server-side failures are logged with their internal cause.
func NewErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		body := dto.ErrorResponse{Message: err.Error()}

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			switch m := he.Message.(type) {
			case string:
				body.Message = m
			case dto.ErrorResponse:
				body = m
			}
			if he.Internal != nil {
				err = he.Internal
			}
		}

		if code >= http.StatusInternalServerError {
			log.Error("request failed",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", code),
				zap.Error(err),
			)
		}

		_ = c.JSON(code, body)
	}
}
