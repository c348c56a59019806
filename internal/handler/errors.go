package handler

import (
	"errors"
	"net/http"

	"github.com/Eursukkul/campus-events/internal/dto"
	"github.com/Eursukkul/campus-events/internal/service"
	"github.com/labstack/echo/v4"
)

const storeUnavailable = "the data store is unavailable, please try again"

// toHTTPError maps the service error taxonomy onto HTTP responses.
func toHTTPError(err error) *echo.HTTPError {
	var ve *service.ValidationError
	var se *service.StoreError

	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, dto.ErrorResponse{Message: ve.Error(), Fields: ve.Fields})
	case errors.Is(err, service.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrRegistrationClosed):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrEventFull):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrDuplicateFeedback):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.As(err, &se):
		return echo.NewHTTPError(http.StatusBadGateway, storeUnavailable).SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
	}
}

func badRequest(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, msg)
}
