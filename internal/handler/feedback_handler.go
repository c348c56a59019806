package handler

import (
	"net/http"

	"github.com/Eursukkul/campus-events/internal/dto"
	"github.com/Eursukkul/campus-events/internal/middleware"
	"github.com/Eursukkul/campus-events/internal/service"
	"github.com/labstack/echo/v4"
)

type FeedbackHandler struct {
	svc service.FeedbackService
}

func NewFeedbackHandler(svc service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{svc: svc}
}

func (h *FeedbackHandler) RegisterRoutes(api *echo.Group) {
	api.POST("/events/:id/feedback", h.Submit)
	api.GET("/events/:id/feedback", h.ListByEvent)
	api.GET("/events/:id/rating", h.Rating)
	api.GET("/users/:id/feedback", h.ListByUser)
}

func (h *FeedbackHandler) Submit(c echo.Context) error {
	var req dto.SubmitFeedbackRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	profile := middleware.CurrentProfile(c)
	if profile == nil {
		return toHTTPError(service.ErrForbidden)
	}

	fb, err := h.svc.Submit(c.Request().Context(), c.Param("id"), profile.ID, req.Rating, req.Comment)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, dto.ToFeedbackResponse(fb))
}

func (h *FeedbackHandler) ListByEvent(c echo.Context) error {
	fb, err := h.svc.ListByEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToFeedbackResponses(fb))
}

func (h *FeedbackHandler) ListByUser(c echo.Context) error {
	fb, err := h.svc.ListByUser(c.Request().Context(), middleware.CurrentProfile(c), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToFeedbackResponses(fb))
}

func (h *FeedbackHandler) Rating(c echo.Context) error {
	summary, err := h.svc.AverageRating(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, summary)
}
