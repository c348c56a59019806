package handler

import (
	"net/http"

	"github.com/Eursukkul/campus-events/internal/dto"
	"github.com/Eursukkul/campus-events/internal/middleware"
	"github.com/Eursukkul/campus-events/internal/models"
	"github.com/Eursukkul/campus-events/internal/service"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// EventSource supplies the events reminders are derived from.
type EventSource interface {
	Events() []models.Event
}

type NotificationHandler struct {
	svc    service.NotificationService
	events EventSource
	log    *zap.Logger
}

func NewNotificationHandler(svc service.NotificationService, events EventSource, log *zap.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, events: events, log: log}
}

func (h *NotificationHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.GET("/unread-count", h.UnreadCount)
	g.POST("/:id/read", h.MarkRead)
	g.POST("/read-all", h.MarkAllRead)
	g.POST("/push-token", h.RegisterPushToken)
}

// List refreshes the caller's reminders before returning the feed.
func (h *NotificationHandler) List(c echo.Context) error {
	profile := middleware.CurrentProfile(c)
	if profile == nil {
		return toHTTPError(service.ErrForbidden)
	}
	ctx := c.Request().Context()

	if _, err := h.svc.GenerateReminders(ctx, profile.ID, h.events.Events()); err != nil {
		h.log.Warn("generate reminders", zap.String("user_id", profile.ID), zap.Error(err))
	}

	return c.JSON(http.StatusOK, dto.ToNotificationResponses(h.svc.ListFor(ctx, profile.ID)))
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	profile := middleware.CurrentProfile(c)
	if profile == nil {
		return toHTTPError(service.ErrForbidden)
	}
	return c.JSON(http.StatusOK, dto.CountResponse{Count: h.svc.UnreadCount(c.Request().Context(), profile.ID)})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	profile := middleware.CurrentProfile(c)
	if profile == nil {
		return toHTTPError(service.ErrForbidden)
	}
	if err := h.svc.MarkRead(c.Request().Context(), profile.ID, c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	profile := middleware.CurrentProfile(c)
	if profile == nil {
		return toHTTPError(service.ErrForbidden)
	}
	n, err := h.svc.MarkAllRead(c.Request().Context(), profile.ID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.CountResponse{Count: n})
}

func (h *NotificationHandler) RegisterPushToken(c echo.Context) error {
	var req dto.PushTokenRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	profile := middleware.CurrentProfile(c)
	if profile == nil {
		return toHTTPError(service.ErrForbidden)
	}
	if err := h.svc.RegisterPushToken(c.Request().Context(), profile.ID, req.Token); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
