package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/Eursukkul/campus-events/internal/analytics"
	"github.com/Eursukkul/campus-events/internal/middleware"
	"github.com/Eursukkul/campus-events/internal/state"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type Refresher interface {
	Refresh(ctx context.Context) error
}

type AnalyticsHandler struct {
	refresher Refresher
	mirror    *state.Mirror
	log       *zap.Logger
	now       func() time.Time
}

func NewAnalyticsHandler(refresher Refresher, mirror *state.Mirror, log *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{refresher: refresher, mirror: mirror, log: log, now: time.Now}
}

func (h *AnalyticsHandler) RegisterRoutes(api *echo.Group) {
	api.GET("/analytics", h.Summary, middleware.OrganizerOnly)
}

// Summary computes the caller's dashboard from freshly loaded state. When
// the reload fails the last known state is used.
func (h *AnalyticsHandler) Summary(c echo.Context) error {
	profile := middleware.CurrentProfile(c)

	if err := h.refresher.Refresh(c.Request().Context()); err != nil {
		h.log.Warn("refresh before analytics", zap.Error(err))
	}

	snap := h.mirror.Snapshot()
	return c.JSON(http.StatusOK, analytics.Summarize(profile.ID, snap.Events, snap.Registrations, snap.Feedback, h.now()))
}
