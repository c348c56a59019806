package handler

import (
	"net/http"

	"github.com/Eursukkul/campus-events/internal/dto"
	"github.com/Eursukkul/campus-events/internal/middleware"
	"github.com/Eursukkul/campus-events/internal/models"
	"github.com/Eursukkul/campus-events/internal/service"
	"github.com/labstack/echo/v4"
)

type EventHandler struct {
	svc service.EventService
}

func NewEventHandler(svc service.EventService) *EventHandler {
	return &EventHandler{svc: svc}
}

func (h *EventHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListEvents)
	g.GET("/:id", h.GetEvent)
	g.POST("", h.CreateEvent)
	g.PATCH("/:id", h.UpdateEvent, middleware.OrganizerOnly)
	g.DELETE("/:id", h.DeleteEvent, middleware.OrganizerOnly)
	g.POST("/:id/image", h.UploadImage, middleware.OrganizerOnly)
}

// ListEvents returns all events, or those of one club or category.
func (h *EventHandler) ListEvents(c echo.Context) error {
	ctx := c.Request().Context()

	var (
		events []models.Event
		err    error
	)
	switch {
	case c.QueryParam("club") != "":
		events, err = h.svc.ListByClub(ctx, c.QueryParam("club"))
	case c.QueryParam("category") != "":
		events, err = h.svc.ListByCategory(ctx, c.QueryParam("category"))
	default:
		events, err = h.svc.ListEvents(ctx)
	}
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToEventResponses(events))
}

func (h *EventHandler) GetEvent(c echo.Context) error {
	event, err := h.svc.GetEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *EventHandler) CreateEvent(c echo.Context) error {
	var req dto.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	profile := middleware.CurrentProfile(c)
	if profile == nil {
		return toHTTPError(service.ErrForbidden)
	}

	event, err := h.svc.CreateEvent(c.Request().Context(), profile, req.ToDraft(profile.ID))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToEventResponse(event))
}

func (h *EventHandler) UpdateEvent(c echo.Context) error {
	var req dto.UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	event, err := h.svc.UpdateEvent(c.Request().Context(), middleware.CurrentProfile(c), c.Param("id"), req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}

func (h *EventHandler) DeleteEvent(c echo.Context) error {
	if err := h.svc.DeleteEvent(c.Request().Context(), middleware.CurrentProfile(c), c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// UploadImage accepts a multipart "image" field and attaches it to the event.
func (h *EventHandler) UploadImage(c echo.Context) error {
	fh, err := c.FormFile("image")
	if err != nil {
		return badRequest("image file is required")
	}

	f, err := fh.Open()
	if err != nil {
		return badRequest("could not read image")
	}
	defer f.Close()

	event, err := h.svc.AttachImage(c.Request().Context(), middleware.CurrentProfile(c), c.Param("id"), service.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToEventResponse(event))
}
