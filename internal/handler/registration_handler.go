package handler

import (
	"net/http"
	"strings"

	"github.com/Eursukkul/campus-events/internal/dto"
	"github.com/Eursukkul/campus-events/internal/middleware"
	"github.com/Eursukkul/campus-events/internal/models"
	"github.com/Eursukkul/campus-events/internal/service"
	"github.com/labstack/echo/v4"
)

type RegistrationHandler struct {
	svc service.RegistrationService
}

func NewRegistrationHandler(svc service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

func (h *RegistrationHandler) RegisterRoutes(api *echo.Group) {
	api.POST("/events/:id/registrations", h.Register)
	api.DELETE("/events/:id/registrations", h.Cancel)
	api.GET("/events/:id/registrations", h.ListByEvent)

	api.GET("/registrations/me", h.ListMine)
	api.PATCH("/registrations/:id/status", h.SetStatus, middleware.OrganizerOnly)
	api.POST("/registrations/:id/payment", h.CompletePayment)
}

// Register signs the caller up. A repeated request answers 200 with the
// registration that already exists.
func (h *RegistrationHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	profile := middleware.CurrentProfile(c)
	if profile == nil {
		return toHTTPError(service.ErrForbidden)
	}
	name := strings.TrimSpace(req.UserName)
	if name == "" {
		name = profile.FullName
	}

	reg, created, err := h.svc.Register(c.Request().Context(), c.Param("id"), profile.ID, name)
	if err != nil {
		return toHTTPError(err)
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	return c.JSON(status, dto.ToRegistrationResponse(reg))
}

func (h *RegistrationHandler) Cancel(c echo.Context) error {
	profile := middleware.CurrentProfile(c)
	if profile == nil {
		return toHTTPError(service.ErrForbidden)
	}
	if err := h.svc.Cancel(c.Request().Context(), c.Param("id"), profile.ID); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *RegistrationHandler) ListByEvent(c echo.Context) error {
	regs, err := h.svc.ListByEvent(c.Request().Context(), middleware.CurrentProfile(c), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToRegistrationResponses(regs))
}

func (h *RegistrationHandler) ListMine(c echo.Context) error {
	regs, err := h.svc.ListMine(c.Request().Context(), middleware.CurrentProfile(c))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToRegistrationResponses(regs))
}

func (h *RegistrationHandler) SetStatus(c echo.Context) error {
	var req dto.SetStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	status, err := models.ParsePaymentStatus(strings.ToLower(strings.TrimSpace(req.PaymentStatus)))
	if err != nil {
		return badRequest("payment_status must be approved or rejected")
	}

	reg, err := h.svc.SetStatus(c.Request().Context(), middleware.CurrentProfile(c), c.Param("id"), status)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToRegistrationResponse(reg))
}

// CompletePayment is the simulated payment step for priced events.
func (h *RegistrationHandler) CompletePayment(c echo.Context) error {
	reg, err := h.svc.CompletePayment(c.Request().Context(), middleware.CurrentProfile(c), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToRegistrationResponse(reg))
}
