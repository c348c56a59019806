package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/Eursukkul/campus-events/internal/middleware"
	"github.com/Eursukkul/campus-events/internal/models"
	"github.com/Eursukkul/campus-events/internal/service"
	"github.com/labstack/echo/v4"
)

// --- Mock EventService ---

type mockEventService struct {
	listFn       func(ctx context.Context) ([]models.Event, error)
	getFn        func(ctx context.Context, id string) (*models.Event, error)
	byClubFn     func(ctx context.Context, club string) ([]models.Event, error)
	byCategoryFn func(ctx context.Context, category string) ([]models.Event, error)
	createFn     func(ctx context.Context, creator *models.Profile, draft models.EventDraft) (*models.Event, error)
	updateFn     func(ctx context.Context, actor *models.Profile, id string, patch models.EventPatch) (*models.Event, error)
	deleteFn     func(ctx context.Context, actor *models.Profile, id string) error
	imageFn      func(ctx context.Context, actor *models.Profile, id string, img service.ImageUpload) (*models.Event, error)
}

func (m *mockEventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	return m.listFn(ctx)
}
func (m *mockEventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return m.getFn(ctx, id)
}
func (m *mockEventService) ListByClub(ctx context.Context, club string) ([]models.Event, error) {
	return m.byClubFn(ctx, club)
}
func (m *mockEventService) ListByCategory(ctx context.Context, category string) ([]models.Event, error) {
	return m.byCategoryFn(ctx, category)
}
func (m *mockEventService) CreateEvent(ctx context.Context, creator *models.Profile, draft models.EventDraft) (*models.Event, error) {
	return m.createFn(ctx, creator, draft)
}
func (m *mockEventService) UpdateEvent(ctx context.Context, actor *models.Profile, id string, patch models.EventPatch) (*models.Event, error) {
	return m.updateFn(ctx, actor, id, patch)
}
func (m *mockEventService) DeleteEvent(ctx context.Context, actor *models.Profile, id string) error {
	return m.deleteFn(ctx, actor, id)
}
func (m *mockEventService) AttachImage(ctx context.Context, actor *models.Profile, id string, img service.ImageUpload) (*models.Event, error) {
	return m.imageFn(ctx, actor, id, img)
}

// --- Mock RegistrationService ---

type mockRegistrationService struct {
	registerFn  func(ctx context.Context, eventID, userID, userName string) (*models.Registration, bool, error)
	cancelFn    func(ctx context.Context, eventID, userID string) error
	listFn      func(ctx context.Context, viewer *models.Profile, eventID string) ([]models.Registration, error)
	mineFn      func(ctx context.Context, viewer *models.Profile) ([]models.Registration, error)
	setStatusFn func(ctx context.Context, actor *models.Profile, id string, status models.PaymentStatus) (*models.Registration, error)
	payFn       func(ctx context.Context, actor *models.Profile, id string) (*models.Registration, error)
}

func (m *mockRegistrationService) Register(ctx context.Context, eventID, userID, userName string) (*models.Registration, bool, error) {
	return m.registerFn(ctx, eventID, userID, userName)
}
func (m *mockRegistrationService) Cancel(ctx context.Context, eventID, userID string) error {
	return m.cancelFn(ctx, eventID, userID)
}
func (m *mockRegistrationService) ListByEvent(ctx context.Context, viewer *models.Profile, eventID string) ([]models.Registration, error) {
	return m.listFn(ctx, viewer, eventID)
}
func (m *mockRegistrationService) ListMine(ctx context.Context, viewer *models.Profile) ([]models.Registration, error) {
	return m.mineFn(ctx, viewer)
}
func (m *mockRegistrationService) SetStatus(ctx context.Context, actor *models.Profile, id string, status models.PaymentStatus) (*models.Registration, error) {
	return m.setStatusFn(ctx, actor, id, status)
}
func (m *mockRegistrationService) CompletePayment(ctx context.Context, actor *models.Profile, id string) (*models.Registration, error) {
	return m.payFn(ctx, actor, id)
}

// --- Mock FeedbackService ---

type mockFeedbackService struct {
	submitFn  func(ctx context.Context, eventID, userID string, rating int, comment *string) (*models.Feedback, error)
	byEventFn func(ctx context.Context, eventID string) ([]models.Feedback, error)
	byUserFn  func(ctx context.Context, viewer *models.Profile, userID string) ([]models.Feedback, error)
	avgFn     func(ctx context.Context, eventID string) (*service.RatingSummary, error)
}

func (m *mockFeedbackService) Submit(ctx context.Context, eventID, userID string, rating int, comment *string) (*models.Feedback, error) {
	return m.submitFn(ctx, eventID, userID, rating, comment)
}
func (m *mockFeedbackService) ListByEvent(ctx context.Context, eventID string) ([]models.Feedback, error) {
	return m.byEventFn(ctx, eventID)
}
func (m *mockFeedbackService) ListByUser(ctx context.Context, viewer *models.Profile, userID string) ([]models.Feedback, error) {
	return m.byUserFn(ctx, viewer, userID)
}
func (m *mockFeedbackService) AverageRating(ctx context.Context, eventID string) (*service.RatingSummary, error) {
	return m.avgFn(ctx, eventID)
}

// --- Helpers ---

func newContext(method, target, body string, profile *models.Profile) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if profile != nil {
		middleware.SetProfile(c, profile)
	}
	return c, rec
}

func withID(c echo.Context, id string) echo.Context {
	c.SetParamNames("id")
	c.SetParamValues(id)
	return c
}

func organizer(id string) *models.Profile {
	return &models.Profile{ID: id, FullName: "Org " + id, Role: models.RoleOrganizer}
}

func student(id string) *models.Profile {
	return &models.Profile{ID: id, FullName: "Student " + id, Role: models.RoleStudent}
}
