package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/Eursukkul/campus-events/internal/models"
	"github.com/Eursukkul/campus-events/internal/repository"
	"github.com/Eursukkul/campus-events/internal/state"
	"github.com/Eursukkul/campus-events/pkg/validate"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// --- Mock EventRepository ---

type mockEventRepo struct {
	findAllFn  func(ctx context.Context) ([]models.Event, error)
	findByIDFn func(ctx context.Context, id string) (*models.Event, error)
	createFn   func(ctx context.Context, event *models.Event) error
	updateFn   func(ctx context.Context, id string, patch models.EventPatch) error
	deleteFn   func(ctx context.Context, id string) error
}

func (m *mockEventRepo) FindAll(ctx context.Context) ([]models.Event, error) {
	if m.findAllFn == nil {
		return nil, nil
	}
	return m.findAllFn(ctx)
}
func (m *mockEventRepo) FindByID(ctx context.Context, id string) (*models.Event, error) {
	if m.findByIDFn == nil {
		return nil, repository.ErrNotFound
	}
	return m.findByIDFn(ctx, id)
}
func (m *mockEventRepo) Create(ctx context.Context, event *models.Event) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, event)
}
func (m *mockEventRepo) Update(ctx context.Context, id string, patch models.EventPatch) error {
	if m.updateFn == nil {
		return nil
	}
	return m.updateFn(ctx, id, patch)
}
func (m *mockEventRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn == nil {
		return nil
	}
	return m.deleteFn(ctx, id)
}

// --- Mock FeedbackRepository ---

type mockFeedbackRepo struct {
	findAllFn            func(ctx context.Context) ([]models.Feedback, error)
	findByEventFn        func(ctx context.Context, eventID string) ([]models.Feedback, error)
	findByUserFn         func(ctx context.Context, userID string) ([]models.Feedback, error)
	findByUserAndEventFn func(ctx context.Context, userID, eventID string) (*models.Feedback, error)
	createFn             func(ctx context.Context, fb *models.Feedback) error
}

func (m *mockFeedbackRepo) FindAll(ctx context.Context) ([]models.Feedback, error) {
	if m.findAllFn == nil {
		return nil, nil
	}
	return m.findAllFn(ctx)
}
func (m *mockFeedbackRepo) FindByEvent(ctx context.Context, eventID string) ([]models.Feedback, error) {
	return m.findByEventFn(ctx, eventID)
}
func (m *mockFeedbackRepo) FindByUser(ctx context.Context, userID string) ([]models.Feedback, error) {
	return m.findByUserFn(ctx, userID)
}
func (m *mockFeedbackRepo) FindByUserAndEvent(ctx context.Context, userID, eventID string) (*models.Feedback, error) {
	if m.findByUserAndEventFn == nil {
		return nil, repository.ErrNotFound
	}
	return m.findByUserAndEventFn(ctx, userID, eventID)
}
func (m *mockFeedbackRepo) Create(ctx context.Context, fb *models.Feedback) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, fb)
}

// --- In-memory RegistrationRepository ---

// memRegistrations claims seats against a shared event table the same way
// the gorm repository does.
type memRegistrations struct {
	mu     sync.Mutex
	events map[string]*models.Event
	rows   []models.Registration

	failCreate error
	failFind   error
}

func newMemRegistrations(events ...*models.Event) *memRegistrations {
	m := &memRegistrations{events: map[string]*models.Event{}}
	for _, e := range events {
		m.events[e.ID] = e
	}
	return m
}

func (m *memRegistrations) FindAll(ctx context.Context) ([]models.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Registration(nil), m.rows...), nil
}

func (m *memRegistrations) FindByID(ctx context.Context, id string) (*models.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRegistrations) FindByEvent(ctx context.Context, eventID string) ([]models.Registration, error) {
	return m.filter(func(r models.Registration) bool { return r.EventID == eventID }), nil
}

func (m *memRegistrations) FindByUser(ctx context.Context, userID string) ([]models.Registration, error) {
	return m.filter(func(r models.Registration) bool { return r.UserID == userID }), nil
}

func (m *memRegistrations) filter(keep func(models.Registration) bool) []models.Registration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Registration{}
	for _, r := range m.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (m *memRegistrations) FindByUserAndEvent(ctx context.Context, userID, eventID string) (*models.Registration, error) {
	if m.failFind != nil {
		return nil, m.failFind
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.UserID == userID && r.EventID == eventID {
			return &r, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRegistrations) CreateWithSeat(ctx context.Context, reg *models.Registration) (int, error) {
	if m.failCreate != nil {
		return 0, m.failCreate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[reg.EventID]
	if !ok {
		return 0, repository.ErrNotFound
	}
	for _, r := range m.rows {
		if r.UserID == reg.UserID && r.EventID == reg.EventID {
			return 0, repository.ErrDuplicate
		}
	}
	if e.CurrentAttendees >= e.MaxAttendees {
		return 0, repository.ErrNoSeat
	}
	e.CurrentAttendees++
	m.rows = append(m.rows, *reg)
	return e.CurrentAttendees, nil
}

func (m *memRegistrations) DeleteAndReleaseSeat(ctx context.Context, eventID, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.rows {
		if r.UserID == userID && r.EventID == eventID {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			e := m.events[eventID]
			if e.CurrentAttendees > 0 {
				e.CurrentAttendees--
			}
			return e.CurrentAttendees, nil
		}
	}
	return 0, repository.ErrNotFound
}

func (m *memRegistrations) UpdateStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows[i].PaymentStatus = status
			return nil
		}
	}
	return repository.ErrNotFound
}

// --- Mock Emitter / Publisher / ImageStore / NotificationLog ---

type recordingEmitter struct {
	mu   sync.Mutex
	sent []NotificationInput
}

func (r *recordingEmitter) Emit(ctx context.Context, in NotificationInput) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, in)
	return &models.Notification{Title: in.Title, Message: in.Message, UserID: in.UserID, EventID: in.EventID}, nil
}

type published struct {
	key     string
	payload any
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (r *recordingPublisher) Publish(key string, payload any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, published{key: key, payload: payload})
	return r.err
}

func (r *recordingPublisher) keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.msgs))
	for i, m := range r.msgs {
		out[i] = m.key
	}
	return out
}

type mockImageStore struct {
	uploadFn func(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

func (m *mockImageStore) Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	return m.uploadFn(ctx, key, contentType, body, size)
}

type memLog struct {
	items   []models.Notification
	saves   int
	tokens  map[string]string
	saveErr error
	loadErr error
}

func (m *memLog) Load(ctx context.Context) ([]models.Notification, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]models.Notification(nil), m.items...), nil
}

func (m *memLog) Save(ctx context.Context, items []models.Notification) error {
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	m.items = append([]models.Notification(nil), items...)
	return nil
}

func (m *memLog) SaveToken(ctx context.Context, userID, token string) error {
	if m.tokens == nil {
		m.tokens = map[string]string{}
	}
	m.tokens[userID] = token
	return nil
}

// --- Fixtures ---

func organizer(id string) *models.Profile {
	return &models.Profile{ID: id, FullName: "Org " + id, Role: models.RoleOrganizer, ClubName: "CSI Club"}
}

func student(id string) *models.Profile {
	return &models.Profile{ID: id, FullName: "Student " + id, Role: models.RoleStudent}
}

func sampleEvent(id string) *models.Event {
	return &models.Event{
		ID:           id,
		Title:        "Go Workshop",
		Description:  "Hands-on Go",
		Date:         time.Date(2026, 3, 17, 0, 0, 0, 0, time.UTC),
		Time:         "10:00 AM",
		Location:     "Lab 3",
		Club:         models.ClubCSI,
		Category:     models.CategoryTechnical,
		OrganizerID:  "org-1",
		MaxAttendees: 2,
		DueDate:      fixedNow.Add(24 * time.Hour),
	}
}

func newTestEventService(repo repository.EventRepository, mirror *state.Mirror, emitter Emitter, pub Publisher, images ImageStore) *eventService {
	svc := NewEventService(repo, mirror, validate.New(), emitter, pub, images, 1024, nil, zap.NewNop()).(*eventService)
	svc.now = clock
	return svc
}

func newTestRegistrationService(regs repository.RegistrationRepository, events repository.EventRepository, mirror *state.Mirror, emitter Emitter, pub Publisher) *registrationService {
	svc := NewRegistrationService(regs, events, mirror, emitter, pub, nil, zap.NewNop()).(*registrationService)
	svc.now = clock
	return svc
}
