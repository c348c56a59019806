package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Eursukkul/campus-events/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const reminderTitle = "Upcoming Event"

// MaxLogEntries bounds the persisted log; the oldest entries go first.
const MaxLogEntries = 1000

// NotificationInput is what producers hand to the emitter. A nil UserID
// broadcasts to every user.
type NotificationInput struct {
	Kind    models.NotificationKind `json:"kind"`
	Title   string                  `json:"title"`
	Message string                  `json:"message"`
	UserID  *string                 `json:"user_id,omitempty"`
	EventID *string                 `json:"event_id,omitempty"`
}

// NotificationLog persists the notification log and push tokens.
type NotificationLog interface {
	Load(ctx context.Context) ([]models.Notification, error)
	Save(ctx context.Context, items []models.Notification) error
	SaveToken(ctx context.Context, userID, token string) error
}

type NotificationService interface {
	Emitter
	Load(ctx context.Context) error
	ListFor(ctx context.Context, userID string) []models.Notification
	UnreadCount(ctx context.Context, userID string) int
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
	GenerateReminders(ctx context.Context, userID string, events []models.Event) ([]models.Notification, error)
	RegisterPushToken(ctx context.Context, userID, token string) error
}

type notificationService struct {
	mu      sync.Mutex
	items   []models.Notification // newest first
	store   NotificationLog
	horizon time.Duration
	log     *zap.Logger
	now     func() time.Time
}

func NewNotificationService(store NotificationLog, horizon time.Duration, log *zap.Logger) NotificationService {
	return &notificationService{
		store:   store,
		horizon: horizon,
		log:     log,
		now:     time.Now,
	}
}

// Load replaces the in-memory log with the persisted one.
func (s *notificationService) Load(ctx context.Context) error {
	items, err := s.store.Load(ctx)
	if err != nil {
		return &StoreError{Op: "load notifications", Err: err}
	}
	slices.SortStableFunc(items, func(a, b models.Notification) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

func (s *notificationService) Emit(ctx context.Context, in NotificationInput) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.emitLocked(in)
	if err != nil {
		return nil, err
	}
	s.persist(ctx)
	return &n, nil
}

// emitLocked validates in and prepends it to the log. Callers hold s.mu
// and persist afterwards.
func (s *notificationService) emitLocked(in NotificationInput) (models.Notification, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Message = strings.TrimSpace(in.Message)
	if in.Title == "" {
		return models.Notification{}, invalid("title", "title is required")
	}
	if in.Message == "" {
		return models.Notification{}, invalid("message", "message is required")
	}
	if in.Kind == "" {
		in.Kind = models.KindGeneral
	}

	n := models.Notification{
		ID:        uuid.NewString(),
		Kind:      in.Kind,
		Title:     in.Title,
		Message:   in.Message,
		CreatedAt: s.now(),
		UserID:    in.UserID,
		EventID:   in.EventID,
	}
	s.items = slices.Insert(s.items, 0, n)
	if len(s.items) > MaxLogEntries {
		s.items = s.items[:MaxLogEntries]
	}
	return n, nil
}

// ListFor returns the viewer's feed, newest first, with Read resolved for
// that viewer.
func (s *notificationService) ListFor(ctx context.Context, userID string) []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Notification{}
	for i := range s.items {
		n := s.items[i]
		if !n.VisibleTo(userID) {
			continue
		}
		n.Read = n.ReadFor(userID)
		n.ReadBy = nil
		out = append(out, n)
	}
	return out
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for i := range s.items {
		if s.items[i].VisibleTo(userID) && !s.items[i].ReadFor(userID) {
			count++
		}
	}
	return count
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.items, func(n models.Notification) bool { return n.ID == id })
	if i < 0 || !s.items[i].VisibleTo(userID) {
		return ErrNotFound
	}
	if s.items[i].ReadFor(userID) {
		return nil
	}
	s.items[i].MarkReadFor(userID)
	s.persist(ctx)
	return nil
}

// MarkAllRead returns how many notifications changed state.
func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := 0
	for i := range s.items {
		if s.items[i].VisibleTo(userID) && !s.items[i].ReadFor(userID) {
			s.items[i].MarkReadFor(userID)
			changed++
		}
	}
	if changed > 0 {
		s.persist(ctx)
	}
	return changed, nil
}

// GenerateReminders emits at most one reminder per (event, user) for events
// starting within the reminder horizon. Reminders for events that have
// already started are dropped from the log.
func (s *notificationService) GenerateReminders(ctx context.Context, userID string, events []models.Event) ([]models.Notification, error) {
	if userID == "" {
		return nil, invalid("user_id", "user_id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	until := now.Add(s.horizon)
	pruned := s.pruneStartedLocked(events, now)

	var created []models.Notification
	for i := range events {
		e := events[i]
		start := e.StartsAt()
		if start.Before(now) || start.After(until) {
			continue
		}
		if s.hasReminderLocked(userID, e.ID) {
			continue
		}
		n, err := s.emitLocked(NotificationInput{
			Kind:    models.KindReminder,
			Title:   reminderTitle,
			Message: fmt.Sprintf("%s is on %s at %s, %s.", e.Title, e.Date.Format(dueDateLayout), e.Time, e.Location),
			UserID:  ptr(userID),
			EventID: ptr(e.ID),
		})
		if err != nil {
			return created, err
		}
		created = append(created, n)
	}

	if pruned > 0 || len(created) > 0 {
		s.persist(ctx)
	}
	return created, nil
}

func (s *notificationService) hasReminderLocked(userID, eventID string) bool {
	return slices.ContainsFunc(s.items, func(n models.Notification) bool {
		return n.Kind == models.KindReminder &&
			n.UserID != nil && *n.UserID == userID &&
			n.EventID != nil && *n.EventID == eventID
	})
}

// pruneStartedLocked removes reminders whose event is known to have
// started. Reminders for events missing from events are kept.
func (s *notificationService) pruneStartedLocked(events []models.Event, now time.Time) int {
	started := make(map[string]bool)
	for i := range events {
		if events[i].StartsAt().Before(now) {
			started[events[i].ID] = true
		}
	}
	if len(started) == 0 {
		return 0
	}

	before := len(s.items)
	s.items = slices.DeleteFunc(s.items, func(n models.Notification) bool {
		return n.Kind == models.KindReminder && n.EventID != nil && started[*n.EventID]
	})
	return before - len(s.items)
}

func (s *notificationService) RegisterPushToken(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return invalid("token", "token is required")
	}
	if err := s.store.SaveToken(ctx, userID, token); err != nil {
		return &StoreError{Op: "save push token", Err: err}
	}
	return nil
}

// persist writes the whole log. Callers hold s.mu. A failed write keeps
// the in-memory log authoritative until the next mutation.
func (s *notificationService) persist(ctx context.Context) {
	if err := s.store.Save(ctx, s.items); err != nil {
		s.log.Warn("persist notification log", zap.Int("items", len(s.items)), zap.Error(err))
	}
}
