package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/Eursukkul/campus-events/internal/models"
	"github.com/Eursukkul/campus-events/internal/repository"
	"github.com/Eursukkul/campus-events/internal/state"
	"github.com/Eursukkul/campus-events/pkg/validate"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dueDateLayout = "Jan 2, 2006"

// ImageUpload is a single event image as received from the client.
type ImageUpload struct {
	Filename    string
	ContentType string `json:"content_type" validate:"required,image_type"`
	Size        int64
	Body        io.Reader
}

type EventService interface {
	ListEvents(ctx context.Context) ([]models.Event, error)
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	ListByClub(ctx context.Context, club string) ([]models.Event, error)
	ListByCategory(ctx context.Context, category string) ([]models.Event, error)
	CreateEvent(ctx context.Context, creator *models.Profile, draft models.EventDraft) (*models.Event, error)
	UpdateEvent(ctx context.Context, actor *models.Profile, id string, patch models.EventPatch) (*models.Event, error)
	DeleteEvent(ctx context.Context, actor *models.Profile, id string) error
	AttachImage(ctx context.Context, actor *models.Profile, id string, img ImageUpload) (*models.Event, error)
}

type eventService struct {
	repo          repository.EventRepository
	mirror        *state.Mirror
	validator     *validate.Validator
	emitter       Emitter
	publisher     Publisher
	images        ImageStore
	maxImageBytes int64
	syncer        *Syncer
	log           *zap.Logger
	now           func() time.Time
}

func NewEventService(
	repo repository.EventRepository,
	mirror *state.Mirror,
	validator *validate.Validator,
	emitter Emitter,
	publisher Publisher,
	images ImageStore,
	maxImageBytes int64,
	syncer *Syncer,
	log *zap.Logger,
) EventService {
	return &eventService{
		repo:          repo,
		mirror:        mirror,
		validator:     validator,
		emitter:       emitter,
		publisher:     publisher,
		images:        images,
		maxImageBytes: maxImageBytes,
		syncer:        syncer,
		log:           log,
		now:           time.Now,
	}
}

// ListEvents refreshes the mirror from the store. On failure the previous
// list is kept and a StoreError is returned.
func (s *eventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	events, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, storeErr("list events", err)
	}
	s.mirror.ReplaceEvents(events)
	return events, nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	e, err := resolveEvent(ctx, s.mirror, s.repo, id)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *eventService) ListByClub(ctx context.Context, club string) ([]models.Event, error) {
	c, err := models.ParseClub(club)
	if err != nil {
		return nil, invalid("club", clubChoices())
	}
	return s.filter(func(e models.Event) bool { return e.Club == c }), nil
}

func (s *eventService) ListByCategory(ctx context.Context, category string) ([]models.Event, error) {
	c, err := models.ParseCategory(category)
	if err != nil {
		return nil, invalid("category", categoryChoices())
	}
	return s.filter(func(e models.Event) bool { return e.Category == c }), nil
}

func (s *eventService) filter(keep func(models.Event) bool) []models.Event {
	out := []models.Event{}
	for _, e := range s.mirror.Events() {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

func (s *eventService) CreateEvent(ctx context.Context, creator *models.Profile, draft models.EventDraft) (*models.Event, error) {
	if creator == nil || draft.OrganizerID != creator.ID {
		return nil, ErrForbidden
	}

	// 1. Validate the draft
	fields := s.validator.Struct(draft)
	club, clubErr := models.ParseClub(draft.Club)
	if clubErr != nil && draft.Club != "" {
		fields = append(fields, validate.FieldError{Field: "club", Message: clubChoices()})
	}
	category, catErr := models.ParseCategory(draft.Category)
	if catErr != nil && draft.Category != "" {
		fields = append(fields, validate.FieldError{Field: "category", Message: categoryChoices()})
	}
	day := calendarDay(draft.Date)
	fields = append(fields, s.checkDates(day, draft.DueDate, true)...)
	if err := invalidFields(fields); err != nil {
		return nil, err
	}

	event := models.Event{
		ID:           uuid.NewString(),
		Title:        strings.TrimSpace(draft.Title),
		Description:  strings.TrimSpace(draft.Description),
		Date:         day,
		Time:         strings.TrimSpace(draft.Time),
		Location:     strings.TrimSpace(draft.Location),
		Club:         club,
		Category:     category,
		Price:        draft.Price,
		OrganizerID:  draft.OrganizerID,
		MaxAttendees: draft.MaxAttendees,
		ImageURL:     trimmed(draft.ImageURL),
		DueDate:      draft.DueDate,
		CreatedAt:    s.now(),
	}

	// 2. Persist, then mirror
	if err := s.repo.Create(ctx, &event); err != nil {
		s.syncer.reconcile(ctx)
		return nil, storeErr("create event", err)
	}
	s.mirror.PutEvent(event)

	// 3. Announce
	if creator.IsOrganizer() {
		clubName := creator.ClubName
		if clubName == "" {
			clubName = string(event.Club)
		}
		emit(ctx, s.emitter, s.log, NotificationInput{
			Kind:    models.KindNewEvent,
			Title:   "New Event: " + event.Title,
			Message: fmt.Sprintf("%s just posted a new event: %s. Registration closes on %s.", clubName, event.Title, event.DueDate.Format(dueDateLayout)),
			EventID: ptr(event.ID),
		})
	}
	publish(s.publisher, s.log, KeyEventCreated, eventMessage(event))

	s.log.Info("event created", zap.String("event_id", event.ID), zap.String("organizer_id", event.OrganizerID))
	return &event, nil
}

func (s *eventService) UpdateEvent(ctx context.Context, actor *models.Profile, id string, patch models.EventPatch) (*models.Event, error) {
	// 1. Reject immutable fields and empty patches
	var fields []validate.FieldError
	if patch.ID != nil {
		fields = append(fields, validate.FieldError{Field: "id", Message: "id cannot be changed"})
	}
	if patch.OrganizerID != nil {
		fields = append(fields, validate.FieldError{Field: "organizer_id", Message: "organizer_id cannot be changed"})
	}
	if patch.Empty() && len(fields) == 0 {
		return nil, invalid("body", "no fields to update")
	}
	fields = append(fields, s.validator.Struct(patch)...)
	if err := invalidFields(fields); err != nil {
		return nil, err
	}

	// 2. Ownership
	current, err := resolveEvent(ctx, s.mirror, s.repo, id)
	if err != nil {
		return nil, err
	}
	if actor == nil || actor.ID != current.OrganizerID {
		return nil, ErrForbidden
	}

	// 3. Normalise and check the merged result
	merged, fields := s.merge(current, &patch)
	if err := invalidFields(fields); err != nil {
		return nil, err
	}

	// 4. Persist, then mirror
	if err := s.repo.Update(ctx, id, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.mirror.RemoveEvent(id)
			return nil, ErrNotFound
		}
		s.syncer.reconcile(ctx)
		return nil, storeErr("update event", err)
	}
	s.mirror.PutEvent(merged)
	publish(s.publisher, s.log, KeyEventUpdated, eventMessage(merged))

	return &merged, nil
}

// merge applies patch onto current. Club and category are normalised in
// place so the stored values match the mirror.
func (s *eventService) merge(current models.Event, patch *models.EventPatch) (models.Event, []validate.FieldError) {
	var fields []validate.FieldError
	e := current

	if patch.Title != nil {
		e.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		e.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Date != nil {
		day := calendarDay(*patch.Date)
		patch.Date = &day
		e.Date = day
	}
	if patch.Time != nil {
		e.Time = strings.TrimSpace(*patch.Time)
	}
	if patch.Location != nil {
		e.Location = strings.TrimSpace(*patch.Location)
	}
	if patch.Club != nil {
		c, err := models.ParseClub(*patch.Club)
		if err != nil {
			fields = append(fields, validate.FieldError{Field: "club", Message: clubChoices()})
		} else {
			patch.Club = ptr(string(c))
			e.Club = c
		}
	}
	if patch.Category != nil {
		c, err := models.ParseCategory(*patch.Category)
		if err != nil {
			fields = append(fields, validate.FieldError{Field: "category", Message: categoryChoices()})
		} else {
			patch.Category = ptr(string(c))
			e.Category = c
		}
	}
	if patch.Price != nil {
		e.Price = *patch.Price
	}
	if patch.MaxAttendees != nil {
		if *patch.MaxAttendees < current.CurrentAttendees {
			fields = append(fields, validate.FieldError{
				Field:   "max_attendees",
				Message: fmt.Sprintf("max_attendees cannot be below the %d current attendees", current.CurrentAttendees),
			})
		}
		e.MaxAttendees = *patch.MaxAttendees
	}
	if patch.ImageURL != nil {
		e.ImageURL = trimmed(patch.ImageURL)
	}
	if patch.DueDate != nil {
		e.DueDate = *patch.DueDate
	}

	if patch.Date != nil || patch.DueDate != nil {
		fields = append(fields, s.checkDates(e.Date, e.DueDate, patch.DueDate != nil)...)
	}
	return e, fields
}

func (s *eventService) DeleteEvent(ctx context.Context, actor *models.Profile, id string) error {
	current, err := resolveEvent(ctx, s.mirror, s.repo, id)
	if err != nil {
		return err
	}
	if actor == nil || actor.ID != current.OrganizerID {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.mirror.RemoveEvent(id)
			return ErrNotFound
		}
		s.syncer.reconcile(ctx)
		return storeErr("delete event", err)
	}
	s.mirror.RemoveEvent(id)
	publish(s.publisher, s.log, KeyEventDeleted, eventMessage(current))

	s.log.Info("event deleted", zap.String("event_id", id))
	return nil
}

// AttachImage uploads an image to object storage and points the event at it.
func (s *eventService) AttachImage(ctx context.Context, actor *models.Profile, id string, img ImageUpload) (*models.Event, error) {
	if s.images == nil {
		return nil, invalid("image", "image uploads are not configured")
	}
	fields := s.validator.Struct(img)
	if img.Size <= 0 {
		fields = append(fields, validate.FieldError{Field: "image", Message: "image is empty"})
	} else if s.maxImageBytes > 0 && img.Size > s.maxImageBytes {
		fields = append(fields, validate.FieldError{
			Field:   "image",
			Message: fmt.Sprintf("image must be at most %d bytes", s.maxImageBytes),
		})
	}
	if err := invalidFields(fields); err != nil {
		return nil, err
	}

	current, err := resolveEvent(ctx, s.mirror, s.repo, id)
	if err != nil {
		return nil, err
	}
	if actor == nil || actor.ID != current.OrganizerID {
		return nil, ErrForbidden
	}

	key := fmt.Sprintf("events/%s/%s%s", id, uuid.NewString(), strings.ToLower(path.Ext(img.Filename)))
	url, err := s.images.Upload(ctx, key, img.ContentType, img.Body, img.Size)
	if err != nil {
		return nil, &StoreError{Op: "upload image", Err: err}
	}

	return s.UpdateEvent(ctx, actor, id, models.EventPatch{ImageURL: &url})
}

// checkDates enforces dueDate < date. A due date in the past is only
// rejected when the caller is setting it.
func (s *eventService) checkDates(date, due time.Time, dueSet bool) []validate.FieldError {
	if date.IsZero() || due.IsZero() {
		return nil
	}
	var fields []validate.FieldError
	if dueSet && due.Before(s.now()) {
		fields = append(fields, validate.FieldError{Field: "due_date", Message: "due_date cannot be in the past"})
	}
	if !due.Before(date) {
		fields = append(fields, validate.FieldError{Field: "due_date", Message: "due_date must be before the event date"})
	}
	return fields
}

// calendarDay keeps the calendar date as entered and stores it as UTC
// midnight, which is what the date column returns.
func calendarDay(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func clubChoices() string {
	names := make([]string, len(models.Clubs))
	for i, c := range models.Clubs {
		names[i] = string(c)
	}
	return "club must be one of " + strings.Join(names, ", ")
}

func categoryChoices() string {
	names := make([]string, len(models.Categories))
	for i, c := range models.Categories {
		names[i] = string(c)
	}
	return "category must be one of " + strings.Join(names, ", ")
}
