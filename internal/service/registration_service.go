package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Eursukkul/campus-events/internal/models"
	"github.com/Eursukkul/campus-events/internal/repository"
	"github.com/Eursukkul/campus-events/internal/state"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type RegistrationService interface {
	// Register returns created=false with the existing registration when the
	// user is already registered for the event.
	Register(ctx context.Context, eventID, userID, userName string) (reg *models.Registration, created bool, err error)
	Cancel(ctx context.Context, eventID, userID string) error
	ListByEvent(ctx context.Context, viewer *models.Profile, eventID string) ([]models.Registration, error)
	ListMine(ctx context.Context, viewer *models.Profile) ([]models.Registration, error)
	SetStatus(ctx context.Context, actor *models.Profile, id string, status models.PaymentStatus) (*models.Registration, error)
	CompletePayment(ctx context.Context, actor *models.Profile, id string) (*models.Registration, error)
}

type registrationService struct {
	regRepo   repository.RegistrationRepository
	eventRepo repository.EventRepository
	mirror    *state.Mirror
	emitter   Emitter
	publisher Publisher
	syncer    *Syncer
	log       *zap.Logger
	now       func() time.Time
}

func NewRegistrationService(
	regRepo repository.RegistrationRepository,
	eventRepo repository.EventRepository,
	mirror *state.Mirror,
	emitter Emitter,
	publisher Publisher,
	syncer *Syncer,
	log *zap.Logger,
) RegistrationService {
	return &registrationService{
		regRepo:   regRepo,
		eventRepo: eventRepo,
		mirror:    mirror,
		emitter:   emitter,
		publisher: publisher,
		syncer:    syncer,
		log:       log,
		now:       time.Now,
	}
}

func (s *registrationService) Register(ctx context.Context, eventID, userID, userName string) (*models.Registration, bool, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return nil, false, invalid("user_name", "user_name is required")
	}
	if eventID == "" || userID == "" {
		return nil, false, invalid("event_id", "event_id and user are required")
	}

	// 1. Resolve the event
	event, err := resolveEvent(ctx, s.mirror, s.eventRepo, eventID)
	if err != nil {
		return nil, false, err
	}

	// 2. Existing registration wins over every other gate
	existing, err := s.regRepo.FindByUserAndEvent(ctx, userID, eventID)
	switch {
	case err == nil:
		s.mirror.PutRegistration(*existing)
		return existing, false, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, false, storeErr("find registration", err)
	}

	// 3. Deadline and capacity gates
	now := s.now()
	if !event.RegistrationOpen(now) {
		return nil, false, ErrRegistrationClosed
	}
	if event.IsFull() {
		return nil, false, ErrEventFull
	}

	// 4. Claim a seat and insert atomically
	status := models.PaymentPending
	if event.IsFree() {
		status = models.PaymentCompleted
	}
	reg := models.Registration{
		ID:               uuid.NewString(),
		EventID:          eventID,
		UserID:           userID,
		UserName:         userName,
		RegistrationDate: now,
		PaymentStatus:    status,
	}

	attendees, err := s.regRepo.CreateWithSeat(ctx, &reg)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNoSeat):
			s.mirror.SetAttendees(eventID, event.MaxAttendees)
			return nil, false, ErrEventFull
		case errors.Is(err, repository.ErrDuplicate):
			// Lost a race with a concurrent request from the same user.
			existing, ferr := s.regRepo.FindByUserAndEvent(ctx, userID, eventID)
			if ferr != nil {
				return nil, false, storeErr("find registration", ferr)
			}
			s.mirror.PutRegistration(*existing)
			return existing, false, nil
		case errors.Is(err, repository.ErrNotFound):
			s.mirror.RemoveEvent(eventID)
			return nil, false, ErrNotFound
		}
		s.syncer.reconcile(ctx)
		return nil, false, storeErr("create registration", err)
	}

	// 5. Mirror the store's authoritative count
	s.mirror.SetAttendees(eventID, attendees)
	s.mirror.PutRegistration(reg)

	emit(ctx, s.emitter, s.log, NotificationInput{
		Kind:    models.KindRegistration,
		Title:   "Registration Confirmed",
		Message: "You have successfully registered for " + event.Title,
		UserID:  ptr(userID),
		EventID: ptr(eventID),
	})
	publish(s.publisher, s.log, KeyRegistrationCreated, registrationMessage(reg, attendees))

	s.log.Info("registration created",
		zap.String("event_id", eventID),
		zap.String("user_id", userID),
		zap.Int("current_attendees", attendees),
	)
	return &reg, true, nil
}

// Cancel removes the user's registration and releases its seat. Cancelling
// a registration that does not exist is not an error.
func (s *registrationService) Cancel(ctx context.Context, eventID, userID string) error {
	attendees, err := s.regRepo.DeleteAndReleaseSeat(ctx, eventID, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Info("cancel: no registration", zap.String("event_id", eventID), zap.String("user_id", userID))
			return nil
		}
		s.syncer.reconcile(ctx)
		return storeErr("cancel registration", err)
	}

	reg, _ := s.mirror.Registration(eventID, userID)
	s.mirror.RemoveRegistration(eventID, userID)
	s.mirror.SetAttendees(eventID, attendees)

	if reg.ID == "" {
		reg = models.Registration{EventID: eventID, UserID: userID}
	}
	publish(s.publisher, s.log, KeyRegistrationCancelled, registrationMessage(reg, attendees))
	return nil
}

// ListByEvent returns every registration to the owning organizer and only
// the viewer's own registration to students.
func (s *registrationService) ListByEvent(ctx context.Context, viewer *models.Profile, eventID string) ([]models.Registration, error) {
	if viewer == nil {
		return nil, ErrForbidden
	}
	event, err := resolveEvent(ctx, s.mirror, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	if viewer.IsOrganizer() && viewer.ID != event.OrganizerID {
		return nil, ErrForbidden
	}

	regs, err := s.regRepo.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, storeErr("list registrations", err)
	}
	if viewer.ID == event.OrganizerID {
		return regs, nil
	}

	own := []models.Registration{}
	for _, r := range regs {
		if r.UserID == viewer.ID {
			own = append(own, r)
		}
	}
	return own, nil
}

func (s *registrationService) ListMine(ctx context.Context, viewer *models.Profile) ([]models.Registration, error) {
	if viewer == nil {
		return nil, ErrForbidden
	}
	regs, err := s.regRepo.FindByUser(ctx, viewer.ID)
	if err != nil {
		return nil, storeErr("list registrations", err)
	}
	return regs, nil
}

// SetStatus lets the owning organizer approve or reject a registration.
func (s *registrationService) SetStatus(ctx context.Context, actor *models.Profile, id string, status models.PaymentStatus) (*models.Registration, error) {
	if status != models.PaymentApproved && status != models.PaymentRejected {
		return nil, invalid("payment_status", "payment_status must be approved or rejected")
	}

	reg, err := s.regRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find registration", err)
	}
	event, err := resolveEvent(ctx, s.mirror, s.eventRepo, reg.EventID)
	if err != nil {
		return nil, err
	}
	if !actor.IsOrganizer() || actor.ID != event.OrganizerID {
		return nil, ErrForbidden
	}

	return s.updateStatus(ctx, reg, status)
}

// CompletePayment marks the caller's own pending registration as paid.
func (s *registrationService) CompletePayment(ctx context.Context, actor *models.Profile, id string) (*models.Registration, error) {
	reg, err := s.regRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("find registration", err)
	}
	if actor == nil || actor.ID != reg.UserID {
		return nil, ErrForbidden
	}
	if reg.PaymentStatus != models.PaymentPending {
		return nil, invalid("payment_status", "registration is not awaiting payment")
	}

	return s.updateStatus(ctx, reg, models.PaymentCompleted)
}

func (s *registrationService) updateStatus(ctx context.Context, reg *models.Registration, status models.PaymentStatus) (*models.Registration, error) {
	if err := s.regRepo.UpdateStatus(ctx, reg.ID, status); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.syncer.reconcile(ctx)
		}
		return nil, storeErr("update registration status", err)
	}
	updated := *reg
	updated.PaymentStatus = status
	s.mirror.PutRegistration(updated)

	attendees := 0
	if e, ok := s.mirror.Event(updated.EventID); ok {
		attendees = e.CurrentAttendees
	}
	publish(s.publisher, s.log, KeyRegistrationStatus, registrationMessage(updated, attendees))
	return &updated, nil
}
