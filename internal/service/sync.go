package service

import (
	"context"
	"errors"

	"github.com/Eursukkul/campus-events/internal/repository"
	"github.com/Eursukkul/campus-events/internal/state"
	"go.uber.org/zap"
)

// Syncer reloads the state container from the store. Each collection is
// replaced only when its own fetch succeeds.
type Syncer struct {
	events        repository.EventRepository
	registrations repository.RegistrationRepository
	feedback      repository.FeedbackRepository
	mirror        *state.Mirror
	log           *zap.Logger
}

func NewSyncer(
	events repository.EventRepository,
	registrations repository.RegistrationRepository,
	feedback repository.FeedbackRepository,
	mirror *state.Mirror,
	log *zap.Logger,
) *Syncer {
	return &Syncer{events: events, registrations: registrations, feedback: feedback, mirror: mirror, log: log}
}

func (s *Syncer) Refresh(ctx context.Context) error {
	var errs []error

	if events, err := s.events.FindAll(ctx); err != nil {
		errs = append(errs, storeErr("list events", err))
	} else {
		s.mirror.ReplaceEvents(events)
	}

	if regs, err := s.registrations.FindAll(ctx); err != nil {
		errs = append(errs, storeErr("list registrations", err))
	} else {
		s.mirror.ReplaceRegistrations(regs)
	}

	if fb, err := s.feedback.FindAll(ctx); err != nil {
		errs = append(errs, storeErr("list feedback", err))
	} else {
		s.mirror.ReplaceFeedback(fb)
	}

	return errors.Join(errs...)
}

// reconcile is called after a failed write; a nil Syncer is a no-op.
func (s *Syncer) reconcile(ctx context.Context) {
	if s == nil {
		return
	}
	if err := s.Refresh(context.WithoutCancel(ctx)); err != nil {
		s.log.Warn("reconcile state after store failure", zap.Error(err))
	}
}
