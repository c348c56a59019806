package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Eursukkul/campus-events/internal/analytics"
	"github.com/Eursukkul/campus-events/internal/models"
	"github.com/Eursukkul/campus-events/internal/repository"
	"github.com/Eursukkul/campus-events/internal/state"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RatingSummary is the average rating of an event rounded to one decimal.
type RatingSummary struct {
	EventID string  `json:"event_id"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

type FeedbackService interface {
	Submit(ctx context.Context, eventID, userID string, rating int, comment *string) (*models.Feedback, error)
	ListByEvent(ctx context.Context, eventID string) ([]models.Feedback, error)
	ListByUser(ctx context.Context, viewer *models.Profile, userID string) ([]models.Feedback, error)
	AverageRating(ctx context.Context, eventID string) (*RatingSummary, error)
}

type feedbackService struct {
	feedbackRepo repository.FeedbackRepository
	regRepo      repository.RegistrationRepository
	eventRepo    repository.EventRepository
	mirror       *state.Mirror
	syncer       *Syncer
	log          *zap.Logger
	now          func() time.Time
}

func NewFeedbackService(
	feedbackRepo repository.FeedbackRepository,
	regRepo repository.RegistrationRepository,
	eventRepo repository.EventRepository,
	mirror *state.Mirror,
	syncer *Syncer,
	log *zap.Logger,
) FeedbackService {
	return &feedbackService{
		feedbackRepo: feedbackRepo,
		regRepo:      regRepo,
		eventRepo:    eventRepo,
		mirror:       mirror,
		syncer:       syncer,
		log:          log,
		now:          time.Now,
	}
}

// Submit records one rating per (event, user). Only registered users may
// rate, and only once the event has started.
func (s *feedbackService) Submit(ctx context.Context, eventID, userID string, rating int, comment *string) (*models.Feedback, error) {
	if rating < models.MinRating || rating > models.MaxRating {
		return nil, invalid("rating", fmt.Sprintf("rating must be between %d and %d", models.MinRating, models.MaxRating))
	}

	event, err := resolveEvent(ctx, s.mirror, s.eventRepo, eventID)
	if err != nil {
		return nil, err
	}
	if !event.HasOccurred(s.now()) {
		return nil, invalid("event_id", "feedback opens once the event has started")
	}

	if _, err := s.regRepo.FindByUserAndEvent(ctx, userID, eventID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, storeErr("find registration", err)
	}

	switch _, err := s.feedbackRepo.FindByUserAndEvent(ctx, userID, eventID); {
	case err == nil:
		return nil, ErrDuplicateFeedback
	case !errors.Is(err, repository.ErrNotFound):
		return nil, storeErr("find feedback", err)
	}

	fb := models.Feedback{
		ID:      uuid.NewString(),
		EventID: eventID,
		UserID:  userID,
		Rating:  rating,
		Comment: trimmed(comment),
	}
	if err := s.feedbackRepo.Create(ctx, &fb); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateFeedback
		}
		s.syncer.reconcile(ctx)
		return nil, storeErr("create feedback", err)
	}
	s.mirror.AddFeedback(fb)

	s.log.Info("feedback submitted", zap.String("event_id", eventID), zap.Int("rating", rating))
	return &fb, nil
}

func (s *feedbackService) ListByEvent(ctx context.Context, eventID string) ([]models.Feedback, error) {
	fb, err := s.feedbackRepo.FindByEvent(ctx, eventID)
	if err != nil {
		return nil, storeErr("list feedback", err)
	}
	return fb, nil
}

// ListByUser is limited to the viewer's own feedback.
func (s *feedbackService) ListByUser(ctx context.Context, viewer *models.Profile, userID string) ([]models.Feedback, error) {
	if viewer == nil || viewer.ID != userID {
		return nil, ErrForbidden
	}
	fb, err := s.feedbackRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, storeErr("list feedback", err)
	}
	return fb, nil
}

func (s *feedbackService) AverageRating(ctx context.Context, eventID string) (*RatingSummary, error) {
	fb, err := s.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	return &RatingSummary{
		EventID: eventID,
		Average: analytics.RoundTenth(analytics.AverageRating(fb)),
		Count:   len(fb),
	}, nil
}
