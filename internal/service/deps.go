package service

import (
	"context"
	"errors"
	"io"

	"github.com/Eursukkul/campus-events/internal/models"
	"github.com/Eursukkul/campus-events/internal/repository"
	"github.com/Eursukkul/campus-events/internal/state"
	"go.uber.org/zap"
)

// Emitter receives domain notifications.
type Emitter interface {
	Emit(ctx context.Context, in NotificationInput) (*models.Notification, error)
}

// Publisher fans domain events out to other services.
type Publisher interface {
	Publish(routingKey string, payload any) error
}

// ImageStore uploads an object and returns its public URL.
type ImageStore interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

func publish(p Publisher, log *zap.Logger, key string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(key, payload); err != nil {
		log.Warn("publish domain event", zap.String("routing_key", key), zap.Error(err))
	}
}

func emit(ctx context.Context, e Emitter, log *zap.Logger, in NotificationInput) {
	if e == nil {
		return
	}
	if _, err := e.Emit(ctx, in); err != nil {
		log.Warn("emit notification", zap.String("title", in.Title), zap.Error(err))
	}
}

// resolveEvent reads the mirror first and falls back to the store.
func resolveEvent(ctx context.Context, mirror *state.Mirror, repo repository.EventRepository, id string) (models.Event, error) {
	if e, ok := mirror.Event(id); ok {
		return e, nil
	}
	e, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.Event{}, ErrNotFound
		}
		return models.Event{}, storeErr("find event", err)
	}
	mirror.PutEvent(*e)
	return *e, nil
}

func ptr[T any](v T) *T { return &v }
