package consumer

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/Eursukkul/campus-events/internal/models"
	"github.com/Eursukkul/campus-events/internal/service"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// PushMessage is a remote push as delivered by the push gateway.
type PushMessage struct {
	Title   string  `json:"title"`
	Body    string  `json:"body"`
	UserID  *string `json:"user_id"`
	EventID *string `json:"event_id"`
}

// PushConsumer feeds received pushes into the notification log.
type PushConsumer struct {
	emitter service.Emitter
	timeout time.Duration
	log     *zap.Logger
}

func NewPushConsumer(emitter service.Emitter, timeout time.Duration, log *zap.Logger) *PushConsumer {
	return &PushConsumer{emitter: emitter, timeout: timeout, log: log}
}

// Start drains msgs in the background until the channel closes.
func (pc *PushConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			pc.handleMessage(msg)
		}
		pc.log.Info("push channel closed, stopping consumer")
	}()
}

func (pc *PushConsumer) handleMessage(msg amqp.Delivery) {
	var push PushMessage
	if err := json.Unmarshal(msg.Body, &push); err != nil {
		pc.log.Warn("unmarshal push", zap.Error(err))
		msg.Nack(false, false)
		return
	}

	// Pushes without a title fall back to the app name, as the device does.
	title := strings.TrimSpace(push.Title)
	if title == "" {
		title = "Campus Events"
	}

	ctx, cancel := context.WithTimeout(context.Background(), pc.timeout)
	defer cancel()

	n, err := pc.emitter.Emit(ctx, service.NotificationInput{
		Kind:    models.KindPush,
		Title:   title,
		Message: push.Body,
		UserID:  push.UserID,
		EventID: push.EventID,
	})
	if err != nil {
		if service.IsValidation(err) {
			pc.log.Warn("drop invalid push", zap.String("routing_key", msg.RoutingKey), zap.Error(err))
			msg.Nack(false, false)
			return
		}
		pc.log.Error("emit push notification", zap.Error(err))
		msg.Nack(false, true) // requeue
		return
	}

	pc.log.Info("push received", zap.String("notification_id", n.ID), zap.String("routing_key", msg.RoutingKey))
	msg.Ack(false)
}
