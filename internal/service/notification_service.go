package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/permit-service/internal/config"
	"github.com/spec-kit/permit-service/internal/events"
)

// NotificationService is the notification sink. It receives permit events
// from the dispatcher, logs them and pushes them onto a Redis stream for
// downstream delivery (email/SMS/push is somebody else's job). Failures are
// logged here and never propagate back into the workflow.
type NotificationService struct {
	dispatcher events.Dispatcher
	redis      *redis.Client
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the sink.
func NewNotificationService(dispatcher events.Dispatcher, redisClient *redis.Client, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		redis:      redisClient,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes the sink to every permit event tag.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		n.dispatcher.Subscribe(eventType, n.handlePermitEvent)
	}
}

func (n *NotificationService) handlePermitEvent(ctx context.Context, event events.Event) error {
	n.logger.Info("permit notification",
		zap.String("event_type", string(event.Type)),
		zap.String("permit_id", event.PermitID),
		zap.String("permit_number", event.Permit.PermitNumber),
		zap.String("actor_id", event.Actor.ID))

	n.enqueueDelivery(ctx, event)
	return nil
}

// enqueueDelivery publishes the event to the notification stream. Delivery
// workers own retries; a publish failure only gets a log line.
func (n *NotificationService) enqueueDelivery(ctx context.Context, event events.Event) {
	if n.redis == nil || n.cfg.Stream == "" {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("marshal notification event", zap.Error(err))
		return
	}
	err = n.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: n.cfg.Stream,
		Values: map[string]interface{}{
			"event_type": string(event.Type),
			"permit_id":  event.PermitID,
			"body":       body,
		},
	}).Err()
	if err != nil {
		n.logger.Warn("enqueue notification failed",
			zap.String("stream", n.cfg.Stream),
			zap.String("permit_id", event.PermitID),
			zap.Error(err))
	}
}
