package service

import (
	"context"
	"strings"

	"construction-docs-be/internal/dto"
	"construction-docs-be/internal/pkg/logger"
	"construction-docs-be/pkg/events"
	pktNats "construction-docs-be/pkg/nats"

	"github.com/google/uuid"
)

// NotificationDelivery defines how to push real-time updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(accountID uuid.UUID, notification dto.NotificationMessage)
}

// NotificationService bridges the NATS event bus to connected websocket
// clients. Events carry the owning account id in their payload.
type NotificationService struct {
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	err := s.subscriber.Subscribe("events.>", "notification-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to events.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	// NATS subjects arrive as "events.ANALYSIS_FINISHED".
	typeCode := strings.TrimPrefix(event.EventType(), "events.")

	payload := event.Payload()
	accountIDStr, ok := payload["account_id"].(string)
	if !ok {
		s.logger.Warn("NotificationService", "Event without account_id, dropping", map[string]interface{}{"type": typeCode})
		return nil
	}

	accountID, err := uuid.Parse(accountIDStr)
	if err != nil {
		s.logger.Warn("NotificationService", "Event with malformed account_id, dropping", map[string]interface{}{"type": typeCode})
		return nil
	}

	if s.delivery != nil {
		s.delivery.Send(accountID, dto.NotificationMessage{
			Type:    typeCode,
			Payload: payload,
		})
	}

	return nil
}
