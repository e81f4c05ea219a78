package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/events"
)

// NotificationService reacts to domain events and surfaces lifecycle
// transitions in the operator log.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventIncidentCreated, n.handleIncidentEvent)
	n.dispatcher.Subscribe(events.EventIncidentResolved, n.handleIncidentEvent)
	n.dispatcher.Subscribe(events.EventIncidentArchived, n.handleIncidentEvent)
	n.dispatcher.Subscribe(events.EventIncidentRestored, n.handleIncidentEvent)
	n.dispatcher.Subscribe(events.EventSweepCompleted, n.handleSweepCompleted)
}

func (n *NotificationService) handleIncidentEvent(_ context.Context, event events.Event) error {
	n.logger.Info(string(event.Type),
		zap.String("incident_id", event.IncidentID),
		zap.String("domain", event.Domain),
		zap.String("actor", event.Actor.Username),
		zap.Any("payload", event.Payload))
	return nil
}

func (n *NotificationService) handleSweepCompleted(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.SweepCompletedPayload)
	if !ok {
		return nil
	}
	n.logger.Info("sweep_completed",
		zap.Int("checked", payload.Checked),
		zap.Int("archived", payload.Archived),
		zap.Int("errors", payload.Errors))
	return nil
}
