package notification

import (
	"context"

	"maintenance-tracker-api/internal/model"
	"maintenance-tracker-api/internal/notification"
	"maintenance-tracker-api/internal/service"
)

// ServiceAdapter adapts the notification client to the service layer interface
type ServiceAdapter struct {
	client notification.Notifier
}

// NewServiceAdapter creates a new notification service adapter
func NewServiceAdapter(client notification.Notifier) *ServiceAdapter {
	return &ServiceAdapter{
		client: client,
	}
}

// SendEvent converts a service event into a webhook notification
func (a *ServiceAdapter) SendEvent(ctx context.Context, event service.Event) error {
	metadata := make(map[string]string, len(event.Metadata)+1)
	for k, v := range event.Metadata {
		metadata[k] = v
	}
	metadata["event_type"] = string(event.Type)

	return a.client.SendNotificationWithContext(ctx, notification.Notification{
		Level:    mapNotificationLevel(event),
		Subject:  event.Subject,
		Message:  event.Message,
		Metadata: metadata,
	})
}

// mapNotificationLevel maps service events to client notification levels
func mapNotificationLevel(event service.Event) notification.NotificationLevel {
	switch event.Type {
	case service.EventMaintenanceOverdue:
		return notification.LevelWarning
	case service.EventTicketEscalated:
		if event.Metadata["priority"] == string(model.PriorityCritical) {
			return notification.LevelCritical
		}
		return notification.LevelError
	default:
		return notification.LevelInfo
	}
}
