package tramite

import (
	"context"
	"fmt"

	"github.com/tramites/backend/internal/domain/shared"
	"github.com/tramites/backend/internal/domain/tramite"
	"go.uber.org/zap"
)

// RequesterNotifier delivers status notifications to the requester of a
// trámite. Implementations choose the channel (email, SMS, in-app).
type RequesterNotifier interface {
	NotifyRequester(ctx context.Context, notification RequesterNotification) error
}

// RequesterNotification tells a requester what happened to their trámite
type RequesterNotification struct {
	TenantID          string `json:"tenant_id"`
	TramiteID         string `json:"tramite_id"`
	RequesterID       string `json:"requester_id"`
	FilingNumber      string `json:"filing_number"`
	Status            string `json:"status"`
	StatusDescription string `json:"status_description"`
	Comment           string `json:"comment,omitempty"`
}

// NotificationHandler turns filing and status change events into
// requester notifications
type NotificationHandler struct {
	logger   *zap.Logger
	notifier RequesterNotifier
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{logger: logger}
}

// WithNotifier sets the notifier for sending notifications
func (h *NotificationHandler) WithNotifier(notifier RequesterNotifier) *NotificationHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *NotificationHandler) EventTypes() []string {
	return []string{tramite.EventTypeTramiteFiled, tramite.EventTypeStatusChanged}
}

// Handle builds the notification for event and sends it
func (h *NotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var notification RequesterNotification
	switch e := event.(type) {
	case *tramite.TramiteFiledEvent:
		notification = RequesterNotification{
			RequesterID:       e.RequesterID.String(),
			FilingNumber:      e.FilingNumber,
			Status:            tramite.StatusFiled.String(),
			StatusDescription: tramite.StatusFiled.PublicDescription(),
		}
	case *tramite.StatusChangedEvent:
		notification = RequesterNotification{
			RequesterID:       e.RequesterID.String(),
			FilingNumber:      e.FilingNumber,
			Status:            e.To.String(),
			StatusDescription: e.To.PublicDescription(),
			Comment:           e.Comment,
		}
	default:
		h.logger.Error("unexpected event type", zap.String("actual", event.EventType()))
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	notification.TenantID = event.TenantID().String()
	notification.TramiteID = event.AggregateID().String()

	if h.notifier == nil {
		return nil
	}
	if err := h.notifier.NotifyRequester(ctx, notification); err != nil {
		// A lost notification does not undo the status change
		h.logger.Error("failed to notify requester",
			zap.String("filing_number", notification.FilingNumber),
			zap.Error(err))
		return nil
	}
	h.logger.Debug("requester notified",
		zap.String("filing_number", notification.FilingNumber),
		zap.String("status", notification.Status))
	return nil
}

var _ shared.EventHandler = (*NotificationHandler)(nil)

// LoggingRequesterNotifier writes notifications to the log
type LoggingRequesterNotifier struct {
	logger *zap.Logger
}

// NewLoggingRequesterNotifier creates a new LoggingRequesterNotifier
func NewLoggingRequesterNotifier(logger *zap.Logger) *LoggingRequesterNotifier {
	return &LoggingRequesterNotifier{logger: logger}
}

// NotifyRequester logs the notification
func (n *LoggingRequesterNotifier) NotifyRequester(_ context.Context, notification RequesterNotification) error {
	n.logger.Info("Requester notification",
		zap.String("requester_id", notification.RequesterID),
		zap.String("filing_number", notification.FilingNumber),
		zap.String("status", notification.Status))
	return nil
}

var _ RequesterNotifier = (*LoggingRequesterNotifier)(nil)
