package repository

import (
	"context"
	"encoding/json"

	"github.com/gamewatch/notifier/internal/domain"
)

// NotificationRepository defines all persistence operations for notification
// records. Records are write-once: there is no update path.
type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error

	// ExistsEquivalent reports whether a notification with the same source,
	// type and semantically identical payload is already stored. This is the
	// guard that makes redelivered jobs idempotent.
	ExistsEquivalent(ctx context.Context, sourceID string, t domain.NotificationType, payload json.RawMessage) (bool, error)

	// ListBySource returns all notifications for one source, newest first.
	ListBySource(ctx context.Context, sourceID string) ([]*domain.Notification, error)
}
