package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gamewatch/notifier/internal/domain"
)

type pgNotificationRepository struct {
	pool *pgxpool.Pool
}

// NewPgNotificationRepository returns a NotificationRepository backed by
// PostgreSQL.
func NewPgNotificationRepository(pool *pgxpool.Pool) NotificationRepository {
	return &pgNotificationRepository{pool: pool}
}

func (r *pgNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notifications (id, type, source_id, game_id, payload, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		n.ID, n.Type, n.SourceID, n.GameID, n.Payload, n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (r *pgNotificationRepository) ExistsEquivalent(ctx context.Context, sourceID string, t domain.NotificationType, payload json.RawMessage) (bool, error) {
	// jsonb equality ignores key order and whitespace, so the probe is
	// robust against payloads marshalled by different code revisions.
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM notifications
			WHERE source_id = $1 AND type = $2 AND payload = $3::jsonb
		)`, sourceID, t, payload).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("probe equivalent notification: %w", err)
	}
	return exists, nil
}

func (r *pgNotificationRepository) ListBySource(ctx context.Context, sourceID string) ([]*domain.Notification, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, type, source_id, game_id, payload, created_at
		FROM notifications
		WHERE source_id = $1
		ORDER BY created_at DESC`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.SourceID, &n.GameID, &n.Payload, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}
