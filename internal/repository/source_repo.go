package repository

import (
	"context"

	"github.com/gamewatch/notifier/internal/domain"
)

// SourceWithOwner bundles an InfoSource with its owning game and user.
// The notification pipeline always needs all three together: the type for
// decoding, the game for mail content, the user for the delivery decision.
type SourceWithOwner struct {
	Source *domain.InfoSource
	Game   *domain.Game
	User   *domain.User
}

// SourceRepository is the read-only view this core has on the CRUD layer's
// records. The pgx implementation is in pg_source_repo.go; tests use the
// hand-written mock.
type SourceRepository interface {
	// GetWithOwner fails with domain.ErrNotFound when the id is unknown.
	GetWithOwner(ctx context.Context, sourceID string) (*SourceWithOwner, error)
}
