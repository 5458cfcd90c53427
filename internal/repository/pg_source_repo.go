package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gamewatch/notifier/internal/domain"
)

type pgSourceRepository struct {
	pool *pgxpool.Pool
}

// NewPgSourceRepository returns a SourceRepository backed by PostgreSQL.
func NewPgSourceRepository(pool *pgxpool.Pool) SourceRepository {
	return &pgSourceRepository{pool: pool}
}

func (r *pgSourceRepository) GetWithOwner(ctx context.Context, sourceID string) (*SourceWithOwner, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT s.id, s.game_id, s.type, s.remote_game_id, s.disabled, s.data,
		       s.created_at, s.updated_at,
		       g.id, g.user_id, g.name, g.created_at,
		       u.id, u.email, u.enable_email_notifications,
		       u.interested_in_sources, u.country, u.state
		FROM info_sources s
		JOIN games g ON g.id = s.game_id
		JOIN users u ON u.id = g.user_id
		WHERE s.id = $1`, sourceID)

	var (
		src       domain.InfoSource
		game      domain.Game
		user      domain.User
		email     *string
		interests []string
	)
	err := row.Scan(
		&src.ID, &src.GameID, &src.Type, &src.RemoteGameID, &src.Disabled,
		&src.Data, &src.CreatedAt, &src.UpdatedAt,
		&game.ID, &game.UserID, &game.Name, &game.CreatedAt,
		&user.ID, &email, &user.EnableEmailNotifications,
		&interests, &user.Country, &user.State,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get source with owner: %w", err)
	}

	if email != nil {
		user.Email = *email
	}
	user.InterestedInSources = make([]domain.SourceType, len(interests))
	for i, t := range interests {
		user.InterestedInSources[i] = domain.SourceType(t)
	}

	return &SourceWithOwner{Source: &src, Game: &game, User: &user}, nil
}
