package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gamewatch/notifier/internal/domain"
)

type pgJobRepository struct {
	pool *pgxpool.Pool
}

// NewPgJobRepository returns a JobRepository backed by PostgreSQL.
func NewPgJobRepository(pool *pgxpool.Pool) JobRepository {
	return &pgJobRepository{pool: pool}
}

func (r *pgJobRepository) Create(ctx context.Context, j *domain.Job) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notification_jobs
			(id, source_id, existing_data, resolved_data, status,
			 attempts, max_attempts, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		j.ID, j.SourceID, j.ExistingData, j.ResolvedData, j.Status,
		j.Attempts, j.MaxAttempts, j.CreatedAt, j.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (r *pgJobRepository) GetByID(ctx context.Context, id string) (*domain.Job, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, source_id, existing_data, resolved_data, status,
		       attempts, max_attempts, next_attempt_at, error_message,
		       created_at, updated_at
		FROM notification_jobs WHERE id = $1`, id)

	j, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return j, err
}

func (r *pgJobRepository) UpdateStatus(ctx context.Context, id string, status domain.JobStatus) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_jobs SET status = $1, updated_at = NOW()
		WHERE id = $2`, status, id)
	return err
}

func (r *pgJobRepository) MarkCompleted(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_jobs
		SET status = 'completed', error_message = NULL, updated_at = NOW()
		WHERE id = $1`, id)
	return err
}

func (r *pgJobRepository) ScheduleRetry(ctx context.Context, id string, attempts int, nextAttempt time.Time, errMsg string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_jobs
		SET status = 'failed', attempts = $1, next_attempt_at = $2,
		    error_message = $3, updated_at = NOW()
		WHERE id = $4`, attempts, nextAttempt, errMsg, id)
	return err
}

func (r *pgJobRepository) MarkDeadLetter(ctx context.Context, id string, errMsg string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE notification_jobs
		SET status = 'dead_letter', next_attempt_at = NULL,
		    error_message = $1, updated_at = NOW()
		WHERE id = $2`, errMsg, id)
	return err
}

func (r *pgJobRepository) FindDueRetries(ctx context.Context) ([]*domain.Job, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, source_id, existing_data, resolved_data, status,
		       attempts, max_attempts, next_attempt_at, error_message,
		       created_at, updated_at
		FROM notification_jobs
		WHERE status = 'failed'
		  AND attempts < max_attempts
		  AND next_attempt_at <= NOW()
		LIMIT 500`)
	if err != nil {
		return nil, fmt.Errorf("find due retries: %w", err)
	}
	defer rows.Close()
	return scanJobs(rows)
}

func (r *pgJobRepository) FindStuckDispatch(ctx context.Context, cutoff time.Time) ([]*domain.Job, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, source_id, existing_data, resolved_data, status,
		       attempts, max_attempts, next_attempt_at, error_message,
		       created_at, updated_at
		FROM notification_jobs
		WHERE status IN ('pending', 'queued', 'processing')
		  AND updated_at < $1
		LIMIT 500`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("find stuck jobs: %w", err)
	}
	defer rows.Close()
	return scanJobs(rows)
}

// ---- helpers ----

func scanJob(row pgx.Row) (*domain.Job, error) {
	var j domain.Job
	err := row.Scan(
		&j.ID, &j.SourceID, &j.ExistingData, &j.ResolvedData, &j.Status,
		&j.Attempts, &j.MaxAttempts, &j.NextAttemptAt, &j.ErrorMessage,
		&j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func scanJobs(rows pgx.Rows) ([]*domain.Job, error) {
	var result []*domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, j)
	}
	return result, rows.Err()
}
