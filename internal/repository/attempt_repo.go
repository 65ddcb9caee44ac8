package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AttemptRepo owns the attempts table: one row per (contributor, action,
// timestamp), append-only inside the retention window.
type AttemptRepo struct {
	pool *pgxpool.Pool
}

func NewAttemptRepo(pool *pgxpool.Pool) *AttemptRepo {
	return &AttemptRepo{pool: pool}
}

// CountSuccessful counts successful attempts for a contributor and action
// kind inside the trailing window. An empty scope counts across all scopes.
func (r *AttemptRepo) CountSuccessful(ctx context.Context, contributorID, kind, scope string, window time.Duration) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM attempts
		WHERE contributor_id = $1 AND action_kind = $2
		  AND ($3 = '' OR scope_key = $3)
		  AND success
		  AND created_at > NOW() - make_interval(secs => $4)`,
		contributorID, kind, scope, window.Seconds()).Scan(&count)
	return count, err
}

// Insert appends one attempt record.
func (r *AttemptRepo) Insert(ctx context.Context, contributorID, kind, scope string, success bool) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO attempts (contributor_id, action_kind, scope_key, success)
		VALUES ($1, $2, $3, $4)`,
		contributorID, kind, scope, success)
	return err
}

// TryRecord counts and appends in a single guarded statement: the insert
// only lands while the windowed success count is below max. Returns whether
// the attempt was recorded (i.e. the action is allowed).
func (r *AttemptRepo) TryRecord(ctx context.Context, contributorID, kind, scope string, max int, window time.Duration) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO attempts (contributor_id, action_kind, scope_key, success)
		SELECT $1, $2, $3, true
		WHERE (
			SELECT COUNT(*) FROM attempts
			WHERE contributor_id = $1 AND action_kind = $2
			  AND ($3 = '' OR scope_key = $3)
			  AND success
			  AND created_at > NOW() - make_interval(secs => $5)
		) < $4`,
		contributorID, kind, scope, max, window.Seconds())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// Prune deletes attempt records older than the retention window. Called by
// the maintenance worker, never on the hot path.
func (r *AttemptRepo) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM attempts
		WHERE created_at < NOW() - make_interval(secs => $1)`,
		retention.Seconds())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
