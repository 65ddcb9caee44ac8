package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mayar-kabaja/gaza-price-sub000/internal/model"
)

type ContributorRepo struct {
	pool *pgxpool.Pool
}

func NewContributorRepo(pool *pgxpool.Pool) *ContributorRepo {
	return &ContributorRepo{pool: pool}
}

// FindByID returns a single contributor by their hashed identifier.
func (r *ContributorRepo) FindByID(ctx context.Context, contributorID string) (*model.Contributor, error) {
	query := `
		SELECT contributor_id, display_handle, area_id, trust_level,
		       report_count, confirmation_count, flag_count,
		       banned, ban_reason, joined_at, last_active_at
		FROM contributors
		WHERE contributor_id = $1`

	var c model.Contributor
	err := r.pool.QueryRow(ctx, query, contributorID).Scan(
		&c.ContributorID, &c.DisplayHandle, &c.AreaID, &c.TrustLevel,
		&c.ReportCount, &c.ConfirmationCount, &c.FlagCount,
		&c.Banned, &c.BanReason, &c.JoinedAt, &c.LastActiveAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
