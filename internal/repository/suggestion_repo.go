package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mayar-kabaja/gaza-price-sub000/internal/model"
)

type SuggestionRepo struct {
	pool *pgxpool.Pool
}

func NewSuggestionRepo(pool *pgxpool.Pool) *SuggestionRepo {
	return &SuggestionRepo{pool: pool}
}

// Insert stores a product suggestion for later moderation.
func (r *SuggestionRepo) Insert(ctx context.Context, s *model.Suggestion) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO suggestions (id, contributor_id, product_name, category, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		s.ID, s.ContributorID, s.ProductName, s.Category, s.Status, s.CreatedAt)
	return err
}
