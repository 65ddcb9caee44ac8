package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/mayar-kabaja/gaza-price-sub000/internal/model"
)

type ReportRepo struct {
	pool *pgxpool.Pool
}

func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

const reportColumns = `
	id, product_id, store_id, store_name, area_id, price::text, currency,
	contributor_id, status, trust_score, confirmation_count, flag_count,
	has_receipt, is_lowest, reported_at, expires_at`

func scanReport(row pgx.Row) (*model.Report, error) {
	var r model.Report
	var price string
	err := row.Scan(
		&r.ID, &r.ProductID, &r.StoreID, &r.StoreName, &r.AreaID, &price, &r.Currency,
		&r.ContributorID, &r.Status, &r.TrustScore, &r.ConfirmationCount, &r.FlagCount,
		&r.HasReceipt, &r.IsLowest, &r.ReportedAt, &r.ExpiresAt,
	)
	if err != nil {
		return nil, err
	}
	r.Price, err = decimal.NewFromString(price)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// Insert creates a pending report and updates the reporter's cumulative
// counters in one transaction. levelFn derives the new trust level from the
// updated report count, keeping level a pure function of that count; scoreFn
// seeds the report's initial trust score from that level.
func (r *ReportRepo) Insert(ctx context.Context, rep *model.Report, levelFn func(reportCount int) string, scoreFn func(confirmations int, hasReceipt bool, level string) int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Ensure contributor exists (auto-create with defaults if new)
	_, err = tx.Exec(ctx, `
		INSERT INTO contributors (contributor_id) VALUES ($1)
		ON CONFLICT (contributor_id) DO UPDATE SET last_active_at = NOW()`,
		rep.ContributorID)
	if err != nil {
		return err
	}

	var reportCount int
	err = tx.QueryRow(ctx, `
		UPDATE contributors SET report_count = report_count + 1
		WHERE contributor_id = $1
		RETURNING report_count`,
		rep.ContributorID).Scan(&reportCount)
	if err != nil {
		return err
	}

	level := levelFn(reportCount)
	_, err = tx.Exec(ctx, `
		UPDATE contributors SET trust_level = $1 WHERE contributor_id = $2`,
		level, rep.ContributorID)
	if err != nil {
		return err
	}

	rep.TrustScore = scoreFn(0, rep.HasReceipt, level)
	_, err = tx.Exec(ctx, `
		INSERT INTO reports (
			id, product_id, store_id, store_name, area_id, price, currency,
			contributor_id, status, trust_score, has_receipt, ip_hash,
			reported_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		rep.ID, rep.ProductID, rep.StoreID, rep.StoreName, rep.AreaID,
		rep.Price.String(), rep.Currency, rep.ContributorID, rep.Status,
		rep.TrustScore, rep.HasReceipt, rep.IPHash, rep.ReportedAt, rep.ExpiresAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `SELECT pg_notify('report_changes', $1)`, rep.ProductID)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// FindByID returns a single report by id. Returns pgx.ErrNoRows when the
// report does not exist.
func (r *ReportRepo) FindByID(ctx context.Context, id string) (*model.Report, error) {
	return scanReport(r.pool.QueryRow(ctx,
		`SELECT `+reportColumns+` FROM reports WHERE id = $1`, id))
}

// ListActive returns non-expired, non-rejected reports for a product,
// optionally narrowed to one area, newest first.
func (r *ReportRepo) ListActive(ctx context.Context, productID, areaID string) ([]model.Report, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM reports
		WHERE product_id = $1
		  AND status NOT IN ('expired', 'rejected')
		  AND expires_at > NOW()
		  AND ($2 = '' OR area_id = $2)
		ORDER BY reported_at DESC
		LIMIT 500`

	rows, err := r.pool.Query(ctx, query, productID, areaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []model.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *rep)
	}
	return reports, rows.Err()
}

// sweepStates are the statuses an expiry sweep may close out. Terminal
// states stay out of the list so a rejected report is never resurrected.
var sweepStates = []string{model.StatusPending, model.StatusConfirmed, model.StatusFlagged}

// SweepStatus is the pure mirror of the ExpireDue statement: it returns the
// status a report holds after one sweep at now. Reports still inside their
// validity window and reports in a terminal state are unchanged, so running
// the sweep again is a no-op.
func SweepStatus(status string, expiresAt, now time.Time) string {
	if !now.After(expiresAt) {
		return status
	}
	for _, s := range sweepStates {
		if status == s {
			return model.StatusExpired
		}
	}
	return status
}

// ExpireDue moves every report past its validity window out of the active
// states.
func (r *ReportRepo) ExpireDue(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE reports SET status = 'expired'
		WHERE expires_at < NOW()
		  AND status = ANY($1)`, sweepStates)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// SetLowestFlags marks exactly the given active reports as lowest for a
// product and clears the flag on the rest.
func (r *ReportRepo) SetLowestFlags(ctx context.Context, productID string, lowestIDs []string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE reports SET is_lowest = (id = ANY($2))
		WHERE product_id = $1
		  AND status NOT IN ('expired', 'rejected')`,
		productID, lowestIDs)
	return err
}
