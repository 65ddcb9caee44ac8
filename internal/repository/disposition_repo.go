package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mayar-kabaja/gaza-price-sub000/internal/model"
)

// Ledger errors surfaced to the service layer.
var (
	// ErrReportClosed marks a disposition change on an expired or rejected
	// report.
	ErrReportClosed = errors.New("report is expired or rejected")

	// ErrOwnReport marks the submitter acting on their own report.
	ErrOwnReport = errors.New("contributor cannot act on own report")
)

// DispositionRepo is the durable side of the exclusivity ledger: at most one
// active disposition per (report, contributor), enforced by a unique key and
// toggled inside a single transaction so the clear-then-set of an override is
// one atomic change, never two independent writes.
type DispositionRepo struct {
	pool *pgxpool.Pool
}

func NewDispositionRepo(pool *pgxpool.Pool) *DispositionRepo {
	return &DispositionRepo{pool: pool}
}

// StatusFunc recomputes a report's status from its updated counts. The
// numeric thresholds are host policy, supplied by the caller.
type StatusFunc func(confirmations, flags int) string

// ScoreFunc recomputes a report's trust score from its updated inputs.
type ScoreFunc func(confirmations int, hasReceipt bool, reporterLevel string) int

// ToggleResult is the outcome of a disposition change.
type ToggleResult struct {
	Prev          string
	State         string
	ProductID     string
	Confirmations int
	Flags         int
	Status        string
	TrustScore    int
}

// SetState records a contributor's disposition on a report. state is
// "confirmed", "flagged", or "none" (clear). The transaction locks the
// report row, adjusts both counters in one write when an override flips the
// prior disposition, recomputes status and trust score, and notifies the
// stats worker. Repeating the same state is an idempotent no-op.
func (r *DispositionRepo) SetState(ctx context.Context, reportID, contributorID, state, reason string, statusFn StatusFunc, scoreFn ScoreFunc) (*ToggleResult, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	var (
		reporterID    string
		productID     string
		status        string
		expiresAt     time.Time
		hasReceipt    bool
		confirmations int
		flags         int
		trustScore    int
	)
	err = tx.QueryRow(ctx, `
		SELECT contributor_id, product_id, status, expires_at, has_receipt,
		       confirmation_count, flag_count, trust_score
		FROM reports WHERE id = $1
		FOR UPDATE`,
		reportID).Scan(&reporterID, &productID, &status, &expiresAt,
		&hasReceipt, &confirmations, &flags, &trustScore)
	if err != nil {
		return nil, err
	}

	if status == model.StatusExpired || status == model.StatusRejected || time.Now().After(expiresAt) {
		return nil, ErrReportClosed
	}
	if reporterID == contributorID {
		return nil, ErrOwnReport
	}

	// Ensure the acting contributor exists (auto-create with defaults)
	_, err = tx.Exec(ctx, `
		INSERT INTO contributors (contributor_id) VALUES ($1)
		ON CONFLICT (contributor_id) DO UPDATE SET last_active_at = NOW()`,
		contributorID)
	if err != nil {
		return nil, err
	}

	prev := model.DispositionNone
	var prevState string
	err = tx.QueryRow(ctx, `
		SELECT state FROM dispositions
		WHERE report_id = $1 AND contributor_id = $2
		FOR UPDATE`,
		reportID, contributorID).Scan(&prevState)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err == nil {
		prev = prevState
	}

	if prev == state {
		// Idempotent retry: refresh the reason on a repeated flag, change
		// nothing else.
		if state == model.DispositionFlagged {
			_, err = tx.Exec(ctx, `
				UPDATE dispositions SET reason = $3, updated_at = NOW()
				WHERE report_id = $1 AND contributor_id = $2`,
				reportID, contributorID, reason)
			if err != nil {
				return nil, err
			}
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		return &ToggleResult{
			Prev: prev, State: state, ProductID: productID,
			Confirmations: confirmations, Flags: flags,
			Status: status, TrustScore: trustScore,
		}, nil
	}

	switch state {
	case model.DispositionNone:
		_, err = tx.Exec(ctx, `
			DELETE FROM dispositions
			WHERE report_id = $1 AND contributor_id = $2`,
			reportID, contributorID)
	default:
		_, err = tx.Exec(ctx, `
			INSERT INTO dispositions (report_id, contributor_id, state, reason)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (report_id, contributor_id) DO UPDATE
			SET state = EXCLUDED.state, reason = EXCLUDED.reason, updated_at = NOW()`,
			reportID, contributorID, state, reason)
	}
	if err != nil {
		return nil, err
	}

	dConf, dFlag := CountDeltas(prev, state)
	err = tx.QueryRow(ctx, `
		UPDATE reports
		SET confirmation_count = confirmation_count + $2,
		    flag_count = flag_count + $3
		WHERE id = $1
		RETURNING confirmation_count, flag_count`,
		reportID, dConf, dFlag).Scan(&confirmations, &flags)
	if err != nil {
		return nil, err
	}

	var reporterLevel string
	err = tx.QueryRow(ctx, `
		SELECT trust_level FROM contributors WHERE contributor_id = $1`,
		reporterID).Scan(&reporterLevel)
	if err != nil {
		return nil, err
	}

	newStatus := statusFn(confirmations, flags)
	newScore := scoreFn(confirmations, hasReceipt, reporterLevel)

	_, err = tx.Exec(ctx, `
		UPDATE reports SET status = $2, trust_score = $3 WHERE id = $1`,
		reportID, newStatus, newScore)
	if err != nil {
		return nil, err
	}

	// Cumulative contributor counters only ever grow; clears do not undo
	// history.
	switch state {
	case model.DispositionConfirmed:
		_, err = tx.Exec(ctx, `
			UPDATE contributors
			SET confirmation_count = confirmation_count + 1, last_active_at = NOW()
			WHERE contributor_id = $1`, contributorID)
	case model.DispositionFlagged:
		_, err = tx.Exec(ctx, `
			UPDATE contributors
			SET flag_count = flag_count + 1, last_active_at = NOW()
			WHERE contributor_id = $1`, contributorID)
	}
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `SELECT pg_notify('report_changes', $1)`, productID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &ToggleResult{
		Prev: prev, State: state, ProductID: productID,
		Confirmations: confirmations, Flags: flags,
		Status: newStatus, TrustScore: newScore,
	}, nil
}

// Get returns the contributor's current disposition on a report, or a
// "none" record when no row exists.
func (r *DispositionRepo) Get(ctx context.Context, reportID, contributorID string) (*model.Disposition, error) {
	var d model.Disposition
	err := r.pool.QueryRow(ctx, `
		SELECT report_id, contributor_id, state, reason, updated_at
		FROM dispositions
		WHERE report_id = $1 AND contributor_id = $2`,
		reportID, contributorID).Scan(
		&d.ReportID, &d.ContributorID, &d.State, &d.Reason, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return &model.Disposition{
			ReportID:      reportID,
			ContributorID: contributorID,
			State:         model.DispositionNone,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CountDeltas is the pure exclusivity rule: the confirmation/flag count
// adjustments for a prev → next disposition change. An override that flips
// the prior disposition adjusts both counters as one change.
func CountDeltas(prev, next string) (dConf, dFlag int) {
	if prev == next {
		return 0, 0
	}
	switch prev {
	case model.DispositionConfirmed:
		dConf--
	case model.DispositionFlagged:
		dFlag--
	}
	switch next {
	case model.DispositionConfirmed:
		dConf++
	case model.DispositionFlagged:
		dFlag++
	}
	return dConf, dFlag
}
