package service

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v5"

	"github.com/mayar-kabaja/gaza-price-sub000/internal/model"
	"github.com/mayar-kabaja/gaza-price-sub000/internal/repository"
)

// DispositionService processes confirm/flag/clear actions: rate limiting,
// the exclusive ledger toggle, and the resulting lifecycle and trust-score
// updates.
type DispositionService struct {
	ledger *repository.DispositionRepo
	rate   *RateLimitService
	trust  *TrustService
	cache  *CacheService
	policy LifecyclePolicy
}

func NewDispositionService(ledger *repository.DispositionRepo, rate *RateLimitService, trust *TrustService, cache *CacheService, policy LifecyclePolicy) *DispositionService {
	return &DispositionService{ledger: ledger, rate: rate, trust: trust, cache: cache, policy: policy}
}

// SetConfirmed records a confirmed disposition, clearing any prior flag from
// the same contributor as part of the same atomic change.
func (s *DispositionService) SetConfirmed(ctx context.Context, reportID, contributorID string) (*model.DispositionResponse, model.RateDecision, error) {
	return s.set(ctx, reportID, contributorID, model.DispositionConfirmed, "", PolicyConfirm)
}

// SetFlagged records a flagged disposition with a reason, clearing any prior
// confirmation from the same contributor.
func (s *DispositionService) SetFlagged(ctx context.Context, reportID, contributorID, reason string) (*model.DispositionResponse, model.RateDecision, error) {
	return s.set(ctx, reportID, contributorID, model.DispositionFlagged, reason, PolicyFlag)
}

// Clear removes any disposition the contributor holds on the report. Clears
// are not rate limited.
func (s *DispositionService) Clear(ctx context.Context, reportID, contributorID string) (*model.DispositionResponse, error) {
	result, err := s.ledger.SetState(ctx, reportID, contributorID,
		model.DispositionNone, "", s.policy.EvaluateStatus, s.trust.Score)
	if err != nil {
		return nil, mapLedgerErr(err)
	}

	s.invalidate(ctx, reportID, result.ProductID)
	return toResponse(result), nil
}

// Get returns the contributor's current disposition on a report.
func (s *DispositionService) Get(ctx context.Context, reportID, contributorID string) (*model.Disposition, error) {
	return s.ledger.Get(ctx, reportID, contributorID)
}

func (s *DispositionService) set(ctx context.Context, reportID, contributorID, state, reason string, policy RatePolicy) (*model.DispositionResponse, model.RateDecision, error) {
	decision, err := s.rate.CheckLimit(ctx, contributorID, policy, "")
	if err != nil {
		return nil, model.RateDecision{}, err
	}
	if !decision.Allowed {
		// Denied attempts are recorded for auditing but never charged.
		if err := s.rate.RecordAttempt(ctx, contributorID, policy.Kind, "", false); err != nil {
			log.Printf("ratelimit: record attempt error: %v", err)
		}
		return nil, decision, nil
	}

	result, err := s.ledger.SetState(ctx, reportID, contributorID, state, reason,
		s.policy.EvaluateStatus, s.trust.Score)
	if recordErr := s.rate.RecordAttempt(ctx, contributorID, policy.Kind, "", err == nil); recordErr != nil {
		log.Printf("ratelimit: record attempt error: %v", recordErr)
	}
	if err != nil {
		return nil, model.RateDecision{}, mapLedgerErr(err)
	}

	s.invalidate(ctx, reportID, result.ProductID)
	return toResponse(result), decision, nil
}

func (s *DispositionService) invalidate(ctx context.Context, reportID, productID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateReport(ctx, reportID); err != nil {
		log.Printf("cache: invalidate report error: %v", err)
	}
	if err := s.cache.InvalidateStats(ctx, productID); err != nil {
		log.Printf("cache: invalidate stats error: %v", err)
	}
}

func toResponse(r *repository.ToggleResult) *model.DispositionResponse {
	return &model.DispositionResponse{
		Success:       true,
		Disposition:   r.State,
		Confirmations: r.Confirmations,
		Flags:         r.Flags,
		ReportStatus:  r.Status,
		TrustScore:    r.TrustScore,
	}
}

func mapLedgerErr(err error) error {
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return ErrNotFound
	case errors.Is(err, repository.ErrReportClosed):
		return ErrReportClosed
	case errors.Is(err, repository.ErrOwnReport):
		return ErrOwnReport
	default:
		return err
	}
}
