package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mayar-kabaja/gaza-price-sub000/internal/model"
	"github.com/mayar-kabaja/gaza-price-sub000/internal/repository"
)

// LifecyclePolicy holds the host-configured thresholds driving report status
// transitions. The numeric cutoffs are deployment configuration, not policy
// constants of the core.
type LifecyclePolicy struct {
	ReportTTL        time.Duration
	ConfirmThreshold int
	FlagThreshold    int
	FlagRatio        float64
}

// EvaluateStatus recomputes a non-terminal report's status from its current
// counts. Flags dominate: a report crossing the flag threshold or ratio is
// flagged even if it also clears the confirmation threshold.
func (p LifecyclePolicy) EvaluateStatus(confirmations, flags int) string {
	if flags >= p.FlagThreshold {
		return model.StatusFlagged
	}
	if flags > 0 && confirmations > 0 &&
		float64(flags)/float64(confirmations) >= p.FlagRatio {
		return model.StatusFlagged
	}
	if confirmations >= p.ConfirmThreshold {
		return model.StatusConfirmed
	}
	return model.StatusPending
}

// submissionLimiter is the slice of the rate limiter Submit needs.
type submissionLimiter interface {
	AcquireSubmission(ctx context.Context, contributorID, productID string) (model.RateDecision, error)
	RecordAttempt(ctx context.Context, contributorID, kind, scope string, success bool) error
}

// ReportService drives the report lifecycle: submission, lookup with derived
// annotations, aggregate stats, and the expiry sweep.
type ReportService struct {
	repo   *repository.ReportRepo
	rate   submissionLimiter
	trust  *TrustService
	stats  *StatsService
	cache  *CacheService
	policy LifecyclePolicy
}

func NewReportService(repo *repository.ReportRepo, rate submissionLimiter, trust *TrustService, stats *StatsService, cache *CacheService, policy LifecyclePolicy) *ReportService {
	return &ReportService{repo: repo, rate: rate, trust: trust, stats: stats, cache: cache, policy: policy}
}

// Submit validates rate limits and creates a pending report. A denial is
// returned as a decision, not an error.
func (s *ReportService) Submit(ctx context.Context, req model.ReportRequest, price decimal.Decimal, ipHash string) (*model.Report, model.RateDecision, error) {
	decision, err := s.rate.AcquireSubmission(ctx, req.ContributorID, req.ProductID)
	if err != nil {
		return nil, model.RateDecision{}, err
	}
	if !decision.Allowed {
		// Denied attempts are recorded for auditing but never charged.
		if err := s.rate.RecordAttempt(ctx, req.ContributorID, ActionSubmitReport, req.ProductID, false); err != nil {
			log.Printf("ratelimit: record attempt error: %v", err)
		}
		return nil, decision, nil
	}

	now := time.Now().UTC()
	rep := &model.Report{
		ID:            uuid.NewString(),
		ProductID:     req.ProductID,
		AreaID:        req.AreaID,
		Price:         price,
		Currency:      req.Currency,
		ContributorID: req.ContributorID,
		Status:        model.StatusPending,
		HasReceipt:    req.HasReceipt,
		IPHash:        ipHash,
		ReportedAt:    now,
		ExpiresAt:     now.Add(s.policy.ReportTTL),
	}
	if req.StoreID != "" {
		rep.StoreID = &req.StoreID
	}
	if req.StoreName != "" {
		rep.StoreName = &req.StoreName
	}

	if err := s.repo.Insert(ctx, rep, s.trust.TrustLevel, s.trust.Score); err != nil {
		return nil, model.RateDecision{}, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateStats(ctx, req.ProductID); err != nil {
			log.Printf("cache: invalidate stats error: %v", err)
		}
	}

	return rep, decision, nil
}

// Get returns a single report, cache-aside.
func (s *ReportService) Get(ctx context.Context, reportID string) (*model.Report, error) {
	if s.cache != nil {
		cached, err := s.cache.GetReport(ctx, reportID)
		if err != nil {
			log.Printf("cache: report get error: %v", err)
		} else if cached != nil {
			var rep model.Report
			if err := json.Unmarshal(cached, &rep); err == nil {
				return &rep, nil
			}
		}
	}

	rep, err := s.repo.FindByID(ctx, reportID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetReport(ctx, reportID, rep); err != nil {
			log.Printf("cache: report set error: %v", err)
		}
	}
	return rep, nil
}

// ListActive returns the active reports for a product, with lowest-price
// marking (per area group) and outlier annotation derived on read.
func (s *ReportService) ListActive(ctx context.Context, productID, areaID string) ([]model.Report, error) {
	reports, err := s.repo.ListActive(ctx, productID, areaID)
	if err != nil {
		return nil, err
	}

	s.markLowestPerArea(reports)

	prices := make([]float64, 0, len(reports))
	for i := range reports {
		prices = append(prices, reports[i].Price.InexactFloat64())
	}
	for i := range reports {
		reports[i].IsOutlier = s.stats.IsOutlier(reports[i].Price.InexactFloat64(), prices)
	}

	return reports, nil
}

// ProductStats computes {avg, median, min, count} over active reports,
// cache-aside. Recomputing on read is preferred over invalidation-prone
// cached aggregates; the cache only sponges bursts.
func (s *ReportService) ProductStats(ctx context.Context, productID, areaID string) (*model.ProductStats, error) {
	if s.cache != nil {
		cached, err := s.cache.GetStats(ctx, productID, areaID)
		if err != nil {
			log.Printf("cache: stats get error: %v", err)
		} else if cached != nil {
			var stats model.ProductStats
			if err := json.Unmarshal(cached, &stats); err == nil {
				return &stats, nil
			}
		}
	}

	reports, err := s.repo.ListActive(ctx, productID, areaID)
	if err != nil {
		return nil, err
	}

	stats := s.stats.ComputeStats(reports)
	stats.ProductID = productID
	stats.AreaID = areaID

	if s.cache != nil {
		if err := s.cache.SetStats(ctx, productID, areaID, &stats); err != nil {
			log.Printf("cache: stats set error: %v", err)
		}
	}
	return &stats, nil
}

// ExpireDue runs one expiry sweep. Safe to repeat: already-expired and
// rejected reports are untouched.
func (s *ReportService) ExpireDue(ctx context.Context) (int64, error) {
	return s.repo.ExpireDue(ctx)
}

// RefreshLowest recomputes and persists lowest-price flags for a product,
// grouped per area. Called by the stats worker after report changes.
func (s *ReportService) RefreshLowest(ctx context.Context, productID string) error {
	reports, err := s.repo.ListActive(ctx, productID, "")
	if err != nil {
		return err
	}

	s.markLowestPerArea(reports)

	lowestIDs := []string{}
	for i := range reports {
		if reports[i].IsLowest {
			lowestIDs = append(lowestIDs, reports[i].ID)
		}
	}

	return s.repo.SetLowestFlags(ctx, productID, lowestIDs)
}

// markLowestPerArea applies lowest marking within each area group, writing
// the flags back onto the input slice.
func (s *ReportService) markLowestPerArea(reports []model.Report) {
	groups := make(map[string][]int)
	for i := range reports {
		groups[reports[i].AreaID] = append(groups[reports[i].AreaID], i)
	}

	for _, idxs := range groups {
		group := make([]model.Report, len(idxs))
		for j, i := range idxs {
			group[j] = reports[i]
		}
		s.stats.MarkLowest(group)
		for j, i := range idxs {
			reports[i].IsLowest = group[j].IsLowest
		}
	}
}
