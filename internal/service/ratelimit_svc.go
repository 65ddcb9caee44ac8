package service

import (
	"context"
	"time"

	"github.com/mayar-kabaja/gaza-price-sub000/internal/model"
	"github.com/mayar-kabaja/gaza-price-sub000/internal/repository"
)

// Action kinds tracked by the rate limiter.
const (
	ActionSubmitReport   = "submit_report"
	ActionConfirmReport  = "confirm_report"
	ActionFlagReport     = "flag_report"
	ActionSuggestProduct = "suggest_product"
)

// RatePolicy is one sliding-window cap for an action kind. Scoped policies
// narrow the count to a single scope key (e.g. per-product submissions).
type RatePolicy struct {
	Kind   string
	Window time.Duration
	Max    int
	Scoped bool
}

// Policy constants matching the platform's abuse limits.
var (
	PolicySubmitHourly     = RatePolicy{Kind: ActionSubmitReport, Window: time.Hour, Max: 5}
	PolicySubmitPerProduct = RatePolicy{Kind: ActionSubmitReport, Window: 24 * time.Hour, Max: 3, Scoped: true}
	PolicyConfirm          = RatePolicy{Kind: ActionConfirmReport, Window: time.Hour, Max: 10}
	PolicyFlag             = RatePolicy{Kind: ActionFlagReport, Window: time.Hour, Max: 5}
	PolicySuggest          = RatePolicy{Kind: ActionSuggestProduct, Window: 24 * time.Hour, Max: 3}
)

// RateLimitService enforces per-contributor sliding-window limits over the
// attempts table. Only successful attempts count toward a limit; failed
// attempts are recorded for auditing but never charged.
type RateLimitService struct {
	attempts *repository.AttemptRepo
}

func NewRateLimitService(attempts *repository.AttemptRepo) *RateLimitService {
	return &RateLimitService{attempts: attempts}
}

// Decide is the pure windowed-count rule: denied once count reaches Max,
// with a conservative retry-after of the whole window rather than the oldest
// attempt's exact expiry. Callers must not assume exact timing.
func Decide(count int, p RatePolicy) model.RateDecision {
	if count >= p.Max {
		return model.RateDecision{Allowed: false, Remaining: 0, RetryAfter: p.Window}
	}
	return model.RateDecision{Allowed: true, Remaining: p.Max - count}
}

// CheckLimit counts successful attempts inside the policy window and returns
// the decision. scope is ignored for unscoped policies.
func (s *RateLimitService) CheckLimit(ctx context.Context, contributorID string, p RatePolicy, scope string) (model.RateDecision, error) {
	if !p.Scoped {
		scope = ""
	}
	count, err := s.attempts.CountSuccessful(ctx, contributorID, p.Kind, scope, p.Window)
	if err != nil {
		return model.RateDecision{}, err
	}
	return Decide(count, p), nil
}

// RecordAttempt appends an attempt record. Failed attempts are stored but
// never counted by CheckLimit.
func (s *RateLimitService) RecordAttempt(ctx context.Context, contributorID, kind, scope string, success bool) error {
	return s.attempts.Insert(ctx, contributorID, kind, scope, success)
}

// Acquire checks the policy and records the successful attempt as a single
// guarded insert, so two concurrent calls cannot both slip past the cap.
func (s *RateLimitService) Acquire(ctx context.Context, contributorID string, p RatePolicy, scope string) (model.RateDecision, error) {
	if !p.Scoped {
		scope = ""
	}
	inserted, err := s.attempts.TryRecord(ctx, contributorID, p.Kind, scope, p.Max, p.Window)
	if err != nil {
		return model.RateDecision{}, err
	}
	if !inserted {
		return model.RateDecision{Allowed: false, Remaining: 0, RetryAfter: p.Window}, nil
	}
	return model.RateDecision{Allowed: true}, nil
}

// AcquireSubmission applies both submission buckets: 5/hour overall and
// 3/day per product. The hourly check runs first as a plain count, then the
// per-product cap is taken with the guarded insert; under contention the
// hourly bucket may overshoot by at most one attempt, which the platform
// tolerates.
func (s *RateLimitService) AcquireSubmission(ctx context.Context, contributorID, productID string) (model.RateDecision, error) {
	hourly, err := s.CheckLimit(ctx, contributorID, PolicySubmitHourly, "")
	if err != nil {
		return model.RateDecision{}, err
	}
	if !hourly.Allowed {
		return hourly, nil
	}
	return s.Acquire(ctx, contributorID, PolicySubmitPerProduct, productID)
}
