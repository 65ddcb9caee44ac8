package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mayar-kabaja/gaza-price-sub000/internal/model"
)

func testPolicy() LifecyclePolicy {
	return LifecyclePolicy{
		ReportTTL:        48 * time.Hour,
		ConfirmThreshold: 3,
		FlagThreshold:    3,
		FlagRatio:        1.0,
	}
}

func TestEvaluateStatus(t *testing.T) {
	p := testPolicy()

	tests := []struct {
		name          string
		confirmations int
		flags         int
		want          string
	}{
		{"fresh report", 0, 0, model.StatusPending},
		{"below both thresholds", 2, 1, model.StatusPending},
		{"confirm threshold reached", 3, 0, model.StatusConfirmed},
		{"well past confirm threshold", 10, 0, model.StatusConfirmed},
		{"flag threshold reached", 0, 3, model.StatusFlagged},
		{"flags dominate over confirmations", 5, 3, model.StatusFlagged},
		{"ratio reached at parity", 2, 2, model.StatusFlagged},
		{"ratio exceeded", 1, 2, model.StatusFlagged},
		{"flags alone below threshold", 0, 2, model.StatusPending},
		{"confirmations outweigh single flag", 3, 1, model.StatusConfirmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.EvaluateStatus(tt.confirmations, tt.flags)
			if got != tt.want {
				t.Errorf("EvaluateStatus(%d, %d) = %s, want %s", tt.confirmations, tt.flags, got, tt.want)
			}
		})
	}
}

func TestEvaluateStatus_RatioNeedsBothCounts(t *testing.T) {
	p := testPolicy()

	// The ratio test only fires when there is at least one of each; zero
	// confirmations with sub-threshold flags stays pending rather than
	// dividing by zero or flagging on a single dissent.
	if got := p.EvaluateStatus(0, 1); got != model.StatusPending {
		t.Errorf("EvaluateStatus(0, 1) = %s, want pending", got)
	}
}

func TestEvaluateStatus_ReversesWhenCountsDrop(t *testing.T) {
	p := testPolicy()

	// A cleared flag can move the report back: statuses are recomputed from
	// current counts, not latched.
	if got := p.EvaluateStatus(3, 3); got != model.StatusFlagged {
		t.Fatalf("EvaluateStatus(3, 3) = %s, want flagged", got)
	}
	if got := p.EvaluateStatus(3, 1); got != model.StatusConfirmed {
		t.Errorf("EvaluateStatus(3, 1) = %s, want confirmed after flags drop", got)
	}
}

func TestEvaluateStatus_HigherRatioConfig(t *testing.T) {
	p := testPolicy()
	p.FlagRatio = 2.0

	// With a stricter ratio, parity no longer flags.
	if got := p.EvaluateStatus(2, 2); got != model.StatusPending {
		t.Errorf("EvaluateStatus(2, 2) with ratio 2.0 = %s, want pending", got)
	}
	if got := p.EvaluateStatus(1, 2); got != model.StatusFlagged {
		t.Errorf("EvaluateStatus(1, 2) with ratio 2.0 = %s, want flagged", got)
	}
}

func TestReportActive(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		status string
		expiry time.Time
		want   bool
	}{
		{"pending inside window", model.StatusPending, now.Add(time.Hour), true},
		{"confirmed inside window", model.StatusConfirmed, now.Add(time.Hour), true},
		{"flagged inside window", model.StatusFlagged, now.Add(time.Hour), true},
		{"expired status", model.StatusExpired, now.Add(time.Hour), false},
		{"rejected status", model.StatusRejected, now.Add(time.Hour), false},
		{"pending past expiry", model.StatusPending, now.Add(-time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := model.Report{Status: tt.status, ExpiresAt: tt.expiry}
			if got := r.Active(now); got != tt.want {
				t.Errorf("Active() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMarkLowestPerArea(t *testing.T) {
	svc := &ReportService{stats: NewStatsService()}

	mk := func(area, price string) model.Report {
		return model.Report{
			AreaID: area,
			Status: model.StatusPending,
			Price:  decimal.RequireFromString(price),
		}
	}

	reports := []model.Report{
		mk("north", "10.00"),
		mk("north", "8.00"),
		mk("south", "6.00"),
		mk("south", "9.00"),
	}

	svc.markLowestPerArea(reports)

	// Lowest is computed within each area, not globally.
	if reports[0].IsLowest {
		t.Error("north 10.00 should not be lowest")
	}
	if !reports[1].IsLowest {
		t.Error("north 8.00 should be lowest in its area")
	}
	if !reports[2].IsLowest {
		t.Error("south 6.00 should be lowest in its area")
	}
	if reports[3].IsLowest {
		t.Error("south 9.00 should not be lowest")
	}
}

type deniedLimiter struct {
	decision model.RateDecision

	recordedKind    string
	recordedScope   string
	recordedSuccess bool
	recordCalls     int
}

func (l *deniedLimiter) AcquireSubmission(ctx context.Context, contributorID, productID string) (model.RateDecision, error) {
	return l.decision, nil
}

func (l *deniedLimiter) RecordAttempt(ctx context.Context, contributorID, kind, scope string, success bool) error {
	l.recordCalls++
	l.recordedKind = kind
	l.recordedScope = scope
	l.recordedSuccess = success
	return nil
}

func TestSubmitDenialRecordsFailedAttempt(t *testing.T) {
	limiter := &deniedLimiter{decision: model.RateDecision{Allowed: false, RetryAfter: time.Hour}}
	svc := NewReportService(nil, limiter, NewTrustService(), NewStatsService(), nil, testPolicy())

	req := model.ReportRequest{
		ProductID:     "bread-loaf",
		AreaID:        "gaza-city",
		Currency:      "ILS",
		ContributorID: "abc123",
	}
	rep, decision, err := svc.Submit(context.Background(), req, decimal.NewFromInt(4), "iphash")
	if err != nil {
		t.Fatalf("Submit returned error on denial: %v", err)
	}
	if rep != nil {
		t.Error("denied submission should not create a report")
	}
	if decision.Allowed {
		t.Error("expected denied decision to pass through")
	}

	if limiter.recordCalls != 1 {
		t.Fatalf("expected 1 recorded attempt, got %d", limiter.recordCalls)
	}
	if limiter.recordedKind != ActionSubmitReport || limiter.recordedScope != "bread-loaf" {
		t.Errorf("recorded attempt kind=%s scope=%s, want %s/%s",
			limiter.recordedKind, limiter.recordedScope, ActionSubmitReport, "bread-loaf")
	}
	if limiter.recordedSuccess {
		t.Error("denied attempt must be recorded with success=false")
	}
}
