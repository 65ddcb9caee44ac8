package service

import (
	"context"
	"math"
	"time"

	"github.com/mayar-kabaja/gaza-price-sub000/internal/model"
	"github.com/mayar-kabaja/gaza-price-sub000/internal/repository"
)

type ContributorService struct {
	repo  *repository.ContributorRepo
	trust *TrustService
}

func NewContributorService(repo *repository.ContributorRepo, trust *TrustService) *ContributorService {
	return &ContributorService{repo: repo, trust: trust}
}

// Lookup returns the trust profile for a contributor. The level is derived
// from the report count on every read; the stored column is a convenience
// copy, never the source of truth. Banned contributors still resolve — their
// historical data stays scoreable; gating happens upstream.
func (s *ContributorService) Lookup(ctx context.Context, contributorID string) (*model.ContributorResponse, error) {
	c, err := s.repo.FindByID(ctx, contributorID)
	if err != nil {
		return nil, err
	}

	level := s.trust.TrustLevel(c.ReportCount)
	accountAge := int(math.Floor(time.Since(c.JoinedAt).Hours() / 24))

	return &model.ContributorResponse{
		ContributorID:      c.ContributorID,
		DisplayHandle:      c.DisplayHandle,
		TrustLevel:         level,
		ReportCount:        c.ReportCount,
		ConfirmationCount:  c.ConfirmationCount,
		FlagCount:          c.FlagCount,
		ReportsToNextLevel: s.trust.ReportsToNextLevel(level, c.ReportCount),
		AccountAge:         accountAge,
	}, nil
}
