package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mayar-kabaja/gaza-price-sub000/internal/model"
	"github.com/mayar-kabaja/gaza-price-sub000/internal/repository"
)

// SuggestionService stores product suggestions for moderation, gated by the
// suggestions rate bucket (3/day).
type SuggestionService struct {
	repo *repository.SuggestionRepo
	rate *RateLimitService
}

func NewSuggestionService(repo *repository.SuggestionRepo, rate *RateLimitService) *SuggestionService {
	return &SuggestionService{repo: repo, rate: rate}
}

// Create records a suggestion, or returns the denial decision when the
// contributor is over the daily cap.
func (s *SuggestionService) Create(ctx context.Context, req model.SuggestionRequest) (*model.Suggestion, model.RateDecision, error) {
	decision, err := s.rate.Acquire(ctx, req.ContributorID, PolicySuggest, "")
	if err != nil {
		return nil, model.RateDecision{}, err
	}
	if !decision.Allowed {
		return nil, decision, nil
	}

	sug := &model.Suggestion{
		ID:            uuid.NewString(),
		ContributorID: req.ContributorID,
		ProductName:   req.ProductName,
		Category:      req.Category,
		Status:        "pending",
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, sug); err != nil {
		return nil, model.RateDecision{}, err
	}
	return sug, decision, nil
}
