package service

import (
	"math"

	"github.com/mayar-kabaja/gaza-price-sub000/internal/model"
)

const (
	// Report-count thresholds for each trust level.
	RegularThreshold  = 5
	TrustedThreshold  = 20
	VerifiedThreshold = 50

	// Score inputs: points per confirmation, receipt bonus, score ceiling.
	ConfirmationPoints = 20
	ReceiptBonus       = 25
	MaxTrustScore      = 100

	// Per-level score multipliers. Higher-trust reporters have an
	// established baseline of accuracy, so each confirmation counts more.
	MultiplierNew      = 0.6
	MultiplierRegular  = 1.0
	MultiplierTrusted  = 1.5
	MultiplierVerified = 2.0
)

// TrustService derives contributor trust levels and per-report trust scores.
// All methods are pure functions over counts already stored on the entities.
type TrustService struct{}

func NewTrustService() *TrustService {
	return &TrustService{}
}

// TrustLevel maps a cumulative report count to a discrete trust level.
// Monotone non-decreasing in reportCount.
func (s *TrustService) TrustLevel(reportCount int) string {
	switch {
	case reportCount >= VerifiedThreshold:
		return model.LevelVerified
	case reportCount >= TrustedThreshold:
		return model.LevelTrusted
	case reportCount >= RegularThreshold:
		return model.LevelRegular
	default:
		return model.LevelNew
	}
}

// ReportsToNextLevel returns how many more reports are needed to reach the
// next trust level, or 0 when already verified.
func (s *TrustService) ReportsToNextLevel(level string, reportCount int) int {
	var next int
	switch level {
	case model.LevelNew:
		next = RegularThreshold
	case model.LevelRegular:
		next = TrustedThreshold
	case model.LevelTrusted:
		next = VerifiedThreshold
	default:
		return 0
	}
	if gap := next - reportCount; gap > 0 {
		return gap
	}
	return 0
}

// LevelMultiplier returns the score multiplier for a reporter's trust level.
func (s *TrustService) LevelMultiplier(level string) float64 {
	switch level {
	case model.LevelVerified:
		return MultiplierVerified
	case model.LevelTrusted:
		return MultiplierTrusted
	case model.LevelRegular:
		return MultiplierRegular
	default:
		return MultiplierNew
	}
}

// Score computes a report's trust score:
//
//	base = confirmations*20 + (hasReceipt ? 25 : 0)
//	score = round(base * levelMultiplier), clamped to 100
func (s *TrustService) Score(confirmations int, hasReceipt bool, reporterLevel string) int {
	base := float64(confirmations * ConfirmationPoints)
	if hasReceipt {
		base += ReceiptBonus
	}

	score := int(math.Round(base * s.LevelMultiplier(reporterLevel)))
	if score > MaxTrustScore {
		return MaxTrustScore
	}
	return score
}
