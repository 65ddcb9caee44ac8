package service

import (
	"testing"

	"github.com/mayar-kabaja/gaza-price-sub000/internal/model"
)

func TestTrustLevel(t *testing.T) {
	svc := NewTrustService()

	tests := []struct {
		name        string
		reportCount int
		want        string
	}{
		{"zero reports", 0, model.LevelNew},
		{"4 reports still new", 4, model.LevelNew},
		{"exactly 5 is regular", 5, model.LevelRegular},
		{"19 reports still regular", 19, model.LevelRegular},
		{"exactly 20 is trusted", 20, model.LevelTrusted},
		{"49 reports still trusted", 49, model.LevelTrusted},
		{"exactly 50 is verified", 50, model.LevelVerified},
		{"well past verified", 500, model.LevelVerified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.TrustLevel(tt.reportCount)
			if got != tt.want {
				t.Errorf("TrustLevel(%d) = %s, want %s", tt.reportCount, got, tt.want)
			}
		})
	}
}

func TestReportsToNextLevel(t *testing.T) {
	svc := NewTrustService()

	tests := []struct {
		name        string
		level       string
		reportCount int
		want        int
	}{
		{"new with zero reports", model.LevelNew, 0, 5},
		{"new one away", model.LevelNew, 4, 1},
		{"regular just promoted", model.LevelRegular, 5, 15},
		{"regular one away from trusted", model.LevelRegular, 19, 1},
		{"trusted halfway", model.LevelTrusted, 35, 15},
		{"verified has no next level", model.LevelVerified, 50, 0},
		{"verified far past", model.LevelVerified, 200, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.ReportsToNextLevel(tt.level, tt.reportCount)
			if got != tt.want {
				t.Errorf("ReportsToNextLevel(%s, %d) = %d, want %d", tt.level, tt.reportCount, got, tt.want)
			}
		})
	}
}

func TestLevelMultiplier(t *testing.T) {
	svc := NewTrustService()

	tests := []struct {
		level string
		want  float64
	}{
		{model.LevelNew, 0.6},
		{model.LevelRegular, 1.0},
		{model.LevelTrusted, 1.5},
		{model.LevelVerified, 2.0},
		{"unknown-level", 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			got := svc.LevelMultiplier(tt.level)
			if got != tt.want {
				t.Errorf("LevelMultiplier(%s) = %.1f, want %.1f", tt.level, got, tt.want)
			}
		})
	}
}

func TestScore(t *testing.T) {
	svc := NewTrustService()

	tests := []struct {
		name          string
		confirmations int
		hasReceipt    bool
		level         string
		want          int
	}{
		{"fresh report, new reporter", 0, false, model.LevelNew, 0},
		{"receipt only, new reporter", 0, true, model.LevelNew, 15},
		{"3 confirmations, new reporter", 3, false, model.LevelNew, 36},
		{"3 confirmations with receipt, regular", 3, true, model.LevelRegular, 85},
		{"3 confirmations with receipt, trusted clamps", 3, true, model.LevelTrusted, 100},
		{"2 confirmations, verified", 2, false, model.LevelVerified, 80},
		{"receipt only, verified", 0, true, model.LevelVerified, 50},
		{"big pile clamps at 100", 10, true, model.LevelVerified, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Score(tt.confirmations, tt.hasReceipt, tt.level)
			if got != tt.want {
				t.Errorf("Score(%d, %v, %s) = %d, want %d", tt.confirmations, tt.hasReceipt, tt.level, got, tt.want)
			}
		})
	}
}

func TestScore_RoundsHalfUp(t *testing.T) {
	svc := NewTrustService()

	// 1 confirmation + receipt at new level: (20+25)*0.6 = 27.0
	if got := svc.Score(1, true, model.LevelNew); got != 27 {
		t.Errorf("Score(1, true, new) = %d, want 27", got)
	}
	// receipt only at new level: 25*0.6 = 15.0
	if got := svc.Score(0, true, model.LevelNew); got != 15 {
		t.Errorf("Score(0, true, new) = %d, want 15", got)
	}
	// 1 confirmation + receipt at trusted: (20+25)*1.5 = 67.5 → 68
	if got := svc.Score(1, true, model.LevelTrusted); got != 68 {
		t.Errorf("Score(1, true, trusted) = %d, want 68", got)
	}
}

func TestTrustLevel_MonotoneInReportCount(t *testing.T) {
	svc := NewTrustService()

	order := map[string]int{
		model.LevelNew:      0,
		model.LevelRegular:  1,
		model.LevelTrusted:  2,
		model.LevelVerified: 3,
	}

	prev := svc.TrustLevel(0)
	for count := 1; count <= 60; count++ {
		cur := svc.TrustLevel(count)
		if order[cur] < order[prev] {
			t.Fatalf("level regressed from %s to %s at count %d", prev, cur, count)
		}
		prev = cur
	}
}
