package service

import (
	"testing"
	"time"
)

func TestDecide(t *testing.T) {
	tests := []struct {
		name          string
		count         int
		policy        RatePolicy
		wantAllowed   bool
		wantRemaining int
	}{
		{"no attempts yet", 0, PolicySubmitHourly, true, 5},
		{"one below cap", 4, PolicySubmitHourly, true, 1},
		{"at cap", 5, PolicySubmitHourly, false, 0},
		{"over cap", 9, PolicySubmitHourly, false, 0},
		{"per-product at cap", 3, PolicySubmitPerProduct, false, 0},
		{"confirm below cap", 9, PolicyConfirm, true, 1},
		{"flag at cap", 5, PolicyFlag, false, 0},
		{"suggest below cap", 2, PolicySuggest, true, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.count, tt.policy)
			if got.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", got.Allowed, tt.wantAllowed)
			}
			if got.Remaining != tt.wantRemaining {
				t.Errorf("Remaining = %d, want %d", got.Remaining, tt.wantRemaining)
			}
		})
	}
}

func TestDecide_RetryAfterIsWholeWindow(t *testing.T) {
	got := Decide(5, PolicySubmitHourly)
	if got.Allowed {
		t.Fatal("expected denial at cap")
	}
	if got.RetryAfter != time.Hour {
		t.Errorf("RetryAfter = %v, want %v (conservative whole window)", got.RetryAfter, time.Hour)
	}
	if got.RetryAfterSeconds() != 3600 {
		t.Errorf("RetryAfterSeconds = %d, want 3600", got.RetryAfterSeconds())
	}

	got = Decide(3, PolicySubmitPerProduct)
	if got.RetryAfter != 24*time.Hour {
		t.Errorf("per-product RetryAfter = %v, want %v", got.RetryAfter, 24*time.Hour)
	}
}

func TestDecide_AllowedHasNoRetryAfter(t *testing.T) {
	got := Decide(0, PolicyConfirm)
	if !got.Allowed {
		t.Fatal("expected allow")
	}
	if got.RetryAfter != 0 {
		t.Errorf("RetryAfter on allow = %v, want 0", got.RetryAfter)
	}
}

func TestPolicyTable(t *testing.T) {
	tests := []struct {
		name       string
		policy     RatePolicy
		wantKind   string
		wantWindow time.Duration
		wantMax    int
		wantScoped bool
	}{
		{"submissions hourly", PolicySubmitHourly, ActionSubmitReport, time.Hour, 5, false},
		{"submissions per product daily", PolicySubmitPerProduct, ActionSubmitReport, 24 * time.Hour, 3, true},
		{"confirmations hourly", PolicyConfirm, ActionConfirmReport, time.Hour, 10, false},
		{"flags hourly", PolicyFlag, ActionFlagReport, time.Hour, 5, false},
		{"suggestions daily", PolicySuggest, ActionSuggestProduct, 24 * time.Hour, 3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.policy
			if p.Kind != tt.wantKind {
				t.Errorf("Kind = %s, want %s", p.Kind, tt.wantKind)
			}
			if p.Window != tt.wantWindow {
				t.Errorf("Window = %v, want %v", p.Window, tt.wantWindow)
			}
			if p.Max != tt.wantMax {
				t.Errorf("Max = %d, want %d", p.Max, tt.wantMax)
			}
			if p.Scoped != tt.wantScoped {
				t.Errorf("Scoped = %v, want %v", p.Scoped, tt.wantScoped)
			}
		})
	}
}
