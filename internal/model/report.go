package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report statuses. Rejected and expired are terminal.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusFlagged   = "flagged"
	StatusRejected  = "rejected"
	StatusExpired   = "expired"
)

// ValidCurrencies are the accepted three-letter currency codes.
var ValidCurrencies = map[string]bool{
	"ILS": true,
	"USD": true,
	"EGP": true,
}

// Report represents one observed price for a product at a store/area.
type Report struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"productId"`
	StoreID           *string         `json:"storeId,omitempty"`
	StoreName         *string         `json:"storeName,omitempty"`
	AreaID            string          `json:"areaId"`
	Price             decimal.Decimal `json:"price"`
	Currency          string          `json:"currency"`
	ContributorID     string          `json:"contributorId"`
	Status            string          `json:"status"`
	TrustScore        int             `json:"trustScore"`
	ConfirmationCount int             `json:"confirmations"`
	FlagCount         int             `json:"flags"`
	HasReceipt        bool            `json:"hasReceipt"`
	IsLowest          bool            `json:"isLowest"`
	IsOutlier         bool            `json:"isOutlier"`
	IPHash            string          `json:"-"`
	ReportedAt        time.Time       `json:"reportedAt"`
	ExpiresAt         time.Time       `json:"expiresAt"`
}

// Active reports whether the report still participates in aggregates:
// not expired, not rejected, and inside its validity window.
func (r *Report) Active(now time.Time) bool {
	if r.Status == StatusExpired || r.Status == StatusRejected {
		return false
	}
	return !now.After(r.ExpiresAt)
}

// ReportRequest is the API request body for submitting a price report.
type ReportRequest struct {
	ProductID     string  `json:"productId"`
	StoreID       string  `json:"storeId,omitempty"`
	StoreName     string  `json:"storeName,omitempty"`
	AreaID        string  `json:"areaId"`
	Price         string  `json:"price"`
	Currency      string  `json:"currency"`
	ContributorID string  `json:"contributorId"`
	HasReceipt    bool    `json:"hasReceipt"`
}

// ReportResponse is the API response after submitting a report.
type ReportResponse struct {
	Success bool    `json:"success"`
	Report  *Report `json:"report,omitempty"`
}
