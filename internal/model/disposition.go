package model

import "time"

// Disposition states. A (report, contributor) pair holds at most one.
const (
	DispositionNone      = "none"
	DispositionConfirmed = "confirmed"
	DispositionFlagged   = "flagged"
)

// Disposition records a contributor's stance on a report.
type Disposition struct {
	ReportID      string    `json:"reportId"`
	ContributorID string    `json:"contributorId"`
	State         string    `json:"state"`
	Reason        string    `json:"reason,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// DispositionRequest is the API request body for confirm/flag actions.
type DispositionRequest struct {
	ContributorID string `json:"contributorId"`
	Reason        string `json:"reason,omitempty"`
}

// DispositionResponse is the API response after a confirm/flag/clear action.
type DispositionResponse struct {
	Success       bool   `json:"success"`
	Disposition   string `json:"disposition"`
	Confirmations int    `json:"confirmations"`
	Flags         int    `json:"flags"`
	ReportStatus  string `json:"reportStatus"`
	TrustScore    int    `json:"trustScore"`
}
