package model

import "time"

// Contributor trust levels, derived from cumulative report count.
const (
	LevelNew      = "new"
	LevelRegular  = "regular"
	LevelTrusted  = "trusted"
	LevelVerified = "verified"
)

// Contributor represents an anonymous or pseudonymous reporter.
type Contributor struct {
	ContributorID     string    `json:"contributorId"`
	DisplayHandle     string    `json:"displayHandle,omitempty"`
	AreaID            string    `json:"areaId,omitempty"`
	TrustLevel        string    `json:"trustLevel"`
	ReportCount       int       `json:"reportCount"`
	ConfirmationCount int       `json:"confirmationCount"`
	FlagCount         int       `json:"flagCount"`
	Banned            bool      `json:"-"`
	BanReason         string    `json:"-"`
	JoinedAt          time.Time `json:"-"`
	LastActiveAt      time.Time `json:"-"`
}

// ContributorResponse is the API response for contributor trust lookups.
type ContributorResponse struct {
	ContributorID      string `json:"contributorId"`
	DisplayHandle      string `json:"displayHandle,omitempty"`
	TrustLevel         string `json:"trustLevel"`
	ReportCount        int    `json:"reportCount"`
	ConfirmationCount  int    `json:"confirmationCount"`
	FlagCount          int    `json:"flagCount"`
	ReportsToNextLevel int    `json:"reportsToNextLevel"`
	AccountAge         int    `json:"accountAge"`
}
