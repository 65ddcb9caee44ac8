package model

import "time"

// Suggestion is a contributor-proposed product awaiting moderation.
type Suggestion struct {
	ID            string    `json:"id"`
	ContributorID string    `json:"contributorId"`
	ProductName   string    `json:"productName"`
	Category      string    `json:"category,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// SuggestionRequest is the API request body for suggesting a product.
type SuggestionRequest struct {
	ContributorID string `json:"contributorId"`
	ProductName   string `json:"productName"`
	Category      string `json:"category,omitempty"`
}
