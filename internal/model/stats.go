package model

import "time"

// ProductStats holds aggregate price statistics for a product, optionally
// scoped to an area. Averages and medians carry 2-decimal precision.
type ProductStats struct {
	ProductID   string  `json:"productId"`
	AreaID      string  `json:"areaId,omitempty"`
	AvgPrice    float64 `json:"avgPrice"`
	MedianPrice float64 `json:"medianPrice"`
	MinPrice    float64 `json:"minPrice"`
	ReportCount int     `json:"reportCount"`
}

// RateDecision is the outcome of a rate-limit check. A denial is a normal
// result, not an error.
type RateDecision struct {
	Allowed    bool          `json:"allowed"`
	Remaining  int           `json:"remaining"`
	RetryAfter time.Duration `json:"-"`
}

// RetryAfterSeconds returns the retry-after value in whole seconds for
// API responses and Retry-After headers.
func (d RateDecision) RetryAfterSeconds() int {
	return int(d.RetryAfter.Seconds())
}
