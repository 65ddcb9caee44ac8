package service

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mayar-kabaja/gaza-price-sub000/internal/model"
)

// OutlierSigma is the deviation multiplier for the outlier test. A price is
// an outlier when it sits more than 2.5 population standard deviations from
// the sample mean.
const OutlierSigma = 2.5

// MinOutlierSample is the smallest comparison set the outlier test accepts.
const MinOutlierSample = 3

// StatsService computes aggregate price statistics. Every method is a pure
// function over its inputs; callers treat results as snapshots and recompute
// on read rather than caching invalidation-prone state.
type StatsService struct{}

func NewStatsService() *StatsService {
	return &StatsService{}
}

// Average returns the arithmetic mean, or 0 for an empty list.
func (s *StatsService) Average(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}
	var sum float64
	for _, p := range prices {
		sum += p
	}
	return sum / float64(len(prices))
}

// Median returns the middle value after an ascending sort; for even-length
// lists it is the mean of the two middle values. Returns 0 for an empty list.
// The input slice is not modified.
func (s *StatsService) Median(prices []float64) float64 {
	n := len(prices)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, prices)
	sort.Float64s(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// StdDev returns the population standard deviation around the given mean,
// or 0 when fewer than 2 values exist.
func (s *StatsService) StdDev(prices []float64, mean float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	var sumSq float64
	for _, p := range prices {
		d := p - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(prices)))
}

// IsOutlier reports whether price sits more than OutlierSigma standard
// deviations from the mean of the comparison set. Fewer than 3 comparison
// prices is an insufficient sample and never an outlier.
func (s *StatsService) IsOutlier(price float64, prices []float64) bool {
	if len(prices) < MinOutlierSample {
		return false
	}
	mean := s.Average(prices)
	stddev := s.StdDev(prices, mean)
	return math.Abs(price-mean) > OutlierSigma*stddev
}

// MarkLowest sets IsLowest on every report matching the minimum price among
// non-expired, non-rejected reports (ties all marked). Excluded reports pass
// through unmarked and without affecting others.
func (s *StatsService) MarkLowest(reports []model.Report) {
	var min decimal.Decimal
	found := false
	for i := range reports {
		if excludedStatus(reports[i].Status) {
			continue
		}
		if !found || reports[i].Price.LessThan(min) {
			min = reports[i].Price
			found = true
		}
	}
	if !found {
		return
	}

	for i := range reports {
		if excludedStatus(reports[i].Status) {
			continue
		}
		reports[i].IsLowest = reports[i].Price.Equal(min)
	}
}

// ComputeStats aggregates active reports into {avg, median, min, count}.
// Average and median are rounded to 2 decimal places; an empty active set
// yields all zeroes.
func (s *StatsService) ComputeStats(reports []model.Report) model.ProductStats {
	var prices []float64
	var min decimal.Decimal
	for i := range reports {
		if excludedStatus(reports[i].Status) {
			continue
		}
		p := reports[i].Price
		if len(prices) == 0 || p.LessThan(min) {
			min = p
		}
		prices = append(prices, p.InexactFloat64())
	}

	if len(prices) == 0 {
		return model.ProductStats{}
	}

	return model.ProductStats{
		AvgPrice:    round2(s.Average(prices)),
		MedianPrice: round2(s.Median(prices)),
		MinPrice:    min.InexactFloat64(),
		ReportCount: len(prices),
	}
}

func excludedStatus(status string) bool {
	return status == model.StatusExpired || status == model.StatusRejected
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
