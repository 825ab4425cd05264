package pattern

import "github.com/Cedric-Liu/3bros/internal/model"

// Trend is the prevailing short-term direction of a series.
type Trend string

const (
	TrendUp       Trend = "up"
	TrendDown     Trend = "down"
	TrendSideways Trend = "sideways"
)

// DetectTrend compares the mean close of the first half of the trailing
// `period` bars against the second half. A move beyond ±3% decides the
// direction; anything less is sideways.
func DetectTrend(bars model.PriceSeries, period int) Trend {
	if len(bars) < period || period < 2 {
		return TrendSideways
	}
	closes := bars.Tail(period).Closes()
	half := period / 2

	var firstSum, secondSum float64
	for _, v := range closes[:half] {
		firstSum += v
	}
	for _, v := range closes[len(closes)-half:] {
		secondSum += v
	}
	firstMean := firstSum / float64(half)
	secondMean := secondSum / float64(half)
	if firstMean == 0 {
		return TrendSideways
	}

	change := (secondMean - firstMean) / firstMean
	switch {
	case change > 0.03:
		return TrendUp
	case change < -0.03:
		return TrendDown
	default:
		return TrendSideways
	}
}
