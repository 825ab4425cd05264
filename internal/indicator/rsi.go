package indicator

import (
	"errors"
	"math"
)

// RSI computes the Wilder-smoothed RSI over the given period.
// Requires at least period+1 values.
func RSI(closes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(closes) < period+1 {
		return 0, ErrInsufficientData
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100.0, nil
	}
	rs := avgGain / avgLoss
	return 100.0 - 100.0/(1.0+rs), nil
}

// BollingerBands computes the upper/middle/lower band values for the
// latest point using a population standard deviation over the window.
func BollingerBands(closes []float64, period int, stdDevMult float64) (upper, middle, lower float64, err error) {
	if period <= 0 {
		return 0, 0, 0, errors.New("period must be positive")
	}
	if len(closes) < period {
		return 0, 0, 0, ErrInsufficientData
	}

	window := closes[len(closes)-period:]
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	middle = sum / float64(period)

	variance := 0.0
	for _, v := range window {
		d := v - middle
		variance += d * d
	}
	std := math.Sqrt(variance / float64(period))

	upper = middle + stdDevMult*std
	lower = middle - stdDevMult*std
	return upper, middle, lower, nil
}
