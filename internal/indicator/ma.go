package indicator

import "errors"

// ErrInsufficientData is returned when a series is shorter than an
// indicator's minimum window. Callers treat it as an expected condition.
var ErrInsufficientData = errors.New("not enough data points")

// MA computes the simple moving average of the trailing `period` values.
func MA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) < period {
		return 0, ErrInsufficientData
	}
	sum := 0.0
	for i := len(values) - period; i < len(values); i++ {
		sum += values[i]
	}
	return sum / float64(period), nil
}

// EMASeries computes the exponential moving average over the full series.
// The first value seeds the average; smoothing factor is 2/(period+1).
func EMASeries(values []float64, period int) []float64 {
	if len(values) == 0 {
		return nil
	}
	alpha := 2.0 / float64(period+1)
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// EMA returns the latest exponential moving average value.
func EMA(values []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(values) == 0 {
		return 0, ErrInsufficientData
	}
	s := EMASeries(values, period)
	return s[len(s)-1], nil
}

// VolumeRatio returns the latest volume divided by the mean of the
// preceding `period` volumes. The window excludes the current bar so the
// ratio carries no lookahead.
func VolumeRatio(volumes []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(volumes) < period+1 {
		return 0, ErrInsufficientData
	}
	sum := 0.0
	for i := len(volumes) - 1 - period; i < len(volumes)-1; i++ {
		sum += volumes[i]
	}
	avg := sum / float64(period)
	if avg == 0 {
		return 0, errors.New("zero average volume")
	}
	return volumes[len(volumes)-1] / avg, nil
}
