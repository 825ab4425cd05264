package model

import "time"

// PriceBar represents a single daily candlestick bar.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Bullish reports whether the bar closed above its open (阳线).
func (b PriceBar) Bullish() bool { return b.Close > b.Open }

// Bearish reports whether the bar closed below its open (阴线).
func (b PriceBar) Bearish() bool { return b.Close < b.Open }

// Body returns the absolute size of the bar body.
func (b PriceBar) Body() float64 {
	if b.Close > b.Open {
		return b.Close - b.Open
	}
	return b.Open - b.Close
}

// BodyTop returns the higher of open and close.
func (b PriceBar) BodyTop() float64 {
	if b.Close > b.Open {
		return b.Close
	}
	return b.Open
}

// BodyBottom returns the lower of open and close.
func (b PriceBar) BodyBottom() float64 {
	if b.Close < b.Open {
		return b.Close
	}
	return b.Open
}

// UpperShadow returns the excursion above the body.
func (b PriceBar) UpperShadow() float64 { return b.High - b.BodyTop() }

// LowerShadow returns the excursion below the body.
func (b PriceBar) LowerShadow() float64 { return b.BodyBottom() - b.Low }

// Range returns the full high-low span of the bar.
func (b PriceBar) Range() float64 { return b.High - b.Low }

// PriceSeries is an ordered run of daily bars, ascending by date.
type PriceSeries []PriceBar

// Len returns the number of bars in the series.
func (s PriceSeries) Len() int { return len(s) }

// Last returns the most recent bar. The series must be non-empty.
func (s PriceSeries) Last() PriceBar { return s[len(s)-1] }

// Tail returns the trailing n bars (the whole series if shorter).
func (s PriceSeries) Tail(n int) PriceSeries {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

// Closes extracts the close prices in order.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Close
	}
	return out
}

// Volumes extracts the volumes in order.
func (s PriceSeries) Volumes() []float64 {
	out := make([]float64, len(s))
	for i, b := range s {
		out[i] = b.Volume
	}
	return out
}

// HighestHigh returns the max high over the trailing n bars.
func (s PriceSeries) HighestHigh(n int) float64 {
	t := s.Tail(n)
	high := t[0].High
	for _, b := range t[1:] {
		if b.High > high {
			high = b.High
		}
	}
	return high
}

// LowestLow returns the min low over the trailing n bars.
func (s PriceSeries) LowestLow(n int) float64 {
	t := s.Tail(n)
	low := t[0].Low
	for _, b := range t[1:] {
		if b.Low < low {
			low = b.Low
		}
	}
	return low
}
