package indicator

// MACD computes the DIF, DEA and histogram series.
// dif = EMA(fast) - EMA(slow); dea = EMA(dif, signal); hist = (dif-dea)*2.
func MACD(closes []float64, fast, slow, signal int) (dif, dea, hist []float64, err error) {
	if len(closes) == 0 {
		return nil, nil, nil, ErrInsufficientData
	}
	emaFast := EMASeries(closes, fast)
	emaSlow := EMASeries(closes, slow)

	dif = make([]float64, len(closes))
	for i := range closes {
		dif[i] = emaFast[i] - emaSlow[i]
	}
	dea = EMASeries(dif, signal)
	hist = make([]float64, len(closes))
	for i := range closes {
		hist[i] = (dif[i] - dea[i]) * 2
	}
	return dif, dea, hist, nil
}

// MACDCross reports whether DIF crossed DEA between the last two points.
// Golden and death are mutually exclusive; both false with <2 points.
func MACDCross(dif, dea []float64) (golden, death bool) {
	if len(dif) < 2 || len(dea) < 2 {
		return false, false
	}
	n := len(dif)
	golden = dif[n-1] > dea[n-1] && dif[n-2] <= dea[n-2]
	death = dif[n-1] < dea[n-1] && dif[n-2] >= dea[n-2]
	return golden, death
}
