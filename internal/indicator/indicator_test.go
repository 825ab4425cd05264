package indicator

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMA(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}

	ma, err := MA(values, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(ma, 3.0) {
		t.Errorf("expected 3.0, got %f", ma)
	}

	ma, err = MA(values, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(ma, 4.5) {
		t.Errorf("expected 4.5, got %f", ma)
	}

	if _, err := MA(values, 6); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
	if _, err := MA(values, 0); err == nil {
		t.Error("expected error for zero period")
	}
}

func TestEMASeries(t *testing.T) {
	values := []float64{10, 11, 12}
	s := EMASeries(values, 3) // alpha = 0.5

	if !almostEqual(s[0], 10) {
		t.Errorf("seed should be first value, got %f", s[0])
	}
	if !almostEqual(s[1], 10.5) {
		t.Errorf("expected 10.5, got %f", s[1])
	}
	if !almostEqual(s[2], 11.25) {
		t.Errorf("expected 11.25, got %f", s[2])
	}
}

func TestVolumeRatio_ExcludesCurrentBar(t *testing.T) {
	// Prior five volumes average 100, current is 150.
	volumes := []float64{100, 100, 100, 100, 100, 150}
	ratio, err := VolumeRatio(volumes, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(ratio, 1.5) {
		t.Errorf("expected 1.5, got %f", ratio)
	}

	if _, err := VolumeRatio(volumes[:5], 5); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestMACDCross_MutuallyExclusive(t *testing.T) {
	cases := []struct {
		name       string
		dif, dea   []float64
		golden     bool
		death      bool
	}{
		{"golden", []float64{-1, 1}, []float64{0, 0}, true, false},
		{"death", []float64{1, -1}, []float64{0, 0}, false, true},
		{"none above", []float64{1, 2}, []float64{0, 0}, false, false},
		{"none below", []float64{-2, -1}, []float64{0, 0}, false, false},
		{"touch then up", []float64{0, 1}, []float64{0, 0}, true, false},
		{"too short", []float64{1}, []float64{0}, false, false},
	}
	for _, tc := range cases {
		golden, death := MACDCross(tc.dif, tc.dea)
		if golden != tc.golden || death != tc.death {
			t.Errorf("%s: got golden=%v death=%v, want %v/%v", tc.name, golden, death, tc.golden, tc.death)
		}
		if golden && death {
			t.Errorf("%s: golden and death must be mutually exclusive", tc.name)
		}
	}
}

func TestMACD_Shape(t *testing.T) {
	closes := make([]float64, 40)
	for i := range closes {
		closes[i] = 10 + float64(i)*0.1
	}
	dif, dea, hist, err := MACD(closes, 12, 26, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dif) != len(closes) || len(dea) != len(closes) || len(hist) != len(closes) {
		t.Fatal("output series must match input length")
	}
	for i := range hist {
		if !almostEqual(hist[i], (dif[i]-dea[i])*2) {
			t.Fatalf("hist[%d] != (dif-dea)*2", i)
		}
	}
	// Steady uptrend keeps the fast EMA above the slow one.
	if dif[len(dif)-1] <= 0 {
		t.Errorf("expected positive DIF in an uptrend, got %f", dif[len(dif)-1])
	}
}

func TestRSI(t *testing.T) {
	up := make([]float64, 20)
	for i := range up {
		up[i] = float64(i + 1)
	}
	rsi, err := RSI(up, 14)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(rsi, 100) {
		t.Errorf("all-gain series should give RSI 100, got %f", rsi)
	}

	if _, err := RSI(up[:10], 14); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestBollingerBands(t *testing.T) {
	flat := make([]float64, 20)
	for i := range flat {
		flat[i] = 10
	}
	upper, middle, lower, err := BollingerBands(flat, 20, 2.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(upper, 10) || !almostEqual(middle, 10) || !almostEqual(lower, 10) {
		t.Errorf("flat series should collapse bands to the mean, got %f/%f/%f", upper, middle, lower)
	}
}
