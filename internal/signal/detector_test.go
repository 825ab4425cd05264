package signal

import (
	"strings"
	"testing"
	"time"

	"github.com/Cedric-Liu/3bros/internal/model"
)

func flatBars(n int, price, volume float64) model.PriceSeries {
	s := make(model.PriceSeries, n)
	day := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	for i := range s {
		s[i] = model.PriceBar{
			Date: day.AddDate(0, 0, i), Open: price, High: price * 1.001,
			Low: price * 0.999, Close: price, Volume: volume,
		}
	}
	return s
}

func TestDetect_ShortSeries(t *testing.T) {
	d := NewDefaultDetector()
	if got := d.Detect(flatBars(5, 10, 1e6), "600000", "测试"); got != nil {
		t.Fatalf("expected nil for short series, got %v", got)
	}
}

func TestDetect_BullishEngulfing(t *testing.T) {
	s := flatBars(12, 10, 1e6)
	n := len(s)
	// 倒数第二根阴线10.00→9.00，最后放量阳线8.80→10.10反包
	s[n-2].Open, s[n-2].High, s[n-2].Low, s[n-2].Close = 10.00, 10.05, 8.95, 9.00
	s[n-1].Open, s[n-1].High, s[n-1].Low, s[n-1].Close = 8.80, 10.15, 8.75, 10.10
	s[n-1].Volume = 2e6

	d := NewDefaultDetector()
	signals := d.Detect(s, "600519", "贵州茅台")
	if len(signals) == 0 {
		t.Fatal("expected at least one signal")
	}

	var engulf *Signal
	for i := range signals {
		if signals[i].PatternName == "阳吞阴" {
			engulf = &signals[i]
		}
	}
	if engulf == nil {
		t.Fatalf("missing 阳吞阴, got %+v", signals)
	}
	if engulf.Polarity != model.PolarityBullish {
		t.Errorf("polarity: %s", engulf.Polarity.Label())
	}
	if engulf.Price != 10.10 {
		t.Errorf("price: %v", engulf.Price)
	}
	// 量比2.0触发放量确认并抬升强度
	found := false
	for _, c := range engulf.Confirmations {
		if strings.Contains(c, "放量") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing volume confirmation: %v", engulf.Confirmations)
	}
	if engulf.Strength <= 0.9 || engulf.Strength > 1.0 {
		t.Errorf("strength: %v", engulf.Strength)
	}
}

func TestDetect_SkipsNeutralDoji(t *testing.T) {
	s := flatBars(12, 10, 1e6)
	n := len(s)
	// 振幅大实体极小的十字星，无趋势背景应被过滤
	s[n-1].Open, s[n-1].High, s[n-1].Low, s[n-1].Close = 10.00, 10.30, 9.70, 10.005

	d := NewDefaultDetector()
	for _, sig := range d.Detect(s, "000001", "测试") {
		if sig.PatternName == "十字星" {
			t.Fatalf("neutral doji should be skipped: %+v", sig)
		}
	}
}

func TestStrongest(t *testing.T) {
	s := flatBars(12, 10, 1e6)
	n := len(s)
	s[n-2].Open, s[n-2].High, s[n-2].Low, s[n-2].Close = 10.00, 10.05, 8.95, 9.00
	s[n-1].Open, s[n-1].High, s[n-1].Low, s[n-1].Close = 8.80, 10.15, 8.75, 10.10
	s[n-1].Volume = 2e6

	d := NewDefaultDetector()
	best := d.Strongest(s, "600519", "贵州茅台")
	if best == nil {
		t.Fatal("expected a signal")
	}
	for _, sig := range d.Detect(s, "600519", "贵州茅台") {
		if sig.Strength > best.Strength {
			t.Errorf("Strongest returned %v, but %s has %v", best.Strength, sig.PatternName, sig.Strength)
		}
	}
}

func TestSummary(t *testing.T) {
	sig := Signal{
		Code: "600519", Name: "贵州茅台", Polarity: model.PolarityBullish,
		PatternName: "阳吞阴", Strength: 0.95,
		Confirmations: []string{"MACD金叉", "放量2.0倍"},
	}
	got := Summary(sig)
	for _, want := range []string{"🟢", "看涨", "600519", "阳吞阴", "MACD金叉", "95%"} {
		if !strings.Contains(got, want) {
			t.Errorf("summary %q missing %q", got, want)
		}
	}
}
