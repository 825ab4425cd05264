package level

import (
	"math"
	"testing"
	"time"

	"github.com/Cedric-Liu/3bros/internal/model"
)

func flatSeries(n int, price float64) model.PriceSeries {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(model.PriceSeries, n)
	for i := range s {
		s[i] = model.PriceBar{
			Date: base.AddDate(0, 0, i),
			Open: price, High: price, Low: price, Close: price,
			Volume: 10000,
		}
	}
	return s
}

func TestCalculate_CapsAndDedup(t *testing.T) {
	// 60 bars ramping up so that 20-day and 60-day extremes differ and
	// both MAs sit below the current price.
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	s := make(model.PriceSeries, 60)
	for i := range s {
		p := 10 + float64(i)*0.1
		s[i] = model.PriceBar{
			Date: base.AddDate(0, 0, i),
			Open: p, High: p + 0.2, Low: p - 0.2, Close: p,
			Volume: 10000,
		}
	}
	supports, resistances := Calculate(s)

	if len(supports) > 2 {
		t.Fatalf("supports capped at 2, got %d", len(supports))
	}
	if len(resistances) > 2 {
		t.Fatalf("resistances capped at 2, got %d", len(resistances))
	}

	price := s.Last().Close
	for _, l := range supports {
		if l.Price >= price {
			t.Errorf("support %s at %.2f not below current price %.2f", l.Name, l.Price, price)
		}
	}
	for _, l := range resistances {
		if l.Price <= price {
			t.Errorf("resistance %s at %.2f not above current price %.2f", l.Name, l.Price, price)
		}
	}

	// No two kept levels on the same side within 2%.
	checkSpread := func(levels []model.Level, side string) {
		for i := 0; i < len(levels); i++ {
			for j := i + 1; j < len(levels); j++ {
				if math.Abs(levels[i].Price-levels[j].Price)/levels[j].Price < 0.02 {
					t.Errorf("%s levels %s and %s within 2%%", side, levels[i].Name, levels[j].Name)
				}
			}
		}
	}
	checkSpread(supports, "support")
	checkSpread(resistances, "resistance")

	// Supports ordered nearest-below first, resistances nearest-above first.
	if len(supports) == 2 && supports[0].Price < supports[1].Price {
		t.Error("supports must be ordered by proximity (descending price)")
	}
	if len(resistances) == 2 && resistances[0].Price > resistances[1].Price {
		t.Error("resistances must be ordered by proximity (ascending price)")
	}
}

func TestCalculate_ShortSeries(t *testing.T) {
	supports, resistances := Calculate(flatSeries(10, 10))
	if len(supports) != 0 || len(resistances) != 0 {
		t.Errorf("series under 20 bars yields no levels, got %d/%d", len(supports), len(resistances))
	}
}

func TestSubLevels_BearishReference(t *testing.T) {
	// Big bearish candle (12 -> 11, ~8.3% body), then drift at 11.2.
	s := flatSeries(30, 11.2)
	s[25] = model.PriceBar{Date: s[25].Date, Open: 12, High: 12.1, Low: 10.9, Close: 11, Volume: 10000}

	supports, resistances := SubLevels(s)
	if len(resistances) == 0 {
		t.Fatal("expected resistance sub-levels from a bearish reference candle")
	}
	names := map[string]float64{}
	for _, l := range resistances {
		names[l.Name] = l.Price
	}
	for _, l := range supports {
		names[l.Name] = l.Price
	}
	if names["阴线开盘价"] != 12 {
		t.Errorf("expected open-price sub-level at 12, got %v", names)
	}
	if names["阴线1/2位"] != 11.5 {
		t.Errorf("expected 1/2 sub-level at 11.5, got %v", names)
	}
	// 1/3 retracement 11.33 is below 11.2? No: 11+1/3 = 11.33 > 11.2,
	// so it lands on the resistance side.
	if math.Abs(names["阴线1/3位"]-11.33) > 0.01 {
		t.Errorf("expected 1/3 sub-level ~11.33, got %v", names)
	}
}

func TestBreakStatus(t *testing.T) {
	subSupports := []model.Level{
		{Price: 10.67, Name: "阳线1/3位"},
		{Price: 10.5, Name: "阳线1/2位"},
		{Price: 10.0, Name: "阳线开盘价"},
	}
	if got := SupportBreakStatus(10.4, subSupports); got != "击穿1/2支撑，建议减仓30-50%" {
		t.Errorf("deep break advice wrong: %q", got)
	}
	if got := SupportBreakStatus(10.6, subSupports); got != "击穿1/3支撑，建议减仓10-20%" {
		t.Errorf("shallow break advice wrong: %q", got)
	}
	if got := SupportBreakStatus(10.8, subSupports); got != "" {
		t.Errorf("no break expected, got %q", got)
	}

	subResistances := []model.Level{
		{Price: 11.33, Name: "阴线1/3位"},
		{Price: 11.5, Name: "阴线1/2位"},
		{Price: 12.0, Name: "阴线开盘价"},
	}
	if got := ResistanceBreakStatus(12.1, subResistances, model.VolumeHeavy); got != "放量突破全部压力，强势反转" {
		t.Errorf("full breakout advice wrong: %q", got)
	}
	if got := ResistanceBreakStatus(11.6, subResistances, model.VolumeHeavy); got != "放量突破1/2压力，可加仓30%" {
		t.Errorf("half breakout advice wrong: %q", got)
	}
	if got := ResistanceBreakStatus(11.4, subResistances, model.VolumeHeavy); got != "放量突破1/3压力，可加仓10%" {
		t.Errorf("third breakout advice wrong: %q", got)
	}
	// Breakout without volume is a caution, not an add signal.
	if got := ResistanceBreakStatus(11.6, subResistances, model.VolumeLight); got != "缩量突破1/2，弱反弹概率大" {
		t.Errorf("light-volume breakout advice wrong: %q", got)
	}
	if got := ResistanceBreakStatus(11.0, subResistances, model.VolumeHeavy); got != "" {
		t.Errorf("no breakout expected, got %q", got)
	}
}

func TestNear(t *testing.T) {
	levels := []model.Level{{Price: 10.0, Name: "20日低点"}}
	if !Near(10.1, levels) {
		t.Error("10.1 should be near 10.0 (1%)")
	}
	if Near(10.5, levels) {
		t.Error("10.5 should not be near 10.0 (5%)")
	}
}
