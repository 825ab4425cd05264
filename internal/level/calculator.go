package level

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/Cedric-Liu/3bros/internal/model"
)

// dedupThreshold is the relative distance under which two levels on the
// same side are considered duplicates.
const dedupThreshold = 0.02

// nearThreshold is the relative distance under which the current price
// counts as "near" a level.
const nearThreshold = 0.02

// refBodyRatio is the minimum body/close ratio for a bar to qualify as
// the reference candle for sub-level generation.
const refBodyRatio = 0.03

func isDuplicate(price float64, existing []model.Level) bool {
	for _, l := range existing {
		if math.Abs(price-l.Price)/l.Price < dedupThreshold {
			return true
		}
	}
	return false
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// Calculate derives up to 2 support and 2 resistance lines from recent
// extrema (20/60-day high/low) and key moving averages (MA30, MA89).
// Nearby candidates on the same side are deduplicated within 2%; the
// survivors are ordered by proximity to the current price.
func Calculate(series model.PriceSeries) (supports, resistances []model.Level) {
	if len(series) == 0 {
		return nil, nil
	}
	currentPrice := series.Last().Close

	addResistance := func(price float64, name string, kind model.LevelKind, source model.LevelSource, calc string) {
		if price <= currentPrice || isDuplicate(price, resistances) {
			return
		}
		diffPct := (price - currentPrice) / currentPrice * 100
		resistances = append(resistances, model.Level{
			Price:       round2(price),
			Name:        name,
			Kind:        kind,
			Source:      source,
			Calculation: calc,
			VsCurrent:   fmt.Sprintf("高于现价%.1f%%", diffPct),
		})
	}
	addSupport := func(price float64, name string, kind model.LevelKind, source model.LevelSource, calc string) {
		if price >= currentPrice || isDuplicate(price, supports) {
			return
		}
		diffPct := (currentPrice - price) / currentPrice * 100
		supports = append(supports, model.Level{
			Price:       round2(price),
			Name:        name,
			Kind:        kind,
			Source:      source,
			Calculation: calc,
			VsCurrent:   fmt.Sprintf("低于现价%.1f%%", diffPct),
		})
	}

	// 近期高低点
	if len(series) >= 20 {
		addResistance(series.HighestHigh(20), "20日高点", model.LevelStrong, model.SourceExtrema, "近20日最高价")
		addSupport(series.LowestLow(20), "20日低点", model.LevelStrong, model.SourceExtrema, "近20日最低价")
	}
	if len(series) >= 60 {
		addResistance(series.HighestHigh(60), "60日高点", model.LevelStrong, model.SourceExtrema, "近60日最高价")
		addSupport(series.LowestLow(60), "60日低点", model.LevelStrong, model.SourceExtrema, "近60日最低价")
	}

	// 均线支撑压力
	for _, period := range []int{30, 89} {
		if len(series) < period {
			continue
		}
		closes := series.Tail(period).Closes()
		sum := 0.0
		for _, c := range closes {
			sum += c
		}
		ma := sum / float64(period)
		name := fmt.Sprintf("MA%d", period)
		calc := fmt.Sprintf("%d日均线", period)
		if ma > currentPrice {
			addResistance(ma, name, model.LevelMedium, model.SourceMA, calc)
		} else if ma < currentPrice {
			addSupport(ma, name, model.LevelMedium, model.SourceMA, calc)
		}
	}

	// 压力线按价格从低到高（离现价近的优先），支撑线反之
	sort.Slice(resistances, func(i, j int) bool { return resistances[i].Price < resistances[j].Price })
	if len(resistances) > 2 {
		resistances = resistances[:2]
	}
	sort.Slice(supports, func(i, j int) bool { return supports[i].Price > supports[j].Price })
	if len(supports) > 2 {
		supports = supports[:2]
	}
	return supports, resistances
}

// SubLevels derives named fractional levels (开盘价 / 1/2位 / 1/3位) from
// the most recent large-body reference candle within the trailing 20
// bars. A big bearish candle above the current price yields resistance
// sub-levels at its open and at 1/2 and 1/3 retracements of its body; a
// big bullish candle below yields the mirrored supports. These feed the
// break-status checks and are kept apart from the displayed level sets.
func SubLevels(series model.PriceSeries) (supports, resistances []model.Level) {
	if len(series) < 2 {
		return nil, nil
	}
	currentPrice := series.Last().Close

	// Most recent qualifying reference candle, excluding today.
	window := series[:len(series)-1].Tail(20)
	var ref *model.PriceBar
	for i := len(window) - 1; i >= 0; i-- {
		b := window[i]
		if b.Close > 0 && b.Body()/b.Close >= refBodyRatio {
			ref = &window[i]
			break
		}
	}
	if ref == nil {
		return nil, nil
	}

	mk := func(price float64, name, calc string) model.Level {
		return model.Level{
			Price:       round2(price),
			Name:        name,
			Kind:        model.LevelMedium,
			Source:      model.SourceSubLevel,
			Calculation: calc,
		}
	}

	if ref.Bearish() && currentPrice < ref.Open {
		drop := ref.Open - ref.Close
		for _, c := range []model.Level{
			mk(ref.Close+drop/3, "阴线1/3位", "参考阴线实体1/3反弹位"),
			mk(ref.Close+drop/2, "阴线1/2位", "参考阴线实体1/2反弹位"),
			mk(ref.Open, "阴线开盘价", "参考阴线开盘价"),
		} {
			if c.Price > currentPrice {
				resistances = append(resistances, c)
			} else {
				supports = append(supports, c)
			}
		}
		return supports, resistances
	}

	if ref.Bullish() && currentPrice > ref.Open {
		rise := ref.Close - ref.Open
		for _, c := range []model.Level{
			mk(ref.Close-rise/3, "阳线1/3位", "参考阳线实体1/3回撤位"),
			mk(ref.Close-rise/2, "阳线1/2位", "参考阳线实体1/2回撤位"),
			mk(ref.Open, "阳线开盘价", "参考阳线开盘价"),
		} {
			if c.Price < currentPrice {
				supports = append(supports, c)
			} else {
				resistances = append(resistances, c)
			}
		}
	}
	return supports, resistances
}

// Near reports whether the price sits within 2% of any of the levels.
func Near(price float64, levels []model.Level) bool {
	for _, l := range levels {
		if math.Abs(price-l.Price)/price < nearThreshold {
			return true
		}
	}
	return false
}

// SupportBreakStatus maps a close below the named 1/2 or 1/3 support
// sub-level to a position-reduction advice string. Empty when no named
// sub-level is broken.
func SupportBreakStatus(price float64, supports []model.Level) string {
	var half, third float64
	for _, s := range supports {
		switch {
		case containsName(s.Name, "1/2"):
			half = s.Price
		case containsName(s.Name, "1/3"):
			third = s.Price
		}
	}
	if half > 0 && price < half {
		return "击穿1/2支撑，建议减仓30-50%"
	}
	if third > 0 && price < third {
		return "击穿1/3支撑，建议减仓10-20%"
	}
	return ""
}

// ResistanceBreakStatus maps a close above the named open-price, 1/2 or
// 1/3 resistance sub-level to a breakout advice string. Breakouts
// without heavy volume are downgraded to cautionary notes.
func ResistanceBreakStatus(price float64, resistances []model.Level, volume model.VolumeStatus) string {
	var half, third, open float64
	for _, r := range resistances {
		switch {
		case containsName(r.Name, "1/2"):
			half = r.Price
		case containsName(r.Name, "1/3"):
			third = r.Price
		case containsName(r.Name, "开盘价"):
			open = r.Price
		}
	}

	heavy := volume == model.VolumeHeavy
	switch {
	case open > 0 && price > open:
		if heavy {
			return "放量突破全部压力，强势反转"
		}
		return "缩量突破压力，需确认有效性"
	case half > 0 && price > half:
		if heavy {
			return "放量突破1/2压力，可加仓30%"
		}
		return "缩量突破1/2，弱反弹概率大"
	case third > 0 && price > third:
		if heavy {
			return "放量突破1/3压力，可加仓10%"
		}
		return "缩量突破1/3，谨慎观望"
	}
	return ""
}

func containsName(name, sub string) bool { return strings.Contains(name, sub) }
