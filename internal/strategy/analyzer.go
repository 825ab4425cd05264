package strategy

import (
	"errors"
	"fmt"
	"math"

	"github.com/Cedric-Liu/3bros/internal/indicator"
	"github.com/Cedric-Liu/3bros/internal/level"
	"github.com/Cedric-Liu/3bros/internal/model"
)

// minBars is the minimum history required for a meaningful analysis.
const minBars = 30

// ErrInsufficientData is returned when the series is too short to analyze.
var ErrInsufficientData = errors.New("insufficient data for analysis")

// Analyzer evaluates a daily bar series and produces a trading judgment.
type Analyzer struct {
	cfg Config
}

// NewAnalyzer builds an analyzer from cfg, rejecting invalid thresholds.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid strategy config: %w", err)
	}
	return &Analyzer{cfg: cfg}, nil
}

// Analyze runs the full pipeline on series and fills a StrategyAnalysis.
// The series must be in ascending date order with at least 30 bars.
func (a *Analyzer) Analyze(series model.PriceSeries, code, name string) (*model.StrategyAnalysis, error) {
	if series.Len() < minBars {
		return nil, fmt.Errorf("%w: have %d bars, need %d", ErrInsufficientData, series.Len(), minBars)
	}

	latest := series.Last()
	out := &model.StrategyAnalysis{
		Code:         code,
		Name:         name,
		CurrentPrice: latest.Close,
	}

	a.analyzeVolume(series, out)
	a.analyzeLevels(series, out)
	a.analyzeUpperShadow(series, out)
	a.analyzeMAs(series, out)
	a.analyzeMACD(series, out)
	t5, t20 := a.analyzeTrends(series, out)
	a.detectPatternsEnhanced(series, out, t5)
	a.recommend(out, t5, t20)

	return out, nil
}

// HasBuySignal reports whether the latest analysis recommends entering or
// adding, with the reason and risk level.
func (a *Analyzer) HasBuySignal(series model.PriceSeries, code, name string) (bool, string, model.RiskLevel, error) {
	analysis, err := a.Analyze(series, code, name)
	if err != nil {
		return false, "", model.RiskLow, err
	}
	if analysis.Action == model.ActionBuy || analysis.Action == model.ActionAdd {
		return true, analysis.ActionReason, analysis.RiskLevel, nil
	}
	return false, "", model.RiskLow, nil
}

// analyzeVolume classifies today's volume against the 5-day average and
// checks 20-day price extremes.
func (a *Analyzer) analyzeVolume(series model.PriceSeries, out *model.StrategyAnalysis) {
	n := series.Len()
	volumes := series.Volumes()

	out.VolumeStatus = model.VolumeFlat
	out.VolumeRatio = 1.0
	if n >= 6 {
		var sum float64
		for _, v := range volumes[n-6 : n-1] {
			sum += v
		}
		avg := sum / 5
		if avg > 0 {
			out.VolumeRatio = round2(volumes[n-1] / avg)
		}
		switch {
		case out.VolumeRatio > a.cfg.HeavyVolumeRatio:
			out.VolumeStatus = model.VolumeHeavy
		case out.VolumeRatio < a.cfg.LightVolumeRatio:
			out.VolumeStatus = model.VolumeLight
		}
	}

	if n >= 20 {
		maxHigh := series.HighestHigh(20)
		minLow := series.LowestLow(20)
		latest := series.Last()
		out.PriceNewHigh = latest.High >= maxHigh*0.99
		out.PriceNewLow = latest.Low <= minLow*1.01
	}

	switch {
	case out.VolumeStatus == model.VolumeHeavy && out.PriceNewHigh:
		out.VolumePriceConclusion = "放量新高，上攻动能强，看涨"
	case out.VolumeStatus == model.VolumeLight && out.PriceNewHigh:
		out.VolumePriceConclusion = "缩量新高，追高需谨慎"
	case out.VolumeStatus == model.VolumeHeavy && out.PriceNewLow:
		out.VolumePriceConclusion = "放量新低，恐慌抛售，风险高"
	case out.VolumeStatus == model.VolumeLight && out.PriceNewLow:
		out.VolumePriceConclusion = "缩量新低，抛压减弱，关注企稳"
	case out.VolumeStatus == model.VolumeHeavy:
		out.VolumePriceConclusion = "放量震荡，多空分歧大"
	case out.VolumeStatus == model.VolumeLight:
		out.VolumePriceConclusion = "缩量整理，等待方向选择"
	default:
		out.VolumePriceConclusion = "量价平稳，维持观望"
	}
}

// analyzeLevels computes support/resistance lines, proximity flags and
// break statuses. Sub-levels derived from a recent reference candle feed
// the break status only, never the displayed lines.
func (a *Analyzer) analyzeLevels(series model.PriceSeries, out *model.StrategyAnalysis) {
	supports, resistances := level.Calculate(series)
	out.SupportLines = supports
	out.ResistanceLines = resistances

	price := series.Last().Close
	out.NearSupport = level.Near(price, supports)
	out.NearResistance = level.Near(price, resistances)

	subSupports, subResistances := level.SubLevels(series)
	allSupports := append(append([]model.Level{}, supports...), subSupports...)
	allResistances := append(append([]model.Level{}, resistances...), subResistances...)

	out.SupportBreakStatus = level.SupportBreakStatus(price, allSupports)
	out.ResistanceBreakStatus = level.ResistanceBreakStatus(price, allResistances, out.VolumeStatus)
}

// analyzeUpperShadow measures today's upper shadow relative to the body.
func (a *Analyzer) analyzeUpperShadow(series model.PriceSeries, out *model.StrategyAnalysis) {
	latest := series.Last()
	body := latest.Body()
	shadow := latest.UpperShadow()
	date := latest.Date.Format("01/02")

	if body == 0 {
		// 实体为0时比例无定义，用999哨兵表示有上影线的退化K线
		if shadow == 0 {
			out.UpperShadowRatio = 0
		} else {
			out.UpperShadowRatio = 999
		}
		out.UpperShadowWarning = out.UpperShadowRatio > 0.5
		out.UpperShadowDetail = fmt.Sprintf("今日(%s)实体为0，无法计算比例", date)
		return
	}

	ratio := round2(shadow / body)
	out.UpperShadowRatio = ratio
	out.UpperShadowWarning = ratio > 0.5

	detail := fmt.Sprintf("今日(%s)最高价%.2f，实体顶部%.2f，上影线=%.2f-%.2f=%.2f，实体=%.2f，比例=%.2f/%.2f=%.2f",
		date, latest.High, latest.BodyTop(), latest.High, latest.BodyTop(), shadow, body, shadow, body, ratio)
	switch {
	case ratio > 0.5:
		detail += "。上影线超过实体50%，说明上方抛压重，短期转弱概率大"
	case ratio > 0.3:
		detail += "。上影线较长，上方有一定压力"
	default:
		detail += "。上影线较短，上方压力不大"
	}
	out.UpperShadowDetail = detail
}

// analyzeMAs fills the per-period MA map and summarizes the posture.
func (a *Analyzer) analyzeMAs(series model.PriceSeries, out *model.StrategyAnalysis) {
	closes := series.Closes()
	price := series.Last().Close
	out.MAStatus = make(map[string]model.MAStatus)

	for _, p := range a.cfg.MAPeriods {
		v, err := indicator.MA(closes, p)
		if err != nil {
			continue
		}
		diff := 0.0
		if v != 0 {
			diff = round2((price - v) / v * 100)
		}
		out.MAStatus[fmt.Sprintf("MA%d", p)] = model.MAStatus{
			Value:   round2(v),
			Above:   price > v,
			DiffPct: diff,
		}
	}

	above7 := out.MAStatus["MA7"].Above
	above18 := out.MAStatus["MA18"].Above
	above30 := out.MAStatus["MA30"].Above
	above89 := out.MAStatus["MA89"].Above

	switch {
	case above7 && above18 && above30 && above89:
		out.MASupport = "多头排列，强势"
	case above7 && above18 && above30:
		out.MASupport = "站上短中期均线，偏强"
	case above7 && above18:
		out.MASupport = "短期均线支撑有效"
	case !above7 && !above18 && !above30:
		out.MASupport = "跌破多条均线，弱势"
	case !above7 && !above18:
		out.MASupport = "跌破短期均线，转弱"
	default:
		out.MASupport = "均线缠绕，方向不明"
	}
}

// analyzeMACD computes DIF/DEA position and the latest cross.
func (a *Analyzer) analyzeMACD(series model.PriceSeries, out *model.StrategyAnalysis) {
	closes := series.Closes()
	dif, dea, _, err := indicator.MACD(closes, a.cfg.MACDFast, a.cfg.MACDSlow, a.cfg.MACDSignal)
	if err != nil || len(dif) == 0 {
		out.MACDStatus = "数据不足"
		out.MACDCross = "无"
		return
	}

	d, s := dif[len(dif)-1], dea[len(dea)-1]
	switch {
	case d > 0 && s > 0:
		out.MACDStatus = "零轴上方，多头市场"
	case d < 0 && s < 0:
		out.MACDStatus = "零轴下方，空头市场"
	default:
		out.MACDStatus = "零轴附近，转折期"
	}

	golden, death := indicator.MACDCross(dif, dea)
	switch {
	case golden:
		out.MACDCross = "金叉"
	case death:
		out.MACDCross = "死叉"
	default:
		out.MACDCross = "无"
	}
}

// trendBucket tracks the strength band of a trend window without parsing
// the display string back.
type trendBucket int

const (
	trendStrongDown trendBucket = iota - 2
	trendWeakDown
	trendFlat
	trendWeakUp
	trendStrongUp
)

func (b trendBucket) up() bool   { return b > trendFlat }
func (b trendBucket) down() bool { return b < trendFlat }

// trendOver describes the close-to-close change over the past days bars.
func trendOver(series model.PriceSeries, days int) (string, trendBucket) {
	n := series.Len()
	if n < days {
		return "数据不足", trendFlat
	}
	start := series[n-days].Close
	if start == 0 {
		return "数据不足", trendFlat
	}
	chg := (series[n-1].Close - start) / start * 100

	switch {
	case chg > 5:
		return fmt.Sprintf("上涨%.1f%%，强势", chg), trendStrongUp
	case chg > 2:
		return fmt.Sprintf("上涨%.1f%%，偏强", chg), trendWeakUp
	case chg > -2:
		return fmt.Sprintf("震荡%+.1f%%", chg), trendFlat
	case chg > -5:
		return fmt.Sprintf("下跌%.1f%%，偏弱", chg), trendWeakDown
	default:
		return fmt.Sprintf("下跌%.1f%%，弱势", chg), trendStrongDown
	}
}

// analyzeTrends fills the display strings and returns the typed 5-day and
// 20-day buckets for the scoring stage.
func (a *Analyzer) analyzeTrends(series model.PriceSeries, out *model.StrategyAnalysis) (t5, t20 trendBucket) {
	out.Trend5d, t5 = trendOver(series, 5)
	out.Trend10d, _ = trendOver(series, 10)
	out.Trend20d, t20 = trendOver(series, 20)
	return t5, t20
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
