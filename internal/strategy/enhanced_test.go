package strategy

import (
	"strings"
	"testing"
	"time"

	"github.com/Cedric-Liu/3bros/internal/model"
)

func twoBars(prev, curr model.PriceBar) model.PriceSeries {
	day := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	filler := model.PriceBar{Date: day, Open: 10, High: 10, Low: 10, Close: 10, Volume: 1e6}
	prev.Date = day.AddDate(0, 0, 1)
	curr.Date = day.AddDate(0, 0, 2)
	return model.PriceSeries{filler, prev, curr}
}

func detect(t *testing.T, series model.PriceSeries, vr float64, t5 trendBucket) *model.StrategyAnalysis {
	t.Helper()
	a := mustAnalyzer(t)
	out := &model.StrategyAnalysis{VolumeRatio: vr}
	a.detectPatternsEnhanced(series, out, t5)
	return out
}

func patternNames(out *model.StrategyAnalysis) []string {
	names := make([]string, len(out.Patterns))
	for i, p := range out.Patterns {
		names[i] = p.Name
	}
	return names
}

func hasPattern(out *model.StrategyAnalysis, name string) *model.PatternMatch {
	for i := range out.Patterns {
		if out.Patterns[i].Name == name {
			return &out.Patterns[i]
		}
	}
	return nil
}

func TestBullishEngulfingWithFullRecovery(t *testing.T) {
	// 前阴线10.00→9.00，今日8.80开10.10收：既是阳吞阴也是刺透反包
	s := twoBars(
		model.PriceBar{Open: 10.00, High: 10.05, Low: 8.95, Close: 9.00, Volume: 1e6},
		model.PriceBar{Open: 8.80, High: 10.15, Low: 8.75, Close: 10.10, Volume: 1e6},
	)

	out := detect(t, s, 1.0, trendFlat)
	engulf := hasPattern(out, "阳吞阴")
	if engulf == nil {
		t.Fatalf("missing 阳吞阴, got %v", patternNames(out))
	}
	if engulf.Strength != model.StrengthMedium || engulf.Polarity != model.PolarityBullish {
		t.Errorf("engulf: %+v", engulf)
	}
	if engulf.PositionAdvice != "可加仓50%" {
		t.Errorf("advice: %s", engulf.PositionAdvice)
	}
	if p := hasPattern(out, "刺透反包"); p == nil || p.Strength != model.StrengthStrong {
		t.Errorf("刺透反包: %+v (names %v)", p, patternNames(out))
	}

	// 放量时吞没升级为强
	out = detect(t, s, 2.0, trendFlat)
	if p := hasPattern(out, "阳吞阴"); p == nil || p.Strength != model.StrengthStrong {
		t.Errorf("heavy-volume engulf: %+v", p)
	}
}

func TestBearishEngulfing(t *testing.T) {
	s := twoBars(
		model.PriceBar{Open: 9.00, High: 10.05, Low: 8.95, Close: 10.00, Volume: 1e6},
		model.PriceBar{Open: 10.10, High: 10.15, Low: 8.75, Close: 8.80, Volume: 1e6},
	)
	out := detect(t, s, 1.0, trendFlat)
	p := hasPattern(out, "阴吞阳")
	if p == nil {
		t.Fatalf("missing 阴吞阳, got %v", patternNames(out))
	}
	if p.Polarity != model.PolarityBearish || p.PositionAdvice != "建议减仓30-50%" {
		t.Errorf("got %+v", p)
	}
}

func TestDarkCloudCover(t *testing.T) {
	// 前阳线10→11，今日跳空高开11.2收10.3（深入实体一半以下但未破开盘）
	s := twoBars(
		model.PriceBar{Open: 10.00, High: 11.05, Low: 9.95, Close: 11.00, Volume: 1e6},
		model.PriceBar{Open: 11.20, High: 11.25, Low: 10.25, Close: 10.30, Volume: 1e6},
	)
	out := detect(t, s, 1.0, trendFlat)
	p := hasPattern(out, "乌云盖顶")
	if p == nil {
		t.Fatalf("missing 乌云盖顶, got %v", patternNames(out))
	}
	if p.Strength != model.StrengthStrong || p.PositionAdvice != "建议减仓25-33%" {
		t.Errorf("got %+v", p)
	}
}

func TestPiercingTiers(t *testing.T) {
	prev := model.PriceBar{Open: 10.00, High: 10.05, Low: 8.95, Close: 9.00, Volume: 1e6}
	tests := []struct {
		name string
		curr model.PriceBar
		want string
	}{
		{"half", model.PriceBar{Open: 8.90, High: 9.60, Low: 8.85, Close: 9.55, Volume: 1e6}, "刺透形态"},
		{"third", model.PriceBar{Open: 8.90, High: 9.40, Low: 8.85, Close: 9.35, Volume: 1e6}, "刺透1/3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := detect(t, twoBars(prev, tt.curr), 1.0, trendFlat)
			if hasPattern(out, tt.want) == nil {
				t.Errorf("missing %s, got %v", tt.want, patternNames(out))
			}
		})
	}
}

func TestHammerConfirmation(t *testing.T) {
	// 昨日锤子线（实体0.1，下影线0.6，上影线0.01），今日放量阳线确认
	hammer := model.PriceBar{Open: 10.00, High: 10.11, Low: 9.40, Close: 10.10, Volume: 1e6}
	confirm := model.PriceBar{Open: 10.10, High: 10.60, Low: 10.05, Close: 10.55, Volume: 1e6}

	out := detect(t, twoBars(hammer, confirm), 1.5, trendWeakDown)
	p := hasPattern(out, "锤子线确认")
	if p == nil {
		t.Fatalf("missing 锤子线确认, got %v", patternNames(out))
	}
	if p.Strength != model.StrengthStrong || p.PositionAdvice != "可考虑进场" {
		t.Errorf("got %+v", p)
	}

	// 无放量只给中等强度
	out = detect(t, twoBars(hammer, confirm), 1.0, trendWeakDown)
	if p := hasPattern(out, "锤子线确认"); p == nil || p.Strength != model.StrengthMedium {
		t.Errorf("plain confirm: %+v", p)
	}

	// 非下跌趋势不确认
	out = detect(t, twoBars(hammer, confirm), 1.5, trendFlat)
	if hasPattern(out, "锤子线确认") != nil {
		t.Error("confirmation requires a downtrend")
	}
}

func TestHammerPending(t *testing.T) {
	hammer := model.PriceBar{Open: 10.00, High: 10.11, Low: 9.40, Close: 10.10, Volume: 1e6}
	prev := model.PriceBar{Open: 10.30, High: 10.35, Low: 9.95, Close: 10.00, Volume: 1e6}

	out := detect(t, twoBars(prev, hammer), 1.0, trendWeakDown)
	p := hasPattern(out, "锤子线")
	if p == nil || p.Polarity != model.PolarityBullish || p.Strength != model.StrengthWeak {
		t.Fatalf("downtrend hammer: %+v (names %v)", p, patternNames(out))
	}

	out = detect(t, twoBars(prev, hammer), 1.0, trendFlat)
	if p := hasPattern(out, "锤子线"); p == nil || p.Polarity != model.PolarityUndetermined {
		t.Errorf("sideways hammer: %+v", p)
	}
}

func TestHangingMan(t *testing.T) {
	pin := model.PriceBar{Open: 10.00, High: 10.11, Low: 9.40, Close: 10.10, Volume: 1e6}
	down := model.PriceBar{Open: 10.05, High: 10.08, Low: 9.60, Close: 9.70, Volume: 1e6}

	out := detect(t, twoBars(pin, down), 1.5, trendWeakUp)
	p := hasPattern(out, "上吊线确认")
	if p == nil || p.Strength != model.StrengthStrong {
		t.Fatalf("heavy-volume confirm: %+v (names %v)", p, patternNames(out))
	}
	if p.PositionAdvice != "建议减仓25-33%" {
		t.Errorf("advice: %s", p.PositionAdvice)
	}

	// 今日自身是上吊线且处于上涨趋势
	prev := model.PriceBar{Open: 9.80, High: 10.02, Low: 9.75, Close: 10.00, Volume: 1e6}
	out = detect(t, twoBars(prev, pin), 1.0, trendWeakUp)
	if p := hasPattern(out, "上吊线"); p == nil || p.Polarity != model.PolarityBearish {
		t.Errorf("pending hanging man: %+v (names %v)", p, patternNames(out))
	}
}

func TestDojiFollowsTrend(t *testing.T) {
	prev := model.PriceBar{Open: 9.80, High: 10.02, Low: 9.75, Close: 10.00, Volume: 1e6}
	doji := model.PriceBar{Open: 10.00, High: 10.30, Low: 9.70, Close: 10.01, Volume: 1e6}

	tests := []struct {
		name string
		t5   trendBucket
		want model.Polarity
	}{
		{"uptrend", trendWeakUp, model.PolarityBullish},
		{"downtrend", trendWeakDown, model.PolarityBearish},
		{"sideways", trendFlat, model.PolarityUndetermined},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := detect(t, twoBars(prev, doji), 1.0, tt.t5)
			p := hasPattern(out, "十字星")
			if p == nil {
				t.Fatalf("missing 十字星, got %v", patternNames(out))
			}
			if p.Polarity != tt.want {
				t.Errorf("polarity %s, want %s", p.Polarity.Label(), tt.want.Label())
			}
		})
	}
}

func TestPatternAnalysisExplainsMisses(t *testing.T) {
	// 连续两根阳线：无法形成吞没
	s := twoBars(
		model.PriceBar{Open: 9.80, High: 10.05, Low: 9.75, Close: 10.00, Volume: 1e6},
		model.PriceBar{Open: 10.00, High: 10.40, Low: 9.95, Close: 10.30, Volume: 1e6},
	)
	out := detect(t, s, 1.0, trendFlat)
	joined := strings.Join(out.PatternAnalysis, " ")
	if !strings.Contains(joined, "需要阴阳交替") {
		t.Errorf("missing engulfing explanation: %v", out.PatternAnalysis)
	}
	if !strings.Contains(out.PatternAnalysis[0], "暂无明显反转形态") {
		t.Errorf("first entry should summarize: %v", out.PatternAnalysis)
	}
}

func TestPatternsShortSeries(t *testing.T) {
	a := mustAnalyzer(t)
	out := &model.StrategyAnalysis{}
	a.detectPatternsEnhanced(flatSeries(2, 10), out, trendFlat)
	if len(out.PatternAnalysis) != 1 || !strings.Contains(out.PatternAnalysis[0], "数据不足") {
		t.Errorf("got %v", out.PatternAnalysis)
	}
}
