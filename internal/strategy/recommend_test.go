package strategy

import (
	"strings"
	"testing"

	"github.com/Cedric-Liu/3bros/internal/model"
)

func maStatus(above7, above18, above30, above89 bool, diffs ...float64) map[string]model.MAStatus {
	d := func(i int) float64 {
		if i < len(diffs) {
			return diffs[i]
		}
		return 5
	}
	return map[string]model.MAStatus{
		"MA7":  {Value: 10, Above: above7, DiffPct: d(0)},
		"MA18": {Value: 10, Above: above18, DiffPct: d(1)},
		"MA30": {Value: 10, Above: above30, DiffPct: d(2)},
		"MA89": {Value: 10, Above: above89, DiffPct: d(3)},
	}
}

func TestRecommend_PullbackAdd(t *testing.T) {
	a := mustAnalyzer(t)
	out := &model.StrategyAnalysis{
		MAStatus:   maStatus(true, true, true, true, 3, 2, 0.5, 5),
		MACDCross:  "无",
		MACDStatus: "零轴上方，多头市场",
	}
	a.recommend(out, trendFlat, trendFlat)

	// 多头排列3分 + 回踩MA30 1分 = 4分，不够买入但满足加仓
	if out.BullishScore != 4 || out.BearishScore != 0 {
		t.Fatalf("scores: %d vs %d (%v)", out.BullishScore, out.BearishScore, out.BullishFactors)
	}
	if out.Action != model.ActionAdd {
		t.Errorf("action: %s", out.Action.Label())
	}
	if out.RiskLevel != model.RiskLow || out.ActionReason != "支撑位置可加仓" {
		t.Errorf("risk %s reason %s", out.RiskLevel.Label(), out.ActionReason)
	}
	if out.PositionAdvice != "可加仓10-20%" {
		t.Errorf("advice: %s", out.PositionAdvice)
	}
}

func TestRecommend_SellCollectsAdvice(t *testing.T) {
	a := mustAnalyzer(t)
	out := &model.StrategyAnalysis{
		MAStatus:           maStatus(false, false, false, false),
		MACDCross:          "死叉",
		MACDStatus:         "零轴下方，空头市场",
		SupportBreakStatus: "击穿1/2支撑，建议减仓30-50%",
		Trend5d:            "下跌6.0%，弱势",
	}
	a.recommend(out, trendStrongDown, trendStrongDown)

	// 击穿3 + 空头排列3 + 死叉3 + 5日1 + 20日1 = 11分
	if out.BearishScore != 11 || out.BullishScore != 0 {
		t.Fatalf("scores: %d vs %d (%v)", out.BullishScore, out.BearishScore, out.BearishFactors)
	}
	if out.Action != model.ActionSell || out.RiskLevel != model.RiskHigh {
		t.Errorf("action %s risk %s", out.Action.Label(), out.RiskLevel.Label())
	}
	if out.PositionAdvice != "减仓30-50%" {
		t.Errorf("advice: %s", out.PositionAdvice)
	}
	for _, f := range out.BearishFactors {
		if !strings.HasPrefix(f, "【") {
			t.Errorf("factor missing strength prefix: %s", f)
		}
	}
}

func TestRecommend_PatternAdviceDeduped(t *testing.T) {
	a := mustAnalyzer(t)
	out := &model.StrategyAnalysis{
		MAStatus:   maStatus(true, true, true, true),
		MACDCross:  "金叉",
		MACDStatus: "零轴上方，多头市场",
		Patterns: []model.PatternMatch{
			{Name: "阳吞阴", Polarity: model.PolarityBullish, Strength: model.StrengthStrong,
				Description: "阳线实体完全包含前阴线，反转信号", PositionAdvice: "可加仓50%"},
			{Name: "刺透反包", Polarity: model.PolarityBullish, Strength: model.StrengthStrong,
				Description: "阳线完全反包前阴线，强反转信号", PositionAdvice: "可加仓50%"},
		},
	}
	a.recommend(out, trendFlat, trendFlat)

	if out.Action != model.ActionBuy {
		t.Fatalf("action: %s (bull %d)", out.Action.Label(), out.BullishScore)
	}
	if out.PositionAdvice != "可加仓50%" {
		t.Errorf("advice should dedupe to one entry: %s", out.PositionAdvice)
	}
}

func TestRecommend_HoldBalanced(t *testing.T) {
	a := mustAnalyzer(t)
	out := &model.StrategyAnalysis{
		MAStatus:   maStatus(true, true, false, false),
		MACDCross:  "无",
		MACDStatus: "零轴附近，转折期",
	}
	a.recommend(out, trendFlat, trendFlat)

	// 均线缠绕(中)仅1分空方
	if out.Action != model.ActionHold {
		t.Errorf("action: %s (bull %d bear %d)", out.Action.Label(), out.BullishScore, out.BearishScore)
	}
	if out.PositionAdvice != "维持现有仓位" {
		t.Errorf("advice: %s", out.PositionAdvice)
	}
	if !strings.Contains(out.ActionDetail, "无信号") {
		t.Errorf("detail should spell out the missing cross: %s", out.ActionDetail)
	}
}

func TestRecommend_ResistanceBreakDirection(t *testing.T) {
	a := mustAnalyzer(t)

	out := &model.StrategyAnalysis{
		MAStatus:              maStatus(true, true, false, false),
		MACDCross:             "无",
		ResistanceBreakStatus: "放量突破1/2压力，可加仓30%",
	}
	a.recommend(out, trendFlat, trendFlat)
	if out.PositionAdvice != "可加仓30%" {
		t.Errorf("heavy break advice: %s", out.PositionAdvice)
	}

	out = &model.StrategyAnalysis{
		MAStatus:              maStatus(true, true, false, false),
		MACDCross:             "无",
		ResistanceBreakStatus: "缩量突破1/2，弱反弹概率大",
	}
	a.recommend(out, trendFlat, trendFlat)
	found := false
	for _, f := range out.BearishFactors {
		if strings.Contains(f, "缩量突破") {
			found = true
		}
	}
	if !found {
		t.Errorf("light-volume break should count bearish: %v", out.BearishFactors)
	}
}
