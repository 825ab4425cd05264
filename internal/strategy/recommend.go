package strategy

import (
	"fmt"
	"strings"

	"github.com/Cedric-Liu/3bros/internal/model"
)

// factor is one scored observation feeding the final recommendation.
// Strength drives the score; pullback marks MA pullback setups that make
// the symbol eligible for ADD.
type factor struct {
	text     string
	strength model.Strength
	pullback bool
}

func (f factor) score() int {
	switch f.strength {
	case model.StrengthStrong:
		return 3
	case model.StrengthMedium:
		return 1
	default:
		return 0
	}
}

func (f factor) render() string {
	return "【" + f.strength.Label() + "】" + f.text
}

func renderFactors(fs []factor) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.render()
	}
	return out
}

func scoreFactors(fs []factor) int {
	total := 0
	for _, f := range fs {
		total += f.score()
	}
	return total
}

// recommend fuses every analysis dimension into an action, risk level,
// factor lists and a position advice string.
func (a *Analyzer) recommend(out *model.StrategyAnalysis, t5, t20 trendBucket) {
	var bullish, bearish []factor
	var advices []string

	addAdvice := func(s string) { advices = append(advices, s) }

	// 量价
	switch {
	case out.PriceNewHigh && out.VolumeStatus == model.VolumeHeavy:
		bullish = append(bullish, factor{
			text:     fmt.Sprintf("放量创新高，量比%v，上攻动能充足", out.VolumeRatio),
			strength: model.StrengthStrong,
		})
	case out.PriceNewHigh && out.VolumeStatus == model.VolumeLight:
		bearish = append(bearish, factor{text: "缩量新高，追高风险大", strength: model.StrengthWeak})
	case out.PriceNewLow && out.VolumeStatus == model.VolumeHeavy:
		bearish = append(bearish, factor{
			text:     fmt.Sprintf("放量创新低，量比%v，恐慌抛售", out.VolumeRatio),
			strength: model.StrengthStrong,
		})
	case out.PriceNewLow && out.VolumeStatus == model.VolumeLight:
		bullish = append(bullish, factor{text: "缩量新低，抛压减弱，关注企稳", strength: model.StrengthMedium})
	case out.VolumeStatus == model.VolumeHeavy:
		bullish = append(bullish, factor{
			text:     fmt.Sprintf("放量震荡，量比%v，资金活跃", out.VolumeRatio),
			strength: model.StrengthMedium,
		})
	}

	// 支撑压力
	if out.SupportBreakStatus != "" {
		bearish = append(bearish, factor{text: out.SupportBreakStatus, strength: model.StrengthStrong})
		if strings.Contains(out.SupportBreakStatus, "30-50%") {
			addAdvice("减仓30-50%")
		} else if strings.Contains(out.SupportBreakStatus, "10-20%") {
			addAdvice("减仓10-20%")
		}
	}
	if out.ResistanceBreakStatus != "" {
		if strings.Contains(out.ResistanceBreakStatus, "放量突破") {
			bullish = append(bullish, factor{text: out.ResistanceBreakStatus, strength: model.StrengthStrong})
			switch {
			case strings.Contains(out.ResistanceBreakStatus, "50%"):
				addAdvice("可加仓50%")
			case strings.Contains(out.ResistanceBreakStatus, "30%"):
				addAdvice("可加仓30%")
			case strings.Contains(out.ResistanceBreakStatus, "10%"):
				addAdvice("可加仓10%")
			}
		} else if strings.Contains(out.ResistanceBreakStatus, "缩量") {
			bearish = append(bearish, factor{text: out.ResistanceBreakStatus, strength: model.StrengthMedium})
		}
	}
	if out.NearSupport && out.SupportBreakStatus == "" {
		bullish = append(bullish, factor{text: "接近支撑位，有支撑预期", strength: model.StrengthMedium})
	}
	if out.NearResistance && out.ResistanceBreakStatus == "" {
		bearish = append(bearish, factor{text: "接近压力位，可能承压", strength: model.StrengthMedium})
	}

	// 上影线
	if out.UpperShadowWarning {
		bearish = append(bearish, factor{
			text:     fmt.Sprintf("上影线/实体比%.1f，短期转弱概率大", out.UpperShadowRatio),
			strength: model.StrengthMedium,
		})
	}

	// 均线
	aboveCount := 0
	for _, st := range out.MAStatus {
		if st.Above {
			aboveCount++
		}
	}
	switch {
	case aboveCount == 4:
		bullish = append(bullish, factor{text: "站上全部均线(7/18/30/89)，多头排列", strength: model.StrengthStrong})
	case aboveCount >= 3:
		bullish = append(bullish, factor{
			text:     fmt.Sprintf("站上%d条均线，偏多", aboveCount),
			strength: model.StrengthMedium,
		})
	case aboveCount <= 1:
		bearish = append(bearish, factor{
			text:     fmt.Sprintf("跌破多条均线，仅站上%d条，空头排列", aboveCount),
			strength: model.StrengthStrong,
		})
	default:
		bearish = append(bearish, factor{
			text:     fmt.Sprintf("均线缠绕，站上%d条", aboveCount),
			strength: model.StrengthMedium,
		})
	}

	// 回踩均线
	if ma7, ok := out.MAStatus["MA7"]; ok && ma7.Above && abs(ma7.DiffPct) < 1 {
		bullish = append(bullish, factor{text: "回踩MA7支撑", strength: model.StrengthMedium, pullback: true})
	}
	if ma18, ok := out.MAStatus["MA18"]; ok && ma18.Above && abs(ma18.DiffPct) < 1.5 {
		bullish = append(bullish, factor{text: "回踩MA18支撑", strength: model.StrengthMedium, pullback: true})
	}
	if ma30, ok := out.MAStatus["MA30"]; ok && ma30.Above && abs(ma30.DiffPct) < 1 {
		bullish = append(bullish, factor{text: "回踩MA30支撑", strength: model.StrengthMedium, pullback: true})
	}

	// MACD
	switch out.MACDCross {
	case "金叉":
		if strings.Contains(out.MACDStatus, "零轴上方") {
			bullish = append(bullish, factor{text: "零轴上方MACD金叉，强势确认", strength: model.StrengthStrong})
		} else {
			bullish = append(bullish, factor{text: "MACD金叉，关注反弹", strength: model.StrengthMedium})
		}
	case "死叉":
		if strings.Contains(out.MACDStatus, "零轴下方") {
			bearish = append(bearish, factor{text: "零轴下方MACD死叉，弱势确认", strength: model.StrengthStrong})
		} else {
			bearish = append(bearish, factor{text: "MACD死叉，注意回调", strength: model.StrengthMedium})
		}
	}

	// 反转形态
	for _, p := range out.Patterns {
		text := fmt.Sprintf("%s形态，%s", p.Name, p.Description)
		switch p.Polarity {
		case model.PolarityBullish:
			bullish = append(bullish, factor{text: text, strength: p.Strength})
			if strings.Contains(p.PositionAdvice, "加仓") {
				addAdvice(p.PositionAdvice)
			}
		case model.PolarityBearish:
			bearish = append(bearish, factor{text: text, strength: p.Strength})
			if strings.Contains(p.PositionAdvice, "减仓") {
				addAdvice(p.PositionAdvice)
			}
		}
	}

	// 趋势
	if t5.up() {
		bullish = append(bullish, factor{text: fmt.Sprintf("近5日%s", out.Trend5d), strength: model.StrengthMedium})
	} else if t5.down() {
		bearish = append(bearish, factor{text: fmt.Sprintf("近5日%s", out.Trend5d), strength: model.StrengthMedium})
	}
	if t20 == trendStrongUp {
		bullish = append(bullish, factor{text: "近20日趋势向好", strength: model.StrengthMedium})
	} else if t20 == trendStrongDown {
		bearish = append(bearish, factor{text: "近20日趋势走弱", strength: model.StrengthMedium})
	}

	out.BullishScore = scoreFactors(bullish)
	out.BearishScore = scoreFactors(bearish)
	score := out.BullishScore - out.BearishScore

	hasPullback := false
	for _, f := range bullish {
		if f.pullback {
			hasPullback = true
			break
		}
	}

	switch {
	case score >= 5:
		out.Action = model.ActionBuy
		out.RiskLevel = model.RiskMedium
		out.ActionReason = "多重看涨信号共振"
	case score >= 2 && (out.NearSupport || hasPullback):
		out.Action = model.ActionAdd
		out.RiskLevel = model.RiskLow
		out.ActionReason = "支撑位置可加仓"
	case score <= -5:
		out.Action = model.ActionSell
		out.RiskLevel = model.RiskHigh
		out.ActionReason = "多重看跌信号，建议离场"
	case score <= -2:
		out.Action = model.ActionReduce
		out.RiskLevel = model.RiskMedium
		out.ActionReason = "走弱迹象，可减仓"
	default:
		out.Action = model.ActionHold
		out.RiskLevel = model.RiskLow
		out.ActionReason = "多空平衡，观望为主"
	}

	if len(advices) > 0 {
		out.PositionAdvice = strings.Join(dedupe(advices), "；")
	} else {
		switch out.Action {
		case model.ActionBuy:
			out.PositionAdvice = "可建仓30-50%"
		case model.ActionAdd:
			out.PositionAdvice = "可加仓10-20%"
		case model.ActionReduce:
			out.PositionAdvice = "建议减仓20-30%"
		case model.ActionSell:
			out.PositionAdvice = "建议清仓或减至10%以下"
		default:
			out.PositionAdvice = "维持现有仓位"
		}
	}

	cross := out.MACDCross
	if cross == "无" {
		cross = "无信号"
	}
	out.ActionDetail = strings.Join([]string{
		fmt.Sprintf("综合评分: 多方%d分 vs 空方%d分", out.BullishScore, out.BearishScore),
		fmt.Sprintf("近期趋势: 5日%s，10日%s，20日%s", out.Trend5d, out.Trend10d, out.Trend20d),
		fmt.Sprintf("均线状态: %s", out.MASupport),
		fmt.Sprintf("MACD: %s，%s", out.MACDStatus, cross),
	}, "；")

	out.BullishFactors = renderFactors(bullish)
	out.BearishFactors = renderFactors(bearish)
}

// dedupe removes duplicates preserving first-seen order.
func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, s := range items {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
