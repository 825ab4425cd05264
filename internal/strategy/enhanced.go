package strategy

import (
	"fmt"
	"strings"

	"github.com/Cedric-Liu/3bros/internal/model"
)

// detectPatternsEnhanced runs the reversal pattern checks with trend and
// next-day confirmation rules, and writes both the matched patterns and the
// explanations for patterns that did not form.
//
// 规则要点：锤子线需下跌趋势且隔日阳线确认才有效；上吊线需上涨趋势且隔日
// 阴线确认；十字星顺趋势方向；刺透分级为1/3、1/2、反包。
func (a *Analyzer) detectPatternsEnhanced(series model.PriceSeries, out *model.StrategyAnalysis, t5 trendBucket) {
	out.Patterns = nil
	out.PatternAnalysis = nil

	if series.Len() < 3 {
		out.PatternAnalysis = []string{"数据不足，无法分析反转形态"}
		return
	}

	n := series.Len()
	curr := series[n-1]
	prev := series[n-2]
	vr := out.VolumeRatio

	currBullish := curr.Bullish()
	prevBullish := prev.Bullish()
	currBody := curr.Body()
	prevBody := prev.Body()

	currType := "阴线"
	if currBullish {
		currType = "阳线"
	}
	prevType := "阴线"
	if prevBullish {
		prevType = "阳线"
	}

	isDowntrend := t5.down()
	isUptrend := t5.up()
	trendDesc := "震荡趋势"
	if isDowntrend {
		trendDesc = "下跌趋势"
	} else if isUptrend {
		trendDesc = "上涨趋势"
	}

	add := func(p model.PatternMatch) { out.Patterns = append(out.Patterns, p) }

	engulfStrength := model.StrengthMedium
	if vr > a.cfg.HeavyVolumeRatio {
		engulfStrength = model.StrengthStrong
	}

	// 阳吞阴
	if currBullish && !prevBullish && curr.Open < prev.Close && curr.Close > prev.Open {
		add(model.PatternMatch{
			Name:           "阳吞阴",
			Polarity:       model.PolarityBullish,
			Strength:       engulfStrength,
			Description:    "阳线实体完全包含前阴线，反转信号",
			PositionAdvice: "可加仓50%",
		})
	}

	// 阴吞阳
	if !currBullish && prevBullish && curr.Open > prev.Close && curr.Close < prev.Open {
		add(model.PatternMatch{
			Name:           "阴吞阳",
			Polarity:       model.PolarityBearish,
			Strength:       engulfStrength,
			Description:    "阴线实体完全包含前阳线，反转信号",
			PositionAdvice: "建议减仓30-50%",
		})
	}

	// 乌云盖顶：跳空高开后深入前阳线实体过半
	if !currBullish && prevBullish && curr.Open > prev.Close {
		mid := (prev.Open + prev.Close) / 2
		if curr.Close < mid && curr.Close > prev.Open {
			add(model.PatternMatch{
				Name:           "乌云盖顶",
				Polarity:       model.PolarityBearish,
				Strength:       model.StrengthStrong,
				Description:    "高开后阴线深入前阳线实体50%以上",
				PositionAdvice: "建议减仓25-33%",
			})
		}
	}

	// 刺透形态分级
	if currBullish && !prevBullish {
		prevDrop := prev.Open - prev.Close
		if prevDrop > 0 {
			thirdPoint := prev.Close + prevDrop/3
			halfPoint := prev.Close + prevDrop/2

			switch {
			case curr.Close >= prev.Open:
				volDesc := ""
				if vr > a.cfg.HeavyVolumeRatio {
					volDesc = "放量"
				}
				add(model.PatternMatch{
					Name:           "刺透反包",
					Polarity:       model.PolarityBullish,
					Strength:       model.StrengthStrong,
					Description:    fmt.Sprintf("%s阳线完全反包前阴线，强反转信号", volDesc),
					PositionAdvice: "可加仓50%",
				})
			case curr.Close >= halfPoint:
				add(model.PatternMatch{
					Name:           "刺透形态",
					Polarity:       model.PolarityBullish,
					Strength:       engulfStrength,
					Description:    "低开后阳线穿透前阴线1/2以上",
					PositionAdvice: "可加仓30%",
				})
			case curr.Close >= thirdPoint && curr.Open < prev.Close:
				add(model.PatternMatch{
					Name:           "刺透1/3",
					Polarity:       model.PolarityBullish,
					Strength:       model.StrengthMedium,
					Description:    "阳线穿透前阴线1/3，初步反弹信号",
					PositionAdvice: "可加仓10%",
				})
			}
		}
	}

	lowerShadow := curr.LowerShadow()
	upperShadow := curr.UpperShadow()
	prevIsPin := prevBody > 0 && prev.LowerShadow() >= prevBody*2 && prev.UpperShadow() < prevBody*0.3

	// 昨日锤子线 + 今日确认
	if prevIsPin && isDowntrend {
		if currBullish && vr > a.cfg.EngulfingVolumeRatio {
			add(model.PatternMatch{
				Name:           "锤子线确认",
				Polarity:       model.PolarityBullish,
				Strength:       model.StrengthStrong,
				Description:    "下跌中锤子线+今日放量阳线确认，底部信号",
				PositionAdvice: "可考虑进场",
			})
		} else if currBullish {
			add(model.PatternMatch{
				Name:           "锤子线确认",
				Polarity:       model.PolarityBullish,
				Strength:       model.StrengthMedium,
				Description:    "下跌中锤子线+今日阳线确认",
				PositionAdvice: "可小仓位试探",
			})
		}
	}

	// 今日锤子线（待确认）
	if currBody > 0 && lowerShadow >= currBody*2 && upperShadow < currBody*0.3 {
		if isDowntrend {
			add(model.PatternMatch{
				Name:           "锤子线",
				Polarity:       model.PolarityBullish,
				Strength:       model.StrengthWeak,
				Description:    "下跌中出现锤子线，等待明日阳线确认",
				PositionAdvice: "观望，等确认信号",
			})
		} else {
			add(model.PatternMatch{
				Name:           "锤子线",
				Polarity:       model.PolarityUndetermined,
				Strength:       model.StrengthWeak,
				Description:    "非下跌趋势的锤子线，信号较弱",
				PositionAdvice: "观望",
			})
		}
	}

	// 昨日上吊线 + 今日确认
	if prevIsPin && isUptrend {
		if !currBullish && vr > a.cfg.EngulfingVolumeRatio {
			add(model.PatternMatch{
				Name:           "上吊线确认",
				Polarity:       model.PolarityBearish,
				Strength:       model.StrengthStrong,
				Description:    "上涨中上吊线+今日放量阴线确认，顶部信号",
				PositionAdvice: "建议减仓25-33%",
			})
		} else if !currBullish {
			add(model.PatternMatch{
				Name:           "上吊线确认",
				Polarity:       model.PolarityBearish,
				Strength:       model.StrengthMedium,
				Description:    "上涨中上吊线+今日阴线确认",
				PositionAdvice: "建议减仓25%",
			})
		}
	}

	// 今日上吊线（待确认）
	if isUptrend && currBody > 0 && lowerShadow >= currBody*2 && upperShadow < currBody*0.3 {
		add(model.PatternMatch{
			Name:           "上吊线",
			Polarity:       model.PolarityBearish,
			Strength:       model.StrengthWeak,
			Description:    "上涨中出现上吊线，等待明日阴线确认",
			PositionAdvice: "观望，注意风险",
		})
	}

	// 十字星：顺趋势方向判断
	totalRange := curr.Range()
	if totalRange > 0 && currBody/totalRange < a.cfg.DojiBodyRatio {
		switch {
		case isUptrend:
			add(model.PatternMatch{
				Name:           "十字星",
				Polarity:       model.PolarityBullish,
				Strength:       model.StrengthWeak,
				Description:    "上涨趋势中十字星，大概率继续向上",
				PositionAdvice: "持有观望",
			})
		case isDowntrend:
			add(model.PatternMatch{
				Name:           "十字星",
				Polarity:       model.PolarityBearish,
				Strength:       model.StrengthWeak,
				Description:    "下跌趋势中十字星，大概率继续向下",
				PositionAdvice: "谨慎持有",
			})
		default:
			add(model.PatternMatch{
				Name:           "十字星",
				Polarity:       model.PolarityUndetermined,
				Strength:       model.StrengthWeak,
				Description:    "震荡中十字星，等待方向选择",
				PositionAdvice: "观望",
			})
		}
	}

	// 解释为什么没有形成反转形态
	hasName := func(name string) bool {
		for _, p := range out.Patterns {
			if p.Name == name {
				return true
			}
		}
		return false
	}
	hasNamePart := func(part string) bool {
		for _, p := range out.Patterns {
			if strings.Contains(p.Name, part) {
				return true
			}
		}
		return false
	}
	note := func(s string) { out.PatternAnalysis = append(out.PatternAnalysis, s) }

	if !hasName("阳吞阴") && !hasName("阴吞阳") {
		switch {
		case currBullish == prevBullish:
			note(fmt.Sprintf("吞没形态：今日%s，昨日也是%s，需要阴阳交替才能形成吞没", currType, prevType))
		case currBullish && !prevBullish:
			if !(curr.Open < prev.Close && curr.Close > prev.Open) {
				note(fmt.Sprintf("阳吞阴未形成：今日阳线实体未完全包含昨日阴线（需开盘<%.2f且收盘>%.2f）",
					prev.Close, prev.Open))
			}
		case !currBullish && prevBullish:
			if !(curr.Open > prev.Close && curr.Close < prev.Open) {
				note(fmt.Sprintf("阴吞阳未形成：今日阴线实体未完全包含昨日阳线（需开盘>%.2f且收盘<%.2f）",
					prev.Close, prev.Open))
			}
		}
	}

	if !hasNamePart("刺透") && !hasName("乌云盖顶") {
		if currBullish && !prevBullish {
			prevDrop := prev.Open - prev.Close
			if prevDrop > 0 {
				thirdPoint := prev.Close + prevDrop/3
				if curr.Close < thirdPoint {
					note(fmt.Sprintf("刺透形态未形成：今日收盘%.2f未穿过前阴线1/3位置%.2f", curr.Close, thirdPoint))
				}
			}
		} else if !currBullish && prevBullish && curr.Open <= prev.Close {
			note(fmt.Sprintf("乌云盖顶未形成：今日开盘%.2f未跳空高开（需>%.2f）", curr.Open, prev.Close))
		}
	}

	if !hasNamePart("锤子线") && !hasNamePart("上吊线") && currBody > 0 {
		shadowRatio := lowerShadow / currBody
		if shadowRatio < a.cfg.HammerShadowRatio {
			note(fmt.Sprintf("锤子线/上吊线未形成：下影线/实体比=%.1f（需>=2），下影线不够长", shadowRatio))
		} else if upperShadow >= currBody*0.3 {
			note("锤子线/上吊线未形成：上影线过长，不符合形态要求")
		}
	}

	if len(out.Patterns) == 0 {
		out.PatternAnalysis = append([]string{
			fmt.Sprintf("当前%s，今日%s，昨日%s，暂无明显反转形态", trendDesc, currType, prevType),
		}, out.PatternAnalysis...)
	}
}
