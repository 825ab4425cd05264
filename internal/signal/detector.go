package signal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Cedric-Liu/3bros/internal/indicator"
	"github.com/Cedric-Liu/3bros/internal/model"
	"github.com/Cedric-Liu/3bros/internal/pattern"
)

// Signal is one detected reversal pattern enriched with indicator
// confirmations.
type Signal struct {
	Code          string         `json:"code"`
	Name          string         `json:"name"`
	Polarity      model.Polarity `json:"signal_type"`
	PatternName   string         `json:"pattern_name"`
	Strength      float64        `json:"strength"`
	Price         float64        `json:"price"`
	Description   string         `json:"description"`
	Confirmations []string       `json:"confirmations"`
	Date          time.Time      `json:"date"`
}

// Detector runs the basic pattern recognizers over a series and layers
// MACD, volume, trend and MA20 confirmations on top.
type Detector struct {
	recognizer *pattern.Recognizer

	macdFast   int
	macdSlow   int
	macdSignal int
}

// NewDetector builds a detector with the given pattern thresholds.
func NewDetector(cfg pattern.Config, macdFast, macdSlow, macdSignal int) *Detector {
	return &Detector{
		recognizer: pattern.NewRecognizer(cfg),
		macdFast:   macdFast,
		macdSlow:   macdSlow,
		macdSignal: macdSignal,
	}
}

// NewDefaultDetector uses the standard pattern and MACD parameters.
func NewDefaultDetector() *Detector {
	return NewDetector(pattern.DefaultConfig(), 12, 26, 9)
}

// Detect returns every non-neutral signal found on the latest bars.
// Fewer than 10 bars yields no signals.
func (d *Detector) Detect(series model.PriceSeries, code, name string) []Signal {
	if series.Len() < 10 {
		return nil
	}

	closes := series.Closes()
	price := series.Last().Close

	volumeRatio := 1.0
	if vr, err := indicator.VolumeRatio(series.Volumes(), 5); err == nil {
		volumeRatio = vr
	}

	var golden, death bool
	dif, dea, _, err := indicator.MACD(closes, d.macdFast, d.macdSlow, d.macdSignal)
	if err == nil {
		golden, death = indicator.MACDCross(dif, dea)
	}

	trend := pattern.DetectTrend(series, 10)

	results := []*pattern.Result{
		d.recognizer.BullishEngulfing(series, volumeRatio),
		d.recognizer.BearishEngulfing(series, volumeRatio),
		d.recognizer.DarkCloudCover(series),
		d.recognizer.PiercingLine(series),
		d.recognizer.Hammer(series, trend),
		d.recognizer.HangingMan(series, trend),
		d.recognizer.Doji(series),
		d.recognizer.MorningStar(series),
		d.recognizer.EveningStar(series),
	}

	var signals []Signal
	for _, r := range results {
		if r == nil || r.Polarity == model.PolarityUndetermined {
			continue
		}

		var confirmations []string
		strength := r.Strength

		if r.Polarity == model.PolarityBullish && golden {
			confirmations = append(confirmations, "MACD金叉")
			strength = capStrength(strength + 0.1)
		} else if r.Polarity == model.PolarityBearish && death {
			confirmations = append(confirmations, "MACD死叉")
			strength = capStrength(strength + 0.1)
		}

		if volumeRatio > 1.5 {
			confirmations = append(confirmations, fmt.Sprintf("放量%.1f倍", volumeRatio))
			strength = capStrength(strength + 0.05)
		}

		if r.Polarity == model.PolarityBullish && trend == pattern.TrendDown {
			confirmations = append(confirmations, "下跌趋势底部")
		} else if r.Polarity == model.PolarityBearish && trend == pattern.TrendUp {
			confirmations = append(confirmations, "上涨趋势顶部")
		}

		if ma20, err := indicator.MA(closes, 20); err == nil && ma20 != 0 {
			priceToMA := (price - ma20) / ma20
			if priceToMA > -0.02 && priceToMA < 0.02 {
				if r.Polarity == model.PolarityBullish {
					confirmations = append(confirmations, "接近MA20支撑")
				} else {
					confirmations = append(confirmations, "接近MA20压力")
				}
			}
		}

		signals = append(signals, Signal{
			Code:          code,
			Name:          name,
			Polarity:      r.Polarity,
			PatternName:   r.Name,
			Strength:      strength,
			Price:         price,
			Description:   r.Description,
			Confirmations: confirmations,
			Date:          series.Last().Date,
		})
	}

	return signals
}

// Strongest returns the highest-strength signal, or nil when none fire.
func (d *Detector) Strongest(series model.PriceSeries, code, name string) *Signal {
	signals := d.Detect(series, code, name)
	if len(signals) == 0 {
		return nil
	}
	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].Strength > signals[j].Strength
	})
	return &signals[0]
}

// Summary renders a one-line human-readable digest of the signal.
func Summary(s Signal) string {
	emoji := "🔴"
	if s.Polarity == model.PolarityBullish {
		emoji = "🟢"
	}
	confirm := ""
	if len(s.Confirmations) > 0 {
		confirm = fmt.Sprintf(" (%s)", strings.Join(s.Confirmations, ", "))
	}
	return fmt.Sprintf("%s %s | %s %s | %s%s | 强度: %.0f%%",
		emoji, s.Polarity.Label(), s.Code, s.Name, s.PatternName, confirm, s.Strength*100)
}

func capStrength(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	return v
}
