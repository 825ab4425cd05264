package pattern

import (
	"github.com/Cedric-Liu/3bros/internal/model"
)

// Result is one detected candlestick pattern.
type Result struct {
	Name        string
	Polarity    model.Polarity
	Strength    float64 // 0-1
	Description string
}

// Config holds the geometric thresholds for pattern detection.
type Config struct {
	HammerShadowRatio    float64 // 锤子线下影线/实体比例阈值
	DojiBodyRatio        float64 // 十字星实体/振幅比例阈值
	EngulfingVolumeRatio float64 // 吞没形态放量要求
}

// DefaultConfig returns the standard thresholds.
func DefaultConfig() Config {
	return Config{
		HammerShadowRatio:    2.0,
		DojiBodyRatio:        0.1,
		EngulfingVolumeRatio: 1.2,
	}
}

// Recognizer evaluates the trailing 1-3 bars of a series against
// classical reversal pattern geometry. Stateless.
type Recognizer struct {
	cfg Config
}

// NewRecognizer creates a recognizer with the given thresholds.
func NewRecognizer(cfg Config) *Recognizer {
	return &Recognizer{cfg: cfg}
}

// BullishEngulfing detects 阳吞阴: a bullish bar whose body fully
// contains the prior bearish bar's body. Volume expansion raises strength.
func (r *Recognizer) BullishEngulfing(bars model.PriceSeries, volumeRatio float64) *Result {
	if len(bars) < 2 {
		return nil
	}
	prev, curr := bars[len(bars)-2], bars[len(bars)-1]

	if !prev.Bearish() || !curr.Bullish() {
		return nil
	}
	if curr.Open < prev.Close && curr.Close > prev.Open {
		strength := 0.7
		if volumeRatio > r.cfg.EngulfingVolumeRatio {
			strength = 0.9
		}
		return &Result{
			Name:        "阳吞阴",
			Polarity:    model.PolarityBullish,
			Strength:    strength,
			Description: "阳线实体完全包含前一根阴线，看涨信号",
		}
	}
	return nil
}

// BearishEngulfing detects 阴吞阳, the mirror of BullishEngulfing.
func (r *Recognizer) BearishEngulfing(bars model.PriceSeries, volumeRatio float64) *Result {
	if len(bars) < 2 {
		return nil
	}
	prev, curr := bars[len(bars)-2], bars[len(bars)-1]

	if !prev.Bullish() || !curr.Bearish() {
		return nil
	}
	if curr.Open > prev.Close && curr.Close < prev.Open {
		strength := 0.7
		if volumeRatio > r.cfg.EngulfingVolumeRatio {
			strength = 0.9
		}
		return &Result{
			Name:        "阴吞阳",
			Polarity:    model.PolarityBearish,
			Strength:    strength,
			Description: "阴线实体完全包含前一根阳线，看跌信号",
		}
	}
	return nil
}

// DarkCloudCover detects 乌云盖顶: a gap-up bearish bar closing below the
// midpoint of the prior bullish body while staying above its open.
func (r *Recognizer) DarkCloudCover(bars model.PriceSeries) *Result {
	if len(bars) < 2 {
		return nil
	}
	prev, curr := bars[len(bars)-2], bars[len(bars)-1]

	if !prev.Bullish() || !curr.Bearish() {
		return nil
	}
	if curr.Open <= prev.Close {
		return nil
	}
	midpoint := (prev.Open + prev.Close) / 2
	if curr.Close < midpoint && curr.Close > prev.Open {
		penetration := (prev.Close - curr.Close) / (prev.Close - prev.Open)
		strength := 0.6 + penetration*0.3
		if strength > 0.9 {
			strength = 0.9
		}
		return &Result{
			Name:        "乌云盖顶",
			Polarity:    model.PolarityBearish,
			Strength:    strength,
			Description: "跳空高开后阴线深入前阳线实体，强烈看跌信号",
		}
	}
	return nil
}

// PiercingLine detects 刺透形态, the mirror of DarkCloudCover.
func (r *Recognizer) PiercingLine(bars model.PriceSeries) *Result {
	if len(bars) < 2 {
		return nil
	}
	prev, curr := bars[len(bars)-2], bars[len(bars)-1]

	if !prev.Bearish() || !curr.Bullish() {
		return nil
	}
	if curr.Open >= prev.Close {
		return nil
	}
	midpoint := (prev.Open + prev.Close) / 2
	if curr.Close > midpoint && curr.Close < prev.Open {
		penetration := (curr.Close - prev.Close) / (prev.Open - prev.Close)
		strength := 0.6 + penetration*0.3
		if strength > 0.9 {
			strength = 0.9
		}
		return &Result{
			Name:        "刺透形态",
			Polarity:    model.PolarityBullish,
			Strength:    strength,
			Description: "跳空低开后阳线穿透前阴线实体，看涨信号",
		}
	}
	return nil
}

// hammerGeometry reports whether the bar has hammer geometry: a long
// lower shadow (>= body * ratio) and a short upper shadow.
func (r *Recognizer) hammerGeometry(b model.PriceBar) bool {
	body := b.Body()
	if body < 0.0001 {
		return false
	}
	if b.LowerShadow() < body*r.cfg.HammerShadowRatio {
		return false
	}
	return b.UpperShadow() <= body*0.5
}

// Hammer detects 锤子线. Only meaningful at the bottom of a downtrend;
// the match is discarded otherwise.
func (r *Recognizer) Hammer(bars model.PriceSeries, trend Trend) *Result {
	if len(bars) < 1 || !r.hammerGeometry(bars.Last()) {
		return nil
	}
	if trend != TrendDown {
		return nil
	}
	return &Result{
		Name:        "锤子线",
		Polarity:    model.PolarityBullish,
		Strength:    0.7,
		Description: "底部出现锤子线，可能反转向上",
	}
}

// HangingMan detects 上吊线: hammer geometry at the top of an uptrend.
func (r *Recognizer) HangingMan(bars model.PriceSeries, trend Trend) *Result {
	if len(bars) < 1 || !r.hammerGeometry(bars.Last()) {
		return nil
	}
	if trend != TrendUp {
		return nil
	}
	return &Result{
		Name:        "上吊线",
		Polarity:    model.PolarityBearish,
		Strength:    0.7,
		Description: "顶部出现上吊线，可能反转向下",
	}
}

// Doji detects 十字星: a body tiny relative to the bar's full range.
func (r *Recognizer) Doji(bars model.PriceSeries) *Result {
	if len(bars) < 1 {
		return nil
	}
	curr := bars.Last()
	if curr.Range() < 0.0001 {
		return nil
	}
	if curr.Body()/curr.Range() < r.cfg.DojiBodyRatio {
		return &Result{
			Name:        "十字星",
			Polarity:    model.PolarityUndetermined,
			Strength:    0.5,
			Description: "十字星出现，市场犹豫不决，需结合位置判断",
		}
	}
	return nil
}

// MorningStar detects 启明星: big bearish bar, small-bodied middle bar,
// then a big bullish bar closing above the first body's midpoint.
func (r *Recognizer) MorningStar(bars model.PriceSeries) *Result {
	if len(bars) < 3 {
		return nil
	}
	day1, day2, day3 := bars[len(bars)-3], bars[len(bars)-2], bars[len(bars)-1]

	if !day1.Bearish() {
		return nil
	}
	body1 := day1.Body()
	if day2.Body() > body1*0.5 {
		return nil
	}
	if !day3.Bullish() || day3.Body() < body1*0.5 {
		return nil
	}
	if day3.Close > (day1.Open+day1.Close)/2 {
		return &Result{
			Name:        "启明星",
			Polarity:    model.PolarityBullish,
			Strength:    0.85,
			Description: "底部启明星形态，强烈看涨信号",
		}
	}
	return nil
}

// EveningStar detects 黄昏星, the mirror of MorningStar.
func (r *Recognizer) EveningStar(bars model.PriceSeries) *Result {
	if len(bars) < 3 {
		return nil
	}
	day1, day2, day3 := bars[len(bars)-3], bars[len(bars)-2], bars[len(bars)-1]

	if !day1.Bullish() {
		return nil
	}
	body1 := day1.Body()
	if day2.Body() > body1*0.5 {
		return nil
	}
	if !day3.Bearish() || day3.Body() < body1*0.5 {
		return nil
	}
	if day3.Close < (day1.Open+day1.Close)/2 {
		return &Result{
			Name:        "黄昏星",
			Polarity:    model.PolarityBearish,
			Strength:    0.85,
			Description: "顶部黄昏星形态，强烈看跌信号",
		}
	}
	return nil
}

// DetectAll runs every detector and returns the matches in a fixed order.
func (r *Recognizer) DetectAll(bars model.PriceSeries, volumeRatio float64, trend Trend) []Result {
	checks := []*Result{
		r.BullishEngulfing(bars, volumeRatio),
		r.BearishEngulfing(bars, volumeRatio),
		r.DarkCloudCover(bars),
		r.PiercingLine(bars),
		r.Hammer(bars, trend),
		r.HangingMan(bars, trend),
		r.Doji(bars),
		r.MorningStar(bars),
		r.EveningStar(bars),
	}
	var results []Result
	for _, c := range checks {
		if c != nil {
			results = append(results, *c)
		}
	}
	return results
}
