package strategy

import (
	"fmt"

	"github.com/Cedric-Liu/3bros/internal/pattern"
)

// Config holds all analyzer thresholds. Callers may override any field;
// invalid values are rejected at construction, never mid-analysis.
type Config struct {
	MAPeriods []int `yaml:"ma_periods"`

	MACDFast   int `yaml:"macd_fast"`
	MACDSlow   int `yaml:"macd_slow"`
	MACDSignal int `yaml:"macd_signal"`

	HammerShadowRatio    float64 `yaml:"hammer_shadow_ratio"`
	DojiBodyRatio        float64 `yaml:"doji_body_ratio"`
	EngulfingVolumeRatio float64 `yaml:"engulfing_volume_ratio"`

	HeavyVolumeRatio float64 `yaml:"heavy_volume_ratio"`
	LightVolumeRatio float64 `yaml:"light_volume_ratio"`
}

// DefaultConfig returns the standard analyzer configuration.
func DefaultConfig() Config {
	return Config{
		MAPeriods:            []int{7, 18, 30, 89},
		MACDFast:             12,
		MACDSlow:             26,
		MACDSignal:           9,
		HammerShadowRatio:    2.0,
		DojiBodyRatio:        0.1,
		EngulfingVolumeRatio: 1.2,
		HeavyVolumeRatio:     1.5,
		LightVolumeRatio:     0.7,
	}
}

// PatternConfig maps the shared candlestick thresholds onto the
// pattern recognizer's configuration.
func (c Config) PatternConfig() pattern.Config {
	return pattern.Config{
		HammerShadowRatio:    c.HammerShadowRatio,
		DojiBodyRatio:        c.DojiBodyRatio,
		EngulfingVolumeRatio: c.EngulfingVolumeRatio,
	}
}

// Validate checks the configuration for values that would corrupt the
// analysis.
func (c Config) Validate() error {
	if len(c.MAPeriods) == 0 {
		return fmt.Errorf("ma_periods must not be empty")
	}
	for _, p := range c.MAPeriods {
		if p <= 0 {
			return fmt.Errorf("ma_periods entries must be positive, got %d", p)
		}
	}
	if c.MACDFast <= 0 || c.MACDSlow <= 0 || c.MACDSignal <= 0 {
		return fmt.Errorf("macd periods must be positive")
	}
	if c.MACDFast >= c.MACDSlow {
		return fmt.Errorf("macd_fast (%d) must be below macd_slow (%d)", c.MACDFast, c.MACDSlow)
	}
	if c.HammerShadowRatio <= 0 {
		return fmt.Errorf("hammer_shadow_ratio must be positive")
	}
	if c.DojiBodyRatio <= 0 || c.DojiBodyRatio >= 1 {
		return fmt.Errorf("doji_body_ratio must be in (0,1)")
	}
	if c.EngulfingVolumeRatio <= 0 {
		return fmt.Errorf("engulfing_volume_ratio must be positive")
	}
	if c.HeavyVolumeRatio <= c.LightVolumeRatio {
		return fmt.Errorf("heavy_volume_ratio (%.2f) must exceed light_volume_ratio (%.2f)",
			c.HeavyVolumeRatio, c.LightVolumeRatio)
	}
	return nil
}
