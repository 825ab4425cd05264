package model

// PatternMatch is one detected reversal pattern with its advice.
type PatternMatch struct {
	Name           string   `json:"name"`
	Polarity       Polarity `json:"type"`
	Strength       Strength `json:"strength"`
	Description    string   `json:"desc"`
	PositionAdvice string   `json:"position_advice"`
}

// MAStatus describes where the current price sits relative to one moving average.
type MAStatus struct {
	Value   float64 `json:"value"`
	Above   bool    `json:"above"`
	DiffPct float64 `json:"diff_pct"`
}

// StrategyAnalysis is the full multi-factor analysis for one symbol.
// It is recomputed per request and never mutated after construction.
type StrategyAnalysis struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	CurrentPrice float64 `json:"current_price"`

	// 量价分析
	VolumeStatus          VolumeStatus `json:"volume_status"`
	VolumeRatio           float64      `json:"volume_ratio"`
	PriceNewHigh          bool         `json:"price_new_high"`
	PriceNewLow           bool         `json:"price_new_low"`
	VolumePriceConclusion string       `json:"volume_price_conclusion"`

	// 压力支撑线
	SupportLines          []Level `json:"support_lines"`
	ResistanceLines       []Level `json:"resistance_lines"`
	NearSupport           bool    `json:"near_support"`
	NearResistance        bool    `json:"near_resistance"`
	SupportBreakStatus    string  `json:"support_break_status"`
	ResistanceBreakStatus string  `json:"resistance_break_status"`

	// 上影线分析
	UpperShadowRatio   float64 `json:"upper_shadow_ratio"`
	UpperShadowWarning bool    `json:"upper_shadow_warning"`
	UpperShadowDetail  string  `json:"upper_shadow_detail"`

	// 均线分析
	MAStatus  map[string]MAStatus `json:"ma_status"`
	MASupport string              `json:"ma_support"`

	// MACD分析
	MACDStatus string `json:"macd_status"`
	MACDCross  string `json:"macd_cross"`

	// 反转形态
	Patterns        []PatternMatch `json:"patterns"`
	PatternAnalysis []string       `json:"pattern_analysis"`

	// 趋势分析
	Trend5d  string `json:"trend_5d"`
	Trend10d string `json:"trend_10d"`
	Trend20d string `json:"trend_20d"`

	// 综合建议
	Action         Action    `json:"action"`
	ActionReason   string    `json:"action_reason"`
	ActionDetail   string    `json:"action_detail"`
	BullishFactors []string  `json:"bullish_factors"`
	BearishFactors []string  `json:"bearish_factors"`
	BullishScore   int       `json:"bullish_score"`
	BearishScore   int       `json:"bearish_score"`
	RiskLevel      RiskLevel `json:"risk_level"`
	PositionAdvice string    `json:"position_advice"`
}
