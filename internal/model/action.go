package model

import "fmt"

// Action is the final trading recommendation.
type Action int

const (
	ActionHold Action = iota
	ActionBuy
	ActionSell
	ActionAdd
	ActionReduce
)

var actionLabels = map[Action]string{
	ActionBuy:    "买入",
	ActionSell:   "卖出",
	ActionAdd:    "加仓",
	ActionReduce: "减仓",
	ActionHold:   "持有观望",
}

// Label returns the display label for the action.
func (a Action) Label() string { return actionLabels[a] }

// Positive reports whether the action opens or increases a position.
func (a Action) Positive() bool { return a == ActionBuy || a == ActionAdd }

// Negative reports whether the action closes or decreases a position.
func (a Action) Negative() bool { return a == ActionSell || a == ActionReduce }

// MarshalJSON serializes the action as its display label.
func (a Action) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", a.Label())), nil
}

// RiskLevel labels the risk attached to a recommendation.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

var riskLabels = map[RiskLevel]string{
	RiskHigh:   "高",
	RiskMedium: "中",
	RiskLow:    "低",
}

// Label returns the display label for the risk level.
func (r RiskLevel) Label() string { return riskLabels[r] }

// MarshalJSON serializes the risk level as its display label.
func (r RiskLevel) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", r.Label())), nil
}

// Polarity is the direction a pattern or signal points to.
type Polarity int

const (
	PolarityUndetermined Polarity = iota
	PolarityBullish
	PolarityBearish
)

var polarityLabels = map[Polarity]string{
	PolarityBullish:      "看涨",
	PolarityBearish:      "看跌",
	PolarityUndetermined: "待定",
}

// Label returns the display label for the polarity.
func (p Polarity) Label() string { return polarityLabels[p] }

// MarshalJSON serializes the polarity as its display label.
func (p Polarity) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", p.Label())), nil
}

// Strength grades a pattern or factor.
type Strength int

const (
	StrengthWeak Strength = iota
	StrengthMedium
	StrengthStrong
)

var strengthLabels = map[Strength]string{
	StrengthStrong: "强",
	StrengthMedium: "中",
	StrengthWeak:   "弱",
}

// Label returns the display label for the strength.
func (s Strength) Label() string { return strengthLabels[s] }

// MarshalJSON serializes the strength as its display label.
func (s Strength) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", s.Label())), nil
}

// VolumeStatus is the volume diagnosis for the latest bar.
type VolumeStatus int

const (
	VolumeFlat VolumeStatus = iota
	VolumeHeavy
	VolumeLight
)

var volumeLabels = map[VolumeStatus]string{
	VolumeHeavy: "放量",
	VolumeLight: "缩量",
	VolumeFlat:  "平量",
}

// Label returns the display label for the volume status.
func (v VolumeStatus) Label() string { return volumeLabels[v] }

// MarshalJSON serializes the volume status as its display label.
func (v VolumeStatus) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", v.Label())), nil
}
