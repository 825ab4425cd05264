package model

// LevelKind grades how reliable a support/resistance level is.
type LevelKind string

const (
	LevelStrong LevelKind = "strong"
	LevelMedium LevelKind = "medium"
)

// LevelSource records how a level was derived.
type LevelSource string

const (
	SourceExtrema  LevelSource = "extrema"
	SourceMA       LevelSource = "ma"
	SourceSubLevel LevelSource = "sublevel"
)

// Level is a support or resistance price line.
type Level struct {
	Price       float64     `json:"price"`
	Name        string      `json:"name"`
	Kind        LevelKind   `json:"type"`
	Source      LevelSource `json:"source"`
	Calculation string      `json:"calculation"`
	VsCurrent   string      `json:"vs_current"`
}
