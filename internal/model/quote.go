package model

// Quote is a realtime snapshot for one symbol.
type Quote struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	PrevClose float64 `json:"prev_close"`
	Open      float64 `json:"open"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Volume    float64 `json:"volume"`
	Amount    float64 `json:"amount"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"pct_change"`
}

// Listing is one entry of a scan universe: an active symbol with its
// current daily move.
type Listing struct {
	Code      string  `json:"code"`
	Name      string  `json:"name"`
	ChangePct float64 `json:"change_pct"`
}
