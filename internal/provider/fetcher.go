package provider

import "github.com/Cedric-Liu/3bros/internal/model"

// Fetcher defines the interface for fetching A股 market data.
type Fetcher interface {
	// DailyBars returns up to days of daily bars, oldest first.
	DailyBars(symbol string, days int) (model.PriceSeries, error)
	// IndexDailyBars returns daily bars for a market index.
	IndexDailyBars(symbol string, days int) (model.PriceSeries, error)
	// Quote returns the realtime snapshot for one symbol.
	Quote(symbol string) (*model.Quote, error)
	// ScanUniverse lists up to limit active symbols sorted by turnover.
	ScanUniverse(limit int) ([]model.Listing, error)
	Name() string
}
