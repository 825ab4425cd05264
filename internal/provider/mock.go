package provider

import (
	"fmt"
	"math"
	"time"

	"github.com/Cedric-Liu/3bros/internal/model"
)

// MockFetcher generates deterministic synthetic bars, for tests and for
// running the server without network access.
type MockFetcher struct {
	// Universe overrides the default scan listing when non-empty.
	Universe []model.Listing
}

func NewMockFetcher() *MockFetcher { return &MockFetcher{} }

func (f *MockFetcher) Name() string { return "mock" }

// seed derives a stable per-symbol phase so different codes get different
// but repeatable walks.
func seed(symbol string) float64 {
	var h uint32
	for _, c := range symbol {
		h = h*31 + uint32(c)
	}
	return float64(h%100) / 10
}

func (f *MockFetcher) bars(symbol string, days int) model.PriceSeries {
	phase := seed(symbol)
	base := 10 + math.Mod(phase*7, 90)
	end := time.Now().Truncate(24 * time.Hour)

	series := make(model.PriceSeries, days)
	price := base
	for i := 0; i < days; i++ {
		drift := 0.003 * math.Sin(phase+float64(i)/8)
		open := price
		price = price * (1 + drift)
		high := math.Max(open, price) * 1.004
		low := math.Min(open, price) * 0.996
		vol := 1e6 * (1 + 0.5*math.Sin(phase+float64(i)/5))
		series[i] = model.PriceBar{
			Date:   end.AddDate(0, 0, i-days+1),
			Open:   round4(open),
			High:   round4(high),
			Low:    round4(low),
			Close:  round4(price),
			Volume: math.Round(vol),
		}
	}
	return series
}

func (f *MockFetcher) DailyBars(symbol string, days int) (model.PriceSeries, error) {
	if days <= 0 {
		return nil, fmt.Errorf("mock: invalid days %d", days)
	}
	return f.bars(symbol, days), nil
}

func (f *MockFetcher) IndexDailyBars(symbol string, days int) (model.PriceSeries, error) {
	return f.DailyBars(symbol, days)
}

func (f *MockFetcher) Quote(symbol string) (*model.Quote, error) {
	bars := f.bars(symbol, 2)
	prev, curr := bars[0], bars[1]
	change := curr.Close - prev.Close
	return &model.Quote{
		Code:      symbol,
		Name:      "模拟" + symbol,
		Price:     curr.Close,
		PrevClose: prev.Close,
		Open:      curr.Open,
		High:      curr.High,
		Low:       curr.Low,
		Volume:    curr.Volume,
		Change:    round4(change),
		ChangePct: round4(change / prev.Close * 100),
	}, nil
}

func (f *MockFetcher) ScanUniverse(limit int) ([]model.Listing, error) {
	universe := f.Universe
	if len(universe) == 0 {
		universe = []model.Listing{
			{Code: "600519", Name: "贵州茅台"},
			{Code: "000001", Name: "平安银行"},
			{Code: "300750", Name: "宁德时代"},
			{Code: "601318", Name: "中国平安"},
			{Code: "000858", Name: "五粮液"},
		}
	}
	if limit > 0 && len(universe) > limit {
		universe = universe[:limit]
	}
	return universe, nil
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
