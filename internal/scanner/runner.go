package scanner

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/Cedric-Liu/3bros/internal/model"
	"github.com/Cedric-Liu/3bros/internal/provider"
	"github.com/Cedric-Liu/3bros/internal/strategy"
)

// Result is the per-symbol outcome of a market scan.
type Result struct {
	Code         string       `json:"code"`
	Name         string       `json:"name"`
	Price        float64      `json:"price"`
	PctChange    float64      `json:"pct_change"`
	Action       model.Action `json:"action"`
	ActionReason string       `json:"action_reason"`
	Patterns     []string     `json:"patterns"`
	BullishCount int          `json:"bullish_count"`
	BearishCount int          `json:"bearish_count"`
	Score        int          `json:"score"`
}

// Runner scans a list of symbols with a bounded worker pool. Per-symbol
// failures are logged and skipped, a scan never aborts mid-batch.
type Runner struct {
	fetcher  provider.Fetcher
	analyzer *strategy.Analyzer

	// Workers bounds concurrent fetch+analyze calls.
	Workers int
	// Days of history requested per symbol.
	Days int
}

// NewRunner builds a runner with the default pool size.
func NewRunner(fetcher provider.Fetcher, analyzer *strategy.Analyzer) *Runner {
	return &Runner{
		fetcher:  fetcher,
		analyzer: analyzer,
		Workers:  8,
		Days:     60,
	}
}

// Scan analyzes every listing and returns results sorted by score
// descending. progress, if non-nil, is called after each symbol with
// the processed count and the total. Cancelling ctx stops feeding new
// symbols to the pool.
func (r *Runner) Scan(ctx context.Context, listings []model.Listing, progress func(processed, total int)) []Result {
	total := len(listings)
	if total == 0 {
		return nil
	}

	jobs := make(chan model.Listing)
	var (
		mu        sync.Mutex
		results   []Result
		processed int
		wg        sync.WaitGroup
	)

	workers := r.Workers
	if workers <= 0 {
		workers = 1
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for listing := range jobs {
				res, err := r.scanOne(listing)
				mu.Lock()
				processed++
				done := processed
				if err != nil {
					log.Printf("[WARN] scan %s %s failed: %v", listing.Code, listing.Name, err)
				} else if res != nil {
					results = append(results, *res)
				}
				mu.Unlock()
				if progress != nil {
					progress(done, total)
				}
			}
		}()
	}

feed:
	for _, listing := range listings {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- listing:
		}
	}
	close(jobs)
	wg.Wait()

	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	return results
}

func (r *Runner) scanOne(listing model.Listing) (*Result, error) {
	series, err := r.fetcher.DailyBars(listing.Code, r.Days)
	if err != nil {
		return nil, err
	}

	analysis, err := r.analyzer.Analyze(series, listing.Code, listing.Name)
	if err != nil {
		return nil, err
	}

	patterns := make([]string, 0, len(analysis.Patterns))
	for _, p := range analysis.Patterns {
		patterns = append(patterns, p.Name)
	}

	return &Result{
		Code:         listing.Code,
		Name:         listing.Name,
		Price:        analysis.CurrentPrice,
		PctChange:    listing.ChangePct,
		Action:       analysis.Action,
		ActionReason: analysis.ActionReason,
		Patterns:     patterns,
		BullishCount: len(analysis.BullishFactors),
		BearishCount: len(analysis.BearishFactors),
		Score:        analysis.BullishScore - analysis.BearishScore,
	}, nil
}
