package scheduler

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/Cedric-Liu/3bros/internal/model"
	"github.com/Cedric-Liu/3bros/internal/notifier"
	"github.com/Cedric-Liu/3bros/internal/provider"
	"github.com/Cedric-Liu/3bros/internal/scanner"
	"github.com/Cedric-Liu/3bros/internal/signal"
	"github.com/Cedric-Liu/3bros/internal/store"
	"github.com/Cedric-Liu/3bros/internal/strategy"

	"github.com/robfig/cron/v3"
)

// DefaultPushTime is used when the push_time setting is missing or
// malformed.
const DefaultPushTime = "15:30"

// IndexCodes are the market indices shown in the daily report and the
// indices endpoint, in display order.
var IndexCodes = []struct {
	Name string
	Code string
}{
	{"上证指数", "000001"},
	{"深证成指", "399001"},
	{"创业板指", "399006"},
	{"科创50", "000688"},
}

// Scheduler runs the daily push on trading days at the configured time.
type Scheduler struct {
	Cron     *cron.Cron
	Fetcher  provider.Fetcher
	Analyzer *strategy.Analyzer
	Detector *signal.Detector
	Runner   *scanner.Runner
	Notifier *notifier.ServerChanNotifier
	Store    *store.Store
	Ctx      context.Context

	mu        sync.Mutex
	pushEntry cron.EntryID
	scheduled bool
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, fetcher provider.Fetcher, analyzer *strategy.Analyzer, detector *signal.Detector, runner *scanner.Runner, n *notifier.ServerChanNotifier, st *store.Store) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Fetcher:  fetcher,
		Analyzer: analyzer,
		Detector: detector,
		Runner:   runner,
		Notifier: n,
		Store:    st,
		Ctx:      ctx,
	}
}

// RegisterDailyPush schedules the push at the push_time setting,
// Monday to Friday. A bad stored value falls back to the default.
func (s *Scheduler) RegisterDailyPush() error {
	pushTime, err := s.Store.Setting("push_time", DefaultPushTime)
	if err != nil {
		return fmt.Errorf("read push time: %w", err)
	}
	hour, minute, err := parsePushTime(pushTime)
	if err != nil {
		log.Printf("[WARN] invalid push_time %q, using %s: %v", pushTime, DefaultPushTime, err)
		hour, minute, _ = parsePushTime(DefaultPushTime)
	}
	return s.schedule(hour, minute)
}

// UpdatePushTime reschedules the daily push at a new HH:MM time.
func (s *Scheduler) UpdatePushTime(pushTime string) error {
	hour, minute, err := parsePushTime(pushTime)
	if err != nil {
		return err
	}
	return s.schedule(hour, minute)
}

func (s *Scheduler) schedule(hour, minute int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.scheduled {
		s.Cron.Remove(s.pushEntry)
	}
	spec := fmt.Sprintf("0 %d %d * * 1-5", minute, hour)
	entry, err := s.Cron.AddFunc(spec, s.DailyPush)
	if err != nil {
		return fmt.Errorf("register daily push: %w", err)
	}
	s.pushEntry = entry
	s.scheduled = true
	log.Printf("[INFO] daily push scheduled at %02d:%02d on trading days", hour, minute)
	return nil
}

func parsePushTime(v string) (hour, minute int, err error) {
	parts := strings.Split(v, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("push time %q: want HH:MM", v)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("push time hour: %w", err)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("push time minute: %w", err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("push time %q out of range", v)
	}
	return hour, minute, nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunPushNow executes the daily push immediately (manual trigger).
func (s *Scheduler) RunPushNow() {
	s.DailyPush()
}

// DailyPush assembles and sends the daily report: index overview,
// watchlist signals, then a Top5 hot-stock scan. Section failures are
// logged and the remaining sections still go out.
func (s *Scheduler) DailyPush() {
	log.Println("[INFO] running daily push")
	if !s.Notifier.Configured() {
		log.Println("[WARN] ServerChan not configured, skipping daily push")
		return
	}

	indices := s.collectIndices()
	buys, sells := s.collectWatchlistSignals()
	topBuy, topSell := s.collectScanRanks()

	title, body := notifier.FormatDailyReport(indices, buys, sells, topBuy, topSell)
	s.trySend(title, body)
}

func (s *Scheduler) collectIndices() []notifier.IndexSnapshot {
	var snapshots []notifier.IndexSnapshot
	for _, idx := range IndexCodes {
		series, err := s.Fetcher.IndexDailyBars(idx.Code, 5)
		if err != nil {
			log.Printf("[WARN] fetch index %s: %v", idx.Code, err)
			continue
		}
		n := series.Len()
		if n < 2 {
			continue
		}
		price := series[n-1].Close
		prev := series[n-2].Close
		pct := 0.0
		if prev > 0 {
			pct = (price - prev) / prev * 100
		}
		snapshots = append(snapshots, notifier.IndexSnapshot{Name: idx.Name, Price: price, ChangePct: pct})
	}
	return snapshots
}

func (s *Scheduler) collectWatchlistSignals() (buys, sells []notifier.WatchSignal) {
	items, err := s.Store.Watchlist()
	if err != nil {
		log.Printf("[ERROR] load watchlist: %v", err)
		return nil, nil
	}

	for _, item := range items {
		series, err := s.Fetcher.DailyBars(item.Code, 60)
		if err != nil {
			log.Printf("[WARN] fetch %s %s: %v", item.Code, item.Name, err)
			continue
		}

		// Persist today's raw pattern signals alongside the push.
		for _, sig := range s.Detector.Detect(series, item.Code, item.Name) {
			if err := s.Store.SaveSignal(sig); err != nil {
				log.Printf("[ERROR] save signal %s: %v", item.Code, err)
			}
		}

		analysis, err := s.Analyzer.Analyze(series, item.Code, item.Name)
		if err != nil {
			log.Printf("[WARN] analyze %s %s: %v", item.Code, item.Name, err)
			continue
		}

		ws := notifier.WatchSignal{
			Code:   item.Code,
			Name:   item.Name,
			Price:  analysis.CurrentPrice,
			Action: analysis.Action,
		}
		switch {
		case analysis.Action.Positive():
			for _, p := range analysis.Patterns {
				if p.Polarity == model.PolarityBullish {
					ws.Patterns = append(ws.Patterns, p.Name)
				}
			}
			buys = append(buys, ws)
		case analysis.Action.Negative():
			for _, p := range analysis.Patterns {
				if p.Polarity == model.PolarityBearish {
					ws.Patterns = append(ws.Patterns, p.Name)
				}
			}
			sells = append(sells, ws)
		}
	}
	return buys, sells
}

func (s *Scheduler) collectScanRanks() (topBuy, topSell []notifier.ScanRank) {
	listings, err := s.Fetcher.ScanUniverse(50)
	if err != nil {
		log.Printf("[ERROR] fetch scan universe: %v", err)
		return nil, nil
	}

	results := s.Runner.Scan(s.Ctx, listings, nil)
	for _, r := range results {
		switch {
		case r.Action.Positive() && r.Score >= 3:
			topBuy = append(topBuy, notifier.ScanRank{Code: r.Code, Name: r.Name, Price: r.Price, Score: r.Score})
		case r.Action.Negative() && r.Score <= -3:
			// Sell ranks show how strongly the bears lead.
			topSell = append(topSell, notifier.ScanRank{Code: r.Code, Name: r.Name, Price: r.Price, Score: -r.Score})
		}
	}
	// Scan results come back sorted by score descending, so the buy
	// list is already ranked; the sell list needs reversing.
	for i, j := 0, len(topSell)-1; i < j; i, j = i+1, j-1 {
		topSell[i], topSell[j] = topSell[j], topSell[i]
	}
	return topBuy, topSell
}

func (s *Scheduler) trySend(title, body string) {
	if err := s.Notifier.SendWithRetry(s.Ctx, title, body, 3); err != nil {
		log.Printf("[ERROR] send daily push: %v", err)
		return
	}
	log.Println("[INFO] daily push sent")
}
