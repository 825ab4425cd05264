package store

import (
	"path/filepath"
	"testing"

	"github.com/Cedric-Liu/3bros/internal/model"
	"github.com/Cedric-Liu/3bros/internal/signal"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestWatchlistRoundTrip(t *testing.T) {
	s := openTestStore(t)

	if err := s.AddWatch("600519", "贵州茅台", "白酒"); err != nil {
		t.Fatalf("AddWatch: %v", err)
	}
	if err := s.AddWatch("000001", "平安银行", ""); err != nil {
		t.Fatalf("AddWatch: %v", err)
	}

	items, err := s.Watchlist()
	if err != nil {
		t.Fatalf("Watchlist: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("want 2 items, got %d", len(items))
	}
	// 后添加的排在前面
	if items[0].Code != "000001" || items[1].Code != "600519" {
		t.Errorf("order: %s, %s", items[0].Code, items[1].Code)
	}
	if items[1].Notes != "白酒" {
		t.Errorf("notes: %q", items[1].Notes)
	}

	ok, err := s.InWatchlist("600519")
	if err != nil || !ok {
		t.Errorf("InWatchlist: %v %v", ok, err)
	}

	if err := s.RemoveWatch("600519"); err != nil {
		t.Fatalf("RemoveWatch: %v", err)
	}
	if ok, _ := s.InWatchlist("600519"); ok {
		t.Error("still in watchlist after removal")
	}
}

func TestWatchlistReAddKeepsUnique(t *testing.T) {
	s := openTestStore(t)

	s.AddWatch("600519", "贵州茅台", "")
	s.AddWatch("600519", "贵州茅台", "重复添加")

	items, err := s.Watchlist()
	if err != nil {
		t.Fatalf("Watchlist: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("duplicate code should replace, got %d rows", len(items))
	}
	if items[0].Notes != "重复添加" {
		t.Errorf("notes: %q", items[0].Notes)
	}
}

func TestBuyInfoPartialUpdate(t *testing.T) {
	s := openTestStore(t)
	s.AddWatch("600519", "贵州茅台", "")

	price := 1342.5
	if err := s.UpdateBuyInfo("600519", &price, nil, nil); err != nil {
		t.Fatalf("UpdateBuyInfo: %v", err)
	}
	qty := 100
	date := "2025-08-01"
	if err := s.UpdateBuyInfo("600519", nil, &date, &qty); err != nil {
		t.Fatalf("UpdateBuyInfo: %v", err)
	}

	items, _ := s.Watchlist()
	it := items[0]
	if it.BuyPrice == nil || *it.BuyPrice != 1342.5 {
		t.Errorf("buy price: %v", it.BuyPrice)
	}
	if it.BuyDate == nil || *it.BuyDate != "2025-08-01" {
		t.Errorf("buy date: %v", it.BuyDate)
	}
	if it.BuyQuantity == nil || *it.BuyQuantity != 100 {
		t.Errorf("buy quantity: %v", it.BuyQuantity)
	}

	// 全nil不触发更新
	if err := s.UpdateBuyInfo("600519", nil, nil, nil); err != nil {
		t.Errorf("no-op update: %v", err)
	}
}

func TestETFWatchlistSeparate(t *testing.T) {
	s := openTestStore(t)

	s.AddETF("510300", "沪深300ETF", "宽基")
	ok, err := s.InETFWatchlist("510300")
	if err != nil || !ok {
		t.Fatalf("InETFWatchlist: %v %v", ok, err)
	}
	// 股票自选与ETF自选互不影响
	if ok, _ := s.InWatchlist("510300"); ok {
		t.Error("ETF leaked into stock watchlist")
	}

	etfs, _ := s.ETFWatchlist()
	if len(etfs) != 1 || etfs[0].Name != "沪深300ETF" {
		t.Errorf("etfs: %+v", etfs)
	}
}

func TestSettings(t *testing.T) {
	s := openTestStore(t)

	got, err := s.Setting("push_time", "15:30")
	if err != nil || got != "15:30" {
		t.Fatalf("default: %q %v", got, err)
	}

	if err := s.SetSetting("push_time", "16:00"); err != nil {
		t.Fatalf("SetSetting: %v", err)
	}
	if got, _ := s.Setting("push_time", "15:30"); got != "16:00" {
		t.Errorf("after set: %q", got)
	}

	s.SetSetting("serverchan_key", "SCT123")
	all, err := s.AllSettings()
	if err != nil {
		t.Fatalf("AllSettings: %v", err)
	}
	if len(all) != 2 || all["serverchan_key"] != "SCT123" {
		t.Errorf("all: %v", all)
	}
}

func TestSignalHistory(t *testing.T) {
	s := openTestStore(t)

	sig := signal.Signal{
		Code: "600519", Name: "贵州茅台", Polarity: model.PolarityBullish,
		PatternName: "阳吞阴", Strength: 0.9, Price: 1342.0,
		Description:   "阳线实体完全包含前阴线，反转信号",
		Confirmations: []string{"MACD金叉", "放量2.0倍"},
	}
	if err := s.SaveSignal(sig); err != nil {
		t.Fatalf("SaveSignal: %v", err)
	}
	weak := sig
	weak.PatternName = "十字星"
	weak.Strength = 0.5
	if err := s.SaveSignal(weak); err != nil {
		t.Fatalf("SaveSignal: %v", err)
	}

	records, err := s.SignalHistory("600519", 30, 100)
	if err != nil {
		t.Fatalf("SignalHistory: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("want 2 records, got %d", len(records))
	}
	rec := records[0]
	if rec.SignalType != "看涨" {
		t.Errorf("signal type label: %q", rec.SignalType)
	}
	if len(records[0].Confirmations) == 0 && len(records[1].Confirmations) == 0 {
		t.Error("confirmations lost in round trip")
	}

	// 今日信号按强度降序
	today, err := s.TodaySignals("")
	if err != nil {
		t.Fatalf("TodaySignals: %v", err)
	}
	if len(today) != 2 || today[0].Strength < today[1].Strength {
		t.Errorf("today order: %+v", today)
	}

	// 其他代码查不到
	other, _ := s.SignalHistory("000001", 30, 100)
	if len(other) != 0 {
		t.Errorf("unexpected records for other code: %+v", other)
	}
}
