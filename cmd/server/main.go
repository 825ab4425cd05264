package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Cedric-Liu/3bros/internal/config"
	"github.com/Cedric-Liu/3bros/internal/notifier"
	"github.com/Cedric-Liu/3bros/internal/provider"
	"github.com/Cedric-Liu/3bros/internal/scanner"
	"github.com/Cedric-Liu/3bros/internal/scheduler"
	"github.com/Cedric-Liu/3bros/internal/server"
	sigdetect "github.com/Cedric-Liu/3bros/internal/signal"
	"github.com/Cedric-Liu/3bros/internal/store"
	"github.com/Cedric-Liu/3bros/internal/strategy"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] 3bros starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init quote provider
	var fetcher provider.Fetcher
	if cfg.Provider.Source == "mock" {
		fetcher = provider.NewMockFetcher()
	} else {
		fetcher = provider.NewTencentFetcher()
	}
	log.Printf("[INFO] quote source: %s", fetcher.Name())

	// Init store
	st, err := store.Open(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("[FATAL] open store: %v", err)
	}
	defer st.Close()

	// Seed settings from config on first run
	if cfg.Push.ServerChanKey != "" {
		if existing, err := st.Setting("serverchan_key", ""); err == nil && existing == "" {
			if err := st.SetSetting("serverchan_key", cfg.Push.ServerChanKey); err != nil {
				log.Printf("[WARN] seed serverchan key: %v", err)
			}
		}
	}
	if existing, err := st.Setting("push_time", ""); err == nil && existing == "" {
		if err := st.SetSetting("push_time", cfg.Push.Time); err != nil {
			log.Printf("[WARN] seed push time: %v", err)
		}
	}

	// Init analyzer and detector
	analyzer, err := strategy.NewAnalyzer(cfg.Strategy)
	if err != nil {
		log.Fatalf("[FATAL] init analyzer: %v", err)
	}
	detector := sigdetect.NewDetector(
		cfg.Strategy.PatternConfig(),
		cfg.Strategy.MACDFast, cfg.Strategy.MACDSlow, cfg.Strategy.MACDSignal,
	)

	// Notifier reads its key from the settings store on every send.
	n := notifier.NewServerChanNotifier(func() string {
		key, err := st.Setting("serverchan_key", "")
		if err != nil {
			log.Printf("[WARN] read serverchan key: %v", err)
			return ""
		}
		return key
	})

	runner := scanner.NewRunner(fetcher, analyzer)
	runner.Workers = cfg.Scan.Workers

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, fetcher, analyzer, detector, runner, n, st)
	if err := sched.RegisterDailyPush(); err != nil {
		log.Fatalf("[FATAL] register daily push: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Init HTTP server
	srv := server.New(server.Config{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		AllowOrigins:   cfg.Server.AllowOrigins,
		ProductionMode: cfg.Server.ProductionMode,
	}, st, fetcher, analyzer, detector, runner, n, sched)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	// Optional: push immediately on start
	if os.Getenv("PUSH_ON_START") == "true" {
		log.Println("[INFO] PUSH_ON_START enabled, executing daily push now")
		go sched.RunPushNow()
	}

	log.Println("[INFO] 3bros is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal or server failure
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Println("[INFO] shutdown signal received, stopping...")
	case err := <-errCh:
		if err != nil {
			log.Printf("[ERROR] http server: %v", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[ERROR] shutdown http server: %v", err)
	}
	cancel()
	log.Println("[INFO] 3bros stopped")
}
