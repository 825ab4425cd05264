package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Cedric-Liu/3bros/internal/notifier"
	"github.com/Cedric-Liu/3bros/internal/provider"
	"github.com/Cedric-Liu/3bros/internal/scanner"
	"github.com/Cedric-Liu/3bros/internal/scheduler"
	"github.com/Cedric-Liu/3bros/internal/signal"
	"github.com/Cedric-Liu/3bros/internal/store"
	"github.com/Cedric-Liu/3bros/internal/strategy"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Config holds HTTP server configuration.
type Config struct {
	Host           string
	Port           int
	AllowOrigins   []string
	ProductionMode bool
}

// Server is the HTTP API for the analysis engine.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	cfg        Config

	store     *store.Store
	fetcher   provider.Fetcher
	analyzer  *strategy.Analyzer
	detector  *signal.Detector
	runner    *scanner.Runner
	jobs      *scanner.JobStore
	notifier  *notifier.ServerChanNotifier
	scheduler *scheduler.Scheduler
}

// New creates an API server and registers all routes.
func New(cfg Config, st *store.Store, fetcher provider.Fetcher, analyzer *strategy.Analyzer, detector *signal.Detector, runner *scanner.Runner, n *notifier.ServerChanNotifier, sched *scheduler.Scheduler) *Server {
	if cfg.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	s := &Server{
		router:    router,
		cfg:       cfg,
		store:     st,
		fetcher:   fetcher,
		analyzer:  analyzer,
		detector:  detector,
		runner:    runner,
		jobs:      scanner.NewJobStore(),
		notifier:  n,
		scheduler: sched,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")

	stocks := v1.Group("/stocks")
	{
		stocks.GET("/watchlist", s.handleGetWatchlist)
		stocks.POST("/watchlist", s.handleAddToWatchlist)
		stocks.DELETE("/watchlist/:code", s.handleRemoveFromWatchlist)
		stocks.PUT("/watchlist/:code/order", s.handleUpdateWatchOrder)
		stocks.GET("/watchlist/signals", s.handleWatchlistSignals)
		stocks.GET("/:code/klines", s.handleStockKlines)
		stocks.GET("/:code/signals", s.handleStockSignals)
		stocks.GET("/:code/analysis", s.handleStockAnalysis)
		stocks.GET("/:code/buy-info", s.handleGetBuyInfo)
		stocks.PUT("/:code/buy-info", s.handleUpdateBuyInfo)
	}

	etfs := v1.Group("/etfs")
	{
		etfs.GET("/watchlist", s.handleGetETFWatchlist)
		etfs.POST("/watchlist", s.handleAddToETFWatchlist)
		etfs.DELETE("/watchlist/:code", s.handleRemoveFromETFWatchlist)
		etfs.GET("/:code/analysis", s.handleETFAnalysis)
	}

	market := v1.Group("/market")
	{
		market.GET("/indices", s.handleMarketIndices)
		market.GET("/signals/today", s.handleTodaySignals)
		market.GET("/signals/history", s.handleSignalHistory)
		market.POST("/scan", s.handleStartScan)
		market.GET("/scan/:id", s.handleScanResult)
	}

	settings := v1.Group("/settings")
	{
		settings.GET("", s.handleGetSettings)
		settings.PUT("", s.handleUpdateSettings)
		settings.GET("/all", s.handleAllSettings)
		settings.POST("/notify/test", s.handleTestNotify)
		settings.POST("/notify/daily", s.handleTriggerDailyPush)
	}
}

// Router exposes the gin engine, mainly for tests.
func (s *Server) Router() *gin.Engine { return s.router }

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	log.Printf("[INFO] HTTP server listening on %s", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("start server: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("[INFO] shutting down HTTP server")
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"source": s.fetcher.Name(),
		"time":   time.Now().Format(time.RFC3339),
	})
}

func errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func okResponse(c *gin.Context, message string) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message})
}
