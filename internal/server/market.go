package server

import (
	"context"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/Cedric-Liu/3bros/internal/scheduler"
	"github.com/Cedric-Liu/3bros/internal/store"

	"github.com/gin-gonic/gin"
)

type indexWithSignal struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Change       float64 `json:"change"`
	PctChange    float64 `json:"pct_change"`
	Volume       float64 `json:"volume"`
	Action       string  `json:"action,omitempty"`
	ActionReason string  `json:"action_reason,omitempty"`
	MACDCross    string  `json:"macd_cross,omitempty"`
}

type scanRequest struct {
	Limit int `json:"limit"`
}

func (s *Server) handleMarketIndices(c *gin.Context) {
	indices := make([]indexWithSignal, 0, len(scheduler.IndexCodes))
	for _, idx := range scheduler.IndexCodes {
		row := indexWithSignal{Code: idx.Code, Name: idx.Name}

		series, err := s.fetcher.IndexDailyBars(idx.Code, analysisDays)
		if err != nil || series.Len() < 2 {
			indices = append(indices, row)
			continue
		}

		n := series.Len()
		latest := series[n-1]
		prev := series[n-2]
		row.Price = round2(latest.Close)
		row.Change = round2(latest.Close - prev.Close)
		if prev.Close > 0 {
			row.PctChange = round2((latest.Close - prev.Close) / prev.Close * 100)
		}
		row.Volume = latest.Volume

		if analysis, err := s.analyzer.Analyze(series, idx.Code, idx.Name); err == nil {
			row.Action = analysis.Action.Label()
			row.ActionReason = analysis.ActionReason
			row.MACDCross = analysis.MACDCross
		}
		indices = append(indices, row)
	}

	c.JSON(http.StatusOK, gin.H{
		"indices":     indices,
		"update_time": time.Now().Format("2006-01-02 15:04:05"),
	})
}

func (s *Server) handleTodaySignals(c *gin.Context) {
	signals, err := s.store.TodaySignals("")
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "读取今日信号失败")
		return
	}

	buys := make([]store.SignalRecord, 0)
	sells := make([]store.SignalRecord, 0)
	for _, sig := range signals {
		if sig.SignalType == "看涨" {
			buys = append(buys, sig)
		} else {
			sells = append(sells, sig)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"buy_signals":  buys,
		"sell_signals": sells,
		"total":        len(signals),
	})
}

func (s *Server) handleSignalHistory(c *gin.Context) {
	code := c.Query("code")
	days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
	if err != nil || days < 1 {
		errorResponse(c, http.StatusBadRequest, "days参数错误")
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 1 {
		errorResponse(c, http.StatusBadRequest, "limit参数错误")
		return
	}

	signals, err := s.store.SignalHistory(code, days, limit)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "读取信号历史失败")
		return
	}
	if signals == nil {
		signals = []store.SignalRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"signals": signals, "total": len(signals)})
}

// handleStartScan kicks off an asynchronous market scan and returns
// the job id to poll.
func (s *Server) handleStartScan(c *gin.Context) {
	var req scanRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			errorResponse(c, http.StatusBadRequest, "参数错误")
			return
		}
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 200
	}

	job := s.jobs.Create(limit)
	go s.runScanJob(job.ID, limit)

	c.JSON(http.StatusOK, gin.H{
		"task_id":    job.ID,
		"status":     job.Status,
		"progress":   job.Progress,
		"total":      job.Total,
		"processed":  job.Processed,
		"started_at": job.StartedAt,
	})
}

func (s *Server) runScanJob(id string, limit int) {
	s.jobs.SetRunning(id)

	listings, err := s.fetcher.ScanUniverse(limit)
	if err != nil {
		log.Printf("[ERROR] scan %s: fetch universe: %v", id, err)
		s.jobs.Fail(id, err)
		return
	}
	s.jobs.UpdateProgress(id, 0, len(listings))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	results := s.runner.Scan(ctx, listings, func(processed, total int) {
		s.jobs.UpdateProgress(id, processed, total)
	})
	s.jobs.Complete(id, results)
	log.Printf("[INFO] scan %s completed: %d results", id, len(results))
}

func (s *Server) handleScanResult(c *gin.Context) {
	job, ok := s.jobs.Get(c.Param("id"))
	if !ok {
		errorResponse(c, http.StatusNotFound, "任务不存在")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"task_id":      job.ID,
		"status":       job.Status,
		"progress":     job.Progress,
		"total":        job.Total,
		"processed":    job.Processed,
		"results":      capResults(job.Results, 20),
		"buy_signals":  capResults(job.BuySignals, 10),
		"sell_signals": capResults(job.SellSignals, 10),
		"error":        job.Error,
	})
}

func capResults[T any](in []T, n int) []T {
	if in == nil {
		return []T{}
	}
	if len(in) > n {
		return in[:n]
	}
	return in
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
