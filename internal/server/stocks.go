package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Cedric-Liu/3bros/internal/indicator"
	"github.com/Cedric-Liu/3bros/internal/model"
	"github.com/Cedric-Liu/3bros/internal/signal"
	"github.com/Cedric-Liu/3bros/internal/strategy"

	"github.com/gin-gonic/gin"
)

const analysisDays = 60

type addWatchRequest struct {
	Code  string `json:"code" binding:"required"`
	Name  string `json:"name" binding:"required"`
	Notes string `json:"notes"`
}

type buyInfoRequest struct {
	BuyPrice    *float64 `json:"buy_price"`
	BuyDate     *string  `json:"buy_date"`
	BuyQuantity *int     `json:"buy_quantity"`
}

type signalSummary struct {
	Code         string             `json:"code"`
	Name         string             `json:"name"`
	CurrentPrice float64            `json:"current_price"`
	Action       model.Action       `json:"action"`
	ActionReason string             `json:"action_reason"`
	RiskLevel    model.RiskLevel    `json:"risk_level"`
	VolumeStatus model.VolumeStatus `json:"volume_status"`
	VolumeRatio  float64            `json:"volume_ratio"`
	MACDCross    string             `json:"macd_cross"`
	Patterns     []string           `json:"patterns"`
}

// symbolName resolves the display name via the realtime quote,
// falling back to the code itself when the quote is unavailable.
func (s *Server) symbolName(code string) string {
	q, err := s.fetcher.Quote(code)
	if err != nil || q.Name == "" {
		return code
	}
	return q.Name
}

func (s *Server) analyzeSymbol(code string, index bool) (*model.StrategyAnalysis, error) {
	var (
		series model.PriceSeries
		err    error
	)
	if index {
		series, err = s.fetcher.IndexDailyBars(code, analysisDays)
	} else {
		series, err = s.fetcher.DailyBars(code, analysisDays)
	}
	if err != nil {
		return nil, err
	}
	return s.analyzer.Analyze(series, code, s.symbolName(code))
}

func (s *Server) handleGetWatchlist(c *gin.Context) {
	items, err := s.store.Watchlist()
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "读取自选股失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (s *Server) handleAddToWatchlist(c *gin.Context) {
	var req addWatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "参数错误: code和name必填")
		return
	}
	if err := s.store.AddWatch(req.Code, req.Name, req.Notes); err != nil {
		errorResponse(c, http.StatusBadRequest, "添加失败")
		return
	}
	okResponse(c, "已添加 "+req.Code+" "+req.Name)
}

func (s *Server) handleRemoveFromWatchlist(c *gin.Context) {
	code := c.Param("code")
	if err := s.store.RemoveWatch(code); err != nil {
		errorResponse(c, http.StatusBadRequest, "删除失败")
		return
	}
	okResponse(c, "已删除 "+code)
}

type watchOrderRequest struct {
	SortOrder *int `json:"sort_order" binding:"required"`
}

// handleUpdateWatchOrder moves a watchlist entry to a new sort
// position. The list endpoint returns entries ordered by sort_order
// descending, so a larger value floats the stock up.
func (s *Server) handleUpdateWatchOrder(c *gin.Context) {
	code := c.Param("code")
	in, err := s.store.InWatchlist(code)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "读取自选股失败")
		return
	}
	if !in {
		errorResponse(c, http.StatusNotFound, "股票不在自选中")
		return
	}

	var req watchOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "参数错误: sort_order必填")
		return
	}
	if err := s.store.UpdateWatchOrder(code, *req.SortOrder); err != nil {
		errorResponse(c, http.StatusBadRequest, "更新失败")
		return
	}
	okResponse(c, "已更新排序")
}

// handleWatchlistSignals returns a one-line diagnosis per watchlist
// entry. Symbols that cannot be fetched or analyzed still get a row so
// the front end can render the full list.
func (s *Server) handleWatchlistSignals(c *gin.Context) {
	items, err := s.store.Watchlist()
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "读取自选股失败")
		return
	}

	results := make([]signalSummary, 0, len(items))
	for _, item := range items {
		series, err := s.fetcher.DailyBars(item.Code, analysisDays)
		if err != nil {
			results = append(results, fallbackSummary(item.Code, item.Name, 0, "数据不足"))
			continue
		}
		analysis, err := s.analyzer.Analyze(series, item.Code, item.Name)
		if err != nil {
			price := 0.0
			if series.Len() > 0 {
				price = series.Last().Close
			}
			results = append(results, fallbackSummary(item.Code, item.Name, price, "分析失败"))
			continue
		}

		patterns := make([]string, 0, len(analysis.Patterns))
		for _, p := range analysis.Patterns {
			patterns = append(patterns, p.Name)
		}
		results = append(results, signalSummary{
			Code:         item.Code,
			Name:         item.Name,
			CurrentPrice: analysis.CurrentPrice,
			Action:       analysis.Action,
			ActionReason: analysis.ActionReason,
			RiskLevel:    analysis.RiskLevel,
			VolumeStatus: analysis.VolumeStatus,
			VolumeRatio:  analysis.VolumeRatio,
			MACDCross:    analysis.MACDCross,
			Patterns:     patterns,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": results, "total": len(results)})
}

func fallbackSummary(code, name string, price float64, reason string) signalSummary {
	return signalSummary{
		Code:         code,
		Name:         name,
		CurrentPrice: price,
		Action:       model.ActionHold,
		ActionReason: reason,
		RiskLevel:    model.RiskLow,
		VolumeStatus: model.VolumeFlat,
		VolumeRatio:  1.0,
		MACDCross:    "无",
		Patterns:     []string{},
	}
}

func (s *Server) handleStockKlines(c *gin.Context) {
	code := c.Param("code")
	days, err := strconv.Atoi(c.DefaultQuery("days", "60"))
	if err != nil || days < 1 || days > 365 {
		errorResponse(c, http.StatusBadRequest, "days参数需在1-365之间")
		return
	}

	series, err := s.fetcher.DailyBars(code, days)
	if err != nil || series.Len() < 5 {
		errorResponse(c, http.StatusNotFound, "获取K线数据失败或数据不足")
		return
	}

	var supports, resistances []model.Level
	if analysis, err := s.analyzer.Analyze(series, code, s.symbolName(code)); err == nil {
		supports = analysis.SupportLines
		resistances = analysis.ResistanceLines
	}

	c.JSON(http.StatusOK, gin.H{
		"code":             code,
		"name":             s.symbolName(code),
		"klines":           series,
		"support_lines":    supports,
		"resistance_lines": resistances,
		"indicators":       klineIndicators(series),
	})
}

// klineIndicators computes the oscillator readings shown alongside the
// chart. Short series just get fewer fields.
func klineIndicators(series model.PriceSeries) gin.H {
	out := gin.H{}
	closes := series.Closes()
	if rsi, err := indicator.RSI(closes, 14); err == nil {
		out["rsi14"] = round2(rsi)
	}
	if upper, middle, lower, err := indicator.BollingerBands(closes, 20, 2.0); err == nil {
		out["boll_upper"] = round2(upper)
		out["boll_middle"] = round2(middle)
		out["boll_lower"] = round2(lower)
	}
	return out
}

// handleStockSignals runs the pattern detector over fresh bars and
// returns today's candidate signals without persisting them.
func (s *Server) handleStockSignals(c *gin.Context) {
	code := c.Param("code")
	series, err := s.fetcher.DailyBars(code, analysisDays)
	if err != nil {
		errorResponse(c, http.StatusBadGateway, "获取行情数据失败")
		return
	}
	signals := s.detector.Detect(series, code, s.symbolName(code))
	summaries := make([]string, 0, len(signals))
	for _, sig := range signals {
		summaries = append(summaries, signal.Summary(sig))
	}
	c.JSON(http.StatusOK, gin.H{
		"signals":   signals,
		"summaries": summaries,
		"total":     len(signals),
	})
}

func (s *Server) handleStockAnalysis(c *gin.Context) {
	s.respondAnalysis(c, c.Param("code"), false)
}

func (s *Server) respondAnalysis(c *gin.Context, code string, index bool) {
	analysis, err := s.analyzeSymbol(code, index)
	if err != nil {
		if errors.Is(err, strategy.ErrInsufficientData) {
			errorResponse(c, http.StatusNotFound, "获取数据失败或数据不足")
			return
		}
		errorResponse(c, http.StatusBadGateway, "获取行情数据失败")
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (s *Server) handleGetBuyInfo(c *gin.Context) {
	code := c.Param("code")
	items, err := s.store.Watchlist()
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "读取自选股失败")
		return
	}
	for _, item := range items {
		if item.Code == code {
			c.JSON(http.StatusOK, gin.H{
				"code":         item.Code,
				"buy_price":    item.BuyPrice,
				"buy_date":     item.BuyDate,
				"buy_quantity": item.BuyQuantity,
			})
			return
		}
	}
	errorResponse(c, http.StatusNotFound, "股票不在自选中")
}

func (s *Server) handleUpdateBuyInfo(c *gin.Context) {
	code := c.Param("code")
	in, err := s.store.InWatchlist(code)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "读取自选股失败")
		return
	}
	if !in {
		errorResponse(c, http.StatusNotFound, "股票不在自选中")
		return
	}

	var req buyInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "参数错误")
		return
	}
	if err := s.store.UpdateBuyInfo(code, req.BuyPrice, req.BuyDate, req.BuyQuantity); err != nil {
		errorResponse(c, http.StatusBadRequest, "更新失败")
		return
	}
	okResponse(c, "已更新买入信息")
}
