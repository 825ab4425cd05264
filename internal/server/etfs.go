package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleGetETFWatchlist(c *gin.Context) {
	items, err := s.store.ETFWatchlist()
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "读取ETF自选失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (s *Server) handleAddToETFWatchlist(c *gin.Context) {
	var req addWatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "参数错误: code和name必填")
		return
	}
	if err := s.store.AddETF(req.Code, req.Name, req.Notes); err != nil {
		errorResponse(c, http.StatusBadRequest, "添加失败")
		return
	}
	okResponse(c, "已添加 "+req.Code+" "+req.Name)
}

func (s *Server) handleRemoveFromETFWatchlist(c *gin.Context) {
	code := c.Param("code")
	if err := s.store.RemoveETF(code); err != nil {
		errorResponse(c, http.StatusBadRequest, "删除失败")
		return
	}
	okResponse(c, "已删除 "+code)
}

// ETF bars come from the same daily kline endpoint as stocks, so the
// analysis path is shared.
func (s *Server) handleETFAnalysis(c *gin.Context) {
	s.respondAnalysis(c, c.Param("code"), false)
}
