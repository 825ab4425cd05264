package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

type updateSettingsRequest struct {
	ServerChanKey *string `json:"serverchan_key"`
	PushTime      *string `json:"push_time"`
}

// maskKey hides the middle of a SendKey for display.
func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) > 8 {
		return key[:4] + "****" + key[len(key)-4:]
	}
	return "****"
}

func (s *Server) handleGetSettings(c *gin.Context) {
	key, err := s.store.Setting("serverchan_key", "")
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "读取设置失败")
		return
	}
	pushTime, err := s.store.Setting("push_time", "15:30")
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "读取设置失败")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"serverchan_key":        maskKey(key),
		"serverchan_configured": key != "",
		"push_time":             pushTime,
	})
}

func (s *Server) handleUpdateSettings(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "参数错误")
		return
	}

	if req.ServerChanKey != nil {
		if err := s.store.SetSetting("serverchan_key", *req.ServerChanKey); err != nil {
			errorResponse(c, http.StatusInternalServerError, "保存设置失败")
			return
		}
	}
	if req.PushTime != nil {
		if s.scheduler != nil {
			if err := s.scheduler.UpdatePushTime(*req.PushTime); err != nil {
				errorResponse(c, http.StatusBadRequest, "推送时间格式错误，需要HH:MM")
				return
			}
		}
		if err := s.store.SetSetting("push_time", *req.PushTime); err != nil {
			errorResponse(c, http.StatusInternalServerError, "保存设置失败")
			return
		}
	}
	okResponse(c, "设置已更新")
}

func (s *Server) handleAllSettings(c *gin.Context) {
	settings, err := s.store.AllSettings()
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "读取设置失败")
		return
	}
	if key, ok := settings["serverchan_key"]; ok {
		settings["serverchan_key"] = maskKey(key)
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (s *Server) handleTestNotify(c *gin.Context) {
	if !s.notifier.Configured() {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Server酱未配置，请先设置SendKey"})
		return
	}
	if err := s.notifier.SendTest(); err != nil {
		log.Printf("[WARN] test notify: %v", err)
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "发送失败，请检查SendKey是否正确"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "测试消息已发送，请检查微信"})
}

func (s *Server) handleTriggerDailyPush(c *gin.Context) {
	if !s.notifier.Configured() {
		c.JSON(http.StatusOK, gin.H{"success": false, "message": "Server酱未配置"})
		return
	}
	if s.scheduler == nil {
		errorResponse(c, http.StatusServiceUnavailable, "调度器未启动")
		return
	}
	go s.scheduler.RunPushNow()
	okResponse(c, "每日推送已触发，请稍候查看微信")
}
