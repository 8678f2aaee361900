package http

import "github.com/gin-gonic/gin"

// Register attaches sandbox session routes to the given group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/runs", h.run)
	rg.GET("/runs/:session_id/log", h.log)
	rg.GET("/runs/:session_id/events", h.events)
	rg.POST("/runs/:session_id/capture", h.capture)
	rg.DELETE("/runs/:session_id", h.close)
}
