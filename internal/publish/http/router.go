package http

import "github.com/gin-gonic/gin"

// Register attaches project routes. The public group serves readers
// without credentials; the authed group carries the identity
// middleware and the publish rate limit.
func (h *Handler) Register(public, authed *gin.RouterGroup) {
	public.GET("/best", h.best)
	public.GET("/:project_id", h.get)

	authed.POST("/publish", h.publish)
	authed.GET("/mine", h.mine)
}
