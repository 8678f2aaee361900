package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sandpen/sandpen-backend/internal/bundle"
	"github.com/sandpen/sandpen-backend/internal/sandbox"
)

func (h *Handler) run(c *gin.Context) {
	var req runReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	s, err := h.manager.Run(c.Request.Context(), req.ProjectID, bundle.Files{
		Markup: req.Content.Markup,
		Styles: req.Content.Styles,
		Script: req.Content.Script,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "preview failed to start"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "session": s})
}

func (h *Handler) log(c *gin.Context) {
	s, ok := h.manager.Get(c.Param("session_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "session not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "log": s.ConsoleLog()})
}

func (h *Handler) events(c *gin.Context) {
	s, ok := h.manager.Get(c.Param("session_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "session not found"})
		return
	}

	if err := sandbox.ServeEvents(c.Writer, c.Request, s); err != nil {
		if errors.Is(err, sandbox.ErrStreamBusy) {
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "events stream already attached"})
			return
		}
		// client disconnects land here; nothing to report back
		c.Abort()
	}
}

func (h *Handler) capture(c *gin.Context) {
	s, ok := h.manager.Get(c.Param("session_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "session not found"})
		return
	}

	dataURL, err := s.CaptureDataURL(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "capture failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "image": dataURL})
}

func (h *Handler) close(c *gin.Context) {
	if !h.manager.Close(c.Param("session_id")) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "session not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
