package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sandpen/sandpen-backend/internal/auth"
	"github.com/sandpen/sandpen-backend/internal/bundle"
	"github.com/sandpen/sandpen-backend/internal/publish"
)

const defaultTopLimit = 20

func (h *Handler) publish(c *gin.Context) {
	var req publishReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	ownerID, ownerEmail := auth.Identity(c)
	if ownerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthorized"})
		return
	}

	p, err := h.svc.Publish(c.Request.Context(), publish.Request{
		ProjectID: strings.TrimSpace(req.ProjectID),
		Name:      strings.TrimSpace(req.Name),
		Content: bundle.Files{
			Markup: req.Content.Markup,
			Styles: req.Content.Styles,
			Script: req.Content.Script,
		},
		ImageDataURL: req.Image,
		Tags:         req.Tags,
		OwnerID:      ownerID,
		OwnerEmail:   ownerEmail,
	})
	if err != nil {
		if errors.Is(err, publish.ErrConflict) {
			c.JSON(http.StatusConflict, gin.H{"ok": false, "error": "project id belongs to another user"})
			return
		}
		// step-level detail stays in the logs
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "publish failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p, "url": h.svc.ShareURL(p.ProjectID)})
}

func (h *Handler) get(c *gin.Context) {
	projectID := c.Param("project_id")

	p, b, err := h.svc.Load(c.Request.Context(), projectID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p, "content": b.Content})
}

func (h *Handler) best(c *gin.Context) {
	limit := defaultTopLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid limit"})
			return
		}
		limit = n
	}

	ctx := c.Request.Context()
	if h.cache != nil {
		if projects, ok := h.cache.Get(ctx, limit); ok {
			c.JSON(http.StatusOK, gin.H{"ok": true, "projects": projects})
			return
		}
	}

	projects, err := h.repo.ListTop(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if h.cache != nil {
		h.cache.Set(ctx, limit, projects)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": projects})
}

func (h *Handler) mine(c *gin.Context) {
	ownerID, _ := auth.Identity(c)
	if ownerID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "unauthorized"})
		return
	}

	projects, err := h.repo.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": projects})
}
