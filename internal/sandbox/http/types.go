package http

import "github.com/sandpen/sandpen-backend/internal/sandbox"

// Handler exposes preview sessions over HTTP.
type Handler struct {
	manager *sandbox.Manager
}

func New(manager *sandbox.Manager) *Handler {
	return &Handler{manager: manager}
}

type runReq struct {
	ProjectID string `json:"project_id"`
	Content   struct {
		Markup string `json:"index.html"`
		Styles string `json:"style.css"`
		Script string `json:"script.js"`
	} `json:"content"`
}
