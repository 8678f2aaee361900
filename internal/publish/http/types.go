package http

import (
	"github.com/sandpen/sandpen-backend/internal/catalog"
	"github.com/sandpen/sandpen-backend/internal/publish"
)

// Handler bundles the dependencies for the project publish and read
// endpoints.
type Handler struct {
	svc   *publish.Service
	repo  *catalog.Repo
	cache *catalog.TopCache
}

func New(svc *publish.Service, repo *catalog.Repo, cache *catalog.TopCache) *Handler {
	return &Handler{svc: svc, repo: repo, cache: cache}
}

type contentBody struct {
	Markup string `json:"index.html"`
	Styles string `json:"style.css"`
	Script string `json:"script.js"`
}

type publishReq struct {
	ProjectID string      `json:"project_id"`
	Name      string      `json:"name"`
	Content   contentBody `json:"content"`
	Image     string      `json:"image"`
	Tags      []string    `json:"tags"`
}
