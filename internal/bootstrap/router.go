package bootstrap

import (
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	httpapi "github.com/sandpen/sandpen-backend/internal/api/http"
	"github.com/sandpen/sandpen-backend/internal/api/http/middleware"
	authmw "github.com/sandpen/sandpen-backend/internal/auth/middleware"
	"github.com/sandpen/sandpen-backend/internal/catalog"
	"github.com/sandpen/sandpen-backend/internal/publish"
	publishhttp "github.com/sandpen/sandpen-backend/internal/publish/http"
	"github.com/sandpen/sandpen-backend/internal/sandbox"
	sandboxhttp "github.com/sandpen/sandpen-backend/internal/sandbox/http"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	DB          *pgxpool.Pool
	Cache       *redis.Client
	Publish     *publish.Service
	Sandbox     *sandbox.Manager
	AuthClient  *fbauth.Client // nil enables the dev header identity
	Logger      *zap.Logger
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.Default())
	r.Use(middleware.RequestID(dep.Logger))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Cache)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")

	identity := authmw.DevIdentity()
	if dep.AuthClient != nil {
		identity = authmw.RequireIdentity(dep.AuthClient)
	}

	repo := catalog.NewRepo(dep.DB)
	var topCache *catalog.TopCache
	if dep.Cache != nil {
		topCache = catalog.NewTopCache(dep.Cache)
	}

	projectsPublic := api.Group("/projects")
	projectsAuthed := api.Group("/projects")
	projectsAuthed.Use(identity)
	projectsAuthed.Use(middleware.RateLimit(rate.Limit(1), 5))
	publishhttp.New(dep.Publish, repo, topCache).Register(projectsPublic, projectsAuthed)

	sandboxGroup := api.Group("/sandbox")
	sandboxGroup.Use(identity)
	sandboxGroup.Use(middleware.RateLimit(rate.Limit(2), 10))
	sandboxhttp.New(dep.Sandbox).Register(sandboxGroup)

	return r
}
