package main

import (
	"context"
	"log"

	fbauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"

	"github.com/sandpen/sandpen-backend/config"
	"github.com/sandpen/sandpen-backend/internal/auth"
	"github.com/sandpen/sandpen-backend/internal/bootstrap"
	"github.com/sandpen/sandpen-backend/internal/catalog"
	"github.com/sandpen/sandpen-backend/internal/publish"
	"github.com/sandpen/sandpen-backend/internal/sandbox"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := bootstrap.NewLogger(cfg.App.Environment)
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}
	defer logger.Sync()

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	db, err := bootstrap.OpenDB(ctx, &cfg.Database)
	if err != nil {
		logger.Fatal("open db", zap.Error(err))
	}
	defer db.Close()

	cache, err := bootstrap.OpenRedis(ctx, &cfg.Redis)
	if err != nil {
		logger.Warn("redis unavailable, listing cache disabled", zap.Error(err))
		cache = nil
	}

	blobs, err := bootstrap.OpenBlob(ctx, &cfg.Blob)
	if err != nil {
		logger.Fatal("open blob store", zap.Error(err))
	}

	var authClient *fbauth.Client
	if cfg.Firebase.CredentialsPath != "" {
		authClient, err = auth.InitializeFirebase(&cfg.Firebase)
		if err != nil {
			logger.Fatal("init firebase", zap.Error(err))
		}
	} else {
		logger.Warn("no firebase credentials, using dev header identity")
	}

	repo := catalog.NewRepo(db)
	var topCache *catalog.TopCache
	if cache != nil {
		topCache = catalog.NewTopCache(cache)
	}

	var invalidator publish.Invalidator
	if topCache != nil {
		invalidator = topCache
	}
	publishSvc := publish.NewService(repo, blobs, invalidator, cfg.Blob.PublicBase(), logger)

	sandboxMgr := sandbox.NewManager(cfg.Sandbox, logger)
	defer sandboxMgr.Shutdown()

	router := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: "sandpen-backend",
		Version:     cfg.App.Version,
		DB:          db,
		Cache:       cache,
		Publish:     publishSvc,
		Sandbox:     sandboxMgr,
		AuthClient:  authClient,
		Logger:      logger,
	})

	logger.Info("listening", zap.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
