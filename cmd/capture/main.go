// Command capture renders a project bundle headlessly and writes its
// thumbnail PNG. Useful for regenerating thumbnails out of band.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/sandpen/sandpen-backend/config"
	"github.com/sandpen/sandpen-backend/internal/bundle"
	"github.com/sandpen/sandpen-backend/internal/sandbox"
)

func main() {
	var (
		in      = flag.String("file", "", "path to a bundle JSON file")
		out     = flag.String("out", "thumbnail.png", "output PNG path")
		settle  = flag.Duration("settle", 500*time.Millisecond, "wait before capture")
		timeout = flag.Duration("timeout", 30*time.Second, "overall capture timeout")
	)
	flag.Parse()

	if *in == "" {
		log.Fatal("usage: capture -file bundle.json [-out thumbnail.png]")
	}

	raw, err := os.ReadFile(*in)
	if err != nil {
		log.Fatalf("read bundle: %v", err)
	}
	var b bundle.Bundle
	if err := json.Unmarshal(raw, &b); err != nil {
		log.Fatalf("parse bundle: %v", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("build logger: %v", err)
	}

	cfg := config.SandboxConfig{
		Headless:       true,
		ViewportWidth:  1280,
		ViewportHeight: 720,
		CaptureTimeout: *timeout,
	}
	mgr := sandbox.NewManager(cfg, logger)
	defer mgr.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	s, err := mgr.Run(ctx, b.ProjectID, b.Content)
	if err != nil {
		log.Fatalf("run sandbox: %v", err)
	}

	// let the page paint before rasterizing
	time.Sleep(*settle)

	png, err := s.Capture(ctx)
	if err != nil {
		log.Fatalf("capture: %v", err)
	}

	if err := os.WriteFile(*out, png, 0o644); err != nil {
		log.Fatalf("write thumbnail: %v", err)
	}
	log.Printf("wrote %s (%d bytes)", *out, len(png))
}
