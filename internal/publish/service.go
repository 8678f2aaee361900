// Package publish coordinates the pipeline that turns a client-
// authored project into a consistent, publicly fetchable artifact set
// plus a catalog record.
package publish

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sandpen/sandpen-backend/internal/blob"
	"github.com/sandpen/sandpen-backend/internal/bundle"
	"github.com/sandpen/sandpen-backend/internal/catalog"
	"github.com/sandpen/sandpen-backend/internal/snapshot"
)

// Catalog is the slice of the catalog repository the pipeline writes
// through.
type Catalog interface {
	FindByProjectID(ctx context.Context, projectID string) (*catalog.Project, error)
	Upsert(ctx context.Context, in catalog.UpsertParams) (*catalog.Project, error)
}

// Invalidator drops derived read caches after a publish lands.
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Service is the publish orchestrator.
type Service struct {
	catalog    Catalog
	blobs      blob.Store
	cache      Invalidator
	publicBase string
	logger     *zap.Logger
}

func NewService(cat Catalog, blobs blob.Store, cache Invalidator, publicBase string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		catalog:    cat,
		blobs:      blobs,
		cache:      cache,
		publicBase: publicBase,
		logger:     logger,
	}
}

// Request is one publish attempt. OwnerID and OwnerEmail come from
// the identity service and are trusted as-is.
type Request struct {
	ProjectID    string
	Name         string
	Content      bundle.Files
	ImageDataURL string
	Tags         []string
	OwnerID      string
	OwnerEmail   string
}

// Publish runs the pipeline: ownership check, content write, snapshot
// render, thumbnail write, snapshot write, catalog upsert. Blob writes
// are independent and unconditional; nothing is rolled back on a later
// failure. The catalog upsert comes last because it is the sole
// externally visible commit point.
func (s *Service) Publish(ctx context.Context, req Request) (*catalog.Project, error) {
	projectID := req.ProjectID
	if projectID == "" {
		id, err := catalog.NewProjectID()
		if err != nil {
			return nil, err
		}
		projectID = id
	}

	existing, err := s.catalog.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("resolve project %s: %w", projectID, err)
	}
	if existing != nil && existing.OwnerID != req.OwnerID {
		s.logger.Warn("publish rejected, ownership conflict",
			zap.String("project_id", projectID),
			zap.String("owner_id", existing.OwnerID),
			zap.String("requested_by", req.OwnerID))
		return nil, ErrConflict
	}

	b := &bundle.Bundle{ProjectID: projectID, Name: req.Name, Content: req.Content}

	encoded, err := bundle.Encode(b)
	if err != nil {
		return nil, err
	}
	if err := s.blobs.Put(ctx, projectID, encoded, blob.PutOptions{
		ContentType:     "application/json",
		ContentEncoding: "gzip",
	}); err != nil {
		return nil, err
	}

	html, err := snapshot.Render(b, snapshot.Options{PublicBase: s.publicBase})
	if err != nil {
		return nil, err
	}

	image := ""
	if existing != nil {
		image = existing.Image
	}
	if req.ImageDataURL != "" {
		thumb, err := decodeImageDataURL(req.ImageDataURL)
		if err != nil {
			return nil, err
		}
		if err := s.blobs.Put(ctx, projectID+".png", thumb, blob.PutOptions{
			ContentType: "image/png",
		}); err != nil {
			return nil, err
		}
		image = fmt.Sprintf("%s/%s.png", s.publicBase, projectID)
	}

	compressed, err := bundle.Compress([]byte(html))
	if err != nil {
		return nil, err
	}
	if err := s.blobs.Put(ctx, projectID+".html", compressed, blob.PutOptions{
		ContentType:     "text/html; charset=utf-8",
		ContentEncoding: "gzip",
	}); err != nil {
		return nil, err
	}

	p, err := s.catalog.Upsert(ctx, catalog.UpsertParams{
		ProjectID:  projectID,
		Name:       req.Name,
		OwnerID:    req.OwnerID,
		OwnerEmail: req.OwnerEmail,
		Image:      image,
		Tags:       req.Tags,
	})
	if err != nil {
		return nil, fmt.Errorf("upsert project %s: %w", projectID, err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}

	s.logger.Info("project published",
		zap.String("project_id", p.ProjectID),
		zap.String("owner_id", p.OwnerID))

	return p, nil
}

// Load fetches a published project for viewing: the catalog record
// plus the decoded bundle. Any blob fetch or decode failure surfaces
// as ErrNotFound; the codec does not tag format versions, so a
// corrupt artifact is indistinguishable from an absent one.
func (s *Service) Load(ctx context.Context, projectID string) (*catalog.Project, *bundle.Bundle, error) {
	p, err := s.catalog.FindByProjectID(ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("find project %s: %w", projectID, err)
	}
	if p == nil {
		return nil, nil, ErrNotFound
	}

	data, err := s.blobs.Get(ctx, projectID)
	if err != nil {
		return nil, nil, ErrNotFound
	}
	b, err := bundle.Decode(data)
	if err != nil {
		return nil, nil, ErrNotFound
	}

	return p, b, nil
}

// ShareURL is the public address of a project's static snapshot.
func (s *Service) ShareURL(projectID string) string {
	return fmt.Sprintf("%s/%s.html", s.publicBase, projectID)
}
