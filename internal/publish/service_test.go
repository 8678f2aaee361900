package publish

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandpen/sandpen-backend/internal/blob"
	"github.com/sandpen/sandpen-backend/internal/bundle"
	"github.com/sandpen/sandpen-backend/internal/catalog"
)

const publicBase = "https://blobs.example.com"

type fakeCatalog struct {
	records map[string]*catalog.Project
	upserts int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{records: make(map[string]*catalog.Project)}
}

func (f *fakeCatalog) FindByProjectID(_ context.Context, projectID string) (*catalog.Project, error) {
	p, ok := f.records[projectID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeCatalog) Upsert(_ context.Context, in catalog.UpsertParams) (*catalog.Project, error) {
	f.upserts++
	p, ok := f.records[in.ProjectID]
	if !ok {
		p = &catalog.Project{
			ID:         int64(len(f.records) + 1),
			ProjectID:  in.ProjectID,
			OwnerID:    in.OwnerID,
			OwnerEmail: in.OwnerEmail,
		}
		f.records[in.ProjectID] = p
	}
	// mutable fields only; ownership never changes on conflict
	p.Name = in.Name
	p.Image = in.Image
	p.Tags = in.Tags
	cp := *p
	return &cp, nil
}

func pngDataURL(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func testRequest(t *testing.T) Request {
	return Request{
		ProjectID: "abc123",
		Name:      "Test Project",
		Content: bundle.Files{
			Markup: "<h1>Hello World</h1>",
			Styles: "body{background:#fff;}",
			Script: "console.log('Hello');",
		},
		ImageDataURL: pngDataURL(t),
		Tags:         []string{"demo"},
		OwnerID:      "1",
		OwnerEmail:   "one@example.com",
	}
}

func newTestService(cat Catalog, store blob.Store) *Service {
	return NewService(cat, store, nil, publicBase, nil)
}

func gunzip(t *testing.T, data []byte) []byte {
	t.Helper()
	zr, err := gzip.NewReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	require.NoError(t, err)
	return raw
}

func TestPublish_FirstPublish(t *testing.T) {
	cat := newFakeCatalog()
	store := blob.NewMemory()
	svc := newTestService(cat, store)

	p, err := svc.Publish(context.Background(), testRequest(t))
	require.NoError(t, err)

	assert.Equal(t, "abc123", p.ProjectID)
	assert.Equal(t, "Test Project", p.Name)
	assert.Equal(t, "1", p.OwnerID)
	assert.Equal(t, publicBase+"/abc123.png", p.Image)

	// content: compressed JSON
	data, err := store.Get(context.Background(), "abc123")
	require.NoError(t, err)
	b, err := bundle.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "<h1>Hello World</h1>", b.Content.Markup)
	opts, _ := store.Options("abc123")
	assert.Equal(t, "application/json", opts.ContentType)
	assert.Equal(t, "gzip", opts.ContentEncoding)

	// thumbnail: raw PNG
	thumb, err := store.Get(context.Background(), "abc123.png")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(thumb, []byte("\x89PNG")))
	opts, _ = store.Options("abc123.png")
	assert.Equal(t, "image/png", opts.ContentType)
	assert.Empty(t, opts.ContentEncoding)

	// snapshot: compressed standalone HTML
	snap, err := store.Get(context.Background(), "abc123.html")
	require.NoError(t, err)
	html := string(gunzip(t, snap))
	assert.Contains(t, html, "<title>Test Project</title>")
	assert.Contains(t, html, "<h1>Hello World</h1>")
	assert.Contains(t, html, "body{background:#fff;}")
	opts, _ = store.Options("abc123.html")
	assert.Equal(t, "gzip", opts.ContentEncoding)
}

func TestPublish_OwnershipConflict(t *testing.T) {
	cat := newFakeCatalog()
	cat.records["abc123"] = &catalog.Project{ProjectID: "abc123", Name: "Test Project", OwnerID: "1"}
	cat.upserts = 0
	store := blob.NewMemory()
	svc := newTestService(cat, store)

	req := testRequest(t)
	req.OwnerID = "2"
	req.OwnerEmail = "two@example.com"

	_, err := svc.Publish(context.Background(), req)
	require.ErrorIs(t, err, ErrConflict)

	// no storage writes and no catalog mutation
	assert.Zero(t, store.PutCount())
	assert.Zero(t, cat.upserts)
	assert.Equal(t, "1", cat.records["abc123"].OwnerID)
	assert.Equal(t, "Test Project", cat.records["abc123"].Name)
}

func TestPublish_RepublishSameOwner(t *testing.T) {
	cat := newFakeCatalog()
	store := blob.NewMemory()
	svc := newTestService(cat, store)

	req := testRequest(t)
	first, err := svc.Publish(context.Background(), req)
	require.NoError(t, err)

	second, err := svc.Publish(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.ProjectID, second.ProjectID)
	assert.Equal(t, first.OwnerID, second.OwnerID)
	assert.Equal(t, first.Name, second.Name)
	assert.Equal(t, first.Image, second.Image)
	assert.Len(t, cat.records, 1)

	// republish rewrote all three artifacts
	assert.Equal(t, 6, store.PutCount())
	data, err := store.Get(context.Background(), "abc123")
	require.NoError(t, err)
	b, err := bundle.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, req.Content, b.Content)
}

func TestPublish_GeneratesProjectID(t *testing.T) {
	cat := newFakeCatalog()
	store := blob.NewMemory()
	svc := newTestService(cat, store)

	req := testRequest(t)
	req.ProjectID = ""

	p, err := svc.Publish(context.Background(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, p.ProjectID)

	_, err = store.Get(context.Background(), p.ProjectID)
	assert.NoError(t, err)
	_, err = store.Get(context.Background(), p.ProjectID+".html")
	assert.NoError(t, err)
}

func TestPublish_NoImageKeepsExistingReference(t *testing.T) {
	cat := newFakeCatalog()
	store := blob.NewMemory()
	svc := newTestService(cat, store)

	req := testRequest(t)
	_, err := svc.Publish(context.Background(), req)
	require.NoError(t, err)
	before := store.PutCount()

	req.ImageDataURL = ""
	p, err := svc.Publish(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, publicBase+"/abc123.png", p.Image, "image reference survives a republish without a capture")
	assert.Equal(t, before+2, store.PutCount(), "thumbnail write is skipped")
}

func TestPublish_MalformedImageFails(t *testing.T) {
	cat := newFakeCatalog()
	store := blob.NewMemory()
	svc := newTestService(cat, store)

	req := testRequest(t)
	req.ImageDataURL = "data:image/png;base64,not-base64!!!"

	_, err := svc.Publish(context.Background(), req)
	require.Error(t, err)

	// no rollback of the content write, but the catalog was never
	// touched, so no reader surface can observe the orphan
	assert.Equal(t, 1, store.PutCount())
	assert.Zero(t, cat.upserts)
}

func TestPublish_StorageFailure(t *testing.T) {
	cat := newFakeCatalog()
	store := blob.NewMemory()
	store.FailPut = true
	svc := newTestService(cat, store)

	_, err := svc.Publish(context.Background(), testRequest(t))
	require.Error(t, err)

	var serr *blob.StorageError
	assert.ErrorAs(t, err, &serr)
	assert.Zero(t, cat.upserts)
}

func TestLoad_RoundTrip(t *testing.T) {
	cat := newFakeCatalog()
	store := blob.NewMemory()
	svc := newTestService(cat, store)

	req := testRequest(t)
	_, err := svc.Publish(context.Background(), req)
	require.NoError(t, err)

	p, b, err := svc.Load(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Test Project", p.Name)
	assert.Equal(t, req.Content, b.Content)
}

func TestLoad_Missing(t *testing.T) {
	svc := newTestService(newFakeCatalog(), blob.NewMemory())

	_, _, err := svc.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoad_CorruptArtifactReadsAsNotFound(t *testing.T) {
	cat := newFakeCatalog()
	store := blob.NewMemory()
	svc := newTestService(cat, store)

	_, err := svc.Publish(context.Background(), testRequest(t))
	require.NoError(t, err)

	// clobber the stored bundle; decode failure must read as absence
	require.NoError(t, store.Put(context.Background(), "abc123", []byte("{broken"), blob.PutOptions{}))

	_, _, err = svc.Load(context.Background(), "abc123")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecodeImageDataURL(t *testing.T) {
	t.Run("valid png", func(t *testing.T) {
		raw, err := decodeImageDataURL(pngDataURL(t))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(raw, []byte("\x89PNG")))
	})

	t.Run("not a data url", func(t *testing.T) {
		_, err := decodeImageDataURL("https://example.com/x.png")
		assert.Error(t, err)
	})

	t.Run("not base64", func(t *testing.T) {
		_, err := decodeImageDataURL("data:image/png,rawbytes")
		assert.Error(t, err)
	})

	t.Run("base64 of garbage", func(t *testing.T) {
		payload := base64.StdEncoding.EncodeToString([]byte("not an image"))
		_, err := decodeImageDataURL("data:image/png;base64," + payload)
		assert.Error(t, err)
		assert.False(t, errors.Is(err, ErrConflict))
	})
}
