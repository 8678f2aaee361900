package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authmw "github.com/sandpen/sandpen-backend/internal/auth/middleware"
	"github.com/sandpen/sandpen-backend/internal/blob"
	"github.com/sandpen/sandpen-backend/internal/catalog"
	"github.com/sandpen/sandpen-backend/internal/publish"
)

type stubCatalog struct {
	records map[string]*catalog.Project
}

func (s *stubCatalog) FindByProjectID(_ context.Context, id string) (*catalog.Project, error) {
	if p, ok := s.records[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (s *stubCatalog) Upsert(_ context.Context, in catalog.UpsertParams) (*catalog.Project, error) {
	p, ok := s.records[in.ProjectID]
	if !ok {
		p = &catalog.Project{ProjectID: in.ProjectID, OwnerID: in.OwnerID, OwnerEmail: in.OwnerEmail}
		s.records[in.ProjectID] = p
	}
	p.Name = in.Name
	p.Image = in.Image
	p.Tags = in.Tags
	cp := *p
	return &cp, nil
}

func newTestRouter(cat publish.Catalog) *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := publish.NewService(cat, blob.NewMemory(), nil, "https://blobs.example.com", nil)
	h := New(svc, nil, nil)

	r := gin.New()
	public := r.Group("/api/v1/projects")
	authed := r.Group("/api/v1/projects")
	authed.Use(authmw.DevIdentity())
	h.Register(public, authed)
	return r
}

func pngDataURL(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func publishBody(t *testing.T, projectID string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"project_id": projectID,
		"name":       "Test Project",
		"content": map[string]string{
			"index.html": "<h1>Hello World</h1>",
			"style.css":  "body{background:#fff;}",
			"script.js":  "console.log('Hello');",
		},
		"image": pngDataURL(t),
		"tags":  []string{"demo"},
	})
	require.NoError(t, err)
	return body
}

func TestPublishEndpoint_Success(t *testing.T) {
	r := newTestRouter(&stubCatalog{records: map[string]*catalog.Project{}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/publish", bytes.NewReader(publishBody(t, "abc123")))
	req.Header.Set("X-User-Id", "1")
	req.Header.Set("X-User-Email", "one@example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		OK      bool            `json:"ok"`
		URL     string          `json:"url"`
		Project catalog.Project `json:"project"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "https://blobs.example.com/abc123.html", resp.URL)
	assert.Equal(t, "abc123", resp.Project.ProjectID)
	assert.Equal(t, "1", resp.Project.OwnerID)
}

func TestPublishEndpoint_Conflict(t *testing.T) {
	cat := &stubCatalog{records: map[string]*catalog.Project{
		"abc123": {ProjectID: "abc123", Name: "Test Project", OwnerID: "1"},
	}}
	r := newTestRouter(cat)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/publish", bytes.NewReader(publishBody(t, "abc123")))
	req.Header.Set("X-User-Id", "2")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "1", cat.records["abc123"].OwnerID)
}

func TestPublishEndpoint_InvalidBody(t *testing.T) {
	r := newTestRouter(&stubCatalog{records: map[string]*catalog.Project{}})

	for name, body := range map[string]string{
		"not json":     `{`,
		"missing name": `{"project_id":"p1","content":{}}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/projects/publish", bytes.NewReader([]byte(body)))
			req.Header.Set("X-User-Id", "1")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestGetEndpoint_NotFound(t *testing.T) {
	r := newTestRouter(&stubCatalog{records: map[string]*catalog.Project{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/projects/missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetEndpoint_AfterPublish(t *testing.T) {
	cat := &stubCatalog{records: map[string]*catalog.Project{}}
	r := newTestRouter(cat)

	pub := httptest.NewRequest(http.MethodPost, "/api/v1/projects/publish", bytes.NewReader(publishBody(t, "abc123")))
	pub.Header.Set("X-User-Id", "1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, pub)
	require.Equal(t, http.StatusOK, w.Code)

	get := httptest.NewRequest(http.MethodGet, "/api/v1/projects/abc123", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, get)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OK      bool `json:"ok"`
		Content struct {
			Markup string `json:"index.html"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "<h1>Hello World</h1>", resp.Content.Markup)
}
