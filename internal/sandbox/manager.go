// Package sandbox runs untrusted project code in isolated headless
// browser pages and bridges console output and pointer events back to
// the host over structured relay messages.
package sandbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/google/uuid"
	"github.com/ysmood/gson"
	"go.uber.org/zap"

	"github.com/sandpen/sandpen-backend/config"
	"github.com/sandpen/sandpen-backend/internal/bundle"
)

// reapInterval is how often idle sessions are swept.
const reapInterval = time.Minute

// Manager owns the shared browser and the live preview sessions.
type Manager struct {
	cfg    config.SandboxConfig
	logger *zap.Logger

	done     chan struct{}
	stopOnce sync.Once

	mu       sync.Mutex
	browser  *rod.Browser
	sessions map[string]*Session
}

func NewManager(cfg config.SandboxConfig, logger *zap.Logger) *Manager {
	m := &Manager{
		cfg:      cfg,
		logger:   logger,
		done:     make(chan struct{}),
		sessions: make(map[string]*Session),
	}
	if cfg.SessionTTL > 0 {
		go m.reapLoop()
	}
	return m
}

// reapLoop sweeps sessions whose clients went away without closing
// their run, so abandoned pages do not pile up in the browser.
func (m *Manager) reapLoop() {
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()
	for {
		select {
		case now := <-ticker.C:
			m.reapIdle(now)
		case <-m.done:
			return
		}
	}
}

// reapIdle closes every session idle for longer than the session TTL.
func (m *Manager) reapIdle(now time.Time) {
	if m.cfg.SessionTTL <= 0 {
		return
	}
	cutoff := now.Add(-m.cfg.SessionTTL)

	m.mu.Lock()
	var expired []*Session
	for id, s := range m.sessions {
		if s.lastActivity().Before(cutoff) {
			delete(m.sessions, id)
			expired = append(expired, s)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.close()
		m.logger.Info("idle sandbox session reaped",
			zap.String("session_id", s.ID),
			zap.String("project_id", s.ProjectID))
	}
}

// ensureStarted launches the browser on first use and verifies a
// previously launched one is still alive.
func (m *Manager) ensureStarted() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.browser != nil {
		if _, err := m.browser.Version(); err == nil {
			return nil
		}
		m.logger.Warn("stale browser connection, relaunching")
		_ = m.browser.Close()
		m.browser = nil
	}

	url, err := launcher.New().Headless(m.cfg.Headless).Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect browser: %w", err)
	}

	m.browser = browser
	return nil
}

// Run composes the preview document for the given files and starts it
// in a fresh isolated page. Each run is a new session; replacing a
// preview means closing the old session and running a new one.
func (m *Manager) Run(ctx context.Context, projectID string, f bundle.Files) (*Session, error) {
	if err := m.ensureStarted(); err != nil {
		return nil, err
	}

	incognito, err := m.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("incognito context: %w", err)
	}

	page, err := incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             m.cfg.ViewportWidth,
		Height:            m.cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	s := &Session{
		ID:             uuid.New().String(),
		ProjectID:      projectID,
		CreatedAt:      time.Now().UTC(),
		page:           page,
		events:         make(chan Message, eventBuffer),
		captureTimeout: m.cfg.CaptureTimeout,
	}

	// The binding must exist before the document's scripts run so the
	// harness can reach it from its first statement.
	stop, err := page.Expose(hostBinding, func(g gson.JSON) (interface{}, error) {
		s.handleRaw(g.Str())
		return nil, nil
	})
	if err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("expose relay binding: %w", err)
	}
	s.stopExpose = stop

	if err := page.Context(ctx).SetDocumentContent(ComposeDocument(projectID, f)); err != nil {
		_ = stop()
		_ = page.Close()
		return nil, fmt.Errorf("load document: %w", err)
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("sandbox run started",
		zap.String("session_id", s.ID),
		zap.String("project_id", projectID))

	return s, nil
}

// Get looks up a live session.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close destroys a session and its page. Reports whether it existed.
func (m *Manager) Close(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return false
	}
	s.close()
	m.logger.Info("sandbox session closed", zap.String("session_id", id))
	return true
}

// Shutdown closes every session and the shared browser.
func (m *Manager) Shutdown() error {
	m.stopOnce.Do(func() { close(m.done) })

	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	browser := m.browser
	m.browser = nil
	m.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	if browser != nil {
		return browser.Close()
	}
	return nil
}
