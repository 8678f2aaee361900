package sandbox

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
)

// eventBuffer bounds the per-session relay queue. Delivery stays FIFO;
// messages posted while the queue is full are dropped rather than
// blocking the sandboxed document's callback.
const eventBuffer = 256

// Session is one live preview: a composed document running in an
// isolated page, plus the relay channel and console log produced by
// it. A session exists until its document is replaced by a new run or
// the host closes it; nothing about it is persisted.
type Session struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	CreatedAt time.Time `json:"created_at"`

	page           *rod.Page
	stopExpose     func() error
	events         chan Message
	captureTimeout time.Duration

	mu         sync.Mutex
	log        []string
	lastActive time.Time
	streaming  bool
	closed     bool
}

// Events returns the ordered stream of relay messages. The channel is
// closed when the session is.
func (s *Session) Events() <-chan Message {
	return s.events
}

// ConsoleLog returns a copy of the append-only console log.
func (s *Session) ConsoleLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastActive = time.Now()
	out := make([]string, len(s.log))
	copy(out, s.log)
	return out
}

// handleRaw ingests one raw payload posted by the sandboxed document.
// The non-blocking send happens under the mutex so it can never race
// close() closing the channel.
func (s *Session) handleRaw(raw string) {
	msg, ok := ParseMessage(raw)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.lastActive = time.Now()
	if msg.Type == TypeConsole {
		s.log = append(s.log, msg.Message)
	}

	select {
	case s.events <- msg:
	default:
	}
}

// lastActivity reports when the session last saw a relay message or a
// host API call.
func (s *Session) lastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastActive.IsZero() {
		return s.CreatedAt
	}
	return s.lastActive
}

// acquireStream claims the single event-stream subscriber slot.
func (s *Session) acquireStream() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.streaming {
		return false
	}
	s.streaming = true
	return true
}

func (s *Session) releaseStream() {
	s.mu.Lock()
	s.streaming = false
	s.mu.Unlock()
}

// captureContext bounds a capture by the configured timeout so a hung
// renderer cannot pin the page and its caller indefinitely.
func (s *Session) captureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.captureTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.captureTimeout)
}

// Capture rasterizes the current rendered document into a PNG.
func (s *Session) Capture(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()

	ctx, cancel := s.captureContext(ctx)
	defer cancel()

	data, err := s.page.Context(ctx).Screenshot(false, nil)
	if err != nil {
		return nil, fmt.Errorf("capture session %s: %w", s.ID, err)
	}
	return data, nil
}

// CaptureDataURL captures a thumbnail and encodes it the way the
// publish flow expects its image payload.
func (s *Session) CaptureDataURL(ctx context.Context) (string, error) {
	data, err := s.Capture(ctx)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}

func (s *Session) close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.events)
	s.mu.Unlock()

	if s.stopExpose != nil {
		_ = s.stopExpose()
	}
	if s.page != nil {
		_ = s.page.Close()
	}
}
