package sandbox

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMessage(t *testing.T) {
	t.Run("console", func(t *testing.T) {
		m, ok := ParseMessage(`{"type":"console","message":"hi there"}`)
		require.True(t, ok)
		assert.Equal(t, TypeConsole, m.Type)
		assert.Equal(t, "hi there", m.Message)
	})

	t.Run("pointer", func(t *testing.T) {
		m, ok := ParseMessage(`{"type":"mousemove","event":{"clientX":10,"clientY":20}}`)
		require.True(t, ok)
		require.NotNil(t, m.Event)
		assert.Equal(t, 10.0, m.Event.ClientX)
		assert.Equal(t, 20.0, m.Event.ClientY)
	})

	t.Run("pointer without event is dropped", func(t *testing.T) {
		_, ok := ParseMessage(`{"type":"mouseup"}`)
		assert.False(t, ok)
	})

	t.Run("unknown type is dropped", func(t *testing.T) {
		_, ok := ParseMessage(`{"type":"navigate","message":"evil"}`)
		assert.False(t, ok)
	})

	t.Run("malformed payload is dropped", func(t *testing.T) {
		_, ok := ParseMessage(`{"type":`)
		assert.False(t, ok)
	})
}

func TestTranslatePointer(t *testing.T) {
	got := TranslatePointer(PointerEvent{ClientX: 10, ClientY: 20}, Bounds{X: 300, Y: 150})
	assert.Equal(t, PointerEvent{ClientX: 310, ClientY: 170}, got)
}

func TestSession_ConsoleLogPreservesOrder(t *testing.T) {
	s := &Session{events: make(chan Message, eventBuffer)}

	for i := 0; i < 50; i++ {
		s.handleRaw(fmt.Sprintf(`{"type":"console","message":"line %d"}`, i))
	}

	log := s.ConsoleLog()
	require.Len(t, log, 50)
	for i, line := range log {
		assert.Equal(t, fmt.Sprintf("line %d", i), line)
	}

	// The event stream preserves the same order.
	for i := 0; i < 50; i++ {
		msg := <-s.Events()
		assert.Equal(t, fmt.Sprintf("line %d", i), msg.Message)
	}
}

func TestSession_UnknownMessagesNotLogged(t *testing.T) {
	s := &Session{events: make(chan Message, eventBuffer)}

	s.handleRaw(`{"type":"console","message":"kept"}`)
	s.handleRaw(`{"type":"storage","message":"ignored"}`)
	s.handleRaw(`not json`)

	assert.Equal(t, []string{"kept"}, s.ConsoleLog())
	assert.Len(t, s.events, 1)
}

func TestSession_PointerEventsNotInConsoleLog(t *testing.T) {
	s := &Session{events: make(chan Message, eventBuffer)}

	s.handleRaw(`{"type":"mousemove","event":{"clientX":1,"clientY":2}}`)
	s.handleRaw(`{"type":"console","message":"only me"}`)

	assert.Equal(t, []string{"only me"}, s.ConsoleLog())
	assert.Len(t, s.events, 2)
}
