package sandbox

import "encoding/json"

// Relay message types the host understands. Anything else posted by
// the sandboxed document is dropped.
const (
	TypeConsole   = "console"
	TypeMouseMove = "mousemove"
	TypeMouseUp   = "mouseup"
)

// PointerEvent carries coordinates relative to the sandbox document.
type PointerEvent struct {
	ClientX float64 `json:"clientX"`
	ClientY float64 `json:"clientY"`
}

// Message is one structured relay message posted by the sandboxed
// document to the host.
type Message struct {
	Type    string        `json:"type"`
	Message string        `json:"message,omitempty"`
	Event   *PointerEvent `json:"event,omitempty"`
}

// ParseMessage decodes a raw relay payload. Unknown or malformed
// messages return ok=false and are ignored by the host.
func ParseMessage(raw string) (Message, bool) {
	var m Message
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return Message{}, false
	}

	switch m.Type {
	case TypeConsole:
		return m, true
	case TypeMouseMove, TypeMouseUp:
		if m.Event == nil {
			return Message{}, false
		}
		return m, true
	default:
		return Message{}, false
	}
}

// Bounds is the sandbox's on-screen rectangle in host coordinates.
type Bounds struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TranslatePointer maps a sandbox-relative pointer event into host
// coordinates by offsetting with the sandbox's bounding rectangle, so
// drags that cross the isolation boundary keep working.
func TranslatePointer(ev PointerEvent, b Bounds) PointerEvent {
	return PointerEvent{
		ClientX: ev.ClientX + b.X,
		ClientY: ev.ClientY + b.Y,
	}
}
