package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/coder/websocket"
)

// ErrStreamBusy reports that a session's event stream already has a
// subscriber attached.
var ErrStreamBusy = errors.New("event stream already has a subscriber")

// ServeEvents streams a session's relay messages to a websocket
// client as JSON frames, in the order the sandboxed document posted
// them. Returns when the session closes or the client goes away. A
// session carries a single relay channel, so only one subscriber may
// be attached at a time; a second one gets ErrStreamBusy before the
// connection is upgraded.
func ServeEvents(w http.ResponseWriter, r *http.Request, s *Session) error {
	if !s.acquireStream() {
		return ErrStreamBusy
	}
	defer s.releaseStream()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusInternalError, "stream aborted")

	ctx := r.Context()
	for {
		select {
		case msg, ok := <-s.Events():
			if !ok {
				return conn.Close(websocket.StatusNormalClosure, "session closed")
			}
			frame, err := json.Marshal(msg)
			if err != nil {
				continue
			}
			if err := conn.Write(ctx, websocket.MessageText, frame); err != nil {
				return err
			}
		case <-ctx.Done():
			conn.Close(websocket.StatusGoingAway, "client gone")
			return context.Cause(ctx)
		}
	}
}
