package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/tabdeck/pkg/app"
)

// StreamMessageType is the type of a message on /ws.
type StreamMessageType string

const (
	StreamSnapshot StreamMessageType = "snapshot"
)

// StreamMessage is sent to websocket clients.
type StreamMessage struct {
	Type  StreamMessageType `json:"type"`
	State app.Snapshot      `json:"state"`
}

// handleStream pushes a snapshot to the client on every change. Client
// messages are read and discarded so that close frames are noticed.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	sub, err := s.host.Subscribe(r.Context())
	if err != nil {
		s.logger.Warn("stream subscribe failed", "error", err)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "unavailable"),
			time.Now().Add(time.Second))
		return
	}
	defer s.host.Unsubscribe(context.Background(), sub.ID)

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case snap, ok := <-sub.C:
			if !ok {
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(time.Second))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := conn.WriteJSON(StreamMessage{Type: StreamSnapshot, State: snap}); err != nil {
				s.logger.Debug("stream write failed", "subscriber", sub.ID, "error", err)
				return
			}
		case <-gone:
			return
		}
	}
}
