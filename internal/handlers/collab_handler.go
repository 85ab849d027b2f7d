package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"codocs/internal/metrics"
	"codocs/internal/models"
	"codocs/internal/session"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// CollabHandler owns the websocket entry point into the realtime core.
type CollabHandler struct {
	Gateway *session.Gateway
	Log     *zap.Logger
}

func NewCollabHandler(gateway *session.Gateway, log *zap.Logger) *CollabHandler {
	return &CollabHandler{Gateway: gateway, Log: log}
}

// ServeWS upgrades the connection and runs its read loop until the peer
// goes away. Every inbound frame is handled to completion before the next
// is read, so a single connection cannot interleave its own events.
func (h *CollabHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	client := session.NewClient(uuid.NewString(), conn)
	sess := h.Gateway.NewSession(client)
	metrics.ConnectionOpened()
	defer metrics.ConnectionClosed()
	defer sess.Disconnect()

	h.Log.Info("client connected", zap.String("connectionId", client.ID))

	// The request context is on a timeout clock; the connection outlives it.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		var frame models.WSFrame
		if err := conn.ReadJSON(&frame); err != nil {
			h.Log.Info("client disconnected", zap.String("connectionId", client.ID))
			return
		}

		switch frame.Type {
		case models.FrameJoin:
			var req models.JoinRequest
			remarshal(frame.Data, &req)
			sess.HandleJoin(ctx, req)

		case models.FrameEdit:
			var req models.EditRequest
			remarshal(frame.Data, &req)
			sess.HandleEdit(req)

		default:
			client.Send(models.WSFrame{Type: models.FrameError, Data: "unknown_type"})
		}
	}
}
