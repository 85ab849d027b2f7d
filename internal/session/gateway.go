package session

import (
	"context"
	"errors"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"codocs/internal/metrics"
	"codocs/internal/models"
	"codocs/internal/repositories"
)

// DocumentStore is the document lookup the gateway needs to admit a join.
type DocumentStore interface {
	GetByID(ctx context.Context, id uint) (*models.Document, error)
}

// State of a connection's session.
type State int

const (
	StateAnonymous State = iota
	StateInRoom
	StateDisconnected
)

// Gateway admits connections into rooms and drives the per-connection state
// machine. It owns no room state itself; the registry does.
type Gateway struct {
	registry *Registry
	relay    *Relay
	docs     DocumentStore
	log      *zap.Logger
}

func NewGateway(registry *Registry, relay *Relay, docs DocumentStore, log *zap.Logger) *Gateway {
	return &Gateway{registry: registry, relay: relay, docs: docs, log: log}
}

// Session is the state machine for one connection:
// Anonymous -> InRoom -> Disconnected.
type Session struct {
	gw     *Gateway
	client *Client

	mu     sync.Mutex
	state  State
	roomID string
}

func (g *Gateway) NewSession(c *Client) *Session {
	return &Session{gw: g, client: c}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HandleJoin processes a join request. The document must exist; a failed
// lookup rejects the join without touching the registry or broadcasting
// anything. On success the joiner gets joinAccepted and the stored content,
// then the whole room (joiner included) gets the new roster. A connection
// already in a room leaves it first; the old room is told.
func (s *Session) HandleJoin(ctx context.Context, req models.JoinRequest) {
	s.mu.Lock()
	if s.state == StateDisconnected {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	docID, err := strconv.ParseUint(req.DocumentID, 10, 64)
	if err != nil {
		s.reject("No ID exists")
		return
	}
	doc, err := s.gw.docs.GetByID(ctx, uint(docID))
	if errors.Is(err, repositories.ErrDocumentNotFound) {
		s.reject("No ID exists")
		return
	}
	if err != nil {
		s.gw.log.Warn("document lookup failed",
			zap.String("documentId", req.DocumentID),
			zap.Error(err))
		s.reject("document lookup failed")
		return
	}

	roomID := req.DocumentID
	identity := models.Member{First: req.First, Last: req.Last}

	s.mu.Lock()
	// The connection may have disconnected while the lookup was in flight;
	// registering now would leak a membership nothing can ever remove.
	if s.state == StateDisconnected {
		s.mu.Unlock()
		return
	}
	prev := s.gw.registry.Join(roomID, s.client, identity)
	s.state = StateInRoom
	s.roomID = roomID
	s.mu.Unlock()

	if prev != "" && prev != roomID {
		s.gw.relay.AnnounceMembership(prev)
	}

	s.client.Send(models.WSFrame{Type: models.FrameJoinAccepted, Data: models.JoinAccepted{DocumentID: roomID}})
	s.client.Send(models.WSFrame{Type: models.FrameContentSnapshot, Data: models.ContentSnapshot{Content: doc.Content}})
	s.gw.relay.AnnounceMembership(roomID)

	metrics.JoinAccepted()
	metrics.SetOpenRooms(s.gw.registry.RoomCount())
}

func (s *Session) reject(reason string) {
	s.client.Send(models.WSFrame{Type: models.FrameJoinRejected, Data: models.JoinRejected{Reason: reason}})
	metrics.JoinRejected()
}

// HandleEdit relays an edit to the session's current room. Edits from
// connections that never joined a room are dropped.
func (s *Session) HandleEdit(req models.EditRequest) {
	s.mu.Lock()
	inRoom := s.state == StateInRoom
	roomID := s.roomID
	s.mu.Unlock()
	if !inRoom {
		return
	}

	s.gw.relay.RelayEdit(roomID, models.EditRelayed{
		DocumentID: req.DocumentID,
		Content:    req.Content,
		OriginID:   req.OriginID,
	})
	metrics.EditRelayed()
}

// Disconnect moves the session to its terminal state, removes it from its
// room and tells the remaining members. Safe to call more than once, and
// safe to race with an in-flight join.
func (s *Session) Disconnect() {
	s.mu.Lock()
	if s.state == StateDisconnected {
		s.mu.Unlock()
		return
	}
	wasInRoom := s.state == StateInRoom
	s.state = StateDisconnected
	s.roomID = ""
	s.mu.Unlock()

	if !wasInRoom {
		return
	}
	if roomID, ok := s.gw.registry.Leave(s.client.ID); ok {
		s.gw.relay.AnnounceMembership(roomID)
	}
	metrics.SetOpenRooms(s.gw.registry.RoomCount())
}
