package session

import (
	"sort"
	"sync"

	"codocs/internal/models"
)

type member struct {
	client   *Client
	identity models.Member
}

// Registry is the single source of truth for which connections occupy which
// document room. A connection is in at most one room; joining a new room
// removes it from the old one. Rooms are created on first join and removed
// when the last member leaves.
type Registry struct {
	mu     sync.Mutex
	rooms  map[string]map[string]member // room id -> connection id -> member
	byConn map[string]string            // connection id -> room id
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[string]map[string]member),
		byConn: make(map[string]string),
	}
}

// Join adds c to roomID and returns the room it previously occupied, or ""
// if it was not in any. Joining the room it is already in is a no-op apart
// from refreshing the identity.
func (reg *Registry) Join(roomID string, c *Client, identity models.Member) (prev string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	prev = reg.byConn[c.ID]
	if prev != "" && prev != roomID {
		reg.removeLocked(prev, c.ID)
	}

	room, ok := reg.rooms[roomID]
	if !ok {
		room = make(map[string]member)
		reg.rooms[roomID] = room
	}
	room[c.ID] = member{client: c, identity: identity}
	reg.byConn[c.ID] = roomID
	return prev
}

// Leave removes the connection from whichever room holds it. It reports the
// room left, or ok=false if the connection was not a member anywhere.
func (reg *Registry) Leave(connID string) (roomID string, ok bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	roomID, ok = reg.byConn[connID]
	if !ok {
		return "", false
	}
	reg.removeLocked(roomID, connID)
	return roomID, true
}

func (reg *Registry) removeLocked(roomID, connID string) {
	if room, ok := reg.rooms[roomID]; ok {
		delete(room, connID)
		if len(room) == 0 {
			delete(reg.rooms, roomID)
		}
	}
	delete(reg.byConn, connID)
}

// MembersOf returns the identities in a room, sorted by connection id so
// the order is reproducible.
func (reg *Registry) MembersOf(roomID string) []models.Member {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.membersLocked(roomID)
}

func (reg *Registry) membersLocked(roomID string) []models.Member {
	room := reg.rooms[roomID]
	ids := make([]string, 0, len(room))
	for id := range room {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	members := make([]models.Member, 0, len(ids))
	for _, id := range ids {
		members = append(members, room[id].identity)
	}
	return members
}

// Snapshot returns the clients and identities of a room in one atomic read,
// so a broadcast never pairs a roster with a mismatched recipient list.
func (reg *Registry) Snapshot(roomID string) ([]*Client, []models.Member) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room := reg.rooms[roomID]
	clients := make([]*Client, 0, len(room))
	for _, m := range room {
		clients = append(clients, m.client)
	}
	return clients, reg.membersLocked(roomID)
}

// RoomOf reports which room holds the connection, if any.
func (reg *Registry) RoomOf(connID string) (string, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	roomID, ok := reg.byConn[connID]
	return roomID, ok
}

// RoomCount returns the number of rooms with at least one member.
func (reg *Registry) RoomCount() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}
