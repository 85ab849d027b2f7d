package session

import (
	"codocs/internal/models"
)

// Relay fans room events out to every connection currently in a room.
type Relay struct {
	registry *Registry
}

func NewRelay(registry *Registry) *Relay {
	return &Relay{registry: registry}
}

// AnnounceMembership pushes the full current roster to every member of the
// room, including whichever connection triggered the change.
func (r *Relay) AnnounceMembership(roomID string) {
	clients, members := r.registry.Snapshot(roomID)
	frame := models.WSFrame{
		Type: models.FrameMembershipChanged,
		Data: models.MembershipChanged{Members: members},
	}
	for _, c := range clients {
		c.Send(frame)
	}
}

// RelayEdit pushes an edit to every member of the room. The sender is not
// suppressed; clients drop their own echo by comparing OriginID.
func (r *Relay) RelayEdit(roomID string, edit models.EditRelayed) {
	clients, _ := r.registry.Snapshot(roomID)
	frame := models.WSFrame{Type: models.FrameEditRelayed, Data: edit}
	for _, c := range clients {
		c.Send(frame)
	}
}
