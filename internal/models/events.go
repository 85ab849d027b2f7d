package models

// WSFrame is the envelope for every realtime message in either direction.
type WSFrame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Frame types carried in WSFrame.Type.
const (
	FrameJoin              = "join"
	FrameJoinAccepted      = "joinAccepted"
	FrameJoinRejected      = "joinRejected"
	FrameContentSnapshot   = "contentSnapshot"
	FrameMembershipChanged = "membershipChanged"
	FrameEdit              = "edit"
	FrameEditRelayed       = "editRelayed"
	FrameError             = "error"
)

// JoinRequest asks to enter the room for a document.
type JoinRequest struct {
	DocumentID string `json:"documentId"`
	First      string `json:"first"`
	Last       string `json:"last"`
}

type JoinAccepted struct {
	DocumentID string `json:"documentId"`
}

type JoinRejected struct {
	Reason string `json:"reason"`
}

// ContentSnapshot carries the stored document content, sent once on join.
type ContentSnapshot struct {
	Content string `json:"content"`
}

// Member is the display identity of one room participant.
type Member struct {
	First string `json:"first"`
	Last  string `json:"last"`
}

// MembershipChanged carries the full roster of a room; pushed to every
// member whenever someone joins or leaves.
type MembershipChanged struct {
	Members []Member `json:"members"`
}

// EditRequest is a live content change from one participant.
type EditRequest struct {
	DocumentID string `json:"documentId"`
	Content    string `json:"content"`
	OriginID   string `json:"originId"`
}

// EditRelayed is an edit fanned out to a room. The originator receives its
// own edit back and filters it client-side by OriginID.
type EditRelayed struct {
	DocumentID string `json:"documentId"`
	Content    string `json:"content"`
	OriginID   string `json:"originId"`
}
