package session

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"codocs/internal/models"
	"codocs/internal/repositories"
)

type frameCapture struct {
	frames []models.WSFrame
}

func newFrameCapture() *frameCapture { return &frameCapture{} }

func (c *frameCapture) hook(frame models.WSFrame) { c.frames = append(c.frames, frame) }

func (c *frameCapture) list() []models.WSFrame {
	out := make([]models.WSFrame, len(c.frames))
	copy(out, c.frames)
	return out
}

func (c *frameCapture) ofType(frameType string) []models.WSFrame {
	var out []models.WSFrame
	for _, f := range c.frames {
		if f.Type == frameType {
			out = append(out, f)
		}
	}
	return out
}

func (c *frameCapture) last(t *testing.T, frameType string) models.WSFrame {
	t.Helper()
	matches := c.ofType(frameType)
	if len(matches) == 0 {
		t.Fatalf("no %q frame captured, got %#v", frameType, c.frames)
	}
	return matches[len(matches)-1]
}

type fakeDocStore struct {
	docs map[uint]*models.Document
	gate chan struct{} // when set, GetByID blocks until the gate closes
	err  error
}

func (f *fakeDocStore) GetByID(ctx context.Context, id uint) (*models.Document, error) {
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return nil, f.err
	}
	doc, ok := f.docs[id]
	if !ok {
		return nil, repositories.ErrDocumentNotFound
	}
	return doc, nil
}

func newTestGateway(store *fakeDocStore) (*Gateway, *Registry) {
	registry := NewRegistry()
	relay := NewRelay(registry)
	return NewGateway(registry, relay, store, zap.NewNop()), registry
}

func newHookedClient(id string) (*Client, *frameCapture) {
	c := NewClient(id, nil)
	capture := newFrameCapture()
	c.SetSendHook(capture.hook)
	return c, capture
}

func rosterOf(t *testing.T, frame models.WSFrame) []models.Member {
	t.Helper()
	data, ok := frame.Data.(models.MembershipChanged)
	if !ok {
		t.Fatalf("expected MembershipChanged payload, got %#v", frame.Data)
	}
	return data.Members
}

func TestClientSendWithHook(t *testing.T) {
	client, capture := newHookedClient("c1")
	client.Send(models.WSFrame{Type: "ping"})

	got := capture.list()
	if len(got) != 1 || got[0].Type != "ping" {
		t.Fatalf("expected frame captured, got %#v", got)
	}
}

func TestClientSendWithoutConnDoesNotPanic(t *testing.T) {
	client := NewClient("c1", nil)
	client.Send(models.WSFrame{Type: "noop"})
}

func TestRegistryJoinAndLeave(t *testing.T) {
	reg := NewRegistry()
	c1, _ := newHookedClient("a")
	c2, _ := newHookedClient("b")

	reg.Join("42", c1, models.Member{First: "Ada", Last: "Lovelace"})
	reg.Join("42", c2, models.Member{First: "Bob", Last: "Barker"})

	members := reg.MembersOf("42")
	want := []models.Member{{First: "Ada", Last: "Lovelace"}, {First: "Bob", Last: "Barker"}}
	if !reflect.DeepEqual(members, want) {
		t.Fatalf("unexpected members: %#v", members)
	}

	if room, ok := reg.RoomOf("a"); !ok || room != "42" {
		t.Fatalf("expected a in room 42, got %q ok=%v", room, ok)
	}

	if room, ok := reg.Leave("a"); !ok || room != "42" {
		t.Fatalf("expected leave from 42, got %q ok=%v", room, ok)
	}
	if got := reg.MembersOf("42"); len(got) != 1 || got[0].First != "Bob" {
		t.Fatalf("unexpected members after leave: %#v", got)
	}
}

func TestRegistryLeaveUnknownConnection(t *testing.T) {
	reg := NewRegistry()
	if _, ok := reg.Leave("ghost"); ok {
		t.Fatal("expected leave of unknown connection to report ok=false")
	}
}

func TestRegistryEmptyRoomIsRemoved(t *testing.T) {
	reg := NewRegistry()
	c1, _ := newHookedClient("a")

	reg.Join("42", c1, models.Member{First: "Ada"})
	if reg.RoomCount() != 1 {
		t.Fatalf("expected 1 room, got %d", reg.RoomCount())
	}
	reg.Leave("a")
	if reg.RoomCount() != 0 {
		t.Fatalf("expected empty registry, got %d rooms", reg.RoomCount())
	}
	if members := reg.MembersOf("42"); len(members) != 0 {
		t.Fatalf("expected no members, got %#v", members)
	}
}

func TestRegistryRejoinMovesBetweenRooms(t *testing.T) {
	reg := NewRegistry()
	c1, _ := newHookedClient("a")

	if prev := reg.Join("42", c1, models.Member{First: "Ada"}); prev != "" {
		t.Fatalf("expected no previous room, got %q", prev)
	}
	if prev := reg.Join("7", c1, models.Member{First: "Ada"}); prev != "42" {
		t.Fatalf("expected previous room 42, got %q", prev)
	}

	if members := reg.MembersOf("42"); len(members) != 0 {
		t.Fatalf("connection still in old room: %#v", members)
	}
	if members := reg.MembersOf("7"); len(members) != 1 {
		t.Fatalf("connection missing from new room: %#v", members)
	}
	if reg.RoomCount() != 1 {
		t.Fatalf("old empty room not collected, %d rooms", reg.RoomCount())
	}
}

func TestRegistryMembersSortedByConnectionID(t *testing.T) {
	reg := NewRegistry()
	for _, id := range []string{"c", "a", "b"} {
		client, _ := newHookedClient(id)
		reg.Join("1", client, models.Member{First: id})
	}

	members := reg.MembersOf("1")
	want := []models.Member{{First: "a"}, {First: "b"}, {First: "c"}}
	if !reflect.DeepEqual(members, want) {
		t.Fatalf("expected members sorted by connection id, got %#v", members)
	}
}

func TestGatewayJoinNonexistentDocument(t *testing.T) {
	store := &fakeDocStore{docs: map[uint]*models.Document{}}
	gw, reg := newTestGateway(store)

	client, capture := newHookedClient("c")
	sess := gw.NewSession(client)
	sess.HandleJoin(context.Background(), models.JoinRequest{DocumentID: "999", First: "Carl"})

	if sess.State() != StateAnonymous {
		t.Fatalf("expected session to stay anonymous, got %v", sess.State())
	}
	if reg.RoomCount() != 0 {
		t.Fatalf("rejected join must not create a room, got %d", reg.RoomCount())
	}
	frames := capture.list()
	if len(frames) != 1 || frames[0].Type != models.FrameJoinRejected {
		t.Fatalf("expected a single joinRejected frame, got %#v", frames)
	}
}

func TestGatewayJoinMalformedDocumentID(t *testing.T) {
	store := &fakeDocStore{docs: map[uint]*models.Document{}}
	gw, reg := newTestGateway(store)

	client, capture := newHookedClient("c")
	sess := gw.NewSession(client)
	sess.HandleJoin(context.Background(), models.JoinRequest{DocumentID: "not-a-number"})

	if len(capture.ofType(models.FrameJoinRejected)) != 1 {
		t.Fatalf("expected joinRejected, got %#v", capture.list())
	}
	if reg.RoomCount() != 0 {
		t.Fatal("registry mutated by malformed join")
	}
}

func TestGatewayJoinStoreFailure(t *testing.T) {
	store := &fakeDocStore{err: fmt.Errorf("connection refused")}
	gw, reg := newTestGateway(store)

	client, capture := newHookedClient("c")
	sess := gw.NewSession(client)
	sess.HandleJoin(context.Background(), models.JoinRequest{DocumentID: "42"})

	if sess.State() != StateAnonymous {
		t.Fatalf("expected anonymous after store failure, got %v", sess.State())
	}
	if reg.RoomCount() != 0 {
		t.Fatal("registry mutated by failed join")
	}
	if len(capture.ofType(models.FrameJoinRejected)) != 1 {
		t.Fatalf("expected joinRejected, got %#v", capture.list())
	}
}

func TestGatewayJoinAndLeaveScenario(t *testing.T) {
	store := &fakeDocStore{docs: map[uint]*models.Document{
		42: {Content: "shared draft"},
	}}
	gw, reg := newTestGateway(store)

	clientA, capA := newHookedClient("a")
	sessA := gw.NewSession(clientA)
	sessA.HandleJoin(context.Background(), models.JoinRequest{DocumentID: "42", First: "Ada", Last: "Lovelace"})

	if sessA.State() != StateInRoom {
		t.Fatalf("expected A in room, got %v", sessA.State())
	}
	if frame := capA.last(t, models.FrameContentSnapshot); frame.Data.(models.ContentSnapshot).Content != "shared draft" {
		t.Fatalf("unexpected snapshot: %#v", frame.Data)
	}
	if roster := rosterOf(t, capA.last(t, models.FrameMembershipChanged)); len(roster) != 1 {
		t.Fatalf("expected roster of 1 after A joins, got %#v", roster)
	}

	clientB, capB := newHookedClient("b")
	sessB := gw.NewSession(clientB)
	sessB.HandleJoin(context.Background(), models.JoinRequest{DocumentID: "42", First: "Bob", Last: "Barker"})

	wantRoster := []models.Member{{First: "Ada", Last: "Lovelace"}, {First: "Bob", Last: "Barker"}}
	for name, capture := range map[string]*frameCapture{"A": capA, "B": capB} {
		if roster := rosterOf(t, capture.last(t, models.FrameMembershipChanged)); !reflect.DeepEqual(roster, wantRoster) {
			t.Fatalf("client %s saw roster %#v, want %#v", name, roster, wantRoster)
		}
	}

	sessB.Disconnect()
	if roster := rosterOf(t, capA.last(t, models.FrameMembershipChanged)); !reflect.DeepEqual(roster, wantRoster[:1]) {
		t.Fatalf("expected A alone after B leaves, got %#v", roster)
	}
	if reg.RoomCount() != 1 {
		t.Fatalf("room should survive while A remains, got %d", reg.RoomCount())
	}

	sessA.Disconnect()
	if reg.RoomCount() != 0 {
		t.Fatalf("room should be removed once empty, got %d", reg.RoomCount())
	}
}

func TestGatewayEditSelfEcho(t *testing.T) {
	store := &fakeDocStore{docs: map[uint]*models.Document{42: {Content: ""}}}
	gw, _ := newTestGateway(store)

	clientA, capA := newHookedClient("a")
	sessA := gw.NewSession(clientA)
	sessA.HandleJoin(context.Background(), models.JoinRequest{DocumentID: "42", First: "Ada"})

	clientB, capB := newHookedClient("b")
	sessB := gw.NewSession(clientB)
	sessB.HandleJoin(context.Background(), models.JoinRequest{DocumentID: "42", First: "Bob"})

	sessA.HandleEdit(models.EditRequest{DocumentID: "42", Content: "hello", OriginID: "a"})

	for name, capture := range map[string]*frameCapture{"A": capA, "B": capB} {
		frame := capture.last(t, models.FrameEditRelayed)
		edit := frame.Data.(models.EditRelayed)
		if edit.Content != "hello" || edit.OriginID != "a" {
			t.Fatalf("client %s got unexpected edit %#v", name, edit)
		}
	}
}

func TestGatewayEditFromAnonymousDropped(t *testing.T) {
	store := &fakeDocStore{docs: map[uint]*models.Document{}}
	gw, _ := newTestGateway(store)

	client, capture := newHookedClient("c")
	sess := gw.NewSession(client)
	sess.HandleEdit(models.EditRequest{DocumentID: "42", Content: "ignored", OriginID: "c"})

	if frames := capture.list(); len(frames) != 0 {
		t.Fatalf("anonymous edit must not produce frames, got %#v", frames)
	}
}

func TestGatewaySwitchingRoomsLeavesOldRoom(t *testing.T) {
	store := &fakeDocStore{docs: map[uint]*models.Document{
		1: {Content: "one"},
		2: {Content: "two"},
	}}
	gw, reg := newTestGateway(store)

	stayer, capStayer := newHookedClient("s")
	gw.NewSession(stayer).HandleJoin(context.Background(), models.JoinRequest{DocumentID: "1", First: "Stay"})

	mover, _ := newHookedClient("m")
	sess := gw.NewSession(mover)
	sess.HandleJoin(context.Background(), models.JoinRequest{DocumentID: "1", First: "Move"})
	sess.HandleJoin(context.Background(), models.JoinRequest{DocumentID: "2", First: "Move"})

	if room, ok := reg.RoomOf("m"); !ok || room != "2" {
		t.Fatalf("expected mover in room 2, got %q ok=%v", room, ok)
	}
	if members := reg.MembersOf("1"); len(members) != 1 {
		t.Fatalf("mover still counted in old room: %#v", members)
	}
	// The old room was told the mover left.
	if roster := rosterOf(t, capStayer.last(t, models.FrameMembershipChanged)); len(roster) != 1 || roster[0].First != "Stay" {
		t.Fatalf("old room roster not updated: %#v", roster)
	}
}

func TestGatewayDisconnectDuringJoinLeavesNothingBehind(t *testing.T) {
	gate := make(chan struct{})
	store := &fakeDocStore{docs: map[uint]*models.Document{42: {Content: "x"}}, gate: gate}
	gw, reg := newTestGateway(store)

	client, _ := newHookedClient("c")
	sess := gw.NewSession(client)

	done := make(chan struct{})
	go func() {
		sess.HandleJoin(context.Background(), models.JoinRequest{DocumentID: "42", First: "Carl"})
		close(done)
	}()

	// Disconnect while the document lookup is still in flight, then let the
	// lookup complete.
	sess.Disconnect()
	close(gate)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("join did not finish")
	}

	if reg.RoomCount() != 0 {
		t.Fatalf("late join left an orphaned membership, %d rooms", reg.RoomCount())
	}
	if sess.State() != StateDisconnected {
		t.Fatalf("expected disconnected state, got %v", sess.State())
	}
}

func TestGatewayDisconnectIsIdempotent(t *testing.T) {
	store := &fakeDocStore{docs: map[uint]*models.Document{42: {Content: ""}}}
	gw, reg := newTestGateway(store)

	client, _ := newHookedClient("c")
	sess := gw.NewSession(client)
	sess.HandleJoin(context.Background(), models.JoinRequest{DocumentID: "42", First: "Carl"})

	sess.Disconnect()
	sess.Disconnect()

	if reg.RoomCount() != 0 {
		t.Fatalf("expected empty registry, got %d rooms", reg.RoomCount())
	}
}

func TestGatewayAnonymousDisconnectBroadcastsNothing(t *testing.T) {
	store := &fakeDocStore{docs: map[uint]*models.Document{42: {Content: ""}}}
	gw, _ := newTestGateway(store)

	// An established member to observe any stray broadcasts.
	observer, capObserver := newHookedClient("o")
	gw.NewSession(observer).HandleJoin(context.Background(), models.JoinRequest{DocumentID: "42", First: "Obs"})
	before := len(capObserver.list())

	client, _ := newHookedClient("c")
	gw.NewSession(client).Disconnect()

	if after := len(capObserver.list()); after != before {
		t.Fatalf("anonymous disconnect must not broadcast, frames %d -> %d", before, after)
	}
}
