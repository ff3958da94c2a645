package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// testConn is one live websocket pair: the server side wrapped in a
// Connection, plus a channel of text frames observed by the client side.
type testConn struct {
	conn *Connection
	recv chan []byte
}

func newTestConn(t *testing.T, userID string) *testConn {
	t.Helper()

	upgrader := websocket.Upgrader{}
	conns := make(chan *Connection, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		conns <- NewConnection(userID, ws)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	recv := make(chan []byte, 16)
	go func() {
		for {
			_, msg, err := client.ReadMessage()
			if err != nil {
				close(recv)
				return
			}
			recv <- msg
		}
	}()

	return &testConn{conn: <-conns, recv: recv}
}

func (tc *testConn) expect(t *testing.T, want string) {
	t.Helper()
	select {
	case msg, ok := <-tc.recv:
		if !ok {
			t.Fatal("connection closed before message arrived")
		}
		if string(msg) != want {
			t.Fatalf("received %q, want %q", msg, want)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
}

func (tc *testConn) expectNothing(t *testing.T) {
	t.Helper()
	select {
	case msg, ok := <-tc.recv:
		if ok {
			t.Fatalf("unexpected message %q", msg)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroadcastReachesAllRoomMembersIncludingSender(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	alice := newTestConn(t, "alice")
	bob := newTestConn(t, "bob")
	carol := newTestConn(t, "carol")

	for _, tc := range []*testConn{alice, bob, carol} {
		hub.Attach(tc.conn)
	}
	hub.Join("conv1", alice.conn)
	hub.Join("conv1", bob.conn)
	// carol stays out of the room.

	n := hub.Broadcast("conv1", []byte(`{"type":"newMessage"}`))
	if n != 2 {
		t.Fatalf("delivered = %d, want 2", n)
	}

	alice.expect(t, `{"type":"newMessage"}`)
	bob.expect(t, `{"type":"newMessage"}`)
	carol.expectNothing(t)
}

func TestLeaveStopsDelivery(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	alice := newTestConn(t, "alice")
	hub.Attach(alice.conn)
	hub.Join("conv1", alice.conn)

	if hub.RoomSize("conv1") != 1 {
		t.Fatalf("room size = %d, want 1", hub.RoomSize("conv1"))
	}
	hub.Leave("conv1", alice.conn)
	if hub.RoomSize("conv1") != 0 {
		t.Fatalf("room size = %d after leave, want 0", hub.RoomSize("conv1"))
	}
	if n := hub.Broadcast("conv1", []byte("x")); n != 0 {
		t.Fatalf("delivered = %d, want 0", n)
	}
}

func TestDetachLeavesAllRooms(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	alice := newTestConn(t, "alice")
	hub.Attach(alice.conn)
	hub.Join("conv1", alice.conn)
	hub.Join("conv2", alice.conn)

	hub.Detach(alice.conn)

	if hub.RoomSize("conv1") != 0 || hub.RoomSize("conv2") != 0 {
		t.Fatalf("rooms not emptied: conv1=%d conv2=%d", hub.RoomSize("conv1"), hub.RoomSize("conv2"))
	}
}

func TestSecondSessionReplacesFirst(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	first := newTestConn(t, "alice")
	hub.Attach(first.conn)
	hub.Join("conv1", first.conn)

	second := newTestConn(t, "alice")
	hub.Attach(second.conn)
	hub.Join("conv1", second.conn)

	// The first socket is closed and out of every room; only the second
	// session receives broadcasts.
	if hub.RoomSize("conv1") != 1 {
		t.Fatalf("room size = %d, want 1", hub.RoomSize("conv1"))
	}
	hub.Broadcast("conv1", []byte("hello"))
	second.expect(t, "hello")

	select {
	case _, ok := <-first.recv:
		if ok {
			t.Fatal("replaced session should not receive broadcasts")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("replaced session was not closed")
	}
}

func TestJoinIgnoresUnattachedConnection(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	stray := newTestConn(t, "alice")
	hub.Join("conv1", stray.conn)
	if hub.RoomSize("conv1") != 0 {
		t.Fatalf("room size = %d, want 0 for unattached connection", hub.RoomSize("conv1"))
	}
}
