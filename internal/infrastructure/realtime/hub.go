package realtime

import (
	"sync"
)

// Hub tracks websocket sessions and their room memberships. A room is the
// subscription unit for one conversation (or a well-known broadcast topic
// such as the admin polls feed). The hub keeps one active connection per
// user and a reverse index so detaching a session leaves all of its rooms.
type Hub struct {
	mu           sync.RWMutex
	sessions     map[string]*Connection            // sessionID -> connection
	userSessions map[string]string                 // userID -> sessionID
	rooms        map[string]map[string]*Connection // roomID -> sessionID -> connection
	sessionRooms map[string]map[string]struct{}    // sessionID -> set of roomIDs
}

// NewHub constructs an initialized Hub.
func NewHub() *Hub {
	return &Hub{
		sessions:     make(map[string]*Connection),
		userSessions: make(map[string]string),
		rooms:        make(map[string]map[string]*Connection),
		sessionRooms: make(map[string]map[string]struct{}),
	}
}

// Attach registers a connection for the given user. A previous session for
// the same user is removed and closed after the swap, so at most one socket
// per user is ever active.
func (h *Hub) Attach(conn *Connection) {
	var previous *Connection

	h.mu.Lock()
	if existingID, ok := h.userSessions[conn.UserID]; ok {
		if existing := h.sessions[existingID]; existing != nil {
			previous = existing
			h.detachLocked(existingID)
		}
	}

	h.sessions[conn.ID] = conn
	h.userSessions[conn.UserID] = conn.ID
	h.sessionRooms[conn.ID] = make(map[string]struct{})
	h.mu.Unlock()

	conn.Start()

	if previous != nil {
		previous.Close(4001, "session replaced")
	}
}

// Detach removes a connection and its room memberships if still tracked.
func (h *Hub) Detach(conn *Connection) {
	h.mu.Lock()
	h.detachLocked(conn.ID)
	h.mu.Unlock()
}

// Join adds the connection to the room.
func (h *Hub) Join(roomID string, conn *Connection) {
	h.mu.Lock()
	if _, ok := h.sessions[conn.ID]; !ok {
		h.mu.Unlock()
		return
	}

	room := h.rooms[roomID]
	if room == nil {
		room = make(map[string]*Connection)
		h.rooms[roomID] = room
	}
	room[conn.ID] = conn

	memberships := h.sessionRooms[conn.ID]
	if memberships == nil {
		memberships = make(map[string]struct{})
		h.sessionRooms[conn.ID] = memberships
	}
	memberships[roomID] = struct{}{}
	h.mu.Unlock()
}

// Leave removes the connection from the room.
func (h *Hub) Leave(roomID string, conn *Connection) {
	h.mu.Lock()
	h.leaveLocked(roomID, conn.ID)
	h.mu.Unlock()
}

// Broadcast writes payload to every member of the room, the sender included.
// Clients rely on the echo to append their own messages, so no member is
// excluded. Returns the number of successful deliveries.
func (h *Hub) Broadcast(roomID string, payload []byte) int {
	h.mu.RLock()
	room := h.rooms[roomID]
	if len(room) == 0 {
		h.mu.RUnlock()
		return 0
	}

	delivered := 0
	for _, conn := range room {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	h.mu.RUnlock()
	return delivered
}

// RoomSize reports the current number of members in the room.
func (h *Hub) RoomSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[roomID])
}

// Close terminates all tracked connections and clears hub state.
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := make([]*Connection, 0, len(h.sessions))
	for _, conn := range h.sessions {
		sessions = append(sessions, conn)
	}
	h.sessions = make(map[string]*Connection)
	h.userSessions = make(map[string]string)
	h.rooms = make(map[string]map[string]*Connection)
	h.sessionRooms = make(map[string]map[string]struct{})
	h.mu.Unlock()

	for _, conn := range sessions {
		conn.Close(1001, "hub shutdown")
	}
}

func (h *Hub) detachLocked(sessionID string) {
	conn, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	delete(h.sessions, sessionID)

	if current, ok := h.userSessions[conn.UserID]; ok && current == sessionID {
		delete(h.userSessions, conn.UserID)
	}

	for roomID := range h.sessionRooms[sessionID] {
		h.leaveLocked(roomID, sessionID)
	}
	delete(h.sessionRooms, sessionID)
}

func (h *Hub) leaveLocked(roomID string, sessionID string) {
	if sessionID == "" {
		return
	}
	room := h.rooms[roomID]
	if room == nil {
		return
	}
	delete(room, sessionID)
	if len(room) == 0 {
		delete(h.rooms, roomID)
	}
	if memberships, ok := h.sessionRooms[sessionID]; ok {
		delete(memberships, roomID)
		if len(memberships) == 0 {
			delete(h.sessionRooms, sessionID)
		}
	}
}
