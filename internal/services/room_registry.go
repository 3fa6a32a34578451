package services

import (
	"sync"

	"github.com/xavier7x/VentasDigitalesWs/pkg/logger"
)

// RoomRegistry maps room names to member connection ids. Rooms are created
// lazily on first join and deleted the moment their member set empties; an
// empty room never persists. The reverse index keeps membership symmetric:
// a connection's room list always mirrors the rooms' member sets.
type RoomRegistry struct {
	rooms map[string]map[string]struct{} // room -> connection IDs
	index map[string]map[string]struct{} // connection ID -> rooms
	mutex sync.RWMutex
	log   logger.Logger
}

func NewRoomRegistry(log logger.Logger) *RoomRegistry {
	return &RoomRegistry{
		rooms: make(map[string]map[string]struct{}),
		index: make(map[string]map[string]struct{}),
		log:   log,
	}
}

// Join adds the connection to the room, creating the room if absent.
// Joining a room the connection already belongs to is a no-op.
func (rr *RoomRegistry) Join(room, connID string) {
	rr.mutex.Lock()
	defer rr.mutex.Unlock()

	if rr.rooms[room] == nil {
		rr.rooms[room] = make(map[string]struct{})
		rr.log.Info("Room created", "room", room)
	}
	rr.rooms[room][connID] = struct{}{}

	if rr.index[connID] == nil {
		rr.index[connID] = make(map[string]struct{})
	}
	rr.index[connID][room] = struct{}{}
}

// Leave removes the connection from the room and reports whether the room
// emptied and was deleted. Leaving a room the connection is not a member of
// is a no-op.
func (rr *RoomRegistry) Leave(room, connID string) bool {
	rr.mutex.Lock()
	defer rr.mutex.Unlock()

	members, exists := rr.rooms[room]
	if !exists {
		return false
	}

	delete(members, connID)

	if set, ok := rr.index[connID]; ok {
		delete(set, room)
		if len(set) == 0 {
			delete(rr.index, connID)
		}
	}

	if len(members) == 0 {
		delete(rr.rooms, room)
		rr.log.Info("Room deleted", "room", room)
		return true
	}
	return false
}

// Members returns an immutable snapshot of the room's member ids, never the
// live set. Broadcast iterates the snapshot so a concurrent leave cannot
// tear the read.
func (rr *RoomRegistry) Members(room string) []string {
	rr.mutex.RLock()
	defer rr.mutex.RUnlock()

	members, exists := rr.rooms[room]
	if !exists {
		return nil
	}

	ids := make([]string, 0, len(members))
	for id := range members {
		ids = append(ids, id)
	}
	return ids
}

// RoomsContaining returns a snapshot of the rooms the connection belongs to.
func (rr *RoomRegistry) RoomsContaining(connID string) []string {
	rr.mutex.RLock()
	defer rr.mutex.RUnlock()

	set, exists := rr.index[connID]
	if !exists {
		return nil
	}

	rooms := make([]string, 0, len(set))
	for room := range set {
		rooms = append(rooms, room)
	}
	return rooms
}

// Snapshot returns a point-in-time copy of the full room -> members map for
// the diagnostic endpoint.
func (rr *RoomRegistry) Snapshot() map[string][]string {
	rr.mutex.RLock()
	defer rr.mutex.RUnlock()

	snapshot := make(map[string][]string, len(rr.rooms))
	for room, members := range rr.rooms {
		ids := make([]string, 0, len(members))
		for id := range members {
			ids = append(ids, id)
		}
		snapshot[room] = ids
	}
	return snapshot
}

func (rr *RoomRegistry) RoomCount() int {
	rr.mutex.RLock()
	defer rr.mutex.RUnlock()

	return len(rr.rooms)
}
