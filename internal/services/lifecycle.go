package services

import (
	"sync"
	"time"

	"github.com/xavier7x/VentasDigitalesWs/internal/domain"
	"github.com/xavier7x/VentasDigitalesWs/pkg/logger"
)

// Lifecycle drives every connection through
// connecting -> open -> (recovering -> open)* -> closing -> closed and keeps
// the two registries consistent across each transition. Cleanup on
// disconnect is unconditional: once a connection reaches closed, no room
// holds it and its user-index entry is gone. Operations on an unknown or
// closed connection are no-ops.
type Lifecycle struct {
	conns *ConnectionRegistry
	rooms *RoomRegistry
	log   logger.Logger

	recoveryGrace     time.Duration
	inactivityTimeout time.Duration // zero disables the idle deadline

	mutex       sync.Mutex
	states      map[string]domain.ConnState
	idleTimers  map[string]*time.Timer
	graceTimers map[string]*time.Timer
}

func NewLifecycle(conns *ConnectionRegistry, rooms *RoomRegistry,
	recoveryGrace, inactivityTimeout time.Duration, log logger.Logger) *Lifecycle {
	return &Lifecycle{
		conns:             conns,
		rooms:             rooms,
		log:               log,
		recoveryGrace:     recoveryGrace,
		inactivityTimeout: inactivityTimeout,
		states:            make(map[string]domain.ConnState),
		idleTimers:        make(map[string]*time.Timer),
		graceTimers:       make(map[string]*time.Timer),
	}
}

// Connect registers the connection and opens it.
func (l *Lifecycle) Connect(conn domain.Connection) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	id := conn.ID()
	l.states[id] = domain.StateConnecting
	l.conns.Register(conn)
	l.states[id] = domain.StateOpen
	l.armIdleLocked(id)

	l.log.Info("Connection open", "connection_id", id, "user_id", conn.UserID())
}

// Join adds the connection to the room. Idempotent; ignored unless the
// connection is open. The coordinator mutex is held across the registry
// mutation so a timer-driven disconnect cannot interleave and leave a
// stale member behind.
func (l *Lifecycle) Join(connID, room string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.states[connID] != domain.StateOpen {
		l.log.Warn("Join ignored for non-open connection", "connection_id", connID, "room", room)
		return
	}
	l.armIdleLocked(connID)
	l.conns.Touch(connID)
	l.rooms.Join(room, connID)
	l.log.Info("Joined room", "room", room, "connection_id", connID)
}

// Disconnect runs the full close path: leave every room (deleting any left
// empty), unregister, drop timers. Safe to call more than once.
func (l *Lifecycle) Disconnect(connID string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if _, exists := l.states[connID]; !exists {
		return
	}
	l.states[connID] = domain.StateClosing
	l.stopTimersLocked(connID)

	for _, room := range l.rooms.RoomsContaining(connID) {
		l.rooms.Leave(room, connID)
	}
	l.conns.Unregister(connID)

	delete(l.states, connID)
	l.log.Info("Connection closed", "connection_id", connID)
}

// Suspend marks a transport drop that may still recover. Membership is kept;
// if Resume does not arrive within the grace window the connection is closed
// exactly as on a disconnect.
func (l *Lifecycle) Suspend(connID string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.states[connID] != domain.StateOpen {
		return
	}
	l.states[connID] = domain.StateRecovering
	l.stopIdleLocked(connID)

	l.graceTimers[connID] = time.AfterFunc(l.recoveryGrace, func() {
		l.expire(connID, domain.StateRecovering, "Recovery grace expired")
	})

	l.log.Info("Connection recovering", "connection_id", connID, "grace", l.recoveryGrace)
}

// Resume returns a recovering connection to open. Room membership was never
// dropped, so no rejoin happens.
func (l *Lifecycle) Resume(connID string) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.states[connID] != domain.StateRecovering {
		return
	}
	if timer, ok := l.graceTimers[connID]; ok {
		timer.Stop()
		delete(l.graceTimers, connID)
	}
	l.states[connID] = domain.StateOpen
	l.armIdleLocked(connID)

	l.log.Info("Connection resumed", "connection_id", connID)
}

// Activity refreshes the inactivity deadline. Any inbound frame counts.
func (l *Lifecycle) Activity(connID string) {
	l.mutex.Lock()
	if l.states[connID] != domain.StateOpen {
		l.mutex.Unlock()
		return
	}
	l.armIdleLocked(connID)
	l.mutex.Unlock()

	l.conns.Touch(connID)
}

func (l *Lifecycle) IsOpen(connID string) bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	return l.states[connID] == domain.StateOpen
}

func (l *Lifecycle) State(connID string) (domain.ConnState, bool) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	state, exists := l.states[connID]
	return state, exists
}

func (l *Lifecycle) expire(connID string, expected domain.ConnState, reason string) {
	l.mutex.Lock()
	current, exists := l.states[connID]
	l.mutex.Unlock()

	if !exists || current != expected {
		return
	}
	l.log.Info(reason, "connection_id", connID)
	l.Disconnect(connID)
}

func (l *Lifecycle) armIdleLocked(connID string) {
	if l.inactivityTimeout <= 0 {
		return
	}
	l.stopIdleLocked(connID)
	l.idleTimers[connID] = time.AfterFunc(l.inactivityTimeout, func() {
		l.expire(connID, domain.StateOpen, "Inactivity timeout")
	})
}

func (l *Lifecycle) stopIdleLocked(connID string) {
	if timer, ok := l.idleTimers[connID]; ok {
		timer.Stop()
		delete(l.idleTimers, connID)
	}
}

func (l *Lifecycle) stopTimersLocked(connID string) {
	l.stopIdleLocked(connID)
	if timer, ok := l.graceTimers[connID]; ok {
		timer.Stop()
		delete(l.graceTimers, connID)
	}
}
