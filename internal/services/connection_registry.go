package services

import (
	"sync"
	"time"

	"github.com/xavier7x/VentasDigitalesWs/internal/domain"
	"github.com/xavier7x/VentasDigitalesWs/pkg/logger"
)

// ConnectionRegistry tracks live connections and, for connections that
// arrived with a user id, a user -> connection-set index supporting
// multi-tab sessions. It owns nothing but its own maps and never triggers
// broadcasts.
type ConnectionRegistry struct {
	conns     map[string]domain.Connection
	info      map[string]*domain.ConnInfo
	userConns map[string]map[string]struct{} // userID -> connection IDs
	mutex     sync.RWMutex
	log       logger.Logger
}

func NewConnectionRegistry(log logger.Logger) *ConnectionRegistry {
	return &ConnectionRegistry{
		conns:     make(map[string]domain.Connection),
		info:      make(map[string]*domain.ConnInfo),
		userConns: make(map[string]map[string]struct{}),
		log:       log,
	}
}

func (cr *ConnectionRegistry) Register(conn domain.Connection) {
	cr.mutex.Lock()
	defer cr.mutex.Unlock()

	id := conn.ID()
	if _, exists := cr.conns[id]; exists {
		// IDs are transport-issued and unique; a duplicate is a programmer
		// error. Overwrite rather than corrupt state.
		cr.log.Warn("Duplicate connection id registered", "connection_id", id)
	}

	cr.conns[id] = conn
	cr.info[id] = &domain.ConnInfo{
		ID:           id,
		UserID:       conn.UserID(),
		LastActivity: time.Now(),
	}

	if userID := conn.UserID(); userID != "" {
		if cr.userConns[userID] == nil {
			cr.userConns[userID] = make(map[string]struct{})
		}
		cr.userConns[userID][id] = struct{}{}
	}

	cr.log.Info("Connection registered", "connection_id", id, "user_id", conn.UserID())
}

// Unregister removes the connection and purges its user-index entry the
// moment that entry's set becomes empty. Unknown ids are a no-op.
func (cr *ConnectionRegistry) Unregister(connID string) bool {
	cr.mutex.Lock()
	defer cr.mutex.Unlock()

	info, exists := cr.info[connID]
	if !exists {
		return false
	}

	delete(cr.conns, connID)
	delete(cr.info, connID)

	if info.UserID != "" {
		if set, ok := cr.userConns[info.UserID]; ok {
			delete(set, connID)
			if len(set) == 0 {
				delete(cr.userConns, info.UserID)
			}
		}
	}

	cr.log.Info("Connection unregistered", "connection_id", connID, "user_id", info.UserID)
	return true
}

// Rebind swaps the transport handle of a live logical connection. Used on
// reconnection-with-recovery: the session keeps its id, the socket changes.
func (cr *ConnectionRegistry) Rebind(conn domain.Connection) bool {
	cr.mutex.Lock()
	defer cr.mutex.Unlock()

	info, exists := cr.info[conn.ID()]
	if !exists {
		return false
	}
	cr.conns[conn.ID()] = conn
	info.LastActivity = time.Now()
	return true
}

func (cr *ConnectionRegistry) Get(connID string) (domain.Connection, bool) {
	cr.mutex.RLock()
	defer cr.mutex.RUnlock()

	conn, exists := cr.conns[connID]
	return conn, exists
}

// Touch records client activity on the connection.
func (cr *ConnectionRegistry) Touch(connID string) {
	cr.mutex.Lock()
	defer cr.mutex.Unlock()

	if info, exists := cr.info[connID]; exists {
		info.LastActivity = time.Now()
	}
}

func (cr *ConnectionRegistry) LastActivity(connID string) (time.Time, bool) {
	cr.mutex.RLock()
	defer cr.mutex.RUnlock()

	info, exists := cr.info[connID]
	if !exists {
		return time.Time{}, false
	}
	return info.LastActivity, true
}

// ConnectionsForUser returns a snapshot of the user's open connection ids.
func (cr *ConnectionRegistry) ConnectionsForUser(userID string) []string {
	cr.mutex.RLock()
	defer cr.mutex.RUnlock()

	set, exists := cr.userConns[userID]
	if !exists {
		return nil
	}

	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

func (cr *ConnectionRegistry) Count() int {
	cr.mutex.RLock()
	defer cr.mutex.RUnlock()

	return len(cr.conns)
}

func (cr *ConnectionRegistry) UserCount() int {
	cr.mutex.RLock()
	defer cr.mutex.RUnlock()

	return len(cr.userConns)
}
