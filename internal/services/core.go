package services

import (
	"context"
	"time"

	"github.com/xavier7x/VentasDigitalesWs/internal/domain"
	"github.com/xavier7x/VentasDigitalesWs/pkg/logger"
)

// CoreOptions carries the per-worker settings the broadcast core needs.
type CoreOptions struct {
	InstanceID        string
	RecoveryGrace     time.Duration
	InactivityTimeout time.Duration // zero disables the inactivity deadline
}

// Core is the broadcast core: both registries, the router, and the lifecycle
// coordinator behind one explicitly-owned aggregate. Handlers receive a
// *Core; nothing else mutates the registries.
type Core struct {
	conns     *ConnectionRegistry
	rooms     *RoomRegistry
	router    *EventRouter
	lifecycle *Lifecycle
	log       logger.Logger
}

func NewCore(opts CoreOptions, publisher domain.EventPublisher, log logger.Logger) *Core {
	conns := NewConnectionRegistry(log)
	rooms := NewRoomRegistry(log)
	router := NewEventRouter(conns, rooms, publisher, opts.InstanceID, log)
	lifecycle := NewLifecycle(conns, rooms, opts.RecoveryGrace, opts.InactivityTimeout, log)

	return &Core{
		conns:     conns,
		rooms:     rooms,
		router:    router,
		lifecycle: lifecycle,
		log:       log,
	}
}

// Connect hands a freshly opened transport connection to the core.
func (c *Core) Connect(conn domain.Connection) {
	c.lifecycle.Connect(conn)
}

// Join adds the connection to the named room.
func (c *Core) Join(connID, room string) {
	c.lifecycle.Join(connID, room)
}

// Route validates and fans out a domain event from the given connection.
// Events from closed or unknown connections are dropped.
func (c *Core) Route(ctx context.Context, connID string, event domain.DomainEvent) error {
	if !c.lifecycle.IsOpen(connID) {
		c.log.Warn("Event from non-open connection dropped", "connection_id", connID,
			"event", event.Event)
		return domain.ErrConnectionClosed
	}
	c.lifecycle.Activity(connID)
	return c.router.Route(ctx, connID, event)
}

// Disconnect runs full membership cleanup for the connection.
func (c *Core) Disconnect(connID string) {
	c.lifecycle.Disconnect(connID)
}

// Suspend marks a transport drop that may still recover; membership
// survives the gap until the grace window closes.
func (c *Core) Suspend(connID string) {
	c.lifecycle.Suspend(connID)
}

// Resume rebinds a recovering logical connection to a fresh transport
// handle carrying the same id. Returns false when the grace window has
// already closed (the caller should connect anew with a fresh id).
func (c *Core) Resume(conn domain.Connection) bool {
	if state, exists := c.lifecycle.State(conn.ID()); !exists || state != domain.StateRecovering {
		return false
	}
	if !c.conns.Rebind(conn) {
		return false
	}
	c.lifecycle.Resume(conn.ID())
	return true
}

// Activity refreshes the connection's inactivity deadline.
func (c *Core) Activity(connID string) {
	c.lifecycle.Activity(connID)
}

// HandleRemoteEvent is the subscriber-side entry for cluster fan-out. It
// satisfies domain.RemoteEventHandler.
func (c *Core) HandleRemoteEvent(event *domain.RemoteEvent) error {
	return c.router.HandleRemote(event)
}

// Snapshot returns the point-in-time room -> member-id-list view.
func (c *Core) Snapshot() map[string][]string {
	return c.rooms.Snapshot()
}

func (c *Core) State(connID string) (domain.ConnState, bool) {
	return c.lifecycle.State(connID)
}

func (c *Core) ConnectionCount() int {
	return c.conns.Count()
}

func (c *Core) RoomCount() int {
	return c.rooms.RoomCount()
}

func (c *Core) ConnectionsForUser(userID string) []string {
	return c.conns.ConnectionsForUser(userID)
}
