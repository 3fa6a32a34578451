package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/xavier7x/VentasDigitalesWs/pkg/logger"
)

func TestConnectionRegistry_RegisterAndGet(t *testing.T) {
	req := require.New(t)
	registry := NewConnectionRegistry(logger.NewNop())
	conn := newFakeConn(uuid.NewString(), "user-1")

	registry.Register(conn)

	got, exists := registry.Get(conn.ID())
	req.True(exists)
	req.Equal(conn, got)
	req.Equal(1, registry.Count())
}

func TestConnectionRegistry_Unregister_Unknown_IsNoOp(t *testing.T) {
	req := require.New(t)
	registry := NewConnectionRegistry(logger.NewNop())

	req.False(registry.Unregister(uuid.NewString()))
}

func TestConnectionRegistry_UserIndex_MultiTab(t *testing.T) {
	req := require.New(t)
	registry := NewConnectionRegistry(logger.NewNop())
	tab1 := newFakeConn(uuid.NewString(), "user-1")
	tab2 := newFakeConn(uuid.NewString(), "user-1")

	registry.Register(tab1)
	registry.Register(tab2)

	req.ElementsMatch([]string{tab1.ID(), tab2.ID()}, registry.ConnectionsForUser("user-1"))
	req.Equal(1, registry.UserCount())
}

func TestConnectionRegistry_UserIndex_EvictedWhenEmpty(t *testing.T) {
	req := require.New(t)
	registry := NewConnectionRegistry(logger.NewNop())
	tab1 := newFakeConn(uuid.NewString(), "user-1")
	tab2 := newFakeConn(uuid.NewString(), "user-1")

	registry.Register(tab1)
	registry.Register(tab2)

	req.True(registry.Unregister(tab1.ID()))
	req.ElementsMatch([]string{tab2.ID()}, registry.ConnectionsForUser("user-1"))

	// The entry disappears the moment its set empties, not later.
	req.True(registry.Unregister(tab2.ID()))
	req.Empty(registry.ConnectionsForUser("user-1"))
	req.Zero(registry.UserCount())
}

func TestConnectionRegistry_AnonymousConnection_SkipsUserIndex(t *testing.T) {
	req := require.New(t)
	registry := NewConnectionRegistry(logger.NewNop())
	conn := newFakeConn(uuid.NewString(), "")

	registry.Register(conn)
	req.Zero(registry.UserCount())

	req.True(registry.Unregister(conn.ID()))
	req.Zero(registry.Count())
}

func TestConnectionRegistry_Rebind_SwapsTransportHandle(t *testing.T) {
	req := require.New(t)
	registry := NewConnectionRegistry(logger.NewNop())
	connID := uuid.NewString()
	stale := newFakeConn(connID, "user-1")
	fresh := newFakeConn(connID, "user-1")

	registry.Register(stale)
	req.True(registry.Rebind(fresh))

	got, exists := registry.Get(connID)
	req.True(exists)
	req.Same(fresh, got.(*fakeConn))
}

func TestConnectionRegistry_Rebind_UnknownConnection_Fails(t *testing.T) {
	req := require.New(t)
	registry := NewConnectionRegistry(logger.NewNop())

	req.False(registry.Rebind(newFakeConn(uuid.NewString(), "")))
}

func TestConnectionRegistry_Touch_UpdatesLastActivity(t *testing.T) {
	req := require.New(t)
	registry := NewConnectionRegistry(logger.NewNop())
	conn := newFakeConn(uuid.NewString(), "")

	registry.Register(conn)
	before, exists := registry.LastActivity(conn.ID())
	req.True(exists)

	registry.Touch(conn.ID())
	after, exists := registry.LastActivity(conn.ID())
	req.True(exists)
	req.False(after.Before(before))
}
