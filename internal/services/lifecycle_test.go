package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/xavier7x/VentasDigitalesWs/internal/domain"
	"github.com/xavier7x/VentasDigitalesWs/pkg/logger"
)

func newLifecycleFixture(t *testing.T, grace, idle time.Duration) (*Lifecycle, *ConnectionRegistry, *RoomRegistry) {
	t.Helper()
	log := logger.NewNop()
	conns := NewConnectionRegistry(log)
	rooms := NewRoomRegistry(log)
	return NewLifecycle(conns, rooms, grace, idle, log), conns, rooms
}

func TestLifecycle_Connect_OpensConnection(t *testing.T) {
	req := require.New(t)
	lifecycle, conns, _ := newLifecycleFixture(t, time.Minute, 0)
	conn := newFakeConn(uuid.NewString(), "ana")

	lifecycle.Connect(conn)

	state, exists := lifecycle.State(conn.ID())
	req.True(exists)
	req.Equal(domain.StateOpen, state)
	req.Equal(1, conns.Count())
}

func TestLifecycle_Disconnect_CleansUpEverything(t *testing.T) {
	req := require.New(t)
	lifecycle, conns, rooms := newLifecycleFixture(t, time.Minute, 0)

	x := newFakeConn(uuid.NewString(), "ana")
	y := newFakeConn(uuid.NewString(), "ben")
	lifecycle.Connect(x)
	lifecycle.Connect(y)
	lifecycle.Join(x.ID(), "r1")
	lifecycle.Join(y.ID(), "r1")

	lifecycle.Disconnect(x.ID())

	req.ElementsMatch([]string{y.ID()}, rooms.Members("r1"))
	req.Empty(rooms.RoomsContaining(x.ID()))
	_, exists := conns.Get(x.ID())
	req.False(exists)
	req.Empty(conns.ConnectionsForUser("ana"))

	lifecycle.Disconnect(y.ID())

	// Last member gone: the room itself disappears.
	req.Zero(rooms.RoomCount())
	req.Zero(conns.Count())
	req.Zero(conns.UserCount())
}

func TestLifecycle_Disconnect_Twice_IsNoOp(t *testing.T) {
	req := require.New(t)
	lifecycle, conns, _ := newLifecycleFixture(t, time.Minute, 0)
	conn := newFakeConn(uuid.NewString(), "ana")

	lifecycle.Connect(conn)
	lifecycle.Disconnect(conn.ID())
	lifecycle.Disconnect(conn.ID())

	req.Zero(conns.Count())
	_, exists := lifecycle.State(conn.ID())
	req.False(exists)
}

func TestLifecycle_Join_AfterClose_IsIgnored(t *testing.T) {
	req := require.New(t)
	lifecycle, _, rooms := newLifecycleFixture(t, time.Minute, 0)
	conn := newFakeConn(uuid.NewString(), "ana")

	lifecycle.Connect(conn)
	lifecycle.Disconnect(conn.ID())

	// A stray late join must not resurrect membership.
	lifecycle.Join(conn.ID(), "r1")
	req.Zero(rooms.RoomCount())
}

func TestLifecycle_SuspendResume_PreservesMembership(t *testing.T) {
	req := require.New(t)
	lifecycle, _, rooms := newLifecycleFixture(t, time.Minute, 0)
	conn := newFakeConn(uuid.NewString(), "ana")

	lifecycle.Connect(conn)
	lifecycle.Join(conn.ID(), "r1")

	lifecycle.Suspend(conn.ID())
	state, _ := lifecycle.State(conn.ID())
	req.Equal(domain.StateRecovering, state)
	req.ElementsMatch([]string{conn.ID()}, rooms.Members("r1"))

	lifecycle.Resume(conn.ID())
	state, _ = lifecycle.State(conn.ID())
	req.Equal(domain.StateOpen, state)

	// Membership was never dropped; no rejoin happened.
	req.ElementsMatch([]string{conn.ID()}, rooms.Members("r1"))
}

func TestLifecycle_GraceExpiry_ClosesConnection(t *testing.T) {
	req := require.New(t)
	lifecycle, conns, rooms := newLifecycleFixture(t, 20*time.Millisecond, 0)
	conn := newFakeConn(uuid.NewString(), "ana")

	lifecycle.Connect(conn)
	lifecycle.Join(conn.ID(), "r1")
	lifecycle.Suspend(conn.ID())

	req.Eventually(func() bool {
		_, exists := lifecycle.State(conn.ID())
		return !exists
	}, time.Second, 5*time.Millisecond)

	req.Zero(rooms.RoomCount())
	req.Zero(conns.Count())
}

func TestLifecycle_InactivityTimeout_ForcesDisconnect(t *testing.T) {
	req := require.New(t)
	lifecycle, conns, rooms := newLifecycleFixture(t, time.Minute, 30*time.Millisecond)
	conn := newFakeConn(uuid.NewString(), "ana")

	lifecycle.Connect(conn)
	lifecycle.Join(conn.ID(), "r1")

	req.Eventually(func() bool {
		_, exists := lifecycle.State(conn.ID())
		return !exists
	}, time.Second, 5*time.Millisecond)

	req.Zero(rooms.RoomCount())
	req.Zero(conns.Count())
}

func TestLifecycle_Activity_DefersInactivityDeadline(t *testing.T) {
	req := require.New(t)
	lifecycle, _, _ := newLifecycleFixture(t, time.Minute, 60*time.Millisecond)
	conn := newFakeConn(uuid.NewString(), "ana")

	lifecycle.Connect(conn)

	// Keep refreshing past the original deadline.
	for i := 0; i < 4; i++ {
		time.Sleep(25 * time.Millisecond)
		lifecycle.Activity(conn.ID())
	}

	state, exists := lifecycle.State(conn.ID())
	req.True(exists)
	req.Equal(domain.StateOpen, state)
}

func TestLifecycle_Resume_WithoutSuspend_IsNoOp(t *testing.T) {
	req := require.New(t)
	lifecycle, _, _ := newLifecycleFixture(t, time.Minute, 0)
	conn := newFakeConn(uuid.NewString(), "ana")

	lifecycle.Connect(conn)
	lifecycle.Resume(conn.ID())

	state, _ := lifecycle.State(conn.ID())
	req.Equal(domain.StateOpen, state)

	lifecycle.Resume(uuid.NewString()) // unknown id: nothing happens
}
