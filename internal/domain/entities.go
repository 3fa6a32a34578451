package domain

import (
	"encoding/json"
	"time"
)

// Protocol event names. Inbound and outbound frames use the same names and
// payloads; the relay forwards payloads verbatim.
const (
	EventJoinRoom         = "joinRoom"
	EventSaleStatusUpdate = "actualizarEstadoVenta"
	EventNewComment       = "nuevoComentario"
	EventActivity         = "activity"
	EventPing             = "ping"
	EventPong             = "pong"
)

// Payload field names required per event kind.
const (
	FieldSaleID    = "venta_id"
	FieldNewStatus = "estado_nuevo"
	FieldComment   = "comentario"
)

// RoomGeneral tags log lines emitted before any room context exists.
const RoomGeneral = "general"

// DomainEvent is a client frame: an event name, an optional explicit target
// room, and the payload to fan out.
type DomainEvent struct {
	Event   string          `json:"event"`
	Room    string          `json:"room,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// RemoteEvent is the cluster envelope relayed between workers. Origin is the
// publishing worker's instance ID; subscribers drop their own publications.
type RemoteEvent struct {
	Origin  string          `json:"origin"`
	Room    string          `json:"room"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type ConnState int

const (
	StateConnecting ConnState = iota
	StateOpen
	StateRecovering
	StateClosing
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateRecovering:
		return "recovering"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ConnInfo is the registry's record of a live connection.
type ConnInfo struct {
	ID           string
	UserID       string
	LastActivity time.Time
}
