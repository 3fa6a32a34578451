package websocket

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/xavier7x/VentasDigitalesWs/internal/domain"
	"github.com/xavier7x/VentasDigitalesWs/internal/services"
	"github.com/xavier7x/VentasDigitalesWs/pkg/logger"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS policy is handled by the HTTP layer
	},
}

// Handler upgrades HTTP requests to WebSocket sessions and pumps their
// frames into the broadcast core.
type Handler struct {
	core *services.Core
	log  logger.Logger
}

func NewHandler(core *services.Core, log logger.Logger) *Handler {
	return &Handler{
		core: core,
		log:  log,
	}
}

// HandleConnection upgrades the request and hands the session to the core.
// Query parameters: user_id (optional identity), recover (a previous
// connection id presented for state recovery within the grace window).
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	recoverID := r.URL.Query().Get("recover")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("Failed to upgrade connection", "error", err)
		return
	}

	wsConn := h.attach(conn, userID, recoverID)

	go h.readLoop(wsConn)
}

// attach resumes the recovering session named by recoverID when it is still
// within its grace window; otherwise it opens a fresh session with a new id.
func (h *Handler) attach(conn *websocket.Conn, userID, recoverID string) *Connection {
	if recoverID != "" {
		wsConn := NewConnection(conn, recoverID, userID)
		if h.core.Resume(wsConn) {
			h.log.Info("Connection recovered", "connection_id", recoverID, "user_id", userID)
			return wsConn
		}
		h.log.Info("Recovery window expired, opening fresh session",
			"stale_connection_id", recoverID, "user_id", userID)
	}

	wsConn := NewConnection(conn, uuid.NewString(), userID)
	h.core.Connect(wsConn)
	return wsConn
}

func (h *Handler) readLoop(conn *Connection) {
	defer conn.Close()

	for {
		var frame domain.DomainEvent
		if err := conn.ReadJSON(&frame); err != nil {
			if isExpectedClose(err) {
				h.core.Disconnect(conn.ID())
			} else {
				// Abnormal drop: keep membership for the recovery window.
				h.core.Suspend(conn.ID())
			}
			return
		}

		h.dispatch(conn, frame)
	}
}

func (h *Handler) dispatch(conn *Connection, frame domain.DomainEvent) {
	switch frame.Event {
	case domain.EventJoinRoom:
		if frame.Room == "" {
			h.log.Warn("joinRoom without room name", "connection_id", conn.ID())
			return
		}
		h.core.Join(conn.ID(), frame.Room)

	case domain.EventSaleStatusUpdate, domain.EventNewComment:
		// Routing errors are logged by the router; the sender gets no nack.
		_ = h.core.Route(context.Background(), conn.ID(), frame)

	case domain.EventActivity:
		h.core.Activity(conn.ID())

	case domain.EventPing:
		h.core.Activity(conn.ID())
		if err := conn.Send(domain.DomainEvent{Event: domain.EventPong}); err != nil {
			h.log.Error("Failed to send pong", "connection_id", conn.ID(), "error", err)
		}

	default:
		h.log.Warn("Unknown event dropped", "room", domain.RoomGeneral,
			"event", frame.Event, "connection_id", conn.ID())
	}
}

func isExpectedClose(err error) bool {
	return websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseNoStatusReceived,
	)
}
