package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/xavier7x/VentasDigitalesWs/internal/services"
	"github.com/xavier7x/VentasDigitalesWs/pkg/logger"
)

// RelayHandler exposes the read-only diagnostic surface of the broadcast
// core over HTTP.
type RelayHandler struct {
	core *services.Core
	log  logger.Logger
}

func NewRelayHandler(core *services.Core, log logger.Logger) *RelayHandler {
	return &RelayHandler{
		core: core,
		log:  log,
	}
}

// GetRooms returns the point-in-time room -> member-id-list snapshot.
func (h *RelayHandler) GetRooms(c echo.Context) error {
	snapshot := h.core.Snapshot()
	h.log.Info("Rooms snapshot requested", "rooms", len(snapshot), "remote_addr", c.RealIP())
	return c.JSON(http.StatusOK, snapshot)
}

func (h *RelayHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"service":     "ventas-ws",
		"timestamp":   time.Now().Format(time.RFC3339),
		"rooms":       h.core.RoomCount(),
		"connections": h.core.ConnectionCount(),
	})
}
