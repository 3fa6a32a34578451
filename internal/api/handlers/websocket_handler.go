package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/xavier7x/VentasDigitalesWs/internal/infrastructure/websocket"
	"github.com/xavier7x/VentasDigitalesWs/internal/services"
	"github.com/xavier7x/VentasDigitalesWs/pkg/logger"
)

type WebSocketHandlers struct {
	wsHandler *websocket.Handler
}

func NewWebSocketHandlers(core *services.Core, log logger.Logger) *WebSocketHandlers {
	return &WebSocketHandlers{
		wsHandler: websocket.NewHandler(core, log),
	}
}

func (h *WebSocketHandlers) HandleConnection(c echo.Context) error {
	h.wsHandler.HandleConnection(c.Response(), c.Request())
	return nil
}
