package handlers

import (
	"context"
	"log/slog"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"sign-relay/contract"
	"sign-relay/runtime"
)

// WSHandler upgrades /ws/:phone requests and hands the socket to a
// session for its whole lifetime.
type WSHandler struct {
	log        *slog.Logger
	router     *runtime.Router
	registry   contract.IRegistry
	bufferSize int
}

func NewWSHandler(log *slog.Logger, router *runtime.Router, registry contract.IRegistry, bufferSize int) *WSHandler {
	return &WSHandler{log: log, router: router, registry: registry, bufferSize: bufferSize}
}

// Upgrade gates the websocket route: anything that is not an upgrade
// request is rejected before the handler runs.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Serve is the websocket endpoint body. It blocks until the connection
// closes; fiber runs it on its own goroutine per connection.
func (h *WSHandler) Serve(conn *websocket.Conn) {
	phone := conn.Params("phone")
	if phone == "" {
		h.log.Warn("Websocket connection without phone, dropping")
		_ = conn.Close()
		return
	}

	session := runtime.NewSession(h.log, phone, conn, h.bufferSize)
	session.Run(context.Background(), h.router, h.registry)
}
