package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

// NewApp assembles the full HTTP surface. Both the server binary and the
// e2e suite build the app through this single constructor, so the routes
// under test are the routes in production.
func NewApp(httpHandler *HTTPHandler, wsHandler *WSHandler, healthHandler *HealthHandler, videoDir string) *fiber.App {
	app := fiber.New()
	app.Use(logger.New())

	// The browser frontend is served from another origin
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "*",
	}))

	app.Post("/register", httpHandler.Register)
	app.Post("/login", httpHandler.Login)
	app.Get("/search/:phone", httpHandler.Search)
	app.Get("/recents/:phone", httpHandler.Recents)
	app.Get("/messages/:phone/:peer", httpHandler.History)
	app.Get("/translate", httpHandler.Translate)
	app.Get("/healthz", healthHandler.Healthz)

	if videoDir != "" {
		app.Static("/videos", videoDir)
	}

	app.Use("/ws", wsHandler.Upgrade)
	app.Get("/ws/:phone", websocket.New(wsHandler.Serve))

	return app
}
