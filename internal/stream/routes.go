package stream

import (
	"commitsonic/internal/models"

	"github.com/gofiber/fiber/v3"
)

// Routes mounts GET /stream on api and GET /stream on ws, both behind
// listener authentication.
func Routes(api fiber.Router, ws fiber.Router, h *Handler) {
	api.Get("/stream", models.ListenerStreamMiddleware, h.SSE)
	ws.Get("/stream", models.ListenerStreamMiddleware, h.WebSocket)
}
