// Package githubhooks exposes handlers for GitHub webhook callbacks.
package githubhooks

import "github.com/gofiber/fiber/v3"

// Routes wires the GitHub webhook endpoints under /webhooks.
func Routes(app fiber.Router, deps Deps) {
	h := NewHandler(deps)

	group := app.Group("/webhooks")

	// POST /api/webhooks/github ingests ping and push deliveries.
	group.Post("/github", h.Receive)
}
