// Package repos registers repositories for webhook delivery and exposes
// their stored commits.
package repos

import (
	"commitsonic/internal/models"

	"github.com/gofiber/fiber/v3"
)

func Routes(app fiber.Router, deps Deps) {
	h := &handler{deps: deps}

	repos := app.Group("/repos", models.ListenerAuthMiddleware)

	repos.Post("/", h.register)
	repos.Get("/:owner/:name", h.get)
	repos.Get("/:owner/:name/commits", h.commits)
}
