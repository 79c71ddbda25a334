// Package listeners handles listener accounts and login.
package listeners

import (
	"commitsonic/internal/models"
	"commitsonic/internal/store"

	"github.com/gofiber/fiber/v3"
)

func Routes(app fiber.Router, accounts store.ListenerStore) {
	h := &handler{accounts: accounts}

	listeners := app.Group("/listeners")

	listeners.Get("/ping", func(c fiber.Ctx) error {
		return c.SendString("PONG")
	})

	listeners.Post("/login", h.login)
	listeners.Get("/me", models.ListenerAuthMiddleware, h.me)
}
