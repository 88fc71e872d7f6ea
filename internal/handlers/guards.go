package handlers

import (
	"tienda/internal/middleware"
	"tienda/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Guards bundles the access middleware shared by the route groups.
type Guards struct {
	Auth  fiber.Handler
	Admin fiber.Handler
}

// NewGuards builds the JWT and administrator guards.
func NewGuards(authService *services.AuthService) Guards {
	return Guards{
		Auth:  middleware.AuthRequired(authService),
		Admin: middleware.AdminRequired(),
	}
}

func (g Guards) admin() []fiber.Handler {
	return []fiber.Handler{g.Auth, g.Admin}
}

func (g Guards) with(handlers ...fiber.Handler) []fiber.Handler {
	return append(g.admin(), handlers...)
}
