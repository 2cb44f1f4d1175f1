package profile

import (
	"github.com/gofiber/fiber/v3"

	"github.com/jantaller/swapta-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API профилей
func (s *ProfileService) SetupRoutes(app *fiber.App) {
	authRequired := middleware.AuthMiddleware(s.jwtService)

	api := app.Group("/api/profiles")

	// /me регистрируется раньше параметрического /:id
	api.Put("/me", s.UpdateMe, authRequired)
	api.Get("/:id", s.GetProfile)
}
