package cloudinary

import (
	"github.com/gofiber/fiber/v3"

	"github.com/jantaller/swapta-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для загрузки изображений
func (s *CloudinaryService) SetupRoutes(app *fiber.App) {
	authRequired := middleware.AuthMiddleware(s.jwtService)

	app.Get("/api/upload/params", s.GenerateUploadParams, authRequired)
}
