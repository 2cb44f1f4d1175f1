package report

import (
	"github.com/gofiber/fiber/v3"

	"github.com/jantaller/swapta-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API жалоб
func (s *ReportService) SetupRoutes(app *fiber.App) {
	authRequired := middleware.AuthMiddleware(s.jwtService)

	app.Post("/api/reports", s.CreateReport, authRequired)
}
