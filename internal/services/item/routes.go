package item

import (
	"github.com/gofiber/fiber/v3"

	"github.com/jantaller/swapta-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API объявлений
func (s *ItemService) SetupRoutes(app *fiber.App) {
	// Публичные маршруты: лента и карточка объявления
	app.Get("/api/items", s.GetFeed)

	// Группа защищенных маршрутов (требуют авторизации)
	api := app.Group("/api/items")
	authRequired := middleware.AuthMiddleware(s.jwtService)

	// Маршрут для списка недавних собеседников регистрируется
	// раньше параметрического /:id
	api.Get("/trade-candidates", s.GetTradeCandidates, authRequired)

	app.Get("/api/items/:id", s.GetItem)

	api.Post("/", s.CreateItem, authRequired)
	api.Put("/:id", s.UpdateItem, authRequired)
	api.Delete("/:id", s.DeleteItem, authRequired)
	api.Post("/:id/mark-traded", s.MarkTraded, authRequired)
}
