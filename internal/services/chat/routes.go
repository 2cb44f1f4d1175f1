package chat

import (
	"github.com/gofiber/fiber/v3"

	"github.com/jantaller/swapta-api/internal/middleware"
)

// SetupRoutes настраивает маршруты для API диалогов и сообщений
func (s *ChatService) SetupRoutes(app *fiber.App) {
	authRequired := middleware.AuthMiddleware(s.jwtService)

	conversations := app.Group("/api/conversations")
	conversations.Get("/", s.GetConversations, authRequired)
	conversations.Post("/", s.CreateConversation, authRequired)
	conversations.Get("/:id/messages", s.GetMessages, authRequired)
	conversations.Post("/:id/messages", s.SendMessage, authRequired)
	conversations.Post("/:id/read", s.MarkRead, authRequired)

	messages := app.Group("/api/messages")
	messages.Put("/:id/offer", s.UpdateOfferStatus, authRequired)
	messages.Get("/unread/count", s.GetUnreadCount, authRequired)
}
