package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/jantaller/swapta-api/internal/config"
	"github.com/jantaller/swapta-api/internal/db"
	"github.com/jantaller/swapta-api/internal/services/auth"
	"github.com/jantaller/swapta-api/internal/services/chat"
	"github.com/jantaller/swapta-api/internal/services/cloudinary"
	"github.com/jantaller/swapta-api/internal/services/item"
	"github.com/jantaller/swapta-api/internal/services/profile"
	"github.com/jantaller/swapta-api/internal/services/report"
	"github.com/jantaller/swapta-api/internal/websocket"
)

func main() {
	// Загружаем конфигурацию
	cfg := config.LoadConfig()

	// Инициализируем базу данных
	if err := db.InitDB(cfg); err != nil {
		log.Fatalf("❌ Ошибка при инициализации базы данных: %v", err)
	}
	defer db.CloseDB()

	// Создаём экземпляр Fiber
	app := fiber.New(fiber.Config{
		AppName:      "SwapTa API",
		ErrorHandler: errorHandler,
	})

	// Добавляем middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: false,
	}))

	// Менеджер WebSocket знает участников диалога через запрос к базе
	wsManager := websocket.NewManager(db.ConversationParticipants)
	defer wsManager.Shutdown()

	// Создаём сервисы
	authService := auth.NewAuthService(cfg)
	itemService := item.NewItemService(cfg)
	chatService := chat.NewChatService(cfg, wsManager)
	profileService := profile.NewProfileService(cfg)
	reportService := report.NewReportService(cfg)
	cloudinaryService := cloudinary.NewCloudinaryService(cfg)

	// Регистрируем маршруты
	authService.SetupRoutes(app)
	itemService.SetupRoutes(app)
	chatService.SetupRoutes(app)
	profileService.SetupRoutes(app)
	reportService.SetupRoutes(app)
	cloudinaryService.SetupRoutes(app)

	// WebSocket живет на отдельном HTTP-сервере: Fiber работает поверх
	// fasthttp, а gorilla/websocket требует стандартный net/http
	go func() {
		http.HandleFunc("/ws", websocket.ServeWS(wsManager, authService.GetJWTService()))
		addr := fmt.Sprintf(":%s", cfg.WSPort)
		log.Printf("✅ WebSocket сервер запущен на порту %s", cfg.WSPort)
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Fatalf("❌ Ошибка WebSocket сервера: %v", err)
		}
	}()

	// Запускаем сервер
	log.Printf("✅ SwapTa API запущен на порту %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}

// errorHandler обрабатывает ошибки Fiber
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	// Проверяем, является ли ошибка из Fiber
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Отправляем ошибку в JSON
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
