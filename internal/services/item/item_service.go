package item

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jantaller/swapta-api/internal/config"
	"github.com/jantaller/swapta-api/internal/db"
	"github.com/jantaller/swapta-api/internal/models"
	"github.com/jantaller/swapta-api/internal/utils"
)

// ItemService представляет сервис для работы с объявлениями
type ItemService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewItemService создает новый экземпляр ItemService
func NewItemService(cfg *config.Config) *ItemService {
	return &ItemService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetFeed возвращает ленту объявлений, новые первыми
func (s *ItemService) GetFeed(c fiber.Ctx) error {
	itemType := c.Query("type", "all")
	if itemType != "all" && !models.ValidItemType(itemType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid listing type"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	query, args := buildFeedQuery(itemType)
	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		log.Printf("Ошибка запроса ленты: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load listings"})
	}
	defer rows.Close()

	// Пустой результат — не ошибка, клиент показывает заглушку
	items := []models.Item{}
	for rows.Next() {
		it, err := scanItemRow(rows)
		if err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}
		items = append(items, *it)
	}

	return c.JSON(fiber.Map{
		"items": items,
		"count": len(items),
	})
}

// GetItem возвращает одно объявление с профилем владельца и числом
// его завершенных обменов
func (s *ItemService) GetItem(c fiber.Ctx) error {
	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid listing ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	query := `
		SELECT ` + itemColumns + `, ` + ownerColumns + `
		FROM items i
		JOIN profiles p ON p.id = i.owner_id
		WHERE i.id = $1`

	it, err := scanItemRow(db.Pool.QueryRow(ctx, query, itemID))
	if err != nil {
		if err == pgx.ErrNoRows {
			// Историческое поведение: при отсутствии строки отдаем
			// статический демонстрационный набор, прежде чем вернуть 404
			if sample := findSampleListing(itemID); sample != nil {
				return c.JSON(fiber.Map{"item": sample, "owner_traded_count": sampleOwnerTrades})
			}
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Listing not found"})
		}
		log.Printf("Ошибка запроса объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load listing"})
	}

	tradedCount, err := countTradedItems(ctx, it.OwnerID)
	if err != nil {
		log.Printf("Ошибка подсчета обменов владельца: %v", err)
		// Счетчик не критичен для карточки объявления
		tradedCount = 0
	}

	return c.JSON(fiber.Map{
		"item":               it,
		"owner_traded_count": tradedCount,
	})
}

// itemRequest описывает тело запроса создания/обновления объявления
type itemRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Condition   string   `json:"condition"`
	Type        string   `json:"type"`
	LookingFor  string   `json:"looking_for"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	Photos      []string `json:"photos"`
}

// CreateItem обрабатывает создание нового объявления
func (s *ItemService) CreateItem(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var requestData itemRequest
	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if requestData.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title is required"})
	}
	if !models.ValidItemType(requestData.Type) {
		requestData.Type = models.ItemTypeItem
	}
	// Публикация требует хотя бы одно фото
	if len(requestData.Photos) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "At least one photo is required"})
	}
	// Для запросов "ищу" состояние не имеет смысла
	if requestData.Type == models.ItemTypeLookingFor {
		requestData.Condition = "N/A"
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	itemID := uuid.New()
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO items (id, owner_id, title, description, category, condition,
		                   type, looking_for, location, latitude, longitude, photos, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 'active')
	`, itemID, userUUID, requestData.Title, requestData.Description, requestData.Category,
		requestData.Condition, requestData.Type, requestData.LookingFor, requestData.Location,
		requestData.Latitude, requestData.Longitude, requestData.Photos)

	if err != nil {
		log.Printf("Ошибка вставки объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save listing"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"item_id": itemID,
	})
}

// UpdateItem обновляет объявление владельца
func (s *ItemService) UpdateItem(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid listing ID"})
	}

	var requestData itemRequest
	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if requestData.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Title is required"})
	}
	if len(requestData.Photos) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Listing must have at least one photo"})
	}
	if !models.ValidItemType(requestData.Type) {
		requestData.Type = models.ItemTypeItem
	}
	if requestData.Type == models.ItemTypeLookingFor {
		requestData.Condition = "N/A"
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tag, err := db.Pool.Exec(ctx, `
		UPDATE items
		SET title = $1, description = $2, category = $3, condition = $4, type = $5,
		    looking_for = $6, location = $7, latitude = $8, longitude = $9,
		    photos = $10, updated_at = CURRENT_TIMESTAMP
		WHERE id = $11 AND owner_id = $12
	`, requestData.Title, requestData.Description, requestData.Category, requestData.Condition,
		requestData.Type, requestData.LookingFor, requestData.Location,
		requestData.Latitude, requestData.Longitude, requestData.Photos, itemID, userUUID)

	if err != nil {
		log.Printf("Ошибка обновления объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update listing"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only edit your own listings"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// DeleteItem удаляет объявление владельца.
// Связанные диалоги и сообщения намеренно не затрагиваются
func (s *ItemService) DeleteItem(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid listing ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM items WHERE id = $1 AND owner_id = $2
	`, itemID, userUUID)

	if err != nil {
		log.Printf("Ошибка удаления объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete listing"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You can only delete your own listings"})
	}

	return c.JSON(fiber.Map{"success": true})
}

// MarkTraded помечает объявление обменянным и увеличивает счетчик
// обменов владельца. Обе записи выполняются в одной транзакции,
// частичный сбой не оставляет счетчик рассинхронизированным
func (s *ItemService) MarkTraded(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	itemID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid listing ID"})
	}

	var requestData struct {
		PartnerID string `json:"partner_id"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка декодирования тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	// "outside" или пустое значение — обмен вне платформы
	var partnerUUID *uuid.UUID
	if requestData.PartnerID != "" && requestData.PartnerID != "outside" {
		parsed, err := uuid.Parse(requestData.PartnerID)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid partner ID"})
		}
		partnerUUID = &parsed
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	defer tx.Rollback(ctx)

	// Переход только active -> traded, повторный вызов не засчитывается
	tag, err := tx.Exec(ctx, `
		UPDATE items
		SET status = 'traded', traded_with = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2 AND owner_id = $3 AND status = 'active'
	`, partnerUUID, itemID, userUUID)

	if err != nil {
		log.Printf("Ошибка обновления статуса объявления: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update listing"})
	}
	if tag.RowsAffected() == 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Listing is not active or not yours"})
	}

	_, err = tx.Exec(ctx, `
		UPDATE profiles
		SET trades_count = trades_count + 1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`, userUUID)

	if err != nil {
		log.Printf("Ошибка обновления счетчика обменов: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update trade counter"})
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	return c.JSON(fiber.Map{"success": true, "status": models.ItemStatusTraded})
}

// GetTradeCandidates возвращает недавних собеседников пользователя
// для выбора партнера при отметке обмена
func (s *ItemService) GetTradeCandidates(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	rows, err := db.Pool.Query(ctx, `
		SELECT p.id, p.full_name, p.username, p.avatar_url
		FROM conversations c
		JOIN profiles p ON p.id = CASE WHEN c.user_low = $1 THEN c.user_high ELSE c.user_low END
		WHERE c.user_low = $1 OR c.user_high = $1
		ORDER BY c.last_updated DESC NULLS LAST
		LIMIT 10
	`, userUUID)

	if err != nil {
		log.Printf("Ошибка запроса кандидатов: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load contacts"})
	}
	defer rows.Close()

	candidates := []models.UserInfo{}
	for rows.Next() {
		var info models.UserInfo
		var fullName, username, avatarURL pgtype.Text
		if err := rows.Scan(&info.ID, &fullName, &username, &avatarURL); err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}
		if fullName.Valid {
			info.FullName = fullName.String
		}
		if username.Valid {
			info.Username = username.String
		}
		if avatarURL.Valid {
			info.AvatarURL = avatarURL.String
		}
		candidates = append(candidates, info)
	}

	return c.JSON(fiber.Map{"candidates": candidates})
}
