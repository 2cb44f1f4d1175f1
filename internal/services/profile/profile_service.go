package profile

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

// ProfileService представляет сервис для работы с профилями
type ProfileService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewProfileService создает новый экземпляр ProfileService
func NewProfileService(cfg *config.Config) *ProfileService {
	return &ProfileService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetProfile возвращает публичный профиль вместе с объявлениями
// пользователя и счетчиками активных и обменянных
func (s *ProfileService) GetProfile(c fiber.Ctx) error {
	profileID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid profile ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	profile, err := db.GetProfileByID(ctx, profileID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Profile not found"})
		}
		log.Printf("Ошибка запроса профиля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load profile"})
	}

	// Объявления пользователя, новые первыми
	rows, err := db.Pool.Query(ctx, `
		SELECT id, owner_id, title, description, category, condition,
		       type, looking_for, location, latitude, longitude,
		       photos, status, traded_with, created_at, updated_at
		FROM items
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`, profileID)

	if err != nil {
		log.Printf("Ошибка запроса объявлений профиля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load items"})
	}
	defer rows.Close()

	items := []models.Item{}
	activeCount := 0
	tradedCount := 0

	for rows.Next() {
		var it models.Item
		var description, category, condition, lookingFor, location pgtype.Text

		if err := rows.Scan(
			&it.ID, &it.OwnerID, &it.Title, &description, &category, &condition,
			&it.Type, &lookingFor, &location, &it.Latitude, &it.Longitude,
			&it.Photos, &it.Status, &it.TradedWith, &it.CreatedAt, &it.UpdatedAt,
		); err != nil {
			log.Printf("Ошибка сканирования объявления: %v", err)
			continue
		}

		if description.Valid {
			it.Description = description.String
		}
		if category.Valid {
			it.Category = category.String
		}
		if condition.Valid {
			it.Condition = condition.String
		}
		if lookingFor.Valid {
			it.LookingFor = lookingFor.String
		}
		if location.Valid {
			it.Location = location.String
		}

		switch it.Status {
		case models.ItemStatusActive:
			activeCount++
		case models.ItemStatusTraded:
			tradedCount++
		}

		items = append(items, it)
	}

	return c.JSON(fiber.Map{
		"profile":      profile,
		"items":        items,
		"active_count": activeCount,
		"traded_count": tradedCount,
	})
}

// UpdateMe обновляет профиль текущего пользователя.
// Тело запроса — полная форма профиля, а не частичный patch:
// пропущенное или пустое поле очищает значение в базе
func (s *ProfileService) UpdateMe(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var requestData struct {
		FullName  string `json:"full_name"`
		Location  string `json:"location"`
		Bio       string `json:"bio"`
		AvatarURL string `json:"avatar_url"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка чтения тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if requestData.FullName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Full name is required"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	_, err = db.Pool.Exec(ctx, `
		UPDATE profiles
		SET full_name = $1,
		    location = NULLIF($2, ''),
		    bio = NULLIF($3, ''),
		    avatar_url = NULLIF($4, ''),
		    updated_at = NOW()
		WHERE id = $5
	`, requestData.FullName, requestData.Location, requestData.Bio, requestData.AvatarURL, userUUID)

	if err != nil {
		log.Printf("Ошибка обновления профиля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update profile"})
	}

	profile, err := db.GetProfileByID(ctx, userUUID)
	if err != nil {
		log.Printf("Ошибка запроса обновленного профиля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load profile"})
	}

	return c.JSON(fiber.Map{
		"profile": profile,
		"success": true,
	})
}
