package cloudinary

import (
	"fmt"
	"log"
	"net/url"
	"time"

	cldapi "github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/jantaller/swapta-api/internal/config"
	"github.com/jantaller/swapta-api/internal/utils"
)

// Папки, в которые клиенту разрешено загружать изображения
var allowedFolders = map[string]bool{
	"avatars":  true,
	"listings": true,
}

// CloudinaryService предоставляет методы для работы с Cloudinary
type CloudinaryService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewCloudinaryService создает новый экземпляр CloudinaryService
func NewCloudinaryService(cfg *config.Config) *CloudinaryService {
	return &CloudinaryService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GenerateUploadParams создает подписанные параметры для прямой загрузки
// изображений с клиента в Cloudinary
func (s *CloudinaryService) GenerateUploadParams(c fiber.Ctx) error {
	folder := c.Query("folder", "listings")
	if !allowedFolders[folder] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid upload folder"})
	}

	// Генерируем ID для объявления, если не передан
	listingID := c.Query("listing_id")
	if listingID == "" {
		listingID = uuid.New().String()
	}

	timestamp := fmt.Sprintf("%d", time.Now().Unix())

	params := url.Values{}
	params.Set("timestamp", timestamp)
	params.Set("folder", folder)

	signature, err := cldapi.SignParameters(params, s.cfg.CloudinaryConfig.APISecret)
	if err != nil {
		log.Printf("Ошибка подписи параметров загрузки: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to sign upload parameters"})
	}

	return c.JSON(fiber.Map{
		"timestamp":  timestamp,
		"folder":     folder,
		"signature":  signature,
		"api_key":    s.cfg.CloudinaryConfig.APIKey,
		"cloud_name": s.cfg.CloudinaryConfig.CloudName,
		"listing_id": listingID,
	})
}
