package report

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/jantaller/swapta-api/internal/config"
	"github.com/jantaller/swapta-api/internal/db"
	"github.com/jantaller/swapta-api/internal/models"
	"github.com/jantaller/swapta-api/internal/utils"
)

// ReportService представляет сервис жалоб на контент
type ReportService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewReportService создает новый экземпляр ReportService
func NewReportService(cfg *config.Config) *ReportService {
	return &ReportService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// CreateReport принимает жалобу на объявление, пользователя или диалог
func (s *ReportService) CreateReport(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	reporterUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var requestData struct {
		TargetType  string `json:"target_type"`
		TargetID    string `json:"target_id"`
		Reason      string `json:"reason"`
		Description string `json:"description,omitempty"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка чтения тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if !models.ValidReportTarget(requestData.TargetType) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid report target"})
	}

	targetUUID, err := uuid.Parse(requestData.TargetID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid target ID"})
	}

	// Причина должна входить в словарь для данного типа цели
	if !models.ValidReportReason(requestData.TargetType, requestData.Reason) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid report reason"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	report := models.Report{
		ID:          uuid.New(),
		ReporterID:  reporterUUID,
		TargetType:  requestData.TargetType,
		TargetID:    targetUUID,
		Reason:      requestData.Reason,
		Description: requestData.Description,
		CreatedAt:   time.Now(),
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO reports (id, reporter_id, target_type, target_id, reason, description, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7)
	`, report.ID, report.ReporterID, report.TargetType, report.TargetID,
		report.Reason, report.Description, report.CreatedAt)

	if err != nil {
		log.Printf("Ошибка сохранения жалобы: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to submit report"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"report":  report,
		"success": true,
	})
}
