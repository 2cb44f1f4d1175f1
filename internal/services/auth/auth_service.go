package auth

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"

	"github.com/jantaller/swapta-api/internal/config"
	"github.com/jantaller/swapta-api/internal/db"
	"github.com/jantaller/swapta-api/internal/models"
	"github.com/jantaller/swapta-api/internal/utils"
)

// AuthService – структура для обработки авторизации
type AuthService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
}

// NewAuthService – конструктор AuthService
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
	}
}

// GetJWTService возвращает сервис JWT для настройки middleware
func (s *AuthService) GetJWTService() *utils.JWTService {
	return s.jwtService
}

// SignUpHandler регистрирует пользователя и создает строку профиля
func (s *AuthService) SignUpHandler(c fiber.Ctx) error {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))
	if payload.Email == "" || !strings.Contains(payload.Email, "@") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Valid email is required"})
	}
	if len(payload.Password) < 6 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Password must be at least 6 characters"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Проверяем, что email свободен
	var exists bool
	err := db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM profiles WHERE email = $1)
	`, payload.Email).Scan(&exists)

	if err != nil {
		log.Printf("Ошибка проверки email: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Sign up failed"})
	}
	if exists {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email is already registered"})
	}

	hash, err := hashPassword(payload.Password)
	if err != nil {
		log.Printf("Ошибка хеширования пароля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Sign up failed"})
	}

	// Создаем идентификационную строку профиля
	userID := uuid.New()
	if err := db.CreateProfile(ctx, userID, payload.Email, hash); err != nil {
		// Одновременная регистрация того же email проходит проверку
		// выше и упирается в уникальный индекс
		if isUniqueViolation(err) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Email is already registered"})
		}
		log.Printf("Ошибка создания профиля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Sign up failed"})
	}

	// Отображаемые поля профиля заполняем best-effort: ошибка логируется,
	// но регистрацию не срывает — пользователь в ответе всегда имеет
	// как минимум id и email
	username := usernameFromEmail(payload.Email)
	avatarURL := defaultAvatarURL(payload.FullName)
	if err := db.FillProfileDetails(ctx, userID, payload.FullName, username, avatarURL); err != nil {
		log.Printf("⚠️ Не удалось заполнить детали профиля %s: %v", userID, err)
	}

	token, err := s.jwtService.GenerateToken(userID, payload.Email)
	if err != nil {
		log.Printf("Ошибка генерации JWT: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate token"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  s.mergedUser(c, userID, payload.Email),
	})
}

// LoginHandler проверяет пароль и возвращает JWT с объединенным профилем
func (s *AuthService) LoginHandler(c fiber.Ctx) error {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	payload.Email = strings.ToLower(strings.TrimSpace(payload.Email))

	ctx, cancel := db.GetContext()
	defer cancel()

	profile, hash, err := db.GetProfileByEmail(ctx, payload.Email)
	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
		}
		log.Printf("Ошибка запроса профиля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Login failed"})
	}

	if !checkPassword(hash, payload.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	token, err := s.jwtService.GenerateToken(profile.ID, profile.Email)
	if err != nil {
		log.Printf("Ошибка генерации JWT: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate token"})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  profile,
	})
}

// MeHandler возвращает текущего пользователя: идентификация из токена,
// объединенная со строкой профиля
func (s *AuthService) MeHandler(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	email, _ := c.Locals("userEmail").(string)
	return c.JSON(fiber.Map{"user": s.mergedUser(c, userUUID, email)})
}

// mergedUser объединяет идентификацию (id, email) со строкой профиля.
// Отсутствие строки профиля не является ошибкой: возвращаются только
// идентификационные поля
func (s *AuthService) mergedUser(c fiber.Ctx, userID uuid.UUID, email string) *models.Profile {
	ctx, cancel := db.GetContext()
	defer cancel()

	profile, err := db.GetProfileByID(ctx, userID)
	if err != nil {
		if err != pgx.ErrNoRows {
			log.Printf("Ошибка запроса профиля %s: %v", userID, err)
		}
		// Профиля еще нет — возвращаем идентификационные поля
		return &models.Profile{ID: userID, Email: email}
	}

	if profile.Email == "" {
		profile.Email = email
	}
	return profile
}

// usernameFromEmail строит имя пользователя из локальной части email
func usernameFromEmail(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}

// defaultAvatarURL возвращает сгенерированный аватар для нового профиля
func defaultAvatarURL(fullName string) string {
	if fullName == "" {
		fullName = "User"
	}
	return fmt.Sprintf("https://ui-avatars.com/api/?name=%s&background=random", url.QueryEscape(fullName))
}

// isUniqueViolation распознает нарушение уникального индекса Postgres
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// hashPassword хеширует пароль bcrypt
func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// checkPassword сверяет пароль с хешем
func checkPassword(hash, password string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
