package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jantaller/swapta-api/internal/models"
)

// CreateProfile создает базовую строку профиля при регистрации.
// Вставляются только идентификационные поля, детали профиля
// заполняются отдельным best-effort обновлением.
func CreateProfile(ctx context.Context, id uuid.UUID, email, passwordHash string) error {
	_, err := Pool.Exec(ctx, `
		INSERT INTO profiles (id, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, id, email, passwordHash)

	if err != nil {
		return fmt.Errorf("ошибка при создании профиля: %w", err)
	}
	return nil
}

// FillProfileDetails заполняет отображаемые поля профиля после регистрации
func FillProfileDetails(ctx context.Context, id uuid.UUID, fullName, username, avatarURL string) error {
	_, err := Pool.Exec(ctx, `
		UPDATE profiles
		SET full_name = $1, username = $2, avatar_url = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4
	`, fullName, username, avatarURL, id)

	if err != nil {
		return fmt.Errorf("ошибка при заполнении профиля: %w", err)
	}
	return nil
}

// GetProfileByID получает профиль по ID
func GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return scanProfile(ctx, `
		SELECT id, email, full_name, username, avatar_url, bio, location,
		       is_verified, rating, trades_count, created_at, updated_at
		FROM profiles WHERE id = $1
	`, id)
}

// GetProfileByEmail получает профиль по email вместе с хешем пароля
func GetProfileByEmail(ctx context.Context, email string) (*models.Profile, string, error) {
	var profile models.Profile
	var fullName, username, avatarURL, bio, location, passwordHash pgtype.Text
	var rating pgtype.Numeric

	err := Pool.QueryRow(ctx, `
		SELECT id, email, password_hash, full_name, username, avatar_url, bio, location,
		       is_verified, rating, trades_count, created_at, updated_at
		FROM profiles WHERE email = $1
	`, email).Scan(
		&profile.ID, &profile.Email, &passwordHash, &fullName, &username,
		&avatarURL, &bio, &location, &profile.IsVerified, &rating,
		&profile.TradesCount, &profile.CreatedAt, &profile.UpdatedAt,
	)

	if err != nil {
		return nil, "", err
	}

	fillNullableFields(&profile, fullName, username, avatarURL, bio, location, rating)

	hash := ""
	if passwordHash.Valid {
		hash = passwordHash.String
	}
	return &profile, hash, nil
}

// GetUserInfo получает сокращенную проекцию профиля для карточек и сообщений
func GetUserInfo(ctx context.Context, id uuid.UUID) (*models.UserInfo, error) {
	var info models.UserInfo
	var fullName, username, avatarURL pgtype.Text

	err := Pool.QueryRow(ctx, `
		SELECT id, full_name, username, avatar_url
		FROM profiles WHERE id = $1
	`, id).Scan(&info.ID, &fullName, &username, &avatarURL)

	if err != nil {
		return nil, err
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
	return &info, nil
}

func scanProfile(ctx context.Context, query string, args ...interface{}) (*models.Profile, error) {
	var profile models.Profile
	var fullName, username, avatarURL, bio, location pgtype.Text
	var rating pgtype.Numeric

	err := Pool.QueryRow(ctx, query, args...).Scan(
		&profile.ID, &profile.Email, &fullName, &username, &avatarURL,
		&bio, &location, &profile.IsVerified, &rating,
		&profile.TradesCount, &profile.CreatedAt, &profile.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	fillNullableFields(&profile, fullName, username, avatarURL, bio, location, rating)
	return &profile, nil
}

// fillNullableFields преобразует nullable поля
func fillNullableFields(profile *models.Profile, fullName, username, avatarURL, bio, location pgtype.Text, rating pgtype.Numeric) {
	if fullName.Valid {
		profile.FullName = fullName.String
	}
	if username.Valid {
		profile.Username = username.String
	}
	if avatarURL.Valid {
		profile.AvatarURL = avatarURL.String
	}
	if bio.Valid {
		profile.Bio = bio.String
	}
	if location.Valid {
		profile.Location = location.String
	}
	if rating.Valid {
		if v, err := rating.Float64Value(); err == nil {
			profile.Rating = v.Float64
		}
	}
}
