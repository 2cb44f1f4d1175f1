package item

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jantaller/swapta-api/internal/db"
	"github.com/jantaller/swapta-api/internal/models"
)

const itemColumns = `
	i.id, i.owner_id, i.title, i.description, i.category, i.condition,
	i.type, i.looking_for, i.location, i.latitude, i.longitude,
	i.photos, i.status, i.traded_with, i.created_at, i.updated_at`

const ownerColumns = `
	p.id, p.full_name, p.username, p.avatar_url`

// buildFeedQuery собирает запрос ленты объявлений.
// При фильтре по типу лента ограничивается активными объявлениями;
// вид "все" намеренно включает и обменянные (историческая асимметрия
// исходного клиента, сохранена сознательно — см. DESIGN.md).
func buildFeedQuery(itemType string) (string, []interface{}) {
	query := `
		SELECT ` + itemColumns + `, ` + ownerColumns + `
		FROM items i
		JOIN profiles p ON p.id = i.owner_id`

	var args []interface{}
	if itemType != "" && itemType != "all" {
		query += `
		WHERE i.type = $1 AND i.status = 'active'`
		args = append(args, itemType)
	}

	query += `
		ORDER BY i.created_at DESC`

	return query, args
}

// scanItemRow читает строку объявления вместе с сокращенным профилем владельца
func scanItemRow(row pgx.Row) (*models.Item, error) {
	var it models.Item
	var description, category, condition, lookingFor, location pgtype.Text
	var owner models.UserInfo
	var ownerFullName, ownerUsername, ownerAvatarURL pgtype.Text

	err := row.Scan(
		&it.ID, &it.OwnerID, &it.Title, &description, &category, &condition,
		&it.Type, &lookingFor, &location, &it.Latitude, &it.Longitude,
		&it.Photos, &it.Status, &it.TradedWith, &it.CreatedAt, &it.UpdatedAt,
		&owner.ID, &ownerFullName, &ownerUsername, &ownerAvatarURL,
	)
	if err != nil {
		return nil, err
	}

	// Преобразуем nullable поля
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
	if ownerFullName.Valid {
		owner.FullName = ownerFullName.String
	}
	if ownerUsername.Valid {
		owner.Username = ownerUsername.String
	}
	if ownerAvatarURL.Valid {
		owner.AvatarURL = ownerAvatarURL.String
	}
	it.Owner = &owner

	return &it, nil
}

// countTradedItems считает обменянные объявления владельца
func countTradedItems(ctx context.Context, ownerID uuid.UUID) (int, error) {
	var count int
	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM items WHERE owner_id = $1 AND status = 'traded'
	`, ownerID).Scan(&count)
	return count, err
}
