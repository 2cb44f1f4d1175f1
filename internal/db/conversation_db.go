package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jantaller/swapta-api/internal/models"
)

// GetConversation получает диалог по ID
func GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	var lastMessage pgtype.Text

	err := Pool.QueryRow(ctx, `
		SELECT id, user_low, user_high, last_message, last_updated, created_at
		FROM conversations WHERE id = $1
	`, id).Scan(
		&conv.ID, &conv.UserLow, &conv.UserHigh,
		&lastMessage, &conv.LastUpdated, &conv.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	if lastMessage.Valid {
		conv.LastMessage = lastMessage.String
	}
	return &conv, nil
}

// ConversationParticipants возвращает пару участников диалога.
// Используется менеджером WebSocket для рассылки событий по диалогу.
func ConversationParticipants(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
	var low, high uuid.UUID
	err := Pool.QueryRow(ctx, `
		SELECT user_low, user_high FROM conversations WHERE id = $1
	`, id).Scan(&low, &high)

	if err != nil {
		return nil, err
	}
	return []uuid.UUID{low, high}, nil
}

// CountUnreadMessages считает непрочитанные сообщения пользователя
// по всем его диалогам (для бейджа в навигации)
func CountUnreadMessages(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := Pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE (c.user_low = $1 OR c.user_high = $1)
		  AND m.sender_id <> $1
		  AND m.is_read = false
	`, userID).Scan(&count)

	if err != nil {
		return 0, err
	}
	return count, nil
}
