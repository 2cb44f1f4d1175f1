package chat

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jantaller/swapta-api/internal/models"
)

// Отметка прочтения затрагивает только сообщения второго участника,
// собственные сообщения пользователя остаются нетронутыми
const markReadQuery = `
	UPDATE messages
	SET is_read = true
	WHERE conversation_id = $1 AND sender_id <> $2 AND is_read = false`

// Разрешение предложения атомарно: guard по текущему статусу стоит
// на самом UPDATE, при двух одновременных ответах побеждает ровно один,
// терминальный статус перезаписать нельзя
const resolveOfferQuery = `
	UPDATE messages
	SET offer_details = jsonb_set(offer_details, '{status}', to_jsonb($1::text))
	WHERE id = $2
	  AND type = 'offer'
	  AND offer_details->>'status' = 'pending'`

// sendRequest представляет тело запроса на отправку сообщения
type sendRequest struct {
	Text         string               `json:"text,omitempty"`
	Type         string               `json:"type,omitempty"`
	ImageURL     string               `json:"image_url,omitempty"`
	OfferDetails *models.OfferDetails `json:"offer_details,omitempty"`
	ClientTempID string               `json:"client_temp_id,omitempty"`
}

// validateSendRequest проверяет тело запроса и нормализует тип сообщения
func validateSendRequest(req *sendRequest) error {
	if req.Type == "" {
		req.Type = models.MessageTypeText
	}
	if !models.ValidMessageType(req.Type) {
		return errors.New("Invalid message type")
	}

	switch req.Type {
	case models.MessageTypeText:
		if req.Text == "" {
			return errors.New("Message text is required")
		}
	case models.MessageTypeImage:
		if req.ImageURL == "" {
			return errors.New("Image URL is required")
		}
	case models.MessageTypeOffer:
		if req.OfferDetails == nil {
			return errors.New("Offer details are required")
		}
		// Статус нового предложения всегда pending
		req.OfferDetails.Status = models.OfferStatusPending
		if req.Text == "" {
			req.Text = "I have an offer for you!"
		}
	}
	return nil
}

// previewText возвращает текст превью диалога для списка чатов
func previewText(msgType, text string) string {
	switch msgType {
	case models.MessageTypeImage:
		return "📷 Image"
	case models.MessageTypeOffer:
		return "Sent an offer"
	default:
		return text
	}
}

// insertMessage создает сообщение и обновляет превью диалога
// в рамках переданной транзакции
func insertMessage(ctx context.Context, tx pgx.Tx, convID, senderID uuid.UUID,
	text, msgType, imageURL string, offer *models.OfferDetails, now time.Time) (*models.Message, error) {

	message := &models.Message{
		ID:             uuid.New(),
		ConversationID: convID,
		SenderID:       senderID,
		Text:           text,
		Type:           msgType,
		ImageURL:       imageURL,
		OfferDetails:   offer,
		IsRead:         false,
		CreatedAt:      now,
	}

	var offerJSON []byte
	if offer != nil {
		var err error
		offerJSON, err = json.Marshal(offer)
		if err != nil {
			return nil, err
		}
	}

	_, err := tx.Exec(ctx, `
		INSERT INTO messages (id, conversation_id, sender_id, text, type, image_url, offer_details, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, false, $8)
	`, message.ID, convID, senderID, text, msgType, imageURL, offerJSON, now)

	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE conversations SET last_message = $1, last_updated = $2 WHERE id = $3
	`, previewText(msgType, text), now, convID)

	if err != nil {
		return nil, err
	}

	return message, nil
}

// scanMessage читает строку сообщения
func scanMessage(row pgx.Row) (*models.Message, error) {
	var msg models.Message
	var text, imageURL pgtype.Text
	var offerJSON []byte

	err := row.Scan(
		&msg.ID, &msg.ConversationID, &msg.SenderID,
		&text, &msg.Type, &imageURL, &offerJSON,
		&msg.IsRead, &msg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if text.Valid {
		msg.Text = text.String
	}
	if imageURL.Valid {
		msg.ImageURL = imageURL.String
	}
	if offerJSON != nil {
		var offer models.OfferDetails
		if err := json.Unmarshal(offerJSON, &offer); err == nil {
			msg.OfferDetails = &offer
		}
	}

	return &msg, nil
}

// reverseMessages разворачивает страницу сообщений: из базы она читается
// по убыванию времени, клиенту отдается по возрастанию
func reverseMessages(messages []models.Message) {
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
}

// trimPage отсекает зондирующую строку: страница запрашивается с запасом
// в одну строку, ее наличие означает, что более старые сообщения есть
func trimPage(messages []models.Message) ([]models.Message, bool) {
	if len(messages) > messagePageSize {
		return messages[:messagePageSize], true
	}
	return messages, false
}

// sentMessageResponse собирает ответ на отправку сообщения.
// client_temp_id возвращается как есть: клиент по нему заменяет
// оптимистично показанное сообщение на сохраненное без дубликатов
func sentMessageResponse(message *models.Message, clientTempID string) fiber.Map {
	message.ClientTempID = clientTempID
	return fiber.Map{
		"message": message,
		"success": true,
	}
}
