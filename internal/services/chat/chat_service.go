package chat

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/jantaller/swapta-api/internal/config"
	"github.com/jantaller/swapta-api/internal/db"
	"github.com/jantaller/swapta-api/internal/models"
	"github.com/jantaller/swapta-api/internal/utils"
	"github.com/jantaller/swapta-api/internal/websocket"
)

// Количество сообщений на страницу
const messagePageSize = 50

// ChatService представляет сервис для работы с диалогами
type ChatService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	ws         *websocket.Manager
}

// NewChatService создает новый экземпляр ChatService
func NewChatService(cfg *config.Config, ws *websocket.Manager) *ChatService {
	return &ChatService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		ws:         ws,
	}
}

// GetConversations возвращает список диалогов пользователя
func (s *ChatService) GetConversations(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Запрос списка диалогов с количеством непрочитанных сообщений
	query := `
        SELECT c.id, c.user_low, c.user_high, c.last_message, c.last_updated, c.created_at,
               COUNT(m.id) FILTER (WHERE m.sender_id <> $1 AND m.is_read = false) AS unread_count
        FROM conversations c
        LEFT JOIN messages m ON m.conversation_id = c.id
        WHERE c.user_low = $1 OR c.user_high = $1
        GROUP BY c.id
        ORDER BY c.last_updated DESC NULLS LAST, c.created_at DESC
    `

	rows, err := db.Pool.Query(ctx, query, userUUID)
	if err != nil {
		log.Printf("Ошибка запроса диалогов: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load conversations"})
	}
	defer rows.Close()

	conversations := []models.Conversation{}
	for rows.Next() {
		var conv models.Conversation
		var lastMessage pgtype.Text
		var unreadCount int

		if err := rows.Scan(
			&conv.ID, &conv.UserLow, &conv.UserHigh,
			&lastMessage, &conv.LastUpdated, &conv.CreatedAt,
			&unreadCount,
		); err != nil {
			log.Printf("Ошибка сканирования строки: %v", err)
			continue
		}

		if lastMessage.Valid {
			conv.LastMessage = lastMessage.String
		}
		conv.UnreadCount = unreadCount

		// Получаем данные о втором участнике диалога
		otherID := conv.OtherParticipant(userUUID)
		if info, err := db.GetUserInfo(ctx, otherID); err == nil {
			conv.OtherUser = info
		} else {
			log.Printf("Ошибка получения данных пользователя %s: %v", otherID, err)
		}

		conversations = append(conversations, conv)
	}

	return c.JSON(fiber.Map{
		"conversations": conversations,
		"count":         len(conversations),
	})
}

// CreateConversation находит или создает диалог с другим пользователем.
// Поиск и вставка выполняются в одной транзакции по нормализованной
// паре участников, уникальный индекс исключает дубликаты при
// одновременном первом контакте с двух сторон
func (s *ChatService) CreateConversation(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	senderUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	var requestData struct {
		OtherUserID  string               `json:"other_user_id"`
		Text         string               `json:"text,omitempty"`
		OfferDetails *models.OfferDetails `json:"offer_details,omitempty"`
		ClientTempID string               `json:"client_temp_id,omitempty"`
	}

	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка чтения тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if requestData.OtherUserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Recipient ID is required"})
	}

	otherUUID, err := uuid.Parse(requestData.OtherUserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid recipient ID"})
	}

	if senderUUID == otherUUID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "You cannot start a conversation with yourself"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Проверяем, существует ли получатель
	var exists bool
	err = db.Pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM profiles WHERE id = $1)
	`, otherUUID).Scan(&exists)

	if err != nil {
		log.Printf("Ошибка проверки существования получателя: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check recipient"})
	}
	if !exists {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Recipient not found"})
	}

	low, high := models.NormalizePair(senderUUID, otherUUID)

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	defer tx.Rollback(ctx)

	// Вставка по нормализованной паре; при гонке побеждает уже
	// существующая строка
	newID := uuid.New()
	now := time.Now()

	tag, err := tx.Exec(ctx, `
		INSERT INTO conversations (id, user_low, user_high, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_low, user_high) DO NOTHING
	`, newID, low, high, now)

	if err != nil {
		log.Printf("Ошибка создания диалога: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create conversation"})
	}
	isNew := tag.RowsAffected() > 0

	var convID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT id FROM conversations WHERE user_low = $1 AND user_high = $2
	`, low, high).Scan(&convID)

	if err != nil {
		log.Printf("Ошибка поиска диалога: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create conversation"})
	}

	// Если передано начальное сообщение или предложение обмена,
	// создаем его в той же транзакции
	var message *models.Message
	if requestData.Text != "" || requestData.OfferDetails != nil {
		msgType := models.MessageTypeText
		if requestData.OfferDetails != nil {
			msgType = models.MessageTypeOffer
			// Статус нового предложения всегда pending
			requestData.OfferDetails.Status = models.OfferStatusPending
		}

		text := requestData.Text
		if text == "" && msgType == models.MessageTypeOffer {
			text = "I have an offer for you!"
		}

		message, err = insertMessage(ctx, tx, convID, senderUUID, text, msgType, "", requestData.OfferDetails, now)
		if err != nil {
			log.Printf("Ошибка создания сообщения: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save message"})
		}
		message.ClientTempID = requestData.ClientTempID
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	// Оповещаем получателя
	if message != nil {
		s.pushNewMessage(ctx, convID, senderUUID, otherUUID, message)
	}

	status := fiber.StatusOK
	if isNew {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{
		"conversation_id": convID,
		"is_new":          isNew,
		"message":         message,
		"success":         true,
	})
}

// GetMessages возвращает сообщения диалога по возрастанию времени
// и отмечает сообщения второго участника прочитанными
func (s *ChatService) GetMessages(c fiber.Ctx) error {
	userUUID, conv, err := s.requireParticipant(c)
	if conv == nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Пагинация назад через параметр before
	before := c.Query("before")
	var rows pgx.Rows

	if before != "" {
		beforeUUID, parseErr := uuid.Parse(before)
		if parseErr != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid message ID"})
		}

		rows, err = db.Pool.Query(ctx, `
            SELECT m.id, m.conversation_id, m.sender_id, m.text, m.type,
                   m.image_url, m.offer_details, m.is_read, m.created_at
            FROM messages m
            WHERE m.conversation_id = $1
              AND m.created_at < (SELECT created_at FROM messages WHERE id = $2)
            ORDER BY m.created_at DESC
            LIMIT $3
        `, conv.ID, beforeUUID, messagePageSize+1)
	} else {
		rows, err = db.Pool.Query(ctx, `
            SELECT m.id, m.conversation_id, m.sender_id, m.text, m.type,
                   m.image_url, m.offer_details, m.is_read, m.created_at
            FROM messages m
            WHERE m.conversation_id = $1
            ORDER BY m.created_at DESC
            LIMIT $2
        `, conv.ID, messagePageSize+1)
	}

	if err != nil {
		log.Printf("Ошибка запроса сообщений: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load messages"})
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			log.Printf("Ошибка сканирования сообщения: %v", err)
			continue
		}
		messages = append(messages, *msg)
	}
	// Запас в одну строку, ее наличие означает существование
	// следующей страницы
	messages, hasMore := trimPage(messages)

	// Страница читается по убыванию, клиенту отдаем по возрастанию
	reverseMessages(messages)

	// Отмечаем сообщения второго участника прочитанными
	s.markRead(ctx, conv, userUUID)

	return c.JSON(fiber.Map{
		"messages": messages,
		"has_more": hasMore,
	})
}

// SendMessage отправляет новое сообщение в диалог
func (s *ChatService) SendMessage(c fiber.Ctx) error {
	userUUID, conv, err := s.requireParticipant(c)
	if conv == nil {
		return err
	}

	var requestData sendRequest
	if err := c.Bind().Body(&requestData); err != nil {
		log.Printf("Ошибка чтения тела запроса: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if err := validateSendRequest(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		log.Printf("Ошибка начала транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}
	defer tx.Rollback(ctx)

	now := time.Now()
	message, err := insertMessage(ctx, tx, conv.ID, userUUID,
		requestData.Text, requestData.Type, requestData.ImageURL, requestData.OfferDetails, now)
	if err != nil {
		log.Printf("Ошибка создания сообщения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to save message"})
	}

	if err = tx.Commit(ctx); err != nil {
		log.Printf("Ошибка фиксации транзакции: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Database error"})
	}

	response := sentMessageResponse(message, requestData.ClientTempID)

	if info, err := db.GetUserInfo(ctx, userUUID); err == nil {
		message.Sender = info
	}

	otherID := conv.OtherParticipant(userUUID)
	s.pushNewMessage(ctx, conv.ID, userUUID, otherID, message)

	return c.Status(fiber.StatusCreated).JSON(response)
}

// MarkRead отмечает сообщения второго участника прочитанными
func (s *ChatService) MarkRead(c fiber.Ctx) error {
	userUUID, conv, err := s.requireParticipant(c)
	if conv == nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	s.markRead(ctx, conv, userUUID)
	return c.JSON(fiber.Map{"success": true})
}

// UpdateOfferStatus принимает или отклоняет предложение обмена.
// Снимок предмета внутри сообщения не переписывается
func (s *ChatService) UpdateOfferStatus(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	messageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid message ID"})
	}

	var requestData struct {
		Status string `json:"status"`
	}
	if err := c.Bind().Body(&requestData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	if requestData.Status != models.OfferStatusAccepted && requestData.Status != models.OfferStatusDeclined {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Status must be accepted or declined"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	// Загружаем сообщение и проверяем доступ
	var convID uuid.UUID
	var msgType string
	var offerJSON []byte

	err = db.Pool.QueryRow(ctx, `
		SELECT conversation_id, type, offer_details FROM messages WHERE id = $1
	`, messageID).Scan(&convID, &msgType, &offerJSON)

	if err != nil {
		if err == pgx.ErrNoRows {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Message not found"})
		}
		log.Printf("Ошибка запроса сообщения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load message"})
	}

	if msgType != models.MessageTypeOffer || offerJSON == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Message is not an offer"})
	}

	conv, err := db.GetConversation(ctx, convID)
	if err != nil {
		log.Printf("Ошибка запроса диалога: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load conversation"})
	}
	if !conv.HasParticipant(userUUID) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not have access to this conversation"})
	}

	var offer models.OfferDetails
	if err := json.Unmarshal(offerJSON, &offer); err != nil {
		log.Printf("Ошибка разбора предложения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to parse offer"})
	}
	if offer.Status != models.OfferStatusPending {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Offer has already been resolved"})
	}

	// Меняем только статус, снимок предмета остается нетронутым.
	// Проверка выше — быстрый путь; авторитетен guard на самом UPDATE
	tag, err := db.Pool.Exec(ctx, resolveOfferQuery, requestData.Status, messageID)
	if err != nil {
		log.Printf("Ошибка обновления предложения: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update offer"})
	}
	if tag.RowsAffected() == 0 {
		// Параллельный ответ успел раньше
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Offer has already been resolved"})
	}

	// Оповещаем обоих участников
	payload, _ := json.Marshal(fiber.Map{"message_id": messageID, "status": requestData.Status})
	event := websocket.Event{
		Type:           websocket.EventOfferUpdated,
		ConversationID: convID.String(),
		MessageID:      messageID.String(),
		UserID:         userUUID.String(),
		Timestamp:      time.Now(),
		Payload:        payload,
	}
	s.ws.SendToUser(conv.UserLow.String(), event)
	s.ws.SendToUser(conv.UserHigh.String(), event)

	return c.JSON(fiber.Map{"success": true, "status": requestData.Status})
}

// GetUnreadCount возвращает суммарное число непрочитанных сообщений
// пользователя для бейджа в навигации
func (s *ChatService) GetUnreadCount(c fiber.Ctx) error {
	userID := c.Locals("userID").(string)
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	count, err := db.CountUnreadMessages(ctx, userUUID)
	if err != nil {
		log.Printf("Ошибка подсчета непрочитанных: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to count unread messages"})
	}

	return c.JSON(fiber.Map{"count": count})
}

// requireParticipant загружает диалог из параметра маршрута и проверяет,
// что текущий пользователь является его участником
func (s *ChatService) requireParticipant(c fiber.Ctx) (uuid.UUID, *models.Conversation, error) {
	userID := c.Locals("userID").(string)
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user ID"})
	}

	convID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, nil, c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	conv, err := db.GetConversation(ctx, convID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return uuid.Nil, nil, c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Conversation not found"})
		}
		log.Printf("Ошибка запроса диалога: %v", err)
		return uuid.Nil, nil, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load conversation"})
	}

	if !conv.HasParticipant(userUUID) {
		return uuid.Nil, nil, c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You do not have access to this conversation"})
	}

	return userUUID, conv, nil
}

// markRead отмечает прочитанными только сообщения второго участника,
// собственные сообщения пользователя не затрагиваются
func (s *ChatService) markRead(ctx context.Context, conv *models.Conversation, userUUID uuid.UUID) {
	tag, err := db.Pool.Exec(ctx, markReadQuery, conv.ID, userUUID)

	if err != nil {
		log.Printf("Ошибка обновления статуса прочтения: %v", err)
		// Не возвращаем ошибку, основная функциональность выполнена
		return
	}

	if tag.RowsAffected() == 0 {
		return
	}

	// Второй участник видит отметку "прочитано" на своих сообщениях
	otherID := conv.OtherParticipant(userUUID)
	s.ws.SendToUser(otherID.String(), websocket.Event{
		Type:           websocket.EventMessageRead,
		ConversationID: conv.ID.String(),
		UserID:         userUUID.String(),
		Timestamp:      time.Now(),
	})

	// Бейдж читателя пересчитывается
	s.pushUnreadCount(ctx, userUUID)
}

// pushNewMessage рассылает событие о новом сообщении обоим участникам
// и обновляет бейдж получателя
func (s *ChatService) pushNewMessage(ctx context.Context, convID, senderID, receiverID uuid.UUID, message *models.Message) {
	payload, err := json.Marshal(message)
	if err != nil {
		log.Printf("Ошибка сериализации сообщения: %v", err)
		return
	}

	event := websocket.Event{
		Type:           websocket.EventNewMessage,
		ConversationID: convID.String(),
		MessageID:      message.ID.String(),
		UserID:         senderID.String(),
		Timestamp:      time.Now(),
		Payload:        payload,
	}

	// Получателю и остальным устройствам отправителя: client_temp_id
	// в payload позволяет отправителю заменить оптимистичную запись
	s.ws.SendToUser(receiverID.String(), event)
	s.ws.SendToUser(senderID.String(), event)

	s.pushUnreadCount(ctx, receiverID)
}

// pushUnreadCount отправляет пользователю актуальный счетчик непрочитанных
func (s *ChatService) pushUnreadCount(ctx context.Context, userID uuid.UUID) {
	count, err := db.CountUnreadMessages(ctx, userID)
	if err != nil {
		log.Printf("Ошибка подсчета непрочитанных: %v", err)
		return
	}
	s.ws.BroadcastUnreadCount(userID.String(), count)
}
