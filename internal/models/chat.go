package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Conversation представляет диалог между двумя пользователями.
// Пара участников хранится нормализованно (user_low < user_high побайтово),
// уникальный индекс по паре исключает дубликаты диалогов.
type Conversation struct {
	ID          uuid.UUID  `json:"id"`
	UserLow     uuid.UUID  `json:"user_low"`
	UserHigh    uuid.UUID  `json:"user_high"`
	LastMessage string     `json:"last_message,omitempty"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`

	// Дополнительные поля для API
	OtherUser   *UserInfo `json:"other_user,omitempty"`
	UnreadCount int       `json:"unread_count,omitempty"`
}

// OtherParticipant возвращает второго участника диалога
func (c *Conversation) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if c.UserLow == userID {
		return c.UserHigh
	}
	return c.UserLow
}

// HasParticipant проверяет, участвует ли пользователь в диалоге
func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.UserLow == userID || c.UserHigh == userID
}

// NormalizePair упорядочивает пару участников для хранения
func NormalizePair(a, b uuid.UUID) (low, high uuid.UUID) {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return a, b
	}
	return b, a
}

// Типы сообщений
const (
	MessageTypeText  = "text"
	MessageTypeImage = "image"
	MessageTypeOffer = "offer"
)

// Статусы предложения обмена, встроенного в сообщение
const (
	OfferStatusPending  = "pending"
	OfferStatusAccepted = "accepted"
	OfferStatusDeclined = "declined"
)

// OfferDetails представляет снимок предложения обмена внутри сообщения.
// Снимок предмета неизменен после отправки и может устареть относительно
// актуального объявления.
type OfferDetails struct {
	Item            json.RawMessage `json:"item,omitempty"`
	Status          string          `json:"status"`
	TargetListingID *uuid.UUID      `json:"target_listing_id,omitempty"`
}

// Message представляет сообщение в диалоге
type Message struct {
	ID             uuid.UUID     `json:"id"`
	ConversationID uuid.UUID     `json:"conversation_id"`
	SenderID       uuid.UUID     `json:"sender_id"`
	Text           string        `json:"text,omitempty"`
	Type           string        `json:"type"`
	ImageURL       string        `json:"image_url,omitempty"`
	OfferDetails   *OfferDetails `json:"offer_details,omitempty"`
	IsRead         bool          `json:"is_read"`
	CreatedAt      time.Time     `json:"created_at"`

	// ClientTempID возвращается клиенту как есть, чтобы он мог заменить
	// оптимистично показанное сообщение на сохраненное без дубликатов
	ClientTempID string `json:"client_temp_id,omitempty"`

	// Дополнительные поля для API
	Sender *UserInfo `json:"sender,omitempty"`
}

// ValidMessageType проверяет тип сообщения
func ValidMessageType(t string) bool {
	return t == MessageTypeText || t == MessageTypeImage || t == MessageTypeOffer
}
