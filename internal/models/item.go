package models

import (
	"time"

	"github.com/google/uuid"
)

// Типы объявлений: предмет для обмена или запрос "ищу"
const (
	ItemTypeItem       = "item"
	ItemTypeLookingFor = "looking_for"
)

// Статусы объявления. Переход active -> traded односторонний,
// обратный переход в API не предусмотрен.
const (
	ItemStatusActive = "active"
	ItemStatusTraded = "traded"
)

// Item представляет объявление в системе
type Item struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	Condition   string     `json:"condition,omitempty"`
	Type        string     `json:"type"`
	LookingFor  string     `json:"looking_for,omitempty"`
	Location    string     `json:"location,omitempty"`
	Latitude    *float64   `json:"latitude,omitempty"`
	Longitude   *float64   `json:"longitude,omitempty"`
	Photos      []string   `json:"photos"`
	Status      string     `json:"status"`
	TradedWith  *uuid.UUID `json:"traded_with,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Дополнительные поля для API
	Owner *UserInfo `json:"owner,omitempty"`
}

// ValidItemType проверяет тип объявления
func ValidItemType(t string) bool {
	return t == ItemTypeItem || t == ItemTypeLookingFor
}
