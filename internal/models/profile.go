package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile представляет профиль пользователя
type Profile struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email,omitempty"`
	FullName    string    `json:"full_name,omitempty"`
	Username    string    `json:"username,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	Location    string    `json:"location,omitempty"`
	IsVerified  bool      `json:"is_verified"`
	Rating      float64   `json:"rating"`
	TradesCount int       `json:"trades_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UserInfo представляет минимальную информацию о пользователе для API
type UserInfo struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name,omitempty"`
	Username  string    `json:"username,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
}
