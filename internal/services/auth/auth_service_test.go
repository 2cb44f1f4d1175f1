package auth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUsernameFromEmail(t *testing.T) {
	assert.Equal(t, "maria", usernameFromEmail("maria@example.com"))
	assert.Equal(t, "j.doe", usernameFromEmail("j.doe@mail.org"))

	// Строка без @ возвращается как есть
	assert.Equal(t, "noemail", usernameFromEmail("noemail"))
}

func TestDefaultAvatarURL(t *testing.T) {
	url := defaultAvatarURL("Maria Santos")
	assert.Contains(t, url, "ui-avatars.com")
	assert.Contains(t, url, "Maria+Santos")

	// Пустое имя заменяется заглушкой
	assert.Contains(t, defaultAvatarURL(""), "name=User")
}

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}
	assert.True(t, isUniqueViolation(unique))

	// Обертки не мешают распознаванию
	assert.True(t, isUniqueViolation(fmt.Errorf("ошибка при создании профиля: %w", unique)))

	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
	assert.False(t, isUniqueViolation(nil))
}

func TestPasswordRoundtrip(t *testing.T) {
	hash, err := hashPassword("secret123")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "secret123", hash)

	assert.True(t, checkPassword(hash, "secret123"))
	assert.False(t, checkPassword(hash, "secret124"))
	assert.False(t, checkPassword("", "secret123"))
}
