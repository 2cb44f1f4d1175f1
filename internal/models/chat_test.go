package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePair(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("ffffffff-ffff-ffff-ffff-ffffffffffff")

	// Порядок аргументов не влияет на результат
	low1, high1 := NormalizePair(a, b)
	low2, high2 := NormalizePair(b, a)

	assert.Equal(t, low1, low2)
	assert.Equal(t, high1, high2)
	assert.Equal(t, a, low1)
	assert.Equal(t, b, high1)
}

func TestNormalizePairEqual(t *testing.T) {
	a := uuid.New()
	low, high := NormalizePair(a, a)
	assert.Equal(t, a, low)
	assert.Equal(t, a, high)
}

func TestConversationParticipants(t *testing.T) {
	userA := uuid.New()
	userB := uuid.New()
	low, high := NormalizePair(userA, userB)

	conv := Conversation{UserLow: low, UserHigh: high}

	assert.True(t, conv.HasParticipant(userA))
	assert.True(t, conv.HasParticipant(userB))
	assert.False(t, conv.HasParticipant(uuid.New()))

	assert.Equal(t, userB, conv.OtherParticipant(userA))
	assert.Equal(t, userA, conv.OtherParticipant(userB))
}

func TestValidMessageType(t *testing.T) {
	assert.True(t, ValidMessageType(MessageTypeText))
	assert.True(t, ValidMessageType(MessageTypeImage))
	assert.True(t, ValidMessageType(MessageTypeOffer))
	assert.False(t, ValidMessageType("video"))
	assert.False(t, ValidMessageType(""))
}
