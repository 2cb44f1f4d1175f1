package chat

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jantaller/swapta-api/internal/models"
)

func TestPreviewText(t *testing.T) {
	assert.Equal(t, "Hello!", previewText(models.MessageTypeText, "Hello!"))
	assert.Equal(t, "📷 Image", previewText(models.MessageTypeImage, ""))
	assert.Equal(t, "Sent an offer", previewText(models.MessageTypeOffer, "I have an offer for you!"))
}

func TestValidateSendRequestDefaults(t *testing.T) {
	// Пустой тип трактуется как текстовое сообщение
	req := sendRequest{Text: "hi"}
	require.NoError(t, validateSendRequest(&req))
	assert.Equal(t, models.MessageTypeText, req.Type)
}

func TestValidateSendRequestText(t *testing.T) {
	req := sendRequest{Type: models.MessageTypeText}
	assert.Error(t, validateSendRequest(&req))
}

func TestValidateSendRequestImage(t *testing.T) {
	req := sendRequest{Type: models.MessageTypeImage}
	assert.Error(t, validateSendRequest(&req))

	req.ImageURL = "https://example.com/photo.jpg"
	assert.NoError(t, validateSendRequest(&req))
}

func TestValidateSendRequestOffer(t *testing.T) {
	req := sendRequest{Type: models.MessageTypeOffer}
	assert.Error(t, validateSendRequest(&req))

	// Статус входящего предложения принудительно сбрасывается в pending,
	// клиент не может создать уже принятое предложение
	req.OfferDetails = &models.OfferDetails{Status: models.OfferStatusAccepted}
	require.NoError(t, validateSendRequest(&req))
	assert.Equal(t, models.OfferStatusPending, req.OfferDetails.Status)
	assert.Equal(t, "I have an offer for you!", req.Text)
}

func TestValidateSendRequestUnknownType(t *testing.T) {
	req := sendRequest{Type: "video", Text: "hi"}
	assert.Error(t, validateSendRequest(&req))
}

func TestReverseMessages(t *testing.T) {
	now := time.Now()
	messages := []models.Message{
		{ID: uuid.New(), CreatedAt: now.Add(2 * time.Minute)},
		{ID: uuid.New(), CreatedAt: now.Add(time.Minute)},
		{ID: uuid.New(), CreatedAt: now},
	}

	reverseMessages(messages)

	// После разворота сообщения идут по возрастанию времени
	assert.True(t, messages[0].CreatedAt.Before(messages[1].CreatedAt))
	assert.True(t, messages[1].CreatedAt.Before(messages[2].CreatedAt))
}

func TestMarkReadQueryTouchesOnlyOtherSender(t *testing.T) {
	// Прочитанными помечаются только чужие сообщения, собственные
	// сообщения читателя запрос не затрагивает
	assert.Contains(t, markReadQuery, "sender_id <> $2")
	assert.Contains(t, markReadQuery, "is_read = false")
	assert.Contains(t, markReadQuery, "conversation_id = $1")
}

func TestResolveOfferQueryGuardsPending(t *testing.T) {
	// Терминальный статус перезаписать нельзя: guard стоит на самом
	// UPDATE, при двух одновременных ответах побеждает ровно один
	assert.Contains(t, resolveOfferQuery, "offer_details->>'status' = 'pending'")
	assert.Contains(t, resolveOfferQuery, "type = 'offer'")
	assert.Contains(t, resolveOfferQuery, "jsonb_set")
}

func TestSentMessageResponseEchoesClientTempID(t *testing.T) {
	message := &models.Message{
		ID:   uuid.New(),
		Type: models.MessageTypeText,
		Text: "hi",
	}

	response := sentMessageResponse(message, "tmp-42")

	got, ok := response["message"].(*models.Message)
	require.True(t, ok)
	assert.Equal(t, "tmp-42", got.ClientTempID)
	assert.Equal(t, message.ID, got.ID)
	assert.Equal(t, true, response["success"])

	// Без client_temp_id в запросе поле остается пустым
	plain := sentMessageResponse(&models.Message{ID: uuid.New()}, "")
	assert.Empty(t, plain["message"].(*models.Message).ClientTempID)
}

func TestTrimPage(t *testing.T) {
	page := make([]models.Message, messagePageSize+1)
	for i := range page {
		page[i].ID = uuid.New()
	}

	// Зондирующая строка отсекается и сигнализирует о следующей странице
	trimmed, hasMore := trimPage(page)
	assert.True(t, hasMore)
	assert.Len(t, trimmed, messagePageSize)

	// Ровно полная страница без запасной строки — последняя
	full, hasMore := trimPage(page[:messagePageSize])
	assert.False(t, hasMore)
	assert.Len(t, full, messagePageSize)

	short, hasMore := trimPage(page[:3])
	assert.False(t, hasMore)
	assert.Len(t, short, 3)
}

func TestReverseMessagesEmpty(t *testing.T) {
	assert.NotPanics(t, func() {
		reverseMessages(nil)
		reverseMessages([]models.Message{})
		reverseMessages([]models.Message{{ID: uuid.New()}})
	})
}
