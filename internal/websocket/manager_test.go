package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receiveEvent(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case raw := <-c.send:
		var event Event
		require.NoError(t, json.Unmarshal(raw, &event))
		return event
	case <-time.After(time.Second):
		t.Fatal("событие не получено")
		return Event{}
	}
}

func TestAddRemoveClient(t *testing.T) {
	m := NewManager(nil)
	defer m.Shutdown()

	userID := uuid.New().String()
	client := NewClient(userID, nil, m)
	m.AddClient(client)

	m.userMutex.RLock()
	assert.Len(t, m.userClients[userID], 1)
	m.userMutex.RUnlock()

	m.RemoveClient(client.ID)

	m.userMutex.RLock()
	_, exists := m.userClients[userID]
	m.userMutex.RUnlock()
	assert.False(t, exists)
}

func TestSendToUser(t *testing.T) {
	m := NewManager(nil)
	defer m.Shutdown()

	userID := uuid.New().String()
	client := NewClient(userID, nil, m)
	m.AddClient(client)

	m.SendToUser(userID, Event{Type: EventNewMessage, UserID: userID})

	event := receiveEvent(t, client)
	assert.Equal(t, EventNewMessage, event.Type)
	assert.Equal(t, userID, event.UserID)
	assert.False(t, event.Timestamp.IsZero())
}

func TestSendToUserOffline(t *testing.T) {
	m := NewManager(nil)
	defer m.Shutdown()

	// Отправка офлайн-пользователю не должна паниковать
	assert.NotPanics(t, func() {
		m.SendToUser(uuid.New().String(), Event{Type: EventNewMessage})
	})
}

func TestSendToUserAllConnections(t *testing.T) {
	m := NewManager(nil)
	defer m.Shutdown()

	// Пользователь с двумя устройствами получает событие на оба
	userID := uuid.New().String()
	first := NewClient(userID, nil, m)
	second := NewClient(userID, nil, m)
	m.AddClient(first)
	m.AddClient(second)

	m.SendToUser(userID, Event{Type: EventMessageRead})

	assert.Equal(t, EventMessageRead, receiveEvent(t, first).Type)
	assert.Equal(t, EventMessageRead, receiveEvent(t, second).Type)
}

func TestSendToConversation(t *testing.T) {
	userA := uuid.New()
	userB := uuid.New()
	convID := uuid.New()

	participants := func(ctx context.Context, id uuid.UUID) ([]uuid.UUID, error) {
		assert.Equal(t, convID, id)
		return []uuid.UUID{userA, userB}, nil
	}

	m := NewManager(participants)
	defer m.Shutdown()

	clientA := NewClient(userA.String(), nil, m)
	clientB := NewClient(userB.String(), nil, m)
	m.AddClient(clientA)
	m.AddClient(clientB)

	// Отправитель исключается из рассылки
	m.SendToConversation(convID.String(), Event{Type: EventTyping}, userA.String())

	event := receiveEvent(t, clientB)
	assert.Equal(t, EventTyping, event.Type)

	select {
	case <-clientA.send:
		t.Fatal("отправитель не должен получать собственное событие")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBroadcastUnreadCount(t *testing.T) {
	m := NewManager(nil)
	defer m.Shutdown()

	userID := uuid.New().String()
	client := NewClient(userID, nil, m)
	m.AddClient(client)

	m.BroadcastUnreadCount(userID, 7)

	event := receiveEvent(t, client)
	assert.Equal(t, EventUnreadCount, event.Type)

	var payload map[string]int
	require.NoError(t, json.Unmarshal(event.Payload, &payload))
	assert.Equal(t, 7, payload["count"])
}
