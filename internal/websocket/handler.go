package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jantaller/swapta-api/internal/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Браузерный клиент живет на другом origin
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWS апгрейдит HTTP-соединение до WebSocket.
// Токен передается query-параметром, т.к. браузерный WebSocket API
// не позволяет задавать заголовок Authorization.
func ServeWS(m *Manager, jwtService *utils.JWTService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "Missing token", http.StatusUnauthorized)
			return
		}

		userID, err := jwtService.ExtractUserID(token)
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("Ошибка апгрейда WebSocket: %v", err)
			return
		}

		client := NewClient(userID, conn, m)
		client.Start()

		// Подтверждаем подключение
		payload, _ := json.Marshal(map[string]string{"client_id": client.ID.String()})
		m.SendToUser(userID, Event{
			Type:      EventConnected,
			UserID:    userID,
			Timestamp: time.Now(),
			Payload:   payload,
		})
	}
}
