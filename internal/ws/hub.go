package ws

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrRecipientOffline возвращается, когда у получателя нет ни одного
// активного соединения. Для политики доставки это временный сбой:
// получатель может подключиться к моменту повторной попытки.
var ErrRecipientOffline = errors.New("ws: получатель не подключен")

// Hub управляет всеми WebSocket клиентами и доставляет им уведомления.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]map[*Client]struct{}
}

// NewHub создаёт новый хаб.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]map[*Client]struct{}),
	}
}

// Register добавляет клиента.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userID]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.clients, client.userID)
		}
	}
}

// SendToUser отправляет payload во все соединения пользователя.
// Возвращает ErrRecipientOffline, если соединений нет.
func (h *Hub) SendToUser(userID uuid.UUID, payload []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.clients[userID]
	if len(clients) == 0 {
		return ErrRecipientOffline
	}

	for client := range clients {
		select {
		case client.send <- payload:
		default:
			// Клиент не успевает вычитывать: закрываем его асинхронно,
			// чтобы не блокировать доставку остальным.
			go client.Close()
		}
	}
	return nil
}

// Online сообщает, есть ли у пользователя активные соединения.
func (h *Hub) Online(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID]) > 0
}
