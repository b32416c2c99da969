package ws

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
)

// DeliveryGatewayAdapter адаптирует Hub под шлюз доставки уведомлений.
type DeliveryGatewayAdapter struct {
	hub *Hub
}

// NewDeliveryGatewayAdapter создаёт новый адаптер.
func NewDeliveryGatewayAdapter(hub *Hub) *DeliveryGatewayAdapter {
	return &DeliveryGatewayAdapter{hub: hub}
}

// Send доставляет уведомление получателю через его WebSocket соединения.
// Если получатель не подключен, возвращает ErrRecipientOffline.
func (a *DeliveryGatewayAdapter) Send(ctx context.Context, recipientID uuid.UUID, subject, body string) error {
	payload, err := json.Marshal(map[string]string{
		"type":    subject,
		"message": body,
	})
	if err != nil {
		return err
	}
	return a.hub.SendToUser(recipientID, payload)
}
