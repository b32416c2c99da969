package models

import (
	"fmt"

	"github.com/google/uuid"
)

// Типы уведомлений
const (
	NotificationNewMessage       = "new_message"
	NotificationNewResponse      = "new_response"
	NotificationResponseRejected = "response_rejected"
	NotificationResponseAccepted = "response_accepted"
	NotificationTaskCompleted    = "task_completed"
	NotificationRatingChanged    = "rating_changed"
)

// NotificationEvent — готовое к доставке уведомление. Не персистится:
// живёт от сборки сообщения до попытки доставки получателю.
type NotificationEvent struct {
	RecipientID uuid.UUID `json:"recipient_id"`
	Message     string    `json:"message"`
	Type        string    `json:"type"`
}

// QueuedNotification — полезная нагрузка сообщения в очереди.
// Поля-аргументы заполняются в зависимости от типа уведомления.
type QueuedNotification struct {
	Type          string    `json:"type"`
	RecipientID   uuid.UUID `json:"recipient_id"`
	SenderName    string    `json:"sender_name,omitempty"`
	ResponderName string    `json:"responder_name,omitempty"`
	TaskTitle     string    `json:"task_title,omitempty"`
	NewRating     float64   `json:"new_rating,omitempty"`
}

// BuildNotification собирает NotificationEvent из сообщения очереди по
// фиксированному шаблону для каждого типа. Возвращает ошибку для
// нераспознанного типа — такие сообщения не подлежат повторной доставке.
func BuildNotification(q QueuedNotification) (*NotificationEvent, error) {
	var message string

	switch q.Type {
	case NotificationNewMessage:
		message = fmt.Sprintf("У вас новое сообщение от %s", q.SenderName)
	case NotificationNewResponse:
		message = fmt.Sprintf("У вас новый отклик от %s", q.ResponderName)
	case NotificationResponseRejected:
		message = "Ваш отклик был отклонен"
	case NotificationResponseAccepted:
		message = "Ваш отклик был принят"
	case NotificationTaskCompleted:
		message = fmt.Sprintf("Работа '%s' выполнена", q.TaskTitle)
	case NotificationRatingChanged:
		message = fmt.Sprintf("Ваш рейтинг обновлен: %v", q.NewRating)
	default:
		return nil, fmt.Errorf("неизвестный тип уведомления: %q", q.Type)
	}

	return &NotificationEvent{
		RecipientID: q.RecipientID,
		Message:     message,
		Type:        q.Type,
	}, nil
}
