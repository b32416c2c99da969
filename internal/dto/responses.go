package dto

import (
	"github.com/google/uuid"

	"github.com/ignatzorin/taskpay-backend/internal/models"
)

// ErrorResponse represents an API error payload
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BalanceResponse represents a user balance
type BalanceResponse struct {
	UserID  uuid.UUID `json:"user_id"`
	Balance float64   `json:"balance"`
}

// NotificationResponse represents a dispatched notification
type NotificationResponse struct {
	*models.NotificationEvent
	Status string `json:"status"`
}

// NewNotificationResponse creates a NotificationResponse for an enqueued event
func NewNotificationResponse(event *models.NotificationEvent) *NotificationResponse {
	return &NotificationResponse{
		NotificationEvent: event,
		Status:            "queued",
	}
}
