package dto

// SelectMethodRequest represents the request to create a pending payment
type SelectMethodRequest struct {
	TaskID         string `json:"task_id" binding:"required"`
	AssignedUserID string `json:"assigned_user_id" binding:"required"`
	PaymentMethod  string `json:"payment_method" binding:"required"`
}

// ProcessPaymentRequest represents the request to process a pending payment
type ProcessPaymentRequest struct {
	PaymentID string `json:"payment_id" binding:"required"`
}

// CancelPaymentRequest represents the request to cancel a pending payment
type CancelPaymentRequest struct {
	PaymentID string `json:"payment_id" binding:"required"`
}

// DepositRequest represents the request to top up a user balance
type DepositRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// CreateTaskRequest represents the request to create a payable task
type CreateTaskRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required"`
	CustomerID  string  `json:"customer_id" binding:"required"`
}

// CreateUserRequest represents the request to register a user
type CreateUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
}

// NewMessageNotificationRequest represents a new-message notification
type NewMessageNotificationRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	SenderName  string `json:"sender_name" binding:"required"`
}

// NewResponseNotificationRequest represents a new-response notification
type NewResponseNotificationRequest struct {
	RecipientID   string `json:"recipient_id" binding:"required"`
	ResponderName string `json:"responder_name" binding:"required"`
}

// ResponseStatusNotificationRequest represents an accepted/rejected response notification
type ResponseStatusNotificationRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
}

// TaskCompletedNotificationRequest represents a task-completed notification
type TaskCompletedNotificationRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	TaskTitle   string `json:"task_title" binding:"required"`
}

// RatingChangedNotificationRequest represents a rating-changed notification
type RatingChangedNotificationRequest struct {
	RecipientID string  `json:"recipient_id" binding:"required"`
	NewRating   float64 `json:"new_rating" binding:"required"`
}
