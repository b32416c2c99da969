package models

import (
	"time"

	"github.com/google/uuid"
)

// User описывает пользователя платформы (заказчика или исполнителя).
type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
