package models

import (
	"time"

	"github.com/google/uuid"
)

// PayableTask описывает задачу, доступную для оплаты.
// Задача удаляется из пула единственный раз — после успешного завершения платежа.
type PayableTask struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Price       float64   `db:"price" json:"price"`
	CustomerID  uuid.UUID `db:"customer_id" json:"customer_id"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
