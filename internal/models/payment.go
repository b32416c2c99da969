package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы платежа
const (
	PaymentStatusPending    = "pending"
	PaymentStatusProcessing = "processing"
	PaymentStatusCompleted  = "completed"
	PaymentStatusFailed     = "failed"
	PaymentStatusCancelled  = "cancelled"
)

// Способы оплаты
const (
	PaymentMethodCard             = "card"
	PaymentMethodBankTransfer     = "bank_transfer"
	PaymentMethodElectronicWallet = "electronic_wallet"
	PaymentMethodCrypto           = "crypto"
)

// ValidPaymentMethod проверяет, что способ оплаты входит в список поддерживаемых.
func ValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodElectronicWallet, PaymentMethodCrypto:
		return true
	}
	return false
}

// Payment представляет одну попытку перевода средств от заказчика исполнителю.
// Записи не удаляются: терминальные статусы сохраняются для аудита.
type Payment struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	CustomerID     uuid.UUID  `db:"customer_id" json:"customer_id"`
	AssignedUserID uuid.UUID  `db:"assigned_user_id" json:"assigned_user_id"`
	TaskID         uuid.UUID  `db:"task_id" json:"task_id"`
	Amount         float64    `db:"amount" json:"amount"`
	Method         string     `db:"method" json:"payment_method"`
	Status         string     `db:"status" json:"status"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	CompletedAt    *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	TransactionID  *string    `db:"transaction_id" json:"transaction_id,omitempty"`
	// TransferFailed выставляется, когда шлюз подтвердил оплату,
	// а перевод средств не прошёл. Такой платёж требует сверки оператором.
	TransferFailed bool `db:"transfer_failed" json:"transfer_failed"`
}
