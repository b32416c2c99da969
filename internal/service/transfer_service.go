package service

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/taskpay-backend/internal/logger"
)

// BalanceLedger описывает взаимодействие с реестром балансов.
type BalanceLedger interface {
	Get(userID uuid.UUID) float64
	Deposit(userID uuid.UUID, amount float64) float64
	Transfer(from, to uuid.UUID, amount float64) bool
}

// TransferService координирует перевод средств между двумя балансами.
// Перевод — единая логическая операция: авторитетная проверка средств
// и обе мутации выполняются атомарно внутри реестра.
type TransferService struct {
	ledger BalanceLedger
}

// NewTransferService создаёт новый координатор переводов.
func NewTransferService(ledger BalanceLedger) *TransferService {
	return &TransferService{ledger: ledger}
}

// Transfer переводит amount от from к to. Возвращает false, если средств
// недостаточно: это ожидаемый исход, а не ошибка.
func (s *TransferService) Transfer(from, to uuid.UUID, amount float64) bool {
	ok := s.ledger.Transfer(from, to, amount)

	if logger.Log != nil {
		logger.Log.WithFields(logrus.Fields{
			"from":   from,
			"to":     to,
			"amount": amount,
			"ok":     ok,
		}).Info("transfer")
	}

	return ok
}

// Balance возвращает текущий баланс пользователя (0 для неизвестного).
func (s *TransferService) Balance(userID uuid.UUID) float64 {
	return s.ledger.Get(userID)
}

// Deposit пополняет баланс пользователя и возвращает новое значение.
func (s *TransferService) Deposit(userID uuid.UUID, amount float64) float64 {
	return s.ledger.Deposit(userID, amount)
}
