package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/taskpay-backend/internal/logger"
	"github.com/ignatzorin/taskpay-backend/internal/models"
	"github.com/ignatzorin/taskpay-backend/internal/pkg/apperror"
	"github.com/ignatzorin/taskpay-backend/internal/repository"
)

// PaymentRepository описывает взаимодействие движка с хранилищем платежей.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	List(ctx context.Context) ([]models.Payment, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	Cancel(ctx context.Context, id uuid.UUID) error
	Finish(ctx context.Context, id uuid.UUID, status string, transactionID *string, completedAt time.Time) error
	MarkTransferFailed(ctx context.Context, id uuid.UUID) error
}

// TaskSource — read-only доступ к задачам, доступным для оплаты,
// плюс единственная мутация: удаление задачи после успешной оплаты.
type TaskSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.PayableTask, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// FundsTransferer выполняет перевод средств и отдаёт текущие балансы.
type FundsTransferer interface {
	Balance(userID uuid.UUID) float64
	Transfer(from, to uuid.UUID, amount float64) bool
}

// OutcomeSource решает исход обращения к платёжному шлюзу.
// Внедряется снаружи, чтобы тесты могли форсировать детерминированный исход.
type OutcomeSource interface {
	Successful() bool
}

// RandomOutcome — боевой источник исходов: успех с вероятностью SuccessRate.
type RandomOutcome struct {
	SuccessRate float64
}

func (o RandomOutcome) Successful() bool {
	return rand.Float64() < o.SuccessRate
}

// Delay моделирует задержку обращения к шлюзу. Обязана уважать контекст.
type Delay func(ctx context.Context) error

// SleepDelay возвращает Delay, ожидающий d или отмену контекста.
func SleepDelay(d time.Duration) Delay {
	return func(ctx context.Context) error {
		if d <= 0 {
			return nil
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}
}

// EventPublisher публикует события уведомлений в исходящую очередь.
type EventPublisher interface {
	Publish(ctx context.Context, event models.QueuedNotification) error
}

// PaymentService — машина состояний платежа:
// PENDING → PROCESSING → {COMPLETED, FAILED}; CANCELLED достижим только из PENDING.
// Ни один переход не обратим.
type PaymentService struct {
	payments PaymentRepository
	tasks    TaskSource
	funds    FundsTransferer
	outcomes OutcomeSource
	delay    Delay
	events   EventPublisher
}

// NewPaymentService создаёт новый платёжный сервис.
func NewPaymentService(
	payments PaymentRepository,
	tasks TaskSource,
	funds FundsTransferer,
	outcomes OutcomeSource,
	delay Delay,
	events EventPublisher,
) *PaymentService {
	return &PaymentService{
		payments: payments,
		tasks:    tasks,
		funds:    funds,
		outcomes: outcomes,
		delay:    delay,
		events:   events,
	}
}

// SelectMethod выбирает способ оплаты задачи и создаёт платёж в статусе pending.
// Сумма берётся из цены задачи, заказчик — из её владельца.
//
// Проверка баланса здесь носит справочный характер и ничего не резервирует:
// два конкурентных вызова для одного заказчика могут оба её пройти.
// Авторитетная проверка выполняется повторно в момент перевода средств.
func (s *PaymentService) SelectMethod(ctx context.Context, taskID, assignedUserID uuid.UUID, method string) (*models.Payment, error) {
	if !models.ValidPaymentMethod(method) {
		return nil, apperror.ErrInvalidPaymentMethod
	}

	task, err := s.tasks.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return nil, apperror.ErrTaskNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить задачу")
	}

	if task.Price <= 0 {
		return nil, apperror.ErrInvalidAmount
	}

	if s.funds.Balance(task.CustomerID) < task.Price {
		return nil, apperror.ErrInsufficientFunds
	}

	payment := &models.Payment{
		CustomerID:     task.CustomerID,
		AssignedUserID: assignedUserID,
		TaskID:         taskID,
		Amount:         task.Price,
		Method:         method,
		Status:         models.PaymentStatusPending,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось создать платёж")
	}

	return payment, nil
}

// Process обрабатывает платёж: единственное окно перехода из pending.
// Повторный вызов для уже обработанного платежа отклоняется, а не
// повторяется молча — это граница идемпотентности.
func (s *PaymentService) Process(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, apperror.ErrPaymentNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить платёж")
	}

	// Атомарный переход pending → processing. Из двух конкурентных вызовов
	// выигрывает один; проигравший уже видит processing и получает отказ.
	if err := s.payments.MarkProcessing(ctx, paymentID); err != nil {
		switch {
		case errors.Is(err, repository.ErrPaymentNotFound):
			return nil, apperror.ErrPaymentNotFound
		case errors.Is(err, repository.ErrPaymentNotPending):
			return nil, apperror.ErrPaymentNotPending
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось начать обработку платежа")
	}
	payment.Status = models.PaymentStatusProcessing

	// Имитация обращения к платёжному шлюзу.
	if err := s.delay(ctx); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "обработка платежа прервана")
	}

	completedAt := time.Now()

	if !s.outcomes.Successful() {
		if err := s.payments.Finish(ctx, paymentID, models.PaymentStatusFailed, nil, completedAt); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сохранить статус платежа")
		}
		payment.Status = models.PaymentStatusFailed
		payment.CompletedAt = &completedAt
		return payment, nil
	}

	// Шлюз подтвердил оплату. Порядок побочных эффектов значим:
	// сначала персистим терминальный статус, затем переводим средства,
	// затем убираем задачу и эмитим уведомление.
	transactionID := newTransactionID()
	if err := s.payments.Finish(ctx, paymentID, models.PaymentStatusCompleted, &transactionID, completedAt); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось сохранить статус платежа")
	}
	payment.Status = models.PaymentStatusCompleted
	payment.TransactionID = &transactionID
	payment.CompletedAt = &completedAt

	if !s.funds.Transfer(payment.CustomerID, payment.AssignedUserID, payment.Amount) {
		// Средств не хватило между выбором способа и обработкой: платёж
		// остаётся completed со стороны шлюза, но расхождение требует
		// внимания оператора. Задача не убирается из пула.
		payment.TransferFailed = true
		if err := s.payments.MarkTransferFailed(ctx, paymentID); err != nil && logger.Log != nil {
			logger.Log.WithError(err).Error("payment: не удалось пометить платёж для сверки")
		}
		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"payment_id":     paymentID,
				"transaction_id": transactionID,
				"customer_id":    payment.CustomerID,
				"amount":         payment.Amount,
			}).Error("payment: перевод средств не прошёл после подтверждения шлюза")
		}
		return payment, nil
	}

	s.retireTask(ctx, payment)

	return payment, nil
}

// retireTask убирает оплаченную задачу из пула и эмитит уведомление
// исполнителю. Удаление — единственный неидемпотентный внешний эффект,
// поэтому уже убранная задача не считается ошибкой и не удаляется повторно.
func (s *PaymentService) retireTask(ctx context.Context, payment *models.Payment) {
	task, err := s.tasks.GetByID(ctx, payment.TaskID)
	if err != nil {
		if !errors.Is(err, repository.ErrTaskNotFound) && logger.Log != nil {
			logger.Log.WithError(err).Error("payment: не удалось получить задачу для удаления")
		}
		return
	}

	if err := s.tasks.Delete(ctx, payment.TaskID); err != nil {
		if !errors.Is(err, repository.ErrTaskNotFound) && logger.Log != nil {
			logger.Log.WithError(err).Error("payment: не удалось удалить оплаченную задачу")
		}
		return
	}

	// Сбой публикации уведомления не откатывает и не блокирует платёж.
	event := models.QueuedNotification{
		Type:        models.NotificationTaskCompleted,
		RecipientID: payment.AssignedUserID,
		TaskTitle:   task.Title,
	}
	if err := s.events.Publish(ctx, event); err != nil && logger.Log != nil {
		logger.Log.WithError(err).Warn("payment: не удалось опубликовать уведомление")
	}
}

// Cancel отменяет платёж. Отмена возможна только из статуса pending.
func (s *PaymentService) Cancel(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	if err := s.payments.Cancel(ctx, paymentID); err != nil {
		switch {
		case errors.Is(err, repository.ErrPaymentNotFound):
			return nil, apperror.ErrPaymentNotFound
		case errors.Is(err, repository.ErrPaymentNotPending):
			return nil, apperror.ErrPaymentNotPending
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось отменить платёж")
	}
	return s.GetPayment(ctx, paymentID)
}

// GetPayment возвращает платёж по идентификатору.
func (s *PaymentService) GetPayment(ctx context.Context, paymentID uuid.UUID) (*models.Payment, error) {
	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return nil, apperror.ErrPaymentNotFound
		}
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить платёж")
	}
	return payment, nil
}

// ListPayments возвращает все платежи.
func (s *PaymentService) ListPayments(ctx context.Context) ([]models.Payment, error) {
	payments, err := s.payments.List(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось получить список платежей")
	}
	return payments, nil
}

// Balance возвращает текущий баланс пользователя.
func (s *PaymentService) Balance(userID uuid.UUID) float64 {
	return s.funds.Balance(userID)
}

// newTransactionID генерирует идентификатор транзакции шлюза.
func newTransactionID() string {
	return fmt.Sprintf("TXN-%06d", rand.Intn(900000)+100000)
}
