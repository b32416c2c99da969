package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/taskpay-backend/internal/ledger"
	"github.com/ignatzorin/taskpay-backend/internal/models"
	"github.com/ignatzorin/taskpay-backend/internal/pkg/apperror"
	"github.com/ignatzorin/taskpay-backend/internal/repository"
)

// fakePaymentRepo хранит платежи в памяти и воспроизводит CAS-семантику
// переходов статуса, как это делает Postgres-репозиторий.
type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*models.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]*models.Payment)}
}

func (r *fakePaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment.ID = uuid.New()
	payment.CreatedAt = time.Now()
	clone := *payment
	r.payments[payment.ID] = &clone
	return nil
}

func (r *fakePaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.payments[id]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	clone := *payment
	return &clone, nil
}

func (r *fakePaymentRepo) List(ctx context.Context) ([]models.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Payment, 0, len(r.payments))
	for _, p := range r.payments {
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePaymentRepo) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	return r.compareAndSet(id, models.PaymentStatusPending, models.PaymentStatusProcessing)
}

func (r *fakePaymentRepo) Cancel(ctx context.Context, id uuid.UUID) error {
	return r.compareAndSet(id, models.PaymentStatusPending, models.PaymentStatusCancelled)
}

func (r *fakePaymentRepo) compareAndSet(id uuid.UUID, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.payments[id]
	if !ok {
		return repository.ErrPaymentNotFound
	}
	if payment.Status != from {
		return repository.ErrPaymentNotPending
	}
	payment.Status = to
	return nil
}

func (r *fakePaymentRepo) Finish(ctx context.Context, id uuid.UUID, status string, transactionID *string, completedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.payments[id]
	if !ok {
		return repository.ErrPaymentNotFound
	}
	payment.Status = status
	payment.TransactionID = transactionID
	payment.CompletedAt = &completedAt
	return nil
}

func (r *fakePaymentRepo) MarkTransferFailed(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	payment, ok := r.payments[id]
	if !ok {
		return repository.ErrPaymentNotFound
	}
	payment.TransferFailed = true
	return nil
}

// fakeTaskSource хранит задачи в памяти.
type fakeTaskSource struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*models.PayableTask
}

func newFakeTaskSource() *fakeTaskSource {
	return &fakeTaskSource{tasks: make(map[uuid.UUID]*models.PayableTask)}
}

func (s *fakeTaskSource) add(task *models.PayableTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.ID] = task
}

func (s *fakeTaskSource) GetByID(ctx context.Context, id uuid.UUID) (*models.PayableTask, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, repository.ErrTaskNotFound
	}
	clone := *task
	return &clone, nil
}

func (s *fakeTaskSource) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return repository.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *fakeTaskSource) has(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[id]
	return ok
}

// fixedOutcome форсирует исход обращения к шлюзу.
type fixedOutcome struct {
	success bool
}

func (o fixedOutcome) Successful() bool { return o.success }

// capturePublisher собирает опубликованные события.
type capturePublisher struct {
	mu     sync.Mutex
	events []models.QueuedNotification
}

func (p *capturePublisher) Publish(ctx context.Context, event models.QueuedNotification) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) all() []models.QueuedNotification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.QueuedNotification(nil), p.events...)
}

func noDelay(ctx context.Context) error { return nil }

type paymentFixture struct {
	svc        *PaymentService
	repo       *fakePaymentRepo
	tasks      *fakeTaskSource
	balances   *ledger.Ledger
	events     *capturePublisher
	customerID uuid.UUID
	workerID   uuid.UUID
	task       *models.PayableTask
}

func newPaymentFixture(t *testing.T, outcome OutcomeSource) *paymentFixture {
	t.Helper()

	f := &paymentFixture{
		repo:       newFakePaymentRepo(),
		tasks:      newFakeTaskSource(),
		balances:   ledger.New(),
		events:     &capturePublisher{},
		customerID: uuid.New(),
		workerID:   uuid.New(),
	}
	f.task = &models.PayableTask{
		ID:         uuid.New(),
		Title:      "Доработка личного кабинета",
		Price:      150,
		CustomerID: f.customerID,
	}
	f.tasks.add(f.task)

	transfers := NewTransferService(f.balances)
	f.svc = NewPaymentService(f.repo, f.tasks, transfers, outcome, noDelay, f.events)
	return f
}

func TestPaymentService_SelectMethod_CreatesPending(t *testing.T) {
	f := newPaymentFixture(t, fixedOutcome{success: true})
	f.balances.Deposit(f.customerID, 500)
	ctx := context.Background()

	payment, err := f.svc.SelectMethod(ctx, f.task.ID, f.workerID, models.PaymentMethodCard)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, f.task.Price, payment.Amount)
	assert.Equal(t, f.customerID, payment.CustomerID)
	assert.Equal(t, f.workerID, payment.AssignedUserID)
	assert.NotEqual(t, uuid.Nil, payment.ID)

	// Выбор способа ничего не списывает.
	assert.Equal(t, float64(500), f.balances.Get(f.customerID))
}

func TestPaymentService_SelectMethod_InvalidMethod(t *testing.T) {
	f := newPaymentFixture(t, fixedOutcome{success: true})
	ctx := context.Background()

	_, err := f.svc.SelectMethod(ctx, f.task.ID, f.workerID, "paypal")
	assert.ErrorIs(t, err, apperror.ErrInvalidPaymentMethod)

	payments, _ := f.repo.List(ctx)
	assert.Empty(t, payments)
}

func TestPaymentService_SelectMethod_UnknownTask(t *testing.T) {
	f := newPaymentFixture(t, fixedOutcome{success: true})
	ctx := context.Background()

	_, err := f.svc.SelectMethod(ctx, uuid.New(), f.workerID, models.PaymentMethodCard)
	assert.ErrorIs(t, err, apperror.ErrTaskNotFound)
}

func TestPaymentService_SelectMethod_InsufficientFunds(t *testing.T) {
	f := newPaymentFixture(t, fixedOutcome{success: true})
	f.balances.Deposit(f.customerID, 100)
	ctx := context.Background()

	_, err := f.svc.SelectMethod(ctx, f.task.ID, f.workerID, models.PaymentMethodCard)
	assert.ErrorIs(t, err, apperror.ErrInsufficientFunds)

	// Платёж при отказе не создаётся.
	payments, _ := f.repo.List(ctx)
	assert.Empty(t, payments)
}

func TestPaymentService_Process_Success(t *testing.T) {
	f := newPaymentFixture(t, fixedOutcome{success: true})
	f.balances.Deposit(f.customerID, 500)
	f.balances.Deposit(f.workerID, 200)
	ctx := context.Background()

	created, err := f.svc.SelectMethod(ctx, f.task.ID, f.workerID, models.PaymentMethodCard)
	require.NoError(t, err)

	payment, err := f.svc.Process(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	require.NotNil(t, payment.TransactionID)
	assert.True(t, strings.HasPrefix(*payment.TransactionID, "TXN-"))
	require.NotNil(t, payment.CompletedAt)
	assert.False(t, payment.TransferFailed)

	// Деньги ушли заказчику → исполнителю, сумма в системе не изменилась.
	assert.Equal(t, float64(350), f.balances.Get(f.customerID))
	assert.Equal(t, float64(350), f.balances.Get(f.workerID))

	// Оплаченная задача убрана из пула.
	assert.False(t, f.tasks.has(f.task.ID))

	// Исполнитель получает уведомление о выполненной работе.
	events := f.events.all()
	require.Len(t, events, 1)
	assert.Equal(t, models.NotificationTaskCompleted, events[0].Type)
	assert.Equal(t, f.workerID, events[0].RecipientID)
	assert.Equal(t, f.task.Title, events[0].TaskTitle)
}

func TestPaymentService_Process_Idempotent(t *testing.T) {
	f := newPaymentFixture(t, fixedOutcome{success: true})
	f.balances.Deposit(f.customerID, 500)
	ctx := context.Background()

	created, err := f.svc.SelectMethod(ctx, f.task.ID, f.workerID, models.PaymentMethodCard)
	require.NoError(t, err)

	_, err = f.svc.Process(ctx, created.ID)
	require.NoError(t, err)

	// Повторная обработка отклоняется и не переводит деньги второй раз.
	_, err = f.svc.Process(ctx, created.ID)
	assert.ErrorIs(t, err, apperror.ErrPaymentNotPending)

	assert.Equal(t, float64(350), f.balances.Get(f.customerID))
	assert.Equal(t, float64(150), f.balances.Get(f.workerID))
}

func TestPaymentService_Process_ConcurrentCallsSingleWinner(t *testing.T) {
	f := newPaymentFixture(t, fixedOutcome{success: true})
	f.balances.Deposit(f.customerID, 500)
	ctx := context.Background()

	created, err := f.svc.SelectMethod(ctx, f.task.ID, f.workerID, models.PaymentMethodCard)
	require.NoError(t, err)

	start := make(chan struct{})
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			<-start
			_, err := f.svc.Process(ctx, created.ID)
			errs <- err
		}()
	}
	close(start)

	var succeeded, rejected int
	for i := 0; i < 2; i++ {
		switch err := <-errs; {
		case err == nil:
			succeeded++
		case errors.Is(err, apperror.ErrPaymentNotPending):
			rejected++
		default:
			t.Fatalf("неожиданная ошибка: %v", err)
		}
	}

	// Переход pending → processing выигрывает ровно один вызов.
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	// Перевод выполнен один раз, уведомление одно.
	assert.Equal(t, float64(350), f.balances.Get(f.customerID))
	assert.Equal(t, float64(150), f.balances.Get(f.workerID))
	assert.Len(t, f.events.all(), 1)

	stored, err := f.repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, stored.Status)
}

func TestPaymentService_Process_GatewayFailure(t *testing.T) {
	f := newPaymentFixture(t, fixedOutcome{success: false})
	f.balances.Deposit(f.customerID, 500)
	ctx := context.Background()

	created, err := f.svc.SelectMethod(ctx, f.task.ID, f.workerID, models.PaymentMethodBankTransfer)
	require.NoError(t, err)

	payment, err := f.svc.Process(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusFailed, payment.Status)
	assert.Nil(t, payment.TransactionID)
	require.NotNil(t, payment.CompletedAt)

	// Деньги не двигались, задача осталась в пуле, уведомлений нет.
	assert.Equal(t, float64(500), f.balances.Get(f.customerID))
	assert.Equal(t, float64(0), f.balances.Get(f.workerID))
	assert.True(t, f.tasks.has(f.task.ID))
	assert.Empty(t, f.events.all())
}

func TestPaymentService_Process_UnknownPayment(t *testing.T) {
	f := newPaymentFixture(t, fixedOutcome{success: true})
	ctx := context.Background()

	_, err := f.svc.Process(ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrPaymentNotFound)
}

func TestPaymentService_Process_TransferReconciliationFault(t *testing.T) {
	f := newPaymentFixture(t, fixedOutcome{success: true})
	f.balances.Deposit(f.customerID, 200)
	ctx := context.Background()

	created, err := f.svc.SelectMethod(ctx, f.task.ID, f.workerID, models.PaymentMethodCard)
	require.NoError(t, err)

	// Между выбором способа и обработкой заказчик потратил деньги.
	other := uuid.New()
	require.True(t, f.balances.Transfer(f.customerID, other, 150))

	payment, err := f.svc.Process(ctx, created.ID)
	require.NoError(t, err)

	// Платёж завершён со стороны шлюза, но помечен для сверки.
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	assert.True(t, payment.TransferFailed)

	stored, err := f.repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, stored.TransferFailed)

	// Задача остаётся в пуле, уведомление не эмитится.
	assert.True(t, f.tasks.has(f.task.ID))
	assert.Empty(t, f.events.all())
}

func TestPaymentService_Cancel(t *testing.T) {
	f := newPaymentFixture(t, fixedOutcome{success: true})
	f.balances.Deposit(f.customerID, 500)
	ctx := context.Background()

	created, err := f.svc.SelectMethod(ctx, f.task.ID, f.workerID, models.PaymentMethodElectronicWallet)
	require.NoError(t, err)

	payment, err := f.svc.Cancel(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCancelled, payment.Status)

	// Отменённый платёж нельзя ни обработать, ни отменить повторно.
	_, err = f.svc.Process(ctx, created.ID)
	assert.ErrorIs(t, err, apperror.ErrPaymentNotPending)

	_, err = f.svc.Cancel(ctx, created.ID)
	assert.ErrorIs(t, err, apperror.ErrPaymentNotPending)
}

func TestPaymentService_Cancel_UnknownPayment(t *testing.T) {
	f := newPaymentFixture(t, fixedOutcome{success: true})
	ctx := context.Background()

	_, err := f.svc.Cancel(ctx, uuid.New())
	assert.ErrorIs(t, err, apperror.ErrPaymentNotFound)
}
