package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/taskpay-backend/internal/models"
)

var (
	// ErrPaymentNotFound возвращается, когда платёж не найден.
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrPaymentNotPending возвращается, когда переход статуса невозможен:
	// платёж уже взят в обработку, завершён или отменён.
	ErrPaymentNotPending = errors.New("payment is not pending")
)

// PaymentRepository отвечает за хранение платежей.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository создаёт экземпляр репозитория.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create сохраняет новый платёж, присваивая ему идентификатор и дату создания.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	payment.ID = uuid.New()
	payment.CreatedAt = time.Now()

	query := `
		INSERT INTO payments (id, customer_id, assigned_user_id, task_id, amount, method, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		payment.ID, payment.CustomerID, payment.AssignedUserID, payment.TaskID,
		payment.Amount, payment.Method, payment.Status, payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("payment repository: create %w", err)
	}
	return nil
}

// GetByID возвращает платёж по идентификатору.
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.GetContext(ctx, &payment, `SELECT * FROM payments WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("payment repository: get by id %w", err)
	}
	return &payment, nil
}

// List возвращает все платежи, новые первыми.
func (r *PaymentRepository) List(ctx context.Context) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.SelectContext(ctx, &payments, `SELECT * FROM payments ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("payment repository: list %w", err)
	}
	return payments, nil
}

// MarkProcessing атомарно переводит платёж pending → processing.
// Сравнение статуса и запись выполняются одним UPDATE, поэтому из двух
// конкурентных вызовов выиграет ровно один; проигравший получит
// ErrPaymentNotPending.
func (r *PaymentRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	return r.compareAndSetStatus(ctx, id, models.PaymentStatusPending, models.PaymentStatusProcessing)
}

// Cancel атомарно переводит платёж pending → cancelled.
func (r *PaymentRepository) Cancel(ctx context.Context, id uuid.UUID) error {
	return r.compareAndSetStatus(ctx, id, models.PaymentStatusPending, models.PaymentStatusCancelled)
}

func (r *PaymentRepository) compareAndSetStatus(ctx context.Context, id uuid.UUID, from, to string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payments SET status = $3 WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return fmt.Errorf("payment repository: set status %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("payment repository: rows affected %w", err)
	}
	if affected == 0 {
		// Либо платежа нет, либо он уже не в исходном статусе.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrPaymentNotPending
	}
	return nil
}

// Finish записывает терминальный статус платежа вместе с датой завершения
// и, для успешных платежей, идентификатором транзакции шлюза.
func (r *PaymentRepository) Finish(ctx context.Context, id uuid.UUID, status string, transactionID *string, completedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payments SET status = $2, transaction_id = $3, completed_at = $4
		WHERE id = $1
	`, id, status, transactionID, completedAt)
	if err != nil {
		return fmt.Errorf("payment repository: finish %w", err)
	}
	return nil
}

// MarkTransferFailed помечает завершённый платёж, для которого не прошёл
// перевод средств. Флаг делает расхождение видимым для сверки.
func (r *PaymentRepository) MarkTransferFailed(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE payments SET transfer_failed = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("payment repository: mark transfer failed %w", err)
	}
	return nil
}
