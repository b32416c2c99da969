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

// ErrTaskNotFound возвращается, когда задача не найдена или уже оплачена.
var ErrTaskNotFound = errors.New("task not found")

// TaskRepository отвечает за пул задач, доступных для оплаты.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository создаёт экземпляр репозитория.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create сохраняет новую задачу.
func (r *TaskRepository) Create(ctx context.Context, task *models.PayableTask) error {
	task.ID = uuid.New()
	task.CreatedAt = time.Now()

	query := `
		INSERT INTO tasks (id, title, description, price, customer_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.Title, task.Description, task.Price, task.CustomerID, task.CreatedAt)
	if err != nil {
		return fmt.Errorf("task repository: create %w", err)
	}
	return nil
}

// GetByID возвращает задачу по идентификатору.
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.PayableTask, error) {
	var task models.PayableTask
	if err := r.db.GetContext(ctx, &task, `SELECT * FROM tasks WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("task repository: get by id %w", err)
	}
	return &task, nil
}

// List возвращает все задачи, доступные для оплаты.
func (r *TaskRepository) List(ctx context.Context) ([]models.PayableTask, error) {
	var tasks []models.PayableTask
	err := r.db.SelectContext(ctx, &tasks, `SELECT * FROM tasks ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("task repository: list %w", err)
	}
	return tasks, nil
}

// Delete убирает задачу из пула после успешной оплаты.
// Возвращает ErrTaskNotFound, если задача уже убрана: вызывающая сторона
// обязана проверить этот случай, прежде чем повторять операцию.
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("task repository: delete %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("task repository: rows affected %w", err)
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}
