package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

// BrokerChecker сообщает состояние соединения с брокером сообщений.
type BrokerChecker interface {
	Connected() bool
}

// HealthHandler предоставляет endpoint для проверки здоровья сервиса.
type HealthHandler struct {
	db     *sqlx.DB
	broker BrokerChecker
}

// NewHealthHandler создаёт новый health handler.
func NewHealthHandler(db *sqlx.DB, broker BrokerChecker) *HealthHandler {
	return &HealthHandler{db: db, broker: broker}
}

// HealthResponse представляет ответ health check.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health обрабатывает GET /health.
func (h *HealthHandler) Health(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	// Проверка подключения к БД
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		status = "unhealthy"
	} else {
		checks["database"] = "healthy"
	}

	// Соединение с брокером устанавливается лениво, поэтому его отсутствие —
	// это degraded, а не отказ сервиса.
	if h.broker != nil && !h.broker.Connected() {
		checks["broker"] = "degraded: нет активного соединения"
	} else {
		checks["broker"] = "healthy"
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
	})
}
