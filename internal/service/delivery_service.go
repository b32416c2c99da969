package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/ignatzorin/taskpay-backend/internal/logger"
	"github.com/ignatzorin/taskpay-backend/internal/models"
)

// DeliveryGateway — внешний шлюз доставки уведомлений.
type DeliveryGateway interface {
	Send(ctx context.Context, recipientID uuid.UUID, subject, body string) error
}

// DeliveryPolicy задаёт бюджет устойчивости доставки: таймаут попытки,
// число повторов с экспоненциальной паузой и порог circuit breaker.
type DeliveryPolicy struct {
	Timeout         time.Duration
	MaxRetries      uint64
	RetryInterval   time.Duration
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// DeliveryService обрабатывает входящие сообщения очереди уведомлений:
// декодирует событие и доставляет его через внешний шлюз под политикой
// повторов и circuit breaker. Доставка best-effort: исчерпанный бюджет
// повторов логируется, сообщение не возвращается в очередь.
type DeliveryService struct {
	gateway DeliveryGateway
	policy  DeliveryPolicy
	breaker *gobreaker.CircuitBreaker
}

// NewDeliveryService создаёт сервис доставки уведомлений.
func NewDeliveryService(gateway DeliveryGateway, policy DeliveryPolicy) *DeliveryService {
	if policy.Timeout <= 0 {
		policy.Timeout = 5 * time.Second
	}
	if policy.RetryInterval <= 0 {
		policy.RetryInterval = 500 * time.Millisecond
	}
	if policy.BreakerFailures == 0 {
		policy.BreakerFailures = 5
	}
	if policy.BreakerCooldown <= 0 {
		policy.BreakerCooldown = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "notification-delivery",
		Timeout: policy.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= policy.BreakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger.Log != nil {
				logger.Log.WithFields(logrus.Fields{
					"breaker": name,
					"from":    from.String(),
					"to":      to.String(),
				}).Warn("delivery: circuit breaker сменил состояние")
			}
		},
	})

	return &DeliveryService{gateway: gateway, policy: policy, breaker: breaker}
}

// HandleMessage обрабатывает одно сообщение очереди. Транспорт доставляет
// сообщения как минимум один раз, поэтому повторная обработка безопасна:
// худший эффект дубликата — повторная попытка доставки.
// Возвращаемая ошибка нужна только для логирования — сообщение
// подтверждается в очереди в любом случае.
func (s *DeliveryService) HandleMessage(ctx context.Context, body []byte) error {
	var q models.QueuedNotification
	if err := json.Unmarshal(body, &q); err != nil {
		// Нечитаемое сообщение терминально: повторная доставка не поможет.
		return fmt.Errorf("delivery: не удалось декодировать сообщение: %w", err)
	}

	event, err := models.BuildNotification(q)
	if err != nil {
		return fmt.Errorf("delivery: %w", err)
	}

	return s.Deliver(ctx, event)
}

// Deliver выполняет доставку события с повторами и circuit breaker.
// Таймаут попытки трактуется как временный сбой, открытый breaker
// прекращает попытки немедленно.
func (s *DeliveryService) Deliver(ctx context.Context, event *models.NotificationEvent) error {
	attempt := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, s.policy.Timeout)
		defer cancel()

		_, err := s.breaker.Execute(func() (interface{}, error) {
			return nil, s.gateway.Send(attemptCtx, event.RecipientID, event.Type, event.Message)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			// Шлюз деградировал: дальнейшие попытки бессмысленны.
			return backoff.Permanent(err)
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = s.policy.RetryInterval

	err := backoff.Retry(attempt, backoff.WithMaxRetries(backoff.WithContext(policy, ctx), s.policy.MaxRetries))
	if err != nil {
		if logger.Log != nil {
			logger.Log.WithFields(logrus.Fields{
				"recipient_id": event.RecipientID,
				"type":         event.Type,
			}).WithError(err).Error("delivery: уведомление не доставлено, бюджет повторов исчерпан")
		}
		return fmt.Errorf("delivery: %w", err)
	}

	return nil
}
