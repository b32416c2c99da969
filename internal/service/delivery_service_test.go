package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/taskpay-backend/internal/models"
)

// scriptedGateway отказывает первые failures попыток, затем доставляет.
type scriptedGateway struct {
	mu       sync.Mutex
	failures int
	calls    int
	lastBody string
	lastType string
	lastTo   uuid.UUID
}

func (g *scriptedGateway) Send(ctx context.Context, recipientID uuid.UUID, subject, body string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.calls <= g.failures {
		return errors.New("recipient unreachable")
	}
	g.lastTo = recipientID
	g.lastType = subject
	g.lastBody = body
	return nil
}

func (g *scriptedGateway) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func fastPolicy() DeliveryPolicy {
	return DeliveryPolicy{
		Timeout:         time.Second,
		MaxRetries:      3,
		RetryInterval:   time.Millisecond,
		BreakerFailures: 100,
		BreakerCooldown: time.Minute,
	}
}

func TestDeliveryService_Deliver_FirstAttempt(t *testing.T) {
	gateway := &scriptedGateway{}
	svc := NewDeliveryService(gateway, fastPolicy())
	recipient := uuid.New()

	err := svc.Deliver(context.Background(), &models.NotificationEvent{
		RecipientID: recipient,
		Type:        models.NotificationNewMessage,
		Message:     "У вас новое сообщение от Анна",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, gateway.callCount())
	assert.Equal(t, recipient, gateway.lastTo)
	assert.Equal(t, models.NotificationNewMessage, gateway.lastType)
}

func TestDeliveryService_Deliver_RetriesThenSucceeds(t *testing.T) {
	gateway := &scriptedGateway{failures: 2}
	svc := NewDeliveryService(gateway, fastPolicy())

	err := svc.Deliver(context.Background(), &models.NotificationEvent{
		RecipientID: uuid.New(),
		Type:        models.NotificationResponseAccepted,
		Message:     "Ваш отклик был принят",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, gateway.callCount())
}

func TestDeliveryService_Deliver_BudgetExhausted(t *testing.T) {
	gateway := &scriptedGateway{failures: 100}
	svc := NewDeliveryService(gateway, fastPolicy())

	err := svc.Deliver(context.Background(), &models.NotificationEvent{
		RecipientID: uuid.New(),
		Type:        models.NotificationNewResponse,
		Message:     "У вас новый отклик от Пётр",
	})
	require.Error(t, err)

	// Первая попытка плюс MaxRetries повторов.
	assert.Equal(t, 4, gateway.callCount())
}

func TestDeliveryService_Deliver_BreakerStopsRetries(t *testing.T) {
	gateway := &scriptedGateway{failures: 100}
	policy := fastPolicy()
	policy.BreakerFailures = 2
	svc := NewDeliveryService(gateway, policy)

	err := svc.Deliver(context.Background(), &models.NotificationEvent{
		RecipientID: uuid.New(),
		Type:        models.NotificationNewMessage,
		Message:     "У вас новое сообщение от Анна",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)

	// Breaker открылся после двух неудач, третья попытка до шлюза не дошла.
	assert.Equal(t, 2, gateway.callCount())

	// Пока breaker открыт, новые доставки отклоняются без обращения к шлюзу.
	err = svc.Deliver(context.Background(), &models.NotificationEvent{
		RecipientID: uuid.New(),
		Type:        models.NotificationNewMessage,
		Message:     "У вас новое сообщение от Анна",
	})
	require.Error(t, err)
	assert.Equal(t, 2, gateway.callCount())
}

func TestDeliveryService_HandleMessage(t *testing.T) {
	gateway := &scriptedGateway{}
	svc := NewDeliveryService(gateway, fastPolicy())
	recipient := uuid.New()

	body, err := json.Marshal(models.QueuedNotification{
		Type:        models.NotificationTaskCompleted,
		RecipientID: recipient,
		TaskTitle:   "Лендинг",
	})
	require.NoError(t, err)

	require.NoError(t, svc.HandleMessage(context.Background(), body))
	assert.Equal(t, recipient, gateway.lastTo)
	assert.Equal(t, "Работа 'Лендинг' выполнена", gateway.lastBody)
}

func TestDeliveryService_HandleMessage_Malformed(t *testing.T) {
	gateway := &scriptedGateway{}
	svc := NewDeliveryService(gateway, fastPolicy())

	err := svc.HandleMessage(context.Background(), []byte("{not json"))
	require.Error(t, err)
	assert.Zero(t, gateway.callCount())
}

func TestDeliveryService_HandleMessage_UnknownType(t *testing.T) {
	gateway := &scriptedGateway{}
	svc := NewDeliveryService(gateway, fastPolicy())

	body, err := json.Marshal(models.QueuedNotification{
		Type:        "push_broadcast",
		RecipientID: uuid.New(),
	})
	require.NoError(t, err)

	err = svc.HandleMessage(context.Background(), body)
	require.Error(t, err)
	assert.Zero(t, gateway.callCount())
}
