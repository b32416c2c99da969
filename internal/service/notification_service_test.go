package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/taskpay-backend/internal/models"
	"github.com/ignatzorin/taskpay-backend/internal/pkg/apperror"
)

// fakeUserSource отвечает на проверки существования по списку известных id.
type fakeUserSource struct {
	known map[uuid.UUID]bool
	err   error
}

func (s *fakeUserSource) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.known[id], nil
}

// failingPublisher всегда отказывает в публикации.
type failingPublisher struct{}

func (p *failingPublisher) Publish(ctx context.Context, event models.QueuedNotification) error {
	return errors.New("broker unavailable")
}

func TestNotificationService_SendNewMessage(t *testing.T) {
	recipient := uuid.New()
	users := &fakeUserSource{known: map[uuid.UUID]bool{recipient: true}}
	events := &capturePublisher{}
	svc := NewNotificationService(users, events)

	event, err := svc.SendNewMessage(context.Background(), recipient, "Анна")
	require.NoError(t, err)

	assert.Equal(t, recipient, event.RecipientID)
	assert.Equal(t, models.NotificationNewMessage, event.Type)
	assert.Equal(t, "У вас новое сообщение от Анна", event.Message)

	queued := events.all()
	require.Len(t, queued, 1)
	assert.Equal(t, models.NotificationNewMessage, queued[0].Type)
	assert.Equal(t, "Анна", queued[0].SenderName)
}

func TestNotificationService_Templates(t *testing.T) {
	recipient := uuid.New()
	users := &fakeUserSource{known: map[uuid.UUID]bool{recipient: true}}
	events := &capturePublisher{}
	svc := NewNotificationService(users, events)
	ctx := context.Background()

	cases := []struct {
		name    string
		send    func() (*models.NotificationEvent, error)
		evType  string
		message string
	}{
		{
			name:    "new response",
			send:    func() (*models.NotificationEvent, error) { return svc.SendNewResponse(ctx, recipient, "Пётр") },
			evType:  models.NotificationNewResponse,
			message: "У вас новый отклик от Пётр",
		},
		{
			name:    "response rejected",
			send:    func() (*models.NotificationEvent, error) { return svc.SendResponseRejected(ctx, recipient) },
			evType:  models.NotificationResponseRejected,
			message: "Ваш отклик был отклонен",
		},
		{
			name:    "response accepted",
			send:    func() (*models.NotificationEvent, error) { return svc.SendResponseAccepted(ctx, recipient) },
			evType:  models.NotificationResponseAccepted,
			message: "Ваш отклик был принят",
		},
		{
			name:    "task completed",
			send:    func() (*models.NotificationEvent, error) { return svc.SendTaskCompleted(ctx, recipient, "Лендинг") },
			evType:  models.NotificationTaskCompleted,
			message: "Работа 'Лендинг' выполнена",
		},
		{
			name:    "rating changed",
			send:    func() (*models.NotificationEvent, error) { return svc.SendRatingChanged(ctx, recipient, 4.8) },
			evType:  models.NotificationRatingChanged,
			message: fmt.Sprintf("Ваш рейтинг обновлен: %v", 4.8),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			event, err := tc.send()
			require.NoError(t, err)
			assert.Equal(t, tc.evType, event.Type)
			assert.Equal(t, tc.message, event.Message)
		})
	}
}

func TestNotificationService_UnknownRecipient(t *testing.T) {
	users := &fakeUserSource{known: map[uuid.UUID]bool{}}
	events := &capturePublisher{}
	svc := NewNotificationService(users, events)

	_, err := svc.SendNewMessage(context.Background(), uuid.New(), "Анна")
	assert.ErrorIs(t, err, apperror.ErrUserNotFound)
	assert.Empty(t, events.all())
}

func TestNotificationService_PublishFailure(t *testing.T) {
	recipient := uuid.New()
	users := &fakeUserSource{known: map[uuid.UUID]bool{recipient: true}}
	svc := NewNotificationService(users, &failingPublisher{})

	_, err := svc.SendNewMessage(context.Background(), recipient, "Анна")
	require.Error(t, err)
	assert.False(t, apperror.IsValidation(err))
}

func TestNotificationService_UserLookupFailure(t *testing.T) {
	users := &fakeUserSource{err: errors.New("connection refused")}
	svc := NewNotificationService(users, &capturePublisher{})

	_, err := svc.SendNewMessage(context.Background(), uuid.New(), "Анна")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperror.ErrUserNotFound)
}
