package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/taskpay-backend/internal/models"
	"github.com/ignatzorin/taskpay-backend/internal/pkg/apperror"
)

// UserSource проверяет существование получателя уведомления.
type UserSource interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// NotificationService собирает уведомления по фиксированным шаблонам
// и публикует их в исходящую очередь. HTTP-путь проверяет существование
// получателя; путь из очереди (движок платежей) эту проверку пропускает.
type NotificationService struct {
	users  UserSource
	events EventPublisher
}

// NewNotificationService создаёт новый сервис уведомлений.
func NewNotificationService(users UserSource, events EventPublisher) *NotificationService {
	return &NotificationService{users: users, events: events}
}

// SendNewMessage уведомляет о новом сообщении.
func (s *NotificationService) SendNewMessage(ctx context.Context, recipientID uuid.UUID, senderName string) (*models.NotificationEvent, error) {
	return s.send(ctx, models.QueuedNotification{
		Type:        models.NotificationNewMessage,
		RecipientID: recipientID,
		SenderName:  senderName,
	})
}

// SendNewResponse уведомляет о новом отклике на задачу.
func (s *NotificationService) SendNewResponse(ctx context.Context, recipientID uuid.UUID, responderName string) (*models.NotificationEvent, error) {
	return s.send(ctx, models.QueuedNotification{
		Type:          models.NotificationNewResponse,
		RecipientID:   recipientID,
		ResponderName: responderName,
	})
}

// SendResponseRejected уведомляет об отклонении отклика.
func (s *NotificationService) SendResponseRejected(ctx context.Context, recipientID uuid.UUID) (*models.NotificationEvent, error) {
	return s.send(ctx, models.QueuedNotification{
		Type:        models.NotificationResponseRejected,
		RecipientID: recipientID,
	})
}

// SendResponseAccepted уведомляет о принятии отклика.
func (s *NotificationService) SendResponseAccepted(ctx context.Context, recipientID uuid.UUID) (*models.NotificationEvent, error) {
	return s.send(ctx, models.QueuedNotification{
		Type:        models.NotificationResponseAccepted,
		RecipientID: recipientID,
	})
}

// SendTaskCompleted уведомляет о выполнении задачи.
func (s *NotificationService) SendTaskCompleted(ctx context.Context, recipientID uuid.UUID, taskTitle string) (*models.NotificationEvent, error) {
	return s.send(ctx, models.QueuedNotification{
		Type:        models.NotificationTaskCompleted,
		RecipientID: recipientID,
		TaskTitle:   taskTitle,
	})
}

// SendRatingChanged уведомляет об изменении рейтинга.
func (s *NotificationService) SendRatingChanged(ctx context.Context, recipientID uuid.UUID, newRating float64) (*models.NotificationEvent, error) {
	return s.send(ctx, models.QueuedNotification{
		Type:        models.NotificationRatingChanged,
		RecipientID: recipientID,
		NewRating:   newRating,
	})
}

func (s *NotificationService) send(ctx context.Context, q models.QueuedNotification) (*models.NotificationEvent, error) {
	exists, err := s.users.Exists(ctx, q.RecipientID)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось проверить получателя")
	}
	if !exists {
		return nil, apperror.ErrUserNotFound
	}

	event, err := models.BuildNotification(q)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "некорректное уведомление")
	}

	if err := s.events.Publish(ctx, q); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось опубликовать уведомление")
	}

	return event, nil
}
