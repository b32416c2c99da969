package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/taskpay-backend/internal/dto"
	"github.com/ignatzorin/taskpay-backend/internal/http/handlers/common"
	"github.com/ignatzorin/taskpay-backend/internal/models"
	"github.com/ignatzorin/taskpay-backend/internal/service"
)

// NotificationHandler отвечает за постановку уведомлений в очередь.
type NotificationHandler struct {
	notifications *service.NotificationService
}

func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// SendNewMessage POST /notifications/send-new-message
func (h *NotificationHandler) SendNewMessage(c *gin.Context) {
	var req dto.NewMessageNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	recipientID, err := common.ParseUUIDField(req.RecipientID, "recipient_id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	event, err := h.notifications.SendNewMessage(c.Request.Context(), recipientID, req.SenderName)
	h.respond(c, event, err)
}

// SendNewResponse POST /notifications/send-new-response
func (h *NotificationHandler) SendNewResponse(c *gin.Context) {
	var req dto.NewResponseNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	recipientID, err := common.ParseUUIDField(req.RecipientID, "recipient_id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	event, err := h.notifications.SendNewResponse(c.Request.Context(), recipientID, req.ResponderName)
	h.respond(c, event, err)
}

// SendResponseRejected POST /notifications/send-response-rejected
func (h *NotificationHandler) SendResponseRejected(c *gin.Context) {
	recipientID, ok := h.bindRecipient(c)
	if !ok {
		return
	}

	event, err := h.notifications.SendResponseRejected(c.Request.Context(), recipientID)
	h.respond(c, event, err)
}

// SendResponseAccepted POST /notifications/send-response-accepted
func (h *NotificationHandler) SendResponseAccepted(c *gin.Context) {
	recipientID, ok := h.bindRecipient(c)
	if !ok {
		return
	}

	event, err := h.notifications.SendResponseAccepted(c.Request.Context(), recipientID)
	h.respond(c, event, err)
}

// SendTaskCompleted POST /notifications/send-task-completed
func (h *NotificationHandler) SendTaskCompleted(c *gin.Context) {
	var req dto.TaskCompletedNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	recipientID, err := common.ParseUUIDField(req.RecipientID, "recipient_id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	event, err := h.notifications.SendTaskCompleted(c.Request.Context(), recipientID, req.TaskTitle)
	h.respond(c, event, err)
}

// SendRatingChanged POST /notifications/send-rating-changed
func (h *NotificationHandler) SendRatingChanged(c *gin.Context) {
	var req dto.RatingChangedNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	recipientID, err := common.ParseUUIDField(req.RecipientID, "recipient_id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	event, err := h.notifications.SendRatingChanged(c.Request.Context(), recipientID, req.NewRating)
	h.respond(c, event, err)
}

func (h *NotificationHandler) bindRecipient(c *gin.Context) (uuid.UUID, bool) {
	var req dto.ResponseStatusNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return uuid.Nil, false
	}

	recipientID, err := common.ParseUUIDField(req.RecipientID, "recipient_id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return uuid.Nil, false
	}
	return recipientID, true
}

func (h *NotificationHandler) respond(c *gin.Context, event *models.NotificationEvent, err error) {
	if err != nil {
		common.RespondAppError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, dto.NewNotificationResponse(event))
}
