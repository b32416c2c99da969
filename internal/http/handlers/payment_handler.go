package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/taskpay-backend/internal/dto"
	"github.com/ignatzorin/taskpay-backend/internal/http/handlers/common"
	"github.com/ignatzorin/taskpay-backend/internal/service"
	"github.com/ignatzorin/taskpay-backend/internal/validation"
)

type PaymentHandler struct {
	payments  *service.PaymentService
	transfers *service.TransferService
}

func NewPaymentHandler(payments *service.PaymentService, transfers *service.TransferService) *PaymentHandler {
	return &PaymentHandler{payments: payments, transfers: transfers}
}

// SelectMethod POST /payment/select-method
func (h *PaymentHandler) SelectMethod(c *gin.Context) {
	var req dto.SelectMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	taskID, err := common.ParseUUIDField(req.TaskID, "task_id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	assignedUserID, err := common.ParseUUIDField(req.AssignedUserID, "assigned_user_id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	payment, err := h.payments.SelectMethod(c.Request.Context(), taskID, assignedUserID, req.PaymentMethod)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, payment)
}

// Process POST /payment/process
func (h *PaymentHandler) Process(c *gin.Context) {
	var req dto.ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	paymentID, err := common.ParseUUIDField(req.PaymentID, "payment_id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	payment, err := h.payments.Process(c.Request.Context(), paymentID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// Cancel POST /payment/cancel
func (h *PaymentHandler) Cancel(c *gin.Context) {
	var req dto.CancelPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	paymentID, err := common.ParseUUIDField(req.PaymentID, "payment_id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	payment, err := h.payments.Cancel(c.Request.Context(), paymentID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// Get GET /payment/:id
func (h *PaymentHandler) Get(c *gin.Context) {
	paymentID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	payment, err := h.payments.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// List GET /payment/
func (h *PaymentHandler) List(c *gin.Context) {
	payments, err := h.payments.ListPayments(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, payments)
}

// GetBalance GET /payment/users/:id/balance
func (h *PaymentHandler) GetBalance(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		UserID:  userID,
		Balance: h.payments.Balance(userID),
	})
}

// Deposit POST /payment/users/:id/deposit
func (h *PaymentHandler) Deposit(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, "сумма должна быть положительной")
		return
	}
	if err := validation.ValidateAmount(req.Amount); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	balance := h.transfers.Deposit(userID, req.Amount)

	c.JSON(http.StatusOK, dto.BalanceResponse{UserID: userID, Balance: balance})
}
