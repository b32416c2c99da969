package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/taskpay-backend/internal/dto"
	"github.com/ignatzorin/taskpay-backend/internal/http/handlers/common"
	"github.com/ignatzorin/taskpay-backend/internal/models"
	"github.com/ignatzorin/taskpay-backend/internal/pkg/apperror"
	"github.com/ignatzorin/taskpay-backend/internal/repository"
	"github.com/ignatzorin/taskpay-backend/internal/validation"
)

// TaskHandler отвечает за CRUD оплачиваемых задач.
type TaskHandler struct {
	tasks *repository.TaskRepository
}

func NewTaskHandler(tasks *repository.TaskRepository) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// Create POST /tasks
func (h *TaskHandler) Create(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := validation.ValidateTaskTitle(req.Title); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if err := validation.ValidateTaskDescription(req.Description); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if err := validation.ValidateAmount(req.Price); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	customerID, err := common.ParseUUIDField(req.CustomerID, "customer_id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	task := &models.PayableTask{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		CustomerID:  customerID,
	}
	if err := h.tasks.Create(c.Request.Context(), task); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// Get GET /tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	taskID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	task, err := h.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			common.RespondAppError(c, apperror.ErrTaskNotFound)
			return
		}
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// List GET /tasks
func (h *TaskHandler) List(c *gin.Context) {
	tasks, err := h.tasks.List(c.Request.Context())
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, tasks)
}
