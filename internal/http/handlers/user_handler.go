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

// UserHandler отвечает за регистрацию участников расчётов.
type UserHandler struct {
	users *repository.UserRepository
}

func NewUserHandler(users *repository.UserRepository) *UserHandler {
	return &UserHandler{users: users}
}

// Create POST /users
func (h *UserHandler) Create(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := validation.ValidateUsername(req.Username); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}
	if err := validation.ValidateEmail(req.Email); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	user := &models.User{
		Username: req.Username,
		Email:    req.Email,
	}
	if err := h.users.Create(c.Request.Context(), user); err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Get GET /users/:id
func (h *UserHandler) Get(c *gin.Context) {
	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			common.RespondAppError(c, apperror.ErrUserNotFound)
			return
		}
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}
