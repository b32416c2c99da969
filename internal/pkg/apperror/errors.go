package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	ErrCodeNotFound   ErrorCode = "NOT_FOUND"
	ErrCodeBadRequest ErrorCode = "BAD_REQUEST"
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	ErrCodeConflict   ErrorCode = "CONFLICT"
	ErrCodeInternal   ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Code       ErrorCode
	Message    string
	HTTPStatus int
	Cause      error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Cause:      err,
	}
}

func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeBadRequest, ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func IsNotFound(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == ErrCodeNotFound
}

func IsValidation(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && (appErr.Code == ErrCodeValidation || appErr.Code == ErrCodeBadRequest)
}

// Status возвращает HTTP статус для ошибки; 500 если ошибка не *AppError.
func Status(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

var (
	ErrTaskNotFound    = New(ErrCodeNotFound, "задача не найдена")
	ErrPaymentNotFound = New(ErrCodeNotFound, "платёж не найден")
	ErrUserNotFound    = New(ErrCodeNotFound, "пользователь не найден")

	ErrInvalidPaymentMethod = New(ErrCodeValidation, "неподдерживаемый способ оплаты")
	ErrInvalidAmount        = New(ErrCodeValidation, "сумма должна быть положительной")
	ErrInsufficientFunds    = New(ErrCodeBadRequest, "недостаточно средств на балансе")

	// Платёж можно обработать ровно один раз: повторный вызов отклоняется.
	// По контракту API невалидный переход статуса отдаётся как 400.
	ErrPaymentNotPending = New(ErrCodeBadRequest, "платёж уже обработан")
)
