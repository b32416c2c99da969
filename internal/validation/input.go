package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30

	MinTaskTitleLength       = 3
	MaxTaskTitleLength       = 200
	MaxTaskDescriptionLength = 5000

	// Верхняя граница цены задачи и суммы пополнения.
	MaxAmount = 100000000.0 // 100 миллионов
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	return ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength)
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart, domainPart := parts[0], parts[1]
	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 || !strings.Contains(domainPart, ".") {
		return fmt.Errorf("доменная часть email некорректна")
	}

	return nil
}

// ValidateTaskTitle проверяет заголовок задачи.
func ValidateTaskTitle(title string) error {
	return ValidateLength("заголовок", strings.TrimSpace(title), MinTaskTitleLength, MaxTaskTitleLength)
}

// ValidateTaskDescription проверяет описание задачи.
func ValidateTaskDescription(description string) error {
	return ValidateLength("описание", description, 0, MaxTaskDescriptionLength)
}

// ValidateAmount проверяет денежную сумму.
func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("сумма должна быть положительной")
	}
	if amount > MaxAmount {
		return fmt.Errorf("сумма превышает допустимый максимум")
	}
	return nil
}
