package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"

	"StoryBoxAdmin/pkg/errors"
)

// Validator предоставляет общие функции валидации пользовательского ввода.
// Все ошибки возвращаются с кодом errors.ErrValidation.
type Validator struct{}

// NewValidator создает новый Validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateRequiredFields проверяет обязательные поля в полезной нагрузке запроса
func (v *Validator) ValidateRequiredFields(req map[string]any, requiredFields map[string]string) error {
	for field, fieldName := range requiredFields {
		value, exists := req[field]
		if !exists || value == nil {
			return invalid("%s is required", fieldName)
		}
		if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
			return invalid("%s is required", fieldName)
		}
	}
	return nil
}

// ValidateURL проверяет корректность URL
func (v *Validator) ValidateURL(target string, allowedSchemes []string) error {
	if target == "" {
		return invalid("url is required")
	}

	if strings.ContainsAny(target, " \t\n\r") {
		return invalid("URL contains invalid whitespace characters")
	}

	parsedURL, err := url.Parse(target)
	if err != nil {
		return errors.Wrap(err, errors.ErrValidation, "invalid URL format")
	}

	if len(allowedSchemes) > 0 {
		schemeValid := false
		for _, scheme := range allowedSchemes {
			if parsedURL.Scheme == scheme {
				schemeValid = true
				break
			}
		}
		if !schemeValid {
			return invalid("URL must use one of allowed schemes %v, got: %s", allowedSchemes, parsedURL.Scheme)
		}
	}

	if parsedURL.Host == "" {
		return invalid("URL must have a valid host")
	}

	return nil
}

// ValidateEmail проверяет адрес электронной почты
func (v *Validator) ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return invalid("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return invalid("invalid email: %s", email)
	}
	return nil
}

// ValidateEnum проверяет значение на соответствие enum
func (v *Validator) ValidateEnum(value string, allowedValues []string, fieldName string) error {
	if value == "" {
		return invalid("%s is required", fieldName)
	}

	for _, allowed := range allowedValues {
		if value == allowed {
			return nil
		}
	}

	return invalid("invalid %s: %s, allowed values: %v", fieldName, value, allowedValues)
}

// ValidateStringLength проверяет длину строки в символах
func (v *Validator) ValidateStringLength(value, fieldName string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if length < min {
		return invalid("%s must be at least %d characters, got: %d", fieldName, min, length)
	}
	if max > 0 && length > max {
		return invalid("%s must not exceed %d characters, got: %d", fieldName, max, length)
	}
	return nil
}

// ValidatePasswordChange проверяет смену пароля: новый пароль, его подтверждение и отличие от текущего
func (v *Validator) ValidatePasswordChange(current, next, confirm string) error {
	if current == "" {
		return invalid("current password is required")
	}
	if err := v.ValidateStringLength(next, "new password", 6, 128); err != nil {
		return err
	}
	if next != confirm {
		return invalid("new password and confirmation do not match")
	}
	if next == current {
		return invalid("new password must differ from the current one")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return errors.New(errors.ErrValidation, fmt.Sprintf(format, args...))
}
