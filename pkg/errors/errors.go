package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error представляет кастомную ошибку с дополнительной информацией
type Error struct {
	Code       ErrorCode       `json:"code"`
	Message    string          `json:"message"`
	Details    string          `json:"details,omitempty"`
	HTTPStatus int             `json:"http_status,omitempty"`
	Cause      error           `json:"-"`
	Context    context.Context `json:"-"`
}

// ErrorCode представляет код ошибки
type ErrorCode string

// Коды ошибок. Первые семь образуют таксономию ответов удаленного сервиса,
// ErrInternal используется для локальных сбоев клиента.
const (
	ErrNetwork      ErrorCode = "NETWORK"
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrForbidden    ErrorCode = "FORBIDDEN"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrValidation   ErrorCode = "VALIDATION_ERROR"
	ErrServer       ErrorCode = "SERVER_ERROR"
	ErrUnknown      ErrorCode = "UNKNOWN"
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
)

// Error возвращает сообщение об ошибке
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap возвращает причину ошибки
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is проверяет, является ли ошибка указанного типа
func (e *Error) Is(target error) bool {
	if targetError, ok := target.(*Error); ok {
		return e.Code == targetError.Code
	}
	return false
}

// New создает новую кастомную ошибку
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap оборачивает существующую ошибку в кастомную
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WithDetails добавляет детали к ошибке
func (e *Error) WithDetails(details string) *Error {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Details = details
	return &clone
}

// WithStatus запоминает HTTP статус ответа, из которого получена ошибка
func (e *Error) WithStatus(status int) *Error {
	if e == nil {
		return nil
	}
	clone := *e
	clone.HTTPStatus = status
	return &clone
}

// WithContext добавляет контекст к ошибке
func (e *Error) WithContext(ctx context.Context) *Error {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Context = ctx
	return &clone
}

// CodeFromStatus классифицирует HTTP статус ответа.
// 2xx сюда не попадает: вызывающий решает об успехе сам.
func CodeFromStatus(status int) ErrorCode {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return ErrValidation
	case status >= 500 && status <= 599:
		return ErrServer
	default:
		return ErrUnknown
	}
}

// StatusFor возвращает типичный HTTP статус для кода ошибки
func StatusFor(code ErrorCode) int {
	switch code {
	case ErrUnauthorized:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrValidation:
		return http.StatusBadRequest
	case ErrServer, ErrInternal:
		return http.StatusInternalServerError
	default:
		return 0
	}
}

// CodeOf извлекает код из цепочки ошибок. Для чужих ошибок возвращает ErrInternal.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var e *Error
	if As(err, &e) {
		return e.Code
	}
	return ErrInternal
}

// UserMessage возвращает сообщение по умолчанию для кода ошибки.
// Используется, когда сервер не прислал собственного сообщения.
func UserMessage(code ErrorCode) string {
	switch code {
	case ErrNetwork:
		return "Сервер недоступен, проверьте подключение"
	case ErrUnauthorized:
		return "Сессия истекла, войдите снова"
	case ErrForbidden:
		return "Доступ запрещен"
	case ErrNotFound:
		return "Ресурс не найден"
	case ErrValidation:
		return "Ошибка валидации данных"
	case ErrServer:
		return "Внутренняя ошибка сервера"
	case ErrInternal:
		return "Внутренняя ошибка клиента"
	default:
		return "Произошла ошибка"
	}
}

// GetUserMessage возвращает пользовательское сообщение об ошибке.
// Приоритет: локализованное сообщение из контекста, собственное сообщение, сообщение по коду.
func (e *Error) GetUserMessage() string {
	if e == nil {
		return ""
	}

	if e.Context != nil {
		if localizedMsg, ok := e.Context.Value(localizedMessageKey{}).(string); ok {
			return localizedMsg
		}
	}

	if e.Message != "" {
		return e.Message
	}
	return UserMessage(e.Code)
}

type localizedMessageKey struct{}

// WithLocalizedMessage добавляет локализованное сообщение в контекст
func WithLocalizedMessage(ctx context.Context, localizedMessage string) context.Context {
	return context.WithValue(ctx, localizedMessageKey{}, localizedMessage)
}

// As повторяет errors.As стандартной библиотеки, чтобы не импортировать оба пакета
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Is повторяет errors.Is стандартной библиотеки
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}
