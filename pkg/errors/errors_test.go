package errors

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNewError проверяет создание новой ошибки
func TestNewError(t *testing.T) {
	e := New(ErrNotFound, "resource not found")
	if e == nil {
		t.Fatal("Expected error, got nil")
	}

	if e.Code != ErrNotFound {
		t.Errorf("Expected code %s, got %s", ErrNotFound, e.Code)
	}

	if e.Message != "resource not found" {
		t.Errorf("Expected message 'resource not found', got %s", e.Message)
	}

	if e.Cause != nil {
		t.Error("Expected cause to be nil")
	}
}

// TestWrapError проверяет оборачивание существующей ошибки
func TestWrapError(t *testing.T) {
	originalErr := fmt.Errorf("dial tcp: connection refused")
	e := Wrap(originalErr, ErrNetwork, "request failed")

	if e == nil {
		t.Fatal("Expected error, got nil")
	}

	if e.Code != ErrNetwork {
		t.Errorf("Expected code %s, got %s", ErrNetwork, e.Code)
	}

	if e.Cause == nil || e.Cause.Error() != "dial tcp: connection refused" {
		t.Errorf("Expected original cause, got %v", e.Cause)
	}

	assert.Equal(t, "request failed: dial tcp: connection refused", e.Error())
	assert.Nil(t, Wrap(nil, ErrInternal, "ignored"))
}

// TestWithDetails проверяет добавление деталей к ошибке
func TestWithDetails(t *testing.T) {
	e := New(ErrValidation, "invalid input")
	eWithDetails := e.WithDetails("field 'name' is required")

	if eWithDetails.Details != "field 'name' is required" {
		t.Errorf("Expected details, got %s", eWithDetails.Details)
	}

	// Исходная ошибка не должна измениться
	if e.Details != "" {
		t.Error("Original error should not have details")
	}
}

// TestWithStatus проверяет сохранение HTTP статуса
func TestWithStatus(t *testing.T) {
	e := New(ErrServer, "boom").WithStatus(http.StatusBadGateway)
	assert.Equal(t, http.StatusBadGateway, e.HTTPStatus)
}

// TestErrorIs проверяет работу метода Is
func TestErrorIs(t *testing.T) {
	e := New(ErrNotFound, "resource not found")
	wrapped := fmt.Errorf("load: %w", e)

	assert.True(t, Is(wrapped, New(ErrNotFound, "another message")))
	assert.False(t, Is(wrapped, New(ErrInternal, "internal error")))
}

// TestCodeFromStatus проверяет классификацию HTTP статусов
func TestCodeFromStatus(t *testing.T) {
	testCases := []struct {
		status   int
		expected ErrorCode
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusBadRequest, ErrValidation},
		{http.StatusUnprocessableEntity, ErrValidation},
		{http.StatusInternalServerError, ErrServer},
		{http.StatusServiceUnavailable, ErrServer},
		{http.StatusConflict, ErrUnknown},
		{http.StatusOK, ErrUnknown},
	}

	for _, tc := range testCases {
		if code := CodeFromStatus(tc.status); code != tc.expected {
			t.Errorf("For status %d, expected code %s, got %s", tc.status, tc.expected, code)
		}
	}
}

// TestStatusFor проверяет обратное соответствие
func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusFor(ErrNotFound))
	assert.Equal(t, http.StatusBadRequest, StatusFor(ErrValidation))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(ErrServer))
	assert.Equal(t, 0, StatusFor(ErrNetwork))
}

// TestCodeOf проверяет извлечение кода из цепочки
func TestCodeOf(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
	assert.Equal(t, ErrForbidden, CodeOf(fmt.Errorf("wrap: %w", New(ErrForbidden, "no"))))
	assert.Equal(t, ErrInternal, CodeOf(fmt.Errorf("plain")))
}

// TestGetUserMessage проверяет пользовательские сообщения
func TestGetUserMessage(t *testing.T) {
	assert.Equal(t, "Категория не найдена", New(ErrNotFound, "Категория не найдена").GetUserMessage())
	assert.Equal(t, "Ресурс не найден", New(ErrNotFound, "").GetUserMessage())
	assert.Equal(t, "Произошла ошибка", New(ErrUnknown, "").GetUserMessage())

	ctx := WithLocalizedMessage(context.Background(), "Resource not found")
	assert.Equal(t, "Resource not found", New(ErrNotFound, "").WithContext(ctx).GetUserMessage())
}

// TestUserMessage_AllCodes проверяет, что у каждого кода есть сообщение
func TestUserMessage_AllCodes(t *testing.T) {
	for _, code := range []ErrorCode{ErrNetwork, ErrUnauthorized, ErrForbidden, ErrNotFound, ErrValidation, ErrServer, ErrUnknown, ErrInternal} {
		assert.NotEmpty(t, UserMessage(code), string(code))
	}
}
