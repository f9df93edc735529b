package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"StoryBoxAdmin/pkg/health"
	"StoryBoxAdmin/pkg/logger"
	"StoryBoxAdmin/pkg/rabbitmq"
)

// MockLogger имитирует pkg/logger.Logger
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, fields ...logger.Field) {
	m.Called(msg, fields)
}

func (m *MockLogger) Info(msg string, fields ...logger.Field) {
	m.Called(msg, fields)
}

func (m *MockLogger) Warn(msg string, fields ...logger.Field) {
	m.Called(msg, fields)
}

func (m *MockLogger) Error(msg string, fields ...logger.Field) {
	m.Called(msg, fields)
}

func (m *MockLogger) With(fields ...logger.Field) logger.Logger {
	args := m.Called(fields)
	return args.Get(0).(logger.Logger)
}

func (m *MockLogger) Sync() error {
	args := m.Called()
	return args.Error(0)
}

// NewPermissiveLogger возвращает MockLogger, принимающий любые вызовы
func NewPermissiveLogger() *MockLogger {
	m := &MockLogger{}
	m.On("Debug", mock.Anything, mock.Anything).Maybe()
	m.On("Info", mock.Anything, mock.Anything).Maybe()
	m.On("Warn", mock.Anything, mock.Anything).Maybe()
	m.On("Error", mock.Anything, mock.Anything).Maybe()
	m.On("Sync").Return(nil).Maybe()
	m.On("With", mock.Anything).Return(m).Maybe()
	return m
}

// MockPublisher имитирует pkg/rabbitmq.Producer
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, msg rabbitmq.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockHealthChecker имитирует pkg/health.HealthChecker
type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) Check(ctx context.Context) *health.HealthStatus {
	args := m.Called(ctx)
	return args.Get(0).(*health.HealthStatus)
}
