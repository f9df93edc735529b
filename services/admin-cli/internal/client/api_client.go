package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"StoryBoxAdmin/pkg/errors"
	"StoryBoxAdmin/pkg/logger"
	"StoryBoxAdmin/pkg/metrics"
	"StoryBoxAdmin/pkg/ratelimit"
	"StoryBoxAdmin/pkg/validation"
)

// DefaultUserAgent заголовок User-Agent клиента
const DefaultUserAgent = "StoryBox-Admin-CLI/1.0"

// maxResponseSize ограничивает читаемое тело ответа
const maxResponseSize = 10 << 20

// SessionBinding источник токена и получатель сигнала об истекшей сессии
type SessionBinding interface {
	Token() string
	Expire(ctx context.Context, op Operation)
}

// Dispatcher выполняет операции каталога
type Dispatcher interface {
	Dispatch(ctx context.Context, op Operation, req Request) Result
}

// Options параметры APIClient
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	Catalog    Catalog
	Limiter    ratelimit.RateLimiter
	Metrics    *metrics.Metrics
	Logger     logger.Logger
	HTTPClient *http.Client
}

// APIClient единая точка сетевых вызовов к сервису StoryBox.
// Ожидаемые ошибки не возвращаются как error, а классифицируются в Result.
type APIClient struct {
	baseURL    string
	userAgent  string
	catalog    Catalog
	httpClient *http.Client
	limiter    ratelimit.RateLimiter
	metrics    *metrics.Metrics
	tracer     trace.Tracer
	logger     logger.Logger

	mu      sync.RWMutex
	session SessionBinding
}

// NewAPIClient создает клиент
func NewAPIClient(opts Options) (*APIClient, error) {
	if err := validation.NewValidator().ValidateURL(opts.BaseURL, []string{"http", "https"}); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}

	c := &APIClient{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		catalog:    opts.Catalog,
		httpClient: opts.HTTPClient,
		limiter:    opts.Limiter,
		metrics:    opts.Metrics,
		logger:     opts.Logger,
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.catalog == nil {
		c.catalog = DefaultCatalog()
	}
	if c.httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	if c.limiter == nil {
		c.limiter = ratelimit.Unlimited{}
	}
	if c.logger == nil {
		c.logger = logger.NewNop()
	}
	if c.metrics != nil {
		c.tracer = c.metrics.Tracer
	} else {
		c.tracer = otel.Tracer("storybox-admin/client")
	}

	return c, nil
}

// BindSession связывает клиент с владельцем сессии
func (c *APIClient) BindSession(session SessionBinding) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = session
}

func (c *APIClient) boundSession() SessionBinding {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// Catalog возвращает каталог операций клиента
func (c *APIClient) Catalog() Catalog {
	return c.catalog
}

// BaseURL возвращает адрес сервиса
func (c *APIClient) BaseURL() string {
	return c.baseURL
}

// Dispatch выполняет операцию и классифицирует ответ.
// Повторов и кэширования нет.
func (c *APIClient) Dispatch(ctx context.Context, op Operation, req Request) Result {
	ep, ok := c.catalog.Lookup(op)
	if !ok {
		return failure(errors.ErrInternal, fmt.Sprintf("unknown operation %q", op), 0)
	}

	if err := req.checkShape(ep.Body); err != nil {
		return failure(errors.ErrValidation, err.Error(), 0)
	}

	path, err := ep.BuildPath(req.PathParams)
	if err != nil {
		return failure(errors.ErrValidation, err.Error(), 0)
	}

	query := make(Query, 0, len(ep.QueryParams)+len(req.Query))
	for _, name := range ep.QueryParams {
		value, ok := req.PathParams[name]
		if !ok || value == "" {
			return failure(errors.ErrValidation, fmt.Sprintf("missing query parameter %q", name), 0)
		}
		query = query.Add(name, value)
	}
	query = append(query, req.Query...)

	target := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		target += "?" + encoded
	}

	body, contentType, err := req.encodeBody(ep.Body)
	if err != nil {
		return failure(errors.ErrValidation, err.Error(), 0)
	}

	ctx, span := c.tracer.Start(ctx, "api."+string(op), trace.WithAttributes(
		attribute.String("storybox.operation", string(op)),
		attribute.String("http.method", ep.Method),
	))
	defer span.End()

	if err := c.limiter.Wait(ctx); err != nil {
		result := failure(errors.ErrNetwork, "", 0)
		c.finish(ctx, span, op, ep, result, 0)
		return result
	}

	httpReq, err := http.NewRequestWithContext(ctx, ep.Method, target, body)
	if err != nil {
		result := failure(errors.ErrInternal, fmt.Sprintf("ошибка создания запроса: %v", err), 0)
		c.finish(ctx, span, op, ep, result, 0)
		return result
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	session := c.boundSession()
	if session != nil {
		if token := session.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.logger.Debug("Выполнение запроса",
		logger.String("operation", string(op)),
		logger.String("method", ep.Method),
		logger.String("path", path),
		logger.CtxField(ctx))

	started := time.Now()
	if c.metrics != nil {
		c.metrics.IncrementActiveConnections("http")
		defer c.metrics.DecrementActiveConnections("http")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Warn("Сервер недоступен",
			logger.String("operation", string(op)),
			logger.Error(err))
		result := failure(errors.ErrNetwork, "", 0)
		c.finish(ctx, span, op, ep, result, time.Since(started))
		return result
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		c.logger.Warn("Ошибка чтения ответа",
			logger.String("operation", string(op)),
			logger.Error(err))
		result := failure(errors.ErrNetwork, "", resp.StatusCode)
		c.finish(ctx, span, op, ep, result, time.Since(started))
		return result
	}

	result := classify(resp.StatusCode, raw)
	c.finish(ctx, span, op, ep, result, time.Since(started))

	if !result.OK() && result.Failure.Kind == errors.ErrUnauthorized && ep.Authenticated && session != nil {
		session.Expire(ctx, op)
	}

	return result
}

// finish записывает метрики, статус спана и итоговый лог
func (c *APIClient) finish(ctx context.Context, span trace.Span, op Operation, ep Endpoint, result Result, elapsed time.Duration) {
	kind := ""
	if !result.OK() {
		kind = string(result.Failure.Kind)
		span.SetStatus(codes.Error, result.Failure.Message)
		span.SetAttributes(attribute.String("storybox.error_kind", kind))
	}
	if result.HTTPStatus != 0 {
		span.SetAttributes(attribute.Int("http.status_code", result.HTTPStatus))
	}

	if c.metrics != nil {
		c.metrics.ObserveRequest(string(op), ep.Method, result.HTTPStatus, kind, elapsed)
	}

	if result.OK() {
		c.logger.Debug("Запрос выполнен",
			logger.String("operation", string(op)),
			logger.Int("status", result.HTTPStatus),
			logger.Duration("duration", elapsed))
		return
	}
	c.logger.Debug("Запрос завершился ошибкой",
		logger.String("operation", string(op)),
		logger.String("error_kind", kind),
		logger.Int("status", result.HTTPStatus),
		logger.String("message", result.Failure.Message),
		logger.CtxField(ctx))
}
