package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"StoryBoxAdmin/pkg/config"
	"StoryBoxAdmin/pkg/errors"
	"StoryBoxAdmin/pkg/logger"
	"StoryBoxAdmin/pkg/metrics"
	"StoryBoxAdmin/pkg/rabbitmq"
	"StoryBoxAdmin/pkg/ratelimit"
	pkgredis "StoryBoxAdmin/pkg/redis"
	"StoryBoxAdmin/services/admin-cli/internal/auth"
	"StoryBoxAdmin/services/admin-cli/internal/client"
	"StoryBoxAdmin/services/admin-cli/internal/confirm"
	climetrics "StoryBoxAdmin/services/admin-cli/internal/metrics"
	"StoryBoxAdmin/services/admin-cli/internal/notify"
	"StoryBoxAdmin/services/admin-cli/internal/output"
	"StoryBoxAdmin/services/admin-cli/internal/resource"
	"StoryBoxAdmin/services/admin-cli/internal/store"
)

const (
	serviceName      = "storybox-admin"
	metricsNamespace = "storybox_admin"
)

// closeTimeout ограничивает сброс уведомлений и метрик при завершении
const closeTimeout = 5 * time.Second

// settings значения глобальных флагов
type settings struct {
	ConfigFile string
	Server     string
	Output     string
	Yes        bool
	Debug      bool
}

func settingsFrom(v *viper.Viper) settings {
	return settings{
		ConfigFile: v.GetString("config"),
		Server:     v.GetString("server"),
		Output:     v.GetString("output"),
		Yes:        v.GetBool("yes"),
		Debug:      v.GetBool("debug"),
	}
}

// App зависимости одного запуска CLI
type App struct {
	Config        *config.Config
	Logger        logger.Logger
	Metrics       *metrics.Metrics
	Commands      *climetrics.CLIMetrics
	API           *client.APIClient
	Session       *auth.SessionManager
	Gate          *confirm.Gate
	Notifications *notify.Queue
	Notifier      *countingNotifier
	Printer       *output.Printer
	Streams       Streams

	store          store.TokenStore
	redis          *pkgredis.Client
	rabbit         *rabbitmq.Connection
	shutdownTracer func(context.Context) error
}

// reportedError ошибка, уже показанная пользователю
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// loadConfig читает файл конфигурации и применяет глобальные флаги
func loadConfig(s settings) (*config.Config, error) {
	path := s.ConfigFile
	if path == "" {
		if _, err := os.Stat(config.DefaultPath()); err == nil {
			path = config.DefaultPath()
		}
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, errors.New(errors.ErrValidation, fmt.Sprintf("ошибка загрузки конфигурации: %v", err))
	}

	if s.Server != "" {
		cfg.API.BaseURL = s.Server
	}
	if s.Output != "" {
		cfg.Output.Format = s.Output
	}
	if s.Debug {
		cfg.Logger.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.New(errors.ErrValidation, fmt.Sprintf("некорректная конфигурация: %v", err))
	}
	return cfg, nil
}

// newApp собирает зависимости и восстанавливает сохраненную сессию
func newApp(ctx context.Context, s settings, streams Streams) (*App, error) {
	cfg, err := loadConfig(s)
	if err != nil {
		return nil, err
	}

	appLogger, err := logger.NewLogger(cfg.Environment, cfg.Logger.Level, serviceName, streams.ErrOut)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "ошибка инициализации логгера")
	}

	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, errors.New(errors.ErrValidation, err.Error())
	}

	appMetrics := metrics.NewMetrics(serviceName)
	app := &App{
		Config:         cfg,
		Logger:         appLogger,
		Metrics:        appMetrics,
		Commands:       climetrics.NewCLIMetrics(appMetrics, metricsNamespace, appLogger),
		Printer:        output.NewPrinter(streams.Out, format, output.DetectColors(streams.Out)),
		Streams:        streams,
		shutdownTracer: metrics.InitializeOpenTelemetry(serviceName, Version),
	}

	if err := app.openStore(ctx); err != nil {
		app.Close(ctx)
		return nil, err
	}

	var limiter ratelimit.RateLimiter
	if cfg.API.RateLimit > 0 {
		limiter = ratelimit.NewTokenBucketLimiter(cfg.API.RateLimit, 1)
	}
	api, err := client.NewAPIClient(client.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.APITimeout(),
		UserAgent: cfg.API.UserAgent,
		Limiter:   limiter,
		Metrics:   app.Metrics,
		Logger:    appLogger,
	})
	if err != nil {
		app.Close(ctx)
		return nil, errors.Wrap(err, errors.ErrValidation, "некорректный адрес API")
	}
	app.API = api
	app.Session = auth.NewSessionManager(app.store, api, appLogger)
	api.BindSession(app.Session)

	app.Notifications = notify.NewQueue(notify.Options{
		TTL:     cfg.NotificationTTL(),
		Buffer:  cfg.Notifications.Buffer,
		Sinks:   app.sinks(ctx),
		Metrics: app.Metrics,
		Logger:  appLogger,
	})
	app.Notifier = &countingNotifier{next: app.Notifications}

	var responder confirm.Responder = confirm.NewTerminalResponder(streams.In, streams.ErrOut)
	if s.Yes {
		responder = confirm.StaticResponder{Answer: true}
	}
	app.Gate = confirm.NewGate(responder, appLogger)

	app.Session.Restore(ctx)
	return app, nil
}

func (a *App) openStore(ctx context.Context) error {
	switch a.Config.Session.Backend {
	case config.SessionBackendMemory:
		a.store = store.NewMemoryTokenStore()
	case config.SessionBackendRedis:
		rcfg := pkgredis.NewConfig()
		rcfg.Addr = a.Config.Redis.Addr
		rcfg.Password = a.Config.Redis.Password
		rcfg.DB = a.Config.Redis.DB
		rcfg.PoolSize = a.Config.Redis.PoolSize
		rcfg.Attempts = a.Config.Redis.MaxRetries + 1
		rcfg.RetryInterval = a.Config.RedisRetryInterval()
		rc, err := pkgredis.Connect(ctx, rcfg)
		if err != nil {
			return errors.Wrap(err, errors.ErrNetwork, "не удалось подключиться к Redis")
		}
		a.redis = rc
		a.store = store.NewRedisTokenStore(rc, a.Config.Session.KeyPrefix, a.Config.SessionTTL())
	default:
		dir, err := a.Config.SessionDir()
		if err != nil {
			return errors.Wrap(err, errors.ErrInternal, "не удалось определить каталог сессии")
		}
		fs, err := store.NewFileTokenStore(dir)
		if err != nil {
			return errors.Wrap(err, errors.ErrInternal, "не удалось открыть хранилище сессии")
		}
		a.store = fs
	}
	return nil
}

// sinks консоль всегда, брокер при notifications.broker.
// Недоступный брокер не мешает работе команды.
func (a *App) sinks(ctx context.Context) []notify.Sink {
	sinks := []notify.Sink{notify.NewConsoleSink(a.Streams.ErrOut, output.DetectColors(a.Streams.ErrOut))}
	if !a.Config.Notifications.Broker {
		return sinks
	}

	rcfg := rabbitmq.NewConfig()
	rcfg.URL = a.Config.RabbitMQ.URL
	rcfg.Exchange = a.Config.RabbitMQ.Exchange
	rcfg.RoutingKey = a.Config.RabbitMQ.RoutingKey
	conn, err := rabbitmq.Connect(ctx, rcfg)
	if err != nil {
		a.Logger.Warn("брокер уведомлений недоступен", logger.Error(err))
		return sinks
	}
	a.rabbit = conn
	return append(sinks, notify.NewBrokerSink(rabbitmq.NewProducer(conn), serviceName))
}

// controllers

func (a *App) employees() *resource.Controller[resource.Employee] {
	return resource.NewEmployees(a.API, a.Gate, a.Notifier, a.Logger)
}

func (a *App) categories() *resource.Controller[resource.Category] {
	return resource.NewCategories(a.API, a.Gate, a.Notifier, a.Logger)
}

func (a *App) series() *resource.Controller[resource.Series] {
	return resource.NewSeries(a.API, a.Gate, a.Notifier, a.Logger)
}

func (a *App) content() *resource.Controller[resource.Content] {
	return resource.NewContent(a.API, a.Gate, a.Notifier, a.Logger)
}

func (a *App) plans() *resource.Controller[resource.Plan] {
	return resource.NewPlans(nil, a.Gate, a.Notifier, a.Logger)
}

// requireSession возвращает ошибку, если пользователь не вошел
func (a *App) requireSession() error {
	if a.Session.Current() == nil {
		return errors.New(errors.ErrUnauthorized, "Требуется вход: выполните storybox auth login")
	}
	return nil
}

// done сообщает об успехе уведомлением; в JSON и YAML также печатает результат
func (a *App) done(cmd *cobra.Command, message string) error {
	a.Notifier.Push(notify.KindSuccess, message)
	if a.Printer.Format() == output.FormatTable {
		return nil
	}
	return a.Printer.PrintMessage(cmd.CommandPath(), message)
}

// finish показывает ошибку команды и освобождает ресурсы
func (a *App) finish(cmd *cobra.Command, err error, started time.Time) error {
	outcome := climetrics.OutcomeSuccess
	switch {
	case stderrors.Is(err, resource.ErrDeclined):
		outcome = climetrics.OutcomeDeclined
		_ = a.Printer.PrintMessage(cmd.CommandPath(), "Действие отменено")
		err = nil
	case err != nil:
		outcome = climetrics.OutcomeFailed
	}
	a.Commands.CommandExecuted(cmd.CommandPath(), outcome, time.Since(started))

	if err != nil {
		a.Logger.Debug("команда завершилась с ошибкой",
			logger.String("command", cmd.CommandPath()),
			logger.Error(err))
		switch {
		case a.Printer.Format() != output.FormatTable:
			_ = a.Printer.PrintError(cmd.CommandPath(), err)
		case a.Notifier.Errors() == 0:
			fmt.Fprintf(a.Streams.ErrOut, "Ошибка: %s\n", userMessage(err))
		}
		err = &reportedError{err: err}
	}

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	a.Close(ctx)
	return err
}

// Close сбрасывает уведомления и метрики, закрывает подключения
func (a *App) Close(ctx context.Context) {
	if a.Notifications != nil {
		if err := a.Notifications.Close(ctx); err != nil {
			a.Logger.Warn("уведомления не доставлены до завершения", logger.Error(err))
		}
	}
	if a.Metrics != nil && a.Config.Metrics.PushgatewayURL != "" {
		if err := a.Metrics.Push(ctx, a.Config.Metrics.PushgatewayURL, a.Config.Metrics.Job); err != nil {
			a.Logger.Warn("ошибка выгрузки метрик", logger.Error(err))
		}
	}
	if a.shutdownTracer != nil {
		_ = a.shutdownTracer(ctx)
	}
	// Redis закрывается вместе с хранилищем сессии
	closers := []namedCloser{}
	if a.store != nil {
		closers = append(closers, namedCloser{"session store", a.store})
	}
	if a.rabbit != nil {
		closers = append(closers, namedCloser{"rabbitmq", a.rabbit})
	}
	for _, item := range closers {
		if err := item.c.Close(); err != nil {
			a.Logger.Warn("ошибка закрытия подключения", logger.String("resource", item.name), logger.Error(err))
		}
	}
	_ = a.Logger.Sync()
}

type namedCloser struct {
	name string
	c    io.Closer
}

// countingNotifier считает уведомления об ошибках, чтобы не печатать ошибку дважды
type countingNotifier struct {
	next   notify.Notifier
	errors atomic.Int32
}

func (n *countingNotifier) Push(kind notify.Kind, text string) notify.Notification {
	if kind == notify.KindError {
		n.errors.Add(1)
	}
	return n.next.Push(kind, text)
}

// Errors число показанных уведомлений об ошибках
func (n *countingNotifier) Errors() int {
	return int(n.errors.Load())
}

// userMessage текст ошибки для пользователя
func userMessage(err error) string {
	var e *errors.Error
	if errors.As(err, &e) {
		return e.GetUserMessage()
	}
	return err.Error()
}
