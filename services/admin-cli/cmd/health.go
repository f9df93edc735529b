package cmd

import (
	"context"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"StoryBoxAdmin/pkg/errors"
	"StoryBoxAdmin/pkg/health"
	"StoryBoxAdmin/services/admin-cli/internal/client"
	"StoryBoxAdmin/services/admin-cli/internal/output"
)

const healthTimeout = 10 * time.Second

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Проверить доступность сервиса и подключений",
		Long: `Проверяет доступность API StoryBox, хранилища сессии Redis и брокера RabbitMQ.
Проверяются только подключения, включенные в конфигурации.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := mustApp(cmd)
			if err != nil {
				return err
			}

			return reportHealth(cmd, app.Printer, app.healthChecker())
		},
	}
}

// reportHealth печатает статус зависимостей; недоступная зависимость дает ошибку
func reportHealth(cmd *cobra.Command, printer *output.Printer, checker health.HealthChecker) error {
	status := checker.Check(cmd.Context())
	if err := printer.Print(cmd.CommandPath(), healthTable(status)); err != nil {
		return err
	}
	if status.Status != health.StatusHealthy {
		return errors.New(errors.ErrNetwork, "есть недоступные зависимости")
	}
	return nil
}

// healthChecker регистрирует проверки включенных зависимостей
func (a *App) healthChecker() *health.Checker {
	checker := health.NewChecker(Version, healthTimeout)

	// Любой HTTP ответ означает, что сервис доступен
	checker.Register("api", func(ctx context.Context) error {
		result := a.API.Dispatch(ctx, client.OpDashboardInfo, client.Request{})
		if result.Failure != nil && result.Failure.Kind == errors.ErrNetwork {
			return result.Err()
		}
		return nil
	})

	if a.redis != nil {
		checker.Register("redis", a.redis.Ping)
	}
	if a.rabbit != nil {
		checker.Register("rabbitmq", func(context.Context) error {
			if err := a.rabbit.Ping(); err != nil {
				return errors.Wrap(err, errors.ErrNetwork, "канал RabbitMQ закрыт")
			}
			return nil
		})
	}
	return checker
}

func healthTable(status *health.HealthStatus) *output.TableData {
	names := make([]string, 0, len(status.Services))
	for name := range status.Services {
		names = append(names, name)
	}
	sort.Strings(names)

	td := output.NewTableData([]string{"SERVICE", "STATUS", "DURATION", "DETAILS"})
	for _, name := range names {
		s := status.Services[name]
		td.AddRow(name, s.Status, s.Duration.Round(time.Millisecond).String(), s.Details)
	}
	td.Source = status
	return td
}
