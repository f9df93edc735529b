package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"StoryBoxAdmin/pkg/errors"
	"StoryBoxAdmin/services/admin-cli/internal/resource"
)

// Version версия CLI
const Version = "1.0.0"

// Streams потоки ввода и вывода команд
type Streams struct {
	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer
}

// StdStreams стандартные потоки процесса
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, ErrOut: os.Stderr}
}

type appKey struct{}

// Execute выполняет CLI с аргументами процесса
func Execute(ctx context.Context) error {
	streams := StdStreams()
	err := NewRootCmd(streams).ExecuteContext(ctx)
	reportError(streams.ErrOut, err)
	return err
}

// reportError печатает ошибки, которые не показала сама команда
func reportError(w io.Writer, err error) {
	var reported *reportedError
	if err == nil || stderrors.As(err, &reported) || stderrors.Is(err, resource.ErrDeclined) {
		return
	}
	fmt.Fprintf(w, "Ошибка: %s\n", userMessage(err))
}

// NewRootCmd строит дерево команд. Каждый вызов создает независимое дерево со своим viper.
func NewRootCmd(streams Streams) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("STORYBOX")
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "storybox",
		Short: "StoryBox Admin CLI - управление каталогом и сотрудниками StoryBox",
		Long: `StoryBox Admin CLI - инструмент командной строки для администрирования StoryBox.

Поддерживает вход в панель администрирования, управление сотрудниками,
категориями, сериалами, видео и VIP тарифами, загрузку файлов и
просмотр статистики.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if skipsApp(cmd) {
				return nil
			}
			app, err := newApp(cmd.Context(), settingsFrom(v), streams)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, app))
			return nil
		},
	}
	rootCmd.SetIn(streams.In)
	rootCmd.SetOut(streams.Out)
	rootCmd.SetErr(streams.ErrOut)

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "файл конфигурации (по умолчанию $STORYBOX_HOME/config.yaml или ~/.storybox/config.yaml)")
	flags.StringP("server", "s", "", "адрес API StoryBox")
	flags.StringP("output", "o", "", "формат вывода (table, json, yaml)")
	flags.BoolP("yes", "y", false, "подтверждать действия без вопроса")
	flags.Bool("debug", false, "подробные логи в stderr")

	for _, name := range []string{"config", "server", "output", "yes", "debug"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}

	rootCmd.AddCommand(
		newAuthCmd(),
		newProfileCmd(),
		newDashboardCmd(),
		newUsersCmd(),
		newUploadCmd(),
		newEmployeeCmd(),
		newCategoryCmd(),
		newSeriesCmd(),
		newContentCmd(),
		newPlanCmd(),
		newConfigCmd(v),
		newHealthCmd(),
		newVersionCmd(),
		newCompletionCmd(),
	)

	return wrapRun(rootCmd)
}

// wrapRun закрывает приложение после каждой команды и печатает ошибку один раз
func wrapRun(root *cobra.Command) *cobra.Command {
	var walk func(c *cobra.Command)
	walk = func(c *cobra.Command) {
		if c.RunE != nil {
			run := c.RunE
			c.RunE = func(cmd *cobra.Command, args []string) error {
				started := time.Now()
				app := appFrom(cmd)
				err := run(cmd, args)
				if app == nil {
					return err
				}
				return app.finish(cmd, err, started)
			}
		}
		for _, child := range c.Commands() {
			walk(child)
		}
	}
	walk(root)
	return root
}

func appFrom(cmd *cobra.Command) *App {
	if cmd.Context() == nil {
		return nil
	}
	app, _ := cmd.Context().Value(appKey{}).(*App)
	return app
}

// mustApp возвращает App для команд, которым он нужен
func mustApp(cmd *cobra.Command) (*App, error) {
	app := appFrom(cmd)
	if app == nil {
		return nil, errors.New(errors.ErrInternal, "приложение не инициализировано")
	}
	return app, nil
}

// skipsApp команды, работающие без подключения к сервису
func skipsApp(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "version", "completion", "config", "help":
			return true
		}
	}
	return false
}

// ExitCode код завершения для ошибки команды
func ExitCode(err error) int {
	if err == nil || stderrors.Is(err, resource.ErrDeclined) {
		return 0
	}
	return 1
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Показать версию",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "StoryBox Admin CLI v%s\n", Version)
			return nil
		},
	}
}
