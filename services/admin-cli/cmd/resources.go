package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"StoryBoxAdmin/pkg/errors"
	"StoryBoxAdmin/services/admin-cli/internal/client"
	"StoryBoxAdmin/services/admin-cli/internal/output"
	"StoryBoxAdmin/services/admin-cli/internal/resource"
)

// tableRecord запись ресурса, которую можно напечатать таблицей
type tableRecord interface {
	resource.Record
	output.Row
}

// resourceGroup описание группы команд ресурса
type resourceGroup[T tableRecord] struct {
	Use     string
	Aliases []string
	Short   string
	// GetOp операция чтения одной записи; пусто, если сервис ее не предоставляет
	GetOp client.Operation
	// Remote false для ресурсов, живущих только в процессе
	Remote     bool
	Definition resource.Definition[T]
	Controller func(app *App) *resource.Controller[T]
}

// newResourceCmd строит list, show, create, update, delete и toggle для ресурса
func newResourceCmd[T tableRecord](group resourceGroup[T]) *cobra.Command {
	root := &cobra.Command{
		Use:     group.Use,
		Aliases: group.Aliases,
		Short:   group.Short,
	}

	// open создает контроллер; для удаленных ресурсов нужен вход
	open := func(cmd *cobra.Command) (*App, *resource.Controller[T], error) {
		app, err := mustApp(cmd)
		if err != nil {
			return nil, nil, err
		}
		if group.Remote {
			if err := app.requireSession(); err != nil {
				return nil, nil, err
			}
		}
		return app, group.Controller(app), nil
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Показать список",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctrl, err := open(cmd)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			query, err := readQuery(cmd)
			if err != nil {
				return err
			}
			ctrl.SetQuery(query)
			if err := ctrl.Load(cmd.Context()); err != nil {
				return err
			}
			return app.Printer.Print(cmd.CommandPath(), output.Rows(ctrl.Items()))
		},
	}
	addQueryFlags(listCmd)

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Показать запись",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctrl, err := open(cmd)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			if group.GetOp != "" {
				result := app.API.Dispatch(cmd.Context(), group.GetOp, client.Request{
					PathParams: map[string]string{"id": args[0]},
				})
				return printResult(cmd, app, result, nil)
			}
			if err := ctrl.Load(cmd.Context()); err != nil {
				return err
			}
			item, ok := ctrl.Get(args[0])
			if !ok {
				return errors.New(errors.ErrNotFound, fmt.Sprintf("%s %s не найден", group.Use, args[0]))
			}
			return app.Printer.Print(cmd.CommandPath(), output.Record(item))
		},
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Создать запись",
		Long: `Поля передаются через --set key=value или --data '{"key": "value"}'.

Пример:
  storybox ` + group.Use + ` create --set name="Action" --set description="Action movies"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctrl, err := open(cmd)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			fields, err := readFields(cmd)
			if err != nil {
				return err
			}
			if err := ctrl.Create(cmd.Context(), fields); err != nil {
				return err
			}
			return app.Printer.Print(cmd.CommandPath(), output.Rows(ctrl.Items()))
		},
	}
	addFieldFlags(createCmd)

	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Изменить запись",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctrl, err := open(cmd)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			fields, err := readFields(cmd)
			if err != nil {
				return err
			}
			if err := ctrl.Update(cmd.Context(), args[0], fields); err != nil {
				return err
			}
			if item, ok := ctrl.Get(args[0]); ok {
				return app.Printer.Print(cmd.CommandPath(), output.Record(item))
			}
			return app.Printer.Print(cmd.CommandPath(), output.Rows(ctrl.Items()))
		},
	}
	addFieldFlags(updateCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Удалить запись",
		Long:  `Удаляет запись после подтверждения. Флаг --yes подтверждает удаление без вопроса.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctrl, err := open(cmd)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			if err := ctrl.Load(cmd.Context()); err != nil {
				return err
			}
			if err := ctrl.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			return app.Printer.Print(cmd.CommandPath(), output.Rows(ctrl.Items()))
		},
	}

	flagNames := group.Definition.FlagNames()
	toggleCmd := &cobra.Command{
		Use:       "toggle <id> <flag>",
		Short:     "Переключить флаг записи",
		Long:      "Переключает флаг записи. Доступные флаги: " + strings.Join(flagNames, ", "),
		Args:      cobra.ExactArgs(2),
		ValidArgs: flagNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, ctrl, err := open(cmd)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			if err := ctrl.Load(cmd.Context()); err != nil {
				return err
			}
			if err := ctrl.ToggleFlag(cmd.Context(), args[0], args[1]); err != nil {
				return err
			}
			item, _ := ctrl.Get(args[0])
			return app.Printer.Print(cmd.CommandPath(), output.Record(item))
		},
	}

	root.AddCommand(listCmd, showCmd, createCmd, updateCmd, deleteCmd, toggleCmd)
	return root
}

func newEmployeeCmd() *cobra.Command {
	employeeCmd := newResourceCmd(resourceGroup[resource.Employee]{
		Use:        "employee",
		Aliases:    []string{"employees"},
		Short:      "Сотрудники панели администрирования",
		Remote:     true,
		Definition: resource.EmployeeDefinition(),
		Controller: (*App).employees,
	})

	permissionCmd := &cobra.Command{
		Use:   "permission",
		Short: "Изменить права сотрудника",
		Long: `Пример:
  storybox employee permission --set id=7 --set role=EDITOR`,
		RunE: passthrough(client.OpEmployeePermission),
	}
	addFieldFlags(permissionCmd)
	employeeCmd.AddCommand(permissionCmd)
	return employeeCmd
}

func newCategoryCmd() *cobra.Command {
	return newResourceCmd(resourceGroup[resource.Category]{
		Use:        "category",
		Aliases:    []string{"categories"},
		Short:      "Категории фильмов",
		GetOp:      client.OpCategoryGet,
		Remote:     true,
		Definition: resource.CategoryDefinition(),
		Controller: (*App).categories,
	})
}

func newSeriesCmd() *cobra.Command {
	return newResourceCmd(resourceGroup[resource.Series]{
		Use:        "series",
		Aliases:    []string{"films"},
		Short:      "Сериалы",
		GetOp:      client.OpSeriesGet,
		Remote:     true,
		Definition: resource.SeriesDefinition(),
		Controller: (*App).series,
	})
}

func newContentCmd() *cobra.Command {
	return newResourceCmd(resourceGroup[resource.Content]{
		Use:        "content",
		Aliases:    []string{"videos", "episodes"},
		Short:      "Видео и эпизоды",
		GetOp:      client.OpEpisodeGet,
		Remote:     true,
		Definition: resource.ContentDefinition(),
		Controller: (*App).content,
	})
}

func newPlanCmd() *cobra.Command {
	return newResourceCmd(resourceGroup[resource.Plan]{
		Use:        "plan",
		Aliases:    []string{"plans", "vip"},
		Short:      "VIP тарифы (хранятся в процессе)",
		Definition: resource.PlanDefinition(),
		Controller: (*App).plans,
	})
}
