package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"StoryBoxAdmin/pkg/errors"
	"StoryBoxAdmin/pkg/logger"
	"StoryBoxAdmin/services/admin-cli/internal/client"
	"StoryBoxAdmin/services/admin-cli/internal/notify"
)

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Статистика панели администрирования",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := sessionApp(cmd)
			if err != nil {
				return err
			}
			return printResult(cmd, app, app.API.Dispatch(cmd.Context(), client.OpDashboardInfo, client.Request{}), nil)
		},
	}
}

func newUsersCmd() *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Пользователи приложения",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Список пользователей",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := sessionApp(cmd)
			if err != nil {
				return err
			}
			query, err := readQuery(cmd)
			if err != nil {
				return err
			}
			result := app.API.Dispatch(cmd.Context(), client.OpUsersList, client.Request{Query: query})
			return printResult(cmd, app, result, nil, "users")
		},
	}
	addQueryFlags(listCmd)

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Профиль пользователя",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := sessionApp(cmd)
			if err != nil {
				return err
			}
			result := app.API.Dispatch(cmd.Context(), client.OpUsersGet, client.Request{
				PathParams: map[string]string{"id": args[0]},
			})
			return printResult(cmd, app, result, nil)
		},
	}

	permissionCmd := &cobra.Command{
		Use:   "permission",
		Short: "Изменить права пользователя",
		Long: `Пример:
  storybox users permission --set userId=42 --set permission=PREMIUM`,
		RunE: passthrough(client.OpUsersPermission),
	}
	addFieldFlags(permissionCmd)

	usersCmd.AddCommand(listCmd, showCmd, permissionCmd)
	return usersCmd
}

func newUploadCmd() *cobra.Command {
	uploadCmd := &cobra.Command{
		Use:   "upload",
		Short: "Загрузка файлов",
		Long:  `Загружает файл multipart запросом. Тип содержимого определяется по содержимому файла.`,
	}

	for _, item := range []struct {
		use   string
		short string
		op    client.Operation
	}{
		{"file <path>", "Загрузить произвольный файл", client.OpUploadFile},
		{"image <path>", "Загрузить изображение", client.OpUploadImage},
		{"video <path>", "Загрузить видео", client.OpUploadVideo},
	} {
		op := item.op
		c := &cobra.Command{
			Use:   item.use,
			Short: item.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runUpload(cmd, op, args[0])
			},
		}
		c.Flags().String("field", "file", "имя поля формы")
		c.Flags().StringArray("form", nil, "дополнительное поле формы key=value")
		uploadCmd.AddCommand(c)
	}
	return uploadCmd
}

func runUpload(cmd *cobra.Command, op client.Operation, path string) error {
	app, err := sessionApp(cmd)
	if err != nil {
		return err
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrValidation, "не удалось прочитать файл "+path)
	}

	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, errors.ErrValidation, "не удалось открыть файл "+path)
	}
	defer file.Close()

	field, _ := cmd.Flags().GetString("field")
	forms, _ := cmd.Flags().GetStringArray("form")
	var extra client.Query
	for _, pair := range forms {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return errors.New(errors.ErrValidation, fmt.Sprintf("некорректное поле --form %q, ожидается key=value", pair))
		}
		extra = extra.Add(key, value)
	}

	app.Logger.Debug("загрузка файла",
		logger.String("operation", string(op)),
		logger.String("file", filepath.Base(path)),
		logger.String("content_type", mtype.String()))

	result := app.API.Dispatch(cmd.Context(), op, client.Request{
		File: &client.FilePayload{
			FieldName:   field,
			FileName:    filepath.Base(path),
			ContentType: mtype.String(),
			Content:     file,
			Fields:      extra,
		},
	})
	if err := result.Err(); err != nil {
		app.Notifier.Push(notify.KindError, userMessage(err))
		return err
	}
	app.Notifier.Push(notify.KindSuccess, "Файл загружен: "+filepath.Base(path))
	return printResult(cmd, app, result, nil)
}
