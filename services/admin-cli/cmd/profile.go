package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"StoryBoxAdmin/pkg/errors"
	"StoryBoxAdmin/pkg/validation"
	"StoryBoxAdmin/services/admin-cli/internal/client"
	"StoryBoxAdmin/services/admin-cli/internal/notify"
)

// Сообщения профиля
const (
	msgProfileUpdated      = "Profile updated successfully!"
	msgPasswordChanged     = "Password changed successfully!"
	msgPasswordFieldsEmpty = "Please fill all password fields"
	msgPasswordMismatch    = "Passwords do not match"
)

func newProfileCmd() *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Профиль текущего администратора",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Показать профиль",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := sessionApp(cmd)
			if err != nil {
				return err
			}
			return printResult(cmd, app, app.API.Dispatch(cmd.Context(), client.OpProfileGet, client.Request{}), nil)
		},
	}

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Изменить данные профиля",
		Long: `Отправляет измененные поля профиля и обновляет сохраненную сессию.

Пример:
  storybox profile update --set name="Demo Admin" --set phone="+1 234 567 8900"`,
		RunE: runProfileUpdate,
	}
	addFieldFlags(updateCmd)

	passwordCmd := &cobra.Command{
		Use:   "change-password",
		Short: "Сменить пароль",
		RunE:  runChangePassword,
	}
	passwordCmd.Flags().String("current", "", "текущий пароль")
	passwordCmd.Flags().String("new", "", "новый пароль")
	passwordCmd.Flags().String("confirm", "", "подтверждение нового пароля")

	pictureCmd := &cobra.Command{
		Use:   "picture",
		Short: "Фото профиля",
	}
	presignCmd := &cobra.Command{
		Use:   "presign",
		Short: "Получить адрес для загрузки фото",
		RunE:  passthrough(client.OpProfilePicturePresign),
	}
	addFieldFlags(presignCmd)
	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Сохранить загруженное фото в профиле",
		RunE:  passthrough(client.OpProfilePictureSave),
	}
	addFieldFlags(saveCmd)
	pictureCmd.AddCommand(presignCmd, saveCmd)

	profileCmd.AddCommand(showCmd, updateCmd, passwordCmd, pictureCmd)
	return profileCmd
}

// sessionApp возвращает App для команд, требующих входа
func sessionApp(cmd *cobra.Command) (*App, error) {
	app, err := mustApp(cmd)
	if err != nil {
		return nil, err
	}
	if err := app.requireSession(); err != nil {
		return nil, err
	}
	return app, nil
}

// passthrough отправляет поля --set/--data в операцию как JSON тело
func passthrough(op client.Operation) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := sessionApp(cmd)
		if err != nil {
			return err
		}
		fields, err := readFields(cmd)
		if err != nil {
			return err
		}
		return printResult(cmd, app, app.API.Dispatch(cmd.Context(), op, client.Request{Body: fields}), nil)
	}
}

func runProfileUpdate(cmd *cobra.Command, args []string) error {
	app, err := sessionApp(cmd)
	if err != nil {
		return err
	}
	fields, err := readFields(cmd)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return errors.New(errors.ErrValidation, "укажите поля через --set или --data")
	}

	result := app.API.Dispatch(cmd.Context(), client.OpProfileUpdate, client.Request{Body: fields})
	if err := result.Err(); err != nil {
		app.Notifier.Push(notify.KindError, userMessage(err))
		return err
	}

	// Сервер может вернуть профиль целиком
	patch := map[string]any(fields)
	var returned map[string]any
	if json.Unmarshal(result.Data, &returned) == nil && returned != nil {
		patch = returned
	}
	if err := app.Session.UpdateUser(cmd.Context(), patch); err != nil {
		return err
	}

	app.Notifier.Push(notify.KindSuccess, msgProfileUpdated)
	return printResult(cmd, app, result, nil)
}

func runChangePassword(cmd *cobra.Command, args []string) error {
	app, err := sessionApp(cmd)
	if err != nil {
		return err
	}
	current, _ := cmd.Flags().GetString("current")
	next, _ := cmd.Flags().GetString("new")
	confirm, _ := cmd.Flags().GetString("confirm")

	if current == "" || next == "" || confirm == "" {
		app.Notifier.Push(notify.KindError, msgPasswordFieldsEmpty)
		return errors.New(errors.ErrValidation, msgPasswordFieldsEmpty)
	}
	if next != confirm {
		app.Notifier.Push(notify.KindError, msgPasswordMismatch)
		return errors.New(errors.ErrValidation, msgPasswordMismatch)
	}
	if err := validation.NewValidator().ValidatePasswordChange(current, next, confirm); err != nil {
		app.Notifier.Push(notify.KindError, userMessage(err))
		return err
	}

	result := app.API.Dispatch(cmd.Context(), client.OpProfileChangePassword, client.Request{
		Body: map[string]string{
			"currentPassword": current,
			"newPassword":     next,
			"confirmPassword": confirm,
		},
	})
	if err := result.Err(); err != nil {
		app.Notifier.Push(notify.KindError, userMessage(err))
		return err
	}
	return app.done(cmd, msgPasswordChanged)
}
