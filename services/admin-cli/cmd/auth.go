package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"StoryBoxAdmin/pkg/errors"
	"StoryBoxAdmin/services/admin-cli/internal/auth"
	"StoryBoxAdmin/services/admin-cli/internal/output"
)

func newAuthCmd() *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Вход и управление сессией",
		Long:  `Команды для входа в панель администрирования StoryBox, выхода и восстановления пароля.`,
	}

	authCmd.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newForgetPasswordCmd(),
		newResetPasswordCmd(),
	)
	return authCmd
}

func newLoginCmd() *cobra.Command {
	loginCmd := &cobra.Command{
		Use:   "login [email]",
		Short: "Войти в систему",
		Long: `Выполняет вход по email и паролю и сохраняет сессию.

Если email или пароль не указаны, они запрашиваются интерактивно.
Флаг --demo входит под демонстрационной учетной записью.

Пример:
  storybox auth login admin@storybox.com
  storybox auth login --demo`,
		Args: cobra.MaximumNArgs(1),
		RunE: runLogin,
	}
	loginCmd.Flags().StringP("password", "p", "", "пароль (не рекомендуется, попадает в историю команд)")
	loginCmd.Flags().Bool("demo", false, "войти под демонстрационной учетной записью")
	return loginCmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	app, err := mustApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	var session *auth.Session
	if demo, _ := cmd.Flags().GetBool("demo"); demo {
		session, err = app.Session.DemoLogin(ctx)
	} else {
		creds := auth.Credentials{}
		if len(args) > 0 {
			creds.Email = args[0]
		}
		creds.Password, _ = cmd.Flags().GetString("password")

		creds, err = promptCredentials(app.Streams, creds)
		if err != nil {
			return err
		}
		session, err = app.Session.Login(ctx, creds)
	}
	if err != nil {
		return err
	}

	if app.Printer.Format() == output.FormatTable {
		return app.Printer.PrintMessage(cmd.CommandPath(),
			fmt.Sprintf("✅ Вход выполнен: %s (%s)", session.User.Name, session.User.Email))
	}
	return app.Printer.Print(cmd.CommandPath(), session.User.Map())
}

// promptCredentials запрашивает недостающие данные. В терминале пароль читается без эха.
func promptCredentials(streams Streams, creds auth.Credentials) (auth.Credentials, error) {
	if creds.Email != "" && creds.Password != "" {
		return creds, nil
	}

	in, ok := streams.In.(*os.File)
	if !ok || !term.IsTerminal(int(in.Fd())) {
		return auth.ReadCredentials(streams.In, streams.ErrOut, creds)
	}

	if creds.Email == "" {
		fmt.Fprint(streams.ErrOut, "Email: ")
		email, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && email == "" {
			return auth.Credentials{}, errors.Wrap(err, errors.ErrValidation, "ошибка чтения email")
		}
		creds.Email = strings.TrimSpace(email)
	}
	if creds.Password == "" {
		fmt.Fprint(streams.ErrOut, "Пароль: ")
		password, err := term.ReadPassword(int(in.Fd()))
		fmt.Fprintln(streams.ErrOut)
		if err != nil {
			return auth.Credentials{}, errors.Wrap(err, errors.ErrValidation, "ошибка чтения пароля")
		}
		creds.Password = string(password)
	}
	return creds, nil
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Выйти из системы",
		Long:  `Удаляет сохраненную сессию.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := mustApp(cmd)
			if err != nil {
				return err
			}
			if err := app.Session.Logout(cmd.Context()); err != nil {
				return err
			}
			return app.Printer.PrintMessage(cmd.CommandPath(), "✅ Выход выполнен")
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Показать текущую сессию",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := mustApp(cmd)
			if err != nil {
				return err
			}
			session := app.Session.Current()
			if session == nil {
				return app.Printer.PrintMessage(cmd.CommandPath(), "Вход не выполнен")
			}
			return app.Printer.Print(cmd.CommandPath(), output.Map(session.User.Map()))
		},
	}
}

func newForgetPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forget-password <email>",
		Short: "Запросить письмо для сброса пароля",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := mustApp(cmd)
			if err != nil {
				return err
			}
			message, err := app.Session.ForgetPassword(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if message == "" {
				message = "Письмо для сброса пароля отправлено"
			}
			return app.Printer.PrintMessage(cmd.CommandPath(), message)
		},
	}
}

func newResetPasswordCmd() *cobra.Command {
	resetCmd := &cobra.Command{
		Use:   "reset-password",
		Short: "Установить новый пароль по коду из письма",
		Long: `Передает сервису поля сброса пароля как есть.

Пример:
  storybox auth reset-password --set email=admin@storybox.com --set otp=123456 --set password=secret`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := mustApp(cmd)
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
			message, err := app.Session.ResetPassword(cmd.Context(), fields)
			if err != nil {
				return err
			}
			if message == "" {
				message = "Пароль изменен"
			}
			return app.Printer.PrintMessage(cmd.CommandPath(), message)
		},
	}
	addFieldFlags(resetCmd)
	return resetCmd
}
