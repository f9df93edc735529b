package cmd

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"

	"StoryBoxAdmin/pkg/config"
	"StoryBoxAdmin/pkg/errors"
)

const secretMask = "********"

func newConfigCmd(v *viper.Viper) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Управление конфигурацией",
		Long: `Команды для управления конфигурацией CLI:
создание файла с настройками по умолчанию и просмотр действующих настроек.`,
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Инициализировать конфигурацию",
		Long:  "Создать файл конфигурации с настройками по умолчанию",
		RunE: func(cmd *cobra.Command, args []string) error {
			return handleConfigInit(cmd, v)
		},
	}
	initCmd.Flags().StringP("path", "p", "", "путь для создания конфигурации")
	initCmd.Flags().BoolP("force", "f", false, "перезаписать существующий файл")

	showCmd := &cobra.Command{
		Use:     "show",
		Aliases: []string{"view"},
		Short:   "Просмотреть конфигурацию",
		Long:    "Показать действующую конфигурацию с учетом файла, окружения и флагов",
		RunE: func(cmd *cobra.Command, args []string) error {
			return handleConfigShow(cmd, v)
		},
	}
	showCmd.Flags().StringP("format", "f", "yaml", "формат вывода (yaml, json)")
	showCmd.Flags().BoolP("show-secrets", "x", false, "показать секретные данные")

	configCmd.AddCommand(initCmd, showCmd)
	return configCmd
}

func handleConfigInit(cmd *cobra.Command, v *viper.Viper) error {
	force, _ := cmd.Flags().GetBool("force")
	path, _ := cmd.Flags().GetString("path")
	if path == "" {
		path = v.GetString("config")
	}
	if path == "" {
		path = config.DefaultPath()
	}

	if _, err := os.Stat(path); err == nil && !force {
		return errors.New(errors.ErrValidation, "файл конфигурации уже существует. Используйте --force для перезаписи")
	}

	cfg := config.Default()
	if server := v.GetString("server"); server != "" {
		cfg.API.BaseURL = server
	}
	if err := cfg.Save(path); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "не удалось сохранить конфигурацию")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "✅ Конфигурация успешно инициализирована!")
	fmt.Fprintf(out, "📁 Файл: %s\n", path)
	fmt.Fprintf(out, "🌐 API: %s\n", cfg.API.BaseURL)
	return nil
}

func handleConfigShow(cmd *cobra.Command, v *viper.Viper) error {
	cfg, err := loadConfig(settingsFrom(v))
	if err != nil {
		return err
	}

	if showSecrets, _ := cmd.Flags().GetBool("show-secrets"); !showSecrets {
		cfg = maskSecrets(cfg)
	}

	format, _ := cmd.Flags().GetString("format")
	var content []byte
	switch format {
	case "json":
		content, err = json.MarshalIndent(cfg, "", "  ")
	case "yaml":
		content, err = yaml.Marshal(cfg)
	default:
		return errors.New(errors.ErrValidation, "неподдерживаемый формат: "+format)
	}
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "ошибка сериализации конфигурации")
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(content))
	return err
}

// maskSecrets возвращает копию конфигурации со скрытыми паролями
func maskSecrets(cfg *config.Config) *config.Config {
	masked := *cfg
	if masked.Redis.Password != "" {
		masked.Redis.Password = secretMask
	}
	if u, err := url.Parse(masked.RabbitMQ.URL); err == nil {
		masked.RabbitMQ.URL = u.Redacted()
	}
	return &masked
}
