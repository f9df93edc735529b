package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"StoryBoxAdmin/pkg/errors"
	"StoryBoxAdmin/services/admin-cli/internal/client"
	"StoryBoxAdmin/services/admin-cli/internal/resource"
)

// addFieldFlags добавляет флаги --set и --data
func addFieldFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("set", nil, "значение поля key=value; значение разбирается как JSON, иначе как строка")
	cmd.Flags().String("data", "", "JSON объект с полями или @файл")
}

// readFields собирает поля из --data, затем из --set
func readFields(cmd *cobra.Command) (resource.Fields, error) {
	fields := resource.Fields{}

	data, _ := cmd.Flags().GetString("data")
	if data != "" {
		raw := []byte(data)
		if strings.HasPrefix(data, "@") {
			content, err := os.ReadFile(strings.TrimPrefix(data, "@"))
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrValidation, fmt.Sprintf("не удалось прочитать файл %s", strings.TrimPrefix(data, "@")))
			}
			raw = content
		}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return nil, errors.Wrap(err, errors.ErrValidation, "--data должен быть JSON объектом")
		}
		if fields == nil {
			return nil, errors.New(errors.ErrValidation, "--data должен быть JSON объектом")
		}
	}

	sets, _ := cmd.Flags().GetStringArray("set")
	for _, pair := range sets {
		key, value, err := parseSet(pair)
		if err != nil {
			return nil, err
		}
		fields[key] = value
	}
	return fields, nil
}

// parseSet разбирает key=value. 42, true, null и JSON объекты сохраняют тип.
func parseSet(pair string) (string, any, error) {
	key, raw, ok := strings.Cut(pair, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", nil, errors.New(errors.ErrValidation, fmt.Sprintf("некорректное значение --set %q, ожидается key=value", pair))
	}
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return key, raw, nil
	}
	return key, value, nil
}

// addQueryFlags добавляет параметры списка
func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().Int("page", 0, "номер страницы")
	cmd.Flags().Int("limit", 0, "размер страницы")
	cmd.Flags().String("search", "", "строка поиска")
	cmd.Flags().StringArray("query", nil, "дополнительный параметр key=value")
}

// readQuery собирает параметры в порядке: page, limit, search, --query
func readQuery(cmd *cobra.Command) (client.Query, error) {
	var query client.Query
	if page, _ := cmd.Flags().GetInt("page"); page > 0 {
		query = query.Add("page", strconv.Itoa(page))
	}
	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
		query = query.Add("limit", strconv.Itoa(limit))
	}
	if search, _ := cmd.Flags().GetString("search"); search != "" {
		query = query.Add("search", search)
	}
	extra, _ := cmd.Flags().GetStringArray("query")
	for _, pair := range extra {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, errors.New(errors.ErrValidation, fmt.Sprintf("некорректный параметр --query %q, ожидается key=value", pair))
		}
		query = query.Add(key, value)
	}
	return query, nil
}
