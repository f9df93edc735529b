package cmd

import (
	"encoding/json"
	"sort"

	"github.com/spf13/cobra"

	"StoryBoxAdmin/services/admin-cli/internal/client"
	"StoryBoxAdmin/services/admin-cli/internal/output"
)

// printResult печатает ответ операции без модели записи:
// список таблицей, объект вертикально, иначе сообщение сервиса.
func printResult(cmd *cobra.Command, app *App, result client.Result, columns []string, listKeys ...string) error {
	if err := result.Err(); err != nil {
		return err
	}

	var obj map[string]any
	isObject := json.Unmarshal(result.Data, &obj) == nil && obj != nil

	var arr []json.RawMessage
	isArray := json.Unmarshal(result.Data, &arr) == nil && arr != nil

	if isArray || (isObject && len(listKeys) > 0 && hasList(obj, listKeys)) {
		items := decodeObjects(result.List(listKeys...))
		if len(columns) == 0 {
			columns = columnsOf(items)
		}
		return app.Printer.Print(cmd.CommandPath(), output.Objects(items, columns...))
	}
	if isObject {
		return app.Printer.Print(cmd.CommandPath(), output.Map(obj))
	}

	message := result.Message
	if message == "" {
		message = "Готово"
	}
	return app.Printer.PrintMessage(cmd.CommandPath(), message)
}

func hasList(obj map[string]any, keys []string) bool {
	candidates := append([]string{}, keys...)
	for _, key := range append(candidates, "items", "data", "results") {
		if _, ok := obj[key].([]any); ok {
			return true
		}
	}
	return false
}

// decodeObjects пропускает элементы, не являющиеся объектами
func decodeObjects(raw []json.RawMessage) []map[string]any {
	items := make([]map[string]any, 0, len(raw))
	for _, r := range raw {
		var item map[string]any
		if json.Unmarshal(r, &item) == nil && item != nil {
			items = append(items, item)
		}
	}
	return items
}

// columnsOf id первым, остальные ключи по алфавиту
func columnsOf(items []map[string]any) []string {
	seen := map[string]bool{}
	var columns []string
	for _, item := range items {
		for key, value := range item {
			if seen[key] {
				continue
			}
			if _, nested := value.(map[string]any); nested {
				continue
			}
			seen[key] = true
			columns = append(columns, key)
		}
	}
	sort.Slice(columns, func(i, j int) bool {
		if columns[i] == "id" || columns[j] == "id" {
			return columns[i] == "id"
		}
		return columns[i] < columns[j]
	})
	return columns
}
