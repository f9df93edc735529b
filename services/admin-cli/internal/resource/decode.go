package resource

import (
	"fmt"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/mitchellh/mapstructure"
)

// displayDateLayout формат дат в таблицах (dd/mm/yyyy)
const displayDateLayout = "02/01/2006"

var inputDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// now подменяется в тестах
var now = time.Now

// decodeWire раскладывает поля ответа в структуру по тегам mapstructure.
// Числа и строки приводятся друг к другу.
func decodeWire(fields map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(fields); err != nil {
		return fmt.Errorf("ошибка декодирования записи: %w", err)
	}
	return nil
}

// recordID приводит идентификатор из JSON к строке
func recordID(v any) string {
	switch id := v.(type) {
	case nil:
		return ""
	case string:
		return id
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case int:
		return strconv.Itoa(id)
	default:
		return fmt.Sprint(id)
	}
}

// prefixedID строит отображаемый идентификатор из первых шести символов id
func prefixedID(prefix, id string) string {
	if utf8.RuneCountInString(id) > 6 {
		id = string([]rune(id)[:6])
	}
	return prefix + id
}

// formatDate переводит дату сервиса в dd/mm/yyyy. Неразобранное значение возвращается как есть.
func formatDate(raw string) string {
	if raw == "" {
		return ""
	}
	for _, layout := range inputDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(displayDateLayout)
		}
	}
	return raw
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// notFalse истинно для отсутствующего значения
func notFalse(values ...*bool) bool {
	for _, v := range values {
		if v != nil && !*v {
			return false
		}
	}
	return true
}

func isTrue(v *bool) bool {
	return v != nil && *v
}
