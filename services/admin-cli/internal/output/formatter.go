package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"gopkg.in/yaml.v2"
)

// FormatType представляет тип форматирования вывода
type FormatType string

const (
	FormatTable FormatType = "table"
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
)

// ParseFormat разбирает название формата
func ParseFormat(s string) (FormatType, error) {
	switch FormatType(strings.ToLower(strings.TrimSpace(s))) {
	case FormatTable, "":
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (table, json, yaml)", s)
	}
}

// Formatter интерфейс для форматирования вывода
type Formatter interface {
	Format(data any) (string, error)
}

// TableFormatter форматирует данные в виде таблицы
type TableFormatter struct{}

func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

func (f *TableFormatter) Format(data any) (string, error) {
	switch v := data.(type) {
	case *TableData:
		return v.String(), nil
	case Row:
		return Record(v).String(), nil
	case map[string]any:
		return Map(v).String(), nil
	case *Envelope:
		if v.Error != "" {
			return "Error: " + v.Error, nil
		}
		if v.Data == nil {
			return v.Message, nil
		}
		return f.Format(v.Data)
	case string:
		return v, nil
	case nil:
		return "", nil
	default:
		return fmt.Sprintf("%v", v), nil
	}
}

// JSONFormatter форматирует данные в JSON
type JSONFormatter struct {
	Pretty bool
}

func NewJSONFormatter(pretty bool) *JSONFormatter {
	return &JSONFormatter{Pretty: pretty}
}

func (f *JSONFormatter) Format(data any) (string, error) {
	var output []byte
	var err error

	if f.Pretty {
		output, err = json.MarshalIndent(plain(data), "", "  ")
	} else {
		output, err = json.Marshal(plain(data))
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}

	return string(output), nil
}

// YAMLFormatter форматирует данные в YAML
type YAMLFormatter struct{}

func NewYAMLFormatter() *YAMLFormatter {
	return &YAMLFormatter{}
}

func (f *YAMLFormatter) Format(data any) (string, error) {
	output, err := yaml.Marshal(plain(data))
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	return string(output), nil
}

// plain заменяет табличное представление исходными записями
func plain(data any) any {
	switch v := data.(type) {
	case *TableData:
		return v.Source
	case *Envelope:
		cp := *v
		cp.Data = plain(v.Data)
		return &cp
	default:
		return data
	}
}

// ColorFormatter добавляет цветовое форматирование таблиц
type ColorFormatter struct {
	Formatter Formatter
	UseColors bool
}

func NewColorFormatter(formatter Formatter, useColors bool) *ColorFormatter {
	return &ColorFormatter{
		Formatter: formatter,
		UseColors: useColors,
	}
}

func (f *ColorFormatter) Format(data any) (string, error) {
	output, err := f.Formatter.Format(data)
	if err != nil {
		return "", err
	}

	if !f.UseColors {
		return output, nil
	}
	_, isTable := data.(*TableData)
	return f.applyColors(output, isTable), nil
}

func (f *ColorFormatter) applyColors(output string, header bool) string {
	lines := strings.Split(output, "\n")
	result := make([]string, 0, len(lines))

	for i, line := range lines {
		switch {
		case line == "":
			result = append(result, line)
		case header && i == 0:
			// Заголовок - синий цвет
			result = append(result, fmt.Sprintf("\033[1;34m%s\033[0m", line))
		case header && i == 1:
			// Разделитель - серый цвет
			result = append(result, fmt.Sprintf("\033[1;90m%s\033[0m", line))
		case strings.HasPrefix(line, "Error"):
			result = append(result, fmt.Sprintf("\033[1;31m%s\033[0m", line))
		default:
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// GetFormatter возвращает подходящий форматировщик
func GetFormatter(format FormatType, pretty bool, useColors bool) Formatter {
	var baseFormatter Formatter

	switch format {
	case FormatJSON:
		baseFormatter = NewJSONFormatter(pretty)
	case FormatYAML:
		baseFormatter = NewYAMLFormatter()
	default:
		baseFormatter = NewTableFormatter()
	}

	if useColors && format == FormatTable {
		return NewColorFormatter(baseFormatter, useColors)
	}

	return baseFormatter
}

// DetectColors определяет нужно ли использовать цвета.
// STORYBOX_COLORS перекрывает проверку терминала.
func DetectColors(w io.Writer) bool {
	if colors := os.Getenv("STORYBOX_COLORS"); colors != "" {
		return strings.ToLower(colors) == "true"
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
