package output

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"
)

// Row запись, умеющая показать себя строкой таблицы
type Row interface {
	TableHeaders() []string
	TableCells() []string
}

// TableData представляет данные для табличного вывода
type TableData struct {
	Headers []string
	Rows    [][]string
	// Source исходные записи для JSON и YAML
	Source any
}

// NewTableData создает новые табличные данные
func NewTableData(headers []string) *TableData {
	return &TableData{
		Headers: headers,
		Rows:    make([][]string, 0),
	}
}

// AddRow добавляет строку
func (td *TableData) AddRow(cells ...string) {
	td.Rows = append(td.Rows, cells)
}

// Rows строит таблицу из коллекции записей
func Rows[T Row](items []T) *TableData {
	var zero T
	td := NewTableData(zero.TableHeaders())
	for _, item := range items {
		td.AddRow(item.TableCells()...)
	}
	if items == nil {
		items = []T{}
	}
	td.Source = items
	return td
}

// Record строит вертикальную таблицу поле-значение для одной записи
func Record(r Row) *TableData {
	td := NewTableData([]string{"FIELD", "VALUE"})
	headers, cells := r.TableHeaders(), r.TableCells()
	for i, h := range headers {
		value := ""
		if i < len(cells) {
			value = cells[i]
		}
		td.AddRow(h, value)
	}
	td.Source = r
	return td
}

// Map строит вертикальную таблицу из произвольного объекта, ключи по алфавиту
func Map(m map[string]any) *TableData {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	td := NewTableData([]string{"FIELD", "VALUE"})
	for _, k := range keys {
		td.AddRow(k, cellValue(m[k]))
	}
	td.Source = m
	return td
}

// Objects строит таблицу из списка объектов. Колонки берутся в указанном порядке.
func Objects(items []map[string]any, columns ...string) *TableData {
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = strings.ToUpper(c)
	}
	td := NewTableData(headers)
	for _, item := range items {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = cellValue(item[c])
		}
		td.AddRow(cells...)
	}
	if items == nil {
		items = []map[string]any{}
	}
	td.Source = items
	return td
}

func cellValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return fmt.Sprintf("%g", val)
	case []any:
		parts := make([]string, len(val))
		for i, p := range val {
			parts[i] = cellValue(p)
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", val)
	}
}

// String возвращает строковое представление таблицы
func (td *TableData) String() string {
	if len(td.Rows) == 0 {
		return "No data found"
	}

	var builder strings.Builder
	w := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)

	if len(td.Headers) > 0 {
		fmt.Fprintln(w, strings.Join(td.Headers, "\t"))
		separators := make([]string, len(td.Headers))
		for i := range separators {
			separators[i] = strings.Repeat("-", len(td.Headers[i]))
		}
		fmt.Fprintln(w, strings.Join(separators, "\t"))
	}

	for _, row := range td.Rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	w.Flush()
	return strings.TrimRight(builder.String(), "\n")
}
