package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"strings"
)

// QueryParam пара ключ-значение строки запроса
type QueryParam struct {
	Key   string
	Value string
}

// Query упорядоченный список параметров. Кодирование сохраняет порядок добавления.
type Query []QueryParam

// Add возвращает новый Query с добавленным параметром
func (q Query) Add(key, value string) Query {
	return append(q, QueryParam{Key: key, Value: value})
}

// Encode кодирует параметры в порядке добавления
func (q Query) Encode() string {
	if len(q) == 0 {
		return ""
	}
	parts := make([]string, 0, len(q))
	for _, p := range q {
		parts = append(parts, url.QueryEscape(p.Key)+"="+url.QueryEscape(p.Value))
	}
	return strings.Join(parts, "&")
}

// FilePayload файл для multipart запроса
type FilePayload struct {
	// FieldName имя поля формы, по умолчанию "file"
	FieldName   string
	FileName    string
	ContentType string
	Content     io.Reader
	// Fields дополнительные текстовые поля формы
	Fields Query
}

// Request параметры вызова операции
type Request struct {
	PathParams map[string]string
	Query      Query
	Body       any
	File       *FilePayload
}

// checkShape проверяет, что форма запроса совпадает с формой тела эндпоинта
func (r Request) checkShape(kind BodyKind) error {
	switch kind {
	case BodyNone:
		if r.Body != nil || r.File != nil {
			return fmt.Errorf("operation does not accept a request body")
		}
	case BodyJSON:
		if r.File != nil {
			return fmt.Errorf("operation expects structured data, got a file payload")
		}
	case BodyMultipart:
		if r.File == nil || r.File.Content == nil {
			return fmt.Errorf("operation expects a file payload")
		}
		if r.Body != nil {
			return fmt.Errorf("operation expects a file payload, got structured data")
		}
	}
	return nil
}

// encodeBody возвращает тело и Content-Type запроса
func (r Request) encodeBody(kind BodyKind) (io.Reader, string, error) {
	switch kind {
	case BodyJSON:
		if r.Body == nil {
			return nil, "", nil
		}
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, "", fmt.Errorf("ошибка кодирования запроса: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	case BodyMultipart:
		return encodeMultipart(r.File)
	default:
		return nil, "", nil
	}
}

func encodeMultipart(file *FilePayload) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, field := range file.Fields {
		if err := writer.WriteField(field.Key, field.Value); err != nil {
			return nil, "", fmt.Errorf("ошибка записи поля формы: %w", err)
		}
	}

	fieldName := file.FieldName
	if fieldName == "" {
		fieldName = "file"
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		escapeQuotes(fieldName), escapeQuotes(file.FileName)))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("ошибка создания части формы: %w", err)
	}
	if _, err := io.Copy(part, file.Content); err != nil {
		return nil, "", fmt.Errorf("ошибка чтения файла: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("ошибка завершения формы: %w", err)
	}

	return &buf, writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func escapePathSegment(s string) string {
	return url.PathEscape(s)
}
