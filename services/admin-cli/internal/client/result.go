package client

import (
	"bytes"
	"encoding/json"

	"StoryBoxAdmin/pkg/errors"
)

// Failure неуспешный результат операции
type Failure struct {
	Kind       errors.ErrorCode
	Message    string
	HTTPStatus int
	// Fallback отмечает, что Message взято из сообщений по умолчанию, а не от сервера
	Fallback bool
}

// Err преобразует Failure в *errors.Error
func (f *Failure) Err() *errors.Error {
	if f == nil {
		return nil
	}
	return errors.New(f.Kind, f.Message).WithStatus(f.HTTPStatus)
}

// Result нормализованный ответ сервиса. Ровно одно из двух: Failure == nil означает успех.
type Result struct {
	Data       json.RawMessage
	Message    string
	HTTPStatus int
	Failure    *Failure
}

// OK сообщает об успешном результате
func (r Result) OK() bool {
	return r.Failure == nil
}

// Err возвращает ошибку неуспешного результата или nil
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure.Err()
}

// Decode декодирует полезную нагрузку в v
func (r Result) Decode(v any) error {
	if !r.OK() {
		return r.Err()
	}
	if len(r.Data) == 0 {
		return errors.New(errors.ErrUnknown, "empty response payload")
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return errors.Wrap(err, errors.ErrUnknown, "unexpected response payload")
	}
	return nil
}

// conventionalListKeys ключи, под которыми сервис вкладывает списки
var conventionalListKeys = []string{"items", "data", "results"}

// List нормализует списочную полезную нагрузку. Порядок: голый массив,
// затем первый из keys с массивом, затем items, data, results. Иначе пустой список.
func (r Result) List(keys ...string) []json.RawMessage {
	empty := []json.RawMessage{}
	if !r.OK() || len(r.Data) == 0 {
		return empty
	}

	var arr []json.RawMessage
	if json.Unmarshal(r.Data, &arr) == nil {
		if arr == nil {
			return empty
		}
		return arr
	}

	var obj map[string]json.RawMessage
	if json.Unmarshal(r.Data, &obj) != nil {
		return empty
	}

	candidates := make([]string, 0, len(keys)+len(conventionalListKeys))
	candidates = append(candidates, keys...)
	candidates = append(candidates, conventionalListKeys...)
	for _, key := range candidates {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		var nested []json.RawMessage
		if json.Unmarshal(raw, &nested) == nil && nested != nil {
			return nested
		}
	}
	return empty
}

func success(status int, data json.RawMessage, message string) Result {
	return Result{Data: data, Message: message, HTTPStatus: status}
}

func failure(kind errors.ErrorCode, message string, status int) Result {
	f := &Failure{Kind: kind, Message: message, HTTPStatus: status}
	if f.Message == "" {
		f.Message = errors.UserMessage(kind)
		f.Fallback = true
	}
	return Result{Message: f.Message, HTTPStatus: status, Failure: f}
}

var payloadKeys = []string{"data", "result", "payload"}

// classify превращает полученный ответ в Result.
// Отсутствие поля success в ответе 2xx считается успехом.
func classify(status int, body []byte) Result {
	ok := status >= 200 && status < 300
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) == 0 {
		if ok {
			return success(status, nil, "")
		}
		return failure(errors.CodeFromStatus(status), "", status)
	}

	if !json.Valid(trimmed) {
		if ok {
			return failure(errors.ErrUnknown, "", status)
		}
		return failure(errors.CodeFromStatus(status), "", status)
	}

	if trimmed[0] != '{' {
		if ok {
			return success(status, json.RawMessage(trimmed), "")
		}
		return failure(errors.CodeFromStatus(status), "", status)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return failure(errors.ErrUnknown, "", status)
	}

	message := envelopeMessage(envelope)

	if !ok {
		return failure(errors.CodeFromStatus(status), message, status)
	}
	if rawSuccess, present := envelope["success"]; present {
		var flag bool
		if json.Unmarshal(rawSuccess, &flag) != nil || !flag {
			return failure(errors.CodeFromStatus(status), message, status)
		}
	}

	return success(status, envelopePayload(envelope, trimmed), message)
}

// envelopeMessage ищет сообщение в message, error (строка), error.message
func envelopeMessage(envelope map[string]json.RawMessage) string {
	var s string
	if raw, ok := envelope["message"]; ok && json.Unmarshal(raw, &s) == nil && s != "" {
		return s
	}
	if raw, ok := envelope["error"]; ok {
		if json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(raw, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
	}
	return ""
}

// envelopePayload берет первое из data, result, payload и разворачивает
// один уровень вложенного data. Объект без служебных полей целиком считается данными.
func envelopePayload(envelope map[string]json.RawMessage, whole []byte) json.RawMessage {
	for _, key := range payloadKeys {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil
		}
		var inner map[string]json.RawMessage
		if json.Unmarshal(raw, &inner) == nil && len(inner) == 1 {
			if nested, ok := inner["data"]; ok {
				return nested
			}
		}
		return raw
	}

	for _, key := range []string{"success", "message", "error"} {
		if _, ok := envelope[key]; ok {
			return nil
		}
	}
	return json.RawMessage(whole)
}
