package resource

import (
	"StoryBoxAdmin/services/admin-cli/internal/confirm"
)

// Policy определяет, когда новое значение флага попадает в коллекцию
type Policy int

const (
	// LocalOnly флаг существует только локально и меняется сразу
	LocalOnly Policy = iota
	// ServerConfirmed флаг меняется после успешного ответа сервера
	ServerConfirmed
)

func (p Policy) String() string {
	if p == ServerConfirmed {
		return "server-confirmed"
	}
	return "local-only"
}

// Flag булев атрибут записи, переключаемый отдельно
type Flag[T Record] struct {
	Name   string
	Policy Policy
	Get    func(T) bool
	Set    func(T, bool) T
	// Confirm, если задан, запрашивает подтверждение перед переключением
	Confirm func(record T, next bool) confirm.Prompt
	// Payload тело обновления для ServerConfirmed
	Payload func(record T, next bool) Fields

	EnabledMessage  string
	DisabledMessage string
	FailureMessage  string
}

func (f Flag[T]) successMessage(next bool) string {
	if next {
		return f.EnabledMessage
	}
	return f.DisabledMessage
}

// Messages сообщения по умолчанию для операций ресурса.
// Сообщения об ошибках используются, только если сервер не прислал своего.
type Messages struct {
	LoadFailed   string
	Created      string
	CreateFailed string
	Updated      string
	UpdateFailed string
	Deleted      string
	DeleteFailed string
}

// Definition описание ресурса для Controller
type Definition[T Record] struct {
	Name string
	// ListKeys ключи, под которыми сервис может вложить список
	ListKeys []string
	Decode   func(fields map[string]any) (T, error)
	// Validate проверяет поля формы до сетевого вызова
	Validate     func(fields Fields, updating bool) error
	Flags        []Flag[T]
	DeletePrompt func(T) confirm.Prompt
	Messages     Messages
}

func (d Definition[T]) flag(name string) (Flag[T], bool) {
	for _, f := range d.Flags {
		if f.Name == name {
			return f, true
		}
	}
	return Flag[T]{}, false
}

// FlagNames возвращает имена переключаемых флагов
func (d Definition[T]) FlagNames() []string {
	names := make([]string, len(d.Flags))
	for i, f := range d.Flags {
		names[i] = f.Name
	}
	return names
}

// deletePrompt стандартный запрос удаления
func deletePrompt(title, noun string) confirm.Prompt {
	return confirm.Prompt{
		Title:       title,
		Message:     "Are you sure you want to delete this " + noun + "? This action cannot be undone.",
		ConfirmText: "Delete",
		Kind:        "danger",
	}
}
