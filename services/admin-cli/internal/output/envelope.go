package output

import (
	"fmt"
	"io"
	"time"

	"StoryBoxAdmin/pkg/errors"
)

// Envelope JSON и YAML вывод с метаданными
type Envelope struct {
	Success   bool      `json:"success" yaml:"success"`
	Data      any       `json:"data,omitempty" yaml:"data,omitempty"`
	Message   string    `json:"message,omitempty" yaml:"message,omitempty"`
	Error     string    `json:"error,omitempty" yaml:"error,omitempty"`
	ErrorKind string    `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Metadata  *Metadata `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// Metadata содержит метаданные вывода
type Metadata struct {
	Command string `json:"command" yaml:"command"`
	Total   int    `json:"total,omitempty" yaml:"total,omitempty"`
}

// NewEnvelope создает вывод результата команды
func NewEnvelope(data any, err error) *Envelope {
	e := &Envelope{
		Success:   err == nil,
		Data:      data,
		Timestamp: time.Now(),
	}
	if err != nil {
		e.Error = errorMessage(err)
		e.ErrorKind = string(errors.CodeOf(err))
	}
	return e
}

// WithMetadata добавляет метаданные
func (e *Envelope) WithMetadata(command string, total int) *Envelope {
	e.Metadata = &Metadata{Command: command, Total: total}
	return e
}

// WithMessage добавляет сообщение сервиса
func (e *Envelope) WithMessage(message string) *Envelope {
	e.Message = message
	return e
}

func errorMessage(err error) string {
	var e *errors.Error
	if errors.As(err, &e) {
		return e.GetUserMessage()
	}
	return err.Error()
}

// Printer печатает результаты команд в выбранном формате
type Printer struct {
	out       io.Writer
	format    FormatType
	formatter Formatter
}

// NewPrinter создает Printer
func NewPrinter(out io.Writer, format FormatType, useColors bool) *Printer {
	return &Printer{
		out:       out,
		format:    format,
		formatter: GetFormatter(format, true, useColors),
	}
}

// Format возвращает выбранный формат
func (p *Printer) Format() FormatType {
	return p.format
}

// Print печатает данные. Для JSON и YAML данные заворачиваются в Envelope.
func (p *Printer) Print(command string, data any) error {
	payload := data
	if p.format != FormatTable {
		env := NewEnvelope(data, nil)
		if td, ok := data.(*TableData); ok {
			env.WithMetadata(command, len(td.Rows))
		} else {
			env.WithMetadata(command, 0)
		}
		payload = env
	}
	return p.write(payload)
}

// PrintMessage печатает короткое сообщение об успехе
func (p *Printer) PrintMessage(command, message string) error {
	if p.format == FormatTable {
		return p.write(message)
	}
	return p.write(NewEnvelope(nil, nil).WithMessage(message).WithMetadata(command, 0))
}

// PrintError печатает ошибку команды
func (p *Printer) PrintError(command string, err error) error {
	return p.write(NewEnvelope(nil, err).WithMetadata(command, 0))
}

func (p *Printer) write(payload any) error {
	text, err := p.formatter.Format(payload)
	if err != nil {
		return err
	}
	if text == "" {
		return nil
	}
	_, err = fmt.Fprintln(p.out, text)
	return err
}
