package resource

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"

	"StoryBoxAdmin/pkg/errors"
	"StoryBoxAdmin/pkg/logger"
	"StoryBoxAdmin/services/admin-cli/internal/client"
	"StoryBoxAdmin/services/admin-cli/internal/confirm"
	"StoryBoxAdmin/services/admin-cli/internal/notify"
)

var (
	// ErrClosed контроллер закрыт, результат отброшен
	ErrClosed = stderrors.New("resource controller is closed")
	// ErrToggleInFlight переключение этого флага записи уже выполняется
	ErrToggleInFlight = stderrors.New("toggle already in flight")
	// ErrDeclined пользователь не подтвердил действие
	ErrDeclined = stderrors.New("action declined")
)

// Сообщения локальных отказов
const (
	RecordNotLoadedMessage = "Record not found. Reload the list and try again"
	UnknownFlagMessage     = "This setting cannot be changed"
	ToggleInFlightMessage  = "Update already in progress"
)

// Record запись ресурса со стабильным идентификатором
type Record interface {
	RecordID() string
}

// State состояние коллекции
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	default:
		return "idle"
	}
}

// Snapshot состояние контроллера вместе с последней ошибкой загрузки
type Snapshot struct {
	State     State
	LastError error
}

// Form состояние формы создания или редактирования
type Form struct {
	Open      bool
	EditingID string
	Values    Fields
}

type toggleKey struct {
	id   string
	flag string
}

// Controller управляет локальной коллекцией записей ресурса.
// Удаленный сервис остается источником истины: после создания и обновления
// коллекция перечитывается целиком.
type Controller[T Record] struct {
	def      Definition[T]
	backend  Backend
	gate     confirm.Requester
	notifier notify.Notifier
	logger   logger.Logger

	mu       sync.Mutex
	items    []T
	state    State
	lastErr  error
	form     Form
	query    client.Query
	closed   bool
	inFlight map[toggleKey]struct{}
}

// NewController создает контроллер ресурса
func NewController[T Record](def Definition[T], backend Backend, gate confirm.Requester, notifier notify.Notifier, log logger.Logger) *Controller[T] {
	if log == nil {
		log = logger.NewNop()
	}
	return &Controller[T]{
		def:      def,
		backend:  backend,
		gate:     gate,
		notifier: notifier,
		logger:   log.With(logger.String("resource", def.Name)),
		inFlight: make(map[toggleKey]struct{}),
	}
}

// Definition возвращает описание ресурса
func (c *Controller[T]) Definition() Definition[T] {
	return c.def
}

// Load перечитывает коллекцию. При ошибке прежние записи сохраняются.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.state = StateLoading
	query := c.query
	c.mu.Unlock()

	result := c.backend.List(ctx, query)

	var items []T
	if result.OK() {
		items = c.decodeList(result)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.logger.Debug("результат загрузки отброшен: контроллер закрыт")
		return ErrClosed
	}
	c.state = StateReady
	if !result.OK() {
		err := result.Err()
		c.lastErr = err
		c.mu.Unlock()
		c.logger.Warn("ошибка загрузки коллекции", logger.Error(err))
		c.notifyFailure(result, c.def.Messages.LoadFailed)
		return err
	}
	c.items = items
	c.lastErr = nil
	c.mu.Unlock()

	c.logger.Debug("коллекция загружена", logger.Int("count", len(items)))
	return nil
}

// Create создает запись и перечитывает коллекцию. Локальная запись из полей формы не создается.
func (c *Controller[T]) Create(ctx context.Context, fields Fields) error {
	return c.submit(ctx, "", fields)
}

// Update обновляет запись и перечитывает коллекцию
func (c *Controller[T]) Update(ctx context.Context, id string, fields Fields) error {
	return c.submit(ctx, id, fields)
}

func (c *Controller[T]) submit(ctx context.Context, id string, fields Fields) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.form = Form{Open: true, EditingID: id, Values: fields.clone()}
	c.mu.Unlock()

	updating := id != ""
	failed, succeeded := c.def.Messages.CreateFailed, c.def.Messages.Created
	if updating {
		failed, succeeded = c.def.Messages.UpdateFailed, c.def.Messages.Updated
	}

	if c.def.Validate != nil {
		if err := c.def.Validate(fields, updating); err != nil {
			c.notify(notify.KindError, validationMessage(err))
			return err
		}
	}

	var result client.Result
	if updating {
		result = c.backend.Update(ctx, id, fields)
	} else {
		result = c.backend.Create(ctx, fields)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if !result.OK() {
		c.mu.Unlock()
		c.logger.Warn("ошибка сохранения записи",
			logger.String("id", id),
			logger.String("error_kind", string(result.Failure.Kind)))
		c.notifyFailure(result, failed)
		return result.Err()
	}
	c.form = Form{}
	c.mu.Unlock()

	c.notify(notify.KindSuccess, succeeded)

	// Ошибка перечитывания уже показана пользователю, сама запись сохранена
	if err := c.Load(ctx); err != nil && !stderrors.Is(err, ErrClosed) {
		c.logger.Warn("коллекция не перечитана после сохранения", logger.Error(err))
	}
	return nil
}

// Remove удаляет запись после подтверждения. При отказе сетевой вызов не выполняется.
func (c *Controller[T]) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	record, ok := c.lookup(id)
	c.mu.Unlock()
	if !ok {
		c.notify(notify.KindError, RecordNotLoadedMessage)
		return errors.New(errors.ErrNotFound, "record "+id+" is not loaded")
	}

	if !c.gate.Request(ctx, c.def.DeletePrompt(record)) {
		c.logger.Debug("удаление отменено пользователем", logger.String("id", id))
		return ErrDeclined
	}

	result := c.backend.Delete(ctx, id)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if !result.OK() {
		c.mu.Unlock()
		c.notifyFailure(result, c.def.Messages.DeleteFailed)
		return result.Err()
	}
	if i := c.indexOf(id); i >= 0 {
		c.items = append(c.items[:i:i], c.items[i+1:]...)
	}
	c.mu.Unlock()

	c.notify(notify.KindSuccess, c.def.Messages.Deleted)
	return nil
}

// ToggleFlag инвертирует флаг записи согласно политике флага.
// LocalOnly меняет значение сразу и без сети. ServerConfirmed меняет значение
// только после подтверждения сервера, поэтому при ошибке локальное значение прежнее.
func (c *Controller[T]) ToggleFlag(ctx context.Context, id, flagName string) error {
	flag, ok := c.def.flag(flagName)
	if !ok {
		c.notify(notify.KindError, UnknownFlagMessage)
		return errors.New(errors.ErrValidation, "unknown flag "+flagName)
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	record, ok := c.lookup(id)
	if !ok {
		c.mu.Unlock()
		c.notify(notify.KindError, RecordNotLoadedMessage)
		return errors.New(errors.ErrNotFound, "record "+id+" is not loaded")
	}
	next := !flag.Get(record)

	if flag.Policy == LocalOnly {
		c.items[c.indexOf(id)] = flag.Set(record, next)
		c.mu.Unlock()
		c.notify(notify.KindSuccess, flag.successMessage(next))
		return nil
	}

	key := toggleKey{id: id, flag: flag.Name}
	if _, busy := c.inFlight[key]; busy {
		c.mu.Unlock()
		c.notify(notify.KindError, ToggleInFlightMessage)
		return ErrToggleInFlight
	}
	c.inFlight[key] = struct{}{}
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.inFlight, key)
		c.mu.Unlock()
	}()

	if flag.Confirm != nil {
		if !c.gate.Request(ctx, flag.Confirm(record, next)) {
			return ErrDeclined
		}
	}

	result := c.backend.Update(ctx, id, flag.Payload(record, next))

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if !result.OK() {
		c.mu.Unlock()
		c.notifyFailure(result, flag.FailureMessage)
		return result.Err()
	}
	// Коллекцию могли перечитать, пока шел запрос
	if i := c.indexOf(id); i >= 0 {
		c.items[i] = flag.Set(c.items[i], next)
	}
	c.mu.Unlock()

	c.notify(notify.KindSuccess, flag.successMessage(next))
	return nil
}

// Items возвращает копию коллекции
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return items
}

// Get возвращает запись коллекции по id
func (c *Controller[T]) Get(id string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookup(id)
}

// State возвращает состояние коллекции
func (c *Controller[T]) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{State: c.state, LastError: c.lastErr}
}

// Form возвращает состояние формы
func (c *Controller[T]) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Form{Open: c.form.Open, EditingID: c.form.EditingID, Values: c.form.Values.clone()}
}

// SetQuery задает параметры запроса списка для следующих Load
func (c *Controller[T]) SetQuery(query client.Query) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = append(client.Query(nil), query...)
}

// Close закрывает контроллер. Результаты запросов, завершившихся позже, отбрасываются.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *Controller[T]) decodeList(result client.Result) []T {
	raw := result.List(c.def.ListKeys...)
	items := make([]T, 0, len(raw))
	for _, r := range raw {
		var fields map[string]any
		if err := json.Unmarshal(r, &fields); err != nil || fields == nil {
			c.logger.Warn("запись пропущена: не объект")
			continue
		}
		item, err := c.def.Decode(fields)
		if err != nil {
			c.logger.Warn("запись пропущена: ошибка декодирования", logger.Error(err))
			continue
		}
		items = append(items, item)
	}
	return items
}

// lookup вызывается под mu
func (c *Controller[T]) lookup(id string) (T, bool) {
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// indexOf вызывается под mu
func (c *Controller[T]) indexOf(id string) int {
	for i, item := range c.items {
		if item.RecordID() == id {
			return i
		}
	}
	return -1
}

// notifyFailure показывает сообщение сервера, а если его нет, сообщение операции
func (c *Controller[T]) notifyFailure(result client.Result, fallback string) {
	message := result.Failure.Message
	if result.Failure.Fallback && fallback != "" {
		message = fallback
	}
	c.notify(notify.KindError, message)
}

func validationMessage(err error) string {
	var e *errors.Error
	if errors.As(err, &e) {
		return e.GetUserMessage()
	}
	return err.Error()
}

func (c *Controller[T]) notify(kind notify.Kind, text string) {
	if c.notifier == nil || text == "" {
		return
	}
	c.notifier.Push(kind, text)
}
