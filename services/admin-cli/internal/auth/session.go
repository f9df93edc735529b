package auth

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"StoryBoxAdmin/pkg/errors"
	"StoryBoxAdmin/pkg/logger"
	"StoryBoxAdmin/pkg/validation"
	"StoryBoxAdmin/services/admin-cli/internal/client"
	"StoryBoxAdmin/services/admin-cli/internal/store"
)

// LoginFailedMessage сообщение, когда сервер не объяснил причину отказа
const LoginFailedMessage = "Не удалось войти"

// Демонстрационная учетная запись
const (
	DemoEmail    = "demo@admin.com"
	DemoPassword = "demo123"
)

// Credentials учетные данные для входа
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionManager единственный владелец сессии: вход, выход, восстановление.
// Вход и выход сериализованы между собой.
type SessionManager struct {
	store     store.TokenStore
	api       client.Dispatcher
	logger    logger.Logger
	validator *validation.Validator

	lifecycle sync.Mutex
	current   atomic.Pointer[Session]
}

// NewSessionManager создает менеджер сессии
func NewSessionManager(tokenStore store.TokenStore, api client.Dispatcher, log logger.Logger) *SessionManager {
	if log == nil {
		log = logger.NewNop()
	}
	return &SessionManager{
		store:     tokenStore,
		api:       api,
		logger:    log,
		validator: validation.NewValidator(),
	}
}

// Current возвращает копию текущей сессии или nil
func (m *SessionManager) Current() *Session {
	s := m.current.Load()
	if s == nil {
		return nil
	}
	cp := *s
	cp.User.Extra = copyMap(s.User.Extra)
	return &cp
}

// Token возвращает токен текущей сессии или пустую строку
func (m *SessionManager) Token() string {
	if s := m.current.Load(); s != nil {
		return s.Token
	}
	return ""
}

// Restore восстанавливает сессию из хранилища. Поврежденные или неполные
// данные считаются отсутствием сессии и удаляются.
func (m *SessionManager) Restore(ctx context.Context) (*Session, bool) {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	token, rawUser, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn("ошибка чтения сохраненной сессии, сессия сброшена", logger.Error(err))
		m.discardLocked(ctx)
		return nil, false
	}

	if token == "" && len(rawUser) == 0 {
		m.current.Store(nil)
		return nil, false
	}
	if token == "" || len(rawUser) == 0 {
		m.logger.Warn("неполная сохраненная сессия, сессия сброшена",
			logger.Bool("has_token", token != ""),
			logger.Bool("has_user", len(rawUser) > 0))
		m.discardLocked(ctx)
		return nil, false
	}

	var user User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		m.logger.Warn("поврежденная запись пользователя, сессия сброшена", logger.Error(err))
		m.discardLocked(ctx)
		return nil, false
	}

	session := &Session{Token: token, User: user}
	m.current.Store(session)
	m.logger.Debug("сессия восстановлена", logger.String("user_id", user.ID))
	return m.Current(), true
}

// Login выполняет вход. При ошибке ничего не сохраняется.
func (m *SessionManager) Login(ctx context.Context, creds Credentials) (*Session, error) {
	if err := m.validator.ValidateEmail(creds.Email); err != nil {
		return nil, err
	}
	if creds.Password == "" {
		return nil, errors.New(errors.ErrValidation, "password is required")
	}

	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.logger.Info("попытка входа пользователя", logger.String("email", creds.Email))

	result := m.api.Dispatch(ctx, client.OpAuthLogin, client.Request{Body: creds})
	if !result.OK() {
		message := result.Failure.Message
		if result.Failure.Fallback {
			message = LoginFailedMessage
		}
		m.logger.Warn("неудачная попытка входа",
			logger.String("email", creds.Email),
			logger.String("error_kind", string(result.Failure.Kind)))
		return nil, errors.New(result.Failure.Kind, message).WithStatus(result.Failure.HTTPStatus)
	}

	var data map[string]any
	if len(result.Data) > 0 {
		if err := json.Unmarshal(result.Data, &data); err != nil {
			data = nil
		}
	}
	token, _ := data["token"].(string)
	if token == "" {
		message := result.Message
		if message == "" {
			message = LoginFailedMessage
		}
		m.logger.Warn("ответ входа не содержит токена", logger.String("email", creds.Email))
		return nil, errors.New(errors.ErrUnknown, message)
	}

	user, err := buildLoginUser(data, creds.Email)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrUnknown, LoginFailedMessage)
	}

	if err := m.persist(ctx, token, user); err != nil {
		return nil, err
	}

	m.current.Store(&Session{Token: token, User: user})
	m.logger.Info("вход выполнен успешно",
		logger.String("user_id", user.ID),
		logger.String("role", user.Role))
	return m.Current(), nil
}

// DemoLogin входит под демонстрационной учетной записью
func (m *SessionManager) DemoLogin(ctx context.Context) (*Session, error) {
	return m.Login(ctx, Credentials{Email: DemoEmail, Password: DemoPassword})
}

// Logout очищает хранилище, затем сессию в памяти
func (m *SessionManager) Logout(ctx context.Context) error {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	err := m.store.Clear(ctx)
	m.current.Store(nil)
	if err != nil {
		m.logger.Error("ошибка удаления сессии", logger.Error(err))
		return errors.Wrap(err, errors.ErrInternal, "ошибка удаления сессии")
	}
	m.logger.Info("выход выполнен успешно")
	return nil
}

// Expire завершает сессию после ответа Unauthorized на операцию op
func (m *SessionManager) Expire(ctx context.Context, op client.Operation) {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	if m.current.Load() == nil {
		return
	}
	m.logger.Warn("сессия истекла, требуется повторный вход", logger.String("operation", string(op)))
	m.discardLocked(ctx)
}

// UpdateUser объединяет patch с текущим пользователем и сохраняет результат.
// Без активной сессии ничего не делает.
func (m *SessionManager) UpdateUser(ctx context.Context, patch map[string]any) error {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	current := m.current.Load()
	if current == nil {
		return nil
	}

	fields := current.User.Map()
	for k, v := range patch {
		fields[k] = v
	}
	user, err := decodeUser(fields)
	if err != nil {
		return errors.Wrap(err, errors.ErrValidation, "некорректные данные пользователя")
	}

	if err := m.persist(ctx, current.Token, user); err != nil {
		return err
	}
	m.current.Store(&Session{Token: current.Token, User: user})
	return nil
}

// ForgetPassword запрашивает письмо для сброса пароля
func (m *SessionManager) ForgetPassword(ctx context.Context, email string) (string, error) {
	if err := m.validator.ValidateEmail(email); err != nil {
		return "", err
	}
	result := m.api.Dispatch(ctx, client.OpAuthForgetPassword, client.Request{
		Body: map[string]string{"email": email},
	})
	if err := result.Err(); err != nil {
		return "", err
	}
	return result.Message, nil
}

// ResetPassword устанавливает новый пароль по коду из письма
func (m *SessionManager) ResetPassword(ctx context.Context, payload map[string]any) (string, error) {
	result := m.api.Dispatch(ctx, client.OpAuthResetPassword, client.Request{Body: payload})
	if err := result.Err(); err != nil {
		return "", err
	}
	return result.Message, nil
}

func (m *SessionManager) persist(ctx context.Context, token string, user User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "ошибка сериализации пользователя")
	}
	if err := m.store.Save(ctx, token, data); err != nil {
		m.logger.Error("ошибка сохранения сессии", logger.Error(err))
		return errors.Wrap(err, errors.ErrInternal, "ошибка сохранения сессии")
	}
	return nil
}

// discardLocked сбрасывает сессию; вызывается под lifecycle
func (m *SessionManager) discardLocked(ctx context.Context) {
	m.current.Store(nil)
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("ошибка удаления сессии", logger.Error(err))
	}
}

func copyMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
