package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// TokenStore хранит токен сессии и сериализованную запись пользователя.
// Токен и пользователь сохраняются и удаляются вместе.
type TokenStore interface {
	// Load возвращает пустые значения без ошибки, если ничего не сохранено
	Load(ctx context.Context) (token string, user []byte, err error)
	Save(ctx context.Context, token string, user []byte) error
	Clear(ctx context.Context) error
	Close() error
}

// sessionFile формат файла сессии. Пользователь хранится строкой, чтобы
// поврежденная запись доходила до восстановления сессии как есть.
type sessionFile struct {
	Token string `json:"token"`
	User  string `json:"user"`
}

// FileTokenStore хранит сессию в одном файле session.json
type FileTokenStore struct {
	mu   sync.Mutex
	path string
}

// NewFileTokenStore создает файловое хранилище в каталоге dir.
// Каталог создается с правами 0700.
func NewFileTokenStore(dir string) (*FileTokenStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("не указан каталог хранилища сессии")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("ошибка создания директории %s: %w", dir, err)
	}
	return &FileTokenStore{path: filepath.Join(dir, "session.json")}, nil
}

// Path возвращает путь к файлу сессии
func (s *FileTokenStore) Path() string {
	return s.path
}

// Load читает файл сессии
func (s *FileTokenStore) Load(ctx context.Context) (string, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, nil
		}
		return "", nil, fmt.Errorf("ошибка чтения файла сессии: %w", err)
	}

	var doc sessionFile
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", nil, fmt.Errorf("ошибка десериализации файла сессии: %w", err)
	}

	var user []byte
	if doc.User != "" {
		user = []byte(doc.User)
	}
	return doc.Token, user, nil
}

// Save записывает токен и пользователя во временный файл и атомарно переименовывает его
func (s *FileTokenStore) Save(ctx context.Context, token string, user []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(sessionFile{Token: token, User: string(user)}, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации сессии: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".session-*.json")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("ошибка установки прав файла сессии: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("ошибка записи файла сессии: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ошибка записи файла сессии: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ошибка сохранения файла сессии: %w", err)
	}
	return nil
}

// Clear удаляет файл сессии одним вызовом
func (s *FileTokenStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("ошибка удаления файла сессии: %w", err)
	}
	return nil
}

// Close ничего не делает для файлового хранилища
func (s *FileTokenStore) Close() error {
	return nil
}

// MemoryTokenStore хранит сессию в памяти процесса
type MemoryTokenStore struct {
	mu    sync.RWMutex
	token string
	user  []byte
}

// NewMemoryTokenStore создает пустое хранилище в памяти
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{}
}

func (s *MemoryTokenStore) Load(ctx context.Context) (string, []byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, append([]byte(nil), s.user...), nil
}

func (s *MemoryTokenStore) Save(ctx context.Context, token string, user []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = append([]byte(nil), user...)
	return nil
}

func (s *MemoryTokenStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	return nil
}

func (s *MemoryTokenStore) Close() error {
	return nil
}
