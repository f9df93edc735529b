package auth

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Значения по умолчанию для записи пользователя
const (
	DefaultUserName = "Admin User"
	DefaultUserRole = "ADMIN"
)

// User запись текущего пользователя. Поля сервера, не вошедшие в основные, сохраняются в Extra.
type User struct {
	ID    string         `mapstructure:"id"`
	Email string         `mapstructure:"email"`
	Name  string         `mapstructure:"name"`
	Role  string         `mapstructure:"role"`
	Extra map[string]any `mapstructure:",remain"`
}

// Session аутентифицированная сессия
type Session struct {
	Token string
	User  User
}

// secretFields не попадают в сохраненную запись пользователя
var secretFields = []string{"token", "password"}

// decodeUser собирает User из произвольной карты. Числовые id приводятся к строке.
func decodeUser(fields map[string]any) (User, error) {
	var user User
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &user,
	})
	if err != nil {
		return User{}, err
	}
	if err := decoder.Decode(fields); err != nil {
		return User{}, fmt.Errorf("ошибка декодирования пользователя: %w", err)
	}
	for _, key := range secretFields {
		delete(user.Extra, key)
	}
	if len(user.Extra) == 0 {
		user.Extra = nil
	}
	return user, nil
}

// Map возвращает плоское представление пользователя
func (u User) Map() map[string]any {
	fields := make(map[string]any, len(u.Extra)+4)
	for k, v := range u.Extra {
		fields[k] = v
	}
	fields["id"] = u.ID
	fields["email"] = u.Email
	fields["name"] = u.Name
	fields["role"] = u.Role
	return fields
}

// MarshalJSON сохраняет пользователя одним плоским объектом
func (u User) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.Map())
}

// UnmarshalJSON требует JSON объект
func (u *User) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("user record is not an object")
	}
	decoded, err := decodeUser(fields)
	if err != nil {
		return err
	}
	*u = decoded
	return nil
}

// buildLoginUser собирает пользователя из ответа входа: значения по умолчанию,
// затем поля ответа. Пустые name и role заменяются значениями по умолчанию.
func buildLoginUser(data map[string]any, email string) (User, error) {
	fields := map[string]any{
		"email": email,
		"name":  DefaultUserName,
		"role":  DefaultUserRole,
	}
	for k, v := range data {
		if v == nil {
			continue
		}
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		fields[k] = v
	}
	return decodeUser(fields)
}
