package auth

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"StoryBoxAdmin/pkg/errors"
	"StoryBoxAdmin/pkg/validation"
)

// ReadCredentials запрашивает email и пароль интерактивно.
// Уже известные значения не запрашиваются повторно.
func ReadCredentials(in io.Reader, out io.Writer, known Credentials) (Credentials, error) {
	reader := bufio.NewReader(in)
	creds := known

	if creds.Email == "" {
		fmt.Fprint(out, "Email: ")
		email, err := reader.ReadString('\n')
		if err != nil && email == "" {
			return Credentials{}, errors.Wrap(err, errors.ErrValidation, "ошибка чтения email")
		}
		creds.Email = strings.TrimSpace(email)
	}

	if err := validation.NewValidator().ValidateEmail(creds.Email); err != nil {
		return Credentials{}, err
	}

	if creds.Password == "" {
		fmt.Fprint(out, "Пароль: ")
		password, err := reader.ReadString('\n')
		if err != nil && password == "" {
			return Credentials{}, errors.Wrap(err, errors.ErrValidation, "ошибка чтения пароля")
		}
		creds.Password = strings.TrimSpace(password)
	}

	if creds.Password == "" {
		return Credentials{}, errors.New(errors.ErrValidation, "пароль не может быть пустым")
	}

	return creds, nil
}
