package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"StoryBoxAdmin/pkg/errors"
)

func TestValidateRequiredFields(t *testing.T) {
	v := NewValidator()
	required := map[string]string{"name": "Name", "email": "Email"}

	assert.NoError(t, v.ValidateRequiredFields(map[string]any{"name": "Ann", "email": "a@b.c"}, required))

	err := v.ValidateRequiredFields(map[string]any{"name": "  ", "email": "a@b.c"}, required)
	assert.Error(t, err)
	assert.Equal(t, errors.ErrValidation, errors.CodeOf(err))

	assert.Error(t, v.ValidateRequiredFields(map[string]any{"name": "Ann"}, required))
	assert.Error(t, v.ValidateRequiredFields(map[string]any{"name": "Ann", "email": nil}, required))
}

func TestValidateURL(t *testing.T) {
	v := NewValidator()
	schemes := []string{"http", "https"}

	assert.NoError(t, v.ValidateURL("https://example.com/api/v1", schemes))
	assert.Error(t, v.ValidateURL("", schemes))
	assert.Error(t, v.ValidateURL("ftp://example.com", schemes))
	assert.Error(t, v.ValidateURL("https://", schemes))
	assert.Error(t, v.ValidateURL("https://exa mple.com", schemes))
}

func TestValidateEmail(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateEmail("admin@storybox.com"))
	assert.Error(t, v.ValidateEmail(""))
	assert.Error(t, v.ValidateEmail("admin"))
	assert.Error(t, v.ValidateEmail("Admin <admin@storybox.com>"))
}

func TestValidateEnum(t *testing.T) {
	v := NewValidator()
	allowed := []string{"table", "json", "yaml"}

	assert.NoError(t, v.ValidateEnum("json", allowed, "format"))
	assert.Error(t, v.ValidateEnum("", allowed, "format"))
	assert.Error(t, v.ValidateEnum("xml", allowed, "format"))
}

func TestValidateStringLength(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateStringLength("пароль", "password", 6, 0))
	assert.Error(t, v.ValidateStringLength("abc", "password", 6, 0))
	assert.Error(t, v.ValidateStringLength("abcdefgh", "code", 1, 4))
}

func TestValidatePasswordChange(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidatePasswordChange("old-secret", "new-secret", "new-secret"))
	assert.Error(t, v.ValidatePasswordChange("", "new-secret", "new-secret"))
	assert.Error(t, v.ValidatePasswordChange("old-secret", "short", "short"))
	assert.Error(t, v.ValidatePasswordChange("old-secret", "new-secret", "other-secret"))
	assert.Error(t, v.ValidatePasswordChange("same-secret", "same-secret", "same-secret"))
}
