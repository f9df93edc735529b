package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StoryBoxAdmin/pkg/errors"
	"StoryBoxAdmin/services/admin-cli/internal/client"
	"StoryBoxAdmin/services/admin-cli/internal/store"
)

// newTestManager поднимает сервер с обработчиком входа и связывает клиент с менеджером
func newTestManager(t *testing.T, tokenStore store.TokenStore, handler http.HandlerFunc) (*SessionManager, *client.APIClient) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	api, err := client.NewAPIClient(client.Options{BaseURL: server.URL + "/api/v1"})
	require.NoError(t, err)

	manager := NewSessionManager(tokenStore, api, nil)
	api.BindSession(manager)
	return manager, api
}

func loginHandler(body string, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func TestLogin_ThenRestore(t *testing.T) {
	ctx := context.Background()
	tokenStore, err := store.NewFileTokenStore(t.TempDir())
	require.NoError(t, err)

	manager, _ := newTestManager(t, tokenStore, loginHandler(
		`{"success":true,"data":{"token":"tok-1","id":42,"name":"Jane","role":"EDITOR","department":"Content"}}`,
		http.StatusOK))

	session, err := manager.Login(ctx, Credentials{Email: "jane@storybox.com", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", session.Token)
	assert.Equal(t, "42", session.User.ID)
	assert.Equal(t, "Jane", session.User.Name)
	assert.Equal(t, "EDITOR", session.User.Role)
	assert.Equal(t, "jane@storybox.com", session.User.Email)
	assert.Equal(t, "Content", session.User.Extra["department"])
	assert.NotContains(t, session.User.Extra, "token")

	// Новый процесс с тем же хранилищем
	reloaded := NewSessionManager(tokenStore, nil, nil)
	restored, ok := reloaded.Restore(ctx)
	require.True(t, ok)
	assert.Equal(t, session.Token, restored.Token)
	assert.Equal(t, session.User.ID, restored.User.ID)
	assert.Equal(t, session.User.Name, restored.User.Name)
	assert.Equal(t, "tok-1", reloaded.Token())
}

func TestLogin_Fallbacks(t *testing.T) {
	manager, _ := newTestManager(t, store.NewMemoryTokenStore(), loginHandler(
		`{"success":true,"data":{"token":"tok","id":"u1","name":""}}`, http.StatusOK))

	session, err := manager.Login(context.Background(), Credentials{Email: "admin@storybox.com", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, DefaultUserName, session.User.Name)
	assert.Equal(t, DefaultUserRole, session.User.Role)
	assert.Equal(t, "admin@storybox.com", session.User.Email)
}

func TestLogin_ServerEmailWins(t *testing.T) {
	manager, _ := newTestManager(t, store.NewMemoryTokenStore(), loginHandler(
		`{"success":true,"data":{"token":"tok","id":"u1","email":"canonical@storybox.com"}}`, http.StatusOK))

	session, err := manager.Login(context.Background(), Credentials{Email: "Alias@storybox.com", Password: "p"})
	require.NoError(t, err)
	assert.Equal(t, "canonical@storybox.com", session.User.Email)
}

func TestLogin_FailureNothingPersisted(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		status  int
		message string
		kind    errors.ErrorCode
	}{
		{"server message", `{"success":false,"message":"Invalid credentials"}`, http.StatusUnauthorized, "Invalid credentials", errors.ErrUnauthorized},
		{"no message", `{"success":false}`, http.StatusUnauthorized, LoginFailedMessage, errors.ErrUnauthorized},
		{"success without token", `{"success":true,"data":{"id":"u1"}}`, http.StatusOK, LoginFailedMessage, errors.ErrUnknown},
		{"success without token with message", `{"success":true,"message":"Account locked","data":{}}`, http.StatusOK, "Account locked", errors.ErrUnknown},
		{"server error", `oops`, http.StatusInternalServerError, LoginFailedMessage, errors.ErrServer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			tokenStore := store.NewMemoryTokenStore()
			manager, _ := newTestManager(t, tokenStore, loginHandler(tt.body, tt.status))

			session, err := manager.Login(ctx, Credentials{Email: "a@storybox.com", Password: "bad"})
			require.Error(t, err)
			assert.Nil(t, session)
			assert.Equal(t, tt.message, err.Error())
			assert.Equal(t, tt.kind, errors.CodeOf(err))

			token, user, _ := tokenStore.Load(ctx)
			assert.Empty(t, token)
			assert.Nil(t, user)

			_, ok := NewSessionManager(tokenStore, nil, nil).Restore(ctx)
			assert.False(t, ok)
			assert.Nil(t, manager.Current())
		})
	}
}

func TestLogin_LocalValidation(t *testing.T) {
	calls := 0
	manager, _ := newTestManager(t, store.NewMemoryTokenStore(), func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	_, err := manager.Login(context.Background(), Credentials{Email: "not-an-email", Password: "p"})
	assert.Equal(t, errors.ErrValidation, errors.CodeOf(err))

	_, err = manager.Login(context.Background(), Credentials{Email: "a@storybox.com"})
	assert.Equal(t, errors.ErrValidation, errors.CodeOf(err))

	assert.Zero(t, calls)
}

func TestDemoLogin(t *testing.T) {
	var got Credentials
	manager, _ := newTestManager(t, store.NewMemoryTokenStore(), func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"success":true,"data":{"token":"demo-token","id":"d1"}}`))
	})

	session, err := manager.DemoLogin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DemoEmail, got.Email)
	assert.Equal(t, DemoPassword, got.Password)
	assert.Equal(t, "demo-token", session.Token)
}

func TestRestore_MalformedOrPartial(t *testing.T) {
	tests := []struct {
		name  string
		token string
		user  string
	}{
		{"malformed user", "tok", "{not json"},
		{"user is array", "tok", `[1,2]`},
		{"token without user", "tok", ""},
		{"user without token", "", `{"id":"u1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			tokenStore := store.NewMemoryTokenStore()
			require.NoError(t, tokenStore.Save(ctx, tt.token, []byte(tt.user)))

			manager := NewSessionManager(tokenStore, nil, nil)
			session, ok := manager.Restore(ctx)
			assert.False(t, ok)
			assert.Nil(t, session)

			token, user, _ := tokenStore.Load(ctx)
			assert.Empty(t, token)
			assert.Nil(t, user)
		})
	}
}

func TestRestore_CorruptedFile(t *testing.T) {
	ctx := context.Background()
	tokenStore, err := store.NewFileTokenStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, writeFile(tokenStore.Path(), "garbage"))

	manager := NewSessionManager(tokenStore, nil, nil)
	_, ok := manager.Restore(ctx)
	assert.False(t, ok)

	token, _, err := tokenStore.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestRestore_Empty(t *testing.T) {
	manager := NewSessionManager(store.NewMemoryTokenStore(), nil, nil)
	session, ok := manager.Restore(context.Background())
	assert.False(t, ok)
	assert.Nil(t, session)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	tokenStore := store.NewMemoryTokenStore()
	manager, _ := newTestManager(t, tokenStore, loginHandler(`{"success":true,"data":{"token":"tok","id":"u1"}}`, http.StatusOK))

	_, err := manager.Login(ctx, Credentials{Email: "a@storybox.com", Password: "p"})
	require.NoError(t, err)

	require.NoError(t, manager.Logout(ctx))
	assert.Nil(t, manager.Current())
	assert.Empty(t, manager.Token())

	_, ok := NewSessionManager(tokenStore, nil, nil).Restore(ctx)
	assert.False(t, ok)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	tokenStore := store.NewMemoryTokenStore()
	manager, _ := newTestManager(t, tokenStore, loginHandler(`{"success":true,"data":{"token":"tok","id":"u1","name":"Old"}}`, http.StatusOK))

	// Без сессии ничего не происходит
	require.NoError(t, manager.UpdateUser(ctx, map[string]any{"name": "Ghost"}))
	token, _, _ := tokenStore.Load(ctx)
	assert.Empty(t, token)

	_, err := manager.Login(ctx, Credentials{Email: "a@storybox.com", Password: "p"})
	require.NoError(t, err)

	require.NoError(t, manager.UpdateUser(ctx, map[string]any{"name": "New", "phone": "+100"}))
	current := manager.Current()
	assert.Equal(t, "New", current.User.Name)
	assert.Equal(t, "u1", current.User.ID)
	assert.Equal(t, "+100", current.User.Extra["phone"])

	restored, ok := NewSessionManager(tokenStore, nil, nil).Restore(ctx)
	require.True(t, ok)
	assert.Equal(t, "New", restored.User.Name)
	assert.Equal(t, "tok", restored.Token)
}

func TestExpire_OnUnauthorized(t *testing.T) {
	ctx := context.Background()
	tokenStore := store.NewMemoryTokenStore()
	manager, api := newTestManager(t, tokenStore, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/auth/login") {
			w.Write([]byte(`{"success":true,"data":{"token":"tok","id":"u1"}}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"success":false,"message":"jwt expired"}`))
	})

	_, err := manager.Login(ctx, Credentials{Email: "a@storybox.com", Password: "p"})
	require.NoError(t, err)

	result := api.Dispatch(ctx, client.OpCategoryList, client.Request{})
	require.False(t, result.OK())
	assert.Equal(t, errors.ErrUnauthorized, result.Failure.Kind)

	assert.Nil(t, manager.Current())
	token, _, _ := tokenStore.Load(ctx)
	assert.Empty(t, token)
}

func TestForgetAndResetPassword(t *testing.T) {
	var paths []string
	manager, _ := newTestManager(t, store.NewMemoryTokenStore(), func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		if strings.HasSuffix(r.URL.Path, "reset-password") {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"success":false,"message":"Code expired"}`))
			return
		}
		w.Write([]byte(`{"success":true,"message":"Email sent"}`))
	})

	msg, err := manager.ForgetPassword(context.Background(), "a@storybox.com")
	require.NoError(t, err)
	assert.Equal(t, "Email sent", msg)

	_, err = manager.ForgetPassword(context.Background(), "bad")
	assert.Error(t, err)

	_, err = manager.ResetPassword(context.Background(), map[string]any{"code": "1", "password": "x"})
	require.Error(t, err)
	assert.Equal(t, "Code expired", err.Error())

	assert.Equal(t, []string{"/api/v1/dashboard/auth/forget-password", "/api/v1/dashboard/auth/reset-password"}, paths)
}

func TestReadCredentials(t *testing.T) {
	var out strings.Builder
	creds, err := ReadCredentials(strings.NewReader("admin@storybox.com\nsecret\n"), &out, Credentials{})
	require.NoError(t, err)
	assert.Equal(t, "admin@storybox.com", creds.Email)
	assert.Equal(t, "secret", creds.Password)
	assert.Contains(t, out.String(), "Email: ")

	creds, err = ReadCredentials(strings.NewReader("pw\n"), &out, Credentials{Email: "a@storybox.com"})
	require.NoError(t, err)
	assert.Equal(t, "pw", creds.Password)

	_, err = ReadCredentials(strings.NewReader("nope\n\n"), &out, Credentials{})
	assert.Error(t, err)

	_, err = ReadCredentials(strings.NewReader("a@storybox.com\n\n"), &out, Credentials{})
	assert.Error(t, err)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0600)
}
