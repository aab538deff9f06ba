package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/notehub/internal/auth"
	"github.com/geocoder89/notehub/internal/domain/user"
	"github.com/geocoder89/notehub/internal/http/handlers"
	"github.com/geocoder89/notehub/internal/http/middlewares"
	"github.com/geocoder89/notehub/internal/repo/memory"
	"github.com/geocoder89/notehub/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type authFixture struct {
	users  *memory.UsersRepo
	svc    *auth.Service
	tokens *auth.Manager
	h      *handlers.AuthHandler
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	users := memory.NewUsersRepo()
	tokens := auth.NewManager("test-secret", time.Hour)
	svc := auth.NewService(users, security.NewHasher(bcrypt.MinCost), tokens, nil)

	return &authFixture{
		users:  users,
		svc:    svc,
		tokens: tokens,
		h:      handlers.NewAuthHandler(svc, tokens, handlers.CookieConfig{}),
	}
}

func (f *authFixture) signup(t *testing.T, username, email, phone, password string) user.User {
	t.Helper()

	u, err := f.svc.Signup(context.Background(), user.SignUpRequest{
		Username: username,
		Email:    email,
		Phone:    phone,
		Password: password,
	})
	require.NoError(t, err)
	return u
}

func sessionCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == middlewares.SessionCookie {
			return c
		}
	}
	return nil
}

func TestSignUp(t *testing.T) {
	f := newAuthFixture(t)
	r := setupRouter(http.MethodPost, "/signup", f.h.SignUp, 0)

	body := `{"username":"jdoe","email":"jdoe@example.com","phone":"5551234","password":"hunter22!"}`
	w := do(t, r, http.MethodPost, "/signup", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	got := decode(t, w)
	assert.Equal(t, "User registered successfully", got["message"])
	created, ok := got["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "jdoe", created["username"])
	assert.NotContains(t, created, "password")
	assert.NotContains(t, created, "passwordHash")

	w = do(t, r, http.MethodPost, "/signup", body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Username, email, or phone already exists.", decode(t, w)["error"])
}

func TestSignUp_ShortPassword(t *testing.T) {
	f := newAuthFixture(t)
	r := setupRouter(http.MethodPost, "/signup", f.h.SignUp, 0)

	w := do(t, r, http.MethodPost, "/signup", `{"username":"jdoe","email":"jdoe@example.com","phone":"5551234","password":"short"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "password must be at least 8", decode(t, w)["error"])
}

func TestLogin(t *testing.T) {
	f := newAuthFixture(t)
	u := f.signup(t, "jdoe", "jdoe@example.com", "5551234", "hunter22!")
	r := setupRouter(http.MethodPost, "/login", f.h.Login, 0)

	w := do(t, r, http.MethodPost, "/login", `{"email":"jdoe@example.com","password":"hunter22!"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decode(t, w)
	assert.Equal(t, "Login successful", got["message"])
	token, _ := got["token"].(string)
	require.NotEmpty(t, token)

	claims, err := f.tokens.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	c := sessionCookie(w)
	require.NotNil(t, c)
	assert.Equal(t, token, c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
	assert.Equal(t, "/", c.Path)
}

func TestLogin_Failures(t *testing.T) {
	f := newAuthFixture(t)
	f.signup(t, "jdoe", "jdoe@example.com", "5551234", "hunter22!")
	r := setupRouter(http.MethodPost, "/login", f.h.Login, 0)

	tests := []struct {
		name    string
		body    string
		status  int
		message string
	}{
		{"unknown email", `{"email":"nobody@example.com","password":"hunter22!"}`, http.StatusNotFound, "User with this email does not exist."},
		{"wrong password", `{"email":"jdoe@example.com","password":"wrong-one"}`, http.StatusUnauthorized, "Invalid password."},
		{"missing password", `{"email":"jdoe@example.com"}`, http.StatusBadRequest, "password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/login", tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.message, decode(t, w)["error"])
			assert.Nil(t, sessionCookie(w))
		})
	}
}

func TestLogout_ClearsCookie(t *testing.T) {
	f := newAuthFixture(t)
	r := setupRouter(http.MethodPost, "/logout", f.h.Logout, 0)

	w := do(t, r, http.MethodPost, "/logout", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	c := sessionCookie(w)
	require.NotNil(t, c)
	assert.Empty(t, c.Value)
	assert.Less(t, c.MaxAge, 0)
}

func TestSession(t *testing.T) {
	f := newAuthFixture(t)
	r := setupRouter(http.MethodGet, "/session", f.h.Session, 0)

	token, _, err := f.tokens.Issue(7, "jdoe")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.AddCookie(&http.Cookie{Name: middlewares.SessionCookie, Value: token})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode(t, w)
	assert.Equal(t, true, got["valid"])
	assert.EqualValues(t, 7, got["userId"])
	assert.Equal(t, "jdoe", got["username"])

	w = do(t, r, http.MethodGet, "/session", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "session_expired", decode(t, w)["code"])

	req = httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
