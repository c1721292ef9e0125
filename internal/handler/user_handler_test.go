package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mikan/doghouse/internal/middleware"
	"github.com/mikan/doghouse/internal/model"
)

// --- モック定義 ---

// mockUserService はUserServiceInterfaceのモック実装。
type mockUserService struct {
	registerFn func(ctx context.Context, username, password string) (string, error)
	loginFn    func(ctx context.Context, username, password string) (string, error)
}

func (m *mockUserService) Register(ctx context.Context, username, password string) (string, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, username, password)
	}
	return "test-token", nil
}

func (m *mockUserService) Login(ctx context.Context, username, password string) (string, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, username, password)
	}
	return "test-token", nil
}

// withUserID はリクエストコンテキストに認証済みユーザーIDを注入する。
func withUserID(req *http.Request, userID string) *http.Request {
	return req.WithContext(middleware.ContextWithUserID(req.Context(), userID))
}

// findCookie は名前が一致するSet-Cookieを返す。見つからない場合はnil。
func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// decodeMessage はレスポンスボディからmessageフィールドを読み取る。
func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	return body.Message
}

// decodeError はレスポンスボディからerrorフィールドを読み取る。
func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	return body.Error
}

func newUserHandler(svc UserServiceInterface) *UserHandler {
	return NewUserHandler(svc, UserHandlerConfig{
		CookieSecure: false,
		TokenMaxAge:  86400,
	})
}

// --- POST /user/register テスト ---

func TestUserHandler_Register_Success(t *testing.T) {
	svc := &mockUserService{
		registerFn: func(ctx context.Context, username, password string) (string, error) {
			if username != "alice" || password != "password123" {
				t.Errorf("Register(%q, %q)", username, password)
			}
			return "issued-token", nil
		},
	}
	h := newUserHandler(svc)

	body := `{"username":"alice","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/user/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	if got := decodeMessage(t, w); got != "Successfully registered user" {
		t.Errorf("message = %q", got)
	}

	cookie := findCookie(resp, middleware.TokenCookieName)
	if cookie == nil {
		t.Fatal("expected jwt cookie to be set")
	}
	if cookie.Value != "issued-token" {
		t.Errorf("cookie value = %q, want issued-token", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Error("expected HttpOnly cookie")
	}
	if cookie.MaxAge != 86400 {
		t.Errorf("cookie MaxAge = %d, want 86400", cookie.MaxAge)
	}
}

func TestUserHandler_Register_InvalidBody(t *testing.T) {
	h := newUserHandler(&mockUserService{})

	req := httptest.NewRequest(http.MethodPost, "/user/register", strings.NewReader("{not json"))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

func TestUserHandler_Register_MissingCredentials(t *testing.T) {
	svc := &mockUserService{
		registerFn: func(ctx context.Context, username, password string) (string, error) {
			return "", model.NewMissingCredentialsError()
		},
	}
	h := newUserHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/user/register", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
	if got := decodeError(t, w); got != "Username and password are required." {
		t.Errorf("error = %q", got)
	}
}

func TestUserHandler_Register_DuplicateUsername(t *testing.T) {
	svc := &mockUserService{
		registerFn: func(ctx context.Context, username, password string) (string, error) {
			return "", model.NewDuplicateUsernameError()
		},
	}
	h := newUserHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/user/register",
		strings.NewReader(`{"username":"alice","password":"password123"}`))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
	if got := decodeError(t, w); got != "Username already exists" {
		t.Errorf("error = %q", got)
	}
}

func TestUserHandler_Register_InternalError(t *testing.T) {
	svc := &mockUserService{
		registerFn: func(ctx context.Context, username, password string) (string, error) {
			return "", errors.New("connection refused")
		},
	}
	h := newUserHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/user/register",
		strings.NewReader(`{"username":"alice","password":"password123"}`))
	w := httptest.NewRecorder()

	h.Register(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusInternalServerError)
	}
	// 内部エラーの詳細は漏らさない
	if got := decodeError(t, w); strings.Contains(got, "connection refused") {
		t.Errorf("error = %q must not leak internals", got)
	}
}

// --- POST /user/login テスト ---

func TestUserHandler_Login_Success(t *testing.T) {
	svc := &mockUserService{
		loginFn: func(ctx context.Context, username, password string) (string, error) {
			return "issued-token", nil
		},
	}
	h := newUserHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/user/login",
		strings.NewReader(`{"username":"alice","password":"password123"}`))
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if got := decodeMessage(t, w); got != "Login successful" {
		t.Errorf("message = %q", got)
	}
	if findCookie(resp, middleware.TokenCookieName) == nil {
		t.Error("expected jwt cookie to be set")
	}
}

func TestUserHandler_Login_UserNotFound(t *testing.T) {
	svc := &mockUserService{
		loginFn: func(ctx context.Context, username, password string) (string, error) {
			return "", model.NewUserNotFoundError(username)
		},
	}
	h := newUserHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/user/login",
		strings.NewReader(`{"username":"nobody","password":"password123"}`))
	w := httptest.NewRecorder()

	h.Login(w, req)

	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusNotFound)
	}
	if got := decodeError(t, w); got != "No such user found with username: nobody" {
		t.Errorf("error = %q", got)
	}
}

func TestUserHandler_Login_InvalidPassword(t *testing.T) {
	svc := &mockUserService{
		loginFn: func(ctx context.Context, username, password string) (string, error) {
			return "", model.NewInvalidPasswordError()
		},
	}
	h := newUserHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/user/login",
		strings.NewReader(`{"username":"alice","password":"wrong"}`))
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	if got := decodeError(t, w); got != "Invalid password" {
		t.Errorf("error = %q", got)
	}
	if findCookie(resp, middleware.TokenCookieName) != nil {
		t.Error("cookie must not be set on failed login")
	}
}
