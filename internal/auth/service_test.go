package auth

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/mikan/doghouse/internal/model"
	"github.com/mikan/doghouse/internal/repository"
)

// --- モック定義 ---

// mockUserRepo はrepository.UserRepositoryのモック実装。
type mockUserRepo struct {
	findByIDFn       func(ctx context.Context, id string) (*model.User, error)
	findByUsernameFn func(ctx context.Context, username string) (*model.User, error)
	createFn         func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.findByUsernameFn != nil {
		return m.findByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func newTestService(repo *mockUserRepo) *Service {
	return NewService(repo, NewTokenManager("test-secret", time.Hour))
}

// assertAPIError はerrが期待するステータスの業務エラーであることを検証する。
func assertAPIError(t *testing.T, err error, wantStatus int) *model.APIError {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *model.APIError, got %v", err)
	}
	if apiErr.Status != wantStatus {
		t.Errorf("status = %d, want %d", apiErr.Status, wantStatus)
	}
	return apiErr
}

// --- Register のテスト ---

func TestService_Register_Success(t *testing.T) {
	var created *model.User
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}
	svc := newTestService(repo)

	token, err := svc.Register(context.Background(), "alice", "password123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if token == "" {
		t.Error("expected non-empty token")
	}

	if created == nil {
		t.Fatal("expected Create to be called")
	}
	if created.Username != "alice" {
		t.Errorf("username = %q, want %q", created.Username, "alice")
	}
	if created.ID == "" {
		t.Error("expected generated user ID")
	}
	if created.PasswordHash == "password123" {
		t.Error("password must not be stored as plaintext")
	}
	if !VerifyPassword("password123", created.PasswordHash) {
		t.Error("stored digest must verify against the original password")
	}

	// 発行されたトークンは登録ユーザーのIDを指す
	userID, err := NewTokenManager("test-secret", time.Hour).Verify(token)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if userID != created.ID {
		t.Errorf("token subject = %q, want %q", userID, created.ID)
	}
}

func TestService_Register_MissingCredentials(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"username missing", "", "password123"},
		{"password missing", "alice", ""},
		{"both missing", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.username, tt.password)
			apiErr := assertAPIError(t, err, http.StatusBadRequest)
			if apiErr.Message != "Username and password are required." {
				t.Errorf("message = %q", apiErr.Message)
			}
		})
	}
}

func TestService_Register_DuplicateUsername(t *testing.T) {
	repo := &mockUserRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: "existing", Username: username}, nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), "alice", "password123")
	apiErr := assertAPIError(t, err, http.StatusBadRequest)
	if apiErr.Message != "Username already exists" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestService_Register_ConcurrentDuplicate(t *testing.T) {
	// 事前チェックをすり抜けた重複は一意制約違反として返ってくる
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return repository.ErrDuplicateUsername
		},
	}
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), "alice", "password123")
	apiErr := assertAPIError(t, err, http.StatusBadRequest)
	if apiErr.Message != "Username already exists" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestService_Register_RepoError(t *testing.T) {
	repo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			return errors.New("connection refused")
		},
	}
	svc := newTestService(repo)

	_, err := svc.Register(context.Background(), "alice", "password123")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		t.Errorf("infrastructure error must not be an APIError: %v", err)
	}
}

// --- Login のテスト ---

func TestService_Login_Success(t *testing.T) {
	digest, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	repo := &mockUserRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: "user-1", Username: username, PasswordHash: digest}, nil
		},
	}
	svc := newTestService(repo)

	token, err := svc.Login(context.Background(), "alice", "password123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	userID, err := NewTokenManager("test-secret", time.Hour).Verify(token)
	if err != nil {
		t.Fatalf("expected valid token, got %v", err)
	}
	if userID != "user-1" {
		t.Errorf("token subject = %q, want %q", userID, "user-1")
	}
}

func TestService_Login_MissingCredentials(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	_, err := svc.Login(context.Background(), "", "")
	assertAPIError(t, err, http.StatusBadRequest)
}

func TestService_Login_UserNotFound(t *testing.T) {
	svc := newTestService(&mockUserRepo{})

	_, err := svc.Login(context.Background(), "nobody", "password123")
	apiErr := assertAPIError(t, err, http.StatusNotFound)
	if apiErr.Message != "No such user found with username: nobody" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestService_Login_InvalidPassword(t *testing.T) {
	digest, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	repo := &mockUserRepo{
		findByUsernameFn: func(ctx context.Context, username string) (*model.User, error) {
			return &model.User{ID: "user-1", Username: username, PasswordHash: digest}, nil
		},
	}
	svc := newTestService(repo)

	_, err = svc.Login(context.Background(), "alice", "wrong-password")
	apiErr := assertAPIError(t, err, http.StatusUnauthorized)
	if apiErr.Message != "Invalid password" {
		t.Errorf("message = %q", apiErr.Message)
	}
}
