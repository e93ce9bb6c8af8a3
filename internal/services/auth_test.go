package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/clipshare/clipshare-backend/internal/platform/apierr"
	"github.com/clipshare/clipshare-backend/internal/platform/logger"
	"github.com/clipshare/clipshare-backend/internal/repos"
	"github.com/clipshare/clipshare-backend/internal/types"
)

func newAuthEnv(t *testing.T) AuthService {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "auth.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&types.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewAuthService(repos.NewUserRepo(gdb, log), "test-secret", 0, log)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newAuthEnv(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{
		Email:    "Alice@Example.com",
		Username: "alice",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("email normalization: got %q", user.Email)
	}
	if user.Password == "hunter2hunter2" {
		t.Fatalf("password stored in plaintext")
	}
	if user.RoleID != types.RoleUser {
		t.Fatalf("new user role: want=%d got=%d", types.RoleUser, user.RoleID)
	}

	loggedIn, token, err := svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if loggedIn.ID != user.ID || token == "" {
		t.Fatalf("login result: user=%+v token=%q", loggedIn, token)
	}

	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != user.ID || claims.RoleID != types.RoleUser {
		t.Fatalf("claims: got %+v", claims)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newAuthEnv(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{Email: "bob@example.com", Username: "bob", Password: "correcthorse"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, _, err := svc.Login(ctx, LoginInput{Email: "bob@example.com", Password: "wrong"}); !apierr.IsCode(err, apierr.CodeUnauthorized) {
		t.Fatalf("wrong password: want unauthorized, got %v", err)
	}
	if _, _, err := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "x"}); !apierr.IsCode(err, apierr.CodeUnauthorized) {
		t.Fatalf("unknown email: want unauthorized, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newAuthEnv(t)
	ctx := context.Background()

	input := RegisterInput{Email: "dup@example.com", Username: "first", Password: "password123"}
	if _, err := svc.Register(ctx, input); err != nil {
		t.Fatalf("first register: %v", err)
	}
	input.Username = "second"
	if _, err := svc.Register(ctx, input); !apierr.IsCode(err, apierr.CodeConflict) {
		t.Fatalf("duplicate email: want conflict, got %v", err)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	svc := newAuthEnv(t)

	for _, token := range []string{"", "not.a.token", "eyJhbGciOiJIUzI1NiJ9.e30.bad"} {
		if _, err := svc.ParseToken(token); !apierr.IsCode(err, apierr.CodeUnauthorized) {
			t.Fatalf("token %q: want unauthorized, got %v", token, err)
		}
	}
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	svc := newAuthEnv(t)

	if _, err := svc.Register(context.Background(), RegisterInput{
		Email: "eve@example.com", Username: "eve", Password: "password123",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, token, err := svc.Login(context.Background(), LoginInput{Email: "eve@example.com", Password: "password123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	wrongSecret := NewAuthService(nil, "another-secret", 0, mustLogger(t))
	if _, err := wrongSecret.ParseToken(token); !apierr.IsCode(err, apierr.CodeUnauthorized) {
		t.Fatalf("foreign token: want unauthorized, got %v", err)
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	log := mustLogger(t)
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "ttl.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&types.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	svc := NewAuthService(repos.NewUserRepo(gdb, log), "test-secret", -time.Hour, log)
	// A non-positive TTL falls back to the default, so mint with a service
	// whose clock-sensitive claim is already in the past.
	short := &authService{log: log, users: repos.NewUserRepo(gdb, log), secret: []byte("test-secret"), tokenTTL: -time.Hour}

	if _, err := svc.Register(context.Background(), RegisterInput{
		Email: "ttl@example.com", Username: "ttl", Password: "password123",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	user, err := short.users.GetByEmail(context.Background(), nil, "ttl@example.com")
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	token, err := short.signToken(user)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	if _, err := svc.ParseToken(token); !apierr.IsCode(err, apierr.CodeUnauthorized) {
		t.Fatalf("expired token: want unauthorized, got %v", err)
	}
}

func mustLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return log
}
