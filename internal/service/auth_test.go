package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"log/slog"

	"github.com/rs/xid"
	"github.com/sakif/daily-diary/internal/apperror"
	"github.com/sakif/daily-diary/internal/auth"
	"github.com/sakif/daily-diary/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeUserRepo is an in-memory implementation of repository.UserRepository.
// Using a fake (not a mock framework) keeps tests dependency-free and easy
// to read — you can see exactly what the fake does.
type fakeUserRepo struct {
	users map[string]*model.User // keyed by internal ID
	// set to a non-nil error to simulate a database failure
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return apperror.DuplicateEmail()
		}
	}
	user.ID = xid.New().String()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return u, nil
}

func (f *fakeUserRepo) DeleteUser(ctx context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return apperror.NotFound("user", id)
	}
	delete(f.users, id)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestAuthService returns an AuthService wired with fake dependencies.
// The password service runs at bcrypt minimum cost so tests stay fast.
func newTestAuthService(t *testing.T, repo *fakeUserRepo) *AuthService {
	t.Helper()

	ts, err := auth.NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return NewAuthService(repo, ts, auth.NewPasswordServiceForTest(), testLogger())
}

// =========================================================================
// Register TESTS
// =========================================================================

func TestRegister_NewUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	result, err := svc.Register(context.Background(), "ada@example.com", "hunter22", "Ada")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if result.User == nil {
		t.Fatal("Register() returned nil User")
	}
	if result.Token == "" {
		t.Fatal("Register() returned empty Token")
	}
	if result.User.ID == "" {
		t.Error("Register() user has no ID")
	}
	if result.User.Name != "Ada" {
		t.Errorf("User.Name = %q, want %q", result.User.Name, "Ada")
	}
	if result.User.PasswordHash == "hunter22" {
		t.Error("password stored as plaintext")
	}
	if result.User.PasswordHash == "" {
		t.Error("password hash is empty")
	}
}

func TestRegister_NameDefaultsToEmailLocalPart(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())

	result, err := svc.Register(context.Background(), "grace.hopper@example.com", "hunter22", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if result.User.Name != "grace.hopper" {
		t.Errorf("User.Name = %q, want email local part", result.User.Name)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"empty email", "", "hunter22"},
		{"email without at-sign", "not-an-email", "hunter22"},
		{"empty password", "ada@example.com", ""},
		{"short password", "ada@example.com", "abc"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.email, tc.password, "")
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Register() error = %v, want validation error", err)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), "ada@example.com", "hunter22", "Ada"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	result, err := svc.Register(context.Background(), "ada@example.com", "different-pass", "Imposter")
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("second Register() error = %v, want conflict", err)
	}
	if result != nil {
		t.Error("conflicting Register() must not issue a token")
	}
	if len(repo.users) != 1 {
		t.Errorf("user count = %d, want 1", len(repo.users))
	}
}

// =========================================================================
// Login TESTS
// =========================================================================

func TestLogin_Success(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	reg, err := svc.Register(context.Background(), "ada@example.com", "hunter22", "Ada")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	result, err := svc.Login(context.Background(), "ada@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if result.User.ID != reg.User.ID {
		t.Errorf("Login() user ID = %q, want %q", result.User.ID, reg.User.ID)
	}
	if result.Token == "" {
		t.Error("Login() returned empty Token")
	}
}

// The failure message must be identical whether the email is unknown or the
// password is wrong — otherwise login doubles as an email-existence oracle.
func TestLogin_IndistinguishableFailures(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	if _, err := svc.Register(context.Background(), "ada@example.com", "hunter22", "Ada"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, errUnknown := svc.Login(context.Background(), "nobody@example.com", "hunter22")
	_, errWrongPass := svc.Login(context.Background(), "ada@example.com", "wrong-password")

	if !errors.Is(errUnknown, apperror.ErrUnauthorized) {
		t.Fatalf("unknown email error = %v, want unauthorized", errUnknown)
	}
	if !errors.Is(errWrongPass, apperror.ErrUnauthorized) {
		t.Fatalf("wrong password error = %v, want unauthorized", errWrongPass)
	}
	if errUnknown.Error() != errWrongPass.Error() {
		t.Errorf("failure messages differ: %q vs %q", errUnknown.Error(), errWrongPass.Error())
	}
}

func TestLogin_EmptyInputs(t *testing.T) {
	svc := newTestAuthService(t, newFakeUserRepo())

	if _, err := svc.Login(context.Background(), "", "pass"); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("empty email error = %v, want unauthorized", err)
	}
	if _, err := svc.Login(context.Background(), "a@b.c", ""); !errors.Is(err, apperror.ErrUnauthorized) {
		t.Errorf("empty password error = %v, want unauthorized", err)
	}
}

// =========================================================================
// GetUserByID TESTS
// =========================================================================

func TestGetUserByID(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newTestAuthService(t, repo)

	reg, err := svc.Register(context.Background(), "ada@example.com", "hunter22", "Ada")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	user, err := svc.GetUserByID(context.Background(), reg.User.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if user.Email != "ada@example.com" {
		t.Errorf("Email = %q", user.Email)
	}

	if _, err := svc.GetUserByID(context.Background(), "no-such-id"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("missing user error = %v, want not found", err)
	}
}
