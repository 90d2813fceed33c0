package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"timetrack/internal/apperror"
	"timetrack/internal/model"
)

type stubUsers struct {
	mu        sync.Mutex
	employees map[string]model.Employee
}

func newStubUsers(emps ...model.Employee) *stubUsers {
	s := &stubUsers{employees: make(map[string]model.Employee)}
	for _, e := range emps {
		s.employees[e.ID] = e
	}
	return s
}

func (s *stubUsers) FindByEmail(_ context.Context, email string) (model.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.employees {
		if strings.EqualFold(e.Email, email) {
			return e, nil
		}
	}
	return model.Employee{}, apperror.New(apperror.CodeNotFound, "employee not found")
}

func (s *stubUsers) FindByID(_ context.Context, id string) (model.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.employees[id]
	if !ok {
		return model.Employee{}, apperror.New(apperror.CodeNotFound, "employee not found")
	}
	return e, nil
}

func (s *stubUsers) SetPasswordHash(_ context.Context, id, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.employees[id]
	e.PasswordHash = hash
	s.employees[id] = e
	return nil
}

func (s *stubUsers) delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.employees, id)
}

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

type capturedReset struct {
	email, token string
}

type stubNotifier struct{ sent []capturedReset }

func (n *stubNotifier) PasswordReset(_ context.Context, email, token string) {
	n.sent = append(n.sent, capturedReset{email: email, token: token})
}

func testConfig() TokenConfig {
	return TokenConfig{
		Issuer:     "timetrack-test",
		SigningKey: "test-signing-key-with-enough-bytes-0123",
		SessionTTL: 60 * time.Minute,
		ResetTTL:   5 * time.Minute,
	}
}

func mustHash(t *testing.T, pw string) string {
	t.Helper()
	h, err := HashPassword(pw)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return h
}

func setup(t *testing.T) (*Authenticator, *stubUsers, *fakeClock, *stubNotifier) {
	t.Helper()
	users := newStubUsers(
		model.Employee{ID: "E1", Email: "e1@example.com", PasswordHash: mustHash(t, "correct-horse"), Role: model.RoleEmployee, Department: "Eng"},
		model.Employee{ID: "A1", Email: "admin@example.com", PasswordHash: mustHash(t, "admin-password"), Role: model.RoleAdministrator},
		model.Employee{ID: "L1", Email: "legacy@example.com", PasswordHash: "plain-secret", Role: model.RoleEmployee},
	)
	clock := &fakeClock{t: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)}
	notifier := &stubNotifier{}
	a := NewAuthenticator(users, testConfig(),
		WithClock(clock.Now),
		WithRevocations(NewMemoryRevocations(clock.Now)),
		WithResetNotifier(notifier),
	)
	return a, users, clock, notifier
}

func TestLoginAndValidate(t *testing.T) {
	a, _, clock, _ := setup(t)
	ctx := context.Background()

	sess, err := a.Login(ctx, "  E1@Example.COM ", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if want := clock.Now().Add(60 * time.Minute); !sess.ExpiresAt.Equal(want) {
		t.Fatalf("expires at %v, want %v", sess.ExpiresAt, want)
	}

	emp, err := a.Validate(ctx, sess.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if emp.ID != "E1" || emp.Role != model.RoleEmployee {
		t.Fatalf("unexpected employee %+v", emp)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a, _, _, _ := setup(t)
	ctx := context.Background()

	if _, err := a.Login(ctx, "e1@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, err := a.Login(ctx, "nobody@example.com", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v", err)
	}
}

func TestLegacyPlaintextPasswordStillAccepted(t *testing.T) {
	a, _, _, _ := setup(t)
	if _, err := a.Login(context.Background(), "legacy@example.com", "plain-secret"); err != nil {
		t.Fatalf("legacy login: %v", err)
	}
	if _, err := a.Login(context.Background(), "legacy@example.com", "plain-secreT"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("legacy mismatch: got %v", err)
	}
}

func TestTokenExpiresAfterLifetime(t *testing.T) {
	a, _, clock, _ := setup(t)
	ctx := context.Background()

	sess, err := a.Login(ctx, "e1@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	clock.Advance(59 * time.Minute)
	if _, err := a.Validate(ctx, sess.Token); err != nil {
		t.Fatalf("token should still be valid: %v", err)
	}

	clock.Advance(2 * time.Minute)
	if _, err := a.Validate(ctx, sess.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken after 61 minutes, got %v", err)
	}
}

func TestValidateRejectsTamperedAndForeignTokens(t *testing.T) {
	a, users, clock, _ := setup(t)
	ctx := context.Background()

	sess, err := a.Login(ctx, "e1@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	tampered := sess.Token[:len(sess.Token)-2] + "xx"
	if _, err := a.Validate(ctx, tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("tampered: got %v", err)
	}

	otherCfg := testConfig()
	otherCfg.SigningKey = "a-completely-different-signing-key-000"
	other := NewAuthenticator(users, otherCfg, WithClock(clock.Now))
	if _, err := other.Validate(ctx, sess.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign key: got %v", err)
	}

	if _, err := a.Validate(ctx, "not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage: got %v", err)
	}
}

func TestValidateUnknownSubject(t *testing.T) {
	a, users, _, _ := setup(t)
	ctx := context.Background()

	sess, err := a.Login(ctx, "e1@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	users.delete("E1")
	if _, err := a.Validate(ctx, sess.Token); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	a, _, _, _ := setup(t)
	ctx := context.Background()

	sess, err := a.Login(ctx, "e1@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := a.Logout(ctx, sess.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := a.Validate(ctx, sess.Token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected revoked token to fail, got %v", err)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	a, _, _, notifier := setup(t)
	ctx := context.Background()

	if err := a.ForgotPassword(ctx, "E1@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	if len(notifier.sent) != 1 || notifier.sent[0].email != "e1@example.com" {
		t.Fatalf("unexpected notifications %+v", notifier.sent)
	}
	resetToken := notifier.sent[0].token

	if _, err := a.Validate(ctx, resetToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("reset token must not work as a session, got %v", err)
	}

	if err := a.ResetPassword(ctx, resetToken, "new-password-1"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := a.Login(ctx, "e1@example.com", "new-password-1"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if err := a.ResetPassword(ctx, resetToken, "another-password"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("reset token replay: got %v", err)
	}
}

func TestForgotPasswordIsUniform(t *testing.T) {
	a, _, _, notifier := setup(t)
	ctx := context.Background()

	if err := a.ForgotPassword(ctx, "nobody@example.com"); err != nil {
		t.Fatalf("unknown email: %v", err)
	}
	if err := a.ForgotPassword(ctx, "admin@example.com"); err != nil {
		t.Fatalf("admin email: %v", err)
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("expected no notifications, got %+v", notifier.sent)
	}
}

func TestResetTokenExpires(t *testing.T) {
	a, _, clock, notifier := setup(t)
	ctx := context.Background()

	if err := a.ForgotPassword(ctx, "e1@example.com"); err != nil {
		t.Fatalf("forgot: %v", err)
	}
	clock.Advance(6 * time.Minute)
	if err := a.ResetPassword(ctx, notifier.sent[0].token, "new-password-1"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired reset token, got %v", err)
	}
}

func TestHashPasswordLength(t *testing.T) {
	if _, err := HashPassword("short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	h := mustHash(t, "long-enough")
	if !VerifyPassword(h, "long-enough") || VerifyPassword(h, "long-enougH") {
		t.Fatal("bcrypt round trip failed")
	}
	if VerifyPassword("", "") {
		t.Fatal("empty stored hash must never verify")
	}
}
