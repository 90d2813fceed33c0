package auth

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"timetrack/internal/apperror"
	"timetrack/internal/metrics"
	"timetrack/internal/model"
)

var (
	ErrInvalidCredentials = apperror.New(apperror.CodeUnauthorized, "invalid email or password")
	ErrInvalidToken       = apperror.New(apperror.CodeUnauthorized, "invalid or expired token")
	ErrUserNotFound       = apperror.New(apperror.CodeUnauthorized, "user not found")
)

// CredentialStore resolves employees for authentication. Lookups report a
// missing employee with an apperror.CodeNotFound error.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (model.Employee, error)
	FindByID(ctx context.Context, id string) (model.Employee, error)
	SetPasswordHash(ctx context.Context, id, hash string) error
}

// Revocations remembers token ids that must no longer be accepted.
type Revocations interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// ResetNotifier delivers a password reset token. Delivery is best effort.
type ResetNotifier interface {
	PasswordReset(ctx context.Context, email, token string)
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Employee  model.Employee
}

// Authenticator verifies credentials and issues and validates signed
// session tokens.
type Authenticator struct {
	users    CredentialStore
	cfg      TokenConfig
	now      func() time.Time
	revoked  Revocations
	notifier ResetNotifier
}

type Option func(*Authenticator)

// WithClock overrides the wall clock used for issuance and expiry.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) { a.now = now }
}

// WithRevocations enables logout.
func WithRevocations(r Revocations) Option {
	return func(a *Authenticator) { a.revoked = r }
}

// WithResetNotifier enables the forgot-password path.
func WithResetNotifier(n ResetNotifier) Option {
	return func(a *Authenticator) { a.notifier = n }
}

// NewAuthenticator builds an Authenticator. Session tokens default to 60
// minutes and reset tokens to 5 minutes.
func NewAuthenticator(users CredentialStore, cfg TokenConfig, opts ...Option) *Authenticator {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 60 * time.Minute
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = 5 * time.Minute
	}
	a := &Authenticator{users: users, cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Login checks email and password and issues a session token.
func (a *Authenticator) Login(ctx context.Context, email, password string) (Session, error) {
	emp, err := a.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperror.GetCode(err) == apperror.CodeNotFound {
			metrics.LoginAttempts.WithLabelValues("rejected").Inc()
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("lookup employee: %w", err)
	}
	if !VerifyPassword(emp.PasswordHash, password) {
		metrics.LoginAttempts.WithLabelValues("rejected").Inc()
		return Session{}, ErrInvalidCredentials
	}

	token, claims, err := issue(a.cfg, a.now(), emp.ID, emp.Role, PurposeSession, a.cfg.SessionTTL)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return Session{Token: token, ExpiresAt: claims.ExpiresAt.Time, Employee: emp}, nil
}

// Validate decodes a session token and resolves its employee.
func (a *Authenticator) Validate(ctx context.Context, token string) (model.Employee, error) {
	claims, err := a.claims(ctx, token, PurposeSession)
	if err != nil {
		return model.Employee{}, err
	}
	emp, err := a.users.FindByID(ctx, claims.Subject)
	if err != nil {
		if apperror.GetCode(err) == apperror.CodeNotFound {
			return model.Employee{}, ErrUserNotFound
		}
		return model.Employee{}, fmt.Errorf("lookup employee: %w", err)
	}
	return emp, nil
}

// Logout revokes the token until it would have expired anyway.
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	claims, err := a.claims(ctx, token, PurposeSession)
	if err != nil {
		return err
	}
	if a.revoked == nil {
		return nil
	}
	if err := a.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// ForgotPassword issues a reset token for employees and managers and hands
// it to the notifier. It reports success whether or not the email is known
// so callers cannot probe for accounts.
func (a *Authenticator) ForgotPassword(ctx context.Context, email string) error {
	emp, err := a.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if apperror.GetCode(err) == apperror.CodeNotFound {
			return nil
		}
		return fmt.Errorf("lookup employee: %w", err)
	}
	if emp.Role == model.RoleAdministrator {
		return nil
	}

	token, _, err := issue(a.cfg, a.now(), emp.ID, "", PurposePasswordReset, a.cfg.ResetTTL)
	if err != nil {
		return fmt.Errorf("sign reset token: %w", err)
	}
	if a.notifier == nil {
		log.Printf("password reset requested for %s but no notifier is configured", emp.ID)
		return nil
	}
	a.notifier.PasswordReset(ctx, emp.Email, token)
	return nil
}

// ResetPassword consumes a reset token and stores a new password hash. The
// token is revoked afterwards so it cannot be replayed.
func (a *Authenticator) ResetPassword(ctx context.Context, token, password string) error {
	claims, err := a.claims(ctx, token, PurposePasswordReset)
	if err != nil {
		return err
	}
	if _, err := a.users.FindByID(ctx, claims.Subject); err != nil {
		if apperror.GetCode(err) == apperror.CodeNotFound {
			return ErrUserNotFound
		}
		return fmt.Errorf("lookup employee: %w", err)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	if err := a.users.SetPasswordHash(ctx, claims.Subject, hash); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	if a.revoked != nil {
		if err := a.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time); err != nil {
			log.Printf("revoke reset token failed: %v", err)
		}
	}
	return nil
}

func (a *Authenticator) claims(ctx context.Context, token string, purpose Purpose) (Claims, error) {
	if token == "" {
		return Claims{}, ErrInvalidToken
	}
	claims, err := parse(a.cfg, a.now, token)
	if err != nil || claims.Purpose != purpose {
		return Claims{}, ErrInvalidToken
	}
	if a.revoked != nil && claims.ID != "" {
		revoked, err := a.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return Claims{}, fmt.Errorf("check revocation: %w", err)
		}
		if revoked {
			return Claims{}, ErrInvalidToken
		}
	}
	return claims, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
