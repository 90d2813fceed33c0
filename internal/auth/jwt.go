package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"timetrack/internal/model"
)

// Purpose separates session tokens from single-use reset tokens so one can
// never stand in for the other.
type Purpose string

const (
	PurposeSession       Purpose = "session"
	PurposePasswordReset Purpose = "password_reset"
)

// TokenConfig holds the signing secret and lifetimes.
type TokenConfig struct {
	Issuer     string
	SigningKey string
	SessionTTL time.Duration
	ResetTTL   time.Duration
}

// Claims represents JWT payload.
type Claims struct {
	Role    model.Role `json:"role,omitempty"`
	Purpose Purpose    `json:"purpose"`
	jwt.RegisteredClaims
}

// issue signs a token for subject valid for ttl from now.
func issue(cfg TokenConfig, now time.Time, subject string, role model.Role, purpose Purpose, ttl time.Duration) (string, Claims, error) {
	claims := Claims{
		Role:    role,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    cfg.Issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.SigningKey))
	if err != nil {
		return "", Claims{}, err
	}
	return token, claims, nil
}

// parse validates signature, issuer and expiry against now and returns
// claims.
func parse(cfg TokenConfig, now func() time.Time, tokenStr string) (Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.SigningKey), nil
	}, opts...)
	if err != nil {
		return Claims{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return Claims{}, errors.New("token has no subject")
	}
	return *claims, nil
}
