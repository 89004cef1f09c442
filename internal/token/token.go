// Package token issues and validates the signed session and password-reset
// tokens. Both are HS256 JWTs signed with separate secrets.
package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fittrack/internal/clock"
	apperrors "fittrack/internal/errors"
)

const (
	typeSession = "session"
	typeReset   = "reset"

	// CodeDigits is the length of two-factor and reset codes.
	CodeDigits = 6
)

// Config controls token lifetimes and keys.
type Config struct {
	Secret      string
	ResetSecret string
	SessionTTL  time.Duration
	RememberTTL time.Duration
	ResetTTL    time.Duration
}

// DefaultConfig returns the standard lifetimes for the given secrets.
func DefaultConfig(secret, resetSecret string) Config {
	return Config{
		Secret:      secret,
		ResetSecret: resetSecret,
		SessionTTL:  24 * time.Hour,
		RememberTTL: 30 * 24 * time.Hour,
		ResetTTL:    time.Hour,
	}
}

// SessionClaims is the payload of a session token. CSRF holds the SHA-256
// of the raw CSRF value, never the value itself.
type SessionClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"id"`
	Email     string `json:"email"`
	Nonce     string `json:"nonce"`
	CSRF      string `json:"csrf"`
	TokenType string `json:"typ"`
}

// SessionToken is an issued session token together with its CSRF value.
type SessionToken struct {
	Token     string    `json:"token"`
	CSRFToken string    `json:"csrf_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Identity is the authenticated caller extracted from a valid token.
type Identity struct {
	UserID    string    `json:"id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ResetClaims is the payload of a password-reset token. The code travels
// only as an HMAC digest.
type ResetClaims struct {
	jwt.RegisteredClaims
	Email      string `json:"email"`
	CodeDigest string `json:"code"`
	TokenType  string `json:"typ"`
}

// Reset is a verified reset token.
type Reset struct {
	ID        string
	Email     string
	ExpiresAt time.Time
}

// Manager signs and verifies tokens against an injected clock.
type Manager struct {
	cfg   Config
	clock clock.Clock
}

// NewManager creates a token manager. Zero lifetimes fall back to the defaults.
func NewManager(cfg Config, clk clock.Clock) *Manager {
	def := DefaultConfig(cfg.Secret, cfg.ResetSecret)
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = def.SessionTTL
	}
	if cfg.RememberTTL <= 0 {
		cfg.RememberTTL = def.RememberTTL
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = def.ResetTTL
	}
	if clk == nil {
		clk = clock.Real()
	}
	return &Manager{cfg: cfg, clock: clk}
}

// IssueSession signs a session token for the user. rememberMe selects the
// long lifetime.
func (m *Manager) IssueSession(userID, email string, rememberMe bool) (*SessionToken, error) {
	nonce, err := randomHex(16)
	if err != nil {
		return nil, err
	}
	csrf, err := randomHex(16)
	if err != nil {
		return nil, err
	}

	ttl := m.cfg.SessionTTL
	if rememberMe {
		ttl = m.cfg.RememberTTL
	}
	now := m.clock.Now()
	exp := now.Add(ttl)

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		UserID:    userID,
		Email:     email,
		Nonce:     nonce,
		CSRF:      hashCSRF(csrf),
		TokenType: typeSession,
	})
	signed, err := tok.SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign session token: %w", err)
	}

	return &SessionToken{Token: signed, CSRFToken: csrf, ExpiresAt: exp.Truncate(time.Second)}, nil
}

// ParseSession validates a session token and its paired CSRF value.
func (m *Manager) ParseSession(tokenString, csrf string) (*Identity, error) {
	if tokenString == "" {
		return nil, apperrors.ErrTokenMissing
	}

	claims := &SessionClaims{}
	if _, err := m.parser().ParseWithClaims(tokenString, claims, m.keyFunc(m.cfg.Secret)); err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperrors.Wrap(apperrors.ErrTokenExpired, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, apperrors.Wrap(apperrors.ErrTokenBadSignature, err)
		default:
			return nil, apperrors.Wrap(apperrors.ErrTokenMalformed, err)
		}
	}
	if claims.TokenType != typeSession || claims.UserID == "" {
		return nil, apperrors.ErrTokenMalformed
	}
	if csrf == "" || subtle.ConstantTimeCompare([]byte(hashCSRF(csrf)), []byte(claims.CSRF)) != 1 {
		return nil, apperrors.ErrCSRFMismatch
	}

	return &Identity{
		UserID:    claims.UserID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// IssueReset signs a reset token for email carrying a digest of code.
// The returned id identifies the token for single-use tracking.
func (m *Manager) IssueReset(email, code string) (string, string, error) {
	id, err := randomHex(16)
	if err != nil {
		return "", "", err
	}
	now := m.clock.Now()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, ResetClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.cfg.ResetTTL)),
		},
		Email:      email,
		CodeDigest: m.codeDigest(id, code),
		TokenType:  typeReset,
	})
	signed, err := tok.SignedString([]byte(m.cfg.ResetSecret))
	if err != nil {
		return "", "", fmt.Errorf("failed to sign reset token: %w", err)
	}
	return signed, id, nil
}

// ParseReset validates a reset token without checking the code.
func (m *Manager) ParseReset(tokenString string) (*Reset, *ResetClaims, error) {
	if tokenString == "" {
		return nil, nil, apperrors.ErrResetInvalid
	}

	claims := &ResetClaims{}
	if _, err := m.parser().ParseWithClaims(tokenString, claims, m.keyFunc(m.cfg.ResetSecret)); err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, nil, apperrors.Wrap(apperrors.ErrResetExpired, err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, nil, apperrors.Wrap(apperrors.ErrResetBadSignature, err)
		default:
			return nil, nil, apperrors.Wrap(apperrors.ErrResetInvalid, err)
		}
	}
	if claims.TokenType != typeReset || claims.ID == "" || claims.Email == "" {
		return nil, nil, apperrors.ErrResetInvalid
	}

	return &Reset{ID: claims.ID, Email: claims.Email, ExpiresAt: claims.ExpiresAt.Time}, claims, nil
}

// CheckResetCode reports whether code matches the digest in claims.
func (m *Manager) CheckResetCode(claims *ResetClaims, code string) error {
	want := m.codeDigest(claims.ID, code)
	if !hmac.Equal([]byte(want), []byte(claims.CodeDigest)) {
		return apperrors.ErrResetCodeMismatch
	}
	return nil
}

func (m *Manager) parser() *jwt.Parser {
	return jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.clock.Now),
		jwt.WithExpirationRequired(),
	)
}

func (m *Manager) keyFunc(secret string) jwt.Keyfunc {
	return func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}
}

func (m *Manager) codeDigest(id, code string) string {
	mac := hmac.New(sha256.New, []byte(m.cfg.ResetSecret))
	mac.Write([]byte(id + ":" + code))
	return hex.EncodeToString(mac.Sum(nil))
}

func hashCSRF(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewCode returns a random CodeDigits-digit code in [100000, 999999].
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("failed to generate code: %w", err)
	}
	return strconv.FormatInt(100000+n.Int64(), 10), nil
}
