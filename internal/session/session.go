// Package session keeps a client's authentication state in a key-value
// store: the issued token pair and any pending two-factor login.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "fittrack/internal/errors"
	"fittrack/internal/kvstore"
	"fittrack/internal/services"
	"fittrack/internal/token"
)

// Storage keys.
const (
	AuthTokenKey        = "authToken"
	CSRFTokenKey        = "csrfToken"
	PendingTwoFactorKey = "pendingTwoFactor"
)

// Authenticator is the part of the auth service a client session drives.
type Authenticator interface {
	Login(ctx context.Context, email, password string, rememberMe bool) (*services.LoginResult, error)
	VerifyTwoFactor(ctx context.Context, email, code string, rememberMe bool) (*services.LoginResult, error)
	ValidateToken(ctx context.Context, tokenString, csrf string) (*token.Identity, error)
}

// Pending is a login waiting for its two-factor code.
type Pending struct {
	Email      string `json:"email"`
	RememberMe bool   `json:"remember_me"`
}

// Session is one client's authentication state.
type Session struct {
	auth  Authenticator
	store kvstore.Store
}

// New creates a Session over store.
func New(auth Authenticator, store kvstore.Store) *Session {
	return &Session{auth: auth, store: store}
}

// Login authenticates and stores the issued pair. When a second factor is
// required the pending login is stored instead and RequiresTwoFactor is set.
func (s *Session) Login(ctx context.Context, email, password string, rememberMe bool) (*services.LoginResult, error) {
	result, err := s.auth.Login(ctx, email, password, rememberMe)
	if err != nil {
		return nil, err
	}

	if result.RequiresTwoFactor {
		raw, err := json.Marshal(Pending{Email: email, RememberMe: rememberMe})
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		if err := s.store.Set(ctx, PendingTwoFactorKey, string(raw)); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return result, nil
	}

	if err := s.storePair(ctx, result.Session); err != nil {
		return nil, err
	}
	return result, nil
}

// VerifyTwoFactor completes the pending login with code.
func (s *Session) VerifyTwoFactor(ctx context.Context, code string) (*services.LoginResult, error) {
	pending, err := s.Pending(ctx)
	if err != nil {
		return nil, err
	}
	if pending == nil {
		return nil, apperrors.ErrNoPendingChallenge
	}

	result, err := s.auth.VerifyTwoFactor(ctx, pending.Email, code, pending.RememberMe)
	if err != nil {
		return nil, err
	}
	if err := s.storePair(ctx, result.Session); err != nil {
		return nil, err
	}
	if err := s.store.Remove(ctx, PendingTwoFactorKey); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return result, nil
}

// Pending returns the pending two-factor login, or nil if there is none.
func (s *Session) Pending(ctx context.Context) (*Pending, error) {
	raw, err := s.store.Get(ctx, PendingTwoFactorKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var p Pending
	if err := json.Unmarshal([]byte(raw), &p); err != nil || p.Email == "" {
		// Unreadable state is dropped rather than surfaced.
		_ = s.store.Remove(ctx, PendingTwoFactorKey)
		return nil, nil
	}
	return &p, nil
}

// ValidateToken checks the stored pair. Any failure, including a missing
// token, clears both keys.
func (s *Session) ValidateToken(ctx context.Context) (*token.Identity, error) {
	tok, csrf, err := s.Token(ctx)
	if err != nil {
		return nil, err
	}

	identity, err := s.auth.ValidateToken(ctx, tok, csrf)
	if err != nil {
		if clearErr := s.clear(ctx); clearErr != nil {
			return nil, clearErr
		}
		return nil, err
	}
	return identity, nil
}

// Logout removes the stored pair. It is safe to call when logged out.
func (s *Session) Logout(ctx context.Context) error {
	return s.clear(ctx)
}

// Token returns the stored session token and CSRF value, empty when
// logged out. Callers send them as the Authorization and X-CSRF-Token
// headers.
func (s *Session) Token(ctx context.Context) (string, string, error) {
	tok, err := s.read(ctx, AuthTokenKey)
	if err != nil {
		return "", "", err
	}
	csrf, err := s.read(ctx, CSRFTokenKey)
	if err != nil {
		return "", "", err
	}
	return tok, csrf, nil
}

func (s *Session) storePair(ctx context.Context, st *token.SessionToken) error {
	if st == nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, fmt.Errorf("session: login returned no token"))
	}
	if err := s.store.Set(ctx, AuthTokenKey, st.Token); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.store.Set(ctx, CSRFTokenKey, st.CSRFToken); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// read returns "" for a missing key.
func (s *Session) read(ctx context.Context, key string) (string, error) {
	v, err := s.store.Get(ctx, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return v, nil
}

func (s *Session) clear(ctx context.Context) error {
	for _, key := range []string{AuthTokenKey, CSRFTokenKey} {
		if err := s.store.Remove(ctx, key); err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return nil
}
