package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sync"
	"time"

	"fittrack/internal/clock"
	apperrors "fittrack/internal/errors"
	"fittrack/internal/logger"
	"fittrack/internal/metrics"
	"fittrack/internal/models"
	"fittrack/internal/notify"
	"fittrack/internal/password"
	"fittrack/internal/registry"
	"fittrack/internal/token"
	"fittrack/internal/uuid"
)

// ResetRequestedMessage is returned for every reset request so callers
// cannot tell registered addresses apart.
const ResetRequestedMessage = "If your email exists in our system, you will receive a reset code"

// AuthConfig holds the lockout and two-factor policy.
type AuthConfig struct {
	MaxLoginAttempts int
	AttemptWindow    time.Duration
	LockoutDuration  time.Duration
	TwoFactorTTL     time.Duration
}

// DefaultAuthConfig returns the standard policy: 5 attempts within 15
// minutes lock the account for 30 minutes; 2FA codes live 10 minutes.
func DefaultAuthConfig() AuthConfig {
	return AuthConfig{
		MaxLoginAttempts: 5,
		AttemptWindow:    15 * time.Minute,
		LockoutDuration:  30 * time.Minute,
		TwoFactorTTL:     10 * time.Minute,
	}
}

// AuthDeps are the collaborators of the auth service.
type AuthDeps struct {
	Users    *registry.Registry
	Consumed *registry.ConsumedTokens
	Tokens   *token.Manager
	Hasher   *password.Hasher
	Notifier notify.Notifier
	Clock    clock.Clock
	Metrics  *metrics.Manager
	Config   AuthConfig
}

// authService handles registration, login, two-factor and password reset.
type authService struct {
	// mu serializes read-modify-write sequences on the registry, which is
	// rewritten whole on every change.
	mu sync.Mutex

	users    *registry.Registry
	consumed *registry.ConsumedTokens
	tokens   *token.Manager
	hasher   *password.Hasher
	notifier notify.Notifier
	clock    clock.Clock
	metrics  *metrics.Manager
	cfg      AuthConfig
}

// NewAuthService creates a new AuthServicer. The registry must already be loaded.
func NewAuthService(deps AuthDeps) AuthServicer {
	cfg := deps.Config
	def := DefaultAuthConfig()
	if cfg.MaxLoginAttempts <= 0 {
		cfg.MaxLoginAttempts = def.MaxLoginAttempts
	}
	if cfg.AttemptWindow <= 0 {
		cfg.AttemptWindow = def.AttemptWindow
	}
	if cfg.LockoutDuration <= 0 {
		cfg.LockoutDuration = def.LockoutDuration
	}
	if cfg.TwoFactorTTL <= 0 {
		cfg.TwoFactorTTL = def.TwoFactorTTL
	}

	s := &authService{
		users:    deps.Users,
		consumed: deps.Consumed,
		tokens:   deps.Tokens,
		hasher:   deps.Hasher,
		notifier: deps.Notifier,
		clock:    deps.Clock,
		metrics:  deps.Metrics,
		cfg:      cfg,
	}
	if s.clock == nil {
		s.clock = clock.Real()
	}
	if s.hasher == nil {
		s.hasher = password.NewHasher(password.DefaultIterations)
	}
	if s.notifier == nil {
		s.notifier = notify.NewLogNotifier(logger.Get())
	}
	if s.metrics == nil {
		s.metrics = metrics.NewUnregistered()
	}
	return s
}

// Register creates a user. It does not log the user in.
func (s *authService) Register(ctx context.Context, email, pw, confirm string) (*models.User, error) {
	email = password.NormalizeEmail(email)
	if !password.IsValidEmail(email) {
		return nil, apperrors.ErrInvalidEmail
	}
	if !password.IsStrong(pw) {
		return nil, apperrors.ErrWeakPassword
	}
	if pw != confirm {
		return nil, apperrors.ErrPasswordMismatch
	}

	hash, err := s.hasher.Hash(pw)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	user, err := s.users.Create(models.User{
		ID:        uuid.At(now),
		Email:     email,
		Password:  hash,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}
	if err := s.users.Save(ctx); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.metrics.CounterRegistrations.Inc()
	logger.Get().Infow("User registered", "user_id", user.ID)
	return &user, nil
}

// Login checks credentials and either issues a session or starts a
// two-factor challenge.
func (s *authService) Login(ctx context.Context, email, pw string, rememberMe bool) (*LoginResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	user, ok := s.users.FindByEmail(email)
	if !ok {
		// Same key derivation as a registered user so timing does not
		// reveal which addresses exist.
		s.hasher.Verify(pw, password.Decoy)
		s.metrics.CounterLogins.WithLabelValues(metrics.LoginFailed).Inc()
		return nil, apperrors.ErrInvalidCredentials
	}

	if user.IsLocked(now) {
		s.metrics.CounterLogins.WithLabelValues(metrics.LoginLocked).Inc()
		return nil, apperrors.Locked(user.LockUntil.Sub(now))
	}
	s.expireFailures(&user, now)

	if !s.hasher.Verify(pw, user.Password) {
		return nil, s.recordFailure(ctx, &user, now)
	}

	// With 2FA the failure counter is kept until the code is verified, so
	// wrong codes add up across challenges.
	if user.TwoFactorEnabled {
		code, err := token.NewCode()
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		expires := now.Add(s.cfg.TwoFactorTTL)
		user.TwoFactorCode = code
		user.TwoFactorExpires = &expires
		if err := s.persist(ctx, user); err != nil {
			return nil, err
		}

		msg := notify.Message{
			To:      user.Email,
			Subject: "Your verification code",
			Body:    fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", code, int(s.cfg.TwoFactorTTL.Minutes())),
		}
		if err := s.notifier.Send(ctx, msg); err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		s.metrics.CounterLogins.WithLabelValues(metrics.LoginTwoFactorRequired).Inc()
		return &LoginResult{User: &user, RequiresTwoFactor: true}, nil
	}

	clearFailures(&user)
	return s.completeLogin(ctx, user, now, rememberMe)
}

// VerifyTwoFactor completes a login that is waiting for a code.
func (s *authService) VerifyTwoFactor(ctx context.Context, email, code string, rememberMe bool) (*LoginResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	user, ok := s.users.FindByEmail(email)
	if !ok || user.TwoFactorCode == "" || user.TwoFactorExpires == nil {
		return nil, apperrors.ErrNoPendingChallenge
	}
	if user.IsLocked(now) {
		return nil, apperrors.Locked(user.LockUntil.Sub(now))
	}
	if now.After(*user.TwoFactorExpires) {
		user.TwoFactorCode = ""
		user.TwoFactorExpires = nil
		if err := s.persist(ctx, user); err != nil {
			return nil, err
		}
		return nil, apperrors.ErrCodeExpired
	}
	s.expireFailures(&user, now)

	if subtle.ConstantTimeCompare([]byte(code), []byte(user.TwoFactorCode)) != 1 {
		if err := s.recordFailure(ctx, &user, now); errors.Is(err, apperrors.ErrInternalServer) {
			return nil, err
		}
		if user.AccountLocked {
			return nil, apperrors.Locked(s.cfg.LockoutDuration)
		}
		return nil, apperrors.ErrCodeMismatch
	}

	user.TwoFactorCode = ""
	user.TwoFactorExpires = nil
	clearFailures(&user)
	return s.completeLogin(ctx, user, now, rememberMe)
}

// ValidateToken checks a session token and its CSRF pair. The user must
// still exist.
func (s *authService) ValidateToken(_ context.Context, tokenString, csrf string) (*token.Identity, error) {
	id, err := s.tokens.ParseSession(tokenString, csrf)
	if err != nil {
		var appErr *apperrors.AppError
		result := "error"
		if errors.As(err, &appErr) {
			result = appErr.Code
		}
		s.metrics.CounterTokenChecks.WithLabelValues(result).Inc()
		return nil, err
	}
	if _, ok := s.users.FindByID(id.UserID); !ok {
		s.metrics.CounterTokenChecks.WithLabelValues(apperrors.ErrTokenMalformed.Code).Inc()
		return nil, apperrors.WithMessage(apperrors.ErrTokenMalformed, "Token refers to an unknown user")
	}
	s.metrics.CounterTokenChecks.WithLabelValues("ok").Inc()
	return id, nil
}

// RequestPasswordReset always answers with the same message and a reset
// token. Unknown addresses get a token that can never be redeemed and no
// message is sent.
func (s *authService) RequestPasswordReset(ctx context.Context, email string) (*ResetRequest, error) {
	email = password.NormalizeEmail(email)
	if !password.IsValidEmail(email) {
		return nil, apperrors.ErrInvalidEmail
	}

	code, err := token.NewCode()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	resetToken, _, err := s.tokens.IssueReset(email, code)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if user, ok := s.users.FindByEmail(email); ok {
		msg := notify.Message{
			To:      user.Email,
			Subject: "Password reset code",
			Body:    fmt.Sprintf("Your password reset code is %s. It expires in 1 hour.", code),
		}
		if err := s.notifier.Send(ctx, msg); err != nil {
			logger.Get().Errorw("failed to send reset code", "user_id", user.ID, "error", err)
		}
	}

	s.metrics.CounterPasswordResets.WithLabelValues("requested").Inc()
	return &ResetRequest{Message: ResetRequestedMessage, ResetToken: resetToken}, nil
}

// VerifyResetCode checks a reset token and code without consuming them.
func (s *authService) VerifyResetCode(ctx context.Context, resetToken, code string) error {
	_, err := s.checkReset(ctx, resetToken, code)
	if err == nil {
		s.metrics.CounterPasswordResets.WithLabelValues("verified").Inc()
	}
	return err
}

// ResetPassword sets a new password and consumes the reset token.
func (s *authService) ResetPassword(ctx context.Context, resetToken, code, newPassword, confirm string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	reset, err := s.checkReset(ctx, resetToken, code)
	if err != nil {
		return err
	}
	if !password.IsStrong(newPassword) {
		return apperrors.ErrWeakPassword
	}
	if newPassword != confirm {
		return apperrors.ErrPasswordMismatch
	}

	user, ok := s.users.FindByEmail(reset.Email)
	if !ok {
		return apperrors.ErrResetInvalid
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	user.Password = hash
	clearFailures(&user)

	if err := s.consumed.Consume(ctx, reset.ID, reset.ExpiresAt); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if err := s.persist(ctx, user); err != nil {
		return err
	}

	s.metrics.CounterPasswordResets.WithLabelValues("completed").Inc()
	logger.Get().Infow("Password reset", "user_id", user.ID)
	return nil
}

// SetTwoFactor turns two-factor login on or off for a user.
func (s *authService) SetTwoFactor(ctx context.Context, userID string, enabled bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users.FindByID(userID)
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	user.TwoFactorEnabled = enabled
	if !enabled {
		user.TwoFactorCode = ""
		user.TwoFactorExpires = nil
	}
	if err := s.persist(ctx, user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUser returns the registered user with userID.
func (s *authService) GetUser(userID string) (*models.User, error) {
	user, ok := s.users.FindByID(userID)
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &user, nil
}

func (s *authService) checkReset(ctx context.Context, resetToken, code string) (*token.Reset, error) {
	reset, claims, err := s.tokens.ParseReset(resetToken)
	if err != nil {
		return nil, err
	}
	used, err := s.consumed.IsConsumed(ctx, reset.ID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if used {
		return nil, apperrors.ErrResetAlreadyUsed
	}
	if err := s.tokens.CheckResetCode(claims, code); err != nil {
		return nil, err
	}
	return reset, nil
}

func (s *authService) completeLogin(ctx context.Context, user models.User, now time.Time, rememberMe bool) (*LoginResult, error) {
	user.LastLogin = &now
	if err := s.persist(ctx, user); err != nil {
		return nil, err
	}

	session, err := s.tokens.IssueSession(user.ID, user.Email, rememberMe)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	s.metrics.CounterLogins.WithLabelValues(metrics.LoginSuccess).Inc()
	return &LoginResult{User: &user, Session: session}, nil
}

// expireFailures drops a lapsed lock and forgets failures older than the
// attempt window.
func (s *authService) expireFailures(user *models.User, now time.Time) {
	if user.AccountLocked && !user.IsLocked(now) {
		clearFailures(user)
		return
	}
	if user.LastFailedAt != nil && now.Sub(*user.LastFailedAt) > s.cfg.AttemptWindow {
		user.FailedAttempts = 0
		user.LastFailedAt = nil
	}
}

// recordFailure counts a failed attempt, locking the account when the
// limit is reached. It always reports invalid credentials unless the
// registry could not be written.
func (s *authService) recordFailure(ctx context.Context, user *models.User, now time.Time) error {
	user.FailedAttempts++
	user.LastFailedAt = &now
	if user.FailedAttempts >= s.cfg.MaxLoginAttempts {
		until := now.Add(s.cfg.LockoutDuration)
		user.AccountLocked = true
		user.LockUntil = &until
		s.metrics.CounterLockouts.Inc()
		logger.Get().Warnw("Account locked after repeated failures", "user_id", user.ID, "attempts", user.FailedAttempts)
	}
	if err := s.persist(ctx, *user); err != nil {
		return err
	}
	s.metrics.CounterLogins.WithLabelValues(metrics.LoginFailed).Inc()
	return apperrors.ErrInvalidCredentials
}

func clearFailures(user *models.User) {
	user.FailedAttempts = 0
	user.LastFailedAt = nil
	user.AccountLocked = false
	user.LockUntil = nil
}

func (s *authService) persist(ctx context.Context, user models.User) error {
	if err := s.users.Update(user); err != nil {
		return err
	}
	if err := s.users.Save(ctx); err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
