package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fittrack/internal/errors"
	"fittrack/internal/middleware"
	"fittrack/internal/models"
	"fittrack/internal/pagination"
	"fittrack/internal/services"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	authService  services.AuthServicer
	auditService services.AuditServicer
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService services.AuthServicer, auditService services.AuditServicer) *AuthHandler {
	return &AuthHandler{authService: authService, auditService: auditService}
}

// RegisterRequest represents the registration request payload
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,max=255"`
	Password        string `json:"password" binding:"required,max=128"`
	ConfirmPassword string `json:"confirm_password" binding:"required,max=128"`
}

// LoginRequest represents the login request payload
type LoginRequest struct {
	Email      string `json:"email" binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// VerifyTwoFactorRequest completes a login that requires a second factor.
type VerifyTwoFactorRequest struct {
	Email      string `json:"email" binding:"required"`
	Code       string `json:"code" binding:"required,otp_code"`
	RememberMe bool   `json:"remember_me"`
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required"`
}

// VerifyResetRequest checks a reset code without consuming it.
type VerifyResetRequest struct {
	ResetToken string `json:"reset_token" binding:"required"`
	Code       string `json:"code" binding:"required,otp_code"`
}

// ResetPasswordRequest sets a new password with a reset code.
type ResetPasswordRequest struct {
	ResetToken      string `json:"reset_token" binding:"required"`
	Code            string `json:"code" binding:"required,otp_code"`
	Password        string `json:"password" binding:"required,max=128"`
	ConfirmPassword string `json:"confirm_password" binding:"required,max=128"`
}

// TwoFactorRequest toggles two-factor login.
type TwoFactorRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// UserResponse represents the user data in the response. Password and
// verification codes never leave the service.
type UserResponse struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	CreatedAt        time.Time  `json:"created"`
	TwoFactorEnabled bool       `json:"two_factor_enabled"`
	LastLogin        *time.Time `json:"last_login,omitempty"`
}

// AuthResponse represents the authentication response with token
type AuthResponse struct {
	Token     string       `json:"token"`
	CSRFToken string       `json:"csrf_token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// TwoFactorChallengeResponse is returned when a code was sent instead of a token.
type TwoFactorChallengeResponse struct {
	RequiresTwoFactor bool   `json:"requires_two_factor"`
	Message           string `json:"message"`
}

// SessionResponse describes the current session.
type SessionResponse struct {
	User      UserResponse `json:"user"`
	ExpiresAt time.Time    `json:"expires_at"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		CreatedAt:        u.CreatedAt,
		TwoFactorEnabled: u.TwoFactorEnabled,
		LastLogin:        u.LastLogin,
	}
}

func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return false
	}
	return true
}

// Register handles user registration
// @Summary     Register a new user
// @Description Register a new user with email and password. Does not log the user in.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body RegisterRequest true "User registration data"
// @Success     201 {object} UserResponse "User registered"
// @Failure     400 {object} ErrorResponse "Invalid email, weak password or mismatch"
// @Failure     409 {object} ErrorResponse "Email already registered"
// @Failure     429 {object} ErrorResponse "Too many attempts"
// @Router      /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(user.ID, services.AuditRegister, "user", user.ID, c.ClientIP(), nil)

	c.JSON(http.StatusCreated, gin.H{"user": toUserResponse(user)})
}

// Login handles user login
// @Summary     Login user
// @Description Authenticate with email and password. Accounts with two-factor enabled receive a code instead of a token.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body LoginRequest true "User login credentials"
// @Success     200 {object} AuthResponse "User authenticated"
// @Success     202 {object} TwoFactorChallengeResponse "Verification code sent"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     423 {object} ErrorResponse "Account locked"
// @Failure     429 {object} ErrorResponse "Too many attempts"
// @Router      /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password, req.RememberMe)
	if err != nil {
		h.auditService.Log("", services.AuditLoginFailed, "user", "", c.ClientIP(),
			map[string]interface{}{"email": req.Email})
		respondWithError(c, err)
		return
	}

	if result.RequiresTwoFactor {
		c.JSON(http.StatusAccepted, TwoFactorChallengeResponse{
			RequiresTwoFactor: true,
			Message:           "A verification code has been sent to your email",
		})
		return
	}

	h.auditService.Log(result.User.ID, services.AuditLogin, "user", result.User.ID, c.ClientIP(),
		map[string]interface{}{"remember_me": req.RememberMe})
	c.JSON(http.StatusOK, authResponse(result))
}

// VerifyTwoFactor completes a two-factor login
// @Summary     Verify two-factor code
// @Description Exchange the emailed code for a session token
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body VerifyTwoFactorRequest true "Email and code"
// @Success     200 {object} AuthResponse "User authenticated"
// @Failure     400 {object} ErrorResponse "No verification pending"
// @Failure     401 {object} ErrorResponse "Code expired or invalid"
// @Failure     423 {object} ErrorResponse "Account locked"
// @Router      /auth/2fa/verify [post]
func (h *AuthHandler) VerifyTwoFactor(c *gin.Context) {
	var req VerifyTwoFactorRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.VerifyTwoFactor(c.Request.Context(), req.Email, req.Code, req.RememberMe)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(result.User.ID, services.AuditTwoFactor, "user", result.User.ID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, authResponse(result))
}

// ForgotPassword starts a password reset
// @Summary     Request a password reset
// @Description Always answers with the same message; a code is mailed only to registered addresses.
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body ForgotPasswordRequest true "Email"
// @Success     200 {object} services.ResetRequest "Reset requested"
// @Failure     400 {object} ErrorResponse "Invalid email"
// @Router      /auth/password/forgot [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("", services.AuditResetRequested, "user", "", c.ClientIP(), nil)
	c.JSON(http.StatusOK, resp)
}

// VerifyResetCode checks a reset code
// @Summary     Verify a reset code
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body VerifyResetRequest true "Reset token and code"
// @Success     200 {object} MessageResponse "Code is valid"
// @Failure     400 {object} ErrorResponse "Expired, used or invalid"
// @Router      /auth/password/verify [post]
func (h *AuthHandler) VerifyResetCode(c *gin.Context) {
	var req VerifyResetRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.VerifyResetCode(c.Request.Context(), req.ResetToken, req.Code); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "Reset code verified"})
}

// ResetPassword sets a new password
// @Summary     Reset password
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body ResetPasswordRequest true "Reset token, code and new password"
// @Success     200 {object} MessageResponse "Password updated"
// @Failure     400 {object} ErrorResponse "Invalid reset or weak password"
// @Router      /auth/password/reset [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.authService.ResetPassword(c.Request.Context(), req.ResetToken, req.Code, req.Password, req.ConfirmPassword)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log("", services.AuditPasswordReset, "user", "", c.ClientIP(), nil)
	c.JSON(http.StatusOK, MessageResponse{Message: "Password has been reset"})
}

// Session returns the authenticated user and token expiry
// @Summary     Current session
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} SessionResponse "Session"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	resp := SessionResponse{User: toUserResponse(user)}
	if exp, ok := c.Get(middleware.SessionKey); ok {
		resp.ExpiresAt, _ = exp.(time.Time)
	}
	c.JSON(http.StatusOK, resp)
}

// Logout ends the session
// @Summary     Logout
// @Description Tokens are stateless; clients discard their stored pair.
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} MessageResponse "Logged out"
// @Router      /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditLogout, "user", userID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out"})
}

// Activity lists the caller's recent account events
// @Summary     Account activity
// @Description Audit trail of logins, two-factor changes and profile updates, newest first.
// @Tags        auth
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.AuditLog] "Activity"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /auth/activity [get]
func (h *AuthHandler) Activity(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	result, err := h.auditService.ListForUser(userID, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SetTwoFactor enables or disables two-factor login
// @Summary     Toggle two-factor login
// @Tags        auth
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body TwoFactorRequest true "Enabled flag"
// @Success     200 {object} UserResponse "Updated user"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /auth/2fa [put]
func (h *AuthHandler) SetTwoFactor(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TwoFactorRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.SetTwoFactor(c.Request.Context(), userID, *req.Enabled)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditTwoFactorChange, "user", userID, c.ClientIP(),
		map[string]interface{}{"enabled": *req.Enabled})
	c.JSON(http.StatusOK, gin.H{"user": toUserResponse(user)})
}

func authResponse(result *services.LoginResult) AuthResponse {
	return AuthResponse{
		Token:     result.Session.Token,
		CSRFToken: result.Session.CSRFToken,
		ExpiresAt: result.Session.ExpiresAt,
		User:      toUserResponse(result.User),
	}
}
