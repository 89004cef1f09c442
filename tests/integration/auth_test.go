package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"fittrack/internal/models"
	"fittrack/internal/services"
)

func TestAuthFlow_RegisterLoginSession(t *testing.T) {
	app := setupApp(t)

	// Step 1: Register
	userID := app.registerUser(t, "Auth@Test.com")
	if userID == "" {
		t.Fatal("expected non-empty user ID")
	}

	// Step 2: Login; email lookup ignores case
	pair := app.loginUser(t, "auth@test.com", strongPassword)

	// Step 3: Session with both halves of the pair
	rec := app.request("GET", "/api/v1/auth/session", "", pair)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	user := result["user"].(map[string]interface{})
	if user["email"] != "auth@test.com" {
		t.Errorf("expected email auth@test.com, got %v", user["email"])
	}
	if user["id"] != userID {
		t.Errorf("expected id %s, got %v", userID, user["id"])
	}
	if user["last_login"] == nil {
		t.Error("expected last_login to be set after login")
	}
	expires, err := time.Parse(time.RFC3339, result["expires_at"].(string))
	if err != nil {
		t.Fatalf("bad expires_at: %v", err)
	}
	if want := app.Clock.Now().Add(24 * time.Hour); !expires.Equal(want) {
		t.Errorf("expected session to expire at %v, got %v", want, expires)
	}

	// Step 4: Logout
	rec = app.request("POST", "/api/v1/auth/logout", "", pair)
	if rec.Code != http.StatusOK {
		t.Fatalf("logout failed: %d %s", rec.Code, rec.Body.String())
	}

	var actions []string
	app.DB.Model(&models.AuditLog{}).Order("created_at ASC, id ASC").Pluck("action", &actions)
	want := []string{services.AuditRegister, services.AuditLogin, services.AuditLogout}
	if fmt.Sprint(actions) != fmt.Sprint(want) {
		t.Errorf("expected audit trail %v, got %v", want, actions)
	}

	// Step 5: The same trail is visible to the user, newest first
	rec = app.request("GET", "/api/v1/auth/activity", "", pair)
	if rec.Code != http.StatusOK {
		t.Fatalf("activity failed: %d %s", rec.Code, rec.Body.String())
	}
	data := parseJSON(t, rec)["data"].([]interface{})
	if len(data) != 3 || data[0].(map[string]interface{})["action"] != services.AuditLogout {
		t.Errorf("unexpected activity %v", data)
	}
}

func TestAuthFlow_RememberMe(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "remember@test.com")

	body := fmt.Sprintf(`{"email":"remember@test.com","password":%q,"remember_me":true}`, strongPassword)
	rec := app.request("POST", "/api/v1/auth/login", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	pair := pairFrom(t, rec)

	// A plain session would have lapsed by now.
	app.Clock.Advance(29 * 24 * time.Hour)
	rec = app.request("GET", "/api/v1/auth/session", "", pair)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected remembered session to be valid, got %d: %s", rec.Code, rec.Body.String())
	}

	app.Clock.Advance(2 * 24 * time.Hour)
	rec = app.request("GET", "/api/v1/auth/session", "", pair)
	expectError(t, rec, http.StatusUnauthorized, "TOKEN_EXPIRED")
}

func TestAuthFlow_RegisterValidation(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "taken@test.com")

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{
			name:   "duplicate email",
			body:   fmt.Sprintf(`{"email":"TAKEN@test.com","password":%q,"confirm_password":%q}`, strongPassword, strongPassword),
			status: http.StatusConflict,
			code:   "DUPLICATE_EMAIL",
		},
		{
			name:   "weak password",
			body:   `{"email":"weak@test.com","password":"password","confirm_password":"password"}`,
			status: http.StatusBadRequest,
			code:   "WEAK_PASSWORD",
		},
		{
			name:   "mismatch",
			body:   fmt.Sprintf(`{"email":"mismatch@test.com","password":%q,"confirm_password":"Other1$pass"}`, strongPassword),
			status: http.StatusBadRequest,
			code:   "PASSWORD_MISMATCH",
		},
		{
			name:   "bad email",
			body:   fmt.Sprintf(`{"email":"not-an-email","password":%q,"confirm_password":%q}`, strongPassword, strongPassword),
			status: http.StatusBadRequest,
			code:   "INVALID_EMAIL",
		},
		{
			name:   "missing fields",
			body:   `{"email":"x@test.com"}`,
			status: http.StatusBadRequest,
			code:   "INVALID_INPUT",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.request("POST", "/api/v1/auth/register", tt.body, nil)
			expectError(t, rec, tt.status, tt.code)
		})
	}
}

func TestAuthFlow_TwoFactor(t *testing.T) {
	app := setupApp(t)
	pair := app.registerAndLogin(t, "2fa@test.com")

	rec := app.request("PUT", "/api/v1/auth/2fa", `{"enabled":true}`, pair)
	if rec.Code != http.StatusOK {
		t.Fatalf("enable 2fa failed: %d %s", rec.Code, rec.Body.String())
	}
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	if user["two_factor_enabled"] != true {
		t.Fatal("expected two_factor_enabled to be true")
	}

	// Password alone now only starts a challenge.
	body := fmt.Sprintf(`{"email":"2fa@test.com","password":%q}`, strongPassword)
	rec = app.request("POST", "/api/v1/auth/login", body, nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	if parseJSON(t, rec)["requires_two_factor"] != true {
		t.Fatal("expected requires_two_factor")
	}
	code := app.lastCode(t, "2fa@test.com")

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	rec = app.request("POST", "/api/v1/auth/2fa/verify", fmt.Sprintf(`{"email":"2fa@test.com","code":%q}`, wrong), nil)
	expectError(t, rec, http.StatusUnauthorized, "CODE_MISMATCH")

	rec = app.request("POST", "/api/v1/auth/2fa/verify", fmt.Sprintf(`{"email":"2fa@test.com","code":%q}`, code), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify failed: %d %s", rec.Code, rec.Body.String())
	}
	verified := pairFrom(t, rec)

	rec = app.request("GET", "/api/v1/auth/session", "", verified)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected verified session to work, got %d: %s", rec.Code, rec.Body.String())
	}

	// The code is single use.
	rec = app.request("POST", "/api/v1/auth/2fa/verify", fmt.Sprintf(`{"email":"2fa@test.com","code":%q}`, code), nil)
	expectError(t, rec, http.StatusBadRequest, "NO_PENDING_CHALLENGE")
}

func TestAuthFlow_TwoFactorExpired(t *testing.T) {
	app := setupApp(t)
	pair := app.registerAndLogin(t, "slow@test.com")
	app.request("PUT", "/api/v1/auth/2fa", `{"enabled":true}`, pair)

	body := fmt.Sprintf(`{"email":"slow@test.com","password":%q}`, strongPassword)
	if rec := app.request("POST", "/api/v1/auth/login", body, nil); rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	code := app.lastCode(t, "slow@test.com")

	app.Clock.Advance(11 * time.Minute)
	rec := app.request("POST", "/api/v1/auth/2fa/verify", fmt.Sprintf(`{"email":"slow@test.com","code":%q}`, code), nil)
	expectError(t, rec, http.StatusUnauthorized, "CODE_EXPIRED")
}

func TestAuthFlow_PasswordReset(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "reset@test.com")

	// Step 1: Request a reset
	rec := app.request("POST", "/api/v1/auth/password/forgot", `{"email":"reset@test.com"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("forgot failed: %d %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["message"] != services.ResetRequestedMessage {
		t.Errorf("unexpected message %v", result["message"])
	}
	resetToken := result["reset_token"].(string)
	code := app.lastCode(t, "reset@test.com")

	// Step 2: Verify the code
	body := fmt.Sprintf(`{"reset_token":%q,"code":%q}`, resetToken, code)
	rec = app.request("POST", "/api/v1/auth/password/verify", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify failed: %d %s", rec.Code, rec.Body.String())
	}

	// Step 3: Reset
	const newPassword = "N3w$ecretPass"
	body = fmt.Sprintf(`{"reset_token":%q,"code":%q,"password":%q,"confirm_password":%q}`, resetToken, code, newPassword, newPassword)
	rec = app.request("POST", "/api/v1/auth/password/reset", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset failed: %d %s", rec.Code, rec.Body.String())
	}

	// Step 4: Old password no longer works, new one does
	rec = app.request("POST", "/api/v1/auth/login", fmt.Sprintf(`{"email":"reset@test.com","password":%q}`, strongPassword), nil)
	expectError(t, rec, http.StatusUnauthorized, "INVALID_CREDENTIALS")
	app.loginUser(t, "reset@test.com", newPassword)

	// Step 5: The token cannot be replayed
	rec = app.request("POST", "/api/v1/auth/password/reset", body, nil)
	expectError(t, rec, http.StatusBadRequest, "RESET_ALREADY_USED")
}

func TestAuthFlow_PasswordResetUnknownEmail(t *testing.T) {
	app := setupApp(t)

	rec := app.request("POST", "/api/v1/auth/password/forgot", `{"email":"ghost@test.com"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected same answer for unknown email, got %d: %s", rec.Code, rec.Body.String())
	}
	result := parseJSON(t, rec)
	if result["message"] != services.ResetRequestedMessage {
		t.Errorf("unexpected message %v", result["message"])
	}
	if len(app.Outbox.Messages()) != 0 {
		t.Fatal("expected no message for an unknown address")
	}

	body := fmt.Sprintf(`{"reset_token":%q,"code":"123456"}`, result["reset_token"])
	rec = app.request("POST", "/api/v1/auth/password/verify", body, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected decoy token to be rejected, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthFlow_PasswordResetExpired(t *testing.T) {
	app := setupApp(t)
	app.registerUser(t, "late@test.com")

	rec := app.request("POST", "/api/v1/auth/password/forgot", `{"email":"late@test.com"}`, nil)
	resetToken := parseJSON(t, rec)["reset_token"].(string)
	code := app.lastCode(t, "late@test.com")

	app.Clock.Advance(61 * time.Minute)
	body := fmt.Sprintf(`{"reset_token":%q,"code":%q}`, resetToken, code)
	rec = app.request("POST", "/api/v1/auth/password/verify", body, nil)
	expectError(t, rec, http.StatusBadRequest, "RESET_EXPIRED")
}
