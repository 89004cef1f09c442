package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"fittrack/internal/clock"
	"fittrack/internal/kvstore"
	"fittrack/internal/logger"
	"fittrack/internal/metrics"
	"fittrack/internal/middleware"
	"fittrack/internal/notify"
	"fittrack/internal/password"
	"fittrack/internal/ratelimit"
	"fittrack/internal/registry"
	"fittrack/internal/server"
	"fittrack/internal/services"
	tu "fittrack/internal/testutil"
	"fittrack/internal/token"
	"fittrack/internal/validator"
)

const (
	strongPassword = "Sup3r$ecret"
	metricsAPIKey  = "metrics-key"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB       *gorm.DB
	Router   *gin.Engine
	Clock    *clock.Fake
	Outbox   *notify.Outbox
	Metrics  *metrics.Manager
	Registry *prometheus.Registry
}

// authPair is what a client keeps after logging in.
type authPair struct {
	Token string
	CSRF  string
}

var codePattern = regexp.MustCompile(`\b\d{6}\b`)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupApp creates a fresh application whose auth routes allow plenty of requests.
func setupApp(t *testing.T) *testApp {
	return setupAppWithLimit(t, 1000)
}

// setupAppWithLimit creates a fresh application backed by an isolated
// SQLite database, with the auth routes limited to max requests per IP.
func setupAppWithLimit(t *testing.T, max int) *testApp {
	t.Helper()

	db := tu.SetupTestDB(t)
	t.Cleanup(func() { tu.TeardownTestDB(t, db) })

	clk := clock.NewFake(time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC))
	outbox := notify.NewOutbox()
	m, reg := metrics.NewTestManagerAndRegistry()

	store := kvstore.NewSQL(db)
	users := registry.New(store)
	if err := users.Load(context.Background()); err != nil {
		t.Fatalf("failed to load registry: %v", err)
	}

	authService := services.NewAuthService(services.AuthDeps{
		Users:    users,
		Consumed: registry.NewConsumedTokens(store),
		Tokens:   token.NewManager(token.DefaultConfig("integration-session", "integration-reset"), clk),
		Hasher:   password.NewHasher(1000),
		Notifier: outbox,
		Clock:    clk,
		Metrics:  m,
		Config:   services.DefaultAuthConfig(),
	})

	router := server.NewRouter(server.Deps{
		Auth:           authService,
		Activity:       services.NewActivityService(db),
		Progress:       services.NewProgressService(db, clk, time.UTC, m),
		Audit:          services.NewAuditService(db),
		AuthLimiter:    ratelimit.NewMemory(max, 15*time.Minute, clk),
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		MetricsAPIKey:  metricsAPIKey,
	})

	return &testApp{DB: db, Router: router, Clock: clk, Outbox: outbox, Metrics: m, Registry: reg}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body string, auth *authPair) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != nil {
		req.Header.Set("Authorization", "Bearer "+auth.Token)
		req.Header.Set(middleware.CSRFHeader, auth.CSRF)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// requestWithHeader makes a GET-style request carrying a single extra header.
func (app *testApp) requestWithHeader(method, path, header, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set(header, value)
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// errorCode extracts error.code from an error response.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	result := parseJSON(t, rec)
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got: %s", rec.Body.String())
	}
	code, _ := errObj["code"].(string)
	return code
}

// expectError fails unless rec carries status and error code.
func expectError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("expected %d, got %d: %s", status, rec.Code, rec.Body.String())
	}
	if got := errorCode(t, rec); got != code {
		t.Fatalf("expected error code %s, got %s", code, got)
	}
}

// registerUser registers a new user and returns its ID.
func (app *testApp) registerUser(t *testing.T, email string) string {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q,"confirm_password":%q}`, email, strongPassword, strongPassword)
	rec := app.request("POST", "/api/v1/auth/register", body, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	user := parseJSON(t, rec)["user"].(map[string]interface{})
	return user["id"].(string)
}

// loginUser logs in and returns the session pair.
func (app *testApp) loginUser(t *testing.T, email, pw string) *authPair {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, pw)
	rec := app.request("POST", "/api/v1/auth/login", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	return pairFrom(t, rec)
}

// registerAndLogin is registerUser followed by loginUser.
func (app *testApp) registerAndLogin(t *testing.T, email string) *authPair {
	t.Helper()
	app.registerUser(t, email)
	return app.loginUser(t, email, strongPassword)
}

// lastCode reads the most recent six-digit code mailed to email.
func (app *testApp) lastCode(t *testing.T, email string) string {
	t.Helper()
	msg, ok := app.Outbox.Last(email)
	if !ok {
		t.Fatalf("no message sent to %s", email)
	}
	code := codePattern.FindString(msg.Body)
	if code == "" {
		t.Fatalf("no code in message %q", msg.Body)
	}
	return code
}

func pairFrom(t *testing.T, rec *httptest.ResponseRecorder) *authPair {
	t.Helper()
	result := parseJSON(t, rec)
	tok, _ := result["token"].(string)
	csrf, _ := result["csrf_token"].(string)
	if tok == "" || csrf == "" {
		t.Fatalf("expected token and csrf_token, got: %s", rec.Body.String())
	}
	return &authPair{Token: tok, CSRF: csrf}
}
