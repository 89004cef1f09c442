package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"fittrack/internal/models"
	"fittrack/internal/pagination"
	"fittrack/internal/progress"
	"fittrack/internal/services"
	"fittrack/internal/token"
	"fittrack/internal/validator"
)

// --- mock services ---

type mockAuthService struct {
	registerFn             func(ctx context.Context, email, password, confirm string) (*models.User, error)
	loginFn                func(ctx context.Context, email, password string, rememberMe bool) (*services.LoginResult, error)
	verifyTwoFactorFn      func(ctx context.Context, email, code string, rememberMe bool) (*services.LoginResult, error)
	validateTokenFn        func(ctx context.Context, tokenString, csrf string) (*token.Identity, error)
	requestPasswordResetFn func(ctx context.Context, email string) (*services.ResetRequest, error)
	verifyResetCodeFn      func(ctx context.Context, resetToken, code string) error
	resetPasswordFn        func(ctx context.Context, resetToken, code, newPassword, confirm string) error
	setTwoFactorFn         func(ctx context.Context, userID string, enabled bool) (*models.User, error)
	getUserFn              func(userID string) (*models.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password, confirm string) (*models.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, email, password, confirm)
	}
	return &models.User{ID: "u-1", Email: email}, nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string, rememberMe bool) (*services.LoginResult, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password, rememberMe)
	}
	return sessionResult(email), nil
}

func (m *mockAuthService) VerifyTwoFactor(ctx context.Context, email, code string, rememberMe bool) (*services.LoginResult, error) {
	if m.verifyTwoFactorFn != nil {
		return m.verifyTwoFactorFn(ctx, email, code, rememberMe)
	}
	return sessionResult(email), nil
}

func (m *mockAuthService) ValidateToken(ctx context.Context, tokenString, csrf string) (*token.Identity, error) {
	if m.validateTokenFn != nil {
		return m.validateTokenFn(ctx, tokenString, csrf)
	}
	return &token.Identity{UserID: "u-1", Email: "a@test.com"}, nil
}

func (m *mockAuthService) RequestPasswordReset(ctx context.Context, email string) (*services.ResetRequest, error) {
	if m.requestPasswordResetFn != nil {
		return m.requestPasswordResetFn(ctx, email)
	}
	return &services.ResetRequest{Message: services.ResetRequestedMessage, ResetToken: "reset"}, nil
}

func (m *mockAuthService) VerifyResetCode(ctx context.Context, resetToken, code string) error {
	if m.verifyResetCodeFn != nil {
		return m.verifyResetCodeFn(ctx, resetToken, code)
	}
	return nil
}

func (m *mockAuthService) ResetPassword(ctx context.Context, resetToken, code, newPassword, confirm string) error {
	if m.resetPasswordFn != nil {
		return m.resetPasswordFn(ctx, resetToken, code, newPassword, confirm)
	}
	return nil
}

func (m *mockAuthService) SetTwoFactor(ctx context.Context, userID string, enabled bool) (*models.User, error) {
	if m.setTwoFactorFn != nil {
		return m.setTwoFactorFn(ctx, userID, enabled)
	}
	return &models.User{ID: userID, TwoFactorEnabled: enabled}, nil
}

func (m *mockAuthService) GetUser(userID string) (*models.User, error) {
	if m.getUserFn != nil {
		return m.getUserFn(userID)
	}
	return &models.User{ID: userID, Email: "a@test.com"}, nil
}

func sessionResult(email string) *services.LoginResult {
	return &services.LoginResult{
		User: &models.User{ID: "u-1", Email: email},
		Session: &token.SessionToken{
			Token:     "signed.jwt.token",
			CSRFToken: "csrf",
			ExpiresAt: time.Date(2025, 3, 11, 8, 0, 0, 0, time.UTC),
		},
	}
}

type mockActivityService struct {
	logWorkoutFn    func(userID, date, title string, workoutType models.WorkoutType, durationMin, calories int, notes string) (*models.Workout, error)
	listWorkoutsFn  func(userID string, page pagination.PageRequest, filter services.DateFilter) (*pagination.PageResponse[models.Workout], error)
	deleteWorkoutFn func(userID, workoutID string) error
	logNutritionFn  func(userID, date string, calories, protein, carbs, fat float64, notes string) (*models.NutritionLog, error)
	logWaterFn      func(userID, date string, amountML int) (*models.WaterLog, error)
	logWeightFn     func(userID, date string, weightKg float64) (*models.WeightEntry, error)
	getProfileFn    func(userID string) (*models.Profile, error)
	upsertProfileFn func(userID string, update services.ProfileUpdate) (*models.Profile, error)
}

func (m *mockActivityService) LogWorkout(userID, date, title string, workoutType models.WorkoutType, durationMin, calories int, notes string) (*models.Workout, error) {
	if m.logWorkoutFn != nil {
		return m.logWorkoutFn(userID, date, title, workoutType, durationMin, calories, notes)
	}
	return &models.Workout{UserID: userID, Date: date, Type: workoutType}, nil
}

func (m *mockActivityService) ListWorkouts(userID string, page pagination.PageRequest, filter services.DateFilter) (*pagination.PageResponse[models.Workout], error) {
	if m.listWorkoutsFn != nil {
		return m.listWorkoutsFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse[models.Workout](nil, 1, 20, 0)
	return &resp, nil
}

func (m *mockActivityService) DeleteWorkout(userID, workoutID string) error {
	if m.deleteWorkoutFn != nil {
		return m.deleteWorkoutFn(userID, workoutID)
	}
	return nil
}

func (m *mockActivityService) LogNutrition(userID, date string, calories, protein, carbs, fat float64, notes string) (*models.NutritionLog, error) {
	if m.logNutritionFn != nil {
		return m.logNutritionFn(userID, date, calories, protein, carbs, fat, notes)
	}
	return &models.NutritionLog{UserID: userID, Date: date}, nil
}

func (m *mockActivityService) ListNutrition(_ string, _ pagination.PageRequest, _ services.DateFilter) (*pagination.PageResponse[models.NutritionLog], error) {
	resp := pagination.NewPageResponse[models.NutritionLog](nil, 1, 20, 0)
	return &resp, nil
}

func (m *mockActivityService) LogWater(userID, date string, amountML int) (*models.WaterLog, error) {
	if m.logWaterFn != nil {
		return m.logWaterFn(userID, date, amountML)
	}
	return &models.WaterLog{UserID: userID, Date: date, AmountML: amountML}, nil
}

func (m *mockActivityService) ListWater(_ string, _ pagination.PageRequest, _ services.DateFilter) (*pagination.PageResponse[models.WaterLog], error) {
	resp := pagination.NewPageResponse[models.WaterLog](nil, 1, 20, 0)
	return &resp, nil
}

func (m *mockActivityService) LogWeight(userID, date string, weightKg float64) (*models.WeightEntry, error) {
	if m.logWeightFn != nil {
		return m.logWeightFn(userID, date, weightKg)
	}
	return &models.WeightEntry{UserID: userID, Date: date, WeightKg: weightKg}, nil
}

func (m *mockActivityService) ListWeights(_ string, _ pagination.PageRequest, _ services.DateFilter) (*pagination.PageResponse[models.WeightEntry], error) {
	resp := pagination.NewPageResponse[models.WeightEntry](nil, 1, 20, 0)
	return &resp, nil
}

func (m *mockActivityService) GetProfile(userID string) (*models.Profile, error) {
	if m.getProfileFn != nil {
		return m.getProfileFn(userID)
	}
	return &models.Profile{UserID: userID}, nil
}

func (m *mockActivityService) UpsertProfile(userID string, update services.ProfileUpdate) (*models.Profile, error) {
	if m.upsertProfileFn != nil {
		return m.upsertProfileFn(userID, update)
	}
	return &models.Profile{UserID: userID}, nil
}

type mockProgressService struct {
	getReportFn func(userID string) (*progress.Report, error)
	now         time.Time
}

func (m *mockProgressService) GetReport(userID string) (*progress.Report, error) {
	if m.getReportFn != nil {
		return m.getReportFn(userID)
	}
	return &progress.Report{}, nil
}

func (m *mockProgressService) Preview(in progress.Input) *progress.Report {
	r := progress.Compute(in, m.Now())
	return &r
}

func (m *mockProgressService) Now() time.Time { return m.now }

type auditEntry struct {
	userID, action, resourceType string
}

type mockAuditService struct {
	mu      sync.Mutex
	entries []auditEntry

	listForUserFn func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}

func (m *mockAuditService) Log(userID, action, resourceType, _, _ string, _ map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, auditEntry{userID, action, resourceType})
}

func (m *mockAuditService) ListForUser(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error) {
	if m.listForUserFn != nil {
		return m.listForUserFn(userID, page)
	}
	resp := pagination.NewPageResponse[models.AuditLog](nil, 1, pagination.DefaultPageSize, 0)
	return &resp, nil
}

func (m *mockAuditService) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.action
	}
	return out
}

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
