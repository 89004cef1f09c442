package services

import (
	"context"
	"time"

	"fittrack/internal/models"
	"fittrack/internal/pagination"
	"fittrack/internal/progress"
	"fittrack/internal/token"
)

// LoginResult is the outcome of a successful password check. Exactly one
// of Session and RequiresTwoFactor is set.
type LoginResult struct {
	User              *models.User
	Session           *token.SessionToken
	RequiresTwoFactor bool
}

// ResetRequest is returned for every password reset request, whether or
// not the address is registered.
type ResetRequest struct {
	Message    string `json:"message"`
	ResetToken string `json:"reset_token"`
}

// AuthServicer defines the contract for registration, login and token handling.
type AuthServicer interface {
	Register(ctx context.Context, email, password, confirm string) (*models.User, error)
	Login(ctx context.Context, email, password string, rememberMe bool) (*LoginResult, error)
	VerifyTwoFactor(ctx context.Context, email, code string, rememberMe bool) (*LoginResult, error)
	ValidateToken(ctx context.Context, tokenString, csrf string) (*token.Identity, error)
	RequestPasswordReset(ctx context.Context, email string) (*ResetRequest, error)
	VerifyResetCode(ctx context.Context, resetToken, code string) error
	ResetPassword(ctx context.Context, resetToken, code, newPassword, confirm string) error
	SetTwoFactor(ctx context.Context, userID string, enabled bool) (*models.User, error)
	GetUser(userID string) (*models.User, error)
}

// DateFilter narrows activity listings to an inclusive date range.
// Empty bounds are open.
type DateFilter struct {
	From string
	To   string
}

// ActivityServicer defines the contract for logging and listing activity records.
type ActivityServicer interface {
	LogWorkout(userID, date, title string, workoutType models.WorkoutType, durationMin, calories int, notes string) (*models.Workout, error)
	ListWorkouts(userID string, page pagination.PageRequest, filter DateFilter) (*pagination.PageResponse[models.Workout], error)
	DeleteWorkout(userID, workoutID string) error
	LogNutrition(userID, date string, calories, protein, carbs, fat float64, notes string) (*models.NutritionLog, error)
	ListNutrition(userID string, page pagination.PageRequest, filter DateFilter) (*pagination.PageResponse[models.NutritionLog], error)
	LogWater(userID, date string, amountML int) (*models.WaterLog, error)
	ListWater(userID string, page pagination.PageRequest, filter DateFilter) (*pagination.PageResponse[models.WaterLog], error)
	LogWeight(userID, date string, weightKg float64) (*models.WeightEntry, error)
	ListWeights(userID string, page pagination.PageRequest, filter DateFilter) (*pagination.PageResponse[models.WeightEntry], error)
	GetProfile(userID string) (*models.Profile, error)
	UpsertProfile(userID string, update ProfileUpdate) (*models.Profile, error)
}

// ProfileUpdate carries the optional fields of a profile change. Nil
// fields are left untouched.
type ProfileUpdate struct {
	Name              *string
	HeightCm          *float64
	TargetWeight      *float64
	TargetCalories    *float64
	TargetProtein     *float64
	WaterGoalML       *int
	WeeklyWorkoutGoal *int
	GoalDescription   *string
}

// ProgressServicer defines the contract for progress reports.
type ProgressServicer interface {
	GetReport(userID string) (*progress.Report, error)
	Preview(in progress.Input) *progress.Report
	Now() time.Time
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
	ListForUser(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.AuditLog], error)
}
