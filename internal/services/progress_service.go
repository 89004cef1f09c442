package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"fittrack/internal/clock"
	apperrors "fittrack/internal/errors"
	"fittrack/internal/metrics"
	"fittrack/internal/models"
	"fittrack/internal/progress"
)

// progressService loads a user's history and runs the progress engine on it.
type progressService struct {
	db       *gorm.DB
	clock    clock.Clock
	location *time.Location
	metrics  *metrics.Manager
}

// NewProgressService creates a new ProgressServicer. Calendar days are
// taken in loc, or UTC when loc is nil.
func NewProgressService(db *gorm.DB, clk clock.Clock, loc *time.Location, m *metrics.Manager) ProgressServicer {
	if clk == nil {
		clk = clock.Real()
	}
	if loc == nil {
		loc = time.UTC
	}
	if m == nil {
		m = metrics.NewUnregistered()
	}
	return &progressService{db: db, clock: clk, location: loc, metrics: m}
}

// Now returns the current time in the service's location.
func (s *progressService) Now() time.Time {
	return s.clock.Now().In(s.location)
}

// GetReport computes the progress report from everything the user has logged.
func (s *progressService) GetReport(userID string) (*progress.Report, error) {
	in, err := s.loadInput(userID)
	if err != nil {
		return nil, err
	}
	return s.Preview(in), nil
}

// Preview runs the engine on in without touching storage.
func (s *progressService) Preview(in progress.Input) *progress.Report {
	report := progress.Compute(in, s.Now())
	s.metrics.CounterProgressReports.Inc()
	return &report
}

func (s *progressService) loadInput(userID string) (progress.Input, error) {
	var in progress.Input

	var workouts []models.Workout
	if err := s.db.Where("user_id = ?", userID).Order("date ASC, created_at ASC").Find(&workouts).Error; err != nil {
		return in, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, w := range workouts {
		in.Workouts = append(in.Workouts, progress.Workout{
			Date:           w.Date,
			Type:           string(w.Type),
			DurationMin:    w.DurationMin,
			CaloriesBurned: w.CaloriesBurned,
		})
	}

	var nutrition []models.NutritionLog
	if err := s.db.Where("user_id = ?", userID).Order("date ASC, created_at ASC").Find(&nutrition).Error; err != nil {
		return in, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, n := range nutrition {
		in.Nutrition = append(in.Nutrition, progress.Nutrition{
			Date:     n.Date,
			Calories: n.Calories,
			Protein:  n.Protein,
			Carbs:    n.Carbs,
			Fat:      n.Fat,
		})
	}

	var water []models.WaterLog
	if err := s.db.Where("user_id = ?", userID).Order("date ASC, created_at ASC").Find(&water).Error; err != nil {
		return in, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, w := range water {
		in.Water = append(in.Water, progress.Water{Date: w.Date, AmountML: w.AmountML})
	}

	var weights []models.WeightEntry
	if err := s.db.Where("user_id = ?", userID).Order("date ASC, created_at ASC").Find(&weights).Error; err != nil {
		return in, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, w := range weights {
		in.Weights = append(in.Weights, progress.Weight{Date: w.Date, WeightKg: w.WeightKg})
	}

	var profile models.Profile
	err := s.db.Where("user_id = ?", userID).First(&profile).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		in.Goals = progress.Goals{WaterGoalML: progress.DefaultWaterGoalML}
	case err != nil:
		return in, apperrors.Wrap(apperrors.ErrInternalServer, err)
	default:
		in.Goals = progress.Goals{
			TargetWeight:      profile.TargetWeight,
			TargetProtein:     profile.TargetProtein,
			TargetCalories:    profile.TargetCalories,
			WaterGoalML:       profile.WaterGoalML,
			WeeklyWorkoutGoal: profile.WeeklyWorkoutGoal,
			Description:       profile.GoalDescription,
		}
	}

	return in, nil
}
