package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "fittrack/internal/errors"
	"fittrack/internal/models"
	"fittrack/internal/pagination"
	"fittrack/internal/progress"
)

// activityService handles logging and listing of activity records.
type activityService struct {
	db *gorm.DB
}

// NewActivityService creates a new ActivityServicer.
func NewActivityService(db *gorm.DB) ActivityServicer {
	return &activityService{db: db}
}

func validDate(date string) error {
	if _, err := time.Parse(progress.DateLayout, date); err != nil {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be formatted as YYYY-MM-DD")
	}
	return nil
}

// LogWorkout records a workout session.
func (s *activityService) LogWorkout(userID, date, title string, workoutType models.WorkoutType, durationMin, calories int, notes string) (*models.Workout, error) {
	if err := validDate(date); err != nil {
		return nil, err
	}
	if durationMin < 0 || calories < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "duration and calories must not be negative")
	}
	if workoutType == "" {
		workoutType = models.WorkoutTypeMixed
	}

	w := &models.Workout{
		UserID:         userID,
		Date:           date,
		Title:          title,
		Type:           workoutType,
		DurationMin:    durationMin,
		CaloriesBurned: calories,
		Notes:          notes,
	}
	if err := s.db.Create(w).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return w, nil
}

// ListWorkouts returns a user's workouts, newest first.
func (s *activityService) ListWorkouts(userID string, page pagination.PageRequest, filter DateFilter) (*pagination.PageResponse[models.Workout], error) {
	return list[models.Workout](s.db, userID, page, filter)
}

// DeleteWorkout removes one of the user's workouts.
func (s *activityService) DeleteWorkout(userID, workoutID string) error {
	res := s.db.Where("id = ? AND user_id = ?", workoutID, userID).Delete(&models.Workout{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// LogNutrition records a nutrition entry.
func (s *activityService) LogNutrition(userID, date string, calories, protein, carbs, fat float64, notes string) (*models.NutritionLog, error) {
	if err := validDate(date); err != nil {
		return nil, err
	}
	if calories < 0 || protein < 0 || carbs < 0 || fat < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "nutrition values must not be negative")
	}

	n := &models.NutritionLog{
		UserID:   userID,
		Date:     date,
		Calories: calories,
		Protein:  protein,
		Carbs:    carbs,
		Fat:      fat,
		Notes:    notes,
	}
	if err := s.db.Create(n).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return n, nil
}

// ListNutrition returns a user's nutrition entries, newest first.
func (s *activityService) ListNutrition(userID string, page pagination.PageRequest, filter DateFilter) (*pagination.PageResponse[models.NutritionLog], error) {
	return list[models.NutritionLog](s.db, userID, page, filter)
}

// LogWater records a drink.
func (s *activityService) LogWater(userID, date string, amountML int) (*models.WaterLog, error) {
	if err := validDate(date); err != nil {
		return nil, err
	}
	if amountML <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be positive")
	}

	w := &models.WaterLog{UserID: userID, Date: date, AmountML: amountML}
	if err := s.db.Create(w).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return w, nil
}

// ListWater returns a user's water logs, newest first.
func (s *activityService) ListWater(userID string, page pagination.PageRequest, filter DateFilter) (*pagination.PageResponse[models.WaterLog], error) {
	return list[models.WaterLog](s.db, userID, page, filter)
}

// LogWeight records a weigh-in.
func (s *activityService) LogWeight(userID, date string, weightKg float64) (*models.WeightEntry, error) {
	if err := validDate(date); err != nil {
		return nil, err
	}
	if weightKg <= 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "weight must be positive")
	}

	w := &models.WeightEntry{UserID: userID, Date: date, WeightKg: weightKg}
	if err := s.db.Create(w).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return w, nil
}

// ListWeights returns a user's weigh-ins, newest first.
func (s *activityService) ListWeights(userID string, page pagination.PageRequest, filter DateFilter) (*pagination.PageResponse[models.WeightEntry], error) {
	return list[models.WeightEntry](s.db, userID, page, filter)
}

// GetProfile returns the user's goal profile.
func (s *activityService) GetProfile(userID string) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrProfileNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &profile, nil
}

// UpsertProfile applies update to the user's profile, creating it first if needed.
func (s *activityService) UpsertProfile(userID string, update ProfileUpdate) (*models.Profile, error) {
	if err := update.validate(); err != nil {
		return nil, err
	}

	var profile models.Profile
	err := s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ?", userID).First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			profile = models.Profile{UserID: userID, WaterGoalML: progress.DefaultWaterGoalML}
		} else if err != nil {
			return err
		}
		update.apply(&profile)
		return tx.Save(&profile).Error
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &profile, nil
}

func (u ProfileUpdate) validate() error {
	for _, v := range []*float64{u.HeightCm, u.TargetWeight, u.TargetCalories, u.TargetProtein} {
		if v != nil && *v < 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "profile targets must not be negative")
		}
	}
	if u.WaterGoalML != nil && *u.WaterGoalML < 0 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "water goal must not be negative")
	}
	if u.WeeklyWorkoutGoal != nil && (*u.WeeklyWorkoutGoal < 0 || *u.WeeklyWorkoutGoal > 14) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "weekly workout goal must be between 0 and 14")
	}
	return nil
}

func (u ProfileUpdate) apply(p *models.Profile) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.HeightCm != nil {
		p.HeightCm = *u.HeightCm
	}
	if u.TargetWeight != nil {
		p.TargetWeight = *u.TargetWeight
	}
	if u.TargetCalories != nil {
		p.TargetCalories = *u.TargetCalories
	}
	if u.TargetProtein != nil {
		p.TargetProtein = *u.TargetProtein
	}
	if u.WaterGoalML != nil {
		p.WaterGoalML = *u.WaterGoalML
	}
	if u.WeeklyWorkoutGoal != nil {
		p.WeeklyWorkoutGoal = *u.WeeklyWorkoutGoal
	}
	if u.GoalDescription != nil {
		p.GoalDescription = *u.GoalDescription
	}
}

// list pages through one user's records of type T, newest date first.
func list[T any](db *gorm.DB, userID string, page pagination.PageRequest, filter DateFilter) (*pagination.PageResponse[T], error) {
	page.Defaults()
	if filter.From != "" {
		if err := validDate(filter.From); err != nil {
			return nil, err
		}
	}
	if filter.To != "" {
		if err := validDate(filter.To); err != nil {
			return nil, err
		}
	}

	query := db.Model(new(T)).Where("user_id = ?", userID).Scopes(pagination.Between("date", filter.From, filter.To))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var items []T
	if err := query.Order("date DESC, created_at DESC").Scopes(pagination.Paginate(page)).Find(&items).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	resp := pagination.NewPageResponse(items, page.Page, page.PageSize, total)
	return &resp, nil
}
