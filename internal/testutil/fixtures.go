package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"fittrack/internal/models"
	"fittrack/internal/uuid"

	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// NewUserID returns a fresh user id for records that reference a user.
func NewUserID() string {
	return uuid.New()
}

// UniqueEmail returns an address no other fixture in this run has used.
func UniqueEmail() string {
	return fmt.Sprintf("user%d@test.com", nextID())
}

// Day formats the date offset days from ref as YYYY-MM-DD.
func Day(ref time.Time, offset int) string {
	return ref.AddDate(0, 0, offset).Format("2006-01-02")
}

// CreateTestProfile creates a goal profile for userID.
func CreateTestProfile(t *testing.T, db *gorm.DB, userID string) *models.Profile {
	t.Helper()

	profile := &models.Profile{
		UserID:            userID,
		Name:              fmt.Sprintf("Test User %d", nextID()),
		HeightCm:          178,
		TargetWeight:      75,
		TargetCalories:    2200,
		TargetProtein:     140,
		WaterGoalML:       2000,
		WeeklyWorkoutGoal: 4,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("failed to create test profile: %v", err)
	}
	return profile
}

// CreateTestWorkout creates a workout of the given type on date.
func CreateTestWorkout(t *testing.T, db *gorm.DB, userID, date string, workoutType models.WorkoutType) *models.Workout {
	t.Helper()

	w := &models.Workout{
		UserID:         userID,
		Date:           date,
		Title:          fmt.Sprintf("Session %d", nextID()),
		Type:           workoutType,
		DurationMin:    45,
		CaloriesBurned: 350,
	}
	if err := db.Create(w).Error; err != nil {
		t.Fatalf("failed to create test workout: %v", err)
	}
	return w
}

// CreateTestNutrition creates a nutrition entry on date.
func CreateTestNutrition(t *testing.T, db *gorm.DB, userID, date string, calories, protein float64) *models.NutritionLog {
	t.Helper()

	n := &models.NutritionLog{
		UserID:   userID,
		Date:     date,
		Calories: calories,
		Protein:  protein,
		Carbs:    200,
		Fat:      60,
	}
	if err := db.Create(n).Error; err != nil {
		t.Fatalf("failed to create test nutrition log: %v", err)
	}
	return n
}

// CreateTestWater creates a water log of amountML on date.
func CreateTestWater(t *testing.T, db *gorm.DB, userID, date string, amountML int) *models.WaterLog {
	t.Helper()

	w := &models.WaterLog{UserID: userID, Date: date, AmountML: amountML}
	if err := db.Create(w).Error; err != nil {
		t.Fatalf("failed to create test water log: %v", err)
	}
	return w
}

// CreateTestWeight creates a weight entry on date.
func CreateTestWeight(t *testing.T, db *gorm.DB, userID, date string, kg float64) *models.WeightEntry {
	t.Helper()

	w := &models.WeightEntry{UserID: userID, Date: date, WeightKg: kg}
	if err := db.Create(w).Error; err != nil {
		t.Fatalf("failed to create test weight entry: %v", err)
	}
	return w
}
