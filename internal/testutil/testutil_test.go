package testutil_test

import (
	"testing"
	"time"

	"fittrack/internal/errors"
	"fittrack/internal/models"
	"fittrack/internal/testutil"
)

func TestSetupTestDB(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	var count int64
	for _, table := range []string{"kv_entries", "profiles", "workouts", "nutrition_logs", "water_logs", "weight_entries", "audit_logs"} {
		if err := db.Table(table).Count(&count).Error; err != nil {
			t.Errorf("table %q should exist after migration: %v", table, err)
		}
	}
}

func TestSetupTestDB_isolated(t *testing.T) {
	a := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, a)
	b := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, b)

	testutil.CreateTestWater(t, a, testutil.NewUserID(), "2025-03-01", 500)

	var count int64
	b.Model(&models.WaterLog{}).Count(&count)
	if count != 0 {
		t.Errorf("expected a fresh database, found %d rows", count)
	}
}

func TestFixtures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)

	userID := testutil.NewUserID()
	profile := testutil.CreateTestProfile(t, db, userID)
	if profile.ID == "" || profile.UserID != userID {
		t.Errorf("unexpected profile: %+v", profile)
	}

	w := testutil.CreateTestWorkout(t, db, userID, "2025-03-01", models.WorkoutTypeStrength)
	if w.ID == "" || w.Type != models.WorkoutTypeStrength {
		t.Errorf("unexpected workout: %+v", w)
	}

	n := testutil.CreateTestNutrition(t, db, userID, "2025-03-01", 2100, 150)
	if n.Protein != 150 {
		t.Errorf("expected protein 150, got %v", n.Protein)
	}

	if e := testutil.CreateTestWeight(t, db, userID, "2025-03-01", 80.5); e.WeightKg != 80.5 {
		t.Errorf("expected weight 80.5, got %v", e.WeightKg)
	}

	if testutil.UniqueEmail() == testutil.UniqueEmail() {
		t.Error("expected unique emails")
	}
}

func TestDay(t *testing.T) {
	ref := time.Date(2025, 2, 28, 9, 0, 0, 0, time.UTC)
	if got := testutil.Day(ref, 1); got != "2025-03-01" {
		t.Errorf("expected 2025-03-01, got %s", got)
	}
	if got := testutil.Day(ref, -1); got != "2025-02-27" {
		t.Errorf("expected 2025-02-27, got %s", got)
	}
}

func TestAssertAppError(t *testing.T) {
	testutil.AssertAppError(t, errors.ErrDuplicateEmail, "DUPLICATE_EMAIL")
	testutil.AssertAppError(t, errors.Wrap(errors.ErrInternalServer, nil), "INTERNAL_ERROR")

	locked := testutil.AssertAppError(t, errors.Locked(90*time.Second), "ACCOUNT_LOCKED")
	if locked.StatusCode != 423 {
		t.Errorf("expected 423, got %d", locked.StatusCode)
	}
	testutil.AssertErrorKind(t, locked, errors.KindAuthentication)
	testutil.AssertRetryAfter(t, locked, 90*time.Second)
}
