package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	apperrors "fittrack/internal/errors"
	"fittrack/internal/models"
	"fittrack/internal/pagination"
	"fittrack/internal/services"
)

const workoutID = "0195d1a2-7b3c-7def-8abc-0123456789ab"

func setupActivityRouter(handler *ActivityHandler) *gin.Engine {
	r := gin.New()
	g := r.Group("/", injectUserID("u-1"))
	g.POST("/workouts", handler.LogWorkout)
	g.GET("/workouts", handler.ListWorkouts)
	g.DELETE("/workouts/:id", handler.DeleteWorkout)
	g.POST("/nutrition", handler.LogNutrition)
	g.GET("/nutrition", handler.ListNutrition)
	g.POST("/water", handler.LogWater)
	g.GET("/water", handler.ListWater)
	g.POST("/weights", handler.LogWeight)
	g.GET("/weights", handler.ListWeights)
	g.GET("/profile", handler.GetProfile)
	g.PUT("/profile", handler.UpdateProfile)
	return r
}

func TestActivityHandler_LogWorkout(t *testing.T) {
	t.Run("returns 201", func(t *testing.T) {
		var gotType models.WorkoutType
		svc := &mockActivityService{
			logWorkoutFn: func(userID, date, _ string, workoutType models.WorkoutType, _, _ int, _ string) (*models.Workout, error) {
				gotType = workoutType
				return &models.Workout{UserID: userID, Date: date, Type: workoutType}, nil
			},
		}
		r := setupActivityRouter(NewActivityHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "POST", "/workouts", `{"date":"2025-03-10","type":"strength","duration_min":60}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotType != models.WorkoutTypeStrength {
			t.Errorf("expected strength, got %s", gotType)
		}
		w := parseJSON(t, rec)["workout"].(map[string]interface{})
		if w["user_id"] != "u-1" {
			t.Errorf("expected workout for u-1, got %v", w["user_id"])
		}
	})

	tests := []struct {
		name string
		body string
	}{
		{"missing date", `{"type":"cardio"}`},
		{"bad date", `{"date":"10/03/2025"}`},
		{"unknown type", `{"date":"2025-03-10","type":"yoga"}`},
		{"negative duration", `{"date":"2025-03-10","duration_min":-5}`},
	}
	for _, tt := range tests {
		t.Run("returns 400 on "+tt.name, func(t *testing.T) {
			r := setupActivityRouter(NewActivityHandler(&mockActivityService{}, &mockAuditService{}))

			rec := doRequest(r, "POST", "/workouts", tt.body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}
}

func TestActivityHandler_ListWorkouts(t *testing.T) {
	t.Run("passes page and range", func(t *testing.T) {
		var gotPage pagination.PageRequest
		var gotFilter services.DateFilter
		svc := &mockActivityService{
			listWorkoutsFn: func(_ string, page pagination.PageRequest, filter services.DateFilter) (*pagination.PageResponse[models.Workout], error) {
				gotPage, gotFilter = page, filter
				resp := pagination.NewPageResponse([]models.Workout{{Date: "2025-03-02"}}, page.Page, page.PageSize, 1)
				return &resp, nil
			},
		}
		r := setupActivityRouter(NewActivityHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/workouts?page=2&page_size=5&from=2025-03-01&to=2025-03-31", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotPage.Page != 2 || gotPage.PageSize != 5 {
			t.Errorf("unexpected page %+v", gotPage)
		}
		if gotFilter.From != "2025-03-01" || gotFilter.To != "2025-03-31" {
			t.Errorf("unexpected filter %+v", gotFilter)
		}
		if parseJSON(t, rec)["total_items"] != float64(1) {
			t.Error("expected total_items 1")
		}
	})

	t.Run("returns 400 on bad range", func(t *testing.T) {
		r := setupActivityRouter(NewActivityHandler(&mockActivityService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/workouts?from=last-week", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 400 on oversized page", func(t *testing.T) {
		r := setupActivityRouter(NewActivityHandler(&mockActivityService{}, &mockAuditService{}))

		rec := doRequest(r, "GET", "/workouts?page_size=500", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestActivityHandler_DeleteWorkout(t *testing.T) {
	t.Run("returns 400 on invalid id", func(t *testing.T) {
		r := setupActivityRouter(NewActivityHandler(&mockActivityService{}, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/workouts/42", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		svc := &mockActivityService{
			deleteWorkoutFn: func(_, _ string) error { return apperrors.ErrNotFound },
		}
		r := setupActivityRouter(NewActivityHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/workouts/"+workoutID, "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})

	t.Run("returns 200", func(t *testing.T) {
		var gotID string
		svc := &mockActivityService{
			deleteWorkoutFn: func(_, id string) error { gotID = id; return nil },
		}
		r := setupActivityRouter(NewActivityHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "DELETE", "/workouts/"+workoutID, "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotID != workoutID {
			t.Errorf("expected %s, got %s", workoutID, gotID)
		}
	})
}

func TestActivityHandler_LogOthers(t *testing.T) {
	r := setupActivityRouter(NewActivityHandler(&mockActivityService{}, &mockAuditService{}))

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"nutrition", "/nutrition", `{"date":"2025-03-10","calories":650,"protein":45}`, http.StatusCreated},
		{"nutrition negative", "/nutrition", `{"date":"2025-03-10","fat":-1}`, http.StatusBadRequest},
		{"water", "/water", `{"date":"2025-03-10","amount_ml":250}`, http.StatusCreated},
		{"water zero", "/water", `{"date":"2025-03-10","amount_ml":0}`, http.StatusBadRequest},
		{"weight", "/weights", `{"date":"2025-03-10","weight_kg":80.4}`, http.StatusCreated},
		{"weight missing", "/weights", `{"date":"2025-03-10"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(r, "POST", tt.path, tt.body)
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
		})
	}

	for _, path := range []string{"/nutrition", "/water", "/weights"} {
		if rec := doRequest(r, "GET", path, ""); rec.Code != http.StatusOK {
			t.Errorf("GET %s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestActivityHandler_Profile(t *testing.T) {
	t.Run("returns 404 before the first update", func(t *testing.T) {
		svc := &mockActivityService{
			getProfileFn: func(_ string) (*models.Profile, error) { return nil, apperrors.ErrProfileNotFound },
		}
		r := setupActivityRouter(NewActivityHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/profile", "")

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "PROFILE_NOT_FOUND")
	})

	t.Run("update sends only provided fields", func(t *testing.T) {
		var got services.ProfileUpdate
		svc := &mockActivityService{
			upsertProfileFn: func(userID string, update services.ProfileUpdate) (*models.Profile, error) {
				got = update
				return &models.Profile{UserID: userID, TargetWeight: *update.TargetWeight}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupActivityRouter(NewActivityHandler(svc, audit))

		rec := doRequest(r, "PUT", "/profile", `{"target_weight":72.5}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.TargetWeight == nil || *got.TargetWeight != 72.5 {
			t.Errorf("expected target weight 72.5, got %v", got.TargetWeight)
		}
		if got.TargetProtein != nil || got.Name != nil {
			t.Error("absent fields must stay nil")
		}
		if a := audit.actions(); len(a) != 1 || a[0] != services.AuditProfileUpdate {
			t.Errorf("expected an UPDATE_PROFILE audit entry, got %v", a)
		}
	})

	t.Run("update rejects out of range goal", func(t *testing.T) {
		r := setupActivityRouter(NewActivityHandler(&mockActivityService{}, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/profile", `{"weekly_workout_goal":30}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}
