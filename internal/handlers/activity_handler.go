package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "fittrack/internal/errors"
	"fittrack/internal/models"
	"fittrack/internal/pagination"
	"fittrack/internal/services"
)

// ActivityHandler handles activity logging and the goal profile.
type ActivityHandler struct {
	activityService services.ActivityServicer
	auditService    services.AuditServicer
}

// NewActivityHandler creates a new ActivityHandler.
func NewActivityHandler(activityService services.ActivityServicer, auditService services.AuditServicer) *ActivityHandler {
	return &ActivityHandler{activityService: activityService, auditService: auditService}
}

// ListQuery holds pagination and an optional inclusive date range.
type ListQuery struct {
	pagination.PageRequest
	From string `form:"from" binding:"omitempty,iso_date"`
	To   string `form:"to" binding:"omitempty,iso_date"`
}

func (q ListQuery) filter() services.DateFilter {
	return services.DateFilter{From: q.From, To: q.To}
}

// CreateWorkoutRequest represents the request payload for logging a workout.
type CreateWorkoutRequest struct {
	Date           string             `json:"date" binding:"required,iso_date"`
	Title          string             `json:"title" binding:"max=100"`
	Type           models.WorkoutType `json:"type" binding:"omitempty,workout_type"`
	DurationMin    int                `json:"duration_min" binding:"gte=0,lte=1440"`
	CaloriesBurned int                `json:"calories_burned" binding:"gte=0"`
	Notes          string             `json:"notes" binding:"max=500"`
}

// CreateNutritionRequest represents the request payload for logging nutrition.
type CreateNutritionRequest struct {
	Date     string  `json:"date" binding:"required,iso_date"`
	Calories float64 `json:"calories" binding:"gte=0"`
	Protein  float64 `json:"protein" binding:"gte=0"`
	Carbs    float64 `json:"carbs" binding:"gte=0"`
	Fat      float64 `json:"fat" binding:"gte=0"`
	Notes    string  `json:"notes" binding:"max=500"`
}

// CreateWaterRequest represents the request payload for logging a drink.
type CreateWaterRequest struct {
	Date     string `json:"date" binding:"required,iso_date"`
	AmountML int    `json:"amount_ml" binding:"required,gt=0,lte=10000"`
}

// CreateWeightRequest represents the request payload for logging a weigh-in.
type CreateWeightRequest struct {
	Date     string  `json:"date" binding:"required,iso_date"`
	WeightKg float64 `json:"weight_kg" binding:"required,gt=0,lte=700"`
}

// UpdateProfileRequest represents a partial profile change.
type UpdateProfileRequest struct {
	Name              *string  `json:"name" binding:"omitempty,max=100"`
	HeightCm          *float64 `json:"height_cm" binding:"omitempty,gte=0"`
	TargetWeight      *float64 `json:"target_weight" binding:"omitempty,gte=0"`
	TargetCalories    *float64 `json:"target_calories" binding:"omitempty,gte=0"`
	TargetProtein     *float64 `json:"target_protein" binding:"omitempty,gte=0"`
	WaterGoalML       *int     `json:"water_goal_ml" binding:"omitempty,gte=0"`
	WeeklyWorkoutGoal *int     `json:"weekly_workout_goal" binding:"omitempty,gte=0,lte=14"`
	GoalDescription   *string  `json:"goal_description" binding:"omitempty,max=500"`
}

func bindList(c *gin.Context) (ListQuery, bool) {
	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return q, false
	}
	return q, true
}

// LogWorkout handles logging a workout
// @Summary     Log a workout
// @Tags        workouts
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateWorkoutRequest true "Workout"
// @Success     201 {object} models.Workout "Workout logged"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /workouts [post]
func (h *ActivityHandler) LogWorkout(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateWorkoutRequest
	if !bindJSON(c, &req) {
		return
	}

	workout, err := h.activityService.LogWorkout(userID, req.Date, req.Title, req.Type, req.DurationMin, req.CaloriesBurned, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"workout": workout})
}

// ListWorkouts returns the user's workouts
// @Summary     List workouts
// @Tags        workouts
// @Produce     json
// @Security    BearerAuth
// @Param       page      query int    false "Page number"
// @Param       page_size query int    false "Page size"
// @Param       from      query string false "First date (YYYY-MM-DD)"
// @Param       to        query string false "Last date (YYYY-MM-DD)"
// @Success     200 {object} pagination.PageResponse[models.Workout] "Workouts"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /workouts [get]
func (h *ActivityHandler) ListWorkouts(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	q, ok := bindList(c)
	if !ok {
		return
	}

	result, err := h.activityService.ListWorkouts(userID, q.PageRequest, q.filter())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// DeleteWorkout removes a workout
// @Summary     Delete a workout
// @Tags        workouts
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Workout ID"
// @Success     200 {object} MessageResponse "Deleted"
// @Failure     404 {object} ErrorResponse "Not found"
// @Router      /workouts/{id} [delete]
func (h *ActivityHandler) DeleteWorkout(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	workoutID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.activityService.DeleteWorkout(userID, workoutID); err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Workout deleted"})
}

// LogNutrition handles logging nutrition
// @Summary     Log nutrition
// @Tags        nutrition
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateNutritionRequest true "Nutrition entry"
// @Success     201 {object} models.NutritionLog "Entry logged"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /nutrition [post]
func (h *ActivityHandler) LogNutrition(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateNutritionRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.activityService.LogNutrition(userID, req.Date, req.Calories, req.Protein, req.Carbs, req.Fat, req.Notes)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"nutrition": entry})
}

// ListNutrition returns the user's nutrition entries
// @Summary     List nutrition entries
// @Tags        nutrition
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} pagination.PageResponse[models.NutritionLog] "Entries"
// @Router      /nutrition [get]
func (h *ActivityHandler) ListNutrition(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	q, ok := bindList(c)
	if !ok {
		return
	}

	result, err := h.activityService.ListNutrition(userID, q.PageRequest, q.filter())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// LogWater handles logging a drink
// @Summary     Log water
// @Tags        water
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateWaterRequest true "Water log"
// @Success     201 {object} models.WaterLog "Logged"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /water [post]
func (h *ActivityHandler) LogWater(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateWaterRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.activityService.LogWater(userID, req.Date, req.AmountML)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"water": entry})
}

// ListWater returns the user's water logs
// @Summary     List water logs
// @Tags        water
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} pagination.PageResponse[models.WaterLog] "Logs"
// @Router      /water [get]
func (h *ActivityHandler) ListWater(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	q, ok := bindList(c)
	if !ok {
		return
	}

	result, err := h.activityService.ListWater(userID, q.PageRequest, q.filter())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// LogWeight handles logging a weigh-in
// @Summary     Log weight
// @Tags        weights
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateWeightRequest true "Weigh-in"
// @Success     201 {object} models.WeightEntry "Logged"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /weights [post]
func (h *ActivityHandler) LogWeight(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateWeightRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.activityService.LogWeight(userID, req.Date, req.WeightKg)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"weight": entry})
}

// ListWeights returns the user's weigh-ins
// @Summary     List weigh-ins
// @Tags        weights
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} pagination.PageResponse[models.WeightEntry] "Weigh-ins"
// @Router      /weights [get]
func (h *ActivityHandler) ListWeights(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}
	q, ok := bindList(c)
	if !ok {
		return
	}

	result, err := h.activityService.ListWeights(userID, q.PageRequest, q.filter())
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetProfile returns the user's goal profile
// @Summary     Get profile
// @Tags        profile
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} models.Profile "Profile"
// @Failure     404 {object} ErrorResponse "No profile yet"
// @Router      /profile [get]
func (h *ActivityHandler) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	profile, err := h.activityService.GetProfile(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// UpdateProfile creates or updates the user's goal profile
// @Summary     Update profile
// @Tags        profile
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body UpdateProfileRequest true "Fields to change"
// @Success     200 {object} models.Profile "Profile"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /profile [put]
func (h *ActivityHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	profile, err := h.activityService.UpsertProfile(userID, services.ProfileUpdate{
		Name:              req.Name,
		HeightCm:          req.HeightCm,
		TargetWeight:      req.TargetWeight,
		TargetCalories:    req.TargetCalories,
		TargetProtein:     req.TargetProtein,
		WaterGoalML:       req.WaterGoalML,
		WeeklyWorkoutGoal: req.WeeklyWorkoutGoal,
		GoalDescription:   req.GoalDescription,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditProfileUpdate, "profile", profile.ID, c.ClientIP(), nil)
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}
