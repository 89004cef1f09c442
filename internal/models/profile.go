package models

// Profile holds a user's goals. There is at most one profile per user.
type Profile struct {
	Base
	UserID            string  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Name              string  `json:"name,omitempty"`
	HeightCm          float64 `json:"height_cm"`
	TargetWeight      float64 `json:"target_weight"`
	TargetCalories    float64 `json:"target_calories"`
	TargetProtein     float64 `json:"target_protein"`
	WaterGoalML       int     `gorm:"default:2000" json:"water_goal_ml"`
	WeeklyWorkoutGoal int     `json:"weekly_workout_goal"`
	GoalDescription   string  `json:"goal_description,omitempty"`
}
