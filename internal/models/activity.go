package models

// WorkoutType classifies a workout session.
type WorkoutType string

const (
	WorkoutTypeStrength    WorkoutType = "strength"
	WorkoutTypeCardio      WorkoutType = "cardio"
	WorkoutTypeFlexibility WorkoutType = "flexibility"
	WorkoutTypeMixed       WorkoutType = "mixed"
)

// Workout is a logged training session. Date is a calendar date (YYYY-MM-DD).
type Workout struct {
	Base
	UserID         string      `gorm:"type:uuid;not null;index" json:"user_id"`
	Date           string      `gorm:"size:10;not null;index" json:"date"`
	Title          string      `json:"title,omitempty"`
	Type           WorkoutType `gorm:"size:20;not null;default:'mixed'" json:"type"`
	DurationMin    int         `json:"duration_min"`
	CaloriesBurned int         `json:"calories_burned"`
	Notes          string      `json:"notes,omitempty"`
}

// NutritionLog is a logged meal or daily intake entry.
type NutritionLog struct {
	Base
	UserID   string  `gorm:"type:uuid;not null;index" json:"user_id"`
	Date     string  `gorm:"size:10;not null;index" json:"date"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Notes    string  `json:"notes,omitempty"`
}

// WaterLog is a single drink. Several logs on one day are summed.
type WaterLog struct {
	Base
	UserID   string `gorm:"type:uuid;not null;index" json:"user_id"`
	Date     string `gorm:"size:10;not null;index" json:"date"`
	AmountML int    `gorm:"not null" json:"amount_ml"`
}

// WeightEntry is a body-weight measurement in kilograms.
type WeightEntry struct {
	Base
	UserID   string  `gorm:"type:uuid;not null;index" json:"user_id"`
	Date     string  `gorm:"size:10;not null;index" json:"date"`
	WeightKg float64 `gorm:"not null" json:"weight_kg"`
}
