package progress

import (
	"math"
	"time"
)

// Motivational messages, by share of the catalogue unlocked.
const (
	MessageNone     = "Start your fitness journey by unlocking your first achievement!"
	MessageStarted  = "Great start! Keep going to unlock more achievements."
	MessageProgress = "You're making excellent progress!"
	MessageAlmost   = "Almost there! Just a few more achievements to unlock."
	MessageAll      = "Incredible! You've unlocked all achievements. You're a fitness champion!"
)

// NutritionAverages are per-entry means, rounded to whole units.
type NutritionAverages struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Stats summarizes the history for display.
type Stats struct {
	DaysTracked      int               `json:"days_tracked"`
	WorkoutCount     int               `json:"workout_count"`
	WeightChange     float64           `json:"weight_change"`
	CalorieAverage   float64           `json:"calorie_average"`
	WaterAverageML   float64           `json:"water_average_ml"`
	WaterGoalDays    int               `json:"water_goal_days"`
	LongestStreak    int               `json:"longest_streak"`
	NutritionAverage NutritionAverages `json:"nutrition_average"`
}

// Report is the full progress view for one user.
type Report struct {
	Streaks      map[Category]StreakState `json:"streaks"`
	Achievements []Achievement            `json:"achievements"`
	Locked       []Descriptor             `json:"locked"`
	Stats        Stats                    `json:"stats"`
	Message      string                   `json:"message"`
}

// Compute builds the complete report for in as of now.
func Compute(in Input, now time.Time) Report {
	s := summarize(in)
	t := today(now)

	streaks := s.streaks(t)
	unlocked, locked := evaluate(s, in.Goals, t)

	return Report{
		Streaks:      streaks,
		Achievements: unlocked,
		Locked:       locked,
		Stats:        s.stats(in.Goals, streaks[CategoryActivity].Longest),
		Message:      Message(len(unlocked), len(catalogue)),
	}
}

// Message picks the motivational line for unlocked of total achievements.
func Message(unlocked, total int) string {
	switch {
	case unlocked <= 0:
		return MessageNone
	case float64(unlocked) < float64(total)/3:
		return MessageStarted
	case float64(unlocked) < float64(total)*2/3:
		return MessageProgress
	case unlocked < total:
		return MessageAlmost
	default:
		return MessageAll
	}
}

func (s *summary) stats(g Goals, longest int) Stats {
	st := Stats{
		DaysTracked:   len(s.weighIns),
		WorkoutCount:  len(s.workoutDays),
		LongestStreak: longest,
	}

	if len(s.weighIns) >= 2 {
		change := s.weighIns[len(s.weighIns)-1].kg - s.weighIns[0].kg
		st.WeightChange = math.Round(change*10) / 10
	}

	if n := float64(s.nutritionEntries); n > 0 {
		st.CalorieAverage = math.Round(s.calories / n)
		st.NutritionAverage = NutritionAverages{
			Calories: math.Round(s.calories / n),
			Protein:  math.Round(s.protein / n),
			Carbs:    math.Round(s.carbs / n),
			Fat:      math.Round(s.fat / n),
		}
	}

	goal := g.WaterGoalML
	if goal <= 0 {
		goal = DefaultWaterGoalML
	}
	if len(s.waterByDay) > 0 {
		total := 0
		for _, ml := range s.waterByDay {
			total += ml
			if ml >= goal {
				st.WaterGoalDays++
			}
		}
		st.WaterAverageML = math.Round(float64(total) / float64(len(s.waterByDay)))
	}

	return st
}
