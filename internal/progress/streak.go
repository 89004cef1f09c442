package progress

import (
	"sort"
	"time"
)

// Category names a streak.
type Category string

const (
	CategoryWorkout   Category = "workout"
	CategoryNutrition Category = "nutrition"
	CategoryWater     Category = "water"
	CategoryWeight    Category = "weight"
	// CategoryActivity is the union of every other category.
	CategoryActivity Category = "activity"
)

// Categories lists every streak category in report order.
var Categories = []Category{CategoryWorkout, CategoryNutrition, CategoryWater, CategoryWeight, CategoryActivity}

// StreakState is the current and longest run of consecutive days.
// Longest is never less than Current.
type StreakState struct {
	Current int `json:"current_streak"`
	Longest int `json:"longest_streak"`
}

// ComputeStreak computes the streak over the given calendar dates.
// Unparsable dates are ignored; duplicates count once.
func ComputeStreak(dates []string, now time.Time) StreakState {
	days := make([]day, 0, len(dates))
	for _, s := range dates {
		if d, ok := parseDay(s); ok {
			days = append(days, d)
		}
	}
	return streakOf(distinct(days), today(now))
}

// streakOf expects days sorted and distinct.
func streakOf(days []day, today day) StreakState {
	if len(days) == 0 {
		return StreakState{}
	}

	longest, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i]-days[i-1] == 1 {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	return StreakState{Current: currentRun(days, today), Longest: longest}
}

// currentRun is the length of the run ending at the last logged day. It
// is zero unless today or yesterday was logged.
func currentRun(days []day, today day) int {
	if !contains(days, today) && !contains(days, today-1) {
		return 0
	}
	n := 1
	for i := len(days) - 1; i > 0 && days[i]-days[i-1] == 1; i-- {
		n++
	}
	return n
}

// contains expects days sorted.
func contains(days []day, d day) bool {
	i := sort.Search(len(days), func(i int) bool { return days[i] >= d })
	return i < len(days) && days[i] == d
}

// runReaching returns the first day on which a run of length n was
// completed, scanning sorted distinct days.
func runReaching(days []day, n int) (day, bool) {
	if n <= 0 || len(days) == 0 {
		return 0, false
	}
	run := 1
	if n == 1 {
		return days[0], true
	}
	for i := 1; i < len(days); i++ {
		if days[i]-days[i-1] == 1 {
			run++
		} else {
			run = 1
		}
		if run == n {
			return days[i], true
		}
	}
	return 0, false
}

// ComputeStreaks computes every category's streak.
func ComputeStreaks(in Input, now time.Time) map[Category]StreakState {
	return summarize(in).streaks(today(now))
}

func (s *summary) streaks(t day) map[Category]StreakState {
	return map[Category]StreakState{
		CategoryWorkout:   streakOf(distinct(s.workoutDays), t),
		CategoryNutrition: streakOf(s.nutritionDays, t),
		CategoryWater:     streakOf(s.waterDays, t),
		CategoryWeight:    streakOf(s.weightDays, t),
		CategoryActivity:  streakOf(s.activityDays, t),
	}
}
