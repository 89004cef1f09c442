package progress

import (
	"testing"
)

func TestMessage(t *testing.T) {
	tests := []struct {
		unlocked int
		want     string
	}{
		{0, MessageNone},
		{1, MessageStarted},
		{2, MessageStarted},
		{3, MessageProgress},
		{5, MessageProgress},
		{6, MessageAlmost},
		{8, MessageAlmost},
		{9, MessageAll},
	}
	for _, tt := range tests {
		if got := Message(tt.unlocked, 9); got != tt.want {
			t.Errorf("Message(%d, 9) = %q, want %q", tt.unlocked, got, tt.want)
		}
	}
}

func TestCompute_stats(t *testing.T) {
	in := Input{
		Workouts: []Workout{{Date: d(-1), Type: "strength"}, {Date: d(0), Type: "cardio"}, {Date: "bad"}},
		Nutrition: []Nutrition{
			{Date: d(-1), Calories: 2000, Protein: 100, Carbs: 200, Fat: 50},
			{Date: d(0), Calories: 2500, Protein: 151, Carbs: 250, Fat: 71},
		},
		Water: []Water{
			{Date: d(-1), AmountML: 1500}, {Date: d(-1), AmountML: 700},
			{Date: d(0), AmountML: 1000},
		},
		Weights: []Weight{{Date: d(-1), WeightKg: 80}, {Date: d(0), WeightKg: 78.4}},
	}

	r := Compute(in, now)
	st := r.Stats

	if st.WorkoutCount != 2 {
		t.Errorf("expected 2 workouts, got %d", st.WorkoutCount)
	}
	if st.DaysTracked != 2 {
		t.Errorf("expected 2 tracked days, got %d", st.DaysTracked)
	}
	if st.WeightChange != -1.6 {
		t.Errorf("expected weight change -1.6, got %v", st.WeightChange)
	}
	if st.CalorieAverage != 2250 {
		t.Errorf("expected calorie average 2250, got %v", st.CalorieAverage)
	}
	want := NutritionAverages{Calories: 2250, Protein: 126, Carbs: 225, Fat: 61}
	if st.NutritionAverage != want {
		t.Errorf("expected %+v, got %+v", want, st.NutritionAverage)
	}
	if st.WaterAverageML != 1600 {
		t.Errorf("expected daily water average 1600, got %v", st.WaterAverageML)
	}
	if st.WaterGoalDays != 1 {
		t.Errorf("expected 1 day at goal, got %d", st.WaterGoalDays)
	}
	if st.LongestStreak != 2 {
		t.Errorf("expected longest streak 2, got %d", st.LongestStreak)
	}
}

func TestCompute_empty(t *testing.T) {
	r := Compute(Input{}, now)

	if len(r.Achievements) != 0 {
		t.Errorf("expected no achievements, got %d", len(r.Achievements))
	}
	if len(r.Locked) != len(Catalogue()) {
		t.Errorf("expected every achievement locked, got %d", len(r.Locked))
	}
	if r.Message != MessageNone {
		t.Errorf("unexpected message %q", r.Message)
	}
	for _, c := range Categories {
		if r.Streaks[c] != (StreakState{}) {
			t.Errorf("%s: expected zero streak, got %+v", c, r.Streaks[c])
		}
	}
	if r.Stats != (Stats{}) {
		t.Errorf("expected zero stats, got %+v", r.Stats)
	}
}

func TestCompute_partitions_catalogue(t *testing.T) {
	in := Input{Workouts: []Workout{{Date: d(0)}}}
	r := Compute(in, now)

	if len(r.Achievements)+len(r.Locked) != len(Catalogue()) {
		t.Errorf("unlocked and locked must cover the catalogue")
	}
	if r.Message != MessageStarted {
		t.Errorf("expected %q, got %q", MessageStarted, r.Message)
	}
}
