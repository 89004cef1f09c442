// Package progress derives streaks, achievements and summary statistics
// from a user's activity history. Everything here is a pure function of
// its input and the supplied time; nothing is persisted.
package progress

import (
	"sort"
	"strings"
	"time"
)

// DateLayout is the calendar date format of every record.
const DateLayout = "2006-01-02"

// DefaultWaterGoalML is used when the profile sets no water goal.
const DefaultWaterGoalML = 2000

// Workout is a logged session.
type Workout struct {
	Date           string `json:"date"`
	Type           string `json:"type"`
	DurationMin    int    `json:"duration_min"`
	CaloriesBurned int    `json:"calories_burned"`
}

// Nutrition is a logged intake entry.
type Nutrition struct {
	Date     string  `json:"date"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Water is a single drink.
type Water struct {
	Date     string `json:"date"`
	AmountML int    `json:"amount_ml"`
}

// Weight is a body-weight measurement.
type Weight struct {
	Date     string  `json:"date"`
	WeightKg float64 `json:"weight_kg"`
}

// Goals are the profile targets the achievements are measured against.
type Goals struct {
	TargetWeight      float64 `json:"target_weight"`
	TargetProtein     float64 `json:"target_protein"`
	TargetCalories    float64 `json:"target_calories"`
	WaterGoalML       int     `json:"water_goal_ml"`
	WeeklyWorkoutGoal int     `json:"weekly_workout_goal"`
	Description       string  `json:"goal_description,omitempty"`
}

// Input is a user's complete activity history.
type Input struct {
	Workouts  []Workout   `json:"workouts"`
	Nutrition []Nutrition `json:"nutrition"`
	Water     []Water     `json:"water"`
	Weights   []Weight    `json:"weights"`
	Goals     Goals       `json:"goals"`
}

// day counts calendar days since 1970-01-01, independent of time zone.
type day int

func dayFromDate(y int, m time.Month, d int) day {
	return day(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

func parseDay(s string) (day, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return dayFromDate(t.Date()), true
}

// today is the calendar day of now in now's own location.
func today(now time.Time) day {
	return dayFromDate(now.Date())
}

func (d day) String() string {
	return time.Unix(int64(d)*86400, 0).UTC().Format(DateLayout)
}

// distinct sorts days ascending and removes duplicates.
func distinct(days []day) []day {
	if len(days) == 0 {
		return nil
	}
	sorted := append([]day(nil), days...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	out := sorted[:1]
	for _, d := range sorted[1:] {
		if d != out[len(out)-1] {
			out = append(out, d)
		}
	}
	return out
}

type weighIn struct {
	day day
	kg  float64
}

// summary is the parsed and aggregated form of an Input.
type summary struct {
	workoutDays   []day // one per valid workout, sorted
	strengthDays  []day // one per valid strength workout, sorted
	nutritionDays []day // distinct
	waterDays     []day // distinct
	weightDays    []day // distinct
	activityDays  []day // distinct union of all categories

	proteinByDay map[day]float64
	waterByDay   map[day]int
	weighIns     []weighIn // sorted by day, stable for same-day entries

	nutritionEntries int
	calories         float64
	protein          float64
	carbs            float64
	fat              float64
}

func summarize(in Input) *summary {
	s := &summary{
		proteinByDay: make(map[day]float64),
		waterByDay:   make(map[day]int),
	}
	var all []day

	for _, w := range in.Workouts {
		d, ok := parseDay(w.Date)
		if !ok {
			continue
		}
		s.workoutDays = append(s.workoutDays, d)
		if strings.EqualFold(w.Type, "strength") {
			s.strengthDays = append(s.strengthDays, d)
		}
	}
	sort.Slice(s.workoutDays, func(i, j int) bool { return s.workoutDays[i] < s.workoutDays[j] })
	sort.Slice(s.strengthDays, func(i, j int) bool { return s.strengthDays[i] < s.strengthDays[j] })
	all = append(all, s.workoutDays...)

	var nutritionDays []day
	for _, n := range in.Nutrition {
		d, ok := parseDay(n.Date)
		if !ok {
			continue
		}
		nutritionDays = append(nutritionDays, d)
		s.proteinByDay[d] += n.Protein
		s.nutritionEntries++
		s.calories += n.Calories
		s.protein += n.Protein
		s.carbs += n.Carbs
		s.fat += n.Fat
	}
	s.nutritionDays = distinct(nutritionDays)
	all = append(all, nutritionDays...)

	var waterDays []day
	for _, w := range in.Water {
		d, ok := parseDay(w.Date)
		if !ok {
			continue
		}
		waterDays = append(waterDays, d)
		s.waterByDay[d] += w.AmountML
	}
	s.waterDays = distinct(waterDays)
	all = append(all, waterDays...)

	for _, w := range in.Weights {
		d, ok := parseDay(w.Date)
		if !ok {
			continue
		}
		s.weighIns = append(s.weighIns, weighIn{day: d, kg: w.WeightKg})
	}
	sort.SliceStable(s.weighIns, func(i, j int) bool { return s.weighIns[i].day < s.weighIns[j].day })
	weightDays := make([]day, len(s.weighIns))
	for i, w := range s.weighIns {
		weightDays[i] = w.day
	}
	s.weightDays = distinct(weightDays)
	all = append(all, weightDays...)

	s.activityDays = distinct(all)
	return s
}
