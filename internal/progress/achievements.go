package progress

import (
	"sort"
	"time"
)

// Achievement ids.
const (
	FirstWorkout     = "first_workout"
	OnARoll          = "on_a_roll"
	ConsistencyKing  = "consistency_king"
	NutritionTracker = "nutrition_tracker"
	ProteinPro       = "protein_pro"
	HydrationHero    = "hydration_hero"
	WeightWatcher    = "weight_watcher"
	GoalCrusher      = "goal_crusher"
	StrengthBuilder  = "strength_builder"
)

// Descriptor describes an achievement independent of any user.
type Descriptor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Achievement is an unlocked Descriptor. DateAchieved is derived from the
// records, so recomputing over the same history yields the same date.
type Achievement struct {
	Descriptor
	DateAchieved string `json:"date_achieved"`
}

type rule struct {
	Descriptor
	// check returns the day the achievement was earned, if it was.
	check func(s *summary, g Goals, today day) (day, bool)
}

var catalogue = []rule{
	{
		Descriptor: Descriptor{FirstWorkout, "First Workout", "Logged your first workout", "🏋️"},
		check: func(s *summary, _ Goals, _ day) (day, bool) {
			return nth(s.workoutDays, 1)
		},
	},
	{
		Descriptor: Descriptor{OnARoll, "On a Roll", "Worked out 3 days in a row", "🔥"},
		check: func(s *summary, _ Goals, t day) (day, bool) {
			days := distinct(s.workoutDays)
			n := currentRun(days, t)
			if n < 3 {
				return 0, false
			}
			return days[len(days)-1] - day(n-1) + 2, true
		},
	},
	{
		Descriptor: Descriptor{ConsistencyKing, "Consistency King", "Logged activity for 7 consecutive days", "👑"},
		check: func(s *summary, _ Goals, _ day) (day, bool) {
			return runReaching(s.activityDays, 7)
		},
	},
	{
		Descriptor: Descriptor{NutritionTracker, "Nutrition Tracker", "Tracked your nutrition for 5+ days", "🥗"},
		check: func(s *summary, _ Goals, _ day) (day, bool) {
			return nth(s.nutritionDays, 5)
		},
	},
	{
		Descriptor: Descriptor{ProteinPro, "Protein Pro", "Hit your protein target on 5+ days", "🥩"},
		check: func(s *summary, g Goals, _ day) (day, bool) {
			if g.TargetProtein <= 0 {
				return 0, false
			}
			var hit []day
			for d, grams := range s.proteinByDay {
				if grams >= g.TargetProtein {
					hit = append(hit, d)
				}
			}
			return nth(sortDays(hit), 5)
		},
	},
	{
		Descriptor: Descriptor{HydrationHero, "Hydration Hero", "Met your water goal for 3+ days", "💧"},
		check: func(s *summary, g Goals, _ day) (day, bool) {
			goal := g.WaterGoalML
			if goal <= 0 {
				goal = DefaultWaterGoalML
			}
			var hit []day
			for d, ml := range s.waterByDay {
				if ml >= goal {
					hit = append(hit, d)
				}
			}
			return nth(sortDays(hit), 3)
		},
	},
	{
		Descriptor: Descriptor{WeightWatcher, "On Track", "Your weight is moving toward your goal", "⚖️"},
		check: func(s *summary, g Goals, _ day) (day, bool) {
			if len(s.weighIns) < 2 || g.TargetWeight <= 0 {
				return 0, false
			}
			first := s.weighIns[0].kg
			gaining := g.TargetWeight > first
			return trailing(s.weighIns, func(kg float64) bool {
				if gaining {
					return kg > first
				}
				return kg < first
			})
		},
	},
	{
		Descriptor: Descriptor{GoalCrusher, "Goal Crusher", "Reached your target weight", "🏆"},
		check: func(s *summary, g Goals, _ day) (day, bool) {
			if len(s.weighIns) == 0 || g.TargetWeight <= 0 {
				return 0, false
			}
			gaining := g.TargetWeight > s.weighIns[0].kg
			return trailing(s.weighIns, func(kg float64) bool {
				if gaining {
					return kg >= g.TargetWeight
				}
				return kg <= g.TargetWeight
			})
		},
	},
	{
		Descriptor: Descriptor{StrengthBuilder, "Strength Builder", "Logged 10+ strength workouts", "💪"},
		check: func(s *summary, _ Goals, _ day) (day, bool) {
			return nth(s.strengthDays, 10)
		},
	},
}

// Catalogue lists every achievement in display order.
func Catalogue() []Descriptor {
	out := make([]Descriptor, len(catalogue))
	for i, r := range catalogue {
		out[i] = r.Descriptor
	}
	return out
}

// ComputeAchievements returns the unlocked achievements in catalogue order.
func ComputeAchievements(in Input, now time.Time) []Achievement {
	unlocked, _ := evaluate(summarize(in), in.Goals, today(now))
	return unlocked
}

func evaluate(s *summary, g Goals, t day) ([]Achievement, []Descriptor) {
	unlocked := []Achievement{}
	locked := []Descriptor{}
	for _, r := range catalogue {
		if d, ok := r.check(s, g, t); ok {
			unlocked = append(unlocked, Achievement{Descriptor: r.Descriptor, DateAchieved: d.String()})
		} else {
			locked = append(locked, r.Descriptor)
		}
	}
	return unlocked, locked
}

// nth returns the n-th (1-based) element of sorted days.
func nth(days []day, n int) (day, bool) {
	if len(days) < n {
		return 0, false
	}
	return days[n-1], true
}

// trailing checks the latest weigh-in against ok and returns the first day
// of the uninterrupted run of weigh-ins satisfying it that ends there.
func trailing(ws []weighIn, ok func(kg float64) bool) (day, bool) {
	i := len(ws) - 1
	if i < 0 || !ok(ws[i].kg) {
		return 0, false
	}
	for i > 0 && ok(ws[i-1].kg) {
		i--
	}
	return ws[i].day, true
}

func sortDays(days []day) []day {
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
	return days
}
