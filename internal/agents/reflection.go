package agents

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/google/uuid"
)

// ReflectionInput is one week of history plus the prior week for trending.
type ReflectionInput struct {
	Meals             []MealRecord
	UserGoal          string
	InterventionCount int
	PriorWeekDays     int // 0 when no prior week exists
	HasPriorWeek      bool
}

// WeeklyReflectionAgent summarizes a week of logging into patterns, wins, and
// one gentle focus. Pure heuristic; deterministic for a given input.
type WeeklyReflectionAgent struct {
	name   string
	logger *zap.Logger
}

// NewWeeklyReflectionAgent creates the reflection agent.
func NewWeeklyReflectionAgent(logger *zap.Logger) *WeeklyReflectionAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeeklyReflectionAgent{
		name:   "weekly_reflection",
		logger: logger.With(zap.String("agent", "weekly_reflection")),
	}
}

// Process builds the week's reflection. Fewer than 5 meals yields the
// incomplete-week message instead of an analysis.
func (a *WeeklyReflectionAgent) Process(input ReflectionInput) ReflectionResult {
	meals := input.Meals

	if len(meals) < 5 {
		return ReflectionResult{
			ReflectionMessage: "Keep logging! We need one week of data to find patterns.",
			WeekIncomplete:    true,
			Opik:              a.metadata(len(meals), 0, 0),
		}
	}

	daysActive := ActiveDayCount(meals)
	patterns := discoverPatterns(meals, daysActive)
	wins := weeklyWins(meals, daysActive, input.InterventionCount, input.UserGoal)
	focus := gentleFocus(patterns)
	motivation := motivationScore(daysActive, len(wins), patterns)
	trend := weekTrend(daysActive, input.PriorWeekDays, input.HasPriorWeek)

	result := ReflectionResult{
		ReflectionID:       uuid.NewString(),
		ReflectionSummary:  weekSummary(daysActive, len(meals)),
		PatternsDiscovered: patterns,
		WinsThisWeek:       wins,
		GentleFocus:        focus,
		MotivationScore:    motivation,
		WeekTrend:          trend,
		Opik:               a.metadata(len(meals), daysActive, len(patterns)),
	}
	result.ReflectionMessage = reflectionMessage(result)

	a.logger.Debug("weekly reflection",
		zap.Int("patterns", len(patterns)),
		zap.Int("wins", len(wins)),
		zap.String("trend", trend))
	return result
}

func (a *WeeklyReflectionAgent) metadata(mealCount, daysActive, patternCount int) OpikMetadata {
	return OpikMetadata{
		Agent:        a.name,
		DecisionType: "weekly_reflection",
		Metrics: map[string]any{
			"meal_count":    mealCount,
			"days_active":   daysActive,
			"pattern_count": patternCount,
		},
	}
}

// discoverPatterns finds up to three patterns: per-meal-type energy
// correlations, skipped-meal days, and the most consistent meal type.
func discoverPatterns(meals []MealRecord, daysActive int) []DiscoveredPattern {
	var patterns []DiscoveredPattern

	buckets := bucketByMealType(meals)

	for _, mealType := range []string{"breakfast", "lunch", "dinner", "snack"} {
		bucket := buckets[mealType]
		if len(bucket) <= 2 {
			continue
		}
		// Untagged meals count against the correlation.
		good := 0
		for _, m := range bucket {
			tag := m.EnergyAfter
			if tag == "" {
				tag = m.EnergyTag
			}
			if tag == "high" || tag == "good" {
				good++
			}
		}
		corr := float64(good) / float64(len(bucket))
		if corr > 0.6 {
			patterns = append(patterns, DiscoveredPattern{
				Pattern:      fmt.Sprintf("Consistent %s timing correlates with better energy", mealType),
				Confidence:   math.Min(0.95, 0.6+corr),
				DaysObserved: len(bucket),
				Trend:        "positive",
			})
		}
	}

	for _, mealType := range []string{"breakfast", "lunch", "dinner"} {
		missing := daysActive - daysWithMealType(meals, mealType)
		if missing > 0 {
			patterns = append(patterns, DiscoveredPattern{
				Pattern:      fmt.Sprintf("Skipped %s on %d days", mealType, missing),
				Confidence:   math.Min(0.90, 0.5+float64(missing)*0.15),
				DaysObserved: daysActive,
				Trend:        "negative",
			})
		}
	}

	if daysActive > 3 {
		if best, count := mostCommonMealType(buckets); best != "" {
			patterns = append(patterns, DiscoveredPattern{
				Pattern:      fmt.Sprintf("%s is your most consistent meal (%d logged)", titleCase(best), count),
				Confidence:   0.85,
				DaysObserved: daysActive,
				Trend:        "positive",
			})
		}
	}

	if len(patterns) > 3 {
		patterns = patterns[:3]
	}
	return patterns
}

// weeklyWins collects up to three celebration-worthy facts.
func weeklyWins(meals []MealRecord, daysActive, interventions int, goal string) []string {
	var wins []string

	switch {
	case daysActive >= 5:
		wins = append(wins, fmt.Sprintf("Logged meals on %d days this week. Strong consistency!", daysActive))
	case daysActive >= 3:
		wins = append(wins, fmt.Sprintf("Logged meals on %d days. A solid base to build on.", daysActive))
	}

	switch {
	case len(meals) >= 15:
		wins = append(wins, fmt.Sprintf("%d meals logged. Your record is rich enough for real insights.", len(meals)))
	case len(meals) >= 10:
		wins = append(wins, fmt.Sprintf("%d meals logged this week.", len(meals)))
	}

	switch {
	case interventions >= 3:
		wins = append(wins, "Engaged with multiple check-ins this week.")
	case interventions >= 1:
		wins = append(wins, "Responded to a check-in this week.")
	}

	goalLower := strings.ToLower(goal)
	switch {
	case strings.Contains(goalLower, "energy") && daysActive > 4:
		wins = append(wins, "Steady logging is exactly what an energy goal needs.")
	case strings.Contains(goalLower, "consistency") && daysActive >= 6:
		wins = append(wins, "Six or more active days. Your consistency goal is working.")
	}

	if len(wins) > 3 {
		wins = wins[:3]
	}
	return wins
}

// gentleFocus picks one suggestion for next week: fix the first negative
// pattern, else reinforce a positive energy pattern, else stay the course.
func gentleFocus(patterns []DiscoveredPattern) string {
	for _, p := range patterns {
		if p.Trend != "negative" {
			continue
		}
		for _, mealType := range []string{"breakfast", "lunch", "dinner"} {
			if strings.Contains(strings.ToLower(p.Pattern), mealType) {
				return fmt.Sprintf("Try consistent %s timing next week", mealType)
			}
		}
	}
	for _, p := range patterns {
		if p.Trend == "positive" && strings.Contains(strings.ToLower(p.Pattern), "energy") {
			return "Keep up what's working with your energy!"
		}
	}
	if len(patterns) == 0 {
		return "Keep logging consistently!"
	}
	return "Continue with what you're doing — you're on a good path!"
}

// motivationScore blends logging consistency, wins, and positive patterns
// into a 0.5–1.0 score.
func motivationScore(daysActive, winCount int, patterns []DiscoveredPattern) float64 {
	positive := 0
	for _, p := range patterns {
		if p.Trend == "positive" {
			positive++
		}
	}
	score := 0.5
	score += math.Min(0.25, float64(daysActive)/7*0.25)
	score += math.Min(0.15, float64(winCount)/3*0.15)
	score += math.Min(0.10, float64(positive)/3*0.10)
	return math.Min(score, 1.0)
}

// weekSummary is the one-sentence tier for the week.
func weekSummary(daysActive, mealsLogged int) string {
	switch {
	case daysActive >= 6 && mealsLogged >= 15:
		return "Strong week — you're crushing consistency"
	case daysActive >= 4 && mealsLogged >= 10:
		return "Solid week with good logging habits"
	case daysActive >= 3:
		return "Getting started with your tracking habit"
	default:
		return "Week in progress — keep building"
	}
}

// weekTrend compares active days against the prior week.
func weekTrend(daysActive, priorDays int, hasPrior bool) string {
	if !hasPrior {
		return "stable"
	}
	switch {
	case daysActive > priorDays+1:
		return "improving"
	case daysActive < priorDays-1:
		return "declining"
	default:
		return "stable"
	}
}

// reflectionMessage assembles the user-facing reflection text.
func reflectionMessage(r ReflectionResult) string {
	var b strings.Builder
	b.WriteString("Your week in review: ")
	b.WriteString(r.ReflectionSummary)
	b.WriteString(".\n")

	if len(r.WinsThisWeek) > 0 {
		b.WriteString("\nWins:\n")
		for _, w := range r.WinsThisWeek {
			b.WriteString("• ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}

	if len(r.PatternsDiscovered) > 0 {
		b.WriteString("\nPatterns we noticed:\n")
		for _, p := range r.PatternsDiscovered {
			b.WriteString("• ")
			b.WriteString(p.Pattern)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nGentle focus: ")
	b.WriteString(r.GentleFocus)
	return b.String()
}

// bucketByMealType groups meals by the hour-derived meal type. Meals without
// a usable time are skipped.
func bucketByMealType(meals []MealRecord) map[string][]MealRecord {
	buckets := make(map[string][]MealRecord)
	for _, m := range meals {
		if h, ok := mealHour(m); ok {
			t := mealTypeForHour(h)
			buckets[t] = append(buckets[t], m)
		}
	}
	return buckets
}

// daysWithMealType counts distinct dates with at least one meal of the type.
func daysWithMealType(meals []MealRecord, mealType string) int {
	seen := make(map[string]struct{})
	for _, m := range meals {
		h, ok := mealHour(m)
		if !ok || mealTypeForHour(h) != mealType {
			continue
		}
		if d, ok := mealDate(m); ok {
			seen[d.Format(dateLayout)] = struct{}{}
		}
	}
	return len(seen)
}

// mostCommonMealType returns the largest bucket, ties broken by the fixed
// breakfast/lunch/dinner/snack order.
func mostCommonMealType(buckets map[string][]MealRecord) (string, int) {
	best, count := "", 0
	for _, t := range []string{"breakfast", "lunch", "dinner", "snack"} {
		if len(buckets[t]) > count {
			best, count = t, len(buckets[t])
		}
	}
	return best, count
}
