package agents

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullWeek() []MealRecord {
	var meals []MealRecord
	dates := []string{"2026-08-21", "2026-08-22", "2026-08-23", "2026-08-24", "2026-08-25", "2026-08-26"}
	for _, date := range dates {
		for _, clock := range []string{"08:00", "12:30", "18:30"} {
			meals = append(meals, MealRecord{Date: date, Time: clock, EnergyAfter: "high"})
		}
	}
	return meals
}

func TestWeeklyReflection_IncompleteWeek(t *testing.T) {
	t.Parallel()

	a := NewWeeklyReflectionAgent(nil)
	result := a.Process(ReflectionInput{Meals: fullWeek()[:4]})

	assert.True(t, result.WeekIncomplete)
	assert.Equal(t, "Keep logging! We need one week of data to find patterns.", result.ReflectionMessage)
	assert.Empty(t, result.PatternsDiscovered)
	assert.Empty(t, result.WinsThisWeek)
}

func TestWeeklyReflection_FullWeek(t *testing.T) {
	t.Parallel()

	a := NewWeeklyReflectionAgent(nil)
	result := a.Process(ReflectionInput{Meals: fullWeek(), InterventionCount: 1})

	assert.False(t, result.WeekIncomplete)
	assert.NotEmpty(t, result.ReflectionID)
	assert.Equal(t, "Strong week — you're crushing consistency", result.ReflectionSummary)

	require.Len(t, result.PatternsDiscovered, 3)
	for _, p := range result.PatternsDiscovered {
		assert.Equal(t, "positive", p.Trend)
		assert.Contains(t, p.Pattern, "energy")
		assert.InDelta(t, 0.95, p.Confidence, 0.001)
	}

	require.Len(t, result.WinsThisWeek, 3)
	assert.Contains(t, result.WinsThisWeek[0], "6 days")
	assert.Contains(t, result.WinsThisWeek[1], "18 meals")

	assert.Equal(t, "Keep up what's working with your energy!", result.GentleFocus)
	assert.Equal(t, "stable", result.WeekTrend)
	assert.Contains(t, result.ReflectionMessage, "Your week in review")
	assert.Contains(t, result.ReflectionMessage, "Gentle focus:")
	assert.Greater(t, result.MotivationScore, 0.8)
	assert.LessOrEqual(t, result.MotivationScore, 1.0)
}

func TestWeeklyReflection_SkippedMealPattern(t *testing.T) {
	t.Parallel()

	// Lunch and dinner only: breakfast skipped every day.
	var meals []MealRecord
	dates := []string{"2026-08-21", "2026-08-22", "2026-08-23", "2026-08-24", "2026-08-25"}
	for _, date := range dates {
		meals = append(meals,
			MealRecord{Date: date, Time: "12:30"},
			MealRecord{Date: date, Time: "18:30"},
		)
	}

	a := NewWeeklyReflectionAgent(nil)
	result := a.Process(ReflectionInput{Meals: meals})

	var skipped *DiscoveredPattern
	for i := range result.PatternsDiscovered {
		if result.PatternsDiscovered[i].Trend == "negative" {
			skipped = &result.PatternsDiscovered[i]
			break
		}
	}
	require.NotNil(t, skipped)
	assert.Contains(t, skipped.Pattern, "Skipped breakfast on 5 days")
	assert.Equal(t, "Try consistent breakfast timing next week", result.GentleFocus)
}

func TestWeeklyReflection_Deterministic(t *testing.T) {
	t.Parallel()

	a := NewWeeklyReflectionAgent(nil)
	input := ReflectionInput{Meals: fullWeek(), UserGoal: "gain energy", InterventionCount: 2}

	first := a.Process(input)
	second := a.Process(input)

	diff := cmp.Diff(first, second, cmpopts.IgnoreFields(ReflectionResult{}, "ReflectionID"))
	assert.Empty(t, diff)
}

func TestWeeklyReflection_UntaggedMealsDiluteEnergyCorrelation(t *testing.T) {
	t.Parallel()

	// Five lunches, only two rated high: 2/5 is below the 0.6 threshold even
	// though every rated meal is high.
	dates := []string{"2026-08-21", "2026-08-22", "2026-08-23", "2026-08-24", "2026-08-25"}
	var meals []MealRecord
	for i, date := range dates {
		m := MealRecord{Date: date, Time: "12:30"}
		if i < 2 {
			m.EnergyAfter = "high"
		}
		meals = append(meals, m)
	}

	a := NewWeeklyReflectionAgent(nil)
	result := a.Process(ReflectionInput{Meals: meals})

	for _, p := range result.PatternsDiscovered {
		if p.Trend == "positive" {
			assert.NotContains(t, p.Pattern, "energy")
		}
	}

	// Four of five rated high clears the threshold.
	meals[2].EnergyAfter = "good"
	meals[3].EnergyAfter = "high"
	result = a.Process(ReflectionInput{Meals: meals})

	found := false
	for _, p := range result.PatternsDiscovered {
		if p.Trend == "positive" && p.Pattern == "Consistent lunch timing correlates with better energy" {
			found = true
			assert.InDelta(t, 0.95, p.Confidence, 0.001) // min(0.95, 0.6+0.8)
		}
	}
	assert.True(t, found)
}

func TestWeekSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		days, meals int
		want        string
	}{
		{6, 15, "Strong week — you're crushing consistency"},
		{6, 14, "Solid week with good logging habits"},
		{4, 10, "Solid week with good logging habits"},
		{3, 5, "Getting started with your tracking habit"},
		{2, 6, "Week in progress — keep building"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, weekSummary(tt.days, tt.meals), "days=%d meals=%d", tt.days, tt.meals)
	}
}

func TestWeekTrend(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "stable", weekTrend(6, 0, false))
	assert.Equal(t, "improving", weekTrend(6, 4, true))
	assert.Equal(t, "declining", weekTrend(2, 4, true))
	assert.Equal(t, "stable", weekTrend(5, 4, true))
	assert.Equal(t, "stable", weekTrend(4, 5, true))
}

func TestMotivationScore(t *testing.T) {
	t.Parallel()

	positive := []DiscoveredPattern{{Trend: "positive"}, {Trend: "positive"}, {Trend: "positive"}}
	assert.InDelta(t, 1.0, motivationScore(7, 3, positive), 0.001)
	assert.InDelta(t, 0.5, motivationScore(0, 0, nil), 0.001)
}
