package agents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mealOn(date, clock string) MealRecord {
	return MealRecord{Date: date, Time: clock}
}

func TestStreakLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		dates []string
		want  int
	}{
		{"empty", nil, 0},
		{"single day", []string{"2026-08-20"}, 1},
		{"consecutive", []string{"2026-08-20", "2026-08-21", "2026-08-22"}, 3},
		{"gap resets", []string{"2026-08-20", "2026-08-21", "2026-08-24", "2026-08-25", "2026-08-26"}, 3},
		{"duplicates collapse", []string{"2026-08-20", "2026-08-20", "2026-08-21"}, 2},
		{"unordered input", []string{"2026-08-22", "2026-08-20", "2026-08-21"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			meals := make([]MealRecord, len(tt.dates))
			for i, d := range tt.dates {
				meals[i] = mealOn(d, "12:00")
			}
			assert.Equal(t, tt.want, StreakLength(meals))
		})
	}
}

func TestActiveDayCount(t *testing.T) {
	t.Parallel()

	meals := []MealRecord{
		mealOn("2026-08-20", "08:00"),
		mealOn("2026-08-20", "12:00"),
		mealOn("2026-08-22", "19:00"),
		{CreatedAt: "2026-08-23T09:15:00Z"},
		{Date: "not-a-date"},
	}
	assert.Equal(t, 3, ActiveDayCount(meals))
	assert.Equal(t, 0, ActiveDayCount(nil))
}

func TestLoggingGapDays(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, LoggingGapDays(nil, now))
	assert.Equal(t, 0, LoggingGapDays([]MealRecord{mealOn("2026-08-27", "08:00")}, now))
	assert.Equal(t, 3, LoggingGapDays([]MealRecord{mealOn("2026-08-24", "08:00")}, now))

	// Future-dated meals never produce a negative gap.
	assert.Equal(t, 0, LoggingGapDays([]MealRecord{mealOn("2026-08-30", "08:00")}, now))
}

func TestExtractEnergyTags(t *testing.T) {
	t.Parallel()

	meals := []MealRecord{
		{EnergyTag: "low"},
		{EnergyAfter: "high"},
		{EnergyTag: "ok", EnergyAfter: "high"}, // explicit tag wins
		{},
	}
	assert.Equal(t, []string{"low", "high", "ok"}, ExtractEnergyTags(meals))
}

func TestAvgEnergyScore(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.6, AvgEnergyScore(nil))
	assert.InDelta(t, 0.6, AvgEnergyScore([]MealRecord{
		{EnergyTag: "high"},
		{EnergyTag: "low"},
		{EnergyTag: "ok"},
	}), 1e-9) // (1.0 + 0.2 + 0.6) / 3
	assert.Equal(t, 1.0, AvgEnergyScore([]MealRecord{{EnergyAfter: "good"}}))
}

func TestMealHour(t *testing.T) {
	t.Parallel()

	h, ok := mealHour(MealRecord{Time: "08:30"})
	require.True(t, ok)
	assert.InDelta(t, 8.5, h, 0.001)

	h, ok = mealHour(MealRecord{CreatedAt: "2026-08-20T19:45:00Z"})
	require.True(t, ok)
	assert.InDelta(t, 19.75, h, 0.001)

	_, ok = mealHour(MealRecord{Date: "2026-08-20"})
	assert.False(t, ok)

	_, ok = mealHour(MealRecord{Time: "25:00"})
	assert.False(t, ok)
}

func TestMealTypeForHour(t *testing.T) {
	t.Parallel()

	tests := []struct {
		hour float64
		want string
	}{
		{6, "breakfast"},
		{11.9, "breakfast"},
		{12, "lunch"},
		{16.5, "lunch"},
		{17, "dinner"},
		{20.9, "dinner"},
		{21, "snack"},
		{2, "snack"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mealTypeForHour(tt.hour), "hour %.1f", tt.hour)
	}
}

func TestOverallConfidence(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []ConfidenceLevel
		want ConfidenceLevel
	}{
		{"empty defaults medium", nil, ConfidenceMedium},
		{"any low wins", []ConfidenceLevel{ConfidenceHigh, ConfidenceLow, ConfidenceHigh}, ConfidenceLow},
		{"half high is high", []ConfidenceLevel{ConfidenceHigh, ConfidenceMedium}, ConfidenceHigh},
		{"mostly medium", []ConfidenceLevel{ConfidenceMedium, ConfidenceMedium, ConfidenceHigh}, ConfidenceMedium},
		{"all high", []ConfidenceLevel{ConfidenceHigh, ConfidenceHigh}, ConfidenceHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, OverallConfidence(tt.in))
		})
	}
}
