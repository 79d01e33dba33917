package agents

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealmind/internal/nutrition"
)

type fakeTextGenerator struct {
	response string
	err      error
	calls    int
	lastUser string
}

func (f *fakeTextGenerator) Generate(_ context.Context, _, userPrompt string) (string, error) {
	f.calls++
	f.lastUser = userPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeVisionGenerator struct {
	response string
	err      error
	calls    int
}

func (f *fakeVisionGenerator) GenerateVision(_ context.Context, _, _ string, _ []byte, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

type fakeBarcodeDetector struct {
	value string
	found bool
}

func (f *fakeBarcodeDetector) Detect(_ []byte) (string, bool) { return f.value, f.found }

type fakeLookup struct {
	records map[string]nutrition.Record
	calls   int
}

func (f *fakeLookup) Search(_ context.Context, foodName, _ string) (nutrition.Record, error) {
	f.calls++
	if r, ok := f.records[foodName]; ok {
		return r, nil
	}
	return nutrition.Record{}, nutrition.ErrNotFound
}

func TestVisionInterpreter_Process(t *testing.T) {
	t.Parallel()

	gen := &fakeVisionGenerator{response: `{
		"foods": [
			{"name": "Grilled chicken", "portion": "medium (150-200g)", "confidence": "high"},
			{"name": "Rice", "portion": "large (250g)", "confidence": "medium"},
			{"name": "grilled chicken", "portion": "medium (150-200g)", "confidence": "high"}
		],
		"image_ambiguity": "low",
		"context_applied": "homemade"
	}`}
	a := NewVisionInterpreter(gen, nil, nil)

	result, err := a.Process(context.Background(), []byte("img"), "image/jpeg", "homemade")
	require.NoError(t, err)

	require.Len(t, result.Foods, 2, "duplicate foods collapse")
	assert.Equal(t, "Grilled chicken", result.Foods[0].Name)
	assert.Equal(t, ConfidenceHigh, result.Foods[0].Confidence)
	assert.Equal(t, ConfidenceLow, result.ImageAmbiguity)
	assert.Equal(t, "homemade", result.ContextApplied)
	assert.Equal(t, 1, gen.calls)
}

func TestVisionInterpreter_BackfillsMissingKeys(t *testing.T) {
	t.Parallel()

	gen := &fakeVisionGenerator{response: `{"foods": [{"name": "Apple", "portion": "1 medium"}]}`}
	a := NewVisionInterpreter(gen, nil, nil)

	result, err := a.Process(context.Background(), []byte("img"), "image/jpeg", "snack")
	require.NoError(t, err)

	assert.Equal(t, ConfidenceMedium, result.Foods[0].Confidence)
	assert.Equal(t, ConfidenceMedium, result.ImageAmbiguity)
	assert.Equal(t, "snack", result.ContextApplied)
}

func TestVisionInterpreter_BarcodeShortCircuit(t *testing.T) {
	t.Parallel()

	gen := &fakeVisionGenerator{response: "unused"}
	a := NewVisionInterpreter(gen, &fakeBarcodeDetector{value: "4006381333931", found: true}, nil)

	result, err := a.Process(context.Background(), []byte("img"), "image/jpeg", "snack")
	require.NoError(t, err)

	assert.True(t, result.IsBarcodeImage)
	assert.Equal(t, "4006381333931", result.BarcodeDetected)
	assert.Empty(t, result.Foods)
	assert.Zero(t, gen.calls, "vision model must not be called for barcode images")
}

func TestVisionInterpreter_GenerationError(t *testing.T) {
	t.Parallel()

	gen := &fakeVisionGenerator{err: errors.New("rate limited")}
	a := NewVisionInterpreter(gen, nil, nil)

	_, err := a.Process(context.Background(), []byte("img"), "image/jpeg", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vision_interpreter")
}

func TestNutritionReasoner_EmptyFoodsShortCircuit(t *testing.T) {
	t.Parallel()

	gen := &fakeTextGenerator{response: "unused"}
	lookup := &fakeLookup{}
	a := NewNutritionReasoner(gen, lookup, nil)

	result, err := a.Process(context.Background(), VisionResult{Foods: []FoodItem{}})
	require.NoError(t, err)

	assert.Equal(t, CalorieRange{}, result.TotalCalories)
	assert.Equal(t, MacroRanges{Protein: "0%", Carbs: "0%", Fat: "0%"}, result.Macros)
	assert.Equal(t, ConfidenceHigh, result.Uncertainty)
	assert.Empty(t, result.PerFoodBreakdown)
	assert.Zero(t, gen.calls)
	assert.Zero(t, lookup.calls)
}

func TestNutritionReasoner_VerifiedLookupAnchorsPrompt(t *testing.T) {
	t.Parallel()

	gen := &fakeTextGenerator{response: `{
		"total_calories": {"min": 300, "max": 450},
		"macros": {"protein": "20-25%", "carbs": "45-50%", "fat": "25-30%"},
		"uncertainty": "low",
		"per_food_breakdown": [{"name": "Banana", "calories_min": 90, "calories_max": 120}]
	}`}
	lookup := &fakeLookup{records: map[string]nutrition.Record{
		"Banana": {FoodName: "Banana", Source: "USDA FDC", Nutrients: nutrition.Nutrients{Calories: 105}},
	}}
	a := NewNutritionReasoner(gen, lookup, nil)

	vision := VisionResult{Foods: []FoodItem{
		{Name: "Banana", Portion: "1 medium", Confidence: ConfidenceHigh},
		{Name: "Mystery stew", Portion: "1 bowl", Confidence: ConfidenceLow},
	}}
	result, err := a.Process(context.Background(), vision)
	require.NoError(t, err)

	assert.Equal(t, CalorieRange{Min: 300, Max: 450}, result.TotalCalories)
	assert.Equal(t, ConfidenceLow, result.Uncertainty)
	assert.Equal(t, 2, lookup.calls)
	assert.Contains(t, gen.lastUser, "USDA FDC: 105kcal")
	assert.Contains(t, gen.lastUser, "verified nutrition data")
}

func TestNutritionReasoner_RepairsInvertedRange(t *testing.T) {
	t.Parallel()

	gen := &fakeTextGenerator{response: `{"total_calories": {"min": 500, "max": 300}}`}
	a := NewNutritionReasoner(gen, nil, nil)

	result, err := a.Process(context.Background(), VisionResult{Foods: []FoodItem{{Name: "Pasta"}}})
	require.NoError(t, err)

	assert.Equal(t, CalorieRange{Min: 300, Max: 500}, result.TotalCalories)
	assert.Equal(t, MacroRanges{Protein: "N/A", Carbs: "N/A", Fat: "N/A"}, result.Macros)
	assert.Equal(t, ConfidenceMedium, result.Uncertainty)
}

func TestPersonalizationAgent_SumsDailyTotals(t *testing.T) {
	t.Parallel()

	gen := &fakeTextGenerator{response: `{
		"balance_status": "under_fueled",
		"daily_context": "Light day so far given your activity level."
	}`}
	a := NewPersonalizationAgent(gen, nil)

	current := NutritionResult{TotalCalories: CalorieRange{Min: 300, Max: 400}}
	prior := []MealRecord{
		{Nutrition: &NutritionResult{TotalCalories: CalorieRange{Min: 200, Max: 300}}},
		{Nutrition: nil},
	}
	profile := &UserProfile{ActivityLevel: "high", Goal: "gain_energy"}

	result, err := a.Process(context.Background(), current, profile, prior)
	require.NoError(t, err)

	assert.Equal(t, BalanceUnderFueled, result.BalanceStatus)
	assert.Contains(t, gen.lastUser, "500-700 calories")
	assert.Contains(t, gen.lastUser, "Number of meals today: 3")
	assert.Contains(t, gen.lastUser, "Activity level: high")
}

func TestPersonalizationAgent_BackfillsDefaults(t *testing.T) {
	t.Parallel()

	gen := &fakeTextGenerator{response: `{}`}
	a := NewPersonalizationAgent(gen, nil)

	result, err := a.Process(context.Background(), NutritionResult{}, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, BalanceRoughlyAligned, result.BalanceStatus)
	assert.Equal(t, "Unable to determine context.", result.DailyContext)
	assert.Contains(t, gen.lastUser, "No profile provided")
}

func TestWellnessCoach_SafetyFilterReplacesWholeMessage(t *testing.T) {
	t.Parallel()

	gen := &fakeTextGenerator{response: `{
		"message": "You ate too much today, maybe skip dinner.",
		"emoji_indicator": "🟠",
		"suggestions": ["s1", "s2", "s3"]
	}`}
	a := NewWellnessCoach(gen, nil)

	result, err := a.Process(context.Background(),
		PersonalizationResult{BalanceStatus: BalanceSlightlyOver}, NutritionResult{}, VisionResult{})
	require.NoError(t, err)

	assert.Equal(t, wellnessFallbackMessage, result.Message)
	assert.Len(t, result.Suggestions, 2, "suggestions truncate to two")
	assert.True(t, result.DisclaimerShown)
}

func TestWellnessCoach_CleanMessagePassesThrough(t *testing.T) {
	t.Parallel()

	gen := &fakeTextGenerator{response: `{
		"message": "Lovely balanced plate! Your energy should hold steady through the afternoon."
	}`}
	a := NewWellnessCoach(gen, nil)

	result, err := a.Process(context.Background(),
		PersonalizationResult{BalanceStatus: BalanceUnderFueled, DailyContext: "light morning"},
		NutritionResult{},
		VisionResult{Foods: []FoodItem{{Name: "Salad"}}})
	require.NoError(t, err)

	assert.Contains(t, result.Message, "Lovely balanced plate")
	assert.Equal(t, "🔵", result.EmojiIndicator, "emoji backfilled from balance status")
	assert.NotNil(t, result.Suggestions)
	assert.Empty(t, result.Suggestions)
	assert.True(t, result.DisclaimerShown)
	assert.Contains(t, gen.lastUser, "Salad")
}
