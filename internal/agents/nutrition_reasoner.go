package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mealmind/internal/nutrition"
	"mealmind/internal/perception"
)

const nutritionSystemPrompt = `You are a nutrition analysis expert. Your task is to estimate calorie and macro ranges for identified food items.

CRITICAL INSTRUCTIONS FOR JSON OUTPUT:
1. ALWAYS respond with ONLY valid JSON - no other text
2. Do NOT use markdown code blocks (no ` + "```" + `)
3. Ensure ALL property names are in double quotes
4. NO trailing commas after the last item in objects or arrays
5. Use ONLY these exact property names (case-sensitive):
   - total_calories (with min and max as integers)
   - macros (with protein, carbs, fat as percentage strings like "20-25%")
   - uncertainty (as string: "low", "medium", or "high")
   - per_food_breakdown (as array)

NUTRITION GUIDELINES:
- Provide RANGES, not exact numbers
- Consider typical variations in portion sizes
- Estimate macros as percentage ranges
- Rate uncertainty: "low" (standard items), "medium" (some variation), "high" (unusual items)
- Be conservative with ranges

REQUIRED JSON FORMAT (copy this structure exactly):
{
    "total_calories": {
        "min": 300,
        "max": 450
    },
    "macros": {
        "protein": "20-25%",
        "carbs": "45-50%",
        "fat": "25-30%"
    },
    "uncertainty": "low",
    "per_food_breakdown": [
        {
            "name": "food name",
            "calories_min": 100,
            "calories_max": 150
        }
    ]
}

REMEMBER: Output ONLY the JSON object. No text before or after.`

// NutritionLookup is the verified-catalog dependency of the reasoner.
type NutritionLookup interface {
	Search(ctx context.Context, foodName, barcode string) (nutrition.Record, error)
}

// NutritionReasoner estimates calorie and macro ranges for identified foods,
// anchoring the model on verified catalog data when a lookup hits.
type NutritionReasoner struct {
	llmAgent
	lookup NutritionLookup
}

// NewNutritionReasoner creates the reasoner. lookup may be nil to run
// model-only estimation.
func NewNutritionReasoner(text perception.TextGenerator, lookup NutritionLookup, logger *zap.Logger) *NutritionReasoner {
	return &NutritionReasoner{
		llmAgent: newLLMAgent("nutrition_reasoner", nutritionSystemPrompt, text, nil, logger),
		lookup:   lookup,
	}
}

// Process estimates nutrition for the vision output. An empty food list
// short-circuits to an all-zero high-uncertainty result without any model
// or network call.
func (a *NutritionReasoner) Process(ctx context.Context, vision VisionResult) (NutritionResult, error) {
	if len(vision.Foods) == 0 {
		return NutritionResult{
			TotalCalories:    CalorieRange{Min: 0, Max: 0},
			Macros:           MacroRanges{Protein: "0%", Carbs: "0%", Fat: "0%"},
			Uncertainty:      ConfidenceHigh,
			PerFoodBreakdown: []FoodCalories{},
			Opik:             a.metadata(0, 0),
		}, nil
	}

	descriptions := make([]string, 0, len(vision.Foods))
	verified := 0
	for _, food := range vision.Foods {
		desc := fmt.Sprintf("- %s: %s (confidence: %s)", food.Name, food.Portion, food.Confidence)
		if record, ok := a.lookupVerified(ctx, food); ok {
			verified++
			if record.Nutrients.Calories > 0 {
				desc += fmt.Sprintf(" [%s: %.0fkcal per serving]", record.Source, record.Nutrients.Calories)
			}
		}
		descriptions = append(descriptions, desc)
	}

	prompt := fmt.Sprintf("Analyze these food items and estimate their nutritional content:\n\n%s", strings.Join(descriptions, "\n"))
	if verified > 0 {
		prompt += "\n\nNote: Some foods have verified nutrition data from USDA FDC or Open Food Facts (marked above). Use this as baseline for more accurate estimates."
	}
	prompt += "\n\nConsider the portion sizes and provide calorie and macro ranges. Respond with JSON only."

	response, err := a.generateText(ctx, prompt)
	if err != nil {
		return NutritionResult{}, err
	}

	var result NutritionResult
	if err := a.parseJSON(response, &result); err != nil {
		return NutritionResult{}, err
	}

	// Backfill missing keys and repair inverted ranges.
	if result.Macros == (MacroRanges{}) {
		result.Macros = MacroRanges{Protein: "N/A", Carbs: "N/A", Fat: "N/A"}
	}
	if result.Uncertainty == "" {
		result.Uncertainty = ConfidenceMedium
	}
	if result.PerFoodBreakdown == nil {
		result.PerFoodBreakdown = []FoodCalories{}
	}
	if result.TotalCalories.Min > result.TotalCalories.Max {
		result.TotalCalories.Min, result.TotalCalories.Max = result.TotalCalories.Max, result.TotalCalories.Min
	}

	result.Opik = a.metadata(len(vision.Foods), verified)
	return result, nil
}

// lookupVerified queries the catalog, treating transport failures and misses
// as "no verified data".
func (a *NutritionReasoner) lookupVerified(ctx context.Context, food FoodItem) (nutrition.Record, bool) {
	if a.lookup == nil {
		return nutrition.Record{}, false
	}
	record, err := a.lookup.Search(ctx, food.Name, food.Barcode)
	if err != nil {
		if !errors.Is(err, nutrition.ErrNotFound) {
			a.logger.Warn("nutrition lookup failed", zap.String("food", food.Name), zap.Error(err))
		}
		return nutrition.Record{}, false
	}
	return record, true
}

func (a *NutritionReasoner) metadata(foods, verified int) OpikMetadata {
	return OpikMetadata{
		Agent:        a.name,
		DecisionType: "nutrition_estimation",
		Metrics: map[string]any{
			"food_count":       foods,
			"verified_lookups": verified,
		},
	}
}
