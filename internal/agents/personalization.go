package agents

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mealmind/internal/perception"
)

const personalizationSystemPrompt = `You are a personalized nutrition advisor. Your task is to contextualize nutrition data based on a user's profile.

IMPORTANT GUIDELINES:
- Consider activity level when estimating daily needs
- Respect the user's goal (maintain, gain energy, reduce excess)
- Use RANGES for all estimates - people vary
- Never give exact calorie targets
- Determine balance status:
  * "under_fueled" - significantly below typical needs
  * "roughly_aligned" - within reasonable range
  * "slightly_over" - somewhat above typical needs
- Be supportive, not judgmental

You must ALWAYS respond with valid JSON in this exact format:
{
    "balance_status": "under_fueled/roughly_aligned/slightly_over",
    "daily_context": "A brief explanation of the assessment based on their profile",
    "remaining_estimate": {
        "min": 800,
        "max": 1200
    },
    "personalization_factors": {
        "activity_adjustment": "description of how activity level affected assessment",
        "goal_alignment": "how well this aligns with their goal"
    }
}

If no profile is provided, use reasonable defaults for a moderately active adult.
Do NOT include any text outside the JSON. Do NOT use markdown code blocks.`

// PersonalizationAgent assesses a meal's energy balance against the user's
// profile and the running daily total.
type PersonalizationAgent struct {
	llmAgent
}

// NewPersonalizationAgent creates the personalization agent.
func NewPersonalizationAgent(text perception.TextGenerator, logger *zap.Logger) *PersonalizationAgent {
	return &PersonalizationAgent{
		llmAgent: newLLMAgent("personalization_agent", personalizationSystemPrompt, text, nil, logger),
	}
}

// Process classifies the meal's balance status given the nutrition estimate,
// the optional profile, and today's prior meals.
func (a *PersonalizationAgent) Process(ctx context.Context, nutritionResult NutritionResult, profile *UserProfile, dailyMeals []MealRecord) (PersonalizationResult, error) {
	dailyMin := nutritionResult.TotalCalories.Min
	dailyMax := nutritionResult.TotalCalories.Max
	for _, meal := range dailyMeals {
		if meal.Nutrition != nil {
			dailyMin += meal.Nutrition.TotalCalories.Min
			dailyMax += meal.Nutrition.TotalCalories.Max
		}
	}

	prompt := fmt.Sprintf(`Analyze this meal in the context of the user's daily energy needs:

Current meal calories: %d-%d
Today's total so far (including this meal): %d-%d calories
Number of meals today: %d

%s

Provide a personalized energy balance assessment. Respond with JSON only.`,
		nutritionResult.TotalCalories.Min, nutritionResult.TotalCalories.Max,
		dailyMin, dailyMax,
		len(dailyMeals)+1,
		profileContext(profile))

	response, err := a.generateText(ctx, prompt)
	if err != nil {
		return PersonalizationResult{}, err
	}

	var result PersonalizationResult
	if err := a.parseJSON(response, &result); err != nil {
		return PersonalizationResult{}, err
	}

	if result.BalanceStatus == "" {
		result.BalanceStatus = BalanceRoughlyAligned
	}
	if result.DailyContext == "" {
		result.DailyContext = "Unable to determine context."
	}

	result.Opik = OpikMetadata{
		Agent:        a.name,
		DecisionType: "balance_assessment",
		Metrics: map[string]any{
			"balance_status":  string(result.BalanceStatus),
			"daily_total_min": dailyMin,
			"daily_total_max": dailyMax,
			"meals_today":     len(dailyMeals) + 1,
		},
	}
	return result, nil
}

// profileContext renders whatever subset of the profile is present.
func profileContext(profile *UserProfile) string {
	if profile == nil {
		return "No profile provided - using defaults for moderately active adult."
	}
	var parts []string
	if profile.AgeRange != "" {
		parts = append(parts, "Age range: "+profile.AgeRange)
	}
	if profile.WeightRange != "" {
		parts = append(parts, "Weight range: "+profile.WeightRange)
	}
	if profile.HeightRange != "" {
		parts = append(parts, "Height range: "+profile.HeightRange)
	}
	if profile.ActivityLevel != "" {
		parts = append(parts, "Activity level: "+profile.ActivityLevel)
	}
	if profile.Goal != "" {
		parts = append(parts, "Goal: "+profile.Goal)
	}
	if len(parts) == 0 {
		return "No profile provided - using defaults for moderately active adult."
	}
	return "User profile: " + strings.Join(parts, ", ")
}
