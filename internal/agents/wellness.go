package agents

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"mealmind/internal/perception"
)

const wellnessSystemPrompt = `You are a supportive wellness coach. Your task is to provide empathetic, helpful feedback about meals.

STRICT SAFETY RULES - YOU MUST FOLLOW THESE:
1. NEVER encourage restrictive eating or eating disorders
2. NEVER provide specific calorie minimums or maximums
3. NEVER use body shaming or guilt-inducing language
4. NEVER give medical or dietary advice (refer to professionals)
5. NEVER criticize food choices as "good" or "bad"
6. ALWAYS be supportive and non-judgmental
7. ALWAYS focus on balance and well-being, not weight

TONE GUIDELINES:
- Warm and encouraging
- Focus on nourishment and energy, not restriction
- Celebrate variety and enjoyment of food
- Suggest balance, not perfection
- If activity is mentioned, keep it positive

EMOJI INDICATORS:
- 🔵 Under-fueled: Gently suggest more nourishment
- 🟢 Roughly aligned: Affirm the balance
- 🟠 Slightly over: Keep it neutral, no judgment

You must ALWAYS respond with valid JSON in this exact format:
{
    "message": "Your main supportive message to the user (2-3 sentences)",
    "emoji_indicator": "🔵/🟢/🟠",
    "suggestions": ["Optional helpful suggestion 1", "Optional suggestion 2"],
    "disclaimer_shown": true
}

Keep suggestions practical and positive. Maximum 2 suggestions.
Do NOT include any text outside the JSON. Do NOT use markdown code blocks.`

// WellnessCoach generates the user-facing supportive message and enforces
// the safety post-filter over the generated text.
type WellnessCoach struct {
	llmAgent
}

// NewWellnessCoach creates the wellness agent.
func NewWellnessCoach(text perception.TextGenerator, logger *zap.Logger) *WellnessCoach {
	return &WellnessCoach{
		llmAgent: newLLMAgent("wellness_coach", wellnessSystemPrompt, text, nil, logger),
	}
}

// Process generates the wellness message from the upstream results. Any
// denylisted phrase in the generated message replaces it wholesale with the
// fixed neutral fallback; there is no partial redaction.
func (a *WellnessCoach) Process(ctx context.Context, personalization PersonalizationResult, nutritionResult NutritionResult, vision VisionResult) (WellnessResult, error) {
	foodNames := make([]string, 0, 5)
	for _, f := range vision.Foods {
		if len(foodNames) == 5 {
			break
		}
		foodNames = append(foodNames, f.Name)
	}
	foodsLine := "Unable to identify"
	if len(foodNames) > 0 {
		foodsLine = strings.Join(foodNames, ", ")
	}

	status := personalization.BalanceStatus
	prompt := fmt.Sprintf(`Create a supportive wellness message for this meal analysis:

Foods identified: %s
Energy balance status: %s
Context: %s

Remember:
- Be warm and supportive
- No judgment about the foods
- Focus on energy and well-being
- Include the appropriate emoji indicator (%s)

Respond with JSON only.`, foodsLine, status, personalization.DailyContext, BalanceEmoji(status))

	response, err := a.generateText(ctx, prompt)
	if err != nil {
		return WellnessResult{}, err
	}

	var result WellnessResult
	if err := a.parseJSON(response, &result); err != nil {
		return WellnessResult{}, err
	}

	filtered := false
	lowerMessage := strings.ToLower(result.Message)
	for _, phrase := range wellnessDenylist {
		if strings.Contains(lowerMessage, phrase) {
			a.logger.Debug("safety filter replaced message", zap.String("phrase", phrase))
			result.Message = wellnessFallbackMessage
			filtered = true
			break
		}
	}

	if result.EmojiIndicator == "" {
		result.EmojiIndicator = BalanceEmoji(status)
	}
	if result.Suggestions == nil {
		result.Suggestions = []string{}
	}
	if len(result.Suggestions) > 2 {
		result.Suggestions = result.Suggestions[:2]
	}
	result.DisclaimerShown = true

	result.Opik = OpikMetadata{
		Agent:        a.name,
		DecisionType: "wellness_message",
		Metrics: map[string]any{
			"balance_status":  string(status),
			"safety_filtered": filtered,
			"suggestions":     len(result.Suggestions),
		},
	}
	return result, nil
}
