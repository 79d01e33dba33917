package agents

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"
)

const medicalDisclaimer = "[Important: This is general wellness support, not medical advice. " +
	"If you're concerned about your health, please consult a doctor.]"

// EnergyInput is the context for stress scoring.
type EnergyInput struct {
	Meals    []MealRecord
	UserGoal string
	Now      time.Time
}

// EnergyInterventionAgent scores energy-pattern stress from the meal history
// and composes a compassionate intervention when warranted. Pure heuristic.
type EnergyInterventionAgent struct {
	name   string
	logger *zap.Logger
}

// NewEnergyInterventionAgent creates the energy agent.
func NewEnergyInterventionAgent(logger *zap.Logger) *EnergyInterventionAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnergyInterventionAgent{
		name:   "energy_intervention",
		logger: logger.With(zap.String("agent", "energy_intervention")),
	}
}

// Process evaluates the five stress indicators and, when any fire, builds a
// tiered intervention message with a tone check and safety flags.
func (a *EnergyInterventionAgent) Process(input EnergyInput) EnergyResult {
	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	score, indicators := stressScore(input.Meals, now)

	if len(indicators) == 0 {
		return EnergyResult{
			StressDetected: false,
			Message:        "You're doing well. Keep it up!",
			Opik:           a.metadata(0, 0, ""),
		}
	}

	tier, action := interventionTier(score)
	message := composeIntervention(indicators, action)
	tone := verifyTone(message)
	flags := scanSafetyFlags(message)

	a.logger.Debug("energy intervention",
		zap.Float64("stress_level", score),
		zap.String("tier", tier))

	return EnergyResult{
		StressDetected:    true,
		StressLevel:       score,
		Indicators:        indicators,
		InterventionType:  tier,
		SuggestedAction:   action,
		SuggestedMessage:  message,
		ToneCheck:         &tone,
		MedicalDisclaimer: true,
		FollowUp:          "Optional. No pressure. Just checking in.",
		CompassionScore:   compassionScore(message),
		SafetyFlags:       flags,
		Opik:              a.metadata(score, len(indicators), tier),
	}
}

func (a *EnergyInterventionAgent) metadata(score float64, indicatorCount int, tier string) OpikMetadata {
	return OpikMetadata{
		Agent:        a.name,
		DecisionType: "energy_intervention",
		Metrics: map[string]any{
			"stress_level":      score,
			"indicator_count":   indicatorCount,
			"intervention_type": tier,
		},
	}
}

// stressScore sums the five additive indicators, capped at 1.0. Order of the
// returned indicator strings follows evaluation order.
func stressScore(meals []MealRecord, now time.Time) (float64, []string) {
	var score float64
	var indicators []string

	tags := ExtractEnergyTags(meals)
	if len(tags) > 0 {
		low := 0
		for _, t := range tags {
			if t == "low" {
				low++
			}
		}
		if frac := float64(low) / float64(len(tags)); frac > 0.5 {
			score += 0.30
			indicators = append(indicators,
				fmt.Sprintf("Low energy in %d%% of recent meals", int(frac*100)))
		}
	}

	var hours []float64
	for _, m := range meals {
		if m.Time != "" {
			if h, ok := parseClock(m.Time); ok {
				hours = append(hours, h)
			}
		}
	}
	if len(hours) >= 4 {
		if sd := math.Sqrt(populationVariance(hours)); sd > 3.5 {
			score += 0.25
			indicators = append(indicators, "Erratic meal timing suggests schedule stress")
		}
	}

	if len(meals) > 0 {
		small := 0
		for _, m := range meals {
			if m.CaloriesEstimate > 0 && m.CaloriesEstimate < 400 {
				small++
			}
		}
		if float64(small) >= float64(len(meals))*0.4 {
			score += 0.20
			indicators = append(indicators, "Multiple small meals may indicate appetite changes")
		}
	}

	for _, m := range meals {
		h, ok := mealHour(m)
		if ok && h >= 20 && m.CaloriesEstimate > 600 {
			score += 0.15
			indicators = append(indicators, "Late heavy meals can disrupt sleep and recovery")
			break
		}
	}

	if gap := LoggingGapDays(meals, now); gap > 2 {
		score += 0.20
		indicators = append(indicators,
			fmt.Sprintf("%d days since last log. Re-engagement support may help", gap))
	}

	return math.Min(score, 1.0), indicators
}

// interventionTier maps a stress score to a tier name and suggested action.
func interventionTier(score float64) (string, string) {
	switch {
	case score < 0.3:
		return "gentle_reassurance", "Take a breath. You're doing your best."
	case score < 0.6:
		return "mild_support", "Want to simplify your approach for a few days?"
	default:
		return "significant_support", "You seem overwhelmed. Want to reset tomorrow with something simpler?"
	}
}

// composeIntervention assembles the full intervention message: observation
// bullets (top 3), the action, a non-judgment statement, and the disclaimer.
func composeIntervention(indicators []string, action string) string {
	var b strings.Builder
	b.WriteString("I noticed a few things in your recent logging:\n\n")
	top := indicators
	if len(top) > 3 {
		top = top[:3]
	}
	for _, ind := range top {
		b.WriteString("• ")
		b.WriteString(ind)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(action)
	b.WriteString("\n\nThere's no judgment here. Everyone's rhythm looks different week to week.\n\n")
	b.WriteString(medicalDisclaimer)
	return b.String()
}

// verifyTone checks the message against the harmful/compassionate word lists.
// Compassionate means zero harmful words and more than two supportive ones.
func verifyTone(message string) ToneCheck {
	lower := strings.ToLower(message)

	var harmful, supportive []string
	for _, w := range toneHarmfulWords {
		if strings.Contains(lower, w) {
			harmful = append(harmful, w)
		}
	}
	for _, w := range toneCompassionateWords {
		if strings.Contains(lower, w) {
			supportive = append(supportive, w)
		}
	}

	return ToneCheck{
		Compassionate:        len(harmful) == 0 && len(supportive) > 2,
		CompassionScore:      float64(len(supportive)) / float64(len(harmful)+len(supportive)+1),
		HarmfulWordsDetected: harmful,
		SupportiveWordsFound: supportive,
	}
}

// compassionScore grades the message on four structural qualities, 0.25 each:
// validation, offering options, absence of judgment, and the disclaimer.
func compassionScore(message string) float64 {
	lower := strings.ToLower(message)
	var score float64
	if strings.Contains(lower, "noticed") || strings.Contains(lower, "observed") {
		score += 0.25
	}
	if strings.Contains(lower, "want to") || strings.Contains(lower, "optional") {
		score += 0.25
	}
	if strings.Contains(lower, "no judgment") || strings.Contains(lower, "no pressure") {
		score += 0.25
	}
	if strings.Contains(lower, "not medical advice") {
		score += 0.25
	}
	return score
}

// scanSafetyFlags reports which safety word groups the message trips.
func scanSafetyFlags(message string) []string {
	lower := strings.ToLower(message)
	var flags []string
	for _, g := range safetyFlagGroups {
		for _, w := range g.Words {
			if strings.Contains(lower, w) {
				flags = append(flags, g.Flag)
				break
			}
		}
	}
	return flags
}
