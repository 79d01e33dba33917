package agents

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// NextActionInput is the decision context for the next-action tree.
type NextActionInput struct {
	Meals        []MealRecord
	UserGoal     string
	CurrentDrift *DriftResult
	EnergyLevel  string
	Now          time.Time
}

// NextActionAgent walks a fixed priority tree to pick the single most useful
// next action. Pure heuristic.
type NextActionAgent struct {
	name   string
	logger *zap.Logger
}

// NewNextActionAgent creates the next-action agent.
func NewNextActionAgent(logger *zap.Logger) *NextActionAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NextActionAgent{name: "next_action", logger: logger.With(zap.String("agent", "next_action"))}
}

// Process evaluates the priority branches in order: nutritional urgency,
// stress relief, goal consistency, then normalization.
func (a *NextActionAgent) Process(input NextActionInput) NextActionResult {
	now := input.Now
	if now.IsZero() {
		now = time.Now()
	}

	hoursSince := hoursSinceLastMeal(input.Meals, now)
	path := []string{fmt.Sprintf("hours_since_last_meal=%.1f", hoursSince)}

	if hoursSince > 5 || (input.EnergyLevel == "low" && hoursSince > 3) {
		path = append(path, "branch=nutritional_urgency")
		return a.result(input.UserGoal, NextActionResult{
			NextAction: "Have a balanced meal or substantial snack in the next 30 minutes",
			ActionType: "nutritional_intervention",
			Reasoning: []string{
				fmt.Sprintf("%.1f hours since last meal", hoursSince),
				"Sustained energy requires regular fueling",
			},
			Confidence: 0.85,
			Urgency:    "high",
			AlternativeActions: []string{
				"Log what you've eaten if you had something unrecorded",
				"Set a meal reminder for the next hour",
			},
			DecisionTreePath: path,
		})
	}

	if signals := stressSignals(input.Meals, input.CurrentDrift); len(signals) > 0 {
		path = append(path, "branch=stress_relief")
		return a.result(input.UserGoal, NextActionResult{
			NextAction: "Take a break from logging today. Focus on intuitive eating and reset tomorrow",
			ActionType: "stress_relief",
			Reasoning:  signals,
			Confidence: 0.78,
			Urgency:    "moderate",
			AlternativeActions: []string{
				"Log just one simple meal to keep the habit alive",
				"Note your energy level without logging food",
			},
			DecisionTreePath: path,
		})
	}

	if goalWantsConsistency(input.UserGoal) {
		path = append(path, "branch=consistency_maintenance")
		return a.result(input.UserGoal, NextActionResult{
			NextAction: "Log this meal and note how you feel afterward",
			ActionType: "consistency_maintenance",
			Reasoning: []string{
				"Your goal benefits from a consistent record",
				"Energy notes make the next reflection more useful",
			},
			Confidence: 0.82,
			Urgency:    "moderate",
			AlternativeActions: []string{
				"Log the meal without the energy note",
				"Snap a quick photo to log later",
			},
			DecisionTreePath: path,
		})
	}

	path = append(path, "branch=normalization")
	return a.result(input.UserGoal, NextActionResult{
		NextAction: "Continue with your meal. You're on track",
		ActionType: "normalization",
		Reasoning: []string{
			"No urgency detected",
			"Recent patterns look steady",
		},
		Confidence: 0.88,
		Urgency:    "low",
		AlternativeActions: []string{
			"Add an energy tag after eating",
			"Review your weekly reflection when it arrives",
		},
		DecisionTreePath: path,
	})
}

func (a *NextActionAgent) result(goal string, r NextActionResult) NextActionResult {
	r.AlignmentWithGoal = goalAlignment(goal, r.NextAction)
	r.Opik = OpikMetadata{
		Agent:        a.name,
		DecisionType: "next_action",
		Metrics: map[string]any{
			"action_type": r.ActionType,
			"confidence":  r.Confidence,
			"urgency":     r.Urgency,
		},
	}
	a.logger.Debug("next action", zap.String("type", r.ActionType))
	return r
}

// hoursSinceLastMeal approximates elapsed hours from the last meal's clock
// time to now's clock time, modulo 24. No meals at all reads as 12 hours; a
// meal with no usable time reads as 4.
func hoursSinceLastMeal(meals []MealRecord, now time.Time) float64 {
	if len(meals) == 0 {
		return 12.0
	}
	last := meals[len(meals)-1]
	h, ok := mealHour(last)
	if !ok {
		return 4.0
	}
	diff := float64(now.Hour()) - h
	for diff <= 0 {
		diff += 24
	}
	return diff
}

// stressSignals collects up to two stress reasons from the drift result and
// meal timing.
func stressSignals(meals []MealRecord, drift *DriftResult) []string {
	var signals []string

	if drift != nil && drift.DriftDetected {
		switch drift.DriftType {
		case "logging_decline":
			signals = append(signals, "Logging has dropped off recently")
		case "energy_irregularity":
			signals = append(signals, "Energy levels have been irregular")
		}
	}

	if len(meals) > 0 {
		if h, ok := mealHour(meals[len(meals)-1]); ok && h > 21 {
			signals = append(signals, "Late-night eating can signal a stretched day")
		}
	}

	if len(signals) > 2 {
		signals = signals[:2]
	}
	return signals
}

// goalWantsConsistency reports whether the goal calls for steady logging.
// An unset goal defaults to yes.
func goalWantsConsistency(goal string) bool {
	if strings.TrimSpace(goal) == "" {
		return true
	}
	lower := strings.ToLower(goal)
	for _, w := range []string{"energy", "focus", "mood", "consistent"} {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// goalAlignment scores how well the chosen action's wording serves the goal.
func goalAlignment(goal, action string) float64 {
	if strings.TrimSpace(goal) == "" {
		return 0.70
	}
	goalLower := strings.ToLower(goal)
	actionLower := strings.ToLower(action)
	switch {
	case strings.Contains(goalLower, "energy") && strings.Contains(actionLower, "energy"):
		return 0.95
	case strings.Contains(goalLower, "consistent") && strings.Contains(actionLower, "log"):
		return 0.90
	case strings.Contains(goalLower, "intuitive") && strings.Contains(actionLower, "reset"):
		return 0.92
	default:
		return 0.80
	}
}
