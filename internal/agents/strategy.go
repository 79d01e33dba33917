package agents

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/google/uuid"
)

// EngagementMetrics summarizes how the user has been responding to coaching.
// Supplied by the caller from its interaction history.
type EngagementMetrics struct {
	AcceptanceRate      float64 `json:"acceptance_rate"`
	EngagementTrend     float64 `json:"engagement_trend"`
	LoggingFrequency    float64 `json:"logging_frequency"`
	InterventionSuccess float64 `json:"intervention_success"`
	DaysTracked         int     `json:"days_tracked"`
	StreakDays          int     `json:"streak_days"`
}

// StrategyInput is the context for a strategy review.
type StrategyInput struct {
	CurrentStrategy string
	UserGoal        string
	Metrics         EngagementMetrics
}

// StrategyAdapter decides whether the coaching strategy should switch based
// on engagement metrics. Pure heuristic.
type StrategyAdapter struct {
	name   string
	logger *zap.Logger
}

// NewStrategyAdapter creates the strategy agent.
func NewStrategyAdapter(logger *zap.Logger) *StrategyAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StrategyAdapter{name: "strategy_adapter", logger: logger.With(zap.String("agent", "strategy_adapter"))}
}

// Process checks the switch triggers in fixed order: low acceptance,
// disengagement trend, logging burden, failing interventions. The first
// tripped trigger wins.
func (a *StrategyAdapter) Process(input StrategyInput) StrategyResult {
	m := input.Metrics
	current := input.CurrentStrategy
	if current == "" {
		current = "adaptive_balanced"
	}

	if m.DaysTracked < 2 {
		return StrategyResult{
			StrategySwitch:  false,
			CurrentStrategy: current,
			Reason:          "Insufficient data to evaluate strategy (need at least 2 days)",
			Opik:            a.metadata(current, "", ""),
		}
	}

	type trigger struct {
		fired     bool
		name      string
		metric    string
		value     float64
		threshold float64
		conf      float64
	}
	triggers := []trigger{
		{m.AcceptanceRate < 0.4, "Low user acceptance of suggestions", "acceptance_rate", m.AcceptanceRate, 0.4, 0.85},
		{m.EngagementTrend < -0.2, "Disengagement trend detected", "engagement_trend", m.EngagementTrend, -0.2, 0.78},
		{m.LoggingFrequency < 1.0, "Logging burden causing disengagement", "logging_frequency", m.LoggingFrequency, 1.0, 0.82},
		{m.InterventionSuccess < 0.35, "Interventions not working for this user", "intervention_success", m.InterventionSuccess, 0.35, 0.75},
	}

	for _, t := range triggers {
		if !t.fired {
			continue
		}

		next := nextStrategy(t.metric, current, input.UserGoal)
		result := StrategyResult{
			StrategySwitch: true,
			OldStrategy:    current,
			NewStrategy:    next,
			Trigger:        t.name,
			TriggerMetric:  t.metric,
			TriggerValue:   t.value,
			Threshold:      t.threshold,
			Confidence:     t.conf,
			ExpectedImpact: strategyImpacts[next],
			AdaptationReasoning: []string{
				t.name,
				fmt.Sprintf("%s at %.2f crossed threshold %.2f", t.metric, t.value, t.threshold),
				fmt.Sprintf("Switching from %s to %s", current, next),
			},
			Metrics:      metricsMap(m),
			ExperimentID: uuid.NewString(),
			Opik:         a.metadata(current, next, t.metric),
		}
		a.logger.Info("strategy switch",
			zap.String("from", current),
			zap.String("to", next),
			zap.String("trigger", t.metric))
		return result
	}

	return StrategyResult{
		StrategySwitch:  false,
		CurrentStrategy: current,
		Reason:          "Engagement metrics within healthy ranges",
		Recommendation:  "Continue monitoring",
		Metrics:         metricsMap(m),
		Opik:            a.metadata(current, "", ""),
	}
}

func (a *StrategyAdapter) metadata(current, next, trigger string) OpikMetadata {
	return OpikMetadata{
		Agent:        a.name,
		DecisionType: "strategy_adaptation",
		Metrics: map[string]any{
			"current_strategy": current,
			"new_strategy":     next,
			"trigger_metric":   trigger,
		},
	}
}

// nextStrategy picks the replacement strategy for a tripped trigger.
func nextStrategy(triggerMetric, current, goal string) string {
	goalLower := strings.ToLower(goal)

	switch triggerMetric {
	case "acceptance_rate":
		if strings.Contains(current, "calorie") {
			switch {
			case strings.Contains(goalLower, "energy") || strings.Contains(goalLower, "mood"):
				return "meal_timing_focused"
			case strings.Contains(goalLower, "intuitive"):
				return "intuitive_eating_focused"
			default:
				return "meal_regularity_focused"
			}
		}
	case "engagement_trend":
		return "minimal_tracking"
	case "logging_frequency":
		return "trend_only_summaries"
	case "intervention_success":
		if strings.Contains(goalLower, "consistency") || strings.Contains(goalLower, "consistent") {
			return "habit_stacking"
		}
		return "goal_aligned_tracking"
	}
	return "adaptive_balanced"
}

func metricsMap(m EngagementMetrics) map[string]float64 {
	return map[string]float64{
		"acceptance_rate":      m.AcceptanceRate,
		"engagement_trend":     m.EngagementTrend,
		"logging_frequency":    m.LoggingFrequency,
		"intervention_success": m.InterventionSuccess,
		"days_tracked":         float64(m.DaysTracked),
		"streak_days":          float64(m.StreakDays),
	}
}
