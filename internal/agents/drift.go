package agents

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
)

// DriftInput is the context for drift analysis.
type DriftInput struct {
	Meals       []MealRecord
	DaysTracked int
	UserGoal    string
}

// driftSignal is one candidate drift finding.
type driftSignal struct {
	Type     string
	Severity float64
	Pattern  string
}

// driftPatterns holds the aggregates extracted from the meal history.
type driftPatterns struct {
	MealFrequency     map[string]int
	SkippedEstimate   float64
	LoggingFrequency  float64
	ActualDaysTracked int
	LowEnergyFraction float64
	HasEnergyTags     bool
	TimingVariance    float64
	TimingStability   float64
	HasTiming         bool
}

// DriftDetector finds behavioral drift in the logging history. Pure
// heuristic; no model call.
type DriftDetector struct {
	name   string
	logger *zap.Logger
}

// NewDriftDetector creates the drift agent.
func NewDriftDetector(logger *zap.Logger) *DriftDetector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DriftDetector{name: "drift_detector", logger: logger.With(zap.String("agent", "drift_detector"))}
}

// Process analyzes the meals for drift signals. Requires at least 5 meals
// across at least 5 distinct tracked days before reporting anything.
func (a *DriftDetector) Process(input DriftInput) DriftResult {
	meals := input.Meals

	if len(meals) < 5 {
		return DriftResult{
			DriftDetected: false,
			Reason:        "Insufficient data (< 5 meals)",
			Confidence:    0.0,
			Suggestion:    "Continue logging to establish patterns",
			Opik:          a.metadata(len(meals), input.DaysTracked, 0),
		}
	}

	patterns := analyzeDriftPatterns(meals)

	if patterns.ActualDaysTracked < 5 {
		return DriftResult{
			DriftDetected: false,
			Reason: fmt.Sprintf("Insufficient tracking history (%d days). Need at least 5 days to detect patterns.",
				patterns.ActualDaysTracked),
			Opik: a.metadata(len(meals), input.DaysTracked, 0),
		}
	}

	signals := evaluateDriftSignals(patterns)
	if len(signals) == 0 {
		return DriftResult{
			DriftDetected: false,
			Reasoning:     "No significant drift patterns detected. Keep up the consistency!",
			Opik:          a.metadata(len(meals), patterns.ActualDaysTracked, 0),
		}
	}

	// Highest severity wins; ties go to evaluation order.
	mostSevere := signals[0]
	for _, s := range signals[1:] {
		if s.Severity > mostSevere.Severity {
			mostSevere = s
		}
	}

	result := DriftResult{
		DriftDetected:       true,
		DriftType:           mostSevere.Type,
		Severity:            mostSevere.Severity,
		Pattern:             mostSevere.Pattern,
		Confidence:          math.Min(0.95, 0.6+mostSevere.Severity*0.3),
		DaysObserved:        patterns.ActualDaysTracked,
		Suggestion:          suggestDriftIntervention(mostSevere.Type),
		InterventionOffered: true,
		Opik:                a.metadata(len(meals), patterns.ActualDaysTracked, len(signals)),
	}
	result.Reasoning = driftReasoning(result)

	a.logger.Debug("drift detected",
		zap.String("type", result.DriftType),
		zap.Float64("severity", result.Severity))
	return result
}

func (a *DriftDetector) metadata(dataPoints, periodDays, signalCount int) OpikMetadata {
	return OpikMetadata{
		Agent:        a.name,
		DecisionType: "behavioral_drift",
		Metrics: map[string]any{
			"data_points":       dataPoints,
			"period_days":       periodDays,
			"patterns_detected": signalCount,
		},
	}
}

// analyzeDriftPatterns extracts the aggregates drift evaluation runs on.
// Malformed timestamps are skipped per data point.
func analyzeDriftPatterns(meals []MealRecord) driftPatterns {
	p := driftPatterns{MealFrequency: make(map[string]int)}

	p.ActualDaysTracked = ActiveDayCount(meals)
	if p.ActualDaysTracked == 0 {
		p.ActualDaysTracked = 1
	}

	var hours []float64
	for _, m := range meals {
		if h, ok := mealHour(m); ok {
			p.MealFrequency[mealTypeForHour(h)]++
			if m.Time != "" {
				hours = append(hours, h)
			}
		}
	}

	// Skipped-meal estimate assumes three meals a day once enough days exist.
	p.LoggingFrequency = float64(len(meals)) / float64(p.ActualDaysTracked)
	if p.ActualDaysTracked >= 5 {
		p.SkippedEstimate = math.Max(0, float64(3*p.ActualDaysTracked-len(meals)))
	}

	tags := ExtractEnergyTags(meals)
	if len(tags) > 0 {
		p.HasEnergyTags = true
		low := 0
		for _, t := range tags {
			if t == "low" {
				low++
			}
		}
		p.LowEnergyFraction = float64(low) / float64(len(tags))
	}

	if len(hours) > 1 {
		p.HasTiming = true
		p.TimingVariance = populationVariance(hours)
		p.TimingStability = 1.0 - math.Min(p.TimingVariance/4, 1.0)
	}

	return p
}

// evaluateDriftSignals checks the four drift triggers independently, in
// fixed order: meal_skipping, logging_decline, energy_irregularity,
// timing_instability.
func evaluateDriftSignals(p driftPatterns) []driftSignal {
	var signals []driftSignal

	if p.SkippedEstimate > 3 {
		signals = append(signals, driftSignal{
			Type:     "meal_skipping",
			Severity: math.Min(p.SkippedEstimate/7, 1.0),
			Pattern:  fmt.Sprintf("Approximately %d meals skipped in %d days", int(p.SkippedEstimate), p.ActualDaysTracked),
		})
	}

	if p.LoggingFrequency < 1.5 {
		signals = append(signals, driftSignal{
			Type:     "logging_decline",
			Severity: math.Max(0, 1.0-p.LoggingFrequency),
			Pattern:  fmt.Sprintf("Logging only %.1f meals/day (expected 3)", p.LoggingFrequency),
		})
	}

	if p.HasEnergyTags && p.LowEnergyFraction > 0.4 {
		signals = append(signals, driftSignal{
			Type:     "energy_irregularity",
			Severity: math.Min((p.LowEnergyFraction-0.3)/0.4, 1.0),
			Pattern:  fmt.Sprintf("%d%% of logged meals had low energy", int(p.LowEnergyFraction*100)),
		})
	}

	if p.HasTiming && p.TimingStability < 0.6 {
		signals = append(signals, driftSignal{
			Type:     "timing_instability",
			Severity: 1.0 - p.TimingStability,
			Pattern:  fmt.Sprintf("Meal timing highly variable (consistency: %.0f%%)", p.TimingStability*100),
		})
	}

	return signals
}

func suggestDriftIntervention(driftType string) string {
	if s, ok := driftSuggestions[driftType]; ok {
		return s
	}
	return "Let's refocus on your core goal"
}

func driftReasoning(r DriftResult) string {
	return fmt.Sprintf(`Pattern Analysis:
- Type: %s
- Severity: %.0f%%
- Confidence: %.0f%%
- Observation: %s

This suggests you might benefit from: %s`,
		titleCase(strings.ReplaceAll(r.DriftType, "_", " ")),
		r.Severity*100, r.Confidence*100, r.Pattern, r.Suggestion)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// populationVariance computes the population (not sample) variance.
func populationVariance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	return sq / float64(len(values))
}
