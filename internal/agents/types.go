// Package agents implements the ten analysis agents and the orchestrator
// that chains them into the meal-analysis pipeline. The four LLM-backed
// agents (vision, nutrition, personalization, wellness) delegate to remote
// generation clients; the six analytic agents are pure heuristics.
package agents

import "time"

// ConfidenceLevel is the shared low/medium/high vocabulary used for food
// confidence, image ambiguity, and nutrition uncertainty.
type ConfidenceLevel string

const (
	ConfidenceLow    ConfidenceLevel = "low"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceHigh   ConfidenceLevel = "high"
)

// FoodItem is a single identified food with its estimated portion.
type FoodItem struct {
	Name       string          `json:"name"`
	Portion    string          `json:"portion"`
	Confidence ConfidenceLevel `json:"confidence"`
	Barcode    string          `json:"barcode,omitempty"`
}

// CalorieRange is a min/max calorie estimate. Invariant: Min <= Max.
type CalorieRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// MacroRanges holds macro percentage ranges as strings like "20-25%".
type MacroRanges struct {
	Protein string `json:"protein"`
	Carbs   string `json:"carbs"`
	Fat     string `json:"fat"`
}

// FoodCalories is the per-food slice of the calorie breakdown.
type FoodCalories struct {
	Name        string `json:"name"`
	CaloriesMin int    `json:"calories_min"`
	CaloriesMax int    `json:"calories_max"`
}

// OpikMetadata is the observability side channel attached to every agent
// result. It records which agent decided what and the salient metric values;
// it is not part of the decision contract.
type OpikMetadata struct {
	Agent        string         `json:"agent"`
	DecisionType string         `json:"decision_type"`
	Metrics      map[string]any `json:"metrics,omitempty"`
}

// VisionResult is the Vision Interpreter output.
type VisionResult struct {
	Foods           []FoodItem      `json:"foods"`
	ImageAmbiguity  ConfidenceLevel `json:"image_ambiguity"`
	ContextApplied  string          `json:"context_applied,omitempty"`
	BarcodeDetected string          `json:"barcode_detected,omitempty"`
	IsBarcodeImage  bool            `json:"is_barcode_image,omitempty"`
	Opik            OpikMetadata    `json:"opik_metadata"`
}

// NutritionResult is the Nutrition Reasoner output.
type NutritionResult struct {
	TotalCalories    CalorieRange    `json:"total_calories"`
	Macros           MacroRanges     `json:"macros"`
	Uncertainty      ConfidenceLevel `json:"uncertainty"`
	PerFoodBreakdown []FoodCalories  `json:"per_food_breakdown"`
	Opik             OpikMetadata    `json:"opik_metadata"`
}

// BalanceStatus is the three-way classification of estimated energy intake
// relative to inferred need.
type BalanceStatus string

const (
	BalanceUnderFueled    BalanceStatus = "under_fueled"
	BalanceRoughlyAligned BalanceStatus = "roughly_aligned"
	BalanceSlightlyOver   BalanceStatus = "slightly_over"
)

// PersonalizationResult is the Personalization Agent output.
type PersonalizationResult struct {
	BalanceStatus          BalanceStatus     `json:"balance_status"`
	DailyContext           string            `json:"daily_context"`
	RemainingEstimate      *CalorieRange     `json:"remaining_estimate,omitempty"`
	PersonalizationFactors map[string]string `json:"personalization_factors,omitempty"`
	Opik                   OpikMetadata      `json:"opik_metadata"`
}

// WellnessResult is the Wellness Coach output.
type WellnessResult struct {
	Message         string       `json:"message"`
	EmojiIndicator  string       `json:"emoji_indicator"`
	Suggestions     []string     `json:"suggestions"`
	DisclaimerShown bool         `json:"disclaimer_shown"`
	Opik            OpikMetadata `json:"opik_metadata"`
}

// DriftResult is the Drift Detection output.
type DriftResult struct {
	DriftDetected       bool         `json:"drift_detected"`
	DriftType           string       `json:"drift_type,omitempty"`
	Severity            float64      `json:"severity"`
	DaysObserved        int          `json:"days_observed,omitempty"`
	Pattern             string       `json:"pattern,omitempty"`
	Confidence          float64      `json:"confidence"`
	Suggestion          string       `json:"suggestion,omitempty"`
	InterventionOffered bool         `json:"intervention_offered"`
	Reason              string       `json:"reason,omitempty"`
	Reasoning           string       `json:"reasoning,omitempty"`
	Opik                OpikMetadata `json:"opik_metadata"`
}

// NextActionResult is the Next-Action decision output.
type NextActionResult struct {
	NextAction         string       `json:"next_action"`
	ActionType         string       `json:"action_type"`
	Reasoning          []string     `json:"reasoning"`
	Confidence         float64      `json:"confidence"`
	Urgency            string       `json:"urgency"`
	AlternativeActions []string     `json:"alternative_actions"`
	AlignmentWithGoal  float64      `json:"alignment_with_goal"`
	DecisionTreePath   []string     `json:"decision_tree_path"`
	Opik               OpikMetadata `json:"opik_metadata"`
}

// GoalGuardianResult is the goal-alignment review output.
type GoalGuardianResult struct {
	AlignedWithGoal    bool         `json:"aligned_with_goal"`
	AlignmentScore     float64      `json:"alignment_score"`
	Goal               string       `json:"goal"`
	Assessment         string       `json:"assessment,omitempty"`
	AlignedKeywords    []string     `json:"aligned_keywords,omitempty"`
	MisalignedElements []string     `json:"misaligned_elements,omitempty"`
	ShouldModify       bool         `json:"should_modify"`
	Modification       string       `json:"modification,omitempty"`
	GoalProgress       float64      `json:"goal_progress"`
	AffirmGoal         string       `json:"affirm_goal,omitempty"`
	Message            string       `json:"message,omitempty"`
	Opik               OpikMetadata `json:"opik_metadata"`
}

// StrategyResult is the Strategy Adapter output.
type StrategyResult struct {
	StrategySwitch      bool               `json:"strategy_switch"`
	CurrentStrategy     string             `json:"current_strategy,omitempty"`
	OldStrategy         string             `json:"old_strategy,omitempty"`
	NewStrategy         string             `json:"new_strategy,omitempty"`
	Trigger             string             `json:"trigger,omitempty"`
	TriggerMetric       string             `json:"trigger_metric,omitempty"`
	TriggerValue        float64            `json:"trigger_value,omitempty"`
	Threshold           float64            `json:"threshold,omitempty"`
	Confidence          float64            `json:"confidence,omitempty"`
	ExpectedImpact      string             `json:"expected_impact,omitempty"`
	AdaptationReasoning []string           `json:"adaptation_reasoning,omitempty"`
	Reason              string             `json:"reason,omitempty"`
	Recommendation      string             `json:"recommendation,omitempty"`
	Metrics             map[string]float64 `json:"metrics,omitempty"`
	ExperimentID        string             `json:"experiment_id,omitempty"`
	Opik                OpikMetadata       `json:"opik_metadata"`
}

// EnergyResult is the Energy Intervention output.
type EnergyResult struct {
	StressDetected    bool           `json:"stress_detected"`
	StressLevel       float64        `json:"stress_level"`
	Indicators        []string       `json:"indicators,omitempty"`
	InterventionType  string         `json:"intervention_type,omitempty"`
	SuggestedAction   string         `json:"suggested_action,omitempty"`
	SuggestedMessage  string         `json:"suggested_message,omitempty"`
	ToneCheck         *ToneCheck     `json:"tone_check,omitempty"`
	MedicalDisclaimer bool           `json:"medical_disclaimer"`
	FollowUp          string         `json:"follow_up,omitempty"`
	CompassionScore   float64        `json:"compassion_score"`
	SafetyFlags       []string       `json:"safety_flags,omitempty"`
	Message           string         `json:"message,omitempty"`
	Opik              OpikMetadata   `json:"opik_metadata"`
}

// ToneCheck reports the compassion verification of a generated message.
type ToneCheck struct {
	Compassionate        bool     `json:"compassionate"`
	CompassionScore      float64  `json:"compassion_score"`
	HarmfulWordsDetected []string `json:"harmful_words_detected,omitempty"`
	SupportiveWordsFound []string `json:"supportive_words_found,omitempty"`
}

// DiscoveredPattern is one weekly-reflection pattern.
type DiscoveredPattern struct {
	Pattern      string  `json:"pattern"`
	Confidence   float64 `json:"confidence"`
	DaysObserved int     `json:"days_observed"`
	Trend        string  `json:"trend"`
}

// ReflectionResult is the Weekly Reflection output.
type ReflectionResult struct {
	ReflectionID       string              `json:"reflection_id,omitempty"`
	ReflectionSummary  string              `json:"reflection_summary,omitempty"`
	PatternsDiscovered []DiscoveredPattern `json:"patterns_discovered,omitempty"`
	WinsThisWeek       []string            `json:"wins_this_week,omitempty"`
	GentleFocus        string              `json:"gentle_focus,omitempty"`
	MotivationScore    float64             `json:"motivation_score"`
	WeekTrend          string              `json:"week_trend,omitempty"`
	ReflectionMessage  string              `json:"reflection_message"`
	WeekIncomplete     bool                `json:"week_incomplete,omitempty"`
	Opik               OpikMetadata        `json:"opik_metadata"`
}

// UserProfile is read-only input to the downstream agents; never mutated.
type UserProfile struct {
	AgeRange      string `json:"age_range,omitempty"`
	HeightRange   string `json:"height_range,omitempty"`
	WeightRange   string `json:"weight_range,omitempty"`
	ActivityLevel string `json:"activity_level,omitempty"`
	Goal          string `json:"goal,omitempty"`
	RecentEnergy  string `json:"recent_energy,omitempty"`
}

// MealRecord is one logged meal as supplied by the persistence collaborator
// (and as appended by the orchestrator for the current analysis). Immutable
// once created; agents receive copies of the slices that hold them.
type MealRecord struct {
	CreatedAt        string           `json:"created_at,omitempty"` // ISO 8601
	Date             string           `json:"date,omitempty"`       // YYYY-MM-DD
	Time             string           `json:"time,omitempty"`       // HH:MM
	Context          string           `json:"context,omitempty"`
	EnergyTag        string           `json:"energy_tag,omitempty"`
	EnergyAfter      string           `json:"energy_after,omitempty"`
	CaloriesEstimate float64          `json:"calories_estimate,omitempty"`
	Nutrition        *NutritionResult `json:"nutrition,omitempty"`
	Vision           *VisionResult    `json:"vision,omitempty"`
}

// PipelineResult is the orchestrator output: one slot per agent (nil when a
// non-essential stage failed), plus promoted metadata. Constructed fresh per
// request; persistence is the caller's job.
type PipelineResult struct {
	RequestID       string                 `json:"request_id"`
	Timestamp       time.Time              `json:"timestamp"`
	Context         string                 `json:"context,omitempty"`
	Vision          *VisionResult          `json:"vision_result"`
	Nutrition       *NutritionResult       `json:"nutrition_result"`
	Personalization *PersonalizationResult `json:"personalization_result"`
	Wellness        *WellnessResult        `json:"wellness_result"`
	DriftDetection  *DriftResult           `json:"drift_detection,omitempty"`
	NextAction      *NextActionResult      `json:"next_action,omitempty"`
	GoalGuardian    *GoalGuardianResult    `json:"goal_guardian,omitempty"`
	StrategyAdapter *StrategyResult        `json:"strategy_adapter,omitempty"`
	Energy          *EnergyResult          `json:"energy_intervention,omitempty"`
	Reflection      *ReflectionResult      `json:"weekly_reflection,omitempty"`
	ConfidenceScore ConfidenceLevel        `json:"confidence_score"`
	Disclaimer      string                 `json:"disclaimer"`
	StageErrors     map[string]string      `json:"stage_errors,omitempty"`
}
