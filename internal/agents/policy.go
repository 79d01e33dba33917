package agents

// Policy data for the heuristic agents: keyword families, safety word lists,
// and strategy lookup tables, centralized so they are independently testable
// and tunable.

// Disclaimer is attached to every pipeline result.
const Disclaimer = "This app provides general wellness insights, not medical advice."

// Profile and context vocabularies accepted from callers.
var (
	ValidAgeRanges      = []string{"12-17", "18-25", "26-35", "36-45", "46-55", "55+"}
	ValidHeightRanges   = []string{"150-160cm", "160-170cm", "170-180cm", "180-190cm", "190-200cm", "200+cm"}
	ValidWeightRanges   = []string{"40-50kg", "50-60kg", "60-70kg", "70-80kg", "80-90kg", "90-100kg", "100+kg"}
	ValidActivityLevels = []string{"low", "medium", "high"}
	ValidGoals          = []string{"maintain", "gain_energy", "reduce_excess"}
	ValidMealContexts   = []string{"homemade", "restaurant", "snack", "meal"}
	ValidFeedbackTypes  = []string{"accurate", "portion_bigger", "portion_smaller", "wrong_food"}
)

// ValidMealContext reports whether ctx is one of the accepted context tags.
func ValidMealContext(ctx string) bool {
	for _, v := range ValidMealContexts {
		if v == ctx {
			return true
		}
	}
	return false
}

// balanceEmoji maps a balance status to its indicator.
var balanceEmoji = map[BalanceStatus]string{
	BalanceUnderFueled:    "🔵",
	BalanceRoughlyAligned: "🟢",
	BalanceSlightlyOver:   "🟠",
}

// BalanceEmoji returns the indicator for a balance status, defaulting green.
func BalanceEmoji(status BalanceStatus) string {
	if e, ok := balanceEmoji[status]; ok {
		return e
	}
	return "🟢"
}

// wellnessDenylist holds shaming / diet-culture phrases. A single match
// replaces the whole generated message with wellnessFallbackMessage.
var wellnessDenylist = []string{
	"too much", "too little", "should cut", "should restrict",
	"bad food", "cheat meal", "guilty", "sinful", "naughty",
	"skinny", "fat", "overweight", "underweight",
	"diet", "lose weight", "burn off", "work off",
}

const wellnessFallbackMessage = "Your meal looks balanced! Remember, every meal is an opportunity to nourish yourself. 🌟"

// Tone verification word lists for the Energy Intervention agent.
var (
	toneHarmfulWords = []string{
		"bad", "failure", "wrong", "lazy", "undisciplined",
		"sick", "disease", "disorder", "dangerous", "urgent",
	}
	toneCompassionateWords = []string{
		"understand", "support", "care", "gentle", "rest",
		"break", "reset", "okay", "notice", "observed",
	}
)

// Safety-flag word groups for the Energy Intervention agent. Each present
// category adds one named flag to the output.
var safetyFlagGroups = []struct {
	Flag  string
	Words []string
}{
	{"Medical overreach detected", []string{"diagnose", "treat", "cure", "disease"}},
	{"Potential shame language", []string{"should", "must", "need to", "obligated"}},
	{"Over-confident language", []string{"100%", "definitely"}},
	{"Potential ED trigger", []string{"restrict", "calories", "limit", "cut back"}},
}

// Goal keyword families. A family whose trigger word appears in the goal
// contributes its entire word list as aligned keywords.
var goalKeywordFamilies = []struct {
	Name  string
	Words []string
}{
	{"energy", []string{"energy", "focus", "alert", "awake", "vigor", "vitality"}},
	{"consistency", []string{"consistent", "habit", "routine", "regular", "daily"}},
	{"intuition", []string{"intuitive", "feel", "listen", "trust", "signal"}},
	{"balance", []string{"balance", "moderate", "sustainable", "realistic"}},
	{"wellness", []string{"well", "health", "support", "sustain", "thrive"}},
}

// Words considered extreme when the goal asks for sustainability.
var extremeWords = []string{"must", "always", "never", "extreme", "strict", "discipline"}

// Universal shame vocabulary; contradicts every goal.
var shameWords = []string{"failure", "bad", "undisciplined", "weak", "lazy"}

// Drift intervention suggestions keyed by drift type.
var driftSuggestions = map[string]string{
	"meal_skipping":       "A lightweight strategy for consistently skipped meals",
	"logging_decline":     "Try a simpler logging approach to reduce friction",
	"energy_irregularity": "Focus on meal regularity to stabilize your energy",
	"timing_instability":  "Set one anchor meal to build consistency around",
}

// Predicted impact per target strategy.
var strategyImpacts = map[string]string{
	"meal_timing_focused":      "Focus on consistent meal timing rather than calories. Expected: Higher acceptance, better energy patterns.",
	"meal_regularity_focused":  "Emphasize regular meals over precise amounts. Expected: Lower friction, steadier routine.",
	"intuitive_eating_focused": "Trust body signals. Log less, feel more. Expected: Higher engagement, reduced anxiety.",
	"minimal_tracking":         "Simplify logging to essentials only. Expected: Rebuild habit, reduce overwhelm.",
	"trend_only_summaries":     "Weekly summaries instead of daily detail. Expected: Lower friction, maintained insights.",
	"habit_stacking":           "Tie healthy eating to existing habits. Expected: Higher intervention success, easier adoption.",
	"goal_aligned_tracking":    "Every log aligned to stated goal. Expected: Higher perceived relevance, better acceptance.",
	"adaptive_balanced":        "Continue with current balanced approach. Expected: Steady improvement.",
}

// StrategySummary describes a coaching strategy.
type StrategySummary struct {
	Description    string   `json:"description"`
	BestFor        string   `json:"best_for"`
	EngagementRisk string   `json:"engagement_risk"`
	SwitchTriggers []string `json:"switch_triggers"`
}

var strategySummaries = map[string]StrategySummary{
	"calorie_focused": {
		Description:    "Track calories, macros, and totals",
		BestFor:        "Goals requiring precision (body composition)",
		EngagementRisk: "High detail can overwhelm some users",
		SwitchTriggers: []string{"Low acceptance", "Declining engagement"},
	},
	"meal_timing_focused": {
		Description:    "Emphasize consistent meal timing over quantities",
		BestFor:        "Energy consistency, habit building",
		EngagementRisk: "Low - aligns with intuition",
		SwitchTriggers: []string{"Low energy tracking"},
	},
	"intuitive_eating_focused": {
		Description:    "Trust body signals, minimal tracking",
		BestFor:        "Mindfulness and intuitive eating goals",
		EngagementRisk: "Very low",
		SwitchTriggers: []string{"Need more structure"},
	},
	"minimal_tracking": {
		Description:    "Log only meal names, minimal detail",
		BestFor:        "Rebuilding habit after overwhelm",
		EngagementRisk: "Very low - reduced friction",
		SwitchTriggers: []string{"Ready to increase detail"},
	},
	"trend_only_summaries": {
		Description:    "Weekly patterns, not daily granularity",
		BestFor:        "High-level consistency tracking",
		EngagementRisk: "Low",
		SwitchTriggers: []string{"Need more frequent feedback"},
	},
}

// SummaryForStrategy returns metadata about a named strategy.
func SummaryForStrategy(strategy string) (StrategySummary, bool) {
	s, ok := strategySummaries[strategy]
	return s, ok
}
