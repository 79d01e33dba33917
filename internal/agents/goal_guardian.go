package agents

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
)

// GoalGuardianInput is one recommendation to review against the user's goal.
type GoalGuardianInput struct {
	UserGoal       string
	Recommendation string
	ActionType     string
	// Progress context.
	AvgEnergyTag          float64
	DaysLogged            int
	MealTimingConsistency float64
	ComfortWithFlexible   float64
}

// GoalGuardian reviews every recommendation for alignment with the user's
// stated goal, rewriting misaligned ones. Pure heuristic.
type GoalGuardian struct {
	name   string
	logger *zap.Logger
}

// NewGoalGuardian creates the goal-alignment agent.
func NewGoalGuardian(logger *zap.Logger) *GoalGuardian {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GoalGuardian{name: "goal_guardian", logger: logger.With(zap.String("agent", "goal_guardian"))}
}

// Process scores the recommendation against the goal, proposes a modification
// when the score falls below 0.7, and computes goal progress.
func (a *GoalGuardian) Process(input GoalGuardianInput) GoalGuardianResult {
	goal := strings.TrimSpace(input.UserGoal)
	if goal == "" {
		return GoalGuardianResult{
			AlignedWithGoal: true,
			AlignmentScore:  1.0,
			GoalProgress:    0.0,
			Message:         "No goal set yet. Set a goal to get personalized guidance.",
			Opik:            a.metadata(1.0, 0.0, false),
		}
	}

	goalLower := strings.ToLower(goal)
	recLower := strings.ToLower(input.Recommendation)

	expected := goalKeywords(goalLower)
	var found []string
	for _, w := range expected {
		if strings.Contains(recLower, w) {
			found = append(found, w)
		}
	}
	score := float64(len(found)) / float64(len(expected))

	misaligned := misalignedElements(goalLower, recLower)
	if len(misaligned) > 0 {
		score *= 0.7
	}
	// Actions carry more weight, so a weak match costs extra.
	if input.ActionType == "action" && score < 0.6 {
		score -= 0.1
	}
	score = math.Max(0, math.Min(1, score))

	aligned := score > 0.7
	shouldModify := score < 0.7 && (input.ActionType == "action" || input.ActionType == "insight")

	result := GoalGuardianResult{
		AlignedWithGoal:    aligned,
		AlignmentScore:     score,
		Goal:               goal,
		Assessment:         alignmentAssessment(score),
		AlignedKeywords:    found,
		MisalignedElements: misaligned,
		ShouldModify:       shouldModify,
		GoalProgress:       goalProgress(goalLower, input),
		Opik:               a.metadata(score, 0, shouldModify),
	}
	if shouldModify {
		result.Modification = modifyForGoal(goalLower, input.Recommendation)
	}
	result.AffirmGoal = affirmGoal(goalLower, result.GoalProgress)
	result.Opik.Metrics["goal_progress"] = result.GoalProgress

	a.logger.Debug("goal alignment",
		zap.Float64("score", score),
		zap.Bool("should_modify", shouldModify))
	return result
}

func (a *GoalGuardian) metadata(score, progress float64, modified bool) OpikMetadata {
	return OpikMetadata{
		Agent:        a.name,
		DecisionType: "goal_alignment",
		Metrics: map[string]any{
			"alignment_score": score,
			"goal_progress":   progress,
			"modified":        modified,
		},
	}
}

// goalKeywords returns the aligned vocabulary for a goal: the word lists of
// every matching keyword family, or a generic wellness pair when none match.
func goalKeywords(goalLower string) []string {
	var words []string
	for _, fam := range goalKeywordFamilies {
		for _, w := range fam.Words {
			if strings.Contains(goalLower, w) {
				words = append(words, fam.Words...)
				break
			}
		}
	}
	if len(words) == 0 {
		return []string{"wellness", "support"}
	}
	return words
}

// misalignedElements applies the contradiction rules between goal and
// recommendation.
func misalignedElements(goalLower, recLower string) []string {
	var out []string

	if strings.Contains(goalLower, "intuitive") &&
		strings.Contains(recLower, "calories") && strings.Contains(recLower, "count") {
		out = append(out, "Calorie counting contradicts intuitive eating goal")
	}

	if strings.Contains(goalLower, "sustainable") || strings.Contains(goalLower, "realistic") {
		for _, w := range extremeWords {
			if strings.Contains(recLower, w) {
				out = append(out, fmt.Sprintf("Extreme language ('%s') contradicts sustainability goal", w))
				break
			}
		}
	}

	if strings.Contains(goalLower, "energy") &&
		(strings.Contains(recLower, "restrict") || strings.Contains(recLower, "fewer") ||
			strings.Contains(recLower, "cut back")) {
		out = append(out, "Restriction language may undermine energy goal")
	}

	for _, w := range shameWords {
		if strings.Contains(recLower, w) {
			out = append(out, fmt.Sprintf("Shame language ('%s') contradicts any wellness goal", w))
			break
		}
	}

	return out
}

func alignmentAssessment(score float64) string {
	switch {
	case score > 0.7:
		return "Recommendation supports your goal"
	case score >= 0.4:
		return "Recommendation partially aligns with your goal"
	default:
		return "Recommendation may not serve your goal"
	}
}

// modifyForGoal rewrites a misaligned recommendation in service of the goal.
func modifyForGoal(goalLower, recommendation string) string {
	recLower := strings.ToLower(recommendation)

	switch {
	case strings.Contains(goalLower, "energy") && strings.Contains(recLower, "restrict"):
		return strings.ReplaceAll(recommendation, "restrict", "consider") +
			" while maintaining your energy levels."
	case strings.Contains(goalLower, "intuitive") && strings.Contains(recLower, "calories"):
		return "Focus on how you feel after this meal rather than the calorie count."
	case strings.Contains(goalLower, "consistent") && strings.Contains(recLower, "perfect"):
		return strings.ReplaceAll(recommendation, "perfect", "consistent")
	default:
		return fmt.Sprintf("Here's how this supports your goal (%s): %s", goalLower, recommendation)
	}
}

// goalProgress estimates progress toward the goal from the available metrics.
func goalProgress(goalLower string, input GoalGuardianInput) float64 {
	switch {
	case strings.Contains(goalLower, "energy"):
		return input.AvgEnergyTag
	case strings.Contains(goalLower, "consistent") || strings.Contains(goalLower, "habit"):
		return math.Min(float64(input.DaysLogged)/7, 1.0)
	case strings.Contains(goalLower, "balance"):
		return input.MealTimingConsistency
	case strings.Contains(goalLower, "intuitive"):
		return math.Min(0.5+input.ComfortWithFlexible, 1.0)
	default:
		return 0.5
	}
}

// affirmGoal produces the tiered affirmation with a goal-family emoji.
func affirmGoal(goalLower string, progress float64) string {
	var base string
	switch {
	case progress > 0.8:
		base = "You're crushing your goal!"
	case progress > 0.5:
		base = "You're making real progress on your goal."
	default:
		base = "You're building toward your goal."
	}

	switch {
	case strings.Contains(goalLower, "energy"):
		return base + " 🔋"
	case strings.Contains(goalLower, "consistent") || strings.Contains(goalLower, "habit"):
		return base + " 💪"
	case strings.Contains(goalLower, "balance"):
		return base + " ⚖️"
	case strings.Contains(goalLower, "intuitive"):
		return base + " 🧘"
	default:
		return base + " 💚"
	}
}
