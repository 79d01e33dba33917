package agents

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/google/uuid"
)

// AnalyzeRequest is one meal-analysis request: the photo plus whatever
// context the caller has. History is the user's prior meals, oldest first.
type AnalyzeRequest struct {
	Image       []byte
	MIMEType    string
	MealContext string
	Profile     *UserProfile
	History     []MealRecord
	// Engagement context for the strategy review. Zero value skips nothing;
	// the adapter's own guards handle sparse data.
	CurrentStrategy   string
	Engagement        EngagementMetrics
	InterventionCount int
	PriorWeekDays     int
	HasPriorWeek      bool
	Now               time.Time
}

// Orchestrator runs the full analysis pipeline. Every stage is isolated: a
// failed stage is recorded in StageErrors and replaced by its documented
// default (or omitted), never aborting the request.
type Orchestrator struct {
	vision          *VisionInterpreter
	nutrition       *NutritionReasoner
	personalization *PersonalizationAgent
	wellness        *WellnessCoach
	drift           *DriftDetector
	nextAction      *NextActionAgent
	goalGuardian    *GoalGuardian
	strategy        *StrategyAdapter
	energy          *EnergyInterventionAgent
	reflection      *WeeklyReflectionAgent
	logger          *zap.Logger
}

// NewOrchestrator wires the ten agents together.
func NewOrchestrator(
	vision *VisionInterpreter,
	nutrition *NutritionReasoner,
	personalization *PersonalizationAgent,
	wellness *WellnessCoach,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		vision:          vision,
		nutrition:       nutrition,
		personalization: personalization,
		wellness:        wellness,
		drift:           NewDriftDetector(logger),
		nextAction:      NewNextActionAgent(logger),
		goalGuardian:    NewGoalGuardian(logger),
		strategy:        NewStrategyAdapter(logger),
		energy:          NewEnergyInterventionAgent(logger),
		reflection:      NewWeeklyReflectionAgent(logger),
		logger:          logger.With(zap.String("component", "orchestrator")),
	}
}

// AnalyzeMeal runs the pipeline end to end. It never returns an error for a
// stage failure; only the per-stage defaults degrade.
func (o *Orchestrator) AnalyzeMeal(ctx context.Context, req AnalyzeRequest) PipelineResult {
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	result := PipelineResult{
		RequestID:   uuid.NewString(),
		Timestamp:   now,
		Context:     req.MealContext,
		Disclaimer:  Disclaimer,
		StageErrors: make(map[string]string),
	}
	var confidences []ConfidenceLevel

	goal := ""
	if req.Profile != nil {
		goal = req.Profile.Goal
	}
	energyLevel := ""
	if req.Profile != nil {
		energyLevel = req.Profile.RecentEnergy
	}

	// 1. Vision. Overall confidence comes from the per-food confidences;
	// a single low item drags the whole analysis down.
	vision, err := o.vision.Process(ctx, req.Image, req.MIMEType, req.MealContext)
	if err != nil {
		o.stageFailed(&result, "vision", err)
		vision = VisionResult{Foods: []FoodItem{}, ImageAmbiguity: ConfidenceHigh}
		confidences = append(confidences, ConfidenceLow)
	} else {
		for _, f := range vision.Foods {
			c := f.Confidence
			if c == "" {
				c = ConfidenceMedium
			}
			confidences = append(confidences, c)
		}
	}
	result.Vision = &vision

	// 2. Nutrition.
	nut, err := o.nutrition.Process(ctx, vision)
	if err != nil {
		o.stageFailed(&result, "nutrition", err)
		nut = NutritionResult{
			Macros:           MacroRanges{Protein: "N/A", Carbs: "N/A", Fat: "N/A"},
			Uncertainty:      ConfidenceHigh,
			PerFoodBreakdown: []FoodCalories{},
		}
	}
	result.Nutrition = &nut

	// 3. Personalization.
	pers, err := o.personalization.Process(ctx, nut, req.Profile, req.History)
	if err != nil {
		o.stageFailed(&result, "personalization", err)
		pers = PersonalizationResult{
			BalanceStatus: BalanceRoughlyAligned,
			DailyContext:  "Unable to personalize due to an error.",
		}
	}
	result.Personalization = &pers

	// 4. Wellness.
	well, err := o.wellness.Process(ctx, pers, nut, vision)
	if err != nil {
		o.stageFailed(&result, "wellness", err)
		well = WellnessResult{
			Message:         "Your meal has been logged! Remember to enjoy your food and listen to your body.",
			EmojiIndicator:  "🟢",
			Suggestions:     []string{},
			DisclaimerShown: true,
		}
	}
	result.Wellness = &well

	// The current meal joins the history for the behavioral stages.
	current := MealRecord{
		CreatedAt:        now.UTC().Format(time.RFC3339),
		Date:             now.UTC().Format(dateLayout),
		Time:             now.UTC().Format("15:04"),
		Context:          req.MealContext,
		CaloriesEstimate: float64(nut.TotalCalories.Min+nut.TotalCalories.Max) / 2,
		Nutrition:        &nut,
		Vision:           &vision,
	}
	meals := append(append([]MealRecord{}, req.History...), current)
	daysTracked := ActiveDayCount(meals)

	// 5. Drift detection.
	drift := o.drift.Process(DriftInput{Meals: meals, DaysTracked: daysTracked, UserGoal: goal})
	result.DriftDetection = &drift

	// 6. Next action.
	na := o.nextAction.Process(NextActionInput{
		Meals:        meals,
		UserGoal:     goal,
		CurrentDrift: &drift,
		EnergyLevel:  energyLevel,
		Now:          now,
	})
	result.NextAction = &na

	// 7. Goal guardian reviews the wellness message.
	gg := o.goalGuardian.Process(GoalGuardianInput{
		UserGoal:       goal,
		Recommendation: well.Message,
		ActionType:     "action",
		AvgEnergyTag:   AvgEnergyScore(meals),
		DaysLogged:     daysTracked,
	})
	result.GoalGuardian = &gg

	// 8. Strategy review.
	eng := req.Engagement
	if eng.DaysTracked == 0 {
		eng.DaysTracked = daysTracked
	}
	if eng.LoggingFrequency == 0 && daysTracked > 0 {
		eng.LoggingFrequency = float64(len(meals)) / float64(daysTracked)
	}
	if eng.StreakDays == 0 {
		eng.StreakDays = StreakLength(meals)
	}
	strat := o.strategy.Process(StrategyInput{
		CurrentStrategy: req.CurrentStrategy,
		UserGoal:        goal,
		Metrics:         eng,
	})
	result.StrategyAdapter = &strat

	// 9. Energy intervention.
	energy := o.energy.Process(EnergyInput{Meals: meals, UserGoal: goal, Now: now})
	result.Energy = &energy

	// 10. Weekly reflection over the trailing week.
	refl := o.reflection.Process(ReflectionInput{
		Meals:             trailingWeek(meals, now),
		UserGoal:          goal,
		InterventionCount: req.InterventionCount,
		PriorWeekDays:     req.PriorWeekDays,
		HasPriorWeek:      req.HasPriorWeek,
	})
	result.Reflection = &refl

	result.ConfidenceScore = OverallConfidence(confidences)
	if len(result.StageErrors) == 0 {
		result.StageErrors = nil
	}

	o.logger.Info("meal analyzed",
		zap.String("request_id", result.RequestID),
		zap.Int("foods", len(vision.Foods)),
		zap.String("confidence", string(result.ConfidenceScore)),
		zap.Int("stage_errors", len(result.StageErrors)))
	return result
}

func (o *Orchestrator) stageFailed(result *PipelineResult, stage string, err error) {
	result.StageErrors[stage] = err.Error()
	o.logger.Warn("stage failed, using default",
		zap.String("stage", stage),
		zap.Error(err))
}

// trailingWeek keeps only meals dated within the 7 days ending now.
func trailingWeek(meals []MealRecord, now time.Time) []MealRecord {
	cutoff := now.UTC().AddDate(0, 0, -7)
	out := make([]MealRecord, 0, len(meals))
	for _, m := range meals {
		d, ok := mealDate(m)
		if !ok || d.Before(cutoff.Truncate(24*time.Hour)) {
			continue
		}
		out = append(out, m)
	}
	return out
}
