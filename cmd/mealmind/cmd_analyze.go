package main

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mealmind/internal/agents"
	"mealmind/internal/config"
	"mealmind/internal/nutrition"
	"mealmind/internal/observability"
	"mealmind/internal/perception"
	"mealmind/internal/store"
)

var (
	analyzeContext  string
	analyzeGoal     string
	analyzeActivity string
	analyzeEnergy   string
	analyzeNoSave   bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [image-path]",
	Short: "Analyze a meal photo through the full pipeline",
	Long: `Runs the photo through all ten agents and prints the result as JSON.

The meal and its analysis are saved to the local history database unless
--no-save is given. Prior history feeds the behavioral agents.

Example:
  mealmind analyze lunch.jpg --context homemade --goal gain_energy`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeContext, "context", "", "meal context: homemade, restaurant, snack, meal")
	analyzeCmd.Flags().StringVar(&analyzeGoal, "goal", "", "user goal, e.g. gain_energy, maintain, reduce_excess")
	analyzeCmd.Flags().StringVar(&analyzeActivity, "activity", "", "activity level: low, medium, high")
	analyzeCmd.Flags().StringVar(&analyzeEnergy, "energy", "", "recent energy level: low, ok, high")
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "skip writing the meal to history")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if analyzeContext != "" && !agents.ValidMealContext(analyzeContext) {
		return fmt.Errorf("invalid context %q (want one of %v)", analyzeContext, agents.ValidMealContexts)
	}

	image, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	mimeType := mime.TypeByExtension(filepath.Ext(args[0]))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	orch, err := buildOrchestrator(ctx, cfg)
	if err != nil {
		return err
	}

	db, err := store.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return err
	}
	defer db.Close()

	monthAgo := time.Now().UTC().AddDate(0, 0, -30).Format("2006-01-02")
	history, err := db.MealsSince(ctx, monthAgo)
	if err != nil {
		return err
	}

	profile := &agents.UserProfile{
		Goal:          analyzeGoal,
		ActivityLevel: analyzeActivity,
		RecentEnergy:  analyzeEnergy,
	}
	result := orch.AnalyzeMeal(ctx, agents.AnalyzeRequest{
		Image:       image,
		MIMEType:    mimeType,
		MealContext: analyzeContext,
		Profile:     profile,
		History:     history,
	})

	tracer := observability.NewTracer(cfg.Opik, logger)
	tracer.LogAnalysis(ctx, result)

	if !analyzeNoSave {
		mealID := uuid.NewString()
		meal := agents.MealRecord{
			CreatedAt:        result.Timestamp.UTC().Format(time.RFC3339),
			Date:             result.Timestamp.UTC().Format("2006-01-02"),
			Time:             result.Timestamp.UTC().Format("15:04"),
			Context:          analyzeContext,
			CaloriesEstimate: float64(result.Nutrition.TotalCalories.Min+result.Nutrition.TotalCalories.Max) / 2,
			Nutrition:        result.Nutrition,
			Vision:           result.Vision,
		}
		if err := db.SaveMeal(ctx, mealID, meal); err != nil {
			return err
		}
		if err := db.SaveAnalysis(ctx, mealID, result); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved meal %s\n", mealID)
	}

	return printJSON(result)
}

// buildOrchestrator wires the model clients and the nutrition service into
// the four LLM-backed agents.
func buildOrchestrator(ctx context.Context, cfg *config.Config) (*agents.Orchestrator, error) {
	visionClient, err := perception.NewGeminiVisionClient(ctx, perception.GeminiConfig{
		APIKey: cfg.Vision.APIKey,
		Model:  cfg.Vision.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}

	groqCfg := perception.DefaultGroqConfig(cfg.Text.APIKey)
	if cfg.Text.BaseURL != "" {
		groqCfg.BaseURL = cfg.Text.BaseURL
	}
	if cfg.Text.Model != "" {
		groqCfg.Model = cfg.Text.Model
	}
	if cfg.Text.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Text.Timeout); err == nil {
			groqCfg.Timeout = d
		}
	}
	textClient := perception.NewGroqClientWithConfig(groqCfg)

	lookup := newNutritionService(cfg)

	return agents.NewOrchestrator(
		agents.NewVisionInterpreter(visionClient, nil, logger),
		agents.NewNutritionReasoner(textClient, lookup, logger),
		agents.NewPersonalizationAgent(textClient, logger),
		agents.NewWellnessCoach(textClient, logger),
		logger,
	), nil
}

func newNutritionService(cfg *config.Config) *nutrition.Service {
	nutCfg := nutrition.DefaultConfig(cfg.Nutrition.FDCAPIKey)
	if cfg.Nutrition.FDCBaseURL != "" {
		nutCfg.FDCBaseURL = cfg.Nutrition.FDCBaseURL
	}
	if cfg.Nutrition.OFFBaseURL != "" {
		nutCfg.OFFBaseURL = cfg.Nutrition.OFFBaseURL
	}
	return nutrition.NewService(nutCfg, nutrition.NewCache(nutrition.DefaultCacheTTL), logger)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
