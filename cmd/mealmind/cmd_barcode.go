package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mealmind/internal/agents"
	"mealmind/internal/perception"
)

var barcodeGoal string

var barcodeCmd = &cobra.Command{
	Use:   "barcode [code]",
	Short: "Analyze a scanned product barcode",
	Long: `Looks the barcode up in Open Food Facts and runs the personalization
and wellness stages on the verified product data. The vision model is never
called for barcode input.

Example:
  mealmind barcode 3017620422003`,
	Args: cobra.ExactArgs(1),
	RunE: runBarcode,
}

func init() {
	barcodeCmd.Flags().StringVar(&barcodeGoal, "goal", "", "user goal")
}

func runBarcode(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	code := args[0]

	svc := newNutritionService(cfg)
	record, err := svc.Search(ctx, "", code)
	if err != nil {
		return fmt.Errorf("barcode %s: %w", code, err)
	}

	// Verified catalog data stands in for the vision and nutrition stages.
	calories := int(record.Nutrients.Calories)
	vision := agents.VisionResult{
		Foods: []agents.FoodItem{{
			Name:       record.FoodName,
			Portion:    fmt.Sprintf("%.0f %s", record.ServingSize, record.ServingUnit),
			Confidence: agents.ConfidenceHigh,
			Barcode:    code,
		}},
		BarcodeDetected: code,
		IsBarcodeImage:  true,
		ImageAmbiguity:  agents.ConfidenceLow,
	}
	nutritionResult := agents.NutritionResult{
		TotalCalories: agents.CalorieRange{Min: calories, Max: calories},
		Macros:        agents.MacroRanges{Protein: "N/A", Carbs: "N/A", Fat: "N/A"},
		Uncertainty:   agents.ConfidenceLow,
		PerFoodBreakdown: []agents.FoodCalories{{
			Name:        record.FoodName,
			CaloriesMin: calories,
			CaloriesMax: calories,
		}},
	}

	groqCfg := perception.DefaultGroqConfig(cfg.Text.APIKey)
	if cfg.Text.BaseURL != "" {
		groqCfg.BaseURL = cfg.Text.BaseURL
	}
	if cfg.Text.Model != "" {
		groqCfg.Model = cfg.Text.Model
	}
	textClient := perception.NewGroqClientWithConfig(groqCfg)

	profile := &agents.UserProfile{Goal: barcodeGoal}
	personalization := agents.NewPersonalizationAgent(textClient, logger)
	wellness := agents.NewWellnessCoach(textClient, logger)

	pers, err := personalization.Process(ctx, nutritionResult, profile, nil)
	if err != nil {
		pers = agents.PersonalizationResult{
			BalanceStatus: agents.BalanceRoughlyAligned,
			DailyContext:  "Unable to personalize due to an error.",
		}
	}
	well, err := wellness.Process(ctx, pers, nutritionResult, vision)
	if err != nil {
		well = agents.WellnessResult{
			Message:         "Your meal has been logged! Remember to enjoy your food and listen to your body.",
			EmojiIndicator:  "🟢",
			Suggestions:     []string{},
			DisclaimerShown: true,
		}
	}

	return printJSON(struct {
		Timestamp       time.Time                     `json:"timestamp"`
		Vision          agents.VisionResult           `json:"vision_result"`
		Nutrition       agents.NutritionResult        `json:"nutrition_result"`
		Personalization agents.PersonalizationResult  `json:"personalization_result"`
		Wellness        agents.WellnessResult         `json:"wellness_result"`
		Source          string                        `json:"source"`
		Disclaimer      string                        `json:"disclaimer"`
	}{
		Timestamp:       time.Now().UTC(),
		Vision:          vision,
		Nutrition:       nutritionResult,
		Personalization: pers,
		Wellness:        well,
		Source:          record.Source,
		Disclaimer:      agents.Disclaimer,
	})
}
