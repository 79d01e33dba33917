package agents

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"mealmind/internal/perception"
)

const visionSystemPrompt = `You are a food vision analysis expert. Your task is to identify food items in images and estimate portion sizes.

IMPORTANT GUIDELINES:
- Identify all visible food items
- Estimate portions as rough ranges (small, medium, large) with approximate grams
- Be honest about uncertainty - if something is unclear, say so
- Consider the context provided (homemade, restaurant, snack, meal)
- Rate your confidence: "high" (clear image, common foods), "medium" (some uncertainty), "low" (unclear or unusual items)
- Rate image ambiguity: "low" (clear), "medium" (partially obscured), "high" (unclear/blurry)

You must ALWAYS respond with valid JSON in this exact format:
{
    "foods": [
        {
            "name": "food item name",
            "portion": "size description (e.g., 'medium (150-200g)')",
            "confidence": "high/medium/low"
        }
    ],
    "image_ambiguity": "low/medium/high",
    "context_applied": "the context if provided, or null"
}

Do NOT include any text outside the JSON. Do NOT use markdown code blocks.`

// BarcodeDetector attempts local barcode detection on raw image bytes.
// Optional: a nil detector disables the barcode short-circuit.
type BarcodeDetector interface {
	Detect(image []byte) (value string, found bool)
}

// VisionInterpreter identifies foods and portions in a meal photo.
type VisionInterpreter struct {
	llmAgent
	detector BarcodeDetector
}

// NewVisionInterpreter creates the vision agent. detector may be nil.
func NewVisionInterpreter(vision perception.VisionGenerator, detector BarcodeDetector, logger *zap.Logger) *VisionInterpreter {
	return &VisionInterpreter{
		llmAgent: newLLMAgent("vision_interpreter", visionSystemPrompt, nil, vision, logger),
		detector: detector,
	}
}

// Process analyzes the image and returns the identified foods. When a
// barcode is detected locally it short-circuits without calling the vision
// model; the caller is expected to redirect to the barcode-nutrition path.
func (a *VisionInterpreter) Process(ctx context.Context, image []byte, mimeType, mealContext string) (VisionResult, error) {
	if a.detector != nil {
		if value, found := a.detector.Detect(image); found {
			a.logger.Debug("barcode short-circuit", zap.String("barcode", value))
			return VisionResult{
				Foods:           []FoodItem{},
				BarcodeDetected: value,
				IsBarcodeImage:  true,
				ImageAmbiguity:  ConfidenceLow,
				ContextApplied:  mealContext,
				Opik:            a.metadata(0, "barcode"),
			}, nil
		}
	}

	prompt := "Analyze this food image and identify all food items with estimated portions."
	if mealContext != "" {
		prompt += "\n\nContext: This is a " + mealContext + " meal/food."
	}
	prompt += "\n\nRespond with JSON only, following the exact schema specified."

	response, err := a.generateVision(ctx, prompt, image, mimeType)
	if err != nil {
		return VisionResult{}, err
	}

	var parsed struct {
		Foods []struct {
			Name       string `json:"name"`
			Portion    string `json:"portion"`
			Confidence string `json:"confidence"`
			Barcode    string `json:"barcode"`
		} `json:"foods"`
		ImageAmbiguity string `json:"image_ambiguity"`
		ContextApplied string `json:"context_applied"`
	}
	if err := a.parseJSON(response, &parsed); err != nil {
		return VisionResult{}, err
	}

	result := VisionResult{
		Foods:          make([]FoodItem, 0, len(parsed.Foods)),
		ImageAmbiguity: ConfidenceLevel(parsed.ImageAmbiguity),
		ContextApplied: parsed.ContextApplied,
	}
	for _, f := range parsed.Foods {
		confidence := ConfidenceLevel(f.Confidence)
		if confidence == "" {
			confidence = ConfidenceMedium
		}
		result.Foods = append(result.Foods, FoodItem{
			Name:       f.Name,
			Portion:    f.Portion,
			Confidence: confidence,
			Barcode:    f.Barcode,
		})
	}

	// Backfill required keys the model omitted.
	if result.ImageAmbiguity == "" {
		result.ImageAmbiguity = ConfidenceMedium
	}
	if result.ContextApplied == "" {
		result.ContextApplied = mealContext
	}

	result.Foods = dedupeFoods(result.Foods)
	result.Opik = a.metadata(len(result.Foods), string(result.ImageAmbiguity))
	return result, nil
}

func (a *VisionInterpreter) metadata(foodCount int, ambiguity string) OpikMetadata {
	return OpikMetadata{
		Agent:        a.name,
		DecisionType: "vision_analysis",
		Metrics: map[string]any{
			"food_count":      foodCount,
			"image_ambiguity": ambiguity,
		},
	}
}

// dedupeFoods removes duplicates by normalized case-insensitive name|portion
// key, preserving first occurrence order.
func dedupeFoods(foods []FoodItem) []FoodItem {
	seen := make(map[string]struct{}, len(foods))
	unique := make([]FoodItem, 0, len(foods))
	for _, f := range foods {
		key := strings.ToLower(strings.TrimSpace(f.Name)) + "|" + strings.ToLower(strings.TrimSpace(f.Portion))
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, f)
	}
	return unique
}
