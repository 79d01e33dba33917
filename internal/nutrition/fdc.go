package nutrition

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

const fdcSource = "USDA FDC"

// fdcClient queries the USDA FoodData Central search endpoint.
type fdcClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type fdcSearchResponse struct {
	Foods []fdcFood `json:"foods"`
}

type fdcFood struct {
	Description     string        `json:"description"`
	DataType        string        `json:"dataType"`
	FdcID           int64         `json:"fdcId"`
	ServingSize     float64       `json:"servingSize"`
	ServingSizeUnit string        `json:"servingSizeUnit"`
	FoodNutrients   []fdcNutrient `json:"foodNutrients"`
}

type fdcNutrient struct {
	NutrientName string  `json:"nutrientName"`
	Value        float64 `json:"value"`
	UnitName     string  `json:"unitName"`
}

// search returns the top FDC match for the food name, or ErrNotFound.
func (c *fdcClient) search(ctx context.Context, foodName string) (Record, error) {
	q := url.Values{}
	q.Set("query", foodName)
	q.Set("pageSize", "1")
	q.Set("sortBy", "fdcId")
	q.Set("sortOrder", "desc")
	q.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/foods/search?"+q.Encode(), nil)
	if err != nil {
		return Record{}, fmt.Errorf("fdc: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Record{}, fmt.Errorf("fdc: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Record{}, fmt.Errorf("fdc: HTTP %d", resp.StatusCode)
	}

	var parsed fdcSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Record{}, fmt.Errorf("fdc: decode response: %w", err)
	}
	if len(parsed.Foods) == 0 {
		return Record{}, ErrNotFound
	}

	food := parsed.Foods[0]
	return Record{
		FoodName:    food.Description,
		Nutrients:   extractFDCNutrients(food.FoodNutrients),
		ServingSize: food.ServingSize,
		ServingUnit: food.ServingSizeUnit,
		Source:      fdcSource,
	}, nil
}

// extractFDCNutrients maps FDC nutrient rows onto the normalized shape.
func extractFDCNutrients(rows []fdcNutrient) Nutrients {
	var n Nutrients
	for _, row := range rows {
		name := strings.ToLower(row.NutrientName)
		value := row.Value
		switch {
		case strings.Contains(name, "energy") || strings.Contains(name, "calor"):
			if strings.Contains(strings.ToLower(row.UnitName), "kj") {
				value = value / 4.184
			}
			n.Calories = round1(value)
		case strings.Contains(name, "protein"):
			n.ProteinG = round1(value)
		case strings.Contains(name, "carbohydrate"):
			n.CarbsG = round1(value)
		case strings.Contains(name, "total lipid") || strings.Contains(name, "fat"):
			n.FatG = round1(value)
		case strings.Contains(name, "fiber"):
			n.FiberG = round1(value)
		case strings.Contains(name, "sugar"):
			n.SugarsG = round1(value)
		case strings.Contains(name, "sodium"):
			n.SodiumMG = round1(value)
		}
	}
	return n
}

func round1(v float64) float64 {
	if v < 0 {
		return float64(int64(v*10-0.5)) / 10
	}
	return float64(int64(v*10+0.5)) / 10
}
