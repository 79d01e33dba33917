package nutrition

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const offSource = "Open Food Facts"

// offClient queries Open Food Facts, the packaged-goods tier. Products are
// indexable by barcode as well as free-text name.
type offClient struct {
	baseURL    string
	httpClient *http.Client
}

type offProductResponse struct {
	Status  int        `json:"status"`
	Product offProduct `json:"product"`
}

type offSearchResponse struct {
	Products []offProduct `json:"products"`
}

type offProduct struct {
	ProductName string        `json:"product_name"`
	ServingQty  float64       `json:"serving_quantity"`
	ServingSize string        `json:"serving_size"`
	Nutriments  offNutriments `json:"nutriments"`
}

type offNutriments struct {
	EnergyKcal100g float64 `json:"energy-kcal_100g"`
	Proteins100g   float64 `json:"proteins_100g"`
	Carbs100g      float64 `json:"carbohydrates_100g"`
	Fat100g        float64 `json:"fat_100g"`
	Fiber100g      float64 `json:"fiber_100g"`
	Sugars100g     float64 `json:"sugars_100g"`
	Sodium100g     float64 `json:"sodium_100g"`
}

// byBarcode fetches a product directly by its barcode.
func (c *offClient) byBarcode(ctx context.Context, barcode string) (Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/v2/product/%s.json", c.baseURL, url.PathEscape(barcode)), nil)
	if err != nil {
		return Record{}, fmt.Errorf("off: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Record{}, fmt.Errorf("off: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Record{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return Record{}, fmt.Errorf("off: HTTP %d", resp.StatusCode)
	}

	var parsed offProductResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Record{}, fmt.Errorf("off: decode response: %w", err)
	}
	if parsed.Status != 1 || parsed.Product.ProductName == "" {
		return Record{}, ErrNotFound
	}

	return recordFromOFFProduct(parsed.Product), nil
}

// search returns the top name match, or ErrNotFound.
func (c *offClient) search(ctx context.Context, foodName string) (Record, error) {
	q := url.Values{}
	q.Set("search_terms", foodName)
	q.Set("search_simple", "1")
	q.Set("json", "1")
	q.Set("page_size", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/cgi/search.pl?"+q.Encode(), nil)
	if err != nil {
		return Record{}, fmt.Errorf("off: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Record{}, fmt.Errorf("off: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Record{}, fmt.Errorf("off: HTTP %d", resp.StatusCode)
	}

	var parsed offSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Record{}, fmt.Errorf("off: decode response: %w", err)
	}
	if len(parsed.Products) == 0 || parsed.Products[0].ProductName == "" {
		return Record{}, ErrNotFound
	}

	return recordFromOFFProduct(parsed.Products[0]), nil
}

func recordFromOFFProduct(p offProduct) Record {
	return Record{
		FoodName: p.ProductName,
		Nutrients: Nutrients{
			Calories: round1(p.Nutriments.EnergyKcal100g),
			ProteinG: round1(p.Nutriments.Proteins100g),
			CarbsG:   round1(p.Nutriments.Carbs100g),
			FatG:     round1(p.Nutriments.Fat100g),
			FiberG:   round1(p.Nutriments.Fiber100g),
			SugarsG:  round1(p.Nutriments.Sugars100g),
			// OFF reports sodium in grams per 100g.
			SodiumMG: round1(p.Nutriments.Sodium100g * 1000),
		},
		ServingSize: p.ServingQty,
		ServingUnit: p.ServingSize,
		Source:      offSource,
	}
}
