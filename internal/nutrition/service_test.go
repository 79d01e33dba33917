package nutrition

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const fdcChickenResponse = `{
	"foods": [{
		"description": "Chicken, broilers or fryers, breast, meat only, cooked, roasted",
		"dataType": "SR Legacy",
		"fdcId": 171477,
		"servingSize": 100,
		"servingSizeUnit": "g",
		"foodNutrients": [
			{"nutrientName": "Energy", "value": 165, "unitName": "KCAL"},
			{"nutrientName": "Protein", "value": 31.0, "unitName": "G"},
			{"nutrientName": "Carbohydrate, by difference", "value": 0, "unitName": "G"},
			{"nutrientName": "Total lipid (fat)", "value": 3.6, "unitName": "G"},
			{"nutrientName": "Sodium, Na", "value": 74, "unitName": "MG"}
		]
	}]
}`

func newTestService(t *testing.T, fdcHandler, offHandler http.HandlerFunc) (*Service, *Cache) {
	t.Helper()
	fdcServer := httptest.NewServer(fdcHandler)
	offServer := httptest.NewServer(offHandler)
	t.Cleanup(fdcServer.Close)
	t.Cleanup(offServer.Close)

	cache := NewCache(DefaultCacheTTL)
	svc := NewService(Config{
		FDCBaseURL: fdcServer.URL,
		FDCAPIKey:  "test-key",
		OFFBaseURL: offServer.URL,
		Timeout:    5 * time.Second,
	}, cache, zap.NewNop())
	return svc, cache
}

func TestService_Search_FDCHit(t *testing.T) {
	svc, _ := newTestService(t,
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "chicken breast", r.URL.Query().Get("query"))
			assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
			_, _ = w.Write([]byte(fdcChickenResponse))
		},
		func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("OFF should not be called when FDC has the food")
		},
	)

	record, err := svc.Search(context.Background(), "chicken breast", "")
	require.NoError(t, err)
	assert.Equal(t, "USDA FDC", record.Source)
	assert.Equal(t, 165.0, record.Nutrients.Calories)
	assert.Equal(t, 31.0, record.Nutrients.ProteinG)
	assert.Equal(t, 74.0, record.Nutrients.SodiumMG)
}

func TestService_Search_FallsBackToOFF(t *testing.T) {
	svc, _ := newTestService(t,
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"foods":[]}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"products":[{"product_name":"Granola Bar","serving_quantity":35,"serving_size":"35 g","nutriments":{"energy-kcal_100g":450,"proteins_100g":8,"carbohydrates_100g":60,"fat_100g":18,"sodium_100g":0.2}}]}`))
		},
	)

	record, err := svc.Search(context.Background(), "granola bar", "")
	require.NoError(t, err)
	assert.Equal(t, "Open Food Facts", record.Source)
	assert.Equal(t, 450.0, record.Nutrients.Calories)
	assert.Equal(t, 200.0, record.Nutrients.SodiumMG)
}

func TestService_Search_BarcodeShortCircuit(t *testing.T) {
	svc, _ := newTestService(t,
		func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("FDC should not be called for a barcode hit")
		},
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v2/product/737628064502.json", r.URL.Path)
			_, _ = w.Write([]byte(`{"status":1,"product":{"product_name":"Rice Noodles","nutriments":{"energy-kcal_100g":370}}}`))
		},
	)

	record, err := svc.Search(context.Background(), "", "737628064502")
	require.NoError(t, err)
	assert.Equal(t, "Rice Noodles", record.FoodName)
}

func TestService_Search_NotFoundEverywhere(t *testing.T) {
	svc, _ := newTestService(t,
		func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"foods":[]}`)) },
		func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"products":[]}`)) },
	)

	_, err := svc.Search(context.Background(), "unobtainium stew", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Search_TransportFailureIsNotFound(t *testing.T) {
	svc, _ := newTestService(t,
		func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
		func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) },
	)

	_, err := svc.Search(context.Background(), "chicken", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Search_UsesCache(t *testing.T) {
	var calls atomic.Int32
	svc, cache := newTestService(t,
		func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			_, _ = w.Write([]byte(fdcChickenResponse))
		},
		func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`{"products":[]}`)) },
	)

	_, err := svc.Search(context.Background(), "Chicken Breast", "")
	require.NoError(t, err)
	// Normalized key: case and whitespace do not cause a second fetch.
	_, err = svc.Search(context.Background(), "  chicken breast ", "")
	require.NoError(t, err)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 1, cache.Len())
}

func TestCache_TTLExpiry(t *testing.T) {
	cache := NewCache(time.Hour)
	base := time.Now()
	cache.now = func() time.Time { return base }

	cache.Put("oats", "USDA FDC", Record{FoodName: "Oats"})
	_, ok := cache.Get("oats", "USDA FDC")
	assert.True(t, ok)

	cache.now = func() time.Time { return base.Add(2 * time.Hour) }
	_, ok = cache.Get("oats", "USDA FDC")
	assert.False(t, ok, "expired entry must be treated as a miss")
}
