package nutrition

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Service is the two-tier lookup: the verified-ingredient catalog (USDA FDC)
// is tried first, then the packaged-goods catalog (Open Food Facts). Barcodes
// go straight to the packaged-goods tier. Transport failures are logged and
// reported as ErrNotFound: callers treat "no verified data" and "catalog
// unreachable" the same way.
type Service struct {
	fdc    *fdcClient
	off    *offClient
	cache  *Cache
	logger *zap.Logger
}

// Config holds Service configuration.
type Config struct {
	FDCBaseURL string
	FDCAPIKey  string
	OFFBaseURL string
	Timeout    time.Duration
}

// DefaultConfig returns production endpoints. An unset FDC key falls back to
// the rate-limited demo key, which is enough for development.
func DefaultConfig(fdcAPIKey string) Config {
	if fdcAPIKey == "" {
		fdcAPIKey = "DEMO_KEY"
	}
	return Config{
		FDCBaseURL: "https://api.nal.usda.gov/fdc/v1",
		FDCAPIKey:  fdcAPIKey,
		OFFBaseURL: "https://world.openfoodfacts.org",
		Timeout:    10 * time.Second,
	}
}

// NewService creates a Service with an injected cache (shared process-wide).
func NewService(config Config, cache *Cache, logger *zap.Logger) *Service {
	if cache == nil {
		cache = NewCache(DefaultCacheTTL)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	httpClient := &http.Client{Timeout: config.Timeout}
	return &Service{
		fdc:    &fdcClient{baseURL: config.FDCBaseURL, apiKey: config.FDCAPIKey, httpClient: httpClient},
		off:    &offClient{baseURL: config.OFFBaseURL, httpClient: httpClient},
		cache:  cache,
		logger: logger,
	}
}

// Search looks up verified nutrition data for a food. The barcode, when
// present, short-circuits to the packaged-goods catalog. Returns ErrNotFound
// when neither tier has the food; never returns transport errors.
func (s *Service) Search(ctx context.Context, foodName, barcode string) (Record, error) {
	if barcode != "" {
		if record, ok := s.cache.Get(barcode, offSource); ok {
			return record, nil
		}
		record, err := s.off.byBarcode(ctx, barcode)
		if err == nil {
			s.cache.Put(barcode, offSource, record)
			return record, nil
		}
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("barcode lookup failed", zap.String("barcode", barcode), zap.Error(err))
		}
		// Fall through to name search.
	}

	if foodName == "" {
		return Record{}, ErrNotFound
	}

	if record, ok := s.cache.Get(foodName, fdcSource); ok {
		return record, nil
	}
	record, err := s.fdc.search(ctx, foodName)
	if err == nil {
		s.cache.Put(foodName, fdcSource, record)
		return record, nil
	}
	if !errors.Is(err, ErrNotFound) {
		s.logger.Warn("fdc lookup failed", zap.String("food", foodName), zap.Error(err))
	}

	if record, ok := s.cache.Get(foodName, offSource); ok {
		return record, nil
	}
	record, err = s.off.search(ctx, foodName)
	if err == nil {
		s.cache.Put(foodName, offSource, record)
		return record, nil
	}
	if !errors.Is(err, ErrNotFound) {
		s.logger.Warn("off lookup failed", zap.String("food", foodName), zap.Error(err))
	}

	return Record{}, ErrNotFound
}
