package ingest

import (
	"context"

	"fx-rates-pipeline/internal/model"
)

// RateFetcher retrieves the latest quotes for a base currency from the
// upstream provider.
type RateFetcher interface {
	FetchLatest(ctx context.Context, baseCurrency string) (model.ProviderResponse, error)
}
