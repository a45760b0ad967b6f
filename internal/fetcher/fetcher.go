package fetcher

import (
	"context"
	"time"
)

// Fetcher is the interface every upstream series source implements.
// A fetcher knows how to retrieve one time series for a window and
// which key the series is published under in the output document.
type Fetcher interface {
	// Fetch retrieves the series covering [start, end].
	// Returns an error if the request or the decoding fails.
	Fetch(ctx context.Context, start, end time.Time) (Series, error)

	// Key returns the output document key for this series.
	// Examples:
	//   - basePrices
	//   - windProduction
	//   - solarProductionForecast
	Key() string
}
