package fetcher

// Result represents the outcome of one fetch operation.
// The coordinator collects one per production dataset.
type Result struct {
	// Key is the output document key of the series
	Key string

	// Series is the fetched data, in the order the fetcher produced it
	Series Series

	// Error contains any error that occurred during the fetch operation.
	// If Error is not nil, Series should be considered invalid.
	Error error
}
