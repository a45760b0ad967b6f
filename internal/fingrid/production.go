package fingrid

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"resty.dev/v3"

	"semerg/internal/fetcher"
	"semerg/internal/window"
)

const (
	// Source identifies this API in fetch errors.
	Source = "fingrid"

	// DefaultBaseURL is the open data API root.
	DefaultBaseURL = "https://data.fingrid.fi/api"

	// PageSize is the largest page requested per dataset call.
	PageSize = 1000
)

// DatasetFetcher fetches one dataset
type DatasetFetcher struct {
	dataset Dataset
	client  *resty.Client
	logger  *slog.Logger
}

// NewClient creates the HTTP client for the open data API, authenticated
// with the given API key
func NewClient(baseURL, apiKey string, timeout time.Duration) *resty.Client {
	return fetcher.NewHTTPClient(baseURL, "application/json", timeout).
		SetHeader("x-api-key", apiKey)
}

// NewDatasetFetcher creates a new dataset fetcher. A nil logger discards output.
func NewDatasetFetcher(dataset Dataset, client *resty.Client, logger *slog.Logger) *DatasetFetcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DatasetFetcher{
		dataset: dataset,
		client:  client,
		logger:  logger.With(slog.String("dataset", dataset.String())),
	}
}

// Fetch retrieves the dataset values starting within [start, end]
func (f *DatasetFetcher) Fetch(ctx context.Context, start, end time.Time) (fetcher.Series, error) {
	resp, err := f.client.R().
		SetContext(ctx).
		SetPathParam("datasetId", strconv.Itoa(f.dataset.ID)).
		SetQueryParams(map[string]string{
			"startTime": window.FormatWire(start),
			"endTime":   window.FormatWire(end),
			"format":    "json",
			"pageSize":  strconv.Itoa(PageSize),
			"locale":    "en",
			"sortBy":    "startTime",
			"sortOrder": "asc",
		}).
		Get("/datasets/{datasetId}/data")

	if err != nil {
		return nil, fetcher.NewNetworkError(Source, err).WithDataset(f.dataset.ID)
	}

	if !resp.IsSuccess() {
		f.logger.Debug("dataset request failed", slog.Int("status", resp.StatusCode()))
		return nil, fetcher.ClassifyHTTPError(Source, resp.StatusCode(), resp.String()).WithDataset(f.dataset.ID)
	}

	series, page, err := ParseResponse([]byte(resp.String()))
	if err != nil {
		var fe *fetcher.FetchError
		if errors.As(err, &fe) {
			return nil, fe.WithDataset(f.dataset.ID)
		}
		return nil, err
	}

	if page.Truncated() {
		f.logger.Warn("dataset response truncated to first page",
			slog.Int("page_size", PageSize),
			slog.Int("total", page.Total))
	}

	return series, nil
}

// Key returns the output key of the dataset series
func (f *DatasetFetcher) Key() string {
	return f.dataset.Key
}
