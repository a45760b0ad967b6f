package entsoe

import (
	"context"
	"time"

	"resty.dev/v3"

	"semerg/internal/fetcher"
	"semerg/internal/window"
)

const (
	// Source identifies this API in fetch errors.
	Source = "entsoe"

	// DefaultBaseURL is the transparency platform REST endpoint.
	DefaultBaseURL = "https://web-api.tp.entsoe.eu/api"

	// DefaultArea is the Finnish bidding zone.
	DefaultArea = "10YFI-1--------U"

	// documentTypePrices selects the day-ahead price document.
	documentTypePrices = "A44"

	Key = "basePrices"
)

// PriceFetcher fetches day-ahead prices for one bidding zone
type PriceFetcher struct {
	token  string
	area   string
	client *resty.Client
}

// NewClient creates the HTTP client for the transparency platform
func NewClient(baseURL string, timeout time.Duration) *resty.Client {
	return fetcher.NewHTTPClient(baseURL, "application/xml", timeout)
}

// NewPriceFetcher creates a new day-ahead price fetcher. The area is used
// for both the in and out domain.
func NewPriceFetcher(token, area string, client *resty.Client) *PriceFetcher {
	if area == "" {
		area = DefaultArea
	}
	return &PriceFetcher{
		token:  token,
		area:   area,
		client: client,
	}
}

// Fetch retrieves the prices published for [start, end]
func (f *PriceFetcher) Fetch(ctx context.Context, start, end time.Time) (fetcher.Series, error) {
	interval := window.Window{Start: start, End: end}.Interval()

	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"documentType":  documentTypePrices,
			"securityToken": f.token,
			"timeInterval":  interval,
			"in_domain":     f.area,
			"out_domain":    f.area,
		}).
		Get("")

	if err != nil {
		return nil, fetcher.NewNetworkError(Source, err)
	}

	if !resp.IsSuccess() {
		return nil, fetcher.ClassifyHTTPError(Source, resp.StatusCode(), resp.String())
	}

	return ParseDocument([]byte(resp.String()))
}

// Key returns the output key of the price series
func (f *PriceFetcher) Key() string {
	return Key
}
