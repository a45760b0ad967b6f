package fetcher

import (
	"time"

	"resty.dev/v3"
)

// NewHTTPClient creates the HTTP client used by the upstream fetchers.
// Requests are issued exactly once; there is no retry policy. A zero
// timeout keeps the client default.
func NewHTTPClient(baseURL, accept string, timeout time.Duration) *resty.Client {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", accept).
		SetRetryCount(0)

	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return client
}
