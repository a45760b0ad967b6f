package testutil

import (
	"context"
	"sync"
	"time"

	"semerg/internal/fetcher"
)

// MockFetcher is a mock implementation of the Fetcher interface for testing
type MockFetcher struct {
	FetchFunc func(ctx context.Context, start, end time.Time) (fetcher.Series, error)
	KeyFunc   func() string

	mu    sync.Mutex
	calls []Call
}

// Call records the window a fetcher was asked for
type Call struct {
	Start time.Time
	End   time.Time
	At    time.Time
}

// Fetch implements the Fetcher interface
func (m *MockFetcher) Fetch(ctx context.Context, start, end time.Time) (fetcher.Series, error) {
	m.mu.Lock()
	m.calls = append(m.calls, Call{Start: start, End: end, At: time.Now()})
	m.mu.Unlock()

	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, start, end)
	}
	return nil, nil
}

// Key implements the Fetcher interface
func (m *MockFetcher) Key() string {
	if m.KeyFunc != nil {
		return m.KeyFunc()
	}
	return "mock"
}

// Calls returns the recorded Fetch invocations
func (m *MockFetcher) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

// NewMockFetcher creates a simple mock fetcher with predefined values
func NewMockFetcher(key string, series fetcher.Series, err error) *MockFetcher {
	return &MockFetcher{
		FetchFunc: func(ctx context.Context, start, end time.Time) (fetcher.Series, error) {
			return series, err
		},
		KeyFunc: func() string {
			return key
		},
	}
}

// HourlySeries builds n hourly points starting at start with values
// first, first+1, ...
func HourlySeries(start time.Time, n int, first float64) fetcher.Series {
	series := make(fetcher.Series, 0, n)
	for i := 0; i < n; i++ {
		series = append(series, fetcher.TimePoint{
			Time:  start.Add(time.Duration(i) * time.Hour),
			Value: first + float64(i),
		})
	}
	return series
}
