package fingrid

import (
	"encoding/json"
	"time"

	"semerg/internal/fetcher"
)

type record struct {
	DatasetID int       `json:"datasetId"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	Value     *float64  `json:"value"`
}

type pagination struct {
	Total       int `json:"total"`
	CurrentPage int `json:"currentPage"`
	LastPage    int `json:"lastPage"`
	PerPage     int `json:"perPage"`
}

type datasetResponse struct {
	Data       *[]record   `json:"data"`
	Pagination *pagination `json:"pagination"`
}

// Page describes where a decoded response sits in the paginated result.
type Page struct {
	Current int
	Last    int
	Total   int
}

// Truncated reports whether more pages follow this one.
func (p Page) Truncated() bool {
	return p.Last > p.Current
}

// ParseResponse decodes a dataset JSON response. Records keep the order
// the server sent them in; records without a value are skipped.
func ParseResponse(body []byte) (fetcher.Series, Page, error) {
	var resp datasetResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, Page{}, fetcher.NewValidationError(Source, "malformed dataset response", err)
	}
	if resp.Data == nil {
		return nil, Page{}, fetcher.NewValidationError(Source, "dataset response has no data array", nil)
	}

	series := make(fetcher.Series, 0, len(*resp.Data))
	for _, r := range *resp.Data {
		if r.Value == nil {
			continue
		}
		if r.StartTime.IsZero() {
			return nil, Page{}, fetcher.NewValidationError(Source, "dataset record without startTime", nil)
		}
		series = append(series, fetcher.TimePoint{Time: r.StartTime, Value: *r.Value})
	}

	var page Page
	if resp.Pagination != nil {
		page = Page{
			Current: resp.Pagination.CurrentPage,
			Last:    resp.Pagination.LastPage,
			Total:   resp.Pagination.Total,
		}
	}

	return series, page, nil
}
