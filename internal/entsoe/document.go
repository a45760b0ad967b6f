package entsoe

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"semerg/internal/fetcher"
)

// Root element names of the documents the platform answers with.
const (
	publicationDocument     = "Publication_MarketDocument"
	acknowledgementDocument = "Acknowledgement_MarketDocument"
)

// periodStartLayout is the platform's minute precision interval format.
const periodStartLayout = "2006-01-02T15:04Z07:00"

// marketDocument covers both the publication and the acknowledgement
// document. Tags carry no namespace so any document revision decodes.
type marketDocument struct {
	XMLName    xml.Name
	TimeSeries []timeSeries `xml:"TimeSeries"`
	Reasons    []reason     `xml:"Reason"`
}

type reason struct {
	Code string `xml:"code"`
	Text string `xml:"text"`
}

type timeSeries struct {
	Periods []period `xml:"Period"`
}

type period struct {
	TimeInterval struct {
		Start string `xml:"start"`
		End   string `xml:"end"`
	} `xml:"timeInterval"`
	Resolution string  `xml:"resolution"`
	Points     []point `xml:"Point"`
}

type point struct {
	Position string `xml:"position"`
	Price    string `xml:"price.amount"`
}

// ParseDocument decodes a day-ahead price document into a series of
// c/kWh prices sorted by time.
func ParseDocument(body []byte) (fetcher.Series, error) {
	var doc marketDocument
	if err := xml.Unmarshal(body, &doc); err != nil {
		return nil, fetcher.NewValidationError(Source, "malformed price document", err)
	}

	switch doc.XMLName.Local {
	case publicationDocument:
	case acknowledgementDocument:
		return nil, fetcher.NewValidationError(Source, "request acknowledged without data: "+doc.reasonText(), nil)
	default:
		return nil, fetcher.NewValidationError(Source, fmt.Sprintf("unexpected document %q", doc.XMLName.Local), nil)
	}

	var series fetcher.Series
	for _, ts := range doc.TimeSeries {
		for _, p := range ts.Periods {
			points, err := p.series()
			if err != nil {
				return nil, fetcher.NewValidationError(Source, "invalid period", err)
			}
			series = append(series, points...)
		}
	}

	if len(series) == 0 {
		return nil, fetcher.NewValidationError(Source, "no price points in response", nil)
	}

	series.Sort()
	return series, nil
}

func (d marketDocument) reasonText() string {
	texts := make([]string, 0, len(d.Reasons))
	for _, r := range d.Reasons {
		texts = append(texts, strings.TrimSpace(r.Code+" "+r.Text))
	}
	if len(texts) == 0 {
		return "no reason given"
	}
	return strings.Join(texts, "; ")
}

func (p period) series() (fetcher.Series, error) {
	start, err := parsePeriodStart(p.TimeInterval.Start)
	if err != nil {
		return nil, err
	}

	step, err := parseResolution(p.Resolution)
	if err != nil {
		return nil, err
	}

	series := make(fetcher.Series, 0, len(p.Points))
	for _, pt := range p.Points {
		position, err := strconv.Atoi(strings.TrimSpace(pt.Position))
		if err != nil {
			return nil, fmt.Errorf("invalid position %q: %w", pt.Position, err)
		}
		if position < 1 {
			return nil, fmt.Errorf("position %d out of range", position)
		}

		amount, err := strconv.ParseFloat(strings.TrimSpace(pt.Price), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid price.amount %q at position %d: %w", pt.Price, position, err)
		}

		series = append(series, fetcher.TimePoint{
			Time:  PointTime(start, step, position),
			Value: ToCentsPerKWh(amount),
		})
	}

	return series, nil
}

// PointTime returns the start of the 1-based position within a period.
func PointTime(periodStart time.Time, step time.Duration, position int) time.Time {
	return periodStart.Add(time.Duration(position-1) * step)
}

// ToCentsPerKWh converts EUR/MWh to c/kWh.
func ToCentsPerKWh(eurPerMWh float64) float64 {
	return eurPerMWh / 10
}

func parsePeriodStart(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("missing timeInterval start")
	}

	t, err := time.Parse(periodStartLayout, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid timeInterval start %q", s)
		}
	}
	return t.UTC(), nil
}

// parseResolution reads an ISO 8601 time duration such as PT60M or PT15M.
// An absent resolution is hourly.
func parseResolution(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Hour, nil
	}
	if !strings.HasPrefix(s, "PT") {
		return 0, fmt.Errorf("unsupported resolution %q", s)
	}

	d, err := time.ParseDuration(strings.ToLower(strings.TrimPrefix(s, "PT")))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("unsupported resolution %q", s)
	}
	return d, nil
}
