// Package report assembles the fetched series into the output document
// and writes it.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"semerg/internal/coordinator"
	"semerg/internal/fetcher"
	"semerg/internal/fingrid"
	"semerg/internal/window"
)

// PricePoint is one price in c/kWh.
type PricePoint struct {
	StartTime string  `json:"startTime"`
	Price     float64 `json:"price"`
}

// EnergyPoint is one production value in MW.
type EnergyPoint struct {
	StartTime string  `json:"startTime"`
	Energy    float64 `json:"energy"`
}

// Document is the output JSON object. A nil production field means the
// dataset was not fetched and its key is left out.
type Document struct {
	FetchTime               string         `json:"fetchTime"`
	StartTime               string         `json:"startTime"`
	EndTime                 string         `json:"endTime"`
	BasePrices              []PricePoint   `json:"basePrices"`
	AdjustedPrices          []PricePoint   `json:"adjustedPrices,omitempty"`
	WindProduction          *[]EnergyPoint `json:"windProduction,omitempty"`
	WindProductionForecast  *[]EnergyPoint `json:"windProductionForecast,omitempty"`
	SolarProductionForecast *[]EnergyPoint `json:"solarProductionForecast,omitempty"`
}

// Build assembles the document. adjusted may be nil.
func Build(fetchTime time.Time, w window.Window, c *coordinator.Collection, adjusted fetcher.Series) Document {
	doc := Document{
		FetchTime:  fetchTime.UTC().Format(time.RFC3339),
		StartTime:  w.WireStart(),
		EndTime:    w.WireEnd(),
		BasePrices: pricePoints(c.Prices),
	}
	if adjusted != nil {
		doc.AdjustedPrices = pricePoints(adjusted)
	}

	for _, r := range c.Production {
		points := energyPoints(r.Series)
		switch r.Key {
		case fingrid.WindProduction.Key:
			doc.WindProduction = &points
		case fingrid.WindProductionForecast.Key:
			doc.WindProductionForecast = &points
		case fingrid.SolarProductionForecast.Key:
			doc.SolarProductionForecast = &points
		}
	}

	return doc
}

func pricePoints(s fetcher.Series) []PricePoint {
	points := make([]PricePoint, 0, len(s))
	for _, p := range s {
		points = append(points, PricePoint{StartTime: formatTime(p.Time), Price: p.Value})
	}
	return points
}

func energyPoints(s fetcher.Series) []EnergyPoint {
	points := make([]EnergyPoint, 0, len(s))
	for _, p := range s {
		points = append(points, EnergyPoint{StartTime: formatTime(p.Time), Energy: p.Value})
	}
	return points
}

// formatTime keeps the offset the time was parsed with.
func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// Encode writes the document to w in a single write.
func Encode(w io.Writer, doc Document) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	return nil
}

// WriteFile writes the document to path through a temporary file in the
// same directory, so readers never see a partial document.
func WriteFile(path string, doc Document) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = Encode(tmp, doc); err != nil {
		return err
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("closing temporary file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("renaming output file: %w", err)
	}
	return nil
}
