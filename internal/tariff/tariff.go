// Package tariff turns spot prices into consumer prices by adding VAT,
// retail margin, taxes and the time-of-day transmission fee. All amounts
// are in c/kWh.
package tariff

import (
	"time"

	"semerg/internal/fetcher"
)

type Tariff struct {
	VAT               float64
	Margin            float64
	ElectricityTax    float64
	SupplySecurityFee float64
	TransmissionDay   float64
	TransmissionNight float64
	// DayStartHour and DayEndHour bound the day fee, both inclusive
	DayStartHour int
	DayEndHour   int
	// Location decides the hour of day, nil means time.Local
	Location *time.Location
}

// Default returns the Finnish consumer tariff the tool was written for.
func Default() Tariff {
	return Tariff{
		VAT:               0.24,
		Margin:            0.40323,
		ElectricityTax:    2.24,
		SupplySecurityFee: 0.013,
		TransmissionDay:   2.58,
		TransmissionNight: 1.13,
		DayStartHour:      7,
		DayEndHour:        22,
	}
}

// Transmission returns the transmission fee for the hour starting at ts.
func (t Tariff) Transmission(ts time.Time) float64 {
	loc := t.Location
	if loc == nil {
		loc = time.Local
	}
	hour := ts.In(loc).Hour()
	if hour >= t.DayStartHour && hour <= t.DayEndHour {
		return t.TransmissionDay
	}
	return t.TransmissionNight
}

// Overhead returns the VAT-free fixed costs for the hour starting at ts.
func (t Tariff) Overhead(ts time.Time) float64 {
	return t.SupplySecurityFee + t.ElectricityTax + t.Margin + t.Transmission(ts)
}

// Adjust returns the consumer price for a spot price. VAT is not added
// to negative spot prices.
func (t Tariff) Adjust(ts time.Time, spot float64) float64 {
	total := spot
	if total > 0 {
		total *= 1 + t.VAT
	}
	return total + t.Overhead(ts)*(1+t.VAT)
}

// Apply adjusts every point of s into a new series.
func (t Tariff) Apply(s fetcher.Series) fetcher.Series {
	adjusted := make(fetcher.Series, len(s))
	for i, p := range s {
		adjusted[i] = fetcher.TimePoint{Time: p.Time, Value: t.Adjust(p.Time, p.Value)}
	}
	return adjusted
}
