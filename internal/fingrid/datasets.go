// Package fingrid fetches production and forecast datasets from the
// Fingrid open data API.
package fingrid

import "fmt"

// Dataset is one published time series of the open data API.
type Dataset struct {
	ID int
	// Key is the output document key of the series
	Key  string
	Name string
}

var (
	WindProduction          = Dataset{ID: 75, Key: "windProduction", Name: "wind power production"}
	WindProductionForecast  = Dataset{ID: 245, Key: "windProductionForecast", Name: "wind power production forecast"}
	SolarProductionForecast = Dataset{ID: 248, Key: "solarProductionForecast", Name: "solar power production forecast"}
)

// Datasets returns the production datasets in fetch order.
func Datasets() []Dataset {
	return []Dataset{WindProduction, WindProductionForecast, SolarProductionForecast}
}

func (d Dataset) String() string {
	return fmt.Sprintf("%s (%d)", d.Name, d.ID)
}
