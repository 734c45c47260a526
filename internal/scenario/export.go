package scenario

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"

	"github.com/shopspring/decimal"
)

// ExportHeader is the column layout of the comparison CSV.
var ExportHeader = []string{
	"label",
	"planA_volume", "planA_cost", "planA_co2",
	"planB_volume", "planB_cost", "planB_co2",
	"diff_cost", "diff_co2",
}

const (
	volumePlaces = 3
	amountPlaces = 2
)

// WriteCSV writes one row per label. Volumes are rounded to 3 decimals, cost and CO2 to 2.
// A row holding NaN or an infinity is rejected before anything is formatted.
func WriteCSV(w io.Writer, c Comparison) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(ExportHeader); err != nil {
		return err
	}

	for _, r := range c.Rows {
		if err := checkFinite(r); err != nil {
			return err
		}
		record := []string{
			r.Label,
			format(r.VolumeA, volumePlaces), format(r.CostA, amountPlaces), format(r.CO2A, amountPlaces),
			format(r.VolumeB, volumePlaces), format(r.CostB, amountPlaces), format(r.CO2B, amountPlaces),
			format(r.DiffCost, amountPlaces), format(r.DiffCO2, amountPlaces),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func format(v float64, places int32) string {
	return decimal.NewFromFloat(v).StringFixed(places)
}

func checkFinite(r Row) error {
	values := []float64{r.VolumeA, r.CostA, r.CO2A, r.VolumeB, r.CostB, r.CO2B, r.DiffCost, r.DiffCO2}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("row %s: %s is not a finite number", r.Label, ExportHeader[i+1])
		}
	}
	return nil
}
