package plan

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var periodPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// Volume is a planned volume as it arrived from a form, a CSV cell or a JSON body.
// It keeps the raw text so that parsing failures drop the row instead of the request.
type Volume string

// UnmarshalJSON accepts numbers, numeric strings and null.
func (v *Volume) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Volume(s)
		return nil
	}
	// Anything else (numbers, booleans, objects) is kept verbatim; Normalize decides.
	*v = Volume(data)
	return nil
}

// MarshalJSON emits numeric volumes as numbers and everything else as strings.
func (v Volume) MarshalJSON() ([]byte, error) {
	if f, ok := v.Tons(); ok {
		return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
	}
	return json.Marshal(string(v))
}

// Tons parses the volume. ok is false for empty, non-numeric, non-finite or negative values.
func (v Volume) Tons() (float64, bool) {
	s := strings.TrimSpace(string(v))
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

// RawRow is one unvalidated plan entry.
type RawRow struct {
	Period     string `json:"period"`
	VolumeTons Volume `json:"volumeTons"`
}

// PeriodVolume is a validated plan entry.
type PeriodVolume struct {
	Period     string  `json:"period"`
	VolumeTons float64 `json:"volumeTons"`
}

// Plan is a deduplicated, chronologically sorted production plan.
type Plan struct {
	Entries []PeriodVolume `json:"entries"`
}

// Len returns the number of periods in the plan.
func (p Plan) Len() int {
	return len(p.Entries)
}

// Labels returns the period axis.
func (p Plan) Labels() []string {
	labels := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		labels[i] = e.Period
	}
	return labels
}

// VolumeAt returns the planned volume for a period, or 0 if the period is not planned.
func (p Plan) VolumeAt(period string) float64 {
	i := sort.Search(len(p.Entries), func(i int) bool { return p.Entries[i].Period >= period })
	if i < len(p.Entries) && p.Entries[i].Period == period {
		return p.Entries[i].VolumeTons
	}
	return 0
}

// ValidPeriod reports whether s is a YYYY-MM month label.
func ValidPeriod(s string) bool {
	if !periodPattern.MatchString(s) {
		return false
	}
	month, _ := strconv.Atoi(s[5:])
	return month >= 1 && month <= 12
}

// Normalize turns raw rows into a Plan. Invalid rows are dropped, the first valid
// occurrence of a period wins and the result is sorted ascending. An empty Plan is
// returned (not an error) when nothing survives.
func Normalize(rows []RawRow) Plan {
	seen := make(map[string]bool, len(rows))
	entries := make([]PeriodVolume, 0, len(rows))

	for _, row := range rows {
		period := strings.TrimSpace(row.Period)
		if !ValidPeriod(period) {
			continue
		}
		tons, ok := row.VolumeTons.Tons()
		if !ok {
			continue
		}
		if seen[period] {
			continue
		}
		seen[period] = true
		entries = append(entries, PeriodVolume{Period: period, VolumeTons: tons})
	}

	// Fixed-width zero-padded labels sort chronologically as strings.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Period < entries[j].Period
	})

	return Plan{Entries: entries}
}

// FromVolumes builds raw rows from already-typed values, e.g. tool arguments.
func FromVolumes(entries []PeriodVolume) []RawRow {
	rows := make([]RawRow, len(entries))
	for i, e := range entries {
		rows[i] = RawRow{
			Period:     e.Period,
			VolumeTons: Volume(strconv.FormatFloat(e.VolumeTons, 'g', -1, 64)),
		}
	}
	return rows
}
