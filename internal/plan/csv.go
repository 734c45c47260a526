package plan

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseCSV reads `period,volumeTons` records. A leading header row is skipped when its
// first cell is period, month or label. Stray quotes are read literally, and records with
// the wrong shape are kept as raw rows so that Normalize drops them with the same rules as
// any other bad input. Only a failing reader aborts the parse.
func ParseCSV(r io.Reader) ([]RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.LazyQuotes = true
	reader.Comment = '#'

	var rows []RawRow
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read plan csv: %w", err)
		}

		if first {
			first = false
			if len(record) > 0 && isHeader(record[0]) {
				continue
			}
		}

		if len(record) == 1 && strings.TrimSpace(record[0]) == "" {
			continue
		}

		row := RawRow{Period: record[0]}
		if len(record) > 1 {
			row.VolumeTons = Volume(record[1])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isHeader(cell string) bool {
	cell = strings.ToLower(strings.TrimSpace(cell))
	return cell == "period" || cell == "month" || cell == "label"
}

// WriteCSV writes the plan with a header row.
func WriteCSV(w io.Writer, p Plan) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"period", "volumeTons"}); err != nil {
		return err
	}
	for _, e := range p.Entries {
		if err := writer.Write([]string{e.Period, strconv.FormatFloat(e.VolumeTons, 'f', -1, 64)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
