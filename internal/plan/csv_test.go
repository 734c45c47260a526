package plan

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/iotest"
)

func TestParseCSV(t *testing.T) {
	input := `period,volumeTons
2026-02, 1.2
# planning note
2026-01,3

2026-13,1
2026-03
`
	rows, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 raw rows, got %d: %+v", len(rows), rows)
	}

	p := Normalize(rows)
	if got := strings.Join(p.Labels(), ","); got != "2026-01,2026-02" {
		t.Errorf("expected 2026-01,2026-02, got %s", got)
	}
}

func TestParseCSV_NoHeader(t *testing.T) {
	rows, err := ParseCSV(strings.NewReader("2026-01,1\n2026-02,2\n"))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(rows))
	}
}

func TestParseCSV_StrayQuotesDropOnlyTheirRow(t *testing.T) {
	input := "2026-01,1\n2026-0\"2,5\n2026-03,3\"\n2026-04,2\n"

	rows, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 raw rows, got %d: %+v", len(rows), rows)
	}

	p := Normalize(rows)
	if got := strings.Join(p.Labels(), ","); got != "2026-01,2026-04" {
		t.Errorf("expected 2026-01,2026-04, got %s", got)
	}
}

func TestParseCSV_ReaderError(t *testing.T) {
	boom := errors.New("disk gone")
	if _, err := ParseCSV(iotest.ErrReader(boom)); !errors.Is(err, boom) {
		t.Errorf("expected reader error to be wrapped, got %v", err)
	}
}

func TestWriteCSV(t *testing.T) {
	p := Normalize([]RawRow{
		{Period: "2026-02", VolumeTons: "2"},
		{Period: "2026-01", VolumeTons: "0.5"},
	})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, p); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	want := "period,volumeTons\n2026-01,0.5\n2026-02,2\n"
	if buf.String() != want {
		t.Errorf("unexpected csv:\n%s\nwant:\n%s", buf.String(), want)
	}

	rows, err := ParseCSV(&buf)
	if err != nil {
		t.Fatalf("ParseCSV failed: %v", err)
	}
	if again := Normalize(rows); again.Len() != 2 {
		t.Errorf("expected written plan to read back, got %+v", again.Entries)
	}
}
