package engine

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ecopack-forecast/internal/plan"
)

func TestGenerate(t *testing.T) {
	start := time.Date(2026, time.November, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		scenario string
		check    func(t *testing.T, p plan.Plan)
	}{
		{"Flat", "flat", func(t *testing.T, p plan.Plan) {
			for _, e := range p.Entries {
				if e.VolumeTons != 10 {
					t.Errorf("expected flat 10 tons, got %v at %s", e.VolumeTons, e.Period)
				}
			}
		}},
		{"Growth", "growth", func(t *testing.T, p plan.Plan) {
			for i := 1; i < p.Len(); i++ {
				if p.Entries[i].VolumeTons <= p.Entries[i-1].VolumeTons {
					t.Errorf("expected growth at %s", p.Entries[i].Period)
				}
			}
		}},
		{"Seasonal", "seasonal", func(t *testing.T, p plan.Plan) {
			if p.VolumeAt("2026-11") <= p.VolumeAt("2027-04") {
				t.Errorf("expected November above April, got %v vs %v", p.VolumeAt("2026-11"), p.VolumeAt("2027-04"))
			}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Generate(GeneratorConfig{Scenario: tt.scenario, Start: start, Months: 12, BaseTons: 10})
			if err != nil {
				t.Fatalf("Generate failed: %v", err)
			}
			if p.Len() != 12 {
				t.Fatalf("expected 12 months, got %d", p.Len())
			}
			if p.Entries[0].Period != "2026-11" || p.Entries[11].Period != "2027-10" {
				t.Errorf("unexpected range %s..%s", p.Entries[0].Period, p.Entries[11].Period)
			}
			tt.check(t, p)
		})
	}
}

func TestGenerate_NoiseIsSeeded(t *testing.T) {
	cfg := GeneratorConfig{Scenario: "flat", Start: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Months: 6, BaseTons: 5, Noise: 0.1, Seed: 9}

	a, err := Generate(cfg)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := Generate(cfg)
	for i := range a.Entries {
		if a.Entries[i] != b.Entries[i] {
			t.Fatalf("expected identical plans for the same seed")
		}
		if v := a.Entries[i].VolumeTons; v < 4.5 || v > 5.5 {
			t.Errorf("volume %v outside +/-10%% of 5", v)
		}
	}
}

func TestGenerate_Errors(t *testing.T) {
	for name, cfg := range map[string]GeneratorConfig{
		"UnknownScenario": {Scenario: "chaos", Months: 3, BaseTons: 1},
		"NoMonths":        {Scenario: "flat", Months: 0, BaseTons: 1},
		"NegativeBase":    {Scenario: "flat", Months: 3, BaseTons: -1},
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := Generate(cfg); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestSave(t *testing.T) {
	p := plan.Normalize([]plan.RawRow{{Period: "2026-01", VolumeTons: "1.5"}})

	var buf bytes.Buffer
	if err := Save(&buf, "-", p); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "period,volumeTons\n2026-01,1.5\n" {
		t.Errorf("unexpected stdout output %q", buf.String())
	}

	path := filepath.Join(t.TempDir(), "nested", "plan.csv")
	if err := Save(nil, path, p); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	rows, err := plan.ParseCSV(bytes.NewReader(data))
	if err != nil || len(rows) != 1 || rows[0].Period != "2026-01" {
		t.Errorf("round trip failed: %v %+v", err, rows)
	}
}
