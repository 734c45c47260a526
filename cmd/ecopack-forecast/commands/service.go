package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"ecopack-forecast/internal/config"
	"ecopack-forecast/internal/forecast"
	"ecopack-forecast/internal/materials"
	"ecopack-forecast/internal/plan"
)

// newService wires the material catalog and limits from the loaded configuration.
func newService(cfg *config.AppConfig, metrics forecast.Metrics) (*forecast.Service, error) {
	catalog, err := materials.LoadOrDefault(cfg.MaterialsFile)
	if err != nil {
		return nil, fmt.Errorf("load materials: %w", err)
	}
	if _, ok := catalog.Lookup(cfg.DefaultMaterial); !ok {
		return nil, fmt.Errorf("DEFAULT_MATERIAL %q is not in the material catalog", cfg.DefaultMaterial)
	}

	return forecast.NewService(catalog, forecast.Settings{
		DefaultSimulations: cfg.Simulation.DefaultSimulations,
		MaxSimulations:     cfg.Simulation.MaxSimulations,
		Workers:            cfg.Simulation.Workers,
		DefaultMaterial:    cfg.DefaultMaterial,
	}, metrics), nil
}

// readPlan reads plan rows from a CSV or JSON file; "-" reads CSV from stdin.
// JSON may be a bare array of rows or an object with a "plannedVolumes" array.
func readPlan(path string, stdin io.Reader) ([]plan.RawRow, error) {
	if path == "-" {
		return plan.ParseCSV(stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plan: %w", err)
	}
	defer f.Close()

	if !strings.EqualFold(filepath.Ext(path), ".json") {
		rows, err := plan.ParseCSV(f)
		if err != nil {
			return nil, fmt.Errorf("parse plan %s: %w", path, err)
		}
		return rows, nil
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	var rows []plan.RawRow
	if err := json.Unmarshal(data, &rows); err == nil {
		return rows, nil
	}
	var wrapped struct {
		PlannedVolumes []plan.RawRow `json:"plannedVolumes"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse plan %s: %w", path, err)
	}
	return wrapped.PlannedVolumes, nil
}
