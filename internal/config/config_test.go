package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/joho/godotenv"
)

func TestGodotenvQuoting(t *testing.T) {
	content := `MATERIALS_FILE='/srv/ecopack/materials "v2".yaml'`
	path := filepath.Join(t.TempDir(), ".env.test")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	env, err := godotenv.Read(path)
	if err != nil {
		t.Fatalf("Error reading env: %v", err)
	}

	expected := `/srv/ecopack/materials "v2".yaml`
	if env["MATERIALS_FILE"] != expected {
		t.Errorf("Expected %s, got %s", expected, env["MATERIALS_FILE"])
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATA_PATH", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("expected default write timeout 30s, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Simulation.DefaultSimulations != 400 || cfg.Simulation.MaxSimulations != 5000 {
		t.Errorf("unexpected simulation defaults %+v", cfg.Simulation)
	}
	if cfg.DefaultMaterial != "recycled-cardboard" {
		t.Errorf("unexpected default material %q", cfg.DefaultMaterial)
	}
	if cfg.LogDir != filepath.Join(cfg.DataPath, "logs") {
		t.Errorf("expected log dir under data path, got %q", cfg.LogDir)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DATA_PATH", t.TempDir())
	t.Setenv("HTTP_PORT", "9191")
	t.Setenv("HTTP_READ_TIMEOUT", "2s")
	t.Setenv("SIM_DEFAULT_SIMULATIONS", "250")
	t.Setenv("SIM_MAX_SIMULATIONS", "1000")
	t.Setenv("SIM_WORKERS", "3")
	t.Setenv("DEFAULT_MATERIAL", "molded-pulp")
	t.Setenv("LOGS_FOLDER", "/var/log/ecopack")
	t.Setenv("HTTP_CORS", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.Port != 9191 || cfg.Server.ReadTimeout != 2*time.Second || cfg.Server.CORS {
		t.Errorf("unexpected server config %+v", cfg.Server)
	}
	if cfg.Simulation != (SimulationConfig{DefaultSimulations: 250, MaxSimulations: 1000, Workers: 3}) {
		t.Errorf("unexpected simulation config %+v", cfg.Simulation)
	}
	if cfg.DefaultMaterial != "molded-pulp" || cfg.LogDir != "/var/log/ecopack" {
		t.Errorf("unexpected overrides: material=%q logs=%q", cfg.DefaultMaterial, cfg.LogDir)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("DATA_PATH", t.TempDir())
	t.Setenv("HTTP_PORT", "eighty")
	t.Setenv("HTTP_WRITE_TIMEOUT", "soon")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 8080 || cfg.Server.WriteTimeout != 30*time.Second {
		t.Errorf("expected defaults for unparsable values, got %+v", cfg.Server)
	}
}

func TestValidate(t *testing.T) {
	valid := func() AppConfig {
		return AppConfig{
			Server:     ServerConfig{Port: 8080},
			Simulation: SimulationConfig{DefaultSimulations: 400, MaxSimulations: 5000},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*AppConfig)
		wantErr bool
	}{
		{"Valid", func(*AppConfig) {}, false},
		{"PortZero", func(c *AppConfig) { c.Server.Port = 0 }, true},
		{"PortTooHigh", func(c *AppConfig) { c.Server.Port = 70000 }, true},
		{"MaxAboveHardCap", func(c *AppConfig) { c.Simulation.MaxSimulations = 5001 }, true},
		{"DefaultAboveMax", func(c *AppConfig) { c.Simulation.DefaultSimulations = 6000 }, true},
		{"DefaultZero", func(c *AppConfig) { c.Simulation.DefaultSimulations = 0 }, true},
		{"NegativeWorkers", func(c *AppConfig) { c.Simulation.Workers = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
