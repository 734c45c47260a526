package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"ecopack-forecast/internal/simulation"

	"github.com/creasty/defaults"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `default:"0.0.0.0"`
	Port            int           `default:"8080"`
	ReadTimeout     time.Duration `default:"10s"`
	WriteTimeout    time.Duration `default:"30s"`
	ShutdownTimeout time.Duration `default:"10s"`
	CORS            bool          `default:"true"`
}

// SimulationConfig bounds the Monte-Carlo runs.
type SimulationConfig struct {
	DefaultSimulations int `default:"400"`
	MaxSimulations     int `default:"5000"`

	// Workers is the number of periods simulated concurrently; 0 means GOMAXPROCS.
	Workers int `default:"0"`
}

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Server          ServerConfig
	Simulation      SimulationConfig
	MaterialsFile   string
	DefaultMaterial string `default:"recycled-cardboard"`
	DataPath        string
	LogDir          string
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// 1. Try to load from the executable's directory
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	// 2. Fallback to current working directory
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	cfg := &AppConfig{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	// 3. Resolve Data Paths
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}
	cfg.DataPath = dataPath
	cfg.LogDir = getEnv("LOGS_FOLDER", filepath.Join(dataPath, "logs"))

	// 4. Environment overrides
	cfg.Server.Host = getEnv("HTTP_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnvInt("HTTP_PORT", cfg.Server.Port)
	cfg.Server.ReadTimeout = getEnvDuration("HTTP_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getEnvDuration("HTTP_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.ShutdownTimeout = getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)
	cfg.Server.CORS = getEnvBool("HTTP_CORS", cfg.Server.CORS)

	cfg.Simulation.DefaultSimulations = getEnvInt("SIM_DEFAULT_SIMULATIONS", cfg.Simulation.DefaultSimulations)
	cfg.Simulation.MaxSimulations = getEnvInt("SIM_MAX_SIMULATIONS", cfg.Simulation.MaxSimulations)
	cfg.Simulation.Workers = getEnvInt("SIM_WORKERS", cfg.Simulation.Workers)

	cfg.MaterialsFile = getEnv("MATERIALS_FILE", "")
	cfg.DefaultMaterial = getEnv("DEFAULT_MATERIAL", cfg.DefaultMaterial)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// Validate checks if the configuration is usable.
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Simulation.MaxSimulations < 1 || c.Simulation.MaxSimulations > simulation.MaxSimulations {
		return fmt.Errorf("SIM_MAX_SIMULATIONS must be between 1 and %d, got %d", simulation.MaxSimulations, c.Simulation.MaxSimulations)
	}
	if c.Simulation.DefaultSimulations < 1 || c.Simulation.DefaultSimulations > c.Simulation.MaxSimulations {
		return fmt.Errorf("SIM_DEFAULT_SIMULATIONS must be between 1 and SIM_MAX_SIMULATIONS (%d), got %d", c.Simulation.MaxSimulations, c.Simulation.DefaultSimulations)
	}
	if c.Simulation.Workers < 0 {
		return fmt.Errorf("SIM_WORKERS must not be negative, got %d", c.Simulation.Workers)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring non-integer environment value")
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Warn().Str("key", key).Str("value", value).Msg("Ignoring invalid duration environment value")
	}
	return fallback
}
