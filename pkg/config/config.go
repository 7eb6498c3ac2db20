package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Data  DataConfig
	Model ModelConfig
	Log   LogConfig
}

type DataConfig struct {
	RawPath  string // RAW_DATA_PATH
	RawSheet string // RAW_SHEET, xlsx only
	DBPath   string // DB_PATH
	Table    string // TABLE_NAME
	ChartDir string // CHART_DIR
}

type ModelConfig struct {
	ArtifactPath string  // MODEL_PATH
	ReportPath   string  // REPORT_PATH, empty disables the report file
	TestRatio    float64 // SPLIT_TEST_RATIO
	Seed         int64   // SPLIT_SEED
	TopN         int     // TOP_COEFFICIENTS
}

type LogConfig struct {
	Level    string // debug, info, warn, error
	Format   string // tint, text, json
	Output   string // stdout, stderr, file
	FilePath string
}

// Load reads envFile (".env" when empty) into the process environment and
// builds the configuration. A missing default .env is not an error; an
// explicitly named file must exist.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("could not load env file %s: %w", envFile, err)
		}
	} else if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds the configuration from environment variables and defaults.
func FromEnv() (*Config, error) {
	ratio, err := getEnvAsFloat("SPLIT_TEST_RATIO", 0.2)
	if err != nil {
		return nil, err
	}
	seed, err := getEnvAsInt("SPLIT_SEED", 42)
	if err != nil {
		return nil, err
	}
	topN, err := getEnvAsInt("TOP_COEFFICIENTS", 10)
	if err != nil {
		return nil, err
	}
	return &Config{
		Data: DataConfig{
			RawPath:  getEnv("RAW_DATA_PATH", "data/ToyotaCorolla.csv"),
			RawSheet: getEnv("RAW_SHEET", ""),
			DBPath:   getEnv("DB_PATH", "database/car_data.db"),
			Table:    getEnv("TABLE_NAME", "used_cars"),
			ChartDir: getEnv("CHART_DIR", "charts"),
		},
		Model: ModelConfig{
			ArtifactPath: getEnv("MODEL_PATH", "models/price_linear_pipeline.gob"),
			ReportPath:   getEnv("REPORT_PATH", "models/price_linear_report.yaml"),
			TestRatio:    ratio,
			Seed:         seed,
			TopN:         int(topN),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Format:   getEnv("LOG_FORMAT", "tint"),
			Output:   getEnv("LOG_OUTPUT", "stderr"),
			FilePath: getEnv("LOG_FILE", ""),
		},
	}, nil
}

func (c *Config) Validate() error {
	if c.Data.RawPath == "" {
		return errors.New("RAW_DATA_PATH is required")
	}
	if c.Data.DBPath == "" {
		return errors.New("DB_PATH is required")
	}
	if c.Data.Table == "" {
		return errors.New("TABLE_NAME is required")
	}
	if c.Model.ArtifactPath == "" {
		return errors.New("MODEL_PATH is required")
	}
	if c.Model.TestRatio <= 0 || c.Model.TestRatio >= 1 {
		return fmt.Errorf("SPLIT_TEST_RATIO must be in (0, 1), got %g", c.Model.TestRatio)
	}
	if c.Model.TopN <= 0 {
		return fmt.Errorf("TOP_COEFFICIENTS must be positive, got %d", c.Model.TopN)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL: %s", c.Log.Level)
	}
	switch c.Log.Format {
	case "tint", "text", "json":
	default:
		return fmt.Errorf("invalid LOG_FORMAT: %s", c.Log.Format)
	}
	switch c.Log.Output {
	case "stdout", "stderr":
	case "file":
		if c.Log.FilePath == "" {
			return errors.New("LOG_FILE is required when LOG_OUTPUT is file")
		}
	default:
		return fmt.Errorf("invalid LOG_OUTPUT: %s", c.Log.Output)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int64) (int64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvAsFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}
