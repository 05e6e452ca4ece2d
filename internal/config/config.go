package config

import (
	"fmt"
	"os"
	"strconv"

	"pim/internal/logger"
	"pim/internal/payslip"
)

type Config struct {
	// Google Cloud Configuration (OCR engines)
	GoogleCloudProject         string
	GoogleCloudLocation        string
	DocumentAIProcessorID      string
	DocumentAIProcessorVersion string

	// OpenAI Configuration (recommendation service)
	OpenAIAPIKey string

	// Google Sheets Configuration (dashboard export)
	GoogleSheetURL       string
	GoogleSheetWorksheet string

	// Pipeline thresholds. Empirically chosen defaults; override via env to
	// recalibrate against real sample documents.
	KeywordDenominator   int
	PayslipThreshold     float64
	ConsistencyTolerance float64
	EfficiencyThreshold  float64

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

// Load reads configuration from the environment. Credentials are optional at
// load time — commands that need an external service validate their own
// requirements — but pipeline thresholds must be sane numbers.
func Load() (*Config, error) {
	defaults := payslip.DefaultConfig()

	config := &Config{
		GoogleCloudProject:         getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:        getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID:      getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		DocumentAIProcessorVersion: getEnv("DOCUMENT_AI_PROCESSOR_VERSION", ""),
		OpenAIAPIKey:               getEnv("OPENAI_API_KEY", ""),
		GoogleSheetURL:             getEnv("GOOGLE_SHEET_URL", ""),
		GoogleSheetWorksheet:       getEnv("GOOGLE_SHEET_WORKSHEET", "Holerites"),
		LogLevel:                   getEnv("LOG_LEVEL", "info"),
		LogFormat:                  getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:              getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:                  getEnv("LOG_OUTPUT", "stderr"),
	}

	var err error
	config.KeywordDenominator, err = getEnvInt("PIM_KEYWORD_DENOMINATOR", defaults.KeywordDenominator)
	if err != nil {
		return nil, err
	}
	config.PayslipThreshold, err = getEnvFloat("PIM_PAYSLIP_THRESHOLD", defaults.PayslipThreshold)
	if err != nil {
		return nil, err
	}
	config.ConsistencyTolerance, err = getEnvFloat("PIM_CONSISTENCY_TOLERANCE", defaults.ConsistencyTolerance)
	if err != nil {
		return nil, err
	}
	config.EfficiencyThreshold, err = getEnvFloat("PIM_EFFICIENCY_THRESHOLD", defaults.EfficiencyThreshold)
	if err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	if c.KeywordDenominator <= 0 {
		return fmt.Errorf("PIM_KEYWORD_DENOMINATOR must be positive")
	}
	if c.PayslipThreshold < 0 || c.PayslipThreshold >= 1 {
		return fmt.Errorf("PIM_PAYSLIP_THRESHOLD must be in [0, 1)")
	}
	if c.ConsistencyTolerance < 0 {
		return fmt.Errorf("PIM_CONSISTENCY_TOLERANCE must not be negative")
	}
	if c.EfficiencyThreshold < 0 || c.EfficiencyThreshold > 100 {
		return fmt.Errorf("PIM_EFFICIENCY_THRESHOLD must be a percentage in [0, 100]")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// GetPipelineConfig returns the extraction pipeline thresholds.
func (c *Config) GetPipelineConfig() payslip.Config {
	return payslip.Config{
		KeywordDenominator:   c.KeywordDenominator,
		PayslipThreshold:     c.PayslipThreshold,
		ConsistencyTolerance: c.ConsistencyTolerance,
		EfficiencyThreshold:  c.EfficiencyThreshold,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return value, nil
}
