package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.KeywordDenominator)
	assert.InDelta(t, 0.2, cfg.PayslipThreshold, 0.001)
	assert.InDelta(t, 0.01, cfg.ConsistencyTolerance, 0.001)
	assert.InDelta(t, 75.0, cfg.EfficiencyThreshold, 0.001)
	assert.Equal(t, "Holerites", cfg.GoogleSheetWorksheet)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadThresholdOverrides(t *testing.T) {
	t.Setenv("PIM_KEYWORD_DENOMINATOR", "10")
	t.Setenv("PIM_PAYSLIP_THRESHOLD", "0.3")
	t.Setenv("PIM_CONSISTENCY_TOLERANCE", "0.02")
	t.Setenv("PIM_EFFICIENCY_THRESHOLD", "70")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.KeywordDenominator)
	assert.InDelta(t, 0.3, cfg.PayslipThreshold, 0.001)
	assert.InDelta(t, 0.02, cfg.ConsistencyTolerance, 0.001)
	assert.InDelta(t, 70.0, cfg.EfficiencyThreshold, 0.001)

	pipeline := cfg.GetPipelineConfig()
	assert.Equal(t, 10, pipeline.KeywordDenominator)
	assert.InDelta(t, 0.3, pipeline.PayslipThreshold, 0.001)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric denominator", "PIM_KEYWORD_DENOMINATOR", "many"},
		{"zero denominator", "PIM_KEYWORD_DENOMINATOR", "0"},
		{"threshold above one", "PIM_PAYSLIP_THRESHOLD", "1.5"},
		{"negative tolerance", "PIM_CONSISTENCY_TOLERANCE", "-0.01"},
		{"efficiency above hundred", "PIM_EFFICIENCY_THRESHOLD", "150"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetLoggerConfig(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	logCfg := cfg.GetLoggerConfig()
	assert.Equal(t, "debug", logCfg.Level)
	assert.Equal(t, "json", logCfg.Format)
}
