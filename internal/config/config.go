package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	CatalogFile         string
	PurchaseHistoryFile string
	InvoiceFile         string
	InvoiceSheet        string
	OutputFile          string
	CorrectionsFile     string
	OverridesFile       string

	LearningDBPath              string
	LearningEnabled             bool
	LearningConfidenceThreshold float64
	LearningBaseConfidence      float64

	TopKCandidates        int
	MatchAutoOKThreshold  float64
	MatchCheckThreshold   float64
	OverrideMinConfidence float64

	LogLevel  string
	LogPretty bool
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		CatalogFile:         getEnv("CATALOG_FILE", filepath.Join(cwd, "MasterListNew.xlsx")),
		PurchaseHistoryFile: getEnv("PURCHASE_HISTORY_FILE", filepath.Join(cwd, "PurchaseReport.xlsx")),
		InvoiceFile:         getEnv("INVOICE_FILE", filepath.Join(cwd, "InvoiceMatchingTemplate.xlsx")),
		InvoiceSheet:        getEnv("INVOICE_SHEET", "Invoice_Input"),
		OutputFile:          getEnv("OUTPUT_FILE", filepath.Join(cwd, "InvoiceMatchingTemplate_out.xlsx")),
		CorrectionsFile:     getEnv("CORRECTIONS_FILE", filepath.Join(cwd, "data", "match_corrections.xlsx")),
		OverridesFile:       getEnv("OVERRIDES_FILE", ""),

		LearningDBPath:              getEnv("LEARNING_DB_PATH", filepath.Join(cwd, "data", "learned_mappings.db")),
		LearningEnabled:             getEnvBool("LEARNING_ENABLED", true),
		LearningConfidenceThreshold: getEnvFloat("LEARNING_CONFIDENCE_THRESHOLD", 0.85),
		LearningBaseConfidence:      getEnvFloat("LEARNING_BASE_CONFIDENCE", 0.90),

		TopKCandidates:        getEnvInt("TOP_K_CANDIDATES", 10),
		MatchAutoOKThreshold:  getEnvFloat("MATCH_AUTO_OK_THRESHOLD", 0.80),
		MatchCheckThreshold:   getEnvFloat("MATCH_CHECK_THRESHOLD", 0.60),
		OverrideMinConfidence: getEnvFloat("OVERRIDE_MIN_CONFIDENCE", 0.85),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvBool("LOG_PRETTY", false),
	}

	return cfg, cfg.Validate()
}

// Validate rejects threshold combinations that would make the tiers meaningless.
func (c Config) Validate() error {
	if c.MatchCheckThreshold < 0 || c.MatchAutoOKThreshold > 1 {
		return fmt.Errorf("match thresholds must lie in [0,1]: check=%.2f auto_ok=%.2f", c.MatchCheckThreshold, c.MatchAutoOKThreshold)
	}
	if c.MatchCheckThreshold > c.MatchAutoOKThreshold {
		return fmt.Errorf("MATCH_CHECK_THRESHOLD (%.2f) exceeds MATCH_AUTO_OK_THRESHOLD (%.2f)", c.MatchCheckThreshold, c.MatchAutoOKThreshold)
	}
	if c.TopKCandidates <= 0 {
		return fmt.Errorf("TOP_K_CANDIDATES must be positive, got %d", c.TopKCandidates)
	}
	return nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required setting: %s", name)
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
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
