package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server     ServerConfig
	MongoDB    MongoDBConfig
	Reporting  ReportingConfig
	Pricing    PricingConfig
	Thresholds ThresholdsConfig
	Notify     NotifyConfig
	Sheets     SheetsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// ReportingConfig holds scheduler-related settings for the nightly farm report.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// PricingConfig parameterizes the price-by-weight curve used to estimate
// revenue for cycles that have not harvested yet.
type PricingConfig struct {
	BasePricePerKg   float64
	ReferenceWeightG int64
}

// ThresholdsConfig centralizes the performance classifier cut-offs so they
// are configuration rather than magic numbers scattered across views.
type ThresholdsConfig struct {
	SurvivalGoodPct     float64
	SurvivalModeratePct float64
	FCAGood             float64
	FCAModerate         float64
	GrowthGoodGPerWeek  float64
	GrowthModGPerWeek   float64
	MarginGoodPct       float64
	MarginModeratePct   float64
}

// NotifyConfig points harvest and report alerts at a webhook. Optional.
type NotifyConfig struct {
	WebhookURL string
}

// SheetsConfig enables spreadsheet export of the nightly report. Optional;
// export is skipped entirely when no credentials are configured.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "viveiro"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "America/Fortaleza"),
		},
		Pricing: PricingConfig{
			BasePricePerKg:   getenvFloat("BASE_PRICE_PER_KG", 22.0),
			ReferenceWeightG: int64(getenvFloat("PRICE_REFERENCE_WEIGHT_G", 10)),
		},
		Thresholds: ThresholdsConfig{
			SurvivalGoodPct:     getenvFloat("SURVIVAL_GOOD_PCT", 80),
			SurvivalModeratePct: getenvFloat("SURVIVAL_MODERATE_PCT", 60),
			FCAGood:             getenvFloat("FCA_GOOD", 1.5),
			FCAModerate:         getenvFloat("FCA_MODERATE", 2.0),
			GrowthGoodGPerWeek:  getenvFloat("GROWTH_GOOD_G_PER_WEEK", 1.0),
			GrowthModGPerWeek:   getenvFloat("GROWTH_MODERATE_G_PER_WEEK", 0.5),
			MarginGoodPct:       getenvFloat("MARGIN_GOOD_PCT", 20),
			MarginModeratePct:   getenvFloat("MARGIN_MODERATE_PCT", 5),
		},
		Notify: NotifyConfig{
			WebhookURL: os.Getenv("ALERT_WEBHOOK_URL"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_REPORT_ID"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.MongoDB.URI == "":
		return errors.New("MONGODB_URI must be provided")
	case c.MongoDB.DBName == "":
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.Pricing.BasePricePerKg <= 0 {
		return errors.New("BASE_PRICE_PER_KG must be positive")
	}

	if c.Thresholds.SurvivalGoodPct < c.Thresholds.SurvivalModeratePct {
		return errors.New("SURVIVAL_GOOD_PCT must not be below SURVIVAL_MODERATE_PCT")
	}
	if c.Thresholds.FCAGood > c.Thresholds.FCAModerate {
		return errors.New("FCA_GOOD must not exceed FCA_MODERATE")
	}

	// Sheets export is optional but must be configured as a pair.
	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_REPORT_ID must be set together")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
