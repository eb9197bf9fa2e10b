// Package config loads pipeline configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
)

type Config struct {
	Input    InputConfig
	Plan     PlanConfig
	Storage  StorageConfig
	Catalog  CatalogConfig
	Notify   NotifyConfig
	Metrics  MetricsConfig
	Report   ReportConfig
	Export   ExportConfig
	Logging  LoggingConfig
	Perf     PerfConfig
	Producer ProducerConfig
}

// InputConfig names the four tabular sources. Either CombinedPath
// points at one workbook (or CSV directory) holding all four sheets,
// or the four per-source paths are set individually.
type InputConfig struct {
	CombinedPath string

	SchoolsPath string
	KeysPath    string
	Grade5Path  string
	Grade8Path  string

	SchoolsSheet string
	KeysSheet    string
	Grade5Sheet  string
	Grade8Sheet  string
}

// PlanConfig points at the assessment plan YAML. Empty means the
// built-in plan.
type PlanConfig struct {
	Path string
}

type StorageConfig struct {
	Backend    string
	Bucket     string
	Prefix     string
	LocalDir   string
	Compress   bool
	S3Endpoint string
	S3Region   string
}

type CatalogConfig struct {
	PostgresDSN string
	Namespace   string
}

type NotifyConfig struct {
	Enabled   bool
	Endpoint  string
	BackupDir string
}

type MetricsConfig struct {
	Enabled bool
	Address string
}

type ReportConfig struct {
	Enabled bool
	Dir     string
}

type ExportConfig struct {
	Parquet bool
}

type LoggingConfig struct {
	Format string
	Level  string
}

type PerfConfig struct {
	ScoreWorkers int
}

type ProducerConfig struct {
	Name    string
	Version string
	GitSHA  string
}

// MustLoad reads configuration from environment variables, applying
// defaults suited to a local run.
func MustLoad() Config {
	slog.Info("loading configuration", "component", "config")

	scoreWorkers := 4
	if v := os.Getenv("SCORE_WORKERS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			scoreWorkers = parsed
		}
	}

	return Config{
		Input: InputConfig{
			CombinedPath: os.Getenv("INPUT_PATH"),
			SchoolsPath:  os.Getenv("SCHOOLS_PATH"),
			KeysPath:     os.Getenv("ANSWER_KEYS_PATH"),
			Grade5Path:   os.Getenv("GRADE5_RESPONSES_PATH"),
			Grade8Path:   os.Getenv("GRADE8_RESPONSES_PATH"),
			SchoolsSheet: getenvDefault("SCHOOLS_SHEET", "Schools"),
			KeysSheet:    getenvDefault("ANSWER_KEYS_SHEET", "Answer Keys"),
			Grade5Sheet:  getenvDefault("GRADE5_SHEET", "Grade 5 Responses"),
			Grade8Sheet:  getenvDefault("GRADE8_SHEET", "Grade 8 Responses"),
		},
		Plan: PlanConfig{
			Path: os.Getenv("PLAN_PATH"),
		},
		Storage: StorageConfig{
			Backend:  getenvDefault("STORAGE_BACKEND", "local"),
			Bucket:   os.Getenv("STORAGE_BUCKET"),
			Prefix:   getenvDefault("STORAGE_PREFIX", "artifacts/"),
			LocalDir: getenvDefault("LOCAL_DIR", "./data"),
			Compress: os.Getenv("COMPRESS_ARTIFACTS") == "true",

			S3Endpoint: os.Getenv("S3_ENDPOINT"),
			S3Region:   getenvDefault("S3_REGION", "us-east-1"),
		},
		Catalog: CatalogConfig{
			PostgresDSN: os.Getenv("CATALOG_DSN"),
			Namespace:   getenvDefault("CATALOG_NAMESPACE", "angul"),
		},
		Notify: NotifyConfig{
			Enabled:   os.Getenv("NOTIFY_ENABLED") == "true",
			Endpoint:  os.Getenv("NOTIFY_ENDPOINT"),
			BackupDir: getenvDefault("NOTIFY_BACKUP_DIR", "./state"),
		},
		Metrics: MetricsConfig{
			Enabled: os.Getenv("METRICS_ENABLED") == "true",
			Address: getenvDefault("METRICS_ADDR", ":9090"),
		},
		Report: ReportConfig{
			Enabled: os.Getenv("REPORT_DISABLED") != "true",
			Dir:     getenvDefault("REPORT_DIR", "./state"),
		},
		Export: ExportConfig{
			Parquet: os.Getenv("EXPORT_PARQUET") == "true",
		},
		Logging: LoggingConfig{
			Format: getenvDefault("LOG_FORMAT", "text"),
			Level:  getenvDefault("LOG_LEVEL", "info"),
		},
		Perf: PerfConfig{
			ScoreWorkers: scoreWorkers,
		},
		Producer: ProducerConfig{
			Name:    "assessment-pipeline",
			Version: getenvDefault("PRODUCER_VERSION", "dev"),
			GitSHA:  os.Getenv("PRODUCER_GIT_SHA"),
		},
	}
}

// Validate checks the fatal preconditions: every one of the four input
// sources must be locatable before any processing starts.
func (c Config) Validate() error {
	if c.Input.CombinedPath != "" {
		return nil
	}

	missing := []string{}
	if c.Input.SchoolsPath == "" {
		missing = append(missing, "SCHOOLS_PATH")
	}
	if c.Input.KeysPath == "" {
		missing = append(missing, "ANSWER_KEYS_PATH")
	}
	if c.Input.Grade5Path == "" {
		missing = append(missing, "GRADE5_RESPONSES_PATH")
	}
	if c.Input.Grade8Path == "" {
		missing = append(missing, "GRADE8_RESPONSES_PATH")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing input configuration: set INPUT_PATH or all of %v", missing)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}
