// Package report persists the end-of-run summary so successive runs
// can be compared and operators can inspect the last outcome without
// scraping logs.
package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ErrNoReport is returned when no previous report exists.
var ErrNoReport = errors.New("no run report found")

// Report captures one pipeline run's counts and outcome.
type Report struct {
	RunID      string     `json:"run_id"`
	Namespace  string     `json:"namespace"`
	Schools    int        `json:"schools"`
	Grades     []GradeRun `json:"grades"`
	Artifacts  int        `json:"artifacts"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// GradeRun is the per-grade slice of a run report.
type GradeRun struct {
	Grade       int            `json:"grade"`
	Scored      int            `json:"scored"`
	Skipped     int            `json:"skipped"`
	SkipReasons map[string]int `json:"skip_reasons,omitempty"`
}

// Manager handles report persistence and retrieval.
type Manager interface {
	// Load reads the most recent report for the namespace.
	Load(ctx context.Context) (*Report, error)

	// Save persists the report.
	Save(ctx context.Context, r *Report) error
}

// Config configures the report manager. Namespace scopes the report
// file, so a state directory shared across namespaces keeps one report
// per namespace.
type Config struct {
	Enabled   bool
	Dir       string
	Namespace string
}

// NewManager creates a report manager based on configuration.
func NewManager(cfg Config) (Manager, error) {
	if !cfg.Enabled {
		return &noopManager{}, nil
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create report directory %s: %w", cfg.Dir, err)
	}

	return &fileManager{dir: cfg.Dir, namespace: cfg.Namespace}, nil
}

// fileManager persists reports to local files, one per namespace.
type fileManager struct {
	dir       string
	namespace string
}

func (m *fileManager) reportPath(namespace string) string {
	return filepath.Join(m.dir, fmt.Sprintf("report_%s.json", namespace))
}

// Load reads this namespace's report.
func (m *fileManager) Load(ctx context.Context) (*Report, error) {
	data, err := os.ReadFile(m.reportPath(m.namespace))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoReport
		}
		return nil, fmt.Errorf("read report file: %w", err)
	}

	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report file: %w", err)
	}
	return &r, nil
}

// Save persists the report atomically.
func (m *fileManager) Save(ctx context.Context, r *Report) error {
	r.UpdatedAt = time.Now().UTC()
	path := m.reportPath(r.Namespace)

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("write report temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("rename report file: %w", err)
	}

	return nil
}

// noopManager is used when run reports are disabled.
type noopManager struct{}

func (m *noopManager) Load(ctx context.Context) (*Report, error) { return nil, ErrNoReport }
func (m *noopManager) Save(ctx context.Context, r *Report) error { return nil }
