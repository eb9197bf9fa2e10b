// Package catalog records pipeline runs and their published artifacts
// in PostgreSQL so operators can trace which run produced which files.
package catalog

import (
	"context"
	"time"
)

// Config configures the catalog backend. An empty DSN disables the
// catalog entirely.
type Config struct {
	PostgresDSN string
	Namespace   string
}

// RunRecord summarizes one completed pipeline run.
type RunRecord struct {
	RunID           string
	Schools         int
	Grade5Scored    int
	Grade5Skipped   int
	Grade8Scored    int
	Grade8Skipped   int
	ProducerVersion string
	ProducerGitSHA  string
	StartedAt       time.Time
	FinishedAt      time.Time
}

// ArtifactRecord describes one published artifact within a run.
type ArtifactRecord struct {
	RunID       string
	File        string
	Checksum    string
	ByteSize    int64
	RecordCount int
	StorageURI  string
}

// Writer persists run and artifact records.
type Writer interface {
	RecordRun(ctx context.Context, rec RunRecord) error
	RecordArtifact(ctx context.Context, rec ArtifactRecord) error
	Close() error
}

// NewWriter returns a PostgreSQL writer when a DSN is configured, and
// a no-op writer otherwise.
func NewWriter(cfg Config) (Writer, error) {
	if cfg.PostgresDSN == "" {
		return noopWriter{}, nil
	}
	return NewPostgresWriter(cfg)
}

type noopWriter struct{}

func (noopWriter) RecordRun(context.Context, RunRecord) error           { return nil }
func (noopWriter) RecordArtifact(context.Context, ArtifactRecord) error { return nil }
func (noopWriter) Close() error                                         { return nil }
