// Package artifacts writes the pipeline's output files to local or
// cloud object storage and records what was written in a manifest.
package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Canonical artifact file names consumed by the presentation layer.
const (
	SchoolsFile     = "schools.json"
	ItemKeysFile    = "itemKeys.json"
	AggregatesFile  = "schoolAggregates.json"
	LOBreakdownFile = "schoolLoBreakdown.json"
	ManifestFile    = "_manifest.json"
)

// Manifest describes one pipeline run's published artifacts.
type Manifest struct {
	RunID     string                  `json:"run_id"`
	Artifacts map[string]ArtifactInfo `json:"artifacts"`
	Producer  ProducerInfo            `json:"producer"`
	CreatedAt time.Time               `json:"created_at"`
}

// ArtifactInfo describes a single published file.
type ArtifactInfo struct {
	File        string `json:"file"`
	Checksum    string `json:"checksum"`
	ByteSize    int64  `json:"byte_size"`
	RecordCount int    `json:"record_count"`
	Compressed  string `json:"compressed,omitempty"`
}

// ProducerInfo describes the software that produced the artifacts.
type ProducerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	GitSHA  string `json:"git_sha,omitempty"`
}

// MarshalJSON returns the manifest as indented JSON bytes.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	type Alias Manifest
	return json.MarshalIndent((*Alias)(m), "", "  ")
}

// Store abstracts writing artifact bytes to storage.
type Store interface {
	// Write stores data under key, replacing any existing object.
	// Implementations must publish atomically: a reader never sees a
	// partially written artifact.
	Write(ctx context.Context, key string, data []byte) error

	// Exists reports whether key is already present.
	Exists(ctx context.Context, key string) (bool, error)

	// URI returns the canonical URI for the given key.
	// For local: file:///path, GCS: gs://bucket/path, S3: s3://bucket/path
	URI(key string) string

	// Close releases any resources.
	Close() error
}

// Config configures the storage backend.
type Config struct {
	Backend string // "local" | "gcs" | "s3"

	// Local filesystem
	LocalDir string

	// GCS
	GCSBucket string

	// S3 (also works for B2, R2, MinIO)
	S3Bucket   string
	S3Endpoint string
	S3Region   string

	// Common path prefix within bucket or local dir, e.g. "artifacts/".
	Prefix string
}

// NewStore creates a storage backend based on configuration.
func NewStore(cfg Config) (Store, error) {
	switch cfg.Backend {
	case "local":
		if cfg.LocalDir == "" {
			return nil, fmt.Errorf("LocalDir required for local backend")
		}
		return NewLocalStore(cfg.LocalDir, cfg.Prefix)
	case "gcs":
		if cfg.GCSBucket == "" {
			return nil, fmt.Errorf("GCSBucket required for gcs backend")
		}
		return NewGCSStore(cfg.GCSBucket, cfg.Prefix)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3Bucket required for s3 backend")
		}
		return NewS3Store(cfg.S3Bucket, cfg.Prefix, cfg.S3Endpoint, cfg.S3Region)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
