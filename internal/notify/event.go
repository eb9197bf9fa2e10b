// Package notify emits tamper-evident run-completed events so
// downstream consumers learn when fresh artifacts are available.
package notify

import (
	"time"
)

// RunEvent is an audit event describing one published artifact set.
type RunEvent struct {
	Version   string    `json:"version"`
	EventType string    `json:"event_type"`
	EventID   string    `json:"event_id"`
	Timestamp time.Time `json:"timestamp"`

	Run       RunInfo                 `json:"run"`
	Artifacts map[string]ArtifactInfo `json:"artifacts"`
	Producer  ProducerInfo            `json:"producer"`
	Chain     ChainInfo               `json:"chain"`
}

// RunInfo identifies the pipeline run being announced.
type RunInfo struct {
	RunID         string `json:"run_id"`
	Namespace     string `json:"namespace"`
	Schools       int    `json:"schools"`
	Grade5Scored  int    `json:"grade5_scored"`
	Grade5Skipped int    `json:"grade5_skipped"`
	Grade8Scored  int    `json:"grade8_scored"`
	Grade8Skipped int    `json:"grade8_skipped"`
}

// ArtifactInfo contains checksum and metadata for a single artifact.
type ArtifactInfo struct {
	Checksum    string `json:"checksum"`
	RecordCount int    `json:"record_count"`
	ByteSize    int64  `json:"byte_size"`
	StorageURI  string `json:"storage_uri"`
}

// ProducerInfo identifies the software that produced the artifacts.
type ProducerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	GitSHA  string `json:"git_sha"`
}

// ChainInfo provides hash chaining for a tamper-evident audit log.
type ChainInfo struct {
	PrevEventHash string `json:"prev_event_hash"`
	EventHash     string `json:"event_hash"`
}

// ChainKey returns the unique key for this run's event chain. Runs in
// the same namespace form one chain.
func (r RunInfo) ChainKey() string {
	return r.Namespace
}
