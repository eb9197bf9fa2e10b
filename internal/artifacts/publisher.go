package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Publisher writes artifacts through a Store and accumulates the run
// manifest as it goes. Call Finalize after the last artifact to publish
// the manifest itself.
type Publisher struct {
	store    Store
	compress bool
	logger   *slog.Logger
	manifest *Manifest
}

func NewPublisher(store Store, runID string, producer ProducerInfo, compress bool, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		store:    store,
		compress: compress,
		logger:   logger,
		manifest: &Manifest{
			RunID:     runID,
			Artifacts: make(map[string]ArtifactInfo),
			Producer:  producer,
		},
	}
}

// PublishJSON marshals v as indented JSON and stores it under file,
// plus a zstd copy when compression is enabled. recordCount is the
// logical record count recorded in the manifest, not a byte size.
func (p *Publisher) PublishJSON(ctx context.Context, file string, v any, recordCount int) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", file, err)
	}

	if err := p.store.Write(ctx, file, data); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}

	info := ArtifactInfo{
		File:        file,
		Checksum:    ComputeChecksum(data),
		ByteSize:    int64(len(data)),
		RecordCount: recordCount,
	}

	if p.compress {
		compressed, err := Compress(data)
		if err != nil {
			return fmt.Errorf("compress %s: %w", file, err)
		}
		if err := p.store.Write(ctx, file+CompressedSuffix, compressed); err != nil {
			return fmt.Errorf("write %s: %w", file+CompressedSuffix, err)
		}
		info.Compressed = file + CompressedSuffix
	}

	p.manifest.Artifacts[file] = info
	p.logger.Info("published artifact",
		"file", file,
		"records", recordCount,
		"bytes", info.ByteSize,
		"uri", p.store.URI(file))

	return nil
}

// PublishRaw stores pre-encoded bytes under file and records them in
// the manifest. Used for non-JSON artifacts such as parquet exports,
// which carry their own compression.
func (p *Publisher) PublishRaw(ctx context.Context, file string, data []byte, recordCount int) error {
	if err := p.store.Write(ctx, file, data); err != nil {
		return fmt.Errorf("write %s: %w", file, err)
	}

	p.manifest.Artifacts[file] = ArtifactInfo{
		File:        file,
		Checksum:    ComputeChecksum(data),
		ByteSize:    int64(len(data)),
		RecordCount: recordCount,
	}
	p.logger.Info("published artifact",
		"file", file,
		"records", recordCount,
		"bytes", len(data),
		"uri", p.store.URI(file))

	return nil
}

// Finalize stamps and writes the manifest. The manifest is written
// last so its presence signals a complete artifact set.
func (p *Publisher) Finalize(ctx context.Context) error {
	p.manifest.CreatedAt = time.Now().UTC()

	data, err := p.manifest.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := p.store.Write(ctx, ManifestFile, data); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	p.logger.Info("published manifest", "artifacts", len(p.manifest.Artifacts))
	return nil
}

// Manifest returns the manifest accumulated so far.
func (p *Publisher) Manifest() *Manifest {
	return p.manifest
}
