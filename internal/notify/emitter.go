package notify

import (
	"context"
	"log/slog"
)

// Config configures event emission. Disabled turns all emission off.
type Config struct {
	Enabled   bool
	Endpoint  string
	BackupDir string
	Namespace string
}

// Emitter is the interface for run event emission.
type Emitter interface {
	EmitRun(ctx context.Context, evt *RunEvent) error
	Close() error
}

// NewEmitter creates an appropriate emitter based on configuration.
func NewEmitter(cfg Config, logger *slog.Logger) Emitter {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "notify")

	if !cfg.Enabled {
		logger.Info("event emission disabled, using no-op emitter")
		return &noopEmitter{}
	}

	if cfg.Endpoint != "" {
		emitter, err := NewHTTPEmitter(cfg, logger)
		if err != nil {
			logger.Warn("failed to create HTTP emitter, falling back to file-only", "error", err)
			return createFileOnlyEmitter(cfg, logger)
		}
		logger.Info("using HTTP emitter", "endpoint", cfg.Endpoint)
		return emitter
	}

	return createFileOnlyEmitter(cfg, logger)
}

func createFileOnlyEmitter(cfg Config, logger *slog.Logger) Emitter {
	emitter, err := NewFileOnlyEmitter(cfg.BackupDir, logger)
	if err != nil {
		logger.Warn("failed to create file emitter, using no-op", "error", err)
		return &noopEmitter{}
	}
	logger.Info("using file-only emitter", "dir", cfg.BackupDir)
	return emitter
}

// noopEmitter discards all events.
type noopEmitter struct{}

func (n *noopEmitter) EmitRun(_ context.Context, _ *RunEvent) error { return nil }
func (n *noopEmitter) Close() error                                 { return nil }
