package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// FileBackup saves run events to local files for backup/audit.
type FileBackup struct {
	dir    string
	logger *slog.Logger
}

// NewFileBackup creates a new file backup handler.
func NewFileBackup(dir string, logger *slog.Logger) (*FileBackup, error) {
	if dir == "" {
		dir = "./event-backup"
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	return &FileBackup{dir: dir, logger: logger}, nil
}

// Save writes a run event to a local JSON file named after the run.
func (f *FileBackup) Save(evt *RunEvent) error {
	filename := fmt.Sprintf("%s_%s.json", evt.Run.Namespace, evt.Run.RunID)
	path := filepath.Join(f.dir, filename)

	data, err := json.MarshalIndent(evt, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	f.logger.Info("backed up run event", "path", path)
	return nil
}

// FileOnlyEmitter writes events to files only, for environments with
// no event endpoint.
type FileOnlyEmitter struct {
	logger       *slog.Logger
	chainTracker *ChainTracker
	backup       *FileBackup
}

// NewFileOnlyEmitter creates an emitter that only writes local files.
func NewFileOnlyEmitter(backupDir string, logger *slog.Logger) (*FileOnlyEmitter, error) {
	chainTracker, err := NewChainTracker(backupDir)
	if err != nil {
		return nil, fmt.Errorf("create chain tracker: %w", err)
	}

	backup, err := NewFileBackup(backupDir, logger)
	if err != nil {
		return nil, fmt.Errorf("create file backup: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &FileOnlyEmitter{
		logger:       logger,
		chainTracker: chainTracker,
		backup:       backup,
	}, nil
}

// EmitRun writes a run event to local file only.
func (e *FileOnlyEmitter) EmitRun(_ context.Context, evt *RunEvent) error {
	chainKey := evt.Run.ChainKey()

	prevHash, _ := e.chainTracker.GetHead(chainKey)

	evt.EventID = GenerateEventID()
	evt.Timestamp = time.Now().UTC()
	evt.Version = "1.0"
	evt.EventType = "assessment_run"
	evt.SetChainHashes(prevHash)

	e.logger.Info("file-only emit",
		"chain", chainKey,
		"run_id", evt.Run.RunID,
		"event_hash", evt.Chain.EventHash)

	if err := e.backup.Save(evt); err != nil {
		return err
	}

	if err := e.chainTracker.SetHead(chainKey, evt.Chain.EventHash); err != nil {
		e.logger.Warn("failed to update chain head", "error", err)
	}

	return nil
}

// Close releases resources.
func (e *FileOnlyEmitter) Close() error {
	return nil
}
