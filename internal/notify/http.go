package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// HTTPEmitter sends run events to an HTTP endpoint, with a local file
// backup written before every POST.
type HTTPEmitter struct {
	cfg          Config
	logger       *slog.Logger
	client       *http.Client
	chainTracker *ChainTracker
	backup       *FileBackup
}

// NewHTTPEmitter creates a new HTTP emitter.
func NewHTTPEmitter(cfg Config, logger *slog.Logger) (*HTTPEmitter, error) {
	chainTracker, err := NewChainTracker(cfg.BackupDir)
	if err != nil {
		return nil, fmt.Errorf("create chain tracker: %w", err)
	}

	backup, err := NewFileBackup(cfg.BackupDir, logger)
	if err != nil {
		return nil, fmt.Errorf("create file backup: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &HTTPEmitter{
		cfg:    cfg,
		logger: logger,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		chainTracker: chainTracker,
		backup:       backup,
	}, nil
}

// EmitRun sends a run event to the configured endpoint.
func (e *HTTPEmitter) EmitRun(ctx context.Context, evt *RunEvent) error {
	chainKey := evt.Run.ChainKey()

	prevHash, err := e.chainTracker.GetHead(chainKey)
	if err != nil && !errors.Is(err, ErrNoChainHead) {
		return fmt.Errorf("get chain head: %w", err)
	}

	evt.EventID = GenerateEventID()
	evt.Timestamp = time.Now().UTC()
	evt.Version = "1.0"
	evt.EventType = "assessment_run"
	evt.SetChainHashes(prevHash)

	e.logger.Info("emitting run event",
		"chain", chainKey,
		"run_id", evt.Run.RunID,
		"prev_hash", prevHash,
		"event_hash", evt.Chain.EventHash)

	// Backup locally before the POST; HTTP remains the primary path.
	if err := e.backup.Save(evt); err != nil {
		e.logger.Warn("event backup failed", "error", err)
	}

	if err := e.postWithRetry(ctx, evt); err != nil {
		return fmt.Errorf("emit run event: %w", err)
	}

	if err := e.chainTracker.SetHead(chainKey, evt.Chain.EventHash); err != nil {
		e.logger.Warn("failed to update chain head", "error", err)
	}

	return nil
}

// postWithRetry sends the event with exponential backoff.
func (e *HTTPEmitter) postWithRetry(ctx context.Context, evt *RunEvent) error {
	var lastErr error
	retries := 3
	delay := time.Second

	for attempt := 1; attempt <= retries; attempt++ {
		err := e.post(ctx, evt)
		if err == nil {
			return nil
		}

		lastErr = err
		if attempt < retries {
			e.logger.Warn("event post failed, retrying",
				"attempt", attempt, "retries", retries, "delay", delay, "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", retries, lastErr)
}

func (e *HTTPEmitter) post(ctx context.Context, evt *RunEvent) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	respBody, _ := io.ReadAll(resp.Body)
	return fmt.Errorf("http %d: %s", resp.StatusCode, string(respBody))
}

// Close releases resources.
func (e *HTTPEmitter) Close() error {
	return nil
}
