package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// PostgresWriter implements Writer using PostgreSQL.
type PostgresWriter struct {
	pool *pgxpool.Pool
	cfg  Config
}

// NewPostgresWriter connects to the catalog database and applies the
// schema.
func NewPostgresWriter(cfg Config) (*PostgresWriter, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	poolCfg.MaxConns = 5
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	w := &PostgresWriter{pool: pool, cfg: cfg}

	if err := w.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	slog.Info("connected to PostgreSQL catalog", "component", "catalog")
	return w, nil
}

func (w *PostgresWriter) initSchema(ctx context.Context) error {
	if _, err := w.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// RecordRun upserts the run summary. Re-running a pipeline with the
// same run ID refreshes the counts instead of duplicating the row.
func (w *PostgresWriter) RecordRun(ctx context.Context, rec RunRecord) error {
	query := `
		INSERT INTO assessment_runs (
			run_id, schools, grade5_scored, grade5_skipped,
			grade8_scored, grade8_skipped,
			producer_version, producer_git_sha, started_at, finished_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (run_id)
		DO UPDATE SET
			schools = EXCLUDED.schools,
			grade5_scored = EXCLUDED.grade5_scored,
			grade5_skipped = EXCLUDED.grade5_skipped,
			grade8_scored = EXCLUDED.grade8_scored,
			grade8_skipped = EXCLUDED.grade8_skipped,
			finished_at = EXCLUDED.finished_at,
			created_at = NOW()
	`

	var gitSHA *string
	if rec.ProducerGitSHA != "" {
		gitSHA = &rec.ProducerGitSHA
	}

	_, err := w.pool.Exec(ctx, query,
		rec.RunID,
		rec.Schools,
		rec.Grade5Scored,
		rec.Grade5Skipped,
		rec.Grade8Scored,
		rec.Grade8Skipped,
		rec.ProducerVersion,
		gitSHA,
		rec.StartedAt,
		rec.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	slog.Info("recorded run in catalog", "component", "catalog", "run_id", rec.RunID)
	return nil
}

// RecordArtifact upserts one artifact row for a run.
func (w *PostgresWriter) RecordArtifact(ctx context.Context, rec ArtifactRecord) error {
	query := `
		INSERT INTO assessment_artifacts (
			run_id, file, checksum, byte_size, record_count, storage_uri
		)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (run_id, file)
		DO UPDATE SET
			checksum = EXCLUDED.checksum,
			byte_size = EXCLUDED.byte_size,
			record_count = EXCLUDED.record_count,
			storage_uri = EXCLUDED.storage_uri,
			created_at = NOW()
	`

	var uri *string
	if rec.StorageURI != "" {
		uri = &rec.StorageURI
	}

	_, err := w.pool.Exec(ctx, query,
		rec.RunID,
		rec.File,
		rec.Checksum,
		rec.ByteSize,
		rec.RecordCount,
		uri,
	)
	if err != nil {
		return fmt.Errorf("record artifact: %w", err)
	}
	return nil
}

// Close releases database connections.
func (w *PostgresWriter) Close() error {
	w.pool.Close()
	return nil
}
