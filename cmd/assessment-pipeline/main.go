package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angulpilot/assessment-pipeline/internal/artifacts"
	"github.com/angulpilot/assessment-pipeline/internal/catalog"
	"github.com/angulpilot/assessment-pipeline/internal/config"
	"github.com/angulpilot/assessment-pipeline/internal/logging"
	"github.com/angulpilot/assessment-pipeline/internal/metrics"
	"github.com/angulpilot/assessment-pipeline/internal/notify"
	"github.com/angulpilot/assessment-pipeline/internal/pipeline"
	"github.com/angulpilot/assessment-pipeline/internal/plan"
	"github.com/angulpilot/assessment-pipeline/internal/report"
)

func main() {
	cfg := config.MustLoad()
	logging.Setup(logging.Config{Format: cfg.Logging.Format, Level: cfg.Logging.Level})

	slog.Info("assessment pipeline starting",
		"version", cfg.Producer.Version,
		"git_sha", cfg.Producer.GitSHA,
	)

	if err := cfg.Validate(); err != nil {
		fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown handler
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		sig := <-ch
		slog.Info("received signal, shutting down", "signal", sig.String())
		cancel()
	}()

	if cfg.Metrics.Enabled {
		metrics.Init("assessment_pipeline")
		go func() {
			slog.Info("metrics server listening", "address", cfg.Metrics.Address)
			if err := metrics.StartServer(cfg.Metrics.Address); err != nil {
				slog.Error("metrics server failed", "error", err)
			}
		}()
	}

	assessmentPlan := plan.Default()
	if cfg.Plan.Path != "" {
		var err error
		assessmentPlan, err = plan.Load(cfg.Plan.Path)
		if err != nil {
			fatal(err)
		}
	}

	store, err := artifacts.NewStore(artifacts.Config{
		Backend:    cfg.Storage.Backend,
		LocalDir:   cfg.Storage.LocalDir,
		GCSBucket:  cfg.Storage.Bucket,
		S3Bucket:   cfg.Storage.Bucket,
		S3Endpoint: cfg.Storage.S3Endpoint,
		S3Region:   cfg.Storage.S3Region,
		Prefix:     cfg.Storage.Prefix,
	})
	if err != nil {
		fatal(err)
	}
	defer store.Close()

	cat, err := catalog.NewWriter(catalog.Config{
		PostgresDSN: cfg.Catalog.PostgresDSN,
		Namespace:   cfg.Catalog.Namespace,
	})
	if err != nil {
		fatal(err)
	}
	defer cat.Close()

	emitter := notify.NewEmitter(notify.Config{
		Enabled:   cfg.Notify.Enabled,
		Endpoint:  cfg.Notify.Endpoint,
		BackupDir: cfg.Notify.BackupDir,
		Namespace: cfg.Catalog.Namespace,
	}, nil)
	defer emitter.Close()

	reports, err := report.NewManager(report.Config{
		Enabled:   cfg.Report.Enabled,
		Dir:       cfg.Report.Dir,
		Namespace: cfg.Catalog.Namespace,
	})
	if err != nil {
		fatal(err)
	}

	p := pipeline.New(cfg, assessmentPlan, store, cat, emitter, reports)

	if err := p.Run(ctx); err != nil {
		if ctx.Err() != nil {
			slog.Info("shutdown before completion, no artifacts finalized")
			return
		}
		fatal(err)
	}

	slog.Info("assessment pipeline finished")
	time.Sleep(100 * time.Millisecond)
}

func fatal(err error) {
	pipeline.WriteFailure(os.Stderr, err)
	os.Exit(1)
}
