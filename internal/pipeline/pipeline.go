// Package pipeline orchestrates a full scoring run: load the four
// tabular sources, build and validate item keys, score both grade
// files, fold the aggregates, and publish the artifact set.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/angulpilot/assessment-pipeline/internal/aggregate"
	"github.com/angulpilot/assessment-pipeline/internal/answerkey"
	"github.com/angulpilot/assessment-pipeline/internal/artifacts"
	"github.com/angulpilot/assessment-pipeline/internal/catalog"
	"github.com/angulpilot/assessment-pipeline/internal/config"
	"github.com/angulpilot/assessment-pipeline/internal/export"
	"github.com/angulpilot/assessment-pipeline/internal/logging"
	"github.com/angulpilot/assessment-pipeline/internal/metrics"
	"github.com/angulpilot/assessment-pipeline/internal/notify"
	"github.com/angulpilot/assessment-pipeline/internal/plan"
	"github.com/angulpilot/assessment-pipeline/internal/report"
	"github.com/angulpilot/assessment-pipeline/internal/roster"
	"github.com/angulpilot/assessment-pipeline/internal/scoring"
)

// Pipeline wires the scoring run to its storage, catalog, notification
// and report backends.
type Pipeline struct {
	cfg     config.Config
	plan    *plan.Plan
	store   artifacts.Store
	catalog catalog.Writer
	emitter notify.Emitter
	reports report.Manager
	log     *slog.Logger
}

// New creates a pipeline. All backends must already be constructed;
// disabled concerns are represented by their no-op implementations.
func New(cfg config.Config, p *plan.Plan, store artifacts.Store, cat catalog.Writer, emitter notify.Emitter, reports report.Manager) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		plan:    p,
		store:   store,
		catalog: cat,
		emitter: emitter,
		reports: reports,
		log:     logging.Component("pipeline"),
	}
}

// gradeOutcome collects everything one grade file contributes to the
// artifact set.
type gradeOutcome struct {
	grade   int
	scores  []scoring.StudentScore
	schools map[string]*aggregate.GradeAggregate
	los     map[string]map[string][]aggregate.LORecord
	counter *scoring.Counter
}

// Run executes one complete scoring run. Any error it returns is fatal:
// no artifacts from a failed run are published (the manifest is written
// last, so a partial set is detectable).
func (p *Pipeline) Run(ctx context.Context) error {
	runID := uuid.NewString()
	startedAt := time.Now().UTC()
	ctx = logging.WithRunID(ctx, runID)
	log := p.log.With("run_id", runID)

	log.Info("starting run",
		"namespace", p.cfg.Catalog.Namespace,
		"backend", p.cfg.Storage.Backend,
		"workers", p.cfg.Perf.ScoreWorkers,
	)

	in, err := loadInputs(p.cfg.Input)
	if err != nil {
		return fmt.Errorf("load inputs: %w", err)
	}

	rosterResult, err := roster.Load(in.schools)
	if err != nil {
		return fmt.Errorf("load roster: %w", err)
	}
	log.Info("roster loaded", "schools", len(rosterResult.Schools), "skipped_rows", rosterResult.Skipped)
	if m := metrics.Get(); m != nil {
		m.SchoolsLoaded.Set(float64(len(rosterResult.Schools)))
	}

	keys, stats, err := answerkey.Build(in.keys, p.plan)
	if err != nil {
		return fmt.Errorf("build item keys: %w", err)
	}
	validation := answerkey.ValidateItemKeys(keys, p.plan)
	for _, w := range validation.Warnings {
		log.Warn("item key warning", "detail", w)
	}
	if !validation.Passed {
		for _, e := range validation.Errors {
			log.Error("item key error", "detail", e)
		}
		return fmt.Errorf("item key validation failed with %d error(s)", len(validation.Errors))
	}
	log.Info("item keys built",
		"items", validation.ItemCount,
		"skipped_rows", stats.Skipped,
		"unknown_subjects", stats.UnknownSubjects,
		"invalid_answers", stats.InvalidAnswers,
	)
	if m := metrics.Get(); m != nil {
		for bucket, items := range keys.Buckets {
			m.AddItemsLoaded(bucket, float64(len(items)))
		}
		m.ItemsSkipped.Add(float64(stats.Skipped))
	}

	g5 := p.runGrade(ctx, runID, 5, in.grade5, keys)
	g8 := p.runGrade(ctx, runID, 8, in.grade8, keys)
	if err := ctx.Err(); err != nil {
		return err
	}

	merged := aggregate.MergeSchools(g5.schools, g8.schools)
	aggByUDISE := make(map[string]aggregate.SchoolAggregate, len(merged))
	for _, s := range merged {
		aggByUDISE[s.UDISE] = s
	}
	loByUDISE := aggregate.MergeLOBreakdowns(g5.los, g8.los)
	if m := metrics.Get(); m != nil {
		m.SchoolsAggregated.Set(float64(len(merged)))
	}

	pub := artifacts.NewPublisher(p.store, runID, artifacts.ProducerInfo{
		Name:    p.cfg.Producer.Name,
		Version: p.cfg.Producer.Version,
		GitSHA:  p.cfg.Producer.GitSHA,
	}, p.cfg.Storage.Compress, log)

	itemCount := 0
	for _, items := range keys.Buckets {
		itemCount += len(items)
	}

	publishStart := time.Now()
	if err := pub.PublishJSON(ctx, artifacts.SchoolsFile, rosterResult.Schools, len(rosterResult.Schools)); err != nil {
		return p.storageErr(err)
	}
	if err := pub.PublishJSON(ctx, artifacts.ItemKeysFile, keys.Buckets, itemCount); err != nil {
		return p.storageErr(err)
	}
	if err := pub.PublishJSON(ctx, artifacts.AggregatesFile, aggByUDISE, len(aggByUDISE)); err != nil {
		return p.storageErr(err)
	}
	if err := pub.PublishJSON(ctx, artifacts.LOBreakdownFile, loByUDISE, len(loByUDISE)); err != nil {
		return p.storageErr(err)
	}

	if p.cfg.Export.Parquet {
		all := make([]scoring.StudentScore, 0, len(g5.scores)+len(g8.scores))
		all = append(all, g5.scores...)
		all = append(all, g8.scores...)
		rows := export.BuildScoreRows(runID, all, time.Now().UTC())
		data, err := export.WriteScores(rows)
		if err != nil {
			return fmt.Errorf("encode score export: %w", err)
		}
		if err := pub.PublishRaw(ctx, export.ScoresFile, data, len(rows)); err != nil {
			return p.storageErr(err)
		}
	}

	if err := pub.Finalize(ctx); err != nil {
		return p.storageErr(err)
	}
	finishedAt := time.Now().UTC()

	if m := metrics.Get(); m != nil {
		m.ObserveStageDuration("publish", time.Since(publishStart).Seconds())
		for file, info := range pub.Manifest().Artifacts {
			m.ObserveArtifact(file, float64(info.ByteSize))
		}
	}

	// Best effort from here on: artifacts are already durable, so the
	// catalog, notification and report steps log failures and continue.
	p.recordCatalog(ctx, log, runID, rosterResult, g5, g8, pub, startedAt, finishedAt)
	p.emitEvent(ctx, log, runID, rosterResult, g5, g8, pub)
	p.saveReport(ctx, log, runID, rosterResult, g5, g8, pub, startedAt, finishedAt)

	p.logSummary(log, rosterResult, merged, loByUDISE, g5, g8, time.Since(startedAt))
	return nil
}

// runGrade scores one grade file end to end and folds the results. Row
// level problems are counted, never fatal: a grade file that resolves
// to zero rows leaves that grade absent from the aggregates.
func (p *Pipeline) runGrade(ctx context.Context, runID string, grade int, rows [][]string, keys *answerkey.ItemKeys) *gradeOutcome {
	sheet := p.cfg.Input.Grade5Sheet
	if grade == 8 {
		sheet = p.cfg.Input.Grade8Sheet
	}
	log := logging.GradeLogger(runID, grade, sheet)
	start := time.Now()

	raws := scoring.ResolveRows(rows, grade)
	scorer := scoring.NewScorer(keys, p.plan, grade)
	results := scoreRows(ctx, scorer, raws, p.cfg.Perf.ScoreWorkers)

	out := &gradeOutcome{grade: grade, counter: scoring.NewCounter()}
	schoolFold := aggregate.NewSchoolFold(p.plan, grade)
	loFold := aggregate.NewLOFold(keys, p.plan, grade, log)

	m := metrics.Get()
	for _, r := range results {
		if r.skipReason != "" {
			out.counter.Skip(r.skipReason)
			if m != nil {
				m.IncRowsSkipped(grade, r.skipReason)
			}
			continue
		}
		out.counter.Process()
		if m != nil {
			m.IncRowsScored(grade)
		}
		schoolFold.Add(*r.score)
		loFold.Add(r.score.UDISE, r.tallies)
		out.scores = append(out.scores, *r.score)
	}

	out.schools = schoolFold.Grades()
	out.los = loFold.Breakdown()

	if m != nil {
		m.ObserveStageDuration(fmt.Sprintf("score_grade%d", grade), time.Since(start).Seconds())
	}
	log.Info("grade scored",
		"rows", len(raws),
		"scored", out.counter.Processed,
		"skipped", out.counter.Skipped,
		"schools", len(out.schools),
		"duration", time.Since(start).String(),
	)
	return out
}

// storageErr counts a storage failure before returning it.
func (p *Pipeline) storageErr(err error) error {
	if m := metrics.Get(); m != nil {
		m.IncStorageErrors(p.cfg.Storage.Backend)
	}
	return err
}

func (p *Pipeline) recordCatalog(ctx context.Context, log *slog.Logger, runID string, r *roster.Result, g5, g8 *gradeOutcome, pub *artifacts.Publisher, startedAt, finishedAt time.Time) {
	err := p.catalog.RecordRun(ctx, catalog.RunRecord{
		RunID:           runID,
		Schools:         len(r.Schools),
		Grade5Scored:    g5.counter.Processed,
		Grade5Skipped:   g5.counter.Skipped,
		Grade8Scored:    g8.counter.Processed,
		Grade8Skipped:   g8.counter.Skipped,
		ProducerVersion: p.cfg.Producer.Version,
		ProducerGitSHA:  p.cfg.Producer.GitSHA,
		StartedAt:       startedAt,
		FinishedAt:      finishedAt,
	})
	if err != nil {
		log.Warn("failed to record run in catalog", "error", err)
		if m := metrics.Get(); m != nil {
			m.CatalogErrors.Inc()
		}
		return
	}

	for _, info := range pub.Manifest().Artifacts {
		if err := p.catalog.RecordArtifact(ctx, catalog.ArtifactRecord{
			RunID:       runID,
			File:        info.File,
			Checksum:    info.Checksum,
			ByteSize:    info.ByteSize,
			RecordCount: info.RecordCount,
			StorageURI:  p.store.URI(info.File),
		}); err != nil {
			log.Warn("failed to record artifact in catalog", "file", info.File, "error", err)
			if m := metrics.Get(); m != nil {
				m.CatalogErrors.Inc()
			}
		}
	}
}

func (p *Pipeline) emitEvent(ctx context.Context, log *slog.Logger, runID string, r *roster.Result, g5, g8 *gradeOutcome, pub *artifacts.Publisher) {
	eventArtifacts := make(map[string]notify.ArtifactInfo, len(pub.Manifest().Artifacts))
	for file, info := range pub.Manifest().Artifacts {
		eventArtifacts[file] = notify.ArtifactInfo{
			Checksum:    info.Checksum,
			RecordCount: info.RecordCount,
			ByteSize:    info.ByteSize,
			StorageURI:  p.store.URI(file),
		}
	}

	err := p.emitter.EmitRun(ctx, &notify.RunEvent{
		Run: notify.RunInfo{
			RunID:         runID,
			Namespace:     p.cfg.Catalog.Namespace,
			Schools:       len(r.Schools),
			Grade5Scored:  g5.counter.Processed,
			Grade5Skipped: g5.counter.Skipped,
			Grade8Scored:  g8.counter.Processed,
			Grade8Skipped: g8.counter.Skipped,
		},
		Artifacts: eventArtifacts,
		Producer: notify.ProducerInfo{
			Name:    p.cfg.Producer.Name,
			Version: p.cfg.Producer.Version,
			GitSHA:  p.cfg.Producer.GitSHA,
		},
	})
	if err != nil {
		log.Warn("failed to emit run event", "error", err)
		if m := metrics.Get(); m != nil {
			m.NotifyErrors.Inc()
		}
	}
}

func (p *Pipeline) saveReport(ctx context.Context, log *slog.Logger, runID string, r *roster.Result, g5, g8 *gradeOutcome, pub *artifacts.Publisher, startedAt, finishedAt time.Time) {
	if prev, err := p.reports.Load(ctx); err == nil {
		log.Info("previous run comparison",
			"prev_run_id", prev.RunID,
			"prev_finished_at", prev.FinishedAt,
			"schools_delta", len(r.Schools)-prev.Schools,
			"grade5_scored_delta", g5.counter.Processed-prevScored(prev, 5),
			"grade8_scored_delta", g8.counter.Processed-prevScored(prev, 8),
		)
	} else if !errors.Is(err, report.ErrNoReport) {
		log.Warn("failed to load previous run report", "error", err)
	}

	rep := &report.Report{
		RunID:      runID,
		Namespace:  p.cfg.Catalog.Namespace,
		Schools:    len(r.Schools),
		Grades:     []report.GradeRun{gradeRun(g5), gradeRun(g8)},
		Artifacts:  len(pub.Manifest().Artifacts),
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
	}
	if err := p.reports.Save(ctx, rep); err != nil {
		log.Warn("failed to save run report", "error", err)
	}
}

func prevScored(r *report.Report, grade int) int {
	for _, g := range r.Grades {
		if g.Grade == grade {
			return g.Scored
		}
	}
	return 0
}

func gradeRun(g *gradeOutcome) report.GradeRun {
	gr := report.GradeRun{
		Grade:   g.grade,
		Scored:  g.counter.Processed,
		Skipped: g.counter.Skipped,
	}
	if reasons := g.counter.Reasons(); len(reasons) > 0 {
		gr.SkipReasons = make(map[string]int, len(reasons))
		for _, rc := range reasons {
			gr.SkipReasons[rc.Reason] = rc.Count
		}
	}
	return gr
}
