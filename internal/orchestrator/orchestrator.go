// Package orchestrator coordinates a full accessibility check: URL
// validation, result cache, snapshot build, checker fan-out, and scoring.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/a11ycheck/a11ycheck/internal/accessibility"
	"github.com/a11ycheck/a11ycheck/internal/checker"
	"github.com/a11ycheck/a11ycheck/internal/metrics"
	"github.com/a11ycheck/a11ycheck/internal/scoring"
	"github.com/a11ycheck/a11ycheck/internal/snapshot"
)

// SnapshotBuilder renders a URL into a snapshot. Satisfied by
// snapshot.Builder; tests inject fakes.
type SnapshotBuilder interface {
	Build(ctx context.Context, rawURL string, opts accessibility.CheckOptions) (*snapshot.Snapshot, error)
}

// ResultCache stores finished results by key. Satisfied by cache.Cache.
type ResultCache interface {
	Get(key string) (accessibility.CheckResult, bool)
	Set(key string, result accessibility.CheckResult)
}

// Config bounds orchestrator concurrency.
type Config struct {
	// MaxConcurrentRuns caps snapshot builds in flight across all requests.
	MaxConcurrentRuns int
}

// Orchestrator runs checks end to end. Safe for concurrent use.
type Orchestrator struct {
	validator *accessibility.TargetValidator
	builder   SnapshotBuilder
	registry  *checker.Registry
	engine    *scoring.Engine
	cache     ResultCache
	hasher    accessibility.Hasher
	ids       accessibility.IDGenerator
	clock     accessibility.Clock
	logger    *zap.Logger

	group    singleflight.Group
	runSlots chan struct{}
}

// New wires an orchestrator. All collaborators are required.
func New(
	validator *accessibility.TargetValidator,
	builder SnapshotBuilder,
	registry *checker.Registry,
	engine *scoring.Engine,
	resultCache ResultCache,
	hasher accessibility.Hasher,
	ids accessibility.IDGenerator,
	clock accessibility.Clock,
	cfg Config,
	logger *zap.Logger,
) (*Orchestrator, error) {
	if validator == nil || builder == nil || registry == nil || engine == nil ||
		resultCache == nil || hasher == nil || ids == nil || clock == nil || logger == nil {
		return nil, fmt.Errorf("orchestrator: all collaborators are required")
	}
	if cfg.MaxConcurrentRuns <= 0 {
		return nil, fmt.Errorf("orchestrator: MaxConcurrentRuns must be positive, got %d", cfg.MaxConcurrentRuns)
	}
	metrics.Init()
	return &Orchestrator{
		validator: validator,
		builder:   builder,
		registry:  registry,
		engine:    engine,
		cache:     resultCache,
		hasher:    hasher,
		ids:       ids,
		clock:     clock,
		logger:    logger,
		runSlots:  make(chan struct{}, cfg.MaxConcurrentRuns),
	}, nil
}

// Run checks one URL. Identical concurrent requests share a single
// underlying run; cached results are returned as-is until they expire.
func (o *Orchestrator) Run(ctx context.Context, rawURL string, opts accessibility.CheckOptions) (accessibility.CheckResult, error) {
	normalized, err := accessibility.NormalizeURL(rawURL)
	if err != nil {
		return accessibility.CheckResult{}, err
	}
	if err := o.validator.Validate(normalized); err != nil {
		return accessibility.CheckResult{}, err
	}

	key, err := o.cacheKey(normalized, opts)
	if err != nil {
		return accessibility.CheckResult{}, err
	}

	if result, ok := o.cache.Get(key); ok {
		metrics.ObserveCacheLookup(true)
		return result, nil
	}
	metrics.ObserveCacheLookup(false)

	v, err, _ := o.group.Do(key, func() (interface{}, error) {
		// A concurrent caller may have finished while this one queued.
		if result, ok := o.cache.Get(key); ok {
			return result, nil
		}
		result, err := o.runOnce(ctx, normalized, opts)
		if err != nil {
			return nil, err
		}
		o.cache.Set(key, result)
		return result, nil
	})
	if err != nil {
		metrics.ObserveCheck(normalized, accessibility.ErrorCode(err), 0)
		return accessibility.CheckResult{}, err
	}
	return v.(accessibility.CheckResult), nil
}

// cacheKey digests the normalized URL and the canonical options form so
// equivalent requests share a slot.
func (o *Orchestrator) cacheKey(normalized string, opts accessibility.CheckOptions) (string, error) {
	key, err := o.hasher.Hash([]byte(normalized + "|" + opts.Fingerprint()))
	if err != nil {
		return "", fmt.Errorf("derive cache key: %w", err)
	}
	return key, nil
}

func (o *Orchestrator) runOnce(ctx context.Context, normalized string, opts accessibility.CheckOptions) (accessibility.CheckResult, error) {
	select {
	case o.runSlots <- struct{}{}:
		defer func() { <-o.runSlots }()
	case <-ctx.Done():
		return accessibility.CheckResult{}, fmt.Errorf("wait for run slot: %w", ctx.Err())
	}

	started := o.clock.Now()

	metrics.IncSessionsInUse()
	snap, err := o.builder.Build(ctx, normalized, opts)
	metrics.DecSessionsInUse()
	if err != nil {
		return accessibility.CheckResult{}, err
	}

	issues := o.evaluate(snap, opts)
	result := o.assemble(normalized, opts, issues, started)

	metrics.ObserveCheck(normalized, "completed", time.Duration(result.CheckDuration*float64(time.Second)))
	for _, issue := range result.Issues {
		metrics.ObserveIssues(string(issue.Category), string(issue.Severity), 1)
	}

	o.logger.Info("check completed",
		zap.String("url", normalized),
		zap.Float64("total_score", result.TotalScore),
		zap.Int("issues", len(result.Issues)),
		zap.Float64("duration_seconds", result.CheckDuration))
	return result, nil
}

// evaluate fans the enabled checkers out over the shared snapshot. A panic
// in one checker becomes a single high-severity issue for its category and
// never disturbs the others.
func (o *Orchestrator) evaluate(snap *snapshot.Snapshot, opts accessibility.CheckOptions) []accessibility.Issue {
	modules := o.registry.Modules(opts)
	perModule := make([][]accessibility.Issue, len(modules))

	done := make(chan int, len(modules))
	for i, m := range modules {
		go func(i int, m checker.Module) {
			defer func() {
				if r := recover(); r != nil {
					o.logger.Error("checker panicked",
						zap.String("category", string(m.Category())),
						zap.Any("panic", r))
					perModule[i] = []accessibility.Issue{checkerFailedIssue(m.Category(), r)}
				}
				done <- i
			}()
			perModule[i] = m.Evaluate(snap)
		}(i, m)
	}
	for range modules {
		<-done
	}

	var issues []accessibility.Issue
	for _, found := range perModule {
		issues = append(issues, found...)
	}
	return issues
}

func (o *Orchestrator) assemble(normalized string, opts accessibility.CheckOptions, issues []accessibility.Issue, started time.Time) accessibility.CheckResult {
	scores := make(map[accessibility.Category]accessibility.CategoryScore)
	for _, m := range o.registry.Modules(opts) {
		scores[m.Category()] = o.engine.ScoreCategory(m.Category(), issues, len(m.Rules()))
	}
	total := o.engine.Total(scores)

	scoring.SortIssues(issues)

	runID, err := o.ids.NewID()
	if err != nil {
		// The result is still valid without an ID; note it and move on.
		o.logger.Warn("run id generation failed", zap.Error(err))
	}

	finished := o.clock.Now()
	return accessibility.CheckResult{
		RunID:          runID,
		URL:            normalized,
		TotalScore:     total,
		CategoryScores: scores,
		Issues:         issues,
		Summary:        o.engine.Summarize(issues, scores, total),
		CheckedAt:      started,
		CheckDuration:  finished.Sub(started).Seconds(),
	}
}

// checkerFailedIssue is the stand-in finding for a crashed checker.
func checkerFailedIssue(cat accessibility.Category, cause interface{}) accessibility.Issue {
	return accessibility.Issue{
		Category:       cat,
		Severity:       accessibility.SeverityHigh,
		Message:        fmt.Sprintf("%s checker failed", cat),
		Description:    fmt.Sprintf("The %s checker crashed while evaluating the page: %v", cat, cause),
		Recommendation: "Re-run the check; report the page if the failure persists",
	}
}
