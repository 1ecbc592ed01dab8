package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/scantower/pkg/cache"
	"github.com/matzehuels/scantower/pkg/core/model"
	"github.com/matzehuels/scantower/pkg/core/result"
	"github.com/matzehuels/scantower/pkg/core/scan"
	"github.com/matzehuels/scantower/pkg/errors"
	scio "github.com/matzehuels/scantower/pkg/io"
	"github.com/matzehuels/scantower/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a null cache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → reconcile → report pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Output, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	out := &Output{Stats: Stats{InputCount: len(opts.Inputs)}}

	hashes, err := inputHashes(opts.Inputs)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if opts.HasOverrides() {
		data, err := json.Marshal(struct {
			IgnorePatterns []string        `json:"ignore_patterns"`
			Excludes       *model.Excludes `json:"excludes"`
		}{opts.IgnorePatterns, opts.Excludes})
		if err != nil {
			return nil, fmt.Errorf("hash overrides: %w", err)
		}
		hashes = append(hashes, cache.Hash(data))
	}
	cacheKey := r.Keyer.ReportKey(hashes, opts.ReportKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if report, err := UnmarshalReport(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "report")
				r.Logger.Debug("report cache hit", "key", cacheKey)
				out.Report = report
				out.CacheHit = true
				return r.encode(out, opts)
			}
		}
		observability.Cache().OnCacheMiss(ctx, "report")
	}

	// Stage 1: Load
	loadStart := time.Now()
	res, err := r.Load(ctx, opts.Inputs)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	if res, err = ApplyOverrides(res, opts); err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	out.Stats.LoadTime = time.Since(loadStart)

	// Stage 2: Reconcile
	reconcileStart := time.Now()
	report := r.Reconcile(ctx, res, opts)
	out.Report = report
	out.Stats.ReconcileTime = time.Since(reconcileStart)

	r.Logger.Info("reconciled scan results",
		"packages", len(report.Packages),
		"issues", len(report.Issues),
		"duration", out.Stats.ReconcileTime)

	// Cache the result
	if data, err := MarshalReport(report); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TTLReport); err != nil {
			r.Logger.Warn("failed to cache report", "error", err)
		} else {
			observability.Cache().OnCacheSet(ctx, "report", len(data))
		}
	}

	// Stage 3: Report
	return r.encode(out, opts)
}

// Load reads the result files at paths. The first file provides the
// repository and the analyzer run; the scanner runs of all files are merged
// in order. Labels of later files win.
func (r *Runner) Load(ctx context.Context, paths []string) (*result.Result, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no input files")
	}

	var (
		first  *result.Result
		merged *scan.ScannerRun
		labels map[string]string
	)
	for _, path := range paths {
		res, err := r.loadFile(ctx, path)
		if err != nil {
			return nil, err
		}
		if first == nil {
			first = res
		}
		if len(res.Labels) > 0 {
			if labels == nil {
				labels = make(map[string]string, len(res.Labels))
			}
			maps.Copy(labels, res.Labels)
		}
		if res.Scanner == nil {
			continue
		}
		if merged == nil {
			merged = res.Scanner
			continue
		}
		merged, err = scan.Merge(merged, res.Scanner)
		observability.Pipeline().OnMerge(ctx, 2, err)
		if err != nil {
			return nil, fmt.Errorf("merge %s: %w", path, err)
		}
	}
	if len(paths) == 1 {
		return first, nil
	}

	combined := &result.Result{
		Repository: first.Repository,
		Analyzer:   first.Analyzer,
		Scanner:    merged,
		Labels:     labels,
	}
	if err := combined.Validate(); err != nil {
		return nil, fmt.Errorf("merged result: %w", err)
	}
	r.Logger.Debug("merged result files", "files", len(paths))
	return combined, nil
}

// ApplyOverrides returns res with the override options applied. res itself
// is not modified.
func ApplyOverrides(res *result.Result, opts Options) (*result.Result, error) {
	if !opts.HasOverrides() {
		return res, nil
	}
	repo := res.Repository
	if opts.Excludes != nil {
		repo.Config.Excludes = *opts.Excludes
	}
	run := res.Scanner
	if run != nil && len(opts.IgnorePatterns) > 0 {
		cfg := run.Config()
		cfg.IgnorePatterns = slices.Concat(cfg.IgnorePatterns, opts.IgnorePatterns)
		var err error
		if run, err = run.WithConfig(cfg); err != nil {
			return nil, err
		}
	}
	out := &result.Result{
		Repository: repo,
		Analyzer:   res.Analyzer,
		Scanner:    run,
		Labels:     res.Labels,
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Runner) loadFile(ctx context.Context, path string) (*result.Result, error) {
	observability.Pipeline().OnLoadStart(ctx, path)
	start := time.Now()
	res, err := scio.ImportFile(path)
	packages := 0
	if err == nil {
		packages = len(res.Packages(false))
	}
	duration := time.Since(start)
	observability.Pipeline().OnLoadComplete(ctx, path, packages, duration, err)
	if err != nil {
		return nil, err
	}
	r.Logger.Info("loaded result file", "path", path, "packages", packages, "duration", duration)
	return res, nil
}

// Reconcile builds the report of a loaded result and emits reconcile events.
// opts must have been validated.
func (r *Runner) Reconcile(ctx context.Context, res *result.Result, opts Options) *Report {
	ids := 0
	if res.Scanner != nil {
		ids = len(res.Scanner.Identifiers())
	}
	observability.Pipeline().OnReconcileStart(ctx, ids)
	start := time.Now()
	report := BuildReport(res, opts)
	results := 0
	for _, p := range report.Packages {
		results += len(p.Scanners)
	}
	observability.Pipeline().OnReconcileComplete(ctx, results, len(report.Issues), time.Since(start), nil)
	return report
}

// inputHashes returns the content hashes of the input files in order.
func inputHashes(paths []string) ([]string, error) {
	hashes := make([]string, 0, len(paths))
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "result file %s", path)
		}
		h, err := cache.HashFile(path)
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	return hashes, nil
}

func (r *Runner) encode(out *Output, opts Options) (*Output, error) {
	data, err := EncodeReport(out.Report, opts.Format)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	out.Data = data
	return out, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// ReportKeyOpts returns cache key options for the report.
func (o *Options) ReportKeyOpts() cache.ReportKeyOpts {
	return cache.ReportKeyOpts{
		OmitExcluded: o.OmitExcluded,
		MinSeverity:  o.MinSeverity,
		Scanners:     o.Scanners,
		Format:       o.Format,
	}
}
