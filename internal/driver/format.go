package driver

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/CostaMateus/bracketsmith/internal/config"
	"github.com/CostaMateus/bracketsmith/internal/diag"
	"github.com/CostaMateus/bracketsmith/internal/observ"
	"github.com/CostaMateus/bracketsmith/internal/phpscan"
	"github.com/CostaMateus/bracketsmith/internal/rewrite"
	"github.com/CostaMateus/bracketsmith/internal/source"
)

// FormatOptions configures a formatting run.
type FormatOptions struct {
	// Check computes results without persisting anything (dry run).
	Check bool
	// Stdout returns formatted content in the results instead of writing.
	Stdout bool
	// NoCache bypasses the skip cache for both reads and writes.
	NoCache bool
	// Jobs caps parallel file formatting; <= 0 means GOMAXPROCS.
	Jobs int
	// MaxPasses caps the per-file fixed-point loop; <= 0 means the rewrite
	// default.
	MaxPasses int
	// MaxDiagnostics bounds each file's diagnostics bag.
	MaxDiagnostics int
	// Files filters collection when going through FormatPaths.
	Files config.FilesConfig
	// Cache is the optional skip cache; nil disables skipping.
	Cache *SkipCache
	// Progress receives per-file events; nil disables reporting.
	Progress ProgressSink
	// Timings records phase durations into the summary.
	Timings bool
}

// FormatResult captures the outcome for a single file.
type FormatResult struct {
	Path      string
	Changed   bool
	Skipped   bool
	Passes    int
	Converged bool
	Err       error
	Formatted []byte
	Bag       *diag.Bag
}

// Summary aggregates a whole run.
type Summary struct {
	Files   int64
	Changed int64
	Skipped int64
	Errors  int64
	Timings *observ.Report
}

// FormatPaths collects candidate files under paths and formats them.
// When opts.Check is true, files are not modified; Changed indicates whether
// formatting would update the file. When opts.Stdout is true, formatted
// content is returned in the results without touching disk.
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) ([]FormatResult, *Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	timer := observ.NewTimer()
	collectPhase := timer.Begin("collect")
	files, err := CollectFiles(ctx, paths, opts.Files)
	timer.End(collectPhase, fmt.Sprintf("%d files", len(files)))
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, errors.New("format: no source files found")
	}

	formatPhase := timer.Begin("format")
	results, summary, err := FormatFiles(ctx, files, opts)
	timer.End(formatPhase, "")

	if summary != nil && opts.Timings {
		report := timer.Report()
		summary.Timings = &report
	}
	return results, summary, err
}

// FormatFiles formats an explicit file list in parallel. Per-file failures
// land in the result slice, never abort the run; only context cancellation
// is returned as an error. Result order matches the input order.
func FormatFiles(ctx context.Context, files []string, opts FormatOptions) ([]FormatResult, *Summary, error) {
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Unique slots per goroutine; only the summary counters are shared.
	results := make([]FormatResult, len(files))
	var changed, skipped, errored atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			publish(opts.Progress, Event{Path: path, Status: StatusWorking})
			res := formatSingleFile(path, opts)
			results[i] = res

			switch {
			case res.Err != nil:
				errored.Add(1)
				publish(opts.Progress, Event{Path: path, Status: StatusError})
			case res.Skipped:
				skipped.Add(1)
				publish(opts.Progress, Event{Path: path, Status: StatusSkipped})
			default:
				if res.Changed {
					changed.Add(1)
				}
				publish(opts.Progress, Event{Path: path, Status: StatusDone, Changed: res.Changed})
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, nil, err
	}

	summary := &Summary{
		Files:   int64(len(files)),
		Changed: changed.Load(),
		Skipped: skipped.Load(),
		Errors:  errored.Load(),
	}
	return results, summary, nil
}

func publish(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.Publish(ev)
	}
}

// formatSingleFile loads, segments, and normalizes one file, then persists
// the outcome according to the run mode. All I/O failures stay file-local.
func formatSingleFile(path string, opts FormatOptions) FormatResult {
	maxDiag := opts.MaxDiagnostics
	if maxDiag <= 0 {
		maxDiag = 64
	}
	bag := diag.NewBag(maxDiag)
	result := FormatResult{Path: path, Bag: bag}

	fileSet := source.NewFileSet()
	fileID, err := fileSet.Load(path)
	if err != nil {
		result.Err = err
		bag.Add(diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.IOLoadFileError,
			Message:  "failed to load file: " + err.Error(),
		})
		return result
	}
	sf := fileSet.Get(fileID)

	cache := opts.Cache
	if opts.NoCache || opts.Stdout {
		// Stdout runs must emit every file's content; a cache hit would
		// have nothing to stream.
		cache = nil
	}
	if cache.IsClean(sf.Hash) {
		result.Skipped = true
		result.Converged = true
		return result
	}

	masker := phpscan.Masker{Name: path, Reporter: diag.BagReporter{Bag: bag}}
	res := rewrite.NormalizeWithOptions(string(sf.Content), rewrite.Options{
		Segmenter: masker,
		MaxPasses: opts.MaxPasses,
	})
	// The masker re-scans on every pass; fold duplicate warnings.
	bag.Sort()
	bag.Dedup()

	result.Changed = res.Changed
	result.Passes = res.Passes
	result.Converged = res.Converged
	if !res.Converged {
		bag.Add(diag.Diagnostic{
			Severity: diag.SevWarning,
			Code:     diag.RewriteNoFixedPoint,
			Message:  fmt.Sprintf("no fixed point after %d passes; keeping the last pass's text", res.Passes),
		})
	}

	formatted := []byte(res.Text)

	if opts.Check {
		if !res.Changed && res.Converged {
			cacheMarkClean(cache, sf.Hash, path)
		}
		return result
	}

	if opts.Stdout {
		result.Formatted = sf.Restore(formatted)
		return result
	}

	if !res.Changed {
		if res.Converged {
			cacheMarkClean(cache, sf.Hash, path)
		}
		return result
	}

	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(path, sf.Restore(formatted), mode.Perm()); err != nil {
		result.Err = err
		result.Changed = false
		bag.Add(diag.Diagnostic{
			Severity: diag.SevError,
			Code:     diag.IOWriteFileError,
			Message:  "failed to write file: " + err.Error(),
		})
		return result
	}
	if res.Converged {
		// The rewritten content is at a fixed point; remember it so the
		// next run skips the file untouched.
		cacheMarkClean(cache, sha256.Sum256(formatted), path)
	}
	return result
}

func cacheMarkClean(cache *SkipCache, key [32]byte, path string) {
	// Cache write failures are invisible: the next run just re-formats.
	_ = cache.MarkClean(key, path)
}
