package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/feakit/bulkgridgo/internal/assembler"
	"github.com/feakit/bulkgridgo/internal/ctxlog"
	"github.com/feakit/bulkgridgo/internal/export"
	"github.com/feakit/bulkgridgo/internal/fsutil"
)

// DeckExtensions are the file suffixes Run treats as bulk data decks when
// the configured path is a directory.
var DeckExtensions = []string{".bdf", ".dat", ".nas"}

// Run imports every deck under the configured path. Each deck is one
// independent job with its own model; jobs run on a bounded worker pool.
// The first failed import cancels the remaining jobs and is returned.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("import run started", "path", a.cfg.DeckPath)

	files, err := fsutil.FindFilesByExtensions(a.cfg.DeckPath, DeckExtensions...)
	if err != nil {
		return fmt.Errorf("locating deck files: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no deck files (%s) under %s", strings.Join(DeckExtensions, ", "), a.cfg.DeckPath)
	}
	a.logger.Debug("deck files located", "count", len(files))

	results, err := a.importAll(ctx, files)
	if err != nil {
		return err
	}
	a.results = results

	if a.cfg.Export != "" {
		if err := a.export(); err != nil {
			return err
		}
	}

	var records, skipped, unresolved int
	for _, r := range a.results {
		records += r.Report.Records
		for _, n := range r.Report.Skipped {
			skipped += n
		}
		unresolved += len(r.Report.Unresolved)
	}
	a.logger.Info("import run finished",
		"decks", len(a.results),
		"records", records,
		"skipped_records", skipped,
		"unresolved_refs", unresolved)
	return nil
}

// importAll runs one import job per file on the worker pool. Results come
// back in file order regardless of which worker finished first.
func (a *App) importAll(ctx context.Context, files []string) ([]Result, error) {
	workers := a.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type job struct {
		idx  int
		path string
	}
	jobs := make(chan job)
	results := make([]Result, len(files))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	opts := assembler.Options{
		MaxIncludeDepth: a.cfg.MaxIncludeDepth,
		Strict:          a.cfg.Strict,
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			jobCtx := ctxlog.With(runCtx, "worker", workerID)
			log := ctxlog.FromContext(jobCtx)
			for j := range jobs {
				if runCtx.Err() != nil {
					continue
				}
				log.Info("importing deck", "path", j.path)
				model, report, err := assembler.ImportFile(jobCtx, a.registry, j.path, opts)
				if err != nil {
					log.Error("deck import failed", "path", j.path, "error", err)
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("importing %s: %w", j.path, err)
					}
					mu.Unlock()
					cancel()
					continue
				}
				results[j.idx] = Result{Path: j.path, Model: model, Report: report}
			}
		}(w)
	}

	for i, path := range files {
		jobs <- job{idx: i, path: path}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	return results, nil
}

// export writes the JSON rendering of each result. A single deck writes
// straight to the configured path; a batch treats the path as a directory
// holding one <deck>.json per imported file.
func (a *App) export() error {
	if len(a.results) == 1 {
		a.logger.Info("writing model export", "path", a.cfg.Export)
		return export.WriteFile(a.cfg.Export, a.results[0].Model, a.results[0].Report)
	}

	if err := os.MkdirAll(a.cfg.Export, 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}
	for _, r := range a.results {
		base := strings.TrimSuffix(filepath.Base(r.Path), filepath.Ext(r.Path)) + ".json"
		path := filepath.Join(a.cfg.Export, base)
		a.logger.Info("writing model export", "path", path)
		if err := export.WriteFile(path, r.Model, r.Report); err != nil {
			return err
		}
	}
	return nil
}
