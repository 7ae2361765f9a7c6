package loader

import (
	"context"
	"sync"

	"github.com/capstan-dev/capstan/internal/ctxlog"
	"github.com/capstan-dev/capstan/internal/diag"
	"github.com/capstan-dev/capstan/internal/model"
)

// fetchFrameworks is phase 1: determine every project's target frameworks
// concurrently. A failing unit records a diagnostic and contributes no map
// entry; the pool always drains fully before the caller inspects anything.
func (l *Loader) fetchFrameworks(ctx context.Context, paths []string, diags *diag.Collector) map[string]model.TargetFrameworks {
	frameworks := make(map[string]model.TargetFrameworks, len(paths))
	var mu sync.Mutex

	l.runPool(ctx, paths, func(ctx context.Context, path string) {
		tf, err := l.extractor.TargetFrameworks(ctx, path)
		if err != nil {
			diags.Addf(diag.ExtractionFailure, "target frameworks of %s: %v", path, err)
			return
		}
		mu.Lock()
		frameworks[path] = tf
		mu.Unlock()
	})
	return frameworks
}

// fetchedRecord pairs a loaded record with its grouping key. A nil record
// marks an extraction failure whose diagnostic was already collected.
type fetchedRecord struct {
	solution string
	record   *model.ProjectRecord
}

// fetchPackageInfo is phase 2: fetch full package metadata concurrently,
// pinning multi-targeting projects to their last-declared framework.
func (l *Loader) fetchPackageInfo(ctx context.Context, d *discovery, frameworks map[string]model.TargetFrameworks, diags *diag.Collector) []fetchedRecord {
	logger := ctxlog.FromContext(ctx)

	var (
		mu      sync.Mutex
		fetched []fetchedRecord
	)
	push := func(solution string, record *model.ProjectRecord) {
		mu.Lock()
		fetched = append(fetched, fetchedRecord{solution: solution, record: record})
		mu.Unlock()
	}

	l.runPool(ctx, d.order, func(ctx context.Context, path string) {
		solution := d.solutionOf[path]
		tf := frameworks[path]

		pin := ""
		if tf.Multi {
			pin = tf.Last()
			logger.Debug("Pinning multi-target project to its last framework.",
				"project", path, "framework", pin)
		}

		facts, err := l.extractor.PackageInfo(ctx, path, pin)
		if err != nil {
			diags.Addf(diag.ExtractionFailure, "package info of %s: %v", path, err)
			push(solution, nil)
			return
		}

		record, dErr := buildRecord(path, facts, tf)
		if dErr != nil {
			diags.Add(dErr)
			push(solution, nil)
			return
		}
		push(solution, record)
	})
	return fetched
}
