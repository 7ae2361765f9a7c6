package loader

import (
	"context"
	"sort"
	"sync"

	"github.com/capstan-dev/capstan/internal/ctxlog"
	"github.com/capstan-dev/capstan/internal/diag"
	"github.com/capstan-dev/capstan/internal/model"
	"github.com/capstan-dev/capstan/internal/msbuild"
)

// DefaultWorkers bounds the metadata-fetch pool when no count is configured.
const DefaultWorkers = 10

// Loader turns project and solution paths into ordered project collections.
type Loader struct {
	extractor msbuild.Extractor
	workers   int
}

// New creates a Loader backed by the given extractor.
func New(extractor msbuild.Extractor, workers int) *Loader {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Loader{extractor: extractor, workers: workers}
}

// Load runs discovery, the two concurrent metadata-fetch phases, and the
// topological ordering. It returns either fully ordered collections or an
// error joining every diagnostic from the failing phase.
func (l *Loader) Load(ctx context.Context, inputs []string) ([]*model.ProjectCollection, error) {
	logger := ctxlog.FromContext(ctx)

	diags := &diag.Collector{}
	d := l.discover(ctx, inputs, diags)
	if diags.HasErrors() {
		return nil, diags.Err()
	}
	logger.Debug("Discovery complete.", "projects", len(d.order), "groupings", len(d.keys))

	frameworks := l.fetchFrameworks(ctx, d.order, diags)
	if diags.HasErrors() {
		return nil, diags.Err()
	}
	logger.Debug("Target-framework fetch complete.")

	fetched := l.fetchPackageInfo(ctx, d, frameworks, diags)
	if diags.HasErrors() {
		return nil, diags.Err()
	}
	logger.Debug("Package-info fetch complete.", "records", len(fetched))

	collections := assemble(d, fetched)
	for _, c := range collections {
		ordered, dErr := orderByReferences(c.Projects, d.known)
		if dErr != nil {
			return nil, dErr
		}
		c.Projects = ordered
	}
	logger.Debug("Topological ordering complete.", "collections", len(collections))
	return collections, nil
}

// runPool fans the given work out over the configured number of workers and
// joins them all before returning. A failing unit never cancels siblings.
func (l *Loader) runPool(ctx context.Context, paths []string, work func(ctx context.Context, path string)) {
	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < l.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			logger := ctxlog.FromContext(ctx)
			logger.Debug("Fetch worker started.", "workerID", workerID)
			for p := range jobs {
				work(ctx, p)
			}
			logger.Debug("Fetch worker finished.", "workerID", workerID)
		}(i)
	}
	for _, p := range paths {
		jobs <- p
	}
	close(jobs)
	wg.Wait()
}

// assemble drains the fetched records into per-solution collections, each
// initially sorted by project path, in first-seen grouping order.
func assemble(d *discovery, fetched []fetchedRecord) []*model.ProjectCollection {
	buckets := make(map[string][]*model.ProjectRecord)
	for _, f := range fetched {
		if f.record == nil {
			// The failure was already diagnosed during the fetch.
			continue
		}
		buckets[f.solution] = append(buckets[f.solution], f.record)
	}

	var collections []*model.ProjectCollection
	for _, key := range d.keys {
		records := buckets[key]
		if len(records) == 0 {
			continue
		}
		sort.Slice(records, func(i, j int) bool {
			return records[i].Path < records[j].Path
		})
		collections = append(collections, &model.ProjectCollection{
			SolutionKey: key,
			Projects:    records,
		})
	}
	return collections
}
