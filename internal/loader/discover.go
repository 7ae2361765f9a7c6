package loader

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/capstan-dev/capstan/internal/ctxlog"
	"github.com/capstan-dev/capstan/internal/diag"
	"github.com/capstan-dev/capstan/internal/model"
	"github.com/capstan-dev/capstan/internal/sln"
)

// discovery is the result of input expansion: the grouping of descriptors by
// originating solution, plus the lookup structures later phases need.
type discovery struct {
	grouping   model.SolutionGrouping
	keys       []string          // grouping keys in first-seen order
	order      []string          // every descriptor path in discovery order
	known      map[string]bool   // global descriptor set
	solutionOf map[string]string // descriptor path -> grouping key
}

// discover expands inputs into the global descriptor set. A path seen a
// second time, directly or via a solution, is reported as a duplicate and
// excluded; discovery of the remaining entries continues.
func (l *Loader) discover(ctx context.Context, inputs []string, diags *diag.Collector) *discovery {
	logger := ctxlog.FromContext(ctx)
	d := &discovery{
		grouping:   make(model.SolutionGrouping),
		known:      make(map[string]bool),
		solutionOf: make(map[string]string),
	}

	for _, input := range inputs {
		path, err := model.NormalizePath(input)
		if err != nil {
			diags.Addf(diag.ExtractionFailure, "%v", err)
			continue
		}

		if strings.EqualFold(filepath.Ext(path), ".sln") {
			members, err := sln.Projects(path)
			if err != nil {
				diags.Addf(diag.ExtractionFailure, "%v", err)
				continue
			}
			logger.Debug("Solution expanded.", "solution", path, "projects", len(members))
			for _, member := range members {
				memberPath, err := model.NormalizePath(member)
				if err != nil {
					diags.Addf(diag.ExtractionFailure, "%v", err)
					continue
				}
				d.add(memberPath, path, diags)
			}
			continue
		}

		d.add(path, "", diags)
	}
	return d
}

// add records one descriptor under the given grouping key, enforcing global
// uniqueness across all groupings.
func (d *discovery) add(path, key string, diags *diag.Collector) {
	if d.known[path] {
		diags.Addf(diag.DuplicateInput, "project %s is supplied more than once", path)
		return
	}
	d.known[path] = true
	d.order = append(d.order, path)
	d.solutionOf[path] = key
	if _, seen := d.grouping[key]; !seen {
		d.keys = append(d.keys, key)
	}
	d.grouping[key] = append(d.grouping[key], path)
}
