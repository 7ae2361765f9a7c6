package loader

import (
	"strings"

	"github.com/capstan-dev/capstan/internal/diag"
	"github.com/capstan-dev/capstan/internal/model"
)

// orderByReferences orders one collection so that every reference pointing
// at a project inside the known descriptor set appears before its referrer.
//
// The selection is deliberately a greedy O(n²) scan: on every pass the first
// eligible record in the current path-sorted order is placed. The tie-break
// makes the output order reproducible regardless of fetch timing, so it is
// an observable contract, not an implementation detail.
func orderByReferences(records []*model.ProjectRecord, known map[string]bool) ([]*model.ProjectRecord, *diag.Diagnostic) {
	placed := make(map[string]bool, len(records))
	ordered := make([]*model.ProjectRecord, 0, len(records))
	remaining := append([]*model.ProjectRecord(nil), records...)

	for len(remaining) > 0 {
		picked := -1
		for i, r := range remaining {
			if eligible(r, known, placed) {
				picked = i
				break
			}
		}
		if picked < 0 {
			names := make([]string, len(remaining))
			for i, r := range remaining {
				names[i] = r.AssemblyName
			}
			return nil, diag.Newf(diag.UnresolvedDependency,
				"unable to order projects, unresolved references among: %s",
				strings.Join(names, ", "))
		}

		r := remaining[picked]
		ordered = append(ordered, r)
		placed[r.Path] = true
		remaining = append(remaining[:picked], remaining[picked+1:]...)
	}
	return ordered, nil
}

// eligible reports whether every in-set reference of r is already placed.
// References outside the known descriptor set impose no ordering constraint.
func eligible(r *model.ProjectRecord, known, placed map[string]bool) bool {
	for _, ref := range r.References {
		if known[ref] && !placed[ref] {
			return false
		}
	}
	return true
}
