// Package diag provides typed diagnostics and a concurrency-safe collector.
// Phases that fan out work accumulate diagnostics here and check them once,
// after the phase has fully settled.
package diag

import (
	"errors"
	"fmt"
	"sync"
)

// Kind identifies the failure class of a diagnostic.
type Kind int

const (
	DuplicateInput Kind = iota
	ExtractionFailure
	UnsupportedOutputKind
	UnresolvedDependency
	VersionMismatch
	MissingVersion
	MissingCredential
	BranchNotAllowed
	MissingGitContext
	InvalidCommandContext
)

func (k Kind) String() string {
	switch k {
	case DuplicateInput:
		return "duplicate input"
	case ExtractionFailure:
		return "extraction failure"
	case UnsupportedOutputKind:
		return "unsupported output kind"
	case UnresolvedDependency:
		return "unresolved dependency"
	case VersionMismatch:
		return "version mismatch"
	case MissingVersion:
		return "missing version"
	case MissingCredential:
		return "missing credential"
	case BranchNotAllowed:
		return "branch not allowed"
	case MissingGitContext:
		return "missing git context"
	case InvalidCommandContext:
		return "invalid command context"
	default:
		return "unknown"
	}
}

// Diagnostic is a single user-visible failure. It implements error.
type Diagnostic struct {
	Kind    Kind
	Message string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// Newf builds a diagnostic from a format string.
func Newf(kind Kind, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// HasKind reports whether err is, or wraps, a diagnostic of the given kind.
func HasKind(err error, kind Kind) bool {
	for _, e := range flatten(err) {
		var d *Diagnostic
		if errors.As(e, &d) && d.Kind == kind {
			return true
		}
	}
	return false
}

func flatten(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}

// Collector is an append-only diagnostic sink safe for concurrent use. The
// lock is held only around the append, never around the work that produced
// the diagnostic.
type Collector struct {
	mu    sync.Mutex
	diags []*Diagnostic
}

// Add appends one diagnostic.
func (c *Collector) Add(d *Diagnostic) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.diags = append(c.diags, d)
}

// Addf builds and appends a diagnostic.
func (c *Collector) Addf(kind Kind, format string, args ...any) {
	c.Add(Newf(kind, format, args...))
}

// HasErrors reports whether anything has been collected.
func (c *Collector) HasErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.diags) > 0
}

// Diagnostics returns a snapshot of the collected diagnostics.
func (c *Collector) Diagnostics() []*Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Diagnostic, len(c.diags))
	copy(out, c.diags)
	return out
}

// Err joins the collected diagnostics into a single error, or nil.
func (c *Collector) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.diags) == 0 {
		return nil
	}
	errs := make([]error, len(c.diags))
	for i, d := range c.diags {
		errs[i] = d
	}
	return errors.Join(errs...)
}
