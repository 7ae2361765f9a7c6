// Package loader discovers buildable projects from solution and project
// paths, extracts their metadata concurrently, and produces per-solution
// collections ordered so that referenced projects always precede their
// referrers. Diagnostics accumulate within each phase; the load aborts with
// no result once any phase has settled with an error.
package loader
