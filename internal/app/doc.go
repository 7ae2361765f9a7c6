// Package app wires the capstan application together: configuration
// loading, logger construction, and the release pipeline run.
package app
