// Package config defines the format-agnostic release configuration model
// and the Loader interface that concrete formats implement.
package config
