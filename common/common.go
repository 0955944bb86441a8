// Package common contains process-wide helpers shared by all binaries.
package common

var (
	// Version is overridden at build time via -ldflags.
	Version = "dev"

	// PackageName is used as the metrics namespace.
	PackageName = "sequencer_seeder"
)
