// Package constants provides shared constants used throughout the pricemap codebase.
// This includes timeouts, file names, file permissions, and other configuration values
// that should be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultDebounceInterval is the minimum time between two watcher-triggered recomputes
	DefaultDebounceInterval = 1500 * time.Millisecond

	// ShutdownTimeout bounds how long shutdown waits for in-flight recomputes
	ShutdownTimeout = 30 * time.Second

	// RecomputeTimeout is the timeout for a single category recompute plus aggregate rebuild
	RecomputeTimeout = 5 * time.Minute

	// CommandTimeout is the default timeout for one-shot CLI commands
	CommandTimeout = 10 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// File and directory names used by the combiner.
const (
	// DefaultDatabaseRoot is the directory holding one sub-directory per category
	DefaultDatabaseRoot = "./core/database"

	// CombinedFileName is the per-category output written next to the vendor files
	CombinedFileName = "_combined.json"

	// FinalFileName is the global aggregate written under the database root
	FinalFileName = "final.json"

	// VendorFileExt is the extension of vendor input files
	VendorFileExt = ".json"

	// ConfigFileName is the config file searched in the home and working directories
	ConfigFileName = ".pricemap"
)

// Matching limits
const (
	// ShortTitleWords is the number of words kept in a short title
	ShortTitleWords = 6

	// MinModelLength is the minimum length of a model number token
	MinModelLength = 4
)

// Status freshness thresholds
const (
	// FreshAge marks vendor files modified within the last hour
	FreshAge = 1 * time.Hour

	// StaleAge marks vendor files modified within the last day
	StaleAge = 24 * time.Hour
)
