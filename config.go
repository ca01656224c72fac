// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package rawzip

import (
	"context"
	"io"
	"io/fs"
	"log/slog"
)

// ConfigOption is a function pointer to implement the option pattern.
type ConfigOption func(*Config)

// Config holds all configuration options for reading and extracting an
// archive. The configuration options can be adjusted using the option
// pattern style.
//
// The default configuration is designed to be secure by default: path
// traversal is always rejected, and decompressed entry sizes and archive
// input sizes are capped.
type Config struct {
	// concurrency is the maximum number of entries extracted at the same
	// time. Values below 1 collapse to 1.
	concurrency int

	// createDestination decides if the destination directory is created if
	// it does not exist
	createDestination bool

	// customCreateDirMode is the file mode for created directories (respecting umask)
	customCreateDirMode fs.FileMode

	// customFileMode is the file mode for extracted files (respecting umask)
	customFileMode fs.FileMode

	// logger stream for parsing and extraction
	logger logger

	// maxEntrySize is the maximum size of a single entry after
	// decompression. Set value to -1 to disable the check.
	maxEntrySize int64

	// maxInputSize is the maximum size of the input archive.
	// Set value to -1 to disable the check.
	maxInputSize int64

	// overwrite defines if existing files are overwritten in the destination
	overwrite bool

	// progress is invoked before extraction starts and after each entry settles
	progress ProgressFunc

	// target is the filesystem abstraction extraction writes to
	target Target

	// telemetryHook is a function to consume telemetry data after a
	// finished extraction
	telemetryHook TelemetryHook
}

// ProgressFunc receives progress updates during batch extraction: once as
// (0, total) before any work and once per settled entry afterwards, with
// completed strictly increasing until it reaches total. Calls are
// serialized by the extractor.
type ProgressFunc func(completed, total int)

// Concurrency returns the extraction concurrency limit, clamped to a
// minimum of 1 so extraction always makes forward progress.
func (c *Config) Concurrency() int {
	if c.concurrency < 1 {
		return 1
	}
	return c.concurrency
}

// CreateDestination returns true if the destination directory should be
// created if it does not exist.
func (c *Config) CreateDestination() bool {
	return c.createDestination
}

// CustomCreateDirMode returns the file mode for created directories.
// (respecting umask)
func (c *Config) CustomCreateDirMode() fs.FileMode {
	return c.customCreateDirMode
}

// CustomFileMode returns the file mode for extracted files. (respecting umask)
func (c *Config) CustomFileMode() fs.FileMode {
	return c.customFileMode
}

// Logger returns the logger.
func (c *Config) Logger() logger {
	return c.logger
}

// MaxEntrySize returns the maximum decompressed size of a single entry.
func (c *Config) MaxEntrySize() int64 {
	return c.maxEntrySize
}

// MaxInputSize returns the maximum size of the input archive.
func (c *Config) MaxInputSize() int64 {
	return c.maxInputSize
}

// Overwrite returns true if existing files should be overwritten in the
// destination.
func (c *Config) Overwrite() bool {
	return c.overwrite
}

// Progress returns the progress callback, which is never nil.
func (c *Config) Progress() ProgressFunc {
	if c.progress == nil {
		return func(completed, total int) {
			// noop
		}
	}
	return c.progress
}

// Target returns the filesystem target extraction writes to.
func (c *Config) Target() Target {
	return c.target
}

// TelemetryHook returns the telemetry hook.
func (c *Config) TelemetryHook() TelemetryHook {
	if c.telemetryHook == nil {
		return func(ctx context.Context, d *TelemetryData) {
			// noop
		}
	}
	return c.telemetryHook
}

const (
	defaultConcurrency         = 10            // bounded worker pool size
	defaultCreateDestination   = false         // don't create destination directory
	defaultCustomCreateDirMode = 0750          // default directory permissions rwxr-x---
	defaultCustomFileMode      = 0640          // default file permissions rw-r-----
	defaultMaxEntrySize        = 1 << (10 * 3) // 1 Gb
	defaultMaxInputSize        = 1 << (10 * 3) // 1 Gb
	defaultOverwrite           = true          // overwrite existing files, matching plain unzip behavior
)

var (
	// slog to discard
	defaultLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
)

// NewConfig is a generator option that takes opts as adjustments of the
// default configuration in an option pattern style.
func NewConfig(opts ...ConfigOption) *Config {
	config := &Config{
		concurrency:         defaultConcurrency,
		createDestination:   defaultCreateDestination,
		customCreateDirMode: defaultCustomCreateDirMode,
		customFileMode:      defaultCustomFileMode,
		logger:              defaultLogger,
		maxEntrySize:        defaultMaxEntrySize,
		maxInputSize:        defaultMaxInputSize,
		overwrite:           defaultOverwrite,
		target:              NewTargetDisk(),
	}

	// Loop through each option
	for _, opt := range opts {
		opt(config)
	}

	return config
}

// WithConcurrency options pattern function to set the maximum number of
// entries extracted at the same time. Values below 1 collapse to 1.
func WithConcurrency(n int) ConfigOption {
	return func(c *Config) {
		c.concurrency = n
	}
}

// WithCreateDestination options pattern function to create the destination
// directory if it does not exist.
func WithCreateDestination(create bool) ConfigOption {
	return func(c *Config) {
		c.createDestination = create
	}
}

// WithCustomCreateDirMode options pattern function to set the file mode for
// created directories. (respecting umask)
func WithCustomCreateDirMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.customCreateDirMode = mode
	}
}

// WithCustomFileMode options pattern function to set the file mode for
// extracted files. (respecting umask)
func WithCustomFileMode(mode fs.FileMode) ConfigOption {
	return func(c *Config) {
		c.customFileMode = mode
	}
}

// WithLogger options pattern function to set a custom logger.
func WithLogger(logger logger) ConfigOption {
	return func(c *Config) {
		c.logger = logger
	}
}

// WithMaxEntrySize options pattern function to set the maximum decompressed
// size of a single entry. (-1 to disable check)
func WithMaxEntrySize(maxEntrySize int64) ConfigOption {
	return func(c *Config) {
		c.maxEntrySize = maxEntrySize
	}
}

// WithMaxInputSize options pattern function to set the maximum size of the
// input archive. (-1 to disable check)
func WithMaxInputSize(maxInputSize int64) ConfigOption {
	return func(c *Config) {
		c.maxInputSize = maxInputSize
	}
}

// WithOverwrite options pattern function to define if existing files are
// overwritten in the destination.
func WithOverwrite(overwrite bool) ConfigOption {
	return func(c *Config) {
		c.overwrite = overwrite
	}
}

// WithProgress options pattern function to set a progress callback for
// batch extraction.
func WithProgress(progress ProgressFunc) ConfigOption {
	return func(c *Config) {
		c.progress = progress
	}
}

// WithTarget options pattern function to set the filesystem target
// extraction writes to.
func WithTarget(target Target) ConfigOption {
	return func(c *Config) {
		c.target = target
	}
}

// WithTelemetryHook options pattern function to consume telemetry data
// after a finished extraction.
func WithTelemetryHook(hook TelemetryHook) ConfigOption {
	return func(c *Config) {
		c.telemetryHook = hook
	}
}
