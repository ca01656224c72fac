// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package rawzip

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Report describes the outcome of a batch extraction. A batch never fails
// because of a single bad entry; per-entry faults are isolated and collected
// here instead.
type Report struct {
	// Total is the number of entries the batch was asked to drain,
	// including directory entries.
	Total int

	// Extracted is the number of files written to the destination.
	Extracted int

	// Failed is the number of entries that could not be extracted.
	Failed int

	// Diagnostics carries one record per failed entry, in completion order.
	Diagnostics []Diagnostic
}

// ExtractAll drains every entry of the index into dst through a pool of
// in-flight per-entry tasks bounded by the configured concurrency. Directory
// entries are skipped without side effects. A failure in one entry (path
// rejection, decompression error, write error) is recorded in the returned
// [Report] and does not abort the batch; that entry is simply absent from
// the output.
//
// The configured progress callback is invoked as (0, total) before any work
// and once per settled entry afterwards, strictly monotonically, reaching
// (total, total) exactly once. Entry completion order among the in-flight
// pool is otherwise unspecified.
//
// Cancelling ctx fails the remaining entries with the context error instead
// of processing them; entries already in flight run to completion.
//
// ExtractAll itself returns an error only for batch-level faults, such as a
// missing destination directory.
func ExtractAll(ctx context.Context, buf []byte, ix *Index, dst string, cfg *Config) (*Report, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	t := cfg.Target()

	// prepare telemetry data collection and emit
	td := &TelemetryData{InputSize: int64(len(buf)), ParsedEntries: int64(ix.Len())}
	defer cfg.TelemetryHook()(ctx, td)
	defer captureExtractionDuration(td, now())

	// check if dst needs to be created
	if _, err := t.Lstat(dst); err != nil {
		if !cfg.CreateDestination() {
			return nil, fmt.Errorf("destination does not exist: %w", err)
		}
		if err := t.CreateDir(dst, cfg.CustomCreateDirMode()); err != nil {
			return nil, fmt.Errorf("failed to create destination directory: %w", err)
		}
		cfg.Logger().Info("created destination directory", "path", dst)
	}

	entries := ix.Entries()
	report := &Report{Total: len(entries)}
	created := &createdDirs{}
	progress := cfg.Progress()
	progress(0, report.Total)

	// settle serializes progress reporting and report bookkeeping, which
	// keeps the completed count strictly monotonic across workers
	var mu sync.Mutex
	completed := 0
	settle := func(e Entry, size int64, err error) {
		mu.Lock()
		defer mu.Unlock()
		completed++
		switch {
		case err != nil:
			report.Failed++
			report.Diagnostics = append(report.Diagnostics, Diagnostic{Stage: StageExtract, Entry: e.Name, Err: err})
			td.ExtractionErrors++
			td.LastExtractionError = err
			cfg.Logger().Warn("entry extraction failed", "entry", e.Name, "error", err)
		case e.IsDir():
			td.SkippedDirs++
		default:
			report.Extracted++
			td.ExtractedFiles++
			td.ExtractionSize += size
		}
		progress(completed, report.Total)
	}

	eg := &errgroup.Group{}
	eg.SetLimit(cfg.Concurrency())
	for _, entry := range entries {
		entry := entry
		eg.Go(func() error {
			if entry.IsDir() {
				settle(entry, 0, nil)
				return nil
			}
			if err := ctx.Err(); err != nil {
				settle(entry, 0, err)
				return nil
			}
			n, err := extractEntry(buf, entry, dst, t, created, cfg)
			settle(entry, n, err)

			// per-entry faults never abort the batch
			return nil
		})
	}
	_ = eg.Wait()

	cfg.Logger().Info("extraction finished", "extracted", report.Extracted, "failed", report.Failed)
	return report, nil
}

// ExtractEntry extracts a single entry into dst. Unlike [ExtractAll] there
// is no batch to protect, so faults propagate directly to the caller.
func ExtractEntry(buf []byte, e Entry, dst string, opts ...ConfigOption) error {
	cfg := NewConfig(opts...)
	if e.IsDir() {
		return nil
	}
	_, err := extractEntry(buf, e, dst, cfg.Target(), &createdDirs{}, cfg)
	return err
}

// extractEntry validates the entry path, ensures its parent directory
// exists, decompresses the payload and writes it to the target.
func extractEntry(buf []byte, e Entry, dst string, t Target, created *createdDirs, cfg *Config) (int64, error) {
	path, err := securePath(e.Name, dst)
	if err != nil {
		return 0, err
	}
	if err := ensureDir(t, filepath.Dir(path), cfg.CustomCreateDirMode(), created); err != nil {
		return 0, err
	}
	content, err := decompressLimit(buf, e, cfg.MaxEntrySize())
	if err != nil {
		return 0, err
	}
	n, err := t.CreateFile(path, bytes.NewReader(content), cfg.CustomFileMode(), cfg.Overwrite(), -1)
	if err != nil {
		return n, fmt.Errorf("cannot create file: %w", err)
	}
	return n, nil
}
