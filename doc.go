// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

// Package rawzip reads ZIP (and ZIP-compatible JAR) archives directly from
// their on-disk binary layout, without archive/zip or any other archive
// library. It locates the End-of-Central-Directory record, walks the Central
// Directory, resolves each entry's raw data window through its Local File
// Header, and extracts entries to a filesystem target through a bounded
// worker pool with per-entry fault isolation and zip-slip protection.
//
// The package is secure by default: entry names are normalized and checked
// for path traversal before anything is written, decompressed sizes can be
// capped, and a corrupt central directory degrades to a partial index with
// structured diagnostics instead of a crash.
//
// Typical usage:
//
//	archive, err := rawzip.Open("build/app.jar")
//	if err != nil {
//		// archive-level corruption, surfaced at open time
//	}
//	if f, ok := archive.Entry("META-INF/MANIFEST.MF"); ok {
//		text, err := f.Text(nil)
//		...
//	}
//	report, err := archive.ExtractAll(ctx, "out/")
//
// ZIP64 archives, encryption, multi-part archives and archive creation are
// out of scope.
package rawzip
