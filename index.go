// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package rawzip

import (
	"fmt"
	"strings"
)

// Entry describes one file or directory record of the archive, resolved to
// the location of its raw compressed payload inside the archive buffer.
// Entries are immutable once constructed.
type Entry struct {
	// Name is the entry path as recorded in the central directory, with
	// forward slashes. Directory entries carry a trailing slash.
	Name string

	// Method is the compression method code ([MethodStore] or
	// [MethodDeflate] for extractable entries).
	Method uint16

	// DataStart and DataEnd delimit the raw compressed payload inside the
	// archive buffer as [DataStart, DataEnd). For directory entries the
	// range is empty and ignored.
	DataStart int64
	DataEnd   int64
}

// IsDir reports whether the entry is a directory record.
func (e Entry) IsDir() bool {
	return strings.HasSuffix(e.Name, "/")
}

// CompressedSize returns the size of the raw payload in bytes.
func (e Entry) CompressedSize() int64 {
	return e.DataEnd - e.DataStart
}

// Diagnostic reports a non-fatal fault that was absorbed during parsing or
// batch extraction, so that partial outcomes are inspectable by the caller
// instead of only logged.
type Diagnostic struct {
	// Stage is the pipeline stage that produced the diagnostic.
	Stage DiagnosticStage

	// Entry is the affected entry name, empty for archive-level faults.
	Entry string

	// Err is the absorbed fault.
	Err error
}

// DiagnosticStage identifies the pipeline stage a diagnostic originated from.
type DiagnosticStage string

const (
	// StageParse marks diagnostics from the central directory walk.
	StageParse DiagnosticStage = "parse"

	// StageExtract marks diagnostics from batch extraction.
	StageExtract DiagnosticStage = "extract"
)

// String returns a human-readable representation of the diagnostic.
func (d Diagnostic) String() string {
	if d.Entry == "" {
		return fmt.Sprintf("%s: %s", d.Stage, d.Err)
	}
	return fmt.Sprintf("%s: %s: %s", d.Stage, d.Entry, d.Err)
}

// Index is the parsed entry index of an archive: an ordered mapping from
// entry name to [Entry]. Duplicate names overwrite the earlier descriptor
// but keep its position. An Index is built once per archive and read-only
// afterwards, so concurrent readers need no synchronization.
type Index struct {
	order   []string
	entries map[string]Entry
	diags   []Diagnostic
}

func newIndex() *Index {
	return &Index{entries: make(map[string]Entry)}
}

// add inserts e, overwriting any prior entry of the same name.
func (ix *Index) add(e Entry) {
	if _, ok := ix.entries[e.Name]; !ok {
		ix.order = append(ix.order, e.Name)
	}
	ix.entries[e.Name] = e
}

func (ix *Index) warn(entry string, err error) {
	ix.diags = append(ix.diags, Diagnostic{Stage: StageParse, Entry: entry, Err: err})
}

// Len returns the number of entries in the index.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Entries returns all entries in index order.
func (ix *Index) Entries() []Entry {
	out := make([]Entry, 0, len(ix.order))
	for _, name := range ix.order {
		out = append(out, ix.entries[name])
	}
	return out
}

// Lookup returns the entry with the exact given name.
func (ix *Index) Lookup(name string) (Entry, bool) {
	e, ok := ix.entries[name]
	return e, ok
}

// Diagnostics returns the non-fatal faults absorbed while building the
// index. A non-empty result means the archive is truncated or corrupt but
// still partially usable.
func (ix *Index) Diagnostics() []Diagnostic {
	return ix.diags
}
