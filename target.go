// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package rawzip

import (
	"fmt"
	"io"
	"io/fs"
	"sync"
)

// Target specifies all functions that are needed to be implemented to
// extract archive contents to a filesystem.
type Target interface {
	// CreateFile creates a file at the specified path with src as content. The mode
	// parameter is the file mode that should be set on the file. If the file already
	// exists and overwrite is false, an error is returned. The size of the file must
	// not exceed maxSize; if maxSize < 0, the file size is not limited. CreateFile
	// returns the number of bytes written, along with any error.
	CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error)

	// CreateDir creates a directory at the specified path with the specified mode,
	// including any missing parents. If the directory already exists, nothing is done.
	CreateDir(path string, mode fs.FileMode) error

	// Stat see docs for os.Stat. Main purpose is to recheck directory existence
	// after a failed create.
	Stat(path string) (fs.FileInfo, error)

	// Lstat see docs for os.Lstat. Main purpose is to check the destination
	// before extraction starts.
	Lstat(path string) (fs.FileInfo, error)
}

// createdDirs tracks directories already ensured to exist within one
// extraction batch, so concurrent per-entry tasks skip redundant mkdir
// syscalls. It is the only mutable state shared across the batch.
type createdDirs struct {
	m sync.Map // map[string]struct{}
}

func (c *createdDirs) seen(path string) bool {
	_, ok := c.m.Load(path)
	return ok
}

func (c *createdDirs) record(path string) {
	c.m.Store(path, struct{}{})
}

// ensureDir idempotently creates dir on t. A creation failure is re-checked
// with a stat probe: if the path exists and is a directory by then, a
// concurrent task won the race and the failure is absorbed; otherwise the
// original error propagates.
func ensureDir(t Target, dir string, mode fs.FileMode, created *createdDirs) error {
	if created.seen(dir) {
		return nil
	}
	if err := t.CreateDir(dir, mode); err != nil {
		if fi, statErr := t.Stat(dir); statErr == nil && fi.IsDir() {
			created.record(dir)
			return nil
		}
		return fmt.Errorf("cannot create directory: %w", err)
	}
	created.record(dir)
	return nil
}
