// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package rawzip

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sync"
	"time"
)

// TargetMemory is an in-memory [Target] implementation. It is a map of paths
// to memory entries and is primarily useful in tests and for inspecting
// extraction output without touching the disk.
type TargetMemory struct {
	files sync.Map // map[string]*memoryEntry
}

type memoryEntry struct {
	data []byte
	info memoryFileInfo
}

// NewTargetMemory creates a new in-memory target.
func NewTargetMemory() *TargetMemory {
	return &TargetMemory{}
}

// CreateDir records a directory entry and all missing parents.
func (m *TargetMemory) CreateDir(path string, mode fs.FileMode) error {
	path = filepath.Clean(path)
	if parent := filepath.Dir(path); parent != path {
		if err := m.CreateDir(parent, mode); err != nil {
			return err
		}
	}
	if e, ok := m.files.Load(path); ok {
		if !e.(*memoryEntry).info.IsDir() {
			return fmt.Errorf("%s is not a directory", path)
		}
		return nil
	}
	m.files.Store(path, &memoryEntry{
		info: memoryFileInfo{name: filepath.Base(path), mode: mode.Perm() | fs.ModeDir, modTime: time.Now()},
	})
	return nil
}

// CreateFile stores src under path. If the file already exists and overwrite
// is false, an error is returned. The write is capped at maxSize bytes
// (maxSize < 0 disables the limit).
func (m *TargetMemory) CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error) {
	path = filepath.Clean(path)
	if e, ok := m.files.Load(path); ok {
		if e.(*memoryEntry).info.IsDir() {
			return 0, fmt.Errorf("%s is a directory", path)
		}
		if !overwrite {
			return 0, fmt.Errorf("file already exists")
		}
	}

	var buf bytes.Buffer
	n, err := io.Copy(limitWriter(&buf, maxSize), src)
	if err != nil {
		return n, fmt.Errorf("failed to write file: %w", err)
	}
	m.files.Store(path, &memoryEntry{
		data: buf.Bytes(),
		info: memoryFileInfo{name: filepath.Base(path), size: n, mode: mode.Perm(), modTime: time.Now()},
	})
	return n, nil
}

// Stat returns the FileInfo for path.
func (m *TargetMemory) Stat(path string) (fs.FileInfo, error) {
	e, ok := m.files.Load(filepath.Clean(path))
	if !ok {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
	}
	return &e.(*memoryEntry).info, nil
}

// Lstat is equivalent to Stat; the memory target has no symlinks.
func (m *TargetMemory) Lstat(path string) (fs.FileInfo, error) {
	return m.Stat(path)
}

// Content returns the stored content of the file at path.
func (m *TargetMemory) Content(path string) ([]byte, bool) {
	e, ok := m.files.Load(filepath.Clean(path))
	if !ok || e.(*memoryEntry).info.IsDir() {
		return nil, false
	}
	return e.(*memoryEntry).data, true
}

// memoryFileInfo implements fs.FileInfo for in-memory entries.
type memoryFileInfo struct {
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
}

// Name returns the base name of the entry.
func (fi *memoryFileInfo) Name() string { return fi.name }

// Size returns the size of the entry.
func (fi *memoryFileInfo) Size() int64 { return fi.size }

// Mode returns the mode of the entry.
func (fi *memoryFileInfo) Mode() fs.FileMode { return fi.mode }

// ModTime returns the modification time of the entry.
func (fi *memoryFileInfo) ModTime() time.Time { return fi.modTime }

// IsDir reports whether the entry is a directory.
func (fi *memoryFileInfo) IsDir() bool { return fi.mode.IsDir() }

// Sys returns nil.
func (fi *memoryFileInfo) Sys() interface{} { return nil }
