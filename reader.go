// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package rawzip

import (
	"context"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"
	"golang.org/x/text/encoding"
)

// Archive is a read handle to a parsed ZIP or JAR archive. The whole archive
// is held in memory as a single random-access buffer; the entry index is
// parsed eagerly at open time, so a structurally corrupt archive fails fast
// and no partial handle is ever returned.
//
// The buffer and index are immutable for the lifetime of the handle and safe
// for concurrent use.
type Archive struct {
	buf []byte
	ix  *Index
	cfg *Config

	// lazy per-entry content: the first reader installs the computation,
	// concurrent readers share the in-flight result, later readers hit the
	// completed cache. Decompression runs at most once per entry per handle.
	group    singleflight.Group
	mu       sync.RWMutex
	contents map[string][]byte
}

// Open reads the archive at path into memory and parses its entry index.
func Open(path string, opts ...ConfigOption) (*Archive, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read archive: %w", err)
	}
	return New(buf, opts...)
}

// New parses an archive that is already in memory.
func New(buf []byte, opts ...ConfigOption) (*Archive, error) {
	cfg := NewConfig(opts...)
	if cfg.MaxInputSize() != -1 && int64(len(buf)) > cfg.MaxInputSize() {
		return nil, fmt.Errorf("cannot open archive: %w", ErrMaxInputSizeExceeded)
	}

	cfg.Logger().Debug("parsing archive", "size", len(buf))
	ix, err := ParseIndex(buf)
	if err != nil {
		return nil, err
	}
	for _, d := range ix.Diagnostics() {
		cfg.Logger().Warn("archive parsed with diagnostic", "detail", d.String())
	}

	return &Archive{
		buf:      buf,
		ix:       ix,
		cfg:      cfg,
		contents: make(map[string][]byte),
	}, nil
}

// Index returns the parsed entry index, including any parse diagnostics.
func (a *Archive) Index() *Index {
	return a.ix
}

// Entries returns all entries in index order.
func (a *Archive) Entries() []Entry {
	return a.ix.Entries()
}

// Entry looks up one entry by exact name. The second return value reports
// whether the entry exists.
func (a *Archive) Entry(name string) (*File, bool) {
	e, ok := a.ix.Lookup(name)
	if !ok {
		return nil, false
	}
	return &File{Entry: e, archive: a}, true
}

// ExtractAll extracts every entry of the archive into dst, see [ExtractAll].
func (a *Archive) ExtractAll(ctx context.Context, dst string) (*Report, error) {
	return ExtractAll(ctx, a.buf, a.ix, dst, a.cfg)
}

// File is one entry of an [Archive] with access to its decompressed content.
type File struct {
	Entry

	archive *Archive
}

// Bytes returns the decompressed content of the entry. The result is
// memoized on the handle: the first call triggers decompression, concurrent
// calls share the same in-flight work, and subsequent calls reuse the
// completed result. Failures are not cached.
func (f *File) Bytes() ([]byte, error) {
	a := f.archive

	a.mu.RLock()
	content, ok := a.contents[f.Name]
	a.mu.RUnlock()
	if ok {
		return content, nil
	}

	v, err, _ := a.group.Do(f.Name, func() (interface{}, error) {
		content, err := decompressLimit(a.buf, f.Entry, a.cfg.MaxEntrySize())
		if err != nil {
			return nil, err
		}
		a.mu.Lock()
		a.contents[f.Name] = content
		a.mu.Unlock()
		return content, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Text returns the decompressed content decoded as text. A nil encoding
// means UTF-8; any other encoding is decoded with golang.org/x/text, e.g.
// charmap.CodePage437 for legacy archives.
func (f *File) Text(enc encoding.Encoding) (string, error) {
	content, err := f.Bytes()
	if err != nil {
		return "", err
	}
	if enc == nil {
		return string(content), nil
	}
	decoded, err := enc.NewDecoder().Bytes(content)
	if err != nil {
		return "", fmt.Errorf("cannot decode text: %w", err)
	}
	return string(decoded), nil
}

// ExtractTo extracts this single entry into dst. Faults propagate directly
// to the caller, there is no batch to protect.
func (f *File) ExtractTo(dst string) error {
	a := f.archive
	if f.IsDir() {
		return nil
	}
	_, err := extractEntry(a.buf, f.Entry, dst, a.cfg.Target(), &createdDirs{}, a.cfg)
	return err
}
