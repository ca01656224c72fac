// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package rawzip_test

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	rawzip "github.com/hashicorp/go-rawzip"
)

func TestArchiveEndToEnd(t *testing.T) {
	data := buildArchive(t, []testEntry{
		{name: "test.txt", content: "Hello, World!", method: zip.Deflate},
	})
	path := writeArchive(t, data)

	archive, err := rawzip.Open(path)
	require.NoError(t, err)

	f, ok := archive.Entry("test.txt")
	require.True(t, ok)
	text, err := f.Text(nil)
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", text)

	_, ok = archive.Entry("missing.txt")
	assert.False(t, ok)

	var last [2]int
	dst := t.TempDir()
	archive, err = rawzip.Open(path, rawzip.WithProgress(func(completed, total int) {
		last = [2]int{completed, total}
	}))
	require.NoError(t, err)
	report, err := archive.ExtractAll(context.Background(), dst)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Extracted)
	assert.Equal(t, last[0], last[1], "terminal progress ratio must be 1")

	got, err := os.ReadFile(filepath.Join(dst, "test.txt"))
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", string(got))
}

func TestOpenFailsFast(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := rawzip.Open(filepath.Join(t.TempDir(), "missing.zip"))
		require.Error(t, err)
	})

	t.Run("corrupt archive", func(t *testing.T) {
		path := writeArchive(t, []byte("this is not a zip archive, not even close"))
		_, err := rawzip.Open(path)
		var ferr *rawzip.FormatError
		require.ErrorAs(t, err, &ferr)
	})

	t.Run("input size limit", func(t *testing.T) {
		data := buildArchive(t, []testEntry{
			{name: "a.txt", content: "a", method: zip.Store},
		})
		_, err := rawzip.New(data, rawzip.WithMaxInputSize(1))
		require.ErrorIs(t, err, rawzip.ErrMaxInputSizeExceeded)
	})
}

func TestFileBytesMemoized(t *testing.T) {
	data := buildArchive(t, []testEntry{
		{name: "payload.bin", content: "memoize me, I am expensive to inflate", method: zip.Deflate},
	})
	archive, err := rawzip.New(data)
	require.NoError(t, err)

	f, ok := archive.Entry("payload.bin")
	require.True(t, ok)

	// concurrent readers share one decompression
	const readers = 16
	results := make([][]byte, readers)
	var wg sync.WaitGroup
	wg.Add(readers)
	for i := 0; i < readers; i++ {
		go func(i int) {
			defer wg.Done()
			content, err := f.Bytes()
			assert.NoError(t, err)
			results[i] = content
		}(i)
	}
	wg.Wait()

	for i := 1; i < readers; i++ {
		require.NotEmpty(t, results[i])
		// same backing array, not a fresh decompression
		assert.Same(t, &results[0][0], &results[i][0])
	}

	// a second handle to the same entry reuses the completed result
	f2, ok := archive.Entry("payload.bin")
	require.True(t, ok)
	content, err := f2.Bytes()
	require.NoError(t, err)
	assert.Same(t, &results[0][0], &content[0])
}

func TestFileText(t *testing.T) {
	data := buildArchive(t, []testEntry{
		{name: "utf8.txt", content: "héllo", method: zip.Store},
		{name: "latin1.txt", content: "h\xe9llo", method: zip.Store},
	})
	archive, err := rawzip.New(data)
	require.NoError(t, err)

	f, ok := archive.Entry("utf8.txt")
	require.True(t, ok)
	text, err := f.Text(nil)
	require.NoError(t, err)
	assert.Equal(t, "héllo", text)

	f, ok = archive.Entry("latin1.txt")
	require.True(t, ok)
	text, err = f.Text(charmap.ISO8859_1)
	require.NoError(t, err)
	assert.Equal(t, "héllo", text)
}

func TestFileExtractTo(t *testing.T) {
	data := buildArchive(t, []testEntry{
		{name: "docs/readme.md", content: "# readme", method: zip.Deflate},
		{name: "bad.bin", content: "x", method: methodBzip2},
	})
	archive, err := rawzip.New(data)
	require.NoError(t, err)

	dst := t.TempDir()
	f, ok := archive.Entry("docs/readme.md")
	require.True(t, ok)
	require.NoError(t, f.ExtractTo(dst))
	got, err := os.ReadFile(filepath.Join(dst, "docs", "readme.md"))
	require.NoError(t, err)
	assert.Equal(t, "# readme", string(got))

	// single-entry decompression faults propagate to the caller
	f, ok = archive.Entry("bad.bin")
	require.True(t, ok)
	err = f.ExtractTo(dst)
	var uerr *rawzip.UnsupportedMethodError
	require.ErrorAs(t, err, &uerr)
}

func TestArchiveEntriesAndIndex(t *testing.T) {
	data := buildArchive(t, []testEntry{
		{name: "1.txt", content: "one", method: zip.Store},
		{name: "2.txt", content: "two", method: zip.Deflate},
	})
	archive, err := rawzip.New(data)
	require.NoError(t, err)

	entries := archive.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "1.txt", entries[0].Name)
	assert.Equal(t, "2.txt", entries[1].Name)
	assert.Equal(t, rawzip.MethodStore, entries[0].Method)
	assert.Equal(t, rawzip.MethodDeflate, entries[1].Method)
	assert.False(t, entries[0].IsDir())
	assert.Equal(t, int64(3), entries[0].CompressedSize())

	assert.Empty(t, archive.Index().Diagnostics())
}

func TestFileBytesEntrySizeLimit(t *testing.T) {
	data := buildArchive(t, []testEntry{
		{name: "big.txt", content: "this payload is larger than the configured limit", method: zip.Deflate},
	})
	archive, err := rawzip.New(data, rawzip.WithMaxEntrySize(8))
	require.NoError(t, err)

	f, ok := archive.Entry("big.txt")
	require.True(t, ok)
	_, err = f.Bytes()
	require.ErrorIs(t, err, rawzip.ErrMaxEntrySizeExceeded)
}
