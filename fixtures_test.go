// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package rawzip_test

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// methodBzip2 is a compression method this package does not support, used to
// provoke per-entry decompression failures.
const methodBzip2 uint16 = 12

// testEntry describes one fixture entry.
type testEntry struct {
	name    string
	content string
	method  uint16
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// buildArchive fabricates a zip archive in memory with archive/zip. Entries
// with a trailing slash become directory records. Entries with methodBzip2
// are written as passthrough payloads under the unsupported method code.
func buildArchive(t *testing.T, entries []testEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	zw.RegisterCompressor(methodBzip2, func(w io.Writer) (io.WriteCloser, error) {
		return nopWriteCloser{w}, nil
	})
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: e.method})
		require.NoError(t, err)
		if len(e.content) > 0 {
			_, err = w.Write([]byte(e.content))
			require.NoError(t, err)
		}
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// writeArchive stores archive bytes in a temporary file and returns its path.
func writeArchive(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.zip")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// findEOCDOffset locates the End-of-Central-Directory record in data, so
// corruption tests can patch its fields.
func findEOCDOffset(t *testing.T, data []byte) int {
	t.Helper()
	for off := len(data) - 22; off >= 0; off-- {
		if binary.LittleEndian.Uint32(data[off:]) == 0x06054b50 {
			return off
		}
	}
	t.Fatal("test archive has no EOCD record")
	return -1
}
