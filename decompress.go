// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package rawzip

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/flate"
)

// Decompress returns the decompressed content of e. The raw payload is the
// subslice buf[e.DataStart:e.DataEnd); no further copy is made for stored
// entries. Unknown method codes fail with [*UnsupportedMethodError], codec
// failures with [*DecompressionError].
func Decompress(buf []byte, e Entry) ([]byte, error) {
	return decompressLimit(buf, e, -1)
}

// decompressLimit is Decompress with an optional cap on the decompressed
// size. maxSize < 0 disables the check.
func decompressLimit(buf []byte, e Entry, maxSize int64) ([]byte, error) {
	raw := buf[e.DataStart:e.DataEnd]

	switch e.Method {
	case MethodStore:
		if maxSize >= 0 && int64(len(raw)) > maxSize {
			return nil, &DecompressionError{Name: e.Name, Err: ErrMaxEntrySizeExceeded}
		}
		return raw, nil

	case MethodDeflate:
		// some inflate implementations mishandle empty input
		if len(raw) == 0 {
			return []byte{}, nil
		}
		fr := flate.NewReader(bytes.NewReader(raw))
		defer fr.Close()

		var r io.Reader = fr
		if maxSize >= 0 {
			r = io.LimitReader(fr, maxSize+1)
		}
		out, err := io.ReadAll(r)
		if err != nil {
			return nil, &DecompressionError{Name: e.Name, Err: err}
		}
		if maxSize >= 0 && int64(len(out)) > maxSize {
			return nil, &DecompressionError{Name: e.Name, Err: ErrMaxEntrySizeExceeded}
		}
		return out, nil

	default:
		return nil, &UnsupportedMethodError{Method: e.Method}
	}
}
