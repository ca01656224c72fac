// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package rawzip

import (
	"encoding/binary"
	"fmt"
)

// ParseIndex locates the End-of-Central-Directory record in buf, walks the
// Central Directory File Headers and resolves each entry's raw data window
// through its Local File Header. It returns the entry index, or a
// [*FormatError] if the archive structure cannot be trusted.
//
// Per-entry faults (a data window pointing outside the buffer) are skipped
// and recorded as diagnostics on the index; structural faults inside the
// directory walk (signature mismatch, variable region overrunning the
// directory) stop the walk early and return the entries found so far, also
// with a diagnostic. Only a missing EOCD or violated directory bounds fail
// the parse outright.
func ParseIndex(buf []byte) (*Index, error) {
	eocdOff, ok := findEOCD(buf)
	if !ok {
		return nil, &FormatError{Msg: "EOCD not found"}
	}
	eocd := readEOCD(buf, eocdOff)

	// the central directory must lie entirely before the EOCD record
	if eocd.cdOffset+eocd.cdSize > int64(eocdOff) {
		return nil, &FormatError{Msg: "central directory corrupt"}
	}

	ix := newIndex()
	pos := eocd.cdOffset
	end := eocd.cdOffset + eocd.cdSize
	parsed := 0

	for i := 0; i < eocd.entryCount && pos+cdfhFixedLen <= end; i++ {
		if binary.LittleEndian.Uint32(buf[pos:]) != sigCDFH {
			// the directory itself is untrustworthy from here on
			ix.warn("", fmt.Errorf("central directory header signature mismatch at offset %d", pos))
			break
		}
		hdr := readCDFH(buf, pos)
		next := pos + cdfhFixedLen + hdr.variableLen()
		if next > end {
			ix.warn("", fmt.Errorf("central directory header at offset %d overruns directory end", pos))
			break
		}

		name := string(buf[pos+cdfhFixedLen : pos+cdfhFixedLen+int64(hdr.nameLen)])

		if entry, err := resolveEntry(buf, name, hdr); err != nil {
			// one bad record does not poison the rest of the index
			ix.warn(name, err)
		} else {
			ix.add(entry)
			parsed++
		}
		pos = next
	}

	if parsed != eocd.entryCount {
		ix.warn("", fmt.Errorf("parsed %d entries, EOCD declares %d", parsed, eocd.entryCount))
	}
	return ix, nil
}

// findEOCD scans backward from the end of buf for the EOCD signature,
// limited to the maximum possible comment length plus the fixed record size.
func findEOCD(buf []byte) (int, bool) {
	if len(buf) < eocdFixedLen {
		return 0, false
	}
	lowest := len(buf) - eocdFixedLen - maxCommentLen
	if lowest < 0 {
		lowest = 0
	}
	for off := len(buf) - eocdFixedLen; off >= lowest; off-- {
		if binary.LittleEndian.Uint32(buf[off:]) == sigEOCD {
			return off, true
		}
	}
	return 0, false
}

// resolveEntry computes the raw data window of a central directory record by
// reading the local file header it points at.
func resolveEntry(buf []byte, name string, hdr cdfhRecord) (Entry, error) {
	if hdr.localOffset+lfhFixedLen > int64(len(buf)) {
		return Entry{}, fmt.Errorf("local header offset %d out of bounds", hdr.localOffset)
	}
	dataStart := readLFHDataStart(buf, hdr.localOffset)
	dataEnd := dataStart + hdr.compressedSize
	if dataStart > int64(len(buf)) || dataEnd > int64(len(buf)) {
		return Entry{}, fmt.Errorf("data range [%d, %d) out of bounds", dataStart, dataEnd)
	}
	return Entry{
		Name:      name,
		Method:    hdr.method,
		DataStart: dataStart,
		DataEnd:   dataEnd,
	}, nil
}
