// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package rawzip

import "encoding/binary"

// Compression method codes handled by this package. All other codes are
// rejected with an [UnsupportedMethodError].
const (
	// MethodStore is uncompressed passthrough storage.
	MethodStore uint16 = 0

	// MethodDeflate is raw deflate without a zlib wrapper.
	MethodDeflate uint16 = 8
)

// Record signatures, little-endian on disk.
const (
	sigEOCD uint32 = 0x06054b50 // End of Central Directory
	sigCDFH uint32 = 0x02014b50 // Central Directory File Header
)

// Fixed record sizes and scan limits.
const (
	eocdFixedLen  = 22    // EOCD record without the trailing comment
	cdfhFixedLen  = 46    // CDFH fixed prefix, before name/extra/comment
	lfhFixedLen   = 30    // LFH fixed prefix, before name/extra
	maxCommentLen = 65535 // maximum EOCD comment length (2-byte field)
)

// eocdRecord holds the End-of-Central-Directory fields this package consumes.
type eocdRecord struct {
	entryCount int   // total number of central directory records
	cdSize     int64 // central directory size in bytes
	cdOffset   int64 // central directory start, relative to archive start
}

// readEOCD decodes the EOCD fields at off. The caller guarantees that at
// least eocdFixedLen bytes are available.
func readEOCD(buf []byte, off int) eocdRecord {
	return eocdRecord{
		entryCount: int(binary.LittleEndian.Uint16(buf[off+10:])),
		cdSize:     int64(binary.LittleEndian.Uint32(buf[off+12:])),
		cdOffset:   int64(binary.LittleEndian.Uint32(buf[off+16:])),
	}
}

// cdfhRecord holds the Central Directory File Header fields this package
// consumes. Variable-length regions (name, extra, comment) follow the
// 46-byte fixed prefix in that order.
type cdfhRecord struct {
	method         uint16
	compressedSize int64
	nameLen        int
	extraLen       int
	commentLen     int
	localOffset    int64
}

// variableLen returns the total size of the name, extra and comment regions.
func (h cdfhRecord) variableLen() int64 {
	return int64(h.nameLen) + int64(h.extraLen) + int64(h.commentLen)
}

// readCDFH decodes the CDFH fixed prefix at off. The caller guarantees that
// at least cdfhFixedLen bytes are available and that the signature matched.
func readCDFH(buf []byte, off int64) cdfhRecord {
	return cdfhRecord{
		method:         binary.LittleEndian.Uint16(buf[off+10:]),
		compressedSize: int64(binary.LittleEndian.Uint32(buf[off+20:])),
		nameLen:        int(binary.LittleEndian.Uint16(buf[off+28:])),
		extraLen:       int(binary.LittleEndian.Uint16(buf[off+30:])),
		commentLen:     int(binary.LittleEndian.Uint16(buf[off+32:])),
		localOffset:    int64(binary.LittleEndian.Uint32(buf[off+42:])),
	}
}

// readLFHDataStart resolves the start of the raw entry data behind the Local
// File Header at off: the 30-byte fixed prefix plus the LFH's own name and
// extra field lengths. The LFH signature is not re-verified; the central
// directory is the authoritative index. The caller guarantees that at least
// lfhFixedLen bytes are available at off.
func readLFHDataStart(buf []byte, off int64) int64 {
	nameLen := int64(binary.LittleEndian.Uint16(buf[off+26:]))
	extraLen := int64(binary.LittleEndian.Uint16(buf[off+28:]))
	return off + lfhFixedLen + nameLen + extraLen
}
