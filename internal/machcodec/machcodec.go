// Package machcodec implements InnoDB's "mach" primitive encoding: fixed
// width big-endian integers and the variable-width compressed integer
// format used throughout MTR operands (spec §4.1).
package machcodec

import (
	"encoding/binary"

	"github.com/mariadb-tools/innodb-surgeon/internal/diag"
)

// ReadU16 reads a big-endian uint16 at the start of buf.
func ReadU16(buf []byte) (uint16, error) {
	if len(buf) < 2 {
		return 0, diag.ErrTruncatedOperand
	}
	return binary.BigEndian.Uint16(buf), nil
}

// ReadU32 reads a big-endian uint32 at the start of buf.
func ReadU32(buf []byte) (uint32, error) {
	if len(buf) < 4 {
		return 0, diag.ErrTruncatedOperand
	}
	return binary.BigEndian.Uint32(buf), nil
}

// ReadU64 reads a big-endian uint64 at the start of buf.
func ReadU64(buf []byte) (uint64, error) {
	if len(buf) < 8 {
		return 0, diag.ErrTruncatedOperand
	}
	return binary.BigEndian.Uint64(buf), nil
}

// ReadI32 reads a big-endian int32 at the start of buf.
func ReadI32(buf []byte) (int32, error) {
	v, err := ReadU32(buf)
	return int32(v), err
}

// ReadI64 reads a big-endian int64 at the start of buf.
func ReadI64(buf []byte) (int64, error) {
	v, err := ReadU64(buf)
	return int64(v), err
}

// PutU16 writes a big-endian uint16 into buf, which must have length >= 2.
func PutU16(buf []byte, v uint16) { binary.BigEndian.PutUint16(buf, v) }

// PutU32 writes a big-endian uint32 into buf, which must have length >= 4.
func PutU32(buf []byte, v uint32) { binary.BigEndian.PutUint32(buf, v) }

// PutU64 writes a big-endian uint64 into buf, which must have length >= 8.
func PutU64(buf []byte, v uint64) { binary.BigEndian.PutUint64(buf, v) }

// ReadCompressedU32 decodes InnoDB's compressed unsigned integer encoding
// (mach_parse_compressed): the top bits of the first byte select the total
// encoded width, 1 to 5 bytes. Returns the decoded value and the number of
// bytes consumed.
func ReadCompressedU32(buf []byte) (value uint32, n int, err error) {
	if len(buf) < 1 {
		return 0, 0, diag.ErrTruncatedOperand
	}
	b0 := buf[0]
	switch {
	case b0&0x80 == 0:
		return uint32(b0), 1, nil
	case b0&0xC0 == 0x80:
		if len(buf) < 2 {
			return 0, 0, diag.ErrTruncatedOperand
		}
		return uint32(b0&0x7F)<<8 | uint32(buf[1]), 2, nil
	case b0&0xE0 == 0xC0:
		if len(buf) < 3 {
			return 0, 0, diag.ErrTruncatedOperand
		}
		return uint32(b0&0x3F)<<16 | uint32(buf[1])<<8 | uint32(buf[2]), 3, nil
	case b0&0xF0 == 0xE0:
		if len(buf) < 4 {
			return 0, 0, diag.ErrTruncatedOperand
		}
		return uint32(b0&0x1F)<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]), 4, nil
	case b0&0xF8 == 0xF0:
		if len(buf) < 5 {
			return 0, 0, diag.ErrTruncatedOperand
		}
		return uint32(buf[1])<<24 | uint32(buf[2])<<16 | uint32(buf[3])<<8 | uint32(buf[4]), 5, nil
	default:
		return 0, 0, diag.ErrOverlongEncoding
	}
}

// WriteCompressedU32 encodes v in the minimal number of bytes the
// compressed-unsigned format allows and returns the encoded slice.
func WriteCompressedU32(v uint32) []byte {
	switch {
	case v < 0x80:
		return []byte{byte(v)}
	case v < 0x4000:
		return []byte{byte(v>>8) | 0x80, byte(v)}
	case v < 0x200000:
		return []byte{byte(v>>16) | 0xC0, byte(v >> 8), byte(v)}
	case v < 0x10000000:
		return []byte{byte(v>>24) | 0xE0, byte(v >> 16), byte(v >> 8), byte(v)}
	default:
		return []byte{0xF0, byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)}
	}
}

// zigzag maps a signed integer onto the unsigned compressed-integer space,
// small magnitude values first regardless of sign.
func zigzagEncode(v int32) uint32 { return uint32((v << 1) ^ (v >> 31)) }
func zigzagDecode(v uint32) int32 { return int32(v>>1) ^ -int32(v&1) }

// ReadCompressedI32 decodes a zig-zag compressed signed integer.
func ReadCompressedI32(buf []byte) (value int32, n int, err error) {
	u, n, err := ReadCompressedU32(buf)
	if err != nil {
		return 0, 0, err
	}
	return zigzagDecode(u), n, nil
}

// WriteCompressedI32 encodes v as a zig-zag compressed signed integer.
func WriteCompressedI32(v int32) []byte {
	return WriteCompressedU32(zigzagEncode(v))
}
