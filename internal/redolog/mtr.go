package redolog

import (
	"github.com/mariadb-tools/innodb-surgeon/internal/diag"
	"github.com/mariadb-tools/innodb-surgeon/internal/machcodec"
)

// Family is the opcode family a mini-transaction record belongs to
// (spec §4.4 "Opcode dispatch", §9 design note: modelled as a discriminated
// union rather than one struct with many nullable fields).
type Family int

const (
	FamilyFileCheckpoint Family = iota
	FamilyOption
	FamilyContract
	FamilyClear
	FamilyExtended
	FamilyWrite
	FamilyMemset
	FamilyMemmove
	FamilySamePage
	FamilyUnknown
)

func (f Family) String() string {
	switch f {
	case FamilyFileCheckpoint:
		return "FileCheckpoint"
	case FamilyOption:
		return "Option"
	case FamilyContract:
		return "Contract"
	case FamilyClear:
		return "Clear"
	case FamilyExtended:
		return "Extended"
	case FamilyWrite:
		return "Write"
	case FamilyMemset:
		return "Memset"
	case FamilyMemmove:
		return "Memmove"
	case FamilySamePage:
		return "SamePage"
	default:
		return "Unknown"
	}
}

const fileCheckpointOpcode = 0xFA

// fileCheckpointRecordLen matches spec §8 scenario 3's worked example
// (`write-redo --lsn 83366`, 17 bytes on disk): opcode, compressed
// space_id, compressed page_no, 8-byte lsn, seq_marker, chain_checksum,
// terminator. space_id/page_no are always forged as 0, which the
// compressed-integer format always encodes in one byte each, so this
// constant holds for EncodeFileCheckpoint's own output even though
// ParseNext decodes the two operands generically.
const fileCheckpointRecordLen = 1 + 1 + 1 + 8 + 1 + 4 + 1

// LastContext is the tagged Option<(space_id, page_no)> carried between
// same-page continuation records (spec §9 design note: a tagged variant
// rather than two parallel nullable fields). A nil *LastContext means None.
type LastContext struct {
	SpaceID uint32
	PageNo  uint32
}

// MTR is one decoded mini-transaction record.
type MTR struct {
	Family            Family
	Opcode            byte
	SpaceID           uint32
	PageNo            uint32
	Payload           []byte
	FillLength        uint32 // FamilyMemset only: run length the fill byte in Payload covers
	FileCheckpointLSN uint64
	SeqMarker         byte
	Length            int // total bytes consumed from the stream, including framing
}

func classify(b byte) Family {
	switch {
	case b == fileCheckpointOpcode:
		return FamilyFileCheckpoint
	case b&0x80 == 0x80:
		return FamilySamePage
	case b&0xF0 == 0x00:
		return FamilyOption
	case b&0xF0 == 0x10:
		return FamilyContract
	case b&0xF0 == 0x20:
		return FamilyClear
	case b&0xF0 == 0x30:
		return FamilyExtended
	case b&0xF0 == 0x40:
		return FamilyWrite
	case b&0xF0 == 0x50:
		return FamilyMemset
	case b&0xF0 == 0x60:
		return FamilyMemmove
	default:
		return FamilyUnknown
	}
}

// ParseNext decodes one MTR from the start of buf. last carries the
// (space_id, page_no) of the previous record for same-page continuations;
// ParseNext returns the updated context to carry forward.
//
// FileCheckpoint records carry the same leading compressed space_id/page_no
// pair as every other family (spec §8 scenario 3's worked example decodes
// to space_id=0, page_no=0), followed by the fixed 8-byte lsn, seq_marker,
// chain_checksum, and terminator from spec §4.5 — a chain checksum placed
// before its own terminator rather than after, unlike every other family,
// but that is the layout the writer and decoder must agree on.
func ParseNext(buf []byte, last *LastContext) (MTR, *LastContext, error) {
	if len(buf) < 1 {
		return MTR{}, last, diag.ErrTruncatedOperand
	}
	b := buf[0]
	family := classify(b)

	if family == FamilyFileCheckpoint {
		pos := 1
		spaceID, n, err := machcodec.ReadCompressedU32(buf[pos:])
		if err != nil {
			return MTR{}, last, err
		}
		pos += n
		pageNo, n, err := machcodec.ReadCompressedU32(buf[pos:])
		if err != nil {
			return MTR{}, last, err
		}
		pos += n

		if len(buf) < pos+8+1+4+1 {
			return MTR{}, last, diag.ErrTruncatedOperand
		}
		lsn, _ := machcodec.ReadU64(buf[pos:])
		pos += 8
		seqMarker := buf[pos]
		pos++
		chainEnd := pos // bytes covered by the chain checksum
		checksum, _ := machcodec.ReadU32(buf[pos:])
		pos += 4
		terminator := buf[pos]
		pos++

		mtr := MTR{
			Family:            FamilyFileCheckpoint,
			Opcode:            b,
			SpaceID:           spaceID,
			PageNo:            pageNo,
			FileCheckpointLSN: lsn,
			SeqMarker:         seqMarker,
			Length:            pos,
		}
		if terminator != 0x00 {
			return mtr, last, diag.Wrap("redolog.ParseNext", int64(pos-1), diag.ErrInvariant)
		}
		expected := machcodec.CRC32C(buf[:chainEnd])
		if expected != checksum {
			return mtr, last, diag.Wrap("redolog.ParseNext", int64(chainEnd), diag.ErrChecksumMismatch)
		}
		return mtr, last, nil
	}

	pos := 1
	var spaceID, pageNo uint32
	newLast := last

	if family == FamilySamePage {
		if last == nil {
			return MTR{}, last, diag.Wrap("redolog.ParseNext", 0, diag.ErrInvariant)
		}
		spaceID, pageNo = last.SpaceID, last.PageNo
	} else {
		sid, n, err := machcodec.ReadCompressedU32(buf[pos:])
		if err != nil {
			return MTR{}, last, err
		}
		pos += n
		pno, n, err := machcodec.ReadCompressedU32(buf[pos:])
		if err != nil {
			return MTR{}, last, err
		}
		pos += n
		spaceID, pageNo = sid, pno
		newLast = &LastContext{SpaceID: spaceID, PageNo: pageNo}
	}

	var payload []byte
	var fillLength uint32
	switch family {
	case FamilyWrite, FamilyExtended:
		length, n, err := machcodec.ReadCompressedU32(buf[pos:])
		if err != nil {
			return MTR{}, last, err
		}
		pos += n
		if len(buf) < pos+int(length) {
			return MTR{}, last, diag.ErrTruncatedOperand
		}
		payload = append([]byte(nil), buf[pos:pos+int(length)]...)
		pos += int(length)
	case FamilyMemset:
		length, n, err := machcodec.ReadCompressedU32(buf[pos:])
		if err != nil {
			return MTR{}, last, err
		}
		pos += n
		if len(buf) < pos+1 {
			return MTR{}, last, diag.ErrTruncatedOperand
		}
		payload = append([]byte(nil), buf[pos:pos+1]...)
		fillLength = length
		pos += 1
	case FamilyMemmove:
		srcOff, n, err := machcodec.ReadCompressedU32(buf[pos:])
		if err != nil {
			return MTR{}, last, err
		}
		pos += n
		length, n, err := machcodec.ReadCompressedU32(buf[pos:])
		if err != nil {
			return MTR{}, last, err
		}
		pos += n
		payload = machcodec.WriteCompressedU32(srcOff)
		payload = append(payload, machcodec.WriteCompressedU32(length)...)
	case FamilySamePage:
		length := int(b & 0x7F)
		if len(buf) < pos+length {
			return MTR{}, last, diag.ErrTruncatedOperand
		}
		payload = append([]byte(nil), buf[pos:pos+length]...)
		pos += length
	case FamilyUnknown:
		length, n, err := machcodec.ReadCompressedU32(buf[pos:])
		if err != nil {
			// Spec §4.4: when the length cannot be computed, stop parsing
			// at the current MTR rather than guessing a resync point.
			return MTR{}, last, diag.Wrap("redolog.ParseNext", 0, diag.ErrUnknownOpcode)
		}
		pos += n
		if len(buf) < pos+int(length) {
			return MTR{}, last, diag.ErrTruncatedOperand
		}
		payload = append([]byte(nil), buf[pos:pos+int(length)]...)
		pos += int(length)
	default: // Option, Contract, Clear: no extra payload
	}

	if len(buf) < pos+1 || buf[pos] != 0x00 {
		return MTR{}, last, diag.Wrap("redolog.ParseNext", int64(pos), diag.ErrInvariant)
	}
	chainEnd := pos + 1 // inclusive of the terminator
	pos = chainEnd

	if len(buf) < pos+4 {
		return MTR{}, last, diag.ErrTruncatedOperand
	}
	expectedChecksum := machcodec.CRC32C(buf[:chainEnd])
	foundChecksum, _ := machcodec.ReadU32(buf[pos:])
	pos += 4

	var advisoryErr error
	if expectedChecksum != foundChecksum {
		advisoryErr = diag.ErrInvariant
	}

	mtr := MTR{
		Family:     family,
		Opcode:     b,
		SpaceID:    spaceID,
		PageNo:     pageNo,
		Payload:    payload,
		FillLength: fillLength,
		Length:     pos,
	}
	if advisoryErr != nil {
		return mtr, newLast, diag.Wrap("redolog.ParseNext", 0, advisoryErr)
	}
	return mtr, newLast, nil
}

// EncodeFileCheckpoint forges a FileCheckpoint MTR for the given LSN
// (spec §4.5 "write-redo", spec §8 scenario 3's worked example): opcode,
// compressed space_id=0, compressed page_no=0, lsn, seq_marker,
// chain_checksum, terminator. seq_marker is written as 0; nothing
// downstream interprets it.
func EncodeFileCheckpoint(lsn uint64) []byte {
	buf := make([]byte, 0, fileCheckpointRecordLen)
	buf = append(buf, fileCheckpointOpcode)
	buf = append(buf, machcodec.WriteCompressedU32(0)...) // space_id
	buf = append(buf, machcodec.WriteCompressedU32(0)...) // page_no
	lsnBytes := make([]byte, 8)
	machcodec.PutU64(lsnBytes, lsn)
	buf = append(buf, lsnBytes...)
	buf = append(buf, 0) // seq_marker
	crc := machcodec.CRC32C(buf)
	crcBytes := make([]byte, 4)
	machcodec.PutU32(crcBytes, crc)
	buf = append(buf, crcBytes...)
	buf = append(buf, 0x00) // terminator
	return buf
}

// EncodeGeneric encodes a non-FileCheckpoint MTR with the general
// terminator + chain-checksum framing.
func EncodeGeneric(spaceID, pageNo uint32, opcode byte, payload []byte) []byte {
	buf := make([]byte, 0, 16+len(payload))
	buf = append(buf, opcode)
	buf = append(buf, machcodec.WriteCompressedU32(spaceID)...)
	buf = append(buf, machcodec.WriteCompressedU32(pageNo)...)
	buf = append(buf, payload...)
	buf = append(buf, 0x00)
	crc := machcodec.CRC32C(buf)
	crcBytes := make([]byte, 4)
	machcodec.PutU32(crcBytes, crc)
	return append(buf, crcBytes...)
}
