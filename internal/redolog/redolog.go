// Package redolog decodes and forges MariaDB InnoDB redo log files:
// ib_logfile0's header, dual checkpoint slots, 512-byte block framing, and
// the mini-transaction record (MTR) stream carried in block payloads
// (spec §3, §4.4).
package redolog

import (
	"github.com/pkg/errors"

	"github.com/mariadb-tools/innodb-surgeon/internal/diag"
	"github.com/mariadb-tools/innodb-surgeon/internal/machcodec"
)

// Layout constants for the redo file (spec §4.4).
const (
	RedoHeaderOffset     = 0x0000
	CheckpointSlot0Offset = 0x1000
	CheckpointSlot1Offset = 0x2000
	LogBlockRegionOffset  = 0x3000

	LogBlockSize       = 512
	LogBlockHeaderSize = 4
	LogBlockFooterSize = 4
	LogBlockPayload    = LogBlockSize - LogBlockHeaderSize - LogBlockFooterSize // 504

	redoHeaderCreatorSize = 32
	redoHeaderSize        = 4 + 8 + redoHeaderCreatorSize + 4 // version + first_lsn + creator + crc32c
)

// RedoHeader is the fixed header at the start of the redo log file.
type RedoHeader struct {
	Version  uint32
	FirstLSN uint64
	Creator  string
	Checksum uint32
}

// DecodeRedoHeader reads the 0x0000 header block. The checksum covers
// version + first_lsn + creator (everything preceding the checksum field
// itself), consistent with every other CRC-32C trailer in this format.
func DecodeRedoHeader(buf []byte) (*RedoHeader, diag.Advisory, error) {
	if len(buf) < redoHeaderSize {
		return nil, diag.Advisory{}, diag.Wrap("redolog.DecodeRedoHeader", RedoHeaderOffset, diag.ErrPageTooShort)
	}
	version, _ := machcodec.ReadU32(buf[0:])
	firstLSN, _ := machcodec.ReadU64(buf[4:])
	creatorBytes := buf[12 : 12+redoHeaderCreatorSize]
	n := 0
	for n < len(creatorBytes) && creatorBytes[n] != 0 {
		n++
	}
	creator := string(creatorBytes[:n])
	checksum, _ := machcodec.ReadU32(buf[12+redoHeaderCreatorSize:])

	h := &RedoHeader{Version: version, FirstLSN: firstLSN, Creator: creator, Checksum: checksum}

	expected := machcodec.CRC32C(buf[0 : 12+redoHeaderCreatorSize])
	var adv diag.Advisory
	if expected != checksum {
		adv = diag.NewAdvisory(diag.ErrChecksumMismatch, RedoHeaderOffset, "redo header checksum: want 0x%x, got 0x%x", expected, checksum)
	}
	return h, adv, nil
}

// EncodeRedoHeader serialises h into a LogBlockSize-aligned header block,
// recomputing the CRC-32C trailer.
func EncodeRedoHeader(h RedoHeader) []byte {
	buf := make([]byte, redoHeaderSize)
	machcodec.PutU32(buf[0:], h.Version)
	machcodec.PutU64(buf[4:], h.FirstLSN)
	copy(buf[12:12+redoHeaderCreatorSize], h.Creator)
	crc := machcodec.CRC32C(buf[0 : 12+redoHeaderCreatorSize])
	machcodec.PutU32(buf[12+redoHeaderCreatorSize:], crc)
	return buf
}

// LSNToOffset maps a logical LSN to its byte position in the log file
// (spec §4.4, §8 "Round-trip LSN <-> file offset").
func LSNToOffset(lsn, firstLSN uint64) int64 {
	delta := lsn - firstLSN
	blockIdx := delta / LogBlockPayload
	within := delta % LogBlockPayload
	return int64(LogBlockRegionOffset) + int64(blockIdx)*LogBlockSize + LogBlockHeaderSize + int64(within)
}

// OffsetToLSN is the inverse of LSNToOffset.
func OffsetToLSN(offset int64, firstLSN uint64) (uint64, error) {
	rel := offset - LogBlockRegionOffset
	if rel < 0 {
		return 0, errors.Errorf("redolog: offset 0x%x precedes log block region", offset)
	}
	blockIdx := rel / LogBlockSize
	withinBlock := rel % LogBlockSize
	if withinBlock < LogBlockHeaderSize || withinBlock >= LogBlockHeaderSize+LogBlockPayload {
		return 0, errors.Errorf("redolog: offset 0x%x falls inside block header/footer", offset)
	}
	within := withinBlock - LogBlockHeaderSize
	return firstLSN + uint64(blockIdx)*LogBlockPayload + uint64(within), nil
}
