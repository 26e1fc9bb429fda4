package redolog

import (
	"github.com/mariadb-tools/innodb-surgeon/internal/diag"
	"github.com/mariadb-tools/innodb-surgeon/internal/machcodec"
)

// CheckpointSlotSize is the payload this tool reads/writes at each slot
// offset; the remainder of the 0x1000-aligned slot is reserved/unused.
const CheckpointSlotSize = 8 + 8 + 4 // lsn + end_lsn + crc32c(20B described in spec, computed over the 16 preceding bytes)

// CheckpointSlot is one of the two fixed checkpoint records in the redo
// header region (spec §4.4, §8 "Checkpoint slot CRC").
type CheckpointSlot struct {
	LSN      uint64
	EndLSN   uint64
	Checksum uint32
	Valid    bool
}

// DecodeCheckpointSlot reads a slot and validates its CRC-32C trailer
// in place; an invalid CRC yields Valid == false rather than an error, so
// that the slot can still be displayed (spec §7: checkpoint slot mismatches
// are only excluded from active-coordinate election, not fatal to decode).
func DecodeCheckpointSlot(buf []byte) (CheckpointSlot, error) {
	if len(buf) < CheckpointSlotSize {
		return CheckpointSlot{}, diag.ErrPageTooShort
	}
	lsn, _ := machcodec.ReadU64(buf[0:])
	endLSN, _ := machcodec.ReadU64(buf[8:])
	checksum, _ := machcodec.ReadU32(buf[16:])
	expected := machcodec.CRC32C(buf[0:16])
	return CheckpointSlot{LSN: lsn, EndLSN: endLSN, Checksum: checksum, Valid: expected == checksum}, nil
}

// EncodeCheckpointSlot serialises a slot, recomputing its CRC-32C trailer
// over lsn_be || end_lsn_be.
func EncodeCheckpointSlot(lsn, endLSN uint64) []byte {
	buf := make([]byte, CheckpointSlotSize)
	machcodec.PutU64(buf[0:], lsn)
	machcodec.PutU64(buf[8:], endLSN)
	crc := machcodec.CRC32C(buf[0:16])
	machcodec.PutU32(buf[16:], crc)
	return buf
}

// ElectActiveCheckpoint returns the LSN of the slot with the highest LSN
// among those with a valid CRC (spec §4.4 "Checkpoint coordination").
// ok is false when neither slot validates.
func ElectActiveCheckpoint(slot0, slot1 CheckpointSlot) (lsn uint64, ok bool) {
	var best uint64
	found := false
	if slot0.Valid {
		best = slot0.LSN
		found = true
	}
	if slot1.Valid && (!found || slot1.LSN > best) {
		best = slot1.LSN
		found = true
	}
	return best, found
}
