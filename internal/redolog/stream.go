package redolog

import (
	"github.com/mariadb-tools/innodb-surgeon/internal/diag"
)

// MTRRecord pairs a decoded MTR with its starting LSN and any non-fatal
// diagnostic produced while decoding it.
type MTRRecord struct {
	StartLSN uint64
	MTR      MTR
	Advisory error
}

// Chain reassembles the MTR stream across a run of already-read blocks and
// decodes every record in order (spec §4.4 "MTR stream"). Blocks whose CRC
// failed to validate still contribute their payload bytes; callers who want
// to resync instead should restart Chain at a block's FirstRecGroupOffset.
func Chain(blocks []LogBlock, firstLSN uint64) ([]MTRRecord, []diag.Advisory) {
	if len(blocks) == 0 {
		return nil, nil
	}

	payload := make([]byte, 0, len(blocks)*LogBlockPayload)
	for _, b := range blocks {
		payload = append(payload, b.Payload[:]...)
	}

	startLSN := firstLSN + uint64(blocks[0].Index)*LogBlockPayload

	var records []MTRRecord
	var advisories []diag.Advisory
	var last *LastContext
	pos := 0
	for pos < len(payload) {
		mtr, newLast, err := ParseNext(payload[pos:], last)
		if err != nil {
			advisories = append(advisories, diag.NewAdvisory(diag.ErrUnknownOpcode, int64(pos), "mtr stream: %v", err))
			break
		}
		records = append(records, MTRRecord{StartLSN: startLSN + uint64(pos), MTR: mtr})
		last = newLast
		pos += mtr.Length
	}
	return records, advisories
}

// FindFileCheckpointAnchor scans decoded records for the FileCheckpoint
// whose embedded LSN equals the active checkpoint LSN (spec §4.4
// "Checkpoint coordination"). ok is false if no such record exists.
func FindFileCheckpointAnchor(records []MTRRecord, activeCheckpointLSN uint64) (MTRRecord, bool) {
	for _, r := range records {
		if r.MTR.Family == FamilyFileCheckpoint && r.MTR.FileCheckpointLSN == activeCheckpointLSN {
			return r, true
		}
	}
	return MTRRecord{}, false
}
