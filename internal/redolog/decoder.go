package redolog

import (
	"os"

	"github.com/pkg/errors"

	"github.com/mariadb-tools/innodb-surgeon/internal/diag"
)

// Decoded is the full result of a read-redo pass: header, both checkpoint
// slots, the elected active checkpoint, every MTR in the file, and the
// file-checkpoint anchor matching that checkpoint if one was found
// (spec §6 "read-redo").
type Decoded struct {
	Header               RedoHeader
	HeaderAdvisory       diag.Advisory
	Slot0, Slot1         CheckpointSlot
	ActiveCheckpointLSN  uint64
	HasActiveCheckpoint  bool
	Records              []MTRRecord
	Advisories           []diag.Advisory
	Anchor               MTRRecord
	HasAnchor            bool
}

// DecodeFile performs a complete read-redo pass over the file at path:
// header, dual checkpoint slots, every block's MTR stream, and the
// file-checkpoint anchor for the elected active checkpoint.
func DecodeFile(path string) (*Decoded, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "redolog: open %s", path)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "redolog: stat %s", path)
	}

	headerBuf := make([]byte, redoHeaderSize)
	if _, err := f.ReadAt(headerBuf, RedoHeaderOffset); err != nil {
		return nil, errors.Wrap(err, "redolog: read header")
	}
	header, headerAdvisory, err := DecodeRedoHeader(headerBuf)
	if err != nil {
		return nil, err
	}

	slot0Buf := make([]byte, CheckpointSlotSize)
	if _, err := f.ReadAt(slot0Buf, CheckpointSlot0Offset); err != nil {
		return nil, errors.Wrap(err, "redolog: read checkpoint slot 0")
	}
	slot0, err := DecodeCheckpointSlot(slot0Buf)
	if err != nil {
		return nil, err
	}

	slot1Buf := make([]byte, CheckpointSlotSize)
	if _, err := f.ReadAt(slot1Buf, CheckpointSlot1Offset); err != nil {
		return nil, errors.Wrap(err, "redolog: read checkpoint slot 1")
	}
	slot1, err := DecodeCheckpointSlot(slot1Buf)
	if err != nil {
		return nil, err
	}

	activeLSN, hasActive := ElectActiveCheckpoint(slot0, slot1)

	numBlocks := (info.Size() - LogBlockRegionOffset) / LogBlockSize
	blocks := make([]LogBlock, 0, numBlocks)
	var blockAdvisories []diag.Advisory
	for i := int64(0); i < numBlocks; i++ {
		raw := make([]byte, LogBlockSize)
		if _, err := f.ReadAt(raw, LogBlockRegionOffset+i*LogBlockSize); err != nil {
			return nil, errors.Wrapf(err, "redolog: read block %d", i)
		}
		lb, err := ReadBlock(raw, i)
		if err != nil {
			return nil, err
		}
		if !lb.CRCValid {
			blockAdvisories = append(blockAdvisories, diag.NewAdvisory(diag.ErrBlockCrcMismatch, LogBlockRegionOffset+i*LogBlockSize, "block %d crc mismatch", i))
		}
		blocks = append(blocks, lb)
	}

	records, chainAdvisories := Chain(blocks, header.FirstLSN)
	advisories := append(blockAdvisories, chainAdvisories...)

	d := &Decoded{
		Header:              *header,
		HeaderAdvisory:      headerAdvisory,
		Slot0:               slot0,
		Slot1:               slot1,
		ActiveCheckpointLSN: activeLSN,
		HasActiveCheckpoint: hasActive,
		Records:             records,
		Advisories:          advisories,
	}
	if hasActive {
		anchor, ok := FindFileCheckpointAnchor(records, activeLSN)
		d.Anchor, d.HasAnchor = anchor, ok
	}
	return d, nil
}
