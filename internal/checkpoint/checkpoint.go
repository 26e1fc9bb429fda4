// Package checkpoint implements the forging writer that stamps a synthetic
// FileCheckpoint mini-transaction and checkpoint-slot pair into a redo log
// file at a caller-chosen LSN (spec §4.5 "Checkpoint writer").
package checkpoint

import (
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/mariadb-tools/innodb-surgeon/internal/diag"
	"github.com/mariadb-tools/innodb-surgeon/internal/machcodec"
	"github.com/mariadb-tools/innodb-surgeon/internal/redolog"
)

// ForgeCheckpoint writes a synthetic FileCheckpoint record at LSN lsn into
// srcPath, producing srcPath+".new" and leaving srcPath untouched. capacity
// and firstLSN describe the redo file's addressable LSN range as read from
// its header. Returns an error wrapping diag.ErrLsnOutsideCapacity (exit
// code 5, spec §6) when lsn falls outside [firstLSN, firstLSN+capacity).
func ForgeCheckpoint(srcPath string, firstLSN, capacity, lsn uint64) (outPath string, err error) {
	record := redolog.EncodeFileCheckpoint(lsn)
	pos := redolog.LSNToOffset(lsn, firstLSN)

	if lsn < firstLSN || lsn+uint64(len(record)) >= firstLSN+capacity {
		return "", errors.Wrapf(diag.ErrLsnOutsideCapacity, "checkpoint: lsn %d with record length %d exceeds capacity [%d, %d)", lsn, len(record), firstLSN, firstLSN+capacity)
	}

	outPath = srcPath + ".new"
	if err := copyFile(srcPath, outPath); err != nil {
		return "", err
	}

	out, err := os.OpenFile(outPath, os.O_RDWR, 0o644)
	if err != nil {
		return "", errors.Wrapf(err, "checkpoint: open %s", outPath)
	}
	defer out.Close()

	if err := writeRecordAcrossBlocks(out, pos, record); err != nil {
		return "", err
	}
	if err := rewriteCheckpointSlots(out, lsn); err != nil {
		return "", err
	}
	if err := out.Sync(); err != nil {
		return "", errors.Wrapf(err, "checkpoint: fsync %s", outPath)
	}

	if err := verify(outPath, firstLSN, lsn); err != nil {
		return "", err
	}
	return outPath, nil
}

func copyFile(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return errors.Wrapf(err, "checkpoint: open source %s", srcPath)
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return errors.Wrapf(err, "checkpoint: stat %s", srcPath)
	}

	dst, err := os.OpenFile(dstPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return errors.Wrapf(err, "checkpoint: create %s", dstPath)
	}
	defer dst.Close()

	if err := dst.Truncate(info.Size()); err != nil {
		return errors.Wrapf(err, "checkpoint: truncate %s", dstPath)
	}
	if _, err := io.Copy(dst, src); err != nil {
		return errors.Wrapf(err, "checkpoint: copy %s to %s", srcPath, dstPath)
	}
	return nil
}

// writeRecordAcrossBlocks writes record at byte offset pos, splitting it
// across a block boundary if necessary and recomputing every block's CRC-32C
// footer it touches (spec §4.5 step 4-5).
func writeRecordAcrossBlocks(out *os.File, pos int64, record []byte) error {
	firstBlockOffset := redolog.LogBlockRegionOffset + ((pos - redolog.LogBlockRegionOffset) / redolog.LogBlockSize * redolog.LogBlockSize)

	remaining := record
	writePos := pos
	blockOffset := firstBlockOffset

	for len(remaining) > 0 {
		raw := make([]byte, redolog.LogBlockSize)
		if _, err := out.ReadAt(raw, blockOffset); err != nil {
			return errors.Wrapf(err, "checkpoint: read block at 0x%x", blockOffset)
		}
		withinBlock := int(writePos - blockOffset)
		capacityInBlock := redolog.LogBlockSize - redolog.LogBlockFooterSize - withinBlock
		n := len(remaining)
		if n > capacityInBlock {
			n = capacityInBlock
		}
		copy(raw[withinBlock:withinBlock+n], remaining[:n])

		blockNo, _ := machcodec.ReadU16(raw[0:])
		firstRecGroup, _ := machcodec.ReadU16(raw[2:])
		reencoded := redolog.EncodeBlock(blockNo, firstRecGroup, raw[redolog.LogBlockHeaderSize:redolog.LogBlockSize-redolog.LogBlockFooterSize])
		if _, err := out.WriteAt(reencoded, blockOffset); err != nil {
			return errors.Wrapf(err, "checkpoint: write block at 0x%x", blockOffset)
		}

		remaining = remaining[n:]
		writePos += int64(n)
		blockOffset += redolog.LogBlockSize
	}
	return nil
}

func rewriteCheckpointSlots(out *os.File, lsn uint64) error {
	slot := redolog.EncodeCheckpointSlot(lsn, lsn)
	if _, err := out.WriteAt(slot, redolog.CheckpointSlot0Offset); err != nil {
		return errors.Wrap(err, "checkpoint: write slot 0")
	}
	if _, err := out.WriteAt(slot, redolog.CheckpointSlot1Offset); err != nil {
		return errors.Wrap(err, "checkpoint: write slot 1")
	}
	return nil
}

// verify re-decodes the written file and confirms the invariants spec §4.5
// promises: both slots carry a CRC-valid copy of lsn, and the FileCheckpoint
// record decodes cleanly at pos(lsn).
func verify(path string, firstLSN, lsn uint64) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "checkpoint: reopen %s for verification", path)
	}
	defer f.Close()

	slot0Buf := make([]byte, redolog.CheckpointSlotSize)
	if _, err := f.ReadAt(slot0Buf, redolog.CheckpointSlot0Offset); err != nil {
		return errors.Wrap(err, "checkpoint: verify slot 0")
	}
	slot0, err := redolog.DecodeCheckpointSlot(slot0Buf)
	if err != nil {
		return err
	}
	if !slot0.Valid || slot0.LSN != lsn {
		return errors.Wrapf(diag.ErrInvariant, "checkpoint: slot 0 verification failed, got lsn=%d valid=%v", slot0.LSN, slot0.Valid)
	}

	pos := redolog.LSNToOffset(lsn, firstLSN)
	recordBuf := make([]byte, len(redolog.EncodeFileCheckpoint(lsn)))
	if _, err := f.ReadAt(recordBuf, pos); err != nil {
		return errors.Wrap(err, "checkpoint: verify file checkpoint record")
	}
	mtr, _, err := redolog.ParseNext(recordBuf, nil)
	if err != nil {
		return err
	}
	if mtr.Family != redolog.FamilyFileCheckpoint || mtr.FileCheckpointLSN != lsn {
		return errors.Wrapf(diag.ErrInvariant, "checkpoint: re-decoded anchor lsn=%d want %d", mtr.FileCheckpointLSN, lsn)
	}
	return nil
}
