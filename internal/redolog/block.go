package redolog

import (
	"io"

	"github.com/pkg/errors"

	"github.com/mariadb-tools/innodb-surgeon/internal/diag"
	"github.com/mariadb-tools/innodb-surgeon/internal/machcodec"
)

// LogBlock is one decoded 512-byte redo log block: header, payload, and the
// outcome of its CRC-32C footer check (spec §4.4 "Block reading").
type LogBlock struct {
	Index               int64
	BlockNo             uint16
	FirstRecGroupOffset uint16
	Payload             [LogBlockPayload]byte
	CRCValid            bool
}

// ReadBlock decodes the block at the given file offset (must be
// LogBlockRegionOffset + index*LogBlockSize). A CRC mismatch is reported via
// CRCValid == false, not an error: spec §7 marks block checksums non-fatal.
func ReadBlock(raw []byte, index int64) (LogBlock, error) {
	if len(raw) != LogBlockSize {
		return LogBlock{}, diag.Wrap("redolog.ReadBlock", index*LogBlockSize, diag.ErrPageTooShort)
	}
	blockNo, _ := machcodec.ReadU16(raw[0:])
	firstRecGroup, _ := machcodec.ReadU16(raw[2:])

	var lb LogBlock
	lb.Index = index
	lb.BlockNo = blockNo
	lb.FirstRecGroupOffset = firstRecGroup
	copy(lb.Payload[:], raw[LogBlockHeaderSize:LogBlockHeaderSize+LogBlockPayload])

	expected := machcodec.CRC32C(raw[:LogBlockSize-LogBlockFooterSize])
	found, _ := machcodec.ReadU32(raw[LogBlockSize-LogBlockFooterSize:])
	lb.CRCValid = expected == found
	return lb, nil
}

// EncodeBlock serialises a block, recomputing the CRC-32C footer over the
// header+payload bytes (spec §8 "Block CRC idempotence").
func EncodeBlock(blockNo, firstRecGroupOffset uint16, payload []byte) []byte {
	buf := make([]byte, LogBlockSize)
	machcodec.PutU16(buf[0:], blockNo)
	machcodec.PutU16(buf[2:], firstRecGroupOffset)
	copy(buf[LogBlockHeaderSize:], payload)
	crc := machcodec.CRC32C(buf[:LogBlockSize-LogBlockFooterSize])
	machcodec.PutU32(buf[LogBlockSize-LogBlockFooterSize:], crc)
	return buf
}

// BlockSource abstracts a readable log file for IterBlocks, satisfied by
// *os.File and by any io.ReaderAt (test doubles included).
type BlockSource interface {
	ReadAt(p []byte, off int64) (int, error)
}

// IterBlocks yields successive blocks starting at startLSN's containing
// block until EOF. The callback receives the decoded block; returning a
// non-nil error from fn stops iteration and is propagated.
func IterBlocks(src BlockSource, firstLSN, startLSN uint64, fn func(LogBlock) error) error {
	startOffset := LSNToOffset(startLSN, firstLSN)
	blockOffset := LogBlockRegionOffset + ((startOffset - LogBlockRegionOffset) / LogBlockSize) * LogBlockSize
	index := (blockOffset - LogBlockRegionOffset) / LogBlockSize

	raw := make([]byte, LogBlockSize)
	for {
		n, err := src.ReadAt(raw, blockOffset)
		if errors.Is(err, io.EOF) && n == LogBlockSize {
			err = nil
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return errors.Wrapf(err, "redolog: read block at 0x%x", blockOffset)
		}
		lb, err := ReadBlock(raw, index)
		if err != nil {
			return err
		}
		if err := fn(lb); err != nil {
			return err
		}
		blockOffset += LogBlockSize
		index++
	}
}
