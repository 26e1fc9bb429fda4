// Package fixtures builds byte-exact golden buffers for the MariaDB InnoDB
// on-disk structures this module decodes and forges: FIL pages, the FSP
// header, TRX_SYS, RSEG pages, and redo log framing (header, checkpoint
// slots, blocks, MTR records). Every builder produces bytes a real decoder
// in this module should accept without complaint.
package fixtures

import (
	"encoding/binary"

	"github.com/mariadb-tools/innodb-surgeon/internal/machcodec"
	"github.com/mariadb-tools/innodb-surgeon/internal/redolog"
)

// DefaultPageSize is the InnoDB default (PAGE_SSIZE unset).
const DefaultPageSize = 16384

// FullCRC32Flags is a tablespace-flags value with FULL_CRC32 and
// POST_ANTELOPE set and PAGE_SSIZE left at 0, which page.TablespaceFlags
// resolves to the InnoDB default 16 KiB page size.
const FullCRC32Flags uint32 = 0x11

func putU32(buf []byte, off int, v uint32) { binary.BigEndian.PutUint32(buf[off:], v) }
func putU64(buf []byte, off int, v uint64) { binary.BigEndian.PutUint64(buf[off:], v) }
func putU16(buf []byte, off int, v uint16) { binary.BigEndian.PutUint16(buf[off:], v) }

// FinalizeFullCRC32Trailer stamps a FULL_CRC32 page's 4-byte trailer
// (CRC-32C over everything preceding it), letting builders above leave the
// trailer zeroed until the page body is complete.
func FinalizeFullCRC32Trailer(buf []byte) {
	crc := machcodec.CRC32C(buf[:len(buf)-4])
	putU32(buf, len(buf)-4, crc)
}

// SystemTablespacePage0 returns a 16 KiB page-0 buffer with a populated FIL
// header and FSP header: space_pages=768, free_limit=320, free_frag.len=1,
// seg_id=26, flags=FullCRC32Flags. The trailer is left unfinalized; call
// FinalizeFullCRC32Trailer before handing it to page.Parse if a valid
// checksum is required.
func SystemTablespacePage0() []byte {
	buf := make([]byte, DefaultPageSize)
	putU16(buf, 24, 8) // FIL_PAGE_TYPE = FSP_HDR

	off := 38
	putU32(buf, off, 0)                 // space_id
	putU32(buf, off+4, 0)                // not_used
	putU32(buf, off+8, 768)              // space_pages
	putU32(buf, off+12, 320)             // free_limit
	putU32(buf, off+16, FullCRC32Flags)  // flags
	putU32(buf, off+20, 1)               // free_frag_pages
	putU32(buf, off+24, 1)               // free.length
	putU32(buf, off+24+16, 1)            // free_frag.length
	// full_frag list left zeroed
	putU64(buf, off+24+16+16+16, 26) // seg_id

	return buf
}

// TrxSysPage returns a 16 KiB TRX_SYS page (space 0, page 5) with one
// active rollback-segment slot pointing at (space_id=0, page_no=6), a
// consistent doublewrite descriptor, and a binlog coordinate.
func TrxSysPage() []byte {
	buf := make([]byte, DefaultPageSize)
	putU16(buf, 24, 7) // FIL_PAGE_TYPE = TRX_SYS

	putU64(buf, 38, 1) // id_store

	const rsegArrayOffset = 70
	off := rsegArrayOffset
	putU32(buf, off, 0)   // slot 0 space_id
	putU32(buf, off+4, 6) // slot 0 page_no
	off += 8
	for i := 1; i < 128; i++ {
		putU32(buf, off, 0xFFFFFFFF)
		putU32(buf, off+4, 0xFFFFFFFF)
		off += 8
	}

	size := len(buf)
	dwOff := size - 200
	putU32(buf, dwOff, 0x2000100)
	putU32(buf, dwOff+4, 64)
	putU32(buf, dwOff+8, 128)
	putU32(buf, dwOff+12, 0x2000100)
	putU32(buf, dwOff+16, 64)
	putU32(buf, dwOff+20, 128)

	binlogOff := size - 1000
	putU32(buf, binlogOff, 0x872FD202)
	putU64(buf, binlogOff+4, 98765)
	copy(buf[binlogOff+12:], "mariadb-bin.000001")

	return buf
}

// RsegPage returns a 16 KiB rollback-segment header page with format=1,
// max_trx_id=44, and a binlog coordinate of ("mariadb-bin.000001", 7441).
func RsegPage() []byte {
	buf := make([]byte, DefaultPageSize)
	putU16(buf, 24, 6) // FIL_PAGE_TYPE = SYS

	const headerOffset = 38
	off := headerOffset
	putU32(buf, off, 1) // format != 0
	off += 4
	putU32(buf, off, 0) // history_size
	off += 4 + 16 + 10  // history list + fseg_header
	off += 128 * 4      // undo_slots
	putU64(buf, off, 44) // max_trx_id
	off += 8

	size := len(buf)
	binlogOff := size - 1000
	putU32(buf, binlogOff, 0x872FD202)
	putU64(buf, binlogOff+4, 7441)
	copy(buf[binlogOff+12:], "mariadb-bin.000001")

	return buf
}

// CorruptedRsegPage returns a variant of RsegPage with format left at zero
// while max_trx_id is still present, exercising the non-fatal advisory
// path spec decisions documented in DESIGN.md (RSEG open question).
func CorruptedRsegPage() []byte {
	buf := RsegPage()
	putU32(buf, 38, 0) // format == 0, but max_trx_id at +546 stays non-zero
	return buf
}

// RedoLogFirstLSN matches the InnoDB convention that the log stream begins
// right after the fixed header region.
const RedoLogFirstLSN = redolog.LogBlockRegionOffset

// RedoLogFile assembles a complete minimal ib_logfile0 image: header, two
// matching checkpoint slots pointing at lsn, and numBlocks blank-but-valid
// 512-byte blocks starting at RedoLogFirstLSN. Returned bytes are ready for
// redolog.DecodeFile given a temp file path.
func RedoLogFile(lsn uint64, numBlocks int) []byte {
	header := redolog.EncodeRedoHeader(redolog.RedoHeader{
		Version:  2,
		FirstLSN: RedoLogFirstLSN,
		Creator:  "MariaDB 11.4.2",
	})

	buf := make([]byte, redolog.LogBlockRegionOffset+numBlocks*redolog.LogBlockSize)
	copy(buf, header)

	slot := redolog.EncodeCheckpointSlot(lsn, lsn)
	copy(buf[redolog.CheckpointSlot0Offset:], slot)
	copy(buf[redolog.CheckpointSlot1Offset:], slot)

	for i := 0; i < numBlocks; i++ {
		block := redolog.EncodeBlock(uint16(i+1), 0, make([]byte, redolog.LogBlockPayload))
		copy(buf[redolog.LogBlockRegionOffset+i*redolog.LogBlockSize:], block)
	}
	return buf
}

// RedoLogFileWithFileCheckpoint is RedoLogFile but with a FileCheckpoint
// MTR record (spec §4.5 layout) written as the sole content of the first
// block's payload, anchoring the given checkpoint LSN.
func RedoLogFileWithFileCheckpoint(lsn uint64, numBlocks int) []byte {
	buf := RedoLogFile(lsn, numBlocks)

	record := redolog.EncodeFileCheckpoint(lsn)
	payload := make([]byte, redolog.LogBlockPayload)
	copy(payload, record)
	block := redolog.EncodeBlock(1, redolog.LogBlockHeaderSize, payload)
	copy(buf[redolog.LogBlockRegionOffset:], block)

	return buf
}

// CorruptedBlock returns a single 512-byte block whose footer CRC does not
// match its contents, for exercising the non-fatal CRCValid==false path.
func CorruptedBlock(blockNo uint16) []byte {
	block := redolog.EncodeBlock(blockNo, 0, make([]byte, redolog.LogBlockPayload))
	block[len(block)-1] ^= 0xFF
	return block
}
