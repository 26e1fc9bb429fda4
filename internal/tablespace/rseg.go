package tablespace

import (
	"github.com/mariadb-tools/innodb-surgeon/internal/diag"
	"github.com/mariadb-tools/innodb-surgeon/internal/machcodec"
	"github.com/mariadb-tools/innodb-surgeon/internal/page"
)

const (
	rsegHeaderOffset  = 38
	rsegUndoSlotCount = 128
)

// Rseg is the decoded rollback-segment header page (spec §4.3).
type Rseg struct {
	Format     uint32
	HistorySize uint32
	History    FlstBaseNode
	FsegHeader FsegHeader
	UndoSlots  [rsegUndoSlotCount]uint32
	MaxTrxID   uint64
	Binlog     BinlogCoordinate
	WsrepXID   WsrepXID
}

// DecodeRseg reads a rollback segment header page. Per spec §9 open
// question, format == 0 does not by itself mean max_trx_id is absent: some
// undo tablespaces were observed with a non-zero max_trx_id despite
// format == 0. The decoder always reads the field and reports a diagnostic
// when the two disagree, rather than guessing which one is authoritative.
func DecodeRseg(pb *page.PageBuf) (*Rseg, []diag.Advisory, error) {
	buf := pb.Bytes
	if len(buf) < rsegHeaderOffset+8+FlstBaseNodeSize+FsegHeaderSize+rsegUndoSlotCount*4+8 {
		return nil, nil, diag.Wrap("tablespace.DecodeRseg", rsegHeaderOffset, diag.ErrPageTooShort)
	}

	off := rsegHeaderOffset
	var r Rseg

	format, _ := machcodec.ReadU32(buf[off:])
	off += 4
	historySize, _ := machcodec.ReadU32(buf[off:])
	off += 4
	history, err := readFlstBaseNode(buf[off:])
	if err != nil {
		return nil, nil, diag.Wrap("tablespace.DecodeRseg", int64(off), err)
	}
	off += FlstBaseNodeSize
	fsegHeader, err := readFsegHeader(buf[off:])
	if err != nil {
		return nil, nil, diag.Wrap("tablespace.DecodeRseg", int64(off), err)
	}
	off += FsegHeaderSize

	r.Format = format
	r.HistorySize = historySize
	r.History = history
	r.FsegHeader = fsegHeader

	for i := 0; i < rsegUndoSlotCount; i++ {
		v, _ := machcodec.ReadU32(buf[off:])
		r.UndoSlots[i] = v
		off += 4
	}

	maxTrxID, _ := machcodec.ReadU64(buf[off:])
	r.MaxTrxID = maxTrxID
	off += 8

	var advisories []diag.Advisory
	if format == 0 && maxTrxID != 0 {
		advisories = append(advisories, diag.NewAdvisory(diag.ErrInvariant, int64(off-8),
			"rseg format=0 but max_trx_id=%d is present", maxTrxID))
	}

	size := len(buf)
	wsrepOff := size - wsrepXIDOffsetFromEnd
	if wsrepOff >= 0 && wsrepOff+4 <= size {
		formatMarker, _ := machcodec.ReadI32(buf[wsrepOff:])
		if formatMarker == wsrepFormatMarker {
			r.WsrepXID = readWsrepXID(buf[wsrepOff:])
		}
	}
	binlogOff := size - binlogCoordOffsetFromEnd
	if binlogOff >= 0 && binlogOff+4 <= size {
		magic, _ := machcodec.ReadU32(buf[binlogOff:])
		if magic == binlogMagic {
			r.Binlog = readBinlogCoordinate(buf[binlogOff+4:])
		}
	}

	return &r, advisories, nil
}
