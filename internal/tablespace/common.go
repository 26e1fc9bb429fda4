// Package tablespace decodes the fixed-position structures carried by the
// InnoDB system tablespace: the FSP header, the TRX_SYS page, and rollback
// segment (RSEG) pages, plus the auxiliary coordinates MariaDB stashes
// inside them (binlog position, WSREP XID) (spec §3, §4.3).
package tablespace

import (
	"github.com/mariadb-tools/innodb-surgeon/internal/diag"
	"github.com/mariadb-tools/innodb-surgeon/internal/machcodec"
)

// FlstBaseNode is flst_base_node_t: the 16-byte header of an intrusive
// doubly linked list of file-address pointers (spec GLOSSARY "flst").
type FlstBaseNode struct {
	Length   uint32
	FirstPage uint32
	FirstByte uint16
	LastPage  uint32
	LastByte  uint16
}

const FlstBaseNodeSize = 16

func readFlstBaseNode(buf []byte) (FlstBaseNode, error) {
	if len(buf) < FlstBaseNodeSize {
		return FlstBaseNode{}, diag.ErrTruncatedOperand
	}
	length, _ := machcodec.ReadU32(buf[0:])
	firstPage, _ := machcodec.ReadU32(buf[4:])
	firstByte, _ := machcodec.ReadU16(buf[8:])
	lastPage, _ := machcodec.ReadU32(buf[10:])
	lastByte, _ := machcodec.ReadU16(buf[14:])
	return FlstBaseNode{
		Length:    length,
		FirstPage: firstPage,
		FirstByte: firstByte,
		LastPage:  lastPage,
		LastByte:  lastByte,
	}, nil
}

// FsegHeader is fseg_header_t: a pointer to a file segment's inode entry.
type FsegHeader struct {
	SpaceID uint32
	PageNo  uint32
	Offset  uint16
}

const FsegHeaderSize = 10

func readFsegHeader(buf []byte) (FsegHeader, error) {
	if len(buf) < FsegHeaderSize {
		return FsegHeader{}, diag.ErrTruncatedOperand
	}
	spaceID, _ := machcodec.ReadU32(buf[0:])
	pageNo, _ := machcodec.ReadU32(buf[4:])
	offset, _ := machcodec.ReadU16(buf[8:])
	return FsegHeader{SpaceID: spaceID, PageNo: pageNo, Offset: offset}, nil
}

// BinlogCoordinate is the binary log position MariaDB stores in the
// TRX_SYS and RSEG pages so that a crash-recovered server (or an XtraBackup
// style tool) can report the replication position of the tablespace
// (spec §4.3 "binlog coordinate").
type BinlogCoordinate struct {
	Present bool
	Name    string
	Offset  uint64
}

const (
	binlogNameSize = 60
	binlogCoordinateSize = 8 + binlogNameSize
)

func readBinlogCoordinate(buf []byte) BinlogCoordinate {
	if len(buf) < binlogCoordinateSize {
		return BinlogCoordinate{}
	}
	offset, _ := machcodec.ReadU64(buf[0:])
	nameBytes := buf[8:binlogCoordinateSize]
	n := 0
	for n < len(nameBytes) && nameBytes[n] != 0 {
		n++
	}
	if n == 0 {
		return BinlogCoordinate{}
	}
	return BinlogCoordinate{Present: true, Name: string(nameBytes[:n]), Offset: offset}
}

// WsrepXID is the Galera/WSREP replication XID MariaDB stores alongside the
// binlog coordinate (spec §4.3 "WSREP XID").
type WsrepXID struct {
	Present    bool
	FormatID   int32
	TrxID      uint64
	UUID       [16]byte
	SeqNo      int64
}

const wsrepXIDSize = 4 + 16 + 8 + 4 // formatID + uuid + seqno + extra padding field

func readWsrepXID(buf []byte) WsrepXID {
	if len(buf) < wsrepXIDSize {
		return WsrepXID{}
	}
	formatID, _ := machcodec.ReadI32(buf[0:])
	if formatID <= 0 {
		return WsrepXID{}
	}
	var uuid [16]byte
	copy(uuid[:], buf[4:20])
	seqNo, _ := machcodec.ReadI64(buf[20:])
	return WsrepXID{Present: true, FormatID: formatID, UUID: uuid, SeqNo: seqNo}
}
