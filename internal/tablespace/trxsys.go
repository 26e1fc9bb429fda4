package tablespace

import (
	"github.com/mariadb-tools/innodb-surgeon/internal/diag"
	"github.com/mariadb-tools/innodb-surgeon/internal/machcodec"
	"github.com/mariadb-tools/innodb-surgeon/internal/page"
)

const (
	trxSysIDStoreOffset     = 38
	trxSysFsegHeaderOffset  = 46
	trxSysRsegArrayOffset   = 70
	trxSysRsegSlotCount     = 128

	wsrepXIDOffsetFromEnd      = 1200
	binlogCoordOffsetFromEnd   = 1000
	doublewriteOffsetFromEnd   = 200

	binlogMagic      = 0x872FD202
	doublewriteMagic = 0x2000100
	wsrepFormatMarker = 6
)

// RollbackSegmentSlot is one entry of the 128-slot rollback-segment
// directory on the TRX_SYS page (spec §4.3).
type RollbackSegmentSlot struct {
	SpaceID uint32
	PageNo  uint32
}

// Active reports whether this slot points at a real rollback segment
// (InnoDB marks unused slots with page_no == 0xFFFFFFFF).
func (s RollbackSegmentSlot) Active() bool { return s.PageNo != 0xFFFFFFFF }

// DoublewriteDescriptor is the pair of doublewrite-buffer extent
// descriptors MariaDB stores near the end of the TRX_SYS page, duplicated
// for crash safety (spec §8 "Doublewrite consistency").
type DoublewriteDescriptor struct {
	Present       bool
	Magic1        uint32
	Block1Copy1   uint32
	Block2Copy1   uint32
	Magic2        uint32
	Block1Copy2   uint32
	Block2Copy2   uint32
}

// Consistent reports whether both copies of (magic, block1, block2) agree
// bytewise, the invariant spec §8 quantifies.
func (d DoublewriteDescriptor) Consistent() bool {
	return d.Magic1 == d.Magic2 && d.Block1Copy1 == d.Block1Copy2 && d.Block2Copy1 == d.Block2Copy2
}

// TrxSys is the decoded transaction-system header page (space 0, page 5).
type TrxSys struct {
	IDStore      uint64
	FsegHeader   FsegHeader
	Rsegs        [trxSysRsegSlotCount]RollbackSegmentSlot
	WsrepXID     WsrepXID
	Binlog       BinlogCoordinate
	Doublewrite  DoublewriteDescriptor
}

// DecodeTrxSys reads the TRX_SYS page's fixed-offset fields.
func DecodeTrxSys(pb *page.PageBuf) (*TrxSys, []diag.Advisory, error) {
	if pb.Header.Class != page.ClassTrxSys {
		return nil, nil, diag.Wrap("tablespace.DecodeTrxSys", 0, diag.ErrUnexpectedPageType)
	}
	buf := pb.Bytes

	idStore, err := machcodec.ReadU64(buf[trxSysIDStoreOffset:])
	if err != nil {
		return nil, nil, diag.Wrap("tablespace.DecodeTrxSys", trxSysIDStoreOffset, err)
	}
	fsegHeader, err := readFsegHeader(buf[trxSysFsegHeaderOffset:])
	if err != nil {
		return nil, nil, diag.Wrap("tablespace.DecodeTrxSys", trxSysFsegHeaderOffset, err)
	}

	var t TrxSys
	t.IDStore = idStore
	t.FsegHeader = fsegHeader

	off := trxSysRsegArrayOffset
	for i := 0; i < trxSysRsegSlotCount; i++ {
		spaceID, _ := machcodec.ReadU32(buf[off:])
		pageNo, _ := machcodec.ReadU32(buf[off+4:])
		t.Rsegs[i] = RollbackSegmentSlot{SpaceID: spaceID, PageNo: pageNo}
		off += 8
	}

	size := len(buf)
	var advisories []diag.Advisory

	wsrepOff := size - wsrepXIDOffsetFromEnd
	if wsrepOff >= 0 && wsrepOff+4 <= size {
		formatMarker, _ := machcodec.ReadI32(buf[wsrepOff:])
		if formatMarker == wsrepFormatMarker {
			t.WsrepXID = readWsrepXID(buf[wsrepOff:])
		}
	}

	binlogOff := size - binlogCoordOffsetFromEnd
	if binlogOff >= 0 && binlogOff+4 <= size {
		magic, _ := machcodec.ReadU32(buf[binlogOff:])
		if magic == binlogMagic {
			t.Binlog = readBinlogCoordinate(buf[binlogOff+4:])
		}
	}

	dwOff := size - doublewriteOffsetFromEnd
	if dwOff >= 0 {
		dw, ok := readDoublewrite(buf[dwOff:])
		if ok {
			t.Doublewrite = dw
			if !dw.Consistent() {
				advisories = append(advisories, diag.NewAdvisory(diag.ErrInvariant, int64(dwOff),
					"doublewrite descriptor copies disagree"))
			}
		}
	}

	return &t, advisories, nil
}

func readDoublewrite(buf []byte) (DoublewriteDescriptor, bool) {
	const entrySize = 12 // magic u32 + block1 u32 + block2 u32
	if len(buf) < 2*entrySize {
		return DoublewriteDescriptor{}, false
	}
	magic1, _ := machcodec.ReadU32(buf[0:])
	if magic1 != doublewriteMagic {
		return DoublewriteDescriptor{}, false
	}
	b1c1, _ := machcodec.ReadU32(buf[4:])
	b2c1, _ := machcodec.ReadU32(buf[8:])
	magic2, _ := machcodec.ReadU32(buf[12:])
	b1c2, _ := machcodec.ReadU32(buf[16:])
	b2c2, _ := machcodec.ReadU32(buf[20:])
	return DoublewriteDescriptor{
		Present:     true,
		Magic1:      magic1,
		Block1Copy1: b1c1,
		Block2Copy1: b2c1,
		Magic2:      magic2,
		Block1Copy2: b1c2,
		Block2Copy2: b2c2,
	}, true
}
