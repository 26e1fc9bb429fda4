package tablespace

import (
	"github.com/mariadb-tools/innodb-surgeon/internal/diag"
	"github.com/mariadb-tools/innodb-surgeon/internal/machcodec"
	"github.com/mariadb-tools/innodb-surgeon/internal/page"
)

// FspHeaderOffset is where the FSP header begins, right after the FIL
// header (spec §4.3).
const FspHeaderOffset = 38

// FspHeader is the decoded FSP_HDR structure on page 0 of a tablespace.
type FspHeader struct {
	SpaceID        uint32
	NotUsed        uint32
	SpacePages     uint32
	FreeLimit      uint32
	Flags          uint32
	FreeFragPages  uint32
	Free           FlstBaseNode
	FreeFrag       FlstBaseNode
	FullFrag       FlstBaseNode
	SegID          uint64
	SegInodesFull  FlstBaseNode
	SegInodesFree  FlstBaseNode
}

// DecodeFspHeader reads the FSP header out of a decoded FSP_HDR page and
// cross-checks its embedded flags against the tablespace-level flags passed
// in by the caller (spec §4.3: "must agree").
func DecodeFspHeader(pb *page.PageBuf, tablespaceFlags uint32) (*FspHeader, []diag.Advisory, error) {
	if pb.Header.Class != page.ClassFspHdr {
		return nil, nil, diag.Wrap("tablespace.DecodeFspHeader", 0, diag.ErrUnexpectedPageType)
	}
	buf := pb.Bytes[FspHeaderOffset:]
	if len(buf) < 3*4+3*FlstBaseNodeSize+8+4 {
		return nil, nil, diag.Wrap("tablespace.DecodeFspHeader", int64(FspHeaderOffset), diag.ErrPageTooShort)
	}

	var h FspHeader
	off := 0
	readU32 := func() uint32 {
		v, _ := machcodec.ReadU32(buf[off:])
		off += 4
		return v
	}
	readList := func() FlstBaseNode {
		n, _ := readFlstBaseNode(buf[off:])
		off += FlstBaseNodeSize
		return n
	}

	h.SpaceID = readU32()
	h.NotUsed = readU32()
	h.SpacePages = readU32()
	h.FreeLimit = readU32()
	h.Flags = readU32()
	h.FreeFragPages = readU32()
	h.Free = readList()
	h.FreeFrag = readList()
	h.FullFrag = readList()
	segID, _ := machcodec.ReadU64(buf[off:])
	h.SegID = segID
	off += 8
	h.SegInodesFull = readList()
	h.SegInodesFree = readList()

	var advisories []diag.Advisory
	if h.Flags != tablespaceFlags {
		advisories = append(advisories, diag.NewAdvisory(diag.ErrInvariant, FspHeaderOffset+16,
			"fsp header flags 0x%x disagree with tablespace flags 0x%x", h.Flags, tablespaceFlags))
	}
	return &h, advisories, nil
}
