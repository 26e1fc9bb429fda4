package page

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mariadb-tools/innodb-surgeon/internal/machcodec"
)

type PageTestSuite struct {
	suite.Suite
}

func TestPageTestSuite(t *testing.T) {
	suite.Run(t, new(PageTestSuite))
}

// buildPage returns a page-sized buffer with a well-formed FIL header and a
// FULL_CRC32 trailer, pageType as given.
func buildPage(size int, pageType uint16, flags TablespaceFlags) []byte {
	buf := make([]byte, size)
	machcodec.PutU32(buf[OffPageNo:], 7)
	machcodec.PutU32(buf[OffPrev:], 6)
	machcodec.PutU32(buf[OffNext:], 8)
	machcodec.PutU64(buf[OffLSN:], 123456)
	machcodec.PutU16(buf[OffType:], pageType)
	machcodec.PutU64(buf[OffFlushLSN:], 0)
	machcodec.PutU32(buf[OffSpaceID:], 0)
	if flags.FullCRC32() {
		crc := machcodec.CRC32C(buf[:size-fullCRC32TrailerSize])
		machcodec.PutU32(buf[size-fullCRC32TrailerSize:], crc)
	}
	return buf
}

func (s *PageTestSuite) TestParseRejectsWrongSize() {
	flags := TablespaceFlags(flagsFullCRC32)
	_, err := Parse(make([]byte, 100), flags)
	s.Error(err)
}

func (s *PageTestSuite) TestParseDecodesHeaderAndClassifiesTrxSys() {
	flags := TablespaceFlags(flagsFullCRC32)
	buf := buildPage(flags.PageSize(), TypeTrxSys, flags)

	pb, err := Parse(buf, flags)
	s.Require().NoError(err)
	s.Equal(uint32(7), pb.Header.PageNo)
	s.Equal(uint32(6), pb.Header.Prev)
	s.Equal(uint32(8), pb.Header.Next)
	s.Equal(uint64(123456), pb.Header.LSN)
	s.Equal(ClassTrxSys, pb.Header.Class)
	s.True(pb.Checksum.OK)
	s.Equal("FULL_CRC32", pb.Checksum.Scheme)
}

func (s *PageTestSuite) TestParseFlagsChecksumMismatchWithoutFailing() {
	flags := TablespaceFlags(flagsFullCRC32)
	buf := buildPage(flags.PageSize(), TypeFspHdr, flags)
	buf[len(buf)-1] ^= 0xFF // corrupt the trailer

	pb, err := Parse(buf, flags)
	s.Require().NoError(err)
	s.False(pb.Checksum.OK)
	s.Equal(ClassFspHdr, pb.Header.Class)
}

func (s *PageTestSuite) TestClassifyBuckets() {
	s.Equal(ClassAllocatedButNotUsed, Classify(TypeAllocatedButNotUsed))
	s.Equal(ClassUndo, Classify(TypeUndoLog))
	s.Equal(ClassFreeList, Classify(TypeIBufFreeList))
	s.Equal(ClassExtentDesc, Classify(TypeXdes))
	s.Equal(ClassIndex, Classify(TypeIndex))
	s.Equal(ClassOther, Classify(3))
}

func (s *PageTestSuite) TestTablespaceFlagsPageSizeDefault() {
	var f TablespaceFlags
	s.Equal(16384, f.PageSize())
}

func (s *PageTestSuite) TestTablespaceFlagsPageSizeExplicit() {
	f := TablespaceFlags(3 << flagsPageSSizeShift) // ssize=3 -> 1<<12 = 4096
	s.Equal(4096, f.PageSize())
}
