package machcodec

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type MachCodecTestSuite struct {
	suite.Suite
}

func TestMachCodecTestSuite(t *testing.T) {
	suite.Run(t, new(MachCodecTestSuite))
}

func (s *MachCodecTestSuite) TestFixedWidthRoundTrip() {
	buf := make([]byte, 8)
	PutU64(buf, 0x0102030405060708)
	v, err := ReadU64(buf)
	s.Require().NoError(err)
	s.Equal(uint64(0x0102030405060708), v)

	PutU32(buf[:4], 0xCAFEBABE)
	v32, err := ReadU32(buf[:4])
	s.Require().NoError(err)
	s.Equal(uint32(0xCAFEBABE), v32)

	PutU16(buf[:2], 0xBEEF)
	v16, err := ReadU16(buf[:2])
	s.Require().NoError(err)
	s.Equal(uint16(0xBEEF), v16)
}

func (s *MachCodecTestSuite) TestCompressedUnsignedRoundTrip() {
	values := []uint32{0, 1, 0x7F, 0x80, 0x3FFF, 0x4000, 0x1FFFFF, 0x200000, 0xFFFFFFF, 0x10000000, 0xFFFFFFFF}
	for _, v := range values {
		enc := WriteCompressedU32(v)
		got, n, err := ReadCompressedU32(enc)
		s.Require().NoError(err)
		s.Equal(v, got, "value %d", v)
		s.Equal(len(enc), n)
	}
}

func (s *MachCodecTestSuite) TestCompressedUnsignedTruncated() {
	enc := WriteCompressedU32(0x4000)
	_, _, err := ReadCompressedU32(enc[:1])
	s.Error(err)
}

func (s *MachCodecTestSuite) TestCompressedSignedRoundTrip() {
	values := []int32{0, 1, -1, 1000, -1000, 1 << 20, -(1 << 20)}
	for _, v := range values {
		enc := WriteCompressedI32(v)
		got, n, err := ReadCompressedI32(enc)
		s.Require().NoError(err)
		s.Equal(v, got)
		s.Equal(len(enc), n)
	}
}

func (s *MachCodecTestSuite) TestCRC32CReferenceVectors() {
	s.Equal(uint32(0x00000000), CRC32C([]byte("")))
	s.Equal(uint32(0xE3069283), CRC32C([]byte("123456789")))
}

func (s *MachCodecTestSuite) TestInnoDBCRC32Deterministic() {
	a := InnoDBCRC32([]byte("innodb legacy checksum"))
	b := InnoDBCRC32([]byte("innodb legacy checksum"))
	s.Equal(a, b)
	s.NotEqual(a, CRC32C([]byte("innodb legacy checksum")), "legacy and FULL_CRC32 schemes must diverge")
}
