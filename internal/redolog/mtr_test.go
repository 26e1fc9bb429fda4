package redolog

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mariadb-tools/innodb-surgeon/internal/machcodec"
)

type MTRTestSuite struct {
	suite.Suite
}

func TestMTRTestSuite(t *testing.T) {
	suite.Run(t, new(MTRTestSuite))
}

func (s *MTRTestSuite) TestFileCheckpointRoundTrip() {
	buf := EncodeFileCheckpoint(83366)
	s.Len(buf, fileCheckpointRecordLen)

	mtr, _, err := ParseNext(buf, nil)
	s.Require().NoError(err)
	s.Equal(FamilyFileCheckpoint, mtr.Family)
	s.Equal(uint64(83366), mtr.FileCheckpointLSN)
	s.Equal(fileCheckpointRecordLen, mtr.Length)
}

func (s *MTRTestSuite) TestFileCheckpointRejectsBadChainChecksum() {
	buf := EncodeFileCheckpoint(83366)
	buf[12] ^= 0xFF // first byte of the chain_checksum field
	_, _, err := ParseNext(buf, nil)
	s.Error(err)
}

// TestFileCheckpointMatchesWorkedExample pins the decoder against spec §8
// scenario 3's literal forged bytes for `write-redo --lsn 83366` (seq_marker
// 0x01 there, unlike EncodeFileCheckpoint's own choice of 0 — nothing
// downstream interprets that byte, so only the decode side is pinned here).
func (s *MTRTestSuite) TestFileCheckpointMatchesWorkedExample() {
	example := []byte{0xFA, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x45, 0xA6, 0x01, 0xDC, 0x36, 0xF7, 0x9C, 0x00}
	s.Len(example, fileCheckpointRecordLen)

	mtr, _, err := ParseNext(example, nil)
	s.Require().NoError(err)
	s.Equal(FamilyFileCheckpoint, mtr.Family)
	s.Equal(uint32(0), mtr.SpaceID)
	s.Equal(uint32(0), mtr.PageNo)
	s.Equal(uint64(83366), mtr.FileCheckpointLSN)
	s.Equal(byte(0x01), mtr.SeqMarker)
	s.Len(example, mtr.Length)
}

func (s *MTRTestSuite) TestWriteFamilyRoundTrip() {
	payload := []byte("hello")
	lenPrefix := machcodec.WriteCompressedU32(uint32(len(payload)))
	buf := EncodeGeneric(3, 10, 0x40, append(lenPrefix, payload...))

	mtr, last, err := ParseNext(buf, nil)
	s.Require().NoError(err)
	s.Equal(FamilyWrite, mtr.Family)
	s.Equal(uint32(3), mtr.SpaceID)
	s.Equal(uint32(10), mtr.PageNo)
	s.Equal(payload, mtr.Payload)
	s.Equal(mtr.Length, len(buf))
	s.Require().NotNil(last)
	s.Equal(uint32(3), last.SpaceID)
	s.Equal(uint32(10), last.PageNo)
}

func (s *MTRTestSuite) TestSamePageContinuationReusesContext() {
	lenPrefix := machcodec.WriteCompressedU32(3)
	first := EncodeGeneric(5, 20, 0x40, append(lenPrefix, []byte("abc")...))
	_, last, err := ParseNext(first, nil)
	s.Require().NoError(err)

	sameOp := byte(0x80 | 4) // same-page, 4-byte inline payload
	buf := []byte{sameOp, 'd', 'a', 't', 'a', 0x00}
	crc := machcodec.CRC32C(buf)
	crcBytes := make([]byte, 4)
	machcodec.PutU32(crcBytes, crc)
	buf = append(buf, crcBytes...)

	mtr, newLast, err := ParseNext(buf, last)
	s.Require().NoError(err)
	s.Equal(FamilySamePage, mtr.Family)
	s.Equal(uint32(5), mtr.SpaceID)
	s.Equal(uint32(20), mtr.PageNo)
	s.Equal([]byte("data"), mtr.Payload)
	s.Equal(last, newLast)
}

func (s *MTRTestSuite) TestMemsetRoundTrip() {
	lenAndFill := append(machcodec.WriteCompressedU32(40), 0xAB)
	buf := EncodeGeneric(1, 2, 0x50, lenAndFill)
	mtr, _, err := ParseNext(buf, nil)
	s.Require().NoError(err)
	s.Equal(FamilyMemset, mtr.Family)
	s.Equal([]byte{0xAB}, mtr.Payload)
	s.Equal(uint32(40), mtr.FillLength)
}

func (s *MTRTestSuite) TestChainDetectsCorruptedChecksum() {
	lenPrefix := machcodec.WriteCompressedU32(3)
	buf := EncodeGeneric(1, 1, 0x40, append(lenPrefix, []byte("xyz")...))
	buf[len(buf)-1] ^= 0xFF // corrupt chain checksum

	_, _, err := ParseNext(buf, nil)
	s.Error(err)
}

func (s *MTRTestSuite) TestChainReassemblyAcrossBlocks() {
	lenPrefix := machcodec.WriteCompressedU32(3)
	record := EncodeGeneric(1, 1, 0x40, append(lenPrefix, []byte("xyz")...))

	payload := make([]byte, LogBlockPayload)
	copy(payload, record)

	block0 := mustReadBlock(EncodeBlock(0, 0, payload), 0)

	const firstLSN = uint64(12288)
	records, advisories := Chain([]LogBlock{block0}, firstLSN)
	s.Empty(advisories)
	s.Require().Len(records, 1)
	s.Equal(FamilyWrite, records[0].MTR.Family)
	s.Equal(firstLSN, records[0].StartLSN)
}

func mustReadBlock(raw []byte, index int64) LogBlock {
	lb, err := ReadBlock(raw, index)
	if err != nil {
		panic(err)
	}
	return lb
}
