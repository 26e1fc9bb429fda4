package redolog

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type CheckpointTestSuite struct {
	suite.Suite
}

func TestCheckpointTestSuite(t *testing.T) {
	suite.Run(t, new(CheckpointTestSuite))
}

func (s *CheckpointTestSuite) TestSlotRoundTripValid() {
	buf := EncodeCheckpointSlot(83366, 90000)
	slot, err := DecodeCheckpointSlot(buf)
	s.Require().NoError(err)
	s.True(slot.Valid)
	s.Equal(uint64(83366), slot.LSN)
	s.Equal(uint64(90000), slot.EndLSN)
}

func (s *CheckpointTestSuite) TestSlotCorruptionInvalidatesCRCOnly() {
	buf := EncodeCheckpointSlot(100, 200)
	buf[0] ^= 0xFF
	slot, err := DecodeCheckpointSlot(buf)
	s.Require().NoError(err)
	s.False(slot.Valid)
}

func (s *CheckpointTestSuite) TestElectActiveCheckpointPicksHighestValidLSN() {
	slot0, _ := DecodeCheckpointSlot(EncodeCheckpointSlot(500, 600))
	slot1, _ := DecodeCheckpointSlot(EncodeCheckpointSlot(900, 1000))
	lsn, ok := ElectActiveCheckpoint(slot0, slot1)
	s.True(ok)
	s.Equal(uint64(900), lsn)
}

func (s *CheckpointTestSuite) TestElectActiveCheckpointSkipsInvalidSlot() {
	slot0, _ := DecodeCheckpointSlot(EncodeCheckpointSlot(500, 600))
	buf1 := EncodeCheckpointSlot(900, 1000)
	buf1[0] ^= 0xFF
	slot1, _ := DecodeCheckpointSlot(buf1)

	lsn, ok := ElectActiveCheckpoint(slot0, slot1)
	s.True(ok)
	s.Equal(uint64(500), lsn)
}

func (s *CheckpointTestSuite) TestElectActiveCheckpointNoValidSlots() {
	buf0 := EncodeCheckpointSlot(1, 2)
	buf0[0] ^= 0xFF
	buf1 := EncodeCheckpointSlot(3, 4)
	buf1[0] ^= 0xFF
	slot0, _ := DecodeCheckpointSlot(buf0)
	slot1, _ := DecodeCheckpointSlot(buf1)

	_, ok := ElectActiveCheckpoint(slot0, slot1)
	s.False(ok)
}
