package redolog

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type StreamTestSuite struct {
	suite.Suite
}

func TestStreamTestSuite(t *testing.T) {
	suite.Run(t, new(StreamTestSuite))
}

func (s *StreamTestSuite) TestFindFileCheckpointAnchorMatchesActiveLSN() {
	records := []MTRRecord{
		{StartLSN: 100, MTR: MTR{Family: FamilyFileCheckpoint, FileCheckpointLSN: 500}},
		{StartLSN: 200, MTR: MTR{Family: FamilyFileCheckpoint, FileCheckpointLSN: 83366}},
	}
	anchor, ok := FindFileCheckpointAnchor(records, 83366)
	s.True(ok)
	s.Equal(uint64(200), anchor.StartLSN)
}

func (s *StreamTestSuite) TestFindFileCheckpointAnchorNoMatch() {
	records := []MTRRecord{{StartLSN: 100, MTR: MTR{Family: FamilyFileCheckpoint, FileCheckpointLSN: 500}}}
	_, ok := FindFileCheckpointAnchor(records, 999)
	s.False(ok)
}
