package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mariadb-tools/innodb-surgeon/internal/redolog"
)

type CheckpointTestSuite struct {
	suite.Suite
}

func TestCheckpointTestSuite(t *testing.T) {
	suite.Run(t, new(CheckpointTestSuite))
}

func buildLogFile(t *testing.T, firstLSN uint64, numBlocks int) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "ib_logfile0")

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	header := redolog.EncodeRedoHeader(redolog.RedoHeader{Version: 2, FirstLSN: firstLSN, Creator: "MariaDB 10.8.0"})
	if _, err := f.WriteAt(header, redolog.RedoHeaderOffset); err != nil {
		t.Fatal(err)
	}

	slot := redolog.EncodeCheckpointSlot(firstLSN, firstLSN)
	if _, err := f.WriteAt(slot, redolog.CheckpointSlot0Offset); err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteAt(slot, redolog.CheckpointSlot1Offset); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < numBlocks; i++ {
		block := redolog.EncodeBlock(uint16(i), 0, make([]byte, redolog.LogBlockPayload))
		if _, err := f.WriteAt(block, redolog.LogBlockRegionOffset+int64(i)*redolog.LogBlockSize); err != nil {
			t.Fatal(err)
		}
	}
	return path
}

func (s *CheckpointTestSuite) TestForgeCheckpointProducesReDecodableAnchor() {
	const firstLSN = uint64(12288)
	path := buildLogFile(s.T(), firstLSN, 10)
	capacity := uint64(10) * redolog.LogBlockPayload

	targetLSN := firstLSN + 100
	outPath, err := ForgeCheckpoint(path, firstLSN, capacity, targetLSN)
	s.Require().NoError(err)
	s.FileExists(outPath)

	// source untouched
	srcInfo, err := os.Stat(path)
	s.Require().NoError(err)
	s.Positive(srcInfo.Size())

	f, err := os.Open(outPath)
	s.Require().NoError(err)
	defer f.Close()

	slot0Buf := make([]byte, redolog.CheckpointSlotSize)
	_, err = f.ReadAt(slot0Buf, redolog.CheckpointSlot0Offset)
	s.Require().NoError(err)
	slot0, err := redolog.DecodeCheckpointSlot(slot0Buf)
	s.Require().NoError(err)
	s.True(slot0.Valid)
	s.Equal(targetLSN, slot0.LSN)
}

func (s *CheckpointTestSuite) TestForgeCheckpointRejectsLSNOutsideCapacity() {
	const firstLSN = uint64(12288)
	path := buildLogFile(s.T(), firstLSN, 4)
	capacity := uint64(4) * redolog.LogBlockPayload

	_, err := ForgeCheckpoint(path, firstLSN, capacity, 0)
	s.Error(err)
}

func (s *CheckpointTestSuite) TestForgeCheckpointDoesNotTouchSourceFile() {
	const firstLSN = uint64(12288)
	path := buildLogFile(s.T(), firstLSN, 4)
	before, err := os.ReadFile(path)
	s.Require().NoError(err)

	_, err = ForgeCheckpoint(path, firstLSN, uint64(4)*redolog.LogBlockPayload, firstLSN+10)
	s.Require().NoError(err)

	after, err := os.ReadFile(path)
	s.Require().NoError(err)
	s.Equal(before, after)
}
