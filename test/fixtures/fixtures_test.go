package fixtures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mariadb-tools/innodb-surgeon/internal/page"
	"github.com/mariadb-tools/innodb-surgeon/internal/redolog"
	"github.com/mariadb-tools/innodb-surgeon/internal/tablespace"
)

type FixturesTestSuite struct {
	suite.Suite
}

func TestFixturesTestSuite(t *testing.T) {
	suite.Run(t, new(FixturesTestSuite))
}

func (s *FixturesTestSuite) flags() page.TablespaceFlags {
	return page.TablespaceFlags(FullCRC32Flags)
}

func (s *FixturesTestSuite) TestSystemTablespacePage0Decodes() {
	buf := SystemTablespacePage0()
	FinalizeFullCRC32Trailer(buf)

	pb, err := page.Parse(buf, s.flags())
	s.Require().NoError(err)
	s.Equal(page.ClassFspHdr, pb.Header.Class)
	s.True(pb.Checksum.OK)

	fsp, advisories, err := tablespace.DecodeFspHeader(pb, FullCRC32Flags)
	s.Require().NoError(err)
	s.Empty(advisories)
	s.Equal(uint32(768), fsp.SpacePages)
	s.Equal(uint32(320), fsp.FreeLimit)
	s.Equal(uint32(1), fsp.FreeFrag.Length)
	s.Equal(uint64(26), fsp.SegID)
}

func (s *FixturesTestSuite) TestSystemTablespacePage0FlagMismatchAdvisory() {
	buf := SystemTablespacePage0()
	FinalizeFullCRC32Trailer(buf)

	pb, err := page.Parse(buf, s.flags())
	s.Require().NoError(err)

	_, advisories, err := tablespace.DecodeFspHeader(pb, FullCRC32Flags|0x2)
	s.Require().NoError(err)
	s.Len(advisories, 1)
}

func (s *FixturesTestSuite) TestTrxSysPageDecodes() {
	buf := TrxSysPage()
	FinalizeFullCRC32Trailer(buf)

	pb, err := page.Parse(buf, s.flags())
	s.Require().NoError(err)
	s.Equal(page.ClassTrxSys, pb.Header.Class)

	trxSys, advisories, err := tablespace.DecodeTrxSys(pb)
	s.Require().NoError(err)
	s.Empty(advisories)
	s.Equal(uint64(1), trxSys.IDStore)
	s.True(trxSys.Rsegs[0].Active())
	s.Equal(uint32(6), trxSys.Rsegs[0].PageNo)
	s.False(trxSys.Rsegs[1].Active())
	s.True(trxSys.Doublewrite.Present)
	s.True(trxSys.Doublewrite.Consistent())
	s.True(trxSys.Binlog.Present)
	s.Equal("mariadb-bin.000001", trxSys.Binlog.Name)
	s.Equal(uint64(98765), trxSys.Binlog.Offset)
}

func (s *FixturesTestSuite) TestRsegPageDecodes() {
	buf := RsegPage()
	FinalizeFullCRC32Trailer(buf)

	pb, err := page.Parse(buf, s.flags())
	s.Require().NoError(err)

	rseg, advisories, err := tablespace.DecodeRseg(pb)
	s.Require().NoError(err)
	s.Empty(advisories)
	s.Equal(uint64(44), rseg.MaxTrxID)
	s.True(rseg.Binlog.Present)
	s.Equal(uint64(7441), rseg.Binlog.Offset)
}

func (s *FixturesTestSuite) TestCorruptedRsegPageEmitsAdvisory() {
	buf := CorruptedRsegPage()
	FinalizeFullCRC32Trailer(buf)

	pb, err := page.Parse(buf, s.flags())
	s.Require().NoError(err)

	rseg, advisories, err := tablespace.DecodeRseg(pb)
	s.Require().NoError(err)
	s.Require().Len(advisories, 1)
	s.Equal(uint32(0), rseg.Format)
	s.Equal(uint64(44), rseg.MaxTrxID)
}

func (s *FixturesTestSuite) writeTempFile(buf []byte) string {
	dir := s.T().TempDir()
	path := filepath.Join(dir, "ib_logfile0")
	s.Require().NoError(os.WriteFile(path, buf, 0o644))
	return path
}

func (s *FixturesTestSuite) TestRedoLogFileDecodes() {
	buf := RedoLogFile(RedoLogFirstLSN, 4)
	path := s.writeTempFile(buf)

	decoded, err := redolog.DecodeFile(path)
	s.Require().NoError(err)
	s.Equal(uint32(2), decoded.Header.Version)
	s.Equal(uint64(RedoLogFirstLSN), decoded.Header.FirstLSN)
	s.Equal("MariaDB 11.4.2", decoded.Header.Creator)
	s.True(decoded.HasActiveCheckpoint)
	s.Equal(uint64(RedoLogFirstLSN), decoded.ActiveCheckpointLSN)
}

func (s *FixturesTestSuite) TestRedoLogFileWithFileCheckpointAnchors() {
	lsn := uint64(RedoLogFirstLSN)
	buf := RedoLogFileWithFileCheckpoint(lsn, 2)
	path := s.writeTempFile(buf)

	decoded, err := redolog.DecodeFile(path)
	s.Require().NoError(err)
	s.Require().NotEmpty(decoded.Records)
	s.Equal(redolog.FamilyFileCheckpoint, decoded.Records[0].MTR.Family)
	s.Equal(lsn, decoded.Records[0].MTR.FileCheckpointLSN)
	s.True(decoded.HasAnchor)
	s.Equal(lsn, decoded.Anchor.MTR.FileCheckpointLSN)
}

func (s *FixturesTestSuite) TestCorruptedBlockFailsCRC() {
	raw := CorruptedBlock(1)
	lb, err := redolog.ReadBlock(raw, 0)
	s.Require().NoError(err)
	s.False(lb.CRCValid)
}
