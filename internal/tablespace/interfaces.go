package tablespace

import "github.com/mariadb-tools/innodb-surgeon/internal/diag"

//go:generate mockgen -source=interfaces.go -destination=../mocks/tablespace_mock.go

// TablespaceReader is the narrow surface the CLI's read-tablespace command
// depends on, so it can be exercised against a mock without real ibdata1
// files on disk.
type TablespaceReader interface {
	ReadFspHeader() (*FspHeader, []diag.Advisory, error)
	ReadTrxSys() (*TrxSys, []diag.Advisory, error)
	ReadRsegs(trxSys *TrxSys) []RsegResult
	Close() error
}

var _ TablespaceReader = (*Reader)(nil)
