package tablespace

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/mariadb-tools/innodb-surgeon/internal/diag"
	"github.com/mariadb-tools/innodb-surgeon/internal/page"
)

// DetectFlags bootstraps tablespace flags from a file whose page size isn't
// known yet: it reads page 0 at the InnoDB default size (16 KiB, the only
// size at which page 0's FSP header lands at a fixed, size-independent
// offset) and returns the FSP header's embedded flags field. A caller
// should reopen/reinterpret with the resulting flags, since a non-default
// PAGE_SSIZE also changes how far into the file page 0 truly extends.
func DetectFlags(path string) (page.TablespaceFlags, error) {
	const bootstrapPageSize = 16384
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "tablespace: open %s", path)
	}
	defer f.Close()

	buf := make([]byte, bootstrapPageSize)
	if _, err := f.ReadAt(buf, 0); err != nil {
		return 0, errors.Wrapf(err, "tablespace: read page 0 of %s", path)
	}
	flagsOffset := FspHeaderOffset + 16 // space_id, not_used, space_pages, free_limit precede flags
	raw := uint32(buf[flagsOffset])<<24 | uint32(buf[flagsOffset+1])<<16 | uint32(buf[flagsOffset+2])<<8 | uint32(buf[flagsOffset+3])
	return page.TablespaceFlags(raw), nil
}

// Reader orchestrates a full read-tablespace pass: FSP header, TRX_SYS, and
// every rollback segment reachable from the TRX_SYS directory, opening
// per-space undo tablespace files from a configured directory when the
// slot's space_id isn't the system tablespace itself (spec §6
// "read-tablespace").
type Reader struct {
	flags       page.TablespaceFlags
	undoLogDir  string
	systemFile  *os.File
	pageSize    int
	openSpaces  map[uint32]*os.File
}

// NewReader opens the system tablespace file at path. undoLogDir may be
// empty, in which case rollback segments living outside space 0 are skipped
// with a diagnostic rather than failing the whole read.
func NewReader(path string, flags page.TablespaceFlags, undoLogDir string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "tablespace: open %s", path)
	}
	return &Reader{
		flags:      flags,
		undoLogDir: undoLogDir,
		systemFile: f,
		pageSize:   flags.PageSize(),
		openSpaces: make(map[uint32]*os.File),
	}, nil
}

// Close releases the system tablespace file and any per-space files opened
// while resolving rollback segments.
func (r *Reader) Close() error {
	var first error
	if err := r.systemFile.Close(); err != nil {
		first = err
	}
	for _, f := range r.openSpaces {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (r *Reader) readPage(f *os.File, pageNo uint32) (*page.PageBuf, error) {
	buf := make([]byte, r.pageSize)
	_, err := f.ReadAt(buf, int64(pageNo)*int64(r.pageSize))
	if err != nil {
		return nil, errors.Wrapf(err, "tablespace: read page %d", pageNo)
	}
	return page.Parse(buf, r.flags)
}

// ReadFspHeader decodes page 0 of the system tablespace.
func (r *Reader) ReadFspHeader() (*FspHeader, []diag.Advisory, error) {
	pb, err := r.readPage(r.systemFile, 0)
	if err != nil {
		return nil, nil, err
	}
	return DecodeFspHeader(pb, uint32(r.flags))
}

// ReadTrxSys decodes page 5 of the system tablespace.
func (r *Reader) ReadTrxSys() (*TrxSys, []diag.Advisory, error) {
	pb, err := r.readPage(r.systemFile, 5)
	if err != nil {
		return nil, nil, err
	}
	return DecodeTrxSys(pb)
}

// RsegResult pairs a decoded rollback segment with the slot that pointed at
// it, or carries an error when the slot's space couldn't be resolved.
type RsegResult struct {
	Slot       RollbackSegmentSlot
	Rseg       *Rseg
	Advisories []diag.Advisory
	Err        error
}

// ReadRsegs decodes every active rollback-segment slot from a previously
// decoded TRX_SYS page, resolving non-system spaces via undoLogDir.
func (r *Reader) ReadRsegs(trxSys *TrxSys) []RsegResult {
	results := make([]RsegResult, 0, trxSysRsegSlotCount)
	for _, slot := range trxSys.Rsegs {
		if !slot.Active() {
			continue
		}
		f, err := r.fileForSpace(slot.SpaceID)
		if err != nil {
			results = append(results, RsegResult{Slot: slot, Err: err})
			continue
		}
		pb, err := r.readPage(f, slot.PageNo)
		if err != nil {
			results = append(results, RsegResult{Slot: slot, Err: err})
			continue
		}
		rseg, advisories, err := DecodeRseg(pb)
		results = append(results, RsegResult{Slot: slot, Rseg: rseg, Advisories: advisories, Err: err})
	}
	return results
}

func (r *Reader) fileForSpace(spaceID uint32) (*os.File, error) {
	if spaceID == 0 {
		return r.systemFile, nil
	}
	if f, ok := r.openSpaces[spaceID]; ok {
		return f, nil
	}
	if r.undoLogDir == "" {
		return nil, errors.Errorf("tablespace: space %d requires --undo-log-dir", spaceID)
	}
	path := filepath.Join(r.undoLogDir, fmt.Sprintf("undo%03d", spaceID))
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "tablespace: open undo space file %s", path)
	}
	r.openSpaces[spaceID] = f
	return f, nil
}
