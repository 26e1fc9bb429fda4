// Package diag supplies the short context-chain error breadcrumbs used by
// every decoder in this module (spec §7: "Mtr::parse_next: NotFound at
// offset 0x1234").
package diag

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel error kinds. Callers match these with errors.Is; decoders never
// recover from them internally, they only annotate and propagate.
var (
	ErrTruncatedOperand   = errors.New("truncated operand")
	ErrOverlongEncoding   = errors.New("overlong compressed-integer encoding")
	ErrPageTooShort       = errors.New("page too short")
	ErrChecksumMismatch   = errors.New("checksum mismatch")
	ErrUnexpectedPageType = errors.New("unexpected page type")
	ErrInvalidMagic       = errors.New("invalid magic")
	ErrOutOfRange         = errors.New("value out of range")
	ErrBlockCrcMismatch   = errors.New("block checksum mismatch")
	ErrUnknownOpcode      = errors.New("unknown opcode")
	ErrLsnOutsideCapacity = errors.New("lsn outside capacity")
	ErrInvariant          = errors.New("invariant violation")
)

// Wrap annotates err with the structure being decoded and the byte offset
// at which it failed, keeping err matchable via errors.Is/As.
func Wrap(structure string, offset int64, err error) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "%s: at offset 0x%x", structure, offset)
}

// Wrapf is Wrap with a formatted structure label.
func Wrapf(offset int64, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, "%s: at offset 0x%x", fmt.Sprintf(format, args...), offset)
}

// Advisory is a non-fatal diagnostic attached to a decoded value rather
// than returned as a hard error — used for checksum mismatches at page and
// block granularity, and for inconsistency flags (list-head walk length,
// RSEG format/max_trx_id disagreement) that forensic inspection needs to
// see without aborting the decode.
type Advisory struct {
	Kind    error
	Message string
	Offset  int64
}

func (a Advisory) String() string {
	return fmt.Sprintf("%s at offset 0x%x: %s", a.Kind, a.Offset, a.Message)
}

func NewAdvisory(kind error, offset int64, format string, args ...any) Advisory {
	return Advisory{Kind: kind, Offset: offset, Message: fmt.Sprintf(format, args...)}
}
