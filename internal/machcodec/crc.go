package machcodec

import (
	"sync"

	"github.com/pasztorpisti/go-crc"
)

// legacyCRC32 is InnoDB's pre-FULL_CRC32 checksum variant: same Castagnoli
// polynomial, but non-reflected input/output, kept only so that a legacy
// tablespace can be recognised, never used for a checksum this tool writes.
var (
	legacyCRC32     crc.Algo[uint32]
	legacyCRC32Once sync.Once
)

func legacy() crc.Algo[uint32] {
	legacyCRC32Once.Do(func() {
		algo, err := crc.NewAlgo[uint32](32, 0x1EDC6F41, 0, 0, false, false)
		if err != nil {
			// The polynomial/width pair is a compile-time constant; a
			// failure here means the dependency's validation changed.
			panic(err)
		}
		legacyCRC32 = algo
	})
	return legacyCRC32
}

// CRC32C computes the Castagnoli CRC-32C used by FULL_CRC32 tablespaces,
// redo log blocks, checkpoint slots, and the redo header. Reference
// vectors (spec §8): CRC32C("") == 0, CRC32C("123456789") == 0xE3069283.
func CRC32C(buf []byte) uint32 {
	return crc.CRC32C.Calc(buf)
}

// InnoDBCRC32 computes the legacy non-reflected InnoDB checksum variant
// (spec §4.1 innodb_crc32), used only to recognise pages written under
// the pre-FULL_CRC32 checksum scheme.
func InnoDBCRC32(buf []byte) uint32 {
	return legacy().Calc(buf)
}
