package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/mariadb-tools/innodb-surgeon/internal/diag"
	"github.com/mariadb-tools/innodb-surgeon/internal/tablespace"
)

func runReadTablespace(args []string) int {
	fs := flag.NewFlagSet("read-tablespace", flag.ContinueOnError)
	filePath := fs.String("file-path", "", "Path to the system tablespace file (ibdata1)")
	undoLogDir := fs.String("undo-log-dir", "", "Directory holding per-space undo tablespace files")
	verbose := fs.Bool("verbose", false, "Enable verbose logging")
	if err := fs.Parse(args); err != nil {
		return exitInvalidArgument
	}
	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "Error: --file-path is required")
		return exitInvalidArgument
	}

	flags, err := tablespace.DetectFlags(*filePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitIOError
	}
	if *verbose {
		log.Printf("detected tablespace flags: 0x%x (page_size=%d, full_crc32=%v)", uint32(flags), flags.PageSize(), flags.FullCRC32())
	}

	reader, err := tablespace.NewReader(*filePath, flags, *undoLogDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitIOError
	}
	defer reader.Close()

	return doReadTablespace(reader)
}

// doReadTablespace drives the read-tablespace pass against any
// tablespace.TablespaceReader, so it can be exercised against a mock
// without a real ibdata1 file on disk.
func doReadTablespace(reader tablespace.TablespaceReader) int {
	fsp, fspAdvisories, err := reader.ReadFspHeader()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFormatError
	}
	printFspHeader(fsp, fspAdvisories)

	trxSys, trxSysAdvisories, err := reader.ReadTrxSys()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitFormatError
	}
	printTrxSys(trxSys, trxSysAdvisories)

	for _, result := range reader.ReadRsegs(trxSys) {
		printRsegResult(result)
	}

	return exitOK
}

func printFspHeader(fsp *tablespace.FspHeader, advisories []diag.Advisory) {
	fmt.Printf("FSP header: space_id=%d space_pages=%d free_limit=%d flags=0x%x free_frag.len=%d seg_id=%d\n",
		fsp.SpaceID, fsp.SpacePages, fsp.FreeLimit, fsp.Flags, fsp.FreeFrag.Length, fsp.SegID)
	for _, a := range advisories {
		fmt.Fprintf(os.Stderr, "diagnostic: %s\n", a.String())
	}
}

func printTrxSys(t *tablespace.TrxSys, advisories []diag.Advisory) {
	active := 0
	for _, slot := range t.Rsegs {
		if slot.Active() {
			active++
		}
	}
	fmt.Printf("TRX_SYS: id_store=%d active_rsegs=%d\n", t.IDStore, active)
	if t.Doublewrite.Present {
		fmt.Printf("  doublewrite: block1=%d block2=%d magic=0x%x consistent=%v\n",
			t.Doublewrite.Block1Copy1, t.Doublewrite.Block2Copy1, t.Doublewrite.Magic1, t.Doublewrite.Consistent())
	}
	if t.Binlog.Present {
		fmt.Printf("  binlog coordinate: %s @ %d\n", t.Binlog.Name, t.Binlog.Offset)
	}
	for _, a := range advisories {
		fmt.Fprintf(os.Stderr, "diagnostic: %s\n", a.String())
	}
}

func printRsegResult(r tablespace.RsegResult) {
	if r.Err != nil {
		fmt.Fprintf(os.Stderr, "rseg slot (space=%d page=%d): %v\n", r.Slot.SpaceID, r.Slot.PageNo, r.Err)
		return
	}
	fmt.Printf("RSEG (space=%d page=%d): format=%d max_trx_id=%d history_size=%d\n",
		r.Slot.SpaceID, r.Slot.PageNo, r.Rseg.Format, r.Rseg.MaxTrxID, r.Rseg.HistorySize)
	if r.Rseg.Binlog.Present {
		fmt.Printf("  binlog coordinate: %s @ %d\n", r.Rseg.Binlog.Name, r.Rseg.Binlog.Offset)
	}
	for _, a := range r.Advisories {
		fmt.Fprintf(os.Stderr, "diagnostic: %s\n", a.String())
	}
}
