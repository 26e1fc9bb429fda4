package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/mariadb-tools/innodb-surgeon/internal/checkpoint"
	"github.com/mariadb-tools/innodb-surgeon/internal/diag"
	"github.com/mariadb-tools/innodb-surgeon/internal/redolog"
)

// defaultFirstLSN is the canonical LSN assigned to byte 0 of the log-block
// region in a freshly created log, numerically equal to the region's file
// offset (0x3000) as MariaDB itself initialises new redo files.
const defaultFirstLSN = redolog.LogBlockRegionOffset

func runWriteRedo(args []string) int {
	fs := flag.NewFlagSet("write-redo", flag.ContinueOnError)
	logFilePath := fs.String("log-file-path", "", "Path to the redo log file")
	sizeStr := fs.String("size", "", "File size in bytes (used when creating a new log file)")
	lsnStr := fs.String("lsn", "", "Desired checkpoint LSN")
	if err := fs.Parse(args); err != nil {
		return exitInvalidArgument
	}
	if *logFilePath == "" || *sizeStr == "" || *lsnStr == "" {
		fmt.Fprintln(os.Stderr, "Error: --log-file-path, --size, and --lsn are all required")
		return exitInvalidArgument
	}

	size, err := strconv.ParseInt(*sizeStr, 10, 64)
	if err != nil || size <= redolog.LogBlockRegionOffset {
		fmt.Fprintf(os.Stderr, "Error: --size must be a positive integer greater than 0x%x\n", redolog.LogBlockRegionOffset)
		return exitInvalidArgument
	}
	lsn, err := strconv.ParseUint(*lsnStr, 10, 64)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: --lsn must be a non-negative integer")
		return exitInvalidArgument
	}

	firstLSN, err := ensureLogFile(*logFilePath, size)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitIOError
	}
	capacity := uint64(size - redolog.LogBlockRegionOffset)

	outPath, err := checkpoint.ForgeCheckpoint(*logFilePath, firstLSN, capacity, lsn)
	if err != nil {
		if errors.Is(err, diag.ErrLsnOutsideCapacity) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitInvariantViolation
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitIOError
	}

	fmt.Printf("Wrote synthetic checkpoint at LSN %d to %s\n", lsn, outPath)
	return exitOK
}

// ensureLogFile creates logFilePath with a fresh header and zeroed blocks if
// it doesn't already exist, returning the file's first_lsn either way.
func ensureLogFile(path string, size int64) (uint64, error) {
	if info, err := os.Stat(path); err == nil && info.Size() == size {
		decoded, err := redolog.DecodeFile(path)
		if err != nil {
			return 0, err
		}
		return decoded.Header.FirstLSN, nil
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	if err := f.Truncate(size); err != nil {
		return 0, err
	}

	header := redolog.EncodeRedoHeader(redolog.RedoHeader{Version: 1, FirstLSN: defaultFirstLSN, Creator: "innodb-surgeon"})
	if _, err := f.WriteAt(header, redolog.RedoHeaderOffset); err != nil {
		return 0, err
	}

	slot := redolog.EncodeCheckpointSlot(defaultFirstLSN, defaultFirstLSN)
	if _, err := f.WriteAt(slot, redolog.CheckpointSlot0Offset); err != nil {
		return 0, err
	}
	if _, err := f.WriteAt(slot, redolog.CheckpointSlot1Offset); err != nil {
		return 0, err
	}

	numBlocks := (size - redolog.LogBlockRegionOffset) / redolog.LogBlockSize
	blankPayload := make([]byte, redolog.LogBlockPayload)
	for i := int64(0); i < numBlocks; i++ {
		block := redolog.EncodeBlock(uint16(i), 0, blankPayload)
		if _, err := f.WriteAt(block, redolog.LogBlockRegionOffset+i*redolog.LogBlockSize); err != nil {
			return 0, err
		}
	}

	if err := f.Sync(); err != nil {
		return 0, err
	}
	return defaultFirstLSN, nil
}
