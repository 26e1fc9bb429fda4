package main

import (
	"fmt"
	"os"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	exitOK                = 0
	exitInvalidArgument    = 2
	exitFormatError        = 3
	exitIOError            = 4
	exitInvariantViolation = 5
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return exitInvalidArgument
	}

	switch args[0] {
	case "read-tablespace":
		return runReadTablespace(args[1:])
	case "read-redo":
		return runReadRedo(args[1:])
	case "write-redo":
		return runWriteRedo(args[1:])
	case "inspect":
		return runInspect(args[1:])
	case "version":
		fmt.Printf("innodb-surgeon %s (%s, %s)\n", version, commit, date)
		return exitOK
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown subcommand %q\n", args[0])
		printUsage()
		return exitInvalidArgument
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: innodb-surgeon <subcommand> [flags]

Subcommands:
  read-tablespace --file-path P [--undo-log-dir D]
  read-redo --log-file-path P
  write-redo --log-file-path P --size N --lsn L
  inspect --log-file-path P
  version
`)
}
