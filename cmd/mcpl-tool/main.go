// Command mcpl-tool dumps, merges, repairs, extracts, and text-exports
// MCPL files, mirroring the original library's command-line tool
// (§6.2). Argument parsing follows a plain hand-rolled os.Args loop
// rather than a flags package, since the grammar mixes attached-value
// short options (-l10, -s5, -bKEY, -pPDG) with long options and
// multiple mutually-exclusive subcommand groups that a single flag set
// cannot express cleanly.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := parseArgs(args)
	if err != nil {
		return err
	}

	switch cfg.mode {
	case modeHelp:
		printUsage(os.Stdout)

		return nil
	case modeVersion:
		fmt.Println(versionString())

		return nil
	case modeMerge:
		return runMerge(cfg)
	case modeForceMerge:
		return runForceMerge(cfg)
	case modeExtract:
		return runExtract(cfg)
	case modeRepair:
		return runRepair(cfg)
	case modeText:
		return runText(cfg)
	default:
		return runDump(cfg)
	}
}
