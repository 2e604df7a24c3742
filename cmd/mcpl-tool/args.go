package main

import (
	"fmt"
	"strconv"
	"strings"
)

type mode int

const (
	modeDump mode = iota
	modeMerge
	modeForceMerge
	modeExtract
	modeRepair
	modeText
	modeVersion
	modeHelp
)

const (
	defaultDumpLimit = 10
	defaultDumpSkip  = 0
)

type config struct {
	mode mode

	inplace       bool
	keepUserFlags bool
	justHead      bool
	noHead        bool

	limit    uint64
	hasLimit bool
	skip     uint64
	hasSkip  bool

	blobKey string
	pdg     int32
	hasPdg  bool

	positional []string
}

// parseArgs implements §6.2's flag grammar: a mode-selecting flag
// (-m/--merge, --forcemerge, -e/--extract, -r/--repair, -t/--text,
// -v/--version, -h/--help; absent means dump), modifier flags
// (--inplace, --keepuserflags, -j/--justhead, -n/--nohead), short
// options with an attached value (-lN, -sN, -bKEY, -pPDG), and
// everything else treated as a positional file name.
func parseArgs(args []string) (config, error) {
	var cfg config
	var modeSet bool

	setMode := func(m mode) error {
		if modeSet && cfg.mode != m {
			return fmt.Errorf("only one of --merge, --forcemerge, --extract, --repair, --text may be given")
		}
		cfg.mode = m
		modeSet = true

		return nil
	}

	for _, a := range args {
		switch {
		case a == "-h" || a == "--help":
			cfg.mode = modeHelp

			return cfg, nil
		case a == "-v" || a == "--version":
			cfg.mode = modeVersion

			return cfg, nil
		case a == "-m" || a == "--merge":
			if err := setMode(modeMerge); err != nil {
				return cfg, err
			}
		case a == "--forcemerge":
			if err := setMode(modeForceMerge); err != nil {
				return cfg, err
			}
		case a == "-e" || a == "--extract":
			if err := setMode(modeExtract); err != nil {
				return cfg, err
			}
		case a == "-r" || a == "--repair":
			if err := setMode(modeRepair); err != nil {
				return cfg, err
			}
		case a == "-t" || a == "--text":
			if err := setMode(modeText); err != nil {
				return cfg, err
			}
		case a == "--inplace":
			cfg.inplace = true
		case a == "--keepuserflags":
			cfg.keepUserFlags = true
		case a == "-j" || a == "--justhead":
			cfg.justHead = true
		case a == "-n" || a == "--nohead":
			cfg.noHead = true
		case strings.HasPrefix(a, "-l"):
			n, err := strconv.ParseUint(a[2:], 10, 64)
			if err != nil {
				return cfg, fmt.Errorf("bad option %q: expected a number", a)
			}
			cfg.limit, cfg.hasLimit = n, true
		case strings.HasPrefix(a, "-s"):
			n, err := strconv.ParseUint(a[2:], 10, 64)
			if err != nil {
				return cfg, fmt.Errorf("bad option %q: expected a number", a)
			}
			cfg.skip, cfg.hasSkip = n, true
		case strings.HasPrefix(a, "-b"):
			if a[2:] == "" {
				return cfg, fmt.Errorf("missing argument for -b")
			}
			cfg.blobKey = a[2:]
		case strings.HasPrefix(a, "-p"):
			n, err := strconv.ParseInt(a[2:], 10, 32)
			if err != nil {
				return cfg, fmt.Errorf("bad option %q: expected a pdg code", a)
			}
			cfg.pdg, cfg.hasPdg = int32(n), true
		case strings.HasPrefix(a, "-"):
			return cfg, fmt.Errorf("unrecognised option %q", a)
		default:
			cfg.positional = append(cfg.positional, a)
		}
	}

	if cfg.inplace && cfg.mode != modeMerge {
		return cfg, fmt.Errorf("--inplace can only be used with --merge")
	}
	if cfg.keepUserFlags && cfg.mode != modeForceMerge {
		return cfg, fmt.Errorf("--keepuserflags can only be used with --forcemerge")
	}
	if cfg.hasPdg && cfg.mode != modeExtract {
		return cfg, fmt.Errorf("-p can only be used with --extract")
	}
	if cfg.justHead && cfg.noHead {
		return cfg, fmt.Errorf("do not supply both --justhead and --nohead")
	}
	if cfg.justHead && (cfg.hasLimit || cfg.hasSkip) {
		return cfg, fmt.Errorf("do not specify -l or -s with --justhead")
	}

	return cfg, nil
}
