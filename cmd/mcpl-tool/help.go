package main

import (
	"fmt"
	"io"

	"github.com/mctools/mcpl-go/format"
)

func versionString() string {
	return fmt.Sprintf("mcpl-tool (mcpl-go), MCPL format version %d", format.VersionCurrent)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Tool for inspection and manipulation of files in the MCPL format.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  mcpl-tool [options] FILE")
	fmt.Fprintln(w, "    : Dump information about FILE to stdout.")
	fmt.Fprintln(w, "  mcpl-tool -m|--merge [--inplace] FILEOUT FILE1 FILE2 ...")
	fmt.Fprintln(w, "    : Merge FILE1, FILE2, ... into FILEOUT. With --inplace, append FILE2 into")
	fmt.Fprintln(w, "      FILE1 directly instead of creating a new FILEOUT (FILEOUT is then FILE1).")
	fmt.Fprintln(w, "  mcpl-tool --forcemerge [--keepuserflags] FILEOUT FILE1 FILE2 ...")
	fmt.Fprintln(w, "    : As --merge, but permit merging files whose headers disagree, by")
	fmt.Fprintln(w, "      widening the output's feature set to a lossy superset of the inputs'.")
	fmt.Fprintln(w, "  mcpl-tool -e|--extract [-lN] [-sN] [-pPDG] FILE_IN FILE_OUT")
	fmt.Fprintln(w, "    : Extract particles from FILE_IN into a new FILE_OUT.")
	fmt.Fprintln(w, "  mcpl-tool -r|--repair FILE")
	fmt.Fprintln(w, "    : Patch the particle count of a file left by an improperly closed writer.")
	fmt.Fprintln(w, "  mcpl-tool -t|--text FILE_IN FILE_OUT")
	fmt.Fprintln(w, "    : Convert FILE_IN into the ASCII interchange format at FILE_OUT.")
	fmt.Fprintln(w, "  mcpl-tool -v|--version")
	fmt.Fprintln(w, "    : Display version of MCPL installation.")
	fmt.Fprintln(w, "  mcpl-tool -h|--help")
	fmt.Fprintln(w, "    : Display this usage information.")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Dump options:")
	fmt.Fprintln(w, "  -j, --justhead   : Only dump header information.")
	fmt.Fprintln(w, "  -n, --nohead     : Only dump particle information.")
	fmt.Fprintln(w, "  -lN              : Dump up to N particles from the file (default 10). A")
	fmt.Fprintln(w, "                     value of 0 disables the limit.")
	fmt.Fprintln(w, "  -sN              : Skip past the first N particles in the file (default 0).")
	fmt.Fprintln(w, "  -bKEY            : Write the binary data of the blob with the given key to")
	fmt.Fprintln(w, "                     stdout, instead of dumping the file normally.")
}
