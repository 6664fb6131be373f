// Command mfcomp converts HDF5 detector frame stacks into sparse multifiles.
//
//	mfcomp compress [flags] SRC [DST]
//	mfcomp header [flags] PATH
//
// SRC may also be a YAML container fixture (.yaml, .yml).
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

const usage = `usage:
  mfcomp compress [flags] SRC [DST]   convert a master file into a multifile
  mfcomp header [flags] PATH          print the header of a master file or multifile

run "mfcomp <command> -h" for the flags of a command
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch args[0] {
	case "compress":
		err = runCompress(args[1:], stdout, stderr)
	case "header":
		err = runHeader(args[1:], stdout, stderr)
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "mfcomp: unknown command %q\n%s", args[0], usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 0
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "mfcomp %s: %v\n", args[0], err)
		return 2
	default:
		fmt.Fprintf(stderr, "mfcomp %s: %v\n", args[0], err)
		return 1
	}
}

var errUsage = errors.New("usage")
