package main

import (
	"fmt"
	"os"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  yaiba [flags] <program> [inputs...]")
	fmt.Fprintln(os.Stderr, "  yaiba run [flags] [program] [inputs...]")
	fmt.Fprintln(os.Stderr, "  yaiba check [--manifest=PATH] [program]")
	fmt.Fprintln(os.Stderr, "  yaiba version")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "A program is a file path, literal program text, or git+<url>#<path>[@<rev>].")
	fmt.Fprintln(os.Stderr, "Without a program argument the program named in yaiba.yml or yaiba.toml is run.")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags:")
	fmt.Fprintln(os.Stderr, "  --ascii              write values as Unicode characters")
	fmt.Fprintln(os.Stderr, "  --echo, --no-echo    print \"Reading: N\" after each read (default on)")
	fmt.Fprintln(os.Stderr, "  --stats              print run statistics to stderr")
	fmt.Fprintln(os.Stderr, "  --log-level=LEVEL    trace, debug, info, warn, error or disabled (default warn)")
	fmt.Fprintln(os.Stderr, "  --manifest=PATH      read settings from PATH instead of ./yaiba.yml")
}
