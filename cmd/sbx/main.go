// Command sbx packages and recovers files in the sbx archival container
// format: a sequence of fixed-size self-describing blocks, optionally
// protected by Reed-Solomon erasure coding and burst interleaving.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/xerrors"

	sbx "github.com/sbx-go/sbx"
)

var debug = flag.Bool("debug", false, "enable debug mode: format error messages with additional detail")

func funcmain() error {
	flag.Parse()

	type cmd struct {
		fn func(ctx context.Context, args []string) error
	}
	verbs := map[string]cmd{
		"calc":   {cmdcalc},
		"encode": {cmdencode},
		"decode": {cmddecode},
		"repair": {cmdrepair},
		"show":   {cmdshow},
	}

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintf(os.Stderr, "sbx [-flags] <command> [-flags] <args>\n")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "\tcalc   - compute container size and block counts without writing anything\n")
		fmt.Fprintf(os.Stderr, "\tencode - package a file into an sbx container\n")
		fmt.Fprintf(os.Stderr, "\tdecode - recover the original file from an sbx container\n")
		fmt.Fprintf(os.Stderr, "\trepair - reconstruct corrupted blocks of an RS-protected container in place\n")
		fmt.Fprintf(os.Stderr, "\tshow   - print one block's header and metadata for diagnosis\n")
		os.Exit(2)
	}
	verb, args := args[0], args[1:]

	ctx, canc := sbx.InterruptibleContext()
	defer canc()

	v, ok := verbs[verb]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", verb)
		fmt.Fprintf(os.Stderr, "syntax: sbx <command> [options]\n")
		os.Exit(2)
	}
	if err := v.fn(ctx, args); err != nil {
		if *debug {
			return xerrors.Errorf("%s: %+v", verb, err)
		}
		return xerrors.Errorf("%s: %v", verb, err)
	}
	return sbx.RunAtExit()
}

func main() {
	if err := funcmain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
