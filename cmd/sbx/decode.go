package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/renameio"
	"golang.org/x/xerrors"

	"github.com/sbx-go/sbx/internal/sbxfile"
)

const decodeHelp = `sbx decode [-flags] <container.sbx>

Recover the original file from an sbx container, written atomically to
-out (default: the container path with any trailing .sbx stripped).
`

func cmddecode(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("decode", flag.ExitOnError)
	var (
		out   = fset.String("out", "", "output file path (default: <container> with .sbx stripped)")
		burst = fset.Uint("burst", 1, "RS burst interleaving level used at encode time")
	)
	fset.Usage = usage(fset, decodeHelp)
	fset.Parse(args)
	if fset.NArg() != 1 {
		return xerrors.New("required: exactly one container argument")
	}
	in := fset.Arg(0)

	f, err := os.Open(in)
	if err != nil {
		return xerrors.Errorf("open: %w", err)
	}
	defer f.Close()

	outPath := *out
	if outPath == "" {
		outPath = strings.TrimSuffix(in, ".sbx")
		if outPath == in {
			outPath = in + ".out"
		}
	}

	t, err := renameio.TempFile("", outPath)
	if err != nil {
		return xerrors.Errorf("creating temp file: %w", err)
	}
	defer t.Cleanup()

	info, err := sbxfile.Decode(f, t, sbxfile.DecodeOptions{Burst: uint64(*burst)})
	if err != nil {
		return xerrors.Errorf("decode: %w", err)
	}
	if err := t.CloseAtomicallyReplace(); err != nil {
		return xerrors.Errorf("finalizing %s: %w", outPath, err)
	}

	fmt.Printf("wrote %s: %d bytes (original name %q)\n", outPath, info.FileSize, info.FileName)
	return nil
}
