package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"github.com/sbx-go/sbx/internal/sbxfile"
)

const repairHelp = `sbx repair [-flags] <container.sbx>...

Reconstruct corrupted blocks of one or more RS-protected containers in
place. Containers are repaired concurrently.
`

func cmdrepair(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("repair", flag.ExitOnError)
	burst := fset.Uint("burst", 1, "RS burst interleaving level used at encode time")
	fset.Usage = usage(fset, repairHelp)
	fset.Parse(args)
	if fset.NArg() == 0 {
		return xerrors.New("required: at least one container argument")
	}

	var (
		mu          sync.Mutex
		anyFailures bool
	)
	eg, ctx := errgroup.WithContext(ctx)
	for _, fn := range fset.Args() {
		fn := fn
		eg.Go(func() error {
			f, err := os.OpenFile(fn, os.O_RDWR, 0)
			if err != nil {
				return xerrors.Errorf("open %s: %w", fn, err)
			}
			defer f.Close()

			failures, err := sbxfile.Repair(f, sbxfile.RepairOptions{Burst: uint64(*burst)})
			if err != nil {
				return xerrors.Errorf("repair %s: %w", fn, err)
			}

			mu.Lock()
			defer mu.Unlock()
			if len(failures) == 0 {
				fmt.Printf("%s: repaired, no unrecoverable sets\n", fn)
				return nil
			}
			anyFailures = true
			for _, rsErr := range failures {
				fmt.Fprintf(os.Stderr, "%s: %v\n", fn, rsErr)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	if anyFailures {
		return xerrors.New("one or more sets could not be fully reconstructed")
	}
	return nil
}
