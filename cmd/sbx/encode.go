package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio"
	"github.com/mattn/go-isatty"
	"golang.org/x/sys/unix"
	"golang.org/x/xerrors"

	"github.com/sbx-go/sbx/internal/geometry"
	"github.com/sbx-go/sbx/internal/randutil"
	"github.com/sbx-go/sbx/internal/sbxfile"
	"github.com/sbx-go/sbx/internal/sbxspecs"
)

const encodeHelp = `sbx encode [-flags] <file>

Package a file into an sbx container, written atomically to <file>.sbx
(or -out, if given).
`

func cmdencode(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("encode", flag.ExitOnError)
	var (
		version = fset.String("v", "1", "sbx format version")
		data    = fset.Uint("data", 10, "RS data shard count (RS versions only)")
		parity  = fset.Uint("parity", 2, "RS parity shard count (RS versions only)")
		burst   = fset.Uint("burst", 1, "RS burst interleaving level")
		out     = fset.String("out", "", "output container path (default: <file>.sbx)")
		hash    = fset.String("hash", "sha256", "content hash to embed: sha1, sha256, sha512, blake2b256, blake2b512, blake2s128, blake2s256, or \"\" for none")
		padMeta = fset.Bool("pad-meta", false, "pad the metadata block's remaining space with random bytes")
	)
	fset.Usage = usage(fset, encodeHelp)
	fset.Parse(args)
	if fset.NArg() != 1 {
		return xerrors.New("required: exactly one file argument")
	}
	in := fset.Arg(0)

	v, err := parseVersion(*version)
	if err != nil {
		return err
	}
	code, wantHash, err := parseHashCode(*hash)
	if err != nil {
		return err
	}

	f, err := os.Open(in)
	if err != nil {
		return xerrors.Errorf("open: %w", err)
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return xerrors.Errorf("stat: %w", err)
	}

	uid, err := randutil.FileUID()
	if err != nil {
		return xerrors.Errorf("generating file uid: %w", err)
	}

	D, P, B := uint64(*data), uint64(*parity), uint64(*burst)
	opts := sbxfile.EncodeOptions{
		Version:      v,
		FileUID:      uid,
		DataShards:   D,
		ParityShards: P,
		Burst:        B,
		FileName:     filepath.Base(in),
		FileModTime:  fi.ModTime().Unix(),
		CreatedAt:    time.Now().Unix(),
		PadMeta:      *padMeta,
	}
	if wantHash {
		opts = opts.WithHash(code)
	}

	outPath := *out
	if outPath == "" {
		outPath = in + ".sbx"
	}
	opts.ContainerFN = filepath.Base(outPath)

	// renameio writes to a temp file beside outPath and renames into place
	// on Close, so a crash mid-encode never leaves a truncated container at
	// the final path. sbxfile.Encode seeks back to fill in the metadata
	// block once the file size and hash are known, which the returned
	// *renameio.PendingFile supports directly since it wraps a regular
	// *os.File.
	t, err := renameio.TempFile("", outPath)
	if err != nil {
		return xerrors.Errorf("creating temp file: %w", err)
	}
	defer t.Cleanup()

	blockSize := sbxspecs.BlockSize(v)
	chunks := geometry.ChunkCount(uint64(fi.Size()), sbxspecs.DataSize(v))
	estSize := geometry.ContainerSize(blockSize, chunks, D, P, B, true, sbxspecs.UsesRS(v))
	if err := unix.Fallocate(int(t.Fd()), 0, 0, int64(estSize)); err != nil && err != unix.ENOSYS && err != unix.EOPNOTSUPP {
		return xerrors.Errorf("preallocating %s: %w", outPath, err)
	}

	stats, err := sbxfile.Encode(f, t, opts)
	if err != nil {
		return xerrors.Errorf("encode: %w", err)
	}
	if err := t.CloseAtomicallyReplace(); err != nil {
		return xerrors.Errorf("finalizing %s: %w", outPath, err)
	}

	if isatty.IsTerminal(os.Stdout.Fd()) {
		fmt.Printf("wrote %s: %d chunk(s), %d bytes\n", outPath, stats.ChunkCount, stats.ContainerSize)
	} else {
		fmt.Printf("%s\t%d\t%d\n", outPath, stats.ChunkCount, stats.ContainerSize)
	}
	return nil
}
