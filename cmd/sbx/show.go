package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"golang.org/x/xerrors"

	"github.com/sbx-go/sbx/internal/sbxblock"
	"github.com/sbx-go/sbx/internal/sbxfile"
	"github.com/sbx-go/sbx/internal/sbxspecs"
)

const showHelp = `sbx show [-flags] <container.sbx>

Print one block's header, and the metadata block's records when it is
one, for diagnosis.
`

func cmdshow(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("show", flag.ExitOnError)
	index := fset.Uint64("block", 0, "physical block index to show")
	fset.Usage = usage(fset, showHelp)
	fset.Parse(args)
	if fset.NArg() != 1 {
		return xerrors.New("required: exactly one container argument")
	}

	f, err := os.Open(fset.Arg(0))
	if err != nil {
		return xerrors.Errorf("open: %w", err)
	}
	defer f.Close()

	hdrBuf := make([]byte, sbxspecs.HeaderSize)
	if _, err := f.ReadAt(hdrBuf, 0); err != nil {
		return xerrors.Errorf("reading leading header: %w", err)
	}
	lead, err := sbxblock.UnmarshalHeader(hdrBuf)
	if err != nil {
		return xerrors.Errorf("parsing leading header: %w", err)
	}

	blockSize := sbxspecs.BlockSize(lead.Version)
	buf := make([]byte, blockSize)
	if _, err := f.ReadAt(buf, int64(*index*blockSize)); err != nil {
		return xerrors.Errorf("reading block %d: %w", *index, err)
	}
	b := sbxblock.NewBlock(lead.Version, lead.FileUID, sbxblock.Data)
	copy(b.HeaderBuf(), buf[:sbxspecs.HeaderSize])
	copy(b.DataBuf(), buf[sbxspecs.HeaderSize:])
	if err := b.SyncFromBuffer(); err != nil {
		return xerrors.Errorf("parsing block %d: %w", *index, err)
	}

	h := b.Header()
	ok, err := b.VerifyCRC()
	if err != nil {
		return xerrors.Errorf("verifying CRC: %w", err)
	}
	fmt.Printf("block %d: version=%d kind=%s seq_num=%d crc=%#04x crc_ok=%v file_uid=%x\n",
		*index, h.Version, b.Kind(), h.SeqNum, h.CRC, ok, h.FileUID)

	if !h.IsMeta() {
		return nil
	}
	info, _, err := sbxfile.ReadMeta(f)
	if err != nil {
		return xerrors.Errorf("parsing metadata records: %w", err)
	}
	fmt.Printf("  file_name=%q container_name=%q file_size=%d\n", info.FileName, info.ContainerFN, info.FileSize)
	fmt.Printf("  file_mtime=%d created_at=%d\n", info.FileModTime, info.CreatedAt)
	if info.Hash != nil {
		fmt.Printf("  hash=%x\n", info.Hash.Digest)
	}
	if sbxspecs.UsesRS(lead.Version) {
		fmt.Printf("  rs_data_shards=%d rs_parity_shards=%d\n", info.DataShards, info.ParityShards)
	}
	return nil
}
