package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/xerrors"

	"github.com/sbx-go/sbx/internal/geometry"
	"github.com/sbx-go/sbx/internal/sbxspecs"
)

const calcHelp = `sbx calc [-flags] <infile-size>

Calculate the sbx container size and block distribution for an input of
the given size, in bytes, without touching any file.
`

// calcResult is the -json output shape for sbx calc.
type calcResult struct {
	Version       sbxspecs.Version `json:"version"`
	BlockSize     uint64           `json:"block_size"`
	DataSize      uint64           `json:"data_size"`
	MetaBlocks    uint64           `json:"meta_block_count"`
	DataBlocks    uint64           `json:"data_block_count"`
	ParityBlocks  *uint64          `json:"parity_block_count,omitempty"`
	RSDataShards  *uint64          `json:"rs_data_shards,omitempty"`
	RSParShards   *uint64          `json:"rs_parity_shards,omitempty"`
	RSBurst       *uint64          `json:"rs_burst_level,omitempty"`
	FileSize      uint64           `json:"file_size"`
	ContainerSize uint64           `json:"container_size"`
}

func cmdcalc(ctx context.Context, args []string) error {
	fset := flag.NewFlagSet("calc", flag.ExitOnError)
	var (
		version = fset.String("v", "1", "sbx format version")
		data    = fset.Uint("data", 10, "RS data shard count (RS versions only)")
		parity  = fset.Uint("parity", 2, "RS parity shard count (RS versions only)")
		burst   = fset.Uint("burst", 1, "RS burst interleaving level")
		noMeta  = fset.Bool("no-meta", false, "exclude the metadata block from the count (non-RS versions only; RS versions always count their metadata blocks)")
		asJSON  = fset.Bool("json", false, "print the result as JSON instead of plain text")
	)
	fset.Usage = usage(fset, calcHelp)
	fset.Parse(args)
	if fset.NArg() != 1 {
		return xerrors.New("required: exactly one infile-size argument")
	}

	fileSize, err := strconv.ParseUint(fset.Arg(0), 10, 64)
	if err != nil {
		return xerrors.Errorf("invalid infile-size %q: %w", fset.Arg(0), err)
	}

	v, err := parseVersion(*version)
	if err != nil {
		return err
	}

	blockSize := sbxspecs.BlockSize(v)
	dataSize := sbxspecs.DataSize(v)
	chunks := geometry.ChunkCount(fileSize, dataSize)
	metaEnabled := !*noMeta || sbxspecs.UsesRS(v)

	var res calcResult
	res.Version = v
	res.BlockSize = blockSize
	res.DataSize = dataSize
	res.FileSize = fileSize

	if sbxspecs.UsesRS(v) {
		D, P, B := uint64(*data), uint64(*parity), uint64(*burst)
		counts := geometry.RSCounts(chunks, D, P, metaEnabled)
		res.MetaBlocks = counts.Meta
		res.DataBlocks = counts.Data
		res.ParityBlocks = &counts.Parity
		res.RSDataShards = &D
		res.RSParShards = &P
		res.RSBurst = &B
		res.ContainerSize = geometry.ContainerSize(blockSize, chunks, D, P, B, metaEnabled, true)
	} else {
		counts := geometry.NonRSCounts(chunks, metaEnabled)
		res.MetaBlocks = counts.Meta
		res.DataBlocks = counts.Data
		res.ContainerSize = geometry.ContainerSize(blockSize, chunks, 0, 0, 0, metaEnabled, false)
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	fmt.Printf("SBX container version        : %d\n", res.Version)
	fmt.Printf("SBX container block size     : %d\n", res.BlockSize)
	fmt.Printf("SBX container data  size     : %d\n", res.DataSize)
	fmt.Println()
	if res.ParityBlocks != nil {
		fmt.Printf("Metadata    block count      : %d\n", res.MetaBlocks)
		fmt.Printf("Data only   block count      : %d\n", res.DataBlocks)
		fmt.Printf("Data parity block count      : %d\n", *res.ParityBlocks)
	} else {
		fmt.Printf("Metadata block count         : %d\n", res.MetaBlocks)
		fmt.Printf("Data     block count         : %d\n", res.DataBlocks)
	}
	fmt.Println()
	if res.RSDataShards != nil {
		fmt.Printf("RS data   shard count        : %d\n", *res.RSDataShards)
		fmt.Printf("RS parity shard count        : %d\n", *res.RSParShards)
		fmt.Printf("Burst error resistance level : %d\n", *res.RSBurst)
	} else {
		fmt.Printf("RS data   shard count        : version does not use RS\n")
		fmt.Printf("RS parity shard count        : version does not use RS\n")
		fmt.Printf("Burst error resistance level : version does not support burst error resistance\n")
	}
	fmt.Println()
	fmt.Printf("File size                    : %d\n", res.FileSize)
	fmt.Printf("SBX container size           : %d\n", res.ContainerSize)
	return nil
}
