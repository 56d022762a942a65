package sbxfile

import (
	"io"

	"github.com/sbx-go/sbx/internal/geometry"
	"github.com/sbx-go/sbx/internal/rs"
	"github.com/sbx-go/sbx/internal/sbxblock"
	"github.com/sbx-go/sbx/internal/sbxerr"
	"github.com/sbx-go/sbx/internal/sbxspecs"
)

// ReadWriterAt is the random-access file handle Repair needs: *os.File
// satisfies it directly.
type ReadWriterAt interface {
	io.ReaderAt
	io.WriterAt
}

// RepairOptions mirrors DecodeOptions: Burst must match the value used at
// encode time.
type RepairOptions struct {
	Burst uint64
}

// Repair scans every RS block set in the container, attempting to
// reconstruct missing or corrupted shards in place. It returns one
// *sbxerr.Error (wrapping an RSError) per set that could not be repaired
// (fewer than D shards present); the scan continues past each one (spec
// §4.H, §7's "collected" propagation policy). A non-RS version carries no
// redundancy: Repair then scans nothing and returns a ParseError as its
// error result.
func Repair(f ReadWriterAt, opts RepairOptions) ([]*sbxerr.Error, error) {
	info, version, err := ReadMeta(f)
	if err != nil {
		return nil, err
	}
	if !sbxspecs.UsesRS(version) {
		return nil, sbxerr.New(sbxerr.ParseError, "version %d carries no redundancy to repair", version)
	}

	blockSize := sbxspecs.BlockSize(version)
	dataSize := sbxspecs.DataSize(version)
	dataShards := uint64(info.DataShards)
	parityShards := uint64(info.ParityShards)

	chunkCount := geometry.ChunkCount(info.FileSize, dataSize)
	sets := geometry.SetCount(chunkCount, dataShards)

	repairer, err := rs.NewRepairer(dataShards, parityShards)
	if err != nil {
		return nil, err
	}

	var failures []*sbxerr.Error
	setSize := dataShards + parityShards
	for setIdx := uint64(0); setIdx < sets; setIdx++ {
		shards := make([][]byte, setSize)
		present := make([]bool, setSize)
		offsets := make([]uint64, setSize)

		for local := uint64(0); local < setSize; local++ {
			seqNum := geometry.SetSeqNum(setIdx, local, dataShards, parityShards)
			physIdx := geometry.WriteIndex(seqNum, dataShards, parityShards, opts.Burst, true)
			offsets[local] = physIdx * blockSize

			buf := make([]byte, blockSize)
			if _, err := f.ReadAt(buf, int64(offsets[local])); err != nil {
				shards[local] = make([]byte, dataSize)
				present[local] = false
				continue
			}
			b := sbxblock.NewBlock(version, [sbxspecs.FileUIDLen]byte{}, sbxblock.Data)
			copy(b.HeaderBuf(), buf[:sbxspecs.HeaderSize])
			copy(b.DataBuf(), buf[sbxspecs.HeaderSize:])
			if err := b.SyncFromBuffer(); err != nil {
				shards[local] = make([]byte, dataSize)
				present[local] = false
				continue
			}
			ok, err := b.VerifyCRC()
			if err != nil || !ok {
				shards[local] = make([]byte, dataSize)
				present[local] = false
				continue
			}
			shards[local] = append([]byte{}, b.DataBuf()...)
			present[local] = true
		}

		seqStart := geometry.SetSeqNum(setIdx, 0, dataShards, parityShards)
		err := repairer.Repair(shards, present, version, uint32(seqStart), uint32(setSize), sbxerr.Data)
		if err != nil {
			if sbxErr, ok := err.(*sbxerr.Error); ok {
				failures = append(failures, sbxErr)
				continue
			}
			return failures, err
		}

		for local, wasPresent := range present {
			if wasPresent {
				continue
			}
			b := sbxblock.NewBlock(version, [sbxspecs.FileUIDLen]byte{}, sbxblock.Data)
			h := b.Header()
			h.SeqNum = uint32(geometry.SetSeqNum(setIdx, uint64(local), dataShards, parityShards))
			b.SetHeader(h)
			copy(b.DataBuf(), shards[local])
			if err := b.SyncToBuffer(true); err != nil {
				return failures, err
			}
			if _, err := f.WriteAt(b.Buf(), int64(offsets[local])); err != nil {
				return failures, err
			}
		}
	}

	return failures, nil
}
