package sbxfile

import (
	"hash"
	"io"

	"github.com/sbx-go/sbx/internal/geometry"
	"github.com/sbx-go/sbx/internal/multihash"
	"github.com/sbx-go/sbx/internal/rs"
	"github.com/sbx-go/sbx/internal/sbxblock"
	"github.com/sbx-go/sbx/internal/sbxspecs"
)

// EncodeOptions configures a single Encode call. DataShards/ParityShards
// and Burst are only meaningful when sbxspecs.UsesRS(Version) is true.
type EncodeOptions struct {
	Version      sbxspecs.Version
	FileUID      [sbxspecs.FileUIDLen]byte
	DataShards   uint64
	ParityShards uint64
	Burst        uint64

	FileName    string
	ContainerFN string
	FileModTime int64
	CreatedAt   int64

	// HashCode selects the multihash function used to embed a content
	// hash in the metadata block's HSH record. It takes effect only when
	// set through WithHash; setting the field directly computes no hash.
	HashCode    multihash.Code
	computeHash bool

	// PadMeta fills the remainder of the metadata block's data region
	// with random bytes (a PID record) rather than leaving it zero.
	PadMeta bool
}

// EncodeStats reports the input size, the number of data chunks Encode
// wrote, and the container size the geometry calculator gives for them.
// For RS versions with a short final set, ContainerSize includes the
// positions of that set's zero-padded data shards, which Encode never
// writes.
type EncodeStats struct {
	FileSize      uint64
	ChunkCount    uint64
	ContainerSize uint64
}

// wantHash reports whether WithHash requested a content hash; a separate
// flag is kept because no multihash.Code zero value means "none".
func (o EncodeOptions) wantHash() bool { return o.computeHash }

// WithHash returns a copy of o configured to compute a content hash with
// the given multihash code.
func (o EncodeOptions) WithHash(code multihash.Code) EncodeOptions {
	o.HashCode = code
	o.computeHash = true
	return o
}

// Encode reads all of r, splits it into data blocks, optionally computes
// RS parity per block set, and writes a complete container to w. w must
// support seeking because the metadata block's content (file size, hash)
// is only known once the input is exhausted, while the metadata block(s)
// occupy the front of the container.
func Encode(r io.Reader, w io.WriteSeeker, opts EncodeOptions) (EncodeStats, error) {
	blockSize := sbxspecs.BlockSize(opts.Version)
	dataSize := sbxspecs.DataSize(opts.Version)
	usesRS := sbxspecs.UsesRS(opts.Version)

	var rsEnc *rs.Encoder
	if usesRS {
		var err error
		rsEnc, err = rs.NewEncoder(opts.DataShards, opts.ParityShards, int(dataSize))
		if err != nil {
			return EncodeStats{}, err
		}
	}

	var hasher hash.Hash
	if opts.wantHash() {
		var err error
		hasher, err = multihash.NewHasher(opts.HashCode)
		if err != nil {
			return EncodeStats{}, err
		}
	}

	writeBlockAt := func(b *sbxblock.Block, physIdx uint64) error {
		if err := b.SyncToBuffer(true); err != nil {
			return err
		}
		if _, err := w.Seek(int64(physIdx*blockSize), io.SeekStart); err != nil {
			return err
		}
		_, err := w.Write(b.Buf())
		return err
	}

	var chunkIdx uint64
	var fileSize uint64
	buf := make([]byte, dataSize)
	for {
		n, readErr := io.ReadFull(r, buf)
		if n > 0 {
			if hasher != nil {
				hasher.Write(buf[:n])
			}
			fileSize += uint64(n)

			for i := n; i < len(buf); i++ {
				buf[i] = 0
			}

			b := sbxblock.NewBlock(opts.Version, opts.FileUID, sbxblock.Data)
			h := b.Header()
			var seqNum uint64
			var physIdx uint64
			if usesRS {
				setIdx := chunkIdx / opts.DataShards
				localD := chunkIdx % opts.DataShards
				seqNum = geometry.SetSeqNum(setIdx, opts.ParityShards+localD, opts.DataShards, opts.ParityShards)
				physIdx = geometry.WriteIndex(seqNum, opts.DataShards, opts.ParityShards, opts.Burst, true)
			} else {
				seqNum = chunkIdx + 1
				physIdx = seqNum
			}
			h.SeqNum = uint32(seqNum)
			b.SetHeader(h)
			copy(b.DataBuf(), buf)
			if err := writeBlockAt(b, physIdx); err != nil {
				return EncodeStats{}, err
			}

			if usesRS {
				parity, complete, err := rsEnc.Push(buf)
				if err != nil {
					return EncodeStats{}, err
				}
				if complete {
					setIdx := chunkIdx / opts.DataShards
					if err := emitParitySet(writeBlockAt, opts, setIdx, parity); err != nil {
						return EncodeStats{}, err
					}
				}
			}
			chunkIdx++
		}
		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			break
		}
		if readErr != nil {
			return EncodeStats{}, readErr
		}
	}

	if usesRS && (chunkIdx == 0 || chunkIdx%opts.DataShards != 0) {
		setIdx := chunkIdx / opts.DataShards
		parity, err := rsEnc.Flush()
		if err != nil {
			return EncodeStats{}, err
		}
		if err := emitParitySet(writeBlockAt, opts, setIdx, parity); err != nil {
			return EncodeStats{}, err
		}
	}

	info := Info{
		FileName:    opts.FileName,
		ContainerFN: opts.ContainerFN,
		FileSize:    fileSize,
		FileModTime: opts.FileModTime,
		CreatedAt:   opts.CreatedAt,
	}
	if usesRS {
		info.DataShards = uint8(opts.DataShards)
		info.ParityShards = uint8(opts.ParityShards)
	}
	if hasher != nil {
		mh := multihash.Multihash{Code: opts.HashCode, Digest: hasher.Sum(nil)}
		info.Hash = &mh
	}

	var padTo uint64
	if opts.PadMeta {
		padTo = dataSize
	}
	records, err := buildRecords(info, padTo)
	if err != nil {
		return EncodeStats{}, err
	}

	metaBlock := sbxblock.NewBlock(opts.Version, opts.FileUID, sbxblock.Meta)
	if err := metaBlock.SetRecords(records); err != nil {
		return EncodeStats{}, err
	}
	if err := metaBlock.SyncToBuffer(true); err != nil {
		return EncodeStats{}, err
	}

	metaCopies := uint64(1)
	if usesRS {
		metaCopies = geometry.MetaBlockCount(opts.ParityShards, true)
	}
	for i := uint64(0); i < metaCopies; i++ {
		if _, err := w.Seek(int64(i*blockSize), io.SeekStart); err != nil {
			return EncodeStats{}, err
		}
		if _, err := w.Write(metaBlock.Buf()); err != nil {
			return EncodeStats{}, err
		}
	}

	chunkCount := chunkIdx
	var containerSize uint64
	if usesRS {
		containerSize = geometry.ContainerSize(blockSize, chunkCount, opts.DataShards, opts.ParityShards, opts.Burst, true, true)
	} else {
		containerSize = geometry.ContainerSize(blockSize, chunkCount, 0, 0, 0, true, false)
	}

	return EncodeStats{FileSize: fileSize, ChunkCount: chunkCount, ContainerSize: containerSize}, nil
}

func emitParitySet(writeBlockAt func(*sbxblock.Block, uint64) error, opts EncodeOptions, setIdx uint64, parity [][]byte) error {
	for p := uint64(0); p < opts.ParityShards; p++ {
		seqNum := geometry.SetSeqNum(setIdx, p, opts.DataShards, opts.ParityShards)
		physIdx := geometry.WriteIndex(seqNum, opts.DataShards, opts.ParityShards, opts.Burst, true)

		b := sbxblock.NewBlock(opts.Version, opts.FileUID, sbxblock.Data)
		h := b.Header()
		h.SeqNum = uint32(seqNum)
		b.SetHeader(h)
		copy(b.DataBuf(), parity[p])
		if err := writeBlockAt(b, physIdx); err != nil {
			return err
		}
	}
	return nil
}
