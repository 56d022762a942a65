package sbxfile

import (
	"io"

	"github.com/sbx-go/sbx/internal/geometry"
	"github.com/sbx-go/sbx/internal/sbxblock"
	"github.com/sbx-go/sbx/internal/sbxerr"
	"github.com/sbx-go/sbx/internal/sbxspecs"
)

// DecodeOptions configures Decode. Burst must match the value used at
// encode time for RS versions; it is not itself stored in the container's
// metadata (spec §3's record list has no burst-level field), so the
// caller supplies it out of band.
type DecodeOptions struct {
	Burst uint64
}

// ReadMeta reads and parses the primary metadata block (physical block 0)
// from ra, without needing to already know the version or RS parameters:
// the header's fixed 16-byte layout (and therefore its version field) is
// the same across every version, so the version can be read before the
// rest of the block's size is known.
func ReadMeta(ra io.ReaderAt) (Info, sbxspecs.Version, error) {
	hdrBuf := make([]byte, sbxspecs.HeaderSize)
	if _, err := ra.ReadAt(hdrBuf, 0); err != nil {
		return Info{}, 0, err
	}
	h, err := sbxblock.UnmarshalHeader(hdrBuf)
	if err != nil {
		return Info{}, 0, err
	}

	dataBuf := make([]byte, sbxspecs.DataSize(h.Version))
	if _, err := ra.ReadAt(dataBuf, int64(sbxspecs.HeaderSize)); err != nil {
		return Info{}, 0, err
	}

	b := sbxblock.NewBlock(h.Version, h.FileUID, sbxblock.Data)
	copy(b.HeaderBuf(), hdrBuf)
	copy(b.DataBuf(), dataBuf)
	if err := b.SyncFromBuffer(); err != nil {
		return Info{}, 0, err
	}
	records, err := b.Records()
	if err != nil {
		return Info{}, 0, err
	}
	info, err := parseInfo(records)
	if err != nil {
		return Info{}, 0, err
	}
	return info, h.Version, nil
}

// Decode reads container bytes from ra and writes the reconstructed
// original file, truncated to the FSZ record's size, to w. It does not tolerate
// corrupted blocks; use Repair first if the container may be damaged.
func Decode(ra io.ReaderAt, w io.Writer, opts DecodeOptions) (Info, error) {
	info, version, err := ReadMeta(ra)
	if err != nil {
		return Info{}, err
	}

	blockSize := sbxspecs.BlockSize(version)
	dataSize := sbxspecs.DataSize(version)
	usesRS := sbxspecs.UsesRS(version)

	chunkCount := geometry.ChunkCount(info.FileSize, dataSize)

	var dataShards, parityShards uint64
	if usesRS {
		dataShards = uint64(info.DataShards)
		parityShards = uint64(info.ParityShards)
	}

	remaining := info.FileSize
	for i := uint64(0); i < chunkCount; i++ {
		var physIdx uint64
		if usesRS {
			setIdx := i / dataShards
			localD := i % dataShards
			seqNum := geometry.SetSeqNum(setIdx, parityShards+localD, dataShards, parityShards)
			physIdx = geometry.WriteIndex(seqNum, dataShards, parityShards, opts.Burst, true)
		} else {
			physIdx = i + 1
		}

		buf := make([]byte, blockSize)
		if _, err := ra.ReadAt(buf, int64(physIdx*blockSize)); err != nil {
			return Info{}, err
		}
		b := sbxblock.NewBlock(version, [sbxspecs.FileUIDLen]byte{}, sbxblock.Data)
		copy(b.HeaderBuf(), buf[:sbxspecs.HeaderSize])
		copy(b.DataBuf(), buf[sbxspecs.HeaderSize:])
		if err := b.SyncFromBuffer(); err != nil {
			return Info{}, err
		}
		ok, err := b.VerifyCRC()
		if err != nil {
			return Info{}, err
		}
		if !ok {
			return Info{}, sbxerr.New(sbxerr.ParseError, "block at seq_num %d failed CRC verification", b.Header().SeqNum)
		}

		n := dataSize
		if remaining < n {
			n = remaining
		}
		if _, err := w.Write(b.DataBuf()[:n]); err != nil {
			return Info{}, err
		}
		remaining -= n
	}
	return info, nil
}
