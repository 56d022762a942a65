package rs

import (
	"github.com/klauspost/reedsolomon"

	"github.com/sbx-go/sbx/internal/sbxerr"
	"github.com/sbx-go/sbx/internal/sbxspecs"
)

// Repairer reconstructs one block set's missing shards given a presence
// bitmap (spec §4.H). If fewer than dataShards shards are present, the set
// is irrecoverable; Repair reports it as an *sbxerr.Error wrapping an
// RSError, carrying enough context for the caller to log and continue to
// the next set.
type Repairer struct {
	dataShards, parityShards uint64
	dec                      reedsolomon.Encoder
}

// NewRepairer builds a repairer for the given shard counts.
func NewRepairer(dataShards, parityShards uint64) (*Repairer, error) {
	dec, err := reedsolomon.New(int(dataShards), int(parityShards))
	if err != nil {
		return nil, err
	}
	return &Repairer{dataShards: dataShards, parityShards: parityShards, dec: dec}, nil
}

// Repair attempts to reconstruct the shards in place: shards[i] is used as
// given when present[i] is true, and is overwritten with the reconstructed
// content when present[i] is false and repair succeeds. version, seqStart,
// blockCount and blockType are diagnostic context only, echoed into the
// RSError on failure.
func (r *Repairer) Repair(
	shards [][]byte,
	present []bool,
	version sbxspecs.Version,
	seqStart uint32,
	blockCount uint32,
	blockType sbxerr.BlockType,
) error {
	var presentCount int
	for _, p := range present {
		if p {
			presentCount++
		}
	}
	if uint64(presentCount) < r.dataShards {
		return sbxerr.NewRS(version, seqStart, blockCount, blockType, present)
	}

	work := make([][]byte, len(shards))
	for i, s := range shards {
		if present[i] {
			work[i] = s
		}
	}
	if err := r.dec.Reconstruct(work); err != nil {
		return err
	}
	for i := range shards {
		if !present[i] {
			copy(shards[i], work[i])
		}
	}
	return nil
}
