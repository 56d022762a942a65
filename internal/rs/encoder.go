package rs

import (
	"github.com/klauspost/reedsolomon"
)

// Encoder streams data shards into complete block sets, emitting P parity
// shards at each set boundary (spec §4.G). It operates purely on data-region
// byte slices; callers are responsible for wrapping the parity bytes in
// sbxblock.Block values with properly assigned version, file UID and
// seq_num.
type Encoder struct {
	dataShards, parityShards uint64
	shardSize                int
	enc                      reedsolomon.Encoder
	buf                      [][]byte
}

// NewEncoder builds a streaming encoder for the given shard counts and
// per-shard size (a version's data_size).
func NewEncoder(dataShards, parityShards uint64, shardSize int) (*Encoder, error) {
	enc, err := reedsolomon.New(int(dataShards), int(parityShards))
	if err != nil {
		return nil, err
	}
	return &Encoder{
		dataShards:   dataShards,
		parityShards: parityShards,
		shardSize:    shardSize,
		enc:          enc,
		buf:          make([][]byte, 0, dataShards),
	}, nil
}

// Push appends one real data shard to the current set. Once dataShards
// shards have been pushed, it computes and returns the P parity shards for
// the completed set (complete=true) and resets for the next set. Before
// that point it returns (nil, false, nil).
func (e *Encoder) Push(shard []byte) (parity [][]byte, complete bool, err error) {
	cp := make([]byte, e.shardSize)
	copy(cp, shard)
	e.buf = append(e.buf, cp)
	if uint64(len(e.buf)) < e.dataShards {
		return nil, false, nil
	}
	parity, err = e.computeParity()
	e.buf = e.buf[:0]
	return parity, true, err
}

// Flush computes parity for a short final set (spec §4.G): the buf's real
// shards (fewer than dataShards, possibly zero of them) are zero-padded up
// to a full set before computing parity. Only the P parity shards are
// returned; the caller must not emit the zero-padded data shards as blocks.
func (e *Encoder) Flush() ([][]byte, error) {
	for uint64(len(e.buf)) < e.dataShards {
		e.buf = append(e.buf, make([]byte, e.shardSize))
	}
	parity, err := e.computeParity()
	e.buf = e.buf[:0]
	return parity, err
}

// Pending reports how many real data shards are currently buffered for the
// in-progress set.
func (e *Encoder) Pending() int { return len(e.buf) }

func (e *Encoder) computeParity() ([][]byte, error) {
	shards := make([][]byte, e.dataShards+e.parityShards)
	copy(shards, e.buf)
	for i := e.dataShards; i < e.dataShards+e.parityShards; i++ {
		shards[i] = make([]byte, e.shardSize)
	}
	if err := e.enc.Encode(shards); err != nil {
		return nil, err
	}
	return shards[e.dataShards:], nil
}
