// Package rs implements the Reed-Solomon pipeline (spec §4.G-H): streaming
// encoding of data blocks into complete block sets, and per-set erasure
// repair given a presence bitmap. It wraps klauspost/reedsolomon, which
// supplies the actual GF(2^8) Vandermonde-matrix arithmetic.
package rs

func ceilDiv(a, b uint64) uint64 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// LastDataSetSize is the number of real data shards in the final set, given
// D data shards per set and total_shards real data shards overall.
func LastDataSetSize(dataShards, totalShards uint64) uint64 {
	if totalShards == 0 {
		return 0
	}
	return ((totalShards - 1) % dataShards) + 1
}

// LastDataSetStartIndex is the 0-based data-shard index (not seq_num) at
// which the final set's data shards begin.
func LastDataSetStartIndex(dataShards, totalShards uint64) uint64 {
	return totalShards - LastDataSetSize(dataShards, totalShards)
}

// LastSetStartSeqNum is the 0-based offset, in data+parity seq_num space, at
// which the final set begins (set boundaries are always D+P wide) when
// totalShards is not a multiple of D; when it is, the result is the offset
// just past the last full set. Callers needing a 1-based seq_num (seq_num 0
// is reserved for metadata) add 1.
func LastSetStartSeqNum(dataShards, parityShards, totalShards uint64) uint64 {
	return (totalShards / dataShards) * (dataShards + parityShards)
}

// CalcParityShards is the number of parity shards mathematically necessary
// to protect a set of setSize real data shards (which may be less than a
// full P for a short final set, even though the encoder and geometry
// calculator always allocate and write a full P parity width per set).
func CalcParityShards(dataShards, parityShards, setSize uint64) uint64 {
	return ceilDiv(setSize*parityShards, dataShards)
}
