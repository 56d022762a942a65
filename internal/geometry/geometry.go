// Package geometry implements the sbx container geometry calculator
// (spec §4.F): block counts, container size, and the burst write-index
// map from logical (block-type, sequence-number) to physical block
// position.
package geometry

// Counts summarizes a container's block population.
type Counts struct {
	Meta   uint64
	Data   uint64
	Parity uint64
	Total  uint64
}

// ChunkCount returns ceil(origSize/dataSize), the number of data blocks an
// input of origSize bytes splits into. An empty input yields 0.
func ChunkCount(origSize, dataSize uint64) uint64 {
	if origSize == 0 {
		return 0
	}
	return ceilDiv(origSize, dataSize)
}

func ceilDiv(a, b uint64) uint64 {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// NonRSCounts computes block counts for a non-RS version (spec §4.F):
// meta = 1 (or 0 if metaEnabled is false), data = chunkCount, parity = 0.
func NonRSCounts(chunkCount uint64, metaEnabled bool) Counts {
	var meta uint64
	if metaEnabled {
		meta = 1
	}
	return Counts{Meta: meta, Data: chunkCount, Parity: 0, Total: meta + chunkCount}
}

// SetCount returns the number of RS block sets chunkCount data blocks
// split into, at D data shards per set. An empty input still requires one
// (parity-only, zero-padded) set, per spec §8's boundary behavior.
func SetCount(chunkCount, dataShards uint64) uint64 {
	if chunkCount == 0 {
		return 1
	}
	return ceilDiv(chunkCount, dataShards)
}

// RSCounts computes block counts for an RS version (spec §4.F):
// meta = (1+P) (or 0 if metaEnabled is false) primary-plus-parity-copies
// of the metadata block, data = chunkCount (real data blocks emitted),
// parity = SetCount*P (every set, including a short final one, carries
// full parity width and is always real, never phantom).
//
// Total is the container's full shard-slot footprint, meta+SetCount*(D+P):
// a short final set's missing data shards are zero-padded for the RS
// computation and occupy physical space in the interleaved layout, but
// are never themselves written, so Total can exceed Meta+Data+Parity (the
// real block count) by exactly that padding. Total is what drives
// container sizing; Data and Parity are what the encoder actually emits.
func RSCounts(chunkCount, dataShards, parityShards uint64, metaEnabled bool) Counts {
	var meta uint64
	if metaEnabled {
		meta = 1 + parityShards
	}
	sets := SetCount(chunkCount, dataShards)
	parity := sets * parityShards
	total := meta + sets*(dataShards+parityShards)
	return Counts{Meta: meta, Data: chunkCount, Parity: parity, Total: total}
}

// MetaBlockCount is the number of physical positions reserved for
// metadata-copies at the front of an RS container: one primary plus P
// redundant copies, all carrying seq_num 0.
func MetaBlockCount(parityShards uint64, metaEnabled bool) uint64 {
	if !metaEnabled {
		return 0
	}
	return 1 + parityShards
}

// TotalShards is the full-width shard-slot count across every RS set
// (including the zero-padded tail of a short final set): SetCount*(D+P).
// This is always >= RSCounts(...).Data+RSCounts(...).Parity, and the
// difference is exactly the zero-padded positions at the tail that are
// never emitted as real blocks but still occupy physical space (spec §4.F
// "Container size").
func TotalShards(chunkCount, dataShards, parityShards uint64) uint64 {
	return SetCount(chunkCount, dataShards) * (dataShards + parityShards)
}

// WriteIndex is the burst write-index map (spec §4.F): it maps a 1-based
// data/parity sequence number (seq_num 0 is reserved for metadata and is
// never passed here) to its physical block position, accounting for the
// metadata copies occupying the front of the container and for burst
// interleaving across B consecutive block sets.
//
// Within one block set, the P parity shards occupy the lowest local
// sequence-number offsets (0..P-1) and the D data shards occupy the
// remaining offsets (P..P+D-1); see SetSeqNum for the inverse assignment
// an encoder uses to pick concrete seq_num values. Within a super-block-set
// of B interleaved sets, shard k of set c is physically placed at local
// position k*B+c: all B sets' shard-0 rows first, then all B sets'
// shard-1 rows, and so on, so that a contiguous run of up to B corrupted
// physical blocks damages at most one shard per set.
func WriteIndex(seqNum, dataShards, parityShards, burst uint64, metaEnabled bool) uint64 {
	setSize := dataShards + parityShards
	super := setSize * burst

	s := seqNum - 1 // 0-based index among data+parity shards only
	g := s / super
	r := s % super
	c := r / setSize // which set within the super-set, 0..burst-1
	k := r % setSize // local shard offset within that set, 0..setSize-1

	pos := k*burst + c
	return MetaBlockCount(parityShards, metaEnabled) + g*super + pos
}

// SetSeqNum returns the 1-based seq_num an encoder should assign to shard
// localOffset (0..P-1 for parity shard localOffset, P..P+D-1 for data
// shard localOffset-P) of block set setIdx (0-based), consistent with
// WriteIndex's row convention.
func SetSeqNum(setIdx, localOffset, dataShards, parityShards uint64) uint64 {
	return 1 + setIdx*(dataShards+parityShards) + localOffset
}

// ContainerSize computes the total container size in bytes.
func ContainerSize(blockSize uint64, chunkCount uint64, dataShards, parityShards, burst uint64, metaEnabled bool, usesRS bool) uint64 {
	if !usesRS {
		return blockSize * NonRSCounts(chunkCount, metaEnabled).Total
	}
	total := TotalShards(chunkCount, dataShards, parityShards)
	if total == 0 {
		return blockSize * MetaBlockCount(parityShards, metaEnabled)
	}
	maxIndex := WriteIndex(total, dataShards, parityShards, burst, metaEnabled)
	return blockSize * (maxIndex + 1)
}
