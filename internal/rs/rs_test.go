package rs

import (
	"bytes"
	"testing"

	"github.com/sbx-go/sbx/internal/sbxerr"
	"github.com/sbx-go/sbx/internal/sbxspecs"
)

func fillShard(size int, b byte) []byte {
	s := make([]byte, size)
	for i := range s {
		s[i] = b
	}
	return s
}

// Round-trip property 3 (spec §8): encode, erase, repair recovers a full
// set exactly.
func TestEncodeEraseRepairFullSet(t *testing.T) {
	const D, P, shardSize = 3, 2, 496
	enc, err := NewEncoder(D, P, shardSize)
	if err != nil {
		t.Fatal(err)
	}

	data := [][]byte{fillShard(shardSize, 1), fillShard(shardSize, 2), fillShard(shardSize, 3)}
	var parity [][]byte
	for i, d := range data {
		p, complete, err := enc.Push(d)
		if err != nil {
			t.Fatal(err)
		}
		if i < len(data)-1 && complete {
			t.Fatalf("set completed early at shard %d", i)
		}
		if i == len(data)-1 {
			if !complete {
				t.Fatal("set did not complete at the D-th shard")
			}
			parity = p
		}
	}
	if len(parity) != P {
		t.Fatalf("got %d parity shards, want %d", len(parity), P)
	}

	shards := append(append([][]byte{}, data...), parity...)
	present := []bool{true, true, true, true, true}

	// Erase two shards (one data, one parity) and repair.
	lost := [][]byte{shards[0], shards[3]}
	_ = lost
	original0 := append([]byte{}, shards[0]...)
	original3 := append([]byte{}, shards[3]...)
	shards[0] = make([]byte, shardSize)
	shards[3] = make([]byte, shardSize)
	present[0] = false
	present[3] = false

	rep, err := NewRepairer(D, P)
	if err != nil {
		t.Fatal(err)
	}
	if err := rep.Repair(shards, present, sbxspecs.V17, 1, D+P, sbxerr.Data); err != nil {
		t.Fatalf("Repair: %v", err)
	}
	if !bytes.Equal(shards[0], original0) {
		t.Error("shard 0 not recovered correctly")
	}
	if !bytes.Equal(shards[3], original3) {
		t.Error("shard 3 not recovered correctly")
	}
}

// Short last set: fewer than D real data shards, zero-padded for RS
// purposes, still yields a full P parity shards (spec §4.G).
func TestEncodeShortLastSet(t *testing.T) {
	const D, P, shardSize = 3, 2, 496
	enc, err := NewEncoder(D, P, shardSize)
	if err != nil {
		t.Fatal(err)
	}
	if _, complete, err := enc.Push(fillShard(shardSize, 9)); err != nil || complete {
		t.Fatalf("unexpected complete/err: %v %v", complete, err)
	}
	if enc.Pending() != 1 {
		t.Fatalf("Pending() = %d, want 1", enc.Pending())
	}
	parity, err := enc.Flush()
	if err != nil {
		t.Fatal(err)
	}
	if len(parity) != P {
		t.Fatalf("got %d parity shards, want %d", len(parity), P)
	}
}

// Irrecoverable set: fewer than D shards present yields an RSError with
// full diagnostic context, and the caller can continue past it.
func TestRepairIrrecoverableSetYieldsRSError(t *testing.T) {
	const D, P, shardSize = 3, 2, 496
	shards := make([][]byte, D+P)
	for i := range shards {
		shards[i] = make([]byte, shardSize)
	}
	present := []bool{true, true, false, false, false} // only 2 of 5, need 3

	rep, err := NewRepairer(D, P)
	if err != nil {
		t.Fatal(err)
	}
	err = rep.Repair(shards, present, sbxspecs.V17, 101, D+P, sbxerr.Data)
	if err == nil {
		t.Fatal("expected RSError")
	}
	sbxErr, ok := err.(*sbxerr.Error)
	if !ok || sbxErr.Kind != sbxerr.RS {
		t.Fatalf("got %v, want RS error", err)
	}
	if sbxErr.RS.BlockSeqStart != 101 || sbxErr.RS.BlockCount != D+P {
		t.Errorf("RSError context = %+v", sbxErr.RS)
	}
}

func TestHelperArithmetic(t *testing.T) {
	const D, P = 3, 2
	// 4 real data shards total: one full set of 3, one short set of 1.
	const totalDataShards = 4
	if got := LastDataSetSize(D, totalDataShards); got != 1 {
		t.Errorf("LastDataSetSize = %d, want 1", got)
	}
	if got := LastDataSetStartIndex(D, totalDataShards); got != 3 {
		t.Errorf("LastDataSetStartIndex = %d, want 3", got)
	}
	if got := CalcParityShards(D, P, 1); got != 1 {
		t.Errorf("CalcParityShards(short set of 1) = %d, want 1 (ceil(1*2/3))", got)
	}
	if got := CalcParityShards(D, P, D); got != P {
		t.Errorf("CalcParityShards(full set) = %d, want %d", got, P)
	}
}
