package sbxspecs

import "testing"

func TestDataSizeIsBlockSizeMinusHeader(t *testing.T) {
	for _, v := range All() {
		if got, want := DataSize(v), BlockSize(v)-HeaderSize; got != want {
			t.Errorf("version %d: DataSize() = %d, want %d", v, got, want)
		}
	}
}

func TestUsesRS(t *testing.T) {
	cases := map[Version]bool{
		V1: false, V2: false, V3: false,
		V17: true, V18: true, V19: true,
	}
	for v, want := range cases {
		if got := UsesRS(v); got != want {
			t.Errorf("UsesRS(%d) = %v, want %v", v, got, want)
		}
	}
}

func TestIsValid(t *testing.T) {
	if IsValid(99) {
		t.Errorf("IsValid(99) = true, want false")
	}
	for _, v := range All() {
		if !IsValid(v) {
			t.Errorf("IsValid(%d) = false, want true", v)
		}
	}
}

func TestLargestBlockSize(t *testing.T) {
	var max uint64
	for _, v := range All() {
		if bs := BlockSize(v); bs > max {
			max = bs
		}
	}
	if LargestBlockSize != max {
		t.Errorf("LargestBlockSize = %d, want %d", LargestBlockSize, max)
	}
}
