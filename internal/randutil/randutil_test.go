package randutil

import "testing"

func TestFileUIDNotAllZero(t *testing.T) {
	uid, err := FileUID()
	if err != nil {
		t.Fatal(err)
	}
	var zero [6]byte
	if uid == zero {
		t.Error("FileUID returned all-zero bytes; crypto/rand likely not wired correctly")
	}
}

func TestPaddingLength(t *testing.T) {
	for _, n := range []int{0, 1, 16, 255} {
		buf, err := Padding(n)
		if err != nil {
			t.Fatal(err)
		}
		if len(buf) != n {
			t.Errorf("Padding(%d) returned %d bytes", n, len(buf))
		}
	}
}
