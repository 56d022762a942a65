package sbxblock

import "testing"

// CRC-CCITT (0x1021/0x0000) of "123456789" is the well-known test vector
// 0x31C3 (the XMODEM check value) for this zero-initialized variant.
func TestCRCCCITTTestVector(t *testing.T) {
	got := crcCCITT([]byte("123456789"))
	if want := uint16(0x31C3); got != want {
		t.Errorf("crcCCITT(%q) = %#04x, want %#04x", "123456789", got, want)
	}
}

func TestCRCUpdateIsIncremental(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog")
	whole := crcCCITT(data)

	split := len(data) / 2
	incremental := crcUpdate(crcUpdate(0, data[:split]), data[split:])

	if whole != incremental {
		t.Errorf("incremental CRC = %#04x, whole CRC = %#04x", incremental, whole)
	}
}

func TestCRCEmpty(t *testing.T) {
	if got := crcCCITT(nil); got != 0 {
		t.Errorf("crcCCITT(nil) = %#04x, want 0", got)
	}
}
