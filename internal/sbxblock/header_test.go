package sbxblock

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sbx-go/sbx/internal/sbxerr"
	"github.com/sbx-go/sbx/internal/sbxspecs"
)

func TestHeaderRoundTrip(t *testing.T) {
	uid := [sbxspecs.FileUIDLen]byte{1, 2, 3, 4, 5, 6}
	for _, v := range sbxspecs.All() {
		h := NewHeader(v, uid)
		h.SeqNum = 42
		h.CRC = 0xBEEF

		buf := make([]byte, sbxspecs.HeaderSize)
		if err := h.Marshal(buf); err != nil {
			t.Fatalf("version %d: Marshal: %v", v, err)
		}
		got, err := UnmarshalHeader(buf)
		if err != nil {
			t.Fatalf("version %d: UnmarshalHeader: %v", v, err)
		}
		if diff := cmp.Diff(h, got); diff != "" {
			t.Errorf("version %d: round-trip mismatch (-want +got):\n%s", v, diff)
		}
	}
}

func TestHeaderIsMeta(t *testing.T) {
	h := Header{SeqNum: 0}
	if !h.IsMeta() {
		t.Errorf("seq_num 0 should be meta")
	}
	h.SeqNum = 1
	if h.IsMeta() {
		t.Errorf("seq_num 1 should not be meta")
	}
}

func TestUnmarshalHeaderBadSignature(t *testing.T) {
	buf := make([]byte, sbxspecs.HeaderSize)
	copy(buf, []byte("SBY"))
	buf[3] = byte(sbxspecs.V1)
	_, err := UnmarshalHeader(buf)
	if err == nil {
		t.Fatal("expected ParseError for bad signature")
	}
	sbxErr, ok := err.(*sbxerr.Error)
	if !ok || sbxErr.Kind != sbxerr.ParseError {
		t.Errorf("got %v, want ParseError", err)
	}
}

func TestUnmarshalHeaderUnknownVersion(t *testing.T) {
	buf := make([]byte, sbxspecs.HeaderSize)
	copy(buf, sbxspecs.Signature[:])
	buf[3] = 255
	_, err := UnmarshalHeader(buf)
	if err == nil {
		t.Fatal("expected ParseError for unknown version")
	}
}

func TestMarshalBufferTooSmall(t *testing.T) {
	h := NewHeader(sbxspecs.V1, [sbxspecs.FileUIDLen]byte{})
	err := h.Marshal(make([]byte, 4))
	if err == nil {
		t.Fatal("expected IncorrectBufferSize error")
	}
}
