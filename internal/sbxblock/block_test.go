package sbxblock

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/sbx-go/sbx/internal/sbxerr"
	"github.com/sbx-go/sbx/internal/sbxspecs"
)

func TestBlockDataRoundTrip(t *testing.T) {
	uid := [sbxspecs.FileUIDLen]byte{1, 2, 3, 4, 5, 6}
	for _, v := range sbxspecs.All() {
		b := NewBlock(v, uid, Data)
		h := b.Header()
		h.SeqNum = 7
		b.SetHeader(h)

		payload := bytes.Repeat([]byte{0xAA}, int(sbxspecs.DataSize(v)))
		copy(b.DataBuf(), payload)

		if err := b.SyncToBuffer(true); err != nil {
			t.Fatalf("version %d: SyncToBuffer: %v", v, err)
		}

		fresh := NewBlock(v, uid, Data)
		copy(fresh.buf, b.buf)
		if err := fresh.SyncFromBuffer(); err != nil {
			t.Fatalf("version %d: SyncFromBuffer: %v", v, err)
		}

		if diff := cmp.Diff(b.Header(), fresh.Header()); diff != "" {
			t.Errorf("version %d: header mismatch (-want +got):\n%s", v, diff)
		}
		if !bytes.Equal(b.DataBuf(), fresh.DataBuf()) {
			t.Errorf("version %d: data region mismatch", v)
		}

		ok, err := fresh.VerifyCRC()
		if err != nil {
			t.Fatalf("version %d: VerifyCRC: %v", v, err)
		}
		if !ok {
			t.Errorf("version %d: VerifyCRC = false, want true", v)
		}
	}
}

func TestBlockMutationBreaksCRC(t *testing.T) {
	uid := [sbxspecs.FileUIDLen]byte{}
	b := NewBlock(sbxspecs.V1, uid, Data)
	h := b.Header()
	h.SeqNum = 1
	b.SetHeader(h)
	if err := b.SyncToBuffer(true); err != nil {
		t.Fatal(err)
	}
	b.buf[20] ^= 0xFF // mutate a data byte after sync
	ok, err := b.VerifyCRC()
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("VerifyCRC should be false after mutating buffer bytes")
	}
}

func TestBlockAutoSwitchesKindOnSync(t *testing.T) {
	uid := [sbxspecs.FileUIDLen]byte{}
	// Written as a Meta block (seq_num 0). The fresh block below is
	// constructed as Data, but the header it syncs from the buffer
	// identifies a metadata block, so its kind must switch to Meta.
	b := NewBlock(sbxspecs.V1, uid, Meta)
	if err := b.SyncToBuffer(true); err != nil {
		t.Fatal(err)
	}

	fresh := NewBlock(sbxspecs.V1, uid, Data)
	copy(fresh.buf, b.buf)
	if err := fresh.SyncFromBuffer(); err != nil {
		t.Fatal(err)
	}
	if fresh.Kind() != Meta {
		t.Errorf("Kind() = %v, want Meta after sync from a seq_num-0 header", fresh.Kind())
	}
}

func TestBlockBadSignatureFailsBeforeReKinding(t *testing.T) {
	uid := [sbxspecs.FileUIDLen]byte{}
	b := NewBlock(sbxspecs.V1, uid, Data)
	copy(b.buf, []byte("SBY"))
	err := b.SyncFromBuffer()
	if err == nil {
		t.Fatal("expected ParseError")
	}
	sbxErr, ok := err.(*sbxerr.Error)
	if !ok || sbxErr.Kind != sbxerr.ParseError {
		t.Fatalf("got %v, want ParseError", err)
	}
	if b.Kind() != Data {
		t.Errorf("Kind() = %v, want unchanged Data after failed sync", b.Kind())
	}
}

func TestBlockMetaRoundTrip(t *testing.T) {
	uid := [sbxspecs.FileUIDLen]byte{9, 9, 9, 9, 9, 9}
	b := NewBlock(sbxspecs.V1, uid, Meta)
	records := []Record{
		{ID: IDFNM, Value: []byte("archive.bin")},
		{ID: IDFSZ, Value: []byte{0, 0, 0, 0, 0, 0, 3, 232}},
	}
	if err := b.SetRecords(records); err != nil {
		t.Fatal(err)
	}
	if err := b.SyncToBuffer(true); err != nil {
		t.Fatal(err)
	}

	fresh := NewBlock(sbxspecs.V1, uid, Data)
	copy(fresh.buf, b.buf)
	if err := fresh.SyncFromBuffer(); err != nil {
		t.Fatal(err)
	}
	got, err := fresh.Records()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(records, got); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestBlockIncorrectBlockTypeOnRecords(t *testing.T) {
	b := NewBlock(sbxspecs.V1, [sbxspecs.FileUIDLen]byte{}, Data)
	if _, err := b.Records(); err == nil {
		t.Fatal("expected IncorrectBlockType for Records() on a Data block")
	}
}

func TestBlockInconsistentHeaderBlockType(t *testing.T) {
	uid := [sbxspecs.FileUIDLen]byte{}
	b := NewBlock(sbxspecs.V1, uid, Data)
	h := b.Header()
	h.SeqNum = 0 // makes the header identify a metadata block
	b.SetHeader(h)
	_, err := b.CalcCRC()
	if err == nil {
		t.Fatal("expected InconsistentHeaderBlockType")
	}
	sbxErr, ok := err.(*sbxerr.Error)
	if !ok || sbxErr.Kind != sbxerr.InconsistentHeaderBlockType {
		t.Fatalf("got %v, want InconsistentHeaderBlockType", err)
	}
}
