package sbxblock

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMetadataRoundTripCanonicalOrder(t *testing.T) {
	// Deliberately out of canonical order and not including every type.
	in := []Record{
		{ID: IDHSH, Value: []byte{0xAB, 0xCD}},
		{ID: IDFNM, Value: []byte("hello.txt")},
		{ID: IDFSZ, Value: []byte{0, 0, 0, 0, 0, 0, 0, 42}},
	}
	buf, err := SerializeRecords(in, 496)
	if err != nil {
		t.Fatalf("SerializeRecords: %v", err)
	}
	if len(buf) != 496 {
		t.Fatalf("buf len = %d, want 496", len(buf))
	}

	got, err := ParseRecords(buf)
	if err != nil {
		t.Fatalf("ParseRecords: %v", err)
	}

	want := []Record{
		{ID: IDFNM, Value: []byte("hello.txt")},
		{ID: IDFSZ, Value: []byte{0, 0, 0, 0, 0, 0, 0, 42}},
		{ID: IDHSH, Value: []byte{0xAB, 0xCD}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMetadataRejectsDuplicateNonPID(t *testing.T) {
	in := []Record{
		{ID: IDFNM, Value: []byte("a")},
		{ID: IDFNM, Value: []byte("b")},
	}
	if _, err := SerializeRecords(in, 496); err == nil {
		t.Fatal("expected error for duplicate non-PID record")
	}
}

func TestMetadataAllowsMultiplePID(t *testing.T) {
	// PID padding is not subject to the duplicate check.
	in := []Record{
		{ID: IDPID, Value: []byte{1, 2, 3}},
		{ID: IDPID, Value: []byte{4, 5}},
	}
	if _, err := SerializeRecords(in, 496); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMetadataExactFitSucceeds(t *testing.T) {
	// One record of value length 252 has serialized size 4+252 = 256.
	in := []Record{{ID: IDFNM, Value: make([]byte, 252)}}
	if _, err := SerializeRecords(in, 256); err != nil {
		t.Fatalf("exact fit should succeed: %v", err)
	}
}

func TestMetadataOneByteOverFails(t *testing.T) {
	in := []Record{{ID: IDFNM, Value: make([]byte, 253)}}
	if _, err := SerializeRecords(in, 256); err == nil {
		t.Fatal("expected TooMuchMetaData for one byte over data_size")
	}
}

func TestParseUnknownIDIsSkipped(t *testing.T) {
	buf := make([]byte, 32)
	// unknown 3-byte ID "ZZZ", length 2, value "hi"
	copy(buf[0:3], []byte("ZZZ"))
	buf[3] = 2
	copy(buf[4:6], []byte("hi"))
	// followed by a real record
	copy(buf[6:9], IDFNM[:])
	buf[9] = 1
	buf[10] = 'x'
	// rest is zero padding

	got, err := ParseRecords(buf)
	if err != nil {
		t.Fatalf("ParseRecords: %v", err)
	}
	want := []Record{
		{ID: RecordID{'Z', 'Z', 'Z'}, Value: []byte("hi")},
		{ID: IDFNM, Value: []byte("x")},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRecordLengthExceedsBuffer(t *testing.T) {
	buf := make([]byte, 6)
	copy(buf[0:3], IDFNM[:])
	buf[3] = 10 // declares 10 bytes of value, but buffer can't hold it
	if _, err := ParseRecords(buf); err == nil {
		t.Fatal("expected ParseError for declared length exceeding buffer")
	}
}
