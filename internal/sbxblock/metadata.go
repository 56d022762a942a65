package sbxblock

import (
	"github.com/sbx-go/sbx/internal/sbxerr"
)

// RecordID is the 3-byte typed identifier prefixing every metadata record.
type RecordID [3]byte

// Registered record IDs (spec §3).
var (
	IDFNM = RecordID{'F', 'N', 'M'} // original file name (UTF-8, no NUL)
	IDSNM = RecordID{'S', 'N', 'M'} // container file name
	IDFSZ = RecordID{'F', 'S', 'Z'} // original file size, 8-byte unsigned
	IDFDT = RecordID{'F', 'D', 'T'} // file last-modified time, 8-byte signed
	IDSDT = RecordID{'S', 'D', 'T'} // container creation time, 8-byte signed
	IDHSH = RecordID{'H', 'S', 'H'} // multihash of original file contents
	IDRSD = RecordID{'R', 'S', 'D'} // RS data shard count, 1 byte
	IDRSP = RecordID{'R', 'S', 'P'} // RS parity shard count, 1 byte
	IDPID = RecordID{'P', 'I', 'D'} // pseudo-random padding
)

// zeroID marks the start of zero-fill padding during Parse: no registered
// record ID is the all-zero byte string, so it cannot collide with a real
// record, and it is what a zero-padded data region looks like once the
// explicit records (and any trailing PID record) have been consumed.
var zeroID RecordID

// canonicalOrder is the order records are written in; duplicates of any ID
// other than PID are rejected.
var canonicalOrder = []RecordID{IDFNM, IDSNM, IDFSZ, IDFDT, IDSDT, IDHSH, IDRSD, IDRSP, IDPID}

// Record is one typed length-value entry in a metadata block's data
// region: 3-byte ID, 1-byte length, then Value (at most 255 bytes).
type Record struct {
	ID    RecordID
	Value []byte
}

// size is the record's serialized footprint: ID + length byte + value.
func (r Record) size() int {
	return 3 + 1 + len(r.Value)
}

func orderIndex(id RecordID) (int, bool) {
	for i, c := range canonicalOrder {
		if c == id {
			return i, true
		}
	}
	return 0, false
}

// SerializeRecords packs records into a buffer of exactly dataSize bytes,
// in canonical order, zero-filling whatever is left over. It is an error
// (TooMuchMetaData) for the records to not fit, and an error for any
// non-PID ID to be repeated.
func SerializeRecords(records []Record, dataSize uint64) ([]byte, error) {
	seen := make(map[RecordID]bool, len(records))
	ordered := make([]Record, len(records))
	copy(ordered, records)

	for _, r := range ordered {
		if len(r.Value) > 255 {
			return nil, sbxerr.New(sbxerr.ParseError, "record %q value is %d bytes, max 255", r.ID, len(r.Value))
		}
		if r.ID != IDPID {
			if seen[r.ID] {
				return nil, sbxerr.New(sbxerr.ParseError, "duplicate record %q", r.ID)
			}
			seen[r.ID] = true
		}
	}

	sortRecordsCanonical(ordered)

	var total int
	for _, r := range ordered {
		total += r.size()
	}
	if uint64(total) > dataSize {
		return nil, sbxerr.New(sbxerr.TooMuchMetaData, "records take %d bytes, data region is %d bytes", total, dataSize)
	}

	buf := make([]byte, dataSize)
	off := 0
	for _, r := range ordered {
		copy(buf[off:off+3], r.ID[:])
		buf[off+3] = byte(len(r.Value))
		copy(buf[off+4:off+4+len(r.Value)], r.Value)
		off += r.size()
	}
	// buf[off:] is already zero from make([]byte, ...).
	return buf, nil
}

func sortRecordsCanonical(records []Record) {
	// Small, fixed-size input: insertion sort keyed by canonical position.
	// Unknown IDs (shouldn't occur for records we construct ourselves) sort
	// last, in encounter order.
	rank := func(id RecordID) int {
		if i, ok := orderIndex(id); ok {
			return i
		}
		return len(canonicalOrder)
	}
	for i := 1; i < len(records); i++ {
		j := i
		for j > 0 && rank(records[j-1].ID) > rank(records[j].ID) {
			records[j-1], records[j] = records[j], records[j-1]
			j--
		}
	}
}

// ParseRecords parses a metadata block's data region left-to-right.
// Unknown 3-byte IDs are skipped (their length is read and the value
// bytes advanced over). A zero ID marks the start of zero-fill padding and
// ends parsing without error. Truncation mid-record, or a declared length
// that would run past the end of buf, is a ParseError.
func ParseRecords(buf []byte) ([]Record, error) {
	var records []Record
	off := 0
	for off < len(buf) {
		if len(buf)-off < 4 {
			return nil, sbxerr.New(sbxerr.ParseError, "truncated record header at offset %d", off)
		}
		var id RecordID
		copy(id[:], buf[off:off+3])
		if id == zeroID {
			break
		}
		length := int(buf[off+3])
		if off+4+length > len(buf) {
			return nil, sbxerr.New(sbxerr.ParseError, "record %q declares length %d, exceeds data region", id, length)
		}
		value := make([]byte, length)
		copy(value, buf[off+4:off+4+length])
		records = append(records, Record{ID: id, Value: value})
		off += 4 + length
	}
	return records, nil
}
