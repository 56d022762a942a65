// Package sbxfile implements whole-container encode, decode and repair by
// composing the block codec (sbxblock), the geometry calculator
// (geometry) and the RS pipeline (rs). It is the orchestration layer the
// core leaves as an external collaborator (spec §6): it owns the actual
// I/O, the randomness source for metadata padding, and the hash engine
// selection. Timestamps are supplied by the caller through EncodeOptions.
package sbxfile

import (
	"encoding/binary"

	"github.com/sbx-go/sbx/internal/multihash"
	"github.com/sbx-go/sbx/internal/randutil"
	"github.com/sbx-go/sbx/internal/sbxblock"
	"github.com/sbx-go/sbx/internal/sbxerr"
)

// Info is the parsed or to-be-serialized content of a container's metadata
// block.
type Info struct {
	FileName    string
	ContainerFN string
	FileSize    uint64
	FileModTime int64
	CreatedAt   int64
	Hash        *multihash.Multihash
	DataShards  uint8 // 0 if the version does not use RS
	ParityShards uint8
}

// buildRecords turns Info into the canonical record list, per spec §3/§4.D.
// If padToSize is nonzero, trailing PID records of random bytes (each at
// most 255 value bytes) are added to fill the metadata block's data region
// exactly, matching the reference implementation's opaque-padding
// behavior. When fewer than 4 bytes remain after the other records, no PID
// record fits and those bytes stay zero.
func buildRecords(info Info, padToSize uint64) ([]sbxblock.Record, error) {
	var records []sbxblock.Record
	if info.FileName != "" {
		records = append(records, sbxblock.Record{ID: sbxblock.IDFNM, Value: []byte(info.FileName)})
	}
	if info.ContainerFN != "" {
		records = append(records, sbxblock.Record{ID: sbxblock.IDSNM, Value: []byte(info.ContainerFN)})
	}
	records = append(records, sbxblock.Record{ID: sbxblock.IDFSZ, Value: beUint64(info.FileSize)})
	records = append(records, sbxblock.Record{ID: sbxblock.IDFDT, Value: beInt64(info.FileModTime)})
	records = append(records, sbxblock.Record{ID: sbxblock.IDSDT, Value: beInt64(info.CreatedAt)})
	if info.Hash != nil {
		hb, err := info.Hash.Marshal()
		if err != nil {
			return nil, err
		}
		records = append(records, sbxblock.Record{ID: sbxblock.IDHSH, Value: hb})
	}
	if info.DataShards != 0 {
		records = append(records, sbxblock.Record{ID: sbxblock.IDRSD, Value: []byte{info.DataShards}})
		records = append(records, sbxblock.Record{ID: sbxblock.IDRSP, Value: []byte{info.ParityShards}})
	}

	if padToSize > 0 {
		used := 0
		for _, r := range records {
			used += 3 + 1 + len(r.Value)
		}
		const pidHeader = 4
		remaining := int(padToSize) - used
		for remaining >= pidHeader {
			n := remaining - pidHeader
			if n > 255 {
				n = 255
				// Never leave a 1-3 byte tail too short for another record.
				if remaining-pidHeader-n < pidHeader {
					n -= pidHeader
				}
			}
			pad, err := randutil.Padding(n)
			if err != nil {
				return nil, err
			}
			records = append(records, sbxblock.Record{ID: sbxblock.IDPID, Value: pad})
			remaining -= pidHeader + n
		}
	}
	return records, nil
}

// parseInfo recovers Info from a parsed metadata block's record list.
func parseInfo(records []sbxblock.Record) (Info, error) {
	var info Info
	for _, r := range records {
		switch r.ID {
		case sbxblock.IDFNM:
			info.FileName = string(r.Value)
		case sbxblock.IDSNM:
			info.ContainerFN = string(r.Value)
		case sbxblock.IDFSZ:
			v, err := decodeUint64(r.Value)
			if err != nil {
				return Info{}, err
			}
			info.FileSize = v
		case sbxblock.IDFDT:
			v, err := decodeInt64(r.Value)
			if err != nil {
				return Info{}, err
			}
			info.FileModTime = v
		case sbxblock.IDSDT:
			v, err := decodeInt64(r.Value)
			if err != nil {
				return Info{}, err
			}
			info.CreatedAt = v
		case sbxblock.IDHSH:
			mh, _, err := multihash.Unmarshal(r.Value)
			if err != nil {
				return Info{}, err
			}
			info.Hash = &mh
		case sbxblock.IDRSD:
			if len(r.Value) != 1 {
				return Info{}, sbxerr.New(sbxerr.ParseError, "RSD record must be 1 byte")
			}
			info.DataShards = r.Value[0]
		case sbxblock.IDRSP:
			if len(r.Value) != 1 {
				return Info{}, sbxerr.New(sbxerr.ParseError, "RSP record must be 1 byte")
			}
			info.ParityShards = r.Value[0]
		}
	}
	return info, nil
}

func beUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func beInt64(v int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(v))
	return b
}

func decodeUint64(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, sbxerr.New(sbxerr.ParseError, "expected 8-byte integer record, got %d bytes", len(b))
	}
	return binary.BigEndian.Uint64(b), nil
}

func decodeInt64(b []byte) (int64, error) {
	v, err := decodeUint64(b)
	return int64(v), err
}
