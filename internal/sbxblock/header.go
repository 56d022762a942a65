package sbxblock

import (
	"encoding/binary"

	"github.com/sbx-go/sbx/internal/sbxerr"
	"github.com/sbx-go/sbx/internal/sbxspecs"
)

// Header is the fixed 16-byte block header (spec §3, §6):
//
//	offset 0   size 3  signature  "SBx"
//	offset 3   size 1  version
//	offset 4   size 2  crc
//	offset 6   size 6  file_uid
//	offset 12  size 4  seq_num
type Header struct {
	Version sbxspecs.Version
	CRC     uint16
	FileUID [sbxspecs.FileUIDLen]byte
	SeqNum  uint32
}

// NewHeader builds a header for version v and uid, with seq_num 0 (the
// metadata block's reserved sequence number); callers building a data
// block overwrite SeqNum afterwards.
func NewHeader(v sbxspecs.Version, uid [sbxspecs.FileUIDLen]byte) Header {
	return Header{Version: v, FileUID: uid, SeqNum: 0}
}

// IsMeta reports whether this header identifies a metadata block.
func (h Header) IsMeta() bool {
	return h.SeqNum == 0
}

// Marshal writes h's fields into buf at their fixed offsets. CRC is written
// verbatim; the caller must have computed it beforehand. buf must be at
// least sbxspecs.HeaderSize bytes.
func (h Header) Marshal(buf []byte) error {
	if len(buf) < sbxspecs.HeaderSize {
		return sbxerr.New(sbxerr.IncorrectBufferSize, "header buffer is %d bytes, need %d", len(buf), sbxspecs.HeaderSize)
	}
	copy(buf[0:3], sbxspecs.Signature[:])
	buf[3] = byte(h.Version)
	binary.BigEndian.PutUint16(buf[4:6], h.CRC)
	copy(buf[6:12], h.FileUID[:])
	binary.BigEndian.PutUint32(buf[12:16], h.SeqNum)
	return nil
}

// UnmarshalHeader parses a 16-byte buffer into a Header, verifying the
// signature and that the version is registered.
func UnmarshalHeader(buf []byte) (Header, error) {
	if len(buf) < sbxspecs.HeaderSize {
		return Header{}, sbxerr.New(sbxerr.IncorrectBufferSize, "header buffer is %d bytes, need %d", len(buf), sbxspecs.HeaderSize)
	}
	if buf[0] != sbxspecs.Signature[0] || buf[1] != sbxspecs.Signature[1] || buf[2] != sbxspecs.Signature[2] {
		return Header{}, sbxerr.New(sbxerr.ParseError, "bad signature %q, want %q", buf[0:3], sbxspecs.Signature[:])
	}
	v := sbxspecs.Version(buf[3])
	if !sbxspecs.IsValid(v) {
		return Header{}, sbxerr.New(sbxerr.ParseError, "unregistered version %d", v)
	}
	var h Header
	h.Version = v
	h.CRC = binary.BigEndian.Uint16(buf[4:6])
	copy(h.FileUID[:], buf[6:12])
	h.SeqNum = binary.BigEndian.Uint32(buf[12:16])
	return h, nil
}
