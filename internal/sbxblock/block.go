// Package sbxblock implements the sbx block codec (spec §4.B-E): the
// CRC-CCITT engine, the fixed 16-byte header, the metadata TLV record list,
// and the Block type that composes them into a complete on-disk block.
package sbxblock

import (
	"github.com/sbx-go/sbx/internal/sbxerr"
	"github.com/sbx-go/sbx/internal/sbxspecs"
)

// Kind distinguishes a data block from a metadata block. Unlike the
// RefCell-wrapped header in the reference implementation, Go's ordinary
// pointer-receiver mutation gives the same "interior mutability only where
// it matters" contract without a separate cell type (spec §9).
type Kind int

const (
	Data Kind = iota
	Meta
)

func (k Kind) String() string {
	if k == Meta {
		return "Meta"
	}
	return "Data"
}

// Block owns a header, a kind, the parsed record list (meaningful only
// when kind is Meta) and a buffer sized to the largest block_size across
// every registered version, so the same Block can be reused across a
// version switch without reallocating.
type Block struct {
	header  Header
	kind    Kind
	records []Record
	buf     []byte
}

// NewBlock allocates a block for version v and uid. Data blocks start with
// seq_num left for the caller to set; Meta blocks keep the reserved
// seq_num 0 from NewHeader.
func NewBlock(v sbxspecs.Version, uid [sbxspecs.FileUIDLen]byte, kind Kind) *Block {
	return &Block{
		header: NewHeader(v, uid),
		kind:   kind,
		buf:    make([]byte, sbxspecs.LargestBlockSize),
	}
}

// Header returns a copy of the block's current header.
func (b *Block) Header() Header { return b.header }

// SetHeader replaces the block's header wholesale (e.g. to assign a
// sequence number before encoding).
func (b *Block) SetHeader(h Header) { b.header = h }

// Kind reports whether this block is currently a Data or Meta block.
func (b *Block) Kind() Kind { return b.kind }

func (b *Block) blockSize() int { return int(sbxspecs.BlockSize(b.header.Version)) }
func (b *Block) dataSize() int  { return int(sbxspecs.DataSize(b.header.Version)) }

// Buf returns the block's on-disk bytes: buf[0:block_size]. Only valid
// after SyncToBuffer.
func (b *Block) Buf() []byte { return b.buf[:b.blockSize()] }

// HeaderBuf returns the header region of the underlying buffer.
func (b *Block) HeaderBuf() []byte { return b.buf[:sbxspecs.HeaderSize] }

// DataBuf returns the data region of the underlying buffer, sized to the
// block's version's data_size.
func (b *Block) DataBuf() []byte {
	return b.buf[sbxspecs.HeaderSize : sbxspecs.HeaderSize+b.dataSize()]
}

// Records returns the parsed metadata record list. It is an error to call
// this on a Data block.
func (b *Block) Records() ([]Record, error) {
	if b.kind != Meta {
		return nil, sbxerr.New(sbxerr.IncorrectBlockType, "Records called on a Data block")
	}
	return b.records, nil
}

// SetRecords replaces the metadata record list. It is an error to call
// this on a Data block.
func (b *Block) SetRecords(records []Record) error {
	if b.kind != Meta {
		return sbxerr.New(sbxerr.IncorrectBlockType, "SetRecords called on a Data block")
	}
	b.records = records
	return nil
}

func (b *Block) headerKindMatches() bool {
	return b.header.IsMeta() == (b.kind == Meta)
}

func (b *Block) checkHeaderKindMatches() error {
	if b.headerKindMatches() {
		return nil
	}
	return sbxerr.New(sbxerr.InconsistentHeaderBlockType, "header meta-ness disagrees with block kind %s", b.kind)
}

// CalcCRC recomputes the block's CRC from the current header (with the CRC
// field treated as zero) and data region, without storing it.
func (b *Block) CalcCRC() (uint16, error) {
	if err := b.checkHeaderKindMatches(); err != nil {
		return 0, err
	}
	headerZeroCRC := b.header
	headerZeroCRC.CRC = 0
	hbuf := make([]byte, sbxspecs.HeaderSize)
	if err := headerZeroCRC.Marshal(hbuf); err != nil {
		return 0, err
	}
	state := crcCCITT(hbuf)
	state = crcUpdate(state, b.DataBuf())
	return state, nil
}

// UpdateCRC recomputes and stores the block's CRC in its header.
func (b *Block) UpdateCRC() error {
	crc, err := b.CalcCRC()
	if err != nil {
		return err
	}
	b.header.CRC = crc
	return nil
}

// SyncToBuffer serializes the block's current state (header, and for Meta
// blocks the record list) into the underlying buffer, producing a
// complete on-disk block in buf[0:block_size]. If updateCRC is set, the
// CRC is recomputed first; otherwise the header's current CRC value is
// written verbatim.
func (b *Block) SyncToBuffer(updateCRC bool) error {
	if err := b.checkHeaderKindMatches(); err != nil {
		return err
	}

	if b.kind == Meta {
		data, err := SerializeRecords(b.records, uint64(b.dataSize()))
		if err != nil {
			return err
		}
		copy(b.DataBuf(), data)
	}

	if updateCRC {
		if err := b.UpdateCRC(); err != nil {
			return err
		}
	}

	return b.header.Marshal(b.HeaderBuf())
}

func (b *Block) switchKind() {
	if b.kind == Meta {
		b.kind = Data
		b.records = nil
	} else {
		b.kind = Meta
		b.records = nil
	}
}

// switchKindToMatchHeader auto-switches Data<->Meta to match the header's
// meta-ness, preserving the underlying buffer bytes (spec §4.E, §9).
func (b *Block) switchKindToMatchHeader() {
	if !b.headerKindMatches() {
		b.switchKind()
	}
}

// SyncFromBuffer parses the header from the buffer; a signature mismatch
// or unregistered version is a ParseError raised before any re-kinding.
// The block's kind is then switched to match the parsed header's
// meta-ness, and for Meta blocks the record list is re-parsed.
func (b *Block) SyncFromBuffer() error {
	h, err := UnmarshalHeader(b.HeaderBuf())
	if err != nil {
		return err
	}
	b.header = h
	b.switchKindToMatchHeader()

	if b.kind == Meta {
		records, err := ParseRecords(b.DataBuf())
		if err != nil {
			return err
		}
		b.records = records
	}
	return nil
}

// VerifyCRC reports whether the header's stored CRC matches the
// recomputed CRC of the current buffer contents.
func (b *Block) VerifyCRC() (bool, error) {
	crc, err := b.CalcCRC()
	if err != nil {
		return false, err
	}
	return b.header.CRC == crc, nil
}
