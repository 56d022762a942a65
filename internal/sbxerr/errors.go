// Package sbxerr defines the unified error taxonomy surfaced by the block
// codec, geometry calculator and RS pipeline (spec §7).
package sbxerr

import (
	"fmt"

	"github.com/sbx-go/sbx/internal/sbxspecs"
)

// Kind distinguishes the sum type's variants.
type Kind int

const (
	// IncorrectBlockType is returned when a metadata operation is invoked
	// on a data block, or vice versa.
	IncorrectBlockType Kind = iota
	// InconsistentHeaderBlockType is returned when a parsed header's
	// meta-ness disagrees with the block's kind at a point where
	// auto-switching is disabled.
	InconsistentHeaderBlockType
	// IncorrectBufferSize is returned when a serializer or parser is
	// handed a buffer too small for what it writes or reads (the header
	// codec raises it for a buffer shorter than the 16-byte header).
	IncorrectBufferSize
	// TooMuchMetaData is returned when metadata records exceed data_size
	// on serialization.
	TooMuchMetaData
	// ParseError is returned for malformed headers, unknown versions,
	// truncated metadata records, or unregistered multihash IDs.
	ParseError
	// RS is returned when per-set erasure repair is infeasible. It
	// carries full diagnostic context; see RSError below.
	RS
)

func (k Kind) String() string {
	switch k {
	case IncorrectBlockType:
		return "IncorrectBlockType"
	case InconsistentHeaderBlockType:
		return "InconsistentHeaderBlockType"
	case IncorrectBufferSize:
		return "IncorrectBufferSize"
	case TooMuchMetaData:
		return "TooMuchMetaData"
	case ParseError:
		return "ParseError"
	case RS:
		return "RSError"
	default:
		return "UnknownError"
	}
}

// BlockType mirrors sbxblock.Kind without importing it, to avoid an import
// cycle (sbxblock imports sbxerr, not the other way around).
type BlockType int

const (
	Data BlockType = iota
	Meta
)

func (t BlockType) String() string {
	if t == Meta {
		return "Meta"
	}
	return "Data"
}

// Error is the single sum type surfaced by the core. Non-RS variants carry
// only a Kind and a message; the RS variant additionally carries the
// RSError context.
type Error struct {
	Kind    Kind
	Message string
	RS      *RSError
}

func (e *Error) Error() string {
	if e.Kind == RS && e.RS != nil {
		return e.RS.Error()
	}
	if e.Message == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds a plain (non-RS) Error.
func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// RSError carries full diagnostic context for one irrecoverable block set:
// the version, the set's starting sequence number, its block count, whether
// it is a data or metadata set, and the presence bitmap the repairer was
// given.
type RSError struct {
	Version       sbxspecs.Version
	BlockSeqStart uint32
	BlockCount    uint32
	BlockType     BlockType
	ShardPresent  []bool
}

func (e *RSError) Error() string {
	present := 0
	for _, p := range e.ShardPresent {
		if p {
			present++
		}
	}
	return fmt.Sprintf(
		"RSError: version %d, %s set starting at seq_num %d (%d blocks): only %d/%d shards present",
		e.Version, e.BlockType, e.BlockSeqStart, e.BlockCount, present, len(e.ShardPresent),
	)
}

// NewRS builds an Error wrapping an RSError.
func NewRS(version sbxspecs.Version, seqStart, blockCount uint32, blockType BlockType, present []bool) *Error {
	presentCopy := make([]bool, len(present))
	copy(presentCopy, present)
	return &Error{
		Kind: RS,
		RS: &RSError{
			Version:       version,
			BlockSeqStart: seqStart,
			BlockCount:    blockCount,
			BlockType:     blockType,
			ShardPresent:  presentCopy,
		},
	}
}
