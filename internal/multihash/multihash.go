// Package multihash implements the length-prefixed self-describing hash
// codec (spec §4.I): parse and serialize for embedding a digest in a
// metadata block's HSH record.
package multihash

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"

	"github.com/sbx-go/sbx/internal/sbxerr"
)

// Code identifies a hash function. Most are one byte; BLAKE2 variants use a
// two-byte 0xB2-prefixed code.
type Code struct {
	bytes [2]byte
	n     int // 1 or 2
}

func code1(b byte) Code     { return Code{bytes: [2]byte{b, 0}, n: 1} }
func code2(a, b byte) Code  { return Code{bytes: [2]byte{a, b}, n: 2} }
func (c Code) bytesSlice() []byte { return c.bytes[:c.n] }

// Registered function-type codes (spec §4.I).
var (
	SHA1        = code1(0x11)
	SHA256      = code1(0x12)
	SHA512      = code1(0x13)
	SHA2512_256 = code1(0x13) // alias sharing SHA512's code, 32-byte digest
	BLAKE2b256  = code2(0xB2, 0x20)
	BLAKE2b512  = code2(0xB2, 0x40)
	BLAKE2s128  = code2(0xB2, 0x50)
	BLAKE2s256  = code2(0xB2, 0x60)
)

type entry struct {
	code      Code
	digestLen int
	newHash   func() (hash.Hash, error)
}

// registry holds one entry per wire code. SHA2512_256 shares code 0x13
// with SHA512 and has no entry of its own: Unmarshal accepts code 0x13
// with whatever digest length the wire format declares (32 for the alias,
// 64 for SHA512), and NewSHA2512_256 builds the alias directly.
var registry = []entry{
	{SHA1, 20, func() (hash.Hash, error) { return sha1.New(), nil }},
	{SHA256, 32, func() (hash.Hash, error) { return sha256.New(), nil }},
	{SHA512, 64, func() (hash.Hash, error) { return sha512.New(), nil }},
	{BLAKE2b256, 32, func() (hash.Hash, error) { return blake2b.New256(nil) }},
	{BLAKE2b512, 64, func() (hash.Hash, error) { return blake2b.New512(nil) }},
	{BLAKE2s128, 16, func() (hash.Hash, error) { return blake2s.New128(nil) }},
	{BLAKE2s256, 32, func() (hash.Hash, error) { return blake2s.New256(nil) }},
}

// Multihash is a parsed (code, digest) pair.
type Multihash struct {
	Code   Code
	Digest []byte
}

// New computes a Multihash of data using the hash function identified by
// code. Because SHA2512_256 shares SHA512's wire code, it cannot be
// selected through New; use NewSHA2512_256 instead.
func New(code Code, data []byte) (Multihash, error) {
	for _, e := range registry {
		if e.code == code {
			h, err := e.newHash()
			if err != nil {
				return Multihash{}, err
			}
			h.Write(data)
			return Multihash{Code: code, Digest: h.Sum(nil)}, nil
		}
	}
	return Multihash{}, sbxerr.New(sbxerr.ParseError, "unregistered multihash code %v", code.bytesSlice())
}

// NewHasher returns a streaming hash.Hash for code, for callers that need
// to hash data incrementally rather than all at once (e.g. while streaming
// a container's data blocks). Sum(nil) on the result, wrapped with code,
// yields the same digest New(code, data) would have produced.
func NewHasher(code Code) (hash.Hash, error) {
	for _, e := range registry {
		if e.code == code {
			return e.newHash()
		}
	}
	return nil, sbxerr.New(sbxerr.ParseError, "unregistered multihash code %v", code.bytesSlice())
}

// NewSHA2512_256 computes a Multihash using SHA-512/256 (the truncated
// SHA-512 variant), tagged with the 0x13 code it shares with plain SHA512;
// the two are disambiguated on the wire only by digest length (32 vs 64).
func NewSHA2512_256(data []byte) Multihash {
	sum := sha512.Sum512_256(data)
	return Multihash{Code: SHA2512_256, Digest: sum[:]}
}

// Marshal serializes m as: 1-byte total length, then the 1-or-2-byte code,
// then a 1-byte digest length, then the digest.
func (m Multihash) Marshal() ([]byte, error) {
	body := append(append([]byte{}, m.Code.bytesSlice()...), byte(len(m.Digest)))
	body = append(body, m.Digest...)
	if len(body) > 255 {
		return nil, sbxerr.New(sbxerr.ParseError, "multihash body is %d bytes, max 255", len(body))
	}
	return append([]byte{byte(len(body))}, body...), nil
}

// Unmarshal parses a Multihash from buf (spec §4.I format). Any registered
// code is accepted, including the 0xB2-prefixed two-byte BLAKE2 codes and
// the SHA2-512-256 alias, which carries the same Code as SHA512 and differs
// only in the length of the returned Digest. The declared digest length is
// not checked against the code. An unregistered code is a ParseError.
func Unmarshal(buf []byte) (Multihash, int, error) {
	if len(buf) < 1 {
		return Multihash{}, 0, sbxerr.New(sbxerr.ParseError, "multihash buffer empty")
	}
	total := int(buf[0])
	if len(buf) < 1+total {
		return Multihash{}, 0, sbxerr.New(sbxerr.ParseError, "multihash declares length %d, buffer too short", total)
	}
	body := buf[1 : 1+total]

	var code Code
	var rest []byte
	if len(body) >= 2 && body[0] == 0xB2 {
		code = code2(body[0], body[1])
		rest = body[2:]
	} else if len(body) >= 1 {
		code = code1(body[0])
		rest = body[1:]
	} else {
		return Multihash{}, 0, sbxerr.New(sbxerr.ParseError, "truncated multihash body")
	}

	if len(rest) < 1 {
		return Multihash{}, 0, sbxerr.New(sbxerr.ParseError, "multihash missing digest length")
	}
	digestLen := int(rest[0])
	digest := rest[1:]
	if len(digest) < digestLen {
		return Multihash{}, 0, sbxerr.New(sbxerr.ParseError, "multihash declares digest length %d, body too short", digestLen)
	}

	if !isRegistered(code) {
		return Multihash{}, 0, sbxerr.New(sbxerr.ParseError, "unregistered multihash code %v", code.bytesSlice())
	}

	return Multihash{Code: code, Digest: append([]byte{}, digest[:digestLen]...)}, 1 + total, nil
}

func isRegistered(code Code) bool {
	for _, e := range registry {
		if e.code == code {
			return true
		}
	}
	return false
}
