package main

import (
	"strconv"

	"golang.org/x/xerrors"

	"github.com/sbx-go/sbx/internal/multihash"
	"github.com/sbx-go/sbx/internal/sbxspecs"
)

func parseVersion(s string) (sbxspecs.Version, error) {
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, xerrors.Errorf("invalid version %q: %w", s, err)
	}
	v := sbxspecs.Version(n)
	if !sbxspecs.IsValid(v) {
		return 0, xerrors.Errorf("unregistered version %d", v)
	}
	return v, nil
}

func parseHashCode(s string) (multihash.Code, bool, error) {
	switch s {
	case "":
		return multihash.Code{}, false, nil
	case "sha1":
		return multihash.SHA1, true, nil
	case "sha256":
		return multihash.SHA256, true, nil
	case "sha512":
		return multihash.SHA512, true, nil
	case "blake2b256":
		return multihash.BLAKE2b256, true, nil
	case "blake2b512":
		return multihash.BLAKE2b512, true, nil
	case "blake2s128":
		return multihash.BLAKE2s128, true, nil
	case "blake2s256":
		return multihash.BLAKE2s256, true, nil
	default:
		return multihash.Code{}, false, xerrors.Errorf("unknown hash %q", s)
	}
}
