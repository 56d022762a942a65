// Package randutil generates the random byte sequences the container
// format needs: a file UID per container instance, and opaque padding for
// PID metadata records.
package randutil

import (
	"crypto/rand"

	"github.com/sbx-go/sbx/internal/sbxspecs"
)

// FileUID generates a fresh 6-byte file UID.
func FileUID() ([sbxspecs.FileUIDLen]byte, error) {
	var uid [sbxspecs.FileUIDLen]byte
	_, err := rand.Read(uid[:])
	return uid, err
}

// Padding generates n bytes of opaque padding for a PID metadata record.
func Padding(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
