// Package checksum computes and compares SHA-256 digests of downloaded artifacts.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	pkgerrors "github.com/glorpus-work/frate/pkg/errors"
)

// Prefix is the optional algorithm tag in front of registry hashes.
const Prefix = "sha256:"

// Normalize strips the "sha256:" tag, surrounding space and case from a hex digest.
func Normalize(hash string) string {
	hash = strings.TrimSpace(hash)
	hash = strings.TrimPrefix(hash, Prefix)
	return strings.ToLower(hash)
}

// Sum returns the lowercase hex SHA-256 of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Verify compares the digest of data with expected. subject names the artifact
// (URL or path) in the returned *errors.IntegrityError.
func Verify(data []byte, expected, subject string) error {
	want := Normalize(expected)
	got := Sum(data)
	if got != want {
		return pkgerrors.NewIntegrityError(subject, want, got)
	}
	return nil
}
