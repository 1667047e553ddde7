package saft

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/xml"
	"fmt"

	"github.com/ucarion/c14n"
)

// Canonicalize returns the Canonical XML form of the document. Checksums
// and transmissions always operate on these bytes so that formatting
// differences can never change the fingerprint.
func Canonicalize(data []byte) ([]byte, error) {
	out, err := c14n.Canonicalize(xml.NewDecoder(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("canonicalize xml: %w", err)
	}
	return out, nil
}

// Checksum returns the lowercase hex SHA-256 digest of the bytes.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// CanonicalChecksum canonicalizes the document and returns both the
// canonical bytes and their checksum.
func CanonicalChecksum(data []byte) ([]byte, string, error) {
	canonical, err := Canonicalize(data)
	if err != nil {
		return nil, "", err
	}
	return canonical, Checksum(canonical), nil
}
