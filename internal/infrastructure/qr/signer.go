// Package qr issues and verifies the HMAC-signed validation tokens
// embedded in document QR codes.
package qr

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
)

// hashLength is the number of hex characters kept from the HMAC digest.
// Short tokens keep the QR payload small and easy to scan.
const hashLength = 16

// Signer derives validation hashes from a server-side secret. The
// secret never leaves the server; the QR carries only the truncated
// signature.
type Signer struct {
	secret  []byte
	baseURL string
}

// NewSigner creates a signer. baseURL is the public origin of the
// validation endpoint, e.g. "https://fiscal.example.co.mz".
func NewSigner(secret, baseURL string) *Signer {
	return &Signer{secret: []byte(secret), baseURL: baseURL}
}

// Hash returns the validation hash for a document: the first 16 hex
// characters of HMAC-SHA256(secret, "doctype|name").
func (s *Signer) Hash(doctype, name string) string {
	mac := hmac.New(sha256.New, s.secret)
	fmt.Fprintf(mac, "%s|%s", doctype, name)
	return hex.EncodeToString(mac.Sum(nil))[:hashLength]
}

// Verify reports whether the presented hash matches the expected one.
// Comparison is constant time.
func (s *Signer) Verify(doctype, name, presented string) bool {
	expected := s.Hash(doctype, name)
	return hmac.Equal([]byte(expected), []byte(presented))
}

// ValidationURL builds the absolute URL a scanned QR code resolves to.
func (s *Signer) ValidationURL(doctype, name string) string {
	return fmt.Sprintf("%s/validate?doctype=%s&name=%s&hash=%s",
		s.baseURL, url.QueryEscape(doctype), url.QueryEscape(name), s.Hash(doctype, name))
}

// qrPayload is the self-contained QR content used when no public base
// URL is configured.
type qrPayload struct {
	Doctype string `json:"doctype"`
	Name    string `json:"name"`
	Hash    string `json:"hash"`
}

// QRContent returns what a document's QR code carries: the validation
// URL when a public base URL is configured, otherwise a JSON payload
// with the document reference and hash.
func (s *Signer) QRContent(doctype, name string) string {
	if s.baseURL != "" {
		return s.ValidationURL(doctype, name)
	}
	data, _ := json.Marshal(qrPayload{Doctype: doctype, Name: name, Hash: s.Hash(doctype, name)})
	return string(data)
}
