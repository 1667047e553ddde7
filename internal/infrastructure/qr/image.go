package qr

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// imageSize is the rendered QR side in pixels.
const imageSize = 256

// EncodePNG renders the content as a QR code PNG.
func EncodePNG(content string) ([]byte, error) {
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("qr: encode: %w", err)
	}
	scaled, err := barcode.Scale(code, imageSize, imageSize)
	if err != nil {
		return nil, fmt.Errorf("qr: scale: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("qr: png encode: %w", err)
	}
	return buf.Bytes(), nil
}

// EncodeBase64 renders the content as a base64 PNG data URI suitable
// for embedding in HTML or PDF templates.
func EncodeBase64(content string) (string, error) {
	data, err := EncodePNG(content)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}
