package media

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
)

// Kind is the class of upload an endpoint accepts
type Kind string

const (
	KindImage Kind = "image"
	KindPDF   Kind = "pdf"
)

// Upload size limits
const (
	MaxImageBytes = 8 << 20
	MaxPDFBytes   = 5 << 20
)

var (
	ErrEmpty        = errors.New("file is empty")
	ErrTooLarge     = errors.New("file too large")
	ErrTypeMismatch = errors.New("file content does not match an allowed type")
)

// Magic byte prefixes per detected MIME type
var signatures = map[string][][]byte{
	"image/jpeg":      {{0xFF, 0xD8, 0xFF}},
	"image/png":       {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	"image/gif":       {[]byte("GIF87a"), []byte("GIF89a")},
	"image/webp":      {[]byte("RIFF")},
	"application/pdf": {[]byte("%PDF")},
}

var allowedByKind = map[Kind][]string{
	KindImage: {"image/jpeg", "image/png", "image/gif", "image/webp"},
	KindPDF:   {"application/pdf"},
}

func maxBytes(kind Kind) int {
	if kind == KindPDF {
		return MaxPDFBytes
	}
	return MaxImageBytes
}

// Validate checks size, sniffed MIME type and magic bytes, returning the detected MIME type.
// The client supplied filename and Content-Type are never trusted.
func Validate(kind Kind, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if len(data) > maxBytes(kind) {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(data), maxBytes(kind))
	}

	detected := http.DetectContentType(data)
	for _, mime := range allowedByKind[kind] {
		if mime != detected {
			continue
		}
		for _, sig := range signatures[mime] {
			if bytes.HasPrefix(data, sig) {
				return detected, nil
			}
		}
	}
	return "", fmt.Errorf("%w: %s", ErrTypeMismatch, detected)
}
