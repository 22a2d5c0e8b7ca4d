package filestorage

import (
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// documentTypes are the formats accepted for uploads. Scriptable formats
// such as SVG stay out even though they are images.
var documentTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/gif":       true,
	"image/webp":      true,
	"image/heic":      true,
	"image/heif":      true,
}

// IsDocumentMIME reports whether ct (parameters allowed) is an accepted document type
func IsDocumentMIME(ct string) bool {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return documentTypes[strings.ToLower(strings.TrimSpace(ct))]
}

// DetectDocumentMIME sniffs r and reports whether it is an accepted document type
func DetectDocumentMIME(r io.Reader) (string, bool, error) {
	mtype, err := mimetype.DetectReader(r)
	if err != nil {
		return "", false, err
	}
	ct := mtype.String()
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return ct, IsDocumentMIME(ct), nil
}
