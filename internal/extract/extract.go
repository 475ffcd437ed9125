package extract

import (
	"bytes"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
)

const mimePDF = "application/pdf"

// ErrNotPDF is returned when a payload is not a PDF document.
var ErrNotPDF = errors.New("not a pdf document")

// Info describes an uploaded PDF.
type Info struct {
	Pages int
}

// DeclaredPDF reports whether a declared content type names a PDF.
func DeclaredPDF(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.TrimSpace(strings.Split(contentType, ";")[0])
	}
	return strings.EqualFold(mediaType, mimePDF)
}

// SniffPDF reports whether the payload itself looks like a PDF.
func SniffPDF(data []byte) bool {
	return mimetype.Detect(data).Is(mimePDF)
}

// Inspect reads document structure from an in-memory PDF.
// Library used: github.com/ledongthuc/pdf.
func Inspect(data []byte) (info Info, err error) {
	if !SniffPDF(data) {
		return Info{}, ErrNotPDF
	}
	// The parser panics on some malformed inputs.
	defer func() {
		if rec := recover(); rec != nil {
			info, err = Info{}, fmt.Errorf("inspect pdf: %v", rec)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return Info{}, fmt.Errorf("inspect pdf: %w", err)
	}
	return Info{Pages: reader.NumPage()}, nil
}
