// Package pdftext extracts plain text from bulletin PDFs, feeding the
// Bulletin Parser (C1).
package pdftext

import (
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kplc/bulletin-notify/pkg/apperr"
)

// Extract reads every page of the PDF at path and returns its concatenated
// plain text, in page order.
func Extract(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", apperr.Unexpected("open bulletin pdf "+path, err)
	}
	defer f.Close()
	return extract(r)
}

// ExtractBytes is Extract over an in-memory PDF, for bulletins downloaded
// directly from the source registry (C2) without touching disk.
func ExtractBytes(data []byte) (string, error) {
	r, err := pdf.NewReader(readerAt{data}, int64(len(data)))
	if err != nil {
		return "", apperr.Unexpected("open bulletin pdf bytes", err)
	}
	return extract(r)
}

func extract(r *pdf.Reader) (string, error) {
	var sb strings.Builder
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", apperr.Unexpected("extract text from bulletin pdf page", err)
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

type readerAt struct{ data []byte }

func (r readerAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(r.data)) {
		return 0, io.EOF
	}
	n := copy(p, r.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
