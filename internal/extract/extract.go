package extract

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"casedocs-backend/internal/shared/telemetry"
)

// Source identifies which input tier produced the extracted text.
type Source string

const (
	SourceText         Source = "text"
	SourceFileBytesPDF Source = "filebytes-pdf-text"
	SourceFilePathPDF  Source = "filepath-pdf"
	SourceFilename     Source = "filename"
)

var pdfMagic = []byte("%PDF")

// Input carries the available representations of a document. Any combination
// of fields may be set; Text resolves them in strict priority order.
type Input struct {
	Text     string
	Bytes    []byte
	FilePath string
	FileName string
}

// Text returns usable text for classification and the tier that produced it.
// It never fails: inputs that cannot be extracted degrade to a filename
// fallback so the returned text is always non-empty.
func Text(in Input) (string, Source) {
	if strings.TrimSpace(in.Text) != "" {
		return in.Text, SourceText
	}

	if bytes.HasPrefix(in.Bytes, pdfMagic) {
		if text := pdfText(in.Bytes, in.resolveName()); text != "" {
			return text, SourceFileBytesPDF
		}
	}

	if in.FilePath != "" && strings.EqualFold(filepath.Ext(in.FilePath), ".pdf") {
		data, err := os.ReadFile(in.FilePath)
		if err != nil {
			telemetry.Warn("extract.read_failed", map[string]any{
				"path": in.FilePath,
				"err":  err.Error(),
			})
		} else if text := pdfText(data, in.resolveName()); text != "" {
			return text, SourceFilePathPDF
		}
	}

	return fmt.Sprintf("Document filename: %s", in.resolveName()), SourceFilename
}

func (in Input) resolveName() string {
	if in.FileName != "" {
		return in.FileName
	}
	if in.FilePath != "" {
		return filepath.Base(in.FilePath)
	}
	return "uploaded_file"
}

// pdfText extracts text page by page, skipping pages that fail so a single
// corrupt page does not discard the rest of the document.
func pdfText(data []byte, name string) string {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		telemetry.Warn("extract.pdf_open_failed", map[string]any{
			"file": name,
			"err":  err.Error(),
		})
		return ""
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		text, err := pageText(reader, i)
		if err != nil {
			telemetry.Warn("extract.pdf_page_failed", map[string]any{
				"file": name,
				"page": i,
				"err":  err.Error(),
			})
			continue
		}
		sb.WriteString(text)
	}
	return strings.TrimSpace(sb.String())
}

// pageText isolates a single page extraction. The pdf library panics on some
// malformed content streams, so the recover converts that into a page skip.
func pageText(reader *pdf.Reader, page int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("page %d: %v", page, rec)
		}
	}()

	p := reader.Page(page)
	if p.V.IsNull() {
		return "", fmt.Errorf("page %d: missing page object", page)
	}
	return p.GetPlainText(nil)
}
