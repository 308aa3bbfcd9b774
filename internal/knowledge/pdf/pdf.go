// Package pdf extracts page text from PDF files with MuPDF, falling back to
// Tesseract OCR for pages that carry no text layer.
package pdf

import (
	"context"
	"fmt"
	"image/png"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/gen2brain/go-fitz"

	"github.com/abhisek/studyscout/internal/knowledge"
	"github.com/abhisek/studyscout/internal/logger"
)

// DefaultMinTextRunes is the text-layer length below which a page is OCRed.
const DefaultMinTextRunes = 20

// OCR recognises text in an image file.
type OCR interface {
	Text(imagePath string) (string, error)
}

// Reader implements knowledge.Reader for PDFs.
type Reader struct {
	// OCR is used for near-empty pages. Nil disables the fallback.
	OCR          OCR
	MinTextRunes int
	// TempDir receives page images during OCR; empty uses the OS default.
	TempDir string
	Log     *logger.Logger
}

var _ knowledge.Reader = (*Reader)(nil)

func (r *Reader) ReadPages(ctx context.Context, path string) ([]knowledge.Page, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer doc.Close()

	log := r.Log
	if log == nil {
		log = logger.Nop()
	}
	minRunes := r.MinTextRunes
	if minRunes <= 0 {
		minRunes = DefaultMinTextRunes
	}

	total := doc.NumPage()
	pages := make([]knowledge.Page, 0, total)
	for n := 0; n < total; n++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := doc.Text(n)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", n+1, err)
		}
		text = normalizeText(text)

		if needsOCR(text, minRunes) && r.OCR != nil {
			ocrText, err := r.ocrPage(doc, n)
			if err != nil {
				// A failed OCR keeps whatever the text layer had.
				log.Warn("ocr failed", "page", n+1, "error", err)
			} else if t := normalizeText(ocrText); utf8.RuneCountInString(t) > utf8.RuneCountInString(text) {
				text = t
			}
		}

		pages = append(pages, knowledge.Page{Number: n + 1, Text: text})
	}

	log.Debug("pdf read", "path", path, "pages", total)
	return pages, nil
}

func (r *Reader) ocrPage(doc *fitz.Document, n int) (string, error) {
	img, err := doc.Image(n)
	if err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}

	f, err := os.CreateTemp(r.TempDir, "studyscout-page-*.png")
	if err != nil {
		return "", err
	}
	defer os.Remove(f.Name())

	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encode page: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return r.OCR.Text(f.Name())
}

func needsOCR(text string, minRunes int) bool {
	return utf8.RuneCountInString(strings.TrimSpace(text)) < minRunes
}

// normalizeText strips NULs and trailing spaces and collapses runs of
// blank lines to one.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, "\r\n", "\n")

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
