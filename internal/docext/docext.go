// Package docext pulls plain text out of the document attachments (PDF,
// DOCX) some sources publish instead of an inline description. Callers
// degrade to a placeholder description when extraction fails; nothing here
// is allowed to take a candidate down.
package docext

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Placeholder substitutes for a description whose attachment could not be
// read.
const Placeholder = "See the original listing for the full job description."

// Text extracts plain text from an attachment, dispatching on the file
// extension. The pdf library panics on some malformed files; that is
// folded into a normal extraction error here.
func Text(name string, data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract %s: %v", name, r)
		}
	}()

	switch strings.ToLower(path.Ext(name)) {
	case ".pdf":
		return PDFText(data)
	case ".docx":
		return DocxText(data)
	default:
		return "", fmt.Errorf("unsupported attachment type %q", path.Ext(name))
	}
}

// PDFText concatenates the plain text of every readable page.
func PDFText(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue // an unreadable page should not cost us the rest
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", errors.New("pdf contains no extractable text")
	}
	return out, nil
}

// DocxText reads word/document.xml out of the zip container and collects
// the text runs, one line per paragraph.
func DocxText(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	var doc io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			if doc, err = f.Open(); err != nil {
				return "", fmt.Errorf("open docx document.xml: %w", err)
			}
			break
		}
	}
	if doc == nil {
		return "", errors.New("docx has no word/document.xml")
	}
	defer doc.Close()

	dec := xml.NewDecoder(doc)
	var b strings.Builder
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse docx xml: %w", err)
		}
		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "t":
				inText = true
			case "br":
				b.WriteString("\n")
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteString("\n")
			}
		case xml.CharData:
			if inText {
				b.Write(el)
			}
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", errors.New("docx contains no text")
	}
	return out, nil
}
