// Package document turns uploaded resume files (plain text, PDF, DOCX) into text.
package document

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/skillmatch/backend/internal/domain"
)

// Kind is a supported resume format
type Kind string

const (
	KindText Kind = "text/plain"
	KindPDF  Kind = "application/pdf"
	KindDOCX Kind = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Extractor implements domain.DocumentExtractor
type Extractor struct {
	debug bool
}

// NewExtractor creates a document extractor
func NewExtractor(enableDebugLogging bool) *Extractor {
	return &Extractor{debug: enableDebugLogging}
}

// Detect sniffs the content type of data. The file extension only decides
// between formats the content alone cannot tell apart, such as DOCX inside a bare zip.
func Detect(filename string, data []byte) (Kind, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		switch {
		case m.Is(string(KindPDF)):
			return KindPDF, nil
		case m.Is(string(KindDOCX)):
			return KindDOCX, nil
		case m.Is("application/zip") && ext == ".docx":
			return KindDOCX, nil
		case m.Is("text/plain"):
			return KindText, nil
		}
	}

	return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedDocument, mimetype.Detect(data).String())
}

// ExtractText returns the raw text of a resume document
func (e *Extractor) ExtractText(filename string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", nil
	}

	kind, err := Detect(filename, data)
	if err != nil {
		return "", err
	}
	if e.debug {
		log.Printf("[DOCUMENT] %q detected as %s (%d bytes)", filename, kind, len(data))
	}

	switch kind {
	case KindPDF:
		return extractPDFText(data)
	case KindDOCX:
		return extractDocxText(data)
	default:
		return string(data), nil
	}
}

func extractPDFText(data []byte) (text string, err error) {
	// the pdf reader panics on some malformed object graphs
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: failed to read pdf: %v", domain.ErrUnsupportedDocument, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: failed to read pdf: %v", domain.ErrUnsupportedDocument, err)
	}

	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, pageErr := page.GetPlainText(nil)
		if pageErr != nil {
			log.Printf("[DOCUMENT] Skipping unreadable pdf page %d: %v", i, pageErr)
			continue
		}
		sb.WriteString(pageText)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func extractDocxText(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: failed to parse docx: %v", domain.ErrUnsupportedDocument, err)
	}
	defer doc.Close()

	return wordprocessingText(doc.Editable().GetContent())
}

// wordprocessingText keeps the character data of w:t runs and turns paragraph
// ends and breaks into newlines and tab elements into tabs.
func wordprocessingText(content string) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))

	var sb strings.Builder
	inText := 0
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("%w: malformed document.xml: %v", domain.ErrUnsupportedDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText++
			case "tab":
				sb.WriteByte('\t')
			case "br", "cr":
				sb.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText--
			case "p":
				sb.WriteByte('\n')
			}
		case xml.CharData:
			if inText > 0 {
				sb.Write(t)
			}
		}
	}
	return sb.String(), nil
}
