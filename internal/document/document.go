package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrUnsupportedType signals a file extension without an extractor.
	ErrUnsupportedType = errors.New("unsupported document type")
	// ErrNoText signals a document from which no usable text was extracted.
	ErrNoText = errors.New("no extractable text in document")
)

// SupportedExtensions lists the file extensions Extract accepts.
var SupportedExtensions = []string{".pdf", ".docx", ".doc", ".txt"}

// Extract converts an uploaded resume or job description into plain text,
// dispatching on the file extension. Whitespace-only output is rejected.
func Extract(filename string, data []byte) (string, error) {
	var (
		text string
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx", ".doc":
		text, err = extractDOCX(data)
	case ".txt":
		text = string(data)
	default:
		return "", fmt.Errorf("%q: %w", ext, ErrUnsupportedType)
	}

	if err != nil {
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrNoText
	}

	return text, nil
}

// ExtractFile reads and extracts the document at the given path.
func ExtractFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read document %q: %w", path, err)
	}

	return Extract(path, data)
}

// Supported reports whether the filename carries an accepted extension.
func Supported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	text, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	return string(text), nil
}

// extractDOCX walks word/document.xml collecting the text runs. Streaming the
// tokens picks up table cells as well, since they nest ordinary paragraphs.
func extractDOCX(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}

	for _, file := range archive.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open docx body: %w", err)
		}
		defer rc.Close()

		return collectRuns(rc)
	}

	return "", fmt.Errorf("docx body missing: %w", ErrNoText)
}

func collectRuns(r io.Reader) (string, error) {
	decoder := xml.NewDecoder(r)

	var builder strings.Builder
	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse docx body: %w", err)
		}

		switch element := token.(type) {
		case xml.StartElement:
			if element.Name.Local != "t" {
				continue
			}
			var text string
			if err := decoder.DecodeElement(&text, &element); err != nil {
				return "", fmt.Errorf("decode docx run: %w", err)
			}
			builder.WriteString(text)
		case xml.EndElement:
			if element.Name.Local == "p" {
				builder.WriteString("\n")
			}
		}
	}

	return builder.String(), nil
}
