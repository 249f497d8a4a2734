package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextExtractor turns a stored resume file into plain text.
type TextExtractor interface {
	Extract(filePath string) (*ExtractedText, error)
}

type ExtractedText struct {
	Text      string
	PageCount int
	FilePath  string
}

// SupportedExtensions lists the resume file types that can be extracted.
var SupportedExtensions = map[string]struct{}{
	".pdf": {},
	".txt": {},
}

type textExtractor struct{}

func NewTextExtractor() TextExtractor {
	return &textExtractor{}
}

func (e *textExtractor) Extract(filePath string) (*ExtractedText, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("file does not exist: %s", filePath)
	}

	var (
		content *ExtractedText
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".pdf":
		content, err = extractPDF(filePath)
	case ".txt":
		content, err = extractPlain(filePath)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, ext)
	}
	if err != nil {
		return nil, err
	}

	content.Text = CleanText(content.Text)
	if content.Text == "" {
		return nil, fmt.Errorf("no text content found in %s", filepath.Base(filePath))
	}
	return content, nil
}

func extractPDF(filePath string) (*ExtractedText, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		// unreadable pages are skipped, the rest of the document still counts
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		textBuilder.WriteString(text)
		textBuilder.WriteString("\n\n")
	}

	return &ExtractedText{
		Text:      textBuilder.String(),
		PageCount: totalPage,
		FilePath:  filePath,
	}, nil
}

func extractPlain(filePath string) (*ExtractedText, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return &ExtractedText{
		Text:      string(data),
		PageCount: 1,
		FilePath:  filePath,
	}, nil
}

// CleanText trims every line and drops blank ones.
func CleanText(text string) string {
	text = strings.TrimSpace(text)

	lines := strings.Split(text, "\n")
	var cleanedLines []string

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleanedLines = append(cleanedLines, line)
		}
	}

	return strings.Join(cleanedLines, "\n")
}
