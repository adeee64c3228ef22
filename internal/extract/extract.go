// Package extract recovers plain text from uploaded resume files.
package extract

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	internalErrors "github.com/gcbaptista/jobmatch/internal/errors"
)

// File types accepted by Extractor.
const (
	TypeText     = "txt"
	TypeMarkdown = "md"
	TypeHTML     = "html"
)

// Extractor handles plain text and HTML. Binary formats such as pdf and docx are reported
// as unsupported; a converter can sit in front of it and pass plain text instead.
type Extractor struct {
	MaxBytes int // 0 means unlimited
}

func New() *Extractor {
	return &Extractor{}
}

// NormalizeFileType lowercases fileType and strips a leading dot, a path or a MIME prefix,
// so "Resume.PDF", ".pdf" and "application/pdf" all become "pdf".
func NormalizeFileType(fileType string) string {
	ft := strings.ToLower(strings.TrimSpace(fileType))
	if i := strings.LastIndexAny(ft, "./"); i >= 0 {
		ft = ft[i+1:]
	}
	switch ft {
	case "text", "plain":
		return TypeText
	case "htm", "xhtml":
		return TypeHTML
	case "markdown":
		return TypeMarkdown
	}
	return ft
}

// Extract returns the text of content. Empty or whitespace-only output is an ExtractionError.
func (e *Extractor) Extract(content []byte, fileType string) (string, error) {
	ft := NormalizeFileType(fileType)
	if e.MaxBytes > 0 && len(content) > e.MaxBytes {
		return "", internalErrors.NewExtractionError(ft, "file exceeds the size limit")
	}

	var (
		text string
		err  error
	)
	switch ft {
	case TypeText, TypeMarkdown, "":
		text = plainText(content)
	case TypeHTML:
		text, err = htmlText(content)
		if err != nil {
			return "", internalErrors.NewExtractionError(ft, err.Error())
		}
	default:
		return "", internalErrors.NewUnsupportedFileTypeError(ft)
	}

	text = collapseSpace(text)
	if text == "" {
		return "", internalErrors.NewExtractionError(ft, "no text found")
	}
	return text, nil
}

func plainText(content []byte) string {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))
	if utf8.Valid(content) {
		return string(content)
	}
	return strings.ToValidUTF8(string(content), " ")
}

// htmlText returns the visible text of an HTML document, one block element per line.
func htmlText(content []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return "", err
	}
	doc.Find("script, style, noscript, head").Remove()
	doc.Find("br, p, div, li, h1, h2, h3, h4, h5, h6, tr").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	return doc.Text(), nil
}

func collapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
