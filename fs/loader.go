package fs

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/fwojciec/docrag"
)

// Loader turns uploaded files into text units, choosing a parser by the
// file's extension.
type Loader struct {
	parsers map[string]docrag.FileParser
}

// NewLoader returns a Loader that accepts plain text and Markdown files.
// Other formats are added with Register.
func NewLoader() *Loader {
	l := &Loader{parsers: make(map[string]docrag.FileParser)}
	l.Register(".txt", PlainTextParser{})
	l.Register(".md", PlainTextParser{})
	return l
}

// Register sets the parser used for files with extension ext (".html").
func (l *Loader) Register(ext string, p docrag.FileParser) {
	l.parsers[strings.ToLower(ext)] = p
}

// Extensions returns the supported extensions in sorted order.
func (l *Loader) Extensions() []string {
	exts := make([]string, 0, len(l.parsers))
	for ext := range l.parsers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Load parses one uploaded file. The unit is named after the file's base
// name.
func (l *Loader) Load(name string, data []byte) (docrag.TextUnit, error) {
	ext := strings.ToLower(filepath.Ext(name))
	p, ok := l.parsers[ext]
	if !ok {
		return docrag.TextUnit{}, docrag.Errorf(docrag.EINVALID,
			"unsupported file type %q (supported: %s)", ext, strings.Join(l.Extensions(), ", "))
	}

	text, err := p.ParseFile(name, data)
	if err != nil {
		return docrag.TextUnit{}, err
	}
	return docrag.TextUnit{Source: filepath.Base(name), Text: text}, nil
}

// LoadFiles reads and parses files from disk. The first failure aborts
// the load.
func (l *Loader) LoadFiles(paths []string) ([]docrag.TextUnit, error) {
	units := make([]docrag.TextUnit, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		u, err := l.Load(path, data)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, nil
}

// Ensure PlainTextParser implements docrag.FileParser at compile time.
var _ docrag.FileParser = PlainTextParser{}

// PlainTextParser accepts UTF-8 text as is, minus a leading byte order mark.
type PlainTextParser struct{}

func (PlainTextParser) ParseFile(name string, data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		return "", docrag.Errorf(docrag.EINVALID, "%s is not valid UTF-8 text", name)
	}
	return string(data), nil
}

// Ensure HTMLParser implements docrag.FileParser at compile time.
var _ docrag.FileParser = (*HTMLParser)(nil)

// HTMLParser extracts the main content of an HTML file and renders it as
// Markdown. Fallback is tried when Extractor fails or finds no content.
// Without a Converter the extracted plain text is used.
type HTMLParser struct {
	Extractor docrag.Extractor
	Fallback  docrag.Extractor
	Converter docrag.Converter
}

func (p *HTMLParser) ParseFile(name string, data []byte) (string, error) {
	html := string(data)

	result, err := p.Extractor.Extract(html)
	if (err != nil || emptyExtract(result)) && p.Fallback != nil {
		result, err = p.Fallback.Extract(html)
	}
	if err != nil {
		return "", err
	}
	if emptyExtract(result) {
		return "", docrag.Errorf(docrag.EINVALID, "no text content in %s", name)
	}

	text := result.Text
	if p.Converter != nil && strings.TrimSpace(result.ContentHTML) != "" {
		if md, err := p.Converter.Convert(result.ContentHTML); err == nil && strings.TrimSpace(md) != "" {
			text = md
		}
	}

	if strings.TrimSpace(text) == "" {
		return "", docrag.Errorf(docrag.EINVALID, "no text content in %s", name)
	}
	if result.Title != "" && !strings.Contains(text, result.Title) {
		text = "# " + result.Title + "\n\n" + text
	}
	return text, nil
}

func emptyExtract(r *docrag.ExtractResult) bool {
	return r == nil || (strings.TrimSpace(r.ContentHTML) == "" && strings.TrimSpace(r.Text) == "")
}
