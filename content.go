package docrag

// ExtractResult is the main content of an HTML page with boilerplate
// such as navigation and footers stripped.
type ExtractResult struct {
	Title       string
	ContentHTML string
	Text        string
}

// Extractor isolates the main content of an HTML page.
type Extractor interface {
	Extract(html string) (*ExtractResult, error)
}

// Converter renders extracted HTML as Markdown.
type Converter interface {
	Convert(html string) (string, error)
}

// FileParser turns the raw bytes of an uploaded file into indexable text.
type FileParser interface {
	ParseFile(name string, data []byte) (string, error)
}
