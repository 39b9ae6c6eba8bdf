package mock

import "github.com/fwojciec/docrag"

var _ docrag.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of docrag.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*docrag.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*docrag.ExtractResult, error) {
	return e.ExtractFn(html)
}

var _ docrag.Converter = (*Converter)(nil)

// Converter is a mock implementation of docrag.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ docrag.FileParser = (*FileParser)(nil)

// FileParser is a mock implementation of docrag.FileParser.
type FileParser struct {
	ParseFileFn func(name string, data []byte) (string, error)
}

func (p *FileParser) ParseFile(name string, data []byte) (string, error) {
	return p.ParseFileFn(name, data)
}
