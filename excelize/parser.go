// Package excelize extracts text from spreadsheet uploads.
package excelize

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/fwojciec/docrag"
	"github.com/xuri/excelize/v2"
)

// Ensure Parser implements docrag.FileParser at compile time.
var _ docrag.FileParser = (*Parser)(nil)

// Parser renders every sheet of an .xlsx workbook as tab-separated text.
// Each sheet is introduced by a "## <sheet name>" heading.
type Parser struct{}

// ParseFile implements docrag.FileParser.
func (p *Parser) ParseFile(name string, data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", docrag.Errorf(docrag.EINVALID, "cannot read spreadsheet %s: %v", name, err)
	}
	defer func() { _ = f.Close() }()

	var sections []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("reading sheet %q of %s: %w", sheet, name, err)
		}

		lines := sheetLines(rows)
		if len(lines) == 0 {
			continue
		}
		sections = append(sections, "## "+sheet+"\n\n"+strings.Join(lines, "\n"))
	}

	if len(sections) == 0 {
		return "", docrag.Errorf(docrag.EINVALID, "no text content in %s", name)
	}
	return strings.Join(sections, "\n\n"), nil
}

func sheetLines(rows [][]string) []string {
	var lines []string
	for _, row := range rows {
		cells := make([]string, len(row))
		blank := true
		for i, cell := range row {
			cells[i] = strings.TrimSpace(cell)
			if cells[i] != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		lines = append(lines, strings.Join(cells, "\t"))
	}
	return lines
}
