// Package workbook turns an uploaded run-workbook spreadsheet into a parsed,
// flattened run ready for persistence.
//
// A run workbook is a semi-structured export: the first worksheet is an
// optional control sheet carrying an item-code to category table, and every
// following worksheet describes one vending location with nested machine
// blocks and coil/SKU rows. This package has no database dependencies.
package workbook

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet reduced to a rectangular grid of cell strings.
// Blank cells are empty strings; rows may be ragged (trailing blanks trimmed).
type Sheet struct {
	Name string
	Rows [][]string
}

// Workbook is an ordered list of decoded worksheets.
type Workbook struct {
	Sheets []Sheet
}

// Decode reads an xlsx stream into a Workbook.
// Returns an error wrapping ErrNotAWorkbook if the file cannot be read as a
// spreadsheet.
func Decode(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAWorkbook, err)
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("%w: sheet %q: %v", ErrNotAWorkbook, name, err)
		}
		wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: rows})
	}

	return wb, nil
}

// Cell returns the trimmed-right-padded cell value at (row, col), or "" when
// the grid is shorter than the requested position.
func (s *Sheet) Cell(row, col int) string {
	if row < 0 || row >= len(s.Rows) {
		return ""
	}
	r := s.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}
