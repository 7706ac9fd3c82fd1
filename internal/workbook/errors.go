package workbook

import (
	"errors"
	"fmt"
)

// ErrNotAWorkbook indicates the uploaded bytes could not be decoded as a
// spreadsheet at all.
var ErrNotAWorkbook = errors.New("file is not a readable spreadsheet")

// SheetFormatError reports a structural problem in a worksheet that makes the
// whole import unusable: a machine header without a code, a missing coil
// header row, or an empty machine name. Row is 1-based for display.
type SheetFormatError struct {
	Sheet  string
	Row    int
	Reason string
}

func (e *SheetFormatError) Error() string {
	return fmt.Sprintf("sheet %q, row %d: %s", e.Sheet, e.Row, e.Reason)
}
