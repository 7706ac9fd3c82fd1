package importer

// errors.go defines the import error taxonomy. Every import ends in exactly
// one of: success, "nothing to import", "workbook not recognized", invalid
// timezone, or a retriable persistence failure. Errors are never partially
// applied; the transaction in service.go guarantees that.

import (
	"errors"
	"fmt"

	"github.com/vendway/routeboard/internal/workbook"
)

// ErrNothingToImport means the workbook parsed cleanly but produced zero pick
// entries: every coil either had no stock to report or no machines parsed.
// User-correctable, distinct from a malformed file.
var ErrNothingToImport = errors.New("workbook has no pick entries to import")

// ErrInvalidTimezone means the caller supplied a timezone identifier that is
// not a valid IANA zone. Rejected before any parsing or persistence happens.
var ErrInvalidTimezone = errors.New("invalid timezone identifier")

// EntryError reports a pick entry that cannot be persisted because of the
// workbook's content (missing coil or SKU code). It counts as a structural
// workbook problem and aborts the whole import.
type EntryError struct {
	MachineCode string
	CoilCode    string
	Reason      string
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("machine %q coil %q: %s", e.MachineCode, e.CoilCode, e.Reason)
}

// PersistenceError wraps transaction and infrastructure failures. Callers
// should treat these as retriable.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// UserMessage is a user-facing rendering of an import error, with a stable
// code support staff can reference.
type UserMessage struct {
	Code    string
	Message string
	Action  string
}

// MapError translates an import error into a UserMessage.
//
// Codes:
//
//	IMP001 - workbook layout not recognized (structural parse failure)
//	IMP002 - nothing to import (well-formed but empty of stock)
//	IMP003 - invalid timezone identifier
//	IMP004 - persistence failure (retriable)
func MapError(err error) UserMessage {
	var sheetErr *workbook.SheetFormatError
	var entryErr *EntryError
	var persistErr *PersistenceError

	switch {
	case errors.As(err, &sheetErr):
		return UserMessage{
			Code:    "IMP001",
			Message: fmt.Sprintf("The workbook's layout is not recognized (%s).", sheetErr),
			Action:  "Export the run workbook again without editing its structure, then retry.",
		}
	case errors.Is(err, workbook.ErrNotAWorkbook):
		return UserMessage{
			Code:    "IMP001",
			Message: "The file could not be read as a spreadsheet.",
			Action:  "Upload the workbook in .xlsx format.",
		}
	case errors.As(err, &entryErr):
		return UserMessage{
			Code:    "IMP001",
			Message: fmt.Sprintf("The workbook's layout is not recognized (%s).", entryErr),
			Action:  "Every stocked row needs both a coil code and a SKU code.",
		}
	case errors.Is(err, ErrNothingToImport):
		return UserMessage{
			Code:    "IMP002",
			Message: "Nothing to import: the workbook has no coils with stock to report.",
			Action:  "Check the Total column of each machine block.",
		}
	case errors.Is(err, ErrInvalidTimezone):
		return UserMessage{
			Code:    "IMP003",
			Message: "The timezone identifier is not valid.",
			Action:  "Use an IANA timezone such as America/Los_Angeles.",
		}
	case errors.As(err, &persistErr):
		return UserMessage{
			Code:    "IMP004",
			Message: "The import could not be saved. No partial data was written.",
			Action:  "Please try again in a few moments.",
		}
	default:
		return UserMessage{
			Code:    "IMP000",
			Message: "The import failed unexpectedly.",
			Action:  "Please try again; contact support with code IMP000 if it persists.",
		}
	}
}
