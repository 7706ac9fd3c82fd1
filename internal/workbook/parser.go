package workbook

import (
	"fmt"
	"strings"
	"time"
)

// Worksheet layout markers. The export embeds these in free text rather than
// in a fixed schema, so the parser sniffs for them.
const (
	locationPrefix  = "Location:"
	machineMarker   = " - Machine "
	coilHeaderLabel = "coil"
)

// Fixed column positions of the coil/SKU table within a machine block.
const (
	colCoil     = 4
	colSKU      = 5
	colCurrent  = 6
	colPar      = 7
	colNeed     = 8
	colForecast = 9
	colTotal    = 10
	colNotes    = 11

	// blockWidth is how many leading columns must all be blank for a row to
	// count as "mostly empty", which terminates a machine block.
	blockWidth = 12
)

// Parse walks a decoded workbook and produces the parsed, flattened run.
//
// The first worksheet is treated as the control sheet (item-code categories);
// every later worksheet is parsed independently as a location sheet. Sheets
// that do not open with the location prefix are skipped. Parse returns
// (nil, nil) when no worksheet is a location sheet, and a *SheetFormatError
// when any sheet is structurally malformed; one bad sheet rejects the whole
// workbook.
func Parse(wb *Workbook) (*ParsedRun, error) {
	if wb == nil || len(wb.Sheets) == 0 {
		return nil, nil
	}

	categories := buildCategoryIndex(&wb.Sheets[0])

	var locations []ParsedLocation
	for i := 1; i < len(wb.Sheets); i++ {
		loc, err := parseLocationSheet(&wb.Sheets[i], categories)
		if err != nil {
			return nil, err
		}
		if loc != nil {
			locations = append(locations, *loc)
		}
	}

	if len(locations) == 0 {
		return nil, nil
	}

	return &ParsedRun{
		Locations: locations,
		Entries:   flatten(locations),
		RunDate:   earliestRunDate(locations),
	}, nil
}

// scanState names the parser's position within a location sheet.
type scanState int

const (
	stateSeekingMachineBlock scanState = iota
	stateMachineInfo
	stateSeekingCoilHeader
	stateCoilRows
)

// sheetScanner is an explicit-cursor scanner over one location sheet's rows.
type sheetScanner struct {
	sheet      *Sheet
	categories *CategoryIndex
	row        int
	state      scanState
}

// parseLocationSheet parses one worksheet as a location sheet.
// Returns (nil, nil) when the sheet does not open with the location prefix
// or carries no location name; both mean "not a location sheet", not an error.
func parseLocationSheet(sheet *Sheet, categories *CategoryIndex) (*ParsedLocation, error) {
	header := strings.TrimSpace(sheet.Cell(0, 0))
	if !strings.HasPrefix(header, locationPrefix) {
		return nil, nil
	}

	name, date := splitNameAndDate(strings.TrimPrefix(header, locationPrefix))
	if name == "" {
		return nil, nil
	}

	loc := &ParsedLocation{
		Sheet:   sheet.Name,
		Name:    name,
		Address: strings.TrimSpace(sheet.Cell(1, 0)),
		RunDate: date,
	}

	sc := &sheetScanner{
		sheet:      sheet,
		categories: categories,
		row:        2,
		state:      stateSeekingMachineBlock,
	}

	machines, err := sc.scan()
	if err != nil {
		return nil, err
	}
	loc.Machines = machines
	return loc, nil
}

// scan runs the state machine over the sheet body and collects machine blocks.
func (sc *sheetScanner) scan() ([]ParsedMachine, error) {
	var machines []ParsedMachine
	var current *ParsedMachine

	flush := func() {
		if current != nil {
			machines = append(machines, *current)
			current = nil
		}
	}

	for sc.row < len(sc.sheet.Rows) {
		switch sc.state {

		case stateSeekingMachineBlock:
			first := sc.sheet.Cell(sc.row, 0)
			if i := strings.Index(first, machineMarker); i >= 0 {
				code := strings.TrimSpace(first[i+len(machineMarker):])
				if code == "" {
					return nil, sc.fail("machine header has no machine code")
				}
				current = &ParsedMachine{Code: code}
				sc.state = stateMachineInfo
			}
			sc.row++

		case stateMachineInfo:
			name, category, typeName, date := parseMachineInfo(sc.sheet.Cell(sc.row, 0))
			if name == "" {
				return nil, sc.fail("machine name is empty")
			}
			current.Name = name
			current.TypeCategory = category
			current.TypeName = typeName
			current.RunDate = date
			sc.state = stateSeekingCoilHeader
			sc.row++

		case stateSeekingCoilHeader:
			if sc.rowIsBlank(sc.row) {
				sc.row++
				continue
			}
			if !strings.EqualFold(strings.TrimSpace(sc.sheet.Cell(sc.row, colCoil)), coilHeaderLabel) {
				return nil, sc.fail("coil header row not found")
			}
			sc.state = stateCoilRows
			sc.row++

		case stateCoilRows:
			first := sc.sheet.Cell(sc.row, 0)
			if strings.Contains(first, machineMarker) {
				// Next block starts; reprocess this row as a machine header.
				flush()
				sc.state = stateSeekingMachineBlock
				continue
			}
			if sc.rowMostlyEmpty(sc.row) {
				flush()
				sc.state = stateSeekingMachineBlock
				sc.row++
				continue
			}
			if item, ok := sc.parseCoilRow(sc.row); ok {
				current.Coils = append(current.Coils, item)
			}
			sc.row++
		}
	}

	if sc.state == stateMachineInfo {
		return nil, sc.fail("machine block ends before machine info line")
	}
	if sc.state == stateSeekingCoilHeader {
		return nil, sc.fail("coil header row not found")
	}

	flush()
	return machines, nil
}

// parseCoilRow reads one coil/SKU row. Rows with neither a coil code nor SKU
// text are ignored (ok=false).
func (sc *sheetScanner) parseCoilRow(row int) (ParsedCoilItemRow, bool) {
	coilCode := strings.TrimSpace(sc.sheet.Cell(row, colCoil))
	rawSKU := strings.TrimSpace(sc.sheet.Cell(row, colSKU))
	if coilCode == "" && rawSKU == "" {
		return ParsedCoilItemRow{}, false
	}

	code, name, skuType := SplitSKUText(rawSKU)
	item := ParsedCoilItemRow{
		CoilCode: coilCode,
		SKU: ParsedSKU{
			Code:     code,
			Name:     name,
			Type:     skuType,
			Category: sc.categories.Lookup(code),
		},
		Current:  ParseNumberCell(sc.sheet.Cell(row, colCurrent)),
		Par:      ParseNumberCell(sc.sheet.Cell(row, colPar)),
		Need:     ParseNumberCell(sc.sheet.Cell(row, colNeed)),
		Forecast: ParseNumberCell(sc.sheet.Cell(row, colForecast)),
		Total:    ParseNumberCell(sc.sheet.Cell(row, colTotal)),
		Notes:    strings.TrimSpace(sc.sheet.Cell(row, colNotes)),
	}
	return item, true
}

// rowIsBlank reports whether every cell in the row is blank.
func (sc *sheetScanner) rowIsBlank(row int) bool {
	if row >= len(sc.sheet.Rows) {
		return true
	}
	for _, cell := range sc.sheet.Rows[row] {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// rowMostlyEmpty reports whether the leading block columns are all blank,
// which ends the current machine block even if stray cells exist further out.
func (sc *sheetScanner) rowMostlyEmpty(row int) bool {
	for col := 0; col < blockWidth; col++ {
		if strings.TrimSpace(sc.sheet.Cell(row, col)) != "" {
			return false
		}
	}
	return true
}

// fail builds a SheetFormatError pointing at the scanner's current row.
func (sc *sheetScanner) fail(reason string) *SheetFormatError {
	return &SheetFormatError{Sheet: sc.sheet.Name, Row: sc.row + 1, Reason: reason}
}

// splitNameAndDate splits "<name> (<date>)" on the last parenthesis pair.
// A missing or unparseable date degrades to nil rather than failing.
func splitNameAndDate(s string) (string, *time.Time) {
	s = strings.TrimSpace(s)

	open := strings.LastIndex(s, "(")
	closing := strings.LastIndex(s, ")")
	if open < 0 || closing < open {
		return s, nil
	}

	name := strings.TrimSpace(s[:open])
	date := ParseDateCell(s[open+1 : closing])
	if name == "" {
		// Nothing outside the parens; treat the whole cell as the name.
		return s, nil
	}
	return name, date
}

// parseMachineInfo decomposes the free-text machine info line:
//
//	<name>[, <category>][ (<machineTypeName>)][ (<dd/mm/yyyy>)]
//
// The trailing date parenthetical is stripped first (only when its contents
// parse as a date), then a trailing non-date parenthetical becomes the
// machine type name, and the remainder splits on the first comma.
func parseMachineInfo(info string) (name, category, typeName string, date *time.Time) {
	s := strings.TrimSpace(info)

	if inner, rest, ok := trailingParenthetical(s); ok {
		if d := ParseDateCell(inner); d != nil {
			date = d
			s = rest
		}
	}

	if inner, rest, ok := trailingParenthetical(s); ok {
		if ParseDateCell(inner) == nil {
			typeName = inner
			s = rest
		}
	}

	if i := strings.Index(s, ","); i >= 0 {
		name = strings.TrimSpace(s[:i])
		category = strings.TrimSpace(s[i+1:])
	} else {
		name = strings.TrimSpace(s)
	}
	return name, category, typeName, date
}

// trailingParenthetical returns the contents of a parenthesis pair at the
// very end of s, plus s with that pair removed.
func trailingParenthetical(s string) (inner, rest string, ok bool) {
	if !strings.HasSuffix(s, ")") {
		return "", s, false
	}
	open := strings.LastIndex(s, "(")
	if open < 0 {
		return "", s, false
	}
	inner = strings.TrimSpace(s[open+1 : len(s)-1])
	rest = strings.TrimSpace(s[:open])
	return inner, rest, true
}

// String implements fmt.Stringer for debugging scanner states.
func (s scanState) String() string {
	switch s {
	case stateSeekingMachineBlock:
		return "seeking-machine-block"
	case stateMachineInfo:
		return "machine-info"
	case stateSeekingCoilHeader:
		return "seeking-coil-header"
	case stateCoilRows:
		return "coil-rows"
	default:
		return fmt.Sprintf("scanState(%d)", int(s))
	}
}
