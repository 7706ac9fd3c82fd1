package workbook

import "time"

// ParsedSKU is the structured form of a raw "code - name - type" SKU cell.
// Category comes from the control sheet's code lookup, not the cell itself.
type ParsedSKU struct {
	Code     string
	Name     string
	Type     string
	Category string
}

// ParsedCoilItemRow is one coil/SKU row inside a machine block.
// The five quantity columns are optional; unparseable cells degrade to nil.
type ParsedCoilItemRow struct {
	CoilCode string
	SKU      ParsedSKU
	Current  *float64
	Par      *float64
	Need     *float64
	Forecast *float64
	Total    *float64
	Notes    string
}

// ParsedMachine is one machine block parsed from a location sheet.
type ParsedMachine struct {
	Code         string
	Name         string
	TypeName     string
	TypeCategory string
	RunDate      *time.Time
	Coils        []ParsedCoilItemRow
}

// ParsedLocation is one accepted location sheet. Name is never empty.
type ParsedLocation struct {
	Sheet    string
	Name     string
	Address  string
	RunDate  *time.Time
	Machines []ParsedMachine
}

// ParsedPickEntry is the flattened unit of work: one stocked SKU in one coil,
// with its machine and location context denormalized for persistence.
type ParsedPickEntry struct {
	LocationName        string
	LocationAddress     string
	MachineCode         string
	MachineName         string
	MachineTypeName     string
	MachineTypeCategory string
	CoilCode            string
	SKU                 ParsedSKU
	Current             *float64
	Par                 *float64
	Need                *float64
	Forecast            *float64
	Total               *float64
	Notes               string
}

// ParsedRun is the full result of parsing a workbook: the location tree, the
// flattened pick entries, and the earliest run date found anywhere in the
// workbook (nil when no sheet carried a date).
type ParsedRun struct {
	Locations []ParsedLocation
	Entries   []ParsedPickEntry
	RunDate   *time.Time
}
