package workbook

// normalize.go holds the pure cell/text normalization helpers used by the
// parser: SKU text decomposition, numeric and date coercion, and
// timezone-correct run instant derivation.

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// skuSeparator splits composite "code - name - type" SKU cells.
const skuSeparator = " - "

// dateLayout is the workbook's day/month/year convention. The non-padded
// layout accepts both "5/11/2025" and "05/11/2025".
const dateLayout = "2/1/2006"

// SplitSKUText decomposes a composite SKU cell into code, name and type.
//
// The cell is split on " - ": one segment is just a code, two are code and
// name, and with three or more the first segment is the code, the last is the
// type, and everything between is rejoined as the name (names may themselves
// contain the separator).
func SplitSKUText(raw string) (code, name, skuType string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", ""
	}

	segments := strings.Split(raw, skuSeparator)
	for i := range segments {
		segments[i] = strings.TrimSpace(segments[i])
	}

	switch len(segments) {
	case 1:
		return segments[0], "", ""
	case 2:
		return segments[0], segments[1], ""
	default:
		code = segments[0]
		skuType = segments[len(segments)-1]
		name = strings.Join(segments[1:len(segments)-1], skuSeparator)
		return code, name, skuType
	}
}

// ParseNumberCell coerces a cell to a float.
//
// Blank, "-" and "n/a" (any case) mean "no value" and return nil, as does
// anything that fails to parse or parses to a non-finite value. Thousands
// separators are stripped before parsing.
func ParseNumberCell(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" || strings.EqualFold(s, "n/a") {
		return nil
	}

	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// ParseDateCell coerces a dd/mm/yyyy cell to a UTC-midnight instant.
// Any other shape returns nil; the caller decides whether that is fatal.
func ParseDateCell(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return nil
	}
	return &t
}

// RunInstant converts a date-only value (UTC midnight) into the instant that
// is local midnight on that calendar date in loc, using the zone's offset
// in effect on that date. A nil location leaves the UTC-midnight instant
// as-is.
func RunInstant(date time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return date.UTC()
	}
	y, m, d := date.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc).UTC()
}

// CategoryIndex is the workbook-scoped item-code to category lookup built
// from the control sheet. It is threaded explicitly through parsing rather
// than held in shared state.
type CategoryIndex struct {
	byCode   map[string]string
	fallback string
}

// Lookup resolves a SKU code to its category, case-insensitively on code.
// Codes absent from the control sheet get the workbook-wide fallback
// category: the first category seen in row order, or "".
func (c *CategoryIndex) Lookup(code string) string {
	if c == nil {
		return ""
	}
	if cat, ok := c.byCode[strings.ToLower(strings.TrimSpace(code))]; ok {
		return cat
	}
	return c.fallback
}

// buildCategoryIndex scans the control sheet for a header row containing
// "item code" and "category" columns and collects the rows beneath it.
// A control sheet without that header simply yields an empty index.
func buildCategoryIndex(sheet *Sheet) *CategoryIndex {
	idx := &CategoryIndex{byCode: make(map[string]string)}
	if sheet == nil {
		return idx
	}

	codeCol, catCol, headerRow := -1, -1, -1
	for r, row := range sheet.Rows {
		cc, tc := -1, -1
		for c, cell := range row {
			switch {
			case strings.EqualFold(strings.TrimSpace(cell), "item code"):
				cc = c
			case strings.EqualFold(strings.TrimSpace(cell), "category"):
				tc = c
			}
		}
		if cc >= 0 && tc >= 0 {
			codeCol, catCol, headerRow = cc, tc, r
			break
		}
	}
	if headerRow < 0 {
		return idx
	}

	for r := headerRow + 1; r < len(sheet.Rows); r++ {
		code := strings.TrimSpace(sheet.Cell(r, codeCol))
		cat := strings.TrimSpace(sheet.Cell(r, catCol))
		if cat != "" && idx.fallback == "" {
			idx.fallback = cat
		}
		if code == "" || cat == "" {
			continue
		}
		idx.byCode[strings.ToLower(code)] = cat
	}

	return idx
}
