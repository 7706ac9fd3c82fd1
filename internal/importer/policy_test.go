package importer

import (
	"errors"
	"testing"

	"github.com/vendway/routeboard/internal/database"
	"github.com/vendway/routeboard/internal/workbook"
)

func TestPolicyForPointer(t *testing.T) {
	tests := []struct {
		pointer string
		want    CountPolicy
	}{
		{database.CountPointerTotal, UseTotalWithFallback},
		{database.CountPointerCount, UseCount},
		{database.CountPointerNeed, UseNeed},
		{database.CountPointerForecast, UseForecast},
		{"", UseTotalWithFallback},
		{"bogus", UseTotalWithFallback},
	}
	for _, tt := range tests {
		if got := PolicyForPointer(tt.pointer); got != tt.want {
			t.Errorf("PolicyForPointer(%q) = %v, want %v", tt.pointer, got, tt.want)
		}
	}
}

func TestResolveCount(t *testing.T) {
	full := &workbook.ParsedPickEntry{
		Current: f(1), Need: f(2), Forecast: f(3), Total: f(4),
	}

	tests := []struct {
		name   string
		policy CountPolicy
		entry  *workbook.ParsedPickEntry
		want   float64
	}{
		{"total wins by default", UseTotalWithFallback, full, 4},
		{"count policy reads current", UseCount, full, 1},
		{"need policy", UseNeed, full, 2},
		{"forecast policy", UseForecast, full, 3},
		{
			"missing total falls back to current",
			UseTotalWithFallback,
			&workbook.ParsedPickEntry{Current: f(1), Need: f(2), Forecast: f(3)},
			1,
		},
		{
			"fallback chain reaches need",
			UseTotalWithFallback,
			&workbook.ParsedPickEntry{Need: f(2), Forecast: f(3)},
			2,
		},
		{
			"fallback chain reaches forecast",
			UseTotalWithFallback,
			&workbook.ParsedPickEntry{Forecast: f(3)},
			3,
		},
		{"all absent yields zero", UseTotalWithFallback, &workbook.ParsedPickEntry{}, 0},
		{
			"non-default policies do not fall back",
			UseNeed,
			&workbook.ParsedPickEntry{Current: f(1), Total: f(4)},
			0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.policy.ResolveCount(tt.entry); got != tt.want {
				t.Errorf("ResolveCount() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMapErrorCodes(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"sheet format", &workbook.SheetFormatError{Sheet: "S", Row: 3, Reason: "bad"}, "IMP001"},
		{"not a workbook", workbook.ErrNotAWorkbook, "IMP001"},
		{"entry error", &EntryError{MachineCode: "VM-001", Reason: "coil code is missing"}, "IMP001"},
		{"nothing to import", ErrNothingToImport, "IMP002"},
		{"invalid timezone", ErrInvalidTimezone, "IMP003"},
		{"persistence", &PersistenceError{Op: "commit", Err: errors.New("boom")}, "IMP004"},
		{"unknown", errors.New("???"), "IMP000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapError(tt.err); got.Code != tt.code {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, got.Code, tt.code)
			}
		})
	}
}
