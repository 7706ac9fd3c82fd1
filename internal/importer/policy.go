package importer

import (
	"github.com/vendway/routeboard/internal/database"
	"github.com/vendway/routeboard/internal/workbook"
)

// CountPolicy decides which parsed quantity becomes a pick entry's persisted
// count. It is resolved once per SKU from its count_needed_pointer rather
// than re-comparing strings per row.
type CountPolicy int

const (
	// UseTotalWithFallback is the default: the total column, falling back
	// through current, need and forecast when total is absent. The fallback
	// chain deliberately exists only on this branch.
	UseTotalWithFallback CountPolicy = iota
	UseCount
	UseNeed
	UseForecast
)

// PolicyForPointer maps a SKU's count pointer onto a CountPolicy.
// Unknown or empty pointers mean the default total-with-fallback behavior.
func PolicyForPointer(pointer string) CountPolicy {
	switch pointer {
	case database.CountPointerCount:
		return UseCount
	case database.CountPointerNeed:
		return UseNeed
	case database.CountPointerForecast:
		return UseForecast
	default:
		return UseTotalWithFallback
	}
}

// ResolveCount picks the persisted count for one entry under this policy.
func (p CountPolicy) ResolveCount(e *workbook.ParsedPickEntry) float64 {
	switch p {
	case UseCount:
		return deref(e.Current)
	case UseNeed:
		return deref(e.Need)
	case UseForecast:
		return deref(e.Forecast)
	default:
		if e.Total != nil {
			return *e.Total
		}
		return firstNonNil(e.Current, e.Need, e.Forecast)
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func firstNonNil(vs ...*float64) float64 {
	for _, v := range vs {
		if v != nil {
			return *v
		}
	}
	return 0
}
