package workbook

import "time"

// flatten projects the location/machine/coil tree into an ordered list of
// pick entries: locations in sheet order, machines in row order, coil rows in
// row order. Only rows with a positive total have stock to report; which
// quantity ultimately becomes the persisted count is decided later, per SKU,
// by the persistence engine.
func flatten(locations []ParsedLocation) []ParsedPickEntry {
	var entries []ParsedPickEntry
	for _, loc := range locations {
		for _, m := range loc.Machines {
			for _, c := range m.Coils {
				if c.Total == nil || *c.Total <= 0 {
					continue
				}
				entries = append(entries, ParsedPickEntry{
					LocationName:        loc.Name,
					LocationAddress:     loc.Address,
					MachineCode:         m.Code,
					MachineName:         m.Name,
					MachineTypeName:     m.TypeName,
					MachineTypeCategory: m.TypeCategory,
					CoilCode:            c.CoilCode,
					SKU:                 c.SKU,
					Current:             c.Current,
					Par:                 c.Par,
					Need:                c.Need,
					Forecast:            c.Forecast,
					Total:               c.Total,
					Notes:               c.Notes,
				})
			}
		}
	}
	return entries
}

// earliestRunDate returns the earliest non-nil date across all location and
// machine run dates, or nil when the workbook carries no dates at all.
func earliestRunDate(locations []ParsedLocation) *time.Time {
	var earliest *time.Time

	consider := func(t *time.Time) {
		if t == nil {
			return
		}
		if earliest == nil || t.Before(*earliest) {
			earliest = t
		}
	}

	for i := range locations {
		consider(locations[i].RunDate)
		for j := range locations[i].Machines {
			consider(locations[i].Machines[j].RunDate)
		}
	}
	return earliest
}
