package importer

// resolve.go is the entity-resolution half of the persistence engine: every
// dimension entity (Location, MachineType, Machine, Coil, SKU, CoilItem) is
// matched by natural key and either reused, patched where the parsed value
// differs, or created. All calls happen on the import's single transaction;
// the ResolutionCache keeps repeated keys at one round-trip.

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/vendway/routeboard/internal/database"
	"github.com/vendway/routeboard/internal/workbook"
)

// DefaultMachineTypeName is used when a machine block names no type.
const DefaultMachineTypeName = "General"

// DefaultSKUType is used when a SKU cell carries no type segment.
const DefaultSKUType = "General"

type resolver struct {
	store     Store
	cache     *ResolutionCache
	companyID uuid.UUID
}

func newResolver(store Store, companyID uuid.UUID) *resolver {
	return &resolver{store: store, cache: newResolutionCache(), companyID: companyID}
}

// persistRun creates the run and one pick entry per parsed entry, resolving
// all dimension entities along the way. Returns the run and the distinct
// machine count. Any error aborts; the caller owns the rollback.
func persistRun(ctx context.Context, store Store, parsed *workbook.ParsedRun, companyID uuid.UUID, arg database.CreateRunParams) (*database.Run, int, error) {
	run, err := store.CreateRun(ctx, arg)
	if err != nil {
		return nil, 0, &PersistenceError{Op: "create run", Err: err}
	}

	r := newResolver(store, companyID)
	machines := make(map[string]struct{})

	for i := range parsed.Entries {
		entry := &parsed.Entries[i]
		if err := r.persistEntry(ctx, run.ID, entry); err != nil {
			return nil, 0, err
		}
		machines[entry.MachineCode] = struct{}{}
	}

	return run, len(machines), nil
}

// persistEntry resolves the full dimension chain for one pick entry and
// creates the entry itself.
func (r *resolver) persistEntry(ctx context.Context, runID uuid.UUID, entry *workbook.ParsedPickEntry) error {
	location, err := r.location(ctx, entry.LocationName, entry.LocationAddress)
	if err != nil {
		return err
	}

	machineType, err := r.machineType(ctx, entry.MachineTypeName, entry.MachineTypeCategory)
	if err != nil {
		return err
	}

	machine, err := r.machine(ctx, entry, machineType.ID, location.ID)
	if err != nil {
		return err
	}

	coil, err := r.coil(ctx, machine.ID, entry)
	if err != nil {
		return err
	}

	sku, err := r.sku(ctx, entry)
	if err != nil {
		return err
	}

	coilItem, err := r.coilItem(ctx, coil.ID, sku.ID, entry.Par)
	if err != nil {
		return err
	}

	count := PolicyForPointer(sku.CountNeededPointer).ResolveCount(entry)
	_, err = r.store.CreatePickEntry(ctx, database.CreatePickEntryParams{
		RunID:      runID,
		CoilItemID: coilItem.ID,
		Count:      count,
		Current:    entry.Current,
		Par:        entry.Par,
		Need:       entry.Need,
		Forecast:   entry.Forecast,
		Total:      entry.Total,
	})
	if err != nil {
		return &PersistenceError{Op: "create pick entry", Err: err}
	}
	return nil
}

func (r *resolver) location(ctx context.Context, name, address string) (*database.Location, error) {
	if l, ok := r.cache.locations[name]; ok {
		return l, nil
	}

	l, err := r.store.GetLocationByName(ctx, r.companyID, name)
	switch {
	case err == nil:
		if address != "" && (l.Address == nil || *l.Address != address) {
			if err := r.store.UpdateLocationAddress(ctx, l.ID, address); err != nil {
				return nil, &PersistenceError{Op: "update location", Err: err}
			}
			l.Address = &address
		}
	case errors.Is(err, database.ErrNotFound):
		l, err = r.store.CreateLocation(ctx, database.CreateLocationParams{
			CompanyID: r.companyID,
			Name:      name,
			Address:   optional(address),
		})
		if err != nil {
			return nil, &PersistenceError{Op: "create location", Err: err}
		}
	default:
		return nil, &PersistenceError{Op: "get location", Err: err}
	}

	r.cache.locations[name] = l
	return l, nil
}

func (r *resolver) machineType(ctx context.Context, name, category string) (*database.MachineType, error) {
	if name == "" {
		name = DefaultMachineTypeName
	}
	if mt, ok := r.cache.machineTypes[name]; ok {
		return mt, nil
	}

	mt, err := r.store.GetMachineTypeByName(ctx, name)
	switch {
	case err == nil:
		if category != "" && (mt.Description == nil || *mt.Description != category) {
			if err := r.store.UpdateMachineTypeDescription(ctx, mt.ID, category); err != nil {
				return nil, &PersistenceError{Op: "update machine type", Err: err}
			}
			mt.Description = &category
		}
	case errors.Is(err, database.ErrNotFound):
		mt, err = r.store.CreateMachineType(ctx, database.CreateMachineTypeParams{
			Name:        name,
			Description: optional(category),
		})
		if err != nil {
			return nil, &PersistenceError{Op: "create machine type", Err: err}
		}
	default:
		return nil, &PersistenceError{Op: "get machine type", Err: err}
	}

	r.cache.machineTypes[name] = mt
	return mt, nil
}

func (r *resolver) machine(ctx context.Context, entry *workbook.ParsedPickEntry, machineTypeID, locationID uuid.UUID) (*database.Machine, error) {
	if m, ok := r.cache.machines[entry.MachineCode]; ok {
		return m, nil
	}

	m, err := r.store.GetMachineByCode(ctx, r.companyID, entry.MachineCode)
	switch {
	case err == nil:
		descChanged := entry.MachineName != "" && (m.Description == nil || *m.Description != entry.MachineName)
		if descChanged || m.MachineTypeID != machineTypeID || m.LocationID != locationID {
			desc := m.Description
			if descChanged {
				desc = &entry.MachineName
			}
			err := r.store.UpdateMachine(ctx, database.UpdateMachineParams{
				ID:            m.ID,
				Description:   desc,
				MachineTypeID: machineTypeID,
				LocationID:    locationID,
			})
			if err != nil {
				return nil, &PersistenceError{Op: "update machine", Err: err}
			}
			m.Description = desc
			m.MachineTypeID = machineTypeID
			m.LocationID = locationID
		}
	case errors.Is(err, database.ErrNotFound):
		m, err = r.store.CreateMachine(ctx, database.CreateMachineParams{
			CompanyID:     r.companyID,
			Code:          entry.MachineCode,
			Description:   optional(entry.MachineName),
			MachineTypeID: machineTypeID,
			LocationID:    locationID,
		})
		if err != nil {
			return nil, &PersistenceError{Op: "create machine", Err: err}
		}
	default:
		return nil, &PersistenceError{Op: "get machine", Err: err}
	}

	r.cache.machines[entry.MachineCode] = m
	return m, nil
}

func (r *resolver) coil(ctx context.Context, machineID uuid.UUID, entry *workbook.ParsedPickEntry) (*database.Coil, error) {
	if entry.CoilCode == "" {
		return nil, &EntryError{MachineCode: entry.MachineCode, CoilCode: entry.CoilCode, Reason: "coil code is missing"}
	}

	key := coilKey(machineID, entry.CoilCode)
	if c, ok := r.cache.coils[key]; ok {
		return c, nil
	}

	c, err := r.store.GetCoilByCode(ctx, machineID, entry.CoilCode)
	switch {
	case err == nil:
		// Reuse as-is; a coil has no patchable fields.
	case errors.Is(err, database.ErrNotFound):
		c, err = r.store.CreateCoil(ctx, database.CreateCoilParams{
			MachineID: machineID,
			Code:      entry.CoilCode,
		})
		if err != nil {
			return nil, &PersistenceError{Op: "create coil", Err: err}
		}
	default:
		return nil, &PersistenceError{Op: "get coil", Err: err}
	}

	r.cache.coils[key] = c
	return c, nil
}

func (r *resolver) sku(ctx context.Context, entry *workbook.ParsedPickEntry) (*database.SKU, error) {
	parsed := entry.SKU
	if parsed.Code == "" {
		return nil, &EntryError{MachineCode: entry.MachineCode, CoilCode: entry.CoilCode, Reason: "SKU code is missing"}
	}

	if s, ok := r.cache.skus[parsed.Code]; ok {
		return s, nil
	}

	s, err := r.store.GetSKUByCode(ctx, parsed.Code)
	switch {
	case err == nil:
		name, skuType, category := s.Name, s.Type, s.Category
		if parsed.Name != "" {
			name = parsed.Name
		}
		if parsed.Type != "" {
			skuType = parsed.Type
		}
		if parsed.Category != "" {
			category = &parsed.Category
		}
		if name != s.Name || skuType != s.Type || !equalStrPtr(category, s.Category) {
			err := r.store.UpdateSKU(ctx, database.UpdateSKUParams{
				ID:       s.ID,
				Name:     name,
				Type:     skuType,
				Category: category,
			})
			if err != nil {
				return nil, &PersistenceError{Op: "update sku", Err: err}
			}
			s.Name, s.Type, s.Category = name, skuType, category
		}
	case errors.Is(err, database.ErrNotFound):
		name := parsed.Name
		if name == "" {
			name = parsed.Code
		}
		skuType := parsed.Type
		if skuType == "" {
			skuType = DefaultSKUType
		}
		s, err = r.store.CreateSKU(ctx, database.CreateSKUParams{
			Code:               parsed.Code,
			Name:               name,
			Type:               skuType,
			Category:           optional(parsed.Category),
			CountNeededPointer: database.CountPointerTotal,
		})
		if err != nil {
			return nil, &PersistenceError{Op: "create sku", Err: err}
		}
	default:
		return nil, &PersistenceError{Op: "get sku", Err: err}
	}

	r.cache.skus[parsed.Code] = s
	return s, nil
}

func (r *resolver) coilItem(ctx context.Context, coilID, skuID uuid.UUID, par *float64) (*database.CoilItem, error) {
	key := coilItemKey(coilID, skuID)
	if ci, ok := r.cache.coilItems[key]; ok {
		return ci, nil
	}

	ci, err := r.store.GetCoilItem(ctx, coilID, skuID)
	switch {
	case err == nil:
		if par != nil && ci.Par != *par {
			if err := r.store.UpdateCoilItemPar(ctx, ci.ID, *par); err != nil {
				return nil, &PersistenceError{Op: "update coil item", Err: err}
			}
			ci.Par = *par
		}
	case errors.Is(err, database.ErrNotFound):
		ci, err = r.store.CreateCoilItem(ctx, database.CreateCoilItemParams{
			CoilID: coilID,
			SKUID:  skuID,
			Par:    deref(par),
		})
		if err != nil {
			return nil, &PersistenceError{Op: "create coil item", Err: err}
		}
	default:
		return nil, &PersistenceError{Op: "get coil item", Err: err}
	}

	r.cache.coilItems[key] = ci
	return ci, nil
}

// optional returns nil for empty strings so blank cells persist as NULL.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func equalStrPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
