package importer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/vendway/routeboard/internal/database"
	"github.com/vendway/routeboard/internal/workbook"
)

// memStore is an in-memory Store used to exercise the resolution engine
// without a database. Natural keys mirror the schema's unique constraints.
type memStore struct {
	locations    map[string]*database.Location
	machineTypes map[string]*database.MachineType
	machines     map[string]*database.Machine
	coils        map[string]*database.Coil
	skus         map[string]*database.SKU
	coilItems    map[string]*database.CoilItem
	runs         []*database.Run
	pickEntries  []*database.PickEntry

	// failPickEntryAt makes the Nth CreatePickEntry call fail (1-based).
	failPickEntryAt int

	skuGets int
}

func newMemStore() *memStore {
	return &memStore{
		locations:    make(map[string]*database.Location),
		machineTypes: make(map[string]*database.MachineType),
		machines:     make(map[string]*database.Machine),
		coils:        make(map[string]*database.Coil),
		skus:         make(map[string]*database.SKU),
		coilItems:    make(map[string]*database.CoilItem),
	}
}

func locKey(companyID uuid.UUID, name string) string { return companyID.String() + "|" + name }

func (m *memStore) GetLocationByName(_ context.Context, companyID uuid.UUID, name string) (*database.Location, error) {
	if l, ok := m.locations[locKey(companyID, name)]; ok {
		return l, nil
	}
	return nil, database.ErrNotFound
}

func (m *memStore) CreateLocation(_ context.Context, arg database.CreateLocationParams) (*database.Location, error) {
	l := &database.Location{ID: uuid.New(), CompanyID: arg.CompanyID, Name: arg.Name, Address: arg.Address}
	m.locations[locKey(arg.CompanyID, arg.Name)] = l
	return l, nil
}

func (m *memStore) UpdateLocationAddress(_ context.Context, id uuid.UUID, address string) error {
	for _, l := range m.locations {
		if l.ID == id {
			l.Address = &address
			return nil
		}
	}
	return database.ErrNotFound
}

func (m *memStore) GetMachineTypeByName(_ context.Context, name string) (*database.MachineType, error) {
	if mt, ok := m.machineTypes[name]; ok {
		return mt, nil
	}
	return nil, database.ErrNotFound
}

func (m *memStore) CreateMachineType(_ context.Context, arg database.CreateMachineTypeParams) (*database.MachineType, error) {
	mt := &database.MachineType{ID: uuid.New(), Name: arg.Name, Description: arg.Description}
	m.machineTypes[arg.Name] = mt
	return mt, nil
}

func (m *memStore) UpdateMachineTypeDescription(_ context.Context, id uuid.UUID, description string) error {
	for _, mt := range m.machineTypes {
		if mt.ID == id {
			mt.Description = &description
			return nil
		}
	}
	return database.ErrNotFound
}

func (m *memStore) GetMachineByCode(_ context.Context, companyID uuid.UUID, code string) (*database.Machine, error) {
	if mc, ok := m.machines[locKey(companyID, code)]; ok {
		return mc, nil
	}
	return nil, database.ErrNotFound
}

func (m *memStore) CreateMachine(_ context.Context, arg database.CreateMachineParams) (*database.Machine, error) {
	mc := &database.Machine{
		ID: uuid.New(), CompanyID: arg.CompanyID, Code: arg.Code,
		Description: arg.Description, MachineTypeID: arg.MachineTypeID, LocationID: arg.LocationID,
	}
	m.machines[locKey(arg.CompanyID, arg.Code)] = mc
	return mc, nil
}

func (m *memStore) UpdateMachine(_ context.Context, arg database.UpdateMachineParams) error {
	for _, mc := range m.machines {
		if mc.ID == arg.ID {
			mc.Description = arg.Description
			mc.MachineTypeID = arg.MachineTypeID
			mc.LocationID = arg.LocationID
			return nil
		}
	}
	return database.ErrNotFound
}

func (m *memStore) GetCoilByCode(_ context.Context, machineID uuid.UUID, code string) (*database.Coil, error) {
	if c, ok := m.coils[machineID.String()+"|"+code]; ok {
		return c, nil
	}
	return nil, database.ErrNotFound
}

func (m *memStore) CreateCoil(_ context.Context, arg database.CreateCoilParams) (*database.Coil, error) {
	c := &database.Coil{ID: uuid.New(), MachineID: arg.MachineID, Code: arg.Code}
	m.coils[arg.MachineID.String()+"|"+arg.Code] = c
	return c, nil
}

func (m *memStore) GetSKUByCode(_ context.Context, code string) (*database.SKU, error) {
	m.skuGets++
	if s, ok := m.skus[code]; ok {
		return s, nil
	}
	return nil, database.ErrNotFound
}

func (m *memStore) CreateSKU(_ context.Context, arg database.CreateSKUParams) (*database.SKU, error) {
	s := &database.SKU{
		ID: uuid.New(), Code: arg.Code, Name: arg.Name, Type: arg.Type,
		Category: arg.Category, CountNeededPointer: arg.CountNeededPointer,
	}
	m.skus[arg.Code] = s
	return s, nil
}

func (m *memStore) UpdateSKU(_ context.Context, arg database.UpdateSKUParams) error {
	for _, s := range m.skus {
		if s.ID == arg.ID {
			s.Name, s.Type, s.Category = arg.Name, arg.Type, arg.Category
			return nil
		}
	}
	return database.ErrNotFound
}

func (m *memStore) GetCoilItem(_ context.Context, coilID, skuID uuid.UUID) (*database.CoilItem, error) {
	if ci, ok := m.coilItems[coilID.String()+"|"+skuID.String()]; ok {
		return ci, nil
	}
	return nil, database.ErrNotFound
}

func (m *memStore) CreateCoilItem(_ context.Context, arg database.CreateCoilItemParams) (*database.CoilItem, error) {
	ci := &database.CoilItem{ID: uuid.New(), CoilID: arg.CoilID, SKUID: arg.SKUID, Par: arg.Par}
	m.coilItems[arg.CoilID.String()+"|"+arg.SKUID.String()] = ci
	return ci, nil
}

func (m *memStore) UpdateCoilItemPar(_ context.Context, id uuid.UUID, par float64) error {
	for _, ci := range m.coilItems {
		if ci.ID == id {
			ci.Par = par
			return nil
		}
	}
	return database.ErrNotFound
}

func (m *memStore) CreateRun(_ context.Context, arg database.CreateRunParams) (*database.Run, error) {
	r := &database.Run{
		ID: uuid.New(), CompanyID: arg.CompanyID, Status: database.RunStatusCreated,
		ScheduledFor: arg.ScheduledFor, CreatedAt: time.Now().UTC(),
	}
	m.runs = append(m.runs, r)
	return r, nil
}

func (m *memStore) CreatePickEntry(_ context.Context, arg database.CreatePickEntryParams) (*database.PickEntry, error) {
	if m.failPickEntryAt > 0 && len(m.pickEntries)+1 == m.failPickEntryAt {
		return nil, fmt.Errorf("simulated insert failure")
	}
	p := &database.PickEntry{
		ID: uuid.New(), RunID: arg.RunID, CoilItemID: arg.CoilItemID, Count: arg.Count,
		Current: arg.Current, Par: arg.Par, Need: arg.Need, Forecast: arg.Forecast, Total: arg.Total,
	}
	m.pickEntries = append(m.pickEntries, p)
	return p, nil
}

// entry builds a minimal parsed pick entry.
func entry(machine, coil, sku string, total float64) workbook.ParsedPickEntry {
	return workbook.ParsedPickEntry{
		LocationName: "Downtown HQ",
		MachineCode:  machine,
		MachineName:  "Snack Tower",
		CoilCode:     coil,
		SKU:          workbook.ParsedSKU{Code: sku, Name: "Item " + sku, Type: "Snack"},
		Total:        f(total),
	}
}

func f(v float64) *float64 { return &v }

func runOf(entries ...workbook.ParsedPickEntry) *workbook.ParsedRun {
	return &workbook.ParsedRun{Entries: entries}
}

func persist(t *testing.T, store Store, parsed *workbook.ParsedRun, companyID uuid.UUID) (*database.Run, int) {
	t.Helper()
	run, machines, err := persistRun(context.Background(), store, parsed, companyID, database.CreateRunParams{
		CompanyID:    companyID,
		ScheduledFor: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("persistRun() error = %v", err)
	}
	return run, machines
}

func TestPersistRun_CreatesFullGraph(t *testing.T) {
	store := newMemStore()
	companyID := uuid.New()

	_, machines := persist(t, store, runOf(
		entry("VM-001", "A1", "SKU1", 6),
		entry("VM-001", "A2", "SKU2", 3),
		entry("VM-002", "B1", "SKU1", 2),
	), companyID)

	if machines != 2 {
		t.Errorf("distinct machines = %d, want 2", machines)
	}
	if len(store.locations) != 1 {
		t.Errorf("locations = %d, want 1", len(store.locations))
	}
	if len(store.machines) != 2 {
		t.Errorf("machines = %d, want 2", len(store.machines))
	}
	if len(store.skus) != 2 {
		t.Errorf("skus = %d, want 2", len(store.skus))
	}
	if len(store.coils) != 3 {
		t.Errorf("coils = %d, want 3", len(store.coils))
	}
	if len(store.coilItems) != 3 {
		t.Errorf("coil items = %d, want 3", len(store.coilItems))
	}
	if len(store.runs) != 1 {
		t.Errorf("runs = %d, want 1", len(store.runs))
	}
	if len(store.pickEntries) != 3 {
		t.Errorf("pick entries = %d, want 3", len(store.pickEntries))
	}
}

func TestPersistRun_SecondImportReusesDimensions(t *testing.T) {
	store := newMemStore()
	companyID := uuid.New()
	parsed := runOf(
		entry("VM-001", "A1", "SKU1", 6),
		entry("VM-001", "A2", "SKU2", 3),
	)

	first, _ := persist(t, store, parsed, companyID)
	second, _ := persist(t, store, parsed, companyID)

	if first.ID == second.ID {
		t.Fatal("second import reused the first run; runs must always be new")
	}
	if len(store.runs) != 2 {
		t.Errorf("runs = %d, want 2", len(store.runs))
	}
	if len(store.pickEntries) != 4 {
		t.Errorf("pick entries = %d, want 4 (2 per run)", len(store.pickEntries))
	}

	// Dimension entities are upserted, not duplicated.
	if len(store.locations) != 1 {
		t.Errorf("locations = %d, want 1", len(store.locations))
	}
	if len(store.machines) != 1 {
		t.Errorf("machines = %d, want 1", len(store.machines))
	}
	if len(store.skus) != 2 {
		t.Errorf("skus = %d, want 2", len(store.skus))
	}
	if len(store.coils) != 2 {
		t.Errorf("coils = %d, want 2", len(store.coils))
	}
	if len(store.coilItems) != 2 {
		t.Errorf("coil items = %d, want 2", len(store.coilItems))
	}
}

func TestPersistRun_CacheAvoidsRepeatLookups(t *testing.T) {
	store := newMemStore()
	companyID := uuid.New()

	persist(t, store, runOf(
		entry("VM-001", "A1", "SKU1", 1),
		entry("VM-001", "A2", "SKU1", 1),
		entry("VM-001", "A3", "SKU1", 1),
	), companyID)

	if store.skuGets != 1 {
		t.Errorf("SKU lookups = %d, want 1 (cache must absorb repeats)", store.skuGets)
	}
}

func TestPersistRun_PatchesChangedFields(t *testing.T) {
	store := newMemStore()
	companyID := uuid.New()

	old := "1 Old Rd"
	store.CreateLocation(context.Background(), database.CreateLocationParams{
		CompanyID: companyID, Name: "Downtown HQ", Address: &old,
	})
	store.CreateSKU(context.Background(), database.CreateSKUParams{
		Code: "SKU1", Name: "Stale Name", Type: "General", CountNeededPointer: "total",
	})

	e := entry("VM-001", "A1", "SKU1", 6)
	e.LocationAddress = "12 Main St"
	e.Par = f(8)
	persist(t, store, runOf(e), companyID)

	loc := store.locations[locKey(companyID, "Downtown HQ")]
	if loc.Address == nil || *loc.Address != "12 Main St" {
		t.Errorf("address = %v, want patched to 12 Main St", loc.Address)
	}

	sku := store.skus["SKU1"]
	if sku.Name != "Item SKU1" {
		t.Errorf("sku name = %q, want patched to %q", sku.Name, "Item SKU1")
	}
	if sku.Type != "Snack" {
		t.Errorf("sku type = %q, want patched to %q", sku.Type, "Snack")
	}

	for _, ci := range store.coilItems {
		if ci.Par != 8 {
			t.Errorf("coil item par = %v, want 8", ci.Par)
		}
	}
}

func TestPersistRun_MissingCoilCodeIsFatal(t *testing.T) {
	store := newMemStore()
	e := entry("VM-001", "", "SKU1", 6)

	_, _, err := persistRun(context.Background(), store, runOf(e), uuid.New(), database.CreateRunParams{
		CompanyID: uuid.New(), ScheduledFor: time.Now(),
	})

	var entryErr *EntryError
	if !errors.As(err, &entryErr) {
		t.Fatalf("persistRun() error = %v, want *EntryError", err)
	}
	if len(store.pickEntries) != 0 {
		t.Errorf("pick entries = %d, want 0", len(store.pickEntries))
	}
}

func TestPersistRun_MissingSKUCodeIsFatal(t *testing.T) {
	store := newMemStore()
	e := entry("VM-001", "A1", "", 6)

	_, _, err := persistRun(context.Background(), store, runOf(e), uuid.New(), database.CreateRunParams{
		CompanyID: uuid.New(), ScheduledFor: time.Now(),
	})

	var entryErr *EntryError
	if !errors.As(err, &entryErr) {
		t.Fatalf("persistRun() error = %v, want *EntryError", err)
	}
}

func TestPersistRun_FailureOnLastEntryAborts(t *testing.T) {
	store := newMemStore()
	companyID := uuid.New()

	var entries []workbook.ParsedPickEntry
	for i := 0; i < 500; i++ {
		entries = append(entries, entry("VM-001", fmt.Sprintf("A%d", i), fmt.Sprintf("SKU%d", i), 1))
	}
	store.failPickEntryAt = 500

	_, _, err := persistRun(context.Background(), store, runOf(entries...), companyID, database.CreateRunParams{
		CompanyID: companyID, ScheduledFor: time.Now(),
	})

	var persistErr *PersistenceError
	if !errors.As(err, &persistErr) {
		t.Fatalf("persistRun() error = %v, want *PersistenceError", err)
	}
	// The service wraps persistRun in a transaction, so the caller observing
	// this error means nothing from the import is committed.
}

func TestPersistRun_DefaultMachineType(t *testing.T) {
	store := newMemStore()
	companyID := uuid.New()

	e := entry("VM-001", "A1", "SKU1", 6)
	e.MachineTypeName = ""
	persist(t, store, runOf(e), companyID)

	if _, ok := store.machineTypes[DefaultMachineTypeName]; !ok {
		t.Errorf("machine type %q not created for untyped machine", DefaultMachineTypeName)
	}
}

func TestPersistRun_SKUDefaults(t *testing.T) {
	store := newMemStore()
	companyID := uuid.New()

	e := entry("VM-001", "A1", "SKU1", 6)
	e.SKU = workbook.ParsedSKU{Code: "SKU1"}
	persist(t, store, runOf(e), companyID)

	sku := store.skus["SKU1"]
	if sku.Name != "SKU1" {
		t.Errorf("sku name = %q, want code fallback %q", sku.Name, "SKU1")
	}
	if sku.Type != DefaultSKUType {
		t.Errorf("sku type = %q, want %q", sku.Type, DefaultSKUType)
	}
	if sku.CountNeededPointer != database.CountPointerTotal {
		t.Errorf("count pointer = %q, want %q", sku.CountNeededPointer, database.CountPointerTotal)
	}
}
