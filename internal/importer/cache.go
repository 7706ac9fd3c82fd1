package importer

import (
	"github.com/google/uuid"
	"github.com/vendway/routeboard/internal/database"
)

// ResolutionCache memoizes natural-key lookups within one import transaction.
// Repeated keys (the same location across machine blocks, the same SKU across
// coils) cost one database round-trip instead of one per entry. A cache never
// outlives its transaction: build one per import and discard it.
type ResolutionCache struct {
	locations    map[string]*database.Location
	machineTypes map[string]*database.MachineType
	machines     map[string]*database.Machine
	coils        map[string]*database.Coil
	skus         map[string]*database.SKU
	coilItems    map[string]*database.CoilItem
}

func newResolutionCache() *ResolutionCache {
	return &ResolutionCache{
		locations:    make(map[string]*database.Location),
		machineTypes: make(map[string]*database.MachineType),
		machines:     make(map[string]*database.Machine),
		coils:        make(map[string]*database.Coil),
		skus:         make(map[string]*database.SKU),
		coilItems:    make(map[string]*database.CoilItem),
	}
}

// coilKey scopes a coil code to its machine.
func coilKey(machineID uuid.UUID, code string) string {
	return machineID.String() + "|" + code
}

// coilItemKey scopes a coil item to its (coil, sku) pair.
func coilItemKey(coilID, skuID uuid.UUID) string {
	return coilID.String() + "|" + skuID.String()
}
