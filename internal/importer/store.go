package importer

import (
	"context"

	"github.com/google/uuid"
	"github.com/vendway/routeboard/internal/database"
)

// Store is the persistence surface the resolution engine needs. It is
// implemented by *database.Queries (over a pool or an open transaction) and
// by an in-memory fake in tests. Get* methods return database.ErrNotFound
// when no row matches the natural key.
type Store interface {
	GetLocationByName(ctx context.Context, companyID uuid.UUID, name string) (*database.Location, error)
	CreateLocation(ctx context.Context, arg database.CreateLocationParams) (*database.Location, error)
	UpdateLocationAddress(ctx context.Context, id uuid.UUID, address string) error

	GetMachineTypeByName(ctx context.Context, name string) (*database.MachineType, error)
	CreateMachineType(ctx context.Context, arg database.CreateMachineTypeParams) (*database.MachineType, error)
	UpdateMachineTypeDescription(ctx context.Context, id uuid.UUID, description string) error

	GetMachineByCode(ctx context.Context, companyID uuid.UUID, code string) (*database.Machine, error)
	CreateMachine(ctx context.Context, arg database.CreateMachineParams) (*database.Machine, error)
	UpdateMachine(ctx context.Context, arg database.UpdateMachineParams) error

	GetCoilByCode(ctx context.Context, machineID uuid.UUID, code string) (*database.Coil, error)
	CreateCoil(ctx context.Context, arg database.CreateCoilParams) (*database.Coil, error)

	GetSKUByCode(ctx context.Context, code string) (*database.SKU, error)
	CreateSKU(ctx context.Context, arg database.CreateSKUParams) (*database.SKU, error)
	UpdateSKU(ctx context.Context, arg database.UpdateSKUParams) error

	GetCoilItem(ctx context.Context, coilID, skuID uuid.UUID) (*database.CoilItem, error)
	CreateCoilItem(ctx context.Context, arg database.CreateCoilItemParams) (*database.CoilItem, error)
	UpdateCoilItemPar(ctx context.Context, id uuid.UUID, par float64) error

	CreateRun(ctx context.Context, arg database.CreateRunParams) (*database.Run, error)
	CreatePickEntry(ctx context.Context, arg database.CreatePickEntryParams) (*database.PickEntry, error)
}
