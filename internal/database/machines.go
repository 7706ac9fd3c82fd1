package database

import (
	"context"

	"github.com/google/uuid"
)

const getMachineTypeByName = `
SELECT id, name, description
FROM machine_types
WHERE name = $1`

// GetMachineTypeByName looks a machine type up by name. Machine types are
// global, not company-scoped.
func (q *Queries) GetMachineTypeByName(ctx context.Context, name string) (*MachineType, error) {
	var mt MachineType
	err := q.db.QueryRow(ctx, getMachineTypeByName, name).
		Scan(&mt.ID, &mt.Name, &mt.Description)
	if err != nil {
		return nil, notFound(err)
	}
	return &mt, nil
}

const createMachineType = `
INSERT INTO machine_types (id, name, description)
VALUES ($1, $2, $3)
ON CONFLICT (name)
DO UPDATE SET description = COALESCE(EXCLUDED.description, machine_types.description)
RETURNING id, name, description`

// CreateMachineTypeParams are the inputs for CreateMachineType.
type CreateMachineTypeParams struct {
	Name        string
	Description *string
}

// CreateMachineType inserts a machine type, converging on an existing row
// when a concurrent import created the same name first.
func (q *Queries) CreateMachineType(ctx context.Context, arg CreateMachineTypeParams) (*MachineType, error) {
	var mt MachineType
	err := q.db.QueryRow(ctx, createMachineType, uuid.New(), arg.Name, arg.Description).
		Scan(&mt.ID, &mt.Name, &mt.Description)
	if err != nil {
		return nil, err
	}
	return &mt, nil
}

const updateMachineTypeDescription = `
UPDATE machine_types SET description = $2 WHERE id = $1`

// UpdateMachineTypeDescription patches a machine type's description.
func (q *Queries) UpdateMachineTypeDescription(ctx context.Context, id uuid.UUID, description string) error {
	_, err := q.db.Exec(ctx, updateMachineTypeDescription, id, description)
	return err
}

const getMachineByCode = `
SELECT id, company_id, code, description, machine_type_id, location_id
FROM machines
WHERE company_id = $1 AND code = $2`

// GetMachineByCode looks a machine up by its natural key.
func (q *Queries) GetMachineByCode(ctx context.Context, companyID uuid.UUID, code string) (*Machine, error) {
	var m Machine
	err := q.db.QueryRow(ctx, getMachineByCode, companyID, code).
		Scan(&m.ID, &m.CompanyID, &m.Code, &m.Description, &m.MachineTypeID, &m.LocationID)
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

const createMachine = `
INSERT INTO machines (id, company_id, code, description, machine_type_id, location_id)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (company_id, code)
DO UPDATE SET
	description     = COALESCE(EXCLUDED.description, machines.description),
	machine_type_id = EXCLUDED.machine_type_id,
	location_id     = EXCLUDED.location_id
RETURNING id, company_id, code, description, machine_type_id, location_id`

// CreateMachineParams are the inputs for CreateMachine.
type CreateMachineParams struct {
	CompanyID     uuid.UUID
	Code          string
	Description   *string
	MachineTypeID uuid.UUID
	LocationID    uuid.UUID
}

// CreateMachine inserts a machine, converging on the existing natural-key row
// under concurrent imports.
func (q *Queries) CreateMachine(ctx context.Context, arg CreateMachineParams) (*Machine, error) {
	var m Machine
	err := q.db.QueryRow(ctx, createMachine,
		uuid.New(), arg.CompanyID, arg.Code, arg.Description, arg.MachineTypeID, arg.LocationID).
		Scan(&m.ID, &m.CompanyID, &m.Code, &m.Description, &m.MachineTypeID, &m.LocationID)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const updateMachine = `
UPDATE machines
SET description = $2, machine_type_id = $3, location_id = $4
WHERE id = $1`

// UpdateMachineParams are the inputs for UpdateMachine.
type UpdateMachineParams struct {
	ID            uuid.UUID
	Description   *string
	MachineTypeID uuid.UUID
	LocationID    uuid.UUID
}

// UpdateMachine patches a machine's description and references.
func (q *Queries) UpdateMachine(ctx context.Context, arg UpdateMachineParams) error {
	_, err := q.db.Exec(ctx, updateMachine, arg.ID, arg.Description, arg.MachineTypeID, arg.LocationID)
	return err
}

const getCoilByCode = `
SELECT id, machine_id, code
FROM coils
WHERE machine_id = $1 AND code = $2`

// GetCoilByCode looks a coil up by its natural key within a machine.
func (q *Queries) GetCoilByCode(ctx context.Context, machineID uuid.UUID, code string) (*Coil, error) {
	var c Coil
	err := q.db.QueryRow(ctx, getCoilByCode, machineID, code).
		Scan(&c.ID, &c.MachineID, &c.Code)
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

const createCoil = `
INSERT INTO coils (id, machine_id, code)
VALUES ($1, $2, $3)
ON CONFLICT (machine_id, code) DO UPDATE SET code = EXCLUDED.code
RETURNING id, machine_id, code`

// CreateCoilParams are the inputs for CreateCoil.
type CreateCoilParams struct {
	MachineID uuid.UUID
	Code      string
}

// CreateCoil inserts a coil, reusing the existing row on a natural-key race.
func (q *Queries) CreateCoil(ctx context.Context, arg CreateCoilParams) (*Coil, error) {
	var c Coil
	err := q.db.QueryRow(ctx, createCoil, uuid.New(), arg.MachineID, arg.Code).
		Scan(&c.ID, &c.MachineID, &c.Code)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
