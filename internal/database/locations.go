package database

import (
	"context"

	"github.com/google/uuid"
)

const getLocationByName = `
SELECT id, company_id, name, address
FROM locations
WHERE company_id = $1 AND name = $2`

// GetLocationByName looks a location up by its natural key. Name matching is
// case-sensitive.
func (q *Queries) GetLocationByName(ctx context.Context, companyID uuid.UUID, name string) (*Location, error) {
	var l Location
	err := q.db.QueryRow(ctx, getLocationByName, companyID, name).
		Scan(&l.ID, &l.CompanyID, &l.Name, &l.Address)
	if err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

const createLocation = `
INSERT INTO locations (id, company_id, name, address)
VALUES ($1, $2, $3, $4)
ON CONFLICT (company_id, name)
DO UPDATE SET address = COALESCE(EXCLUDED.address, locations.address)
RETURNING id, company_id, name, address`

// CreateLocationParams are the inputs for CreateLocation.
type CreateLocationParams struct {
	CompanyID uuid.UUID
	Name      string
	Address   *string
}

// CreateLocation inserts a location. A concurrent import creating the same
// (company, name) converges on the existing row instead of failing.
func (q *Queries) CreateLocation(ctx context.Context, arg CreateLocationParams) (*Location, error) {
	var l Location
	err := q.db.QueryRow(ctx, createLocation, uuid.New(), arg.CompanyID, arg.Name, arg.Address).
		Scan(&l.ID, &l.CompanyID, &l.Name, &l.Address)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

const updateLocationAddress = `
UPDATE locations SET address = $2 WHERE id = $1`

// UpdateLocationAddress patches a location's address.
func (q *Queries) UpdateLocationAddress(ctx context.Context, id uuid.UUID, address string) error {
	_, err := q.db.Exec(ctx, updateLocationAddress, id, address)
	return err
}
