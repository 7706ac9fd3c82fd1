package database

import (
	"context"

	"github.com/google/uuid"
)

const getSKUByCode = `
SELECT id, code, name, type, category, count_needed_pointer
FROM skus
WHERE code = $1`

// GetSKUByCode looks a SKU up by its global natural key.
func (q *Queries) GetSKUByCode(ctx context.Context, code string) (*SKU, error) {
	var s SKU
	err := q.db.QueryRow(ctx, getSKUByCode, code).
		Scan(&s.ID, &s.Code, &s.Name, &s.Type, &s.Category, &s.CountNeededPointer)
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

const createSKU = `
INSERT INTO skus (id, code, name, type, category, count_needed_pointer)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (code)
DO UPDATE SET
	name     = EXCLUDED.name,
	type     = EXCLUDED.type,
	category = COALESCE(EXCLUDED.category, skus.category)
RETURNING id, code, name, type, category, count_needed_pointer`

// CreateSKUParams are the inputs for CreateSKU.
type CreateSKUParams struct {
	Code               string
	Name               string
	Type               string
	Category           *string
	CountNeededPointer string
}

// CreateSKU inserts a SKU, converging on the existing row when a concurrent
// import created the same code first. The existing count pointer wins.
func (q *Queries) CreateSKU(ctx context.Context, arg CreateSKUParams) (*SKU, error) {
	var s SKU
	err := q.db.QueryRow(ctx, createSKU,
		uuid.New(), arg.Code, arg.Name, arg.Type, arg.Category, arg.CountNeededPointer).
		Scan(&s.ID, &s.Code, &s.Name, &s.Type, &s.Category, &s.CountNeededPointer)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

const updateSKU = `
UPDATE skus
SET name = $2, type = $3, category = $4
WHERE id = $1`

// UpdateSKUParams are the inputs for UpdateSKU.
type UpdateSKUParams struct {
	ID       uuid.UUID
	Name     string
	Type     string
	Category *string
}

// UpdateSKU patches a SKU's descriptive fields. The count pointer is user
// configuration and is never touched by imports.
func (q *Queries) UpdateSKU(ctx context.Context, arg UpdateSKUParams) error {
	_, err := q.db.Exec(ctx, updateSKU, arg.ID, arg.Name, arg.Type, arg.Category)
	return err
}

const getCoilItem = `
SELECT id, coil_id, sku_id, par
FROM coil_items
WHERE coil_id = $1 AND sku_id = $2`

// GetCoilItem looks a coil item up by its (coil, sku) natural key.
func (q *Queries) GetCoilItem(ctx context.Context, coilID, skuID uuid.UUID) (*CoilItem, error) {
	var ci CoilItem
	err := q.db.QueryRow(ctx, getCoilItem, coilID, skuID).
		Scan(&ci.ID, &ci.CoilID, &ci.SKUID, &ci.Par)
	if err != nil {
		return nil, notFound(err)
	}
	return &ci, nil
}

const createCoilItem = `
INSERT INTO coil_items (id, coil_id, sku_id, par)
VALUES ($1, $2, $3, $4)
ON CONFLICT (coil_id, sku_id) DO UPDATE SET par = EXCLUDED.par
RETURNING id, coil_id, sku_id, par`

// CreateCoilItemParams are the inputs for CreateCoilItem.
type CreateCoilItemParams struct {
	CoilID uuid.UUID
	SKUID  uuid.UUID
	Par    float64
}

// CreateCoilItem inserts a coil item, honoring the (coil_id, sku_id) unique
// constraint under concurrent imports.
func (q *Queries) CreateCoilItem(ctx context.Context, arg CreateCoilItemParams) (*CoilItem, error) {
	var ci CoilItem
	err := q.db.QueryRow(ctx, createCoilItem, uuid.New(), arg.CoilID, arg.SKUID, arg.Par).
		Scan(&ci.ID, &ci.CoilID, &ci.SKUID, &ci.Par)
	if err != nil {
		return nil, err
	}
	return &ci, nil
}

const updateCoilItemPar = `
UPDATE coil_items SET par = $2 WHERE id = $1`

// UpdateCoilItemPar patches a coil item's par level.
func (q *Queries) UpdateCoilItemPar(ctx context.Context, id uuid.UUID, par float64) error {
	_, err := q.db.Exec(ctx, updateCoilItemPar, id, par)
	return err
}
