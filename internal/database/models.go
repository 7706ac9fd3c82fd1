package database

import (
	"time"

	"github.com/google/uuid"
)

// Run statuses. A freshly imported run is always CREATED.
const RunStatusCreated = "CREATED"

// Count pointer values a SKU can carry; see SKU.CountNeededPointer.
const (
	CountPointerCount    = "count"
	CountPointerNeed     = "need"
	CountPointerForecast = "forecast"
	CountPointerTotal    = "total"
)

// Location is a vending site. Natural key: (company_id, name).
type Location struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	Name      string
	Address   *string
}

// MachineType is a global machine classification. Natural key: name.
type MachineType struct {
	ID          uuid.UUID
	Name        string
	Description *string
}

// Machine is a physical vending machine. Natural key: (company_id, code).
type Machine struct {
	ID            uuid.UUID
	CompanyID     uuid.UUID
	Code          string
	Description   *string
	MachineTypeID uuid.UUID
	LocationID    uuid.UUID
}

// Coil is a dispensing slot within a machine. Natural key: (machine_id, code).
type Coil struct {
	ID        uuid.UUID
	MachineID uuid.UUID
	Code      string
}

// SKU is a globally identified product. Natural key: code.
// CountNeededPointer selects which parsed quantity becomes a pick entry's
// count for this SKU ("count", "need", "forecast" or "total").
type SKU struct {
	ID                 uuid.UUID
	Code               string
	Name               string
	Type               string
	Category           *string
	CountNeededPointer string
}

// CoilItem is the standing "this SKU belongs in this coil at this par"
// configuration. Natural key: (coil_id, sku_id).
type CoilItem struct {
	ID     uuid.UUID
	CoilID uuid.UUID
	SKUID  uuid.UUID
	Par    float64
}

// Run is one scheduled visit. Always created fresh per import.
type Run struct {
	ID           uuid.UUID
	CompanyID    uuid.UUID
	Status       string
	ScheduledFor time.Time
	CreatedAt    time.Time
}

// PickEntry is the need to stock one SKU into one coil during a run.
// The five parsed quantities are stored verbatim next to the resolved count.
type PickEntry struct {
	ID         uuid.UUID
	RunID      uuid.UUID
	CoilItemID uuid.UUID
	Count      float64
	Current    *float64
	Par        *float64
	Need       *float64
	Forecast   *float64
	Total      *float64
}
