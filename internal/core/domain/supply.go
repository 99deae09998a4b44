package domain

import "time"

type Supply struct {
	ID               int64
	Name             string
	Category         string
	Quantity         int
	ExpiryDate       *time.Time
	Location         string
	Supplier         string
	ReorderThreshold int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SupplyDraft is the caller-provided input for a new supply.
type SupplyDraft struct {
	Name             string `validate:"required"`
	Category         string `validate:"required"`
	Quantity         int    `validate:"gte=0"`
	ExpiryDate       *time.Time
	Location         string `validate:"required"`
	Supplier         string
	ReorderThreshold int `validate:"gte=0"`
}

// SupplyUpdate carries optional field changes; a nil pointer leaves the
// field untouched. Quantity is deliberately absent: quantity moves only
// through the inventory service so every change lands in the ledger.
type SupplyUpdate struct {
	Name             *string
	Category         *string
	ExpiryDate       *time.Time
	ClearExpiry      bool
	Location         *string
	Supplier         *string
	ReorderThreshold *int
}

type SupplyFilter struct {
	Category string
	Search   string // substring match on name or category
}
