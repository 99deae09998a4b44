package domain

import "time"

type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// LedgerEntry is one immutable line of the audit trail. SupplyID is a weak
// reference: entries outlive the supply they describe.
type LedgerEntry struct {
	ID             int64
	SupplyID       int64
	SupplyLabel    string // supply name, or "Supply #<id>" once the supply is gone
	Direction      Direction
	Magnitude      int
	QuantityBefore int
	QuantityAfter  int
	Reason         string
	Actor          string
	Timestamp      time.Time
}

// EntryDraft is what the write path hands to the ledger; the id and
// timestamp are assigned at write time by the store.
type EntryDraft struct {
	SupplyID       int64
	Direction      Direction
	Magnitude      int
	QuantityBefore int
	QuantityAfter  int
	Reason         string
	Actor          string
}

// QuantityChange reports the committed before/after of an adjustment.
type QuantityChange struct {
	Previous int
	Current  int
}
