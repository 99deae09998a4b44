package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/ybakri/medstock/internal/core/domain"
	"github.com/ybakri/medstock/internal/port"
)

// casRetries bounds the read/compare-and-swap loop. Adjustments are
// human-speed; more than a handful of collisions on one supply means
// something is wrong.
const casRetries = 5

const (
	reasonInitialStock  = "initial stock"
	reasonSupplyRemoved = "supply removed"
)

// InventoryService is the only writer of supply quantities and the only
// writer of the ledger. Every quantity change commits the supply mutation
// and its ledger entry as a single unit.
type InventoryService struct {
	supplies port.SupplyRepository
	store    port.AtomicStore
	validate *validator.Validate
	log      *logrus.Logger
}

func NewInventoryService(supplies port.SupplyRepository, store port.AtomicStore, log *logrus.Logger) *InventoryService {
	return &InventoryService{
		supplies: supplies,
		store:    store,
		validate: validator.New(),
		log:      log,
	}
}

// CreateSupply validates the draft, then inserts the supply row together
// with its opening IN ledger entry. A draft with quantity zero gets no
// entry at all: entry magnitudes are strictly positive.
func (s *InventoryService) CreateSupply(ctx context.Context, draft domain.SupplyDraft, actor string) (*domain.Supply, error) {
	if err := s.validateDraft(draft); err != nil {
		return nil, err
	}

	var entry *domain.EntryDraft
	if draft.Quantity > 0 {
		entry = &domain.EntryDraft{
			Direction:      domain.DirectionIn,
			Magnitude:      draft.Quantity,
			QuantityBefore: 0,
			QuantityAfter:  draft.Quantity,
			Reason:         reasonInitialStock,
			Actor:          actor,
		}
	}

	id, err := s.store.InsertSupplyLogged(ctx, draft, entry)
	if err != nil {
		return nil, fmt.Errorf("create supply: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"supply_id": id,
		"name":      draft.Name,
		"quantity":  draft.Quantity,
		"actor":     actor,
	}).Info("supply created")

	return s.supplies.Get(ctx, id)
}

// AdjustQuantity applies a signed delta to a supply's quantity and records
// it in the ledger. The read-then-write is protected by a compare-and-swap
// on the previous quantity: if another writer got in between, the whole
// unit is retried from a fresh read.
func (s *InventoryService) AdjustQuantity(ctx context.Context, id int64, delta int, actor, reason string) (*domain.QuantityChange, error) {
	if delta == 0 {
		// Nothing changed, nothing to record.
		sup, err := s.supplies.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return &domain.QuantityChange{Previous: sup.Quantity, Current: sup.Quantity}, nil
	}

	for attempt := 0; attempt < casRetries; attempt++ {
		sup, err := s.supplies.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		next := sup.Quantity + delta
		if next < 0 {
			return nil, fmt.Errorf("%w: cannot remove %d units from quantity %d", domain.ErrInvalidState, -delta, sup.Quantity)
		}

		direction := domain.DirectionIn
		magnitude := delta
		if delta < 0 {
			direction = domain.DirectionOut
			magnitude = -delta
		}

		err = s.store.CompareAndSwapQuantityLogged(ctx, domain.EntryDraft{
			SupplyID:       id,
			Direction:      direction,
			Magnitude:      magnitude,
			QuantityBefore: sup.Quantity,
			QuantityAfter:  next,
			Reason:         reason,
			Actor:          actor,
		})
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("adjust quantity: %w", err)
		}

		s.log.WithFields(logrus.Fields{
			"supply_id": id,
			"actor":     actor,
			"from":      sup.Quantity,
			"to":        next,
		}).Info("quantity adjusted")

		return &domain.QuantityChange{Previous: sup.Quantity, Current: next}, nil
	}

	return nil, fmt.Errorf("%w: supply %d changed %d times during adjustment", domain.ErrConsistency, id, casRetries)
}

// DeleteSupply removes the supply row. Remaining stock is closed out with
// a final OUT entry in the same unit, so the ledger chain for the id ends
// at zero. The entries themselves stay: the supply id becomes a dangling
// reference by design.
func (s *InventoryService) DeleteSupply(ctx context.Context, id int64, actor string) error {
	for attempt := 0; attempt < casRetries; attempt++ {
		sup, err := s.supplies.Get(ctx, id)
		if err != nil {
			return err
		}

		var entry *domain.EntryDraft
		if sup.Quantity > 0 {
			entry = &domain.EntryDraft{
				SupplyID:       id,
				Direction:      domain.DirectionOut,
				Magnitude:      sup.Quantity,
				QuantityBefore: sup.Quantity,
				QuantityAfter:  0,
				Reason:         reasonSupplyRemoved,
				Actor:          actor,
			}
		}

		err = s.store.DeleteSupplyLogged(ctx, id, sup.Quantity, entry)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("delete supply: %w", err)
		}

		s.log.WithFields(logrus.Fields{
			"supply_id": id,
			"name":      sup.Name,
			"closed":    sup.Quantity,
			"actor":     actor,
		}).Info("supply deleted")

		return nil
	}

	return fmt.Errorf("%w: supply %d changed %d times during delete", domain.ErrConsistency, id, casRetries)
}

func (s *InventoryService) validateDraft(draft domain.SupplyDraft) error {
	err := s.validate.Struct(draft)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = "must not be empty"
		case "gte":
			fields[fe.Field()] = "must not be negative"
		default:
			fields[fe.Field()] = "is invalid"
		}
	}
	return &domain.ValidationError{Fields: fields}
}
