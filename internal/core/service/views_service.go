package service

import (
	"context"
	"sort"
	"time"

	"github.com/ybakri/medstock/internal/core/domain"
	"github.com/ybakri/medstock/internal/port"
)

// ViewsService answers the read-only alert and dashboard queries. Every
// call recomputes from current repository state against the clock; callers
// needing a snapshot call once and hold the result.
type ViewsService struct {
	supplies port.SupplyRepository
	ledger   port.TransactionLedger
	now      func() time.Time
}

func NewViewsService(supplies port.SupplyRepository, ledger port.TransactionLedger) *ViewsService {
	return &ViewsService{
		supplies: supplies,
		ledger:   ledger,
		now:      time.Now,
	}
}

// LowStock returns supplies at or below their reorder threshold, lowest
// quantity first.
func (v *ViewsService) LowStock(ctx context.Context) ([]domain.Supply, error) {
	all, err := v.supplies.List(ctx, domain.SupplyFilter{})
	if err != nil {
		return nil, err
	}

	out := make([]domain.Supply, 0)
	for _, s := range all {
		if s.Quantity <= s.ReorderThreshold {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out, nil
}

// ExpiringWithin returns supplies whose expiry date falls between today and
// today+days inclusive, soonest first.
func (v *ViewsService) ExpiringWithin(ctx context.Context, days int) ([]domain.Supply, error) {
	all, err := v.supplies.List(ctx, domain.SupplyFilter{})
	if err != nil {
		return nil, err
	}

	today := dateOnly(v.now())
	limit := today.AddDate(0, 0, days)

	out := make([]domain.Supply, 0)
	for _, s := range all {
		if s.ExpiryDate == nil {
			continue
		}
		exp := dateOnly(*s.ExpiryDate)
		if !exp.Before(today) && !exp.After(limit) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExpiryDate.Before(*out[j].ExpiryDate) })
	return out, nil
}

// Expired returns supplies whose expiry date is in the past, most recently
// expired first.
func (v *ViewsService) Expired(ctx context.Context) ([]domain.Supply, error) {
	all, err := v.supplies.List(ctx, domain.SupplyFilter{})
	if err != nil {
		return nil, err
	}

	today := dateOnly(v.now())

	out := make([]domain.Supply, 0)
	for _, s := range all {
		if s.ExpiryDate != nil && dateOnly(*s.ExpiryDate).Before(today) {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExpiryDate.After(*out[j].ExpiryDate) })
	return out, nil
}

// CategoryTotals aggregates item count and summed quantity per category.
func (v *ViewsService) CategoryTotals(ctx context.Context) (map[string]domain.CategoryTotal, error) {
	all, err := v.supplies.List(ctx, domain.SupplyFilter{})
	if err != nil {
		return nil, err
	}

	totals := make(map[string]domain.CategoryTotal)
	for _, s := range all {
		t := totals[s.Category]
		t.Items++
		t.Quantity += s.Quantity
		totals[s.Category] = t
	}
	return totals, nil
}

// DashboardCounts assembles the dashboard counters. Expiring-soon uses a
// 30-day horizon, as the dashboard always has.
func (v *ViewsService) DashboardCounts(ctx context.Context) (*domain.DashboardCounts, error) {
	all, err := v.supplies.List(ctx, domain.SupplyFilter{})
	if err != nil {
		return nil, err
	}

	entries, err := v.ledger.Count(ctx)
	if err != nil {
		return nil, err
	}

	today := dateOnly(v.now())
	horizon := today.AddDate(0, 0, 30)

	counts := &domain.DashboardCounts{
		TotalSupplies: len(all),
		LedgerEntries: entries,
	}
	categories := make(map[string]struct{})
	for _, s := range all {
		categories[s.Category] = struct{}{}
		if s.Quantity <= s.ReorderThreshold {
			counts.LowStock++
		}
		if s.ExpiryDate != nil {
			exp := dateOnly(*s.ExpiryDate)
			if !exp.Before(today) && !exp.After(horizon) {
				counts.ExpiringSoon++
			}
		}
	}
	counts.Categories = len(categories)
	return counts, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
