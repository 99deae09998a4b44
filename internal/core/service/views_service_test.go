package service

import (
	"context"
	"testing"
	"time"

	"github.com/ybakri/medstock/internal/core/domain"
)

func seedViews(t *testing.T, store *fakeStore) {
	t.Helper()
	day := 24 * time.Hour
	now := viewsNow()

	expired2d := now.Add(-2 * day)
	expired10d := now.Add(-10 * day)
	in5d := now.Add(5 * day)
	in20d := now.Add(20 * day)
	in60d := now.Add(60 * day)

	drafts := []domain.SupplyDraft{
		{Name: "Paracetamol", Category: "Medication", Quantity: 5, Location: "A1", ReorderThreshold: 10, ExpiryDate: &in60d},
		{Name: "Insulin", Category: "Medication", Quantity: 18, Location: "F1", ReorderThreshold: 10, ExpiryDate: &in5d},
		{Name: "Gloves", Category: "Consumables", Quantity: 2, Location: "B2", ReorderThreshold: 40},
		{Name: "Gauze", Category: "Consumables", Quantity: 120, Location: "A3", ReorderThreshold: 30, ExpiryDate: &expired2d},
		{Name: "Masks", Category: "Consumables", Quantity: 80, Location: "B1", ReorderThreshold: 20, ExpiryDate: &expired10d},
		{Name: "Syringes", Category: "Equipment", Quantity: 50, Location: "C1", ReorderThreshold: 10, ExpiryDate: &in20d},
	}
	for _, d := range drafts {
		if _, err := store.Create(context.Background(), d); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func viewsNow() time.Time {
	return time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)
}

func newTestViews(store *fakeStore) *ViewsService {
	v := NewViewsService(store, store)
	v.now = viewsNow
	return v
}

func TestLowStock(t *testing.T) {
	store := newFakeStore()
	seedViews(t, store)
	v := newTestViews(store)

	got, err := v.LowStock(context.Background())
	if err != nil {
		t.Fatalf("LowStock failed: %v", err)
	}

	// Gloves (2/40) and Paracetamol (5/10), lowest quantity first.
	if len(got) != 2 {
		t.Fatalf("expected 2 low-stock supplies, got %d", len(got))
	}
	if got[0].Name != "Gloves" || got[1].Name != "Paracetamol" {
		t.Errorf("unexpected order: %s, %s", got[0].Name, got[1].Name)
	}
}

func TestExpiringWithin(t *testing.T) {
	store := newFakeStore()
	seedViews(t, store)
	v := newTestViews(store)

	got, err := v.ExpiringWithin(context.Background(), 30)
	if err != nil {
		t.Fatalf("ExpiringWithin failed: %v", err)
	}

	// Insulin (+5d) then Syringes (+20d); expired and far-future excluded.
	if len(got) != 2 {
		t.Fatalf("expected 2 expiring supplies, got %d", len(got))
	}
	if got[0].Name != "Insulin" || got[1].Name != "Syringes" {
		t.Errorf("unexpected order: %s, %s", got[0].Name, got[1].Name)
	}
}

func TestExpiringWithin_BoundsInclusive(t *testing.T) {
	store := newFakeStore()
	today := viewsNow().Truncate(24 * time.Hour)
	exactly7 := today.AddDate(0, 0, 7)
	drafts := []domain.SupplyDraft{
		{Name: "Today", Category: "c", Quantity: 1, Location: "l", ExpiryDate: &today},
		{Name: "Boundary", Category: "c", Quantity: 1, Location: "l", ExpiryDate: &exactly7},
	}
	for _, d := range drafts {
		store.Create(context.Background(), d)
	}
	v := newTestViews(store)

	got, err := v.ExpiringWithin(context.Background(), 7)
	if err != nil {
		t.Fatalf("ExpiringWithin failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("both boundary dates must be included, got %d", len(got))
	}
}

func TestExpired(t *testing.T) {
	store := newFakeStore()
	seedViews(t, store)
	v := newTestViews(store)

	got, err := v.Expired(context.Background())
	if err != nil {
		t.Fatalf("Expired failed: %v", err)
	}

	// Gauze (-2d) before Masks (-10d): most recently expired first.
	if len(got) != 2 {
		t.Fatalf("expected 2 expired supplies, got %d", len(got))
	}
	if got[0].Name != "Gauze" || got[1].Name != "Masks" {
		t.Errorf("unexpected order: %s, %s", got[0].Name, got[1].Name)
	}
}

func TestCategoryTotals(t *testing.T) {
	store := newFakeStore()
	seedViews(t, store)
	v := newTestViews(store)

	totals, err := v.CategoryTotals(context.Background())
	if err != nil {
		t.Fatalf("CategoryTotals failed: %v", err)
	}

	want := map[string]domain.CategoryTotal{
		"Medication":  {Items: 2, Quantity: 23},
		"Consumables": {Items: 3, Quantity: 202},
		"Equipment":   {Items: 1, Quantity: 50},
	}
	if len(totals) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(totals))
	}
	for category, w := range want {
		if totals[category] != w {
			t.Errorf("%s: expected %+v, got %+v", category, w, totals[category])
		}
	}
}

func TestDashboardCounts(t *testing.T) {
	store := newFakeStore()
	seedViews(t, store)
	store.Append(context.Background(), domain.EntryDraft{
		SupplyID: 1, Direction: domain.DirectionIn, Magnitude: 5, QuantityAfter: 5, Actor: "admin",
	})
	v := newTestViews(store)

	counts, err := v.DashboardCounts(context.Background())
	if err != nil {
		t.Fatalf("DashboardCounts failed: %v", err)
	}

	if counts.TotalSupplies != 6 {
		t.Errorf("expected 6 supplies, got %d", counts.TotalSupplies)
	}
	if counts.Categories != 3 {
		t.Errorf("expected 3 categories, got %d", counts.Categories)
	}
	if counts.LowStock != 2 {
		t.Errorf("expected 2 low-stock, got %d", counts.LowStock)
	}
	if counts.ExpiringSoon != 2 {
		t.Errorf("expected 2 expiring within 30 days, got %d", counts.ExpiringSoon)
	}
	if counts.LedgerEntries != 1 {
		t.Errorf("expected 1 ledger entry, got %d", counts.LedgerEntries)
	}
}
