package domain

// CategoryTotal aggregates the supplies of one category.
type CategoryTotal struct {
	Items    int
	Quantity int
}

// DashboardCounts are the counters shown on the dashboard. Recomputed on
// every call; never cached.
type DashboardCounts struct {
	TotalSupplies int
	Categories    int
	LowStock      int
	ExpiringSoon  int
	LedgerEntries int
}
