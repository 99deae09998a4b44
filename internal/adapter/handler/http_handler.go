package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ybakri/medstock/internal/core/domain"
	"github.com/ybakri/medstock/internal/core/service"
	"github.com/ybakri/medstock/internal/port"
)

// HTTPHandler is the JSON surface the UI layer talks to. All quantity
// changes go through the inventory service; reads go straight to the
// repository, ledger and views.
type HTTPHandler struct {
	inventory *service.InventoryService
	views     *service.ViewsService
	reports   *service.ReportService
	supplies  port.SupplyRepository
	ledger    port.TransactionLedger
	auth      port.AuthGate
	cache     port.CacheRepository // nil disables the idempotency check
	log       *logrus.Logger
}

func NewHTTPHandler(
	inventory *service.InventoryService,
	views *service.ViewsService,
	reports *service.ReportService,
	supplies port.SupplyRepository,
	ledger port.TransactionLedger,
	auth port.AuthGate,
	cache port.CacheRepository,
	log *logrus.Logger,
) *HTTPHandler {
	return &HTTPHandler{
		inventory: inventory,
		views:     views,
		reports:   reports,
		supplies:  supplies,
		ledger:    ledger,
		auth:      auth,
		cache:     cache,
		log:       log,
	}
}

func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)
	mux.HandleFunc("POST /api/login", h.Login)

	mux.HandleFunc("POST /api/supplies", h.CreateSupply)
	mux.HandleFunc("GET /api/supplies", h.ListSupplies)
	mux.HandleFunc("GET /api/supplies/{id}", h.GetSupply)
	mux.HandleFunc("PATCH /api/supplies/{id}", h.UpdateSupply)
	mux.HandleFunc("DELETE /api/supplies/{id}", h.DeleteSupply)
	mux.HandleFunc("POST /api/supplies/{id}/adjust", h.AdjustQuantity)
	mux.HandleFunc("GET /api/supplies/{id}/transactions", h.ListSupplyTransactions)

	mux.HandleFunc("GET /api/transactions", h.ListTransactions)
	mux.HandleFunc("POST /api/transactions/purge", h.PurgeTransactions)

	mux.HandleFunc("GET /api/alerts/low-stock", h.LowStock)
	mux.HandleFunc("GET /api/alerts/expiring", h.Expiring)
	mux.HandleFunc("GET /api/alerts/expired", h.Expired)
	mux.HandleFunc("GET /api/categories", h.CategoryTotals)
	mux.HandleFunc("GET /api/dashboard", h.Dashboard)

	mux.HandleFunc("POST /api/reports", h.GenerateReport)
	mux.HandleFunc("GET /api/reports", h.ListReports)
	mux.HandleFunc("DELETE /api/reports/{id}", h.DeleteReport)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type supplyRequest struct {
	Name             string `json:"name"`
	Category         string `json:"category"`
	Quantity         int    `json:"quantity"`
	ExpiryDate       string `json:"expiry_date"` // YYYY-MM-DD, empty for none
	Location         string `json:"location"`
	Supplier         string `json:"supplier"`
	ReorderThreshold int    `json:"reorder_threshold"`
	Actor            string `json:"actor"`
}

type supplyPatchRequest struct {
	Name             *string `json:"name"`
	Category         *string `json:"category"`
	Quantity         *int    `json:"quantity"`
	ExpiryDate       *string `json:"expiry_date"` // "" clears the date
	Location         *string `json:"location"`
	Supplier         *string `json:"supplier"`
	ReorderThreshold *int    `json:"reorder_threshold"`
	Actor            string  `json:"actor"`
}

type adjustRequest struct {
	RequestID string `json:"request_id"`
	Delta     int    `json:"delta"`
	Actor     string `json:"actor"`
	Reason    string `json:"reason"`
}

type reportRequest struct {
	ReportType  string `json:"report_type"`
	GeneratedBy string `json:"generated_by"`
}

type supplyResponse struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Category         string `json:"category"`
	Quantity         int    `json:"quantity"`
	ExpiryDate       string `json:"expiry_date,omitempty"`
	Location         string `json:"location"`
	Supplier         string `json:"supplier,omitempty"`
	ReorderThreshold int    `json:"reorder_threshold"`
}

type entryResponse struct {
	ID             int64  `json:"id"`
	SupplyID       int64  `json:"supply_id"`
	Supply         string `json:"supply"`
	Direction      string `json:"direction"`
	Magnitude      int    `json:"magnitude"`
	QuantityBefore int    `json:"quantity_before"`
	QuantityAfter  int    `json:"quantity_after"`
	Reason         string `json:"reason"`
	Actor          string `json:"actor"`
	Timestamp      string `json:"timestamp"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	ok, err := h.auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": true})
}

func (h *HTTPHandler) CreateSupply(w http.ResponseWriter, r *http.Request) {
	var req supplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	expiry, err := parseExpiry(req.ExpiryDate)
	if err != nil {
		h.writeError(w, err)
		return
	}

	sup, err := h.inventory.CreateSupply(r.Context(), domain.SupplyDraft{
		Name:             req.Name,
		Category:         req.Category,
		Quantity:         req.Quantity,
		ExpiryDate:       expiry,
		Location:         req.Location,
		Supplier:         req.Supplier,
		ReorderThreshold: req.ReorderThreshold,
	}, req.Actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSupplyResponse(*sup))
}

func (h *HTTPHandler) ListSupplies(w http.ResponseWriter, r *http.Request) {
	filter := domain.SupplyFilter{
		Category: r.URL.Query().Get("category"),
		Search:   r.URL.Query().Get("search"),
	}
	supplies, err := h.supplies.List(r.Context(), filter)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSupplyResponses(supplies))
}

func (h *HTTPHandler) GetSupply(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	sup, err := h.supplies.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSupplyResponse(*sup))
}

// UpdateSupply edits descriptive fields through the repository. A quantity
// change in the same request is routed through the inventory service so it
// lands in the ledger.
func (h *HTTPHandler) UpdateSupply(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req supplyPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	update := domain.SupplyUpdate{
		Name:             req.Name,
		Category:         req.Category,
		Location:         req.Location,
		Supplier:         req.Supplier,
		ReorderThreshold: req.ReorderThreshold,
	}
	if req.ExpiryDate != nil {
		if *req.ExpiryDate == "" {
			update.ClearExpiry = true
		} else {
			expiry, err := parseExpiry(*req.ExpiryDate)
			if err != nil {
				h.writeError(w, err)
				return
			}
			update.ExpiryDate = expiry
		}
	}

	if err := h.supplies.UpdateFields(r.Context(), id, update); err != nil {
		h.writeError(w, err)
		return
	}

	if req.Quantity != nil {
		sup, err := h.supplies.Get(r.Context(), id)
		if err != nil {
			h.writeError(w, err)
			return
		}
		delta := *req.Quantity - sup.Quantity
		if _, err := h.inventory.AdjustQuantity(r.Context(), id, delta, req.Actor, "supply edited"); err != nil {
			h.writeError(w, err)
			return
		}
	}

	sup, err := h.supplies.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSupplyResponse(*sup))
}

func (h *HTTPHandler) DeleteSupply(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	actor := r.URL.Query().Get("actor")
	if err := h.inventory.DeleteSupply(r.Context(), id, actor); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if h.cache != nil && req.RequestID != "" {
		ok, err := h.cache.SetIdempotency(r.Context(), "adjust:"+req.RequestID)
		if err != nil {
			// The cache is an optimization, not a gatekeeper.
			h.log.WithError(err).Warn("idempotency check unavailable")
		} else if !ok {
			writeJSON(w, http.StatusConflict, errorResponse{Error: "duplicate request"})
			return
		}
	}

	change, err := h.inventory.AdjustQuantity(r.Context(), id, req.Delta, req.Actor, req.Reason)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"previous": change.Previous,
		"current":  change.Current,
	})
}

func (h *HTTPHandler) ListSupplyTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	entries, err := h.ledger.ListBySupply(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponses(entries))
}

func (h *HTTPHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	if days := r.URL.Query().Get("days"); days != "" {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "days must be a positive integer"})
			return
		}
		entries, err := h.ledger.ListSince(r.Context(), time.Duration(n)*24*time.Hour)
		if err != nil {
			h.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEntryResponses(entries))
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}
	entries, err := h.ledger.ListRecent(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponses(entries))
}

// PurgeTransactions wipes the whole audit trail. Destructive and logged;
// the only write path into the ledger outside the inventory service.
func (h *HTTPHandler) PurgeTransactions(w http.ResponseWriter, r *http.Request) {
	actor := r.URL.Query().Get("actor")
	removed, err := h.ledger.PurgeAll(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.log.WithFields(logrus.Fields{
		"removed": removed,
		"actor":   actor,
	}).Warn("transaction ledger purged")
	writeJSON(w, http.StatusOK, map[string]int64{"removed": removed})
}

func (h *HTTPHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	supplies, err := h.views.LowStock(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSupplyResponses(supplies))
}

func (h *HTTPHandler) Expiring(w http.ResponseWriter, r *http.Request) {
	days := 30
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "days must be a non-negative integer"})
			return
		}
		days = n
	}
	supplies, err := h.views.ExpiringWithin(r.Context(), days)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSupplyResponses(supplies))
}

func (h *HTTPHandler) Expired(w http.ResponseWriter, r *http.Request) {
	supplies, err := h.views.Expired(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSupplyResponses(supplies))
}

func (h *HTTPHandler) CategoryTotals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.views.CategoryTotals(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make(map[string]map[string]int, len(totals))
	for category, t := range totals {
		out[category] = map[string]int{"items": t.Items, "quantity": t.Quantity}
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	counts, err := h.views.DashboardCounts(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"total_supplies": counts.TotalSupplies,
		"categories":     counts.Categories,
		"low_stock":      counts.LowStock,
		"expiring_soon":  counts.ExpiringSoon,
		"ledger_entries": counts.LedgerEntries,
	})
}

func (h *HTTPHandler) GenerateReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	report, err := h.reports.Generate(r.Context(), req.ReportType, req.GeneratedBy)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":          report.ID,
		"report_type": report.ReportType,
		"file_path":   report.FilePath,
	})
}

func (h *HTTPHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reports.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	out := make([]map[string]any, 0, len(reports))
	for _, rep := range reports {
		out = append(out, map[string]any{
			"id":           rep.ID,
			"report_type":  rep.ReportType,
			"report_date":  rep.ReportDate.Format("2006-01-02"),
			"generated_by": rep.GeneratedBy,
			"file_path":    rep.FilePath,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTPHandler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.reports.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: verr.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
	case errors.Is(err, domain.ErrInvalidState):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrConsistency), errors.Is(err, domain.ErrStoreUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "store unavailable, try again"})
	default:
		h.log.WithError(err).Error("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return 0, false
	}
	return id, true
}

func parseExpiry(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, &domain.ValidationError{Fields: map[string]string{
			"expiry_date": "must be a date in YYYY-MM-DD form",
		}}
	}
	return &t, nil
}

func toSupplyResponse(s domain.Supply) supplyResponse {
	expiry := ""
	if s.ExpiryDate != nil {
		expiry = s.ExpiryDate.Format("2006-01-02")
	}
	return supplyResponse{
		ID:               s.ID,
		Name:             s.Name,
		Category:         s.Category,
		Quantity:         s.Quantity,
		ExpiryDate:       expiry,
		Location:         s.Location,
		Supplier:         s.Supplier,
		ReorderThreshold: s.ReorderThreshold,
	}
}

func toSupplyResponses(supplies []domain.Supply) []supplyResponse {
	out := make([]supplyResponse, 0, len(supplies))
	for _, s := range supplies {
		out = append(out, toSupplyResponse(s))
	}
	return out
}

func toEntryResponses(entries []domain.LedgerEntry) []entryResponse {
	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse{
			ID:             e.ID,
			SupplyID:       e.SupplyID,
			Supply:         e.SupplyLabel,
			Direction:      string(e.Direction),
			Magnitude:      e.Magnitude,
			QuantityBefore: e.QuantityBefore,
			QuantityAfter:  e.QuantityAfter,
			Reason:         e.Reason,
			Actor:          e.Actor,
			Timestamp:      e.Timestamp.Format(time.RFC3339),
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
