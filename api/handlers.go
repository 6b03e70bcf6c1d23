/*
handlers.go - HTTP handlers for the workshop POS

PURPOSE:
  Exposes the inventory ledger, settlement engine, sales ledger, settings
  registry, and backup operations over a localhost REST API. Handles HTTP
  request/response and JSON; all domain rules live in the pos package.

ENDPOINTS:
  Products:
    GET    /api/products               List (optional ?type= filter)
    POST   /api/products               Add product
    GET    /api/products/low-stock     Products at/below alert threshold
    GET    /api/products/{id}          Get product
    PUT    /api/products/{id}          Partial update
    DELETE /api/products/{id}          Delete product

  Services:
    POST   /api/services               Settle an oil-change transaction
    GET    /api/services               List (optional ?start=&end= range)
    GET    /api/services/today         Today's records
    GET    /api/services/{id}          Get service
    GET    /api/services/{id}/receipt  Receipt with tax breakdown

  Reports:
    GET    /api/reports/summary        Revenue/cost/tax/profit for a range
    GET    /api/dashboard              Today's stats + low-stock count

  Settings:
    GET    /api/settings
    PUT    /api/settings               Partial merge
    POST   /api/settings/reset         Restore defaults

  Data:
    GET    /api/export                 Snapshot backup of all collections
    POST   /api/import                 Restore a snapshot verbatim
    POST   /api/reset                  Erase everything, re-seed defaults

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Insufficient stock
  - 500: Storage errors

CACHE REFRESH:
  The handler subscribes to store change notifications and refreshes the
  ledger caches in the background - the explicit replacement for the
  storage-change events the ledgers themselves stay unaware of.

SEE ALSO:
  - dto.go: Request types
  - server.go: Router setup and middleware
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/warp/workshop-pos/pos"
)

const dateLayout = "2006-01-02"

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     pos.Store
	Inventory *pos.Inventory
	Sales     *pos.SalesLedger
	Settings  *pos.SettingsRegistry
	Engine    *pos.Engine
	Logger    *zap.Logger
}

// NewHandler wires the handler and, when the store is observable,
// subscribes a background cache refresh for both ledgers.
func NewHandler(store pos.Store, inventory *pos.Inventory, sales *pos.SalesLedger,
	settings *pos.SettingsRegistry, logger *zap.Logger) *Handler {

	if logger == nil {
		logger = zap.NewNop()
	}

	h := &Handler{
		Store:     store,
		Inventory: inventory,
		Sales:     sales,
		Settings:  settings,
		Engine:    pos.NewEngine(inventory, sales, settings),
		Logger:    logger,
	}

	if obs, ok := store.(pos.Observable); ok {
		obs.Subscribe(func(key pos.Key) {
			// Refresh off the notifying goroutine: the write that fired
			// the notification may still hold a ledger lock.
			go h.refresh(key)
		})
	}

	return h
}

func (h *Handler) refresh(key pos.Key) {
	ctx := context.Background()
	var err error
	switch key {
	case pos.KeyProducts:
		err = h.Inventory.Refresh(ctx)
	case pos.KeyServices:
		err = h.Sales.Refresh(ctx)
	}
	if err != nil {
		h.Logger.Warn("cache refresh failed", zap.String("key", string(key)), zap.Error(err))
	}
}

// =============================================================================
// PRODUCT HANDLERS
// =============================================================================

// ListProducts returns all products, optionally filtered by ?type=.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var products []pos.Product
	if t := r.URL.Query().Get("type"); t != "" {
		pt := pos.ProductType(t)
		if !pt.Valid() {
			writeError(w, http.StatusBadRequest, "Unknown product type", nil)
			return
		}
		products = h.Inventory.ListByType(pt)
	} else {
		products = h.Inventory.List()
	}
	writeJSON(w, http.StatusOK, emptyIfNil(products))
}

// CreateProduct adds a product to the inventory.
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	pt := pos.ProductType(req.Type)
	if !pt.Valid() {
		writeError(w, http.StatusBadRequest, "type must be oil, filter, or additive", nil)
		return
	}
	if req.PurchasePrice.IsNegative() || req.SellingPrice.IsNegative() {
		writeError(w, http.StatusBadRequest, "prices must not be negative", nil)
		return
	}

	product, err := h.Inventory.Add(r.Context(), pos.ProductDraft{
		Name:          req.Name,
		Type:          pt,
		PurchasePrice: req.PurchasePrice,
		SellingPrice:  req.SellingPrice,
		CurrentStock:  req.CurrentStock,
		MinStockAlert: req.MinStockAlert,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to add product", err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// GetProduct returns a single product by id.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.Inventory.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get product", err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// UpdateProduct merges a partial update into a product.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req UpdateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Type != nil && !pos.ProductType(*req.Type).Valid() {
		writeError(w, http.StatusBadRequest, "Unknown product type", nil)
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.Inventory.Update(r.Context(), id, req.Patch()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update product", err)
		return
	}

	product, err := h.Inventory.GetByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to get product", err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a product.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.Inventory.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListLowStock returns products at or below their alert threshold.
func (h *Handler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, emptyIfNil(h.Inventory.LowStock()))
}

// =============================================================================
// SERVICE HANDLERS
// =============================================================================

// CreateService settles an oil-change transaction.
func (h *Handler) CreateService(w http.ResponseWriter, r *http.Request) {
	var req CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	service, err := h.Engine.Settle(r.Context(), pos.ServiceRequest{
		CarPlateNumber:  req.CarPlateNumber,
		OilProductID:    req.OilProductID,
		OilLiters:       req.OilLiters,
		FilterProductID: req.FilterProductID,
		LaborCost:       req.LaborCost,
	})
	if err != nil {
		writeDomainError(w, "Failed to settle service", err)
		return
	}
	writeJSON(w, http.StatusCreated, service)
}

// ListServices returns sales records, optionally filtered by
// ?start=YYYY-MM-DD&end=YYYY-MM-DD (inclusive at day granularity).
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	startParam := r.URL.Query().Get("start")
	endParam := r.URL.Query().Get("end")

	if startParam == "" && endParam == "" {
		writeJSON(w, http.StatusOK, emptyIfNil(h.Sales.List()))
		return
	}

	start, end, err := parseDateRange(startParam, endParam)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date range", err)
		return
	}
	writeJSON(w, http.StatusOK, emptyIfNil(h.Sales.ByDateRange(start, end)))
}

// ListTodayServices returns today's records.
func (h *Handler) ListTodayServices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, emptyIfNil(h.Sales.Today()))
}

// GetService returns a single sales record.
func (h *Handler) GetService(w http.ResponseWriter, r *http.Request) {
	service, err := h.Sales.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get service", err)
		return
	}
	writeJSON(w, http.StatusOK, service)
}

// GetReceipt returns a service with its reconstructed tax breakdown and
// the company profile.
func (h *Handler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	service, err := h.Sales.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, "Failed to get service", err)
		return
	}
	settings, err := h.Settings.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}

	writeJSON(w, http.StatusOK, ReceiptDTO{
		Company:   settings,
		Service:   service,
		Breakdown: pos.ReceiptBreakdown(service, settings.TaxRate),
	})
}

// =============================================================================
// REPORTING HANDLERS
// =============================================================================

// GetSummary aggregates a date range. Defaults to the current month when
// no range is given.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	startParam := r.URL.Query().Get("start")
	endParam := r.URL.Query().Get("end")

	var records []pos.Service
	if startParam == "" && endParam == "" {
		now := h.Sales.Now()
		records = h.Sales.ByDateRange(pos.StartOfMonth(now), now)
	} else {
		start, end, err := parseDateRange(startParam, endParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date range", err)
			return
		}
		records = h.Sales.ByDateRange(start, end)
	}

	writeJSON(w, http.StatusOK, pos.Summarize(records))
}

// GetDashboard returns today's sales, cars served, and low-stock count.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pos.Dashboard(h.Sales, h.Inventory))
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the current settings (defaults if never set).
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.Get(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// UpdateSettings shallow-merges a partial update.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.CompanyName != nil && *req.CompanyName == "" {
		writeError(w, http.StatusBadRequest, "companyName must not be empty", nil)
		return
	}
	if req.TaxRate != nil && req.TaxRate.IsNegative() {
		writeError(w, http.StatusBadRequest, "taxRate must not be negative", nil)
		return
	}

	settings, err := h.Settings.Update(r.Context(), pos.SettingsPatch{
		CompanyName:    req.CompanyName,
		CompanyAddress: req.CompanyAddress,
		CompanyPhone:   req.CompanyPhone,
		TaxRate:        req.TaxRate,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// ResetSettings restores the hardcoded defaults.
func (h *Handler) ResetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Settings.Reset(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// =============================================================================
// DATA HANDLERS - Backup, restore, full reset
// =============================================================================

// ExportData returns a snapshot backup of all three collections.
func (h *Handler) ExportData(w http.ResponseWriter, r *http.Request) {
	snap, err := pos.Export(r.Context(), h.Store)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to export data", err)
		return
	}

	// Indented, matching the downloadable backup format.
	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode snapshot", err)
		return
	}

	filename := "workshop-backup-" + time.Now().Format(dateLayout) + ".json"
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// ImportData restores a snapshot backup verbatim.
func (h *Handler) ImportData(w http.ResponseWriter, r *http.Request) {
	var snap pos.Snapshot
	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid snapshot", err)
		return
	}

	if err := pos.Import(r.Context(), h.Store, snap); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to import data", err)
		return
	}
	if err := h.refreshAll(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload data", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetData irreversibly erases all collections and re-seeds the default
// catalog.
func (h *Handler) ResetData(w http.ResponseWriter, r *http.Request) {
	if err := pos.Reset(r.Context(), h.Store); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset data", err)
		return
	}
	if err := h.Inventory.Seed(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to seed defaults", err)
		return
	}
	if err := h.refreshAll(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload data", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) refreshAll(ctx context.Context) error {
	if err := h.Inventory.Refresh(ctx); err != nil {
		return err
	}
	return h.Sales.Refresh(ctx)
}

// =============================================================================
// HELPERS
// =============================================================================

func parseDateRange(startParam, endParam string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(dateLayout, startParam, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.ParseInLocation(dateLayout, endParam, time.Local)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// emptyIfNil keeps list responses as [] instead of null.
func emptyIfNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps pos errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case pos.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case errors.Is(err, pos.ErrInsufficientStock):
		writeError(w, http.StatusConflict, message, err)
	case errors.Is(err, pos.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}
