package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"slicecraft/internal/middleware"
	"slicecraft/internal/service"
	"slicecraft/models"
	"slicecraft/pkg/logger"
)

type InventoryHandler struct {
	inventoryService service.InventoryServiceInterface
	logger           *logger.Logger
}

func NewInventoryHandler(inventoryService service.InventoryServiceInterface, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		logger:           log.WithComponent("inventory_handler"),
	}
}

// GetAll handles GET /api/inventory
func (h *InventoryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	items, err := h.inventoryService.GetAll(middleware.RoleFromContext(r.Context()))
	if err != nil {
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, items)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// GetByType handles GET /api/inventory/type/{itemType}. Public: the pizza
// builder uses it to list what is in stock.
func (h *InventoryHandler) GetByType(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	items, err := h.inventoryService.GetByType(models.StockType(mux.Vars(r)["itemType"]))
	if err != nil {
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, items)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// Add handles POST /api/inventory
func (h *InventoryHandler) Add(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var item models.StockItem
	if err := parseRequestBody(r, &item); err != nil {
		h.logger.Warn("Invalid request body for add stock item", "error", err)
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	if err := h.inventoryService.Add(middleware.RoleFromContext(r.Context()), &item); err != nil {
		h.logger.Warn("Failed to add stock item", "error", err)
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusCreated, item)
	reqCtx.StatusCode = http.StatusCreated
	h.logger.LogResponse(reqCtx)
}

// Update handles PUT /api/inventory/{id}
func (h *InventoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req service.UpdateStockRequest
	if err := parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for update stock item", "error", err)
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	item, err := h.inventoryService.Update(middleware.RoleFromContext(r.Context()), mux.Vars(r)["id"], req)
	if err != nil {
		h.logger.Warn("Failed to update stock item", "error", err)
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, item)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// Delete handles DELETE /api/inventory/{id}
func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	if err := h.inventoryService.Delete(middleware.RoleFromContext(r.Context()), mux.Vars(r)["id"]); err != nil {
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, map[string]string{"message": "Inventory item deleted"})
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}
