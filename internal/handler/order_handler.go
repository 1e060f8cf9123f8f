package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"slicecraft/internal/middleware"
	"slicecraft/internal/service"
	"slicecraft/internal/uploads"
	"slicecraft/models"
	"slicecraft/pkg/logger"
)

type OrderHandler struct {
	orderService service.OrderServiceInterface
	uploads      *uploads.Store
	logger       *logger.Logger
}

func NewOrderHandler(orderService service.OrderServiceInterface, uploadStore *uploads.Store, log *logger.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		uploads:      uploadStore,
		logger:       log.WithComponent("order_handler"),
	}
}

// AddToCart handles POST /api/orders/add-to-cart
func (h *OrderHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req service.AddItemRequest
	if err := parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for add to cart", "error", err)
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	cart, err := h.orderService.AddItemToCart(middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		h.logger.Warn("Failed to add item to cart", "error", err)
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, cart)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// GetCart handles GET /api/orders/cart
func (h *OrderHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	cart, err := h.orderService.GetCart(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, cart)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// PlaceOrder handles PUT /api/orders/place-order. The request is multipart:
// a deliveryAddress JSON field plus a transferScreenshot image file.
func (h *OrderHandler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	if err := r.ParseMultipartForm(uploads.MaxFileSize); err != nil {
		h.logger.Warn("Invalid multipart form for place order", "error", err)
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid form data")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	var address models.DeliveryAddress
	if raw := r.FormValue("deliveryAddress"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &address); err != nil {
			h.logger.Warn("Invalid delivery address payload", "error", err)
			writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid delivery address")
			reqCtx.StatusCode = http.StatusBadRequest
			h.logger.LogResponse(reqCtx)
			return
		}
	}

	file, header, err := r.FormFile("transferScreenshot")
	if err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Transfer screenshot is required")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}
	defer file.Close()

	screenshotPath, err := h.uploads.SaveImage("transferScreenshot", file, header)
	if err != nil {
		h.logger.Warn("Failed to save transfer screenshot", "error", err)
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	order, err := h.orderService.PlaceOrder(middleware.UserIDFromContext(r.Context()), address, screenshotPath)
	if err != nil {
		h.uploads.Remove(screenshotPath)
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, order)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// GetMyOrders handles GET /api/orders/me
func (h *OrderHandler) GetMyOrders(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	userID := middleware.UserIDFromContext(r.Context())
	orders, err := h.orderService.GetUserOrders(userID, userID, middleware.RoleFromContext(r.Context()))
	if err != nil {
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, orders)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// GetUserOrders handles GET /api/orders/user/{userId}
func (h *OrderHandler) GetUserOrders(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	orders, err := h.orderService.GetUserOrders(
		mux.Vars(r)["userId"],
		middleware.UserIDFromContext(r.Context()),
		middleware.RoleFromContext(r.Context()),
	)
	if err != nil {
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, orders)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// GetAllOrders handles GET /api/orders/admin
func (h *OrderHandler) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	orders, err := h.orderService.GetAllOrders(middleware.RoleFromContext(r.Context()))
	if err != nil {
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, orders)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// GetOrderByID handles GET /api/orders/{id}
func (h *OrderHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	order, err := h.orderService.GetOrderByID(
		mux.Vars(r)["id"],
		middleware.UserIDFromContext(r.Context()),
		middleware.RoleFromContext(r.Context()),
	)
	if err != nil {
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, order)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// UpdateStatus handles PUT and PATCH /api/orders/{id}/status
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req struct {
		Status string `json:"status"`
	}
	if err := parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for status update", "error", err)
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	order, err := h.orderService.SetStatus(mux.Vars(r)["id"], req.Status, middleware.RoleFromContext(r.Context()))
	if err != nil {
		h.logger.Warn("Failed to update order status", "error", err)
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, order)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// DeleteOrder handles DELETE /api/orders/{id}
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	err := h.orderService.DeleteOrder(
		mux.Vars(r)["id"],
		middleware.UserIDFromContext(r.Context()),
		middleware.RoleFromContext(r.Context()),
	)
	if err != nil {
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, map[string]string{"message": "Order deleted"})
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}
