package handler

import (
	"net/http"

	"slicecraft/internal/middleware"
	"slicecraft/internal/service"
	"slicecraft/pkg/logger"
)

type PaymentHandler struct {
	paymentService service.PaymentServiceInterface
	logger         *logger.Logger
}

func NewPaymentHandler(paymentService service.PaymentServiceInterface, log *logger.Logger) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         log.WithComponent("payment_handler"),
	}
}

// CreatePayment handles POST /api/payment
func (h *PaymentHandler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	intent, err := h.paymentService.CreatePayment(middleware.UserIDFromContext(r.Context()))
	if err != nil {
		h.logger.Warn("Failed to create payment", "error", err)
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, intent)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// VerifyPayment handles POST /api/payment/verify
func (h *PaymentHandler) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req struct {
		OrderID   string `json:"orderId"`
		PaymentID string `json:"paymentId"`
		Signature string `json:"signature"`
	}
	if err := parseRequestBody(r, &req); err != nil {
		h.logger.Warn("Invalid request body for payment verification", "error", err)
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	order, err := h.paymentService.VerifyPayment(req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		h.logger.Warn("Payment verification failed", "order_id", req.OrderID, "error", err)
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, order)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}
