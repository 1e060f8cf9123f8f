package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"slicecraft/internal/middleware"
	"slicecraft/internal/service"
	"slicecraft/pkg/logger"
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionServiceInterface
	logger              *logger.Logger
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionServiceInterface, log *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		logger:              log.WithComponent("subscription_handler"),
	}
}

// Subscribe handles POST /api/subscribe
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	var req struct {
		Email string `json:"email"`
	}
	if err := parseRequestBody(r, &req); err != nil {
		writeErrorResponse(h.logger, w, http.StatusBadRequest, "Invalid request body")
		reqCtx.StatusCode = http.StatusBadRequest
		h.logger.LogResponse(reqCtx)
		return
	}

	sub, err := h.subscriptionService.Subscribe(req.Email)
	if err != nil {
		h.logger.Warn("Failed to add subscription", "error", err)
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusCreated, sub)
	reqCtx.StatusCode = http.StatusCreated
	h.logger.LogResponse(reqCtx)
}

// GetAll handles GET /api/subscribe
func (h *SubscriptionHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	subs, err := h.subscriptionService.GetAll(middleware.RoleFromContext(r.Context()))
	if err != nil {
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, subs)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// Delete handles DELETE /api/subscribe/{id}
func (h *SubscriptionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	if err := h.subscriptionService.Delete(middleware.RoleFromContext(r.Context()), mux.Vars(r)["id"]); err != nil {
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, map[string]string{"message": "Subscription removed"})
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}
