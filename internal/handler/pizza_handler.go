package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"slicecraft/internal/service"
	"slicecraft/pkg/logger"
)

type PizzaHandler struct {
	pizzaService service.PizzaServiceInterface
	logger       *logger.Logger
}

func NewPizzaHandler(pizzaService service.PizzaServiceInterface, log *logger.Logger) *PizzaHandler {
	return &PizzaHandler{
		pizzaService: pizzaService,
		logger:       log.WithComponent("pizza_handler"),
	}
}

// GetAll handles GET /api/pizzas
func (h *PizzaHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	pizzas, err := h.pizzaService.GetAll()
	if err != nil {
		h.logger.Error("Failed to fetch pizzas", "error", err)
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, pizzas)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}

// GetByID handles GET /api/pizzas/{id}
func (h *PizzaHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	reqCtx := newRequestContext(r)
	h.logger.LogRequest(reqCtx)

	pizza, err := h.pizzaService.GetByID(mux.Vars(r)["id"])
	if err != nil {
		reqCtx.StatusCode = writeError(h.logger, w, err)
		h.logger.LogResponse(reqCtx)
		return
	}

	writeJSONResponse(h.logger, w, http.StatusOK, pizza)
	reqCtx.StatusCode = http.StatusOK
	h.logger.LogResponse(reqCtx)
}
