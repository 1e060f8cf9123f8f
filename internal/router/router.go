// Package router wires the HTTP routes to their handlers.
package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"slicecraft/internal/handler"
	"slicecraft/internal/middleware"
	"slicecraft/internal/uploads"
	"slicecraft/pkg/logger"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth         *handler.AuthHandler
	Pizza        *handler.PizzaHandler
	Order        *handler.OrderHandler
	Payment      *handler.PaymentHandler
	Inventory    *handler.InventoryHandler
	Subscription *handler.SubscriptionHandler
}

// New builds the full route table. protect requires a valid bearer token;
// adminOnly additionally gates on the admin role. Services re-check roles for
// the operations whose contracts demand them.
func New(h Handlers, auth *middleware.Auth, uploadStore *uploads.Store, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api").Subrouter()

	protect := func(fn http.HandlerFunc) http.Handler {
		return auth.RequireAuth(fn)
	}
	adminOnly := func(fn http.HandlerFunc) http.Handler {
		return auth.RequireAuth(auth.RequireAdmin(fn))
	}

	// Auth and accounts
	api.HandleFunc("/auth/register", h.Auth.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/forgot-password", h.Auth.ForgotPassword).Methods(http.MethodPost)
	api.HandleFunc("/auth/reset-password/{token}", h.Auth.ResetPassword).Methods(http.MethodPost)
	api.Handle("/auth/register-admin", adminOnly(h.Auth.RegisterAdmin)).Methods(http.MethodPost)
	api.Handle("/auth/me", protect(h.Auth.Me)).Methods(http.MethodGet)
	api.Handle("/auth/profile", protect(h.Auth.UpdateProfile)).Methods(http.MethodPut)
	api.Handle("/auth/users", adminOnly(h.Auth.ListUsers)).Methods(http.MethodGet)
	api.Handle("/auth/users/{id}", adminOnly(h.Auth.UpdateUser)).Methods(http.MethodPut)
	api.Handle("/auth/users/{id}/role", adminOnly(h.Auth.UpdateUserRole)).Methods(http.MethodPut)
	api.Handle("/auth/users/{id}", adminOnly(h.Auth.DeleteUser)).Methods(http.MethodDelete)

	// Menu
	api.HandleFunc("/pizzas", h.Pizza.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/pizzas/{id}", h.Pizza.GetByID).Methods(http.MethodGet)

	// Cart and orders. Fixed segments go before the {id} catch-all.
	api.Handle("/orders/add-to-cart", protect(h.Order.AddToCart)).Methods(http.MethodPost)
	api.Handle("/orders/cart", protect(h.Order.GetCart)).Methods(http.MethodGet)
	api.Handle("/orders/place-order", protect(h.Order.PlaceOrder)).Methods(http.MethodPut)
	api.Handle("/orders/me", protect(h.Order.GetMyOrders)).Methods(http.MethodGet)
	api.Handle("/orders/admin", adminOnly(h.Order.GetAllOrders)).Methods(http.MethodGet)
	api.Handle("/orders/user/{userId}", protect(h.Order.GetUserOrders)).Methods(http.MethodGet)
	api.Handle("/orders/{id}/status", protect(h.Order.UpdateStatus)).Methods(http.MethodPut, http.MethodPatch)
	api.Handle("/orders/{id}", protect(h.Order.GetOrderByID)).Methods(http.MethodGet)
	api.Handle("/orders/{id}", protect(h.Order.DeleteOrder)).Methods(http.MethodDelete)

	// Payments
	api.Handle("/payment", protect(h.Payment.CreatePayment)).Methods(http.MethodPost)
	api.Handle("/payment/verify", protect(h.Payment.VerifyPayment)).Methods(http.MethodPost)

	// Inventory
	api.HandleFunc("/inventory/type/{itemType}", h.Inventory.GetByType).Methods(http.MethodGet)
	api.Handle("/inventory", adminOnly(h.Inventory.GetAll)).Methods(http.MethodGet)
	api.Handle("/inventory", adminOnly(h.Inventory.Add)).Methods(http.MethodPost)
	api.Handle("/inventory/{id}", adminOnly(h.Inventory.Update)).Methods(http.MethodPut)
	api.Handle("/inventory/{id}", adminOnly(h.Inventory.Delete)).Methods(http.MethodDelete)

	// Newsletter
	api.HandleFunc("/subscribe", h.Subscription.Subscribe).Methods(http.MethodPost)
	api.Handle("/subscribe", adminOnly(h.Subscription.GetAll)).Methods(http.MethodGet)
	api.Handle("/subscribe/{id}", adminOnly(h.Subscription.Delete)).Methods(http.MethodDelete)

	// Uploaded images are served as-is.
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadStore.Dir()))))

	return log.HTTPMiddleware(r)
}
