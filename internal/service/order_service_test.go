package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slicecraft/internal/apperr"
	"slicecraft/models"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func newOrderService(repo *fakeOrderRepo, mailer *fakeMailer) *OrderService {
	return NewOrderService(repo, mailer, testLogger())
}

func TestAddItemToCartCreatesCart(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newOrderService(repo, &fakeMailer{})

	cart, err := svc.AddItemToCart("user-1", AddItemRequest{
		Name:     "Margherita",
		Price:    floatPtr(9.5),
		Quantity: intPtr(2),
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, cart.Status)
	assert.Equal(t, "N/A", cart.DeliveryAddress.Street)
	assert.Len(t, cart.Items, 1)
	assert.InDelta(t, 19.0, cart.TotalAmount, 0.001)
}

func TestAddItemToCartReusesPendingOrder(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newOrderService(repo, &fakeMailer{})

	first, err := svc.AddItemToCart("user-1", AddItemRequest{Name: "Margherita", Price: floatPtr(10), Quantity: intPtr(1)})
	require.NoError(t, err)

	second, err := svc.AddItemToCart("user-1", AddItemRequest{Name: "Pepperoni", Price: floatPtr(12), Quantity: intPtr(1)})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, second.Items, 2)
	assert.InDelta(t, 22.0, second.TotalAmount, 0.001)
}

func TestAddItemToCartRequiresNumericFields(t *testing.T) {
	svc := newOrderService(newFakeOrderRepo(), &fakeMailer{})

	_, err := svc.AddItemToCart("user-1", AddItemRequest{Name: "Margherita", Quantity: intPtr(1)})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.AddItemToCart("user-1", AddItemRequest{Name: "Margherita", Price: floatPtr(10)})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAddItemToCartTotalSkipsMalformedLines(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newOrderService(repo, &fakeMailer{})

	cart, err := svc.AddItemToCart("user-1", AddItemRequest{Name: "Margherita", Price: floatPtr(10), Quantity: intPtr(1)})
	require.NoError(t, err)

	// A line damaged out of band must not poison the total.
	repo.mu.Lock()
	repo.orders[cart.ID].Items = append(repo.orders[cart.ID].Items, models.OrderItem{Name: "broken", Price: -5, Quantity: 1})
	repo.mu.Unlock()

	updated, err := svc.AddItemToCart("user-1", AddItemRequest{Name: "Pepperoni", Price: floatPtr(12), Quantity: intPtr(2)})
	require.NoError(t, err)
	assert.InDelta(t, 34.0, updated.TotalAmount, 0.001)
}

func TestGetCartWithoutPendingOrder(t *testing.T) {
	svc := newOrderService(newFakeOrderRepo(), &fakeMailer{})

	_, err := svc.GetCart("user-1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPlaceOrderValidation(t *testing.T) {
	svc := newOrderService(newFakeOrderRepo(), &fakeMailer{})

	_, err := svc.PlaceOrder("user-1", models.DeliveryAddress{City: "Pune", ZipCode: "411001"}, "/uploads/x.png")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	addr := models.DeliveryAddress{Street: "1 Main St", City: "Pune", ZipCode: "411001"}
	_, err = svc.PlaceOrder("user-1", addr, "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestPlaceOrderMovesCartToReceived(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newOrderService(repo, &fakeMailer{})

	_, err := svc.AddItemToCart("user-1", AddItemRequest{Name: "Margherita", Price: floatPtr(10), Quantity: intPtr(1)})
	require.NoError(t, err)

	addr := models.DeliveryAddress{Street: "1 Main St", City: "Pune", ZipCode: "411001"}
	order, err := svc.PlaceOrder("user-1", addr, "/uploads/transfer.png")
	require.NoError(t, err)

	assert.Equal(t, models.StatusReceived, order.Status)
	assert.Equal(t, "1 Main St", order.DeliveryAddress.Street)
	assert.Equal(t, "/uploads/transfer.png", order.TransferScreenshot)

	// The cart is gone; the next add starts a new one.
	_, err = svc.GetCart("user-1")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestPlaceOrderWithoutCart(t *testing.T) {
	svc := newOrderService(newFakeOrderRepo(), &fakeMailer{})

	addr := models.DeliveryAddress{Street: "1 Main St", City: "Pune", ZipCode: "411001"}
	_, err := svc.PlaceOrder("user-1", addr, "/uploads/transfer.png")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGetOrderByIDOwnership(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newOrderService(repo, &fakeMailer{})

	cart, err := svc.AddItemToCart("user-1", AddItemRequest{Name: "Margherita", Price: floatPtr(10), Quantity: intPtr(1)})
	require.NoError(t, err)

	_, err = svc.GetOrderByID(cart.ID, "user-2", models.RoleUser)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.GetOrderByID(cart.ID, "user-2", models.RoleAdmin)
	assert.NoError(t, err)

	_, err = svc.GetOrderByID(cart.ID, "user-1", models.RoleUser)
	assert.NoError(t, err)
}

func TestGetUserOrdersForbiddenForOthers(t *testing.T) {
	svc := newOrderService(newFakeOrderRepo(), &fakeMailer{})

	_, err := svc.GetUserOrders("user-1", "user-2", models.RoleUser)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.GetUserOrders("user-1", "user-2", models.RoleAdmin)
	assert.NoError(t, err)
}

func TestSetStatus(t *testing.T) {
	repo := newFakeOrderRepo()
	mailer := &fakeMailer{}
	svc := newOrderService(repo, mailer)

	cart, err := svc.AddItemToCart("user-1", AddItemRequest{Name: "Margherita", Price: floatPtr(10), Quantity: intPtr(1)})
	require.NoError(t, err)

	repo.mu.Lock()
	repo.orders[cart.ID].CustomerEmail = "customer@example.com"
	repo.mu.Unlock()

	_, err = svc.SetStatus(cart.ID, models.StatusPreparing, models.RoleUser)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = svc.SetStatus(cart.ID, "baking", models.RoleAdmin)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	order, err := svc.SetStatus(cart.ID, models.StatusPreparing, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, order.Status)

	assert.Eventually(t, func() bool {
		return mailer.statusMailCount() == 1
	}, time.Second, 10*time.Millisecond)
	mail := mailer.lastStatusMail()
	assert.Equal(t, "customer@example.com", mail.To)
	assert.Equal(t, models.StatusPreparing, mail.Status)
}

func TestSetStatusSurvivesMailFailure(t *testing.T) {
	repo := newFakeOrderRepo()
	mailer := &fakeMailer{failAll: true}
	svc := newOrderService(repo, mailer)

	cart, err := svc.AddItemToCart("user-1", AddItemRequest{Name: "Margherita", Price: floatPtr(10), Quantity: intPtr(1)})
	require.NoError(t, err)

	repo.mu.Lock()
	repo.orders[cart.ID].CustomerEmail = "customer@example.com"
	repo.mu.Unlock()

	order, err := svc.SetStatus(cart.ID, models.StatusInOven, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInOven, order.Status)
}

func TestDeleteOrderRules(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := newOrderService(repo, &fakeMailer{})

	cart, err := svc.AddItemToCart("user-1", AddItemRequest{Name: "Margherita", Price: floatPtr(10), Quantity: intPtr(1)})
	require.NoError(t, err)

	// Someone else's order.
	err = svc.DeleteOrder(cart.ID, "user-2", models.RoleUser)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	// Customers cannot cancel before checkout or after preparation starts.
	err = svc.DeleteOrder(cart.ID, "user-1", models.RoleUser)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	addr := models.DeliveryAddress{Street: "1 Main St", City: "Pune", ZipCode: "411001"}
	_, err = svc.PlaceOrder("user-1", addr, "/uploads/transfer.png")
	require.NoError(t, err)

	err = svc.DeleteOrder(cart.ID, "user-1", models.RoleUser)
	assert.NoError(t, err)

	// Admins can delete regardless of status.
	second, err := svc.AddItemToCart("user-1", AddItemRequest{Name: "Pepperoni", Price: floatPtr(12), Quantity: intPtr(1)})
	require.NoError(t, err)
	err = svc.DeleteOrder(second.ID, "admin-1", models.RoleAdmin)
	assert.NoError(t, err)
}
