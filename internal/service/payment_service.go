package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"

	"slicecraft/internal/apperr"
	"slicecraft/internal/notify"
	"slicecraft/internal/repositories"
	"slicecraft/models"
	"slicecraft/pkg/logger"
)

// PaymentConfig carries the gateway credentials. TestMode skips signature
// verification so the flow can be exercised without a live gateway account.
type PaymentConfig struct {
	KeyID     string
	KeySecret string
	TestMode  bool
}

// PaymentIntent is what the client needs to drive the gateway checkout.
type PaymentIntent struct {
	OrderID   string        `json:"orderId"`
	PaymentID string        `json:"paymentId"`
	Receipt   string        `json:"receipt"`
	Amount    int64         `json:"amount"`
	Currency  string        `json:"currency"`
	KeyID     string        `json:"keyId"`
	TestMode  bool          `json:"testMode"`
	TestCard  *TestCardInfo `json:"testCard,omitempty"`
}

// TestCardInfo is the canned card surfaced to clients in test mode.
type TestCardInfo struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

type PaymentServiceInterface interface {
	CreatePayment(userID string) (*PaymentIntent, error)
	VerifyPayment(orderID, paymentID, signature string) (*models.Order, error)
}

type PaymentService struct {
	config        PaymentConfig
	orderRepo     repositories.OrderRepositoryInterface
	pizzaRepo     repositories.PizzaRepositoryInterface
	inventoryRepo repositories.InventoryRepositoryInterface
	mailer        notify.Mailer
	logger        *logger.Logger
}

func NewPaymentService(
	config PaymentConfig,
	orderRepo repositories.OrderRepositoryInterface,
	pizzaRepo repositories.PizzaRepositoryInterface,
	inventoryRepo repositories.InventoryRepositoryInterface,
	mailer notify.Mailer,
	log *logger.Logger,
) *PaymentService {
	return &PaymentService{
		config:        config,
		orderRepo:     orderRepo,
		pizzaRepo:     pizzaRepo,
		inventoryRepo: inventoryRepo,
		mailer:        mailer,
		logger:        log.WithComponent("payment-service"),
	}
}

// CreatePayment opens a payment for the user's pending order and records the
// gateway reference on it.
func (s *PaymentService) CreatePayment(userID string) (*PaymentIntent, error) {
	s.logger.Debug("Creating payment", "user_id", userID)

	cart, err := s.orderRepo.GetPendingByUser(userID)
	if err != nil {
		return nil, err
	}
	if cart.TotalAmount <= 0 {
		return nil, apperr.Validation("cannot create payment for an empty order")
	}

	paymentID := "pay_" + uuid.New().String()
	if err := s.orderRepo.SetPaymentID(cart.ID, paymentID); err != nil {
		return nil, err
	}

	intent := &PaymentIntent{
		OrderID:   cart.ID,
		PaymentID: paymentID,
		Receipt:   "order_rcpt_" + uuid.New().String(),
		Amount:    int64(math.Round(cart.TotalAmount * 100)),
		Currency:  "INR",
		KeyID:     s.config.KeyID,
		TestMode:  s.config.TestMode,
	}
	if s.config.TestMode {
		intent.TestCard = &TestCardInfo{Number: "4111 1111 1111 1111", Expiry: "12/30", CVV: "123"}
	}

	s.logger.Info("Payment created", "order_id", cart.ID, "payment_id", paymentID, "amount", intent.Amount)
	return intent, nil
}

// VerifyPayment checks the gateway signature, marks the order paid and
// consumes the ingredients its pizzas were built from.
func (s *PaymentService) VerifyPayment(orderID, paymentID, signature string) (*models.Order, error) {
	s.logger.Debug("Verifying payment", "order_id", orderID, "payment_id", paymentID)

	if !s.config.TestMode {
		if !s.signatureValid(orderID, paymentID, signature) {
			s.logger.Warn("Payment signature mismatch", "order_id", orderID, "payment_id", paymentID)
			return nil, apperr.Validation("invalid payment signature")
		}
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.SetPaymentID(orderID, paymentID); err != nil {
		return nil, err
	}
	if err := s.orderRepo.MarkPaymentCompleted(orderID); err != nil {
		return nil, err
	}
	order.PaymentID = paymentID
	order.PaymentStatus = models.PaymentCompleted
	order.Status = models.StatusReceived

	s.consumeIngredients(order)

	s.logger.Info("Payment verified", "order_id", orderID, "payment_id", paymentID)
	return order, nil
}

func (s *PaymentService) signatureValid(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(s.config.KeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// consumeIngredients decrements stock for every ingredient of every pizza on
// the order. Lines whose pizza no longer exists are skipped. Afterwards a
// single low-stock alert covers everything that dropped to its threshold.
func (s *PaymentService) consumeIngredients(order *models.Order) {
	for _, item := range order.Items {
		if item.PizzaID == "" {
			continue
		}
		pizza, err := s.pizzaRepo.GetByID(item.PizzaID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				s.logger.Debug("Skipping inventory for unknown pizza", "pizza_id", item.PizzaID)
				continue
			}
			s.logger.Warn("Failed to load pizza for inventory update", "pizza_id", item.PizzaID, "error", err.Error())
			continue
		}

		amount := float64(item.Quantity)
		s.decrement(models.StockBase, pizza.Base, amount)
		s.decrement(models.StockSauce, pizza.Sauce, amount)
		s.decrement(models.StockCheese, pizza.Cheese, amount)
		for _, veggie := range pizza.Veggies {
			s.decrement(models.StockVeggie, veggie, amount)
		}
	}

	lowStock, err := s.inventoryRepo.GetLowStock()
	if err != nil {
		s.logger.Warn("Failed to check low stock after payment", "order_id", order.ID, "error", err.Error())
		return
	}
	if len(lowStock) == 0 {
		return
	}

	s.logger.Warn("Low stock detected after payment", "order_id", order.ID, "item_count", len(lowStock))
	go func(items []*models.StockItem) {
		if err := s.mailer.SendLowStockAlert(items); err != nil {
			s.logger.Warn("Failed to send low stock alert", "error", err.Error())
		}
	}(lowStock)
}

func (s *PaymentService) decrement(itemType models.StockType, name string, amount float64) {
	if name == "" {
		return
	}
	if err := s.inventoryRepo.Decrement(itemType, name, amount); err != nil {
		s.logger.Warn("Failed to decrement stock", "item_type", itemType, "name", name, "error", fmt.Sprintf("%v", err))
	}
}
