package service

import (
	"errors"
	"fmt"

	"slicecraft/internal/apperr"
	"slicecraft/internal/notify"
	"slicecraft/internal/repositories"
	"slicecraft/models"
	"slicecraft/pkg/logger"
)

// AddItemRequest is one configured pizza headed for the cart. Price and
// Quantity are pointers so a missing field can be told apart from zero.
type AddItemRequest struct {
	PizzaID     string   `json:"pizzaId"`
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
	Base        string   `json:"base"`
	Sauce       string   `json:"sauce"`
	Cheese      string   `json:"cheese"`
	Veggies     []string `json:"veggies"`
	Meats       []string `json:"meats"`
	Size        string   `json:"size"`
	ExtraCheese bool     `json:"extraCheese"`
	ExtraSauce  bool     `json:"extraSauce"`
	Notes       string   `json:"notes"`
}

type OrderServiceInterface interface {
	AddItemToCart(userID string, req AddItemRequest) (*models.Order, error)
	GetCart(userID string) (*models.Order, error)
	PlaceOrder(userID string, address models.DeliveryAddress, screenshotPath string) (*models.Order, error)
	GetOrderByID(orderID, requesterID string, requesterRole models.Role) (*models.Order, error)
	GetUserOrders(targetUserID, requesterID string, requesterRole models.Role) ([]*models.Order, error)
	GetAllOrders(requesterRole models.Role) ([]*models.Order, error)
	SetStatus(orderID, status string, requesterRole models.Role) (*models.Order, error)
	DeleteOrder(orderID, requesterID string, requesterRole models.Role) error
}

type OrderService struct {
	orderRepo repositories.OrderRepositoryInterface
	mailer    notify.Mailer
	logger    *logger.Logger
}

func NewOrderService(orderRepo repositories.OrderRepositoryInterface, mailer notify.Mailer, log *logger.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		mailer:    mailer,
		logger:    log.WithComponent("order-service"),
	}
}

// AddItemToCart appends a configured pizza to the user's pending order,
// creating the order first if none exists.
func (s *OrderService) AddItemToCart(userID string, req AddItemRequest) (*models.Order, error) {
	s.logger.Debug("Adding item to cart", "user_id", userID, "item_name", req.Name)

	if req.Price == nil || req.Quantity == nil {
		return nil, apperr.Validation("item price and quantity must be numbers")
	}

	cart, err := s.orderRepo.GetPendingByUser(userID)
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, fmt.Errorf("failed to load cart: %v", err)
		}
		cart = &models.Order{
			UserID: userID,
			Status: models.StatusPending,
			DeliveryAddress: models.DeliveryAddress{
				Street: "N/A", City: "N/A", State: "N/A", ZipCode: "00000", Country: "N/A",
			},
		}
		if err := s.orderRepo.Create(cart); err != nil {
			return nil, fmt.Errorf("failed to create cart: %v", err)
		}
		s.logger.Info("Created new cart", "user_id", userID, "order_id", cart.ID)
	}

	item := &models.OrderItem{
		OrderID:     cart.ID,
		PizzaID:     req.PizzaID,
		Name:        req.Name,
		Price:       *req.Price,
		Quantity:    *req.Quantity,
		Base:        req.Base,
		Sauce:       req.Sauce,
		Cheese:      req.Cheese,
		Veggies:     req.Veggies,
		Meats:       req.Meats,
		Size:        req.Size,
		ExtraCheese: req.ExtraCheese,
		ExtraSauce:  req.ExtraSauce,
		Notes:       req.Notes,
	}

	if err := s.orderRepo.AddItem(cart.ID, item); err != nil {
		return nil, fmt.Errorf("failed to add item: %v", err)
	}

	cart.Items = append(cart.Items, *item)
	cart.RecomputeTotal()
	if err := s.orderRepo.UpdateTotal(cart.ID, cart.TotalAmount); err != nil {
		return nil, fmt.Errorf("failed to update total: %v", err)
	}

	s.logger.Info("Item added to cart", "order_id", cart.ID, "item_name", item.Name, "total", cart.TotalAmount)
	return cart, nil
}

// GetCart returns the user's pending order.
func (s *OrderService) GetCart(userID string) (*models.Order, error) {
	return s.orderRepo.GetPendingByUser(userID)
}

// PlaceOrder turns the pending cart into a placed order carrying the delivery
// address and transfer screenshot.
func (s *OrderService) PlaceOrder(userID string, address models.DeliveryAddress, screenshotPath string) (*models.Order, error) {
	s.logger.Debug("Placing order", "user_id", userID)

	if address.Street == "" || address.City == "" || address.ZipCode == "" {
		return nil, apperr.Validation("delivery address must include street, city and postal code")
	}
	if screenshotPath == "" {
		return nil, apperr.Validation("transfer screenshot is required")
	}

	cart, err := s.orderRepo.GetPendingByUser(userID)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.MarkPlaced(cart.ID, address, screenshotPath); err != nil {
		return nil, err
	}

	cart.Status = models.StatusReceived
	cart.DeliveryAddress = address
	cart.TransferScreenshot = screenshotPath

	s.logger.Info("Order placed", "order_id", cart.ID, "user_id", userID, "total", cart.TotalAmount)
	return cart, nil
}

func (s *OrderService) GetOrderByID(orderID, requesterID string, requesterRole models.Role) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requesterID && requesterRole != models.RoleAdmin {
		return nil, apperr.Forbidden("not authorized to view this order")
	}
	return order, nil
}

func (s *OrderService) GetUserOrders(targetUserID, requesterID string, requesterRole models.Role) ([]*models.Order, error) {
	if targetUserID != requesterID && requesterRole != models.RoleAdmin {
		return nil, apperr.Forbidden("not authorized to view these orders")
	}
	return s.orderRepo.GetByUser(targetUserID)
}

func (s *OrderService) GetAllOrders(requesterRole models.Role) ([]*models.Order, error) {
	if requesterRole != models.RoleAdmin {
		return nil, apperr.Forbidden("admin access required")
	}
	return s.orderRepo.GetAll()
}

// SetStatus moves an order to the given status and mails the customer about
// the change. Any status can follow any other; the kitchen is trusted.
func (s *OrderService) SetStatus(orderID, status string, requesterRole models.Role) (*models.Order, error) {
	if requesterRole != models.RoleAdmin {
		return nil, apperr.Forbidden("admin access required")
	}
	if !models.ValidStatus(status) {
		return nil, apperr.Validation("invalid order status %q", status)
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
		return nil, err
	}
	order.Status = status

	s.logger.Info("Order status updated", "order_id", orderID, "status", status)

	if order.CustomerEmail != "" {
		go func(email, id, st string) {
			if err := s.mailer.SendStatusUpdate(email, id, st); err != nil {
				s.logger.Warn("Failed to send status update email", "order_id", id, "error", err.Error())
			}
		}(order.CustomerEmail, orderID, status)
	}

	return order, nil
}

// DeleteOrder removes an order. Customers may only cancel orders that have
// not started preparation; admins may delete any order.
func (s *OrderService) DeleteOrder(orderID, requesterID string, requesterRole models.Role) error {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return err
	}

	if requesterRole != models.RoleAdmin {
		if order.UserID != requesterID {
			return apperr.Forbidden("not authorized to cancel this order")
		}
		if order.Status != models.StatusReceived {
			return apperr.Validation("order can only be cancelled while in %q status", models.StatusReceived)
		}
	}

	if err := s.orderRepo.Delete(orderID); err != nil {
		return err
	}

	s.logger.Info("Order deleted", "order_id", orderID, "requester_id", requesterID)
	return nil
}
