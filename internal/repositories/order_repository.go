package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"slicecraft/internal/apperr"
	"slicecraft/models"
	"slicecraft/pkg/database"
	"slicecraft/pkg/logger"
)

type OrderRepositoryInterface interface {
	Create(order *models.Order) error
	GetByID(id string) (*models.Order, error)
	GetPendingByUser(userID string) (*models.Order, error)
	GetByUser(userID string) ([]*models.Order, error)
	GetAll() ([]*models.Order, error)
	AddItem(orderID string, item *models.OrderItem) error
	UpdateTotal(orderID string, total float64) error
	MarkPlaced(id string, addr models.DeliveryAddress, screenshot string) error
	UpdateStatus(id string, status string) error
	SetPaymentID(id string, paymentID string) error
	MarkPaymentCompleted(id string) error
	Delete(id string) error
}

type OrderRepository struct {
	logger *logger.Logger
	db     *database.DB
}

func NewOrderRepository(logger *logger.Logger, db *database.DB) *OrderRepository {
	return &OrderRepository{
		logger: logger.WithComponent("order_repository"),
		db:     db,
	}
}

const orderColumns = `o.id, o.user_id, o.status, o.total_amount,
	o.street, o.city, o.state, o.zip_code, o.country,
	o.transfer_screenshot, o.payment_id, o.payment_status,
	o.created_at, o.updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.TotalAmount,
		&order.DeliveryAddress.Street,
		&order.DeliveryAddress.City,
		&order.DeliveryAddress.State,
		&order.DeliveryAddress.ZipCode,
		&order.DeliveryAddress.Country,
		&order.TransferScreenshot,
		&order.PaymentID,
		&order.PaymentStatus,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}

// Create inserts a new order and its item lines in one transaction.
func (r *OrderRepository) Create(order *models.Order) error {
	r.logger.Debug("Adding new order to database", "user_id", order.UserID)

	if err := r.validateOrder(order); err != nil {
		r.logger.Error("Failed to validate order", "error", err, "user_id", order.UserID)
		return err
	}

	err := r.db.ExecuteInTransaction(func(tx *sql.Tx) error {
		query := `
			INSERT INTO orders (user_id, status, total_amount, street, city, state, zip_code, country)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at, updated_at
		`
		err := tx.QueryRow(query, order.UserID, order.Status, order.TotalAmount,
			order.DeliveryAddress.Street, order.DeliveryAddress.City, order.DeliveryAddress.State,
			order.DeliveryAddress.ZipCode, order.DeliveryAddress.Country).
			Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert order: %v", err)
		}

		for i := range order.Items {
			if err := insertOrderItem(tx, order.ID, &order.Items[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to add order", "error", err, "user_id", order.UserID)
		return err
	}

	r.logger.Info("Added new order", "order_id", order.ID, "user_id", order.UserID)
	return nil
}

func insertOrderItem(tx *sql.Tx, orderID string, item *models.OrderItem) error {
	query := `
		INSERT INTO order_items (order_id, pizza_id, name, price, quantity,
			base, sauce, cheese, veggies, meats, size, extra_cheese, extra_sauce, notes)
		VALUES ($1, NULLIF($2, '')::uuid, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id
	`
	err := tx.QueryRow(query, orderID, item.PizzaID, item.Name, item.Price, item.Quantity,
		item.Base, item.Sauce, item.Cheese, pq.Array(item.Veggies), pq.Array(item.Meats),
		item.Size, item.ExtraCheese, item.ExtraSauce, item.Notes).Scan(&item.ID)
	if err != nil {
		return fmt.Errorf("failed to insert order item: %v", err)
	}
	item.OrderID = orderID
	return nil
}

func (r *OrderRepository) GetByID(id string) (*models.Order, error) {
	r.logger.Debug("Retrieving order from database", "order_id", id)

	query := `SELECT ` + orderColumns + `, u.name, u.email
		FROM orders o JOIN users u ON u.id = o.user_id
		WHERE o.id = $1`

	order := &models.Order{}
	err := r.db.QueryRow(query, id).Scan(
		&order.ID,
		&order.UserID,
		&order.Status,
		&order.TotalAmount,
		&order.DeliveryAddress.Street,
		&order.DeliveryAddress.City,
		&order.DeliveryAddress.State,
		&order.DeliveryAddress.ZipCode,
		&order.DeliveryAddress.Country,
		&order.TransferScreenshot,
		&order.PaymentID,
		&order.PaymentStatus,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.CustomerName,
		&order.CustomerEmail,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("Order not found", "order_id", id)
			return nil, apperr.NotFound("order with id %s not found", id)
		}
		r.logger.Error("Failed to retrieve order", "error", err, "order_id", id)
		return nil, fmt.Errorf("failed to retrieve order: %v", err)
	}

	if err := r.attachItems([]*models.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// GetPendingByUser returns the account's cart: its single pending order.
// Uniqueness is enforced only by this query pattern, not by a constraint.
func (r *OrderRepository) GetPendingByUser(userID string) (*models.Order, error) {
	r.logger.Debug("Retrieving pending order", "user_id", userID)

	query := `SELECT ` + orderColumns + ` FROM orders o
		WHERE o.user_id = $1 AND o.status = $2
		ORDER BY o.created_at DESC LIMIT 1`

	order, err := scanOrder(r.db.QueryRow(query, userID, models.StatusPending))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("no active cart found")
		}
		r.logger.Error("Failed to retrieve pending order", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to retrieve pending order: %v", err)
	}

	if err := r.attachItems([]*models.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *OrderRepository) GetByUser(userID string) ([]*models.Order, error) {
	r.logger.Debug("Retrieving orders for user", "user_id", userID)

	query := `SELECT ` + orderColumns + ` FROM orders o
		WHERE o.user_id = $1 ORDER BY o.created_at DESC`

	rows, err := r.db.Query(query, userID)
	if err != nil {
		r.logger.Error("Failed to query user orders", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to query user orders: %v", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		r.logger.Error("Failed to collect user orders", "error", err, "user_id", userID)
		return nil, err
	}

	if err := r.attachItems(orders); err != nil {
		return nil, err
	}

	r.logger.Info("Retrieved user orders", "user_id", userID, "count", len(orders))
	return orders, nil
}

// GetAll returns every order with owner name and email, newest first.
func (r *OrderRepository) GetAll() ([]*models.Order, error) {
	r.logger.Debug("Retrieving all orders from database")

	query := `SELECT ` + orderColumns + `, u.name, u.email
		FROM orders o JOIN users u ON u.id = o.user_id
		ORDER BY o.created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to query orders", "error", err)
		return nil, fmt.Errorf("failed to query orders: %v", err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		err := rows.Scan(
			&order.ID,
			&order.UserID,
			&order.Status,
			&order.TotalAmount,
			&order.DeliveryAddress.Street,
			&order.DeliveryAddress.City,
			&order.DeliveryAddress.State,
			&order.DeliveryAddress.ZipCode,
			&order.DeliveryAddress.Country,
			&order.TransferScreenshot,
			&order.PaymentID,
			&order.PaymentStatus,
			&order.CreatedAt,
			&order.UpdatedAt,
			&order.CustomerName,
			&order.CustomerEmail,
		)
		if err != nil {
			r.logger.Error("Failed to scan order", "error", err)
			return nil, fmt.Errorf("failed to scan order: %v", err)
		}
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		r.logger.Error("Error iterating order rows", "error", err)
		return nil, fmt.Errorf("error iterating order rows: %v", err)
	}

	if err := r.attachItems(orders); err != nil {
		return nil, err
	}

	r.logger.Info("Retrieved all orders", "count", len(orders))
	return orders, nil
}

// AddItem appends one line to an order.
func (r *OrderRepository) AddItem(orderID string, item *models.OrderItem) error {
	r.logger.Debug("Adding item to order", "order_id", orderID, "item_name", item.Name)

	err := r.db.ExecuteInTransaction(func(tx *sql.Tx) error {
		return insertOrderItem(tx, orderID, item)
	})
	if err != nil {
		r.logger.Error("Failed to add order item", "error", err, "order_id", orderID)
		return err
	}

	r.logger.Info("Added item to order", "order_id", orderID, "item_name", item.Name, "quantity", item.Quantity)
	return nil
}

// UpdateTotal persists a freshly recomputed total amount.
func (r *OrderRepository) UpdateTotal(orderID string, total float64) error {
	result, err := r.db.Exec(
		`UPDATE orders SET total_amount = $1, updated_at = now() WHERE id = $2`,
		total, orderID)
	if err != nil {
		r.logger.Error("Failed to update order total", "error", err, "order_id", orderID)
		return fmt.Errorf("failed to update order total: %v", err)
	}
	return r.requireRowsAffected(result, orderID, "update total of")
}

// MarkPlaced performs the checkout transition on an existing cart: delivery
// address, payment-proof reference, and status pending -> Order Received, all
// on the same row. No new order record is created.
func (r *OrderRepository) MarkPlaced(id string, addr models.DeliveryAddress, screenshot string) error {
	r.logger.Debug("Marking order placed", "order_id", id)

	query := `
		UPDATE orders
		SET street = $1, city = $2, state = $3, zip_code = $4, country = $5,
		    transfer_screenshot = $6, status = $7, updated_at = now()
		WHERE id = $8 AND status = $9
	`

	result, err := r.db.Exec(query, addr.Street, addr.City, addr.State, addr.ZipCode,
		addr.Country, screenshot, models.StatusReceived, id, models.StatusPending)
	if err != nil {
		r.logger.Error("Failed to mark order placed", "error", err, "order_id", id)
		return fmt.Errorf("failed to place order: %v", err)
	}

	if err := r.requireRowsAffected(result, id, "place"); err != nil {
		return err
	}

	r.logger.Info("Order placed", "order_id", id)
	return nil
}

func (r *OrderRepository) UpdateStatus(id string, status string) error {
	r.logger.Debug("Updating order status", "order_id", id, "status", status)

	result, err := r.db.Exec(
		`UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`,
		status, id)
	if err != nil {
		r.logger.Error("Failed to update order status", "error", err, "order_id", id)
		return fmt.Errorf("failed to update order status: %v", err)
	}

	if err := r.requireRowsAffected(result, id, "update status of"); err != nil {
		return err
	}

	r.logger.Info("Updated order status", "order_id", id, "status", status)
	return nil
}

// SetPaymentID attaches a payment-gateway reference to an order.
func (r *OrderRepository) SetPaymentID(id string, paymentID string) error {
	result, err := r.db.Exec(
		`UPDATE orders SET payment_id = $1, updated_at = now() WHERE id = $2`,
		paymentID, id)
	if err != nil {
		r.logger.Error("Failed to set payment id", "error", err, "order_id", id)
		return fmt.Errorf("failed to set payment id: %v", err)
	}
	return r.requireRowsAffected(result, id, "set payment id of")
}

// MarkPaymentCompleted records a verified payment and moves the order to
// Order Received.
func (r *OrderRepository) MarkPaymentCompleted(id string) error {
	result, err := r.db.Exec(
		`UPDATE orders SET payment_status = $1, status = $2, updated_at = now() WHERE id = $3`,
		models.PaymentCompleted, models.StatusReceived, id)
	if err != nil {
		r.logger.Error("Failed to mark payment completed", "error", err, "order_id", id)
		return fmt.Errorf("failed to mark payment completed: %v", err)
	}

	if err := r.requireRowsAffected(result, id, "complete payment of"); err != nil {
		return err
	}

	r.logger.Info("Payment completed", "order_id", id)
	return nil
}

func (r *OrderRepository) Delete(id string) error {
	r.logger.Debug("Deleting order from database", "order_id", id)

	result, err := r.db.Exec(`DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete order", "error", err, "order_id", id)
		return fmt.Errorf("failed to delete order: %v", err)
	}

	if err := r.requireRowsAffected(result, id, "delete"); err != nil {
		return err
	}

	r.logger.Info("Deleted order", "order_id", id)
	return nil
}

// attachItems loads item lines for the given orders in one query.
func (r *OrderRepository) attachItems(orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]string, len(orders))
	byID := make(map[string]*models.Order, len(orders))
	for i, order := range orders {
		ids[i] = order.ID
		byID[order.ID] = order
		order.Items = []models.OrderItem{}
	}

	query := `
		SELECT id, order_id, COALESCE(pizza_id::text, ''), name, price, quantity,
			base, sauce, cheese, veggies, meats, size, extra_cheese, extra_sauce, notes
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, id
	`

	rows, err := r.db.Query(query, pq.Array(ids))
	if err != nil {
		r.logger.Error("Failed to query order items", "error", err)
		return fmt.Errorf("failed to query order items: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		item := models.OrderItem{}
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.PizzaID,
			&item.Name,
			&item.Price,
			&item.Quantity,
			&item.Base,
			&item.Sauce,
			&item.Cheese,
			pq.Array(&item.Veggies),
			pq.Array(&item.Meats),
			&item.Size,
			&item.ExtraCheese,
			&item.ExtraSauce,
			&item.Notes,
		)
		if err != nil {
			r.logger.Error("Failed to scan order item", "error", err)
			return fmt.Errorf("failed to scan order item: %v", err)
		}
		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
	}

	if err = rows.Err(); err != nil {
		r.logger.Error("Error iterating order item rows", "error", err)
		return fmt.Errorf("error iterating order item rows: %v", err)
	}
	return nil
}

func collectOrders(rows *sql.Rows) ([]*models.Order, error) {
	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %v", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order rows: %v", err)
	}
	return orders, nil
}

func (r *OrderRepository) requireRowsAffected(result sql.Result, id, action string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Failed to get rows affected", "error", err, "order_id", id)
		return fmt.Errorf("failed to get rows affected: %v", err)
	}

	if rowsAffected == 0 {
		r.logger.Warn("Attempted to "+action+" non-existent order", "order_id", id)
		return apperr.NotFound("order with id %s not found", id)
	}
	return nil
}

func (r *OrderRepository) validateOrder(order *models.Order) error {
	if order == nil {
		return apperr.Validation("order cannot be nil")
	}
	if order.UserID == "" {
		return apperr.Validation("order owner cannot be empty")
	}
	if order.Status == "" {
		return apperr.Validation("order status cannot be empty")
	}
	if !models.ValidStatus(order.Status) {
		return apperr.Validation("invalid order status %s", order.Status)
	}
	return nil
}
