package models

import "time"

// Order status progression. An order in StatusPending is the owner's cart;
// checkout transitions it to StatusReceived. Delivered/completed are terminal
// success, cancelled is terminal failure.
const (
	StatusPending   = "pending"
	StatusReceived  = "Order Received"
	StatusPreparing = "Preparing"
	StatusInOven    = "In Oven"
	StatusReady     = "Ready for Pickup"
	StatusDelivery  = "Out for Delivery"
	StatusDelivered = "Delivered"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// ValidStatus reports whether status is one of the enumerated order statuses.
// No legal-transition table exists: an admin may set any enumerated value.
func ValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusReceived, StatusPreparing, StatusInOven,
		StatusReady, StatusDelivery, StatusDelivered, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// TerminalStatus reports whether status ends the order lifecycle.
func TerminalStatus(status string) bool {
	return status == StatusDelivered || status == StatusCompleted || status == StatusCancelled
}

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
)

type DeliveryAddress struct {
	Street  string `json:"street" db:"street"`
	City    string `json:"city" db:"city"`
	State   string `json:"state" db:"state"`
	ZipCode string `json:"postalCode" db:"zip_code"`
	Country string `json:"country" db:"country"`
}

type Order struct {
	ID                 string          `json:"id" db:"id"`
	UserID             string          `json:"user_id" db:"user_id"`
	Items              []OrderItem     `json:"items"`
	Status             string          `json:"status" db:"status"`
	TotalAmount        float64         `json:"total_amount" db:"total_amount"`
	DeliveryAddress    DeliveryAddress `json:"delivery_address"`
	TransferScreenshot string          `json:"transfer_screenshot,omitempty" db:"transfer_screenshot"`
	PaymentID          string          `json:"payment_id,omitempty" db:"payment_id"`
	PaymentStatus      string          `json:"payment_status" db:"payment_status"`
	CustomerName       string          `json:"customer_name,omitempty"`
	CustomerEmail      string          `json:"customer_email,omitempty"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" db:"updated_at"`
}

// OrderItem is one line of an order. PizzaID references the catalog row the
// line was built from; it may be empty for fully custom pizzas, in which case
// fulfillment skips the inventory decrement for that line.
type OrderItem struct {
	ID          string   `json:"id" db:"id"`
	OrderID     string   `json:"order_id" db:"order_id"`
	PizzaID     string   `json:"pizza_id,omitempty" db:"pizza_id"`
	Name        string   `json:"name" db:"name"`
	Price       float64  `json:"price" db:"price"`
	Quantity    int      `json:"quantity" db:"quantity"`
	Base        string   `json:"base,omitempty" db:"base"`
	Sauce       string   `json:"sauce,omitempty" db:"sauce"`
	Cheese      string   `json:"cheese,omitempty" db:"cheese"`
	Veggies     []string `json:"veggies,omitempty" db:"veggies"`
	Meats       []string `json:"meats,omitempty" db:"meats"`
	Size        string   `json:"size,omitempty" db:"size"`
	ExtraCheese bool     `json:"extra_cheese,omitempty" db:"extra_cheese"`
	ExtraSauce  bool     `json:"extra_sauce,omitempty" db:"extra_sauce"`
	Notes       string   `json:"notes,omitempty" db:"notes"`
}

// RecomputeTotal recalculates TotalAmount from the full item list, skipping
// malformed lines instead of failing. Totals are never adjusted incrementally.
func (o *Order) RecomputeTotal() {
	var total float64
	for _, item := range o.Items {
		if item.Price < 0 || item.Quantity <= 0 {
			continue
		}
		total += item.Price * float64(item.Quantity)
	}
	o.TotalAmount = total
}
