package models

import "time"

type PizzaCategory string

const (
	CategoryClassic PizzaCategory = "classic"
	CategoryGourmet PizzaCategory = "gourmet"
)

// Pizza is a catalog item. Catalog rows are seeded directly into the database;
// the API exposes them read-only.
type Pizza struct {
	ID          string        `json:"id" db:"id"`
	Name        string        `json:"name" db:"name"`
	Description string        `json:"description" db:"description"`
	Price       float64       `json:"price" db:"price"`
	Base        string        `json:"base" db:"base"`
	Sauce       string        `json:"sauce" db:"sauce"`
	Cheese      string        `json:"cheese" db:"cheese"`
	Veggies     []string      `json:"veggies" db:"veggies"`
	Meats       []string      `json:"meats" db:"meats"`
	Image       string        `json:"image" db:"image"`
	Category    PizzaCategory `json:"category" db:"category"`
	IsAvailable bool          `json:"is_available" db:"is_available"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}
