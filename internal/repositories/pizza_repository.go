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

type PizzaRepositoryInterface interface {
	GetAll() ([]*models.Pizza, error)
	GetByID(id string) (*models.Pizza, error)
}

type PizzaRepository struct {
	logger *logger.Logger
	db     *database.DB
}

func NewPizzaRepository(logger *logger.Logger, db *database.DB) *PizzaRepository {
	return &PizzaRepository{
		logger: logger.WithComponent("pizza_repository"),
		db:     db,
	}
}

const pizzaColumns = `id, name, description, price, base, sauce, cheese,
	veggies, meats, image, category, is_available, created_at, updated_at`

func scanPizza(row interface{ Scan(...interface{}) error }) (*models.Pizza, error) {
	pizza := &models.Pizza{}
	err := row.Scan(
		&pizza.ID,
		&pizza.Name,
		&pizza.Description,
		&pizza.Price,
		&pizza.Base,
		&pizza.Sauce,
		&pizza.Cheese,
		pq.Array(&pizza.Veggies),
		pq.Array(&pizza.Meats),
		&pizza.Image,
		&pizza.Category,
		&pizza.IsAvailable,
		&pizza.CreatedAt,
		&pizza.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return pizza, nil
}

func (r *PizzaRepository) GetAll() ([]*models.Pizza, error) {
	r.logger.Debug("Retrieving all pizzas from database")

	query := `SELECT ` + pizzaColumns + ` FROM pizzas ORDER BY name`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to query pizzas", "error", err)
		return nil, fmt.Errorf("failed to query pizzas: %v", err)
	}
	defer rows.Close()

	var pizzas []*models.Pizza
	for rows.Next() {
		pizza, err := scanPizza(rows)
		if err != nil {
			r.logger.Error("Failed to scan pizza", "error", err)
			return nil, fmt.Errorf("failed to scan pizza: %v", err)
		}
		pizzas = append(pizzas, pizza)
	}

	if err = rows.Err(); err != nil {
		r.logger.Error("Error iterating pizza rows", "error", err)
		return nil, fmt.Errorf("error iterating pizza rows: %v", err)
	}

	r.logger.Info("Retrieved all pizzas", "count", len(pizzas))
	return pizzas, nil
}

func (r *PizzaRepository) GetByID(id string) (*models.Pizza, error) {
	r.logger.Debug("Retrieving pizza from database", "pizza_id", id)

	query := `SELECT ` + pizzaColumns + ` FROM pizzas WHERE id = $1`

	pizza, err := scanPizza(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("Pizza not found", "pizza_id", id)
			return nil, apperr.NotFound("pizza with id %s not found", id)
		}
		r.logger.Error("Failed to retrieve pizza", "error", err, "pizza_id", id)
		return nil, fmt.Errorf("failed to retrieve pizza: %v", err)
	}

	return pizza, nil
}
