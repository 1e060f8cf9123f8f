package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"slicecraft/internal/apperr"
	"slicecraft/models"
	"slicecraft/pkg/database"
	"slicecraft/pkg/logger"
)

type InventoryRepositoryInterface interface {
	GetAll() ([]*models.StockItem, error)
	GetByID(id string) (*models.StockItem, error)
	GetByType(itemType models.StockType) ([]*models.StockItem, error)
	Add(item *models.StockItem) error
	Update(id string, quantity, threshold float64) error
	Delete(id string) error
	Decrement(itemType models.StockType, name string, amount float64) error
	GetLowStock() ([]*models.StockItem, error)
}

type InventoryRepository struct {
	logger *logger.Logger
	db     *database.DB
}

func NewInventoryRepository(logger *logger.Logger, db *database.DB) *InventoryRepository {
	return &InventoryRepository{
		logger: logger.WithComponent("inventory_repository"),
		db:     db,
	}
}

const stockColumns = `id, item_type, name, quantity, threshold, unit,
	last_restocked, created_at, updated_at`

func scanStockItem(row interface{ Scan(...interface{}) error }) (*models.StockItem, error) {
	item := &models.StockItem{}
	err := row.Scan(
		&item.ID,
		&item.ItemType,
		&item.Name,
		&item.Quantity,
		&item.Threshold,
		&item.Unit,
		&item.LastRestocked,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *InventoryRepository) GetAll() ([]*models.StockItem, error) {
	r.logger.Debug("Retrieving all stock items from database")

	query := `SELECT ` + stockColumns + ` FROM inventory ORDER BY item_type, name`

	return r.queryStock(query)
}

func (r *InventoryRepository) GetByID(id string) (*models.StockItem, error) {
	r.logger.Debug("Retrieving stock item from database", "item_id", id)

	query := `SELECT ` + stockColumns + ` FROM inventory WHERE id = $1`

	item, err := scanStockItem(r.db.QueryRow(query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.logger.Warn("Stock item not found", "item_id", id)
			return nil, apperr.NotFound("inventory item with id %s not found", id)
		}
		r.logger.Error("Failed to retrieve stock item", "error", err, "item_id", id)
		return nil, fmt.Errorf("failed to retrieve inventory item: %v", err)
	}

	return item, nil
}

// GetByType lists in-stock rows of one ingredient type. Rows at zero quantity
// are excluded; this backs the public menu-builder endpoint.
func (r *InventoryRepository) GetByType(itemType models.StockType) ([]*models.StockItem, error) {
	r.logger.Debug("Retrieving stock items by type", "item_type", itemType)

	query := `SELECT ` + stockColumns + ` FROM inventory
		WHERE item_type = $1 AND quantity > 0 ORDER BY name`

	rows, err := r.db.Query(query, itemType)
	if err != nil {
		r.logger.Error("Failed to query stock items by type", "error", err, "item_type", itemType)
		return nil, fmt.Errorf("failed to query inventory by type: %v", err)
	}
	defer rows.Close()

	return collectStock(rows)
}

func (r *InventoryRepository) Add(item *models.StockItem) error {
	r.logger.Debug("Adding new stock item to database", "item_name", item.Name, "item_type", item.ItemType)

	if err := r.validateStockItem(item); err != nil {
		r.logger.Error("Failed to validate stock item", "error", err, "item_name", item.Name)
		return err
	}

	query := `
		INSERT INTO inventory (item_type, name, quantity, threshold, unit)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, last_restocked, created_at, updated_at
	`

	err := r.db.QueryRow(query, item.ItemType, item.Name, item.Quantity, item.Threshold, item.Unit).
		Scan(&item.ID, &item.LastRestocked, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			r.logger.Warn("Attempted to add duplicate stock item", "item_name", item.Name, "item_type", item.ItemType)
			return apperr.Conflict("inventory item %s/%s already exists", item.ItemType, item.Name)
		}
		r.logger.Error("Failed to add stock item", "error", err, "item_name", item.Name)
		return fmt.Errorf("failed to add inventory item: %v", err)
	}

	r.logger.Info("Added new stock item", "item_id", item.ID, "name", item.Name, "type", item.ItemType)
	return nil
}

// Update sets quantity and threshold and refreshes last_restocked.
func (r *InventoryRepository) Update(id string, quantity, threshold float64) error {
	r.logger.Debug("Updating stock item in database", "item_id", id)

	query := `
		UPDATE inventory
		SET quantity = $1, threshold = $2, last_restocked = now(), updated_at = now()
		WHERE id = $3
	`

	result, err := r.db.Exec(query, quantity, threshold, id)
	if err != nil {
		r.logger.Error("Failed to update stock item", "error", err, "item_id", id)
		return fmt.Errorf("failed to update inventory item: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Failed to get rows affected", "error", err, "item_id", id)
		return fmt.Errorf("failed to get rows affected: %v", err)
	}

	if rowsAffected == 0 {
		r.logger.Warn("Attempted to update non-existent stock item", "item_id", id)
		return apperr.NotFound("inventory item with id %s not found", id)
	}

	r.logger.Info("Updated stock item", "item_id", id, "quantity", quantity, "threshold", threshold)
	return nil
}

func (r *InventoryRepository) Delete(id string) error {
	r.logger.Debug("Deleting stock item from database", "item_id", id)

	result, err := r.db.Exec(`DELETE FROM inventory WHERE id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete stock item", "error", err, "item_id", id)
		return fmt.Errorf("failed to delete inventory item: %v", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.logger.Error("Failed to get rows affected", "error", err, "item_id", id)
		return fmt.Errorf("failed to get rows affected: %v", err)
	}

	if rowsAffected == 0 {
		r.logger.Warn("Attempted to delete non-existent stock item", "item_id", id)
		return apperr.NotFound("inventory item with id %s not found", id)
	}

	r.logger.Info("Deleted stock item", "item_id", id)
	return nil
}

// Decrement reduces the on-hand quantity of one (type, name) row. A missing
// row is a no-op: fulfillment is best-effort against stale catalog references.
// The write is a single independent UPDATE with no surrounding transaction;
// concurrent fulfillments of the same ingredient race and may drive the
// quantity negative.
func (r *InventoryRepository) Decrement(itemType models.StockType, name string, amount float64) error {
	query := `
		UPDATE inventory
		SET quantity = quantity - $1, updated_at = now()
		WHERE item_type = $2 AND name = $3
	`

	result, err := r.db.Exec(query, amount, itemType, name)
	if err != nil {
		r.logger.Error("Failed to decrement stock", "error", err, "item_type", itemType, "name", name)
		return fmt.Errorf("failed to decrement inventory: %v", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		r.logger.Debug("No stock row for ingredient, skipping decrement", "item_type", itemType, "name", name)
		return nil
	}

	r.logger.Info("Decremented stock", "item_type", itemType, "name", name, "amount", amount)
	return nil
}

// GetLowStock lists every row at or below its reorder threshold.
func (r *InventoryRepository) GetLowStock() ([]*models.StockItem, error) {
	query := `SELECT ` + stockColumns + ` FROM inventory
		WHERE quantity <= threshold ORDER BY item_type, name`

	return r.queryStock(query)
}

func (r *InventoryRepository) queryStock(query string, args ...interface{}) ([]*models.StockItem, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("Failed to query stock items", "error", err)
		return nil, fmt.Errorf("failed to query inventory: %v", err)
	}
	defer rows.Close()

	return collectStock(rows)
}

func collectStock(rows *sql.Rows) ([]*models.StockItem, error) {
	var items []*models.StockItem
	for rows.Next() {
		item, err := scanStockItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %v", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating inventory rows: %v", err)
	}
	return items, nil
}

func (r *InventoryRepository) validateStockItem(item *models.StockItem) error {
	if item == nil {
		return apperr.Validation("inventory item cannot be nil")
	}
	if !models.ValidStockType(item.ItemType) {
		return apperr.Validation("invalid item type %s", item.ItemType)
	}
	if item.Name == "" {
		return apperr.Validation("ingredient name cannot be empty")
	}
	if item.Quantity < 0 {
		return apperr.Validation("quantity cannot be negative")
	}
	if item.Threshold < 0 {
		return apperr.Validation("threshold cannot be negative")
	}
	if item.Unit == "" {
		return apperr.Validation("unit cannot be empty")
	}
	return nil
}
